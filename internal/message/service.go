package message

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/listing"
)

// ListingSource resolves a listing id. The listing service satisfies it.
type ListingSource interface {
	Get(ctx context.Context, id string) (*listing.Listing, error)
}

type Service struct {
	repo     *Repo
	listings ListingSource

	// OnInquiry, when set, runs after an inquiry is stored. The
	// notification layer hooks in here.
	OnInquiry func(ctx context.Context, i *Inquiry)
}

func NewService(repo *Repo, listings ListingSource) *Service {
	return &Service{repo: repo, listings: listings}
}

// SendInquiry delivers a buyer question to the listing's seller. The
// listing must be live and sellers cannot message themselves.
func (s *Service) SendInquiry(ctx context.Context, listingID, senderID, body string) (*Inquiry, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.InvalidArgument("body required")
	}
	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.Status != listing.StatusApproved {
		return nil, apperr.FailedPrecondition("listing is not live")
	}
	if l.SellerID == strings.TrimSpace(senderID) {
		return nil, apperr.InvalidArgument("cannot inquire about your own listing")
	}

	i := &Inquiry{
		ID:        uuid.NewString(),
		ListingID: l.ID,
		SenderID:  strings.TrimSpace(senderID),
		SellerID:  l.SellerID,
		Body:      body,
	}
	if err := s.repo.CreateInquiry(ctx, i); err != nil {
		return nil, apperr.Internal(err)
	}
	if s.OnInquiry != nil {
		s.OnInquiry(ctx, i)
	}
	return i, nil
}

// ListInquiriesForSeller pages the seller's inbox.
func (s *Service) ListInquiriesForSeller(ctx context.Context, sellerID string, offset, limit int) ([]Inquiry, int64, error) {
	inquiries, total, err := s.repo.ListInquiriesForSeller(ctx, sellerID, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return inquiries, total, nil
}

// ListInquiriesForListing pages the thread of one listing; only its seller
// may read it.
func (s *Service) ListInquiriesForListing(ctx context.Context, listingID, actorID string, offset, limit int) ([]Inquiry, int64, error) {
	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	if l.SellerID != strings.TrimSpace(actorID) {
		return nil, 0, apperr.PermissionDenied("not your listing")
	}
	inquiries, total, err := s.repo.ListInquiriesForListing(ctx, listingID, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return inquiries, total, nil
}

// MarkInquiryRead flags an inquiry as seen by its seller.
func (s *Service) MarkInquiryRead(ctx context.Context, id, actorID string) error {
	i, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return apperr.NotFound("inquiry not found")
	}
	if i.SellerID != strings.TrimSpace(actorID) {
		return apperr.PermissionDenied("not your inquiry")
	}
	if err := s.repo.MarkInquiryRead(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// SendAdminMessage delivers a moderator notice to an account.
func (s *Service) SendAdminMessage(ctx context.Context, senderID, recipientID, subject, body string) (*AdminMessage, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperr.InvalidArgument("subject required")
	}
	if strings.TrimSpace(recipientID) == "" {
		return nil, apperr.InvalidArgument("recipient required")
	}
	m := &AdminMessage{
		ID:          uuid.NewString(),
		SenderID:    strings.TrimSpace(senderID),
		RecipientID: strings.TrimSpace(recipientID),
		Subject:     subject,
		Body:        strings.TrimSpace(body),
	}
	if err := s.repo.CreateAdminMessage(ctx, m); err != nil {
		return nil, apperr.Internal(err)
	}
	return m, nil
}

func (s *Service) ListAdminMessages(ctx context.Context, recipientID string, offset, limit int) ([]AdminMessage, int64, error) {
	msgs, total, err := s.repo.ListAdminMessages(ctx, recipientID, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return msgs, total, nil
}

func (s *Service) MarkAdminMessageRead(ctx context.Context, id, recipientID string) error {
	if err := s.repo.MarkAdminMessageRead(ctx, id, recipientID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
