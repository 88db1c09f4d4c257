package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motormarket/motormarket/internal/common/apperr"
)

// Service wraps the listing use cases.
type Service struct {
	repo *Repo

	// OnSold, when set, runs after a listing is marked sold. The payment
	// layer hooks in here to record the commission.
	OnSold func(ctx context.Context, l *Listing)
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// CreateInput is the listing creation DTO.
type CreateInput struct {
	SellerID    string
	Title       string
	Description string
	Make        string
	Model       string
	Year        int
	MileageKM   int
	PriceCents  int64
	Currency    string
	City        string
	ImagePath   string
}

func (in *CreateInput) validate() error {
	if strings.TrimSpace(in.SellerID) == "" {
		return apperr.InvalidArgument("seller_id required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return apperr.InvalidArgument("title required")
	}
	if strings.TrimSpace(in.Make) == "" || strings.TrimSpace(in.Model) == "" {
		return apperr.InvalidArgument("make/model required")
	}
	if in.Year < 1900 || in.Year > time.Now().Year()+1 {
		return apperr.InvalidArgument("year out of range")
	}
	if in.PriceCents < 0 {
		return apperr.InvalidArgument("price must not be negative")
	}
	if in.MileageKM < 0 {
		return apperr.InvalidArgument("mileage must not be negative")
	}
	return nil
}

// Create stores a new listing in draft state.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Listing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	l := &Listing{
		ID:          uuid.NewString(),
		SellerID:    strings.TrimSpace(in.SellerID),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Make:        strings.TrimSpace(in.Make),
		Model:       strings.TrimSpace(in.Model),
		Year:        in.Year,
		MileageKM:   in.MileageKM,
		PriceCents:  in.PriceCents,
		Currency:    defaultCurrency(in.Currency),
		City:        strings.TrimSpace(in.City),
		ImagePath:   strings.TrimSpace(in.ImagePath),
		Status:      StatusDraft,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, apperr.Internal(err)
	}
	return l, nil
}

// UpdateInput carries the editable fields.
type UpdateInput struct {
	Title       string
	Description string
	Make        string
	Model       string
	Year        int
	MileageKM   int
	PriceCents  int64
	City        string
	ImagePath   string
}

// Update edits an owned listing. Editing an approved listing sends it back
// to pending review.
func (s *Service) Update(ctx context.Context, id, actorID string, in UpdateInput) (*Listing, error) {
	l, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if l.Status == StatusSold {
		return nil, apperr.FailedPrecondition("sold listing cannot be edited")
	}

	ci := CreateInput{
		SellerID: l.SellerID, Title: in.Title, Make: in.Make, Model: in.Model,
		Year: in.Year, MileageKM: in.MileageKM, PriceCents: in.PriceCents,
	}
	if err := ci.validate(); err != nil {
		return nil, err
	}

	l.Title = strings.TrimSpace(in.Title)
	l.Description = strings.TrimSpace(in.Description)
	l.Make = strings.TrimSpace(in.Make)
	l.Model = strings.TrimSpace(in.Model)
	l.Year = in.Year
	l.MileageKM = in.MileageKM
	l.PriceCents = in.PriceCents
	l.City = strings.TrimSpace(in.City)
	if strings.TrimSpace(in.ImagePath) != "" {
		l.ImagePath = strings.TrimSpace(in.ImagePath)
	}

	if l.Status == StatusApproved {
		if err := ApplyTransition(l, StatusPending, time.Now()); err != nil {
			return nil, apperr.FailedPrecondition("%v", err)
		}
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, apperr.Internal(err)
	}
	return l, nil
}

// Submit moves a draft (or rejected/archived) listing into moderation.
func (s *Service) Submit(ctx context.Context, id, actorID string) (*Listing, error) {
	return s.ownerTransition(ctx, id, actorID, StatusPending)
}

// Archive withdraws a listing from the marketplace.
func (s *Service) Archive(ctx context.Context, id, actorID string) (*Listing, error) {
	return s.ownerTransition(ctx, id, actorID, StatusArchived)
}

// MarkSold records the sale and fires the OnSold hook.
func (s *Service) MarkSold(ctx context.Context, id, actorID string) (*Listing, error) {
	l, err := s.ownerTransition(ctx, id, actorID, StatusSold)
	if err != nil {
		return nil, err
	}
	if s.OnSold != nil {
		s.OnSold(ctx, l)
	}
	return l, nil
}

// Approve is the moderation accept decision.
func (s *Service) Approve(ctx context.Context, id string) (*Listing, error) {
	return s.adminTransition(ctx, id, StatusApproved, "")
}

// Reject is the moderation reject decision; a reason is required.
func (s *Service) Reject(ctx context.Context, id, reason string) (*Listing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.InvalidArgument("rejection reason required")
	}
	return s.adminTransition(ctx, id, StatusRejected, reason)
}

func (s *Service) Get(ctx context.Context, id string) (*Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.InvalidArgument("id required")
	}
	l, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("listing not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return l, nil
}

// Search runs a filtered listing query. Public callers must pin
// f.Status = StatusApproved before calling.
func (s *Service) Search(ctx context.Context, f SearchFilter) ([]Listing, int64, error) {
	listings, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return listings, total, nil
}

func (s *Service) CountByStatus(ctx context.Context, status Status) (int64, error) {
	return s.repo.CountByStatus(ctx, status)
}

func (s *Service) getOwned(ctx context.Context, id, actorID string) (*Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SellerID != strings.TrimSpace(actorID) {
		return nil, apperr.PermissionDenied("not your listing")
	}
	return l, nil
}

func (s *Service) ownerTransition(ctx context.Context, id, actorID string, to Status) (*Listing, error) {
	l, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(l, to, time.Now()); err != nil {
		return nil, apperr.FailedPrecondition("%v", err)
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, apperr.Internal(err)
	}
	return l, nil
}

func (s *Service) adminTransition(ctx context.Context, id string, to Status, rejectionReason string) (*Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(l, to, time.Now()); err != nil {
		return nil, apperr.FailedPrecondition("%v", err)
	}
	if rejectionReason != "" {
		l.RejectionReason = rejectionReason
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, apperr.Internal(err)
	}
	return l, nil
}

func defaultCurrency(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return "USD"
	}
	return strings.ToUpper(c)
}
