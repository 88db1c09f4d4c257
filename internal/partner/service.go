package partner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motormarket/motormarket/internal/common/apperr"
)

// SellerPromoter grants the seller role once an application is approved.
// The accounts service satisfies it.
type SellerPromoter interface {
	PromoteToSeller(ctx context.Context, userID string) error
}

// Service runs the vendor onboarding workflow.
type Service struct {
	repo     *Repo
	promoter SellerPromoter
}

func NewService(repo *Repo, promoter SellerPromoter) *Service {
	return &Service{repo: repo, promoter: promoter}
}

// ApplyInput is the vendor application DTO.
type ApplyInput struct {
	ApplicantID  string
	BusinessName string
	TaxID        string
	Message      string
}

// Apply opens a vendor application. A user may only have one open
// application at a time, and existing partners cannot reapply.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*VendorApplication, error) {
	in.ApplicantID = strings.TrimSpace(in.ApplicantID)
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	if in.ApplicantID == "" {
		return nil, apperr.InvalidArgument("applicant required")
	}
	if in.BusinessName == "" {
		return nil, apperr.InvalidArgument("business name required")
	}

	if _, err := s.repo.GetPartnerByOwner(ctx, in.ApplicantID); err == nil {
		return nil, apperr.AlreadyExists("already a business partner")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	if _, err := s.repo.OpenApplicationByApplicant(ctx, in.ApplicantID); err == nil {
		return nil, apperr.AlreadyExists("application already pending")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	a := &VendorApplication{
		ID:           uuid.NewString(),
		ApplicantID:  in.ApplicantID,
		BusinessName: in.BusinessName,
		TaxID:        strings.TrimSpace(in.TaxID),
		Message:      strings.TrimSpace(in.Message),
		Status:       AppSubmitted,
	}
	if err := s.repo.CreateApplication(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

// StartReview claims an application for a reviewer.
func (s *Service) StartReview(ctx context.Context, id, reviewerID string) (*VendorApplication, error) {
	a, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, AppUnderReview) {
		return nil, apperr.FailedPrecondition("application is %s", a.Status)
	}
	a.Status = AppUnderReview
	a.ReviewerID = strings.TrimSpace(reviewerID)
	if err := s.repo.UpdateApplication(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

// Approve finishes the workflow: the application closes, a partner row is
// created for the applicant and the seller role is granted.
func (s *Service) Approve(ctx context.Context, id, reviewerID, note string) (*VendorApplication, *BusinessPartner, error) {
	a, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !CanTransition(a.Status, AppApproved) {
		return nil, nil, apperr.FailedPrecondition("application is %s", a.Status)
	}

	p := &BusinessPartner{
		ID:           uuid.NewString(),
		OwnerUserID:  a.ApplicantID,
		BusinessName: a.BusinessName,
		TaxID:        a.TaxID,
		Tier:         TierStandard,
		Active:       true,
	}
	if err := s.repo.CreatePartner(ctx, p); err != nil {
		return nil, nil, apperr.Internal(err)
	}

	now := time.Now()
	a.Status = AppApproved
	a.ReviewerID = strings.TrimSpace(reviewerID)
	a.DecisionNote = strings.TrimSpace(note)
	a.DecidedAt = &now
	if err := s.repo.UpdateApplication(ctx, a); err != nil {
		return nil, nil, apperr.Internal(err)
	}

	if s.promoter != nil {
		if err := s.promoter.PromoteToSeller(ctx, a.ApplicantID); err != nil {
			return nil, nil, err
		}
	}
	return a, p, nil
}

// Reject closes the application; a note is required so the applicant knows
// why.
func (s *Service) Reject(ctx context.Context, id, reviewerID, note string) (*VendorApplication, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperr.InvalidArgument("decision note required")
	}
	a, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, AppRejected) {
		return nil, apperr.FailedPrecondition("application is %s", a.Status)
	}
	now := time.Now()
	a.Status = AppRejected
	a.ReviewerID = strings.TrimSpace(reviewerID)
	a.DecisionNote = note
	a.DecidedAt = &now
	if err := s.repo.UpdateApplication(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

func (s *Service) GetApplication(ctx context.Context, id string) (*VendorApplication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.InvalidArgument("id required")
	}
	a, err := s.repo.GetApplication(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("application not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

func (s *Service) ListApplications(ctx context.Context, status ApplicationStatus, offset, limit int) ([]VendorApplication, int64, error) {
	apps, total, err := s.repo.ListApplications(ctx, status, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return apps, total, nil
}

func (s *Service) GetPartner(ctx context.Context, id string) (*BusinessPartner, error) {
	p, err := s.repo.GetPartner(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("partner not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// PartnerByOwner looks a partner up via the owning account. Used by the
// payment layer to attribute commissions.
func (s *Service) PartnerByOwner(ctx context.Context, ownerUserID string) (*BusinessPartner, error) {
	p, err := s.repo.GetPartnerByOwner(ctx, ownerUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("partner not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *Service) ListPartners(ctx context.Context, offset, limit int) ([]BusinessPartner, int64, error) {
	partners, total, err := s.repo.ListPartners(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return partners, total, nil
}

// SetTier changes a partner's commercial tier.
func (s *Service) SetTier(ctx context.Context, id string, tier Tier) (*BusinessPartner, error) {
	if !ValidTier(tier) {
		return nil, apperr.InvalidArgument("unknown tier %q", tier)
	}
	p, err := s.GetPartner(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Tier = tier
	if err := s.repo.UpdatePartner(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *Service) CountPartners(ctx context.Context) (int64, error) {
	return s.repo.CountPartners(ctx)
}

func (s *Service) CountOpenApplications(ctx context.Context) (int64, error) {
	submitted, err := s.repo.CountApplicationsByStatus(ctx, AppSubmitted)
	if err != nil {
		return 0, err
	}
	reviewing, err := s.repo.CountApplicationsByStatus(ctx, AppUnderReview)
	if err != nil {
		return 0, err
	}
	return submitted + reviewing, nil
}
