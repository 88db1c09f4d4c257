package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/partner"
)

// PartnerSource resolves the partner owning a seller account. The partner
// service satisfies it.
type PartnerSource interface {
	PartnerByOwner(ctx context.Context, ownerUserID string) (*partner.BusinessPartner, error)
}

type Service struct {
	repo     *Repo
	partners PartnerSource
}

func NewService(repo *Repo, partners PartnerSource) *Service {
	return &Service{repo: repo, partners: partners}
}

// RuleInput is the commission rule upsert DTO. Empty ID creates a rule.
type RuleInput struct {
	ID           string
	Tier         string
	Category     string
	PercentBps   int
	FlatFeeCents int64
	MinCents     int64
	MaxCents     int64
	Active       bool
}

// UpsertRule creates or replaces a commission rule.
func (s *Service) UpsertRule(ctx context.Context, in RuleInput) (*CommissionRule, error) {
	in.Tier = strings.ToLower(strings.TrimSpace(in.Tier))
	if !partner.ValidTier(partner.Tier(in.Tier)) {
		return nil, apperr.InvalidArgument("unknown tier %q", in.Tier)
	}
	if in.PercentBps < 0 || in.PercentBps > 10000 {
		return nil, apperr.InvalidArgument("percent_bps out of range")
	}
	if in.FlatFeeCents < 0 || in.MinCents < 0 || in.MaxCents < 0 {
		return nil, apperr.InvalidArgument("fees must not be negative")
	}
	if in.MaxCents > 0 && in.MinCents > in.MaxCents {
		return nil, apperr.InvalidArgument("min exceeds max")
	}

	rule := &CommissionRule{
		ID:           strings.TrimSpace(in.ID),
		Tier:         in.Tier,
		Category:     strings.ToLower(strings.TrimSpace(in.Category)),
		PercentBps:   in.PercentBps,
		FlatFeeCents: in.FlatFeeCents,
		MinCents:     in.MinCents,
		MaxCents:     in.MaxCents,
		Active:       in.Active,
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := s.repo.SaveRule(ctx, rule); err != nil {
		return nil, apperr.Internal(err)
	}
	return rule, nil
}

func (s *Service) ListRules(ctx context.Context) ([]CommissionRule, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rules, nil
}

// RecordSale books the commission for a sold listing. Sellers without a
// partner row are private sellers and owe nothing, so no payment is written.
// With a partner but no matching rule the sale is recorded as waived.
func (s *Service) RecordSale(ctx context.Context, sellerID, listingID string, salePriceCents int64, currency, category string) (*VendorPayment, error) {
	if salePriceCents < 0 {
		return nil, apperr.InvalidArgument("sale price must not be negative")
	}

	p, err := s.partners.PartnerByOwner(ctx, sellerID)
	if apperr.Is(err, apperr.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rules, err := s.repo.ActiveRulesByTier(ctx, string(p.Tier))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	rule := PickRule(rules, string(p.Tier), strings.ToLower(strings.TrimSpace(category)))
	fee := Commission(rule, salePriceCents)

	status := PaymentPending
	if rule == nil || fee == 0 {
		status = PaymentWaived
	}

	vp := &VendorPayment{
		ID:              uuid.NewString(),
		PartnerID:       p.ID,
		ListingID:       listingID,
		SalePriceCents:  salePriceCents,
		CommissionCents: fee,
		Currency:        defaultCurrency(currency),
		Status:          status,
	}
	if err := s.repo.CreatePayment(ctx, vp); err != nil {
		return nil, apperr.Internal(err)
	}
	return vp, nil
}

// MarkInvoiced moves a pending payment into the invoiced state.
func (s *Service) MarkInvoiced(ctx context.Context, id string) (*VendorPayment, error) {
	return s.setStatus(ctx, id, PaymentInvoiced, []PaymentStatus{PaymentPending})
}

// MarkPaid settles a pending or invoiced payment.
func (s *Service) MarkPaid(ctx context.Context, id string) (*VendorPayment, error) {
	vp, err := s.setStatus(ctx, id, PaymentPaid, []PaymentStatus{PaymentPending, PaymentInvoiced})
	if err != nil {
		return nil, err
	}
	return vp, nil
}

func (s *Service) setStatus(ctx context.Context, id string, to PaymentStatus, from []PaymentStatus) (*VendorPayment, error) {
	vp, err := s.repo.GetPayment(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("payment not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	allowed := false
	for _, f := range from {
		if vp.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.FailedPrecondition("payment is %s", vp.Status)
	}
	vp.Status = to
	if to == PaymentPaid {
		now := time.Now()
		vp.PaidAt = &now
	}
	if err := s.repo.UpdatePayment(ctx, vp); err != nil {
		return nil, apperr.Internal(err)
	}
	return vp, nil
}

func (s *Service) ListPayments(ctx context.Context, f PaymentFilter) ([]VendorPayment, int64, error) {
	payments, total, err := s.repo.ListPayments(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return payments, total, nil
}

func defaultCurrency(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return "USD"
	}
	return strings.ToUpper(c)
}
