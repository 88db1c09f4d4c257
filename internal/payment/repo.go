package payment

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) SaveRule(ctx context.Context, rule *CommissionRule) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(rule).Error
}

func (r *Repo) GetRule(ctx context.Context, id string) (*CommissionRule, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rule CommissionRule
	if err := db.Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *Repo) ListRules(ctx context.Context) ([]CommissionRule, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rules []CommissionRule
	if err := db.Order("tier, category").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ActiveRulesByTier loads the active rules for one tier.
func (r *Repo) ActiveRulesByTier(ctx context.Context, tier string) ([]CommissionRule, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rules []CommissionRule
	if err := db.Where("tier = ? AND active = ?", tier, true).Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *Repo) CreatePayment(ctx context.Context, p *VendorPayment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(p).Error
}

func (r *Repo) UpdatePayment(ctx context.Context, p *VendorPayment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(p).Error
}

func (r *Repo) GetPayment(ctx context.Context, id string) (*VendorPayment, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p VendorPayment
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PaymentFilter narrows a payments page. Zero values mean "no constraint".
type PaymentFilter struct {
	PartnerID string
	Status    PaymentStatus
	Offset    int
	Limit     int
}

func (r *Repo) ListPayments(ctx context.Context, f PaymentFilter) ([]VendorPayment, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	q := db.Model(&VendorPayment{})
	if f.PartnerID != "" {
		q = q.Where("partner_id = ?", f.PartnerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payments []VendorPayment
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
