package partner

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

func (r *Repo) CreateApplication(ctx context.Context, a *VendorApplication) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(a).Error
}

func (r *Repo) UpdateApplication(ctx context.Context, a *VendorApplication) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(a).Error
}

func (r *Repo) GetApplication(ctx context.Context, id string) (*VendorApplication, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var a VendorApplication
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// OpenApplicationByApplicant returns the applicant's pending application,
// or gorm.ErrRecordNotFound when none is open.
func (r *Repo) OpenApplicationByApplicant(ctx context.Context, applicantID string) (*VendorApplication, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var a VendorApplication
	err := db.Where("applicant_id = ? AND status IN ?", applicantID,
		[]ApplicationStatus{AppSubmitted, AppUnderReview}).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) ListApplications(ctx context.Context, status ApplicationStatus, offset, limit int) ([]VendorApplication, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	q := db.Model(&VendorApplication{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var apps []VendorApplication
	if err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *Repo) CountApplicationsByStatus(ctx context.Context, status ApplicationStatus) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	err := db.Model(&VendorApplication{}).Where("status = ?", status).Count(&total).Error
	return total, err
}

func (r *Repo) CreatePartner(ctx context.Context, p *BusinessPartner) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(p).Error
}

func (r *Repo) UpdatePartner(ctx context.Context, p *BusinessPartner) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(p).Error
}

func (r *Repo) GetPartner(ctx context.Context, id string) (*BusinessPartner, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p BusinessPartner
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetPartnerByOwner(ctx context.Context, ownerUserID string) (*BusinessPartner, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p BusinessPartner
	if err := db.Where("owner_user_id = ?", ownerUserID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListPartners(ctx context.Context, offset, limit int) ([]BusinessPartner, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	var total int64
	if err := db.Model(&BusinessPartner{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var partners []BusinessPartner
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&partners).Error; err != nil {
		return nil, 0, err
	}
	return partners, total, nil
}

func (r *Repo) CountPartners(ctx context.Context) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	err := db.Model(&BusinessPartner{}).Count(&total).Error
	return total, err
}
