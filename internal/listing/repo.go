package listing

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

func (r *Repo) Create(ctx context.Context, l *Listing) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(l).Error
}

func (r *Repo) Update(ctx context.Context, l *Listing) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(l).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Listing, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var l Listing
	if err := db.Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// SearchFilter narrows a listing search. Zero values mean "no constraint".
type SearchFilter struct {
	SellerID  string
	Status    Status
	Make      string
	Model     string
	City      string
	YearMin   int
	YearMax   int
	PriceMin  int64 // cents
	PriceMax  int64 // cents
	Offset    int
	Limit     int
}

// Search applies the filter with pagination and returns the total count.
func (r *Repo) Search(ctx context.Context, f SearchFilter) ([]Listing, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := db.Model(&Listing{})
	if f.SellerID != "" {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Make != "" {
		q = q.Where("make = ?", f.Make)
	}
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.YearMin > 0 {
		q = q.Where("year >= ?", f.YearMin)
	}
	if f.YearMax > 0 {
		q = q.Where("year <= ?", f.YearMax)
	}
	if f.PriceMin > 0 {
		q = q.Where("price_cents >= ?", f.PriceMin)
	}
	if f.PriceMax > 0 {
		q = q.Where("price_cents <= ?", f.PriceMax)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []Listing
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *Repo) CountByStatus(ctx context.Context, status Status) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	err := db.Model(&Listing{}).Where("status = ?", status).Count(&total).Error
	return total, err
}
