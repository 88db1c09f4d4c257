package message

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

func (r *Repo) CreateInquiry(ctx context.Context, i *Inquiry) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(i).Error
}

func (r *Repo) GetInquiry(ctx context.Context, id string) (*Inquiry, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var i Inquiry
	if err := db.Where("id = ?", id).First(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *Repo) ListInquiriesForSeller(ctx context.Context, sellerID string, offset, limit int) ([]Inquiry, int64, error) {
	return r.listInquiries(ctx, "seller_id = ?", sellerID, offset, limit)
}

func (r *Repo) ListInquiriesForListing(ctx context.Context, listingID string, offset, limit int) ([]Inquiry, int64, error) {
	return r.listInquiries(ctx, "listing_id = ?", listingID, offset, limit)
}

func (r *Repo) listInquiries(ctx context.Context, cond, arg string, offset, limit int) ([]Inquiry, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	q := db.Model(&Inquiry{}).Where(cond, arg)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var inquiries []Inquiry
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&inquiries).Error; err != nil {
		return nil, 0, err
	}
	return inquiries, total, nil
}

func (r *Repo) MarkInquiryRead(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Model(&Inquiry{}).Where("id = ?", id).Update("read", true).Error
}

func (r *Repo) CreateAdminMessage(ctx context.Context, m *AdminMessage) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(m).Error
}

func (r *Repo) ListAdminMessages(ctx context.Context, recipientID string, offset, limit int) ([]AdminMessage, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	q := db.Model(&AdminMessage{}).Where("recipient_id = ?", recipientID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var msgs []AdminMessage
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *Repo) MarkAdminMessageRead(ctx context.Context, id, recipientID string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Model(&AdminMessage{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true).Error
}
