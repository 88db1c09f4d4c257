package review

import (
	"context"
	"fmt"
	"time"

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

func (r *Repo) Create(ctx context.Context, rv *Review) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(rv).Error
}

func (r *Repo) Update(ctx context.Context, rv *Review) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(rv).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Review, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rv Review
	if err := db.Where("id = ?", id).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

// ListByTarget pages reviews for one target, optionally restricted to a
// status.
func (r *Repo) ListByTarget(ctx context.Context, tt TargetType, targetID string, status Status, offset, limit int) ([]Review, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	q := db.Model(&Review{}).Where("target_type = ? AND target_id = ?", tt, targetID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reviews []Review
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *Repo) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]Review, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	q := db.Model(&Review{}).Where("author_id = ?", authorID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reviews []Review
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// CountByAuthorSince counts the author's submissions after t, feeding the
// moderation frequency penalty.
func (r *Repo) CountByAuthorSince(ctx context.Context, authorID string, t time.Time) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var n int64
	err := db.Model(&Review{}).
		Where("author_id = ? AND created_at >= ?", authorID, t).
		Count(&n).Error
	return n, err
}

// RecentContentsByAuthor loads the author's latest review texts for the
// duplicate check.
func (r *Repo) RecentContentsByAuthor(ctx context.Context, authorID string, limit int) ([]string, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 10
	}
	var contents []string
	err := db.Model(&Review{}).
		Where("author_id = ?", authorID).
		Order("created_at DESC").Limit(limit).
		Pluck("content", &contents).Error
	return contents, err
}

func (r *Repo) CountByStatus(ctx context.Context, status Status) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var n int64
	err := db.Model(&Review{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

// AverageRating computes the mean approved rating for a target; zero when
// there are none.
func (r *Repo) AverageRating(ctx context.Context, tt TargetType, targetID string) (float64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var avg *float64
	err := db.Model(&Review{}).
		Where("target_type = ? AND target_id = ? AND status = ?", tt, targetID, StatusApproved).
		Select("AVG(rating)").Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
