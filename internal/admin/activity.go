package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog is one audit row: who did what to which object.
type ActivityLog struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ActorID    string    `gorm:"index;size:36;not null" json:"actor_id"`
	Action     string    `gorm:"size:64;not null" json:"action"`
	ObjectType string    `gorm:"size:32" json:"object_type,omitempty"`
	ObjectID   string    `gorm:"size:36" json:"object_id,omitempty"`
	Detail     string    `gorm:"size:512" json:"detail,omitempty"`
	IP         string    `gorm:"size:45" json:"ip,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type ActivityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

// Record appends an audit row. Audit writes never block the action they
// describe, so the caller usually ignores the returned error after logging.
func (r *ActivityRepo) Record(ctx context.Context, actorID, action, objectType, objectID, detail, ip string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(&ActivityLog{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		Detail:     detail,
		IP:         ip,
	}).Error
}

func (r *ActivityRepo) List(ctx context.Context, actorID string, offset, limit int) ([]ActivityLog, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	q := db.Model(&ActivityLog{})
	if actorID != "" {
		q = q.Where("actor_id = ?", actorID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []ActivityLog
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *ActivityRepo) Recent(ctx context.Context, limit int) ([]ActivityLog, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 10
	}
	var logs []ActivityLog
	err := db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
