package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/metrics"
)

type Service struct {
	repo *Repo

	// OnRejected, when set, runs after the engine rejects a submission.
	// The notification layer hooks in here.
	OnRejected func(ctx context.Context, rv *Review)
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// SubmitInput is the review submission DTO.
type SubmitInput struct {
	TargetType TargetType
	TargetID   string
	AuthorID   string
	Title      string
	Content    string
	Pros       string
	Cons       string
	Rating     int
}

// Submit runs the moderation engine and persists the review with the
// computed status. The engine's verdict is returned alongside the row so
// the caller can audit it.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Review, ModerationResult, error) {
	var zero ModerationResult
	if !ValidTarget(in.TargetType) {
		return nil, zero, apperr.InvalidArgument("unknown target type %q", in.TargetType)
	}
	if strings.TrimSpace(in.TargetID) == "" {
		return nil, zero, apperr.InvalidArgument("target_id required")
	}
	if strings.TrimSpace(in.AuthorID) == "" {
		return nil, zero, apperr.InvalidArgument("author required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, zero, apperr.InvalidArgument("rating must be 1..5")
	}

	recent, err := s.repo.CountByAuthorSince(ctx, in.AuthorID, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, zero, apperr.Internal(err)
	}
	prior, err := s.repo.RecentContentsByAuthor(ctx, in.AuthorID, 10)
	if err != nil {
		return nil, zero, apperr.Internal(err)
	}

	verdict := Moderate(ModerationInput{
		Title:         in.Title,
		Content:       in.Content,
		Pros:          in.Pros,
		Cons:          in.Cons,
		Rating:        in.Rating,
		RecentCount:   int(recent),
		PriorContents: prior,
	})

	rv := &Review{
		ID:              uuid.NewString(),
		TargetType:      in.TargetType,
		TargetID:        strings.TrimSpace(in.TargetID),
		AuthorID:        strings.TrimSpace(in.AuthorID),
		Title:           strings.TrimSpace(in.Title),
		Content:         strings.TrimSpace(in.Content),
		Pros:            strings.TrimSpace(in.Pros),
		Cons:            strings.TrimSpace(in.Cons),
		Rating:          in.Rating,
		Status:          verdict.Status,
		ModerationScore: verdict.Score,
		Flags:           strings.Join(verdict.Flags, ","),
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, zero, apperr.Internal(err)
	}

	metrics.ModerationDecisions.WithLabelValues(string(verdict.Status)).Inc()
	if verdict.Status == StatusRejected && s.OnRejected != nil {
		s.OnRejected(ctx, rv)
	}
	return rv, verdict, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("review not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rv, nil
}

// ListByTarget pages a target's approved reviews. Admin surfaces pass
// other statuses through ListByTargetAny.
func (s *Service) ListByTarget(ctx context.Context, tt TargetType, targetID string, offset, limit int) ([]Review, int64, error) {
	if !ValidTarget(tt) {
		return nil, 0, apperr.InvalidArgument("unknown target type %q", tt)
	}
	reviews, total, err := s.repo.ListByTarget(ctx, tt, targetID, StatusApproved, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return reviews, total, nil
}

func (s *Service) ListByTargetAny(ctx context.Context, tt TargetType, targetID string, status Status, offset, limit int) ([]Review, int64, error) {
	reviews, total, err := s.repo.ListByTarget(ctx, tt, targetID, status, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return reviews, total, nil
}

func (s *Service) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]Review, int64, error) {
	reviews, total, err := s.repo.ListByAuthor(ctx, authorID, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return reviews, total, nil
}

// ModerateOverride lets a moderator force a status regardless of the
// engine's verdict.
func (s *Service) ModerateOverride(ctx context.Context, id string, status Status) (*Review, error) {
	switch status {
	case StatusApproved, StatusPending, StatusRejected:
	default:
		return nil, apperr.InvalidArgument("unknown status %q", status)
	}
	rv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rv.Status = status
	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, apperr.Internal(err)
	}
	return rv, nil
}

func (s *Service) AverageRating(ctx context.Context, tt TargetType, targetID string) (float64, error) {
	if !ValidTarget(tt) {
		return 0, apperr.InvalidArgument("unknown target type %q", tt)
	}
	avg, err := s.repo.AverageRating(ctx, tt, targetID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return avg, nil
}

func (s *Service) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, StatusPending)
}
