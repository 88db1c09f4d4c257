package notification

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/logger"
	"github.com/motormarket/motormarket/internal/common/mail"
	"github.com/motormarket/motormarket/internal/common/metrics"
	"github.com/motormarket/motormarket/internal/common/middleware"
)

// EmailLookup resolves a user id to an address. Empty address means the
// user gets no email, only the in-app row.
type EmailLookup func(ctx context.Context, userID string) (string, error)

// Service stores notifications and dispatches email copies. Email is
// fire-and-forget: a delivery failure is logged and counted but never
// surfaces to the caller.
type Service struct {
	repo    *Repo
	sender  mail.Sender
	breaker *middleware.CircuitBreaker
	lookup  EmailLookup
	log     logger.Logger

	wg sync.WaitGroup
}

func NewService(repo *Repo, sender mail.Sender, breaker *middleware.CircuitBreaker, lookup EmailLookup, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		sender:  sender,
		breaker: breaker,
		lookup:  lookup,
		log:     log,
	}
}

// Notify writes the in-app row and, when wantEmail is set, sends an email
// copy in the background.
func (s *Service) Notify(ctx context.Context, userID string, kind Kind, subject, body string, wantEmail bool) (*Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.InvalidArgument("user required")
	}
	if strings.TrimSpace(subject) == "" {
		return nil, apperr.InvalidArgument("subject required")
	}

	n := &Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Kind:    kind,
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperr.Internal(err)
	}

	if wantEmail && s.sender != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.dispatchEmail(userID, n.Subject, n.Body)
		}()
	}
	return n, nil
}

// dispatchEmail runs on its own context: the request that produced the
// notification has usually finished by the time the mail goes out.
func (s *Service) dispatchEmail(userID, subject, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	to, err := s.lookup(ctx, userID)
	if err != nil || strings.TrimSpace(to) == "" {
		if err != nil && s.log != nil {
			s.log.Warnf("notification email lookup failed user=%s err=%v", userID, err)
		}
		metrics.EmailsSent.WithLabelValues("skipped").Inc()
		return
	}

	err = s.breaker.Call(ctx, func() error {
		return s.sender.Send(ctx, to, subject, body)
	})
	switch {
	case err == nil:
		metrics.EmailsSent.WithLabelValues("ok").Inc()
	case err == middleware.ErrCircuitOpen:
		metrics.EmailsSent.WithLabelValues("circuit_open").Inc()
		if s.log != nil {
			s.log.Warnf("notification email dropped, mail circuit open user=%s", userID)
		}
	default:
		metrics.EmailsSent.WithLabelValues("error").Inc()
		if s.log != nil {
			s.log.Warnf("notification email failed user=%s err=%v", userID, err)
		}
	}
}

// Flush waits for in-flight email dispatches. Called on shutdown and from
// tests.
func (s *Service) Flush() {
	s.wg.Wait()
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]Notification, int64, error) {
	items, total, err := s.repo.List(ctx, userID, unreadOnly, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return items, total, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
