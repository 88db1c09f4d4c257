package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/logger"
	"github.com/motormarket/motormarket/internal/common/middleware"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string // "to|subject"
	fail bool
}

func (f *fakeSender) Send(_ context.Context, to, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, to+"|"+subject)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newMockService(t *testing.T, sender *fakeSender) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	lookup := func(_ context.Context, userID string) (string, error) {
		if userID == "u-noemail" {
			return "", nil
		}
		return userID + "@example.com", nil
	}
	breaker := middleware.NewCircuitBreaker("mail", 3, time.Minute)
	return NewService(NewRepo(db), sender, breaker, lookup, logger.NewNop()), mock
}

func expectInsert(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func TestNotifyStoresRowAndSendsEmail(t *testing.T) {
	sender := &fakeSender{}
	svc, mock := newMockService(t, sender)
	expectInsert(mock)

	n, err := svc.Notify(context.Background(), "u-1", KindListingApproved, "Listing approved", "Your listing is live.", true)
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	svc.Flush()

	if n.Kind != KindListingApproved || n.Read {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if sender.count() != 1 {
		t.Fatalf("want 1 email, got %d", sender.count())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNotifyWithoutEmailSkipsSender(t *testing.T) {
	sender := &fakeSender{}
	svc, mock := newMockService(t, sender)
	expectInsert(mock)

	if _, err := svc.Notify(context.Background(), "u-1", KindInquiryReceived, "New inquiry", "", false); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	svc.Flush()
	if sender.count() != 0 {
		t.Fatalf("no email expected, got %d", sender.count())
	}
}

func TestNotifyEmailFailureDoesNotPropagate(t *testing.T) {
	sender := &fakeSender{fail: true}
	svc, mock := newMockService(t, sender)
	expectInsert(mock)

	if _, err := svc.Notify(context.Background(), "u-1", KindReviewRejected, "Review rejected", "", true); err != nil {
		t.Fatalf("Notify must not surface email errors: %v", err)
	}
	svc.Flush()
}

func TestNotifyUserWithoutAddress(t *testing.T) {
	sender := &fakeSender{}
	svc, mock := newMockService(t, sender)
	expectInsert(mock)

	if _, err := svc.Notify(context.Background(), "u-noemail", KindAdminNotice, "Notice", "", true); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	svc.Flush()
	if sender.count() != 0 {
		t.Fatalf("no email expected for empty address, got %d", sender.count())
	}
}

func TestNotifyValidation(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Notify(context.Background(), "", KindAdminNotice, "s", "", false); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
	if _, err := svc.Notify(context.Background(), "u-1", KindAdminNotice, " ", "", false); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
}
