package message

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/listing"
)

type fakeListings struct {
	byID map[string]*listing.Listing
}

func (f *fakeListings) Get(_ context.Context, id string) (*listing.Listing, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("listing not found")
	}
	return l, nil
}

func newMockService(t *testing.T, listings ListingSource) (*Service, sqlmock.Sqlmock) {
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
	return NewService(NewRepo(db), listings), mock
}

func TestSendInquiryRules(t *testing.T) {
	listings := &fakeListings{byID: map[string]*listing.Listing{
		"live":  {ID: "live", SellerID: "seller-1", Status: listing.StatusApproved},
		"draft": {ID: "draft", SellerID: "seller-1", Status: listing.StatusDraft},
	}}
	svc, _ := newMockService(t, listings)

	if _, err := svc.SendInquiry(context.Background(), "draft", "buyer-1", "still available?"); !apperr.Is(err, apperr.CodeFailedPrecondition) {
		t.Fatalf("draft listing: want FAILED_PRECONDITION, got %v", err)
	}
	if _, err := svc.SendInquiry(context.Background(), "live", "seller-1", "hi me"); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("self inquiry: want INVALID_ARGUMENT, got %v", err)
	}
	if _, err := svc.SendInquiry(context.Background(), "live", "buyer-1", "   "); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("empty body: want INVALID_ARGUMENT, got %v", err)
	}
	if _, err := svc.SendInquiry(context.Background(), "gone", "buyer-1", "hello"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("missing listing: want NOT_FOUND, got %v", err)
	}
}

func TestSendInquiryStoresAndNotifies(t *testing.T) {
	listings := &fakeListings{byID: map[string]*listing.Listing{
		"live": {ID: "live", SellerID: "seller-1", Status: listing.StatusApproved},
	}}
	svc, mock := newMockService(t, listings)

	var notified *Inquiry
	svc.OnInquiry = func(_ context.Context, i *Inquiry) { notified = i }

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `inquiries`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	i, err := svc.SendInquiry(context.Background(), "live", "buyer-1", "still available?")
	if err != nil {
		t.Fatalf("SendInquiry: %v", err)
	}
	if i.SellerID != "seller-1" || i.SenderID != "buyer-1" {
		t.Fatalf("unexpected inquiry: %+v", i)
	}
	if notified == nil || notified.ID != i.ID {
		t.Fatalf("OnInquiry hook not fired: %+v", notified)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSendAdminMessageValidation(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.SendAdminMessage(context.Background(), "admin", "u-1", "", "body"); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
	if _, err := svc.SendAdminMessage(context.Background(), "admin", "", "subject", "body"); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
}
