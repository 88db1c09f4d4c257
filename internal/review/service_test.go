package review

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/motormarket/motormarket/internal/common/apperr"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
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
	return NewService(NewRepo(db)), mock
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(nil)

	cases := []struct {
		name string
		in   SubmitInput
	}{
		{"bad target type", SubmitInput{TargetType: "garage", TargetID: "t", AuthorID: "u", Rating: 4}},
		{"missing target", SubmitInput{TargetType: TargetListing, AuthorID: "u", Rating: 4}},
		{"missing author", SubmitInput{TargetType: TargetListing, TargetID: "t", Rating: 4}},
		{"rating too low", SubmitInput{TargetType: TargetListing, TargetID: "t", AuthorID: "u", Rating: 0}},
		{"rating too high", SubmitInput{TargetType: TargetListing, TargetID: "t", AuthorID: "u", Rating: 6}},
	}
	for _, tc := range cases {
		if _, _, err := svc.Submit(context.Background(), tc.in); !apperr.Is(err, apperr.CodeInvalidArgument) {
			t.Fatalf("%s: want INVALID_ARGUMENT, got %v", tc.name, err)
		}
	}
}

func TestSubmitPersistsVerdict(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `reviews`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT `content` FROM `reviews`").
		WillReturnRows(sqlmock.NewRows([]string{"content"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `reviews`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rv, verdict, err := svc.Submit(context.Background(), SubmitInput{
		TargetType: TargetListing,
		TargetID:   "l-1",
		AuthorID:   "u-1",
		Title:      "Happy with the purchase",
		Content:    "The car was in solid condition and the dealer answered all my questions quickly.",
		Rating:     5,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rv.Status != StatusApproved || rv.ModerationScore != verdict.Score {
		t.Fatalf("verdict not persisted: review=%+v verdict=%+v", rv, verdict)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSubmitRejectedFiresHook(t *testing.T) {
	svc, mock := newMockService(t)

	var rejected *Review
	svc.OnRejected = func(_ context.Context, rv *Review) { rejected = rv }

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `reviews`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT `content` FROM `reviews`").
		WillReturnRows(sqlmock.NewRows([]string{"content"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `reviews`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rv, _, err := svc.Submit(context.Background(), SubmitInput{
		TargetType: TargetDealer,
		TargetID:   "d-1",
		AuthorID:   "u-1",
		Content:    "x'; DROP TABLE reviews; -- <script>alert(1)</script>",
		Rating:     3,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rv.Status != StatusRejected {
		t.Fatalf("want rejected, got %s", rv.Status)
	}
	if rejected == nil || rejected.ID != rv.ID {
		t.Fatalf("OnRejected hook not fired")
	}
}
