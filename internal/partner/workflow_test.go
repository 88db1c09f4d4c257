package partner

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/motormarket/motormarket/internal/common/apperr"
)

func TestApplicationTransitions(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{AppSubmitted, AppUnderReview, true},
		{AppSubmitted, AppApproved, false},
		{AppSubmitted, AppRejected, false},
		{AppUnderReview, AppApproved, true},
		{AppUnderReview, AppRejected, true},
		{AppApproved, AppUnderReview, false},
		{AppRejected, AppUnderReview, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
	if !AppSubmitted.Open() || !AppUnderReview.Open() {
		t.Fatal("submitted/under_review should be open")
	}
	if AppApproved.Open() || AppRejected.Open() {
		t.Fatal("decided applications should not be open")
	}
}

func TestRejectRequiresNote(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.Reject(context.Background(), "a-1", "admin", ""); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
}

type fakePromoter struct {
	promoted []string
}

func (f *fakePromoter) PromoteToSeller(_ context.Context, userID string) error {
	f.promoted = append(f.promoted, userID)
	return nil
}

func newMockService(t *testing.T, promoter SellerPromoter) (*Service, sqlmock.Sqlmock) {
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
	return NewService(NewRepo(db), promoter), mock
}

func applicationRow(id string, status ApplicationStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "applicant_id", "business_name", "status", "created_at"}).
		AddRow(id, "u-1", "Golf Motors", string(status), time.Now())
}

func TestApproveCreatesPartnerAndPromotes(t *testing.T) {
	promoter := &fakePromoter{}
	svc, mock := newMockService(t, promoter)

	mock.ExpectQuery("SELECT \\* FROM `vendor_applications` WHERE id = \\?").
		WillReturnRows(applicationRow("a-1", AppUnderReview))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `business_partners`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `vendor_applications` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, p, err := svc.Approve(context.Background(), "a-1", "admin-1", "looks good")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if a.Status != AppApproved || a.DecidedAt == nil {
		t.Fatalf("application not closed: %+v", a)
	}
	if p.OwnerUserID != "u-1" || p.Tier != TierStandard || !p.Active {
		t.Fatalf("unexpected partner: %+v", p)
	}
	if len(promoter.promoted) != 1 || promoter.promoted[0] != "u-1" {
		t.Fatalf("applicant not promoted: %v", promoter.promoted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApproveRejectsDecidedApplication(t *testing.T) {
	svc, mock := newMockService(t, nil)

	mock.ExpectQuery("SELECT \\* FROM `vendor_applications` WHERE id = \\?").
		WillReturnRows(applicationRow("a-2", AppRejected))

	if _, _, err := svc.Approve(context.Background(), "a-2", "admin-1", ""); !apperr.Is(err, apperr.CodeFailedPrecondition) {
		t.Fatalf("want FAILED_PRECONDITION, got %v", err)
	}
}

func TestApplyBlocksSecondOpenApplication(t *testing.T) {
	svc, mock := newMockService(t, nil)

	// not a partner yet
	mock.ExpectQuery("SELECT \\* FROM `business_partners` WHERE owner_user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// but an open application exists
	mock.ExpectQuery("SELECT \\* FROM `vendor_applications` WHERE applicant_id = \\?").
		WillReturnRows(applicationRow("a-3", AppSubmitted))

	_, err := svc.Apply(context.Background(), ApplyInput{ApplicantID: "u-1", BusinessName: "Golf Motors"})
	if !apperr.Is(err, apperr.CodeAlreadyExists) {
		t.Fatalf("want ALREADY_EXISTS, got %v", err)
	}
}
