package listing

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
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
	return NewRepo(db), mock
}

func TestRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `vehicle_listings`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	l := &Listing{
		ID:       "l-1",
		SellerID: "u-1",
		Title:    "2019 Golf GTI",
		Make:     "Volkswagen",
		Model:    "Golf",
		Year:     2019,
		Status:   StatusDraft,
		Currency: "USD",
	}
	if err := repo.Create(context.Background(), l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "seller_id", "title", "make", "model", "year", "status", "created_at"}).
		AddRow("l-1", "u-1", "2019 Golf GTI", "Volkswagen", "Golf", 2019, "approved", now)
	mock.ExpectQuery("SELECT \\* FROM `vehicle_listings` WHERE id = \\?").
		WithArgs("l-1", 1).
		WillReturnRows(rows)

	l, err := repo.GetByID(context.Background(), "l-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if l.ID != "l-1" || l.Status != StatusApproved {
		t.Fatalf("unexpected listing: %+v", l)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT \\* FROM `vehicle_listings` WHERE id = \\?").
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "missing"); err != gorm.ErrRecordNotFound {
		t.Fatalf("want gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestRepoSearchAppliesFilters(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `vehicle_listings`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	rows := sqlmock.NewRows([]string{"id", "seller_id", "make", "year", "status"}).
		AddRow("l-2", "u-1", "Toyota", 2021, "approved")
	mock.ExpectQuery("SELECT \\* FROM `vehicle_listings` WHERE status = \\? AND make = \\? AND year >= \\?").
		WithArgs("approved", "Toyota", 2020, 20).
		WillReturnRows(rows)

	listings, total, err := repo.Search(context.Background(), SearchFilter{
		Status:  StatusApproved,
		Make:    "Toyota",
		YearMin: 2020,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(listings) != 1 || listings[0].ID != "l-2" {
		t.Fatalf("unexpected result: total=%d listings=%+v", total, listings)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepoCountByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `vehicle_listings` WHERE status = \\?").
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(4))

	n, err := repo.CountByStatus(context.Background(), StatusPending)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if n != 4 {
		t.Fatalf("want 4, got %d", n)
	}
}

func TestRepoNilDB(t *testing.T) {
	var repo *Repo
	if err := repo.Create(context.Background(), &Listing{}); err == nil {
		t.Fatal("want error on nil repo")
	}
}
