package examples

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func sampleExample() Example {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return Example{
		ID:         "ex-1",
		ShortID:    "EX-ABCDEF",
		Actor:      "Associate",
		Goal:       "file",
		EntryPoint: "portal",
		Actions:    "click",
		Error:      "timeout",
		Outcome:    "retry",
		CreatedBy:  "user-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	ex := sampleExample()

	mock.ExpectExec("INSERT INTO examples").
		WithArgs(ex.ID, ex.ShortID, nil, ex.Actor, ex.Goal, ex.EntryPoint, ex.Actions, ex.Error, ex.Outcome, ex.CreatedBy, ex.CreatedAt, ex.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.Create(context.Background(), ex); !errors.Is(err, ErrShortIDTaken) {
		t.Fatalf("expected ErrShortIDTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateManyRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	first := sampleExample()
	second := sampleExample()
	second.ID = "ex-2"
	second.ShortID = "EX-ZZZZZZ"

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO examples").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO examples").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	if err := repo.CreateMany(context.Background(), []Example{first, second}); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateManyCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO examples").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.CreateMany(context.Background(), []Example{sampleExample()}); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("FROM examples").WithArgs("missing", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.Get(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	ex := sampleExample()
	rows := sqlmock.NewRows([]string{"id", "short_id", "project_id", "actor", "goal", "entry_point", "actions", "error", "outcome", "created_by", "created_at", "updated_at"}).
		AddRow(ex.ID, ex.ShortID, "p1", ex.Actor, ex.Goal, ex.EntryPoint, ex.Actions, ex.Error, ex.Outcome, ex.CreatedBy, ex.CreatedAt, ex.UpdatedAt)
	mock.ExpectQuery("WHERE created_by = \\$1").WithArgs("user-1", "p1", 10, 0).WillReturnRows(rows)

	items, err := repo.List(context.Background(), "user-1", "p1", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ProjectID != "p1" || items[0].ShortID != ex.ShortID {
		t.Fatalf("unexpected items %#v", items)
	}
}

func TestPGRepoDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("DELETE FROM examples").WithArgs("ex-1", "user-2").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "user-2", "ex-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateScopesToCreator(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	ex := sampleExample()
	ex.CreatedBy = "user-2"
	mock.ExpectExec("WHERE id = \\$1 AND created_by = \\$10").
		WithArgs(ex.ID, nil, ex.Actor, ex.Goal, ex.EntryPoint, ex.Actions, ex.Error, ex.Outcome, ex.UpdatedAt, "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), ex); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
