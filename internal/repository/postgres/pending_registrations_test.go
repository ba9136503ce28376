package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/repository"
)

func testPending(createdAt time.Time) domain.PendingRegistration {
	return domain.PendingRegistration{
		ID:           "pend-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "argon2id$...",
		Role:         domain.AccountRoleUser,
		CreatedAt:    createdAt,
	}
}

func uniqueViolation(constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: constraint}
}

func TestPendingRegistrationRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPendingRegistrationRepository(mock)

	pending := testPending(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	mock.ExpectExec(`INSERT INTO auth\.pending_registrations`).
		WithArgs(
			pending.ID,
			pending.Username,
			pending.Email,
			pending.PasswordHash,
			pending.Role,
			pending.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), pending); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPendingRegistrationRepository_CreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPendingRegistrationRepository(mock)

	pending := testPending(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	mock.ExpectExec(`INSERT INTO auth\.pending_registrations`).
		WithArgs(
			pending.ID,
			pending.Username,
			pending.Email,
			pending.PasswordHash,
			pending.Role,
			pending.CreatedAt,
		).
		WillReturnError(uniqueViolation("pending_registrations_email_key"))

	if err := repo.Create(context.Background(), pending); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPendingRegistrationRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPendingRegistrationRepository(mock)

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(pendingColumns).AddRow(
		"pend-1", "alice", "alice@example.com", "argon2id$...", domain.AccountRoleUser, createdAt,
	)

	mock.ExpectQuery(`SELECT .*FROM auth\.pending_registrations`).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	pending, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if pending.ID != "pend-1" || pending.Username != "alice" {
		t.Fatalf("unexpected pending row: %+v", pending)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPendingRegistrationRepository_GetByEmailNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPendingRegistrationRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM auth\.pending_registrations`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPendingRegistrationRepository_DeleteOlderThan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPendingRegistrationRepository(mock)

	cutoff := time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM auth\.pending_registrations`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := repo.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed rows, got %d", removed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPendingRegistrationRepository_Promote(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPendingRegistrationRepository(mock)

	createdAt := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)
	account := domain.Account{
		ID:           "pend-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "argon2id$...",
		Role:         domain.AccountRoleUser,
		Verified:     true,
		CreatedAt:    createdAt,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO auth\.accounts`).
		WithArgs(
			account.ID,
			account.Username,
			account.Email,
			account.PasswordHash,
			account.Role,
			account.Verified,
			account.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM auth\.pending_registrations`).
		WithArgs("alice@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	if err := repo.Promote(context.Background(), "alice@example.com", account); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPendingRegistrationRepository_PromoteRollsBackOnDuplicateAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPendingRegistrationRepository(mock)

	account := domain.Account{
		ID:           "pend-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "argon2id$...",
		Role:         domain.AccountRoleUser,
		Verified:     true,
		CreatedAt:    time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
	}

	// The account insert fails, so the pending row is never deleted and the
	// transaction rolls back. The caller sees the duplicate sentinel.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO auth\.accounts`).
		WithArgs(
			account.ID,
			account.Username,
			account.Email,
			account.PasswordHash,
			account.Role,
			account.Verified,
			account.CreatedAt,
		).
		WillReturnError(uniqueViolation("accounts_email_key"))
	mock.ExpectRollback()

	if err := repo.Promote(context.Background(), "alice@example.com", account); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
