package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/core/port"
	"github.com/arklim/social-platform-auth/internal/repository"
)

const pendingTable = "auth.pending_registrations"

var pendingColumns = []string{
	"id",
	"username",
	"email",
	"password_hash",
	"role",
	"created_at",
}

// PendingRegistrationRepository implements port.PendingRegistrationRepository
// using PostgreSQL.
type PendingRegistrationRepository struct {
	pool    pgPool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPendingRegistrationRepository constructs a repository backed by any
// executor that satisfies pgExecutor. Promote needs an executor that can also
// open transactions.
func NewPendingRegistrationRepository(exec pgExecutor) *PendingRegistrationRepository {
	repo := &PendingRegistrationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(pgPool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *PendingRegistrationRepository) WithTx(tx pgx.Tx) *PendingRegistrationRepository {
	if tx == nil {
		return r
	}
	return &PendingRegistrationRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a provisional registration. Email and username are unique
// among pending rows; collisions surface as duplicate sentinels.
func (r *PendingRegistrationRepository) Create(ctx context.Context, pending domain.PendingRegistration) error {
	stmt, args, err := r.builder.Insert(pendingTable).
		Columns(pendingColumns...).
		Values(
			pending.ID,
			pending.Username,
			pending.Email,
			pending.PasswordHash,
			pending.Role,
			pending.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert pending registration sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert pending registration: %w", err)
	}

	return nil
}

// GetByEmail retrieves the pending registration for the email.
func (r *PendingRegistrationRepository) GetByEmail(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	stmt, args, err := r.builder.
		Select(pendingColumns...).
		From(pendingTable).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select pending registration sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var pending domain.PendingRegistration
	if err := row.Scan(
		&pending.ID,
		&pending.Username,
		&pending.Email,
		&pending.PasswordHash,
		&pending.Role,
		&pending.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan pending registration: %w", err)
	}

	return &pending, nil
}

// DeleteByEmail removes the pending registration for the email, if any.
func (r *PendingRegistrationRepository) DeleteByEmail(ctx context.Context, email string) error {
	stmt, args, err := r.builder.Delete(pendingTable).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete pending registration sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}

	return nil
}

// DeleteOlderThan removes pending rows created before the cutoff and returns
// how many were reclaimed. Safe to re-run; deletes are idempotent.
func (r *PendingRegistrationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	stmt, args, err := r.builder.Delete(pendingTable).
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete stale pending sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete stale pending registrations: %w", err)
	}

	return ct.RowsAffected(), nil
}

// Promote inserts the verified account and deletes the pending row inside a
// single transaction, so a crash cannot leave the email with neither record.
// A unique violation on the account insert rolls everything back and surfaces
// as a duplicate sentinel for the caller's idempotency handling.
func (r *PendingRegistrationRepository) Promote(ctx context.Context, email string, account domain.Account) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin promote tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	accounts := NewAccountRepository(tx)
	if err := accounts.Create(ctx, account); err != nil {
		return err
	}

	if err := r.WithTx(tx).DeleteByEmail(ctx, email); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit promote tx: %w", err)
	}

	return nil
}

var _ port.PendingRegistrationRepository = (*PendingRegistrationRepository)(nil)
