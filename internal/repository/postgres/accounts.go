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

const accountsTable = "auth.accounts"

var accountColumns = []string{
	"id",
	"username",
	"email",
	"password_hash",
	"role",
	"verified",
	"created_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	if tx == nil {
		return r
	}
	return &AccountRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new account row. Unique violations on email or username
// surface as the corresponding duplicate sentinel.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Username,
			account.Email,
			account.PasswordHash,
			account.Role,
			account.Verified,
			account.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From(accountsTable).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Verified,
		&account.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &account, nil
}

// ExistsByEmail reports whether an account with the email exists.
func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"email": email})
}

// ExistsByUsername reports whether an account with the username exists.
func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"username": username})
}

func (r *AccountRepository) exists(ctx context.Context, pred squirrel.Eq) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From(accountsTable).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists account sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scan exists account: %w", err)
	}

	return true, nil
}

// UpdatePassword replaces the stored password hash for the account.
func (r *AccountRepository) UpdatePassword(ctx context.Context, email string, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update(accountsTable).
		Set("password_hash", passwordHash).
		Set("password_changed_at", changedAt).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkVerified flips the verified flag for the account. The transition is
// one-way; rows already verified are left untouched.
func (r *AccountRepository) MarkVerified(ctx context.Context, email string) error {
	stmt, args, err := r.builder.Update(accountsTable).
		Set("verified", true).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark verified sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
