package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/social-platform-auth/internal/repository"
)

const uniqueViolationCode = "23505"

// pgExecutor abstracts over a pool and a transaction so repositories can run
// either standalone or inside a caller-supplied transaction.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgPool is the executor subset that can also open transactions. A pgxpool.Pool
// satisfies it; a pgx.Tx does not.
type pgPool interface {
	pgExecutor
	Begin(ctx context.Context) (pgx.Tx, error)
}

// mapUniqueViolation translates postgres unique violations into duplicate
// sentinels based on the violated constraint. Returns nil for other errors.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}

	switch pgErr.ConstraintName {
	case "accounts_email_key", "pending_registrations_email_key":
		return repository.ErrDuplicateEmail
	case "accounts_username_key", "pending_registrations_username_key":
		return repository.ErrDuplicateUsername
	}

	return nil
}
