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

// createOtpSQL inserts the code only when no valid (unused, unexpired) code
// for the same subject and purpose was created inside the rate-limit window.
// The guard and the insert run as one statement so two concurrent creates for
// the same subject cannot both succeed.
const createOtpSQL = `
	INSERT INTO auth.otp_codes (id, account_id, email, code, purpose, created_at, expires_at, used)
	SELECT $1, $2, $3, $4, $5, $6, $7, false
	WHERE NOT EXISTS (
		SELECT 1
		  FROM auth.otp_codes
		 WHERE account_id IS NOT DISTINCT FROM $2
		   AND email IS NOT DISTINCT FROM $3
		   AND purpose = $5
		   AND used = false
		   AND expires_at > $6
		   AND created_at > $8
	)
`

// consumeOtpSQL is the single-use gate: the conditional update flips used
// exactly once, so concurrent verifications of the same code race for one
// affected row.
const consumeOtpSQL = `
	UPDATE auth.otp_codes
	   SET used = true
	 WHERE account_id IS NOT DISTINCT FROM $1
	   AND email IS NOT DISTINCT FROM $2
	   AND code = $3
	   AND purpose = $4
	   AND used = false
	   AND expires_at > $5
`

// OtpRepository implements port.OtpRepository using PostgreSQL.
type OtpRepository struct {
	pool    pgPool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewOtpRepository constructs a repository backed by any executor that
// satisfies pgExecutor. Create needs an executor that can also open
// transactions.
func NewOtpRepository(exec pgExecutor) *OtpRepository {
	repo := &OtpRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(pgPool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *OtpRepository) WithTx(tx pgx.Tx) *OtpRepository {
	if tx == nil {
		return r
	}
	return &OtpRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create purges globally expired rows, then conditionally inserts the code.
// Both statements share one transaction; the purge is an amortized cleanup
// that runs on every issuance regardless of subject, with the sweeper as the
// backstop.
func (r *OtpRepository) Create(ctx context.Context, otp domain.Otp, window time.Duration) error {
	accountID, email := subjectValues(otp.Subject)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create otp tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := r.WithTx(tx).DeleteExpired(ctx, otp.CreatedAt); err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, createOtpSQL,
		otp.ID,
		accountID,
		email,
		otp.Code,
		otp.Purpose,
		otp.CreatedAt,
		otp.ExpiresAt,
		otp.CreatedAt.Add(-window),
	)
	if err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrRateLimited
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create otp tx: %w", err)
	}

	return nil
}

// Consume marks the matching unused, unexpired code as used. The expiry
// boundary is strict: a code whose expires_at equals now is rejected.
func (r *OtpRepository) Consume(ctx context.Context, subject domain.OtpSubject, code string, purpose domain.OtpPurpose, now time.Time) (bool, error) {
	accountID, email := subjectValues(subject)

	ct, err := r.exec.Exec(ctx, consumeOtpSQL, accountID, email, code, purpose, now)
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// DeleteExpired removes every row past its expiry, used or not.
func (r *OtpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	stmt, args, err := r.builder.Delete("auth.otp_codes").
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired otps sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}

	return ct.RowsAffected(), nil
}

// subjectValues maps the tagged union onto the nullable column pair.
func subjectValues(subject domain.OtpSubject) (any, any) {
	var accountID, email any
	if id, ok := subject.AccountID(); ok {
		accountID = id
	}
	if addr, ok := subject.Email(); ok {
		email = addr
	}
	return accountID, email
}

var _ port.OtpRepository = (*OtpRepository)(nil)
