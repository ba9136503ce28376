package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// PendingRegistrationRepository manages provisional registrations awaiting
// email verification. Uniqueness of email and username is scoped to pending
// rows only; conflicts against accounts are re-checked at promotion time.
type PendingRegistrationRepository interface {
	Create(ctx context.Context, pending domain.PendingRegistration) error
	GetByEmail(ctx context.Context, email string) (*domain.PendingRegistration, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Promote atomically inserts the account and deletes the pending row for
	// the same email. A unique violation on the account insert surfaces as a
	// duplicate sentinel so callers can treat "account already exists" as an
	// idempotent no-op.
	Promote(ctx context.Context, email string, account domain.Account) error
}
