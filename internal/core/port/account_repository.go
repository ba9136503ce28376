package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// AccountRepository exposes persistence behavior for verified accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, email string, passwordHash string, changedAt time.Time) error
	MarkVerified(ctx context.Context, email string) error
}
