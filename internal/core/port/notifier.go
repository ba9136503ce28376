package port

import (
	"context"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// Notifier delivers one-time codes out of band. Implementations own the
// transport (SMTP, provider API); callers only state what to deliver where.
type Notifier interface {
	DeliverCode(ctx context.Context, address string, purpose domain.OtpPurpose, code string) error
}
