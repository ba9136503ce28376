package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// OtpRepository persists one-time codes. The write operations are the
// atomicity boundaries of the OTP lifecycle: Create must not admit two valid
// codes for the same (subject, purpose) inside the window, and Consume must
// succeed for at most one of any number of concurrent attempts on a code.
type OtpRepository interface {
	// Create purges globally expired rows and then inserts the code, unless a
	// valid (unused, unexpired) code for the same subject and purpose was
	// created within the window, in which case it fails with
	// repository.ErrRateLimited.
	Create(ctx context.Context, otp domain.Otp, window time.Duration) error

	// Consume marks the matching unused, unexpired code as used. It reports
	// false when no such code exists, without distinguishing wrong code from
	// expired code.
	Consume(ctx context.Context, subject domain.OtpSubject, code string, purpose domain.OtpPurpose, now time.Time) (bool, error)

	// DeleteExpired removes every row past its expiry, used or not, and
	// returns the number of rows reclaimed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
