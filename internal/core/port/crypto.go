package port

import (
	"time"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}

// TokenIssuer mints credentials after a successful login. Issuance lives
// outside the verification core; login only proves identity and authorizes
// the request.
type TokenIssuer interface {
	IssueAccessToken(account domain.Account) (string, time.Time, error)
	IssueRefreshToken(account domain.Account) (string, time.Time, error)
}
