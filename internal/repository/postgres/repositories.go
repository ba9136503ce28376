package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Accounts *AccountRepository
	Pending  *PendingRegistrationRepository
	Otps     *OtpRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts: NewAccountRepository(pool),
		Pending:  NewPendingRegistrationRepository(pool),
		Otps:     NewOtpRepository(pool),
	}
}
