package domain

import "time"

// PendingRegistration is a provisional registration awaiting proof of email
// ownership. It exists only between a register call and either promotion into
// an account or expiry. It never references the accounts table; the link is
// resolved by email at promotion time.
type PendingRegistration struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         AccountRole
	CreatedAt    time.Time
}
