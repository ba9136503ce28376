package domain

import "time"

// AccountRole enumerates the roles an account can hold.
type AccountRole string

const (
	AccountRoleUser  AccountRole = "user"
	AccountRoleAdmin AccountRole = "admin"
)

// Account mirrors the persisted representation in the accounts table.
// Email and username are globally unique; Verified transitions false->true
// at most once and never reverts.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         AccountRole
	Verified     bool
	CreatedAt    time.Time
}
