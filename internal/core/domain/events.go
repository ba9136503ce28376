package domain

import "time"

// AccountRegisteredEvent is published when a pending registration is created
// and a verification code goes out. No account exists yet at this point.
type AccountRegisteredEvent struct {
	EventID      string
	Username     string
	Email        string
	Role         AccountRole
	RegisteredAt time.Time
	Metadata     map[string]any
}

// AccountVerifiedEvent is published when a pending registration is promoted
// into a verified account.
type AccountVerifiedEvent struct {
	EventID    string
	AccountID  string
	Username   string
	Email      string
	VerifiedAt time.Time
	Metadata   map[string]any
}

// PasswordResetRequestedEvent is published when a reset code is issued for an
// existing account.
type PasswordResetRequestedEvent struct {
	EventID     string
	AccountID   string
	Email       string
	RequestedAt time.Time
	ExpiresAt   time.Time
	Metadata    map[string]any
}

// PasswordChangedEvent is published after a successful password reset.
type PasswordChangedEvent struct {
	EventID   string
	AccountID string
	Email     string
	ChangedAt time.Time
	Metadata  map[string]any
}
