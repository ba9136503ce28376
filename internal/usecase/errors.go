package usecase

import "errors"

var (
	// ErrDuplicateEmail indicates the email already belongs to an account or a
	// pending registration owned by someone else.
	ErrDuplicateEmail = errors.New("email is already taken")

	// ErrDuplicateUsername indicates the username is already claimed.
	ErrDuplicateUsername = errors.New("username is already taken")

	// ErrRateLimited indicates a valid code was already issued for the subject
	// inside the rate limit window.
	ErrRateLimited = errors.New("a code was issued recently, retry later")

	// ErrInvalidOrExpiredOtp covers wrong, already used, and expired codes
	// without distinguishing between them.
	ErrInvalidOrExpiredOtp = errors.New("invalid or expired code")

	// ErrAccountNotFound indicates no account exists for the email.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPendingNotFound indicates no pending registration exists for the email.
	ErrPendingNotFound = errors.New("pending registration not found")

	// ErrNotVerified indicates the account exists but never completed email
	// verification.
	ErrNotVerified = errors.New("account is not verified")

	// ErrInvalidCredentials covers unknown email and wrong password without
	// distinguishing between them.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrHashingFailure indicates the password could not be hashed.
	ErrHashingFailure = errors.New("password hashing failed")

	// ErrDeliveryFailure indicates the code could not be sent to the recipient.
	ErrDeliveryFailure = errors.New("code delivery failed")

	// ErrConsistencyViolation indicates stored state that the registration flow
	// should never produce, such as a consumed registration code with no
	// pending row behind it.
	ErrConsistencyViolation = errors.New("inconsistent registration state")
)
