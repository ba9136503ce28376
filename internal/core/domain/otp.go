package domain

import "time"

// OtpPurpose distinguishes why a code was issued.
type OtpPurpose string

const (
	OtpPurposeRegistration  OtpPurpose = "registration"
	OtpPurposeResetPassword OtpPurpose = "reset_password"
)

// OtpSubject identifies who a code was issued against: an existing account,
// or a bare email address captured before any account exists. Exactly one of
// the two is set; the constructors are the only way to build a valid value,
// so the both-set/neither-set states are unrepresentable through the API.
type OtpSubject struct {
	accountID string
	email     string
}

// AccountSubject binds a code to an existing account.
func AccountSubject(accountID string) OtpSubject {
	return OtpSubject{accountID: accountID}
}

// EmailSubject binds a code to a bare email address.
func EmailSubject(email string) OtpSubject {
	return OtpSubject{email: email}
}

// AccountID returns the account identifier when the subject is an account.
func (s OtpSubject) AccountID() (string, bool) {
	return s.accountID, s.accountID != ""
}

// Email returns the address when the subject is a bare email.
func (s OtpSubject) Email() (string, bool) {
	return s.email, s.email != ""
}

// IsZero reports whether the subject carries neither variant.
func (s OtpSubject) IsZero() bool {
	return s.accountID == "" && s.email == ""
}

// String renders the subject for logs. Account subjects are safe to print;
// email subjects are masked by callers before logging.
func (s OtpSubject) String() string {
	if s.accountID != "" {
		return "account:" + s.accountID
	}
	return "email:" + s.email
}

// Otp is a single-use numeric code. A code is accepted only while Used is
// false and the current time is before ExpiresAt; once used it is permanently
// inert.
type Otp struct {
	ID        string
	Subject   OtpSubject
	Code      string
	Purpose   OtpPurpose
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}
