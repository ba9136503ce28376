package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/repository"
)

type otpRepoStub struct {
	createFn  func(ctx context.Context, otp domain.Otp, window time.Duration) error
	consumeFn func(ctx context.Context, subject domain.OtpSubject, code string, purpose domain.OtpPurpose, now time.Time) (bool, error)
	deleteFn  func(ctx context.Context, now time.Time) (int64, error)

	created  []domain.Otp
	consumed int
}

func (s *otpRepoStub) Create(ctx context.Context, otp domain.Otp, window time.Duration) error {
	s.created = append(s.created, otp)
	if s.createFn != nil {
		return s.createFn(ctx, otp, window)
	}
	return nil
}

func (s *otpRepoStub) Consume(ctx context.Context, subject domain.OtpSubject, code string, purpose domain.OtpPurpose, now time.Time) (bool, error) {
	s.consumed++
	if s.consumeFn != nil {
		return s.consumeFn(ctx, subject, code, purpose, now)
	}
	return true, nil
}

func (s *otpRepoStub) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, now)
	}
	return 0, nil
}

type accountRepoStub struct {
	getByEmailFn     func(ctx context.Context, email string) (*domain.Account, error)
	existsEmailFn    func(ctx context.Context, email string) (bool, error)
	existsUsernameFn func(ctx context.Context, username string) (bool, error)
	updatePasswordFn func(ctx context.Context, email, hash string, changedAt time.Time) error

	passwordUpdates []string
}

func (s *accountRepoStub) Create(context.Context, domain.Account) error { return nil }

func (s *accountRepoStub) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (s *accountRepoStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if s.existsEmailFn != nil {
		return s.existsEmailFn(ctx, email)
	}
	return false, nil
}

func (s *accountRepoStub) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if s.existsUsernameFn != nil {
		return s.existsUsernameFn(ctx, username)
	}
	return false, nil
}

func (s *accountRepoStub) UpdatePassword(ctx context.Context, email, hash string, changedAt time.Time) error {
	s.passwordUpdates = append(s.passwordUpdates, hash)
	if s.updatePasswordFn != nil {
		return s.updatePasswordFn(ctx, email, hash, changedAt)
	}
	return nil
}

func (s *accountRepoStub) MarkVerified(context.Context, string) error { return nil }

type pendingRepoStub struct {
	createFn     func(ctx context.Context, pending domain.PendingRegistration) error
	getByEmailFn func(ctx context.Context, email string) (*domain.PendingRegistration, error)
	promoteFn    func(ctx context.Context, email string, account domain.Account) error
	deleteOldFn  func(ctx context.Context, cutoff time.Time) (int64, error)

	created []domain.PendingRegistration
	deleted []string
}

func (s *pendingRepoStub) Create(ctx context.Context, pending domain.PendingRegistration) error {
	s.created = append(s.created, pending)
	if s.createFn != nil {
		return s.createFn(ctx, pending)
	}
	return nil
}

func (s *pendingRepoStub) GetByEmail(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (s *pendingRepoStub) DeleteByEmail(ctx context.Context, email string) error {
	s.deleted = append(s.deleted, email)
	return nil
}

func (s *pendingRepoStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.deleteOldFn != nil {
		return s.deleteOldFn(ctx, cutoff)
	}
	return 0, nil
}

func (s *pendingRepoStub) Promote(ctx context.Context, email string, account domain.Account) error {
	if s.promoteFn != nil {
		return s.promoteFn(ctx, email, account)
	}
	return nil
}

type hasherStub struct {
	hashErr error
}

func (s *hasherStub) Hash(password string) (string, error) {
	if s.hashErr != nil {
		return "", s.hashErr
	}
	return "hashed:" + password, nil
}

func (s *hasherStub) Verify(password, encoded string) (bool, error) {
	return encoded == "hashed:"+password, nil
}

type tokenIssuerStub struct{}

func (s *tokenIssuerStub) IssueAccessToken(account domain.Account) (string, time.Time, error) {
	return "access-" + account.ID, time.Now().Add(15 * time.Minute), nil
}

func (s *tokenIssuerStub) IssueRefreshToken(account domain.Account) (string, time.Time, error) {
	return "refresh-" + account.ID, time.Now().Add(168 * time.Hour), nil
}

type notifierStub struct {
	err error

	recipients []string
	codes      []string
	purposes   []domain.OtpPurpose
}

func (s *notifierStub) DeliverCode(_ context.Context, address string, purpose domain.OtpPurpose, code string) error {
	if s.err != nil {
		return s.err
	}
	s.recipients = append(s.recipients, address)
	s.codes = append(s.codes, code)
	s.purposes = append(s.purposes, purpose)
	return nil
}

type publisherStub struct {
	registered     int
	verified       int
	resetRequested int
	changed        int
}

func (s *publisherStub) PublishAccountRegistered(context.Context, domain.AccountRegisteredEvent) error {
	s.registered++
	return nil
}

func (s *publisherStub) PublishAccountVerified(context.Context, domain.AccountVerifiedEvent) error {
	s.verified++
	return nil
}

func (s *publisherStub) PublishPasswordResetRequested(context.Context, domain.PasswordResetRequestedEvent) error {
	s.resetRequested++
	return nil
}

func (s *publisherStub) PublishPasswordChanged(context.Context, domain.PasswordChangedEvent) error {
	s.changed++
	return nil
}

// repeatReader yields the same byte forever, for deterministic codes.
type repeatReader struct{ b byte }

func (r repeatReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
	}
	return len(p), nil
}

func stubAccount(id, email, password string, verified bool) *domain.Account {
	return &domain.Account{
		ID:           id,
		Username:     strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: "hashed:" + password,
		Role:         domain.AccountRoleUser,
		Verified:     verified,
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}
