package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/core/port"
	"github.com/arklim/social-platform-auth/internal/infra/logger"
	"github.com/arklim/social-platform-auth/internal/repository"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput carries the credentials of a login request.
type LoginInput struct {
	Email    string
	Password string
}

// TokenPair holds the credentials minted on a successful login.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService orchestrates the two-phase registration flow and the password
// reset flow on top of the OTP lifecycle.
type AuthService struct {
	accounts port.AccountRepository
	pending  port.PendingRegistrationRepository
	otp      *OtpService
	hasher   port.PasswordHasher
	tokens   port.TokenIssuer
	notifier port.Notifier
	events   port.EventPublisher
	logger   *zap.Logger
	clock    func() time.Time
}

// NewAuthService constructs the registration orchestrator.
func NewAuthService(
	accounts port.AccountRepository,
	pending port.PendingRegistrationRepository,
	otp *OtpService,
	hasher port.PasswordHasher,
	tokens port.TokenIssuer,
	notifier port.Notifier,
	events port.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		pending:  pending,
		otp:      otp,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		events:   events,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	s.clock = clock
	return s
}

// Register stores a provisional registration and sends a verification code to
// the email. Registering an email that already has a pending row is treated
// as a code re-request for that row; the OTP rate limit window bounds how
// often codes actually go out.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	if taken, err := s.accounts.ExistsByEmail(ctx, input.Email); err != nil {
		return fmt.Errorf("check email: %w", err)
	} else if taken {
		return ErrDuplicateEmail
	}

	if taken, err := s.accounts.ExistsByUsername(ctx, input.Username); err != nil {
		return fmt.Errorf("check username: %w", err)
	} else if taken {
		return ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHashingFailure, err)
	}

	now := s.clock()
	created := true

	err = s.pending.Create(ctx, domain.PendingRegistration{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.AccountRoleUser,
		CreatedAt:    now,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		// Same email registered again before verifying. Reuse the stored row
		// and only re-issue the code.
		created = false
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrDuplicateUsername
	case err != nil:
		return fmt.Errorf("create pending registration: %w", err)
	}

	otp, err := s.otp.CreateOtp(ctx, domain.EmailSubject(input.Email), domain.OtpPurposeRegistration)
	if err != nil {
		if created {
			s.rollbackPending(ctx, input.Email)
		}
		return err
	}

	if err := s.notifier.DeliverCode(ctx, input.Email, domain.OtpPurposeRegistration, otp.Code); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
	}

	if pubErr := s.events.PublishAccountRegistered(ctx, domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		Role:         domain.AccountRoleUser,
		RegisteredAt: now,
	}); pubErr != nil {
		s.logger.Warn("failed to publish account registered event", zap.Error(pubErr))
	}

	s.logger.Info("registration pending verification",
		zap.String("email", logger.MaskEmail(input.Email)),
		zap.String("username", input.Username),
	)

	return nil
}

// rollbackPending undoes the pending insert when the code could not be
// issued, so a failed register leaves no partial state behind.
func (s *AuthService) rollbackPending(ctx context.Context, email string) {
	if err := s.pending.DeleteByEmail(ctx, email); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to roll back pending registration",
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err),
		)
	}
}

// VerifyOtp consumes the registration code and promotes the pending
// registration into a verified account. Promotion is idempotent with respect
// to an account that already exists for the email.
func (s *AuthService) VerifyOtp(ctx context.Context, email, code string) (*domain.Account, error) {
	if err := s.otp.Verify(ctx, domain.EmailSubject(email), code, domain.OtpPurposeRegistration); err != nil {
		return nil, err
	}

	pending, err := s.pending.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A consumed registration code always has a pending row behind it
			// unless something deleted it out from under us.
			s.logger.Error("registration code consumed without pending row",
				zap.String("email", logger.MaskEmail(email)),
			)
			return nil, fmt.Errorf("%w: %w", ErrConsistencyViolation, ErrPendingNotFound)
		}
		return nil, fmt.Errorf("load pending registration: %w", err)
	}

	account := domain.Account{
		ID:           pending.ID,
		Username:     pending.Username,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         pending.Role,
		Verified:     true,
		CreatedAt:    s.clock(),
	}

	err = s.pending.Promote(ctx, email, account)
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		// Another verify won the race. Return the surviving account and drop
		// the stale pending row.
		existing, getErr := s.accounts.GetByEmail(ctx, email)
		if getErr != nil {
			return nil, fmt.Errorf("load existing account: %w", getErr)
		}
		s.rollbackPending(ctx, email)
		return existing, nil
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, ErrDuplicateUsername
	case err != nil:
		return nil, fmt.Errorf("promote pending registration: %w", err)
	}

	if pubErr := s.events.PublishAccountVerified(ctx, domain.AccountVerifiedEvent{
		EventID:    uuid.NewString(),
		AccountID:  account.ID,
		Username:   account.Username,
		Email:      account.Email,
		VerifiedAt: account.CreatedAt,
	}); pubErr != nil {
		s.logger.Warn("failed to publish account verified event", zap.Error(pubErr))
	}

	s.logger.Info("account verified",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
	)

	return &account, nil
}

// Login checks the credentials and mints a token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if !account.Verified {
		return nil, ErrNotVerified
	}

	ok, err := s.hasher.Verify(input.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	accessToken, accessExp, err := s.tokens.IssueAccessToken(*account)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, refreshExp, err := s.tokens.IssueRefreshToken(*account)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ForgotPassword issues a reset code for an existing account. Unlike login,
// this reports an unknown email to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account: %w", err)
	}

	otp, err := s.otp.CreateOtp(ctx, domain.AccountSubject(account.ID), domain.OtpPurposeResetPassword)
	if err != nil {
		return err
	}

	if err := s.notifier.DeliverCode(ctx, email, domain.OtpPurposeResetPassword, otp.Code); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
	}

	if pubErr := s.events.PublishPasswordResetRequested(ctx, domain.PasswordResetRequestedEvent{
		EventID:     uuid.NewString(),
		AccountID:   account.ID,
		Email:       email,
		RequestedAt: otp.CreatedAt,
		ExpiresAt:   otp.ExpiresAt,
	}); pubErr != nil {
		s.logger.Warn("failed to publish password reset requested event", zap.Error(pubErr))
	}

	s.logger.Info("password reset code issued",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return nil
}

// ResetPassword consumes the reset code and replaces the account password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account: %w", err)
	}

	if err := s.otp.Verify(ctx, domain.AccountSubject(account.ID), code, domain.OtpPurposeResetPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHashingFailure, err)
	}

	changedAt := s.clock()
	if err := s.accounts.UpdatePassword(ctx, email, hash, changedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	if pubErr := s.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		Email:     email,
		ChangedAt: changedAt,
	}); pubErr != nil {
		s.logger.Warn("failed to publish password changed event", zap.Error(pubErr))
	}

	s.logger.Info("password reset completed",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return nil
}

// Profile returns the account for an authenticated email.
func (s *AuthService) Profile(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}
