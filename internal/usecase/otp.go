package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/core/port"
	"github.com/arklim/social-platform-auth/internal/infra/config"
	"github.com/arklim/social-platform-auth/internal/repository"
)

const otpCodeLength = 6

// OtpService owns the one-time code lifecycle: issuance with rate limiting,
// single-use verification, and expired-row cleanup.
type OtpService struct {
	otps    port.OtpRepository
	cfg     config.OtpSettings
	logger  *zap.Logger
	clock   func() time.Time
	entropy io.Reader
}

// NewOtpService constructs the OTP lifecycle service.
func NewOtpService(otps port.OtpRepository, cfg config.OtpSettings, logger *zap.Logger) *OtpService {
	return &OtpService{
		otps:    otps,
		cfg:     cfg,
		logger:  logger,
		clock:   func() time.Time { return time.Now().UTC() },
		entropy: rand.Reader,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *OtpService) WithClock(clock func() time.Time) *OtpService {
	s.clock = clock
	return s
}

// WithEntropy overrides the randomness source. Intended for tests.
func (s *OtpService) WithEntropy(r io.Reader) *OtpService {
	s.entropy = r
	return s
}

// GenerateCode produces a six digit numeric code from the entropy source.
func (s *OtpService) GenerateCode() (string, error) {
	buf := make([]byte, otpCodeLength)
	if _, err := io.ReadFull(s.entropy, buf); err != nil {
		return "", fmt.Errorf("read otp entropy: %w", err)
	}

	digits := make([]byte, otpCodeLength)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}

	return string(digits), nil
}

// CreateOtp issues a fresh code for the subject and purpose. Expired rows are
// purged first, then the insert fails with ErrRateLimited when a valid code
// for the same subject and purpose already exists inside the window.
func (s *OtpService) CreateOtp(ctx context.Context, subject domain.OtpSubject, purpose domain.OtpPurpose) (domain.Otp, error) {
	if subject.IsZero() {
		return domain.Otp{}, errors.New("otp subject is empty")
	}

	code, err := s.GenerateCode()
	if err != nil {
		return domain.Otp{}, err
	}

	now := s.clock()
	otp := domain.Otp{
		ID:        uuid.NewString(),
		Subject:   subject,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.Expiration),
	}

	if err := s.otps.Create(ctx, otp, s.cfg.RateLimitWindow); err != nil {
		if errors.Is(err, repository.ErrRateLimited) {
			return domain.Otp{}, ErrRateLimited
		}
		return domain.Otp{}, fmt.Errorf("create otp: %w", err)
	}

	s.logger.Debug("otp issued",
		zap.String("subject", subject.String()),
		zap.String("purpose", string(purpose)),
		zap.Time("expires_at", otp.ExpiresAt),
	)

	return otp, nil
}

// Verify consumes the code for the subject and purpose. A code can be
// consumed at most once; wrong, used, and expired codes all fail the same way.
func (s *OtpService) Verify(ctx context.Context, subject domain.OtpSubject, code string, purpose domain.OtpPurpose) error {
	if len(code) != otpCodeLength {
		return ErrInvalidOrExpiredOtp
	}

	ok, err := s.otps.Consume(ctx, subject, code, purpose, s.clock())
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return ErrInvalidOrExpiredOtp
	}

	return nil
}

// CleanupExpired deletes every code past its expiry and reports how many rows
// were reclaimed.
func (s *OtpService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.otps.DeleteExpired(ctx, s.clock())
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}
	return removed, nil
}
