package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/infra/config"
	"github.com/arklim/social-platform-auth/internal/repository"
)

var testOtpSettings = config.OtpSettings{
	Expiration:      5 * time.Minute,
	RateLimitWindow: time.Minute,
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerateCodeSixDigits(t *testing.T) {
	repo := &otpRepoStub{}
	svc := NewOtpService(repo, testOtpSettings, zaptest.NewLogger(t)).
		WithEntropy(bytes.NewReader([]byte{0, 1, 2, 9, 10, 255}))

	code, err := svc.GenerateCode()
	if err != nil {
		t.Fatalf("GenerateCode returned error: %v", err)
	}

	// Each byte maps to its value mod 10.
	if code != "012905" {
		t.Fatalf("unexpected code: %s", code)
	}
}

func TestGenerateCodeEntropyExhausted(t *testing.T) {
	repo := &otpRepoStub{}
	svc := NewOtpService(repo, testOtpSettings, zaptest.NewLogger(t)).
		WithEntropy(bytes.NewReader([]byte{1, 2, 3}))

	if _, err := svc.GenerateCode(); err == nil {
		t.Fatal("expected error when entropy runs dry")
	}
}

func TestCreateOtpSetsLifecycleFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &otpRepoStub{}
	svc := NewOtpService(repo, testOtpSettings, zaptest.NewLogger(t)).
		WithClock(fixedClock(now)).
		WithEntropy(repeatReader{b: 7})

	otp, err := svc.CreateOtp(context.Background(), domain.EmailSubject("user@example.com"), domain.OtpPurposeRegistration)
	if err != nil {
		t.Fatalf("CreateOtp returned error: %v", err)
	}

	if otp.Code != "777777" {
		t.Errorf("unexpected code: %s", otp.Code)
	}
	if !otp.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", otp.CreatedAt, now)
	}
	if !otp.ExpiresAt.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("expires_at = %v, want %v", otp.ExpiresAt, now.Add(5*time.Minute))
	}
	if otp.Used {
		t.Error("fresh otp must not be used")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one repository insert, got %d", len(repo.created))
	}
}

func TestCreateOtpEmptySubject(t *testing.T) {
	svc := NewOtpService(&otpRepoStub{}, testOtpSettings, zaptest.NewLogger(t))

	if _, err := svc.CreateOtp(context.Background(), domain.OtpSubject{}, domain.OtpPurposeRegistration); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestCreateOtpRateLimited(t *testing.T) {
	repo := &otpRepoStub{
		createFn: func(context.Context, domain.Otp, time.Duration) error {
			return repository.ErrRateLimited
		},
	}
	svc := NewOtpService(repo, testOtpSettings, zaptest.NewLogger(t))

	_, err := svc.CreateOtp(context.Background(), domain.EmailSubject("user@example.com"), domain.OtpPurposeRegistration)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestVerifyConsumesCode(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var gotSubject domain.OtpSubject
	var gotNow time.Time

	repo := &otpRepoStub{
		consumeFn: func(_ context.Context, subject domain.OtpSubject, code string, purpose domain.OtpPurpose, at time.Time) (bool, error) {
			gotSubject = subject
			gotNow = at
			return code == "123456" && purpose == domain.OtpPurposeResetPassword, nil
		},
	}
	svc := NewOtpService(repo, testOtpSettings, zaptest.NewLogger(t)).WithClock(fixedClock(now))

	subject := domain.AccountSubject("acc-1")
	if err := svc.Verify(context.Background(), subject, "123456", domain.OtpPurposeResetPassword); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if gotSubject != subject {
		t.Errorf("subject = %v, want %v", gotSubject, subject)
	}
	if !gotNow.Equal(now) {
		t.Errorf("now = %v, want %v", gotNow, now)
	}
}

func TestVerifyRejectsUnmatchedCode(t *testing.T) {
	repo := &otpRepoStub{
		consumeFn: func(context.Context, domain.OtpSubject, string, domain.OtpPurpose, time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := NewOtpService(repo, testOtpSettings, zaptest.NewLogger(t))

	err := svc.Verify(context.Background(), domain.EmailSubject("user@example.com"), "654321", domain.OtpPurposeRegistration)
	if !errors.Is(err, ErrInvalidOrExpiredOtp) {
		t.Fatalf("expected ErrInvalidOrExpiredOtp, got %v", err)
	}
}

func TestVerifyRejectsMalformedCodeWithoutRepoCall(t *testing.T) {
	repo := &otpRepoStub{}
	svc := NewOtpService(repo, testOtpSettings, zaptest.NewLogger(t))

	for _, code := range []string{"", "123", "1234567"} {
		err := svc.Verify(context.Background(), domain.EmailSubject("user@example.com"), code, domain.OtpPurposeRegistration)
		if !errors.Is(err, ErrInvalidOrExpiredOtp) {
			t.Errorf("code %q: expected ErrInvalidOrExpiredOtp, got %v", code, err)
		}
	}

	if repo.consumed != 0 {
		t.Fatalf("repository consumed %d times for malformed codes", repo.consumed)
	}
}

func TestCleanupExpiredReportsCount(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &otpRepoStub{
		deleteFn: func(_ context.Context, at time.Time) (int64, error) {
			if !at.Equal(now) {
				t.Errorf("cleanup now = %v, want %v", at, now)
			}
			return 42, nil
		},
	}
	svc := NewOtpService(repo, testOtpSettings, zaptest.NewLogger(t)).WithClock(fixedClock(now))

	removed, err := svc.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("CleanupExpired returned error: %v", err)
	}
	if removed != 42 {
		t.Fatalf("removed = %d, want 42", removed)
	}
}
