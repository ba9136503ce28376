package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-auth/internal/infra/config"
)

func TestSweepStalePendingUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	retention := 24 * time.Hour

	pending := &pendingRepoStub{
		deleteOldFn: func(_ context.Context, cutoff time.Time) (int64, error) {
			want := now.Add(-retention)
			if !cutoff.Equal(want) {
				t.Errorf("cutoff = %v, want %v", cutoff, want)
			}
			return 3, nil
		},
	}

	log := zaptest.NewLogger(t)
	otpSvc := NewOtpService(&otpRepoStub{}, testOtpSettings, log)
	sweeper := NewSweeper(otpSvc, pending, config.SweepSettings{PendingRetention: retention}, log).
		WithClock(fixedClock(now))

	removed, err := sweeper.SweepStalePending(context.Background())
	if err != nil {
		t.Fatalf("SweepStalePending returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
}

func TestSweepExpiredOtpsDelegates(t *testing.T) {
	repo := &otpRepoStub{
		deleteFn: func(context.Context, time.Time) (int64, error) { return 7, nil },
	}

	log := zaptest.NewLogger(t)
	otpSvc := NewOtpService(repo, testOtpSettings, log)
	sweeper := NewSweeper(otpSvc, &pendingRepoStub{}, config.SweepSettings{}, log)

	removed, err := sweeper.SweepExpiredOtps(context.Background())
	if err != nil {
		t.Fatalf("SweepExpiredOtps returned error: %v", err)
	}
	if removed != 7 {
		t.Fatalf("removed = %d, want 7", removed)
	}
}

func TestRunSweepsBothTasksIndependently(t *testing.T) {
	var otpSweeps, pendingSweeps atomic.Int64

	repo := &otpRepoStub{
		deleteFn: func(context.Context, time.Time) (int64, error) {
			otpSweeps.Add(1)
			// One task failing must not disturb the other.
			return 0, errors.New("postgres unavailable")
		},
	}
	pending := &pendingRepoStub{
		deleteOldFn: func(context.Context, time.Time) (int64, error) {
			pendingSweeps.Add(1)
			return 1, nil
		},
	}

	log := zaptest.NewLogger(t)
	otpSvc := NewOtpService(repo, testOtpSettings, log)
	sweeper := NewSweeper(otpSvc, pending, config.SweepSettings{
		OtpInterval:      5 * time.Millisecond,
		PendingInterval:  5 * time.Millisecond,
		PendingRetention: time.Hour,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for otpSweeps.Load() < 2 || pendingSweeps.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeps did not progress: otp=%d pending=%d", otpSweeps.Load(), pendingSweeps.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestRunStopsCleanlyWithDisabledIntervals(t *testing.T) {
	log := zaptest.NewLogger(t)
	otpSvc := NewOtpService(&otpRepoStub{}, testOtpSettings, log)
	sweeper := NewSweeper(otpSvc, &pendingRepoStub{}, config.SweepSettings{}, log)

	done := make(chan struct{})
	go func() {
		sweeper.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return with disabled sweeps")
	}
}
