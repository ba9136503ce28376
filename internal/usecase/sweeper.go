package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/port"
	"github.com/arklim/social-platform-auth/internal/infra/config"
)

// Sweeper runs the two periodic maintenance tasks: reclaiming expired codes
// and discarding pending registrations that were never verified. The tasks
// run on independent cadences and a failure of one never stops the other.
type Sweeper struct {
	otp     *OtpService
	pending port.PendingRegistrationRepository
	cfg     config.SweepSettings
	logger  *zap.Logger
	clock   func() time.Time
}

// NewSweeper constructs the background maintenance runner.
func NewSweeper(otp *OtpService, pending port.PendingRegistrationRepository, cfg config.SweepSettings, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		otp:     otp,
		pending: pending,
		cfg:     cfg,
		logger:  logger,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Sweeper) WithClock(clock func() time.Time) *Sweeper {
	s.clock = clock
	return s
}

// Run blocks until the context is cancelled, driving both sweep loops.
func (s *Sweeper) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		s.loop(ctx, s.cfg.OtpInterval, "otp", s.SweepExpiredOtps)
	}()

	go func() {
		defer wg.Done()
		s.loop(ctx, s.cfg.PendingInterval, "pending_registrations", s.SweepStalePending)
	}()

	wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context, interval time.Duration, name string, sweep func(context.Context) (int64, error)) {
	if interval <= 0 {
		s.logger.Warn("sweep disabled, non-positive interval", zap.String("sweep", name))
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("sweep loop started",
		zap.String("sweep", name),
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ticker.C:
			removed, err := sweep(ctx)
			if err != nil {
				s.logger.Error("sweep failed", zap.String("sweep", name), zap.Error(err))
				continue
			}
			if removed > 0 {
				s.logger.Info("sweep reclaimed rows",
					zap.String("sweep", name),
					zap.Int64("removed", removed),
				)
			}
		case <-ctx.Done():
			s.logger.Info("sweep loop stopped", zap.String("sweep", name))
			return
		}
	}
}

// SweepExpiredOtps removes every code past its expiry.
func (s *Sweeper) SweepExpiredOtps(ctx context.Context) (int64, error) {
	return s.otp.CleanupExpired(ctx)
}

// SweepStalePending removes pending registrations older than the retention
// period. Their unverified emails become free to register again.
func (s *Sweeper) SweepStalePending(ctx context.Context) (int64, error) {
	cutoff := s.clock().Add(-s.cfg.PendingRetention)
	removed, err := s.pending.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale pending registrations: %w", err)
	}
	return removed, nil
}
