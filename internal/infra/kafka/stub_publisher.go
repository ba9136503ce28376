package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs auth.account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"username":      event.Username,
		"email":         event.Email,
		"role":          event.Role,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("auth.account.registered", "", event.RegisteredAt, payload)
	return nil
}

// PublishAccountVerified logs auth.account.verified events.
func (p *StubPublisher) PublishAccountVerified(_ context.Context, event domain.AccountVerifiedEvent) error {
	payload := map[string]any{
		"account_id":  event.AccountID,
		"username":    event.Username,
		"email":       event.Email,
		"verified_at": event.VerifiedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("auth.account.verified", event.AccountID, event.VerifiedAt, payload)
	return nil
}

// PublishPasswordResetRequested logs auth.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"account_id":   event.AccountID,
		"email":        event.Email,
		"requested_at": event.RequestedAt,
		"expires_at":   event.ExpiresAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("auth.password.reset_requested", event.AccountID, event.RequestedAt, payload)
	return nil
}

// PublishPasswordChanged logs auth.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"account_id": event.AccountID,
		"email":      event.Email,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("auth.password.changed", event.AccountID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
