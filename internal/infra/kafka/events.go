package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/core/port"
	"github.com/arklim/social-platform-auth/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes auth.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		Username     string         `json:"username"`
		Email        string         `json:"email"`
		Role         string         `json:"role"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		Username:     event.Username,
		Email:        event.Email,
		Role:         string(event.Role),
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.account.registered", "", event.RegisteredAt, payload)
}

// PublishAccountVerified publishes auth.account.verified events.
func (p *EventPublisher) PublishAccountVerified(ctx context.Context, event domain.AccountVerifiedEvent) error {
	payload := struct {
		AccountID  string         `json:"account_id"`
		Username   string         `json:"username"`
		Email      string         `json:"email"`
		VerifiedAt time.Time      `json:"verified_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:  event.AccountID,
		Username:   event.Username,
		Email:      event.Email,
		VerifiedAt: event.VerifiedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.account.verified", event.AccountID, event.VerifiedAt, payload)
}

// PublishPasswordResetRequested publishes auth.password.reset_requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		AccountID   string         `json:"account_id"`
		Email       string         `json:"email"`
		RequestedAt time.Time      `json:"requested_at"`
		ExpiresAt   time.Time      `json:"expires_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:   event.AccountID,
		Email:       event.Email,
		RequestedAt: event.RequestedAt.UTC(),
		ExpiresAt:   event.ExpiresAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.password.reset_requested", event.AccountID, event.RequestedAt, payload)
}

// PublishPasswordChanged publishes auth.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		AccountID string         `json:"account_id"`
		Email     string         `json:"email"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		AccountID: event.AccountID,
		Email:     event.Email,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.password.changed", event.AccountID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
