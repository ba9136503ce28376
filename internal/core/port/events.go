package port

import (
	"context"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAccountVerified(ctx context.Context, event domain.AccountVerifiedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
