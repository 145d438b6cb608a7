package port

import (
	"context"
	"time"
)

// ActivationNotification carries the data for an account activation email.
type ActivationNotification struct {
	Email     string
	FirstName string
	Token     string
	ExpiresAt time.Time
}

// ActivationConfirmedNotification is sent after a successful activation.
type ActivationConfirmedNotification struct {
	Email     string
	FirstName string
}

// PasswordResetNotification carries the data for a password reset email.
type PasswordResetNotification struct {
	Email     string
	FirstName string
	Token     string
	ExpiresAt time.Time
}

// Notifier delivers account lifecycle messages to the account holder.
// Implementations must be safe for concurrent use; callers dispatch
// notifications asynchronously and only log failures.
type Notifier interface {
	SendActivation(ctx context.Context, notification ActivationNotification) error
	SendActivationConfirmed(ctx context.Context, notification ActivationConfirmedNotification) error
	SendPasswordReset(ctx context.Context, notification PasswordResetNotification) error
}
