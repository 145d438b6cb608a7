package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
)

// LogNotifier logs deliveries instead of sending them. Used in development
// and whenever SES is not configured. Tokens are masked; the plain value
// never reaches the logs.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier constructs a logging notifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

var _ port.Notifier = (*LogNotifier)(nil)

// SendActivation logs the activation delivery.
func (n *LogNotifier) SendActivation(_ context.Context, notification port.ActivationNotification) error {
	n.log.Info("activation email (stub)",
		zap.String("to", logger.MaskEmail(notification.Email)),
		zap.String("token", logger.MaskString(notification.Token)),
		zap.Time("expires_at", notification.ExpiresAt),
	)
	return nil
}

// SendActivationConfirmed logs the confirmation delivery.
func (n *LogNotifier) SendActivationConfirmed(_ context.Context, notification port.ActivationConfirmedNotification) error {
	n.log.Info("activation confirmed email (stub)",
		zap.String("to", logger.MaskEmail(notification.Email)),
	)
	return nil
}

// SendPasswordReset logs the reset delivery.
func (n *LogNotifier) SendPasswordReset(_ context.Context, notification port.PasswordResetNotification) error {
	n.log.Info("password reset email (stub)",
		zap.String("to", logger.MaskEmail(notification.Email)),
		zap.String("token", logger.MaskString(notification.Token)),
		zap.Time("expires_at", notification.ExpiresAt),
	)
	return nil
}
