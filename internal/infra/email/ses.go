package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
)

const charsetUTF8 = "UTF-8"

// SESNotifier delivers account emails through Amazon SES with bounded retries.
type SESNotifier struct {
	client       *ses.Client
	from         string
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	log          *zap.Logger
}

// NewSESNotifier loads AWS credentials from the environment and builds the notifier.
func NewSESNotifier(ctx context.Context, cfg config.EmailSettings, log *zap.Logger) (*SESNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &SESNotifier{
		client:       ses.NewFromConfig(awsCfg),
		from:         cfg.From,
		baseURL:      cfg.BaseURL,
		maxRetries:   maxRetries,
		retryBackoff: backoff,
		log:          log,
	}, nil
}

var _ port.Notifier = (*SESNotifier)(nil)

// SendActivation emails the activation link.
func (n *SESNotifier) SendActivation(ctx context.Context, notification port.ActivationNotification) error {
	subject := "Activate your account"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome! Please activate your account by following the link below:</p>"+
			"<p><a href=\"%s/activate?token=%s\">Activate account</a></p>"+
			"<p>The link expires at %s.</p>",
		notification.FirstName, n.baseURL, notification.Token,
		notification.ExpiresAt.UTC().Format(time.RFC1123))

	return n.send(ctx, notification.Email, subject, body)
}

// SendActivationConfirmed emails the post-activation confirmation.
func (n *SESNotifier) SendActivationConfirmed(ctx context.Context, notification port.ActivationConfirmedNotification) error {
	subject := "Your account is active"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your account has been activated. You can now log in.</p>",
		notification.FirstName)

	return n.send(ctx, notification.Email, subject, body)
}

// SendPasswordReset emails the password reset link.
func (n *SESNotifier) SendPasswordReset(ctx context.Context, notification port.PasswordResetNotification) error {
	subject := "Reset your password"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>A password reset was requested for your account. "+
			"Follow the link below to choose a new password:</p>"+
			"<p><a href=\"%s/reset-password?token=%s\">Reset password</a></p>"+
			"<p>The link expires at %s. If you did not request this, you can ignore this email.</p>",
		notification.FirstName, n.baseURL, notification.Token,
		notification.ExpiresAt.UTC().Format(time.RFC1123))

	return n.send(ctx, notification.Email, subject, body)
}

func (n *SESNotifier) send(ctx context.Context, to, subject, htmlBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(charsetUTF8)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String(charsetUTF8)},
			},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= n.maxRetries; attempt++ {
		if _, err := n.client.SendEmail(ctx, input); err == nil {
			n.log.Debug("email sent",
				zap.String("to", logger.MaskEmail(to)),
				zap.String("subject", subject),
				zap.Int("attempt", attempt))
			return nil
		} else {
			lastErr = err
		}

		if attempt < n.maxRetries {
			select {
			case <-time.After(n.retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("send email via ses after %d attempts: %w", n.maxRetries, lastErr)
}
