package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const defaultResetTTL = time.Hour

// PasswordService handles password change, forgot, and reset flows.
type PasswordService struct {
	accounts          port.AccountRepository
	passwordValidator *security.PasswordValidator
	notifier          port.Notifier
	events            port.EventPublisher
	log               *zap.Logger
	now               func() time.Time
	resetTTL          time.Duration
	historyLimit      int
}

// PasswordOption customizes a PasswordService.
type PasswordOption func(*PasswordService)

// WithPasswordClock overrides the service clock.
func WithPasswordClock(now func() time.Time) PasswordOption {
	return func(s *PasswordService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithResetTTL overrides the reset token lifetime.
func WithResetTTL(ttl time.Duration) PasswordOption {
	return func(s *PasswordService) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithHistoryLimit overrides how many retired digests are checked for reuse.
func WithHistoryLimit(limit int) PasswordOption {
	return func(s *PasswordService) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// NewPasswordService constructs a PasswordService.
func NewPasswordService(accounts port.AccountRepository, validator *security.PasswordValidator, notifier port.Notifier, events port.EventPublisher, log *zap.Logger, opts ...PasswordOption) *PasswordService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	service := &PasswordService{
		accounts:          accounts,
		passwordValidator: validator,
		notifier:          notifier,
		events:            events,
		log:               log,
		now:               time.Now,
		resetTTL:          defaultResetTTL,
		historyLimit:      domain.PasswordHistoryLimit,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// ChangePassword verifies the current password and applies the new one.
func (s *PasswordService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if accountID == "" {
		return ErrAccountNotFound
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify current password: %w", err)
	}
	if !ok {
		return ErrCurrentPasswordInvalid
	}

	return s.applyNewPassword(ctx, account, newPassword, "self")
}

// ForgotPassword provisions a reset secret when the email is registered.
// The outcome is indistinguishable to the caller whether or not the account
// exists; account enumeration through this endpoint is not possible.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	token, err := security.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.resetTTL)

	if err := s.accounts.SetResetToken(ctx, account.ID, token, expiresAt, now); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.dispatchNotification(account.Email, func(ctx context.Context) error {
		return s.notifier.SendPasswordReset(ctx, port.PasswordResetNotification{
			Email:     account.Email,
			FirstName: account.FirstName,
			Token:     token,
			ExpiresAt: expiresAt,
		})
	})

	if s.events != nil {
		event := domain.PasswordResetRequestedEvent{
			EventID:           uuid.NewString(),
			AccountID:         account.ID,
			RequestedAt:       now,
			MaskedDestination: logger.MaskEmail(account.Email),
			ExpiresAt:         expiresAt,
		}
		if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
			s.log.Warn("publish password reset requested event", zap.Error(err))
		}
	}

	return nil
}

// ResetPassword consumes a non-expired reset secret and applies the new password.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrResetTokenInvalid
	}

	account, err := s.accounts.GetByResetToken(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	return s.applyNewPassword(ctx, account, newPassword, "reset")
}

// applyNewPassword enforces policy and reuse rules, then swaps the digest.
// The outgoing digest joins the history; entries evicted past the limit are
// legal to use again.
func (s *PasswordService) applyNewPassword(ctx context.Context, account *domain.Account, newPassword, changedBy string) error {
	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	same, err := security.VerifyPassword(newPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("compare against current password: %w", err)
	}
	if same {
		return ErrPasswordReused
	}

	for _, entry := range account.PasswordHistory {
		used, err := security.VerifyPassword(newPassword, entry.PasswordHash)
		if err != nil {
			return fmt.Errorf("compare against password history: %w", err)
		}
		if used {
			return ErrPasswordReused
		}
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	retired := domain.PasswordHistoryEntry{
		PasswordHash: account.PasswordHash,
		ChangedAt:    now,
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, passwordHash, retired, s.historyLimit, now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			AccountID: account.ID,
			ChangedAt: now,
			ChangedBy: changedBy,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.log.Warn("publish password changed event", zap.Error(err))
		}
	}

	return nil
}

func (s *PasswordService) dispatchNotification(email string, send func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.log.Warn("send password notification",
				zap.String("email", logger.MaskEmail(email)),
				zap.Error(err))
		}
	}()
}
