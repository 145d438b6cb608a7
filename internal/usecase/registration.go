package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
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

const (
	defaultActivationTTL = 24 * time.Hour
	notificationTimeout  = 15 * time.Second
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{9,14}$`)

// RegistrationService handles new account onboarding and activation.
type RegistrationService struct {
	accounts          port.AccountRepository
	passwordValidator *security.PasswordValidator
	notifier          port.Notifier
	events            port.EventPublisher
	log               *zap.Logger
	now               func() time.Time
	activationTTL     time.Duration
}

// RegistrationOption customizes a RegistrationService.
type RegistrationOption func(*RegistrationService)

// WithRegistrationClock overrides the service clock.
func WithRegistrationClock(now func() time.Time) RegistrationOption {
	return func(s *RegistrationService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithActivationTTL overrides the activation token lifetime.
func WithActivationTTL(ttl time.Duration) RegistrationOption {
	return func(s *RegistrationService) {
		if ttl > 0 {
			s.activationTTL = ttl
		}
	}
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(accounts port.AccountRepository, validator *security.PasswordValidator, notifier port.Notifier, events port.EventPublisher, log *zap.Logger, opts ...RegistrationOption) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	service := &RegistrationService{
		accounts:          accounts,
		passwordValidator: validator,
		notifier:          notifier,
		events:            events,
		log:               log,
		now:               time.Now,
		activationTTL:     defaultActivationTTL,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Email       string
	Phone       string
	Password    string
}

// Register validates the input, creates an unactivated account with a fresh
// activation secret, and dispatches the activation email asynchronously.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (domain.Account, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return domain.Account{}, fmt.Errorf("first and last name are required")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return domain.Account{}, fmt.Errorf("email is required")
	}

	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.passwordValidator.Validate(input.Password); err != nil {
		return domain.Account{}, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	activationToken, err := security.GenerateSecureToken(32)
	if err != nil {
		return domain.Account{}, fmt.Errorf("generate activation token: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.activationTTL)

	account := domain.Account{
		ID:                uuid.NewString(),
		FirstName:         firstName,
		LastName:          lastName,
		DateOfBirth:       input.DateOfBirth,
		Email:             email,
		Phone:             phone,
		PasswordHash:      passwordHash,
		IsActive:          false,
		PasswordHistory:   []domain.PasswordHistoryEntry{},
		ActivationToken:   &activationToken,
		ActivationExpires: &expiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return domain.Account{}, err
	}

	s.dispatchNotification(account.Email, func(ctx context.Context) error {
		return s.notifier.SendActivation(ctx, port.ActivationNotification{
			Email:     account.Email,
			FirstName: account.FirstName,
			Token:     activationToken,
			ExpiresAt: expiresAt,
		})
	})

	s.publishRegistered(ctx, account, now)

	account.PasswordHash = ""
	return account, nil
}

// Activate consumes an activation secret and marks the account active.
func (s *RegistrationService) Activate(ctx context.Context, token string) (domain.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Account{}, ErrActivationTokenInvalid
	}

	account, err := s.accounts.GetByActivationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, ErrActivationTokenInvalid
		}
		return domain.Account{}, fmt.Errorf("lookup activation token: %w", err)
	}

	if account.IsActive {
		return domain.Account{}, ErrAccountAlreadyActive
	}

	now := s.now().UTC()
	if account.ActivationExpires == nil || now.After(*account.ActivationExpires) {
		return domain.Account{}, ErrActivationTokenExpired
	}

	if err := s.accounts.Activate(ctx, account.ID, now); err != nil {
		return domain.Account{}, fmt.Errorf("activate account: %w", err)
	}

	account.IsActive = true
	account.ActivationToken = nil
	account.ActivationExpires = nil
	account.UpdatedAt = now

	s.dispatchNotification(account.Email, func(ctx context.Context) error {
		return s.notifier.SendActivationConfirmed(ctx, port.ActivationConfirmedNotification{
			Email:     account.Email,
			FirstName: account.FirstName,
		})
	})

	if s.events != nil {
		event := domain.AccountActivatedEvent{
			EventID:     uuid.NewString(),
			AccountID:   account.ID,
			Email:       account.Email,
			ActivatedAt: now,
		}
		if err := s.events.PublishAccountActivated(ctx, event); err != nil {
			s.log.Warn("publish account activated event", zap.Error(err))
		}
	}

	account.PasswordHash = ""
	return *account, nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, account domain.Account, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Email:        account.Email,
		Phone:        account.Phone,
		RegisteredAt: at,
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.log.Warn("publish account registered event", zap.Error(err))
	}
}

func (s *RegistrationService) dispatchNotification(email string, send func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.log.Warn("send account notification",
				zap.String("email", logger.MaskEmail(email)),
				zap.Error(err))
		}
	}()
}

// normalizePhone strips separators and validates the E.164-ish shape the
// platform accepts. Empty input yields a nil phone.
func normalizePhone(raw string) (*string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return nil, nil
	}

	if !phonePattern.MatchString(cleaned) {
		return nil, ErrInvalidPhoneNumber
	}

	return &cleaned, nil
}
