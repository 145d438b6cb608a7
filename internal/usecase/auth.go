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
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

// TokenPair bundles the issued access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// LoginResult carries the issued tokens along with the account summary.
type LoginResult struct {
	Account domain.Account
	Tokens  TokenPair
}

// AuthService coordinates login, lockout, and token flows.
type AuthService struct {
	accounts port.AccountRepository
	codec    *security.TokenCodec
	events   port.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithAuthClock overrides the service clock.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(accounts port.AccountRepository, codec *security.TokenCodec, events port.EventPublisher, log *zap.Logger, opts ...AuthOption) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}

	service := &AuthService{
		accounts: accounts,
		codec:    codec,
		events:   events,
		log:      log,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// Login validates credentials and issues a token pair. Lock status is checked
// before activation status, and both before the password, so a locked account
// reports locked even with correct credentials. A wrong password feeds the
// atomic failure counter; the account locks at the configured threshold and
// stays locked until explicitly unlocked.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if account.IsLocked {
		return nil, ErrAccountLocked
	}
	if !account.IsActive {
		return nil, ErrAccountNotActivated
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, s.recordFailedLogin(ctx, account)
	}

	now := s.now().UTC()
	if account.FailedLoginAttempts > 0 {
		if err := s.accounts.ResetFailedLogins(ctx, account.ID, now); err != nil {
			return nil, fmt.Errorf("reset failed logins: %w", err)
		}
		account.FailedLoginAttempts = 0
	}

	tokens, err := s.issueTokenPair(account.ID, account.Email)
	if err != nil {
		return nil, err
	}

	sanitized := *account
	sanitized.PasswordHash = ""

	return &LoginResult{Account: sanitized, Tokens: tokens}, nil
}

func (s *AuthService) recordFailedLogin(ctx context.Context, account *domain.Account) error {
	now := s.now().UTC()

	attempts, locked, err := s.accounts.RecordFailedLogin(ctx, account.ID, now, domain.MaxFailedLoginAttempts)
	if err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}

	if locked {
		if s.events != nil {
			event := domain.AccountLockedEvent{
				EventID:        uuid.NewString(),
				AccountID:      account.ID,
				Email:          account.Email,
				FailedAttempts: attempts,
				LockedAt:       now,
			}
			if err := s.events.PublishAccountLocked(ctx, event); err != nil {
				s.log.Warn("publish account locked event", zap.Error(err))
			}
		}
		return ErrAccountLocked
	}

	remaining := domain.MaxFailedLoginAttempts - attempts
	if remaining < 0 {
		remaining = 0
	}
	return &FailedLoginError{Remaining: remaining}
}

// Refresh verifies a refresh-typed token and issues a fresh access token.
// The refresh token itself is returned unchanged; it is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	claims, err := s.codec.Verify(refreshToken, security.TokenKindRefresh)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrExpiredRefreshToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if account.IsLocked {
		return nil, ErrAccountLocked
	}
	if !account.IsActive {
		return nil, ErrAccountNotActivated
	}

	accessToken, err := s.codec.IssueAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	sanitized := *account
	sanitized.PasswordHash = ""

	return &LoginResult{
		Account: sanitized,
		Tokens: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
		},
	}, nil
}

// ParseAccessToken validates an access-typed token for request authentication.
func (s *AuthService) ParseAccessToken(token string) (*security.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidAccessToken
	}

	claims, err := s.codec.Verify(token, security.TokenKindAccess)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	return claims, nil
}

func (s *AuthService) issueTokenPair(accountID, email string) (TokenPair, error) {
	accessToken, err := s.codec.IssueAccessToken(accountID, email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.codec.IssueRefreshToken(accountID, email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}, nil
}
