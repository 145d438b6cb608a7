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
	"github.com/arklim/social-platform-accounts/internal/repository"
)

// AccountPage is one page of the account listing.
type AccountPage struct {
	Accounts   []domain.Account
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// HasNext reports whether pages exist past this one.
func (p AccountPage) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether pages exist before this one.
func (p AccountPage) HasPrev() bool {
	return p.Page > 1
}

// AccountService serves profile reads, listings, and administrative unlock.
type AccountService struct {
	accounts port.AccountRepository
	events   port.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// AccountOption customizes an AccountService.
type AccountOption func(*AccountService)

// WithAccountClock overrides the service clock.
func WithAccountClock(now func() time.Time) AccountOption {
	return func(s *AccountService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAccountService constructs an AccountService.
func NewAccountService(accounts port.AccountRepository, events port.EventPublisher, log *zap.Logger, opts ...AccountOption) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}

	service := &AccountService{
		accounts: accounts,
		events:   events,
		log:      log,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// Profile returns the account for the authenticated subject.
func (s *AccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, ErrAccountNotFound
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	account.PasswordHash = ""
	return account, nil
}

// List returns a page of accounts sorted by registration time, newest first.
func (s *AccountService) List(ctx context.Context, page, pageSize int) (*AccountPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	accounts, total, err := s.accounts.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	for i := range accounts {
		accounts[i].PasswordHash = ""
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &AccountPage{
		Accounts:   accounts,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Unlock clears the lock flag and the failure counter for the account
// registered under the given email. Locks never expire on their own; this is
// the only way back in for a locked account.
func (s *AccountService) Unlock(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrAccountNotFound
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	now := s.now().UTC()
	if err := s.accounts.Unlock(ctx, account.ID, now); err != nil {
		return fmt.Errorf("unlock account: %w", err)
	}

	if s.events != nil {
		event := domain.AccountUnlockedEvent{
			EventID:    uuid.NewString(),
			AccountID:  account.ID,
			Email:      account.Email,
			UnlockedAt: now,
		}
		if err := s.events.PublishAccountUnlocked(ctx, event); err != nil {
			s.log.Warn("publish account unlocked event", zap.Error(err))
		}
	}

	return nil
}
