package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByActivationToken(ctx context.Context, token string) (*domain.Account, error)
	// GetByResetToken matches only tokens whose expiry is after the reference time.
	GetByResetToken(ctx context.Context, token string, reference time.Time) (*domain.Account, error)
	Activate(ctx context.Context, id string, at time.Time) error
	// RecordFailedLogin atomically increments the failure counter and flips the
	// lock once the counter reaches maxAttempts. It reports the post-increment
	// counter and lock state.
	RecordFailedLogin(ctx context.Context, id string, at time.Time, maxAttempts int) (attempts int, locked bool, err error)
	ResetFailedLogins(ctx context.Context, id string, at time.Time) error
	SetResetToken(ctx context.Context, id string, token string, expiresAt time.Time, at time.Time) error
	// UpdatePassword stores the new digest, retires the previous one into the
	// history (oldest entries evicted past historyLimit), and clears any reset
	// secret.
	UpdatePassword(ctx context.Context, id string, passwordHash string, retired domain.PasswordHistoryEntry, historyLimit int, changedAt time.Time) error
	Unlock(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, page, pageSize int) ([]domain.Account, int64, error)
}
