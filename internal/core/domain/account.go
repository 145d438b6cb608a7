package domain

import "time"

const (
	// MaxFailedLoginAttempts is the number of consecutive failed logins that locks an account.
	MaxFailedLoginAttempts = 3
	// PasswordHistoryLimit caps how many retired password digests are kept per account.
	PasswordHistoryLimit = 3
)

// Account mirrors the persisted representation in the accounts collection.
type Account struct {
	ID                  string
	FirstName           string
	LastName            string
	DateOfBirth         time.Time
	Email               string
	Phone               *string
	PasswordHash        string
	IsActive            bool
	IsLocked            bool
	FailedLoginAttempts int
	LastFailedLogin     *time.Time
	PasswordHistory     []PasswordHistoryEntry
	ActivationToken     *string
	ActivationExpires   *time.Time
	ResetToken          *string
	ResetExpires        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// PasswordHistoryEntry tracks a retired password digest for reuse prevention.
type PasswordHistoryEntry struct {
	PasswordHash string
	ChangedAt    time.Time
}
