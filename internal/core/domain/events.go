package domain

import "time"

// AccountRegisteredEvent represents the payload for accounts.account.registered messages.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Email        string
	Phone        *string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// AccountActivatedEvent represents the payload for accounts.account.activated messages.
type AccountActivatedEvent struct {
	EventID     string
	AccountID   string
	Email       string
	ActivatedAt time.Time
	Metadata    map[string]any
}

// AccountLockedEvent represents the payload for accounts.account.locked messages.
type AccountLockedEvent struct {
	EventID        string
	AccountID      string
	Email          string
	FailedAttempts int
	LockedAt       time.Time
	Metadata       map[string]any
}

// AccountUnlockedEvent represents the payload for accounts.account.unlocked messages.
type AccountUnlockedEvent struct {
	EventID    string
	AccountID  string
	Email      string
	UnlockedAt time.Time
	Metadata   map[string]any
}

// PasswordChangedEvent represents the payload for accounts.account.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	AccountID string
	ChangedAt time.Time
	ChangedBy string
	Metadata  map[string]any
}

// PasswordResetRequestedEvent represents the payload for accounts.account.password.reset_requested messages.
type PasswordResetRequestedEvent struct {
	EventID           string
	AccountID         string
	RequestedAt       time.Time
	MaskedDestination string
	ExpiresAt         time.Time
	Metadata          map[string]any
}
