package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
)

func TestMain(m *testing.M) {
	// Cheap hashing parameters keep the suite fast without changing semantics.
	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func ptrString(s string) *string {
	return &s
}

type mockAccountRepository struct {
	mu sync.Mutex

	createFn               func(ctx context.Context, account domain.Account) error
	getByIDFn              func(ctx context.Context, id string) (*domain.Account, error)
	getByEmailFn           func(ctx context.Context, email string) (*domain.Account, error)
	getByActivationTokenFn func(ctx context.Context, token string) (*domain.Account, error)
	getByResetTokenFn      func(ctx context.Context, token string, reference time.Time) (*domain.Account, error)
	activateFn             func(ctx context.Context, id string, at time.Time) error
	recordFailedLoginFn    func(ctx context.Context, id string, at time.Time, maxAttempts int) (int, bool, error)
	resetFailedLoginsFn    func(ctx context.Context, id string, at time.Time) error
	setResetTokenFn        func(ctx context.Context, id, token string, expiresAt, at time.Time) error
	updatePasswordFn       func(ctx context.Context, id, passwordHash string, retired domain.PasswordHistoryEntry, historyLimit int, changedAt time.Time) error
	unlockFn               func(ctx context.Context, id string, at time.Time) error
	listFn                 func(ctx context.Context, page, pageSize int) ([]domain.Account, int64, error)

	createCalls            int
	recordFailedCalls      int
	resetFailedLoginsCalls int
	activateCalls          int
	setResetTokenCalls     int
	updatePasswordCalls    int
	unlockCalls            int
}

func (m *mockAccountRepository) Create(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createFn == nil {
		return errors.New("unexpected call: Create")
	}
	return m.createFn(ctx, account)
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.getByIDFn == nil {
		return nil, errors.New("unexpected call: GetByID")
	}
	return m.getByIDFn(ctx, id)
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.getByEmailFn == nil {
		return nil, errors.New("unexpected call: GetByEmail")
	}
	return m.getByEmailFn(ctx, email)
}

func (m *mockAccountRepository) GetByActivationToken(ctx context.Context, token string) (*domain.Account, error) {
	if m.getByActivationTokenFn == nil {
		return nil, errors.New("unexpected call: GetByActivationToken")
	}
	return m.getByActivationTokenFn(ctx, token)
}

func (m *mockAccountRepository) GetByResetToken(ctx context.Context, token string, reference time.Time) (*domain.Account, error) {
	if m.getByResetTokenFn == nil {
		return nil, errors.New("unexpected call: GetByResetToken")
	}
	return m.getByResetTokenFn(ctx, token, reference)
}

func (m *mockAccountRepository) Activate(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	m.activateCalls++
	m.mu.Unlock()
	if m.activateFn == nil {
		return errors.New("unexpected call: Activate")
	}
	return m.activateFn(ctx, id, at)
}

func (m *mockAccountRepository) RecordFailedLogin(ctx context.Context, id string, at time.Time, maxAttempts int) (int, bool, error) {
	m.mu.Lock()
	m.recordFailedCalls++
	m.mu.Unlock()
	if m.recordFailedLoginFn == nil {
		return 0, false, errors.New("unexpected call: RecordFailedLogin")
	}
	return m.recordFailedLoginFn(ctx, id, at, maxAttempts)
}

func (m *mockAccountRepository) ResetFailedLogins(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	m.resetFailedLoginsCalls++
	m.mu.Unlock()
	if m.resetFailedLoginsFn == nil {
		return errors.New("unexpected call: ResetFailedLogins")
	}
	return m.resetFailedLoginsFn(ctx, id, at)
}

func (m *mockAccountRepository) SetResetToken(ctx context.Context, id, token string, expiresAt, at time.Time) error {
	m.mu.Lock()
	m.setResetTokenCalls++
	m.mu.Unlock()
	if m.setResetTokenFn == nil {
		return errors.New("unexpected call: SetResetToken")
	}
	return m.setResetTokenFn(ctx, id, token, expiresAt, at)
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string, retired domain.PasswordHistoryEntry, historyLimit int, changedAt time.Time) error {
	m.mu.Lock()
	m.updatePasswordCalls++
	m.mu.Unlock()
	if m.updatePasswordFn == nil {
		return errors.New("unexpected call: UpdatePassword")
	}
	return m.updatePasswordFn(ctx, id, passwordHash, retired, historyLimit, changedAt)
}

func (m *mockAccountRepository) Unlock(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	m.unlockCalls++
	m.mu.Unlock()
	if m.unlockFn == nil {
		return errors.New("unexpected call: Unlock")
	}
	return m.unlockFn(ctx, id, at)
}

func (m *mockAccountRepository) List(ctx context.Context, page, pageSize int) ([]domain.Account, int64, error) {
	if m.listFn == nil {
		return nil, 0, errors.New("unexpected call: List")
	}
	return m.listFn(ctx, page, pageSize)
}

type mockEventPublisher struct {
	mu sync.Mutex

	registered     []domain.AccountRegisteredEvent
	activated      []domain.AccountActivatedEvent
	locked         []domain.AccountLockedEvent
	unlocked       []domain.AccountUnlockedEvent
	passwordChange []domain.PasswordChangedEvent
	resetRequested []domain.PasswordResetRequestedEvent
}

func (m *mockEventPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, event)
	return nil
}

func (m *mockEventPublisher) PublishAccountActivated(_ context.Context, event domain.AccountActivatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activated = append(m.activated, event)
	return nil
}

func (m *mockEventPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = append(m.locked, event)
	return nil
}

func (m *mockEventPublisher) PublishAccountUnlocked(_ context.Context, event domain.AccountUnlockedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocked = append(m.unlocked, event)
	return nil
}

func (m *mockEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwordChange = append(m.passwordChange, event)
	return nil
}

func (m *mockEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetRequested = append(m.resetRequested, event)
	return nil
}

// mockNotifier signals deliveries over a channel so tests can wait on the
// asynchronous dispatch.
type mockNotifier struct {
	activations chan port.ActivationNotification
	confirmed   chan port.ActivationConfirmedNotification
	resets      chan port.PasswordResetNotification
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{
		activations: make(chan port.ActivationNotification, 1),
		confirmed:   make(chan port.ActivationConfirmedNotification, 1),
		resets:      make(chan port.PasswordResetNotification, 1),
	}
}

func (m *mockNotifier) SendActivation(_ context.Context, n port.ActivationNotification) error {
	m.activations <- n
	return nil
}

func (m *mockNotifier) SendActivationConfirmed(_ context.Context, n port.ActivationConfirmedNotification) error {
	m.confirmed <- n
	return nil
}

func (m *mockNotifier) SendPasswordReset(_ context.Context, n port.PasswordResetNotification) error {
	m.resets <- n
	return nil
}
