package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryProvider implements Provider with a settable account. A
// resolution delay can be configured to mimic auth state that loads
// asynchronously after page scripts start running.
type MemoryProvider struct {
	mu      sync.RWMutex
	account *Account
	delay   time.Duration
	err     error
}

// NewMemoryProvider creates a provider with no signed-in account
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

// SignIn sets the current account
func (m *MemoryProvider) SignIn(account *Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account = account
}

// SignOut clears the current account
func (m *MemoryProvider) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account = nil
}

// SetDelay makes CurrentAccount wait before answering
func (m *MemoryProvider) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetError makes CurrentAccount fail with the given error
func (m *MemoryProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CurrentAccount implements Provider
func (m *MemoryProvider) CurrentAccount(ctx context.Context) (*Account, error) {
	m.mu.RLock()
	account := m.account
	delay := m.delay
	err := m.err
	m.mu.RUnlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotAuthenticated
	}
	return account, nil
}
