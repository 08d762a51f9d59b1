package identity

import (
	"context"
	"errors"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Account is the authenticated identity as reported by the auth service
type Account struct {
	UID   string
	Email string
}

// Provider resolves the currently authenticated account. Resolution may
// block while auth state is still loading; callers bound the wait with
// a context deadline and treat expiry as signed out.
type Provider interface {
	// CurrentAccount returns the authenticated account, or
	// ErrNotAuthenticated when nobody is signed in.
	CurrentAccount(ctx context.Context) (*Account, error)
}
