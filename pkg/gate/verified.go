package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/site89/s89gated/pkg/characters"
	"github.com/site89/s89gated/pkg/clearance"
	"github.com/site89/s89gated/pkg/identity"
	"github.com/site89/s89gated/pkg/pagemeta"
	"github.com/site89/s89gated/pkg/session"
)

const (
	// DefaultIdentityTimeout bounds how long the gate waits for auth
	// state to resolve; expiry is treated as signed out.
	DefaultIdentityTimeout = 3 * time.Second
	// DefaultCheckTimeout bounds the whole verification sequence;
	// expiry resolves to Granted so an unresponsive backend cannot
	// leave the page blocked forever.
	DefaultCheckTimeout = 5 * time.Second
)

// Config holds the configuration for creating a VerifiedGate
type Config struct {
	// Identity resolves the currently authenticated account
	Identity identity.Provider

	// Characters supplies authoritative character records
	Characters characters.Source

	// IdentityTimeout overrides DefaultIdentityTimeout if positive
	IdentityTimeout time.Duration

	// CheckTimeout overrides DefaultCheckTimeout if positive
	CheckTimeout time.Duration
}

// VerifiedGate is the render-blocking variant: it resolves the
// authenticated account, fetches the authoritative character record by
// the cached id hint, verifies the ownership link and only then grants.
// All provider and store failures during the sequence deny; the only
// fail-open paths are an absent page requirement and the outer timeout.
//
// A gate carries the decision state for exactly one page load and is
// not reused across loads.
type VerifiedGate struct {
	identity        identity.Provider
	characters      characters.Source
	identityTimeout time.Duration
	checkTimeout    time.Duration

	mu      sync.Mutex
	state   Decision
	outcome Outcome
	settled chan struct{}
}

// NewVerifiedGate creates a gate for one page load
func NewVerifiedGate(config Config) (*VerifiedGate, error) {
	if config.Identity == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if config.Characters == nil {
		return nil, fmt.Errorf("character source is required")
	}

	identityTimeout := config.IdentityTimeout
	if identityTimeout <= 0 {
		identityTimeout = DefaultIdentityTimeout
	}
	checkTimeout := config.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}

	return &VerifiedGate{
		identity:        config.Identity,
		characters:      config.Characters,
		identityTimeout: identityTimeout,
		checkTimeout:    checkTimeout,
		state:           Blocked,
		settled:         make(chan struct{}),
	}, nil
}

// Check runs the verification sequence once and settles the outcome.
// Repeated calls return the settled outcome without re-running; callers
// racing an in-flight check wait for it to settle.
func (g *VerifiedGate) Check(ctx context.Context, req pagemeta.Requirement, sess session.Context, fromPath string) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Terminal() {
		return g.outcome
	}

	g.state = Checking
	g.outcome = g.run(ctx, req, sess, fromPath)
	g.state = g.outcome.Decision
	close(g.settled)
	return g.outcome
}

// State returns the gate's current decision state
func (g *VerifiedGate) State() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Settled returns a channel closed once the decision is terminal.
// Dependent work that must not start before the gate settles waits on
// it, replacing the completion signal page scripts listened for.
func (g *VerifiedGate) Settled() <-chan struct{} {
	return g.settled
}

// run applies the outer timeout around the verification sequence
func (g *VerifiedGate) run(ctx context.Context, req pagemeta.Requirement, sess session.Context, fromPath string) Outcome {
	if !req.Restricted() {
		return Outcome{Decision: Granted, Reason: "no requirement declared"}
	}

	ctx, cancel := context.WithTimeout(ctx, g.checkTimeout)
	defer cancel()

	results := make(chan Outcome, 1)
	go func() {
		results <- g.verify(ctx, req, sess, fromPath)
	}()

	select {
	case outcome := <-results:
		return outcome
	case <-ctx.Done():
		// An unresponsive backend must not brick navigation
		return Outcome{Decision: Granted, Reason: "check timed out"}
	}
}

// verify is the verification sequence proper
func (g *VerifiedGate) verify(ctx context.Context, req pagemeta.Requirement, sess session.Context, fromPath string) Outcome {
	deny := func(level clearance.Level, uid, reason string) Outcome {
		return Outcome{
			Decision:    Denied,
			Level:       level,
			AccountUID:  uid,
			RedirectURL: denyRedirect(fromPath),
			Reason:      reason,
		}
	}

	// Auth state may still be loading when the check starts; bound
	// the wait and treat expiry as signed out.
	idCtx, cancel := context.WithTimeout(ctx, g.identityTimeout)
	account, err := g.identity.CurrentAccount(idCtx)
	cancel()
	if err != nil {
		if errors.Is(err, identity.ErrNotAuthenticated) || errors.Is(err, context.DeadlineExceeded) {
			return deny(0, "", "not authenticated")
		}
		return deny(0, "", fmt.Sprintf("identity resolution failed: %v", err))
	}

	// An authenticated account with no selected character gets the
	// lowest personnel tier rather than an outright denial
	level := clearance.Intern

	if sess.HasSelection() {
		char, err := g.characters.LoadCharacter(ctx, sess.SelectedID)
		switch {
		case errors.Is(err, characters.ErrCharacterNotFound):
			level = clearance.Public
		case err != nil:
			return deny(0, account.UID, fmt.Sprintf("character fetch failed: %v", err))
		default:
			// The cached id is only a hint; a record linked to a
			// different account means someone pointed their cache
			// at another user's character. Always denies.
			if char.LinkedUID != account.UID {
				return deny(0, account.UID, "character linked to different account")
			}
			if parsed, ok := char.ClearanceLevel(); ok {
				level = parsed
			} else {
				level = clearance.Intern
			}
		}
	}

	if level.Satisfies(req.Level()) {
		return Outcome{Decision: Granted, Level: level, AccountUID: account.UID}
	}
	return deny(level, account.UID, "insufficient clearance")
}
