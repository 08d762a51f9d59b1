package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/site89/s89gated/pkg/characters"
	"github.com/site89/s89gated/pkg/clearance"
	"github.com/site89/s89gated/pkg/identity"
	"github.com/site89/s89gated/pkg/pagemeta"
	"github.com/site89/s89gated/pkg/session"
)

// failingSource reports a backend failure on every load
type failingSource struct{}

func (failingSource) LoadCharacter(ctx context.Context, id string) (*characters.Character, error) {
	return nil, errors.New("backend unavailable")
}

// slowSource blocks until the context is cancelled
type slowSource struct{}

func (slowSource) LoadCharacter(ctx context.Context, id string) (*characters.Character, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestGate(t *testing.T, config Config) *VerifiedGate {
	t.Helper()
	if config.Identity == nil {
		config.Identity = identity.NewMemoryProvider()
	}
	if config.Characters == nil {
		config.Characters = characters.NewMemorySource()
	}
	g, err := NewVerifiedGate(config)
	if err != nil {
		t.Fatalf("NewVerifiedGate: %v", err)
	}
	return g
}

func signedIn(uid string) *identity.MemoryProvider {
	p := identity.NewMemoryProvider()
	p.SignIn(&identity.Account{UID: uid})
	return p
}

func sourceWith(chars ...*characters.Character) *characters.MemorySource {
	s := characters.NewMemorySource()
	for _, c := range chars {
		s.AddCharacter(c)
	}
	return s
}

func TestVerifiedGateNoRequirement(t *testing.T) {
	// Unrestricted pages grant regardless of auth or character state
	g := newTestGate(t, Config{})
	out := g.Check(context.Background(), pagemeta.None(), session.Context{}, "/")
	if out.Decision != Granted {
		t.Errorf("Check() = %v, want Granted", out.Decision)
	}
}

func TestVerifiedGateUnauthenticated(t *testing.T) {
	g := newTestGate(t, Config{})
	out := g.Check(context.Background(), pagemeta.Require(1), session.Context{}, "/logs.html")
	if out.Decision != Denied {
		t.Errorf("Check() = %v, want Denied", out.Decision)
	}
}

func TestVerifiedGateGranted(t *testing.T) {
	g := newTestGate(t, Config{
		Identity: signedIn("U1"),
		Characters: sourceWith(&characters.Character{
			ID: "C1", Clearance: 5, LinkedUID: "U1",
		}),
	})

	out := g.Check(context.Background(), pagemeta.Require(3),
		session.Context{SelectedID: "C1"}, "/files/a-113.html")

	if out.Decision != Granted {
		t.Fatalf("Check() = %v, want Granted (reason: %s)", out.Decision, out.Reason)
	}
	if out.Level != 5 {
		t.Errorf("Level = %d, want 5", out.Level)
	}
	if out.AccountUID != "U1" {
		t.Errorf("AccountUID = %q, want U1", out.AccountUID)
	}
}

func TestVerifiedGateDeniedByLevel(t *testing.T) {
	g := newTestGate(t, Config{
		Identity: signedIn("U1"),
		Characters: sourceWith(&characters.Character{
			ID: "C1", Clearance: 2, LinkedUID: "U1",
		}),
	})

	out := g.Check(context.Background(), pagemeta.Require(3),
		session.Context{SelectedID: "C1"}, "/files/a-113.html")

	if out.Decision != Denied {
		t.Fatalf("Check() = %v, want Denied", out.Decision)
	}
	if out.RedirectURL != DeniedRoute+"?from=%2Ffiles%2Fa-113.html" {
		t.Errorf("RedirectURL = %q", out.RedirectURL)
	}
}

func TestVerifiedGateOwnershipMismatch(t *testing.T) {
	// A record with ample clearance but linked to another account
	// always denies, no matter the numbers
	g := newTestGate(t, Config{
		Identity: signedIn("U1"),
		Characters: sourceWith(&characters.Character{
			ID: "C1", Clearance: 10, LinkedUID: "U2",
		}),
	})

	out := g.Check(context.Background(), pagemeta.Require(3),
		session.Context{SelectedID: "C1"}, "/files/a-113.html")

	if out.Decision != Denied {
		t.Fatalf("Check() = %v, want Denied", out.Decision)
	}
}

func TestVerifiedGateNoCharacterSelected(t *testing.T) {
	// Authenticated account without a selected character resolves to
	// the lowest personnel tier
	g := newTestGate(t, Config{Identity: signedIn("U1")})

	out := g.Check(context.Background(), pagemeta.Require(1), session.Context{}, "/logs.html")
	if out.Decision != Granted {
		t.Fatalf("Check() = %v, want Granted (reason: %s)", out.Decision, out.Reason)
	}
	if out.Level != clearance.Intern {
		t.Errorf("Level = %d, want %d", out.Level, clearance.Intern)
	}

	g2 := newTestGate(t, Config{Identity: signedIn("U1")})
	out = g2.Check(context.Background(), pagemeta.Require(2), session.Context{}, "/logs.html")
	if out.Decision != Denied {
		t.Errorf("Check() with requirement above Intern = %v, want Denied", out.Decision)
	}
}

func TestVerifiedGateMissingRecord(t *testing.T) {
	// A selected character that no longer exists resolves to clearance 0
	g := newTestGate(t, Config{Identity: signedIn("U1")})

	out := g.Check(context.Background(), pagemeta.Require(1),
		session.Context{SelectedID: "gone"}, "/logs.html")

	if out.Decision != Denied {
		t.Errorf("Check() = %v, want Denied", out.Decision)
	}
}

func TestVerifiedGateAbsentClearanceDefaults(t *testing.T) {
	// A record without a clearance attribute counts as Intern
	g := newTestGate(t, Config{
		Identity: signedIn("U1"),
		Characters: sourceWith(&characters.Character{
			ID: "C1", LinkedUID: "U1",
		}),
	})

	out := g.Check(context.Background(), pagemeta.Require(1),
		session.Context{SelectedID: "C1"}, "/logs.html")

	if out.Decision != Granted {
		t.Fatalf("Check() = %v, want Granted (reason: %s)", out.Decision, out.Reason)
	}
	if out.Level != clearance.Intern {
		t.Errorf("Level = %d, want %d", out.Level, clearance.Intern)
	}
}

func TestVerifiedGateMonotonicity(t *testing.T) {
	// Raising the requirement past the character's clearance flips the
	// outcome exactly once
	userLevel := clearance.Level(3)
	flippedAt := -1

	for required := 0; required <= 6; required++ {
		g := newTestGate(t, Config{
			Identity: signedIn("U1"),
			Characters: sourceWith(&characters.Character{
				ID: "C1", Clearance: int(userLevel), LinkedUID: "U1",
			}),
		})
		out := g.Check(context.Background(), pagemeta.Require(clearance.Level(required)),
			session.Context{SelectedID: "C1"}, "/page.html")

		if out.Decision == Denied && flippedAt < 0 {
			flippedAt = required
		}
		if out.Decision == Granted && flippedAt >= 0 {
			t.Fatalf("outcome flipped back to Granted at required=%d", required)
		}
	}

	if flippedAt != int(userLevel)+1 {
		t.Errorf("outcome flipped at required=%d, want %d", flippedAt, userLevel+1)
	}
}

func TestVerifiedGateStoreFailureDenies(t *testing.T) {
	g := newTestGate(t, Config{
		Identity:   signedIn("U1"),
		Characters: failingSource{},
	})

	out := g.Check(context.Background(), pagemeta.Require(1),
		session.Context{SelectedID: "C1"}, "/logs.html")

	if out.Decision != Denied {
		t.Errorf("Check() = %v, want Denied on store failure", out.Decision)
	}
}

func TestVerifiedGateIdentityProviderFailureDenies(t *testing.T) {
	provider := identity.NewMemoryProvider()
	provider.SetError(errors.New("auth service unreachable"))
	g := newTestGate(t, Config{Identity: provider})

	out := g.Check(context.Background(), pagemeta.Require(1), session.Context{}, "/logs.html")
	if out.Decision != Denied {
		t.Errorf("Check() = %v, want Denied on provider failure", out.Decision)
	}
}

func TestVerifiedGateIdentityTimeout(t *testing.T) {
	// Auth state that never resolves within the bound is treated as
	// signed out
	provider := identity.NewMemoryProvider()
	provider.SignIn(&identity.Account{UID: "U1"})
	provider.SetDelay(time.Second)

	g := newTestGate(t, Config{
		Identity:        provider,
		IdentityTimeout: 20 * time.Millisecond,
	})

	out := g.Check(context.Background(), pagemeta.Require(1), session.Context{}, "/logs.html")
	if out.Decision != Denied {
		t.Errorf("Check() = %v, want Denied on identity timeout", out.Decision)
	}
}

func TestVerifiedGateOuterTimeout(t *testing.T) {
	// The whole check hanging resolves to Granted rather than leaving
	// the page blocked
	g := newTestGate(t, Config{
		Identity:     signedIn("U1"),
		Characters:   slowSource{},
		CheckTimeout: 50 * time.Millisecond,
	})

	out := g.Check(context.Background(), pagemeta.Require(1),
		session.Context{SelectedID: "C1"}, "/logs.html")

	if out.Decision != Granted {
		t.Errorf("Check() = %v, want Granted on outer timeout", out.Decision)
	}
}

func TestVerifiedGateIdempotent(t *testing.T) {
	g := newTestGate(t, Config{
		Identity: signedIn("U1"),
		Characters: sourceWith(&characters.Character{
			ID: "C1", Clearance: 5, LinkedUID: "U1",
		}),
	})

	sess := session.Context{SelectedID: "C1"}
	first := g.Check(context.Background(), pagemeta.Require(3), sess, "/page.html")
	if first.Decision != Granted {
		t.Fatalf("first Check() = %v, want Granted", first.Decision)
	}

	// A later call with inputs that would deny still returns the
	// settled outcome
	second := g.Check(context.Background(), pagemeta.Require(6), sess, "/page.html")
	if second != first {
		t.Errorf("second Check() = %+v, want settled %+v", second, first)
	}
}

func TestVerifiedGateSettledSignal(t *testing.T) {
	g := newTestGate(t, Config{Identity: signedIn("U1")})

	select {
	case <-g.Settled():
		t.Fatal("Settled() closed before any check ran")
	default:
	}

	g.Check(context.Background(), pagemeta.None(), session.Context{}, "/")

	select {
	case <-g.Settled():
	case <-time.After(time.Second):
		t.Fatal("Settled() not closed after check settled")
	}
}

func TestVerifiedGateStates(t *testing.T) {
	g := newTestGate(t, Config{Identity: signedIn("U1")})
	if g.State() != Blocked {
		t.Errorf("initial State() = %v, want Blocked", g.State())
	}

	g.Check(context.Background(), pagemeta.Require(1), session.Context{}, "/logs.html")
	if !g.State().Terminal() {
		t.Errorf("State() after check = %v, want terminal", g.State())
	}
}
