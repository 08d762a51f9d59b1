package gate

import (
	"sync"

	"github.com/site89/s89gated/pkg/clearance"
	"github.com/site89/s89gated/pkg/pagemeta"
	"github.com/site89/s89gated/pkg/session"
)

// LocalGate is the original, trusting variant: it compares the
// clearance value the client cached against the page requirement
// without consulting the backend. It is fast and fully synchronous,
// but content may already be visible when it runs and the cached value
// is client-editable. VerifiedGate supersedes it for restricted pages.
type LocalGate struct {
	mu      sync.Mutex
	state   Decision
	outcome Outcome
}

// NewLocalGate creates a gate for one page load
func NewLocalGate() *LocalGate {
	return &LocalGate{state: Blocked}
}

// Check evaluates the page requirement against the cached clearance.
// The first call settles the outcome; later calls return it unchanged,
// so the check can be registered from every plausible page lifecycle
// hook and still issue at most one redirect.
func (g *LocalGate) Check(req pagemeta.Requirement, sess session.Context, fromPath string) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Terminal() {
		return g.outcome
	}

	g.outcome = evaluateLocal(req, sess, fromPath)
	g.state = g.outcome.Decision
	return g.outcome
}

// State returns the gate's current decision state
func (g *LocalGate) State() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func evaluateLocal(req pagemeta.Requirement, sess session.Context, fromPath string) Outcome {
	if !req.Restricted() {
		return Outcome{Decision: Granted, Reason: "no requirement declared"}
	}

	level, ok := clearance.ParseLevel(sess.CachedClearance)
	if !ok {
		return Outcome{
			Decision:    Denied,
			RedirectURL: denyRedirect(fromPath),
			Reason:      "no usable cached clearance",
		}
	}

	if !level.Satisfies(req.Level()) {
		return Outcome{
			Decision:    Denied,
			Level:       level,
			RedirectURL: denyRedirect(fromPath),
			Reason:      "insufficient cached clearance",
		}
	}

	return Outcome{Decision: Granted, Level: level}
}
