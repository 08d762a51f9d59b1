// Package gate implements the clearance check that decides whether a
// page load may reveal its content. Two variants exist: LocalGate, the
// original best-effort check over client-cached state, and
// VerifiedGate, the render-blocking check that re-verifies identity and
// character ownership against the backend before granting.
package gate

import (
	"net/url"

	"github.com/site89/s89gated/pkg/clearance"
)

// Decision is the gate's state for one page load
type Decision int

const (
	// Blocked means content is withheld and no check has run yet
	Blocked Decision = iota
	// Checking means the verification sequence is in flight
	Checking
	// Granted means content may be revealed (terminal)
	Granted
	// Denied means the page load must redirect away (terminal)
	Denied
)

// String implements fmt.Stringer
func (d Decision) String() string {
	switch d {
	case Blocked:
		return "blocked"
	case Checking:
		return "checking"
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Terminal returns true once the decision is settled
func (d Decision) Terminal() bool {
	return d == Granted || d == Denied
}

// DeniedRoute is the fixed route denied page loads redirect to
const DeniedRoute = "/403/"

// Outcome is the settled result of a gate check
type Outcome struct {
	Decision Decision
	// Level is the clearance the check resolved for the viewer
	Level clearance.Level
	// AccountUID identifies the authenticated account, when resolved
	AccountUID string
	// RedirectURL is set when Denied
	RedirectURL string
	// Reason records why the check settled the way it did. It is
	// for logs only and never shown to the viewer.
	Reason string
}

// denyRedirect builds the access-denied URL carrying the original
// path and query as a return hint
func denyRedirect(fromPath string) string {
	return DeniedRoute + "?from=" + url.QueryEscape(fromPath)
}
