package gate

import (
	"strings"
	"testing"

	"github.com/site89/s89gated/pkg/pagemeta"
	"github.com/site89/s89gated/pkg/session"
)

func TestLocalGate(t *testing.T) {
	tests := []struct {
		name string
		req  pagemeta.Requirement
		sess session.Context
		want Decision
	}{
		{
			name: "no requirement always grants",
			req:  pagemeta.None(),
			sess: session.Context{},
			want: Granted,
		},
		{
			name: "sufficient cached clearance",
			req:  pagemeta.Require(3),
			sess: session.Context{SelectedID: "C1", CachedClearance: 5},
			want: Granted,
		},
		{
			name: "exact cached clearance",
			req:  pagemeta.Require(3),
			sess: session.Context{SelectedID: "C1", CachedClearance: 3},
			want: Granted,
		},
		{
			name: "insufficient cached clearance",
			req:  pagemeta.Require(3),
			sess: session.Context{SelectedID: "C1", CachedClearance: 2},
			want: Denied,
		},
		{
			name: "decorated string clearance",
			req:  pagemeta.Require(3),
			sess: session.Context{SelectedID: "C1", CachedClearance: "Level 4"},
			want: Granted,
		},
		{
			name: "missing cache denies",
			req:  pagemeta.Require(1),
			sess: session.Context{},
			want: Denied,
		},
		{
			name: "unparsable cached clearance denies",
			req:  pagemeta.Require(1),
			sess: session.Context{SelectedID: "C1", CachedClearance: "redacted"},
			want: Denied,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewLocalGate()
			out := g.Check(tc.req, tc.sess, "/page.html")
			if out.Decision != tc.want {
				t.Errorf("Check() = %v, want %v (reason: %s)", out.Decision, tc.want, out.Reason)
			}
			if tc.want == Denied && out.RedirectURL == "" {
				t.Error("denied outcome should carry a redirect URL")
			}
		})
	}
}

func TestLocalGateIdempotent(t *testing.T) {
	g := NewLocalGate()
	req := pagemeta.Require(5)
	sess := session.Context{SelectedID: "C1", CachedClearance: 1}

	first := g.Check(req, sess, "/secret.html")
	if first.Decision != Denied {
		t.Fatalf("first Check() = %v, want Denied", first.Decision)
	}

	// Later calls must return the settled outcome even if the inputs
	// would now grant
	second := g.Check(pagemeta.None(), sess, "/secret.html")
	if second != first {
		t.Errorf("second Check() = %+v, want settled %+v", second, first)
	}
	if g.State() != Denied {
		t.Errorf("State() = %v, want Denied", g.State())
	}
}

func TestLocalGateRedirectCarriesOrigin(t *testing.T) {
	g := NewLocalGate()
	out := g.Check(pagemeta.Require(4), session.Context{}, "/files/a-113.html?rev=2")

	if out.Decision != Denied {
		t.Fatalf("Check() = %v, want Denied", out.Decision)
	}
	if !strings.HasPrefix(out.RedirectURL, DeniedRoute+"?from=") {
		t.Errorf("RedirectURL = %q, want prefix %q", out.RedirectURL, DeniedRoute+"?from=")
	}
	if !strings.Contains(out.RedirectURL, "%2Ffiles%2Fa-113.html%3Frev%3D2") {
		t.Errorf("RedirectURL = %q, want escaped origin path", out.RedirectURL)
	}
}
