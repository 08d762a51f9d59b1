package webgate

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/site89/s89gated/pkg/characters"
	"github.com/site89/s89gated/pkg/gate"
	"github.com/site89/s89gated/pkg/identity"
	"github.com/site89/s89gated/pkg/logging"
	"github.com/site89/s89gated/pkg/pagemeta"
	"github.com/site89/s89gated/pkg/session"
)

// SessionCookie carries the signed session token
const SessionCookie = "s89_session"

// SelectedCharacterCookie mirrors the client's selected-character cache
const SelectedCharacterCookie = "selectedCharacter"

// HandlerConfig holds the configuration for creating a Handler
type HandlerConfig struct {
	// Pages resolves the declared requirement per page
	Pages pagemeta.Source

	// Tokens verifies session tokens
	Tokens *identity.TokenProvider

	// Characters supplies authoritative character records
	Characters characters.Source

	// SiteFS holds the published site files
	SiteFS afero.Fs

	// IdentityTimeout and CheckTimeout are passed to each gate;
	// zero values select the gate defaults
	IdentityTimeout time.Duration
	CheckTimeout    time.Duration
}

// Handler applies the verified clearance gate to every page request
// before the file server sees it. The page body is only written after
// the gate settles, so restricted content is never visible, not even
// transiently, to a viewer the check ends up denying.
type Handler struct {
	pages           pagemeta.Source
	tokens          *identity.TokenProvider
	characters      characters.Source
	files           http.Handler
	identityTimeout time.Duration
	checkTimeout    time.Duration
}

// NewHandler creates a gated site handler
func NewHandler(config HandlerConfig) (*Handler, error) {
	if config.Pages == nil {
		return nil, fmt.Errorf("page metadata source is required")
	}
	if config.Tokens == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	if config.Characters == nil {
		return nil, fmt.Errorf("character source is required")
	}
	if config.SiteFS == nil {
		return nil, fmt.Errorf("site filesystem is required")
	}

	return &Handler{
		pages:           config.Pages,
		tokens:          config.Tokens,
		characters:      config.Characters,
		files:           http.FileServer(afero.NewHttpFs(config.SiteFS)),
		identityTimeout: config.IdentityTimeout,
		checkTimeout:    config.CheckTimeout,
	}, nil
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The denied route itself must stay reachable or denied viewers
	// would bounce forever
	if strings.HasPrefix(r.URL.Path, gate.DeniedRoute) {
		h.files.ServeHTTP(w, r)
		return
	}

	req, err := h.pages.RequiredClearance(r.URL.Path)
	if err != nil {
		// A page whose metadata cannot be read carries no usable
		// requirement; the file server fails it on its own terms
		logging.App.Error("requirement resolution failed", "page", r.URL.Path, "error", err)
		req = pagemeta.None()
	}

	sess := h.sessionContext(r)
	g, err := gate.NewVerifiedGate(gate.Config{
		Identity:        h.tokens.Resolver(h.sessionToken(r)),
		Characters:      h.characters,
		IdentityTimeout: h.identityTimeout,
		CheckTimeout:    h.checkTimeout,
	})
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	outcome := g.Check(r.Context(), req, sess, originalPath(r))

	switch outcome.Decision {
	case gate.Granted:
		if req.Restricted() {
			logging.Access.LogDecision(outcome.AccountUID, r.URL.Path, "granted",
				"level", int(outcome.Level), "required", int(req.Level()))
		}
		h.files.ServeHTTP(w, r)
	case gate.Denied:
		logging.Access.LogDecision(outcome.AccountUID, r.URL.Path, "denied",
			"required", int(req.Level()), "reason", outcome.Reason)
		http.Redirect(w, r, outcome.RedirectURL, http.StatusFound)
	default:
		// Unreachable: Check always settles
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// sessionToken extracts the signed session token from the request
func (h *Handler) sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// sessionContext reads the selected-character cookie
func (h *Handler) sessionContext(r *http.Request) session.Context {
	c, err := r.Cookie(SelectedCharacterCookie)
	if err != nil {
		return session.Context{}
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return session.Context{}
	}
	return session.Parse(raw)
}

// originalPath rebuilds the requested path with its query for the
// redirect's return hint
func originalPath(r *http.Request) string {
	if r.URL.RawQuery != "" {
		return r.URL.Path + "?" + r.URL.RawQuery
	}
	return r.URL.Path
}
