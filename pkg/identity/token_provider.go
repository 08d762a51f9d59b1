package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenProvider verifies the signed session tokens issued by the site's
// hosted auth service. A token's subject is the account identifier that
// character records link against.
type TokenProvider struct {
	issuer   string
	audience string
	key      []byte
	now      func() time.Time
}

// sessionClaims is the internal claims type used for JWT parsing
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// NewTokenProvider creates a verifier for session tokens signed with
// the given HMAC key
func NewTokenProvider(issuer, audience string, key []byte) (*TokenProvider, error) {
	issuer = strings.TrimSpace(issuer)
	audience = strings.TrimSpace(audience)
	if issuer == "" {
		return nil, fmt.Errorf("token issuer is required")
	}
	if audience == "" {
		return nil, fmt.Errorf("token audience is required")
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("token key is required")
	}
	return &TokenProvider{
		issuer:   issuer,
		audience: audience,
		key:      key,
		now:      time.Now,
	}, nil
}

// VerifyToken parses and validates a session token, returning the
// account it names
func (p *TokenProvider) VerifyToken(token string) (*Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.key, nil
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithTimeFunc(func() time.Time { return p.now() }),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing session token: %w", err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrNotAuthenticated
	}

	return &Account{
		UID:   claims.Subject,
		Email: claims.Email,
	}, nil
}

// Resolver binds a request's token to a Provider usable for one check
func (p *TokenProvider) Resolver(token string) Provider {
	return &tokenResolver{provider: p, token: token}
}

type tokenResolver struct {
	provider *TokenProvider
	token    string
}

// CurrentAccount implements Provider
func (r *tokenResolver) CurrentAccount(ctx context.Context) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.provider.VerifyToken(r.token)
}
