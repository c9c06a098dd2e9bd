package ports

import (
	"context"
	"time"
)

// OAuthAuthState is the short-lived envelope kept between the authorize
// redirect and the provider callback. Storing the PKCE verifier and nonce
// server-side preserves anti-replay and anti-CSRF checks across the redirect.
type OAuthAuthState struct {
	Provider     string    `json:"provider"`
	RedirectURI  string    `json:"redirect_uri"`
	Nonce        string    `json:"nonce"`
	CodeVerifier string    `json:"code_verifier"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// OAuthStateStore persists OAuthAuthState keyed by the opaque state value.
// Get returns nil without error when the state is unknown or expired out.
type OAuthStateStore interface {
	Put(ctx context.Context, state string, value OAuthAuthState, ttl time.Duration) error
	Get(ctx context.Context, state string) (*OAuthAuthState, error)
	Delete(ctx context.Context, state string) error
}
