package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/copperline/accounts-service/internal/domain"
)

// PasswordHasher is the one-way credential hashing port.
// Verify returns false for malformed digests instead of erroring so the
// login path never has to distinguish corrupt data from a wrong password.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// SessionClaims is the signed claim bundle a client holds between requests.
// Role reflects the user's role at issuance; role changes become visible
// only when the session is refreshed or re-issued.
type SessionClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSigner signs and verifies session claims. Parsing rejects expired or
// tampered tokens, so holders of valid claims need no further store lookup.
type TokenSigner interface {
	Sign(claims SessionClaims) (string, error)
	ParseAndValidate(token string) (SessionClaims, error)
}

// OAuthIdentity is the provider-asserted identity after a code exchange.
type OAuthIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// OAuthVerifier drives the authorization-code flow against an external
// identity provider. The service trusts only the verified email from the
// returned identity; roles are never taken from the provider.
type OAuthVerifier interface {
	BuildAuthorizeURL(ctx context.Context, provider, redirectURI, state, nonce, codeChallenge string) (string, error)
	ExchangeCode(ctx context.Context, provider, code, redirectURI, nonce, codeVerifier string) (OAuthIdentity, error)
}
