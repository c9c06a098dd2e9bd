package application

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/copperline/accounts-service/internal/domain"
	"github.com/copperline/accounts-service/internal/ports"
)

const oauthStateTTL = 10 * time.Minute

// OAuthAuthorize starts the authorization-code flow: it generates state,
// nonce and a PKCE pair, parks them in the state store, and returns the
// provider redirect URL.
func (s *Service) OAuthAuthorize(ctx context.Context, provider, redirectURI string) (OAuthAuthorizeResponse, error) {
	if s.oauthVerifier == nil {
		return OAuthAuthorizeResponse{}, fmt.Errorf("%w: oauth is not configured", domain.ErrInvalidInput)
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = "google"
	}
	if _, err := url.ParseRequestURI(redirectURI); err != nil {
		return OAuthAuthorizeResponse{}, fmt.Errorf("%w: invalid redirect_uri", domain.ErrInvalidInput)
	}

	state := uuid.NewString()
	nonce := randomHex(16)
	codeVerifier, codeChallenge := generatePKCE()

	now := s.nowFn()
	if err := s.oauthState.Put(ctx, state, ports.OAuthAuthState{
		Provider:     provider,
		RedirectURI:  redirectURI,
		Nonce:        nonce,
		CodeVerifier: codeVerifier,
		CreatedAt:    now,
		ExpiresAt:    now.Add(oauthStateTTL),
	}, oauthStateTTL); err != nil {
		return OAuthAuthorizeResponse{}, err
	}

	authorizeURL, err := s.oauthVerifier.BuildAuthorizeURL(ctx, provider, redirectURI, state, nonce, codeChallenge)
	if err != nil {
		return OAuthAuthorizeResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return OAuthAuthorizeResponse{State: state, AuthorizeURL: authorizeURL}, nil
}

// OAuthCallback finishes the flow: exchanges the code, finds or creates the
// user for the provider-verified email, and issues a session. The session
// role always comes from the stored user record, never from the provider.
// First sign-ins create the account with the default role and no password.
func (s *Service) OAuthCallback(ctx context.Context, code, state string) (OAuthCallbackResponse, error) {
	if s.oauthVerifier == nil {
		return OAuthCallbackResponse{}, fmt.Errorf("%w: oauth is not configured", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(state) == "" {
		return OAuthCallbackResponse{}, fmt.Errorf("%w: code and state are required", domain.ErrInvalidInput)
	}

	authState, err := s.oauthState.Get(ctx, state)
	if err != nil {
		return OAuthCallbackResponse{}, err
	}
	if authState == nil || authState.ExpiresAt.Before(s.nowFn()) {
		return OAuthCallbackResponse{}, domain.ErrUnauthorized
	}

	identity, err := s.oauthVerifier.ExchangeCode(ctx, authState.Provider, code, authState.RedirectURI, authState.Nonce, authState.CodeVerifier)
	if err != nil {
		return OAuthCallbackResponse{}, domain.ErrUnauthorized
	}
	if identity.Subject == "" || !identity.EmailVerified {
		return OAuthCallbackResponse{}, domain.ErrUnauthorized
	}
	email, err := domain.NormalizeEmail(identity.Email)
	if err != nil {
		return OAuthCallbackResponse{}, domain.ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		created, createErr := s.users.Create(ctx, ports.CreateUserParams{
			Name:      identity.Name,
			Email:     email,
			Role:      s.cfg.DefaultRole,
			CreatedAt: s.nowFn(),
		})
		if createErr != nil {
			// Lost a race against a concurrent first sign-in for the same
			// email: reuse the row the winner created.
			if existing, getErr := s.users.GetByEmail(ctx, email); getErr == nil {
				created = existing
			} else {
				return OAuthCallbackResponse{}, createErr
			}
		}
		user = created
		s.logger.InfoContext(ctx, "oauth user created",
			"operation", "oauth_callback",
			"outcome", "created",
			"user_id", user.UserID,
			"provider", authState.Provider,
		)
	}

	token, err := s.issueSession(user)
	if err != nil {
		return OAuthCallbackResponse{}, err
	}
	_ = s.oauthState.Delete(ctx, state)

	return OAuthCallbackResponse{
		UserID:      user.UserID,
		Token:       token,
		RedirectURL: buildRedirectWithFragment(authState.RedirectURI, "token="+url.QueryEscape(token)),
	}, nil
}

func generatePKCE() (string, string) {
	verifier := randomHex(32)
	sum := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(sum[:])
}

func buildRedirectWithFragment(redirectURI, fragment string) string {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return redirectURI
	}
	u.Fragment = fragment
	return u.String()
}
