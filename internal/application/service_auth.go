package application

import (
	"context"
	"time"

	"github.com/copperline/accounts-service/internal/domain"
	"github.com/copperline/accounts-service/internal/ports"
)

// Register creates a local credential account with the default role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	if err := domain.ValidateRegistration(req.Name, req.Email, req.Password); err != nil {
		return RegisterResponse{}, err
	}
	email, err := domain.NormalizeEmail(req.Email)
	if err != nil {
		return RegisterResponse{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}

	user, err := s.users.Create(ctx, ports.CreateUserParams{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         s.cfg.DefaultRole,
		CreatedAt:    s.nowFn(),
	})
	if err != nil {
		return RegisterResponse{}, err
	}

	s.logger.InfoContext(ctx, "user registered",
		"operation", "register",
		"outcome", "success",
		"user_id", user.UserID,
	)
	return RegisterResponse{Email: user.Email}, nil
}

// Login verifies credentials and issues a signed session. Unknown email,
// OAuth-only account and wrong password all collapse into the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := domain.NormalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Burn a hash comparison anyway so the timing of the unknown-email
		// path is indistinguishable from a wrong password.
		s.hasher.Verify(req.Password, "")
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !user.HasPassword() || !s.hasher.Verify(req.Password, user.PasswordHash) {
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.issueSession(user)
	if err != nil {
		return LoginResponse{}, err
	}

	s.logger.InfoContext(ctx, "credential login",
		"operation", "login",
		"outcome", "success",
		"user_id", user.UserID,
	)
	return LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.cfg.SessionTTL.Seconds()),
	}, nil
}

// ValidateSession parses a session token and, once its claims are older than
// the refresh threshold, silently re-issues it with the role re-read from the
// store. The refreshed token (empty when no reissue happened) is handed back
// so the transport layer can pass it to the client. Because reissue resets
// the issued-at claim, a session refreshes at most once per threshold window.
func (s *Service) ValidateSession(ctx context.Context, token string) (ports.SessionClaims, string, error) {
	claims, err := s.tokenSigner.ParseAndValidate(token)
	if err != nil {
		return ports.SessionClaims{}, "", domain.ErrUnauthorized
	}

	now := s.nowFn()
	if now.Sub(claims.IssuedAt) < s.cfg.SessionRefreshAfter {
		return claims, "", nil
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return ports.SessionClaims{}, "", domain.ErrUnauthorized
	}
	refreshed, err := s.issueSession(user)
	if err != nil {
		return ports.SessionClaims{}, "", err
	}
	fresh, err := s.tokenSigner.ParseAndValidate(refreshed)
	if err != nil {
		return ports.SessionClaims{}, "", err
	}

	s.logger.DebugContext(ctx, "session refreshed",
		"operation", "session_refresh",
		"outcome", "success",
		"user_id", user.UserID,
	)
	return fresh, refreshed, nil
}

func (s *Service) issueSession(user domain.User) (string, error) {
	now := s.nowFn()
	return s.tokenSigner.Sign(ports.SessionClaims{
		UserID:    user.UserID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	})
}

// Authorize decides whether the session claims grant access to a resource
// guarded by requiredRole. It is a pure function of the claims: no store
// lookup, which trades immediate role revocation for a stateless check. Role
// changes take effect when the affected session is refreshed or re-issued.
func Authorize(claims *ports.SessionClaims, requiredRole domain.Role, now time.Time) error {
	if claims == nil {
		return domain.ErrUnauthorized
	}
	if !claims.ExpiresAt.After(now) {
		return domain.ErrUnauthorized
	}
	if requiredRole != "" && claims.Role != requiredRole {
		return domain.ErrForbidden
	}
	return nil
}
