package application_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/copperline/accounts-service/internal/application"
	"github.com/copperline/accounts-service/internal/domain"
	"github.com/copperline/accounts-service/internal/ports"
)

type fixture struct {
	service     *application.Service
	users       *fakeUsers
	resetTokens *fakeResetTokens
	mailer      *fakeMailer
	verifier    *fakeOAuthVerifier
}

func newFixture() *fixture {
	return newFixtureWithConfig(nil)
}

func newFixtureWithConfig(mutate func(*application.Config)) *fixture {
	cfg := application.Config{
		DefaultRole:         domain.RoleUser,
		SessionTTL:          30 * 24 * time.Hour,
		SessionRefreshAfter: 24 * time.Hour,
		ResetTokenTTL:       time.Hour,
		AppBaseURL:          "http://localhost:8080",
		MailFrom:            "no-reply@accounts.local",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	users := &fakeUsers{
		byEmail: make(map[string]domain.User),
		byID:    make(map[uuid.UUID]domain.User),
	}
	resetTokens := &fakeResetTokens{users: users, byEmail: make(map[string]resetTokenRecord)}
	mailer := &fakeMailer{}
	states := &fakeStateStore{items: make(map[string]ports.OAuthAuthState)}
	verifier := &fakeOAuthVerifier{
		identities: map[string]ports.OAuthIdentity{
			"code-ok": {
				Provider:      "google",
				Subject:       "provider-sub-1",
				Email:         "oauth@example.com",
				EmailVerified: true,
				Name:          "OAuth User",
			},
			"code-unverified": {
				Provider:      "google",
				Subject:       "provider-sub-2",
				Email:         "unverified@example.com",
				EmailVerified: false,
			},
		},
	}

	svc := application.NewService(application.Dependencies{
		Config:        cfg,
		Users:         users,
		ResetTokens:   resetTokens,
		Hasher:        &fakeHasher{},
		TokenSigner:   &fakeSigner{tokens: make(map[string]ports.SessionClaims)},
		Mailer:        mailer,
		OAuthState:    states,
		OAuthVerifier: verifier,
	})

	return &fixture{
		service:     svc,
		users:       users,
		resetTokens: resetTokens,
		mailer:      mailer,
		verifier:    verifier,
	}
}

func (f *fixture) register(t *testing.T, email, password string) {
	t.Helper()
	if _, err := f.service.Register(context.Background(), application.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: password,
	}); err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
}

func (f *fixture) registerAndLogin(t *testing.T, email, password string) string {
	t.Helper()
	f.register(t, email, password)
	res, err := f.service.Login(context.Background(), application.LoginRequest{Email: email, Password: password})
	if err != nil {
		t.Fatalf("login %s failed: %v", email, err)
	}
	return res.Token
}

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
	byID    map[uuid.UUID]domain.User
}

func (f *fakeUsers) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[u.Email] = u
	f.byID[u.UserID] = u
}

func (f *fakeUsers) Create(_ context.Context, params ports.CreateUserParams) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[params.Email]; ok {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	u := domain.User{
		UserID:       uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	f.byEmail[u.Email] = u
	f.byID[u.UserID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, userID uuid.UUID, role domain.Role, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = updatedAt
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) List(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		u.PasswordHash = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (f *fakeUsers) setPasswordByEmail(email, passwordHash string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = now
	f.byEmail[email] = u
	f.byID[u.UserID] = u
	return nil
}

type resetTokenRecord struct {
	tokenHash string
	createdAt time.Time
	expiresAt time.Time
}

// fakeResetTokens mirrors the transactional store contract: Redeem holds one
// lock across lookup, credential mutation and deletion, so concurrent
// redeemers see exactly one winner.
type fakeResetTokens struct {
	mu      sync.Mutex
	users   *fakeUsers
	byEmail map[string]resetTokenRecord
}

func (f *fakeResetTokens) Upsert(_ context.Context, email, tokenHash string, createdAt, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[email] = resetTokenRecord{tokenHash: tokenHash, createdAt: createdAt, expiresAt: expiresAt}
	return nil
}

func (f *fakeResetTokens) Redeem(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, rec := range f.byEmail {
		if rec.tokenHash != tokenHash {
			continue
		}
		if !rec.expiresAt.After(now) {
			return "", domain.ErrInvalidOrExpiredToken
		}
		if err := f.users.setPasswordByEmail(email, newPasswordHash, now); err != nil {
			return "", err
		}
		delete(f.byEmail, email)
		return email, nil
	}
	return "", domain.ErrInvalidOrExpiredToken
}

func (f *fakeResetTokens) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

func (f *fakeResetTokens) hasHash(tokenHash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byEmail {
		if rec.tokenHash == tokenHash {
			return true
		}
	}
	return false
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Verify(password, digest string) bool {
	return digest != "" && digest == "hashed:"+password
}

type fakeSigner struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]ports.SessionClaims
}

func (f *fakeSigner) Sign(claims ports.SessionClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := fmt.Sprintf("token-%d", f.seq)
	f.tokens[token] = claims
	return token, nil
}

func (f *fakeSigner) ParseAndValidate(token string) (ports.SessionClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.tokens[token]
	if !ok {
		return ports.SessionClaims{}, errors.New("unknown token")
	}
	if !claims.ExpiresAt.After(time.Now().UTC()) {
		return ports.SessionClaims{}, errors.New("token expired")
	}
	return claims, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	fail bool
	msgs []ports.MailMessage
}

func (f *fakeMailer) Send(_ context.Context, msg ports.MailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeMailer) sent() []ports.MailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ports.MailMessage, len(f.msgs))
	copy(out, f.msgs)
	return out
}

type fakeStateStore struct {
	mu    sync.Mutex
	items map[string]ports.OAuthAuthState
}

func (f *fakeStateStore) Put(_ context.Context, state string, value ports.OAuthAuthState, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[state] = value
	return nil
}

func (f *fakeStateStore) Get(_ context.Context, state string) (*ports.OAuthAuthState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.items[state]
	if !ok {
		return nil, nil
	}
	return &value, nil
}

func (f *fakeStateStore) Delete(_ context.Context, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, state)
	return nil
}

type fakeOAuthVerifier struct {
	identities map[string]ports.OAuthIdentity
}

func (f *fakeOAuthVerifier) BuildAuthorizeURL(_ context.Context, provider, redirectURI, state, nonce, codeChallenge string) (string, error) {
	q := url.Values{}
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	q.Set("nonce", nonce)
	q.Set("code_challenge", codeChallenge)
	return "https://provider.example.com/" + provider + "/authorize?" + q.Encode(), nil
}

func (f *fakeOAuthVerifier) ExchangeCode(_ context.Context, _, code, _, _, _ string) (ports.OAuthIdentity, error) {
	identity, ok := f.identities[code]
	if !ok {
		return ports.OAuthIdentity{}, errors.New("exchange rejected")
	}
	return identity, nil
}
