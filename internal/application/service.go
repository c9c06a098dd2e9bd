package application

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/copperline/accounts-service/internal/domain"
	"github.com/copperline/accounts-service/internal/ports"
)

// Config is the policy surface of the application layer. Durations and roles
// arrive resolved from bootstrap so use-cases never read the environment.
type Config struct {
	DefaultRole         domain.Role
	SessionTTL          time.Duration
	SessionRefreshAfter time.Duration
	ResetTokenTTL       time.Duration
	AppBaseURL          string
	MailFrom            string
}

// Service implements the account, session and password-reset use-cases over
// injected ports. No ambient registries: every store handle is passed in at
// construction.
type Service struct {
	cfg           Config
	users         ports.UserRepository
	resetTokens   ports.ResetTokenRepository
	hasher        ports.PasswordHasher
	tokenSigner   ports.TokenSigner
	mailer        ports.MailSender
	oauthState    ports.OAuthStateStore
	oauthVerifier ports.OAuthVerifier
	logger        *slog.Logger
	nowFn         func() time.Time
}

type Dependencies struct {
	Config        Config
	Users         ports.UserRepository
	ResetTokens   ports.ResetTokenRepository
	Hasher        ports.PasswordHasher
	TokenSigner   ports.TokenSigner
	Mailer        ports.MailSender
	OAuthState    ports.OAuthStateStore
	OAuthVerifier ports.OAuthVerifier
	Logger        *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:           deps.Config,
		users:         deps.Users,
		resetTokens:   deps.ResetTokens,
		hasher:        deps.Hasher,
		tokenSigner:   deps.TokenSigner,
		mailer:        deps.Mailer,
		oauthState:    deps.OAuthState,
		oauthVerifier: deps.OAuthVerifier,
		logger: logger.With(
			"module", "application",
			"layer", "application",
		),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

func randomHex(bytesLen int) string {
	raw := make([]byte, bytesLen)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}
