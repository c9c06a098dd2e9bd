package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/copperline/accounts-service/internal/adapters/cache"
	httpadapter "github.com/copperline/accounts-service/internal/adapters/http"
	mailadapter "github.com/copperline/accounts-service/internal/adapters/mail"
	"github.com/copperline/accounts-service/internal/adapters/postgres"
	"github.com/copperline/accounts-service/internal/adapters/security"
	"github.com/copperline/accounts-service/internal/application"
	"github.com/copperline/accounts-service/internal/domain"
	"github.com/copperline/accounts-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping accounts service", "http_port", cfg.HTTPPort)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgres.NewRepositories(db)
	tokenSigner, err := security.NewJWTSigner(cfg.JWTKeyID, cfg.JWTPrivateKeyPEM, cfg.JWTPublicKeyPEM)
	if err != nil {
		if !cfg.AllowEphemeralJWT {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init jwt signer: %w", err)
		}
		logger.Warn("using ephemeral JWT keys for local/dev runtime")
		tokenSigner, err = security.NewEphemeralJWTSigner(cfg.JWTKeyID)
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init ephemeral jwt signer: %w", err)
		}
	}

	oauthState := cacheadapter.NewRedisOAuthStateStore(redisClient)
	oauthVerifier := security.NewOAuthVerifier(security.OAuthVerifierConfig{
		HTTPClient: &http.Client{
			Timeout: cfg.OAuthHTTPTimeout,
		},
		Providers: map[string]security.OAuthProviderConfig{
			"google": {
				IssuerURL:    cfg.OAuthGoogleIssuerURL,
				ClientID:     cfg.OAuthGoogleClientID,
				ClientSecret: cfg.OAuthGoogleClientSecret,
				Scopes:       cfg.OAuthGoogleScopes,
			},
		},
	})

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			DefaultRole:         domain.RoleUser,
			SessionTTL:          cfg.SessionTTL,
			SessionRefreshAfter: cfg.SessionRefreshAfter,
			ResetTokenTTL:       cfg.ResetTokenTTL,
			AppBaseURL:          cfg.AppBaseURL,
			MailFrom:            cfg.MailFrom,
		},
		Users:         repos.Users,
		ResetTokens:   repos.ResetTokens,
		Hasher:        security.NewBcryptHasher(cfg.BcryptCost),
		TokenSigner:   tokenSigner,
		Mailer:        newMailSender(cfg, logger),
		OAuthState:    oauthState,
		OAuthVerifier: oauthVerifier,
		Logger:        logger,
	})

	ready := func() error {
		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}

	handler := httpadapter.NewHandler(svc, ready)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	r.logger.Info("accounts service stopped")
	return nil
}

// newMailSender picks the Resend API client when an API key is configured and
// falls back to logging messages, so local runs still surface reset links.
func newMailSender(cfg Config, logger *slog.Logger) ports.MailSender {
	if cfg.ResendAPIKey != "" {
		return mailadapter.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom, "")
	}
	logger.Warn("RESEND_API_KEY not set, reset emails will be logged instead of sent")
	return mailadapter.NewLogSender(logger)
}
