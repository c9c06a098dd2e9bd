package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the accounts service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string

	JWTPrivateKeyPEM  string
	JWTPublicKeyPEM   string
	JWTKeyID          string
	AllowEphemeralJWT bool

	BcryptCost int

	SessionTTL          time.Duration
	SessionRefreshAfter time.Duration
	ResetTokenTTL       time.Duration

	AppBaseURL string

	ResendAPIKey string
	MailFrom     string

	OAuthGoogleIssuerURL    string
	OAuthGoogleClientID     string
	OAuthGoogleClientSecret string
	OAuthGoogleScopes       []string
	OAuthHTTPTimeout        time.Duration

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Mail struct {
		From string `yaml:"from"`
	} `yaml:"mail"`
	OAuth struct {
		Google struct {
			IssuerURL    string   `yaml:"issuer_url"`
			ClientID     string   `yaml:"client_id"`
			ClientSecret string   `yaml:"client_secret"`
			Scopes       []string `yaml:"scopes"`
		} `yaml:"google"`
	} `yaml:"oauth"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "accounts-service",
		HTTPPort:             8080,
		JWTKeyID:             "accounts-key-1",
		AllowEphemeralJWT:    true,
		BcryptCost:           12,
		SessionTTL:           30 * 24 * time.Hour,
		SessionRefreshAfter:  24 * time.Hour,
		ResetTokenTTL:        time.Hour,
		AppBaseURL:           "http://localhost:8080",
		MailFrom:             "no-reply@accounts.local",
		OAuthGoogleIssuerURL: "https://accounts.google.com",
		OAuthGoogleScopes:    []string{"openid", "email", "profile"},
		OAuthHTTPTimeout:     8 * time.Second,
		MaxDBConns:           20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.BaseURL != "" {
			cfg.AppBaseURL = f.Service.BaseURL
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Mail.From != "" {
			cfg.MailFrom = f.Mail.From
		}
		if f.OAuth.Google.IssuerURL != "" {
			cfg.OAuthGoogleIssuerURL = f.OAuth.Google.IssuerURL
		}
		if f.OAuth.Google.ClientID != "" {
			cfg.OAuthGoogleClientID = f.OAuth.Google.ClientID
		}
		if f.OAuth.Google.ClientSecret != "" {
			cfg.OAuthGoogleClientSecret = f.OAuth.Google.ClientSecret
		}
		if len(f.OAuth.Google.Scopes) > 0 {
			cfg.OAuthGoogleScopes = f.OAuth.Google.Scopes
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.AppBaseURL = envOrDefault("APP_BASE_URL", cfg.AppBaseURL)
	cfg.JWTPrivateKeyPEM = envOrDefault("JWT_PRIVATE_KEY_PEM", cfg.JWTPrivateKeyPEM)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.JWTKeyID = envOrDefault("JWT_KEY_ID", cfg.JWTKeyID)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.ResendAPIKey = envOrDefault("RESEND_API_KEY", cfg.ResendAPIKey)
	cfg.MailFrom = envOrDefault("MAIL_FROM", cfg.MailFrom)
	cfg.OAuthGoogleIssuerURL = envOrDefault("OAUTH_GOOGLE_ISSUER_URL", cfg.OAuthGoogleIssuerURL)
	cfg.OAuthGoogleClientID = envOrDefault("OAUTH_GOOGLE_CLIENT_ID", cfg.OAuthGoogleClientID)
	cfg.OAuthGoogleClientSecret = envOrDefault("OAUTH_GOOGLE_CLIENT_SECRET", cfg.OAuthGoogleClientSecret)
	cfg.OAuthGoogleScopes = envCSV("OAUTH_GOOGLE_SCOPES", cfg.OAuthGoogleScopes)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.SessionTTL = time.Duration(envInt("SESSION_EXPIRY_DAYS", int(cfg.SessionTTL.Hours()/24))) * 24 * time.Hour
	cfg.SessionRefreshAfter = time.Duration(envInt("SESSION_REFRESH_HOURS", int(cfg.SessionRefreshAfter.Hours()))) * time.Hour
	cfg.ResetTokenTTL = time.Duration(envInt("RESET_TOKEN_TTL_MINUTES", int(cfg.ResetTokenTTL.Minutes()))) * time.Minute
	cfg.OAuthHTTPTimeout = time.Duration(envInt("OAUTH_HTTP_TIMEOUT_SECONDS", int(cfg.OAuthHTTPTimeout.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if (cfg.JWTPrivateKeyPEM == "" || cfg.JWTPublicKeyPEM == "") && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_PRIVATE_KEY_PEM or JWT_PUBLIC_KEY_PEM")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
