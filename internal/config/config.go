package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/AnaLR27/cs11-backend/pkg/config"
)

const defaultSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the account service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Public base URL used in password-reset links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"jobboard"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"jobboard_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"account_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Token secrets, one per kind so a leaked secret forges only its own kind.
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	ResetTokenSecret   string `env:"RESET_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`

	// Token lifetimes. AccessTokenTTL is empty by default so Load can pick
	// the environment-dependent value: 15m in production, 24h in development.
	AccessTokenTTL  string `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL string `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	ResetTokenTTL   string `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	// Header carrying the refresh token on GET /auth/refresh.
	RefreshTokenHeader string `env:"REFRESH_TOKEN_HEADER" envDefault:"X-Refresh-Token"`

	// Login rate limiting
	LoginMaxAttempts int    `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      string `env:"LOGIN_WINDOW" envDefault:"1m"`

	// Coarse per-IP guard over the whole HTTP surface. 0 disables it.
	HTTPRateLimitRPS   int `env:"HTTP_RATE_LIMIT_RPS" envDefault:"50"`
	HTTPRateLimitBurst int `env:"HTTP_RATE_LIMIT_BURST" envDefault:"100"`

	// SMTP
	SMTPAddr     string `env:"SMTP_ADDR" envDefault:"localhost:587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@jobboard.local"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load account config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	if cfg.AccessTokenTTL == "" {
		if cfg.Environment == "development" {
			cfg.AccessTokenTTL = "24h"
		} else {
			cfg.AccessTokenTTL = "15m"
		}
	}

	// Outside development, every token secret must be explicitly set and strong.
	if cfg.Environment != "development" {
		secrets := map[string]string{
			"ACCESS_TOKEN_SECRET":  cfg.AccessTokenSecret,
			"REFRESH_TOKEN_SECRET": cfg.RefreshTokenSecret,
			"RESET_TOKEN_SECRET":   cfg.ResetTokenSecret,
		}
		for name, secret := range secrets {
			if secret == defaultSecret {
				return nil, fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, cfg.Environment)
			}
			if len(secret) < 32 {
				return nil, fmt.Errorf("%s must be at least 32 characters long, got %d", name, len(secret))
			}
		}
	}

	if cfg.LoginMaxAttempts < 1 {
		return nil, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be at least 1, got %d", cfg.LoginMaxAttempts)
	}

	if cfg.HTTPRateLimitRPS < 0 || cfg.HTTPRateLimitBurst < 0 {
		return nil, fmt.Errorf("HTTP rate limit values must not be negative")
	}
	if cfg.HTTPRateLimitRPS > 0 && cfg.HTTPRateLimitBurst < 1 {
		return nil, fmt.Errorf("HTTP_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}

	for name, value := range map[string]string{
		"ACCESS_TOKEN_TTL":  cfg.AccessTokenTTL,
		"REFRESH_TOKEN_TTL": cfg.RefreshTokenTTL,
		"RESET_TOKEN_TTL":   cfg.ResetTokenTTL,
		"LOGIN_WINDOW":      cfg.LoginWindow,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// AccessTTL returns the parsed access token lifetime.
func (c *Config) AccessTTL() time.Duration { return mustDuration(c.AccessTokenTTL) }

// RefreshTTL returns the parsed refresh token lifetime.
func (c *Config) RefreshTTL() time.Duration { return mustDuration(c.RefreshTokenTTL) }

// ResetTTL returns the parsed reset token lifetime.
func (c *Config) ResetTTL() time.Duration { return mustDuration(c.ResetTokenTTL) }

// LoginRateWindow returns the parsed login rate limit window.
func (c *Config) LoginRateWindow() time.Duration { return mustDuration(c.LoginWindow) }

// mustDuration parses a duration already validated by Load.
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("unvalidated duration %q: %v", s, err))
	}
	return d
}
