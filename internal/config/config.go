package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"

	devJWTSecret = "dev-secret-change-me"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env   string `env:"APP_ENV" envDefault:"development"`
	Port  string `env:"PORT" envDefault:"8080"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	// Sessions
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"redis"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	RedisURL  string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Telegram
	BotToken       string        `env:"TELEGRAM_BOT_TOKEN"`
	BotUsername    string        `env:"TELEGRAM_BOT_USERNAME" envDefault:"demo_bot"`
	AuthMaxAge     time.Duration `env:"TELEGRAM_AUTH_MAX_AGE" envDefault:"24h"`
	OperatorChatID int64         `env:"TELEGRAM_OPERATOR_CHAT_ID"`

	// Remote functions
	AuthURL         string        `env:"API_AUTH_URL"`
	TransactionsURL string        `env:"API_TRANSACTIONS_URL"`
	SupportURL      string        `env:"API_SUPPORT_URL"`
	APITimeout      time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	// Submission UX
	ProgressSteps      int           `env:"PROGRESS_STEPS" envDefault:"10"`
	ProgressInterval   time.Duration `env:"PROGRESS_INTERVAL" envDefault:"200ms"`
	StatusPollInterval time.Duration `env:"STATUS_POLL_INTERVAL" envDefault:"5s"`
	StatusPollTimeout  time.Duration `env:"STATUS_POLL_TIMEOUT" envDefault:"2m"`

	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	CORSOrigins        []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.AuthURL == "" {
		errs = append(errs, errors.New("API_AUTH_URL is required"))
	}
	if c.TransactionsURL == "" {
		errs = append(errs, errors.New("API_TRANSACTIONS_URL is required"))
	}
	if c.SupportURL == "" {
		errs = append(errs, errors.New("API_SUPPORT_URL is required"))
	}

	switch c.SessionBackend {
	case SessionBackendRedis, SessionBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend))
	}

	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.IsProduction() && c.BotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN must be set in production"))
	}
	if c.ProgressSteps <= 0 {
		errs = append(errs, errors.New("PROGRESS_STEPS must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
