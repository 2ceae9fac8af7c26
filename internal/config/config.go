package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const minSessionSecretLen = 32

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// APIBaseURL points at the MiniSocial core backend, e.g.
	// "https://api.minisocial.example". All platform data lives there.
	APIBaseURL string `env:"API_BASE_URL"`

	// SessionSecret signs and encrypts the session cookie.
	SessionSecret string `env:"SESSION_SECRET"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"web/templates"`

	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"168h"` // 7 days

	// Login rate limiting (per identifier, sliding window).
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"API_BASE_URL", cfg.APIBaseURL},
		{"SESSION_SECRET", cfg.SessionSecret},
		{"DATABASE_URL", cfg.DatabaseURL},
		{"REDIS_URL", cfg.RedisURL},
	}
	for _, req := range required {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}

	if len(cfg.SessionSecret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLen)
	}

	if cfg.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", cfg.LoginRateLimit)
	}
	if cfg.LoginRateWindow <= 0 {
		return fmt.Errorf("LOGIN_RATE_WINDOW must be positive, got %s", cfg.LoginRateWindow)
	}

	return nil
}

// IsProduction reports whether the app runs in production mode. Controls
// the Secure flag on session cookies.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
