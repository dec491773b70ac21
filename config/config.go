package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"DB_PATH" envDefault:"./modpanel.db"`
	MediaRoot string `env:"MEDIA_ROOT" envDefault:"./media"`
	Debug     bool   `env:"DEBUG" envDefault:"false"`

	// Optional rotating log file
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`

	SessionSecret  string        `env:"SESSION_SECRET" envDefault:"modpanel-secret-change-in-production"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"sqlite"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Login attempts per second per client IP
	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT" envDefault:"0.2"`
	LoginRateBurst int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
	// Key the login limiter on X-Forwarded-For; only set behind a proxy
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Seeded at startup when both are set
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads environment variables into Config and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	switch c.SessionBackend {
	case SessionBackendSQLite:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be > 0")
	}
	if c.LoginRateBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_BURST must be > 0")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0")
	}
	return nil
}
