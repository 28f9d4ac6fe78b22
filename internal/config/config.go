// Package config загружает конфигурацию сервера из переменных окружения WEALTHVAULT_*.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefix of every configuration variable
const EnvPrefix = "WEALTHVAULT_"

// Config top-level server configuration
type Config struct {
	HTTP       HTTPConfig       `envPrefix:"HTTP_"`
	Storage    StorageConfig    `envPrefix:"STORAGE_"`
	Auth       AuthConfig       `envPrefix:"AUTH_"`
	Guardian   GuardianConfig   `envPrefix:"GUARDIAN_"`
	Extraction ExtractionConfig `envPrefix:"EXTRACTION_"`
	Logging    LoggingConfig    `envPrefix:"LOG_"`
	RateLimit  RateLimitConfig  `envPrefix:"RATE_LIMIT_"`
}

// HTTPConfig HTTP server settings
type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	PublicURL       string        `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// StorageConfig paths of the sqlite database and the blob store
type StorageConfig struct {
	DBPath   string `env:"DB_PATH" envDefault:"wealthvault.db"`
	BlobPath string `env:"BLOB_PATH" envDefault:"wealthvault-blobs.db"`
}

// AuthConfig access and refresh token settings
type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

// GuardianConfig guardian share token settings
type GuardianConfig struct {
	Secret   string        `env:"SECRET"`
	ShareTTL time.Duration `env:"SHARE_TTL" envDefault:"720h"`
}

// ExtractionConfig document extraction services; empty endpoints disable extraction
type ExtractionConfig struct {
	TextURL      string        `env:"TEXT_URL"`
	TextAPIKey   string        `env:"TEXT_API_KEY"`
	ResponsesURL string        `env:"RESPONSES_URL" envDefault:"https://api.openai.com/v1/responses"`
	APIKey       string        `env:"API_KEY"`
	Model        string        `env:"MODEL" envDefault:"gpt-4o-mini"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"45s"`
}

// LoggingConfig slog settings
type LoggingConfig struct {
	Level         string `env:"LEVEL" envDefault:"info"`
	Format        string `env:"FORMAT" envDefault:"text"`
	IncludeCaller bool   `env:"INCLUDE_CALLER" envDefault:"false"`
}

// RateLimitConfig limits for authentication endpoints
type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"10"`
	Window   time.Duration `env:"WINDOW" envDefault:"1m"`
}

// Load parses the environment into Config and validates it
func Load() (*Config, error) {
	return LoadWith(nil)
}

// LoadWith parses the given environment map (nil means the process environment)
func LoadWith(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required values
func (c *Config) Validate() error {
	var errs []error

	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, fmt.Errorf("%sAUTH_JWT_SECRET must be at least 32 bytes", EnvPrefix))
	}
	if len(c.Guardian.Secret) < 32 {
		errs = append(errs, fmt.Errorf("%sGUARDIAN_SECRET must be at least 32 bytes", EnvPrefix))
	}
	if c.Auth.JWTSecret != "" && c.Auth.JWTSecret == c.Guardian.Secret {
		errs = append(errs, errors.New("guardian secret must differ from the JWT secret"))
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 || c.Guardian.ShareTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit must be positive"))
	}
	if !strings.HasPrefix(c.HTTP.PublicURL, "http://") && !strings.HasPrefix(c.HTTP.PublicURL, "https://") {
		errs = append(errs, fmt.Errorf("%sHTTP_PUBLIC_URL must be an http(s) URL", EnvPrefix))
	}

	return errors.Join(errs...)
}

// ExtractionEnabled reports whether both extraction services are configured
func (c *Config) ExtractionEnabled() bool {
	return c.Extraction.TextURL != "" && c.Extraction.APIKey != ""
}
