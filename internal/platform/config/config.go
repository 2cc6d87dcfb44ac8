// Package config loads and validates app config from env and an optional
// .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// StorageBackend selects the repo family: memory, sqlite or postgres.
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `mapstructure:"SQLITE_PATH"`
	// DatabaseURL is the Postgres DSN; required for the postgres backend.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// TokenSecret signs local-provider session tokens (HS256).
	TokenSecret string `mapstructure:"TOKEN_SECRET"`
	// TokenIssuer is the iss claim on session tokens.
	TokenIssuer string `mapstructure:"TOKEN_ISSUER"`
	// TokenTTL is the session token lifetime (e.g. "1h").
	TokenTTL string `mapstructure:"TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SessionInitTimeout bounds how long the session coordinator waits for
	// the provider's first stream event before falling back to anonymous.
	SessionInitTimeout string `mapstructure:"SESSION_INIT_TIMEOUT"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORAGE_BACKEND", "memory")
	v.SetDefault("SQLITE_PATH", "club.db")
	v.SetDefault("TOKEN_ISSUER", "club-manager")
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_INIT_TIMEOUT", "5s")

	// Viper only honors AutomaticEnv for keys it has seen.
	for _, key := range []string{"HTTP_ADDR", "STORAGE_BACKEND", "SQLITE_PATH", "DATABASE_URL", "TOKEN_SECRET", "TOKEN_ISSUER", "TOKEN_TTL", "BCRYPT_COST", "SESSION_INIT_TIMEOUT"} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q (want memory, sqlite or postgres)", c.StorageBackend)
	}
	if c.StorageBackend == "postgres" && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres backend")
	}
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if _, err := c.ParseTokenTTL(); err != nil {
		return fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if _, err := c.ParseSessionInitTimeout(); err != nil {
		return fmt.Errorf("invalid SESSION_INIT_TIMEOUT: %w", err)
	}
	return nil
}

func (c *Config) ParseTokenTTL() (time.Duration, error) {
	return time.ParseDuration(c.TokenTTL)
}

func (c *Config) ParseSessionInitTimeout() (time.Duration, error) {
	return time.ParseDuration(c.SessionInitTimeout)
}
