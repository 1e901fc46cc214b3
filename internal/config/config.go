// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Addr            string
	WebDir          string
	Store           string
	DatabaseURL     string
	ChallengeYear   int
	SessionTTL      time.Duration
	SecureCookies   bool
	OIDCIssuer      string
	OIDCClientID    string
	OIDCSecret      string
	OIDCRedirectURL string
}

// SSOEnabled reports whether all OIDC settings are present.
func (c *Config) SSOEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != "" && c.OIDCRedirectURL != ""
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, so tests need not touch the process environment.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Addr:            get("ADDR", ":8080"),
		WebDir:          get("WEB_DIR", "web"),
		Store:           get("STORE", StorePostgres),
		DatabaseURL:     get("DATABASE_URL", ""),
		OIDCIssuer:      get("OIDC_ISSUER", ""),
		OIDCClientID:    get("OIDC_CLIENT_ID", ""),
		OIDCSecret:      get("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL: get("OIDC_REDIRECT_URL", ""),
	}

	year, err := strconv.Atoi(get("CHALLENGE_YEAR", "2026"))
	if err != nil || year < 2000 || year > 9999 {
		return nil, fmt.Errorf("CHALLENGE_YEAR: invalid year %q", get("CHALLENGE_YEAR", ""))
	}
	cfg.ChallengeYear = year

	ttl, err := time.ParseDuration(get("SESSION_TTL", "720h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL: invalid duration %q", get("SESSION_TTL", ""))
	}
	cfg.SessionTTL = ttl

	secure, err := strconv.ParseBool(get("SECURE_COOKIES", "false"))
	if err != nil {
		return nil, fmt.Errorf("SECURE_COOKIES: %w", err)
	}
	cfg.SecureCookies = secure

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE=postgres")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("STORE: unknown backend %q", cfg.Store)
	}
	return cfg, nil
}
