// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// MinSessionSecretLength is the minimum allowed length for the session secret.
const MinSessionSecretLength = 32

// Config holds all application configuration loaded from FOLIO_* variables.
type Config struct {
	Env  string `env:"FOLIO_ENV" envDefault:"development"`
	Host string `env:"FOLIO_HOST" envDefault:"localhost"`
	Port int    `env:"FOLIO_PORT" envDefault:"8080"`

	DBPath string `env:"FOLIO_DB_PATH" envDefault:"./data/folio.db"`

	SessionSecret string `env:"FOLIO_SESSION_SECRET,required"`

	LogLevel  string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FOLIO_LOG_FORMAT" envDefault:"text"`

	BaseURL string `env:"FOLIO_BASE_URL" envDefault:"http://localhost:8080"`

	UploadDir     string `env:"FOLIO_UPLOAD_DIR" envDefault:"./data/uploads"`
	MaxUploadSize int64  `env:"FOLIO_MAX_UPLOAD_SIZE" envDefault:"20971520"`

	CacheBackend  string `env:"FOLIO_CACHE_BACKEND" envDefault:"memory"`
	RedisAddr     string `env:"FOLIO_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"FOLIO_REDIS_PASSWORD"`
	RedisDB       int    `env:"FOLIO_REDIS_DB" envDefault:"0"`

	GeoIPDBPath string `env:"FOLIO_GEOIP_DB_PATH"`

	RateLimitRPS   float64 `env:"FOLIO_RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"FOLIO_RATE_LIMIT_BURST" envDefault:"20"`

	DoSeed             bool   `env:"FOLIO_DO_SEED" envDefault:"false"`
	SeedAdminEmail     string `env:"FOLIO_SEED_ADMIN_EMAIL" envDefault:"admin@example.com"`
	SeedAdminUsername  string `env:"FOLIO_SEED_ADMIN_USERNAME" envDefault:"admin"`
	SeedAdminPassword  string `env:"FOLIO_SEED_ADMIN_PASSWORD" envDefault:"changeme"`
	TrustedOriginHosts string `env:"FOLIO_TRUSTED_ORIGINS"`
}

// knownWeakSecrets are placeholder values that must never be used in production.
var knownWeakSecrets = []string{
	"secret",
	"changeme",
	"password",
	"your-secret-key-change-me",
	"0123456789abcdef0123456789abcdef",
}

// Load parses configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("FOLIO_SESSION_SECRET must be at least %d characters, got %d",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	lower := strings.ToLower(c.SessionSecret)
	for _, weak := range knownWeakSecrets {
		if lower == weak {
			return fmt.Errorf("FOLIO_SESSION_SECRET is a known weak value, generate a random one")
		}
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		return fmt.Errorf("FOLIO_SESSION_SECRET has too few distinct characters, generate a random one")
	}

	switch c.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("FOLIO_ENV must be development, staging or production, got %q", c.Env)
	}

	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("FOLIO_CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("FOLIO_MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}

	return nil
}

// hasMinimumEntropy requires at least 10 distinct characters in the secret.
// Catches repeated-character strings that pass the length check.
func hasMinimumEntropy(s string) bool {
	distinct := make(map[rune]struct{})
	for _, r := range s {
		distinct[r] = struct{}{}
	}
	return len(distinct) >= 10
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the host:port address the HTTP server binds to.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UseRedisCache reports whether the Redis cache backend is selected.
func (c *Config) UseRedisCache() bool {
	return c.CacheBackend == "redis"
}

// TrustedOrigins returns the configured trusted origins for CSRF checks.
func (c *Config) TrustedOrigins() []string {
	if c.TrustedOriginHosts == "" {
		return nil
	}
	parts := strings.Split(c.TrustedOriginHosts, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
