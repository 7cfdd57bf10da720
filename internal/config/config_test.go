// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "k9Qz3mXv7pLw2nRt8fJh4bYc6dSg1aVe"

func TestLoad(t *testing.T) {
	t.Run("valid minimal environment", func(t *testing.T) {
		t.Setenv("FOLIO_SESSION_SECRET", testSecret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got, want := cfg.Env, "development"; got != want {
			t.Errorf("Env = %q, want %q", got, want)
		}
		if got, want := cfg.Port, 8080; got != want {
			t.Errorf("Port = %q, want %q", got, want)
		}
		if got, want := cfg.DBPath, "./data/folio.db"; got != want {
			t.Errorf("DBPath = %q, want %q", got, want)
		}
	})

	t.Run("missing session secret", func(t *testing.T) {
		t.Setenv("FOLIO_SESSION_SECRET", "")
		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing secret")
		}
	})

	t.Run("short session secret", func(t *testing.T) {
		t.Setenv("FOLIO_SESSION_SECRET", "tooshort")
		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for short secret")
		}
	})

	t.Run("low entropy session secret", func(t *testing.T) {
		t.Setenv("FOLIO_SESSION_SECRET", strings.Repeat("ab", MinSessionSecretLength))
		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for low-entropy secret")
		}
	})

	t.Run("invalid environment name", func(t *testing.T) {
		t.Setenv("FOLIO_SESSION_SECRET", testSecret)
		t.Setenv("FOLIO_ENV", "qa")
		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid env")
		}
	})

	t.Run("invalid cache backend", func(t *testing.T) {
		t.Setenv("FOLIO_SESSION_SECRET", testSecret)
		t.Setenv("FOLIO_CACHE_BACKEND", "memcached")
		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid cache backend")
		}
	})
}

func TestConfigHelpers(t *testing.T) {
	cfg := &Config{Env: "production", Host: "0.0.0.0", Port: 9000, CacheBackend: "redis"}

	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	if got, want := cfg.ServerAddr(), "0.0.0.0:9000"; got != want {
		t.Errorf("ServerAddr() = %q, want %q", got, want)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false, want true")
	}
}

func TestTrustedOrigins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"single", "https://example.com", 1},
		{"multiple with spaces", "https://a.com, https://b.com ,", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{TrustedOriginHosts: tt.in}
			if got := len(cfg.TrustedOrigins()); got != tt.want {
				t.Errorf("len(TrustedOrigins()) = %d, want %d", got, tt.want)
			}
		})
	}
}
