// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"
)

// ContentTTL is the default TTL for content listings.
const ContentTTL = 5 * time.Minute

// ManagerConfig selects and configures the backend.
type ManagerConfig struct {
	Backend       string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Manager owns the cache backend and exposes invalidation for the
// content caches keyed below it.
type Manager struct {
	backend Cache
}

// NewManager creates the configured backend. A failed Redis connection
// falls back to memory with a logged warning rather than refusing to
// start.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Backend == "redis" {
		redisCache, err := NewRedisCache(RedisOptions{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			DefaultTTL: ContentTTL,
		})
		if err == nil {
			slog.Info("cache backend ready", "backend", "redis", "addr", cfg.RedisAddr)
			return &Manager{backend: redisCache}
		}
		slog.Warn("redis unavailable, falling back to memory cache", "error", err)
	}

	slog.Debug("cache backend ready", "backend", "memory")
	return &Manager{backend: NewMemoryCache(ContentTTL)}
}

// Backend returns the underlying Cache for typed wrappers.
func (m *Manager) Backend() Cache {
	return m.backend
}

// InvalidateContent drops every cached listing. Called after any admin
// write so public reads never serve stale published state.
func (m *Manager) InvalidateContent(ctx context.Context) {
	if err := m.backend.Clear(ctx); err != nil {
		slog.Warn("invalidating content cache", "error", err)
	}
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
