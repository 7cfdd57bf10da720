// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching layer: a byte-value Cache
// interface with memory and Redis backends, plus typed wrappers used
// for the public content listings.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement. Values are []byte so
// memory and Redis behave identically. Implementations are thread-safe.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. TTL 0 uses the default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Has checks if a key exists and is not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases backend resources.
	Close() error
}

// Stats holds cache statistics.
type Stats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Items   int
	HitRate float64
	Size    int64
}

// StatsProvider is an optional interface for backends with statistics.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
