// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Login lockout tuning.
const (
	maxFailedAttempts  = 5
	baseLockoutPeriod  = time.Minute
	maxLockoutPeriod   = 24 * time.Hour
	attemptWindowReset = time.Hour
	maxTrackedKeys     = 10000
)

// failedLogin tracks consecutive failures for one identifier.
type failedLogin struct {
	count       int
	lastAttempt time.Time
	lockedUntil time.Time
}

// LoginProtection rate limits login attempts per IP and locks out
// identifiers with repeated failures using exponential backoff.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	mu       sync.Mutex
	attempts map[string]*failedLogin

	stopCh chan struct{}
}

// NewLoginProtection creates a login protection tracker and starts its
// cleanup goroutine.
func NewLoginProtection() *LoginProtection {
	lp := &LoginProtection{
		ipLimiters: newLimiterCache[string](1, 5),
		attempts:   make(map[string]*failedLogin),
		stopCh:     make(chan struct{}),
	}
	go lp.cleanupLoop()
	return lp
}

// Stop terminates the cleanup goroutine.
func (lp *LoginProtection) Stop() {
	close(lp.stopCh)
}

// Middleware rate limits POST requests per client IP. GETs pass.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !lp.ipLimiters.get(ip).Allow() {
				slog.Warn("login rate limit exceeded", "ip", ip)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					"Too many login attempts. Please wait and try again.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsLockedOut reports whether the identifier (account or IP) is
// currently locked out.
func (lp *LoginProtection) IsLockedOut(identifier string) bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	entry, ok := lp.attempts[identifier]
	if !ok {
		return false
	}
	return time.Now().Before(entry.lockedUntil)
}

// RecordFailure notes a failed login. After maxFailedAttempts the
// identifier is locked out, doubling the period per further failure up
// to maxLockoutPeriod.
func (lp *LoginProtection) RecordFailure(identifier string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := time.Now()
	entry, ok := lp.attempts[identifier]
	if !ok || now.Sub(entry.lastAttempt) > attemptWindowReset {
		entry = &failedLogin{}
		lp.attempts[identifier] = entry
	}

	entry.count++
	entry.lastAttempt = now

	if entry.count >= maxFailedAttempts {
		over := entry.count - maxFailedAttempts
		lockout := baseLockoutPeriod << uint(over)
		if lockout > maxLockoutPeriod || lockout <= 0 {
			lockout = maxLockoutPeriod
		}
		entry.lockedUntil = now.Add(lockout)
		slog.Warn("login lockout applied",
			"identifier", identifier,
			"failures", entry.count,
			"locked_until", entry.lockedUntil,
		)
	}
}

// RecordSuccess clears the failure history for an identifier.
func (lp *LoginProtection) RecordSuccess(identifier string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	delete(lp.attempts, identifier)
}

func (lp *LoginProtection) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanup()
		case <-lp.stopCh:
			return
		}
	}
}

// cleanup drops stale entries and caps memory on both trackers.
func (lp *LoginProtection) cleanup() {
	lp.mu.Lock()
	now := time.Now()
	for id, entry := range lp.attempts {
		if now.Sub(entry.lastAttempt) > attemptWindowReset && now.After(entry.lockedUntil) {
			delete(lp.attempts, id)
		}
	}
	lp.mu.Unlock()

	if lp.ipLimiters.clearIfExceeds(maxTrackedKeys) {
		slog.Debug("login limiter cache cleared")
	}
}
