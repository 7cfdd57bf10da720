// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla validates Fetch metadata headers rather than
// a double-submit cookie, so no cookie options are needed.
type CSRFConfig struct {
	// AuthKey is a 32-byte key authenticating the CSRF token. The
	// session secret is reused for this.
	AuthKey []byte

	// TrustedOrigins are host-only values allowed to make
	// cross-origin requests.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns a CSRFConfig with sensible defaults. In
// development localhost origins are trusted for easier testing.
func DefaultCSRFConfig(authKey []byte, isDev bool, extraOrigins []string) CSRFConfig {
	cfg := CSRFConfig{
		AuthKey:        authKey,
		TrustedOrigins: extraOrigins,
	}

	if isDev {
		cfg.TrustedOrigins = append(cfg.TrustedOrigins,
			"localhost:8080",
			"127.0.0.1:8080",
		)
	}

	return cfg
}

// CSRF returns middleware that rejects cross-site mutating requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	}

	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Error("CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	WriteAPIError(w, http.StatusForbidden, "csrf_failed", "CSRF validation failed", nil)
}

// SkipCSRF skips CSRF protection for the given path prefixes. Used for
// the public read-only endpoints.
func SkipCSRF(prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range prefixes {
				if strings.HasPrefix(r.URL.Path, p) {
					r = csrf.UnsafeSkipCheck(r)
					break
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
