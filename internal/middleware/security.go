// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeadersConfig controls the hardening headers.
type SecurityHeadersConfig struct {
	// EnableHSTS adds Strict-Transport-Security. Only meaningful
	// behind TLS, so off in development.
	EnableHSTS bool

	// ContentSecurityPolicy overrides the default CSP when non-empty.
	ContentSecurityPolicy string
}

// DefaultSecurityHeadersConfig returns the production defaults.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{EnableHSTS: true}
}

func buildCSP(cfg SecurityHeadersConfig) string {
	if cfg.ContentSecurityPolicy != "" {
		return cfg.ContentSecurityPolicy
	}
	directives := []string{
		"default-src 'self'",
		"img-src 'self' data: https:",
		"style-src 'self' 'unsafe-inline'",
		"script-src 'self'",
		"frame-ancestors 'none'",
	}
	return strings.Join(directives, "; ")
}

// SecurityHeaders sets the standard hardening headers on every response.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	csp := buildCSP(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Content-Security-Policy", csp)
			if cfg.EnableHSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
