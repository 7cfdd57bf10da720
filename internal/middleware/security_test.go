// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	t.Run("default headers", func(t *testing.T) {
		handler := SecurityHeaders(DefaultSecurityHeadersConfig())(okHandler())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		checks := map[string]string{
			"X-Content-Type-Options": "nosniff",
			"X-Frame-Options":        "DENY",
			"Referrer-Policy":        "strict-origin-when-cross-origin",
		}
		for header, want := range checks {
			if got := rec.Header().Get(header); got != want {
				t.Errorf("%s = %q, want %q", header, got, want)
			}
		}
		if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "default-src 'self'") {
			t.Errorf("Content-Security-Policy = %q, missing default-src", got)
		}
		if got := rec.Header().Get("Strict-Transport-Security"); got == "" {
			t.Error("Strict-Transport-Security missing with HSTS enabled")
		}
	})

	t.Run("no HSTS in development", func(t *testing.T) {
		handler := SecurityHeaders(SecurityHeadersConfig{})(okHandler())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
			t.Errorf("Strict-Transport-Security = %q, want empty", got)
		}
	})

	t.Run("custom CSP wins", func(t *testing.T) {
		cfg := SecurityHeadersConfig{ContentSecurityPolicy: "default-src 'none'"}
		handler := SecurityHeaders(cfg)(okHandler())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := rec.Header().Get("Content-Security-Policy"); got != "default-src 'none'" {
			t.Errorf("Content-Security-Policy = %q, want custom value", got)
		}
	})
}

func TestStripTrailingSlash(t *testing.T) {
	handler := StripTrailingSlash(okHandler())

	tests := []struct {
		path     string
		wantCode int
		wantLoc  string
	}{
		{"/posts/", http.StatusMovedPermanently, "/posts"},
		{"/posts", http.StatusOK, ""},
		{"/", http.StatusOK, ""},
		{"/a/b///", http.StatusMovedPermanently, "/a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantLoc != "" {
				if got := rec.Header().Get("Location"); got != tt.wantLoc {
					t.Errorf("Location = %q, want %q", got, tt.wantLoc)
				}
			}
		})
	}

	t.Run("query string preserved", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/?page=2", nil))

		if got, want := rec.Header().Get("Location"), "/posts?page=2"; got != want {
			t.Errorf("Location = %q, want %q", got, want)
		}
	})
}
