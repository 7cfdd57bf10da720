// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginProtectionLockout(t *testing.T) {
	lp := NewLoginProtection()
	defer lp.Stop()

	const id = "alice@example.com"

	if lp.IsLockedOut(id) {
		t.Fatal("fresh identifier already locked out")
	}

	for i := 0; i < maxFailedAttempts-1; i++ {
		lp.RecordFailure(id)
		if lp.IsLockedOut(id) {
			t.Fatalf("locked out after %d failures, want %d", i+1, maxFailedAttempts)
		}
	}

	lp.RecordFailure(id)
	if !lp.IsLockedOut(id) {
		t.Errorf("not locked out after %d failures", maxFailedAttempts)
	}
}

func TestLoginProtectionSuccessResets(t *testing.T) {
	lp := NewLoginProtection()
	defer lp.Stop()

	const id = "bob@example.com"
	for i := 0; i < maxFailedAttempts; i++ {
		lp.RecordFailure(id)
	}
	if !lp.IsLockedOut(id) {
		t.Fatal("expected lockout before reset")
	}

	lp.RecordSuccess(id)
	if lp.IsLockedOut(id) {
		t.Error("still locked out after RecordSuccess")
	}
}

func TestLoginProtectionIdentifiersIndependent(t *testing.T) {
	lp := NewLoginProtection()
	defer lp.Stop()

	for i := 0; i < maxFailedAttempts; i++ {
		lp.RecordFailure("victim")
	}
	if lp.IsLockedOut("bystander") {
		t.Error("unrelated identifier locked out")
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	t.Run("GET passes untouched", func(t *testing.T) {
		lp := NewLoginProtection()
		defer lp.Stop()
		handler := lp.Middleware()(okHandler())

		for i := 0; i < 20; i++ {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/login", nil)
			r.RemoteAddr = "10.9.9.9:1"
			handler.ServeHTTP(rec, r)
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %d status = %d, want 200", i+1, rec.Code)
			}
		}
	})

	t.Run("POST burst hits the limiter", func(t *testing.T) {
		lp := NewLoginProtection()
		defer lp.Stop()
		handler := lp.Middleware()(okHandler())

		var limited bool
		for i := 0; i < 10; i++ {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/login", nil)
			r.RemoteAddr = "10.9.9.8:1"
			handler.ServeHTTP(rec, r)
			if rec.Code == http.StatusTooManyRequests {
				limited = true
				break
			}
		}
		if !limited {
			t.Error("10 rapid POSTs never hit the rate limiter")
		}
	})
}
