// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/olegiv/folio-go/internal/model"
)

func TestSignup(t *testing.T) {
	ts := newTestServer(t)

	valid := map[string]any{
		"username": "newuser",
		"email":    "new@example.com",
		"phoneNumber": "1234567890",
		"gender":   "female",
		"password": "sup3rsecret",
	}

	t.Run("creates account and session", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/api/auth/signup", "", valid)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
		}

		if strings.Contains(rec.Body.String(), "passwordHash") {
			t.Error("response leaks password hash")
		}

		cookie := authCookie(rec)
		if cookie == nil {
			t.Fatal("no auth cookie set")
		}
		if !cookie.HttpOnly {
			t.Error("auth cookie is not HttpOnly")
		}

		var user model.User
		dataField(t, decodeEnvelope(t, rec), "user", &user)
		if user.Username != "newuser" || user.IsAdmin {
			t.Errorf("user = %+v, want non-admin newuser", user)
		}

		// The cookie must authenticate follow-up requests.
		me := ts.request(t, http.MethodGet, "/api/auth/me", cookie.Value, nil)
		if !strings.Contains(me.Body.String(), `"newuser"`) {
			t.Errorf("me after signup = %s, want the new user", me.Body.String())
		}
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		req := map[string]any{
			"username": "x",
			"email":    "not-an-email",
			"phoneNumber": "12345",
			"gender":   "robot",
			"password": "tiny",
		}
		rec := ts.request(t, http.MethodPost, "/api/auth/signup", "", req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}

		env := decodeEnvelope(t, rec)
		for _, field := range []string{"username", "email", "phoneNumber", "gender", "password"} {
			if env.Error.Details[field] == "" {
				t.Errorf("missing validation detail for %s", field)
			}
		}
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		dup := map[string]any{
			"username": "newuser",
			"email":    "other@example.com",
			"phoneNumber": "1234567890",
			"gender":   "male",
			"password": "sup3rsecret",
		}
		rec := ts.request(t, http.MethodPost, "/api/auth/signup", "", dup)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Error.Code != "username_taken" {
			t.Errorf("error code = %s, want username_taken", env.Error.Code)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		dup := map[string]any{
			"username": "otheruser",
			"email":    "new@example.com",
			"phoneNumber": "1234567890",
			"gender":   "male",
			"password": "sup3rsecret",
		}
		rec := ts.request(t, http.MethodPost, "/api/auth/signup", "", dup)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Error.Code != "email_taken" {
			t.Errorf("error code = %s, want email_taken", env.Error.Code)
		}
	})
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "alice", "correct-horse", false)

	t.Run("by username", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"emailOrUsername": "alice",
			"password":        "correct-horse",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
		}
		if authCookie(rec) == nil {
			t.Error("no auth cookie set")
		}
	})

	t.Run("by email", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"emailOrUsername": "alice@example.com",
			"password":        "correct-horse",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("wrong password and unknown account are indistinguishable", func(t *testing.T) {
		wrongPass := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"emailOrUsername": "alice",
			"password":        "wrong",
		})
		noAccount := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"emailOrUsername": "nobody",
			"password":        "wrong",
		})

		if wrongPass.Code != http.StatusUnauthorized || noAccount.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d/%d, want 401/401", wrongPass.Code, noAccount.Code)
		}
		if wrongPass.Body.String() != noAccount.Body.String() {
			t.Errorf("error bodies differ: %s vs %s", wrongPass.Body.String(), noAccount.Body.String())
		}
	})
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "bob", "hunter2hunter2", false)
	token := ts.login(t, user.ID)

	rec := ts.request(t, http.MethodPost, "/api/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	cookie := authCookie(rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Error("auth cookie not cleared")
	}

	// The revoked token must no longer authenticate.
	verify := ts.request(t, http.MethodGet, "/api/auth/verify", token, nil)
	if verify.Code != http.StatusUnauthorized {
		t.Errorf("verify after logout = %d, want 401", verify.Code)
	}
}

func TestMeAndVerify(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "carol", "hunter2hunter2", false)
	token := ts.login(t, user.ID)

	t.Run("me anonymous", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/auth/me", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"user":null`) {
			t.Errorf("body = %s, want null user", rec.Body.String())
		}
	})

	t.Run("me authenticated", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/auth/me", token, nil)
		if !strings.Contains(rec.Body.String(), `"carol"`) {
			t.Errorf("body = %s, want carol", rec.Body.String())
		}
	})

	t.Run("verify anonymous", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/auth/verify", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("verify authenticated", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/auth/verify", token, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestDeleteAccount(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "dave", "hunter2hunter2", false)
	token := ts.login(t, user.ID)

	t.Run("requires the correct password", func(t *testing.T) {
		rec := ts.request(t, http.MethodDelete, "/api/auth/account", token, map[string]any{
			"password": "wrong",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("deletes user and revokes sessions", func(t *testing.T) {
		rec := ts.request(t, http.MethodDelete, "/api/auth/account", token, map[string]any{
			"password": "hunter2hunter2",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
		}

		if _, err := ts.queries.GetUserByID(context.Background(), user.ID); err == nil {
			t.Error("user still exists after account deletion")
		}
		n, err := ts.queries.CountUserSessions(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("CountUserSessions() error = %v", err)
		}
		if n != 0 {
			t.Errorf("sessions remaining = %d, want 0", n)
		}
	})
}
