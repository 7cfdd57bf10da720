// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *store.Queries) {
	t.Helper()
	queries := store.New(testutil.TestDB(t))
	return NewService(queries, false), queries
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, queries := newTestService(t)
	user := testutil.CreateTestUser(t, queries, "alice", false)

	sess, err := svc.Create(ctx, user.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.Token == "" {
		t.Fatal("Create() returned empty token")
	}
	if sess.UserID != user.ID {
		t.Errorf("UserID = %d, want %d", sess.UserID, user.ID)
	}

	wantExpiry := time.Now().Add(Lifetime)
	if d := sess.ExpiresAt.Sub(wantExpiry); d < -time.Minute || d > time.Minute {
		t.Errorf("ExpiresAt = %v, want about %v", sess.ExpiresAt, wantExpiry)
	}

	got, err := svc.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("Get().UserID = %d, want %d", got.UserID, user.ID)
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	svc, queries := newTestService(t)
	user := testutil.CreateTestUser(t, queries, "bob", false)

	seen := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		sess, err := svc.Create(ctx, user.ID)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, dup := seen[sess.Token]; dup {
			t.Fatalf("duplicate token %q", sess.Token)
		}
		seen[sess.Token] = struct{}{}
	}
}

func TestGetUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "no-such-token")
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("Get() error = %v, want ErrNoSession", err)
	}

	_, err = svc.Get(context.Background(), "")
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("Get(\"\") error = %v, want ErrNoSession", err)
	}
}

func TestGetExpiredSessionDeletesRow(t *testing.T) {
	ctx := context.Background()
	svc, queries := newTestService(t)
	user := testutil.CreateTestUser(t, queries, "carol", false)

	_, err := queries.CreateSession(ctx, store.CreateSessionParams{
		Token:     "expired-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-Lifetime),
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if _, err := svc.Get(ctx, "expired-token"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Get() error = %v, want ErrNoSession", err)
	}

	n, err := queries.CountUserSessions(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountUserSessions() error = %v", err)
	}
	if n != 0 {
		t.Errorf("expired row still present, count = %d", n)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, queries := newTestService(t)
	user := testutil.CreateTestUser(t, queries, "dave", false)

	sess, err := svc.Create(ctx, user.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Delete(ctx, sess.Token); err != nil {
			t.Errorf("Delete() #%d error = %v", i+1, err)
		}
	}

	if _, err := svc.Get(ctx, sess.Token); !errors.Is(err, ErrNoSession) {
		t.Errorf("Get() after delete error = %v, want ErrNoSession", err)
	}
}

func TestDeleteUserSessions(t *testing.T) {
	ctx := context.Background()
	svc, queries := newTestService(t)
	user := testutil.CreateTestUser(t, queries, "erin", false)
	other := testutil.CreateTestUser(t, queries, "frank", false)

	var tokens []string
	for i := 0; i < 3; i++ {
		sess, err := svc.Create(ctx, user.ID)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		tokens = append(tokens, sess.Token)
	}
	otherSess, err := svc.Create(ctx, other.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.DeleteUserSessions(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUserSessions() error = %v", err)
	}

	for _, token := range tokens {
		if _, err := svc.Get(ctx, token); !errors.Is(err, ErrNoSession) {
			t.Errorf("Get(%q) error = %v, want ErrNoSession", token, err)
		}
	}
	if _, err := svc.Get(ctx, otherSess.Token); err != nil {
		t.Errorf("other user's session gone too: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	svc, queries := newTestService(t)
	user := testutil.CreateTestUser(t, queries, "grace", false)

	_, err := queries.CreateSession(ctx, store.CreateSessionParams{
		Token: "stale", UserID: user.ID,
		ExpiresAt: time.Now().Add(-time.Hour), CreatedAt: time.Now().Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := svc.Create(ctx, user.ID); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deleted, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", deleted)
	}
}

func TestCookies(t *testing.T) {
	t.Run("set cookie attributes", func(t *testing.T) {
		svc := NewService(nil, true)
		rec := httptest.NewRecorder()
		svc.SetCookie(rec, "token-value")

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("got %d cookies, want 1", len(cookies))
		}
		c := cookies[0]
		if c.Name != CookieName {
			t.Errorf("Name = %q, want %q", c.Name, CookieName)
		}
		if c.Value != "token-value" {
			t.Errorf("Value = %q, want %q", c.Value, "token-value")
		}
		if !c.HttpOnly {
			t.Error("HttpOnly = false, want true")
		}
		if !c.Secure {
			t.Error("Secure = false, want true")
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("SameSite = %v, want Strict", c.SameSite)
		}
		if c.Path != "/" {
			t.Errorf("Path = %q, want /", c.Path)
		}
		if want := int(Lifetime.Seconds()); c.MaxAge != want {
			t.Errorf("MaxAge = %d, want %d", c.MaxAge, want)
		}
	})

	t.Run("insecure in development", func(t *testing.T) {
		svc := NewService(nil, false)
		rec := httptest.NewRecorder()
		svc.SetCookie(rec, "token-value")

		if rec.Result().Cookies()[0].Secure {
			t.Error("Secure = true in development mode")
		}
	})

	t.Run("clear cookie", func(t *testing.T) {
		svc := NewService(nil, false)
		rec := httptest.NewRecorder()
		svc.ClearCookie(rec)

		c := rec.Result().Cookies()[0]
		if c.Value != "" {
			t.Errorf("Value = %q, want empty", c.Value)
		}
		if c.MaxAge >= 0 {
			t.Errorf("MaxAge = %d, want negative", c.MaxAge)
		}
	})

	t.Run("token from request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if got := TokenFromRequest(r); got != "" {
			t.Errorf("TokenFromRequest(no cookie) = %q, want empty", got)
		}

		r.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})
		if got := TokenFromRequest(r); got != "abc" {
			t.Errorf("TokenFromRequest() = %q, want abc", got)
		}
	})
}
