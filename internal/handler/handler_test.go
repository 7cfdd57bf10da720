// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/analytics"
	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/geoip"
	"github.com/olegiv/folio-go/internal/imagehost"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
)

// testServer bundles a handler with its dependencies and a router wired
// the way main wires it.
type testServer struct {
	handler  *Handler
	router   http.Handler
	queries  *store.Queries
	sessions *session.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.TestDB(t)
	queries := store.New(db)
	sessions := session.NewService(queries, false)

	lockout := middleware.NewLoginProtection()
	t.Cleanup(lockout.Stop)

	caches := cache.NewManager(cache.ManagerConfig{Backend: "memory"})
	t.Cleanup(func() { _ = caches.Close() })

	images, err := imagehost.NewLocalHost(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("creating image host: %v", err)
	}

	geo, err := geoip.New("")
	if err != nil {
		t.Fatalf("creating geoip resolver: %v", err)
	}

	h := New(Config{
		Queries:  queries,
		Sessions: sessions,
		Lockout:  lockout,
		Caches:   caches,
		Images:   images,
		Tracker:  analytics.NewTracker(queries, geo),
	})

	r := chi.NewRouter()
	r.Use(middleware.WithUser(sessions, queries))
	r.Mount("/api", h.Routes())

	return &testServer{handler: h, router: r, queries: queries, sessions: sessions}
}

// createUser inserts a user with a real password hash and returns it.
func (ts *testServer) createUser(t *testing.T, username, password string, isAdmin bool) model.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	now := time.Now()
	user, err := ts.queries.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		Phone:        "5551234567",
		Gender:       model.GenderOther,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("creating user %q: %v", username, err)
	}
	return user
}

// login opens a session for the user and returns the token.
func (ts *testServer) login(t *testing.T, userID int64) string {
	t.Helper()

	sess, err := ts.sessions.Create(context.Background(), userID)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return sess.Token
}

// request performs a JSON request. token may be empty for anonymous.
func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors both response shapes for decoding in tests.
type envelope struct {
	Data  map[string]json.RawMessage `json:"data"`
	Meta  *Meta                      `json:"meta"`
	Error *ErrorDetail               `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return env
}

// dataField unmarshals one field of the data envelope into dst.
func dataField(t *testing.T, env envelope, field string, dst any) {
	t.Helper()

	raw, ok := env.Data[field]
	if !ok {
		t.Fatalf("response data has no field %q", field)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decoding data field %q: %v", field, err)
	}
}

// authCookie extracts the auth cookie from a response, or nil.
func authCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}
