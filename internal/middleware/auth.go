// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization and request hardening.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
)

// ContextKey is the type for request context keys set by middleware.
type ContextKey string

// ContextKeyUser is the context key holding the authenticated user.
const ContextKeyUser ContextKey = "user"

// WithUser resolves the auth cookie once per request. Anonymous
// requests pass through untouched; a dead session or vanished user
// clears the cookie and continues anonymously.
func WithUser(sessions *session.Service, queries *store.Queries) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.Get(r.Context(), token)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					slog.Error("resolving session", "error", err)
				}
				sessions.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), sess.UserID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					slog.Error("loading session user", "error", err, "user_id", sess.UserID)
				}
				// Session outlived its user. Revoke it.
				_ = sessions.Delete(r.Context(), token)
				sessions.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth redirects anonymous requests to /login.
// Must run after WithUser.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin redirects anonymous requests to /login and
// authenticated non-admins to /unauthorized. Must run after WithUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !user.IsAdmin {
			slog.Warn("admin access denied",
				"user_id", user.ID,
				"username", user.Username,
				"path", r.URL.Path,
			)
			http.Redirect(w, r, "/unauthorized", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the authenticated user's id, or 0 when anonymous.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// GetUserIDPtr returns the authenticated user's id, or nil when
// anonymous. Used when recording events.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		return &user.ID
	}
	return nil
}
