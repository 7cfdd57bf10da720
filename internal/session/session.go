// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session manages login sessions backed by opaque database
// tokens and the auth cookie that carries them.
package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// CookieName is the auth cookie carrying the session token.
const CookieName = "auth-token"

// Lifetime is how long a session and its cookie stay valid.
const Lifetime = 7 * 24 * time.Hour

// tokenBytes is the entropy of a session token before encoding.
const tokenBytes = 32

// ErrNoSession is returned when a token resolves to no live session.
var ErrNoSession = errors.New("session: no session")

// Service creates, resolves and revokes sessions.
type Service struct {
	queries *store.Queries

	// secure controls the cookie Secure attribute. Off in development
	// so cookies work over plain HTTP.
	secure bool
}

// NewService creates a session service. secure should be true outside
// development.
func NewService(queries *store.Queries, secure bool) *Service {
	return &Service{queries: queries, secure: secure}
}

// Create mints a fresh session for the user.
func (s *Service) Create(ctx context.Context, userID int64) (model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("generating session token: %w", err)
	}

	now := time.Now()
	sess, err := s.queries.CreateSession(ctx, store.CreateSessionParams{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(Lifetime),
		CreatedAt: now,
	})
	if err != nil {
		return model.Session{}, fmt.Errorf("storing session: %w", err)
	}
	return sess, nil
}

// Get resolves a token to a live session. Expired rows are deleted on
// sight and reported as ErrNoSession.
func (s *Service) Get(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, ErrNoSession
	}

	sess, err := s.queries.GetSessionByToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNoSession
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("loading session: %w", err)
	}

	if sess.Expired() {
		_ = s.queries.DeleteSession(ctx, token)
		return model.Session{}, ErrNoSession
	}
	return sess, nil
}

// Delete revokes a single session. Idempotent.
func (s *Service) Delete(ctx context.Context, token string) error {
	return s.queries.DeleteSession(ctx, token)
}

// DeleteUserSessions revokes every session of a user. Idempotent.
func (s *Service) DeleteUserSessions(ctx context.Context, userID int64) error {
	return s.queries.DeleteUserSessions(ctx, userID)
}

// PurgeExpired deletes all expired session rows. Called by the
// scheduler; Get enforces expiry regardless.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.queries.DeleteExpiredSessions(ctx, time.Now())
}

// SetCookie writes the auth cookie for the given token.
func (s *Service) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(Lifetime.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the auth cookie.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// TokenFromRequest extracts the session token from the auth cookie.
// Returns the empty string when the cookie is absent.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
