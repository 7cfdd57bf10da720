// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/olegiv/folio-go/internal/model"
)

// SignupParams are the fields required to register.
type SignupParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phoneNumber"`
	Gender   string `json:"gender"`
	Password string `json:"password"`
}

// AuthStore tracks the logged-in user. The zero snapshot means
// anonymous.
type AuthStore struct {
	client *Client

	mu      sync.RWMutex
	user    *model.User
	loading bool
	lastErr error
}

// NewAuthStore creates an AuthStore over the client.
func NewAuthStore(client *Client) *AuthStore {
	return &AuthStore{client: client}
}

// AuthSnapshot is a point-in-time copy of the auth state.
type AuthSnapshot struct {
	User    *model.User
	Loading bool
	Err     error
}

// Snapshot returns the current auth state.
func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var user *model.User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return AuthSnapshot{User: user, Loading: s.loading, Err: s.lastErr}
}

func (s *AuthStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *AuthStore) finish(user *model.User, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastErr = err
	if err == nil {
		s.user = user
	}
}

// Signup registers an account and signs in as it.
func (s *AuthStore) Signup(ctx context.Context, params SignupParams) error {
	s.begin()

	var payload struct {
		User *model.User `json:"user"`
	}
	_, err := s.client.do(ctx, http.MethodPost, "/auth/signup", nil, params, &payload)
	s.finish(payload.User, err)
	return err
}

// Login authenticates by email or username.
func (s *AuthStore) Login(ctx context.Context, emailOrUsername, password string) error {
	s.begin()

	body := map[string]string{
		"emailOrUsername": emailOrUsername,
		"password":        password,
	}
	var payload struct {
		User *model.User `json:"user"`
	}
	_, err := s.client.do(ctx, http.MethodPost, "/auth/login", nil, body, &payload)
	s.finish(payload.User, err)
	return err
}

// Logout ends the session. The local user is cleared regardless of the
// server's answer.
func (s *AuthStore) Logout(ctx context.Context) error {
	s.begin()
	_, err := s.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)

	s.mu.Lock()
	s.loading = false
	s.lastErr = err
	s.user = nil
	s.mu.Unlock()
	return err
}

// Refresh asks the server who we are. Anonymous sessions yield a nil
// user without error.
func (s *AuthStore) Refresh(ctx context.Context) error {
	s.begin()

	var payload struct {
		User *model.User `json:"user"`
	}
	_, err := s.client.do(ctx, http.MethodGet, "/auth/me", nil, nil, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastErr = err
	if err == nil {
		s.user = payload.User
	}
	return err
}

// DeleteAccount removes the account after password confirmation and
// clears the local user.
func (s *AuthStore) DeleteAccount(ctx context.Context, password string) error {
	s.begin()

	body := map[string]string{"password": password}
	_, err := s.client.do(ctx, http.MethodDelete, "/auth/account", nil, body, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastErr = err
	if err == nil {
		s.user = nil
	}
	return err
}
