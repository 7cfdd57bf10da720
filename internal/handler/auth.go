// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
)

const minUsernameLength = 3

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phoneNumber"`
	Gender   string `json:"gender"`
	Password string `json:"password"`
}

// Signup registers a new account and opens a session for it.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	details := map[string]string{}
	if len(req.Username) < minUsernameLength {
		details["username"] = "Username must be at least 3 characters"
	}
	if !model.ValidEmail(req.Email) {
		details["email"] = "Invalid email address"
	}
	if !model.ValidPhone(req.Phone) {
		details["phoneNumber"] = "Phone number must be exactly 10 digits"
	}
	if !model.ValidGender(req.Gender) {
		details["gender"] = "Gender must be male, female or other"
	}
	if len(req.Password) < auth.MinPasswordLength {
		details["password"] = "Password must be at least 6 characters"
	}
	if len(details) > 0 {
		WriteValidationError(w, details)
		return
	}

	ctx := r.Context()
	if _, err := h.queries.GetUserByUsername(ctx, req.Username); err == nil {
		WriteError(w, http.StatusBadRequest, "username_taken", "Username is already taken")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, err)
		return
	}
	if _, err := h.queries.GetUserByEmail(ctx, req.Email); err == nil {
		WriteError(w, http.StatusBadRequest, "email_taken", "Email is already registered")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		Gender:       req.Gender,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	sess, err := h.sessions.Create(ctx, user.ID)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	h.sessions.SetCookie(w, sess.Token)

	slog.Info("user signed up", "user_id", user.ID, "username", user.Username)
	WriteCreated(w, map[string]any{"user": user})
}

type loginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// Login authenticates by email or username. Failures are deliberately
// indistinguishable between unknown accounts and wrong passwords.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	identifier := strings.TrimSpace(req.EmailOrUsername)
	if identifier == "" || req.Password == "" {
		WriteInvalidCredentials(w)
		return
	}

	ip := middleware.ClientIP(r)
	lockKey := strings.ToLower(identifier)
	if h.lockout != nil && (h.lockout.IsLockedOut(lockKey) || h.lockout.IsLockedOut(ip)) {
		slog.Warn("login attempt while locked out", "identifier", lockKey, "ip", ip)
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			"Too many failed attempts. Try again later.")
		return
	}

	ctx := r.Context()
	var user model.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = h.queries.GetUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = h.queries.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, err)
			return
		}
		h.recordLoginFailure(lockKey, ip)
		WriteInvalidCredentials(w)
		return
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		h.recordLoginFailure(lockKey, ip)
		slog.Warn("login failed", "user_id", user.ID, "ip", ip)
		WriteInvalidCredentials(w)
		return
	}

	sess, err := h.sessions.Create(ctx, user.ID)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	h.sessions.SetCookie(w, sess.Token)

	if h.lockout != nil {
		h.lockout.RecordSuccess(lockKey)
		h.lockout.RecordSuccess(ip)
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	WriteSuccess(w, map[string]any{"user": user})
}

func (h *Handler) recordLoginFailure(identifier, ip string) {
	if h.lockout == nil {
		return
	}
	h.lockout.RecordFailure(identifier)
	h.lockout.RecordFailure(ip)
}

// Logout revokes the current session. Always succeeds, logged in or not.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := session.TokenFromRequest(r); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			slog.Error("revoking session", "error", err)
		}
	}
	h.sessions.ClearCookie(w)
	WriteSuccess(w, map[string]any{"message": "Logged out"})
}

// Me returns the authenticated user, or null for anonymous requests.
// Always 200 so clients can probe auth state without error handling.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteSuccess(w, map[string]any{"user": nil})
		return
	}
	WriteSuccess(w, map[string]any{"user": user})
}

// Verify returns the authenticated user or 401.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, map[string]any{"user": user})
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// DeleteAccount removes the authenticated user after re-verifying the
// password. All sessions are revoked first.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req deleteAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		WriteInvalidCredentials(w)
		return
	}

	ctx := r.Context()
	if err := h.sessions.DeleteUserSessions(ctx, user.ID); err != nil {
		WriteInternalError(w, err)
		return
	}
	if err := h.queries.DeleteUser(ctx, user.ID); err != nil {
		WriteInternalError(w, err)
		return
	}
	h.sessions.ClearCookie(w)

	slog.Info("account deleted", "user_id", user.ID, "username", user.Username)
	WriteSuccess(w, map[string]any{"message": "Account deleted"})
}
