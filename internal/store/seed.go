// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/model"
)

// SeedParams holds the initial admin credentials.
type SeedParams struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Seed creates the initial admin user and the empty profile document.
// Idempotent: it does nothing when the admin already exists.
func Seed(ctx context.Context, db *sql.DB, params SeedParams) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, params.AdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(params.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     params.AdminUsername,
		Email:        params.AdminEmail,
		Phone:        "0000000000",
		Gender:       model.GenderOther,
		PasswordHash: passwordHash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	if _, err := queries.GetOrCreateProfile(ctx); err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
	)

	return nil
}
