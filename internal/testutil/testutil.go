// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared helpers for tests.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// TestDB creates a migrated temporary SQLite database. The database
// file lives in t.TempDir and is removed automatically.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.NewDB(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return db
}

// TestLogger returns a logger that discards all output.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestUser inserts a user with a pre-hashed placeholder password
// and returns it. The stored hash does not verify against anything.
func CreateTestUser(t *testing.T, queries *store.Queries, username string, isAdmin bool) model.User {
	t.Helper()

	now := time.Now()
	user, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		Phone:        "5551234567",
		Gender:       model.GenderOther,
		PasswordHash: "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW",
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("creating test user %q: %v", username, err)
	}
	return user
}

// CreateTestPost inserts a post authored by the given user.
func CreateTestPost(t *testing.T, queries *store.Queries, authorID int64, title string, published bool) model.Post {
	t.Helper()

	now := time.Now()
	post, err := queries.CreatePost(context.Background(), store.CreatePostParams{
		Title:       title,
		Slug:        slugForTest(title),
		Content:     "Test content for " + title,
		Excerpt:     "Excerpt for " + title,
		Category:    "general",
		Tags:        []string{"test"},
		IsPublished: published,
		AuthorID:    authorID,
		ReadingTime: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("creating test post %q: %v", title, err)
	}
	return post
}

// slugForTest is a minimal slug good enough for fixtures; production
// slugs come from util.Slugify.
func slugForTest(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ' || r == '-':
			out = append(out, '-')
		}
	}
	return string(out)
}
