// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

// CreateSessionParams holds the fields for CreateSession.
type CreateSessionParams struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateSession inserts a new session row.
func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (model.Session, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING token, user_id, expires_at, created_at`,
		arg.Token, arg.UserID, arg.ExpiresAt, arg.CreatedAt,
	)
	return scanSession(row)
}

// GetSessionByToken returns the session with the given token,
// expired or not. Expiry policy belongs to the session service.
func (q *Queries) GetSessionByToken(ctx context.Context, token string) (model.Session, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token)
	return scanSession(row)
}

// DeleteSession removes a session by token. No-op if absent.
func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteUserSessions removes every session belonging to a user.
func (q *Queries) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions that expired before now and
// returns how many were deleted.
func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountUserSessions returns the number of active rows for a user.
func (q *Queries) CountUserSessions(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

func scanSession(row rowScanner) (model.Session, error) {
	var s model.Session
	err := row.Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}
