// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	UserID    sql.NullInt64
	IP        string
	CreatedAt time.Time
}

// CreateEvent inserts an audit log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO events (level, category, message, metadata, user_id, ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.Metadata, arg.UserID, arg.IP, arg.CreatedAt)
	return err
}

// ListRecentEvents returns the newest events, optionally filtered by
// category.
func (q *Queries) ListRecentEvents(ctx context.Context, category string, limit int) ([]model.Event, error) {
	query := `SELECT id, level, category, message, metadata, user_id, ip, created_at FROM events`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		var userID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message,
			&e.Metadata, &userID, &e.IP, &e.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			e.UserID = &userID.Int64
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes events older than the cutoff and returns
// how many were deleted.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
