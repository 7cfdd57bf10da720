// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging bridges slog to the events table so warnings and
// errors leave an audit trail.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// EventLogHandler wraps another slog.Handler and additionally persists
// records at WARN and above to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	attrs   []slog.Attr
}

// NewEventLogHandler creates an EventLogHandler around inner.
func NewEventLogHandler(inner slog.Handler, queries *store.Queries) *EventLogHandler {
	return &EventLogHandler{inner: inner, queries: queries}
}

// Enabled defers to the wrapped handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle forwards the record and persists it when WARN or above.
func (h *EventLogHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.inner.Handle(ctx, record)

	if record.Level >= slog.LevelWarn {
		h.persist(record)
	}
	return err
}

// WithAttrs returns a handler carrying the additional attributes.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &EventLogHandler{inner: h.inner.WithAttrs(attrs), queries: h.queries, attrs: merged}
}

// WithGroup returns a handler with the group applied to the wrapped
// handler. Groups are flattened in the persisted metadata.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithGroup(name), queries: h.queries, attrs: h.attrs}
}

// persist writes the record as an event row. Failures here must never
// take down request handling, so they are swallowed after a best
// effort stderr line through the inner handler already happened.
func (h *EventLogHandler) persist(record slog.Record) {
	metadata := make(map[string]any, record.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		metadata[attr.Key] = attr.Value.Any()
	}

	var userID sql.NullInt64
	var ip string
	record.Attrs(func(attr slog.Attr) bool {
		switch attr.Key {
		case "user_id":
			if v, ok := attr.Value.Any().(int64); ok {
				userID = sql.NullInt64{Int64: v, Valid: true}
				return true
			}
		case "ip":
			ip = attr.Value.String()
			return true
		}
		metadata[attr.Key] = attr.Value.Any()
		return true
	})

	var metadataJSON string
	if len(metadata) > 0 {
		if data, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(data)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = h.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     levelName(record.Level),
		Category:  inferCategory(record.Message),
		Message:   record.Message,
		Metadata:  metadataJSON,
		UserID:    userID,
		IP:        ip,
		CreatedAt: record.Time,
	})
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory guesses the event category from the message.
func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login"), strings.Contains(msg, "auth"),
		strings.Contains(msg, "session"), strings.Contains(msg, "password"),
		strings.Contains(msg, "admin access"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "post"), strings.Contains(msg, "project"),
		strings.Contains(msg, "profile"), strings.Contains(msg, "upload"):
		return model.EventCategoryContent
	case strings.Contains(msg, "view"), strings.Contains(msg, "visitor"):
		return model.EventCategoryAnalytics
	default:
		return model.EventCategorySystem
	}
}
