// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event severity levels, ordered.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryAuth      = "auth"
	EventCategoryContent   = "content"
	EventCategoryAnalytics = "analytics"
	EventCategorySystem    = "system"
)

// Event is an audit log entry. Metadata is a JSON object string.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata,omitempty"`
	UserID    *int64    `json:"userId,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
