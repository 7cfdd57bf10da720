// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Session is an authenticated login backed by an opaque token.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
