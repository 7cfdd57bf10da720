// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
)

// DBTX is the subset of database/sql used by the query layer. Both
// *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries exposes typed database operations.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// encodeJSON marshals v for storage in a TEXT column. Falls back to the
// given zero literal on nil input so columns never hold SQL NULL.
func encodeJSON(v any, zero string) string {
	if v == nil {
		return zero
	}
	data, err := json.Marshal(v)
	if err != nil {
		return zero
	}
	return string(data)
}

// decodeStringSlice unmarshals a JSON array column. Invalid or empty
// input yields an empty slice, never nil, so responses encode as [].
func decodeStringSlice(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	if out == nil {
		out = []string{}
	}
	return out
}
