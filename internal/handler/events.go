// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
)

const defaultEventLimit = 50

// ListEvents returns the newest audit events, optionally filtered by
// category.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := h.queries.ListRecentEvents(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"events": events})
}
