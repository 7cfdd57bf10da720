// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/olegiv/folio-go/internal/version"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a health handler over the database handle.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports overall status with the build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.ping(r); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": version.String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Live always answers 200 while the process runs.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready answers 200 once the database responds.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) ping(r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	return h.db.PingContext(ctx)
}
