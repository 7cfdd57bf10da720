// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the JSON HTTP API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the success envelope.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries pagination information for list responses.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta builds pagination metadata.
func NewMeta(page, perPage int, total int64) *Meta {
	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	return &Meta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail holds the machine code, human message and optional
// per-field details of an error.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// WriteSuccess writes a 200 with the data envelope.
func WriteSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

// WriteSuccessWithMeta writes a 200 with data and pagination metadata.
func WriteSuccessWithMeta(w http.ResponseWriter, data any, meta *Meta) {
	writeJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 with the data envelope.
func WriteCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteNoContent writes a 204.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error envelope with the given status and code.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// WriteBadRequest writes a 400.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

// WriteValidationError writes a 400 with per-field details.
func WriteValidationError(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{
		Code:    "validation_failed",
		Message: "Validation failed",
		Details: details,
	}})
}

// WriteUnauthorized writes a 401.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

// WriteInvalidCredentials writes the deliberately generic 401 used by
// login so account existence cannot be probed.
func WriteInvalidCredentials(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
}

// WriteForbidden writes a 403.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

// WriteNotFound writes a 404.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

// WriteInternalError writes a 500 with a generic body. The cause is
// logged, never sent to the client.
func WriteInternalError(w http.ResponseWriter, err error) {
	slog.Error("internal error", "error", err)
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}
