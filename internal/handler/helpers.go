// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Pagination bounds.
const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// parseIDParam reads a positive integer URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// parseIDString parses a positive integer from a raw string.
func parseIDString(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parsePageParams reads page and perPage from the query string,
// clamping both to sane bounds.
func parsePageParams(r *http.Request) (page, perPage int) {
	page = 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	perPage = defaultPerPage
	if raw := r.URL.Query().Get("perPage"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			perPage = n
		}
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// decodeJSON reads a JSON request body into dst, capping the body size.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, 1<<20)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// readUploadedFile pulls a multipart file field into memory, enforcing
// the configured upload cap.
func (h *Handler) readUploadedFile(r *http.Request, field string) ([]byte, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, nil, fmt.Errorf("parsing multipart form: %w", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, fmt.Errorf("missing file field %q", field)
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		return nil, nil, errors.New("file too large")
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > h.maxUploadSize {
		return nil, nil, errors.New("file too large")
	}
	return data, header, nil
}
