// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imagehost abstracts the external host that stores uploaded
// media. Handlers keep only the returned URL and public id.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/folio-go/internal/imaging"
)

// Asset identifies a stored upload.
type Asset struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl,omitempty"`
	PublicID string `json:"publicId"`
}

// Host stores and removes uploaded media.
type Host interface {
	// Upload stores the bytes under the given folder and returns the
	// public asset. The folder groups assets, e.g. "posts" or "profile".
	Upload(ctx context.Context, data []byte, filename, folder string) (Asset, error)

	// Delete removes a previously uploaded asset. Unknown ids are not
	// an error.
	Delete(ctx context.Context, publicID string) error
}

// ErrUnsupportedType is returned for uploads outside the allowlist.
var ErrUnsupportedType = errors.New("imagehost: unsupported file type")

// allowedMimeTypes for uploads. PDF is allowed for the CV.
var allowedMimeTypes = map[string]string{
	imaging.MimeTypeJPEG: ".jpg",
	imaging.MimeTypePNG:  ".png",
	imaging.MimeTypeGIF:  ".gif",
	imaging.MimeTypeWebP: ".webp",
	imaging.MimeTypePDF:  ".pdf",
}

// LocalHost implements Host on the local filesystem. Assets live under
// baseDir/<folder>/<uuid><ext> and are served below urlPrefix.
type LocalHost struct {
	baseDir   string
	urlPrefix string
}

// NewLocalHost creates a LocalHost rooted at baseDir. urlPrefix is the
// public path prefix, usually "/uploads".
func NewLocalHost(baseDir, urlPrefix string) (*LocalHost, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalHost{
		baseDir:   baseDir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Upload processes and stores the data. Images go through the imaging
// pipeline and gain a thumbnail; PDFs are stored as-is.
func (h *LocalHost) Upload(_ context.Context, data []byte, filename, folder string) (Asset, error) {
	mimeType := imaging.DetectMimeType(data)
	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	folder = sanitizeFolder(folder)
	id := uuid.New().String()
	publicID := folder + "/" + id

	var thumbURL string
	if imaging.IsImage(mimeType) {
		processed, err := imaging.Process(data)
		if err != nil {
			return Asset{}, fmt.Errorf("processing %s: %w", filepath.Base(filename), err)
		}
		data = processed.Data
		if processed.MimeType != mimeType {
			// WebP input is re-encoded as JPEG.
			ext = allowedMimeTypes[processed.MimeType]
		}

		thumb, err := imaging.Thumbnail(processed.Data)
		if err == nil {
			thumbName := id + "_thumb.jpg"
			if err := h.writeFile(folder, thumbName, thumb.Data); err == nil {
				thumbURL = h.urlPrefix + "/" + folder + "/" + thumbName
			}
		}
	}

	name := id + ext
	if err := h.writeFile(folder, name, data); err != nil {
		return Asset{}, err
	}

	return Asset{
		URL:      h.urlPrefix + "/" + folder + "/" + name,
		ThumbURL: thumbURL,
		PublicID: publicID,
	}, nil
}

// Delete removes the asset and its thumbnail. Best effort: missing
// files are ignored.
func (h *LocalHost) Delete(_ context.Context, publicID string) error {
	folder, id, ok := splitPublicID(publicID)
	if !ok {
		return nil
	}

	dir := filepath.Join(h.baseDir, folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading upload directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, id) {
			if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("deleting asset file: %w", err)
			}
		}
	}
	return nil
}

// Dir returns the directory assets are stored under, for mounting a
// file server.
func (h *LocalHost) Dir() string {
	return h.baseDir
}

func (h *LocalHost) writeFile(folder, name string, data []byte) error {
	dir := filepath.Join(h.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating asset directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing asset: %w", err)
	}
	return nil
}

// sanitizeFolder keeps folder names to a single safe path segment.
func sanitizeFolder(folder string) string {
	folder = filepath.Base(filepath.Clean(folder))
	if folder == "." || folder == ".." || folder == "/" || folder == "" {
		return "misc"
	}
	return folder
}

// PublicIDFromURL recovers the public id from a stored asset URL of the
// form <prefix>/<folder>/<id><ext>. Returns false for anything else.
func PublicIDFromURL(url string) (string, bool) {
	parts := strings.Split(strings.Trim(url, "/"), "/")
	if len(parts) < 2 {
		return "", false
	}
	folder := parts[len(parts)-2]
	name := parts[len(parts)-1]
	id := strings.TrimSuffix(name, filepath.Ext(name))
	id = strings.TrimSuffix(id, "_thumb")
	if folder == "" || id == "" {
		return "", false
	}
	return folder + "/" + id, true
}

func splitPublicID(publicID string) (folder, id string, ok bool) {
	parts := strings.SplitN(publicID, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	// Ids are UUIDs; refuse anything that could walk the tree.
	if strings.ContainsAny(parts[1], "/\\.") {
		return "", "", false
	}
	return sanitizeFolder(parts[0]), parts[1], true
}
