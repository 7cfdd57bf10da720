// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded images: EXIF orientation is
// applied, oversized images are bounded, and a thumbnail variant is
// produced. Pure Go codecs only.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Supported MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
)

// Bounds for processed output.
const (
	MaxWidth  = 1920
	MaxHeight = 1920
	ThumbSize = 400
	Quality   = 90
)

// Result describes a processed image.
type Result struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// Process decodes, orients and bounds an uploaded image, re-encoding
// it in its original format. WebP input comes back as JPEG since pure
// Go cannot encode WebP.
func Process(data []byte) (*Result, error) {
	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	if bounds.Dx() > MaxWidth || bounds.Dy() > MaxHeight {
		img = imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)
		bounds = img.Bounds()
	}

	encoded, err := encodeImage(img, format, Quality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	return &Result{
		Data:     encoded,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: formatToMimeType(format),
	}, nil
}

// Thumbnail produces a square center-cropped thumbnail as JPEG.
func Thumbnail(data []byte) (*Result, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))
	thumb := imaging.Fill(img, ThumbSize, ThumbSize, imaging.Center, imaging.Lanczos)

	encoded, err := encodeImage(thumb, "jpeg", Quality)
	if err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}

	return &Result{
		Data:     encoded,
		Width:    ThumbSize,
		Height:   ThumbSize,
		MimeType: MimeTypeJPEG,
	}, nil
}

// DetectMimeType sniffs the MIME type of uploaded data.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// IsImage reports whether the MIME type is a processable image.
func IsImage(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	}
	return false
}

// readExifOrientation returns the EXIF orientation tag, defaulting to
// 1 (normal) when absent or unreadable.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation undoes the camera rotation recorded in EXIF.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		// JPEG output, also used for WebP input.
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
// TIFF is rejected outright (CVE-2023-36308 in disintegration/imaging).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		// WebP is re-encoded as JPEG.
		return MimeTypeJPEG
	default:
		return "application/octet-stream"
	}
}
