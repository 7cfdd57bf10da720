// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testImageBytes(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func TestProcess(t *testing.T) {
	t.Run("jpeg passes through", func(t *testing.T) {
		data := testImageBytes(t, 800, 600, encodeJPEG)

		res, err := Process(data)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if res.Width != 800 || res.Height != 600 {
			t.Errorf("dimensions = %dx%d, want 800x600", res.Width, res.Height)
		}
		if res.MimeType != MimeTypeJPEG {
			t.Errorf("MimeType = %q, want %q", res.MimeType, MimeTypeJPEG)
		}
	})

	t.Run("png keeps its format", func(t *testing.T) {
		data := testImageBytes(t, 100, 100, encodePNG)

		res, err := Process(data)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if res.MimeType != MimeTypePNG {
			t.Errorf("MimeType = %q, want %q", res.MimeType, MimeTypePNG)
		}
	})

	t.Run("oversized image bounded", func(t *testing.T) {
		data := testImageBytes(t, MaxWidth+500, 1000, encodeJPEG)

		res, err := Process(data)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if res.Width > MaxWidth || res.Height > MaxHeight {
			t.Errorf("dimensions = %dx%d, exceed bounds", res.Width, res.Height)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := Process([]byte("definitely not an image")); err == nil {
			t.Error("Process() error = nil for garbage input")
		}
	})
}

func TestThumbnail(t *testing.T) {
	data := testImageBytes(t, 1200, 700, encodeJPEG)

	res, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail() error = %v", err)
	}
	if res.Width != ThumbSize || res.Height != ThumbSize {
		t.Errorf("dimensions = %dx%d, want %dx%d", res.Width, res.Height, ThumbSize, ThumbSize)
	}
	if res.MimeType != MimeTypeJPEG {
		t.Errorf("MimeType = %q, want %q", res.MimeType, MimeTypeJPEG)
	}
}

func TestDetectMimeType(t *testing.T) {
	jpegData := testImageBytes(t, 10, 10, encodeJPEG)
	if got := DetectMimeType(jpegData); got != MimeTypeJPEG {
		t.Errorf("DetectMimeType(jpeg) = %q, want %q", got, MimeTypeJPEG)
	}

	pngData := testImageBytes(t, 10, 10, encodePNG)
	if got := DetectMimeType(pngData); got != MimeTypePNG {
		t.Errorf("DetectMimeType(png) = %q, want %q", got, MimeTypePNG)
	}
}

func TestIsImage(t *testing.T) {
	for _, mt := range []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP} {
		if !IsImage(mt) {
			t.Errorf("IsImage(%q) = false, want true", mt)
		}
	}
	for _, mt := range []string{MimeTypePDF, "text/html", "image/tiff", ""} {
		if IsImage(mt) {
			t.Errorf("IsImage(%q) = true, want false", mt)
		}
	}
}

func TestApplyOrientation(t *testing.T) {
	// A 2x1 image rotated 90 degrees becomes 1x2.
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))

	rotated := applyOrientation(img, 6)
	if b := rotated.Bounds(); b.Dx() != 1 || b.Dy() != 2 {
		t.Errorf("orientation 6 bounds = %dx%d, want 1x2", b.Dx(), b.Dy())
	}

	same := applyOrientation(img, 1)
	if b := same.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("orientation 1 bounds = %dx%d, want 2x1", b.Dx(), b.Dy())
	}
}
