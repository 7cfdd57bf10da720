// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small shared helpers: slug generation, reading
// time estimation and nullable type conversions.
package util

import (
	"math"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	invalidSlugChars = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	hyphenRuns       = regexp.MustCompile(`-+`)
	validSlug        = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify converts a title into a URL-safe slug. Non-ASCII characters
// are transliterated, punctuation is stripped, whitespace and hyphen
// runs collapse to single hyphens.
//
//	Slugify("Hello, World! ") == "hello-world"
//	Slugify("A  B--C") == "a-b-c"
func Slugify(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)
	s = invalidSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValidSlug reports whether s is a well-formed slug.
func IsValidSlug(s string) bool {
	return validSlug.MatchString(s)
}

// wordsPerMinute is the assumed reading speed.
const wordsPerMinute = 200

// ReadingTime estimates reading time in minutes for the given text,
// rounding up, with a minimum of one minute.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 1
	}
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
