// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Post is a blog article. Content holds raw markdown; rendered HTML is
// produced at read time and never stored.
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml,omitempty"`
	Excerpt     string    `json:"excerpt"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	CoverImage  string    `json:"coverImage"`
	IsPublished bool      `json:"isPublished"`
	IsFeatured  bool      `json:"isFeatured"`
	AuthorID    int64     `json:"authorId"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	ReadingTime int       `json:"readingTime"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
