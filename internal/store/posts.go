// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

const postColumns = `id, title, slug, content, excerpt, category, tags, cover_image,
	is_published, is_featured, author_id, views, likes, reading_time, created_at, updated_at`

// CreatePostParams holds the fields for CreatePost.
type CreatePostParams struct {
	Title       string
	Slug        string
	Content     string
	Excerpt     string
	Category    string
	Tags        []string
	CoverImage  string
	IsPublished bool
	IsFeatured  bool
	AuthorID    int64
	ReadingTime int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreatePost inserts a new post and returns the stored row.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, category, tags, cover_image,
			is_published, is_featured, author_id, reading_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+postColumns,
		arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.Category,
		encodeJSON(arg.Tags, "[]"), arg.CoverImage, arg.IsPublished, arg.IsFeatured,
		arg.AuthorID, arg.ReadingTime, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanPost(row)
}

// UpdatePostParams holds the fields for UpdatePost. The full row is
// written; callers resolve partial input before calling.
type UpdatePostParams struct {
	ID          int64
	Title       string
	Slug        string
	Content     string
	Excerpt     string
	Category    string
	Tags        []string
	CoverImage  string
	IsPublished bool
	IsFeatured  bool
	ReadingTime int
	UpdatedAt   time.Time
}

// UpdatePost writes the full post row. Last write wins.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE posts SET title = ?, slug = ?, content = ?, excerpt = ?, category = ?,
			tags = ?, cover_image = ?, is_published = ?, is_featured = ?,
			reading_time = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+postColumns,
		arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.Category,
		encodeJSON(arg.Tags, "[]"), arg.CoverImage, arg.IsPublished, arg.IsFeatured,
		arg.ReadingTime, arg.UpdatedAt, arg.ID,
	)
	return scanPost(row)
}

// GetPostByID returns the post with the given id.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPostBySlug returns the post with the given slug.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return scanPost(row)
}

// DeletePost removes the post with the given id.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// IncrementPostViews bumps the view counter by exactly one.
func (q *Queries) IncrementPostViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	return err
}

// IncrementPostLikes bumps the like counter by exactly one.
func (q *Queries) IncrementPostLikes(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = ?`, id)
	return err
}

// SetPostPublished flips the publish flag.
func (q *Queries) SetPostPublished(ctx context.Context, id int64, published bool, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET is_published = ?, updated_at = ? WHERE id = ?`, published, updatedAt, id)
	return err
}

// ListPostsParams holds filters for ListPosts and CountPosts.
type ListPostsParams struct {
	PublishedOnly bool
	Category      string
	Tag           string
	Search        string
	Limit         int
	Offset        int
}

// postsFilter builds the WHERE clause and args for a post list query.
func postsFilter(arg ListPostsParams) (string, []any) {
	var conds []string
	var args []any

	if arg.PublishedOnly {
		conds = append(conds, "is_published = 1")
	}
	if arg.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, arg.Category)
	}
	if arg.Tag != "" {
		// Tags are stored as a JSON array of strings.
		conds = append(conds, "tags LIKE ?")
		args = append(args, `%"`+arg.Tag+`"%`)
	}
	if arg.Search != "" {
		needle := "%" + strings.ToLower(arg.Search) + "%"
		conds = append(conds,
			"(lower(title) LIKE ? OR lower(content) LIKE ? OR lower(excerpt) LIKE ? OR lower(tags) LIKE ?)")
		args = append(args, needle, needle, needle, needle)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPosts returns posts matching the filters, newest first.
func (q *Queries) ListPosts(ctx context.Context, arg ListPostsParams) ([]model.Post, error) {
	where, args := postsFilter(arg)
	query := `SELECT ` + postColumns + ` FROM posts` + where + ` ORDER BY created_at DESC`
	if arg.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, arg.Limit, arg.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// CountPosts returns the number of posts matching the filters.
func (q *Queries) CountPosts(ctx context.Context, arg ListPostsParams) (int64, error) {
	where, args := postsFilter(arg)
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&n)
	return n, err
}

// ListFeaturedPosts returns published featured posts, newest first.
func (q *Queries) ListFeaturedPosts(ctx context.Context, limit int) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE is_published = 1 AND is_featured = 1
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ListRelatedPosts returns published posts in the same category,
// excluding the post itself, newest first.
func (q *Queries) ListRelatedPosts(ctx context.Context, category string, excludeID int64, limit int) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE is_published = 1 AND category = ? AND id != ?
		ORDER BY created_at DESC LIMIT ?`, category, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ListPostCategories returns the distinct non-empty categories of
// published posts.
func (q *Queries) ListPostCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM posts
		WHERE is_published = 1 AND category != ''
		ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListPostTags returns the distinct tags across published posts,
// sorted. Tag arrays are merged in memory since SQLite stores them as
// JSON text.
func (q *Queries) ListPostTags(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT tags FROM posts WHERE is_published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, tag := range decodeStringSlice(raw) {
			seen[tag] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// CountPostBySlug reports how many posts carry the given slug,
// excluding the given id. Used for slug uniqueness checks.
func (q *Queries) CountPostBySlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n, err
}

func collectPosts(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Post, error) {
	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPostRow(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(row rowScanner) (model.Post, error) {
	return scanPostRow(row)
}

func scanPostRow(row rowScanner) (model.Post, error) {
	var p model.Post
	var tags string
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Category,
		&tags, &p.CoverImage, &p.IsPublished, &p.IsFeatured, &p.AuthorID,
		&p.Views, &p.Likes, &p.ReadingTime, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Post{}, err
	}
	p.Tags = decodeStringSlice(tags)
	return p, nil
}
