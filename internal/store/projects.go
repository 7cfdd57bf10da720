// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

const projectColumns = `id, title, slug, description, short_description, content, technologies,
	category, status, is_featured, is_published, sort_order, cover_image, screenshots,
	live_url, source_url, start_date, end_date, created_at, updated_at`

// CreateProjectParams holds the fields for CreateProject.
type CreateProjectParams struct {
	Title            string
	Slug             string
	Description      string
	ShortDescription string
	Content          string
	Technologies     []string
	Category         string
	Status           string
	IsFeatured       bool
	IsPublished      bool
	Order            int
	CoverImage       string
	Screenshots      []string
	LiveURL          string
	SourceURL        string
	StartDate        sql.NullTime
	EndDate          sql.NullTime
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateProject inserts a new project and returns the stored row.
func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO projects (title, slug, description, short_description, content,
			technologies, category, status, is_featured, is_published, sort_order,
			cover_image, screenshots, live_url, source_url, start_date, end_date,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+projectColumns,
		arg.Title, arg.Slug, arg.Description, arg.ShortDescription, arg.Content,
		encodeJSON(arg.Technologies, "[]"), arg.Category, arg.Status,
		arg.IsFeatured, arg.IsPublished, arg.Order, arg.CoverImage,
		encodeJSON(arg.Screenshots, "[]"), arg.LiveURL, arg.SourceURL,
		arg.StartDate, arg.EndDate, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanProject(row)
}

// UpdateProjectParams holds the fields for UpdateProject.
type UpdateProjectParams struct {
	ID               int64
	Title            string
	Slug             string
	Description      string
	ShortDescription string
	Content          string
	Technologies     []string
	Category         string
	Status           string
	IsFeatured       bool
	IsPublished      bool
	Order            int
	CoverImage       string
	Screenshots      []string
	LiveURL          string
	SourceURL        string
	StartDate        sql.NullTime
	EndDate          sql.NullTime
	UpdatedAt        time.Time
}

// UpdateProject writes the full project row. Last write wins.
func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE projects SET title = ?, slug = ?, description = ?, short_description = ?,
			content = ?, technologies = ?, category = ?, status = ?, is_featured = ?,
			is_published = ?, sort_order = ?, cover_image = ?, screenshots = ?,
			live_url = ?, source_url = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+projectColumns,
		arg.Title, arg.Slug, arg.Description, arg.ShortDescription, arg.Content,
		encodeJSON(arg.Technologies, "[]"), arg.Category, arg.Status,
		arg.IsFeatured, arg.IsPublished, arg.Order, arg.CoverImage,
		encodeJSON(arg.Screenshots, "[]"), arg.LiveURL, arg.SourceURL,
		arg.StartDate, arg.EndDate, arg.UpdatedAt, arg.ID,
	)
	return scanProject(row)
}

// GetProjectByID returns the project with the given id.
func (q *Queries) GetProjectByID(ctx context.Context, id int64) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetProjectBySlug returns the project with the given slug.
func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = ?`, slug)
	return scanProject(row)
}

// DeleteProject removes the project with the given id.
func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

// SetProjectPublished flips the publish flag.
func (q *Queries) SetProjectPublished(ctx context.Context, id int64, published bool, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE projects SET is_published = ?, updated_at = ? WHERE id = ?`, published, updatedAt, id)
	return err
}

// UpdateProjectScreenshots replaces the screenshots array.
func (q *Queries) UpdateProjectScreenshots(ctx context.Context, id int64, screenshots []string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE projects SET screenshots = ?, updated_at = ? WHERE id = ?`,
		encodeJSON(screenshots, "[]"), updatedAt, id)
	return err
}

// ListProjectsParams holds filters for ListProjects and CountProjects.
type ListProjectsParams struct {
	PublishedOnly bool
	Status        string
	Category      string
	Technology    string
	Search        string
	Limit         int
	Offset        int
}

func projectsFilter(arg ListProjectsParams) (string, []any) {
	var conds []string
	var args []any

	if arg.PublishedOnly {
		conds = append(conds, "is_published = 1")
	}
	if arg.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, arg.Status)
	}
	if arg.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, arg.Category)
	}
	if arg.Technology != "" {
		conds = append(conds, "technologies LIKE ?")
		args = append(args, `%"`+arg.Technology+`"%`)
	}
	if arg.Search != "" {
		needle := "%" + strings.ToLower(arg.Search) + "%"
		conds = append(conds,
			"(lower(title) LIKE ? OR lower(description) LIKE ? OR lower(short_description) LIKE ? OR lower(technologies) LIKE ?)")
		args = append(args, needle, needle, needle, needle)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListProjects returns projects matching the filters, ordered by the
// manual sort order then newest first.
func (q *Queries) ListProjects(ctx context.Context, arg ListProjectsParams) ([]model.Project, error) {
	where, args := projectsFilter(arg)
	query := `SELECT ` + projectColumns + ` FROM projects` + where +
		` ORDER BY sort_order ASC, created_at DESC`
	if arg.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, arg.Limit, arg.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CountProjects returns the number of projects matching the filters.
func (q *Queries) CountProjects(ctx context.Context, arg ListProjectsParams) (int64, error) {
	where, args := projectsFilter(arg)
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&n)
	return n, err
}

// ListFeaturedProjects returns published featured projects in sort order.
func (q *Queries) ListFeaturedProjects(ctx context.Context, limit int) ([]model.Project, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE is_published = 1 AND is_featured = 1
		ORDER BY sort_order ASC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CountProjectBySlug reports how many projects carry the given slug,
// excluding the given id.
func (q *Queries) CountProjectBySlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n, err
}

func scanProject(row rowScanner) (model.Project, error) {
	return scanProjectRow(row)
}

func scanProjectRow(row rowScanner) (model.Project, error) {
	var p model.Project
	var technologies, screenshots string
	var startDate, endDate sql.NullTime
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.ShortDescription,
		&p.Content, &technologies, &p.Category, &p.Status, &p.IsFeatured,
		&p.IsPublished, &p.Order, &p.CoverImage, &screenshots, &p.LiveURL,
		&p.SourceURL, &startDate, &endDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Project{}, err
	}
	p.Technologies = decodeStringSlice(technologies)
	p.Screenshots = decodeStringSlice(screenshots)
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if endDate.Valid {
		p.EndDate = &endDate.Time
	}
	return p, nil
}
