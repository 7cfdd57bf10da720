// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/imagehost"
	"github.com/olegiv/folio-go/internal/markdown"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/util"
)

// projectListPayload is the cached shape of a public project listing page.
type projectListPayload struct {
	Projects []model.Project `json:"projects"`
	Total    int64           `json:"total"`
}

// ListProjects returns published projects in manual sort order.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePageParams(r)
	q := r.URL.Query()
	filter := store.ListProjectsParams{
		PublishedOnly: true,
		Status:        q.Get("status"),
		Category:      q.Get("category"),
		Technology:    q.Get("technology"),
		Search:        q.Get("search"),
		Limit:         perPage,
		Offset:        (page - 1) * perPage,
	}

	key := fmt.Sprintf("projects:list:p%d:n%d:s=%s:c=%s:t=%s:q=%s",
		page, perPage, filter.Status, filter.Category, filter.Technology, filter.Search)

	payload, err := h.projectList.GetOrSet(r.Context(), key, func() (*projectListPayload, error) {
		projects, err := h.queries.ListProjects(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		total, err := h.queries.CountProjects(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		return &projectListPayload{Projects: projects, Total: total}, nil
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	WriteSuccessWithMeta(w, map[string]any{"projects": payload.Projects},
		NewMeta(page, perPage, payload.Total))
}

// ListFeaturedProjects returns the published featured projects.
func (h *Handler) ListFeaturedProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.queries.ListFeaturedProjects(r.Context(), defaultPerPage)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"projects": projects})
}

// GetProject returns a published project by numeric id or slug, with
// rendered HTML.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.findProject(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		WriteInternalError(w, err)
		return
	}
	if !project.IsPublished {
		WriteNotFound(w, "Project not found")
		return
	}

	if project.Content != "" {
		html, err := markdown.Render(project.Content)
		if err != nil {
			slog.Error("rendering project content", "error", err, "project_id", project.ID)
		} else {
			project.Content = html
		}
	}

	WriteSuccess(w, map[string]any{"project": project})
}

func (h *Handler) findProject(ctx context.Context, idOrSlug string) (model.Project, error) {
	if id, err := parseIDString(idOrSlug); err == nil {
		return h.queries.GetProjectByID(ctx, id)
	}
	return h.queries.GetProjectBySlug(ctx, idOrSlug)
}

// AdminListProjects returns all projects including drafts.
func (h *Handler) AdminListProjects(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePageParams(r)
	q := r.URL.Query()
	filter := store.ListProjectsParams{
		Status:     q.Get("status"),
		Category:   q.Get("category"),
		Technology: q.Get("technology"),
		Search:     q.Get("search"),
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}

	projects, err := h.queries.ListProjects(r.Context(), filter)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	total, err := h.queries.CountProjects(r.Context(), filter)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	WriteSuccessWithMeta(w, map[string]any{"projects": projects}, NewMeta(page, perPage, total))
}

// AdminGetProject returns any project by id, drafts included.
func (h *Handler) AdminGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid project id")
		return
	}
	project, err := h.queries.GetProjectByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		WriteInternalError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"project": project})
}

type projectRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	Content          string   `json:"content"`
	Technologies     []string `json:"technologies"`
	Category         string   `json:"category"`
	Status           string   `json:"status"`
	IsFeatured       bool     `json:"isFeatured"`
	IsPublished      bool     `json:"isPublished"`
	Order            int      `json:"order"`
	CoverImage       string   `json:"coverImage"`
	LiveURL          string   `json:"liveUrl"`
	SourceURL        string   `json:"sourceUrl"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
}

// dateLayout is the wire format for project dates.
const dateLayout = "2006-01-02"

func (req *projectRequest) validate() map[string]string {
	details := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		details["title"] = "Title is required"
	}
	if strings.TrimSpace(req.Description) == "" {
		details["description"] = "Description is required"
	}
	if strings.TrimSpace(req.ShortDescription) == "" {
		details["shortDescription"] = "Short description is required"
	}
	if len(req.Technologies) == 0 {
		details["technologies"] = "At least one technology is required"
	}
	if !model.ValidProjectStatus(req.Status) {
		details["status"] = "Status must be completed, in-progress, planned or on-hold"
	}
	if req.StartDate != "" {
		if _, err := time.Parse(dateLayout, req.StartDate); err != nil {
			details["startDate"] = "Start date must be YYYY-MM-DD"
		}
	}
	if req.EndDate != "" {
		if _, err := time.Parse(dateLayout, req.EndDate); err != nil {
			details["endDate"] = "End date must be YYYY-MM-DD"
		}
	}
	if len(details) > 0 {
		return details
	}
	return nil
}

func parseNullDate(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// CreateProject creates a project with a title-derived unique slug.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if details := req.validate(); details != nil {
		WriteValidationError(w, details)
		return
	}

	ctx := r.Context()
	slug, err := h.uniqueProjectSlug(ctx, req.Title, 0)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	now := time.Now()
	project, err := h.queries.CreateProject(ctx, store.CreateProjectParams{
		Title:            strings.TrimSpace(req.Title),
		Slug:             slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Content:          req.Content,
		Technologies:     normalizeTags(req.Technologies),
		Category:         req.Category,
		Status:           req.Status,
		IsFeatured:       req.IsFeatured,
		IsPublished:      req.IsPublished,
		Order:            req.Order,
		CoverImage:       req.CoverImage,
		LiveURL:          req.LiveURL,
		SourceURL:        req.SourceURL,
		StartDate:        parseNullDate(req.StartDate),
		EndDate:          parseNullDate(req.EndDate),
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	h.invalidateContent(r)
	slog.Info("project created", "project_id", project.ID, "slug", project.Slug)
	WriteCreated(w, map[string]any{"project": project})
}

// UpdateProject replaces the project's editable fields. Screenshots are
// managed by their own endpoints and carried over unchanged.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid project id")
		return
	}

	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if details := req.validate(); details != nil {
		WriteValidationError(w, details)
		return
	}

	ctx := r.Context()
	existing, err := h.queries.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		WriteInternalError(w, err)
		return
	}

	slug, err := h.uniqueProjectSlug(ctx, req.Title, id)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	project, err := h.queries.UpdateProject(ctx, store.UpdateProjectParams{
		ID:               id,
		Title:            strings.TrimSpace(req.Title),
		Slug:             slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Content:          req.Content,
		Technologies:     normalizeTags(req.Technologies),
		Category:         req.Category,
		Status:           req.Status,
		IsFeatured:       req.IsFeatured,
		IsPublished:      req.IsPublished,
		Order:            req.Order,
		CoverImage:       req.CoverImage,
		Screenshots:      existing.Screenshots,
		LiveURL:          req.LiveURL,
		SourceURL:        req.SourceURL,
		StartDate:        parseNullDate(req.StartDate),
		EndDate:          parseNullDate(req.EndDate),
		UpdatedAt:        time.Now(),
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"project": project})
}

// DeleteProject removes a project with its cover and screenshots.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid project id")
		return
	}

	ctx := r.Context()
	project, err := h.queries.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		WriteInternalError(w, err)
		return
	}

	if err := h.queries.DeleteProject(ctx, id); err != nil {
		WriteInternalError(w, err)
		return
	}
	h.deleteAssetByURL(ctx, project.CoverImage)
	for _, shot := range project.Screenshots {
		h.deleteAssetByURL(ctx, shot)
	}

	h.invalidateContent(r)
	slog.Info("project deleted", "project_id", id, "slug", project.Slug)
	WriteSuccess(w, map[string]any{"message": "Project deleted"})
}

// ToggleProjectPublished flips the publish flag and returns the project.
func (h *Handler) ToggleProjectPublished(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid project id")
		return
	}

	ctx := r.Context()
	project, err := h.queries.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		WriteInternalError(w, err)
		return
	}

	if err := h.queries.SetProjectPublished(ctx, id, !project.IsPublished, time.Now()); err != nil {
		WriteInternalError(w, err)
		return
	}
	project, err = h.queries.GetProjectByID(ctx, id)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"project": project})
}

// UploadProjectScreenshot stores a screenshot and appends its URL.
func (h *Handler) UploadProjectScreenshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid project id")
		return
	}

	ctx := r.Context()
	project, err := h.queries.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		WriteInternalError(w, err)
		return
	}

	data, header, err := h.readUploadedFile(r, "file")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	asset, err := h.images.Upload(ctx, data, header.Filename, "projects")
	if err != nil {
		if errors.Is(err, imagehost.ErrUnsupportedType) {
			WriteBadRequest(w, "Unsupported file type")
			return
		}
		WriteInternalError(w, err)
		return
	}

	screenshots := append(project.Screenshots, asset.URL)
	if err := h.queries.UpdateProjectScreenshots(ctx, id, screenshots, time.Now()); err != nil {
		WriteInternalError(w, err)
		return
	}

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"screenshots": screenshots, "asset": asset})
}

type removeScreenshotRequest struct {
	URL string `json:"url"`
}

// RemoveProjectScreenshot deletes one screenshot by URL.
func (h *Handler) RemoveProjectScreenshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid project id")
		return
	}

	var req removeScreenshotRequest
	if err := decodeJSON(r, &req); err != nil || req.URL == "" {
		WriteBadRequest(w, "Screenshot url is required")
		return
	}

	ctx := r.Context()
	project, err := h.queries.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		WriteInternalError(w, err)
		return
	}

	remaining := make([]string, 0, len(project.Screenshots))
	found := false
	for _, shot := range project.Screenshots {
		if shot == req.URL {
			found = true
			continue
		}
		remaining = append(remaining, shot)
	}
	if !found {
		WriteNotFound(w, "Screenshot not found")
		return
	}

	if err := h.queries.UpdateProjectScreenshots(ctx, id, remaining, time.Now()); err != nil {
		WriteInternalError(w, err)
		return
	}
	h.deleteAssetByURL(ctx, req.URL)

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"screenshots": remaining})
}

func (h *Handler) uniqueProjectSlug(ctx context.Context, title string, excludeID int64) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "project"
	}

	slug := base
	for i := 2; ; i++ {
		n, err := h.queries.CountProjectBySlug(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
