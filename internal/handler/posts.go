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
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/util"
)

// relatedPostCount is how many same-category posts a detail view carries.
const relatedPostCount = 3

// postListPayload is the cached shape of a public post listing page.
type postListPayload struct {
	Posts      []model.Post `json:"posts"`
	Featured   []model.Post `json:"featured"`
	Categories []string     `json:"categories"`
	Tags       []string     `json:"tags"`
	Total      int64        `json:"total"`
}

// ListPosts returns published posts with category and tag indexes.
// Pages are cached; any admin write invalidates them.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePageParams(r)
	q := r.URL.Query()
	filter := store.ListPostsParams{
		PublishedOnly: true,
		Category:      q.Get("category"),
		Tag:           q.Get("tag"),
		Search:        q.Get("search"),
		Limit:         perPage,
		Offset:        (page - 1) * perPage,
	}

	key := fmt.Sprintf("posts:list:p%d:n%d:c=%s:t=%s:q=%s",
		page, perPage, filter.Category, filter.Tag, filter.Search)

	payload, err := h.postList.GetOrSet(r.Context(), key, func() (*postListPayload, error) {
		return h.loadPostList(r.Context(), filter)
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	WriteSuccessWithMeta(w, map[string]any{
		"posts":      payload.Posts,
		"featured":   payload.Featured,
		"categories": payload.Categories,
		"tags":       payload.Tags,
	}, NewMeta(page, perPage, payload.Total))
}

func (h *Handler) loadPostList(ctx context.Context, filter store.ListPostsParams) (*postListPayload, error) {
	posts, err := h.queries.ListPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := h.queries.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	categories, err := h.queries.ListPostCategories(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := h.queries.ListPostTags(ctx)
	if err != nil {
		return nil, err
	}
	featured, err := h.queries.ListFeaturedPosts(ctx, defaultPerPage)
	if err != nil {
		return nil, err
	}
	return &postListPayload{
		Posts:      posts,
		Featured:   featured,
		Categories: categories,
		Tags:       tags,
		Total:      total,
	}, nil
}

// ListFeaturedPosts returns the published featured posts.
func (h *Handler) ListFeaturedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListFeaturedPosts(r.Context(), defaultPerPage)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"posts": posts})
}

// GetPost returns a published post by numeric id or slug, with rendered
// HTML and up to three related posts. Each request counts one view.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.findPost(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
			return
		}
		WriteInternalError(w, err)
		return
	}
	if !post.IsPublished {
		WriteNotFound(w, "Post not found")
		return
	}

	ctx := r.Context()
	if err := h.queries.IncrementPostViews(ctx, post.ID); err != nil {
		slog.Error("incrementing post views", "error", err, "post_id", post.ID)
	} else {
		post.Views++
	}

	html, err := markdown.Render(post.Content)
	if err != nil {
		slog.Error("rendering post content", "error", err, "post_id", post.ID)
	} else {
		post.ContentHTML = html
	}

	related, err := h.queries.ListRelatedPosts(ctx, post.Category, post.ID, relatedPostCount)
	if err != nil {
		slog.Error("loading related posts", "error", err, "post_id", post.ID)
		related = []model.Post{}
	}

	if h.tracker != nil {
		h.tracker.TrackPostView(r, post, middleware.ClientIP(r))
	}

	WriteSuccess(w, map[string]any{"post": post, "related": related})
}

// findPost resolves a path parameter that is either a numeric id or a slug.
func (h *Handler) findPost(ctx context.Context, idOrSlug string) (model.Post, error) {
	if id, err := parseIDString(idOrSlug); err == nil {
		return h.queries.GetPostByID(ctx, id)
	}
	return h.queries.GetPostBySlug(ctx, idOrSlug)
}

// LikePost bumps the like counter of a published post by one.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, err := h.findPost(ctx, chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
			return
		}
		WriteInternalError(w, err)
		return
	}
	if !post.IsPublished {
		WriteNotFound(w, "Post not found")
		return
	}

	if err := h.queries.IncrementPostLikes(ctx, post.ID); err != nil {
		WriteInternalError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"likes": post.Likes + 1})
}

// AdminListPosts returns all posts including drafts.
func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePageParams(r)
	q := r.URL.Query()
	filter := store.ListPostsParams{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}

	posts, err := h.queries.ListPosts(r.Context(), filter)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	total, err := h.queries.CountPosts(r.Context(), filter)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	WriteSuccessWithMeta(w, map[string]any{"posts": posts}, NewMeta(page, perPage, total))
}

// AdminGetPost returns any post by id, drafts included.
func (h *Handler) AdminGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid post id")
		return
	}
	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
			return
		}
		WriteInternalError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"post": post})
}

type postRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Excerpt     string   `json:"excerpt"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	CoverImage  string   `json:"coverImage"`
	IsPublished bool     `json:"isPublished"`
	IsFeatured  bool     `json:"isFeatured"`
}

func (req *postRequest) validate() map[string]string {
	details := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		details["title"] = "Title is required"
	}
	if strings.TrimSpace(req.Content) == "" {
		details["content"] = "Content is required"
	}
	if len(details) > 0 {
		return details
	}
	return nil
}

// CreatePost creates a post. The slug is derived from the title and
// made unique; reading time is computed from the content.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if details := req.validate(); details != nil {
		WriteValidationError(w, details)
		return
	}

	ctx := r.Context()
	slug, err := h.uniquePostSlug(ctx, req.Title, 0)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	now := time.Now()
	post, err := h.queries.CreatePost(ctx, store.CreatePostParams{
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Category:    req.Category,
		Tags:        normalizeTags(req.Tags),
		CoverImage:  req.CoverImage,
		IsPublished: req.IsPublished,
		IsFeatured:  req.IsFeatured,
		AuthorID:    middleware.GetUserID(r),
		ReadingTime: util.ReadingTime(req.Content),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	h.invalidateContent(r)
	slog.Info("post created", "post_id", post.ID, "slug", post.Slug)
	WriteCreated(w, map[string]any{"post": post})
}

// UpdatePost replaces the post's editable fields. Last write wins; the
// slug follows the title and reading time follows the content.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid post id")
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if details := req.validate(); details != nil {
		WriteValidationError(w, details)
		return
	}

	ctx := r.Context()
	if _, err := h.queries.GetPostByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
			return
		}
		WriteInternalError(w, err)
		return
	}

	slug, err := h.uniquePostSlug(ctx, req.Title, id)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	post, err := h.queries.UpdatePost(ctx, store.UpdatePostParams{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Category:    req.Category,
		Tags:        normalizeTags(req.Tags),
		CoverImage:  req.CoverImage,
		IsPublished: req.IsPublished,
		IsFeatured:  req.IsFeatured,
		ReadingTime: util.ReadingTime(req.Content),
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"post": post})
}

// DeletePost removes a post and its cover image.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid post id")
		return
	}

	ctx := r.Context()
	post, err := h.queries.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
			return
		}
		WriteInternalError(w, err)
		return
	}

	if err := h.queries.DeletePost(ctx, id); err != nil {
		WriteInternalError(w, err)
		return
	}
	h.deleteAssetByURL(ctx, post.CoverImage)

	h.invalidateContent(r)
	slog.Info("post deleted", "post_id", id, "slug", post.Slug)
	WriteSuccess(w, map[string]any{"message": "Post deleted"})
}

// TogglePostPublished flips the publish flag and returns the post.
func (h *Handler) TogglePostPublished(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid post id")
		return
	}

	ctx := r.Context()
	post, err := h.queries.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
			return
		}
		WriteInternalError(w, err)
		return
	}

	if err := h.queries.SetPostPublished(ctx, id, !post.IsPublished, time.Now()); err != nil {
		WriteInternalError(w, err)
		return
	}
	post, err = h.queries.GetPostByID(ctx, id)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"post": post})
}

// UploadPostCover stores a new cover image and replaces the old one.
func (h *Handler) UploadPostCover(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid post id")
		return
	}

	ctx := r.Context()
	post, err := h.queries.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
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

	asset, err := h.images.Upload(ctx, data, header.Filename, "posts")
	if err != nil {
		if errors.Is(err, imagehost.ErrUnsupportedType) {
			WriteBadRequest(w, "Unsupported file type")
			return
		}
		WriteInternalError(w, err)
		return
	}

	old := post.CoverImage
	post, err = h.queries.UpdatePost(ctx, store.UpdatePostParams{
		ID:          post.ID,
		Title:       post.Title,
		Slug:        post.Slug,
		Content:     post.Content,
		Excerpt:     post.Excerpt,
		Category:    post.Category,
		Tags:        post.Tags,
		CoverImage:  asset.URL,
		IsPublished: post.IsPublished,
		IsFeatured:  post.IsFeatured,
		ReadingTime: post.ReadingTime,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	h.deleteAssetByURL(ctx, old)

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"post": post, "asset": asset})
}

// uniquePostSlug slugifies the title and appends a counter until the
// slug is free, ignoring the post itself on updates.
func (h *Handler) uniquePostSlug(ctx context.Context, title string, excludeID int64) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "post"
	}

	slug := base
	for i := 2; ; i++ {
		n, err := h.queries.CountPostBySlug(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// deleteAssetByURL best-effort removes a stored upload given its public
// URL. Empty and external URLs are ignored.
func (h *Handler) deleteAssetByURL(ctx context.Context, url string) {
	if url == "" || h.images == nil {
		return
	}
	publicID, ok := imagehost.PublicIDFromURL(url)
	if !ok {
		return
	}
	if err := h.images.Delete(ctx, publicID); err != nil {
		slog.Warn("deleting stored asset", "error", err, "url", url)
	}
}

// normalizeTags trims entries and drops empties and duplicates,
// preserving order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
