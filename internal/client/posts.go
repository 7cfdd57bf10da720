// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/olegiv/folio-go/internal/model"
)

// PostInput are the editable fields of a post.
type PostInput struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Excerpt     string   `json:"excerpt"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	CoverImage  string   `json:"coverImage"`
	IsPublished bool     `json:"isPublished"`
	IsFeatured  bool     `json:"isFeatured"`
}

// PostFilter narrows a listing fetch.
type PostFilter struct {
	Page     int
	PerPage  int
	Category string
	Tag      string
	Search   string
}

func (f PostFilter) query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(f.PerPage))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Tag != "" {
		q.Set("tag", f.Tag)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// PostsStore mirrors a post collection. Writes go through the admin
// endpoints and update the local list in place: created posts are
// prepended, updates replace their entry, deletes drop it.
type PostsStore struct {
	client *Client
	admin  bool

	mu      sync.RWMutex
	posts   []model.Post
	meta    *Meta
	loading bool
	lastErr error
}

// NewPostsStore creates a store over the public listing.
func NewPostsStore(client *Client) *PostsStore {
	return &PostsStore{client: client}
}

// NewAdminPostsStore creates a store over the admin listing, which
// includes drafts.
func NewAdminPostsStore(client *Client) *PostsStore {
	return &PostsStore{client: client, admin: true}
}

// PostsSnapshot is a point-in-time copy of the store state.
type PostsSnapshot struct {
	Posts   []model.Post
	Meta    *Meta
	Loading bool
	Err     error
}

// Snapshot returns the current state. The slice is a copy.
func (s *PostsStore) Snapshot() PostsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]model.Post, len(s.posts))
	copy(posts, s.posts)
	return PostsSnapshot{Posts: posts, Meta: s.meta, Loading: s.loading, Err: s.lastErr}
}

func (s *PostsStore) listPath() string {
	if s.admin {
		return "/admin/posts"
	}
	return "/posts"
}

// Fetch loads a listing page, replacing the local list.
func (s *PostsStore) Fetch(ctx context.Context, filter PostFilter) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	var payload struct {
		Posts []model.Post `json:"posts"`
	}
	meta, err := s.client.do(ctx, http.MethodGet, s.listPath(), filter.query(), nil, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastErr = err
	if err != nil {
		return err
	}
	s.posts = payload.Posts
	s.meta = meta
	return nil
}

// Create makes a post and prepends it to the local list.
func (s *PostsStore) Create(ctx context.Context, input PostInput) (model.Post, error) {
	var payload struct {
		Post model.Post `json:"post"`
	}
	_, err := s.client.do(ctx, http.MethodPost, "/admin/posts", nil, input, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return model.Post{}, err
	}
	s.posts = append([]model.Post{payload.Post}, s.posts...)
	return payload.Post, nil
}

// Update rewrites a post and replaces its entry in the local list.
func (s *PostsStore) Update(ctx context.Context, id int64, input PostInput) (model.Post, error) {
	var payload struct {
		Post model.Post `json:"post"`
	}
	_, err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/admin/posts/%d", id), nil, input, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return model.Post{}, err
	}
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i] = payload.Post
			break
		}
	}
	return payload.Post, nil
}

// Delete removes a post and drops it from the local list.
func (s *PostsStore) Delete(ctx context.Context, id int64) error {
	_, err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/posts/%d", id), nil, nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return err
	}
	kept := s.posts[:0]
	for _, p := range s.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.posts = kept
	return nil
}

// TogglePublished flips the publish flag and replaces the entry.
func (s *PostsStore) TogglePublished(ctx context.Context, id int64) (model.Post, error) {
	var payload struct {
		Post model.Post `json:"post"`
	}
	_, err := s.client.do(ctx, http.MethodPost, fmt.Sprintf("/admin/posts/%d/publish", id), nil, nil, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return model.Post{}, err
	}
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i] = payload.Post
			break
		}
	}
	return payload.Post, nil
}

// Get fetches one post with rendered content and its related posts.
// Detail reads bypass the store state.
func (s *PostsStore) Get(ctx context.Context, idOrSlug string) (model.Post, []model.Post, error) {
	var payload struct {
		Post    model.Post   `json:"post"`
		Related []model.Post `json:"related"`
	}
	_, err := s.client.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(idOrSlug), nil, nil, &payload)
	if err != nil {
		return model.Post{}, nil, err
	}
	return payload.Post, payload.Related, nil
}

// Like bumps the like counter and returns the new count.
func (s *PostsStore) Like(ctx context.Context, id int64) (int64, error) {
	var payload struct {
		Likes int64 `json:"likes"`
	}
	_, err := s.client.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", id), nil, nil, &payload)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Likes = payload.Likes
			break
		}
	}
	s.mu.Unlock()
	return payload.Likes, nil
}
