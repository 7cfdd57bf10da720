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

// ProjectInput are the editable fields of a project.
type ProjectInput struct {
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

// ProjectFilter narrows a listing fetch.
type ProjectFilter struct {
	Page       int
	PerPage    int
	Status     string
	Category   string
	Technology string
	Search     string
}

func (f ProjectFilter) query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(f.PerPage))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Technology != "" {
		q.Set("technology", f.Technology)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// ProjectsStore mirrors a project collection with the same local-update
// rules as PostsStore.
type ProjectsStore struct {
	client *Client
	admin  bool

	mu       sync.RWMutex
	projects []model.Project
	meta     *Meta
	loading  bool
	lastErr  error
}

// NewProjectsStore creates a store over the public listing.
func NewProjectsStore(client *Client) *ProjectsStore {
	return &ProjectsStore{client: client}
}

// NewAdminProjectsStore creates a store over the admin listing.
func NewAdminProjectsStore(client *Client) *ProjectsStore {
	return &ProjectsStore{client: client, admin: true}
}

// ProjectsSnapshot is a point-in-time copy of the store state.
type ProjectsSnapshot struct {
	Projects []model.Project
	Meta     *Meta
	Loading  bool
	Err      error
}

// Snapshot returns the current state. The slice is a copy.
func (s *ProjectsStore) Snapshot() ProjectsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]model.Project, len(s.projects))
	copy(projects, s.projects)
	return ProjectsSnapshot{Projects: projects, Meta: s.meta, Loading: s.loading, Err: s.lastErr}
}

func (s *ProjectsStore) listPath() string {
	if s.admin {
		return "/admin/projects"
	}
	return "/projects"
}

// Fetch loads a listing page, replacing the local list.
func (s *ProjectsStore) Fetch(ctx context.Context, filter ProjectFilter) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	var payload struct {
		Projects []model.Project `json:"projects"`
	}
	meta, err := s.client.do(ctx, http.MethodGet, s.listPath(), filter.query(), nil, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastErr = err
	if err != nil {
		return err
	}
	s.projects = payload.Projects
	s.meta = meta
	return nil
}

// Create makes a project and prepends it to the local list.
func (s *ProjectsStore) Create(ctx context.Context, input ProjectInput) (model.Project, error) {
	var payload struct {
		Project model.Project `json:"project"`
	}
	_, err := s.client.do(ctx, http.MethodPost, "/admin/projects", nil, input, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return model.Project{}, err
	}
	s.projects = append([]model.Project{payload.Project}, s.projects...)
	return payload.Project, nil
}

// Update rewrites a project and replaces its entry in the local list.
func (s *ProjectsStore) Update(ctx context.Context, id int64, input ProjectInput) (model.Project, error) {
	var payload struct {
		Project model.Project `json:"project"`
	}
	_, err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/admin/projects/%d", id), nil, input, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return model.Project{}, err
	}
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = payload.Project
			break
		}
	}
	return payload.Project, nil
}

// Delete removes a project and drops it from the local list.
func (s *ProjectsStore) Delete(ctx context.Context, id int64) error {
	_, err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/projects/%d", id), nil, nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return err
	}
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	return nil
}

// Get fetches one project. Detail reads bypass the store state.
func (s *ProjectsStore) Get(ctx context.Context, idOrSlug string) (model.Project, error) {
	var payload struct {
		Project model.Project `json:"project"`
	}
	_, err := s.client.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(idOrSlug), nil, nil, &payload)
	return payload.Project, err
}
