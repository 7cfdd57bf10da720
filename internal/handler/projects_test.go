// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/olegiv/folio-go/internal/model"
)

func (ts *testServer) createProject(t *testing.T, token, title string, published bool) model.Project {
	t.Helper()

	rec := ts.request(t, http.MethodPost, "/api/admin/projects", token, map[string]any{
		"title":            title,
		"description":      "A description of " + title,
		"shortDescription": "Short blurb for " + title,
		"status":           "completed",
		"technologies":     []string{"Go", "SQLite"},
		"category":         "backend",
		"isPublished":      published,
		"startDate":        "2024-03-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating project %q: status = %d, body %s", title, rec.Code, rec.Body.String())
	}

	var project model.Project
	dataField(t, decodeEnvelope(t, rec), "project", &project)
	return project
}

func TestCreateProject(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.createUser(t, "admin", "hunter2hunter2", true)
	token := ts.login(t, admin.ID)

	t.Run("creates with derived slug and parsed dates", func(t *testing.T) {
		project := ts.createProject(t, token, "Distributed Job Queue", true)
		if project.Slug != "distributed-job-queue" {
			t.Errorf("slug = %q, want distributed-job-queue", project.Slug)
		}
		if project.StartDate == nil || project.StartDate.Format("2006-01-02") != "2024-03-01" {
			t.Errorf("startDate = %v, want 2024-03-01", project.StartDate)
		}
		if project.EndDate != nil {
			t.Errorf("endDate = %v, want nil", project.EndDate)
		}
	})

	t.Run("rejects missing short description and technologies", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/api/admin/projects", token, map[string]any{
			"title":       "Sparse Project",
			"description": "desc",
			"status":      "planned",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Error.Details["shortDescription"] == "" {
			t.Error("missing validation detail for shortDescription")
		}
		if env.Error.Details["technologies"] == "" {
			t.Error("missing validation detail for technologies")
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/api/admin/projects", token, map[string]any{
			"title":       "Bad Status",
			"description": "desc",
			"status":      "abandoned",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Error.Details["status"] == "" {
			t.Error("missing validation detail for status")
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/api/admin/projects", token, map[string]any{
			"title":       "Bad Date",
			"description": "desc",
			"status":      "planned",
			"startDate":   "03/01/2024",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestPublicProjectList(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.createUser(t, "admin", "hunter2hunter2", true)
	token := ts.login(t, admin.ID)

	ts.createProject(t, token, "Visible One", true)
	ts.createProject(t, token, "Visible Two", true)
	ts.createProject(t, token, "Hidden Work", false)

	rec := ts.request(t, http.MethodGet, "/api/projects", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var projects []model.Project
	dataField(t, env, "projects", &projects)

	if len(projects) != 2 {
		t.Fatalf("len(projects) = %d, want 2 published", len(projects))
	}
	if strings.Contains(rec.Body.String(), "Hidden Work") {
		t.Error("draft project leaked into public listing")
	}
	if env.Meta == nil || env.Meta.Total != 2 {
		t.Errorf("meta = %+v, want total 2", env.Meta)
	}

	t.Run("status filter", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/projects?status=planned", "", nil)
		var filtered []model.Project
		dataField(t, decodeEnvelope(t, rec), "projects", &filtered)
		if len(filtered) != 0 {
			t.Errorf("len(projects) = %d for status=planned, want 0", len(filtered))
		}
	})
}

func TestGetProject(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.createUser(t, "admin", "hunter2hunter2", true)
	token := ts.login(t, admin.ID)

	published := ts.createProject(t, token, "Public Project", true)
	draft := ts.createProject(t, token, "Draft Project", false)

	t.Run("published by slug", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/projects/"+published.Slug, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("published by id", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, fmt.Sprintf("/api/projects/%d", published.ID), "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("draft is not found", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/projects/"+draft.Slug, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("admin sees drafts", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, fmt.Sprintf("/api/admin/projects/%d", draft.ID), token, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestUpdateProject(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.createUser(t, "admin", "hunter2hunter2", true)
	token := ts.login(t, admin.ID)
	project := ts.createProject(t, token, "Before Rename", true)

	rec := ts.request(t, http.MethodPut, fmt.Sprintf("/api/admin/projects/%d", project.ID), token, map[string]any{
		"title":            "After Rename",
		"description":      "updated",
		"shortDescription": "updated blurb",
		"technologies":     []string{"Go"},
		"status":           "in-progress",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var updated model.Project
	dataField(t, decodeEnvelope(t, rec), "project", &updated)
	if updated.Slug != "after-rename" {
		t.Errorf("slug = %q, want after-rename", updated.Slug)
	}
	if updated.Status != "in-progress" {
		t.Errorf("status = %q, want in-progress", updated.Status)
	}
}

func TestRemoveProjectScreenshot(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.createUser(t, "admin", "hunter2hunter2", true)
	token := ts.login(t, admin.ID)
	project := ts.createProject(t, token, "Screenshotted", true)

	rec := ts.request(t, http.MethodDelete,
		fmt.Sprintf("/api/admin/projects/%d/screenshots", project.ID), token,
		map[string]any{"url": "/uploads/projects/nothing.jpg"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown screenshot", rec.Code)
	}
}

func TestDeleteProject(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.createUser(t, "admin", "hunter2hunter2", true)
	token := ts.login(t, admin.ID)
	project := ts.createProject(t, token, "Short Lived", true)

	path := fmt.Sprintf("/api/admin/projects/%d", project.ID)
	rec := ts.request(t, http.MethodDelete, path, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	again := ts.request(t, http.MethodDelete, path, token, nil)
	if again.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", again.Code)
	}
}
