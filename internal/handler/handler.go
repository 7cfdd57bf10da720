// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/analytics"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/imagehost"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
)

// Default upload cap used when the config leaves it zero.
const defaultMaxUploadSize = 20 << 20

// Handler carries the dependencies of every endpoint.
type Handler struct {
	queries  *store.Queries
	sessions *session.Service
	lockout  *middleware.LoginProtection
	caches   *cache.Manager
	images   imagehost.Host
	tracker  *analytics.Tracker

	maxUploadSize int64

	postList    *cache.TypedCache[postListPayload]
	projectList *cache.TypedCache[projectListPayload]
	profileView *cache.TypedCache[model.Profile]
}

// Config wires a Handler.
type Config struct {
	Queries       *store.Queries
	Sessions      *session.Service
	Lockout       *middleware.LoginProtection
	Caches        *cache.Manager
	Images        imagehost.Host
	Tracker       *analytics.Tracker
	MaxUploadSize int64
}

// New creates a Handler.
func New(cfg Config) *Handler {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}
	backend := cfg.Caches.Backend()
	return &Handler{
		queries:       cfg.Queries,
		sessions:      cfg.Sessions,
		lockout:       cfg.Lockout,
		caches:        cfg.Caches,
		images:        cfg.Images,
		tracker:       cfg.Tracker,
		maxUploadSize: cfg.MaxUploadSize,
		postList:      cache.NewTypedCache[postListPayload](backend, cache.ContentTTL),
		projectList:   cache.NewTypedCache[projectListPayload](backend, cache.ContentTTL),
		profileView:   cache.NewTypedCache[model.Profile](backend, cache.ContentTTL),
	}
}

// Routes builds the API router. Admin endpoints sit behind the auth and
// admin guards; everything assumes the user middleware already ran.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		if h.lockout != nil {
			// Per-IP rate limit on credential POSTs.
			r.Use(h.lockout.Middleware())
		}
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
		r.Get("/verify", h.Verify)
		r.Delete("/account", h.DeleteAccount)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPosts)
		r.Get("/featured", h.ListFeaturedPosts)
		r.Get("/{idOrSlug}", h.GetPost)
		r.Post("/{idOrSlug}/like", h.LikePost)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Get("/featured", h.ListFeaturedProjects)
		r.Get("/{idOrSlug}", h.GetProject)
	})

	r.Get("/profile", h.GetProfile)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.AdminListPosts)
			r.Post("/", h.CreatePost)
			r.Get("/{id}", h.AdminGetPost)
			r.Put("/{id}", h.UpdatePost)
			r.Delete("/{id}", h.DeletePost)
			r.Post("/{id}/publish", h.TogglePostPublished)
			r.Post("/{id}/cover", h.UploadPostCover)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.AdminListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.AdminGetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
			r.Post("/{id}/publish", h.ToggleProjectPublished)
			r.Post("/{id}/screenshots", h.UploadProjectScreenshot)
			r.Delete("/{id}/screenshots", h.RemoveProjectScreenshot)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.AdminGetProfile)
			r.Put("/", h.UpdateProfile)
			r.Post("/upload", h.UploadProfileAsset)
			r.Delete("/asset", h.DeleteProfileAsset)
		})

		r.Get("/events", h.ListEvents)
	})

	return r
}

// invalidateContent drops the cached public listings after a write.
func (h *Handler) invalidateContent(r *http.Request) {
	h.caches.InvalidateContent(r.Context())
}
