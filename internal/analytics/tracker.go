// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics records post view events with coarse visitor
// context: browser family, device class and country.
package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	ua "github.com/mileusna/useragent"

	"github.com/olegiv/folio-go/internal/geoip"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// Tracker writes view events. All methods are non-blocking; failures
// are logged and dropped.
type Tracker struct {
	queries *store.Queries
	geo     *geoip.Resolver
}

// NewTracker creates a tracker. geo may resolve every address to the
// empty string when no database is configured.
func NewTracker(queries *store.Queries, geo *geoip.Resolver) *Tracker {
	return &Tracker{queries: queries, geo: geo}
}

// viewMetadata is the JSON shape stored in the event metadata column.
type viewMetadata struct {
	PostID  int64  `json:"postId"`
	Slug    string `json:"slug"`
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Device  string `json:"device,omitempty"`
	Country string `json:"country,omitempty"`
	Bot     bool   `json:"bot,omitempty"`
}

// TrackPostView records a view of the given post. The write happens in
// the background so the response is never delayed.
func (t *Tracker) TrackPostView(r *http.Request, post model.Post, clientIP string) {
	agent := ua.Parse(r.UserAgent())

	meta := viewMetadata{
		PostID:  post.ID,
		Slug:    post.Slug,
		Browser: agent.Name,
		OS:      agent.OS,
		Device:  deviceClass(agent),
		Country: t.geo.LookupCountry(clientIP),
		Bot:     agent.Bot,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		metadata, err := json.Marshal(meta)
		if err != nil {
			return
		}

		if err := t.queries.CreateEvent(ctx, store.CreateEventParams{
			Level:     model.EventLevelInfo,
			Category:  model.EventCategoryAnalytics,
			Message:   "post viewed",
			Metadata:  string(metadata),
			IP:        clientIP,
			CreatedAt: time.Now(),
		}); err != nil {
			slog.Debug("recording view event", "error", err, "post_id", post.ID)
		}
	}()
}

func deviceClass(agent ua.UserAgent) string {
	switch {
	case agent.Bot:
		return "bot"
	case agent.Mobile:
		return "mobile"
	case agent.Tablet:
		return "tablet"
	case agent.Desktop:
		return "desktop"
	default:
		return "other"
	}
}
