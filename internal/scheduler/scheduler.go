// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: expired
// session purge, event log retention and geoip database reload.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/folio-go/internal/geoip"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
)

// eventRetention is how long audit events are kept.
const eventRetention = 90 * 24 * time.Hour

// Scheduler owns the cron runner.
type Scheduler struct {
	cron     *cron.Cron
	queries  *store.Queries
	sessions *session.Service
	geo      *geoip.Resolver
}

// New creates a scheduler. geo may be nil when no database is
// configured.
func New(queries *store.Queries, sessions *session.Service, geo *geoip.Resolver) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		queries:  queries,
		sessions: sessions,
		geo:      geo,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	// Hourly: delete expired sessions.
	if _, err := s.cron.AddFunc("0 * * * *", s.purgeSessions); err != nil {
		return err
	}

	// Daily at 03:30: trim old audit events.
	if _, err := s.cron.AddFunc("30 3 * * *", s.purgeEvents); err != nil {
		return err
	}

	// Weekly: pick up a refreshed geoip database.
	if s.geo != nil {
		if _, err := s.cron.AddFunc("0 4 * * 1", s.reloadGeoIP); err != nil {
			return err
		}
	}

	s.cron.Start()
	slog.Info("scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		slog.Error("purging expired sessions", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("purged expired sessions", "count", deleted)
	}
}

func (s *Scheduler) purgeEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.queries.DeleteEventsBefore(ctx, time.Now().Add(-eventRetention))
	if err != nil {
		slog.Error("purging old events", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("purged old events", "count", deleted)
	}
}

func (s *Scheduler) reloadGeoIP() {
	if err := s.geo.Reload(); err != nil {
		slog.Error("reloading geoip database", "error", err)
	}
}
