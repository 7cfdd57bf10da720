// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
)

func newTestScheduler(t *testing.T) (*Scheduler, *store.Queries) {
	t.Helper()
	queries := store.New(testutil.TestDB(t))
	sessions := session.NewService(queries, false)
	return New(queries, sessions, nil), queries
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Stop()
}

func TestPurgeSessionsJob(t *testing.T) {
	s, queries := newTestScheduler(t)
	user := testutil.CreateTestUser(t, queries, "sched", false)

	ctx := context.Background()
	_, err := queries.CreateSession(ctx, store.CreateSessionParams{
		Token: "stale", UserID: user.ID,
		ExpiresAt: time.Now().Add(-time.Hour), CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	_, err = queries.CreateSession(ctx, store.CreateSessionParams{
		Token: "fresh", UserID: user.ID,
		ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	s.purgeSessions()

	n, err := queries.CountUserSessions(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountUserSessions() error = %v", err)
	}
	if n != 1 {
		t.Errorf("sessions remaining = %d, want 1", n)
	}
}

func TestPurgeEventsJob(t *testing.T) {
	s, queries := newTestScheduler(t)
	ctx := context.Background()

	old := store.CreateEventParams{
		Level: model.EventLevelInfo, Category: model.EventCategorySystem,
		Message: "ancient", CreatedAt: time.Now().Add(-eventRetention - time.Hour),
	}
	fresh := store.CreateEventParams{
		Level: model.EventLevelInfo, Category: model.EventCategorySystem,
		Message: "recent", CreatedAt: time.Now(),
	}
	if err := queries.CreateEvent(ctx, old); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if err := queries.CreateEvent(ctx, fresh); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	s.purgeEvents()

	events, err := queries.ListRecentEvents(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListRecentEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Message != "recent" {
		t.Errorf("events after purge = %+v, want only the recent one", events)
	}
}
