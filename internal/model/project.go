// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Project status values.
const (
	ProjectStatusCompleted  = "completed"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusPlanned    = "planned"
	ProjectStatusOnHold     = "on-hold"
)

// Project is a portfolio entry.
type Project struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"shortDescription"`
	Content          string     `json:"content"`
	Technologies     []string   `json:"technologies"`
	Category         string     `json:"category"`
	Status           string     `json:"status"`
	IsFeatured       bool       `json:"isFeatured"`
	IsPublished      bool       `json:"isPublished"`
	Order            int        `json:"order"`
	CoverImage       string     `json:"coverImage"`
	Screenshots      []string   `json:"screenshots"`
	LiveURL          string     `json:"liveUrl"`
	SourceURL        string     `json:"sourceUrl"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ValidProjectStatus reports whether s is one of the accepted status values.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusCompleted, ProjectStatusInProgress, ProjectStatusPlanned, ProjectStatusOnHold:
		return true
	}
	return false
}
