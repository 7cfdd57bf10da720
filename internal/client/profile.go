// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/olegiv/folio-go/internal/model"
)

// ProfileAction selects which section a profile update applies to.
type ProfileAction string

// Actions accepted by Apply.
const (
	ProfileUpdateBasic          ProfileAction = "update-basic"
	ProfileUpdateSocial         ProfileAction = "update-social"
	ProfileUpdateSkills         ProfileAction = "update-skills"
	ProfileUpdateTechnologies   ProfileAction = "update-technologies"
	ProfileUpdateExperience     ProfileAction = "update-experience"
	ProfileUpdateEducation      ProfileAction = "update-education"
	ProfileUpdateCertifications ProfileAction = "update-certifications"
	ProfileTogglePublish        ProfileAction = "toggle-publish"
)

// ProfileUpdate carries one section update. Only the fields matching
// the action are read by the server.
type ProfileUpdate struct {
	Action ProfileAction `json:"action"`

	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`

	Social *model.SocialLinks `json:"social,omitempty"`

	Skills         []model.SkillGroup    `json:"skills,omitempty"`
	Technologies   []string              `json:"technologies,omitempty"`
	Experience     []model.Experience    `json:"experience,omitempty"`
	Education      []model.Education     `json:"education,omitempty"`
	Certifications []model.Certification `json:"certifications,omitempty"`
}

// ProfileStore mirrors the profile singleton.
type ProfileStore struct {
	client *Client
	admin  bool

	mu      sync.RWMutex
	profile *model.Profile
	loading bool
	lastErr error
}

// NewProfileStore creates a store over the public profile.
func NewProfileStore(client *Client) *ProfileStore {
	return &ProfileStore{client: client}
}

// NewAdminProfileStore creates a store over the admin profile, which
// exists even while unpublished.
func NewAdminProfileStore(client *Client) *ProfileStore {
	return &ProfileStore{client: client, admin: true}
}

// ProfileSnapshot is a point-in-time copy of the store state.
type ProfileSnapshot struct {
	Profile *model.Profile
	Loading bool
	Err     error
}

// Snapshot returns the current state.
func (s *ProfileStore) Snapshot() ProfileSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var profile *model.Profile
	if s.profile != nil {
		p := *s.profile
		profile = &p
	}
	return ProfileSnapshot{Profile: profile, Loading: s.loading, Err: s.lastErr}
}

// Fetch loads the profile, replacing the local copy.
func (s *ProfileStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	path := "/profile"
	if s.admin {
		path = "/admin/profile"
	}

	var payload struct {
		Profile *model.Profile `json:"profile"`
	}
	_, err := s.client.do(ctx, http.MethodGet, path, nil, nil, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastErr = err
	if err != nil {
		return err
	}
	s.profile = payload.Profile
	return nil
}

// Apply sends one section update and replaces the local copy with the
// server's row, so concurrent editors converge on the last write.
func (s *ProfileStore) Apply(ctx context.Context, update ProfileUpdate) (model.Profile, error) {
	var payload struct {
		Profile *model.Profile `json:"profile"`
	}
	_, err := s.client.do(ctx, http.MethodPut, "/admin/profile", nil, update, &payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return model.Profile{}, err
	}
	s.profile = payload.Profile
	return *payload.Profile, nil
}
