// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/folio-go/internal/imagehost"
	"github.com/olegiv/folio-go/internal/model"
)

// Profile update actions. Each request mutates one section of the
// singleton; the full row is rewritten and the last write wins.
const (
	profileActionUpdateBasic          = "update-basic"
	profileActionUpdateSocial         = "update-social"
	profileActionUpdateSkills         = "update-skills"
	profileActionUpdateTechnologies   = "update-technologies"
	profileActionUpdateExperience     = "update-experience"
	profileActionUpdateEducation      = "update-education"
	profileActionUpdateCertifications = "update-certifications"
	profileActionTogglePublish        = "toggle-publish"
)

// Profile asset kinds accepted by upload and delete.
const (
	profileAssetAvatar = "avatar"
	profileAssetCover  = "cover"
	profileAssetResume = "resume"
)

const profileCacheKey = "profile:public"

// GetProfile returns the published profile, or 404 while it is hidden.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profileView.Get(r.Context(), profileCacheKey)
	if !ok {
		loaded, err := h.queries.GetProfile(r.Context())
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				WriteNotFound(w, "Profile not found")
				return
			}
			WriteInternalError(w, err)
			return
		}
		profile = &loaded
		if profile.IsPublished {
			_ = h.profileView.Set(r.Context(), profileCacheKey, profile)
		}
	}

	if !profile.IsPublished {
		WriteNotFound(w, "Profile not found")
		return
	}
	WriteSuccess(w, map[string]any{"profile": profile})
}

// AdminGetProfile returns the profile, creating the empty singleton on
// first access.
func (h *Handler) AdminGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.queries.GetOrCreateProfile(r.Context())
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"profile": profile})
}

// profileUpdateRequest carries one section update. Action selects which
// fields apply; the rest are ignored.
type profileUpdateRequest struct {
	Action string `json:"action"`

	Name     string `json:"name"`
	Title    string `json:"title"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`

	Social *model.SocialLinks `json:"social"`

	Skills         []model.SkillGroup    `json:"skills"`
	Technologies   []string              `json:"technologies"`
	Experience     []model.Experience    `json:"experience"`
	Education      []model.Education     `json:"education"`
	Certifications []model.Certification `json:"certifications"`
}

// UpdateProfile applies one section update selected by the action
// discriminator. Unknown actions are rejected.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx := r.Context()
	profile, err := h.queries.GetOrCreateProfile(ctx)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	switch req.Action {
	case profileActionUpdateBasic:
		if req.Email != "" && !model.ValidEmail(req.Email) {
			WriteValidationError(w, map[string]string{"email": "Invalid email address"})
			return
		}
		profile.Name = strings.TrimSpace(req.Name)
		profile.Title = strings.TrimSpace(req.Title)
		profile.Bio = req.Bio
		profile.Email = req.Email
		profile.Phone = req.Phone
		profile.Location = req.Location
	case profileActionUpdateSocial:
		if req.Social == nil {
			WriteValidationError(w, map[string]string{"social": "Social links are required"})
			return
		}
		profile.Social = *req.Social
	case profileActionUpdateSkills:
		profile.Skills = nonNilSlice(req.Skills)
	case profileActionUpdateTechnologies:
		profile.Technologies = nonNilSlice(req.Technologies)
	case profileActionUpdateExperience:
		profile.Experience = nonNilSlice(req.Experience)
	case profileActionUpdateEducation:
		profile.Education = nonNilSlice(req.Education)
	case profileActionUpdateCertifications:
		profile.Certifications = nonNilSlice(req.Certifications)
	case profileActionTogglePublish:
		profile.IsPublished = !profile.IsPublished
	default:
		WriteError(w, http.StatusBadRequest, "unknown_action",
			fmt.Sprintf("Unknown profile action %q", req.Action))
		return
	}

	updated, err := h.queries.UpdateProfile(ctx, profile)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	h.invalidateContent(r)
	slog.Info("profile updated", "action", req.Action)
	WriteSuccess(w, map[string]any{"profile": updated})
}

// UploadProfileAsset stores the avatar, cover image or resume PDF. The
// kind form value selects which slot to fill; the old file is replaced.
func (h *Handler) UploadProfileAsset(w http.ResponseWriter, r *http.Request) {
	data, header, err := h.readUploadedFile(r, "file")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	kind := r.FormValue("kind")
	if kind != profileAssetAvatar && kind != profileAssetCover && kind != profileAssetResume {
		WriteBadRequest(w, "Kind must be avatar, cover or resume")
		return
	}

	ctx := r.Context()
	profile, err := h.queries.GetOrCreateProfile(ctx)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	asset, err := h.images.Upload(ctx, data, header.Filename, "profile")
	if err != nil {
		if errors.Is(err, imagehost.ErrUnsupportedType) {
			WriteBadRequest(w, "Unsupported file type")
			return
		}
		WriteInternalError(w, err)
		return
	}

	var old string
	switch kind {
	case profileAssetAvatar:
		old, profile.AvatarImage = profile.AvatarImage, asset.URL
	case profileAssetCover:
		old, profile.CoverImage = profile.CoverImage, asset.URL
	case profileAssetResume:
		old, profile.ResumeURL = profile.ResumeURL, asset.URL
	}

	updated, err := h.queries.UpdateProfile(ctx, profile)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	h.deleteAssetByURL(ctx, old)

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"profile": updated, "asset": asset})
}

// DeleteProfileAsset clears one asset slot and removes the stored file.
func (h *Handler) DeleteProfileAsset(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != profileAssetAvatar && kind != profileAssetCover && kind != profileAssetResume {
		WriteBadRequest(w, "Kind must be avatar, cover or resume")
		return
	}

	ctx := r.Context()
	profile, err := h.queries.GetOrCreateProfile(ctx)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	var old string
	switch kind {
	case profileAssetAvatar:
		old, profile.AvatarImage = profile.AvatarImage, ""
	case profileAssetCover:
		old, profile.CoverImage = profile.CoverImage, ""
	case profileAssetResume:
		old, profile.ResumeURL = profile.ResumeURL, ""
	}

	updated, err := h.queries.UpdateProfile(ctx, profile)
	if err != nil {
		WriteInternalError(w, err)
		return
	}
	h.deleteAssetByURL(ctx, old)

	h.invalidateContent(r)
	WriteSuccess(w, map[string]any{"profile": updated})
}

// nonNilSlice normalizes a nil slice to empty so sections serialize as
// [] rather than null.
func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
