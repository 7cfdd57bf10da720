// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

const profileColumns = `id, name, title, bio, email, phone, location, avatar_image, cover_image,
	resume_url, social, skills, technologies, experience, education, certifications,
	is_published, created_at, updated_at`

// GetProfile returns the singleton profile row.
func (q *Queries) GetProfile(ctx context.Context) (model.Profile, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profile ORDER BY id LIMIT 1`)
	return scanProfile(row)
}

// GetOrCreateProfile returns the profile, creating an empty unpublished
// one on first access.
func (q *Queries) GetOrCreateProfile(ctx context.Context) (model.Profile, error) {
	profile, err := q.GetProfile(ctx)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, err
	}

	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO profile (created_at, updated_at) VALUES (?, ?)
		RETURNING `+profileColumns, now, now)
	return scanProfile(row)
}

// UpdateProfile writes the full profile row. Last write wins.
func (q *Queries) UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE profile SET name = ?, title = ?, bio = ?, email = ?, phone = ?,
			location = ?, avatar_image = ?, cover_image = ?, resume_url = ?,
			social = ?, skills = ?, technologies = ?, experience = ?,
			education = ?, certifications = ?, is_published = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+profileColumns,
		p.Name, p.Title, p.Bio, p.Email, p.Phone, p.Location,
		p.AvatarImage, p.CoverImage, p.ResumeURL,
		encodeJSON(p.Social, "{}"), encodeJSON(p.Skills, "[]"),
		encodeJSON(p.Technologies, "[]"),
		encodeJSON(p.Experience, "[]"), encodeJSON(p.Education, "[]"),
		encodeJSON(p.Certifications, "[]"), p.IsPublished, time.Now(), p.ID,
	)
	return scanProfile(row)
}

func scanProfile(row rowScanner) (model.Profile, error) {
	var p model.Profile
	var social, skills, technologies, experience, education, certifications string
	err := row.Scan(&p.ID, &p.Name, &p.Title, &p.Bio, &p.Email, &p.Phone,
		&p.Location, &p.AvatarImage, &p.CoverImage, &p.ResumeURL,
		&social, &skills, &technologies, &experience, &education, &certifications,
		&p.IsPublished, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Profile{}, err
	}

	_ = json.Unmarshal([]byte(social), &p.Social)
	_ = json.Unmarshal([]byte(skills), &p.Skills)
	_ = json.Unmarshal([]byte(technologies), &p.Technologies)
	_ = json.Unmarshal([]byte(experience), &p.Experience)
	_ = json.Unmarshal([]byte(education), &p.Education)
	_ = json.Unmarshal([]byte(certifications), &p.Certifications)
	if p.Skills == nil {
		p.Skills = []model.SkillGroup{}
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Experience == nil {
		p.Experience = []model.Experience{}
	}
	if p.Education == nil {
		p.Education = []model.Education{}
	}
	if p.Certifications == nil {
		p.Certifications = []model.Certification{}
	}
	return p, nil
}
