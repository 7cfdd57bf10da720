// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Profile is the site owner's singleton profile document.
type Profile struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Title          string          `json:"title"`
	Bio            string          `json:"bio"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Location       string          `json:"location"`
	AvatarImage    string          `json:"avatarImage"`
	CoverImage     string          `json:"coverImage"`
	ResumeURL      string          `json:"resumeUrl"`
	Social         SocialLinks     `json:"social"`
	Skills         []SkillGroup    `json:"skills"`
	Technologies   []string        `json:"technologies"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	IsPublished    bool            `json:"isPublished"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// SocialLinks holds the profile's external links.
type SocialLinks struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
	YouTube  string `json:"youtube,omitempty"`
	Dribbble string `json:"dribbble,omitempty"`
}

// SkillGroup is a named group of skills, e.g. "Backend".
type SkillGroup struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// Experience is a single work history entry.
type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

// Education is a single education history entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

// Certification is a single certification entry.
type Certification struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	IssueDate    string `json:"issueDate,omitempty"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
	URL          string `json:"url,omitempty"`
}
