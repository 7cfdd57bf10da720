// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the store, handlers
// and client packages.
package model

import (
	"regexp"
	"time"
)

// Gender values accepted at signup.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User is an account holder. PasswordHash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phoneNumber"`
	Gender       string    `json:"gender"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidPhone reports whether s is exactly ten digits.
func ValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// ValidGender reports whether s is one of the accepted gender values.
func ValidGender(s string) bool {
	switch s {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
