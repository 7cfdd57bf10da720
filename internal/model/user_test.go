// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"user@example.com", true},
		{"a.b+c@sub.domain.io", true},
		{"not-an-email", false},
		{"@example.com", false},
		{"user@", false},
		{"user @example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidEmail(tt.in); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0123456789", true},
		{"9876543210", true},
		{"123456789", false},
		{"12345678901", false},
		{"12345abcde", false},
		{"+1234567890", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidPhone(tt.in); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidGender(t *testing.T) {
	for _, g := range []string{GenderMale, GenderFemale, GenderOther} {
		if !ValidGender(g) {
			t.Errorf("ValidGender(%q) = false, want true", g)
		}
	}
	for _, g := range []string{"", "unknown", "Male"} {
		if ValidGender(g) {
			t.Errorf("ValidGender(%q) = true, want false", g)
		}
	}
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	u := User{ID: 1, Username: "oleg", Email: "oleg@example.com", PasswordHash: "$2a$12$secret"}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("marshalled user leaks password hash: %s", data)
	}
	if strings.Contains(string(data), "passwordHash") {
		t.Errorf("marshalled user contains passwordHash field: %s", data)
	}
}

func TestValidProjectStatus(t *testing.T) {
	for _, s := range []string{"completed", "in-progress", "planned", "on-hold"} {
		if !ValidProjectStatus(s) {
			t.Errorf("ValidProjectStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "done", "IN-PROGRESS"} {
		if ValidProjectStatus(s) {
			t.Errorf("ValidProjectStatus(%q) = true, want false", s)
		}
	}
}
