// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		if err != nil {
			t.Fatalf("HashPassword() error = %v", err)
		}
		if !VerifyPassword(hash, "correct horse battery staple") {
			t.Error("VerifyPassword() = false for the original password")
		}
		if VerifyPassword(hash, "wrong password") {
			t.Error("VerifyPassword() = true for a wrong password")
		}
	})

	t.Run("hash comes first", func(t *testing.T) {
		hash, err := HashPassword("secret-password-123")
		if err != nil {
			t.Fatalf("HashPassword() error = %v", err)
		}
		if !VerifyPassword(hash, "secret-password-123") {
			t.Error("VerifyPassword(hash, password) = false, arguments swapped")
		}
		if VerifyPassword("secret-password-123", hash) {
			t.Error("VerifyPassword(password, hash) = true, plaintext accepted as hash")
		}
	})

	t.Run("uses configured cost", func(t *testing.T) {
		hash, err := HashPassword("some-password")
		if err != nil {
			t.Fatalf("HashPassword() error = %v", err)
		}
		cost, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			t.Fatalf("Cost() error = %v", err)
		}
		if cost != HashCost {
			t.Errorf("cost = %d, want %d", cost, HashCost)
		}
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := HashPassword("short")
		if !errors.Is(err, ErrPasswordTooShort) {
			t.Errorf("HashPassword() error = %v, want ErrPasswordTooShort", err)
		}
	})

	t.Run("hashes never repeat", func(t *testing.T) {
		a, _ := HashPassword("some-password")
		b, _ := HashPassword("some-password")
		if a == b {
			t.Error("two hashes of the same password are identical, salt missing")
		}
	})

	t.Run("hash does not contain plaintext", func(t *testing.T) {
		hash, _ := HashPassword("visible-secret")
		if strings.Contains(hash, "visible-secret") {
			t.Error("hash contains the plaintext password")
		}
	})
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Error("VerifyPassword() = true for a malformed hash")
	}
}
