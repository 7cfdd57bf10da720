// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"testing"
	"time"
)

func TestNullTimeFrom(t *testing.T) {
	if got := NullTimeFrom(nil); got.Valid {
		t.Error("NullTimeFrom(nil).Valid = true, want false")
	}

	now := time.Now()
	got := NullTimeFrom(&now)
	if !got.Valid {
		t.Error("NullTimeFrom(&now).Valid = false, want true")
	}
	if !got.Time.Equal(now) {
		t.Errorf("NullTimeFrom(&now).Time = %v, want %v", got.Time, now)
	}
}

func TestNullInt64From(t *testing.T) {
	if got := NullInt64From(nil); got.Valid {
		t.Error("NullInt64From(nil).Valid = true, want false")
	}

	v := int64(42)
	got := NullInt64From(&v)
	if !got.Valid || got.Int64 != 42 {
		t.Errorf("NullInt64From(&42) = %+v, want valid 42", got)
	}
}

func TestTimePtr(t *testing.T) {
	if got := TimePtr(time.Time{}); got != nil {
		t.Errorf("TimePtr(zero) = %v, want nil", got)
	}

	now := time.Now()
	if got := TimePtr(now); got == nil || !got.Equal(now) {
		t.Errorf("TimePtr(now) = %v, want %v", got, now)
	}
}
