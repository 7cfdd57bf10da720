// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version holds build-time version information for folio.
package version

import "fmt"

// Version is the current folio version. Overridden at build time with
// -ldflags "-X github.com/olegiv/folio-go/internal/version.Version=...".
var Version = "0.3.0"

// Commit is the git commit hash the binary was built from.
var Commit = "dev"

// String returns the full version string.
func String() string {
	if Commit == "dev" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
