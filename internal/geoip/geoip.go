// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves visitor IP addresses to country codes using a
// MaxMind database. Absence of the database degrades to empty lookups.
package geoip

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/oschwald/maxminddb-golang"
)

// CountryLocal is reported for private and loopback addresses.
const CountryLocal = "LOCAL"

// Resolver looks up countries for IP addresses. Safe for concurrent use.
type Resolver struct {
	mu     sync.RWMutex
	reader *maxminddb.Reader
	path   string
}

// countryRecord is the subset of the MaxMind schema we read.
type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// New opens the database at path. An empty path returns a resolver
// that always reports the empty string for public addresses.
func New(path string) (*Resolver, error) {
	r := &Resolver{path: path}
	if path == "" {
		return r, nil
	}

	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoip database: %w", err)
	}
	r.reader = reader
	return r, nil
}

// LookupCountry returns the ISO country code for the address, LOCAL
// for private ranges, or the empty string when unknown.
func (r *Resolver) LookupCountry(addr string) string {
	ip := net.ParseIP(addr)
	if ip == nil {
		return ""
	}
	if isPrivate(ip) {
		return CountryLocal
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.reader == nil {
		return ""
	}

	var record countryRecord
	if err := r.reader.Lookup(ip, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// Reload reopens the database file, picking up a refreshed copy.
func (r *Resolver) Reload() error {
	if r.path == "" {
		return nil
	}

	reader, err := maxminddb.Open(r.path)
	if err != nil {
		return fmt.Errorf("reloading geoip database: %w", err)
	}

	r.mu.Lock()
	old := r.reader
	r.reader = reader
	r.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			slog.Warn("closing previous geoip reader", "error", err)
		}
	}
	return nil
}

// Close releases the underlying reader.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reader == nil {
		return nil
	}
	err := r.reader.Close()
	r.reader = nil
	return err
}

func isPrivate(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
