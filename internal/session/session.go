// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package session

import (
	"strings"
	"time"
	"unicode/utf8"
)

// State is the lifecycle position of one connection.
type State int

const (
	// StateConnecting is the transport handshake, before a registry entry exists.
	StateConnecting State = iota
	// StateUnnamed is registered but has not sent set-name. Location updates are dropped.
	StateUnnamed
	// StateActive has a display name and may broadcast locations.
	StateActive
	// StateClosed is terminal. Sessions in this state are no longer in the registry.
	StateClosed
)

// String returns the lowercase state name used in logs.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateUnnamed:
		return "unnamed"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	// DefaultName is used when set-name carries no usable name.
	DefaultName = "Guest"

	// DefaultMaxNameLength caps display names, in runes.
	DefaultMaxNameLength = 32

	shortIDLength = 6
)

// Session is the server-side record of one live connection.
type Session struct {
	ID          string
	DisplayName string
	Color       string
	ShortID     string

	// LastAcceptedAt is the zero time until the first accepted location update.
	LastAcceptedAt time.Time

	// LastTS is the last packet timestamp (Unix ms) issued for this session.
	LastTS int64

	CreatedAt time.Time
	State     State
}

// Label returns the best available human label: name, then short id, then id.
func (s Session) Label() string {
	switch {
	case s.DisplayName != "":
		return s.DisplayName
	case s.ShortID != "":
		return s.ShortID
	default:
		return s.ID
	}
}

// ShortID returns the first six characters of id.
func ShortID(id string) string {
	if utf8.RuneCountInString(id) <= shortIDLength {
		return id
	}
	return string([]rune(id)[:shortIDLength])
}

// NormalizeName trims name and truncates it to maxLen runes. Empty or
// whitespace-only names become DefaultName. maxLen <= 0 disables truncation.
func NormalizeName(name string, maxLen int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	if maxLen > 0 && utf8.RuneCountInString(name) > maxLen {
		name = strings.TrimSpace(string([]rune(name)[:maxLen]))
	}
	return name
}
