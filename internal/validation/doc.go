// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

// Package validation wraps go-playground/validator v10 with a shared,
// lazily built validator and readable error messages.
//
// It backs two checks in Waymark: coordinate bounds on inbound location
// updates (internal/geo) and startup configuration checks (internal/config).
//
// # Quick Start
//
//	type coordinates struct {
//	    Latitude  float64 `json:"latitude" validate:"latitude"`
//	    Longitude float64 `json:"longitude" validate:"longitude"`
//	}
//
//	if verr := validation.ValidateStruct(&c); verr != nil {
//	    return verr
//	}
//
// # Field Names
//
// Errors report the json tag name of a field, falling back to its koanf
// tag and then the Go field name, so messages read "latitude must be a
// valid latitude (-90 to 90)" or "min_interval must be at least 1ms".
//
// # Thread Safety
//
// GetValidator initializes once via sync.Once. The returned
// *validator.Validate is safe for concurrent use.
package validation
