// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

// Package geo validates untrusted coordinate payloads.
//
// Rules are applied in order and the first failure wins:
//
//  1. the payload is a JSON object
//  2. latitude and longitude are present and numeric (a JSON number, or a
//     string that parses as one)
//  3. neither is NaN
//  4. latitude is within [-90, 90]
//  5. longitude is within [-180, 180]
//
// Every failure wraps ErrInvalid. The functions are pure.
package geo
