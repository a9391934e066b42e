// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

// Package session holds server-side connection state for the relay.
//
// # Components
//
//   - Registry: the only owner of Session records, one per live connection
//   - Limiter: the per-session minimum interval between accepted updates
//   - ColorForID: the deterministic marker color for a connection id
//
// # Lifecycle
//
//	Connecting -> Unnamed      CreateUnnamed, on websocket upgrade
//	Unnamed    -> Active       SetName
//	Active     -> Active       Touch, on each accepted location update
//	any        -> Closed       Remove, on disconnect
//
// The registry is constructed explicitly (NewRegistry) and passed to the
// relay; there is no package-level instance.
package session
