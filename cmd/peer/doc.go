// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package main is waymark-peer, a terminal client for a Waymark relay.

	waymark-peer run --server ws://localhost:3000/ws --name Ann --lat 51.5 --lon -0.12
	waymark-peer run --route "10,20;10.0006,20" --interval 2s
	waymark-peer version

Marker changes and notifications go to stdout; logs go to stderr.
*/
package main
