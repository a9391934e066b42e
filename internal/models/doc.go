// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package models defines the wire protocol shared by the Waymark server and peers.

Every websocket frame is a JSON text message wrapping one event:

	{"type": "receive-location", "data": {"id": "...", "latitude": 10, ...}}

Events:

  - connected (server to one peer): ConnectedNotice
  - set-name (peer to server): a JSON string
  - send-location (peer to server): LocationRequest
  - receive-location (server to all): LocationPacket
  - user-disconnect (server to all): DisconnectNotice
  - ping / pong: no payload

JSON encoding uses github.com/goccy/go-json throughout.
*/
package models
