// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package models

// LocationPacket is the canonical receive-location broadcast. TS is Unix
// milliseconds assigned by the server when the update was accepted.
type LocationPacket struct {
	ID        string  `json:"id"`
	ShortID   string  `json:"shortId"`
	Color     string  `json:"color"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TS        int64   `json:"ts"`
	Name      string  `json:"name"`
}

// LocationRequest is the send-location payload a peer emits.
type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DisconnectNotice is the user-disconnect payload.
type DisconnectNotice struct {
	ID string `json:"id"`
}

// ConnectedNotice is unicast to a new connection so it can recognize its
// own packets in the broadcast stream.
type ConnectedNotice struct {
	ID      string `json:"id"`
	ShortID string `json:"shortId"`
}
