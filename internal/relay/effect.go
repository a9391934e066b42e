// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package relay

// Effect is one outbound message produced by a handler. The transport
// decides how to deliver it; handlers never touch connections.
type Effect struct {
	// Target is the connection id for a unicast, or "" for every connection.
	Target  string
	Event   string
	Payload interface{}
}

// IsBroadcast reports whether the effect goes to every connection.
func (e Effect) IsBroadcast() bool {
	return e.Target == ""
}

// Broadcast addresses an event to every connection, sender included.
func Broadcast(event string, payload interface{}) Effect {
	return Effect{Event: event, Payload: payload}
}

// Unicast addresses an event to a single connection.
func Unicast(target, event string, payload interface{}) Effect {
	return Effect{Target: target, Event: event, Payload: payload}
}
