// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package relay implements the server side of the location protocol.

Relay is the per-connection state machine. Its handlers take a connection
id and an event payload and return Effects (broadcast or unicast messages)
without touching any connection, so they can be tested without a transport:

	Connect       -> unicast "connected" {id, shortId}
	SetName       -> no effects; session becomes Active
	SendLocation  -> broadcast "receive-location" LocationPacket
	Disconnect    -> broadcast "user-disconnect" {id}

Dispatcher maps wire event names to handlers and wraps each call in an
OpenTelemetry span.

# Drops

Updates that fail a guard return one of the sentinel errors and produce no
effects: ErrUnknownSession, ErrUnnamedSender, ErrRateLimited and
ErrInvalidPayload, checked in that order, plus ErrUnknownEvent from the
dispatcher. Nothing is sent back to the peer. Outcomes are counted in
waymark_location_updates_total and logged at debug level.
*/
package relay
