// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package peer implements a Waymark map client without a browser.

A Peer dials the relay's /ws endpoint, announces a name, streams positions
from a geolocation Source and folds every other peer's packets into marker
state.

# Components

  - Reconciler: classifies each receive-location packet as self, new,
    moved or unchanged against DefaultMoveThreshold and drives a Map
  - NotificationDispatcher: turns new/moved transitions into "joined" and
    "moved" notifications
  - Source: position stream (RandomWalkSource, ReplaySource,
    UnavailableSource)
  - ConsoleMap, ConsoleNotifier: text renderers used by cmd/peer

# Connection Handling

Dials go through a sony/gobreaker circuit breaker ("peer-dial"). Failed
dials back off exponentially between PEER_RECONNECT_MIN and
PEER_RECONNECT_MAX. After every reconnect all remote markers are cleared,
since user-disconnect events may have been missed while offline. Outbound
location updates are throttled to one per PEER_SEND_INTERVAL with an
x/time/rate limiter; the server applies its own tighter limit.

# Usage

	src := &peer.RandomWalkSource{Start: peer.Position{Latitude: 51.5, Longitude: -0.12}, Step: 0.001, Interval: time.Second}
	p := peer.New(peer.ConfigFrom(cfg.Peer), src, peer.NewConsoleMap(os.Stdout), peer.NewConsoleNotifier(os.Stdout))
	err := p.Run(ctx)
*/
package peer
