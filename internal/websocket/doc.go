// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package websocket is the transport for the location relay.

It uses gorilla/websocket with a hub-client architecture. The Hub is a
single-goroutine actor: connection lifecycle, inbound frames and fanout
all pass through RunWithContext, which calls the protocol EventHandler
(relay.Dispatcher) and delivers the Effects it returns.

Architecture:

	            ┌──────────────────┐
	 frames ──► │       Hub        │ ──► EventHandler (relay)
	            │  (single loop)   │ ◄── []Effect
	            └────────┬─────────┘
	                     │ encoded frames
	     ┌───────────────┼───────────────┐
	  Client1         Client2         Client3

Each client has two goroutines:
  - readPump: reads text frames, applies the inbound flood limit, decodes
    the {"type","data"} envelope and queues it on the hub
  - writePump: writes queued frames and pings every 54s; a client that
    does not answer within 60s is dropped

Backpressure:

Every client has a bounded send queue. When a broadcast finds a queue full
the client is evicted and torn down exactly like a disconnect, so the
remaining peers receive user-disconnect for it. Location broadcasts are
never retried; the next update supersedes them.

Usage Example:

	dispatcher := relay.NewDispatcher(relay.New(registry, limiter))
	hub := websocket.NewHub(dispatcher, websocket.DefaultConfig())
	go hub.RunWithContext(ctx)

	// in the HTTP upgrade handler
	client := websocket.NewClient(hub, conn, uuid.NewString(), r.RemoteAddr)
	if hub.Join(r.Context(), client) {
	    client.Start()
	}
*/
package websocket
