// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package services provides suture.Service wrappers for Waymark components.

Each wrapper translates a component's own lifecycle into suture's
context-aware Serve(ctx) error and names itself through fmt.Stringer for
log events.

WebSocket Hub (WebSocketHubService):
  - Delegates to websocket.Hub.RunWithContext
  - Treats a return while the context is live as a failure to restart

HTTP Server (HTTPServerService):
  - Runs ListenAndServe in a goroutine
  - Calls Shutdown with a bounded timeout on cancellation
  - Maps http.ErrServerClosed to a clean exit
*/
package services
