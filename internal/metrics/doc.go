// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package metrics registers Waymark's Prometheus collectors.

Collectors are created with promauto on the default registry and exposed by
the server at /metrics:

	curl http://localhost:3000/metrics

# Available Metrics

WebSocket:
  - waymark_websocket_connections: open connections (gauge)
  - waymark_websocket_messages_sent_total{event}: frames queued to clients
  - waymark_websocket_messages_received_total{event}: frames read from clients
  - waymark_websocket_errors_total{error_type}: malformed frames, floods, evictions

Relay:
  - waymark_sessions{state}: unnamed and active sessions
  - waymark_location_updates_total{result}: accepted, rate_limited, invalid, unnamed, unknown_session
  - waymark_relay_dispatch_duration_seconds{event}

HTTP:
  - waymark_http_requests_total{method,endpoint,status_code}
  - waymark_http_request_duration_seconds{method,endpoint}
  - waymark_http_active_requests

Peer (recorded by waymark-peer):
  - waymark_circuit_breaker_state{name}
  - waymark_circuit_breaker_state_transitions_total{name,from,to}
  - waymark_peer_reconnects_total

Dropped location updates are expected traffic; alert on the ratio of
invalid to accepted rather than on absolute counts.
*/
package metrics
