// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package main is the entry point for the Waymark relay server.

Waymark relays live positions between connected map clients. Each browser
(or waymark-peer process) opens a websocket, names itself, and streams
latitude/longitude updates; the server validates and rate limits them and
broadcasts them to every connection.

# Application Architecture

	RootSupervisor ("waymark")
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub (sessions, relay, fanout)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (/, /ws, /healthz, /metrics)

Initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Session registry, relay and dispatcher
 4. WebSocket hub
 5. Chi router and HTTP server
 6. Supervisor tree

# Configuration

See internal/config for the full list. The common ones:

	HTTP_PORT=3000
	RELAY_MIN_INTERVAL=500ms
	CORS_ORIGINS=https://map.example.com
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to SHUTDOWN_TIMEOUT, the hub closes every client, and services that did not
stop in time are listed in the log.

# Example Usage

	HTTP_PORT=8080 LOG_FORMAT=console ./waymark
*/
package main
