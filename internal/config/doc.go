// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package config provides centralized configuration management for Waymark.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The result is validated once at
startup; a bad value stops the process with a message naming the variable.

# Configuration Sources

  - Defaults compiled into defaultConfig
  - YAML file from CONFIG_PATH, or the first of config.yaml, config.yml,
    /etc/waymark/config.yaml, /etc/waymark/config.yml
  - Environment variables (highest priority, allow-listed)

# Environment Variables

HTTP Server (ServerConfig):
  - HTTP_PORT: Listen port (default: 3000)
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)
  - SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 10s)
  - ENVIRONMENT: development, staging, production (default: development)

Relay (RelayConfig):
  - RELAY_MIN_INTERVAL: Minimum spacing of accepted updates per session (default: 500ms)
  - RELAY_MAX_NAME_LENGTH: Display name limit in runes (default: 32)
  - WS_SEND_BUFFER: Outbound frames buffered per connection (default: 256)
  - WS_INBOUND_BUFFER: Hub inbound queue length (default: 1024)
  - WS_MAX_MESSAGE_SIZE: Largest accepted frame in bytes (default: 4096)
  - WS_MESSAGE_RATE, WS_MESSAGE_BURST: Inbound frame flood guard (default: 20/s, burst 40)

Security (SecurityConfig):
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: Per-IP HTTP limit (default: 60 per 1m)
  - DISABLE_RATE_LIMIT: Turn the HTTP limit off (default: false)
  - TRUSTED_PROXIES: Comma-separated IPs or CIDRs

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: Include file:line (default: false)

Peer client (PeerConfig):
  - WAYMARK_SERVER: Relay websocket URL (default: ws://localhost:3000/ws)
  - WAYMARK_NAME: Display name
  - PEER_SEND_INTERVAL: Client-side send throttle (default: 1s)
  - PEER_MOVE_THRESHOLD: Degrees a marker must move to count as "moved" (default: 0.0005)
  - PEER_RECONNECT_MIN, PEER_RECONNECT_MAX: Reconnect backoff bounds
  - PEER_BREAKER_FAILURES, PEER_BREAKER_OPEN_DELAY: Dial circuit breaker

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
