// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

// Package logging provides the process-wide zerolog logger for Waymark.
//
// # Overview
//
// Every component logs through this package:
//   - JSON output for production, console output for development
//   - Level, format and caller info configured from internal/config
//   - Context helpers that attach request_id, correlation_id and conn_id
//   - A log/slog bridge so suture's sutureslog hook writes through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	})
//
//	logging.Info().Str("addr", addr).Msg("http server listening")
//	logging.Ctx(ctx).Debug().Str("event", "send-location").Msg("dropped: rate limited")
//
// # Configuration
//
// Environment variables (read by internal/config):
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  true, false (default: false)
//
// # Conventions
//
// Always terminate event chains with Msg or Send, and prefer structured
// fields over Msgf:
//
//	logging.Info().Str("conn_id", id).Int("clients", n).Msg("websocket client connected")
//
// Dropped location updates are expected traffic and are logged at debug
// level only.
package logging
