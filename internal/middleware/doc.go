// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package middleware provides HTTP middleware for the Waymark server.

Key Components:

  - RequestID: X-Request-ID propagation and logging context
  - AccessLog: Per-request debug log and slow request warnings
  - PrometheusMetrics: Request count, latency and in-flight gauge
  - Compression: Gzip for the map page and other plain responses

All middleware uses the standard func(http.Handler) http.Handler shape so
it plugs into chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(middleware.DefaultSlowThreshold))
	r.Use(middleware.PrometheusMetrics)
	r.With(middleware.Compression).Get("/", handler.Index)

Websocket Upgrades:

PrometheusMetrics and AccessLog wrap the ResponseWriter but keep
http.Hijacker, so gorilla/websocket can take over the connection. A
hijacked request is recorded with status 101. Compression skips upgrade
requests entirely.

Metric labels use the chi route pattern ("/ws", "/healthz") rather than
the raw URL path so label cardinality stays fixed.

See Also:

  - internal/api: router that installs this stack
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
