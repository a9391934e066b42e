// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package api provides the HTTP surface of the Waymark server using the Chi
router.

# Routes

	GET /            embedded map page (Leaflet + browser Geolocation)
	GET /static/*    embedded client assets
	GET /ws          websocket upgrade into the relay hub
	GET /healthz     {"status","connections","sessions","active","uptime_seconds"}
	GET /metrics     Prometheus exposition

There is no REST API; everything else returns a JSON 404.

# Middleware Stack

Applied to every route, in order:

 1. RealIP (only for requests from TRUSTED_PROXIES)
 2. middleware.RequestID
 3. chi Recoverer
 4. middleware.AccessLog
 5. middleware.PrometheusMetrics
 6. go-chi/cors

The page, assets and /ws share a per-IP httprate limiter
(RATE_LIMIT_REQUESTS per RATE_LIMIT_WINDOW); /healthz and /metrics are not
limited. The page and assets are gzip compressed.

# WebSocket Origin Policy

With CORS_ORIGINS=* any origin is accepted, including non-browser clients
that send no Origin header. With an explicit list, the Origin header is
required and must match exactly.

# Usage

	handler := api.NewHandler(hub, registry, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
*/
package api
