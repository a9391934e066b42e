// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the /healthz body.
type HealthStatus struct {
	Status      string  `json:"status"`
	Connections int     `json:"connections"`
	Sessions    int     `json:"sessions"`
	Active      int     `json:"active"`
	Uptime      float64 `json:"uptime_seconds"`
}

// Healthz reports liveness and relay occupancy. Sessions counts every open
// session; Active counts named sessions that may publish locations.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status: "ok",
		Uptime: time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		health.Connections = h.hub.GetClientCount()
	}
	if h.registry != nil {
		health.Sessions = h.registry.Len()
		health.Active = h.registry.ActiveCount()
	}

	respondJSON(w, http.StatusOK, &health)
}
