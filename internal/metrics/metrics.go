// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for waymark_location_updates_total.
const (
	ResultAccepted       = "accepted"
	ResultRateLimited    = "rate_limited"
	ResultInvalid        = "invalid"
	ResultUnnamed        = "unnamed"
	ResultUnknownSession = "unknown_session"
)

var (
	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waymark_websocket_connections",
			Help: "Number of open websocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymark_websocket_messages_sent_total",
			Help: "Frames queued to clients, by event",
		},
		[]string{"event"},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymark_websocket_messages_received_total",
			Help: "Frames received from clients, by event",
		},
		[]string{"event"},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymark_websocket_errors_total",
			Help: "Websocket errors by type",
		},
		[]string{"error_type"}, // malformed_frame, flood, slow_consumer, unexpected_close
	)

	// Relay Metrics
	Sessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waymark_sessions",
			Help: "Registered sessions by state",
		},
		[]string{"state"},
	)

	LocationUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymark_location_updates_total",
			Help: "send-location events by outcome",
		},
		[]string{"result"},
	)

	RelayDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waymark_relay_dispatch_duration_seconds",
			Help:    "Time spent handling one inbound event",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
		},
		[]string{"event"},
	)

	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymark_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waymark_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waymark_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Peer Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waymark_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymark_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waymark_circuit_breaker_requests_total",
			Help: "Calls made through a circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	PeerReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waymark_peer_reconnects_total",
			Help: "Reconnect attempts made by the peer client",
		},
	)
)

// RecordConnection adjusts the open connection gauge.
func RecordConnection(opened bool) {
	if opened {
		WSConnections.Inc()
	} else {
		WSConnections.Dec()
	}
}

// RecordMessageSent counts n frames queued for event.
func RecordMessageSent(event string, n int) {
	WSMessagesSent.WithLabelValues(event).Add(float64(n))
}

// RecordMessageReceived counts one inbound frame.
func RecordMessageReceived(event string) {
	WSMessagesReceived.WithLabelValues(event).Inc()
}

// RecordWSError counts a websocket error by type.
func RecordWSError(errorType string) {
	WSErrors.WithLabelValues(errorType).Inc()
}

// UpdateSessionGauges sets the unnamed/active session counts.
func UpdateSessionGauges(total, active int) {
	Sessions.WithLabelValues("active").Set(float64(active))
	Sessions.WithLabelValues("unnamed").Set(float64(total - active))
}

// RecordLocationUpdate counts one send-location outcome.
func RecordLocationUpdate(result string) {
	LocationUpdates.WithLabelValues(result).Inc()
}

// RecordDispatch observes handling time for one inbound event.
func RecordDispatch(event string, duration time.Duration) {
	RelayDispatchDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// RecordAPIRequest records an HTTP request
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments/decrements active request counter
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCircuitBreakerTransition records a breaker state change. States
// are the gobreaker names: "closed", "half-open", "open".
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordBreakerRequest counts one call through a breaker.
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordPeerReconnect counts one reconnect attempt.
func RecordPeerReconnect() {
	PeerReconnects.Inc()
}
