// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package session

import "time"

// DefaultMinInterval is the minimum spacing between accepted location
// updates from one session.
const DefaultMinInterval = 500 * time.Millisecond

// Limiter gates location updates per session. It holds no state of its
// own; the last accepted time lives on the Session.
type Limiter struct {
	MinInterval time.Duration
}

// NewLimiter returns a Limiter. A non-positive interval uses DefaultMinInterval.
func NewLimiter(minInterval time.Duration) Limiter {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return Limiter{MinInterval: minInterval}
}

// Allow reports whether an update arriving at now may be accepted.
// Rejected updates are dropped by the caller, never queued.
func (l Limiter) Allow(s Session, now time.Time) bool {
	if s.LastAcceptedAt.IsZero() {
		return true
	}
	return now.Sub(s.LastAcceptedAt) >= l.MinInterval
}
