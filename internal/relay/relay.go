// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waymark/internal/geo"
	"github.com/tomtom215/waymark/internal/logging"
	"github.com/tomtom215/waymark/internal/metrics"
	"github.com/tomtom215/waymark/internal/models"
	"github.com/tomtom215/waymark/internal/session"
)

// Relay is the per-connection state machine:
//
//	Connecting -> Unnamed -> Active -> Closed
//
// Each handler runs to completion under a single lock, so the rate check
// and the touch that follows it cannot interleave with another event for
// the same session.
type Relay struct {
	mu       sync.Mutex
	registry *session.Registry
	limiter  session.Limiter
	now      func() time.Time
}

// Option configures a Relay.
type Option func(*Relay)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		r.now = now
	}
}

// New creates a Relay over registry.
func New(registry *session.Registry, limiter session.Limiter, opts ...Option) *Relay {
	r := &Relay{
		registry: registry,
		limiter:  limiter,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the session registry the relay writes to.
func (r *Relay) Registry() *session.Registry {
	return r.registry
}

// Connect registers a new connection as Unnamed and tells it its id.
func (r *Relay) Connect(ctx context.Context, id string) ([]Effect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.registry.CreateUnnamed(id, r.now())
	if err != nil {
		return nil, err
	}
	r.updateGauges()

	logging.Ctx(ctx).Debug().Str("short_id", s.ShortID).Msg("session opened")

	return []Effect{
		Unicast(id, models.EventConnected, models.ConnectedNotice{ID: s.ID, ShortID: s.ShortID}),
	}, nil
}

// SetName activates the session. Anything other than a non-blank JSON
// string names the session DefaultName. Repeats overwrite the name; packets
// already sent keep the old one.
func (r *Relay) SetName(ctx context.Context, id string, data json.RawMessage) ([]Effect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.registry.SetName(id, parseName(data))
	if err != nil {
		return nil, err
	}
	r.updateGauges()

	logging.Ctx(ctx).Info().
		Str("name", logging.SanitizeValue(s.DisplayName)).
		Str("color", s.Color).
		Msg("session named")
	return nil, nil
}

// SendLocation validates a candidate update and, if accepted, broadcasts
// the canonical packet to every connection including the sender.
func (r *Relay) SendLocation(ctx context.Context, id string, data json.RawMessage) (effects []Effect, err error) {
	defer func() {
		metrics.RecordLocationUpdate(dropResult(err))
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if s.State != session.StateActive {
		return nil, ErrUnnamedSender
	}

	now := r.now()
	if !r.limiter.Allow(s, now) {
		return nil, ErrRateLimited
	}

	coords, verr := geo.ValidatePayload(data)
	if verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, verr)
	}

	ts, s, err := r.registry.Touch(id, now)
	if err != nil {
		return nil, err
	}

	packet := models.LocationPacket{
		ID:        s.ID,
		ShortID:   s.ShortID,
		Color:     s.Color,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		TS:        ts,
		Name:      s.DisplayName,
	}
	return []Effect{Broadcast(models.EventReceiveLocation, packet)}, nil
}

// Disconnect removes the session and announces the departure. It returns
// ErrUnknownSession if the session was already torn down, so the
// user-disconnect broadcast happens exactly once per connection.
func (r *Relay) Disconnect(ctx context.Context, id string) ([]Effect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.registry.Remove(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	r.updateGauges()

	logging.Ctx(ctx).Debug().
		Str("name", logging.SanitizeValue(s.DisplayName)).
		Dur("connected_for", r.now().Sub(s.CreatedAt)).
		Msg("session closed")

	return []Effect{
		Broadcast(models.EventUserDisconnect, models.DisconnectNotice{ID: id}),
	}, nil
}

func (r *Relay) updateGauges() {
	metrics.UpdateSessionGauges(r.registry.Len(), r.registry.ActiveCount())
}

func parseName(data json.RawMessage) string {
	if len(data) == 0 {
		return session.DefaultName
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return session.DefaultName
	}
	return name
}
