// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package peer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/waymark/internal/geo"
)

// Geolocation failures. Both are terminal: the source stops and is not
// retried.
var (
	ErrGeolocationUnsupported = errors.New("geolocation unsupported")
	ErrPermissionDenied       = errors.New("geolocation permission denied")
)

// Position is one fix from a geolocation source.
type Position struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// Source produces positions until ctx is canceled. The position channel is
// closed when the source stops; at most one error is sent before that.
// A Source is watched once.
type Source interface {
	Watch(ctx context.Context) (<-chan Position, <-chan error)
}

// UnavailableSource fails immediately with Err, standing in for a device
// without geolocation.
type UnavailableSource struct {
	Err error
}

// Watch implements Source.
func (s UnavailableSource) Watch(context.Context) (<-chan Position, <-chan error) {
	positions := make(chan Position)
	errs := make(chan error, 1)
	err := s.Err
	if err == nil {
		err = ErrGeolocationUnsupported
	}
	errs <- err
	close(positions)
	close(errs)
	return positions, errs
}

// RandomWalkSource wanders from Start by up to Step degrees per axis every
// Interval, clamped to valid coordinates.
type RandomWalkSource struct {
	Start    Position
	Step     float64
	Interval time.Duration
	// Rand defaults to a time-seeded generator.
	Rand *rand.Rand
}

// Watch implements Source.
func (s *RandomWalkSource) Watch(ctx context.Context) (<-chan Position, <-chan error) {
	positions := make(chan Position)
	errs := make(chan error, 1)

	if _, err := geo.Validate(s.Start.Latitude, s.Start.Longitude); err != nil {
		errs <- fmt.Errorf("start position: %w", err)
		close(positions)
		close(errs)
		return positions, errs
	}

	rng := s.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		defer close(errs)
		defer close(positions)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		cur := s.Start
		for {
			cur.Timestamp = time.Now()
			select {
			case positions <- cur:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
			cur.Latitude = clamp(cur.Latitude+(rng.Float64()*2-1)*s.Step, geo.MinLatitude, geo.MaxLatitude)
			cur.Longitude = clamp(cur.Longitude+(rng.Float64()*2-1)*s.Step, geo.MinLongitude, geo.MaxLongitude)
		}
	}()
	return positions, errs
}

// ReplaySource emits Route one fix per Interval, then stops unless Loop is
// set.
type ReplaySource struct {
	Route    []Position
	Interval time.Duration
	Loop     bool
}

// Watch implements Source.
func (s *ReplaySource) Watch(ctx context.Context) (<-chan Position, <-chan error) {
	positions := make(chan Position)
	errs := make(chan error, 1)

	if len(s.Route) == 0 {
		errs <- errors.New("replay route is empty")
		close(positions)
		close(errs)
		return positions, errs
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		defer close(errs)
		defer close(positions)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			if i == len(s.Route) {
				if !s.Loop {
					return
				}
				i = 0
			}
			pos := s.Route[i]
			pos.Timestamp = time.Now()
			select {
			case positions <- pos:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return positions, errs
}

// ParseRoute parses "lat,lon;lat,lon;..." into validated positions.
func ParseRoute(s string) ([]Position, error) {
	var route []Position
	for i, leg := range strings.Split(s, ";") {
		leg = strings.TrimSpace(leg)
		if leg == "" {
			continue
		}
		latStr, lonStr, ok := strings.Cut(leg, ",")
		if !ok {
			return nil, fmt.Errorf("route point %d: want lat,lon, got %q", i+1, leg)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("route point %d: latitude: %w", i+1, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("route point %d: longitude: %w", i+1, err)
		}
		c, err := geo.Validate(lat, lon)
		if err != nil {
			return nil, fmt.Errorf("route point %d: %w", i+1, err)
		}
		route = append(route, Position{Latitude: c.Latitude, Longitude: c.Longitude})
	}
	if len(route) == 0 {
		return nil, errors.New("route has no points")
	}
	return route, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
