// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrDuplicateSession is returned by CreateUnnamed for an id that is already registered.
	ErrDuplicateSession = errors.New("session already exists")

	// ErrUnknownSession is returned for ids with no registry entry.
	ErrUnknownSession = errors.New("unknown session")
)

// Registry owns every live Session, keyed by connection id.
//
// All methods are safe for concurrent use. Reads hand out copies, so a
// Session value obtained from the registry never changes underneath the caller.
type Registry struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	maxNameLength int
}

// NewRegistry creates an empty registry. maxNameLength <= 0 uses DefaultMaxNameLength.
func NewRegistry(maxNameLength int) *Registry {
	if maxNameLength <= 0 {
		maxNameLength = DefaultMaxNameLength
	}
	return &Registry{
		sessions:      make(map[string]*Session),
		maxNameLength: maxNameLength,
	}
}

// CreateUnnamed registers a new connection in StateUnnamed.
func (r *Registry) CreateUnnamed(id string, now time.Time) (Session, error) {
	if id == "" {
		return Session{}, fmt.Errorf("%w: empty id", ErrUnknownSession)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return Session{}, fmt.Errorf("%w: %s", ErrDuplicateSession, id)
	}

	s := &Session{
		ID:        id,
		ShortID:   ShortID(id),
		CreatedAt: now,
		State:     StateUnnamed,
	}
	r.sessions[id] = s
	return *s, nil
}

// SetName assigns the display name and activates the session. Color and
// short id are derived from the id, so repeated calls only change the name.
func (r *Registry) SetName(id, name string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}

	s.DisplayName = NormalizeName(name, r.maxNameLength)
	s.Color = ColorForID(id)
	s.ShortID = ShortID(id)
	s.State = StateActive
	return *s, nil
}

// IsActive reports whether id is registered and named.
func (r *Registry) IsActive(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return ok && s.State == StateActive
}

// Touch records an accepted location update at now and returns the packet
// timestamp in Unix milliseconds together with the updated session. The
// timestamp never goes backwards for a session, even if the wall clock does.
func (r *Registry) Touch(id string, now time.Time) (int64, Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return 0, Session{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}

	ts := now.UnixMilli()
	if ts < s.LastTS {
		ts = s.LastTS
	}
	s.LastTS = ts
	s.LastAcceptedAt = now
	return ts, *s, nil
}

// Remove deletes id and returns its final state, marked StateClosed. The
// boolean is false when id was not registered, so teardown runs once.
func (r *Registry) Remove(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, id)

	final := *s
	final.State = StateClosed
	return final, true
}

// Get returns a copy of the session for id.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ActiveCount returns the number of named sessions.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.sessions {
		if s.State == StateActive {
			n++
		}
	}
	return n
}

// Snapshot returns copies of all sessions ordered by id.
// DETERMINISM: map iteration order is random, so results are sorted.
func (r *Registry) Snapshot() []Session {
	r.mu.RLock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
