// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package peer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tomtom215/waymark/internal/models"
	"github.com/tomtom215/waymark/internal/session"
)

// DefaultMoveThreshold is the per-axis coordinate delta, in degrees, above
// which a peer counts as moved (about 55 m at the equator).
const DefaultMoveThreshold = 0.0005

// Defaults used before the server has echoed our own packet back.
const (
	defaultSelfColor = "#000000"
	selfPlaceholder  = "me"
)

// ErrMissingID is returned by Apply for packets without an id.
var ErrMissingID = errors.New("location packet has no id")

// Class is the reconciler's verdict on one packet.
type Class int

const (
	// ClassSelf is the server echoing our own update.
	ClassSelf Class = iota
	// ClassNew is the first packet seen for a peer.
	ClassNew
	// ClassMoved means a peer moved past the threshold on either axis.
	ClassMoved
	// ClassUnchanged means a peer stayed within the threshold.
	ClassUnchanged
)

func (c Class) String() string {
	switch c {
	case ClassSelf:
		return "self"
	case ClassNew:
		return "new"
	case ClassMoved:
		return "moved"
	case ClassUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Transition describes what Apply did with a packet.
type Transition struct {
	Class     Class
	ID        string
	Label     string
	Latitude  float64
	Longitude float64
}

// MarkerState is the cached view of one remote peer.
type MarkerState struct {
	Latitude  float64
	Longitude float64
	Name      string
	ShortID   string
	Color     string
}

// label returns name, then short id, then id.
func (m MarkerState) label(id string) string {
	switch {
	case m.Name != "":
		return m.Name
	case m.ShortID != "":
		return m.ShortID
	default:
		return id
	}
}

// Marker is one rendered map pin.
type Marker struct {
	ID        string
	Label     string
	Color     string
	Latitude  float64
	Longitude float64
	Self      bool
}

// Map renders markers. Implementations need not be safe for concurrent use;
// the Reconciler serializes every call.
type Map interface {
	Upsert(m Marker)
	Remove(id string)
	// Center moves the viewport. Called once, on the first self position.
	Center(latitude, longitude float64)
}

// Reconciler turns the unordered packet stream into marker state.
type Reconciler struct {
	mu        sync.Mutex
	view      Map
	threshold float64
	markers   map[string]*MarkerState

	selfID      string
	selfName    string
	selfShortID string
	selfColor   string
	selfMarker  string
	centered    bool
}

// NewReconciler returns a Reconciler drawing on view. A non-positive
// threshold uses DefaultMoveThreshold.
func NewReconciler(view Map, threshold float64) *Reconciler {
	if threshold <= 0 {
		threshold = DefaultMoveThreshold
	}
	return &Reconciler{
		view:      view,
		threshold: threshold,
		markers:   make(map[string]*MarkerState),
		selfColor: defaultSelfColor,
	}
}

// SetSelfName sets the name shown on our own marker. It applies before the
// first connection, so the self marker is labelled while offline too.
func (r *Reconciler) SetSelfName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selfName = name
}

// SetSelf records the connection id the server assigned us and the name we
// announced. Packets carrying id are treated as our own echo from now on.
// An empty name keeps the current one.
func (r *Reconciler) SetSelf(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selfID = id
	if name != "" {
		r.selfName = name
	}
	r.selfShortID = ""
}

// Apply classifies pkt and updates the map accordingly.
func (r *Reconciler) Apply(pkt models.LocationPacket) (Transition, error) {
	if pkt.ID == "" {
		return Transition{}, ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := Transition{ID: pkt.ID, Latitude: pkt.Latitude, Longitude: pkt.Longitude}

	if pkt.ID == r.selfID {
		r.selfShortID = pkt.ShortID
		if pkt.Color != "" {
			r.selfColor = pkt.Color
		}
		t.Class = ClassSelf
		t.Label = r.selfLabel()
		return t, nil
	}

	state, known := r.markers[pkt.ID]
	switch {
	case !known:
		t.Class = ClassNew
		state = &MarkerState{}
		r.markers[pkt.ID] = state
	case math.Abs(state.Latitude-pkt.Latitude) > r.threshold ||
		math.Abs(state.Longitude-pkt.Longitude) > r.threshold:
		t.Class = ClassMoved
	default:
		t.Class = ClassUnchanged
	}

	// An unchanged packet keeps the last drawn position as the reference so
	// slow drift still adds up to a move.
	if t.Class != ClassUnchanged {
		state.Latitude = pkt.Latitude
		state.Longitude = pkt.Longitude
	}
	state.Name = pkt.Name
	state.ShortID = pkt.ShortID
	if pkt.Color != "" {
		state.Color = pkt.Color
	}
	t.Label = state.label(pkt.ID)

	if t.Class != ClassUnchanged {
		r.view.Upsert(Marker{
			ID:        pkt.ID,
			Label:     t.Label,
			Color:     state.Color,
			Latitude:  pkt.Latitude,
			Longitude: pkt.Longitude,
		})
	}
	return t, nil
}

// Remove drops a peer's marker and state. It reports whether the peer was
// known.
func (r *Reconciler) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.markers[id]; !ok {
		return false
	}
	delete(r.markers, id)
	r.view.Remove(id)
	return true
}

// Reset drops every remote marker. The self marker stays.
func (r *Reconciler) Reset() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.markers)
	for id := range r.markers {
		r.view.Remove(id)
	}
	clear(r.markers)
	return n
}

// UpdateSelf moves our own marker to pos, creating it on first use. The
// first self position also centers the map.
func (r *Reconciler) UpdateSelf(pos Position) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.selfID
	if id == "" {
		id = selfPlaceholder
	}
	if r.selfMarker != "" && r.selfMarker != id {
		// Reconnected under a new id.
		r.view.Remove(r.selfMarker)
	}
	r.selfMarker = id

	r.view.Upsert(Marker{
		ID:        id,
		Label:     fmt.Sprintf("You (%s)", r.selfName),
		Color:     r.selfColor,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Self:      true,
	})
	if !r.centered {
		r.centered = true
		r.view.Center(pos.Latitude, pos.Longitude)
	}
}

// Get returns the cached state for a remote peer.
func (r *Reconciler) Get(id string) (MarkerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.markers[id]
	if !ok {
		return MarkerState{}, false
	}
	return *s, true
}

// Len returns the number of remote peers on the map.
func (r *Reconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.markers)
}

// Self returns the short id and color captured from our own echo. Before
// the first echo they fall back to a prefix of the id and black.
func (r *Reconciler) Self() (shortID, color string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selfLabel(), r.selfColor
}

func (r *Reconciler) selfLabel() string {
	if r.selfShortID != "" {
		return r.selfShortID
	}
	if r.selfID == "" {
		return selfPlaceholder
	}
	return session.ShortID(r.selfID)
}
