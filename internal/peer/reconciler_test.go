// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package peer

import (
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/waymark/internal/models"
)

// recordingMap captures every Map call.
type recordingMap struct {
	mu      sync.Mutex
	markers map[string]Marker
	upserts int
	removed []string
	centers int
}

func newRecordingMap() *recordingMap {
	return &recordingMap{markers: make(map[string]Marker)}
}

func (m *recordingMap) Upsert(mk Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers[mk.ID] = mk
	m.upserts++
}

func (m *recordingMap) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.markers, id)
	m.removed = append(m.removed, id)
}

func (m *recordingMap) Center(float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.centers++
}

func (m *recordingMap) marker(id string) (Marker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mk, ok := m.markers[id]
	return mk, ok
}

func (m *recordingMap) removedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.removed)
}

func packet(id, name string, lat, lon float64) models.LocationPacket {
	return models.LocationPacket{
		ID:        id,
		ShortID:   id[:min(6, len(id))],
		Color:     "#123456",
		Latitude:  lat,
		Longitude: lon,
		Name:      name,
	}
}

func TestReconciler_Classification(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		want    Class
		wantLat float64
	}{
		{"first packet is new", 10.0, 20.0, ClassNew, 10.0},
		{"small latitude delta is unchanged", 10.0004, 20.0, ClassUnchanged, 10.0},
		{"latitude past threshold is moved", 10.0010, 20.0, ClassMoved, 10.0010},
		{"longitude past threshold is moved", 10.0010, 19.9990, ClassMoved, 10.0010},
		{"small longitude delta is unchanged", 10.0010, 19.9993, ClassUnchanged, 10.0010},
	}

	view := newRecordingMap()
	r := NewReconciler(view, 0)

	for _, tt := range tests {
		got, err := r.Apply(packet("peer-a", "Ann", tt.lat, tt.lon))
		if err != nil {
			t.Fatalf("%s: Apply() error = %v", tt.name, err)
		}
		if got.Class != tt.want {
			t.Errorf("%s: class = %v, want %v", tt.name, got.Class, tt.want)
		}
		mk, ok := view.marker("peer-a")
		if !ok {
			t.Fatalf("%s: no marker rendered", tt.name)
		}
		if mk.Latitude != tt.wantLat {
			t.Errorf("%s: marker latitude = %v, want %v", tt.name, mk.Latitude, tt.wantLat)
		}
	}
}

func TestReconciler_SlowDriftAccumulates(t *testing.T) {
	view := newRecordingMap()
	r := NewReconciler(view, DefaultMoveThreshold)

	steps := []struct {
		lat        float64
		want       Class
		wantMarker float64
	}{
		{10.0, ClassNew, 10.0},
		{10.0004, ClassUnchanged, 10.0},
		{10.0008, ClassMoved, 10.0008},
		{10.0012, ClassUnchanged, 10.0008},
		{10.0016, ClassMoved, 10.0016},
	}
	for _, st := range steps {
		got, err := r.Apply(packet("peer-a", "Ann", st.lat, 20.0))
		if err != nil {
			t.Fatalf("Apply(%v) error = %v", st.lat, err)
		}
		if got.Class != st.want {
			t.Errorf("Apply(%v) class = %v, want %v", st.lat, got.Class, st.want)
		}
		mk, _ := view.marker("peer-a")
		if mk.Latitude != st.wantMarker {
			t.Errorf("after %v marker latitude = %v, want %v", st.lat, mk.Latitude, st.wantMarker)
		}
		state, _ := r.Get("peer-a")
		if state.Latitude != st.wantMarker {
			t.Errorf("after %v reference latitude = %v, want %v", st.lat, state.Latitude, st.wantMarker)
		}
	}
}

func TestReconciler_UnchangedKeepsMetadata(t *testing.T) {
	r := NewReconciler(newRecordingMap(), 0)

	_, _ = r.Apply(packet("peer-a", "Ann", 10.0, 20.0))
	got, _ := r.Apply(packet("peer-a", "Annie", 10.0001, 20.0))
	if got.Class != ClassUnchanged || got.Label != "Annie" {
		t.Errorf("transition = %+v, want unchanged labelled Annie", got)
	}
	st, _ := r.Get("peer-a")
	if st.Name != "Annie" || st.Latitude != 10.0 {
		t.Errorf("state = %+v, want name Annie at reference 10.0", st)
	}
}

func TestReconciler_SelfNameBeforeConnect(t *testing.T) {
	view := newRecordingMap()
	r := NewReconciler(view, 0)
	r.SetSelfName("Ann")

	r.UpdateSelf(Position{Latitude: 1, Longitude: 2})
	mk, ok := view.marker(selfPlaceholder)
	if !ok || mk.Label != "You (Ann)" {
		t.Fatalf("offline self marker = %+v, %v; want label You (Ann)", mk, ok)
	}

	r.SetSelf("conn-1", "")
	r.UpdateSelf(Position{Latitude: 1, Longitude: 2})
	mk, ok = view.marker("conn-1")
	if !ok || mk.Label != "You (Ann)" {
		t.Errorf("connected self marker = %+v, %v; want label You (Ann)", mk, ok)
	}
}

func TestReconciler_Labels(t *testing.T) {
	view := newRecordingMap()
	r := NewReconciler(view, 0)

	tests := []struct {
		pkt  models.LocationPacket
		want string
	}{
		{packet("abcdefgh", "Ann", 1, 1), "Ann"},
		{models.LocationPacket{ID: "ijklmnop", ShortID: "ijklmn", Latitude: 2, Longitude: 2}, "ijklmn"},
		{models.LocationPacket{ID: "qrstuvwx", Latitude: 3, Longitude: 3}, "qrstuvwx"},
	}
	for _, tt := range tests {
		got, err := r.Apply(tt.pkt)
		if err != nil {
			t.Fatalf("Apply(%s) error = %v", tt.pkt.ID, err)
		}
		if got.Label != tt.want {
			t.Errorf("label for %s = %q, want %q", tt.pkt.ID, got.Label, tt.want)
		}
		if mk, _ := view.marker(tt.pkt.ID); mk.Label != tt.want {
			t.Errorf("marker label for %s = %q, want %q", tt.pkt.ID, mk.Label, tt.want)
		}
	}
}

func TestReconciler_SelfEcho(t *testing.T) {
	view := newRecordingMap()
	r := NewReconciler(view, 0)

	r.UpdateSelf(Position{Latitude: 5, Longitude: 5})
	if mk, ok := view.marker("me"); !ok || mk.Label != "You ()" || mk.Color != "#000000" {
		t.Errorf("placeholder self marker = %+v, %v", mk, ok)
	}

	r.SetSelf("self-connection-id", "Ann")
	if short, color := r.Self(); short != "self-c" || color != "#000000" {
		t.Errorf("Self() before echo = %q, %q", short, color)
	}

	got, err := r.Apply(models.LocationPacket{
		ID: "self-connection-id", ShortID: "selfco", Color: "#abcdef", Latitude: 5, Longitude: 5, Name: "Ann",
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Class != ClassSelf {
		t.Errorf("class = %v, want self", got.Class)
	}
	if r.Len() != 0 {
		t.Errorf("self echo created a remote marker state")
	}
	if short, color := r.Self(); short != "selfco" || color != "#abcdef" {
		t.Errorf("Self() after echo = %q, %q", short, color)
	}

	r.UpdateSelf(Position{Latitude: 6, Longitude: 6})
	if _, ok := view.marker("me"); ok {
		t.Error("placeholder self marker should be replaced once the id is known")
	}
	mk, ok := view.marker("self-connection-id")
	if !ok || !mk.Self || mk.Label != "You (Ann)" || mk.Color != "#abcdef" || mk.Latitude != 6 {
		t.Errorf("self marker = %+v, %v", mk, ok)
	}
	if view.centers != 1 {
		t.Errorf("map centered %d times, want 1", view.centers)
	}
}

func TestReconciler_RemoveAndReset(t *testing.T) {
	view := newRecordingMap()
	r := NewReconciler(view, 0)

	_, _ = r.Apply(packet("peer-a", "Ann", 1, 1))
	_, _ = r.Apply(packet("peer-b", "Bob", 2, 2))
	r.SetSelf("self-id", "Me")
	r.UpdateSelf(Position{Latitude: 3, Longitude: 3})

	if !r.Remove("peer-a") {
		t.Error("Remove(peer-a) = false, want true")
	}
	if r.Remove("peer-a") {
		t.Error("second Remove(peer-a) = true, want false")
	}
	if _, ok := r.Get("peer-a"); ok {
		t.Error("state for peer-a survived removal")
	}

	// A returning peer is new again.
	if got, _ := r.Apply(packet("peer-a", "Ann", 1, 1)); got.Class != ClassNew {
		t.Errorf("class after removal = %v, want new", got.Class)
	}

	if n := r.Reset(); n != 2 {
		t.Errorf("Reset() = %d, want 2", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len() after Reset = %d", r.Len())
	}
	if _, ok := view.marker("self-id"); !ok {
		t.Error("Reset removed the self marker")
	}
}

func TestReconciler_MissingID(t *testing.T) {
	r := NewReconciler(newRecordingMap(), 0)
	if _, err := r.Apply(models.LocationPacket{Latitude: 1}); !errors.Is(err, ErrMissingID) {
		t.Errorf("Apply() error = %v, want ErrMissingID", err)
	}
}

func TestClass_String(t *testing.T) {
	for c, want := range map[Class]string{
		ClassSelf: "self", ClassNew: "new", ClassMoved: "moved", ClassUnchanged: "unchanged", Class(9): "Class(9)",
	} {
		if got := c.String(); got != want {
			t.Errorf("Class(%d).String() = %q, want %q", int(c), got, want)
		}
	}
}
