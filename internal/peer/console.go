// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package peer

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleMap prints marker changes as text lines.
type ConsoleMap struct {
	mu    sync.Mutex
	w     io.Writer
	shown map[string]string
}

// NewConsoleMap writes to w.
func NewConsoleMap(w io.Writer) *ConsoleMap {
	return &ConsoleMap{w: w, shown: make(map[string]string)}
}

// Upsert implements Map.
func (c *ConsoleMap) Upsert(m Marker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.Self {
		// The self marker follows every fix; only the first one is printed.
		if _, ok := c.shown[m.ID]; ok {
			c.shown[m.ID] = m.Label
			return
		}
	}
	verb := "moved"
	if _, ok := c.shown[m.ID]; !ok {
		verb = "placed"
	}
	c.shown[m.ID] = m.Label
	fmt.Fprintf(c.w, "marker %-6s %s %s at (%.4f, %.4f)\n", verb, m.Label, m.Color, m.Latitude, m.Longitude)
}

// Remove implements Map.
func (c *ConsoleMap) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	label, ok := c.shown[id]
	if !ok {
		return
	}
	delete(c.shown, id)
	fmt.Fprintf(c.w, "marker %-6s %s left the map\n", "gone", label)
}

// Center implements Map.
func (c *ConsoleMap) Center(latitude, longitude float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "map centered on (%.4f, %.4f)\n", latitude, longitude)
}

// ConsoleNotifier prints notifications as text lines.
type ConsoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleNotifier writes to w.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

// Notify implements Notifier.
func (c *ConsoleNotifier) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%s] %s %s\n", n.Kind, n.Title, n.Body)
}
