// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package peer

import "fmt"

// NotificationKind distinguishes the two notifications peers raise.
type NotificationKind string

const (
	NotifyJoined NotificationKind = "joined"
	NotifyMoved  NotificationKind = "moved"
)

// Notification is one user-facing alert.
type Notification struct {
	Kind  NotificationKind
	ID    string
	Title string
	Body  string
}

// Notifier delivers notifications (desktop toast, terminal line, test
// recorder).
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// NotificationDispatcher raises notifications from reconciler transitions.
// It never looks at coordinates itself; the move threshold lives in the
// Reconciler only.
type NotificationDispatcher struct {
	notifier Notifier
}

// NewNotificationDispatcher returns a dispatcher sending to n. A nil n
// disables notifications.
func NewNotificationDispatcher(n Notifier) *NotificationDispatcher {
	return &NotificationDispatcher{notifier: n}
}

// Dispatch raises "joined" for ClassNew and "moved" for ClassMoved. It
// reports whether a notification was sent.
func (d *NotificationDispatcher) Dispatch(t Transition) bool {
	if d == nil || d.notifier == nil {
		return false
	}

	var n Notification
	switch t.Class {
	case ClassNew:
		n = Notification{Kind: NotifyJoined, Title: t.Label + " joined the map!"}
	case ClassMoved:
		n = Notification{Kind: NotifyMoved, Title: t.Label + " moved!"}
	default:
		return false
	}
	n.ID = t.ID
	n.Body = fmt.Sprintf("Location: (%.4f, %.4f)", t.Latitude, t.Longitude)

	d.notifier.Notify(n)
	return true
}
