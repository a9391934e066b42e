// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package services

import (
	"context"
	"errors"
	"fmt"
)

// ContextHub matches *websocket.Hub's run loop. Declared here so the
// services package does not import websocket.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService runs the relay hub under supervision.
//
// The hub owns the session registry view of every live connection, so a
// restart after a panic or unexpected return starts from an empty client
// set; connections that were open reconnect on their own.
//
//	hub := websocket.NewHub(dispatcher, hubConfig)
//	tree.AddMessagingService(services.NewWebSocketHubService(hub))
type WebSocketHubService struct {
	hub  ContextHub
	name string
}

// NewWebSocketHubService wraps hub as a suture.Service.
func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	return &WebSocketHubService{
		hub:  hub,
		name: "websocket-hub",
	}
}

// Serve implements suture.Service. A return while ctx is still live is
// reported as an error so suture restarts the hub.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	err := w.hub.RunWithContext(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("hub stopped unexpectedly")
	}
	return fmt.Errorf("%s: %w", w.name, err)
}

// String implements fmt.Stringer for suture log events.
func (w *WebSocketHubService) String() string {
	return w.name
}
