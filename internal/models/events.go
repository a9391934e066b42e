// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package models

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Event names carried in the "type" field of every frame.
const (
	EventConnected       = "connected"
	EventSetName         = "set-name"
	EventSendLocation    = "send-location"
	EventReceiveLocation = "receive-location"
	EventUserDisconnect  = "user-disconnect"
	EventPing            = "ping"
	EventPong            = "pong"
)

// ErrMalformedFrame is returned by DecodeMessage for frames that are not a
// JSON object with a non-empty string "type".
var ErrMalformedFrame = errors.New("malformed frame")

// Message is the wire envelope: {"type": "<event>", "data": <payload>}.
// Data is kept raw so each handler decodes only the shape it expects.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EncodeMessage builds a single text frame for event with payload.
// A nil payload omits the data field.
func EncodeMessage(event string, payload interface{}) ([]byte, error) {
	msg := Message{Type: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", event, err)
		}
		msg.Data = data
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return frame, nil
}

// DecodeMessage parses one inbound text frame.
func DecodeMessage(frame []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	return msg, nil
}

// DecodeData unmarshals the envelope payload into v.
func (m Message) DecodeData(v interface{}) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s: empty data", m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%s: %w", m.Type, err)
	}
	return nil
}
