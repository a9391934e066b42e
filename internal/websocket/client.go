// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package websocket

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/waymark/internal/logging"
	"github.com/tomtom215/waymark/internal/metrics"
	"github.com/tomtom215/waymark/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// clientSeq orders clients by connection time.
// DETERMINISM: broadcasts iterate clients sorted by this sequence.
var clientSeq atomic.Uint64

// Client is a middleman between the websocket connection and the hub.
// It carries no protocol state; sessions live in the registry.
type Client struct {
	id         string
	seq        uint64
	remoteAddr string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	limiter    *rate.Limiter

	// evicted is set by the hub before it closes send.
	evicted atomic.Bool
}

// NewClient creates a Client for an upgraded connection. id must be unique
// for the life of the process.
func NewClient(hub *Hub, conn *websocket.Conn, id, remoteAddr string) *Client {
	return &Client{
		id:         id,
		seq:        clientSeq.Add(1),
		remoteAddr: remoteAddr,
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, hub.config.SendBuffer),
		limiter:    rate.NewLimiter(rate.Limit(hub.config.MessageRate), hub.config.MessageBurst),
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// readPump decodes frames from the connection and queues them on the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.RecordWSError("unexpected_close")
				logging.Warn().Err(err).Str("conn_id", c.id).Msg("unexpected websocket close error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if !c.limiter.Allow() {
			metrics.RecordWSError("flood")
			logging.Debug().Str("conn_id", c.id).Msg("inbound frame discarded: flood limit")
			continue
		}

		msg, err := models.DecodeMessage(frame)
		if err != nil {
			metrics.RecordWSError("malformed_frame")
			logging.Debug().Err(err).Str("conn_id", c.id).Msg("inbound frame discarded")
			continue
		}

		if !c.hub.deliver(c, msg) {
			return
		}
	}
}

// writePump pumps frames from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				err := c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
					logging.Debug().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logging.Debug().Err(err).Str("conn_id", c.id).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
