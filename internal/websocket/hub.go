// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/waymark/internal/logging"
	"github.com/tomtom215/waymark/internal/metrics"
	"github.com/tomtom215/waymark/internal/models"
	"github.com/tomtom215/waymark/internal/relay"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// EventHandler is the protocol logic the hub drives. relay.Dispatcher
// implements it.
type EventHandler interface {
	Connect(ctx context.Context, id string) ([]relay.Effect, error)
	Disconnect(ctx context.Context, id string) ([]relay.Effect, error)
	Dispatch(ctx context.Context, id string, msg models.Message) ([]relay.Effect, error)
}

// Config tunes per-client buffering and inbound limits.
type Config struct {
	// SendBuffer is the number of outbound frames queued per client. A
	// client whose queue is full is evicted.
	SendBuffer int

	// InboundBuffer is the hub's queue of decoded frames from all clients.
	InboundBuffer int

	// MaxMessageSize is the largest inbound frame accepted, in bytes.
	MaxMessageSize int64

	// MessageRate and MessageBurst bound inbound frames per client
	// (token bucket). Frames over the limit are discarded before decoding.
	MessageRate  float64
	MessageBurst int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SendBuffer:     256,
		InboundBuffer:  1024,
		MaxMessageSize: 4096,
		MessageRate:    20,
		MessageBurst:   40,
	}
}

type inboundMessage struct {
	client *Client
	msg    models.Message
}

// Hub owns every connection and is the only goroutine that runs protocol
// handlers. Lifecycle events, inbound frames and fanout are all serialized
// through RunWithContext, so one connection's events are handled to
// completion before the next.
type Hub struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	inbound    chan inboundMessage
	handler    EventHandler
	config     Config

	// done belongs to the current run. It is closed when that run returns
	// and replaced under mu in the same step, so a reader always sees either
	// a live run's channel or the next run's.
	done chan struct{}
	mu   sync.RWMutex
}

// NewHub creates a Hub that drives handler.
func NewHub(handler EventHandler, cfg Config) *Hub {
	defaults := DefaultConfig()
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}
	if cfg.InboundBuffer <= 0 {
		cfg.InboundBuffer = defaults.InboundBuffer
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.MessageRate <= 0 {
		cfg.MessageRate = defaults.MessageRate
	}
	if cfg.MessageBurst <= 0 {
		cfg.MessageBurst = defaults.MessageBurst
	}

	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		inbound:    make(chan inboundMessage, cfg.InboundBuffer),
		handler:    handler,
		config:     cfg,
		done:       make(chan struct{}),
	}
}

// Join hands a new client to the hub. Between supervisor restarts it waits
// for the next run; it returns false once ctx is done.
func (h *Hub) Join(ctx context.Context, c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// leave unregisters c from the run tracking it. It gives up once the hub has
// evicted c, which every run does for its clients before it returns.
func (h *Hub) leave(c *Client) {
	for {
		done := h.doneChan()
		if c.evicted.Load() {
			return
		}
		select {
		case h.Unregister <- c:
			return
		case <-done:
		}
	}
}

// deliver queues an inbound frame from c. It returns false if c has been
// evicted.
func (h *Hub) deliver(c *Client, msg models.Message) bool {
	for {
		done := h.doneChan()
		if c.evicted.Load() {
			return false
		}
		select {
		case h.inbound <- inboundMessage{client: c, msg: msg}:
			return true
		case <-done:
		}
	}
}

func (h *Hub) doneChan() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.done
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err(). It may be called again after returning,
// which is how the supervisor restarts it. Runs must not overlap.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister)
// - Priority 3: Inbound frames
// A disconnect is therefore always processed before any frame the same
// client queued behind it, and those frames are dropped.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.mu.RLock()
	done := h.done
	h.mu.RUnlock()
	defer func() {
		h.mu.Lock()
		close(done)
		h.done = make(chan struct{})
		h.mu.Unlock()
	}()

	for {
		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.register(ctx, client)
			continue
		case client := <-h.Unregister:
			h.unregister(ctx, client)
			continue
		default:
		}

		// Priority 3: Handle inbound frames or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(ctx, client)
		case client := <-h.Unregister:
			h.unregister(ctx, client)
		case in := <-h.inbound:
			h.handleInbound(ctx, in)
		}
	}
}

func (h *Hub) register(ctx context.Context, c *Client) {
	h.mu.Lock()
	if _, exists := h.clients[c.id]; exists {
		h.mu.Unlock()
		logging.Warn().Str("conn_id", c.id).Msg("duplicate websocket client id rejected")
		c.evicted.Store(true)
		close(c.send)
		return
	}
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	metrics.RecordConnection(true)
	logging.Info().
		Str("conn_id", c.id).
		Str("remote_addr", c.remoteAddr).
		Int("total_clients", total).
		Msg("websocket client connected")

	effects, err := h.handler.Connect(ctx, c.id)
	if err != nil {
		logging.Error().Err(err).Str("conn_id", c.id).Msg("failed to open session")
		h.evict(ctx, c.id, nil)
		return
	}
	h.apply(ctx, effects)
}

func (h *Hub) unregister(ctx context.Context, c *Client) {
	h.mu.RLock()
	current, ok := h.clients[c.id]
	h.mu.RUnlock()
	if !ok || current != c {
		return
	}

	var queue []relay.Effect
	h.evict(ctx, c.id, &queue)
	h.apply(ctx, queue)
}

func (h *Hub) handleInbound(ctx context.Context, in inboundMessage) {
	h.mu.RLock()
	current, ok := h.clients[in.client.id]
	h.mu.RUnlock()
	if !ok || current != in.client {
		return
	}

	metrics.RecordMessageReceived(in.msg.Type)
	effects, err := h.handler.Dispatch(ctx, in.client.id, in.msg)
	if err != nil && !relay.IsDrop(err) {
		logging.Error().Err(err).Str("conn_id", in.client.id).Str("event", in.msg.Type).Msg("failed to handle event")
	}
	h.apply(ctx, effects)
}

// evict removes a client, closes its send queue and runs the disconnect
// transition. Effects from the disconnect are appended to queue; with a nil
// queue they are dropped.
func (h *Hub) evict(ctx context.Context, id string, queue *[]relay.Effect) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		c.evicted.Store(true)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}

	metrics.RecordConnection(false)
	logging.Info().
		Str("conn_id", id).
		Int("total_clients", total).
		Msg("websocket client disconnected")

	effects, err := h.handler.Disconnect(ctx, id)
	if err != nil && !relay.IsDrop(err) {
		logging.Error().Err(err).Str("conn_id", id).Msg("failed to close session")
	}
	if queue != nil {
		*queue = append(*queue, effects...)
	}
}

// apply delivers effects. Clients that cannot keep up are evicted and
// their user-disconnect broadcast is delivered in the same pass.
func (h *Hub) apply(ctx context.Context, effects []relay.Effect) {
	queue := effects
	for len(queue) > 0 {
		effect := queue[0]
		queue = queue[1:]

		frame, err := models.EncodeMessage(effect.Event, effect.Payload)
		if err != nil {
			logging.Error().Err(err).Str("event", effect.Event).Msg("failed to encode frame")
			continue
		}

		var targets []*Client
		if effect.IsBroadcast() {
			targets = h.sortedClients()
		} else {
			h.mu.RLock()
			if c, ok := h.clients[effect.Target]; ok {
				targets = []*Client{c}
			}
			h.mu.RUnlock()
		}

		sent := 0
		for _, c := range targets {
			select {
			case c.send <- frame:
				sent++
			default:
				metrics.RecordWSError("slow_consumer")
				logging.Warn().Str("conn_id", c.id).Msg("client send buffer full, evicting")
				h.evict(ctx, c.id, &queue)
			}
		}
		metrics.RecordMessageSent(effect.Event, sent)
	}
}

// sortedClients returns a snapshot of clients in connection order.
// DETERMINISM: map iteration order is random; sorting by sequence number
// gives every broadcast the same delivery order.
func (h *Hub) sortedClients() []*Client {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].seq < clients[j].seq
	})
	return clients
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every client in connection order and tears down
// their sessions. No user-disconnect is sent since nobody is left to
// receive it.
func (h *Hub) closeAllClients(ctx context.Context) {
	for _, c := range h.sortedClients() {
		h.evict(context.WithoutCancel(ctx), c.id, nil)
	}
}

// logGracefulShutdown closes all clients and logs the shutdown.
//
// Note: ctx.Err() is NOT logged as an error because context cancellation
// is expected behavior during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients(ctx)

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}
