// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package relay

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tomtom215/waymark/internal/logging"
	"github.com/tomtom215/waymark/internal/metrics"
	"github.com/tomtom215/waymark/internal/models"
)

const tracerName = "github.com/tomtom215/waymark/internal/relay"

// Lifecycle pseudo-events used for spans and metrics.
const (
	eventConnect    = "connect"
	eventDisconnect = "disconnect"
)

// HandlerFunc handles one inbound event for connection id.
type HandlerFunc func(ctx context.Context, id string, data json.RawMessage) ([]Effect, error)

// Dispatcher routes inbound wire events to typed handlers. Every call gets
// a span from the global OpenTelemetry tracer provider; with no provider
// configured the spans are no-ops.
type Dispatcher struct {
	relay    *Relay
	handlers map[string]HandlerFunc
	tracer   trace.Tracer
}

// NewDispatcher wires the relay's handlers to their event names.
func NewDispatcher(r *Relay) *Dispatcher {
	d := &Dispatcher{
		relay:    r,
		handlers: make(map[string]HandlerFunc),
		tracer:   otel.Tracer(tracerName),
	}
	d.Handle(models.EventSetName, r.SetName)
	d.Handle(models.EventSendLocation, r.SendLocation)
	d.Handle(models.EventPing, pong)
	return d
}

// Handle registers fn for event, replacing any existing handler.
func (d *Dispatcher) Handle(event string, fn HandlerFunc) {
	d.handlers[event] = fn
}

// Events returns the registered event names, sorted.
func (d *Dispatcher) Events() []string {
	events := make([]string, 0, len(d.handlers))
	for event := range d.handlers {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

// Relay returns the underlying state machine.
func (d *Dispatcher) Relay() *Relay {
	return d.relay
}

// Connect runs the connection-open transition.
func (d *Dispatcher) Connect(ctx context.Context, id string) ([]Effect, error) {
	return d.run(ctx, eventConnect, id, func(ctx context.Context) ([]Effect, error) {
		return d.relay.Connect(ctx, id)
	})
}

// Disconnect runs the teardown transition.
func (d *Dispatcher) Disconnect(ctx context.Context, id string) ([]Effect, error) {
	return d.run(ctx, eventDisconnect, id, func(ctx context.Context) ([]Effect, error) {
		return d.relay.Disconnect(ctx, id)
	})
}

// Dispatch routes msg from connection id. Unknown event names are dropped
// with ErrUnknownEvent.
func (d *Dispatcher) Dispatch(ctx context.Context, id string, msg models.Message) ([]Effect, error) {
	fn, ok := d.handlers[msg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Type)
	}
	return d.run(ctx, msg.Type, id, func(ctx context.Context) ([]Effect, error) {
		return fn(ctx, id, msg.Data)
	})
}

func (d *Dispatcher) run(ctx context.Context, event, id string, fn func(context.Context) ([]Effect, error)) ([]Effect, error) {
	ctx = logging.ContextWithConnID(ctx, id)
	ctx, span := d.tracer.Start(ctx, "waymark.relay."+event,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("waymark.event", event),
			attribute.String("waymark.conn_id", id),
		),
	)
	defer span.End()

	start := time.Now()
	effects, err := fn(ctx)
	metrics.RecordDispatch(event, time.Since(start))

	switch {
	case err == nil:
		span.SetAttributes(attribute.Int("waymark.effects", len(effects)))
		span.SetStatus(codes.Ok, "")
	case IsDrop(err):
		span.SetAttributes(attribute.String("waymark.drop_reason", err.Error()))
		logging.Ctx(ctx).Debug().Str("event", event).Err(err).Msg("event dropped")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Ctx(ctx).Warn().Str("event", event).Err(err).Msg("event failed")
	}
	return effects, err
}

func pong(_ context.Context, id string, _ json.RawMessage) ([]Effect, error) {
	return []Effect{Unicast(id, models.EventPong, nil)}, nil
}
