// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package relay

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/waymark/internal/metrics"
	"github.com/tomtom215/waymark/internal/models"
)

func setupDispatcher(t *testing.T) (*Dispatcher, *fakeClock) {
	t.Helper()
	r, clock := setupRelay(t)
	return NewDispatcher(r), clock
}

func msg(event string, data json.RawMessage) models.Message {
	return models.Message{Type: event, Data: data}
}

func TestNewDispatcher_Events(t *testing.T) {
	d, _ := setupDispatcher(t)

	want := []string{models.EventPing, models.EventSendLocation, models.EventSetName}
	if got := d.Events(); !reflect.DeepEqual(got, want) {
		t.Errorf("Events() = %v, want %v", got, want)
	}
	if d.Relay() == nil {
		t.Error("Relay() returned nil")
	}
}

func TestDispatch_FullFlow(t *testing.T) {
	d, clock := setupDispatcher(t)
	ctx := context.Background()

	effects, err := d.Connect(ctx, "conn-a")
	if err != nil || len(effects) != 1 || effects[0].Event != models.EventConnected {
		t.Fatalf("Connect = %+v, %v", effects, err)
	}

	if _, err := d.Dispatch(ctx, "conn-a", msg(models.EventSetName, rawString("Ann"))); err != nil {
		t.Fatalf("set-name failed: %v", err)
	}

	effects, err = d.Dispatch(ctx, "conn-a", msg(models.EventSendLocation, location(10, 20)))
	if err != nil {
		t.Fatalf("send-location failed: %v", err)
	}
	p := packetOf(t, effects)
	if p.Name != "Ann" || p.Latitude != 10 || p.Longitude != 20 {
		t.Errorf("unexpected packet %+v", p)
	}

	clock.Advance(100 * time.Millisecond)
	if _, err := d.Dispatch(ctx, "conn-a", msg(models.EventSendLocation, location(10, 21))); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}

	effects, err = d.Disconnect(ctx, "conn-a")
	if err != nil || len(effects) != 1 || effects[0].Event != models.EventUserDisconnect {
		t.Errorf("Disconnect = %+v, %v", effects, err)
	}
}

func TestDispatch_UnknownEvent(t *testing.T) {
	d, _ := setupDispatcher(t)

	effects, err := d.Dispatch(context.Background(), "conn-a", msg("teleport", nil))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("expected ErrUnknownEvent, got %v", err)
	}
	if len(effects) != 0 {
		t.Errorf("expected no effects, got %+v", effects)
	}

	// Server-to-client events are not accepted inbound.
	for _, event := range []string{models.EventReceiveLocation, models.EventUserDisconnect, models.EventConnected} {
		if _, err := d.Dispatch(context.Background(), "conn-a", msg(event, nil)); !errors.Is(err, ErrUnknownEvent) {
			t.Errorf("%s: expected ErrUnknownEvent, got %v", event, err)
		}
	}
}

func TestDispatch_Ping(t *testing.T) {
	d, _ := setupDispatcher(t)

	effects, err := d.Dispatch(context.Background(), "conn-a", msg(models.EventPing, nil))
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if len(effects) != 1 || effects[0].Target != "conn-a" || effects[0].Event != models.EventPong {
		t.Errorf("expected pong unicast, got %+v", effects)
	}
}

func TestDispatch_CustomHandler(t *testing.T) {
	d, _ := setupDispatcher(t)
	boom := errors.New("boom")

	var gotID string
	d.Handle("custom", func(_ context.Context, id string, _ json.RawMessage) ([]Effect, error) {
		gotID = id
		return nil, boom
	})

	if _, err := d.Dispatch(context.Background(), "conn-z", msg("custom", nil)); !errors.Is(err, boom) {
		t.Errorf("expected handler error, got %v", err)
	}
	if gotID != "conn-z" {
		t.Errorf("handler got id %q", gotID)
	}
}

func TestDispatch_RecordsLocationOutcomes(t *testing.T) {
	d, _ := setupDispatcher(t)
	ctx := context.Background()

	unnamed := metrics.LocationUpdates.WithLabelValues(metrics.ResultUnnamed)
	accepted := metrics.LocationUpdates.WithLabelValues(metrics.ResultAccepted)
	invalid := metrics.LocationUpdates.WithLabelValues(metrics.ResultInvalid)
	beforeUnnamed := testutil.ToFloat64(unnamed)
	beforeAccepted := testutil.ToFloat64(accepted)
	beforeInvalid := testutil.ToFloat64(invalid)

	if _, err := d.Connect(ctx, "m"); err != nil {
		t.Fatal(err)
	}
	_, _ = d.Dispatch(ctx, "m", msg(models.EventSendLocation, location(1, 1)))
	_, _ = d.Dispatch(ctx, "m", msg(models.EventSetName, rawString("M")))
	_, _ = d.Dispatch(ctx, "m", msg(models.EventSendLocation, json.RawMessage(`{"latitude":100,"longitude":1}`)))
	_, _ = d.Dispatch(ctx, "m", msg(models.EventSendLocation, location(1, 1)))

	if got := testutil.ToFloat64(unnamed) - beforeUnnamed; got != 1 {
		t.Errorf("unnamed delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(invalid) - beforeInvalid; got != 1 {
		t.Errorf("invalid delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(accepted) - beforeAccepted; got != 1 {
		t.Errorf("accepted delta = %v, want 1", got)
	}
}
