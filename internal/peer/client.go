// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package peer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/waymark/internal/config"
	"github.com/tomtom215/waymark/internal/logging"
	"github.com/tomtom215/waymark/internal/metrics"
	"github.com/tomtom215/waymark/internal/models"
	"github.com/tomtom215/waymark/internal/session"
)

// BreakerName labels the dial circuit breaker in logs and metrics.
const BreakerName = "peer-dial"

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	frameBuffer             = 64
)

// Config controls one peer connection.
type Config struct {
	ServerURL        string
	Name             string
	SendInterval     time.Duration
	MoveThreshold    float64
	ReconnectMin     time.Duration
	ReconnectMax     time.Duration
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// ConfigFrom maps the loaded peer settings.
func ConfigFrom(pc config.PeerConfig) Config {
	return Config{
		ServerURL:        pc.ServerURL,
		Name:             pc.Name,
		SendInterval:     pc.SendInterval,
		MoveThreshold:    pc.MoveThreshold,
		ReconnectMin:     pc.ReconnectMin,
		ReconnectMax:     pc.ReconnectMax,
		BreakerFailures:  pc.BreakerFailures,
		BreakerOpenDelay: pc.BreakerOpenDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = session.DefaultName
	}
	if c.SendInterval <= 0 {
		c.SendInterval = time.Second
	}
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = 500 * time.Millisecond
	}
	if c.ReconnectMax < c.ReconnectMin {
		c.ReconnectMax = c.ReconnectMin
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerOpenDelay <= 0 {
		c.BreakerOpenDelay = 30 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	return c
}

// Peer is a headless map client. It streams positions from a Source to the
// relay and reconciles everyone else's packets onto a Map.
type Peer struct {
	cfg      Config
	source   Source
	recon    *Reconciler
	notify   *NotificationDispatcher
	dialer   *websocket.Dialer
	breaker  *gobreaker.CircuitBreaker[*websocket.Conn]
	throttle *rate.Limiter
}

// New builds a Peer. notifier may be nil.
func New(cfg Config, source Source, view Map, notifier Notifier) *Peer {
	cfg = cfg.withDefaults()

	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[*websocket.Conn](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	recon := NewReconciler(view, cfg.MoveThreshold)
	recon.SetSelfName(cfg.Name)

	return &Peer{
		cfg:      cfg,
		source:   source,
		recon:    recon,
		notify:   NewNotificationDispatcher(notifier),
		dialer:   &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		breaker:  breaker,
		throttle: rate.NewLimiter(rate.Every(cfg.SendInterval), 1),
	}
}

// Reconciler exposes the peer's marker state.
func (p *Peer) Reconciler() *Reconciler {
	return p.recon
}

// Run connects, reconnects and relays until ctx is canceled. The
// geolocation source is watched once for the lifetime of Run; positions
// that arrive while disconnected still move the self marker but are not
// sent.
func (p *Peer) Run(ctx context.Context) error {
	positions, geoErrs := p.source.Watch(ctx)

	var (
		l       *link
		frames  <-chan []byte
		linkErr <-chan error
		attempt int
	)
	retry := make(chan time.Time, 1)
	retry <- time.Now()
	var retryC <-chan time.Time = retry

	drop := func(reason error) {
		logging.Warn().Err(reason).Str("server", p.cfg.ServerURL).Msg("Relay connection lost")
		// readLoop reports its error only after queueing every frame read
		// before it, so a trailing user-disconnect is handled here.
		for _, frame := range l.pending() {
			p.handleFrame(frame)
		}
		l.close()
		l, frames, linkErr = nil, nil, nil
		metrics.RecordPeerReconnect()
		retryC = time.After(p.backoff(0))
	}
	defer func() {
		if l != nil {
			l.close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-retryC:
			retryC = nil
			next, err := p.connect(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				delay := p.backoff(attempt)
				attempt++
				metrics.RecordPeerReconnect()
				logging.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("Relay dial failed")
				retryC = time.After(delay)
				continue
			}
			attempt = 0
			l, frames, linkErr = next, next.frames, next.errc

			if n := p.recon.Reset(); n > 0 {
				logging.Debug().Int("markers", n).Msg("Cleared remote markers after reconnect")
			}
			if err := l.send(models.EventSetName, p.cfg.Name, p.cfg.WriteTimeout); err != nil {
				drop(err)
			}

		case pos, ok := <-positions:
			if !ok {
				positions = nil
				logging.Info().Msg("Geolocation source stopped")
				continue
			}
			p.recon.UpdateSelf(pos)
			if l == nil || !p.throttle.Allow() {
				continue
			}
			req := models.LocationRequest{Latitude: pos.Latitude, Longitude: pos.Longitude}
			if err := l.send(models.EventSendLocation, req, p.cfg.WriteTimeout); err != nil {
				drop(err)
			}

		case err, ok := <-geoErrs:
			if !ok {
				geoErrs = nil
				continue
			}
			logGeolocationError(err)

		case frame := <-frames:
			p.handleFrame(frame)

		case err := <-linkErr:
			drop(err)
		}
	}
}

func (p *Peer) connect(ctx context.Context) (*link, error) {
	conn, err := p.breaker.Execute(func() (*websocket.Conn, error) {
		conn, _, err := p.dialer.DialContext(ctx, p.cfg.ServerURL, nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", p.cfg.ServerURL, err)
		}
		return conn, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordBreakerRequest(BreakerName, "rejected")
		} else {
			metrics.RecordBreakerRequest(BreakerName, "failure")
		}
		return nil, err
	}
	metrics.RecordBreakerRequest(BreakerName, "success")
	logging.Info().Str("server", p.cfg.ServerURL).Msg("Connected to relay")
	return newLink(conn), nil
}

// backoff doubles from ReconnectMin per attempt, capped at ReconnectMax.
func (p *Peer) backoff(attempt int) time.Duration {
	d := p.cfg.ReconnectMin
	for i := 0; i < attempt && d < p.cfg.ReconnectMax; i++ {
		d *= 2
	}
	if d > p.cfg.ReconnectMax {
		d = p.cfg.ReconnectMax
	}
	return d
}

func (p *Peer) handleFrame(frame []byte) {
	msg, err := models.DecodeMessage(frame)
	if err != nil {
		logging.Debug().Err(err).Msg("Ignoring malformed frame")
		return
	}

	switch msg.Type {
	case models.EventConnected:
		var n models.ConnectedNotice
		if err := msg.DecodeData(&n); err != nil || n.ID == "" {
			logging.Debug().Err(err).Msg("Ignoring connected notice without id")
			return
		}
		p.recon.SetSelf(n.ID, p.cfg.Name)
		logging.Info().Str("conn_id", n.ID).Str("short_id", n.ShortID).Msg("Session assigned")

	case models.EventReceiveLocation:
		var pkt models.LocationPacket
		if err := msg.DecodeData(&pkt); err != nil {
			logging.Debug().Err(err).Msg("Ignoring undecodable location packet")
			return
		}
		t, err := p.recon.Apply(pkt)
		if err != nil {
			return
		}
		p.notify.Dispatch(t)

	case models.EventUserDisconnect:
		if id := disconnectID(msg.Data); id != "" {
			p.recon.Remove(id)
		}

	case models.EventPong:

	default:
		logging.Debug().Str("event", msg.Type).Msg("Ignoring unknown event")
	}
}

// disconnectID accepts {"id": "..."} or a bare "..." payload.
func disconnectID(data json.RawMessage) string {
	var notice models.DisconnectNotice
	if err := json.Unmarshal(data, &notice); err == nil {
		return notice.ID
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id
	}
	return ""
}

func logGeolocationError(err error) {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrGeolocationUnsupported):
		logging.Error().Err(err).Msg("Geolocation unavailable; sharing disabled")
	default:
		logging.Error().Err(err).Msg("Geolocation error")
	}
}

// link is one live connection. The Run loop is its only writer; readLoop
// is its only reader.
type link struct {
	conn   *websocket.Conn
	frames chan []byte
	errc   chan error
	closed chan struct{}
	once   sync.Once
}

func newLink(conn *websocket.Conn) *link {
	l := &link{
		conn:   conn,
		frames: make(chan []byte, frameBuffer),
		errc:   make(chan error, 1),
		closed: make(chan struct{}),
	}
	go l.readLoop()
	return l
}

func (l *link) readLoop() {
	for {
		_, frame, err := l.conn.ReadMessage()
		if err != nil {
			l.errc <- err
			return
		}
		select {
		case l.frames <- frame:
		case <-l.closed:
			return
		}
	}
}

// pending returns the frames already queued without waiting for more.
func (l *link) pending() [][]byte {
	var out [][]byte
	for {
		select {
		case frame := <-l.frames:
			out = append(out, frame)
		default:
			return out
		}
	}
}

func (l *link) send(event string, payload interface{}, timeout time.Duration) error {
	frame, err := models.EncodeMessage(event, payload)
	if err != nil {
		return err
	}
	if err := l.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return l.conn.WriteMessage(websocket.TextMessage, frame)
}

func (l *link) close() {
	l.once.Do(func() {
		close(l.closed)
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = l.conn.Close()
	})
}
