// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/waymark/internal/api"
	"github.com/tomtom215/waymark/internal/config"
	"github.com/tomtom215/waymark/internal/logging"
	"github.com/tomtom215/waymark/internal/relay"
	"github.com/tomtom215/waymark/internal/session"
	"github.com/tomtom215/waymark/internal/supervisor"
	"github.com/tomtom215/waymark/internal/supervisor/services"
	ws "github.com/tomtom215/waymark/internal/websocket"
)

// app is the fully wired relay server.
type app struct {
	cfg      *config.Config
	registry *session.Registry
	hub      *ws.Hub
	server   *http.Server
	tree     *supervisor.SupervisorTree
}

// newApp builds registry, relay, hub, router and supervisor tree from cfg.
// Nothing is started until run.
func newApp(cfg *config.Config) (*app, error) {
	registry := session.NewRegistry(cfg.Relay.MaxNameLength)
	rel := relay.New(registry, session.NewLimiter(cfg.Relay.MinInterval))

	hub := ws.NewHub(relay.NewDispatcher(rel), ws.Config{
		SendBuffer:     cfg.Relay.SendBuffer,
		InboundBuffer:  cfg.Relay.InboundBuffer,
		MaxMessageSize: cfg.Relay.MaxMessageSize,
		MessageRate:    cfg.Relay.MessageRate,
		MessageBurst:   cfg.Relay.MessageBurst,
	})

	handler := api.NewHandler(hub, registry, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	return &app{
		cfg:      cfg,
		registry: registry,
		hub:      hub,
		server:   server,
		tree:     tree,
	}, nil
}

// run serves until ctx is canceled, then waits for the tree to stop and
// reports services that ignored the shutdown.
func (a *app) run(ctx context.Context) error {
	logging.Info().
		Str("addr", a.server.Addr).
		Str("environment", a.cfg.Server.Environment).
		Dur("min_interval", a.cfg.Relay.MinInterval).
		Msg("Starting supervisor tree")

	errCh := a.tree.ServeBackground(ctx)

	// ServeBackground delivers exactly one value and never closes.
	var err error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		err = <-errCh
	case err = <-errCh:
	}

	var runErr error
	if err != nil && !errors.Is(err, context.Canceled) {
		runErr = err
	}

	unstopped, _ := a.tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().
		Int("sessions", a.registry.Len()).
		Int("connections", a.hub.GetClientCount()).
		Msg("Relay stopped")
	return runErr
}
