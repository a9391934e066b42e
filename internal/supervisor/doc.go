// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

/*
Package supervisor provides process supervision for the Waymark server
using suture v4.

# Overview

	RootSupervisor ("waymark")
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in one layer is restarted inside that layer. The hub can restart
without closing the listener, and an HTTP listener failure backs off
without losing the hub.

# Logging

Supervisor events (service failures, restarts, backoff, timeouts) are
written through sutureslog to a *slog.Logger. The server passes
logging.NewSlogLogger() so they land in the same zerolog stream as the
rest of the process.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

	if report, _ := tree.UnstoppedServiceReport(); len(report) > 0 {
	    // log services that ignored cancellation
	}
*/
package supervisor
