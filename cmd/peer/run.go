// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waymark/internal/config"
	"github.com/tomtom215/waymark/internal/logging"
	"github.com/tomtom215/waymark/internal/peer"
)

type runOptions struct {
	server   string
	name     string
	lat      float64
	lon      float64
	step     float64
	interval time.Duration
	route    string
	loop     bool
	logLevel string
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Join a relay and share a simulated position",
		Long: `Join a relay and share a simulated position.

Without --route the peer random-walks from --lat/--lon by up to --step
degrees per axis every --interval. With --route it replays the given
points instead.

Defaults come from WAYMARK_SERVER, WAYMARK_NAME and the other PEER_*
variables; flags override them.

Examples:
  waymark-peer run --name Ann --lat 51.5007 --lon -0.1246
  waymark-peer run --server wss://map.example.com/ws --route "10,20;10.0006,20" --loop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPeer(ctx, cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "", "Relay websocket URL (default from WAYMARK_SERVER)")
	f.StringVarP(&opts.name, "name", "n", "", "Display name (default from WAYMARK_NAME)")
	f.Float64Var(&opts.lat, "lat", 0, "Starting latitude")
	f.Float64Var(&opts.lon, "lon", 0, "Starting longitude")
	f.Float64Var(&opts.step, "step", 0.0005, "Maximum random-walk step in degrees")
	f.DurationVar(&opts.interval, "interval", time.Second, "Time between position fixes")
	f.StringVar(&opts.route, "route", "", `Replay route as "lat,lon;lat,lon"`)
	f.BoolVar(&opts.loop, "loop", false, "Repeat --route forever")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (default from LOG_LEVEL)")

	return cmd
}

func runPeer(ctx context.Context, cmd *cobra.Command, opts runOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		if !logging.ValidLevel(opts.logLevel) {
			return fmt.Errorf("invalid --log-level %q", opts.logLevel)
		}
		level = opts.logLevel
	}
	logging.Init(logging.Config{
		Level:  level,
		Format: "console",
		Output: cmd.ErrOrStderr(),
	})

	pc := peer.ConfigFrom(cfg.Peer)
	if opts.server != "" {
		pc.ServerURL = opts.server
	}
	if opts.name != "" {
		pc.Name = opts.name
	}

	src, err := buildSource(opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := peer.New(pc, src, peer.NewConsoleMap(out), peer.NewConsoleNotifier(out))

	logging.Info().Str("server", pc.ServerURL).Str("name", pc.Name).Msg("Joining relay")
	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// buildSource picks a replay route when one is given, otherwise a random
// walk from the starting point.
func buildSource(opts runOptions) (peer.Source, error) {
	if opts.interval <= 0 {
		return nil, fmt.Errorf("--interval must be positive, got %v", opts.interval)
	}
	if opts.route != "" {
		route, err := peer.ParseRoute(opts.route)
		if err != nil {
			return nil, fmt.Errorf("--route: %w", err)
		}
		return &peer.ReplaySource{Route: route, Interval: opts.interval, Loop: opts.loop}, nil
	}
	if opts.step < 0 {
		return nil, fmt.Errorf("--step must not be negative, got %v", opts.step)
	}
	return &peer.RandomWalkSource{
		Start:    peer.Position{Latitude: opts.lat, Longitude: opts.lon},
		Step:     opts.step,
		Interval: opts.interval,
	}, nil
}
