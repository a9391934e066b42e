// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/waymark/internal/config"
	"github.com/tomtom215/waymark/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Int("max_name_length", cfg.Relay.MaxNameLength).
		Strs("cors_origins", cfg.Security.CORSOrigins).
		Msg("Configuration loaded")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS_ORIGINS=* in production: any site can embed the map and open websockets to this relay")
		logging.Warn().Msg("Set explicit origins, e.g. CORS_ORIGINS=https://map.example.com")
	}

	if path := config.ConfigFile(); path != "" {
		err := config.WatchConfigFile(path, func() {
			logging.Warn().Str("path", path).Msg("Configuration file changed; restart to apply")
		})
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Cannot watch configuration file")
		}
	}

	a, err := newApp(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := a.run(ctx); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel already called
	}

	logging.Info().Msg("Application stopped gracefully")
}
