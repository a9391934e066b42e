// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package config

import (
	"strings"
	"testing"
	"time"
)

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 3000, "0.0.0.0:3000"},
		{"", 8080, ":8080"},
		{"::1", 3000, "[::1]:3000"},
	}
	for _, tt := range tests {
		s := ServerConfig{Host: tt.host, Port: tt.port}
		if got := s.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfig_CORSHelpers(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if !cfg.HasWildcardCORS() {
		t.Error("default origins should be a wildcard")
	}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("development mode should not warn")
	}

	cfg.Server.Environment = "production"
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("production with wildcard should warn")
	}

	cfg.Security.CORSOrigins = []string{"https://map.example"}
	if cfg.HasWildcardCORS() || cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origin should not count as wildcard")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "port"},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, "HTTP_TIMEOUT"},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "SHUTDOWN_TIMEOUT"},
		{"zero min interval allowed", func(c *Config) { c.Relay.MinInterval = 0 }, ""},
		{"min interval too long", func(c *Config) { c.Relay.MinInterval = 2 * time.Minute }, "RELAY_MIN_INTERVAL"},
		{"zero name length", func(c *Config) { c.Relay.MaxNameLength = 0 }, "max_name_length"},
		{"zero send buffer", func(c *Config) { c.Relay.SendBuffer = 0 }, "send_buffer"},
		{"tiny max message", func(c *Config) { c.Relay.MaxMessageSize = 10 }, "max_message_size"},
		{"burst below rate", func(c *Config) { c.Relay.MessageBurst = 5 }, "WS_MESSAGE_BURST"},
		{"empty origins", func(c *Config) { c.Security.CORSOrigins = nil }, "CORS_ORIGINS"},
		{"origin without scheme", func(c *Config) { c.Security.CORSOrigins = []string{"map.example"} }, "CORS_ORIGINS"},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit zero but disabled", func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}, ""},
		{"rate window too short", func(c *Config) { c.Security.RateLimitWindow = time.Millisecond }, "RATE_LIMIT_WINDOW"},
		{"proxy cidr", func(c *Config) { c.Security.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.1"} }, ""},
		{"bad proxy", func(c *Config) { c.Security.TrustedProxies = []string{"proxy.local"} }, "TRUSTED_PROXIES"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"empty log format", func(c *Config) { c.Logging.Format = "" }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"empty peer url", func(c *Config) { c.Peer.ServerURL = "" }, "server_url"},
		{"http peer url", func(c *Config) { c.Peer.ServerURL = "http://localhost:3000/ws" }, "WAYMARK_SERVER"},
		{"wss peer url", func(c *Config) { c.Peer.ServerURL = "wss://map.example/ws" }, ""},
		{"negative move threshold", func(c *Config) { c.Peer.MoveThreshold = -1 }, "move_threshold"},
		{"zero send interval", func(c *Config) { c.Peer.SendInterval = 0 }, "PEER_SEND_INTERVAL"},
		{"reconnect max below min", func(c *Config) { c.Peer.ReconnectMax = time.Millisecond }, "PEER_RECONNECT_MIN"},
		{"zero breaker failures", func(c *Config) { c.Peer.BreakerFailures = 0 }, "breaker_failures"},
		{"zero breaker delay", func(c *Config) { c.Peer.BreakerOpenDelay = 0 }, "PEER_BREAKER_OPEN_DELAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err.Error(), tt.wantErr)
			}
		})
	}
}
