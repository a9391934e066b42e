// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in values for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Configuration Categories:
//   - Server: HTTP listener (port, host, timeouts, environment)
//   - Relay: Location relay policy and websocket buffers
//   - Security: CORS origins, HTTP rate limiting, trusted proxies
//   - Logging: Log level, format and caller info
//   - Peer: Defaults for the waymark-peer command line client
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	srv := &http.Server{Addr: cfg.Server.Addr()}
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Relay    RelayConfig    `koanf:"relay"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Peer     PeerConfig     `koanf:"peer"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"` // "development", "staging", "production" (default: "development")
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RelayConfig holds the location relay policy and the websocket hub
// buffer sizes.
type RelayConfig struct {
	// MinInterval is the minimum spacing between accepted location
	// updates from one session.
	MinInterval time.Duration `koanf:"min_interval"`

	// MaxNameLength truncates display names (in runes).
	MaxNameLength int `koanf:"max_name_length" validate:"gte=1,lte=256"`

	SendBuffer     int   `koanf:"send_buffer" validate:"gte=1"`
	InboundBuffer  int   `koanf:"inbound_buffer" validate:"gte=1"`
	MaxMessageSize int64 `koanf:"max_message_size" validate:"gte=64"`

	// MessageRate and MessageBurst bound inbound frames per connection,
	// independent of the location rate limit.
	MessageRate  float64 `koanf:"message_rate" validate:"gt=0"`
	MessageBurst int     `koanf:"message_burst" validate:"gte=1"`
}

// SecurityConfig holds cross-origin and HTTP rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// PeerConfig holds defaults for the waymark-peer client. Flags override them.
type PeerConfig struct {
	ServerURL     string        `koanf:"server_url" validate:"required,url"`
	Name          string        `koanf:"name"`
	SendInterval  time.Duration `koanf:"send_interval"`
	MoveThreshold float64       `koanf:"move_threshold" validate:"gte=0"`

	// Reconnect backoff and the dial circuit breaker.
	ReconnectMin     time.Duration `koanf:"reconnect_min"`
	ReconnectMax     time.Duration `koanf:"reconnect_max"`
	BreakerFailures  uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerOpenDelay time.Duration `koanf:"breaker_open_delay"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// HasWildcardCORS reports whether any allowed origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if a production deployment accepts
// websocket upgrades from any origin.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.HasWildcardCORS()
}

// Load loads configuration using Koanf with layered sources.
func Load() (*Config, error) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
