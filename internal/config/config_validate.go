// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/tomtom215/waymark/internal/validation"
)

// Validate checks the configuration. Struct tags are checked first through
// the shared validator, then the cross-field rules below.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	validators := []func() error{
		c.validateServer,
		c.validateRelay,
		c.validateCORS,
		c.validateRateLimits,
		c.validateTrustedProxies,
		c.validateLogLevel,
		c.validateLogFormat,
		c.validatePeer,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// maxMinInterval caps the relay spacing; anything longer makes the map
// look frozen.
const maxMinInterval = time.Minute

func (c *Config) validateRelay() error {
	if c.Relay.MinInterval < 0 || c.Relay.MinInterval > maxMinInterval {
		return fmt.Errorf("RELAY_MIN_INTERVAL must be between 0s and %v", maxMinInterval)
	}
	if c.Relay.MessageBurst < int(c.Relay.MessageRate) {
		return fmt.Errorf("WS_MESSAGE_BURST (%d) must be at least WS_MESSAGE_RATE (%.0f)",
			c.Relay.MessageBurst, c.Relay.MessageRate)
	}
	return nil
}

func (c *Config) validateCORS() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin (use * to allow all)")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS entry %q must be * or a scheme://host origin", origin)
		}
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateTrustedProxies() error {
	for _, proxy := range c.Security.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP address or CIDR", proxy)
		}
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validatePeer() error {
	u, err := url.Parse(c.Peer.ServerURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("WAYMARK_SERVER must be a ws:// or wss:// URL")
	}
	if c.Peer.SendInterval <= 0 {
		return fmt.Errorf("PEER_SEND_INTERVAL must be positive")
	}
	if c.Peer.ReconnectMin <= 0 || c.Peer.ReconnectMax < c.Peer.ReconnectMin {
		return fmt.Errorf("PEER_RECONNECT_MIN must be positive and not exceed PEER_RECONNECT_MAX")
	}
	if c.Peer.BreakerOpenDelay <= 0 {
		return fmt.Errorf("PEER_BREAKER_OPEN_DELAY must be positive")
	}
	return nil
}
