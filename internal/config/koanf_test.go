// Waymark - Real-Time Location Sharing Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waymark

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
)

// clearEnv isolates a test from the process environment and restores it.
func clearEnv(t *testing.T) {
	t.Helper()
	saved := os.Environ()
	os.Clearenv()
	t.Cleanup(func() {
		os.Clearenv()
		for _, kv := range saved {
			if k, v, ok := strings.Cut(kv, "="); ok {
				os.Setenv(k, v)
			}
		}
	})
}

// chdirTemp switches to an empty temp dir so no config.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Relay.MinInterval != 500*time.Millisecond {
		t.Errorf("Relay.MinInterval = %v, want 500ms", cfg.Relay.MinInterval)
	}
	if cfg.Relay.MaxNameLength != 32 {
		t.Errorf("Relay.MaxNameLength = %d, want 32", cfg.Relay.MaxNameLength)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"*"}) {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Peer.SendInterval != time.Second {
		t.Errorf("Peer.SendInterval = %v, want 1s", cfg.Peer.SendInterval)
	}
	if cfg.Peer.MoveThreshold != 0.0005 {
		t.Errorf("Peer.MoveThreshold = %v, want 0.0005", cfg.Peer.MoveThreshold)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"HTTP_PORT", "server.port"},
		{"http_port", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"ENVIRONMENT", "server.environment"},
		{"RELAY_MIN_INTERVAL", "relay.min_interval"},
		{"WS_SEND_BUFFER", "relay.send_buffer"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},
		{"WAYMARK_SERVER", "peer.server_url"},
		{"PATH", ""},
		{"HOME", ""},
		{"PORT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server:\n  port: 4000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("findConfigFile() = %q, want config.yml", got)
	}

	custom := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(custom, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	os.Setenv(ConfigPathEnvVar, custom)
	if got := ConfigFile(); got != custom {
		t.Errorf("ConfigFile() = %q, want %q", got, custom)
	}

	os.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("missing CONFIG_PATH should fall back to search list, got %q", got)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	want := defaultConfig()
	if cfg.Server != want.Server {
		t.Errorf("Server = %+v, want %+v", cfg.Server, want.Server)
	}
	if cfg.Relay != want.Relay {
		t.Errorf("Relay = %+v, want %+v", cfg.Relay, want.Relay)
	}
	if cfg.Logging != want.Logging {
		t.Errorf("Logging = %+v, want %+v", cfg.Logging, want.Logging)
	}
	if cfg.Peer != want.Peer {
		t.Errorf("Peer = %+v, want %+v", cfg.Peer, want.Peer)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want.Security.CORSOrigins) {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_EnvVars(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	os.Setenv("HTTP_PORT", "8080")
	os.Setenv("RELAY_MIN_INTERVAL", "250ms")
	os.Setenv("RELAY_MAX_NAME_LENGTH", "16")
	os.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_CALLER", "true")
	os.Setenv("WS_MESSAGE_RATE", "5")
	os.Setenv("WS_MESSAGE_BURST", "5")
	os.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Relay.MinInterval != 250*time.Millisecond {
		t.Errorf("Relay.MinInterval = %v, want 250ms", cfg.Relay.MinInterval)
	}
	if cfg.Relay.MaxNameLength != 16 {
		t.Errorf("Relay.MaxNameLength = %d, want 16", cfg.Relay.MaxNameLength)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Caller {
		t.Errorf("Logging = %+v, want debug with caller", cfg.Logging)
	}
	if cfg.Relay.MessageRate != 5 || cfg.Relay.MessageBurst != 5 {
		t.Errorf("Relay message limits = %v/%d, want 5/5", cfg.Relay.MessageRate, cfg.Relay.MessageBurst)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)

	yaml := `
server:
  port: 9000
  environment: production
relay:
  min_interval: 1s
security:
  cors_origins:
    - https://map.example
logging:
  format: console
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment from file")
	}
	if cfg.Relay.MinInterval != time.Second {
		t.Errorf("Relay.MinInterval = %v, want 1s", cfg.Relay.MinInterval)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"https://map.example"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
	// Untouched keys keep their defaults.
	if cfg.Relay.MaxNameLength != 32 {
		t.Errorf("Relay.MaxNameLength = %d, want default 32", cfg.Relay.MaxNameLength)
	}
}

func TestLoadWithKoanf_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	os.Setenv("HTTP_PORT", "9100")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want env value 9100", cfg.Server.Port)
	}
}

func TestLoadWithKoanf_ValidationFailure(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port too high", map[string]string{"HTTP_PORT": "70000"}, "port"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad environment", map[string]string{"ENVIRONMENT": "qa"}, "environment"},
		{"negative interval", map[string]string{"RELAY_MIN_INTERVAL": "-1s"}, "RELAY_MIN_INTERVAL"},
		{"bad cors origin", map[string]string{"CORS_ORIGINS": "map.example"}, "CORS_ORIGINS"},
		{"bad proxy", map[string]string{"TRUSTED_PROXIES": "not-an-ip"}, "TRUSTED_PROXIES"},
		{"http peer url", map[string]string{"WAYMARK_SERVER": "http://localhost:3000/ws"}, "WAYMARK_SERVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			chdirTemp(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadWithKoanf_MalformedFile(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWithKoanf(); err == nil || !strings.Contains(err.Error(), "config.yaml") {
		t.Errorf("expected file load error naming config.yaml, got %v", err)
	}
}

func TestProcessSliceFields(t *testing.T) {
	k := koanf.New(".")
	if err := k.Set("security.cors_origins", "https://a.example,  ,https://b.example"); err != nil {
		t.Fatal(err)
	}
	if err := k.Set("security.trusted_proxies", []string{"10.0.0.1"}); err != nil {
		t.Fatal(err)
	}

	if err := processSliceFields(k); err != nil {
		t.Fatalf("processSliceFields() error = %v", err)
	}

	if got := k.Strings("security.cors_origins"); !reflect.DeepEqual(got, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("cors_origins = %v", got)
	}
	if got := k.Strings("security.trusted_proxies"); !reflect.DeepEqual(got, []string{"10.0.0.1"}) {
		t.Errorf("trusted_proxies = %v", got)
	}
}

func TestWatchConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 1)
	if err := WatchConfigFile(path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("WatchConfigFile() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("server:\n  port: 3001\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked after file change")
	}
}
