// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration for the chat core.
type Config struct {
	// Server configures the two server endpoints the core talks to.
	Server ServerConfig `yaml:"server"`

	// Typing configures typing-indicator timing.
	Typing TypingConfig `yaml:"typing"`

	// Reconnect configures the channel's redial backoff.
	Reconnect ReconnectConfig `yaml:"reconnect"`
}

// ServerConfig holds the server endpoints.
type ServerConfig struct {
	// APIBaseURL is the base URL of the REST API
	// (e.g., "https://api.serviq.example").
	APIBaseURL string `yaml:"api_base_url"`

	// ChannelAddress is the host:port of the event channel endpoint.
	ChannelAddress string `yaml:"channel_address"`
}

// TypingConfig holds typing-indicator timing. The values interlock:
// StartWindow throttles typing_start emission, StopAfter schedules the
// local typing_stop, and RemoteExpiry clears a remote indicator whose
// stop event was lost. RemoteExpiry must exceed StartWindow or a
// steadily typing remote peer would flicker.
type TypingConfig struct {
	// StartWindow is the minimum interval between two typing_start
	// emissions for the same conversation. Default: 2s.
	StartWindow time.Duration `yaml:"start_window"`

	// StopAfter is the inactivity interval after which typing_stop is
	// emitted. Default: 2s.
	StopAfter time.Duration `yaml:"stop_after"`

	// RemoteExpiry is how long a remote typing indicator stays visible
	// without a refresh before it self-clears. Default: 3s.
	RemoteExpiry time.Duration `yaml:"remote_expiry"`
}

// ReconnectConfig holds the channel redial backoff bounds.
type ReconnectConfig struct {
	// InitialBackoff is the delay before the first redial attempt.
	// Default: 500ms.
	InitialBackoff time.Duration `yaml:"initial_backoff"`

	// MaxBackoff caps the doubling backoff. Default: 15s.
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns the default configuration. Server endpoints have no
// defaults — the config file must provide them.
func Default() *Config {
	return &Config{
		Typing: TypingConfig{
			StartWindow:  2 * time.Second,
			StopAfter:    2 * time.Second,
			RemoteExpiry: 3 * time.Second,
		},
		Reconnect: ReconnectConfig{
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     15 * time.Second,
		},
	}
}

// Load loads configuration from the CHATSYNC_CONFIG environment
// variable. Fails if the variable is not set — there is no search path.
func Load() (*Config, error) {
	configPath := os.Getenv("CHATSYNC_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("CHATSYNC_CONFIG environment variable not set; " +
			"set it to the path of your chatsync.yaml config file, or use --config")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Defaults are
// applied first, then the file contents, then validation.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that required fields are present and that the timing
// values are coherent.
func (c *Config) Validate() error {
	if c.Server.APIBaseURL == "" {
		return fmt.Errorf("server.api_base_url is required")
	}
	if c.Server.ChannelAddress == "" {
		return fmt.Errorf("server.channel_address is required")
	}
	if c.Typing.StartWindow <= 0 || c.Typing.StopAfter <= 0 || c.Typing.RemoteExpiry <= 0 {
		return fmt.Errorf("typing intervals must be positive")
	}
	if c.Typing.RemoteExpiry <= c.Typing.StartWindow {
		return fmt.Errorf("typing.remote_expiry (%v) must exceed typing.start_window (%v)",
			c.Typing.RemoteExpiry, c.Typing.StartWindow)
	}
	if c.Reconnect.InitialBackoff <= 0 {
		return fmt.Errorf("reconnect.initial_backoff must be positive")
	}
	if c.Reconnect.MaxBackoff < c.Reconnect.InitialBackoff {
		return fmt.Errorf("reconnect.max_backoff (%v) must be at least reconnect.initial_backoff (%v)",
			c.Reconnect.MaxBackoff, c.Reconnect.InitialBackoff)
	}
	return nil
}
