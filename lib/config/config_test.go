// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatsync.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  api_base_url: https://api.test.local
  channel_address: chat.test.local:7420
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.APIBaseURL != "https://api.test.local" {
		t.Errorf("APIBaseURL = %q", cfg.Server.APIBaseURL)
	}
	if cfg.Typing.StartWindow != 2*time.Second {
		t.Errorf("default StartWindow = %v, want 2s", cfg.Typing.StartWindow)
	}
	if cfg.Typing.RemoteExpiry != 3*time.Second {
		t.Errorf("default RemoteExpiry = %v, want 3s", cfg.Typing.RemoteExpiry)
	}
	if cfg.Reconnect.MaxBackoff != 15*time.Second {
		t.Errorf("default MaxBackoff = %v, want 15s", cfg.Reconnect.MaxBackoff)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  api_base_url: https://api.test.local
  channel_address: chat.test.local:7420
typing:
  start_window: 1s
  stop_after: 1s
  remote_expiry: 5s
reconnect:
  initial_backoff: 250ms
  max_backoff: 30s
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Typing.StartWindow != time.Second {
		t.Errorf("StartWindow = %v, want 1s", cfg.Typing.StartWindow)
	}
	if cfg.Reconnect.InitialBackoff != 250*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 250ms", cfg.Reconnect.InitialBackoff)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing api base url",
			yaml:    "server:\n  channel_address: chat:7420\n",
			wantErr: "api_base_url is required",
		},
		{
			name:    "missing channel address",
			yaml:    "server:\n  api_base_url: https://api\n",
			wantErr: "channel_address is required",
		},
		{
			name: "remote expiry not above start window",
			yaml: `
server:
  api_base_url: https://api
  channel_address: chat:7420
typing:
  start_window: 3s
  stop_after: 2s
  remote_expiry: 3s
`,
			wantErr: "remote_expiry",
		},
		{
			name: "max backoff below initial",
			yaml: `
server:
  api_base_url: https://api
  channel_address: chat:7420
reconnect:
  initial_backoff: 10s
  max_backoff: 1s
`,
			wantErr: "max_backoff",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, test.yaml))
			if err == nil {
				t.Fatalf("LoadFile succeeded, want error containing %q", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("error = %q, want containing %q", err, test.wantErr)
			}
		})
	}
}

func TestLoadRequiresEnv(t *testing.T) {
	t.Setenv("CHATSYNC_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load without CHATSYNC_CONFIG should fail")
	}

	path := writeConfig(t, `
server:
  api_base_url: https://api.test.local
  channel_address: chat.test.local:7420
`)
	t.Setenv("CHATSYNC_CONFIG", path)
	if _, err := Load(); err != nil {
		t.Fatalf("Load with CHATSYNC_CONFIG failed: %v", err)
	}
}
