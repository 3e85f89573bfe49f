// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for chatsync clients.
//
// Configuration is loaded from a single YAML file specified by:
//   - CHATSYNC_CONFIG environment variable, or
//   - an explicit path (e.g., from a --config flag)
//
// There are no fallbacks or automatic discovery, and environment
// variables do not override file values. This keeps configuration
// deterministic and auditable.
//
// Every field has a documented default applied before the file is
// read, so a minimal config only needs the server endpoints.
package config
