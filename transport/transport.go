// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"net"
	"time"
)

// Compile-time interface checks.
var (
	_ Dialer = (*TCPDialer)(nil)
	_ Dialer = (*memoryDialer)(nil)
)

// Dialer opens connections to the chat server's channel endpoint. The
// Channel redials through its Dialer after every disconnection, so a
// Dialer must be safe to call repeatedly.
type Dialer interface {
	// DialContext opens a network connection to the channel endpoint
	// at the given address. The address format is dialer-specific
	// ("host:port" for TCP).
	DialContext(ctx context.Context, address string) (net.Conn, error)
}

// TCPDialer opens TCP connections to the channel endpoint. This is the
// production dialer.
type TCPDialer struct {
	// Timeout is the maximum time to wait for a TCP connection to be
	// established. Zero means no standalone timeout — only the context
	// deadline applies.
	Timeout time.Duration
}

// DialContext opens a TCP connection to address.
func (d *TCPDialer) DialContext(ctx context.Context, address string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: d.Timeout}
	return dialer.DialContext(ctx, "tcp", address)
}
