// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"net"
	"sync"
)

// MemoryTransport is an in-process channel endpoint for tests. Every
// connection dialed through Dialer appears as a server-side net.Conn
// on Accept, so a test can play the server role without sockets. The
// dial/accept pairing also exercises the Channel's reconnect path:
// close the server side of a connection and the next Accept receives
// the redial.
type MemoryTransport struct {
	mu      sync.Mutex
	pending chan net.Conn
	closed  bool
}

// NewMemoryTransport creates an in-process transport endpoint.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{pending: make(chan net.Conn, 4)}
}

// Dialer returns the client-side Dialer for this endpoint. The address
// argument is ignored — there is only one endpoint to reach.
func (m *MemoryTransport) Dialer() Dialer {
	return &memoryDialer{transport: m}
}

// Accept returns the server side of the next dialed connection.
func (m *MemoryTransport) Accept(ctx context.Context) (net.Conn, error) {
	select {
	case conn, ok := <-m.pending:
		if !ok {
			return nil, errors.New("transport: memory transport closed")
		}
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close rejects all future dials.
func (m *MemoryTransport) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.pending)
}

type memoryDialer struct {
	transport *MemoryTransport
}

func (d *memoryDialer) DialContext(ctx context.Context, _ string) (net.Conn, error) {
	d.transport.mu.Lock()
	if d.transport.closed {
		d.transport.mu.Unlock()
		return nil, errors.New("transport: memory transport closed")
	}
	d.transport.mu.Unlock()

	client, server := net.Pipe()
	select {
	case d.transport.pending <- server:
		return client, nil
	case <-ctx.Done():
		client.Close()
		server.Close()
		return nil, ctx.Err()
	}
}
