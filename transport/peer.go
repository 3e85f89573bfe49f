// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"net"

	"github.com/serviq/chatsync/lib/codec"
)

// Peer wraps one side of a channel connection with envelope stream
// state. The Channel uses a Peer internally for the client side; test
// servers wrap their accepted connection in one to speak the same
// protocol.
//
// A Peer is not safe for concurrent use — the Channel serializes sends
// under its own lock, and Receive is only called from the read loop.
type Peer struct {
	conn    net.Conn
	encoder *codec.Encoder
	decoder *codec.Decoder
}

// NewPeer wraps conn with envelope encode/decode state. The Peer owns
// the stream position: create exactly one Peer per connection side.
func NewPeer(conn net.Conn) *Peer {
	return &Peer{
		conn:    conn,
		encoder: codec.NewEncoder(conn),
		decoder: codec.NewDecoder(conn),
	}
}

// Send encodes payload and writes one envelope to the connection.
func (p *Peer) Send(name string, payload any) error {
	envelope, err := newEnvelope(name, payload)
	if err != nil {
		return err
	}
	if err := p.encoder.Encode(envelope); err != nil {
		return fmt.Errorf("transport: writing %s envelope: %w", name, err)
	}
	return nil
}

// Receive blocks until the next envelope arrives. Returns io.EOF (or
// the connection's close error) when the stream ends.
func (p *Peer) Receive() (Envelope, error) {
	var envelope Envelope
	if err := p.decoder.Decode(&envelope); err != nil {
		return Envelope{}, err
	}
	if envelope.Name == "" {
		return Envelope{}, fmt.Errorf("transport: received envelope without event name")
	}
	return envelope, nil
}

// Close closes the underlying connection, unblocking a pending Receive.
func (p *Peer) Close() error {
	return p.conn.Close()
}
