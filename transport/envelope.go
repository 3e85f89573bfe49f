// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"

	"github.com/serviq/chatsync/lib/codec"
)

// Envelope is one event on the wire: a name that routes it to
// subscribers and an opaque CBOR payload decoded by the subscriber.
// The connection carries a stream of consecutive envelopes; CBOR data
// items are self-delimiting, so no outer length framing is needed.
type Envelope struct {
	Name    string           `cbor:"name"`
	Payload codec.RawMessage `cbor:"payload,omitempty"`
}

// newEnvelope encodes payload and wraps it with the event name.
// A nil payload produces an envelope with no payload field — some
// events (e.g., a bare stop notification) carry none.
func newEnvelope(name string, payload any) (Envelope, error) {
	if name == "" {
		return Envelope{}, fmt.Errorf("transport: event name is required")
	}
	envelope := Envelope{Name: name}
	if payload != nil {
		encoded, err := codec.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("transport: encoding %s payload: %w", name, err)
		}
		envelope.Payload = encoded
	}
	return envelope, nil
}
