// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR wire codec for the chat event
// channel. Every envelope the transport sends or receives is encoded
// here, with one shared configuration so both peers agree on byte-level
// representation.
//
// Consumers import only this package, never fxamacker/cbor directly —
// the encoder options (deterministic encoding, text-marshaler handling
// for ref types, string-keyed map defaults) live in exactly one place.
package codec
