// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport implements the persistent bidirectional event
// channel between a chat client and the server.
//
// The package is organized around the connection data flow:
//
//   - envelope.go: wire format — a stream of CBOR envelopes, each a
//     named event with an opaque payload
//   - transport.go: the Dialer abstraction and its TCP implementation
//   - channel.go: the long-lived Channel with reconnect, subscription
//     dispatch, and fire-and-forget send
//   - memory.go: an in-process transport for tests
//
// A [Channel] is constructed once per authenticated session and shared
// by reference with every component that sends or receives events —
// it is never recreated per screen or per conversation. The channel
// owns reconnection: when the connection drops it redials with
// exponential backoff and fires the registered connect callbacks on
// every fresh connection, so subscribers can reassert server-side
// state (room membership is not preserved across reconnects).
//
// Delivery guarantees are deliberately weak at this layer: Send is
// fire-and-forget with no per-event acknowledgement, and events lost
// during a disconnection gap are not replayed. Catch-up is the REST
// loaders' job. Inbound events are dispatched to subscribers in
// receipt order, one at a time, from the read loop.
package transport
