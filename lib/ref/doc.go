// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references for
// the chat core. Conversations, messages, users, and rooms are each
// represented by a validated value type rather than a bare string.
//
// All constructors validate their inputs and return errors for malformed
// identifiers. Once constructed, a ref is immutable — String returns the
// canonical form at zero allocation cost. The zero value of every ref
// type is invalid; use IsZero to check.
//
// Identifier formats:
//   - UserID:         "usr_" prefix, server-assigned opaque remainder
//   - ConversationID: "conv_" prefix, server-assigned opaque remainder
//   - MessageID:      "msg_" prefix once server-confirmed, or "tmp_"
//     prefix for locally generated optimistic entries
//   - RoomID:         derived, never server-assigned — "user:<user id>"
//     for a personal room, "conversation:<conversation id>" for a
//     conversation room
//
// JSON and CBOR marshaling use the canonical string form via
// encoding.TextMarshaler, so wire payloads carry plain identifier
// strings and parse back into validated refs at the boundary.
package ref
