// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Message identifier prefixes. Server-confirmed messages carry
// messagePrefix; optimistic entries awaiting confirmation carry
// temporaryPrefix.
const (
	messagePrefix   = "msg_"
	temporaryPrefix = "tmp_"
)

// MessageID is a validated message identifier. A confirmed message has
// a server-assigned ID ("msg_..."); an optimistic entry in the send
// pipeline has a locally generated temporary ID ("tmp_...") until the
// server confirms it. The two namespaces are disjoint, so a temporary
// entry can never collide with a confirmed one.
//
// MessageID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type MessageID struct {
	id string
}

// ParseMessageID validates and wraps a raw message identifier string.
// Both server-assigned ("msg_") and temporary ("tmp_") identifiers are
// accepted.
func ParseMessageID(raw string) (MessageID, error) {
	if raw == "" {
		return MessageID{}, fmt.Errorf("empty message ID")
	}
	if !strings.HasPrefix(raw, messagePrefix) && !strings.HasPrefix(raw, temporaryPrefix) {
		return MessageID{}, fmt.Errorf("message ID must start with %q or %q: %q",
			messagePrefix, temporaryPrefix, raw)
	}
	if len(raw) == len(messagePrefix) {
		return MessageID{}, fmt.Errorf("message ID has empty identifier part: %q", raw)
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return MessageID{}, fmt.Errorf("message ID contains whitespace: %q", raw)
	}
	return MessageID{id: raw}, nil
}

// NewTemporaryMessageID generates a fresh temporary message ID for an
// optimistic send. The random UUID payload makes collisions across
// rapid resubmits and multiple pending sends impossible in practice.
func NewTemporaryMessageID() MessageID {
	return MessageID{id: temporaryPrefix + uuid.NewString()}
}

// String returns the full message ID string.
func (m MessageID) String() string { return m.id }

// IsZero reports whether the MessageID is the zero value.
func (m MessageID) IsZero() bool { return m.id == "" }

// IsTemporary reports whether the ID is a locally generated temporary
// identifier that has not been confirmed by the server.
func (m MessageID) IsTemporary() bool {
	return strings.HasPrefix(m.id, temporaryPrefix)
}

// Less reports whether m sorts before other in the canonical message
// order. It is the tie-breaker applied after the server timestamp:
// messages with equal timestamps are ordered by ID so the total order
// is stable regardless of arrival order.
func (m MessageID) Less(other MessageID) bool {
	return m.id < other.id
}

// MarshalText implements encoding.TextMarshaler.
func (m MessageID) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero MessageID")
	}
	return []byte(m.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MessageID) UnmarshalText(text []byte) error {
	parsed, err := ParseMessageID(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
