// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// conversationPrefix is the mandatory prefix of every conversation
// identifier.
const conversationPrefix = "conv_"

// ConversationID is a validated conversation identifier (e.g.,
// "conv_b71xk9").
//
// Conversation IDs are server-assigned when a booking or first-contact
// action creates the conversation. The chat core only ever receives
// them — from the conversation list snapshot, message payloads, and
// channel events — and parses them into this type at the boundary.
//
// ConversationID is an immutable value type. The zero value is not
// valid; use IsZero to check.
type ConversationID struct {
	id string
}

// ParseConversationID validates and wraps a raw conversation identifier
// string.
func ParseConversationID(raw string) (ConversationID, error) {
	if err := checkOpaqueID(raw, conversationPrefix, "conversation ID"); err != nil {
		return ConversationID{}, err
	}
	return ConversationID{id: raw}, nil
}

// String returns the full conversation ID string.
func (c ConversationID) String() string { return c.id }

// IsZero reports whether the ConversationID is the zero value.
func (c ConversationID) IsZero() bool { return c.id == "" }

// Less orders conversation IDs lexicographically. It gives displays a
// stable order for conversations with identical activity times.
func (c ConversationID) Less(other ConversationID) bool { return c.id < other.id }

// MarshalText implements encoding.TextMarshaler.
func (c ConversationID) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero ConversationID")
	}
	return []byte(c.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ConversationID) UnmarshalText(text []byte) error {
	parsed, err := ParseConversationID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
