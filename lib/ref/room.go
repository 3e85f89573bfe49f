// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// Room identifier prefixes. Rooms are logical channel-subscription
// scopes, not server-assigned objects, so their identifiers are derived
// deterministically from the entity they scope to.
const (
	personalRoomPrefix     = "user:"
	conversationRoomPrefix = "conversation:"
)

// RoomID identifies a logical room on the event channel. A connection
// subscribed to a room receives the events scoped to it: the personal
// room carries conversation-list updates addressed to one user, a
// conversation room carries the live traffic of one conversation.
//
// Room IDs are derived, never parsed from server payloads: the personal
// room of "usr_a1" is "user:usr_a1", the room of "conv_b2" is
// "conversation:conv_b2". Deriving them locally means both sides of the
// channel agree on room names without a directory lookup.
//
// RoomID is an immutable value type. The zero value is not valid; use
// IsZero to check.
type RoomID struct {
	id string
}

// PersonalRoom returns the room that carries events addressed to a
// single user regardless of which conversation is open.
func PersonalRoom(user UserID) RoomID {
	if user.IsZero() {
		return RoomID{}
	}
	return RoomID{id: personalRoomPrefix + user.String()}
}

// ConversationRoom returns the room that carries the live traffic of
// one conversation.
func ConversationRoom(conversation ConversationID) RoomID {
	if conversation.IsZero() {
		return RoomID{}
	}
	return RoomID{id: conversationRoomPrefix + conversation.String()}
}

// ParseRoomID validates and wraps a raw room identifier string. The
// identifier must be a well-formed personal or conversation room name.
func ParseRoomID(raw string) (RoomID, error) {
	switch {
	case strings.HasPrefix(raw, personalRoomPrefix):
		user, err := ParseUserID(strings.TrimPrefix(raw, personalRoomPrefix))
		if err != nil {
			return RoomID{}, fmt.Errorf("invalid personal room %q: %w", raw, err)
		}
		return PersonalRoom(user), nil
	case strings.HasPrefix(raw, conversationRoomPrefix):
		conversation, err := ParseConversationID(strings.TrimPrefix(raw, conversationRoomPrefix))
		if err != nil {
			return RoomID{}, fmt.Errorf("invalid conversation room %q: %w", raw, err)
		}
		return ConversationRoom(conversation), nil
	case raw == "":
		return RoomID{}, fmt.Errorf("empty room ID")
	default:
		return RoomID{}, fmt.Errorf("room ID must start with %q or %q: %q",
			personalRoomPrefix, conversationRoomPrefix, raw)
	}
}

// String returns the full room ID string (e.g., "conversation:conv_b2").
func (r RoomID) String() string { return r.id }

// IsZero reports whether the RoomID is the zero value.
func (r RoomID) IsZero() bool { return r.id == "" }

// IsPersonal reports whether the room is a user's personal room.
func (r RoomID) IsPersonal() bool {
	return strings.HasPrefix(r.id, personalRoomPrefix)
}

// MarshalText implements encoding.TextMarshaler.
func (r RoomID) MarshalText() ([]byte, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero RoomID")
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RoomID) UnmarshalText(text []byte) error {
	parsed, err := ParseRoomID(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
