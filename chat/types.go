// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"time"

	"github.com/serviq/chatsync/lib/ref"
)

// MessageStatus is the delivery state of a message from the local
// user's point of view.
type MessageStatus string

const (
	// StatusPending marks an optimistic entry that has been appended
	// locally but not yet acknowledged by the server.
	StatusPending MessageStatus = "pending"

	// StatusSent marks a message the server has persisted.
	StatusSent MessageStatus = "sent"

	// StatusFailed marks an optimistic entry whose send was rejected.
	// Failed entries are removed from the timeline; the status only
	// appears on the value handed back to the caller.
	StatusFailed MessageStatus = "failed"

	// StatusRead marks a sent message the other participant has read.
	StatusRead MessageStatus = "read"
)

// Conversation is one two-party conversation as reported by the chat
// API, plus the locally maintained unread counter.
type Conversation struct {
	ID           ref.ConversationID `json:"id"`
	ParticipantA ref.UserID         `json:"participant_a"`
	ParticipantB ref.UserID         `json:"participant_b"`

	// LastMessagePreview is the content of the most recent message,
	// empty for a conversation with no messages yet.
	LastMessagePreview string `json:"last_message_preview"`

	// LastMessageAt is nil for a conversation with no messages.
	LastMessageAt *time.Time `json:"last_message_at"`

	// UnreadCount is the number of messages received while the
	// conversation was not open.
	UnreadCount int `json:"unread_count"`
}

// HasParticipant reports whether u is one of the two parties.
func (c Conversation) HasParticipant(u ref.UserID) bool {
	return c.ParticipantA == u || c.ParticipantB == u
}

// OtherParticipant returns the party that is not u. It returns the
// zero UserID if u is not a participant.
func (c Conversation) OtherParticipant(u ref.UserID) ref.UserID {
	switch u {
	case c.ParticipantA:
		return c.ParticipantB
	case c.ParticipantB:
		return c.ParticipantA
	}
	return ref.UserID{}
}

// Message is one chat message. The same shape travels over the REST
// API (JSON) and the realtime channel (CBOR new_message payload).
type Message struct {
	ID             ref.MessageID      `json:"id" cbor:"id"`
	ConversationID ref.ConversationID `json:"conversation_id" cbor:"conversation_id"`
	SenderID       ref.UserID         `json:"sender_id" cbor:"sender_id"`
	Content        string             `json:"content" cbor:"content"`
	Attachments    []string           `json:"attachments,omitempty" cbor:"attachments,omitempty"`
	CreatedAt      time.Time          `json:"created_at" cbor:"created_at"`
	Status         MessageStatus      `json:"status" cbor:"status"`

	// ReadLocally records that the local user has seen this incoming
	// message. It is display state and never crosses the wire.
	ReadLocally bool `json:"-" cbor:"-"`
}

// Before reports whether m sorts ahead of other in the timeline. The
// order is by CreatedAt with the message ID breaking ties, so the
// relation is total over distinct messages.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID.Less(other.ID)
}
