// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import "github.com/serviq/chatsync/lib/ref"

// Event names on the realtime channel. The client emits the join,
// leave, and typing events; the server emits the rest.
const (
	EventJoinRoom          = "join_room"
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventTypingStart       = "typing_start"
	EventTypingStop        = "typing_stop"

	EventNewMessage        = "new_message"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventMessagesRead      = "messages_read"
)

// JoinRoomPayload subscribes the connection to the user's personal
// room, where conversation-level notifications are delivered.
type JoinRoomPayload struct {
	UserID ref.UserID `cbor:"user_id"`
}

// ConversationPayload scopes an event to one conversation. It is the
// payload of join_conversation, leave_conversation, messages_read, and
// user_stopped_typing.
type ConversationPayload struct {
	ConversationID ref.ConversationID `cbor:"conversation_id"`
}

// TypingPayload is the payload of typing_start, typing_stop, and
// user_typing.
type TypingPayload struct {
	ConversationID ref.ConversationID `cbor:"conversation_id"`
	UserID         ref.UserID         `cbor:"user_id"`
}
