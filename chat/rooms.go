// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"log/slog"

	"github.com/serviq/chatsync/lib/ref"
)

// EventSender emits named events on the realtime channel.
// transport.Channel satisfies it.
type EventSender interface {
	Send(name string, payload any) error
}

// RoomManager tracks which channel rooms the session wants to be in
// and keeps the server's view in sync: the user's personal room always,
// plus the room of the open conversation while one is open.
//
// Room membership is connection state on the server, so the manager
// re-joins the full desired set on every reconnect. Join and leave
// emissions are best effort; a send failure only means the connection
// dropped, and the next reconnect repairs membership.
//
// The manager is not safe for concurrent use; the Session serializes
// access under its own mutex.
type RoomManager struct {
	sender EventSender
	userID ref.UserID
	logger *slog.Logger

	open ref.ConversationID
}

// NewRoomManager creates a manager for the given user.
func NewRoomManager(sender EventSender, userID ref.UserID, logger *slog.Logger) *RoomManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomManager{sender: sender, userID: userID, logger: logger}
}

// SetOpenConversation switches the open conversation room: the
// previous room, if any, is left and the new one joined.
func (r *RoomManager) SetOpenConversation(id ref.ConversationID) {
	if id == r.open {
		return
	}
	r.leaveOpen()
	r.open = id
	r.emit(EventJoinConversation, ConversationPayload{ConversationID: id})
}

// ClearOpenConversation leaves the open conversation room, if any.
func (r *RoomManager) ClearOpenConversation() {
	r.leaveOpen()
	r.open = ref.ConversationID{}
}

// OnTransportConnected re-establishes the desired room set on a fresh
// connection. The transport invokes it before dispatching any event
// from the new connection.
func (r *RoomManager) OnTransportConnected() {
	r.emit(EventJoinRoom, JoinRoomPayload{UserID: r.userID})
	if !r.open.IsZero() {
		r.emit(EventJoinConversation, ConversationPayload{ConversationID: r.open})
	}
}

// DesiredRooms returns the rooms the manager wants membership in.
func (r *RoomManager) DesiredRooms() []ref.RoomID {
	rooms := []ref.RoomID{ref.PersonalRoom(r.userID)}
	if !r.open.IsZero() {
		rooms = append(rooms, ref.ConversationRoom(r.open))
	}
	return rooms
}

func (r *RoomManager) leaveOpen() {
	if r.open.IsZero() {
		return
	}
	r.emit(EventLeaveConversation, ConversationPayload{ConversationID: r.open})
}

func (r *RoomManager) emit(name string, payload any) {
	if err := r.sender.Send(name, payload); err != nil {
		r.logger.Debug("room event not sent", "event", name, "error", err)
	}
}
