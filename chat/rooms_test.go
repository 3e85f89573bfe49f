// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"testing"
)

func TestRoomManagerJoinsOnConnect(t *testing.T) {
	sender := &recordingSender{}
	me := mustUser(t, "usr_me")
	rm := NewRoomManager(sender, me, nil)

	rm.OnTransportConnected()
	requireNames(t, sender.names(), []string{EventJoinRoom})

	ev, _ := sender.last()
	payload, ok := ev.payload.(JoinRoomPayload)
	if !ok || payload.UserID != me {
		t.Errorf("join_room payload = %+v", ev.payload)
	}
}

func TestRoomManagerSwitchesConversationRooms(t *testing.T) {
	sender := &recordingSender{}
	rm := NewRoomManager(sender, mustUser(t, "usr_me"), nil)

	first := mustConv(t, "conv_a")
	second := mustConv(t, "conv_b")

	rm.SetOpenConversation(first)
	rm.SetOpenConversation(first) // no-op
	rm.SetOpenConversation(second)
	rm.ClearOpenConversation()

	requireNames(t, sender.names(), []string{
		EventJoinConversation,
		EventLeaveConversation, EventJoinConversation,
		EventLeaveConversation,
	})
}

func TestRoomManagerRejoinsFullSetOnReconnect(t *testing.T) {
	sender := &recordingSender{}
	rm := NewRoomManager(sender, mustUser(t, "usr_me"), nil)

	open := mustConv(t, "conv_a")
	rm.SetOpenConversation(open)

	// Membership is connection state: a reconnect must re-establish
	// the personal room and the open conversation room.
	rm.OnTransportConnected()
	requireNames(t, sender.names(), []string{
		EventJoinConversation,
		EventJoinRoom, EventJoinConversation,
	})

	rooms := rm.DesiredRooms()
	if len(rooms) != 2 {
		t.Fatalf("desired rooms = %v, want 2 entries", rooms)
	}
	if !rooms[0].IsPersonal() || rooms[1].IsPersonal() {
		t.Errorf("desired rooms = %v, want personal then conversation", rooms)
	}
}
