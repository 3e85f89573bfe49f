// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"sort"

	"github.com/serviq/chatsync/lib/ref"
)

// ConversationList holds the user's conversations, ordered by most
// recent activity. Conversations with no messages sort after all the
// rest.
//
// Duplicate room joins can deliver the same event twice, so the list
// dedupes applied messages by ID just like the Timeline does — the
// unread counter must not move on a replay.
//
// The list is not safe for concurrent use; the Session serializes
// access under its own mutex.
type ConversationList struct {
	localUser     ref.UserID
	conversations []Conversation
	open          ref.ConversationID
	seen          map[ref.MessageID]bool
	listeners     []func()
}

// NewConversationList creates an empty list. Messages authored by
// localUser never count as unread.
func NewConversationList(localUser ref.UserID) *ConversationList {
	return &ConversationList{
		localUser: localUser,
		seen:      make(map[ref.MessageID]bool),
	}
}

// OnChange registers a listener invoked after every mutation that
// changed visible state. Listeners cannot be removed.
func (l *ConversationList) OnChange(fn func()) {
	l.listeners = append(l.listeners, fn)
}

// SetOpen records which conversation is currently open. Incoming
// messages for the open conversation do not increment its unread
// count. A zero ID means no conversation is open.
func (l *ConversationList) SetOpen(id ref.ConversationID) {
	l.open = id
}

// ReplaceAll swaps the list contents for a fresh snapshot, typically
// from the REST API. The snapshot is re-sorted locally so a stale
// server ordering cannot leak through.
func (l *ConversationList) ReplaceAll(conversations []Conversation) {
	l.conversations = append([]Conversation(nil), conversations...)
	l.sortByActivity()
	l.notify()
}

// ApplyIncoming folds a new message into the list: the conversation's
// preview and activity time advance, the unread count increments
// unless the conversation is open or the message is the local user's
// own, and the conversation moves to its new position. A message for
// an unknown conversation, or one already applied, is ignored and
// reported false.
func (l *ConversationList) ApplyIncoming(msg Message) bool {
	if l.seen[msg.ID] {
		return false
	}
	i := l.find(msg.ConversationID)
	if i < 0 {
		return false
	}
	l.seen[msg.ID] = true
	conv := &l.conversations[i]
	// A replayed or out-of-order broadcast must not move the
	// conversation backwards.
	if conv.LastMessageAt == nil || msg.CreatedAt.After(*conv.LastMessageAt) {
		t := msg.CreatedAt
		conv.LastMessageAt = &t
		conv.LastMessagePreview = msg.Content
	}
	if msg.ConversationID != l.open && msg.SenderID != l.localUser {
		conv.UnreadCount++
	}
	l.sortByActivity()
	l.notify()
	return true
}

// ClearUnread zeroes the unread count of a conversation.
func (l *ConversationList) ClearUnread(id ref.ConversationID) {
	i := l.find(id)
	if i < 0 || l.conversations[i].UnreadCount == 0 {
		return
	}
	l.conversations[i].UnreadCount = 0
	l.notify()
}

// Get returns the conversation with the given ID.
func (l *ConversationList) Get(id ref.ConversationID) (Conversation, bool) {
	i := l.find(id)
	if i < 0 {
		return Conversation{}, false
	}
	return l.conversations[i], true
}

// Snapshot returns a copy of the list in display order.
func (l *ConversationList) Snapshot() []Conversation {
	return append([]Conversation(nil), l.conversations...)
}

// Len returns the number of conversations.
func (l *ConversationList) Len() int { return len(l.conversations) }

func (l *ConversationList) find(id ref.ConversationID) int {
	for i := range l.conversations {
		if l.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *ConversationList) sortByActivity() {
	sort.SliceStable(l.conversations, func(i, j int) bool {
		a, b := l.conversations[i].LastMessageAt, l.conversations[j].LastMessageAt
		switch {
		case a == nil && b == nil:
			return l.conversations[i].ID.Less(l.conversations[j].ID)
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		}
		return l.conversations[i].ID.Less(l.conversations[j].ID)
	})
}

func (l *ConversationList) notify() {
	for _, fn := range l.listeners {
		fn()
	}
}
