// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"fmt"
	"sort"

	"github.com/serviq/chatsync/lib/ref"
)

// Timeline is the message log of one conversation. Confirmed messages
// are kept in (CreatedAt, ID) order; optimistic pending entries sit
// after them until the server acknowledges or rejects the send. Every
// merge path deduplicates by message ID.
//
// The timeline is not safe for concurrent use; the Session serializes
// access under its own mutex.
type Timeline struct {
	conversationID ref.ConversationID

	confirmed []Message
	pending   []Message
	seen      map[ref.MessageID]bool

	listeners []func()
}

// NewTimeline creates an empty timeline for one conversation.
func NewTimeline(conversationID ref.ConversationID) *Timeline {
	return &Timeline{
		conversationID: conversationID,
		seen:           make(map[ref.MessageID]bool),
	}
}

// ConversationID returns the conversation this timeline belongs to.
func (t *Timeline) ConversationID() ref.ConversationID { return t.conversationID }

// OnChange registers a listener invoked after every mutation that
// changed visible state. Listeners cannot be removed.
func (t *Timeline) OnChange(fn func()) {
	t.listeners = append(t.listeners, fn)
}

// MergeHistory folds a history page into the timeline. Messages whose
// ID is already present are skipped, so overlapping or replayed pages
// are harmless.
func (t *Timeline) MergeHistory(messages []Message) {
	inserted := false
	for _, msg := range messages {
		if t.insert(msg) {
			inserted = true
		}
	}
	if inserted {
		t.notify()
	}
}

// ApplyIncoming folds one live message into the timeline. It reports
// whether the message was new; a duplicate of an already merged
// message is a no-op.
func (t *Timeline) ApplyIncoming(msg Message) bool {
	if msg.Status == "" {
		msg.Status = StatusSent
	}
	if !t.insert(msg) {
		return false
	}
	t.notify()
	return true
}

// AppendPending appends an optimistic entry to the end of the log. The
// entry must carry a temporary ID and StatusPending.
func (t *Timeline) AppendPending(msg Message) error {
	if !msg.ID.IsTemporary() {
		return fmt.Errorf("chat: pending message %s does not have a temporary ID", msg.ID)
	}
	if t.seen[msg.ID] {
		return fmt.Errorf("chat: pending message %s already in timeline", msg.ID)
	}
	msg.Status = StatusPending
	t.seen[msg.ID] = true
	t.pending = append(t.pending, msg)
	t.notify()
	return nil
}

// Confirm replaces the optimistic entry tempID with the server's
// canonical record: the pending entry is removed and the confirmed
// message takes its ordered place in the log. If a live broadcast
// already delivered the confirmed message, only the removal happens.
func (t *Timeline) Confirm(tempID ref.MessageID, confirmed Message) error {
	if !t.removePending(tempID) {
		return fmt.Errorf("chat: no pending message %s to confirm", tempID)
	}
	if confirmed.Status == "" || confirmed.Status == StatusPending {
		confirmed.Status = StatusSent
	}
	t.insert(confirmed)
	t.notify()
	return nil
}

// Fail removes the optimistic entry tempID and hands back its content
// and attachments so the caller can restore the compose state.
func (t *Timeline) Fail(tempID ref.MessageID) (content string, attachments []string, ok bool) {
	for _, msg := range t.pending {
		if msg.ID == tempID {
			content, attachments = msg.Content, msg.Attachments
			break
		}
	}
	if !t.removePending(tempID) {
		return "", nil, false
	}
	t.notify()
	return content, attachments, true
}

// MarkRemoteRead flips every sent message authored by localUser to
// read. It implements a messages_read receipt from the other
// participant.
func (t *Timeline) MarkRemoteRead(localUser ref.UserID) int {
	changed := 0
	for i := range t.confirmed {
		msg := &t.confirmed[i]
		if msg.SenderID == localUser && msg.Status == StatusSent {
			msg.Status = StatusRead
			changed++
		}
	}
	if changed > 0 {
		t.notify()
	}
	return changed
}

// MarkLocallyRead flags every message not authored by localUser as
// seen by the local user.
func (t *Timeline) MarkLocallyRead(localUser ref.UserID) {
	changed := false
	for i := range t.confirmed {
		msg := &t.confirmed[i]
		if msg.SenderID != localUser && !msg.ReadLocally {
			msg.ReadLocally = true
			changed = true
		}
	}
	if changed {
		t.notify()
	}
}

// Snapshot returns a copy of the log in display order: confirmed
// messages in (CreatedAt, ID) order followed by pending entries in
// append order.
func (t *Timeline) Snapshot() []Message {
	out := make([]Message, 0, len(t.confirmed)+len(t.pending))
	out = append(out, t.confirmed...)
	return append(out, t.pending...)
}

// Len returns the number of entries, pending included.
func (t *Timeline) Len() int { return len(t.confirmed) + len(t.pending) }

// insert places msg at its ordered position among the confirmed
// messages. It reports whether the message was new.
func (t *Timeline) insert(msg Message) bool {
	if t.seen[msg.ID] {
		return false
	}
	t.seen[msg.ID] = true
	i := sort.Search(len(t.confirmed), func(i int) bool {
		return msg.Before(t.confirmed[i])
	})
	t.confirmed = append(t.confirmed, Message{})
	copy(t.confirmed[i+1:], t.confirmed[i:])
	t.confirmed[i] = msg
	return true
}

func (t *Timeline) removePending(tempID ref.MessageID) bool {
	for i, msg := range t.pending {
		if msg.ID == tempID {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			delete(t.seen, tempID)
			return true
		}
	}
	return false
}

func (t *Timeline) notify() {
	for _, fn := range t.listeners {
		fn()
	}
}
