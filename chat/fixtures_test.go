// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/serviq/chatsync/lib/ref"
)

var baseTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func mustUser(t *testing.T, raw string) ref.UserID {
	t.Helper()
	id, err := ref.ParseUserID(raw)
	if err != nil {
		t.Fatalf("ParseUserID(%q): %v", raw, err)
	}
	return id
}

func mustConv(t *testing.T, raw string) ref.ConversationID {
	t.Helper()
	id, err := ref.ParseConversationID(raw)
	if err != nil {
		t.Fatalf("ParseConversationID(%q): %v", raw, err)
	}
	return id
}

func mustMsg(t *testing.T, raw string) ref.MessageID {
	t.Helper()
	id, err := ref.ParseMessageID(raw)
	if err != nil {
		t.Fatalf("ParseMessageID(%q): %v", raw, err)
	}
	return id
}

// serverMessage builds a sent message the way the API would report it.
func serverMessage(t *testing.T, id, conv, sender, content string, at time.Time) Message {
	t.Helper()
	return Message{
		ID:             mustMsg(t, id),
		ConversationID: mustConv(t, conv),
		SenderID:       mustUser(t, sender),
		Content:        content,
		CreatedAt:      at,
		Status:         StatusSent,
	}
}

type sentEvent struct {
	name    string
	payload any
}

// recordingSender captures emitted channel events for assertions.
type recordingSender struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recordingSender) Send(name string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{name: name, payload: payload})
	return nil
}

func (r *recordingSender) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.name
	}
	return out
}

func (r *recordingSender) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.name == name {
			n++
		}
	}
	return n
}

func (r *recordingSender) last() (sentEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return sentEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

func requireNames(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("event names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event names = %v, want %v", got, want)
		}
	}
}
