// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:  "valid",
			input: "usr_8f2kq1",
		},
		{
			name:  "valid long opaque part",
			input: "usr_YTRkZjEwNjUtNzU4ZC00ZjFk",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: "empty user ID",
		},
		{
			name:    "missing prefix",
			input:   "8f2kq1",
			wantErr: `must start with "usr_"`,
		},
		{
			name:    "wrong prefix",
			input:   "conv_8f2kq1",
			wantErr: `must start with "usr_"`,
		},
		{
			name:    "prefix only",
			input:   "usr_",
			wantErr: "empty identifier part",
		},
		{
			name:    "embedded whitespace",
			input:   "usr_a b",
			wantErr: "whitespace",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			userID, err := ParseUserID(test.input)
			if test.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseUserID(%q) succeeded, want error containing %q", test.input, test.wantErr)
				}
				if !strings.Contains(err.Error(), test.wantErr) {
					t.Fatalf("ParseUserID(%q) error = %q, want error containing %q", test.input, err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUserID(%q) unexpected error: %v", test.input, err)
			}
			if userID.String() != test.input {
				t.Errorf("String() = %q, want %q", userID.String(), test.input)
			}
			if userID.IsZero() {
				t.Error("IsZero() = true for parsed user ID")
			}
		})
	}
}

func TestParseMessageID(t *testing.T) {
	serverID, err := ParseMessageID("msg_0042")
	if err != nil {
		t.Fatalf("ParseMessageID failed: %v", err)
	}
	if serverID.IsTemporary() {
		t.Error("server-assigned message ID reported as temporary")
	}

	tempID, err := ParseMessageID("tmp_abc")
	if err != nil {
		t.Fatalf("ParseMessageID failed for temporary ID: %v", err)
	}
	if !tempID.IsTemporary() {
		t.Error("temporary message ID not reported as temporary")
	}

	if _, err := ParseMessageID("evt_123"); err == nil {
		t.Error("expected error for unknown prefix")
	}
	if _, err := ParseMessageID(""); err == nil {
		t.Error("expected error for empty message ID")
	}
}

func TestNewTemporaryMessageID(t *testing.T) {
	first := NewTemporaryMessageID()
	second := NewTemporaryMessageID()

	if !first.IsTemporary() || !second.IsTemporary() {
		t.Fatal("generated IDs must be temporary")
	}
	if first == second {
		t.Fatalf("two generated IDs collided: %s", first)
	}
	// Generated IDs must survive a parse round-trip.
	if _, err := ParseMessageID(first.String()); err != nil {
		t.Errorf("generated ID does not parse: %v", err)
	}
}

func TestMessageIDLess(t *testing.T) {
	a, _ := ParseMessageID("msg_a")
	b, _ := ParseMessageID("msg_b")
	if !a.Less(b) {
		t.Error("msg_a should sort before msg_b")
	}
	if b.Less(a) {
		t.Error("msg_b should not sort before msg_a")
	}
	if a.Less(a) {
		t.Error("an ID should not sort before itself")
	}
}

func TestRoomDerivation(t *testing.T) {
	user, _ := ParseUserID("usr_a1")
	conversation, _ := ParseConversationID("conv_b2")

	personal := PersonalRoom(user)
	if personal.String() != "user:usr_a1" {
		t.Errorf("PersonalRoom = %q, want %q", personal, "user:usr_a1")
	}
	if !personal.IsPersonal() {
		t.Error("personal room not reported as personal")
	}

	room := ConversationRoom(conversation)
	if room.String() != "conversation:conv_b2" {
		t.Errorf("ConversationRoom = %q, want %q", room, "conversation:conv_b2")
	}
	if room.IsPersonal() {
		t.Error("conversation room reported as personal")
	}

	if !PersonalRoom(UserID{}).IsZero() {
		t.Error("PersonalRoom of zero user should be zero")
	}
}

func TestParseRoomID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:  "personal room",
			input: "user:usr_a1",
		},
		{
			name:  "conversation room",
			input: "conversation:conv_b2",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: "empty room ID",
		},
		{
			name:    "unknown scheme",
			input:   "group:grp_1",
			wantErr: "must start with",
		},
		{
			name:    "personal room with bad user",
			input:   "user:alice",
			wantErr: "invalid personal room",
		},
		{
			name:    "conversation room with bad conversation",
			input:   "conversation:usr_a1",
			wantErr: "invalid conversation room",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			roomID, err := ParseRoomID(test.input)
			if test.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseRoomID(%q) succeeded, want error containing %q", test.input, test.wantErr)
				}
				if !strings.Contains(err.Error(), test.wantErr) {
					t.Fatalf("ParseRoomID(%q) error = %q, want error containing %q", test.input, err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRoomID(%q) unexpected error: %v", test.input, err)
			}
			if roomID.String() != test.input {
				t.Errorf("String() = %q, want %q", roomID.String(), test.input)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Conversation ConversationID `json:"conversation_id"`
		Sender       UserID         `json:"sender_id"`
		Message      MessageID      `json:"message_id"`
	}

	conversation, _ := ParseConversationID("conv_b2")
	sender, _ := ParseUserID("usr_a1")
	message, _ := ParseMessageID("msg_0042")

	encoded, err := json.Marshal(payload{Conversation: conversation, Sender: sender, Message: message})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded payload
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Conversation != conversation || decoded.Sender != sender || decoded.Message != message {
		t.Errorf("round trip mismatch: %+v", decoded)
	}

	// Malformed identifiers must be rejected at the decode boundary.
	if err := json.Unmarshal([]byte(`{"sender_id":"alice"}`), &decoded); err == nil {
		t.Error("expected error decoding malformed user ID")
	}
}
