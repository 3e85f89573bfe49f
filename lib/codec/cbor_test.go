// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"

	"github.com/serviq/chatsync/lib/ref"
)

func TestDeterministicEncoding(t *testing.T) {
	value := map[string]any{"b": 2, "a": 1, "c": []any{"x"}}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same logical value produced different encodings")
	}
}

func TestRefTypesEncodeAsText(t *testing.T) {
	type payload struct {
		Conversation ref.ConversationID `cbor:"conversation_id"`
		Sender       ref.UserID         `cbor:"user_id"`
	}

	conversation, _ := ref.ParseConversationID("conv_b2")
	sender, _ := ref.ParseUserID("usr_a1")

	encoded, err := Marshal(payload{Conversation: conversation, Sender: sender})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// The canonical identifier strings must appear in the encoding —
	// an empty-map encoding of the unexported fields would omit them.
	if !bytes.Contains(encoded, []byte("conv_b2")) || !bytes.Contains(encoded, []byte("usr_a1")) {
		t.Fatalf("encoded payload missing identifier text: %x", encoded)
	}

	var decoded payload
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Conversation != conversation || decoded.Sender != sender {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestStreamIsSelfFraming(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)

	for _, name := range []string{"new_message", "user_typing", "messages_read"} {
		if err := encoder.Encode(map[string]string{"name": name}); err != nil {
			t.Fatalf("Encode(%s) failed: %v", name, err)
		}
	}

	decoder := NewDecoder(&buffer)
	var names []string
	for i := 0; i < 3; i++ {
		var item map[string]string
		if err := decoder.Decode(&item); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		names = append(names, item["name"])
	}
	if names[0] != "new_message" || names[2] != "messages_read" {
		t.Errorf("decoded items out of order: %v", names)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	encoded, err := Marshal(map[string]any{"known": "yes", "added_later": 42})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Known string `cbor:"known"`
	}
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal with unknown field failed: %v", err)
	}
	if decoded.Known != "yes" {
		t.Errorf("Known = %q, want %q", decoded.Known, "yes")
	}
}
