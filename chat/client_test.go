// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(ClientConfig{
		BaseURL:    server.URL,
		AuthToken:  "token-123",
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestClientConversations(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/conversations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"conversations": [
			{"id": "conv_1", "participant_a": "usr_me", "participant_b": "usr_them",
			 "last_message_preview": "see you then", "unread_count": 2}
		]}`))
	}))

	conversations, err := client.Conversations(context.Background())
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("got %d conversations, want 1", len(conversations))
	}
	conv := conversations[0]
	if conv.ID.String() != "conv_1" || conv.UnreadCount != 2 {
		t.Errorf("conversation = %+v", conv)
	}
	if conv.LastMessageAt != nil {
		t.Error("absent last_message_at must decode as nil")
	}
}

func TestClientMessagesPaging(t *testing.T) {
	var gotCursor string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/conversations/conv_1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotCursor = r.URL.Query().Get("cursor")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages": [
			{"id": "msg_a", "conversation_id": "conv_1", "sender_id": "usr_them",
			 "content": "hello", "created_at": "2026-03-14T09:30:00Z", "status": "sent"}
		], "next_cursor": "page-2"}`))
	}))

	page, err := client.Messages(context.Background(), mustConv(t, "conv_1"), "")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if gotCursor != "" {
		t.Errorf("first page sent cursor %q", gotCursor)
	}
	if page.NextCursor != "page-2" || len(page.Messages) != 1 {
		t.Fatalf("page = %+v", page)
	}
	if !page.Messages[0].CreatedAt.Equal(baseTime) {
		t.Errorf("created_at = %v", page.Messages[0].CreatedAt)
	}

	if _, err := client.Messages(context.Background(), mustConv(t, "conv_1"), "page-2"); err != nil {
		t.Fatalf("Messages page 2: %v", err)
	}
	if gotCursor != "page-2" {
		t.Errorf("second page sent cursor %q, want page-2", gotCursor)
	}
}

func TestClientSendMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/conversations/conv_1/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body.Content != "hello" {
			t.Errorf("content = %q", body.Content)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "msg_new", "conversation_id": "conv_1",
			"sender_id": "usr_me", "content": "hello",
			"created_at": "2026-03-14T09:30:00Z", "status": "sent"}`))
	}))

	msg, err := client.SendMessage(context.Background(), mustConv(t, "conv_1"), "hello", nil)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID.String() != "msg_new" || msg.Status != StatusSent {
		t.Errorf("message = %+v", msg)
	}
}

func TestClientMarkRead(t *testing.T) {
	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodPost || r.URL.Path != "/v1/conversations/conv_1/read" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.MarkRead(context.Background(), mustConv(t, "conv_1")); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !called {
		t.Fatal("no request made")
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error_code": "rate_limited", "message": "slow down"}`))
	}))

	_, err := client.Conversations(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsAPIError(err, ErrCodeRateLimited) {
		t.Fatalf("IsAPIError(rate_limited) = false for %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Message != "slow down" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClientWrapsNonJSONFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := client.Conversations(context.Background())
	if !IsAPIError(err, ErrCodeInternal) {
		t.Fatalf("non-JSON failure should map to internal_error, got %v", err)
	}
}
