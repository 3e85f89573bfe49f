// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/serviq/chatsync/lib/ref"
)

// maxResponseBytes caps how much of an API response body is read.
const maxResponseBytes = 8 << 20

// ClientConfig configures a REST Client.
type ClientConfig struct {
	// BaseURL is the chat API origin, e.g. "https://api.example.com".
	BaseURL string

	// AuthToken is sent as a bearer token on every request.
	AuthToken string

	// HTTPClient is the underlying HTTP client. Defaults to a client
	// with a 30 second timeout.
	HTTPClient *http.Client

	// Logger for request failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to the chat REST API. It is the fallback data path: the
// conversation snapshot, message history pages, sends, and read marks
// all go through it, while the realtime channel only carries live
// notifications.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a REST client for the chat API.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("chat: client config requires a base URL")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authToken:  cfg.AuthToken,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// MessagesPage is one page of message history, newest page first. A
// non-empty NextCursor means older messages remain.
type MessagesPage struct {
	Messages   []Message `json:"messages"`
	NextCursor string    `json:"next_cursor"`
}

type conversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}

type sendMessageRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
}

// Conversations fetches the full conversation snapshot for the
// authenticated user.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var resp conversationsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/v1/conversations", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// Messages fetches one page of history for a conversation. An empty
// cursor requests the most recent page; pass a page's NextCursor to
// fetch the page before it.
func (c *Client) Messages(ctx context.Context, conversationID ref.ConversationID, cursor string) (*MessagesPage, error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	var page MessagesPage
	path := "/v1/conversations/" + conversationID.String() + "/messages"
	if err := c.doRequest(ctx, http.MethodGet, path, query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SendMessage persists a message and returns the server's canonical
// record, with its permanent ID and timestamp.
func (c *Client) SendMessage(ctx context.Context, conversationID ref.ConversationID, content string, attachments []string) (*Message, error) {
	body := sendMessageRequest{Content: content, Attachments: attachments}
	var msg Message
	path := "/v1/conversations/" + conversationID.String() + "/messages"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead records that the local user has read the conversation. The
// server resets the stored unread counter and notifies the other
// participant with a messages_read event.
func (c *Client) MarkRead(ctx context.Context, conversationID ref.ConversationID) error {
	path := "/v1/conversations/" + conversationID.String() + "/read"
	return c.doRequest(ctx, http.MethodPost, path, nil, nil, nil)
}

// doRequest performs one API request. A non-2xx response is decoded
// into an APIError; out, when non-nil, receives the decoded success
// body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("chat: encoding %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("chat: building %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("chat: reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = ErrCodeInternal
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("chat: decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}
