// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/serviq/chatsync/lib/clock"
	"github.com/serviq/chatsync/lib/codec"
	"github.com/serviq/chatsync/lib/ref"
	"github.com/serviq/chatsync/transport"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	// Client is the REST client. Required.
	Client *Client

	// Channel is the realtime channel. Required. The session registers
	// its event subscriptions and connect callback on it, so the
	// channel must not be connected yet.
	Channel *transport.Channel

	// UserID is the authenticated local user. Required.
	UserID ref.UserID

	// Clock drives the typing timers and optimistic message
	// timestamps. Defaults to the real clock.
	Clock clock.Clock

	// Typing tunes the typing presence timers.
	Typing TypingOptions

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// timelineState is a cached timeline plus its history paging state.
type timelineState struct {
	timeline   *Timeline
	nextCursor string
	loaded     bool
}

// Session is the live chat state of one authenticated user: the
// conversation list, cached message timelines, room membership, and
// typing presence, kept in sync through the realtime channel with the
// REST API as the authoritative fallback.
//
// All store state is guarded by the session mutex. REST calls run
// outside it, so event dispatch is never blocked by a slow request;
// every post-request merge re-checks the open conversation so a
// response that arrives after the user moved on is discarded.
type Session struct {
	client  *Client
	channel *transport.Channel
	userID  ref.UserID
	clk     clock.Clock
	logger  *slog.Logger

	typing *TypingController

	mu        sync.Mutex
	list      *ConversationList
	rooms     *RoomManager
	timelines map[ref.ConversationID]*timelineState
	open      ref.ConversationID
	listeners []func()
}

// NewSession wires a session onto the channel: event subscriptions and
// the reconnect room re-join are registered here. Call Start to begin
// connecting.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("chat: session config requires a Client")
	}
	if cfg.Channel == nil {
		return nil, fmt.Errorf("chat: session config requires a Channel")
	}
	if cfg.UserID.IsZero() {
		return nil, fmt.Errorf("chat: session config requires a UserID")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		client:    cfg.Client,
		channel:   cfg.Channel,
		userID:    cfg.UserID,
		clk:       clk,
		logger:    logger,
		list:      NewConversationList(cfg.UserID),
		timelines: make(map[ref.ConversationID]*timelineState),
	}
	s.rooms = NewRoomManager(cfg.Channel, cfg.UserID, logger)
	s.typing = NewTypingController(cfg.Channel, clk, cfg.UserID, s.lookupConversation, cfg.Typing, logger)

	s.list.OnChange(s.notifyChange)
	s.typing.OnChange(s.notifyChange)

	s.channel.OnConnect(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rooms.OnTransportConnected()
	})
	s.channel.Subscribe(EventNewMessage, s.handleNewMessage)
	s.channel.Subscribe(EventUserTyping, s.handleUserTyping)
	s.channel.Subscribe(EventUserStoppedTyping, s.handleUserStoppedTyping)
	s.channel.Subscribe(EventMessagesRead, s.handleMessagesRead)
	return s, nil
}

// OnChange registers a listener invoked after any visible state change
// in the conversation list, a timeline, or typing presence. Register
// listeners before Start. Listeners run with session locks held: they
// must not call back into the session, only schedule a refresh.
func (s *Session) OnChange(fn func()) {
	s.listeners = append(s.listeners, fn)
}

// Start begins connecting the realtime channel. The context bounds the
// whole connection lifetime.
func (s *Session) Start(ctx context.Context) {
	s.channel.Connect(ctx)
}

// Close shuts the channel down and releases the open conversation.
func (s *Session) Close() {
	s.CloseConversation()
	s.channel.Close()
}

// LoadConversations replaces the conversation list with a fresh REST
// snapshot.
func (s *Session) LoadConversations(ctx context.Context) error {
	conversations, err := s.client.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("chat: loading conversations: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.ReplaceAll(conversations)
	return nil
}

// Open makes id the open conversation: its room is joined, the most
// recent history page is loaded on first open, the conversation is
// marked read on the server, and the local unread count is cleared.
//
// A history load error leaves the conversation open but unloaded; the
// next Open retries the load.
func (s *Session) Open(ctx context.Context, id ref.ConversationID) error {
	s.mu.Lock()
	if _, ok := s.list.Get(id); !ok {
		s.mu.Unlock()
		return fmt.Errorf("chat: unknown conversation %s", id)
	}
	if s.open != id {
		if !s.open.IsZero() {
			s.typing.CloseConversation(s.open)
		}
		s.open = id
		s.list.SetOpen(id)
		s.rooms.SetOpenConversation(id)
	}
	state := s.ensureTimelineLocked(id)
	needLoad := !state.loaded
	s.mu.Unlock()

	if needLoad {
		page, err := s.client.Messages(ctx, id, "")
		if err != nil {
			return fmt.Errorf("chat: loading history for %s: %w", id, err)
		}
		s.mu.Lock()
		if s.open == id {
			state.timeline.MergeHistory(page.Messages)
			state.nextCursor = page.NextCursor
			state.loaded = true
		}
		s.mu.Unlock()
	}

	// Marking read on the server is also the read receipt: the server
	// notifies the other participant with messages_read. A failure
	// here is non-fatal; the next open retries.
	if err := s.client.MarkRead(ctx, id); err != nil {
		s.logger.Warn("mark read failed", "conversation", id, "error", err)
	}

	s.mu.Lock()
	if s.open == id {
		s.list.ClearUnread(id)
		state.timeline.MarkLocallyRead(s.userID)
	}
	s.mu.Unlock()
	return nil
}

// CloseConversation releases the open conversation: its room is left
// and its typing state torn down. The cached timeline is kept so a
// re-open does not refetch history.
func (s *Session) CloseConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open.IsZero() {
		return
	}
	s.typing.CloseConversation(s.open)
	s.rooms.ClearOpenConversation()
	s.list.SetOpen(ref.ConversationID{})
	s.open = ref.ConversationID{}
}

// Send delivers a message to the open conversation. The message
// appears in the timeline immediately as a pending entry; on server
// acknowledgement the entry is replaced by the canonical record, which
// is returned. On failure the entry is removed and the returned
// SendFailedError carries the content for retry.
func (s *Session) Send(ctx context.Context, content string, attachments []string) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrEmptyContent
	}

	s.mu.Lock()
	if s.open.IsZero() {
		s.mu.Unlock()
		return Message{}, ErrNoOpenConversation
	}
	conversationID := s.open
	pending := Message{
		ID:             ref.NewTemporaryMessageID(),
		ConversationID: conversationID,
		SenderID:       s.userID,
		Content:        content,
		Attachments:    attachments,
		CreatedAt:      s.clk.Now(),
		Status:         StatusPending,
	}
	state := s.ensureTimelineLocked(conversationID)
	if err := state.timeline.AppendPending(pending); err != nil {
		s.mu.Unlock()
		return Message{}, err
	}
	s.mu.Unlock()

	s.typing.StopTyping(conversationID)

	confirmed, err := s.client.SendMessage(ctx, conversationID, content, attachments)
	if err != nil {
		s.mu.Lock()
		state.timeline.Fail(pending.ID)
		s.mu.Unlock()
		return Message{}, &SendFailedError{Content: content, Attachments: attachments, Err: err}
	}

	s.mu.Lock()
	if confirmErr := state.timeline.Confirm(pending.ID, *confirmed); confirmErr != nil {
		s.logger.Debug("confirm after send", "error", confirmErr)
	}
	s.list.ApplyIncoming(*confirmed)
	s.mu.Unlock()

	result := *confirmed
	if result.Status == "" || result.Status == StatusPending {
		result.Status = StatusSent
	}
	return result, nil
}

// LoadOlder fetches the next older history page of the open
// conversation. It is a no-op when the history is exhausted. The page
// is discarded if the user switched conversations while it was in
// flight.
func (s *Session) LoadOlder(ctx context.Context) error {
	s.mu.Lock()
	if s.open.IsZero() {
		s.mu.Unlock()
		return ErrNoOpenConversation
	}
	conversationID := s.open
	state := s.timelines[conversationID]
	if state == nil || !state.loaded {
		s.mu.Unlock()
		return fmt.Errorf("chat: history for %s not loaded yet", conversationID)
	}
	cursor := state.nextCursor
	s.mu.Unlock()

	if cursor == "" {
		return nil
	}
	page, err := s.client.Messages(ctx, conversationID, cursor)
	if err != nil {
		return fmt.Errorf("chat: loading older messages for %s: %w", conversationID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open != conversationID {
		return nil
	}
	state.timeline.MergeHistory(page.Messages)
	state.nextCursor = page.NextCursor
	return nil
}

// NotifyTyping records local typing activity in the open conversation.
func (s *Session) NotifyTyping() {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()
	if open.IsZero() {
		return
	}
	s.typing.NotifyTyping(open)
}

// Conversations returns a copy of the conversation list in display
// order.
func (s *Session) Conversations() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Snapshot()
}

// TimelineSnapshot returns the cached timeline of a conversation in
// display order, or nil if none is cached.
func (s *Session) TimelineSnapshot(id ref.ConversationID) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.timelines[id]
	if state == nil {
		return nil
	}
	return state.timeline.Snapshot()
}

// OpenConversation returns the open conversation ID, zero if none.
func (s *Session) OpenConversation() ref.ConversationID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// RemoteTyping reports which user, if any, is typing in the
// conversation.
func (s *Session) RemoteTyping(id ref.ConversationID) (ref.UserID, bool) {
	return s.typing.RemoteTyping(id)
}

func (s *Session) lookupConversation(id ref.ConversationID) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Get(id)
}

func (s *Session) ensureTimelineLocked(id ref.ConversationID) *timelineState {
	state := s.timelines[id]
	if state == nil {
		state = &timelineState{timeline: NewTimeline(id)}
		state.timeline.OnChange(s.notifyChange)
		s.timelines[id] = state
	}
	return state
}

func (s *Session) notifyChange() {
	for _, fn := range s.listeners {
		fn()
	}
}

func (s *Session) handleNewMessage(raw codec.RawMessage) {
	var msg Message
	if err := codec.Unmarshal(raw, &msg); err != nil {
		s.logger.Warn("bad new_message payload", "error", err)
		return
	}
	if msg.ID.IsZero() || msg.ConversationID.IsZero() {
		s.logger.Warn("new_message payload missing identifiers")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state := s.timelines[msg.ConversationID]; state != nil {
		state.timeline.ApplyIncoming(msg)
		// A message arriving in the open conversation is on screen.
		if msg.ConversationID == s.open && msg.SenderID != s.userID {
			state.timeline.MarkLocallyRead(s.userID)
		}
	}
	if !s.list.ApplyIncoming(msg) {
		s.logger.Debug("conversation list ignored message",
			"conversation", msg.ConversationID, "message", msg.ID)
	}
}

func (s *Session) handleUserTyping(raw codec.RawMessage) {
	var payload TypingPayload
	if err := codec.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn("bad user_typing payload", "error", err)
		return
	}
	s.typing.HandleRemoteTyping(payload.ConversationID, payload.UserID)
}

func (s *Session) handleUserStoppedTyping(raw codec.RawMessage) {
	var payload ConversationPayload
	if err := codec.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn("bad user_stopped_typing payload", "error", err)
		return
	}
	s.typing.HandleRemoteStoppedTyping(payload.ConversationID)
}

func (s *Session) handleMessagesRead(raw codec.RawMessage) {
	var payload ConversationPayload
	if err := codec.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn("bad messages_read payload", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if state := s.timelines[payload.ConversationID]; state != nil {
		state.timeline.MarkRemoteRead(s.userID)
	}
}
