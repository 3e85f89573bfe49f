// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/serviq/chatsync/lib/clock"
	"github.com/serviq/chatsync/lib/ref"
)

// Typing presence defaults.
const (
	// DefaultTypingStartWindow throttles typing_start emission to one
	// per window while the user keeps typing.
	DefaultTypingStartWindow = 2 * time.Second

	// DefaultTypingStopAfter is the inactivity span after which
	// typing_stop is emitted.
	DefaultTypingStopAfter = 2 * time.Second

	// DefaultRemoteTypingExpiry clears a remote typing flag whose
	// user_stopped_typing event never arrived. It must exceed the
	// start window so refreshed typing does not flicker.
	DefaultRemoteTypingExpiry = 3 * time.Second
)

// TypingOptions tunes the typing presence timers. Zero fields take the
// package defaults.
type TypingOptions struct {
	StartWindow  time.Duration
	StopAfter    time.Duration
	RemoteExpiry time.Duration
}

func (o TypingOptions) withDefaults() TypingOptions {
	if o.StartWindow <= 0 {
		o.StartWindow = DefaultTypingStartWindow
	}
	if o.StopAfter <= 0 {
		o.StopAfter = DefaultTypingStopAfter
	}
	if o.RemoteExpiry <= 0 {
		o.RemoteExpiry = DefaultRemoteTypingExpiry
	}
	return o
}

type localTyping struct {
	lastStart time.Time
	stopTimer *clock.Timer
}

type remoteTyping struct {
	userID      ref.UserID
	expiryTimer *clock.Timer
}

// TypingController owns typing presence in both directions. Outbound,
// it throttles typing_start to one per window and emits typing_stop
// after an inactivity span. Inbound, it tracks which remote user is
// typing per conversation and expires stale flags on its own so a lost
// user_stopped_typing event cannot leave a flag stuck.
//
// The controller has its own lock because its timers fire on clock
// goroutines.
type TypingController struct {
	sender EventSender
	clk    clock.Clock
	logger *slog.Logger

	localUser ref.UserID
	lookup    func(ref.ConversationID) (Conversation, bool)
	opts      TypingOptions

	mu        sync.Mutex
	local     map[ref.ConversationID]*localTyping
	remote    map[ref.ConversationID]*remoteTyping
	listeners []func()
}

// NewTypingController creates a controller. lookup resolves a
// conversation for inbound event validation; events for unknown
// conversations or non-participants are dropped.
func NewTypingController(sender EventSender, clk clock.Clock, localUser ref.UserID, lookup func(ref.ConversationID) (Conversation, bool), opts TypingOptions, logger *slog.Logger) *TypingController {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TypingController{
		sender:    sender,
		clk:       clk,
		logger:    logger,
		localUser: localUser,
		lookup:    lookup,
		opts:      opts.withDefaults(),
		local:     make(map[ref.ConversationID]*localTyping),
		remote:    make(map[ref.ConversationID]*remoteTyping),
	}
}

// OnChange registers a listener invoked whenever a remote typing flag
// changes. Listeners cannot be removed.
func (c *TypingController) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// NotifyTyping records local typing activity in a conversation. The
// first call opens a window and emits typing_start; calls within the
// window only push the stop timer back. A call after the window
// re-emits typing_start so the other side's expiry timer stays ahead
// of real typing.
func (c *TypingController) NotifyTyping(conversationID ref.ConversationID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	entry := c.local[conversationID]
	if entry == nil {
		entry = &localTyping{}
		c.local[conversationID] = entry
	}
	if entry.lastStart.IsZero() || now.Sub(entry.lastStart) >= c.opts.StartWindow {
		entry.lastStart = now
		c.emit(EventTypingStart, TypingPayload{ConversationID: conversationID, UserID: c.localUser})
	}
	if entry.stopTimer == nil {
		entry.stopTimer = c.clk.AfterFunc(c.opts.StopAfter, func() {
			c.stopLocal(conversationID)
		})
	} else {
		entry.stopTimer.Reset(c.opts.StopAfter)
	}
}

// HandleRemoteTyping processes an inbound user_typing event. An event
// from the local user, an unknown conversation, or a user who is not a
// participant of the conversation is dropped.
func (c *TypingController) HandleRemoteTyping(conversationID ref.ConversationID, userID ref.UserID) {
	if userID == c.localUser {
		return
	}
	if c.lookup != nil {
		conv, ok := c.lookup(conversationID)
		if !ok || !conv.HasParticipant(userID) {
			c.logger.Debug("dropping typing event",
				"conversation", conversationID, "user", userID)
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.remote[conversationID]
	if entry == nil {
		entry = &remoteTyping{userID: userID}
		entry.expiryTimer = c.clk.AfterFunc(c.opts.RemoteExpiry, func() {
			c.expireRemote(conversationID)
		})
		c.remote[conversationID] = entry
		c.notifyLocked()
		return
	}
	entry.userID = userID
	entry.expiryTimer.Reset(c.opts.RemoteExpiry)
}

// HandleRemoteStoppedTyping processes an inbound user_stopped_typing
// event.
func (c *TypingController) HandleRemoteStoppedTyping(conversationID ref.ConversationID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearRemoteLocked(conversationID)
}

// RemoteTyping reports which user, if any, is currently typing in the
// conversation.
func (c *TypingController) RemoteTyping(conversationID ref.ConversationID) (ref.UserID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.remote[conversationID]
	if entry == nil {
		return ref.UserID{}, false
	}
	return entry.userID, true
}

// StopTyping closes the local typing window, emitting typing_stop if
// one was open. Sending a message calls it so the recipient's
// indicator clears with the message instead of two seconds later.
func (c *TypingController) StopTyping(conversationID ref.ConversationID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocalWindowLocked(conversationID)
}

// CloseConversation releases the typing state of a conversation being
// closed: an open local window emits its typing_stop immediately, and
// the remote flag is cleared without waiting for expiry.
func (c *TypingController) CloseConversation(conversationID ref.ConversationID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocalWindowLocked(conversationID)
	c.clearRemoteLocked(conversationID)
}

func (c *TypingController) stopLocalWindowLocked(conversationID ref.ConversationID) {
	entry := c.local[conversationID]
	if entry == nil {
		return
	}
	if entry.stopTimer != nil && entry.stopTimer.Stop() {
		c.emit(EventTypingStop, TypingPayload{ConversationID: conversationID, UserID: c.localUser})
	}
	delete(c.local, conversationID)
}

// stopLocal fires on the inactivity timer: it emits typing_stop and
// closes the window so the next keystroke starts a fresh one. The
// entry may already be gone if CloseConversation raced the timer.
func (c *TypingController) stopLocal(conversationID ref.ConversationID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.local[conversationID] == nil {
		return
	}
	delete(c.local, conversationID)
	c.emit(EventTypingStop, TypingPayload{ConversationID: conversationID, UserID: c.localUser})
}

func (c *TypingController) expireRemote(conversationID ref.ConversationID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearRemoteLocked(conversationID)
}

func (c *TypingController) clearRemoteLocked(conversationID ref.ConversationID) {
	entry := c.remote[conversationID]
	if entry == nil {
		return
	}
	entry.expiryTimer.Stop()
	delete(c.remote, conversationID)
	c.notifyLocked()
}

func (c *TypingController) emit(name string, payload TypingPayload) {
	if err := c.sender.Send(name, payload); err != nil {
		c.logger.Debug("typing event not sent", "event", name, "error", err)
	}
}

func (c *TypingController) notifyLocked() {
	for _, fn := range c.listeners {
		fn()
	}
}
