// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/serviq/chatsync/lib/clock"
	"github.com/serviq/chatsync/lib/codec"
)

// ErrNotConnected is returned by Send when no connection is currently
// established. Sends are fire-and-forget: the caller may retry after
// the next connect callback, or rely on REST catch-up instead.
var ErrNotConnected = errors.New("transport: channel not connected")

// Default redial backoff bounds, used when the config leaves them zero.
const (
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 15 * time.Second
)

// Handler consumes one inbound event payload. Handlers run on the
// channel's read loop, one at a time, in receipt order — they must not
// block on long work.
type Handler func(payload codec.RawMessage)

// ChannelConfig configures a Channel.
type ChannelConfig struct {
	// Dialer opens connections to the channel endpoint.
	Dialer Dialer

	// Address is passed to the Dialer on every (re)connection attempt.
	Address string

	// Clock is used for backoff waits. If nil, the real clock is used.
	Clock clock.Clock

	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger

	// InitialBackoff and MaxBackoff bound the redial backoff. The
	// delay starts at InitialBackoff, doubles per failed attempt, is
	// capped at MaxBackoff, and resets after a successful connection.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Channel is the long-lived bidirectional event connection of one
// authenticated session. It is constructed once and shared by
// reference with every component that sends or receives events.
//
// Channel owns the connection lifecycle: Connect starts a background
// loop that dials, dispatches inbound envelopes to subscribers, and
// redials with exponential backoff when the connection drops. Connect
// callbacks fire on every fresh connection (including reconnects) so
// subscribers can reassert server-side room membership.
type Channel struct {
	dialer         Dialer
	address        string
	clk            clock.Clock
	logger         *slog.Logger
	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu            sync.Mutex
	peer          *Peer // nil while disconnected
	handlers      map[string][]Handler
	onConnect     []func()
	onDisconnect  []func()
	started       bool
	cancel        context.CancelFunc
	done          chan struct{} // closed when the run loop exits
}

// NewChannel creates a Channel. It does not dial — call Connect.
func NewChannel(config ChannelConfig) (*Channel, error) {
	if config.Dialer == nil {
		return nil, fmt.Errorf("transport: Dialer is required")
	}
	if config.Address == "" {
		return nil, fmt.Errorf("transport: Address is required")
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	initialBackoff := config.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = defaultInitialBackoff
	}
	maxBackoff := config.MaxBackoff
	if maxBackoff < initialBackoff {
		maxBackoff = defaultMaxBackoff
	}

	return &Channel{
		dialer:         config.Dialer,
		address:        config.Address,
		clk:            clk,
		logger:         logger,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		handlers:       make(map[string][]Handler),
		done:           make(chan struct{}),
	}, nil
}

// Subscribe registers a handler for the named event. Handlers are
// invoked once per inbound event of that name, in receipt order, from
// the read loop. Register all subscriptions before Connect — there is
// no unsubscribe, matching the session-lifetime ownership model.
func (c *Channel) Subscribe(name string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = append(c.handlers[name], handler)
}

// OnConnect registers a callback fired after every successful
// connection, including reconnects. Callbacks run on the connection
// loop before any event of the new connection is dispatched, so a
// callback that re-joins rooms wins the race against inbound traffic.
func (c *Channel) OnConnect(callback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, callback)
}

// OnDisconnect registers a callback fired after a connection is lost,
// before the redial backoff starts.
func (c *Channel) OnDisconnect(callback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = append(c.onDisconnect, callback)
}

// Connect starts the connection loop. Idempotent: subsequent calls are
// no-ops while the channel is running. The loop stops when ctx is
// cancelled or Close is called.
func (c *Channel) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(runCtx)
}

// Close stops the connection loop and closes any live connection.
// Blocks until the loop has exited. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	if !c.started {
		c.started = true // a future Connect stays a no-op
		c.mu.Unlock()
		close(c.done)
		return
	}
	cancel := c.cancel
	peer := c.peer
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if peer != nil {
		peer.Close()
	}
	<-c.done
}

// Send writes one fire-and-forget event. There is no per-event
// acknowledgement at this layer. Returns ErrNotConnected while the
// channel is between connections.
func (c *Channel) Send(name string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.peer == nil {
		return ErrNotConnected
	}
	return c.peer.Send(name, payload)
}

// Connected reports whether a connection is currently established.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer != nil
}

// run is the connection loop: dial, dispatch until the connection
// breaks, back off, redial. Exits when ctx is cancelled.
func (c *Channel) run(ctx context.Context) {
	defer close(c.done)

	backoff := c.initialBackoff
	for {
		conn, err := c.dialer.DialContext(ctx, c.address)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("channel dial failed, backing off",
				"address", c.address,
				"backoff", backoff,
				"error", err,
			)
			select {
			case <-c.clk.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = min(backoff*2, c.maxBackoff)
			continue
		}
		backoff = c.initialBackoff

		peer := NewPeer(conn)
		c.mu.Lock()
		c.peer = peer
		connectCallbacks := append([]func(){}, c.onConnect...)
		c.mu.Unlock()

		c.logger.Info("channel connected", "address", c.address)
		for _, callback := range connectCallbacks {
			callback()
		}

		readErr := c.readLoop(ctx, peer)

		c.mu.Lock()
		c.peer = nil
		disconnectCallbacks := append([]func(){}, c.onDisconnect...)
		c.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("channel disconnected", "address", c.address, "error", readErr)
		for _, callback := range disconnectCallbacks {
			callback()
		}
	}
}

// readLoop dispatches inbound envelopes until the connection breaks.
func (c *Channel) readLoop(ctx context.Context, peer *Peer) error {
	for {
		envelope, err := peer.Receive()
		if err != nil {
			peer.Close()
			return err
		}

		c.mu.Lock()
		handlers := append([]Handler{}, c.handlers[envelope.Name]...)
		c.mu.Unlock()

		if len(handlers) == 0 {
			// Unknown events are logged and dropped, not an error:
			// a newer server may emit event types this client
			// predates.
			c.logger.Debug("no subscriber for event", "event", envelope.Name)
			continue
		}
		for _, handler := range handlers {
			handler(envelope.Payload)
		}

		if ctx.Err() != nil {
			peer.Close()
			return ctx.Err()
		}
	}
}
