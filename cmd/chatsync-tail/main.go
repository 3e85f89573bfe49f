// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

// chatsync-tail is a diagnostic client for the chat backend. It logs
// in as one user, connects the realtime channel, and tails the
// conversation list and, with --open, one conversation's timeline to
// stderr as log records. It is the tool to point at a misbehaving
// environment to see what the sync engine actually receives.
//
// Configuration comes from a chatsync.yaml file, located via the
// CHATSYNC_CONFIG environment variable or the --config flag:
//
//	server:
//	  api_base_url: "https://api.serviq.example"
//	  channel_address: "chat.serviq.example:7420"
//
// Example:
//
//	chatsync-tail --user usr_8f2kq1 --token $SERVIQ_TOKEN --open conv_b71xk9
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/serviq/chatsync/chat"
	"github.com/serviq/chatsync/lib/config"
	"github.com/serviq/chatsync/lib/ref"
	"github.com/serviq/chatsync/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatsync-tail: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var userFlag string
	var token string
	var openFlag string
	var verbose bool

	flagSet := pflag.NewFlagSet("chatsync-tail", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to chatsync.yaml (default: $CHATSYNC_CONFIG)")
	flagSet.StringVar(&userFlag, "user", "", "authenticated user ID (usr_...)")
	flagSet.StringVar(&token, "token", "", "API bearer token")
	flagSet.StringVar(&openFlag, "open", "", "conversation ID to open and tail (conv_...)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}
	if userFlag == "" {
		return fmt.Errorf("--user is required")
	}

	userID, err := ref.ParseUserID(userFlag)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	var openID ref.ConversationID
	if openFlag != "" {
		openID, err = ref.ParseConversationID(openFlag)
		if err != nil {
			return fmt.Errorf("invalid --open: %w", err)
		}
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chat.NewClient(chat.ClientConfig{
		BaseURL:   cfg.Server.APIBaseURL,
		AuthToken: token,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	channel, err := transport.NewChannel(transport.ChannelConfig{
		Dialer:         &transport.TCPDialer{},
		Address:        cfg.Server.ChannelAddress,
		Logger:         logger,
		InitialBackoff: cfg.Reconnect.InitialBackoff,
		MaxBackoff:     cfg.Reconnect.MaxBackoff,
	})
	if err != nil {
		return err
	}

	session, err := chat.NewSession(chat.SessionConfig{
		Client:  client,
		Channel: channel,
		UserID:  userID,
		Logger:  logger,
		Typing: chat.TypingOptions{
			StartWindow:  cfg.Typing.StartWindow,
			StopAfter:    cfg.Typing.StopAfter,
			RemoteExpiry: cfg.Typing.RemoteExpiry,
		},
	})
	if err != nil {
		return err
	}

	// Change notifications fire with session locks held; hand them to a
	// separate goroutine that reads snapshots.
	changed := make(chan struct{}, 1)
	session.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	session.Start(ctx)
	defer session.Close()

	if err := session.LoadConversations(ctx); err != nil {
		return err
	}
	logger.Info("conversation list loaded", "count", len(session.Conversations()))

	if !openID.IsZero() {
		if err := session.Open(ctx, openID); err != nil {
			return err
		}
		logger.Info("conversation opened", "conversation", openID)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-changed:
			logSnapshot(logger, session, openID)
		}
	}
}

// logSnapshot emits the current visible state as log records.
func logSnapshot(logger *slog.Logger, session *chat.Session, openID ref.ConversationID) {
	for _, conv := range session.Conversations() {
		logger.Info("conversation",
			"id", conv.ID,
			"preview", conv.LastMessagePreview,
			"unread", conv.UnreadCount)
	}
	if openID.IsZero() {
		return
	}
	for _, msg := range session.TimelineSnapshot(openID) {
		logger.Info("message",
			"id", msg.ID,
			"sender", msg.SenderID,
			"status", msg.Status,
			"content", msg.Content)
	}
	if user, ok := session.RemoteTyping(openID); ok {
		logger.Info("typing", "user", user)
	}
}
