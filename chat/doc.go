// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat implements the client-side conversation engine: the
// REST client for the chat API, the conversation list and per
// conversation message timelines, room membership over the realtime
// channel, typing presence, and the Session that ties them together.
//
// A Session owns one conversation list, a cache of timelines, a room
// manager, and a typing controller. All store state is guarded by the
// session mutex; REST calls happen outside it so a slow network never
// blocks event dispatch. Realtime events arrive on the transport
// channel's read goroutine and are merged into the stores through the
// session's handlers.
//
// Messages carry a total order of (CreatedAt, ID) and every merge path
// deduplicates by message ID, so replayed history pages and live
// broadcasts of the same message are idempotent.
package chat
