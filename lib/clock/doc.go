// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code injects
// [Real]; tests inject [Fake] and drive it with Advance.
//
// The chat core's only user-visible timing behavior is timer-based:
// typing-indicator debounce and expiry, and the channel's reconnect
// backoff. Every component that arms a timer takes a Clock in its
// config instead of calling the time package directly, so tests can
// fire those timers deterministically with FakeClock.Advance and
// FakeClock.WaitForTimers — no sleeping, no flaky timing margins.
package clock
