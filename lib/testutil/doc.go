// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for chatsync packages.
//
// [RequireReceive] and [RequireSend] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so individual tests
// do not need direct time.After calls. These are the only place in the
// test suite where real wall-clock timeouts are used — everything that
// matters for correctness runs on lib/clock's FakeClock.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need unique
// conversation IDs or message bodies distinguishable in shared fixtures.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
