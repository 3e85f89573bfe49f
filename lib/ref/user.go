// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// userPrefix is the mandatory prefix of every user identifier.
const userPrefix = "usr_"

// UserID is a validated user identifier (e.g., "usr_8f2kq1").
//
// User IDs are server-assigned opaque identifiers. The chat core never
// constructs them from scratch — they arrive in session credentials,
// REST responses, and channel events, and are parsed into this type at
// the boundary.
//
// UserID is an immutable value type. The zero value is not valid; use
// IsZero to check.
type UserID struct {
	id string
}

// ParseUserID validates and wraps a raw user identifier string.
func ParseUserID(raw string) (UserID, error) {
	if err := checkOpaqueID(raw, userPrefix, "user ID"); err != nil {
		return UserID{}, err
	}
	return UserID{id: raw}, nil
}

// String returns the full user ID string (e.g., "usr_8f2kq1").
func (u UserID) String() string { return u.id }

// IsZero reports whether the UserID is the zero value (uninitialized).
func (u UserID) IsZero() bool { return u.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (u UserID) MarshalText() ([]byte, error) {
	if u.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero UserID")
	}
	return []byte(u.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// checkOpaqueID validates the shared shape of server-assigned opaque
// identifiers: a fixed prefix, a non-empty remainder, and no whitespace
// anywhere. The remainder is otherwise opaque — the server owns its
// format, and the client must not assume more structure than this.
func checkOpaqueID(raw, prefix, kind string) error {
	if raw == "" {
		return fmt.Errorf("empty %s", kind)
	}
	if !strings.HasPrefix(raw, prefix) {
		return fmt.Errorf("%s must start with %q: %q", kind, prefix, raw)
	}
	if len(raw) == len(prefix) {
		return fmt.Errorf("%s has empty identifier part: %q", kind, raw)
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return fmt.Errorf("%s contains whitespace: %q", kind, raw)
	}
	return nil
}
