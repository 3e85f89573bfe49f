// Copyright 2026 The Serviq Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"errors"
	"fmt"
)

// ErrEmptyContent is returned by Session.Send when the message content
// is empty or whitespace only.
var ErrEmptyContent = errors.New("chat: message content is empty")

// ErrNoOpenConversation is returned by session operations that require
// an open conversation when none is open.
var ErrNoOpenConversation = errors.New("chat: no conversation is open")

// Error codes returned by the chat API in the error_code field.
const (
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeValidation   = "validation_failed"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"
)

// APIError is a structured error response from the chat API.
type APIError struct {
	// Code is the machine-readable error code, one of the ErrCode
	// constants for known failures.
	Code string `json:"error_code"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat: API error %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsAPIError reports whether err wraps an APIError with the given
// code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// SendFailedError reports a failed message send. It carries the
// composed content so the caller can restore it for retry after the
// optimistic timeline entry has been removed.
type SendFailedError struct {
	Content     string
	Attachments []string
	Err         error
}

func (e *SendFailedError) Error() string {
	return fmt.Sprintf("chat: send failed: %v", e.Err)
}

func (e *SendFailedError) Unwrap() error { return e.Err }
