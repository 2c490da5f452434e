// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package scoring

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// APIError represents a non-2xx response from the scoring service.
// The body is kept verbatim (bounded at read time) because the
// reference backend reports failures as plain-text or JSON messages
// with no fixed schema.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Body is the response body, for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scoring: HTTP %d: %s", e.StatusCode, e.Body)
}

// TransportError represents a failure to complete the HTTP exchange at
// all: connection refused, DNS failure, or a deadline expiring before
// or during the response. The wrapped error preserves the underlying
// cause for errors.Is/As inspection.
type TransportError struct {
	// URL is the request URL that failed.
	URL string

	// Err is the underlying transport error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("scoring: requesting %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsServerError reports whether err is a non-2xx response from the
// scoring service.
func IsServerError(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError)
}

// IsTimeout reports whether err is a request that exceeded its time
// bound (the per-call timeout, or a caller-supplied context deadline).
func IsTimeout(err error) bool {
	var transportError *TransportError
	if !errors.As(err, &transportError) {
		return false
	}
	if errors.Is(transportError.Err, context.DeadlineExceeded) {
		return true
	}
	var netError net.Error
	return errors.As(transportError.Err, &netError) && netError.Timeout()
}

// IsUnreachable reports whether err is a connection-level failure that
// is not a timeout (refused connection, DNS failure, reset).
func IsUnreachable(err error) bool {
	var transportError *TransportError
	return errors.As(err, &transportError) && !IsTimeout(err)
}
