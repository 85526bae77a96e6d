package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Error is a classified failure from an external source system. Retryable
// is decided once, at the call site that constructs the error, instead of
// being re-derived from error types by every caller.
type Error struct {
	Service    string
	Op         string
	StatusCode int // 0 when the failure happened before a response
	Retryable  bool
	Err        error
}

func (e *Error) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "transient"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s: %s error (HTTP %d): %v", e.Service, e.Op, kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s error: %v", e.Service, e.Op, kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient wraps a failure expected to resolve on retry.
func Transient(service, op string, err error) *Error {
	return &Error{Service: service, Op: op, Retryable: true, Err: err}
}

// Permanent wraps a failure that retrying cannot fix.
func Permanent(service, op string, err error) *Error {
	return &Error{Service: service, Op: op, Retryable: false, Err: err}
}

// FromStatus classifies an HTTP response status: 5xx is transient, 4xx and
// anything else unexpected is permanent.
func FromStatus(service, op string, status int) *Error {
	err := fmt.Errorf("unexpected status %d", status)
	return &Error{
		Service:    service,
		Op:         op,
		StatusCode: status,
		Retryable:  status >= http.StatusInternalServerError,
		Err:        err,
	}
}

// FromTransport classifies a transport-level failure: timeouts and
// connection establishment/read failures are transient, everything else
// (including malformed responses) is permanent.
func FromTransport(service, op string, err error) *Error {
	if IsTransientTransport(err) {
		return Transient(service, op, err)
	}
	return Permanent(service, op, err)
}

// IsTransientTransport reports whether a transport error is worth retrying.
func IsTransientTransport(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// url.Error covers connection refused, reset, DNS failures and
	// truncated reads from http.Client.Do.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// IsRetryable reports whether err carries a retryable classification.
// Unclassified errors are treated as permanent.
func IsRetryable(err error) bool {
	var srcErr *Error
	if errors.As(err, &srcErr) {
		return srcErr.Retryable
	}
	return false
}
