package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common errors returned by the transport adapter.
var (
	// ErrTimeout is returned when a fetch exceeds the configured timeout.
	ErrTimeout = errors.New("fetch timed out")
)

// ErrorClass represents a classification of fetch errors.
type ErrorClass string

const (
	// ErrorClassTimeout represents per-request timeout errors.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassNetwork represents non-timeout network/protocol errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassStatus represents non-2xx HTTP responses.
	ErrorClassStatus ErrorClass = "status"
)

// FetchError carries the failing URL and error classification alongside
// the underlying cause.
type FetchError struct {
	URL        string
	Class      ErrorClass
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: %s error (status %d)", e.URL, e.Class, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s error: %v", e.URL, e.Class, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a per-request timeout and therefore
// eligible for the dead-letter retry pass.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// classifyError categorizes a transport-level error.
func classifyError(err error) ErrorClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}
