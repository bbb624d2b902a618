package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net"
)

// LookupError wraps a failure from a datasheet source for a single part number.
type LookupError struct {
	Source string
	Key    string
	Err    error
}

func (e *LookupError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s lookup failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s lookup for %s failed: %v", e.Source, e.Key, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the underlying failure is transient: timeouts,
// rate limits and network errors.
func (e *LookupError) Retryable() bool {
	return IsTransient(e.Err)
}

// NewLookupError creates a LookupError for the given source and normalized key
func NewLookupError(source, key string, err error) *LookupError {
	return &LookupError{Source: source, Key: key, Err: err}
}

// IsLookupError reports whether err is a LookupError (even when wrapped).
func IsLookupError(err error) bool {
	var lookupErr *LookupError
	return stdErrors.As(err, &lookupErr)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsRateLimitError(err) {
		return true
	}
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if stdErrors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
