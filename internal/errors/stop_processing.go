package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrStopped matches any StopProcessingError under errors.Is.
var ErrStopped = stdErrors.New("processing stopped")

// StopProcessingError is returned when the user ends interactive selection.
// MPN is the part being shown when the stop was requested and Pending counts
// the ambiguous items, including that one, left unresolved.
type StopProcessingError struct {
	MPN     string
	Pending int
}

func (e *StopProcessingError) Error() string {
	if e.MPN == "" {
		return ErrStopped.Error()
	}
	return fmt.Sprintf("%s at %s, %d ambiguous left", ErrStopped, e.MPN, e.Pending)
}

func (e *StopProcessingError) Is(target error) bool { return target == ErrStopped }

func NewStopProcessingError(mpn string, pending int) *StopProcessingError {
	return &StopProcessingError{MPN: mpn, Pending: pending}
}

// IsStopProcessingError reports whether err is or wraps a StopProcessingError.
func IsStopProcessingError(err error) bool {
	return stdErrors.Is(err, ErrStopped)
}
