package taxwiz

import (
	"errors"
	"fmt"
)

// Error classes. Every recoverable failure wraps one of them so that callers can
// decide on the fallback with errors.Is.
var (
	// ErrInputMalformed is returned for rows of an export that cannot be read.
	ErrInputMalformed = errors.New("input malformed")
	// ErrRateUnavailable is returned when no rate could be resolved.
	ErrRateUnavailable = errors.New("rate unavailable")
	// ErrCacheIO is returned when the rate cache cannot be read or written.
	ErrCacheIO = errors.New("rate cache io")
)

// InputError describes a malformed row of an export.
type InputError struct {
	Line  int    // 1-based line in the file, header included
	Field string // column that failed, if known
	Err   error
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %q: %v", e.Line, e.Field, e.Err)
}

func (e *InputError) Unwrap() []error { return []error{ErrInputMalformed, e.Err} }

// RateError describes why the rate of a key could not be resolved.
type RateError struct {
	Key    RateKey
	Reason string
	Err    error // underlying cause, may be nil
}

func (e *RateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no %s rate on %s: %s", e.Key.Currency, e.Key.Date, e.Reason)
	}
	return fmt.Sprintf("no %s rate on %s: %s: %v", e.Key.Currency, e.Key.Date, e.Reason, e.Err)
}

func (e *RateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRateUnavailable}
	}
	return []error{ErrRateUnavailable, e.Err}
}
