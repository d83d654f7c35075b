package cowin

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCenters is returned when a calendar payload has no centers field.
	ErrMissingCenters = errors.New("cowin: response has no centers field")

	// ErrUnsupportedLookup is returned by lookup strategies that are not implemented.
	ErrUnsupportedLookup = errors.New("cowin: lookup strategy not supported")
)

// MalformedError reports a required field missing from a calendar payload.
type MalformedError struct {
	Field  string
	Center string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("cowin: center %q is missing %s", e.Center, e.Field)
}

// FetchError wraps every failure of a single availability request. Callers
// treat all of them as retryable on the next pass.
type FetchError struct {
	Op  string
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cowin: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is, or wraps, a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
