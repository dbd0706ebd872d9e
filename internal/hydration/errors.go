package hydration

import (
	"errors"
	"fmt"
)

// Phase names the step of a run that failed.
type Phase string

const (
	PhaseCursor  Phase = "cursor"
	PhaseFetch   Phase = "fetch"
	PhasePersist Phase = "persist"
)

// RunError is returned by Pipeline.Run when a run aborts.
// Page is the 1-based page number being processed when the error occurred.
type RunError struct {
	Phase Phase
	Page  int
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("hydration %s failed at page %d: %v", e.Phase, e.Page, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a fetch failure that a later run is
// expected to get past. Persistence and cursor failures are not transient.
func IsTransient(err error) bool {
	var runErr *RunError
	if !errors.As(err, &runErr) {
		return false
	}
	return runErr.Phase == PhaseFetch
}
