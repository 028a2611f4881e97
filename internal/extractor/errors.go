package extractor

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is reported when the requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingDependency is reported when no backend passed its capability probe.
	ErrMissingDependency = errors.New("no extraction backend available")

	// ErrNoText is returned by a backend that ran but has nothing to offer
	// for this document.
	ErrNoText = errors.New("backend produced no text")
)

// BackendError wraps a runtime failure inside a backend.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
