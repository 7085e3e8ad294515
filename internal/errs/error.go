package errs

import (
	"errors"
)

// Error kinds surfaced by the coordinator. Handlers match with errors.Is;
// the wrapped message carries the human-readable reason.
var (
	ErrValidation  = errors.New("validation")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrConstraint  = errors.New("constraint")
	ErrState       = errors.New("invalid state")
	ErrConsistency = errors.New("consistency violation")

	// ErrUnavailable marks transient store contention (lock timeout,
	// serialization failure after retries). The caller may retry the whole
	// operation; no partial state was persisted.
	ErrUnavailable = errors.New("temporarily unavailable")

	ErrForbidden = errors.New("forbidden")
)
