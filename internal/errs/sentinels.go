// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested record does not exist (or is
	// soft-deleted and the caller asked for live records only).
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict indicates optimistic concurrency failure: the
	// conditional update matched zero rows because another actor saved the
	// record first. Callers must re-read current state before retrying.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidCascade indicates a cascade-clone spec named a relation that
	// is not declared as many-to-many or reverse one-to-many. Programmer error.
	ErrInvalidCascade = errors.New("invalid cascade relation")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)
