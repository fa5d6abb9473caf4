package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateConflict is returned when the store's uniqueness constraint
	// rejects an insert. The constraint, not the query-then-insert fast path,
	// is the source of truth for deduplication.
	ErrDuplicateConflict = errors.New("duplicate conflict")
)
