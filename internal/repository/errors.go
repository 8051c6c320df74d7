package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert loses against one of the
	// store's unique constraints. Callers re-read the relevant uniqueness
	// scope and report a precise conflict or replay result; this error must
	// never reach an API response as-is.
	ErrDuplicate = errors.New("duplicate entity")
)
