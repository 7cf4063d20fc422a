package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrVersionConflict is returned when an optimistic-concurrency update
	// loses the race: the record changed since it was last read.
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicateActive is returned when inserting a confirmation would
	// violate the one-active-request-per-passenger-per-target constraint.
	ErrDuplicateActive = errors.New("active confirmation already exists")
)
