package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when a record changed since it was read
	ErrVersionConflict = errors.New("version conflict")

	// ErrCanceled is returned when a write targets a canceled record
	ErrCanceled = errors.New("rail operation is canceled")
)
