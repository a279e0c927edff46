package repository

import "errors"

var (
	// ErrNotFound is returned when no aggregate matches the key or filter.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key (user email, profile owner) is already taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrVersionConflict is returned by conditional updates when the stored
	// version no longer matches the one that was read.
	ErrVersionConflict = errors.New("version conflict")
)
