package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrCorruptConfig is returned when a stored config blob cannot be decoded
	ErrCorruptConfig = errors.New("stored config is corrupt")
)
