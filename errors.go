package main

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a puzzle or game id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrInvalidWord is returned for a word holding anything but letters.
	ErrInvalidWord = errors.New("invalid word")

	// ErrEmptyWordList is returned when no usable word is left to place.
	ErrEmptyWordList = errors.New("empty word list")

	// ErrOutOfBounds signals a placement that escaped the grid. Generate
	// validates every placement before writing, so seeing it is a bug.
	ErrOutOfBounds = errors.New("cell out of bounds")
)

// IsNotFound reports whether err was caused by ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}
