package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates a mutating operation was attempted on a
	// read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)
