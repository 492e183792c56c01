package config

import "errors"

// ErrInvalidBound is returned when a loaded value violates a documented
// minimum or ordering constraint (e.g. max < min).
var ErrInvalidBound = errors.New("config: invalid bound")
