package piecetree

import "errors"

// ErrOutOfMemory is returned when an allocation fails. Go's runtime panics
// on actual OOM, so in practice this surfaces only from explicit size
// guards (e.g. a capacity that would overflow an arena index).
var ErrOutOfMemory = errors.New("piecetree: out of memory")

// ErrFileTooBig is returned when a source exceeds MaxPieceLen, the largest
// length a packed Piece can address.
var ErrFileTooBig = errors.New("piecetree: file too big")

// ErrInvalidRange is returned for an offset or length outside the document.
var ErrInvalidRange = errors.New("piecetree: invalid range")
