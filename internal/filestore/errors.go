package filestore

import "errors"

// ErrNoPath is returned by Save when the document has never been associated
// with a path (neither opened from nor previously saved to one).
var ErrNoPath = errors.New("filestore: no path associated with document")
