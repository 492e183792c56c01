// Package engine is the top-level facade combining the piece tree
// (internal/piecetree), the caret/selection layer (internal/document),
// transactional undo/redo (internal/history), and the file lifecycle
// (internal/filestore) into a single API for a host shell (internal/host,
// cmd/ziggurat) to drive.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - piecetree: mutable B-tree of pieces over two backing buffers
//   - document: caret, selection, word/line motion, materialization
//   - history: origin-based coalescing undo/redo
//   - filestore: mmap'd open, streamed save, atomic rename, re-seat
//
// Grounded on the teacher's internal/engine facade (New/NewFromReader,
// functional options, a single entry point wrapping several collaborating
// sub-packages) but restructured around spec.md's components in place of
// the teacher's rope/buffer/cursor/tracking stack, and with the internal
// locking removed per spec.md §5 (single-threaded, not reentrant).
//
// # Basic usage
//
//	e, err := engine.New()
//	e.Insert([]byte("Hello, World!"), history.OriginTyping)
//	text, _ := e.Text()
//
//	e.Undo()
//	e.Redo()
//
// # Opening and saving files
//
//	e, err := engine.Open("notes.txt")
//	e.Insert([]byte("more text"), history.OriginTyping)
//	err = e.Save()
//
//	err = e.SaveAs("notes-copy.txt")
package engine
