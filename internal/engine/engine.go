package engine

import (
	"bytes"
	"io"

	"github.com/dshills/ziggurat/internal/config"
	"github.com/dshills/ziggurat/internal/document"
	"github.com/dshills/ziggurat/internal/filestore"
	"github.com/dshills/ziggurat/internal/history"
	"github.com/dshills/ziggurat/internal/mapped"
)

// Re-export commonly used collaborator types for convenience, following the
// teacher's engine.go re-export block.
type (
	Caret      = document.Caret
	Position   = document.Position
	Selection  = document.Selection
	Edit       = document.Edit
	EditBatch  = document.EditBatch
	LineEnding = document.LineEnding
	Origin     = history.Origin
)

const (
	LineEndingLF   = document.LineEndingLF
	LineEndingCRLF = document.LineEndingCRLF
	LineEndingCR   = document.LineEndingCR

	OriginTyping    = history.OriginTyping
	OriginBackspace = history.OriginBackspace
	OriginDelete    = history.OriginDelete
	OriginPaste     = history.OriginPaste
)

// Engine is the facade combining a Document, its History, and its File
// lifecycle. Unlike the teacher's Engine, it carries no internal locking:
// spec.md §5 is explicit that the engine is single-threaded and not
// reentrant, so every method assumes a single caller.
type Engine struct {
	doc  *document.Document
	hist *history.History
	file *filestore.File

	cfg      config.Config
	readOnly bool
}

// New creates an empty, unnamed Engine (a new scratch document).
func New(opts ...Option) (*Engine, error) {
	return newEngine(&mapped.Source{}, "", opts...)
}

// Open memory-maps path (spec.md §4.5 "Open") and builds an Engine over it.
// A path that does not exist yields an empty Engine still associated with
// path (spec.md §6: "opens an empty document associated with that path
// (creates on save)"), matching mapped.Open's "no file" contract for the
// document content while keeping Path() non-empty.
func Open(path string, opts ...Option) (*Engine, error) {
	src, err := mapped.Open(path)
	if err != nil {
		return nil, err
	}
	return newEngine(src, path, opts...)
}

// NewFromReader creates an Engine whose initial content is read fully from
// r, as an in-memory (unnamed) scratch document — the teacher's
// NewFromReader, adapted to build on the add buffer via Document.CaretInsert
// instead of a rope built directly from a reader.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if _, err := e.doc.CaretInsert(content); err != nil {
			return nil, err
		}
		if err := e.doc.MoveTo(0); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func newEngine(src *mapped.Source, path string, opts ...Option) (*Engine, error) {
	e := &Engine{cfg: config.Default()}
	for _, opt := range opts {
		opt(e)
	}

	doc, err := document.New(src, e.cfg.PiecetreeOptions()...)
	if err != nil {
		return nil, err
	}
	e.doc = doc
	e.hist = history.New(e.cfg.HistoryOptions()...)
	e.file = filestore.NewFile(path, src)
	return e, nil
}

// Path reports the engine's current on-disk path, or "" if unnamed.
func (e *Engine) Path() string { return e.file.Path() }

// ----- read operations -----

// Text returns the full document content.
func (e *Engine) Text() (string, error) {
	var buf bytes.Buffer
	if err := e.doc.Materialize(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Size returns the document's byte length.
func (e *Engine) Size() int64 { return e.doc.Size() }

// LineCount returns the number of lines.
func (e *Engine) LineCount() int { return e.doc.LineCount() }

// LineSpan returns the start byte and length of line row (spec.md §4.3).
func (e *Engine) LineSpan(row int) (start, length int64, err error) { return e.doc.LineSpan(row) }

// Caret returns the current caret.
func (e *Engine) Caret() Caret { return e.doc.Caret() }

// Selection returns the active selection and whether one exists.
func (e *Engine) Selection() (Selection, bool) { return e.doc.Selection() }

// LineEnding returns the line-ending style detected at open.
func (e *Engine) LineEnding() LineEnding { return e.doc.LineEnding() }

// Document exposes the underlying document for callers (e.g. internal/host)
// that need direct access to navigation methods not re-exported here.
func (e *Engine) Document() *document.Document { return e.doc }

// History exposes the underlying history for callers that need direct
// access to CanUndo/CanRedo/UndoCount/RedoCount.
func (e *Engine) History() *history.History { return e.hist }

// ----- navigation (pass-through, never recorded in history) -----

func (e *Engine) MoveTo(byteOff int64) error            { return e.doc.MoveTo(byteOff) }
func (e *Engine) MoveLeft(cancel bool) error            { return e.doc.MoveLeft(cancel) }
func (e *Engine) MoveRight(cancel bool) error           { return e.doc.MoveRight(cancel) }
func (e *Engine) MoveUp(cancel bool) error              { return e.doc.MoveUp(cancel) }
func (e *Engine) MoveDown(cancel bool) error            { return e.doc.MoveDown(cancel) }
func (e *Engine) MoveHome(cancel bool) error            { return e.doc.MoveHome(cancel) }
func (e *Engine) MoveEnd(cancel bool) error             { return e.doc.MoveEnd(cancel) }
func (e *Engine) MoveWordLeft(cancel bool) error        { return e.doc.MoveWordLeft(cancel) }
func (e *Engine) MoveWordRight(cancel bool) error       { return e.doc.MoveWordRight(cancel) }
func (e *Engine) SelectWord() error                     { return e.doc.SelectWord() }
func (e *Engine) SelectLine() error                     { return e.doc.SelectLine() }
func (e *Engine) SelectDocument() error                 { return e.doc.SelectDocument() }
func (e *Engine) CancelSelection()                      { e.doc.CancelSelection() }
func (e *Engine) ExtendSelectionTo(byteOff int64) error { return e.doc.ExtendSelectionTo(byteOff) }

// ----- write operations -----

// Insert inserts text at the caret (replacing any active selection) and
// records it in history under origin (spec.md §4.3 "caret_insert", §4.4).
// An origin different from the open transaction's starts a new transaction
// inside history.Record; Insert itself does not commit on navigation.
func (e *Engine) Insert(text []byte, origin Origin) (EditBatch, error) {
	if e.readOnly {
		return EditBatch{}, ErrReadOnly
	}
	batch, err := e.doc.CaretInsert(text)
	if err != nil {
		return EditBatch{}, err
	}
	e.hist.Record(batch, origin)
	return batch, nil
}

// Backspace deletes the active selection or the byte to the left of the
// caret, recorded under history.OriginBackspace.
func (e *Engine) Backspace() (EditBatch, error) {
	if e.readOnly {
		return EditBatch{}, ErrReadOnly
	}
	batch, err := e.doc.CaretBackspace()
	if err != nil {
		return EditBatch{}, err
	}
	e.hist.Record(batch, OriginBackspace)
	return batch, nil
}

// Delete deletes the active selection or the byte to the right of the
// caret (the "Delete" key), recorded under history.OriginDelete.
func (e *Engine) Delete() (EditBatch, error) {
	if e.readOnly {
		return EditBatch{}, ErrReadOnly
	}
	batch, err := e.doc.CaretDelete()
	if err != nil {
		return EditBatch{}, err
	}
	e.hist.Record(batch, OriginDelete)
	return batch, nil
}

// Paste inserts text at the caret as a single, never-coalescing transaction
// (spec.md §4.4 "Paste forms a single-edit transaction per paste").
func (e *Engine) Paste(text []byte) (EditBatch, error) {
	return e.Insert(text, OriginPaste)
}

// CommitTransaction closes the open undo transaction without performing an
// edit, for navigation/mouse-click/origin-switch events that must break
// coalescing (spec.md §4.4 "Non-coalescing cases").
func (e *Engine) CommitTransaction() { e.hist.Commit() }

// Undo reverts the most recent transaction.
func (e *Engine) Undo() error { return e.hist.Undo(e.doc) }

// Redo reapplies the most recently undone transaction.
func (e *Engine) Redo() error { return e.hist.Redo(e.doc) }

// CanUndo reports whether Undo has a transaction to apply.
func (e *Engine) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether Redo has a transaction to apply.
func (e *Engine) CanRedo() bool { return e.hist.CanRedo() }

// ----- file lifecycle -----

// Save streams the document to its associated path (spec.md §4.5), fails
// with filestore.ErrNoPath if the engine is unnamed.
func (e *Engine) Save() error {
	if e.readOnly {
		return ErrReadOnly
	}
	return e.file.Save(e.doc.Tree())
}

// SaveAs saves the document to path and adopts it as the engine's path.
func (e *Engine) SaveAs(path string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	if err := e.file.SaveAs(path, e.doc.Tree()); err != nil {
		return err
	}
	return nil
}

// Close releases the engine's memory-mapped original source.
func (e *Engine) Close() error { return e.file.Close() }
