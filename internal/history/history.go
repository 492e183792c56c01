// Package history implements transactional undo/redo with origin-based
// coalescing across keystrokes (spec.md §4.4).
//
// Grounded on internal/engine/history (Operation/Invert, the overall
// Push/Undo/Redo shape) from the teacher, adapted from a two-stack
// push/pop model operating on a multi-cursor buffer down to spec.md's
// single append-only transaction vector plus index, operating on a single
// document.Document caret. Automatic origin/timing/contiguity coalescing
// (spec.md §4.4) has no teacher analog — the teacher only groups via
// explicit BeginGroup/EndGroup — so the tail transaction is mutated in place
// by tryCoalesce below, driven by a heuristic instead of a caller-bracketed
// group.
package history

import (
	"time"

	"github.com/dshills/ziggurat/internal/document"
)

// DefaultCoalesceWindow is the wall-clock gap spec.md §4.4 permits between
// coalescing edits.
const DefaultCoalesceWindow = time.Second

// DefaultMaxEntries bounds the transaction vector, following the teacher's
// NewHistory default of 1000.
const DefaultMaxEntries = 1000

// Option configures a History at construction time.
type Option func(*History)

// WithCoalesceWindow overrides the coalescing time window.
func WithCoalesceWindow(d time.Duration) Option {
	return func(h *History) { h.coalesceWindow = d }
}

// WithMaxEntries overrides the maximum number of retained transactions.
func WithMaxEntries(n int) Option {
	return func(h *History) { h.maxEntries = n }
}

// withClock overrides the wall clock, for deterministic coalescing tests.
func withClock(now func() time.Time) Option {
	return func(h *History) { h.now = now }
}

// History is an append-only vector of transactions plus an index pointing
// one past the last applied transaction, and a tx_open flag (spec.md §4.4).
type History struct {
	entries []*Transaction
	index   int
	txOpen  bool

	coalesceWindow time.Duration
	maxEntries     int
	now            func() time.Time
}

// New constructs an empty History.
func New(opts ...Option) *History {
	h := &History{
		coalesceWindow: DefaultCoalesceWindow,
		maxEntries:     DefaultMaxEntries,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CanUndo reports whether Undo has a transaction to apply.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether Redo has a transaction to apply.
func (h *History) CanRedo() bool { return h.index < len(h.entries) }

// Commit closes the open transaction so the next Record call always starts
// a fresh transaction, regardless of origin/timing (spec.md §4.4
// "Non-coalescing cases": navigation, mouse clicks, and origin switches all
// commit the open transaction).
func (h *History) Commit() { h.txOpen = false }

// Record appends batch to the history, coalescing it into the open
// transaction when spec.md §4.4's policy allows (spec.md §4.4
// "Coalescing policy").
func (h *History) Record(batch document.EditBatch, origin Origin) {
	if len(batch.Edits) == 0 {
		return
	}
	now := h.now()
	if h.tryCoalesce(batch, origin, now) {
		return
	}
	h.commitNew(batch, origin, now)
}

func (h *History) tryCoalesce(batch document.EditBatch, origin Origin, now time.Time) bool {
	if !h.txOpen || h.index == 0 || h.index != len(h.entries) {
		return false
	}
	if origin == OriginPaste {
		return false
	}
	tail := h.entries[h.index-1]
	if tail.Origin != origin {
		return false
	}
	// A negative delta (clock jump) is treated as "coalesce window
	// expired" (spec.md §9 "Coalescing timer").
	delta := now.Sub(tail.Timestamp)
	if delta < 0 || delta > h.coalesceWindow {
		return false
	}
	if len(batch.Edits) != 1 {
		return false
	}
	newEdit := batch.Edits[0]
	tailEdit := &tail.Edits[len(tail.Edits)-1]

	switch origin {
	case OriginTyping:
		if !newEdit.IsInsert() || tailEdit.At+int64(len(tailEdit.NewText)) != newEdit.At {
			return false
		}
		tailEdit.NewText = append(tailEdit.NewText, newEdit.NewText...)
	case OriginBackspace:
		if !newEdit.IsDelete() || newEdit.At+int64(len(newEdit.OldText)) != tailEdit.At {
			return false
		}
		tailEdit.At = newEdit.At
		tailEdit.OldText = append(append([]byte(nil), newEdit.OldText...), tailEdit.OldText...)
	case OriginDelete:
		if !newEdit.IsDelete() || tailEdit.At != newEdit.At {
			return false
		}
		tailEdit.OldText = append(tailEdit.OldText, newEdit.OldText...)
	default:
		return false
	}

	tail.Timestamp = now
	tail.SelectionAfter = batch.SelectionAfter
	return true
}

func (h *History) commitNew(batch document.EditBatch, origin Origin, now time.Time) {
	h.entries = h.entries[:h.index] // spec.md §4.4 "Truncation"
	tx := &Transaction{
		Edits:           append([]document.Edit(nil), batch.Edits...),
		SelectionBefore: batch.SelectionBefore,
		SelectionAfter:  batch.SelectionAfter,
		Origin:          origin,
		Timestamp:       now,
	}
	h.entries = append(h.entries, tx)
	if h.maxEntries > 0 && len(h.entries) > h.maxEntries {
		excess := len(h.entries) - h.maxEntries
		h.entries = h.entries[excess:]
	}
	h.index = len(h.entries)
	h.txOpen = origin != OriginPaste
}

// Undo inverts the most recent transaction and restores selection-before
// (spec.md §4.4 "Undo / redo").
func (h *History) Undo(doc *document.Document) error {
	if !h.CanUndo() {
		return ErrNothingToUndo
	}
	tx := h.entries[h.index-1]
	for i := len(tx.Edits) - 1; i >= 0; i-- {
		if err := applyInverse(doc, tx.Edits[i]); err != nil {
			return err
		}
	}
	h.index--
	h.txOpen = false
	return doc.SyncCaretAfterHistoryOp(tx.SelectionBefore)
}

// Redo replays the next transaction and restores selection-after.
func (h *History) Redo(doc *document.Document) error {
	if !h.CanRedo() {
		return ErrNothingToRedo
	}
	tx := h.entries[h.index]
	for _, e := range tx.Edits {
		if err := applyForward(doc, e); err != nil {
			return err
		}
	}
	h.index++
	h.txOpen = false
	return doc.SyncCaretAfterHistoryOp(tx.SelectionAfter)
}

func applyForward(doc *document.Document, e document.Edit) error {
	if e.IsInsert() {
		return doc.ApplyRawInsert(e.At, e.NewText)
	}
	return doc.ApplyRawDelete(e.At, int64(len(e.OldText)))
}

// applyInverse undoes e: Insert(at, bytes) undoes by deleting len(bytes)
// at at; Delete(at, bytes) undoes by inserting bytes at at (spec.md §4.4).
func applyInverse(doc *document.Document, e document.Edit) error {
	if e.IsInsert() {
		return doc.ApplyRawDelete(e.At, int64(len(e.NewText)))
	}
	return doc.ApplyRawInsert(e.At, e.OldText)
}

// Clear removes all transactions.
func (h *History) Clear() {
	h.entries = nil
	h.index = 0
	h.txOpen = false
}

// UndoCount and RedoCount report the number of transactions on each side
// of index, for host-shell status display.
func (h *History) UndoCount() int { return h.index }
func (h *History) RedoCount() int { return len(h.entries) - h.index }
