package history

import (
	"time"

	"github.com/dshills/ziggurat/internal/document"
)

// Origin names the kind of user gesture that produced an edit, used to
// decide whether a new edit coalesces into the open transaction (spec.md
// §3 "History entry", §4.4 "Coalescing policy").
type Origin int

const (
	OriginTyping Origin = iota
	OriginBackspace
	OriginDelete
	OriginPaste
)

// Transaction is a single undo/redo unit: an ordered list of edits plus the
// selection state immediately before and after (spec.md §3).
//
// Grounded on internal/engine/history/operation.go's Operation (the same
// "self-reversible edit" shape) and stack.go's undo/redo bookkeeping, but
// restructured from the teacher's two-stack push/pop model into the single
// append-only vector plus index that spec.md §4.4 specifies, since the
// spec's truncation and coalescing rules are stated in terms of an index
// into one vector rather than two stacks.
type Transaction struct {
	Edits           []document.Edit
	SelectionBefore document.Selection
	SelectionAfter  document.Selection
	Origin          Origin
	Timestamp       time.Time
}
