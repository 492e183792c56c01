// Package document implements the caret/selection/navigation layer over a
// piece tree (spec.md §4.3): line/column navigation, word-granular motion,
// span materialization, and the insert/backspace operations that translate
// caret gestures into piece-tree edits.
//
// Grounded on internal/engine/cursor's Cursor/Selection value types,
// narrowed from the teacher's multi-cursor cursor.CursorSet to a single
// caret per spec.md §1 Non-goals ("multi-cursor editing" is out of scope).
package document

// Position is a (row, col) location in the logical document. Columns are
// byte offsets within the line, never grapheme-aware (spec.md §1 Non-goals).
type Position struct {
	Row int
	Col int
}

// Caret is a single insertion point (spec.md §3 "Caret").
type Caret struct {
	Byte         int64
	Pos          Position
	PreferredCol int
}

// Selection is the byte span between an anchor and the caret. IsEmpty is
// true when there is no active selection (spec.md §3 "Selection").
type Selection struct {
	Anchor int64
	Head   int64
}

// IsEmpty reports whether the selection has zero width.
func (s Selection) IsEmpty() bool { return s.Anchor == s.Head }

// Span returns [start, end) with start <= end.
func (s Selection) Span() (start, end int64) {
	if s.Anchor < s.Head {
		return s.Anchor, s.Head
	}
	return s.Head, s.Anchor
}

// Edit is a single reversible change to the document (spec.md §3 "History
// entry"): either an insertion (OldText empty) or a deletion (NewText
// empty).
type Edit struct {
	At      int64
	OldText []byte
	NewText []byte
}

// IsInsert reports whether e is a pure insertion.
func (e Edit) IsInsert() bool { return len(e.OldText) == 0 && len(e.NewText) > 0 }

// IsDelete reports whether e is a pure deletion.
func (e Edit) IsDelete() bool { return len(e.OldText) > 0 && len(e.NewText) == 0 }

// EditBatch is one or more edits applied together as a single user gesture
// (spec.md §4.4 "Replace as compound": a delete followed by an insert),
// along with the selection state immediately before and after.
type EditBatch struct {
	Edits           []Edit
	SelectionBefore Selection
	SelectionAfter  Selection
}
