package document

import (
	"errors"
	"io"

	"github.com/dshills/ziggurat/internal/mapped"
	"github.com/dshills/ziggurat/internal/piecetree"
)

// ErrInvalidOperation is returned for operations that violate a documented
// precondition, such as cancel_select on an inactive selection (spec.md
// §4.3: "cancel_select == true with no active selection is invalid").
var ErrInvalidOperation = errors.New("document: invalid operation")

// LineEnding records the dominant newline style observed at open, purely
// as display/save metadata (spec.md §9 open question: "\r\n" handling is
// left open; we resolve it as metadata that never affects line counting).
type LineEnding int

const (
	LineEndingLF LineEnding = iota
	LineEndingCRLF
	LineEndingCR
)

// Document is the caret/selection/navigation layer over a piece tree
// (spec.md §4.3).
type Document struct {
	tree       *piecetree.Tree
	caret      Caret
	anchor     *Caret
	maxCols    int
	lineEnding LineEnding
}

// New builds a Document over original (spec.md §4.5 "Open"). A nil or
// empty original yields an empty scratch document.
func New(original *mapped.Source, opts ...piecetree.Option) (*Document, error) {
	tree, err := piecetree.New(original, opts...)
	if err != nil {
		return nil, err
	}
	d := &Document{tree: tree, lineEnding: detectLineEnding(tree)}
	return d, nil
}

func detectLineEnding(tree *piecetree.Tree) LineEnding {
	if tree.Len() == 0 {
		return LineEndingLF
	}
	n := tree.Len()
	if n > 4096 {
		n = 4096
	}
	for i := int64(0); i < n; i++ {
		b, err := tree.Peek(i)
		if err != nil {
			break
		}
		if b == '\n' {
			if i > 0 {
				if prev, err := tree.Peek(i - 1); err == nil && prev == '\r' {
					return LineEndingCRLF
				}
			}
			return LineEndingLF
		}
		if b == '\r' {
			return LineEndingCR
		}
	}
	return LineEndingLF
}

// LineEnding returns the line-ending style detected at open.
func (d *Document) LineEnding() LineEnding { return d.lineEnding }

// Tree exposes the underlying piece tree for the save pipeline and fixture
// replay harness.
func (d *Document) Tree() *piecetree.Tree { return d.tree }

// Size returns doc_len.
func (d *Document) Size() int64 { return d.tree.Len() }

// LineCount returns the total number of lines.
func (d *Document) LineCount() int { return d.tree.LineCount() }

// LineLength returns max_cols+1 (spec.md §4.3; not a hard invariant, see
// spec.md §9 open questions — used only for horizontal scroll clamping).
func (d *Document) LineLength() int { return d.maxCols + 1 }

// LineSpan returns the start byte and length (excluding any trailing
// newline) of line row.
func (d *Document) LineSpan(row int) (start int64, length int64, err error) {
	start, err = d.tree.ByteOfLine(row)
	if err != nil {
		return 0, 0, err
	}
	var end int64
	if row+1 < d.tree.LineCount() {
		end, err = d.tree.ByteOfLine(row + 1)
		if err != nil {
			return 0, 0, err
		}
		end-- // exclude the newline itself
	} else {
		end = d.tree.Len()
	}
	if end < start {
		end = start
	}
	length = end - start
	if int(length) > d.maxCols {
		d.maxCols = int(length)
	}
	return start, length, nil
}

// Caret returns the current caret.
func (d *Document) Caret() Caret { return d.caret }

// Selection returns the active selection and whether one exists.
func (d *Document) Selection() (Selection, bool) {
	if d.anchor == nil {
		return Selection{}, false
	}
	return Selection{Anchor: d.anchor.Byte, Head: d.caret.Byte}, true
}

func (d *Document) positionOf(byteOff int64) (Position, error) {
	row, err := d.tree.LineOfByte(byteOff)
	if err != nil {
		return Position{}, err
	}
	lineStart, err := d.tree.ByteOfLine(row)
	if err != nil {
		return Position{}, err
	}
	return Position{Row: row, Col: int(byteOff - lineStart)}, nil
}

func (d *Document) setCaretByte(byteOff int64, updatePreferred bool) error {
	pos, err := d.positionOf(byteOff)
	if err != nil {
		return err
	}
	d.caret.Byte = byteOff
	d.caret.Pos = pos
	if updatePreferred {
		d.caret.PreferredCol = pos.Col
	}
	return nil
}

func (d *Document) clearSelectionIf(cancel bool) error {
	if cancel {
		d.anchor = nil
		return nil
	}
	if d.anchor == nil {
		c := d.caret
		d.anchor = &c
	}
	return nil
}

// moveWithSelection applies a caret move, honoring cancelSelect per
// spec.md §4.3 ("cancel_select == true with no active selection is
// invalid"). With cancelSelect false and no active selection, the caret's
// position before the move becomes the selection anchor.
func (d *Document) moveWithSelection(cancelSelect bool, move func() error) error {
	if cancelSelect && d.anchor == nil {
		return ErrInvalidOperation
	}
	if !cancelSelect && d.anchor == nil {
		c := d.caret
		d.anchor = &c
	}
	if err := move(); err != nil {
		return err
	}
	if cancelSelect {
		d.anchor = nil
	}
	return nil
}

// MoveTo sets the caret to an absolute byte offset, clearing any selection.
func (d *Document) MoveTo(byteOff int64) error {
	if byteOff < 0 || byteOff > d.tree.Len() {
		return piecetree.ErrInvalidRange
	}
	d.anchor = nil
	return d.setCaretByte(byteOff, true)
}

// ExtendSelectionTo moves the caret to byteOff, anchoring a selection at the
// caret's prior position if none is active (mouse-drag selection, spec.md
// §6 "Mouse").
func (d *Document) ExtendSelectionTo(byteOff int64) error {
	if byteOff < 0 || byteOff > d.tree.Len() {
		return piecetree.ErrInvalidRange
	}
	if d.anchor == nil {
		c := d.caret
		d.anchor = &c
	}
	return d.setCaretByte(byteOff, true)
}

// MoveLeft moves the caret back one byte.
func (d *Document) MoveLeft(cancelSelect bool) error {
	return d.moveWithSelection(cancelSelect, func() error {
		if d.caret.Byte == 0 {
			return nil
		}
		return d.setCaretByte(d.caret.Byte-1, true)
	})
}

// MoveRight moves the caret forward one byte.
func (d *Document) MoveRight(cancelSelect bool) error {
	return d.moveWithSelection(cancelSelect, func() error {
		if d.caret.Byte >= d.tree.Len() {
			return nil
		}
		return d.setCaretByte(d.caret.Byte+1, true)
	})
}

// MoveUp moves the caret up one line, honoring preferred_col (spec.md
// §4.3: "if the target line is shorter, clamp but do not overwrite
// preferred_col").
func (d *Document) MoveUp(cancelSelect bool) error {
	return d.moveWithSelection(cancelSelect, func() error { return d.moveVertical(-1) })
}

// MoveDown moves the caret down one line.
func (d *Document) MoveDown(cancelSelect bool) error {
	return d.moveWithSelection(cancelSelect, func() error { return d.moveVertical(1) })
}

func (d *Document) moveVertical(delta int) error {
	row := d.caret.Pos.Row + delta
	if row < 0 || row >= d.tree.LineCount() {
		return nil
	}
	_, length, err := d.LineSpan(row)
	if err != nil {
		return err
	}
	col := d.caret.PreferredCol
	if col > int(length) {
		col = int(length)
	}
	start, err := d.tree.ByteOfLine(row)
	if err != nil {
		return err
	}
	pref := d.caret.PreferredCol
	if err := d.setCaretByte(start+int64(col), false); err != nil {
		return err
	}
	d.caret.PreferredCol = pref
	return nil
}

// MoveHome moves the caret to the start of its current line.
func (d *Document) MoveHome(cancelSelect bool) error {
	return d.moveWithSelection(cancelSelect, func() error {
		start, err := d.tree.ByteOfLine(d.caret.Pos.Row)
		if err != nil {
			return err
		}
		return d.setCaretByte(start, true)
	})
}

// MoveEnd moves the caret to the end of its current line (spec.md §4.3
// "move_right across a line boundary goes from (row,len) to (row+1,0)";
// Home/End stay within the line).
func (d *Document) MoveEnd(cancelSelect bool) error {
	return d.moveWithSelection(cancelSelect, func() error {
		_, length, err := d.LineSpan(d.caret.Pos.Row)
		if err != nil {
			return err
		}
		start, err := d.tree.ByteOfLine(d.caret.Pos.Row)
		if err != nil {
			return err
		}
		return d.setCaretByte(start+length, true)
	})
}

// MoveWordLeft moves the caret to the previous word-class boundary
// (spec.md §4.3 "Word motion").
func (d *Document) MoveWordLeft(cancelSelect bool) error {
	return d.moveWithSelection(cancelSelect, func() error {
		b, err := d.wordBoundaryLeft(d.caret.Byte)
		if err != nil {
			return err
		}
		return d.setCaretByte(b, true)
	})
}

// MoveWordRight moves the caret to the next word-class boundary.
func (d *Document) MoveWordRight(cancelSelect bool) error {
	return d.moveWithSelection(cancelSelect, func() error {
		b, err := d.wordBoundaryRight(d.caret.Byte)
		if err != nil {
			return err
		}
		return d.setCaretByte(b, true)
	})
}

func (d *Document) classAt(b int64) (class, error) {
	bt, err := d.tree.Peek(b)
	if err != nil {
		return classSpace, err
	}
	return classify(bt), nil
}

func (d *Document) wordBoundaryLeft(at int64) (int64, error) {
	if at == 0 {
		return 0, nil
	}
	c, err := d.classAt(at - 1)
	if err != nil {
		return 0, err
	}
	if c == classNewline {
		return at - 1, nil
	}
	i := at - 1
	for i > 0 {
		prev, err := d.classAt(i - 1)
		if err != nil {
			return 0, err
		}
		if prev != c || prev == classNewline {
			break
		}
		i--
	}
	return i, nil
}

func (d *Document) wordBoundaryRight(at int64) (int64, error) {
	n := d.tree.Len()
	if at >= n {
		return n, nil
	}
	c, err := d.classAt(at)
	if err != nil {
		return 0, err
	}
	if c == classNewline {
		return at + 1, nil
	}
	i := at + 1
	for i < n {
		next, err := d.classAt(i)
		if err != nil {
			return 0, err
		}
		if next != c || next == classNewline {
			break
		}
		i++
	}
	return i, nil
}

// SelectWord expands the selection to the maximal run of the caret's
// current class (spec.md §4.3). If the caret is on a newline, selects the
// whole document.
func (d *Document) SelectWord() error {
	if d.caret.Byte >= d.tree.Len() {
		return d.SelectDocument()
	}
	c, err := d.classAt(d.caret.Byte)
	if err != nil {
		return err
	}
	if c == classNewline {
		return d.SelectDocument()
	}
	left, err := d.wordBoundaryLeftInclusive(d.caret.Byte, c)
	if err != nil {
		return err
	}
	right, err := d.wordBoundaryRightInclusive(d.caret.Byte, c)
	if err != nil {
		return err
	}
	a := Caret{Byte: left}
	d.anchor = &a
	return d.setCaretByte(right, true)
}

func (d *Document) wordBoundaryLeftInclusive(at int64, c class) (int64, error) {
	i := at
	for i > 0 {
		prev, err := d.classAt(i - 1)
		if err != nil {
			return 0, err
		}
		if prev != c {
			break
		}
		i--
	}
	return i, nil
}

func (d *Document) wordBoundaryRightInclusive(at int64, c class) (int64, error) {
	n := d.tree.Len()
	i := at
	for i < n {
		cur, err := d.classAt(i)
		if err != nil {
			return 0, err
		}
		if cur != c {
			break
		}
		i++
	}
	return i, nil
}

// SelectLine selects the current line including its trailing newline
// (spec.md §4.3). An empty line falls through to SelectDocument.
func (d *Document) SelectLine() error {
	row := d.caret.Pos.Row
	start, length, err := d.LineSpan(row)
	if err != nil {
		return err
	}
	if length == 0 {
		return d.SelectDocument()
	}
	end := start + length
	if row+1 < d.tree.LineCount() {
		end++ // include the newline
	}
	a := Caret{Byte: start}
	d.anchor = &a
	return d.setCaretByte(end, true)
}

// CancelSelection clears any active selection without moving the caret
// (spec.md §6 "Escape clears selection"). A no-op if no selection is active.
func (d *Document) CancelSelection() { d.anchor = nil }

// SelectDocument selects the whole document.
func (d *Document) SelectDocument() error {
	a := Caret{Byte: 0}
	d.anchor = &a
	return d.setCaretByte(d.tree.Len(), true)
}

// CaretInsert inserts bytes at the caret, first removing any active
// selection (spec.md §4.3 "caret_insert"). The returned EditBatch describes
// exactly what happened so a caller can record it in History.
func (d *Document) CaretInsert(text []byte) (EditBatch, error) {
	selBefore, hadSel := d.Selection()
	var edits []Edit

	if hadSel {
		e, err := d.deleteSelection()
		if err != nil {
			return EditBatch{}, err
		}
		edits = append(edits, e)
	}

	at := d.caret.Byte
	if err := d.tree.Insert(at, text); err != nil {
		return EditBatch{}, err
	}
	edits = append(edits, Edit{At: at, NewText: append([]byte(nil), text...)})

	if err := d.advanceCaretAfterInsert(at, text); err != nil {
		return EditBatch{}, err
	}

	return EditBatch{
		Edits:           edits,
		SelectionBefore: selBefore,
		SelectionAfter:  Selection{Anchor: d.caret.Byte, Head: d.caret.Byte},
	}, nil
}

func (d *Document) advanceCaretAfterInsert(at int64, text []byte) error {
	nl := -1
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '\n' {
			nl = i
			break
		}
	}
	newByte := at + int64(len(text))
	if nl < 0 {
		d.caret.Pos.Col += len(text)
		d.caret.Byte = newByte
		d.caret.PreferredCol = d.caret.Pos.Col
		return nil
	}
	added := 0
	for _, c := range text {
		if c == '\n' {
			added++
		}
	}
	d.caret.Pos.Row += added
	d.caret.Pos.Col = len(text) - nl - 1
	d.caret.Byte = newByte
	d.caret.PreferredCol = d.caret.Pos.Col
	return nil
}

// CaretBackspace deletes the active selection, or the byte to the left of
// the caret (spec.md §4.3 "caret_backspace").
func (d *Document) CaretBackspace() (EditBatch, error) {
	selBefore, hadSel := d.Selection()
	if hadSel {
		e, err := d.deleteSelection()
		if err != nil {
			return EditBatch{}, err
		}
		selAfter, _ := d.Selection()
		return EditBatch{Edits: []Edit{e}, SelectionBefore: selBefore, SelectionAfter: selAfter}, nil
	}
	if d.caret.Byte == 0 {
		return EditBatch{SelectionBefore: selBefore, SelectionAfter: selBefore}, nil
	}
	at := d.caret.Byte - 1
	if d.caret.Byte == d.tree.Len() && at == 0 {
		old, err := d.readRange(0, d.tree.Len())
		if err != nil {
			return EditBatch{}, err
		}
		if err := d.tree.Delete(0, d.tree.Len()); err != nil {
			return EditBatch{}, err
		}
		d.caret = Caret{}
		d.anchor = nil
		return EditBatch{
			Edits:           []Edit{{At: 0, OldText: old}},
			SelectionBefore: selBefore,
			SelectionAfter:  Selection{},
		}, nil
	}
	old, err := d.readRange(at, 1)
	if err != nil {
		return EditBatch{}, err
	}
	if err := d.tree.Delete(at, 1); err != nil {
		return EditBatch{}, err
	}
	if err := d.setCaretByte(at, true); err != nil {
		return EditBatch{}, err
	}
	return EditBatch{
		Edits:           []Edit{{At: at, OldText: old}},
		SelectionBefore: selBefore,
		SelectionAfter:  Selection{Anchor: at, Head: at},
	}, nil
}

// CaretDelete deletes the active selection, or the byte to the right of the
// caret (the "Delete" key's forward-delete gesture, as opposed to
// CaretBackspace). The caret position does not move on a bare forward
// delete, matching history.OriginDelete's "tail_delete.at == new_at, append"
// coalescing rule (spec.md §4.4).
func (d *Document) CaretDelete() (EditBatch, error) {
	selBefore, hadSel := d.Selection()
	if hadSel {
		e, err := d.deleteSelection()
		if err != nil {
			return EditBatch{}, err
		}
		selAfter, _ := d.Selection()
		return EditBatch{Edits: []Edit{e}, SelectionBefore: selBefore, SelectionAfter: selAfter}, nil
	}
	at := d.caret.Byte
	if at >= d.tree.Len() {
		return EditBatch{SelectionBefore: selBefore, SelectionAfter: selBefore}, nil
	}
	old, err := d.readRange(at, 1)
	if err != nil {
		return EditBatch{}, err
	}
	if err := d.tree.Delete(at, 1); err != nil {
		return EditBatch{}, err
	}
	if err := d.setCaretByte(at, true); err != nil {
		return EditBatch{}, err
	}
	return EditBatch{
		Edits:           []Edit{{At: at, OldText: old}},
		SelectionBefore: selBefore,
		SelectionAfter:  Selection{Anchor: at, Head: at},
	}, nil
}

func (d *Document) deleteSelection() (Edit, error) {
	sel, _ := d.Selection()
	start, end := sel.Span()
	old, err := d.readRange(start, end-start)
	if err != nil {
		return Edit{}, err
	}
	if start == 0 && end-start == d.tree.Len() {
		if err := d.tree.Delete(start, end-start); err != nil {
			return Edit{}, err
		}
		d.caret = Caret{}
		d.anchor = nil
		return Edit{At: 0, OldText: old}, nil
	}
	if err := d.tree.Delete(start, end-start); err != nil {
		return Edit{}, err
	}
	d.anchor = nil
	if err := d.setCaretByte(start, true); err != nil {
		return Edit{}, err
	}
	return Edit{At: start, OldText: old}, nil
}

func (d *Document) readRange(at, length int64) ([]byte, error) {
	var buf []byte
	it, err := d.tree.NewSliceIter(at, length)
	if err != nil {
		return nil, err
	}
	for b := it.Next(); b != nil; b = it.Next() {
		buf = append(buf, b...)
	}
	return buf, nil
}

// ApplyRawInsert inserts text at an arbitrary offset without touching
// caret/selection — used by History when replaying an undo/redo edit.
func (d *Document) ApplyRawInsert(at int64, text []byte) error {
	return d.tree.Insert(at, text)
}

// ApplyRawDelete deletes length bytes at an arbitrary offset without
// touching caret/selection — used by History when replaying undo/redo.
func (d *Document) ApplyRawDelete(at int64, length int64) error {
	return d.tree.Delete(at, length)
}

// SyncCaretAfterHistoryOp recomputes caret row/col after History restores
// a raw byte offset (undo/redo restore selection-before/selection-after).
func (d *Document) SyncCaretAfterHistoryOp(sel Selection) error {
	if sel.IsEmpty() {
		d.anchor = nil
	} else {
		a := Caret{Byte: sel.Anchor}
		pos, err := d.positionOf(sel.Anchor)
		if err != nil {
			return err
		}
		a.Pos = pos
		d.anchor = &a
	}
	return d.setCaretByte(sel.Head, true)
}

// Materialize writes the whole document to w.
func (d *Document) Materialize(w io.Writer) error { return d.tree.MaterializeAll(w) }

// MaterializeRange writes [start, start+length) to w.
func (d *Document) MaterializeRange(w io.Writer, start, length int64) error {
	return d.tree.Materialize(w, start, length)
}
