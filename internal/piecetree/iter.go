package piecetree

import "io"

// SliceIter is a forward-only, zero-copy cursor over a byte range of the
// live document (spec.md §4.2 "Slice iterator"). It must not outlive the
// next tree mutation (spec.md §5).
//
// Grounded on internal/engine/rope/iter.go's ChunkIterator traversal, but
// walking pieces within one leaf plus nextLeaf hops, since piece-tree
// leaves are reachable from the tree directly rather than requiring a
// re-descend-from-root frame stack.
type SliceIter struct {
	t         *Tree
	leaf      nodeRef
	pieceIdx  int
	offset    uint32
	remaining int64
}

// NewSliceIter returns an iterator over [start, start+length) of the
// document.
func (t *Tree) NewSliceIter(start, length int64) (*SliceIter, error) {
	if start < 0 || length < 0 || start+length > int64(t.node(t.root).bytes) {
		return nil, ErrInvalidRange
	}
	leafRef, within := t.findAtByte(uint64(start))
	idx, off := locateInLeaf(t.node(leafRef), uint32(within))
	return &SliceIter{t: t, leaf: leafRef, pieceIdx: idx, offset: off, remaining: length}, nil
}

// Next returns the next non-empty slice of the range, or nil once
// exhausted.
func (it *SliceIter) Next() []byte {
	for it.remaining > 0 {
		if it.leaf == nilRef {
			return nil
		}
		n := it.t.node(it.leaf)
		if it.pieceIdx >= len(n.pieces) {
			it.leaf = it.t.nextLeaf(it.leaf)
			it.pieceIdx = 0
			it.offset = 0
			continue
		}
		p := n.pieces[it.pieceIdx]
		avail := int64(p.Len()) - int64(it.offset)
		if avail <= 0 {
			it.pieceIdx++
			it.offset = 0
			continue
		}
		take := it.remaining
		if take > avail {
			take = avail
		}
		data := it.t.bufs.bytes(p.Tag())[p.Offset+it.offset : p.Offset+it.offset+uint32(take)]
		it.offset += uint32(take)
		it.remaining -= take
		if it.offset >= p.Len() {
			it.pieceIdx++
			it.offset = 0
		}
		return data
	}
	return nil
}

// Materialize streams [start, start+length) of the document to w (spec.md
// §4.2 "Materialize"). No allocation; safe for arbitrarily large ranges.
func (t *Tree) Materialize(w io.Writer, start, length int64) error {
	it, err := t.NewSliceIter(start, length)
	if err != nil {
		return err
	}
	for b := it.Next(); b != nil; b = it.Next() {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// MaterializeAll streams the entire document to w.
func (t *Tree) MaterializeAll(w io.Writer) error {
	return t.Materialize(w, 0, t.Len())
}
