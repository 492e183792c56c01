// Package piecetree implements the mutable document representation
// described in spec.md §3/§4.2: a B-tree of pieces over two backing
// buffers (a read-only memory-mapped "original" and a grow-only in-process
// "add" buffer), with lazy per-buffer line-break indexing, point insert and
// delete, and logical re-seating onto a freshly saved original source.
//
// Nodes live in a flat arena addressed by integer index (nodeRef) rather
// than by pointer, per spec.md §9's strongly-preferred arena variant.
// Structurally grounded on internal/engine/rope (chunk/node/pool/iterator
// shape) from the teacher, reworked from an immutable persistent rope into
// a mutable, in-place piece tree.
package piecetree

import "github.com/dshills/ziggurat/internal/mapped"

// Tree is a mutable piece tree: the logical document is the concatenation,
// in tree order, of every leaf piece's named bytes.
type Tree struct {
	a    arena
	root nodeRef
	bufs *buffers

	minPieces, maxPieces int
	minBranch, maxBranch int
}

// New builds a piece tree whose initial content is the bytes of original
// (spec.md §4.5 "Open"). A nil or empty original yields an empty document.
func New(original *mapped.Source, opts ...Option) (*Tree, error) {
	bufs, err := newBuffers(original)
	if err != nil {
		return nil, err
	}
	t := &Tree{
		bufs:      bufs,
		minPieces: DefaultMinPieces,
		maxPieces: DefaultMaxPieces,
		minBranch: DefaultMinBranch,
		maxBranch: DefaultMaxBranch,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.buildTree(chunkOriginal(bufs.original.Len()))
	return t, nil
}

// initialChunkBytes bounds how many original bytes a single piece covers
// at open time, so a large file starts out spread across multiple leaves
// instead of one leaf holding a single giant piece.
const initialChunkBytes = 1 << 16

func chunkOriginal(size int) []Piece {
	if size == 0 {
		return nil
	}
	var out []Piece
	for off := 0; off < size; off += initialChunkBytes {
		end := off + initialChunkBytes
		if end > size {
			end = size
		}
		out = append(out, newPiece(tagOriginal, uint32(off), uint32(end-off)))
	}
	return out
}

func (t *Tree) node(ref nodeRef) *node { return t.a.get(ref) }

// Len returns doc_len, the total byte length of the logical document.
func (t *Tree) Len() int64 { return int64(t.node(t.root).bytes) }

// LineCount returns the total number of lines (newline count + 1).
func (t *Tree) LineCount() int { return int(t.node(t.root).lines) + 1 }

// childIndex returns the position of ref within parent's children.
func childIndex(parent *node, ref nodeRef) int {
	for i, c := range parent.children {
		if c == ref {
			return i
		}
	}
	return -1
}

// compactPieces merges adjacent mergeable pieces in place (spec.md §8
// "piece compaction" invariant).
func compactPieces(pieces []Piece) []Piece {
	out := pieces[:0]
	for _, p := range pieces {
		if n := len(out); n > 0 && out[n-1].adjacent(p) {
			out[n-1] = out[n-1].withLen(out[n-1].Len() + p.Len())
			continue
		}
		out = append(out, p)
	}
	return out
}

// findAtByte descends from the root, returning the leaf containing offset
// and the byte offset relative to that leaf's start (spec.md §4.2
// "Locate by byte"; tie-break: an exact boundary descends rightward).
func (t *Tree) findAtByte(offset uint64) (nodeRef, uint32) {
	cur := t.root
	for {
		n := t.node(cur)
		if n.leaf {
			return cur, uint32(offset)
		}
		last := len(n.children) - 1
		for i, c := range n.children {
			cn := t.node(c)
			if offset < cn.bytes || i == last {
				cur = c
				break
			}
			offset -= cn.bytes
		}
	}
}

// locateInLeaf resolves a leaf-relative byte offset to a piece index and
// an offset within that piece (spec.md §4.2 "Locate within leaf"). The
// sentinel "at end" is piece_index == len(pieces), offset 0.
func locateInLeaf(n *node, offset uint32) (int, uint32) {
	var acc uint32
	for i, p := range n.pieces {
		pl := p.Len()
		if offset < acc+pl {
			return i, offset - acc
		}
		acc += pl
	}
	return len(n.pieces), 0
}

// nextLeaf returns the leaf immediately following ref in document order,
// or nilRef if ref is the last leaf.
func (t *Tree) nextLeaf(ref nodeRef) nodeRef {
	cur := ref
	for {
		n := t.node(cur)
		if n.parent == nilRef {
			return nilRef
		}
		parent := t.node(n.parent)
		idx := childIndex(parent, cur)
		if idx+1 < len(parent.children) {
			next := parent.children[idx+1]
			for !t.node(next).leaf {
				next = t.node(next).children[0]
			}
			return next
		}
		cur = n.parent
	}
}

func (t *Tree) leftmostLeaf() nodeRef {
	cur := t.root
	for !t.node(cur).leaf {
		cur = t.node(cur).children[0]
	}
	return cur
}

func (t *Tree) propagateUp(ref nodeRef) {
	n := t.node(ref)
	p := n.parent
	for p != nilRef {
		pn := t.node(p)
		t.recomputeInternal(pn)
		p = pn.parent
	}
}

// ---- insert ----

// Insert inserts bytes at document offset at (spec.md §4.2 "Insert").
func (t *Tree) Insert(at int64, text []byte) error {
	if len(text) == 0 {
		return nil
	}
	docLen := t.node(t.root).bytes
	if at < 0 || uint64(at) > docLen {
		return ErrInvalidRange
	}

	preAddLen := uint32(len(t.bufs.add))
	leafRef, within := t.findAtByte(uint64(at))
	leaf := t.node(leafRef)

	// Fast path: appending at doc_len onto the trailing Add piece.
	if uint64(at) == docLen && len(leaf.pieces) > 0 {
		last := leaf.pieces[len(leaf.pieces)-1]
		if last.Tag() == tagAdd && last.End() == preAddLen {
			t.bufs.appendAdd(text)
			leaf.pieces[len(leaf.pieces)-1] = last.withLen(last.Len() + uint32(len(text)))
			t.recomputeLeaf(leaf)
			t.propagateUp(leafRef)
			return nil
		}
	}

	addOff := t.bufs.appendAdd(text)
	np := newPiece(tagAdd, addOff, uint32(len(text)))
	idx, off := locateInLeaf(leaf, within)
	t.insertPieceInLeaf(leafRef, idx, off, np)
	return nil
}

func (t *Tree) insertPieceInLeaf(leafRef nodeRef, pieceIdx int, withinPiece uint32, np Piece) {
	n := t.node(leafRef)
	if withinPiece == 0 {
		n.pieces = append(n.pieces, Piece{})
		copy(n.pieces[pieceIdx+1:], n.pieces[pieceIdx:len(n.pieces)-1])
		n.pieces[pieceIdx] = np
	} else {
		p := n.pieces[pieceIdx]
		prefix := p.sub(0, withinPiece)
		suffix := p.sub(withinPiece, p.Len())
		tail := append([]Piece{np, suffix}, n.pieces[pieceIdx+1:]...)
		n.pieces = append(append(n.pieces[:pieceIdx:pieceIdx], prefix), tail...)
	}
	n.pieces = compactPieces(n.pieces)
	t.recomputeLeaf(n)
	t.afterLeafGrowth(leafRef)
}

// afterLeafGrowth splits an overflowing leaf, or propagates weights upward
// when no split is needed (spec.md §4.2 "bubble overflow").
func (t *Tree) afterLeafGrowth(leafRef nodeRef) {
	if len(t.node(leafRef).pieces) > t.maxPieces {
		sibling := t.splitLeafNode(leafRef)
		t.insertSiblingAndBubble(leafRef, sibling)
		return
	}
	t.propagateUp(leafRef)
}

func (t *Tree) splitLeafNode(ref nodeRef) nodeRef {
	n := t.node(ref)
	mid := len(n.pieces) / 2
	rightPieces := append([]Piece(nil), n.pieces[mid:]...)
	n.pieces = n.pieces[:mid:mid]
	right := t.a.alloc(true)
	rn := t.node(right)
	rn.pieces = rightPieces
	rn.parent = n.parent
	t.recomputeLeaf(n)
	t.recomputeLeaf(rn)
	return right
}

func (t *Tree) splitInternalNode(ref nodeRef) nodeRef {
	n := t.node(ref)
	mid := len(n.children) / 2
	rightChildren := append([]nodeRef(nil), n.children[mid:]...)
	n.children = n.children[:mid:mid]
	right := t.a.alloc(false)
	rn := t.node(right)
	rn.children = rightChildren
	rn.parent = n.parent
	for _, c := range rightChildren {
		t.node(c).parent = right
	}
	t.recomputeInternal(n)
	t.recomputeInternal(rn)
	return right
}

// insertSiblingAndBubble inserts sibling immediately after ref in ref's
// parent's child list, splitting and recursing upward on branch overflow,
// and creating a new root if ref was the root (spec.md §4.2).
func (t *Tree) insertSiblingAndBubble(ref, sibling nodeRef) {
	n := t.node(ref)
	if n.parent == nilRef {
		newRoot := t.a.alloc(false)
		rn := t.node(newRoot)
		rn.children = []nodeRef{ref, sibling}
		t.node(ref).parent = newRoot
		t.node(sibling).parent = newRoot
		t.recomputeInternal(rn)
		t.root = newRoot
		return
	}
	parent := n.parent
	pn := t.node(parent)
	idx := childIndex(pn, ref)
	pn.children = append(pn.children, nilRef)
	copy(pn.children[idx+2:], pn.children[idx+1:len(pn.children)-1])
	pn.children[idx+1] = sibling
	t.node(sibling).parent = parent
	t.recomputeInternal(pn)

	if len(pn.children) > t.maxBranch {
		rightSibling := t.splitInternalNode(parent)
		t.insertSiblingAndBubble(parent, rightSibling)
		return
	}
	t.propagateUp(parent)
}

// ---- delete ----

// Delete removes length bytes starting at document offset at (spec.md
// §4.2 "Delete").
func (t *Tree) Delete(at int64, length int64) error {
	if length < 0 || at < 0 {
		return ErrInvalidRange
	}
	if length == 0 {
		return nil
	}
	docLen := int64(t.node(t.root).bytes)
	if at+length > docLen {
		return ErrInvalidRange
	}

	if at == 0 && length == docLen {
		t.resetEmpty()
		return nil
	}

	leafRef, within := t.findAtByte(uint64(at))
	remaining := length
	var touched []nodeRef

	for remaining > 0 {
		if leafRef == nilRef {
			return ErrInvalidRange
		}
		n := t.node(leafRef)
		idx, off := locateInLeaf(n, uint32(within))
		if idx == len(n.pieces) {
			leafRef = t.nextLeaf(leafRef)
			within = 0
			continue
		}
		p := n.pieces[idx]
		avail := int64(p.Len()) - int64(off)
		take := remaining
		if take > avail {
			take = avail
		}
		switch {
		case off == 0 && uint32(take) == p.Len():
			n.pieces = append(n.pieces[:idx], n.pieces[idx+1:]...)
		case off == 0:
			n.pieces[idx] = p.sub(uint32(take), p.Len())
		case off+uint32(take) == p.Len():
			n.pieces[idx] = p.sub(0, off)
		default:
			prefix := p.sub(0, off)
			suffix := p.sub(off+uint32(take), p.Len())
			tail := append([]Piece{prefix, suffix}, n.pieces[idx+1:]...)
			n.pieces = append(n.pieces[:idx:idx], tail...)
		}
		n.pieces = compactPieces(n.pieces)
		remaining -= take
		touched = append(touched, leafRef)
	}

	seen := make(map[nodeRef]bool, len(touched))
	for _, ref := range touched {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		t.recomputeLeaf(t.node(ref))
	}
	for _, ref := range touched {
		if !seen[ref] {
			continue
		}
		seen[ref] = false
		if t.node(ref).inUse {
			t.repairAfterDelete(ref)
		}
	}
	return nil
}

func (t *Tree) resetEmpty() {
	t.a = arena{}
	t.root = t.a.alloc(true)
}

// repairAfterDelete restores tree-bounds invariants starting from a leaf
// that just shrank (spec.md §4.2 "Delete... then repair upward").
func (t *Tree) repairAfterDelete(leafRef nodeRef) {
	n := t.node(leafRef)
	if len(n.pieces) == 0 {
		t.removeNodeAndRepair(leafRef)
		return
	}
	if len(n.pieces) > t.maxPieces {
		sibling := t.splitLeafNode(leafRef)
		t.insertSiblingAndBubble(leafRef, sibling)
		return
	}
	if n.parent != nilRef && len(n.pieces) < t.minPieces {
		t.rebalanceLeaf(leafRef)
		return
	}
	t.recomputeLeaf(n)
	t.propagateUp(leafRef)
}

// removeNodeAndRepair removes ref from its parent (an empty node is
// removed from its parent per spec.md §4.2) and repairs the parent chain.
func (t *Tree) removeNodeAndRepair(ref nodeRef) {
	n := t.node(ref)
	parent := n.parent
	t.a.release(ref)
	if parent == nilRef {
		newRoot := t.a.alloc(true)
		t.root = newRoot
		return
	}
	pn := t.node(parent)
	idx := childIndex(pn, ref)
	pn.children = append(pn.children[:idx], pn.children[idx+1:]...)
	t.repairInternal(parent)
}

func (t *Tree) repairInternal(ref nodeRef) {
	n := t.node(ref)
	if len(n.children) == 0 {
		t.removeNodeAndRepair(ref)
		return
	}
	if n.parent == nilRef {
		if len(n.children) == 1 {
			only := n.children[0]
			t.node(only).parent = nilRef
			t.root = only
			t.a.release(ref)
			return
		}
		t.recomputeInternal(n)
		return
	}
	if len(n.children) < t.minBranch {
		t.rebalanceInternal(ref)
		return
	}
	t.recomputeInternal(n)
	t.propagateUp(ref)
}

// rebalanceLeaf merges leafRef with a sibling if the combination fits
// within MAX_PIECES, else borrows pieces from a neighbor, preferring the
// right sibling (spec.md §4.2 "repair").
func (t *Tree) rebalanceLeaf(leafRef nodeRef) {
	n := t.node(leafRef)
	parent := t.node(n.parent)
	idx := childIndex(parent, leafRef)

	if idx < len(parent.children)-1 {
		right := t.node(parent.children[idx+1])
		if len(n.pieces)+len(right.pieces) <= t.maxPieces {
			n.pieces = compactPieces(append(n.pieces, right.pieces...))
			t.recomputeLeaf(n)
			t.removeNodeAndRepair(parent.children[idx+1])
			return
		}
	}
	if idx > 0 {
		leftRef := parent.children[idx-1]
		left := t.node(leftRef)
		if len(left.pieces)+len(n.pieces) <= t.maxPieces {
			left.pieces = compactPieces(append(left.pieces, n.pieces...))
			t.recomputeLeaf(left)
			t.removeNodeAndRepair(leafRef)
			return
		}
	}
	if idx < len(parent.children)-1 {
		right := t.node(parent.children[idx+1])
		need := t.minPieces - len(n.pieces)
		if avail := len(right.pieces) - 1; need > avail {
			need = avail
		}
		if need > 0 {
			moved := append([]Piece(nil), right.pieces[:need]...)
			right.pieces = compactPieces(right.pieces[need:])
			n.pieces = compactPieces(append(n.pieces, moved...))
			t.recomputeLeaf(n)
			t.recomputeLeaf(right)
			t.propagateUp(leafRef)
			return
		}
	}
	if idx > 0 {
		left := t.node(parent.children[idx-1])
		need := t.minPieces - len(n.pieces)
		if avail := len(left.pieces) - 1; need > avail {
			need = avail
		}
		if need > 0 {
			ln := len(left.pieces)
			moved := append([]Piece(nil), left.pieces[ln-need:]...)
			left.pieces = compactPieces(left.pieces[:ln-need])
			n.pieces = compactPieces(append(append([]Piece{}, moved...), n.pieces...))
			t.recomputeLeaf(left)
			t.recomputeLeaf(n)
			t.propagateUp(leafRef)
			return
		}
	}
	// No sibling can help (sole child); accept the under-fill.
	t.recomputeLeaf(n)
	t.propagateUp(leafRef)
}

func (t *Tree) rebalanceInternal(ref nodeRef) {
	n := t.node(ref)
	parent := t.node(n.parent)
	idx := childIndex(parent, ref)

	if idx < len(parent.children)-1 {
		rightRef := parent.children[idx+1]
		right := t.node(rightRef)
		if len(n.children)+len(right.children) <= t.maxBranch {
			for _, c := range right.children {
				t.node(c).parent = ref
			}
			n.children = append(n.children, right.children...)
			t.recomputeInternal(n)
			t.removeNodeAndRepair(rightRef)
			return
		}
	}
	if idx > 0 {
		leftRef := parent.children[idx-1]
		left := t.node(leftRef)
		if len(left.children)+len(n.children) <= t.maxBranch {
			for _, c := range n.children {
				t.node(c).parent = leftRef
			}
			left.children = append(left.children, n.children...)
			t.recomputeInternal(left)
			t.removeNodeAndRepair(ref)
			return
		}
	}
	if idx < len(parent.children)-1 {
		rightRef := parent.children[idx+1]
		right := t.node(rightRef)
		need := t.minBranch - len(n.children)
		if avail := len(right.children) - 1; need > avail {
			need = avail
		}
		if need > 0 {
			moved := append([]nodeRef(nil), right.children[:need]...)
			right.children = right.children[need:]
			for _, c := range moved {
				t.node(c).parent = ref
			}
			n.children = append(n.children, moved...)
			t.recomputeInternal(n)
			t.recomputeInternal(right)
			t.propagateUp(ref)
			return
		}
	}
	if idx > 0 {
		leftRef := parent.children[idx-1]
		left := t.node(leftRef)
		need := t.minBranch - len(n.children)
		if avail := len(left.children) - 1; need > avail {
			need = avail
		}
		if need > 0 {
			ln := len(left.children)
			moved := append([]nodeRef(nil), left.children[ln-need:]...)
			left.children = left.children[:ln-need]
			for _, c := range moved {
				t.node(c).parent = ref
			}
			n.children = append(append([]nodeRef{}, moved...), n.children...)
			t.recomputeInternal(left)
			t.recomputeInternal(n)
			t.propagateUp(ref)
			return
		}
	}
	t.recomputeInternal(n)
	t.propagateUp(ref)
}

// ---- reads ----

// Peek reads a single byte at document offset at (spec.md §4.2 "Peek").
func (t *Tree) Peek(at int64) (byte, error) {
	if at < 0 || at >= int64(t.node(t.root).bytes) {
		return 0, ErrInvalidRange
	}
	leafRef, within := t.findAtByte(uint64(at))
	n := t.node(leafRef)
	idx, off := locateInLeaf(n, uint32(within))
	if idx == len(n.pieces) {
		return 0, ErrInvalidRange
	}
	p := n.pieces[idx]
	return t.bufs.bytes(p.Tag())[p.Offset+off], nil
}

// LineOfByte returns the 0-indexed line containing byte offset b.
func (t *Tree) LineOfByte(b int64) (int, error) {
	if b < 0 || b > int64(t.node(t.root).bytes) {
		return 0, ErrInvalidRange
	}
	leafRef, within := t.findAtByte(uint64(b))
	linesBefore := t.leafLineOffset(leafRef)
	local := t.newlinesBeforeInLeaf(t.node(leafRef), uint32(within))
	return int(linesBefore) + local, nil
}

// ByteOfLine returns the byte offset of the first byte of the given
// 0-indexed line.
func (t *Tree) ByteOfLine(line int) (int64, error) {
	if line < 0 || line >= t.LineCount() {
		return 0, ErrInvalidRange
	}
	if line == 0 {
		return 0, nil
	}
	target := line - 1
	leafRef, local := t.findLeafForNewline(target)
	if leafRef == nilRef {
		return 0, ErrInvalidRange
	}
	leafStart := t.leafByteOffset(leafRef)
	localByte, ok := t.byteOfNthNewlineInLeaf(t.node(leafRef), local)
	if !ok {
		return 0, ErrInvalidRange
	}
	return int64(leafStart) + int64(localByte) + 1, nil
}

func (t *Tree) findLeafForNewline(n int) (nodeRef, int) {
	cur := t.root
	for {
		nd := t.node(cur)
		if nd.leaf {
			return cur, n
		}
		last := len(nd.children) - 1
		found := false
		for i, c := range nd.children {
			cn := t.node(c)
			if n < int(cn.lines) || i == last {
				cur = c
				found = true
				break
			}
			n -= int(cn.lines)
		}
		if !found {
			return nilRef, 0
		}
	}
}

func (t *Tree) byteOfNthNewlineInLeaf(n *node, target int) (uint32, bool) {
	var pieceStart uint32
	for _, p := range n.pieces {
		cnt := t.bufs.countNewlinesIn(p)
		if target < cnt {
			li := t.bufs.lineIndex(p.Tag())
			idx := li.nthNewlineAfter(int(p.Offset), target)
			if idx < 0 {
				return 0, false
			}
			return pieceStart + uint32(idx-int(p.Offset)), true
		}
		target -= cnt
		pieceStart += p.Len()
	}
	return 0, false
}

func (t *Tree) newlinesBeforeInLeaf(n *node, within uint32) int {
	var acc uint32
	count := 0
	for _, p := range n.pieces {
		if acc >= within {
			break
		}
		take := p.Len()
		if acc+take > within {
			take = within - acc
		}
		count += t.bufs.lineIndex(p.Tag()).countRange(int(p.Offset), int(take))
		acc += p.Len()
	}
	return count
}

func (t *Tree) leafByteOffset(ref nodeRef) uint64 {
	var offset uint64
	cur := ref
	for {
		n := t.node(cur)
		if n.parent == nilRef {
			break
		}
		pn := t.node(n.parent)
		idx := childIndex(pn, cur)
		for i := 0; i < idx; i++ {
			offset += t.node(pn.children[i]).bytes
		}
		cur = n.parent
	}
	return offset
}

func (t *Tree) leafLineOffset(ref nodeRef) uint32 {
	var offset uint32
	cur := ref
	for {
		n := t.node(cur)
		if n.parent == nilRef {
			break
		}
		pn := t.node(n.parent)
		idx := childIndex(pn, cur)
		for i := 0; i < idx; i++ {
			offset += t.node(pn.children[i]).lines
		}
		cur = n.parent
	}
	return offset
}

// ---- re-seating (spec.md §4.2 "Re-seat after save") ----

// SourceTag names which backing buffer a LogicalPiece refers to.
type SourceTag int

const (
	SourceOriginal SourceTag = iota
	SourceAdd
)

// LogicalPiece is an abstract, buffer-independent description of one piece
// in document order, produced by BuildLogicalIndex and consumed by Reinit.
type LogicalPiece struct {
	Source SourceTag
	Offset uint32
	Length uint32
}

// BuildLogicalIndex returns every piece in document order as a logical,
// source-tagged description (spec.md §4.2, used by the save pipeline).
func (t *Tree) BuildLogicalIndex() []LogicalPiece {
	var out []LogicalPiece
	for leaf := t.leftmostLeaf(); leaf != nilRef; leaf = t.nextLeaf(leaf) {
		for _, p := range t.node(leaf).pieces {
			src := SourceOriginal
			if p.Tag() == tagAdd {
				src = SourceAdd
			}
			out = append(out, LogicalPiece{Source: src, Offset: p.Offset, Length: p.Len()})
		}
	}
	return out
}

// Reinit rebuilds the tree over newOriginal using a logical index captured
// before the remap, preserving document content bit-for-bit (spec.md §4.5
// step 5). The add buffer is carried over unchanged.
func (t *Tree) Reinit(newOriginal *mapped.Source, logical []LogicalPiece) error {
	nb, err := newBuffers(newOriginal)
	if err != nil {
		return err
	}
	nb.add = t.bufs.add
	nb.addLine = t.bufs.addLine
	t.bufs = nb

	// The new original holds the document bytes in order, so an Original
	// piece's bytes now start at its document position.
	pieces := make([]Piece, len(logical))
	var docOff uint32
	for i, lp := range logical {
		tag, off := tagOriginal, docOff
		if lp.Source == SourceAdd {
			tag, off = tagAdd, lp.Offset
		}
		pieces[i] = newPiece(tag, off, lp.Length)
		docOff += lp.Length
	}
	t.a = arena{}
	t.buildTree(pieces)
	return nil
}

// ---- bulk construction ----

// splitCounts partitions total items into group sizes that keep every group
// within [lo,hi], preferring groups near (lo+hi)/2. Bulk construction does
// not run compactPieces over its windows (unlike insertPieceInLeaf/Delete/
// rebalanceLeaf, which compact after a real mutation): a window of pieces
// chunked out of one contiguous mmap'd file is "adjacent" by construction,
// and merging it would immediately collapse every leaf to one piece,
// violating the MIN_PIECES..MAX_PIECES steady-state bound (spec.md §8 "Tree
// bounds"). If total alone fits in hi, a single group is returned even
// though it may be under lo — that group becomes the tree's root, which is
// exempt from the bound.
func splitCounts(total, lo, hi int) []int {
	if total <= hi {
		return []int{total}
	}
	fill := (lo + hi) / 2
	if fill < 1 {
		fill = 1
	}
	n := (total + fill - 1) / fill
	if n < 2 {
		n = 2
	}
	for n > 2 && total/n < lo {
		n--
	}
	for {
		base, extra := total/n, total%n
		top := base
		if extra > 0 {
			top++
		}
		if top > hi {
			n++
			continue
		}
		counts := make([]int, n)
		for i := range counts {
			counts[i] = base
			if i < extra {
				counts[i]++
			}
		}
		return counts
	}
}

func (t *Tree) buildTree(pieces []Piece) {
	var leaves []nodeRef
	if len(pieces) == 0 {
		leaves = []nodeRef{t.a.alloc(true)}
	} else {
		i := 0
		for _, count := range splitCounts(len(pieces), t.minPieces, t.maxPieces) {
			end := i + count
			ref := t.a.alloc(true)
			n := t.node(ref)
			n.pieces = append([]Piece(nil), pieces[i:end]...)
			t.recomputeLeaf(n)
			leaves = append(leaves, ref)
			i = end
		}
	}
	t.root = t.buildLevel(leaves)
}

func (t *Tree) buildLevel(level []nodeRef) nodeRef {
	if len(level) == 1 {
		t.node(level[0]).parent = nilRef
		return level[0]
	}
	i := 0
	var next []nodeRef
	for _, count := range splitCounts(len(level), t.minBranch, t.maxBranch) {
		end := i + count
		ref := t.a.alloc(false)
		n := t.node(ref)
		n.children = append([]nodeRef(nil), level[i:end]...)
		for _, c := range n.children {
			t.node(c).parent = ref
		}
		t.recomputeInternal(n)
		next = append(next, ref)
		i = end
	}
	return t.buildLevel(next)
}
