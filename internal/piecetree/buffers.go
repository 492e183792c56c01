package piecetree

import "github.com/dshills/ziggurat/internal/mapped"

// buffers holds the two backing byte stores a Piece can name (spec.md §3):
// the read-only original (memory-mapped source) and the grow-only add
// buffer, each with its own lazy line-break index.
type buffers struct {
	original     *mapped.Source
	originalLine *lineIndex

	add     []byte
	addLine *lineIndex
}

func newBuffers(original *mapped.Source) (*buffers, error) {
	if original == nil {
		original = &mapped.Source{}
	}
	if int64(original.Len()) > MaxPieceLen {
		return nil, ErrFileTooBig
	}
	b := &buffers{
		original: original,
		add:      make([]byte, 0, 256),
	}
	b.originalLine = newLineIndex(original.Bytes())
	b.addLine = newLineIndex(nil)
	return b, nil
}

// bytes returns the backing slice named by tag.
func (b *buffers) bytes(tag bufTag) []byte {
	if tag == tagAdd {
		return b.add
	}
	return b.original.Bytes()
}

func (b *buffers) lineIndex(tag bufTag) *lineIndex {
	if tag == tagAdd {
		return b.addLine
	}
	return b.originalLine
}

// slice returns the bytes named by a piece.
func (b *buffers) slice(p Piece) []byte {
	data := b.bytes(p.Tag())
	return data[p.Offset:p.End()]
}

// appendAdd appends text to the add buffer and returns the offset it was
// written at. Re-slicing b.add invalidates the addLine index's cached
// slice, so addLine.data is refreshed to track the backing array.
func (b *buffers) appendAdd(text []byte) uint32 {
	off := uint32(len(b.add))
	b.add = append(b.add, text...)
	b.addLine.data = b.add
	return off
}

// countNewlinesIn counts '\n' within piece p's byte range using the
// appropriate buffer's line index.
func (b *buffers) countNewlinesIn(p Piece) int {
	return b.lineIndex(p.Tag()).countRange(int(p.Offset), int(p.Len()))
}
