package host

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// render redraws every visible screen cell from the engine's document state
// and positions the terminal cursor at the caret.
func (h *Host) render() {
	h.screen.Clear()

	width, height := h.screen.Size()
	selStart, selEnd, hasSel := h.selectionSpan()

	for y := 0; y < height; y++ {
		row := y + h.top
		if row >= h.eng.LineCount() {
			break
		}
		h.renderLine(row, y, width, selStart, selEnd, hasSel)
	}

	h.showCaret()
	h.screen.Show()
}

func (h *Host) renderLine(row, y, width int, selStart, selEnd int64, hasSel bool) {
	start, length, err := h.eng.LineSpan(row)
	if err != nil {
		return
	}
	text, err := h.rangeText(start, start+length)
	if err != nil {
		return
	}

	col := 0
	byteOff := start
	for len(text) > 0 {
		r, size := utf8.DecodeRune(text)
		text = text[size:]

		if col >= h.left {
			x := col - h.left
			if x >= width {
				break
			}
			style := tcell.StyleDefault
			if hasSel && byteOff >= selStart && byteOff < selEnd {
				style = selectionStyle
			}
			h.screen.SetContent(x, y, r, nil, style)
		}
		col++
		byteOff += int64(size)
	}
}

// selectionSpan returns the active selection's byte span in document order.
func (h *Host) selectionSpan() (start, end int64, ok bool) {
	sel, hasSel := h.eng.Selection()
	if !hasSel {
		return 0, 0, false
	}
	start, end = sel.Span()
	return start, end, true
}

// showCaret positions the hardware cursor at the caret's current screen
// coordinates, hiding it when the caret has scrolled out of view.
func (h *Host) showCaret() {
	caret := h.eng.Caret()
	y := caret.Pos.Row - h.top
	x := caret.Pos.Col - h.left
	width, height := h.screen.Size()
	if y < 0 || y >= height || x < 0 || x >= width {
		h.screen.HideCursor()
		return
	}
	h.screen.ShowCursor(x, y)
}
