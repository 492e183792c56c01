package host

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// wheelLinesPerNotch implements spec.md §6 "Scroll wheel moves the viewport
// at 2 lines per notch".
const wheelLinesPerNotch = 2

// handleMouse translates one tcell mouse event into caret/selection/scroll
// updates (spec.md §6 "Mouse").
func (h *Host) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	x, y := ev.Position()

	if wheel := buttons & (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight); wheel != 0 {
		h.scroll(wheel, ev.Modifiers()&tcell.ModShift != 0)
		return
	}

	switch {
	case buttons&tcell.Button1 != 0:
		h.handleLeftButton(x, y)
	case buttons == tcell.ButtonNone:
		h.dragging = false
	}
}

func (h *Host) scroll(wheel tcell.ButtonMask, shift bool) {
	vertical := wheel&(tcell.WheelUp|tcell.WheelDown) != 0
	delta := wheelLinesPerNotch
	if wheel&(tcell.WheelUp|tcell.WheelLeft) != 0 {
		delta = -delta
	}
	// Shift swaps a vertical notch to horizontal scroll when there is no
	// dedicated horizontal wheel signal (spec.md §6).
	switch {
	case vertical && shift:
		h.left += delta
	case vertical:
		h.top += delta
	default:
		h.left += delta
	}
	if h.top < 0 {
		h.top = 0
	}
	if h.left < 0 {
		h.left = 0
	}
}

func (h *Host) handleLeftButton(x, y int) {
	at := h.byteAtScreen(x, y)
	if h.dragging {
		_ = h.eng.ExtendSelectionTo(at)
		return
	}
	h.dragging = true
	count := h.clicks.next(1, x, y, time.Now())
	switch count {
	case 1:
		_ = h.eng.MoveTo(at)
	case 2:
		_ = h.eng.MoveTo(at)
		_ = h.eng.SelectWord()
	case 3:
		_ = h.eng.MoveTo(at)
		_ = h.eng.SelectLine()
	default: // quadruple click and beyond
		_ = h.eng.SelectDocument()
	}
}

// byteAtScreen maps a screen cell, adjusted for the current viewport
// offsets, to the nearest valid document byte offset.
func (h *Host) byteAtScreen(x, y int) int64 {
	row := y + h.top
	if row < 0 {
		row = 0
	}
	if n := h.eng.LineCount(); row >= n {
		row = n - 1
	}
	if row < 0 {
		return 0
	}
	start, length, err := h.eng.LineSpan(row)
	if err != nil {
		return 0
	}
	col := x + h.left
	if col < 0 {
		col = 0
	}
	if int64(col) > length {
		col = int(length)
	}
	return start + int64(col)
}
