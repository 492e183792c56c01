package host

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ziggurat/internal/engine"
)

func newTestEngine(t *testing.T, text string) *engine.Engine {
	t.Helper()
	eng, err := engine.New()
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	if text != "" {
		if _, err := eng.Insert([]byte(text), engine.OriginTyping); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := eng.MoveTo(0); err != nil {
			t.Fatalf("MoveTo: %v", err)
		}
	}
	return eng
}

func TestByteAtScreenClampsToLineLength(t *testing.T) {
	eng := newTestEngine(t, "hi\nworld\n")
	h := &Host{eng: eng}

	if got := h.byteAtScreen(100, 0); got != 2 {
		t.Fatalf("byteAtScreen clamped col = %d, want 2 (end of \"hi\")", got)
	}
	if got := h.byteAtScreen(1, 1); got != 4 {
		t.Fatalf("byteAtScreen row 1 col 1 = %d, want 4", got)
	}
}

func TestByteAtScreenHonorsViewportOffsets(t *testing.T) {
	eng := newTestEngine(t, "aaaa\nbbbb\ncccc\n")
	h := &Host{eng: eng, top: 1, left: 2}

	got := h.byteAtScreen(0, 0)
	start, _, err := eng.LineSpan(1)
	if err != nil {
		t.Fatalf("LineSpan: %v", err)
	}
	if want := start + 2; got != want {
		t.Fatalf("byteAtScreen with viewport offset = %d, want %d", got, want)
	}
}

func TestHandleLeftButtonSingleClickMovesCaret(t *testing.T) {
	eng := newTestEngine(t, "hello world")
	h := &Host{eng: eng}

	h.handleLeftButton(6, 0)
	if got := eng.Caret().Byte; got != 6 {
		t.Fatalf("caret after single click = %d, want 6", got)
	}
	if _, ok := eng.Selection(); ok {
		t.Fatal("single click must not leave a selection active")
	}
}

func TestHandleLeftButtonDoubleClickSelectsWord(t *testing.T) {
	eng := newTestEngine(t, "hello world")
	h := &Host{eng: eng}

	h.handleLeftButton(6, 0) // first click of the pair
	h.dragging = false       // mouse-up between clicks, as a real double click delivers
	h.handleLeftButton(6, 0) // second click, same spot, well within the click window

	sel, ok := eng.Selection()
	if !ok {
		t.Fatal("double click should select the word under the caret")
	}
	start, end := sel.Span()
	if start != 6 || end != 11 {
		t.Fatalf("selection span = [%d,%d), want [6,11) (\"world\")", start, end)
	}
}

func TestDragAfterClickExtendsSelection(t *testing.T) {
	eng := newTestEngine(t, "hello world")
	h := &Host{eng: eng}

	h.handleLeftButton(0, 0)
	h.handleLeftButton(5, 0) // still "dragging": no intervening button release

	sel, ok := eng.Selection()
	if !ok {
		t.Fatal("drag after a click should produce a selection")
	}
	start, end := sel.Span()
	if start != 0 || end != 5 {
		t.Fatalf("drag selection span = [%d,%d), want [0,5)", start, end)
	}
}

func TestScrollClampsAtZero(t *testing.T) {
	eng := newTestEngine(t, "a\nb\nc\n")
	h := &Host{eng: eng}

	h.scroll(tcell.WheelUp, false)
	if h.top != 0 {
		t.Fatalf("scrolling up from top = %d, want clamped to 0", h.top)
	}
}

func TestScrollShiftSwapsToHorizontal(t *testing.T) {
	eng := newTestEngine(t, "a\nb\nc\n")
	h := &Host{eng: eng, top: 5}

	h.scroll(tcell.WheelDown, true)
	if h.top != 5 {
		t.Fatalf("shift+vertical wheel must not move top, got %d", h.top)
	}
	if h.left != wheelLinesPerNotch {
		t.Fatalf("shift+vertical wheel should scroll left by %d, got %d", wheelLinesPerNotch, h.left)
	}
}
