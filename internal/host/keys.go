package host

import (
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ziggurat/internal/engine"
	"github.com/dshills/ziggurat/internal/history"
)

// handleKey translates one tcell key event into engine calls (spec.md §6
// "Key bindings").
func (h *Host) handleKey(ev *tcell.EventKey) error {
	mod := ev.Modifiers()
	shift := mod&tcell.ModShift != 0
	ctrl := mod&tcell.ModCtrl != 0

	switch ev.Key() {
	case tcell.KeyCtrlS:
		return h.eng.Save()
	case tcell.KeyCtrlD:
		h.quit = true
		return nil
	case tcell.KeyCtrlA:
		return h.eng.SelectDocument()
	case tcell.KeyCtrlC:
		return h.copySelection()
	case tcell.KeyCtrlX:
		return h.cutSelection()
	case tcell.KeyCtrlV:
		return h.pasteClipboard()
	case tcell.KeyCtrlZ:
		if shift {
			return ignoreNothingToRedo(h.eng.Redo())
		}
		return ignoreNothingToUndo(h.eng.Undo())

	case tcell.KeyUp:
		h.eng.CommitTransaction()
		return h.eng.MoveUp(!shift)
	case tcell.KeyDown:
		h.eng.CommitTransaction()
		return h.eng.MoveDown(!shift)
	case tcell.KeyLeft:
		h.eng.CommitTransaction()
		if ctrl {
			return h.eng.MoveWordLeft(!shift)
		}
		return h.eng.MoveLeft(!shift)
	case tcell.KeyRight:
		h.eng.CommitTransaction()
		if ctrl {
			return h.eng.MoveWordRight(!shift)
		}
		return h.eng.MoveRight(!shift)
	case tcell.KeyHome:
		h.eng.CommitTransaction()
		return h.eng.MoveHome(!shift)
	case tcell.KeyEnd:
		h.eng.CommitTransaction()
		return h.eng.MoveEnd(!shift)

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if ctrl {
			if _, hasSel := h.eng.Selection(); !hasSel {
				if err := h.eng.MoveWordLeft(false); err != nil {
					return err
				}
			}
		}
		_, err := h.eng.Backspace()
		return err
	case tcell.KeyDelete:
		if ctrl {
			if _, hasSel := h.eng.Selection(); !hasSel {
				if err := h.eng.MoveWordRight(false); err != nil {
					return err
				}
			}
		}
		_, err := h.eng.Delete()
		return err

	case tcell.KeyEnter:
		_, err := h.eng.Insert([]byte("\n"), engine.OriginTyping)
		return err
	case tcell.KeyTab:
		_, err := h.eng.Insert([]byte("\t"), engine.OriginTyping)
		return err
	case tcell.KeyEscape:
		h.eng.CommitTransaction()
		h.eng.CancelSelection()
		return nil

	case tcell.KeyRune:
		_, err := h.eng.Insert([]byte(string(ev.Rune())), engine.OriginTyping)
		return err
	}
	return nil
}

func (h *Host) copySelection() error {
	sel, ok := h.eng.Selection()
	if !ok {
		return nil
	}
	start, end := sel.Span()
	text, err := h.rangeText(start, end)
	if err != nil {
		return err
	}
	return h.clipboard.Write(text)
}

func (h *Host) cutSelection() error {
	sel, ok := h.eng.Selection()
	if !ok {
		return nil
	}
	start, end := sel.Span()
	text, err := h.rangeText(start, end)
	if err != nil {
		return err
	}
	if err := h.clipboard.Write(text); err != nil {
		return err
	}
	_, err = h.eng.Backspace()
	return err
}

func (h *Host) pasteClipboard() error {
	text, err := h.clipboard.Read()
	if err != nil {
		return err
	}
	_, err = h.eng.Paste(text)
	return err
}

func (h *Host) rangeText(start, end int64) ([]byte, error) {
	var buf []byte
	w := byteSliceWriter{&buf}
	if err := h.eng.Document().MaterializeRange(w, start, end-start); err != nil {
		return nil, err
	}
	return buf, nil
}

// byteSliceWriter is the minimal io.Writer MaterializeRange needs to fill a
// plain []byte, avoiding a bytes.Buffer allocation for small selections.
type byteSliceWriter struct{ buf *[]byte }

func (w byteSliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}

// ignoreNothingToUndo and ignoreNothingToRedo swallow the "stack empty"
// sentinels: an Undo/Redo keystroke with nothing to do is a no-op, not a
// fatal error for the host loop.
func ignoreNothingToUndo(err error) error {
	if errors.Is(err, history.ErrNothingToUndo) {
		return nil
	}
	return err
}

func ignoreNothingToRedo(err error) error {
	if errors.Is(err, history.ErrNothingToRedo) {
		return nil
	}
	return err
}
