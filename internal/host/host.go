package host

import (
	"github.com/gdamore/encoding"
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/ziggurat/internal/engine"
)

func init() {
	// Registers legacy (non-UTF-8) terminal charsets with tcell, following
	// the pattern tcell itself documents for gdamore/encoding.
	encoding.Register()
}

// Host owns a tcell.Screen and drives an *engine.Engine from its key and
// mouse events, rendering the visible document lines each frame.
type Host struct {
	screen tcell.Screen
	eng    *engine.Engine

	clipboard Clipboard
	clicks    clickTracker

	top, left int // viewport scroll offsets, in lines/columns
	dragging  bool
	quit      bool
}

// New initializes a tcell screen and wraps eng for interactive editing.
func New(eng *engine.Engine, opts ...Option) (*Host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.EnablePaste()

	h := &Host{screen: screen, eng: eng, clipboard: &memClipboard{}}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Run drives the event loop until Ctrl-D (spec.md §6 "Ctrl-D exit") or the
// screen is closed. It always restores the terminal before returning.
func (h *Host) Run() error {
	defer h.screen.Fini()

	h.render()
	for !h.quit {
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			if err := h.handleKey(e); err != nil {
				return err
			}
		case *tcell.EventMouse:
			h.handleMouse(e)
		case *tcell.EventResize:
			h.screen.Sync()
		}
		h.render()
	}
	return nil
}

// selectionHighlight blends the terminal's default background towards a
// fixed accent using go-colorful's perceptual Lab blend, used to paint
// selected text without hard-coding a raw RGB triple.
func selectionHighlight() tcell.Color {
	base, _ := colorful.Hex("#1a1a2e")
	accent, _ := colorful.Hex("#3a6ea5")
	blended := base.BlendLab(accent, 0.6)
	r, g, b := blended.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

var selectionStyle = tcell.StyleDefault.Background(selectionHighlight()).Foreground(tcell.ColorWhite)
