// Package host implements the terminal UI shell (spec.md §6 "Key bindings",
// "Mouse"): a tcell.Screen driving an *engine.Engine, translating key and
// mouse events into engine calls and rendering the visible document lines
// with caret/selection highlighting.
//
// Grounded on internal/renderer/backend/terminal.go's tcell.Screen wrapper
// (Init/Shutdown/PollEvent/SetContent/Show, key/mouse/resize event
// conversion) from the teacher, collapsed from a separate Backend/Event
// abstraction layer into a single package that owns the screen directly,
// since this spec has no renderer/dirty-tracking/layout subsystem to feed.
// internal/host is the only package in this module allowed to import tcell
// (spec.md SPEC_FULL.md §4.6); internal/document and internal/piecetree
// have no UI dependency.
package host
