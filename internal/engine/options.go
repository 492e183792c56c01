package engine

import "github.com/dshills/ziggurat/internal/config"

// Option configures an Engine during creation.
type Option func(*Engine)

// WithConfig sets the piece-tree and history tuning knobs (minPieces,
// maxPieces, minBranch, maxBranch, coalesce window, max undo entries),
// typically produced by config.Load.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithReadOnly creates a read-only engine. Mutating operations return
// ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) { e.readOnly = true }
}
