// Package config loads the engine's tuning knobs (piece-tree branch factors,
// undo coalescing window, max undo entries) from a small JSON document with
// environment-variable overrides.
//
// This is a much smaller replacement of the teacher's internal/config
// (which configures an entire editor's UI, keymaps, and plugin layers): only
// the engine-tuning surface survives, since the rest has no counterpart in
// spec.md. The JSON half is read with github.com/tidwall/gjson and
// round-tripped back with github.com/tidwall/sjson, both teacher
// dependencies, in place of encoding/json + struct tags. The env-override
// half follows internal/config/loader/env.go's prefix + explicit mapping
// idiom from the teacher.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dshills/ziggurat/internal/history"
	"github.com/dshills/ziggurat/internal/piecetree"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// EnvPrefix is prefixed to every environment variable override.
const EnvPrefix = "ZIGGURAT_"

// Config holds every tunable knob of the engine (spec.md §9 defaults).
type Config struct {
	MinPieces      int
	MaxPieces      int
	MinBranch      int
	MaxBranch      int
	CoalesceWindow time.Duration
	MaxUndoEntries int
}

// Default returns the engine's built-in defaults, matching
// piecetree.Default* and history.Default*.
func Default() Config {
	return Config{
		MinPieces:      piecetree.DefaultMinPieces,
		MaxPieces:      piecetree.DefaultMaxPieces,
		MinBranch:      piecetree.DefaultMinBranch,
		MaxBranch:      piecetree.DefaultMaxBranch,
		CoalesceWindow: history.DefaultCoalesceWindow,
		MaxUndoEntries: history.DefaultMaxEntries,
	}
}

// envMapping maps ZIGGURAT_-prefixed environment variables to gjson/sjson
// dot paths within the JSON document, following loader/env.go's
// defaultEnvMapping table.
var envMapping = map[string]string{
	"ZIGGURAT_MIN_PIECES":      "pieceTree.minPieces",
	"ZIGGURAT_MAX_PIECES":      "pieceTree.maxPieces",
	"ZIGGURAT_MIN_BRANCH":      "pieceTree.minBranch",
	"ZIGGURAT_MAX_BRANCH":      "pieceTree.maxBranch",
	"ZIGGURAT_COALESCE_WINDOW": "history.coalesceWindow",
	"ZIGGURAT_MAX_UNDO":        "history.maxUndoEntries",
}

// Load parses doc (a JSON document; nil or empty is treated as "{}"),
// applies ZIGGURAT_-prefixed environment overrides on top, and returns the
// resulting Config layered over Default().
func Load(doc []byte) (Config, error) {
	cfg := Default()
	if len(doc) == 0 {
		doc = []byte("{}")
	}
	text := string(doc)

	for env, path := range envMapping {
		if val, ok := os.LookupEnv(env); ok {
			var err error
			text, err = sjson.Set(text, path, val)
			if err != nil {
				return Config{}, err
			}
		}
	}

	if v := gjson.Get(text, "pieceTree.minPieces"); v.Exists() {
		cfg.MinPieces = int(v.Int())
	}
	if v := gjson.Get(text, "pieceTree.maxPieces"); v.Exists() {
		cfg.MaxPieces = int(v.Int())
	}
	if v := gjson.Get(text, "pieceTree.minBranch"); v.Exists() {
		cfg.MinBranch = int(v.Int())
	}
	if v := gjson.Get(text, "pieceTree.maxBranch"); v.Exists() {
		cfg.MaxBranch = int(v.Int())
	}
	if v := gjson.Get(text, "history.coalesceWindow"); v.Exists() {
		if d, err := parseDuration(v); err == nil {
			cfg.CoalesceWindow = d
		}
	}
	if v := gjson.Get(text, "history.maxUndoEntries"); v.Exists() {
		cfg.MaxUndoEntries = int(v.Int())
	}

	if cfg.MinPieces < 1 || cfg.MaxPieces < cfg.MinPieces {
		return Config{}, ErrInvalidBound
	}
	if cfg.MinBranch < 1 || cfg.MaxBranch < cfg.MinBranch {
		return Config{}, ErrInvalidBound
	}
	return cfg, nil
}

// parseDuration accepts either a gjson numeric value (milliseconds) or a
// Go duration string ("500ms", "1s"), matching loader/env.go's parseValue
// fallback chain from string to duration.
func parseDuration(v gjson.Result) (time.Duration, error) {
	if v.Type == gjson.String {
		if d, err := time.ParseDuration(v.String()); err == nil {
			return d, nil
		}
		ms, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, err
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.Duration(v.Int()) * time.Millisecond, nil
}

// PiecetreeOptions translates Config into piecetree.Option values.
func (c Config) PiecetreeOptions() []piecetree.Option {
	return []piecetree.Option{
		piecetree.WithPieceBounds(c.MinPieces, c.MaxPieces),
		piecetree.WithBranchBounds(c.MinBranch, c.MaxBranch),
	}
}

// HistoryOptions translates Config into history.Option values.
func (c Config) HistoryOptions() []history.Option {
	return []history.Option{
		history.WithCoalesceWindow(c.CoalesceWindow),
		history.WithMaxEntries(c.MaxUndoEntries),
	}
}

// Marshal renders cfg back to a JSON document, for persisting an effective
// configuration (e.g. after env overrides) to disk.
func Marshal(cfg Config) ([]byte, error) {
	text := "{}"
	var err error
	text, err = sjson.Set(text, "pieceTree.minPieces", cfg.MinPieces)
	if err != nil {
		return nil, err
	}
	text, err = sjson.Set(text, "pieceTree.maxPieces", cfg.MaxPieces)
	if err != nil {
		return nil, err
	}
	text, err = sjson.Set(text, "pieceTree.minBranch", cfg.MinBranch)
	if err != nil {
		return nil, err
	}
	text, err = sjson.Set(text, "pieceTree.maxBranch", cfg.MaxBranch)
	if err != nil {
		return nil, err
	}
	text, err = sjson.Set(text, "history.coalesceWindow", cfg.CoalesceWindow.String())
	if err != nil {
		return nil, err
	}
	text, err = sjson.Set(text, "history.maxUndoEntries", cfg.MaxUndoEntries)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}
