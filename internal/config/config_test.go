package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("Load(nil) = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadFromJSON(t *testing.T) {
	doc := []byte(`{"pieceTree":{"minPieces":4,"maxPieces":16},"history":{"maxUndoEntries":50}}`)
	cfg, err := Load(doc)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinPieces != 4 || cfg.MaxPieces != 16 {
		t.Fatalf("piece bounds = %d/%d, want 4/16", cfg.MinPieces, cfg.MaxPieces)
	}
	if cfg.MaxUndoEntries != 50 {
		t.Fatalf("MaxUndoEntries = %d, want 50", cfg.MaxUndoEntries)
	}
	// Unspecified knobs keep their defaults.
	if cfg.MinBranch != Default().MinBranch {
		t.Fatalf("MinBranch = %d, want default %d", cfg.MinBranch, Default().MinBranch)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ZIGGURAT_MAX_UNDO", "7")
	t.Setenv("ZIGGURAT_COALESCE_WINDOW", "250ms")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxUndoEntries != 7 {
		t.Fatalf("MaxUndoEntries = %d, want 7 (env override)", cfg.MaxUndoEntries)
	}
	if cfg.CoalesceWindow != 250*time.Millisecond {
		t.Fatalf("CoalesceWindow = %v, want 250ms", cfg.CoalesceWindow)
	}
}

func TestLoadRejectsInvalidBounds(t *testing.T) {
	doc := []byte(`{"pieceTree":{"minPieces":10,"maxPieces":2}}`)
	if _, err := Load(doc); err != ErrInvalidBound {
		t.Fatalf("Load with maxPieces < minPieces = %v, want ErrInvalidBound", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.MaxUndoEntries = 42
	doc, err := Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Load(doc)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Fatalf("round trip = %+v, want %+v", got, cfg)
	}
}
