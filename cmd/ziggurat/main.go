// Package main is the entry point for the Ziggurat text engine's terminal
// host (spec.md §6 "Command-line surface").
package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/dshills/ziggurat/internal/engine"
	"github.com/dshills/ziggurat/internal/host"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "usage: ziggurat [path]")
		return 1
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "ziggurat: stdout is not a terminal")
		return 1
	}

	eng, err := openEngine(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ziggurat: %v\n", err)
		return 1
	}
	defer eng.Close()

	h, err := host.New(eng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ziggurat: failed to initialize terminal: %v\n", err)
		return 1
	}

	if err := h.Run(); err != nil && !errors.Is(err, engine.ErrReadOnly) {
		fmt.Fprintf(os.Stderr, "ziggurat: %v\n", err)
		return 1
	}
	return 0
}

// openEngine implements spec.md §6: no path opens an empty scratch
// document; a path opens the file if it exists, else an empty document
// associated with that path (created on first save).
func openEngine(args []string) (*engine.Engine, error) {
	if len(args) == 0 {
		return engine.New()
	}
	return engine.Open(args[0])
}
