package fixture

import (
	"bytes"
	"fmt"

	"github.com/dshills/ziggurat/internal/mapped"
	"github.com/dshills/ziggurat/internal/piecetree"
)

// Result reports both replays' final documents for a caller that wants to
// inspect mismatches beyond Replay's single error.
type Result struct {
	Reference []byte // the reference byte-buffer replay's final document
	Tree      []byte // the production piecetree.Tree replay's final document
}

// Replay applies f's operations to both a reference byte-slice buffer and a
// production piecetree.Tree, starting from the same initial document, and
// requires all three of {reference, tree, f.Expected} to agree byte-for-
// byte (spec.md §8: "the benchmark harness ... must agree with a reference
// piece-table replay byte-for-byte").
func Replay(f Fixture) (Result, error) {
	ref, err := replayReference(f)
	if err != nil {
		return Result{}, fmt.Errorf("reference replay: %w", err)
	}
	tree, err := replayTree(f)
	if err != nil {
		return Result{}, fmt.Errorf("tree replay: %w", err)
	}

	if !bytes.Equal(ref, tree) {
		return Result{Reference: ref, Tree: tree}, fmt.Errorf("reference and tree replays diverge: %d vs %d bytes", len(ref), len(tree))
	}
	if !bytes.Equal(ref, f.Expected) {
		return Result{Reference: ref, Tree: tree}, fmt.Errorf("replay produced %d bytes, fixture expects %d", len(ref), len(f.Expected))
	}
	return Result{Reference: ref, Tree: tree}, nil
}

// replayReference applies f's operations to a plain []byte, the ground
// truth for "what insert/delete at a byte offset means".
func replayReference(f Fixture) ([]byte, error) {
	buf := append([]byte(nil), f.Initial...)
	for _, op := range f.Ops {
		var err error
		buf, err = applyReference(buf, op)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func applyReference(buf []byte, op Op) ([]byte, error) {
	switch op.Kind {
	case OpInsert:
		if op.At < 0 || op.At > int64(len(buf)) {
			return nil, fmt.Errorf("%w: insert at %d out of range [0,%d]", ErrBadFixtureFormat, op.At, len(buf))
		}
		out := make([]byte, 0, len(buf)+len(op.Payload))
		out = append(out, buf[:op.At]...)
		out = append(out, op.Payload...)
		out = append(out, buf[op.At:]...)
		return out, nil
	case OpDelete:
		if op.At < 0 || op.Len < 0 || op.At+op.Len > int64(len(buf)) {
			return nil, fmt.Errorf("%w: delete [%d,%d) out of range [0,%d]", ErrBadFixtureFormat, op.At, op.At+op.Len, len(buf))
		}
		out := make([]byte, 0, len(buf)-int(op.Len))
		out = append(out, buf[:op.At]...)
		out = append(out, buf[op.At+op.Len:]...)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown operation kind %d", ErrBadFixtureFormat, op.Kind)
	}
}

// replayTree applies f's operations to a fresh piecetree.Tree — the
// production implementation under test — via the same at-offset Insert/
// Delete contract the reference buffer uses.
func replayTree(f Fixture) ([]byte, error) {
	tree, err := piecetree.New(&mapped.Source{})
	if err != nil {
		return nil, err
	}
	if len(f.Initial) > 0 {
		if err := tree.Insert(0, f.Initial); err != nil {
			return nil, err
		}
	}
	for _, op := range f.Ops {
		switch op.Kind {
		case OpInsert:
			if err := tree.Insert(op.At, op.Payload); err != nil {
				return nil, err
			}
		case OpDelete:
			if op.Len == 0 {
				continue // a zero-length delete is a documented no-op (spec.md §8)
			}
			if err := tree.Delete(op.At, op.Len); err != nil {
				return nil, err
			}
		}
	}
	var out bytes.Buffer
	if err := tree.MaterializeAll(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
