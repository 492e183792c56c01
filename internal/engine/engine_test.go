package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewEmpty(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if e.Size() != 0 {
		t.Fatalf("expected empty engine, got size %d", e.Size())
	}
	text, err := e.Text()
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestNewFromReader(t *testing.T) {
	content := "Hello, World!"
	e, err := NewFromReader(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	text, err := e.Text()
	if err != nil {
		t.Fatal(err)
	}
	if text != content {
		t.Fatalf("got %q, want %q", text, content)
	}
	if e.Size() != int64(len(content)) {
		t.Fatalf("Size() = %d, want %d", e.Size(), len(content))
	}
}

func TestInsertUndoRedo(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Insert([]byte("Hello"), OriginTyping); err != nil {
		t.Fatal(err)
	}
	e.CommitTransaction()
	if _, err := e.Insert([]byte(" World"), OriginTyping); err != nil {
		t.Fatal(err)
	}

	text, _ := e.Text()
	if text != "Hello World" {
		t.Fatalf("got %q", text)
	}

	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	text, _ = e.Text()
	if text != "Hello" {
		t.Fatalf("after undo got %q, want Hello", text)
	}

	if err := e.Redo(); err != nil {
		t.Fatal(err)
	}
	text, _ = e.Text()
	if text != "Hello World" {
		t.Fatalf("after redo got %q, want Hello World", text)
	}
}

func TestBackspaceAndDelete(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Insert([]byte("abcdef"), OriginTyping); err != nil {
		t.Fatal(err)
	}
	if err := e.MoveTo(3); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Backspace(); err != nil {
		t.Fatal(err)
	}
	text, _ := e.Text()
	if text != "abdef" {
		t.Fatalf("after backspace got %q, want abdef", text)
	}
	if _, err := e.Delete(); err != nil {
		t.Fatal(err)
	}
	text, _ = e.Text()
	if text != "abef" {
		t.Fatalf("after delete got %q, want abef", text)
	}
}

func TestReadOnlyRejectsMutation(t *testing.T) {
	e, err := New(WithReadOnly())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Insert([]byte("x"), OriginTyping); err != ErrReadOnly {
		t.Fatalf("Insert on read-only engine = %v, want ErrReadOnly", err)
	}
	if err := e.Save(); err != ErrReadOnly {
		t.Fatalf("Save on read-only engine = %v, want ErrReadOnly", err)
	}
}

func TestOpenSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("on disk"), 0o644); err != nil {
		t.Fatal(err)
	}

	e, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if err := e.MoveTo(int64(len("on disk"))); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Insert([]byte(" edited"), OriginTyping); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "on disk edited" {
		t.Fatalf("on-disk content = %q", got)
	}

	text, err := e.Text()
	if err != nil {
		t.Fatal(err)
	}
	if text != "on disk edited" {
		t.Fatalf("in-memory content after save = %q", text)
	}
}

func TestOpenMissingFileYieldsEmptyDocumentAssociatedWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	e, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if e.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", e.Size())
	}
	if e.Path() != path {
		t.Fatalf("Path() = %q, want %q (spec.md §6 \"creates on save\")", e.Path(), path)
	}
	if _, err := e.Insert([]byte("hi"), OriginTyping); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(); err != nil {
		t.Fatalf("Save on a missing-file path should create it: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hi" {
		t.Fatalf("saved file = %q, want %q", got, "hi")
	}
}

func TestPasteNeverCoalesces(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Paste([]byte("ab")); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Paste([]byte("cd")); err != nil {
		t.Fatal(err)
	}
	if !e.CanUndo() {
		t.Fatal("expected undo available")
	}
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	text, _ := e.Text()
	if text != "ab" {
		t.Fatalf("after one undo of two pastes got %q, want ab", text)
	}
}
