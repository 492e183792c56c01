package fixture

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"testing"
)

func fixtureText(initial string, ops []string, expected string) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(ops)))
	b.WriteByte('\n')
	b.WriteString(hex.EncodeToString([]byte(initial)))
	b.WriteByte('\n')
	for _, op := range ops {
		b.WriteString(op)
		b.WriteByte('\n')
	}
	b.WriteString(hex.EncodeToString([]byte(expected)))
	b.WriteByte('\n')
	return b.String()
}

func TestParseAndReplayInsertAndDelete(t *testing.T) {
	text := fixtureText("abcXYZ", []string{"I 3 3 : 123", "D 2 4"}, "abXYZ")
	f, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(f.Initial) != "abcXYZ" {
		t.Fatalf("Initial = %q, want %q", f.Initial, "abcXYZ")
	}
	if _, err := Replay(f); err != nil {
		t.Fatalf("Replay: %v", err)
	}
}

func TestParseRejectsOddLengthHex(t *testing.T) {
	text := "0\nabc\nabc\n"
	_, err := Parse(strings.NewReader(text))
	if !errors.Is(err, ErrBadFixtureFormat) {
		t.Fatalf("err = %v, want ErrBadFixtureFormat", err)
	}
}

func TestParseRejectsMismatchedOperationCount(t *testing.T) {
	text := "2\n" + hex.EncodeToString([]byte("ab")) + "\nI 0 1 : x\n" + hex.EncodeToString([]byte("xab")) + "\n"
	_, err := Parse(strings.NewReader(text))
	if !errors.Is(err, ErrBadFixtureFormat) {
		t.Fatalf("err = %v, want ErrBadFixtureFormat", err)
	}
}

func TestParseRejectsPayloadLengthMismatch(t *testing.T) {
	text := fixtureText("ab", []string{"I 0 2 : x"}, "xab")
	_, err := Parse(strings.NewReader(text))
	if !errors.Is(err, ErrBadFixtureFormat) {
		t.Fatalf("err = %v, want ErrBadFixtureFormat", err)
	}
}

func TestReplayDetectsWrongExpectedDocument(t *testing.T) {
	text := fixtureText("ab", []string{"I 0 1 : x"}, "ZZZ")
	f, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Replay(f); err == nil {
		t.Fatal("Replay should fail when fixture's expected document is wrong")
	}
}

func TestReplayEmptyInitialDocument(t *testing.T) {
	text := fixtureText("", []string{"I 0 5 : hello"}, "hello")
	f, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Replay(f); err != nil {
		t.Fatalf("Replay: %v", err)
	}
}

func TestReplayZeroLengthDeleteIsNoOp(t *testing.T) {
	text := fixtureText("abc", []string{"D 1 0"}, "abc")
	f, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Replay(f); err != nil {
		t.Fatalf("Replay: %v", err)
	}
}

func TestReplayFullDocumentDelete(t *testing.T) {
	text := fixtureText("hello", []string{"D 0 5"}, "")
	f, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Replay(f); err != nil {
		t.Fatalf("Replay: %v", err)
	}
}

func TestParseToleratesCRLF(t *testing.T) {
	text := strings.ReplaceAll(fixtureText("ab", []string{"I 0 1 : x"}, "xab"), "\n", "\r\n")
	f, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Replay(f); err != nil {
		t.Fatalf("Replay: %v", err)
	}
}
