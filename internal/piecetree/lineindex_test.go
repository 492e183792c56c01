package piecetree

import "testing"

func TestLineIndexCountRange(t *testing.T) {
	data := []byte("a\nbb\nccc\ndddd\n")
	li := newLineIndex(data)
	if got := li.countRange(0, len(data)); got != 4 {
		t.Fatalf("countRange(full) = %d, want 4", got)
	}
	if got := li.countRange(2, 3); got != 1 {
		t.Fatalf("countRange(2,3) = %d, want 1", got)
	}
}

func TestLineIndexCountRangeAcrossPages(t *testing.T) {
	n := PageSize*3 + 100
	data := make([]byte, n)
	want := 0
	for i := range data {
		if i%97 == 0 {
			data[i] = '\n'
			want++
		} else {
			data[i] = 'x'
		}
	}
	li := newLineIndex(data)
	if got := li.countRange(0, n); got != want {
		t.Fatalf("countRange = %d, want %d", got, want)
	}
	// Re-query a sub-range after pages are filled, exercising the
	// already-done fast path.
	if got := li.countRange(PageSize/2, PageSize); got < 0 {
		t.Fatalf("unexpected negative count")
	}
}

func TestLineIndexNthNewlineAfter(t *testing.T) {
	data := []byte("a\nbb\nccc\ndddd\n")
	li := newLineIndex(data)
	idx := li.nthNewlineAfter(0, 0)
	if idx != 1 {
		t.Fatalf("nthNewlineAfter(0,0) = %d, want 1", idx)
	}
	idx = li.nthNewlineAfter(2, 0)
	if data[idx] != '\n' || idx != 4 {
		t.Fatalf("nthNewlineAfter(2,0) = %d, want 4", idx)
	}
	if idx := li.nthNewlineAfter(0, 100); idx != -1 {
		t.Fatalf("nthNewlineAfter out of range = %d, want -1", idx)
	}
}

// TestLineIndexNthNewlineAfterAcrossPages exercises nthNewlineAfter's
// binary search over page prefix sums (spec.md §4.1) against a linear
// scan reference, for both a start page and a target several pages later.
func TestLineIndexNthNewlineAfterAcrossPages(t *testing.T) {
	n := PageSize*5 + 37
	data := make([]byte, n)
	var newlineOffsets []int
	for i := range data {
		if i%61 == 0 {
			data[i] = '\n'
			newlineOffsets = append(newlineOffsets, i)
		} else {
			data[i] = 'x'
		}
	}
	li := newLineIndex(data)

	firstInPage3 := -1
	for _, off := range newlineOffsets {
		if off >= PageSize*3 {
			firstInPage3 = off
			break
		}
	}
	if firstInPage3 < 0 {
		t.Fatal("fixture has no newline in page 3")
	}
	if got := li.nthNewlineAfter(PageSize*3, 0); got != firstInPage3 {
		t.Fatalf("nthNewlineAfter(page3, 0) = %d, want %d", got, firstInPage3)
	}

	// The 10th newline at or after byte 10 should match a plain linear scan.
	want := -1
	count := 0
	for _, off := range newlineOffsets {
		if off >= 10 {
			if count == 10 {
				want = off
				break
			}
			count++
		}
	}
	if got := li.nthNewlineAfter(10, 10); got != want {
		t.Fatalf("nthNewlineAfter(10, 10) = %d, want %d", got, want)
	}

	if got := li.nthNewlineAfter(0, len(newlineOffsets)+5); got != -1 {
		t.Fatalf("nthNewlineAfter past the last newline = %d, want -1", got)
	}
}
