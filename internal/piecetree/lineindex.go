package piecetree

// PageSize is the page granularity of the lazy newline prefix-sum index
// (spec.md §3, §4.1).
const PageSize = 16 * 1024

// lineIndex is a lazy, page-granular prefix sum of newline counts over one
// backing buffer. It never needs invalidation: the original buffer is
// immutable and the add buffer only grows, so once a page is filled its
// prefix sum stays correct.
//
// Grounded on internal/engine/rope/newline_index.go's per-chunk inline/heap
// newline array, reshaped here into a per-buffer paged prefix sum since our
// backing buffers are unbounded rather than bounded-size rope chunks.
type lineIndex struct {
	data    []byte
	done    []bool
	prefix  []uint32 // prefix[p] = total newlines in pages [0..p]
}

func newLineIndex(data []byte) *lineIndex {
	return &lineIndex{data: data}
}

func (li *lineIndex) pageCount() int {
	n := len(li.data)
	if n == 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

func (li *lineIndex) ensureCapacity() {
	pc := li.pageCount()
	if len(li.done) >= pc {
		return
	}
	done := make([]bool, pc)
	prefix := make([]uint32, pc)
	copy(done, li.done)
	copy(prefix, li.prefix)
	li.done = done
	li.prefix = prefix
}

// fillPage counts newlines in page p and back-fills prefix[p] from
// prefix[p-1], assuming all pages < p are already filled.
func (li *lineIndex) fillPage(p int) {
	if li.done[p] {
		return
	}
	start := p * PageSize
	end := start + PageSize
	if end > len(li.data) {
		end = len(li.data)
	}
	count := countNewlines(li.data[start:end])
	var prev uint32
	if p > 0 {
		li.fillThrough(p - 1)
		prev = li.prefix[p-1]
	}
	li.prefix[p] = prev + uint32(count)
	// A partial tail page can still grow (the add buffer is append-only),
	// so it is only marked done once it holds a full page of bytes.
	li.done[p] = end-start == PageSize
}

// fillThrough fills every page up to and including p, in order, so
// prefixes stay monotone (spec.md §3 invariant).
func (li *lineIndex) fillThrough(p int) {
	li.ensureCapacity()
	for i := 0; i <= p; i++ {
		if !li.done[i] {
			li.fillPage(i)
		}
	}
}

func countNewlines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

// countRange returns the number of '\n' in data[start:start+length].
func (li *lineIndex) countRange(start, length int) int {
	if length <= 0 {
		return 0
	}
	end := start + length
	if end > len(li.data) {
		end = len(li.data)
	}
	startPage := start / PageSize
	endPage := (end - 1) / PageSize

	if startPage == endPage {
		return countNewlines(li.data[start:end])
	}

	li.fillThrough(endPage)

	// Partial first page (from start to end of startPage).
	firstPageEnd := (startPage + 1) * PageSize
	if firstPageEnd > end {
		firstPageEnd = end
	}
	count := countNewlines(li.data[start:firstPageEnd])

	// Partial last page (from start of endPage to end).
	lastPageStart := endPage * PageSize
	count += countNewlines(li.data[lastPageStart:end])

	// Interior whole pages via prefix sums: pages [startPage+1 .. endPage-1].
	if endPage-1 >= startPage+1 {
		count += int(li.prefix[endPage-1] - li.prefix[startPage])
	}
	return count
}

// nthNewlineAfter returns the byte index (relative to the buffer) of the
// n-th newline at or after start (0-indexed: n=0 means "the first newline
// at or after start"). Returns -1 if there is no such newline.
func (li *lineIndex) nthNewlineAfter(start int, n int) int {
	if start >= len(li.data) {
		return -1
	}
	startPage := start / PageSize
	// Count within the partial first page.
	firstPageEnd := (startPage + 1) * PageSize
	if firstPageEnd > len(li.data) {
		firstPageEnd = len(li.data)
	}
	idx := scanNthNewline(li.data[start:firstPageEnd], n)
	if idx >= 0 {
		return start + idx
	}
	n -= countNewlines(li.data[start:firstPageEnd])

	lastPage := li.pageCount() - 1
	li.fillThrough(lastPage)
	if startPage >= lastPage {
		return -1
	}

	// Binary search the page prefix sums (spec.md §4.1) for the first page
	// whose cumulative newline count (relative to the end of startPage)
	// exceeds n, rather than scanning pages one at a time.
	base := int(li.prefix[startPage])
	target := base + n + 1
	lo, hi := startPage+1, lastPage
	p := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if int(li.prefix[mid]) >= target {
			p = mid
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	if p == -1 {
		return -1
	}

	n -= int(li.prefix[p-1]) - base
	pStart := p * PageSize
	pEnd := pStart + PageSize
	if pEnd > len(li.data) {
		pEnd = len(li.data)
	}
	idx = scanNthNewline(li.data[pStart:pEnd], n)
	if idx < 0 {
		return -1
	}
	return pStart + idx
}

func scanNthNewline(b []byte, n int) int {
	for i, c := range b {
		if c == '\n' {
			if n == 0 {
				return i
			}
			n--
		}
	}
	return -1
}
