package host

import "time"

// clickWindow and clickRadius are spec.md §6 "Mouse"'s click-sequence
// thresholds: same button, ≤400ms gap, ≤6px movement.
const (
	clickWindow = 400 * time.Millisecond
	clickRadius = 6
)

// clickTracker counts consecutive same-button clicks within clickWindow and
// clickRadius of one another, capping at 4 (quadruple click selects the
// whole document; a fifth click in the same spot restarts the sequence).
type clickTracker struct {
	button  int
	x, y    int
	at      time.Time
	count   int
	hasPrev bool
}

func (c *clickTracker) next(button, x, y int, now time.Time) int {
	if c.hasPrev && c.button == button && now.Sub(c.at) <= clickWindow && abs(x-c.x) <= clickRadius && abs(y-c.y) <= clickRadius {
		c.count++
		if c.count > 4 {
			c.count = 1
		}
	} else {
		c.count = 1
	}
	c.button, c.x, c.y, c.at, c.hasPrev = button, x, y, now, true
	return c.count
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
