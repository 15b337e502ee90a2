// Package nback contains the pure logic of the adaptive n-back task.
// Nothing in this package performs I/O: history bookkeeping, lure detection,
// expected-response computation and difficulty transitions are all plain
// functions over values so they can be exercised without a display.
package nback

// MaxDepth is the number of previously shown focal images kept in a History.
// It covers the 1-, 2- and 3-back lookups.
const MaxDepth = 3

// History is a rolling buffer of recently shown focal image IDs,
// most recent first. A History belongs to a single block.
type History struct {
	ids []int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{ids: make([]int, 0, MaxDepth)}
}

// Record prepends imageID, dropping the oldest entry once MaxDepth is exceeded.
func (h *History) Record(imageID int) {
	if len(h.ids) < MaxDepth {
		h.ids = append(h.ids, 0)
	}
	copy(h.ids[1:], h.ids[:len(h.ids)-1])
	h.ids[0] = imageID
}

// Lookback returns the ID recorded n trials ago (n=1 is the most recent).
// ok is false when fewer than n IDs have been recorded or n is out of range.
func (h *History) Lookback(n int) (id int, ok bool) {
	if n < 1 || n > len(h.ids) {
		return 0, false
	}
	return h.ids[n-1], true
}

// Len returns the number of recorded IDs.
func (h *History) Len() int {
	return len(h.ids)
}

// IDs returns a copy of the recorded IDs, most recent first.
func (h *History) IDs() []int {
	out := make([]int, len(h.ids))
	copy(out, h.ids)
	return out
}
