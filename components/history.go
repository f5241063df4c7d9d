package components

import "gonum.org/v1/gonum/spatial/r2"

// Metric measures the distance between two points of the world.
type Metric interface {
	Distance(a, b r2.Vec) float64
}

// History is a fixed-capacity ring buffer of a particle's recently committed
// positions. Once full, recording evicts the oldest entry.
type History struct {
	buf   []r2.Vec
	next  int // write cursor
	count int
}

// NewHistory creates an empty history holding at most capacity positions.
// A zero capacity yields a history that never reports a repeat.
func NewHistory(capacity int) History {
	if capacity < 0 {
		capacity = 0
	}
	return History{buf: make([]r2.Vec, capacity)}
}

// Cap returns the history capacity.
func (h *History) Cap() int { return len(h.buf) }

// Len returns the number of stored positions.
func (h *History) Len() int { return h.count }

// Record appends p, evicting the oldest position when full.
func (h *History) Record(p r2.Vec) {
	if len(h.buf) == 0 {
		return
	}
	h.buf[h.next] = p
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// Positions returns the stored positions, oldest first.
func (h *History) Positions() []r2.Vec {
	out := make([]r2.Vec, 0, h.count)
	start := (h.next - h.count + len(h.buf)) % max(len(h.buf), 1)
	for i := 0; i < h.count; i++ {
		out = append(out, h.buf[(start+i)%len(h.buf)])
	}
	return out
}

// WouldRepeat reports whether candidate lies strictly closer than threshold
// to any stored position.
func (h *History) WouldRepeat(candidate r2.Vec, threshold float64, m Metric) bool {
	for i := 0; i < h.count; i++ {
		if m.Distance(h.buf[i], candidate) < threshold {
			return true
		}
	}
	return false
}
