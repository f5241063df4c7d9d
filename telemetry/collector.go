package telemetry

// Collector accumulates move outcomes over a window of ticks and produces
// WindowStats for the progress log.
type Collector struct {
	windowTicks int32

	// Current window tracking
	windowStartTick int32

	// Counters for current window
	moves  int
	blocks int
}

// NewCollector creates a stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// Reset starts a new empty window at tick.
func (c *Collector) Reset(tick int32) {
	c.windowStartTick = tick
	c.moves = 0
	c.blocks = 0
}

// RecordTick records the outcome of one apply phase.
func (c *Collector) RecordTick(moved, blocked int) {
	c.moves += moved
	c.blocks += blocked
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// SeekerSample is the seeker state sampled at window end.
type SeekerSample struct {
	Emitters int
	Seekers  int
	Exposed  int
	Wander   int
	Cohesion int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample SeekerSample) WindowStats {
	var blockRate float64
	if attempts := c.moves + c.blocks; attempts > 0 {
		blockRate = float64(c.blocks) / float64(attempts)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Emitters: sample.Emitters,
		Seekers:  sample.Seekers,

		Moves:     c.moves,
		Blocks:    c.blocks,
		BlockRate: blockRate,

		Exposed:  sample.Exposed,
		Wander:   sample.Wander,
		Cohesion: sample.Cohesion,
	}

	c.Reset(currentTick)
	return stats
}

