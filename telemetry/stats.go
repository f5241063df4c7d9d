package telemetry

import (
	"context"
	"log/slog"
)

// WindowStats summarizes a window of ticks for the progress log.
type WindowStats struct {
	WindowStartTick int32
	WindowEndTick   int32

	// Population
	Emitters int
	Seekers  int

	// Move outcomes during window
	Moves     int
	Blocks    int
	BlockRate float64

	// Seeker state at window end
	Exposed  int
	Wander   int
	Cohesion int
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("emitters", s.Emitters),
		slog.Int("seekers", s.Seekers),
		slog.Int("moves", s.Moves),
		slog.Int("blocks", s.Blocks),
		slog.Float64("block_rate", s.BlockRate),
		slog.Int("exposed", s.Exposed),
		slog.Int("wander", s.Wander),
		slog.Int("cohesion", s.Cohesion),
	)
}

// LogStats logs the window stats as flat attributes of a "stats" line.
func (s WindowStats) LogStats(logger *slog.Logger) {
	logger.LogAttrs(context.Background(), slog.LevelInfo, "stats", s.LogValue().Group()...)
}
