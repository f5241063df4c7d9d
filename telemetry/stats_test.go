package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"testing"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(10)

	for tick := int32(1); tick <= 10; tick++ {
		c.RecordTick(3, 1)
		if tick < 10 && c.ShouldFlush(tick) {
			t.Fatalf("flush due too early at tick %d", tick)
		}
	}
	if !c.ShouldFlush(10) {
		t.Fatal("expected flush at tick 10")
	}

	stats := c.Flush(10, SeekerSample{Seekers: 4, Exposed: 2, Wander: 1})
	if stats.Moves != 30 || stats.Blocks != 10 {
		t.Errorf("moves/blocks: got %d/%d, want 30/10", stats.Moves, stats.Blocks)
	}
	if math.Abs(stats.BlockRate-0.25) > 1e-12 {
		t.Errorf("block rate: got %v, want 0.25", stats.BlockRate)
	}
	if stats.Exposed != 2 || stats.Wander != 1 || stats.Seekers != 4 {
		t.Errorf("sample not carried over: %+v", stats)
	}
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("window: got %d..%d, want 0..10", stats.WindowStartTick, stats.WindowEndTick)
	}

	// Counters reset
	next := c.Flush(20, SeekerSample{})
	if next.Moves != 0 || next.Blocks != 0 || next.BlockRate != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartTick != 10 {
		t.Errorf("next window start: got %d, want 10", next.WindowStartTick)
	}
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector(0) // clamped to 1
	c.RecordTick(5, 5)
	c.Reset(40)

	if c.ShouldFlush(40) {
		t.Error("no tick has passed since reset")
	}
	if !c.ShouldFlush(41) {
		t.Error("expected flush one tick after reset")
	}
	if s := c.Flush(41, SeekerSample{}); s.Moves != 0 || s.WindowStartTick != 40 {
		t.Errorf("reset did not clear the window: %+v", s)
	}
}

func TestWindowStatsLogStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WindowStats{WindowEndTick: 500, Seekers: 700, Moves: 1200, Blocks: 3}.LogStats(logger)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "stats" {
		t.Errorf("msg: got %v, want stats", entry["msg"])
	}
	if entry["moves"] != float64(1200) {
		t.Errorf("moves: got %v, want 1200", entry["moves"])
	}
	if entry["window_end"] != float64(500) {
		t.Errorf("window_end: got %v, want 500", entry["window_end"])
	}
}

func TestWindowStatsAsLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("summary", "window", WindowStats{Blocks: 7, BlockRate: 0.5})

	var entry struct {
		Window map[string]any `json:"window"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry.Window["blocks"] != float64(7) || entry.Window["block_rate"] != 0.5 {
		t.Errorf("window group: got %v", entry.Window)
	}
}
