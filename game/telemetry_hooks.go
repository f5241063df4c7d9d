package game

import (
	"github.com/pthm-cable/chemotaxis/telemetry"
)

// recordTelemetry accumulates move outcomes and writes the trace rows and
// log lines due at the current tick.
func (g *Game) recordTelemetry() {
	tcfg := g.cfg.Telemetry

	g.collector.RecordTick(g.lastMoved, g.numSeeker-g.lastMoved)

	if tcfg.TraceInterval > 0 && g.tick%int32(tcfg.TraceInterval) == 0 {
		g.writeTrace()
	}

	if g.logStats && tcfg.LogInterval > 0 && g.collector.ShouldFlush(g.tick) {
		g.flushStats()
	}
}

// flushStats closes the current stats window and logs it with the perf window.
func (g *Game) flushStats() {
	stats := g.collector.Flush(g.tick, g.sampleSeekers())
	stats.LogStats(g.logger)
	g.perf.Stats().LogStats(g.logger)
}

// writeTrace appends one row per particle to positions.csv.
// Write failures are logged and the run continues.
func (g *Game) writeTrace() {
	if g.output == nil {
		return
	}

	records := make([]telemetry.PositionRecord, 0, len(g.entities))
	for _, e := range g.entities {
		p := g.particleMap.Get(e)
		pos := g.posMap.Get(e)
		vel := g.velMap.Get(e)
		records = append(records, telemetry.PositionRecord{
			Tick: g.tick,
			ID:   p.ID,
			Kind: p.Kind.String(),
			X:    pos.X,
			Y:    pos.Y,
			VX:   vel.X,
			VY:   vel.Y,
		})
	}

	if err := g.output.WritePositions(records); err != nil {
		g.logger.Error("failed to write positions", "tick", g.tick, "error", err)
	}
}

