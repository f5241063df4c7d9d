package game

import (
	"github.com/pthm-cable/chemotaxis/components"
	"github.com/pthm-cable/chemotaxis/telemetry"
)

// updateSpatialGrid rebuilds the spatial index from the committed positions.
func (g *Game) updateSpatialGrid() {
	g.grid.Clear()

	query := g.posFilter.Query()
	for query.Next() {
		pos := query.Get()
		g.grid.Insert(query.Entity(), pos.X, pos.Y)
	}
}

// drawWander reserves two uniforms per seeker, in arena order, for the
// random movement fallback. Drawing up front keeps the decide phase free
// of shared RNG state, so any worker count gives the same run.
func (g *Game) drawWander() {
	for i, e := range g.entities {
		if g.particleMap.Get(e).Kind != components.KindSeeker {
			continue
		}
		g.draws[i] = [2]float64{g.rng.Float64(), g.rng.Float64()}
	}
}

// sampleSeekers collects the seeker state for window stats.
func (g *Game) sampleSeekers() telemetry.SeekerSample {
	sample := telemetry.SeekerSample{
		Emitters: g.numEmitter,
		Seekers:  g.numSeeker,
	}
	for _, e := range g.entities {
		p := g.particleMap.Get(e)
		if p.Kind != components.KindSeeker {
			continue
		}
		if g.sensorMap.Get(e).Exposed() {
			sample.Exposed++
		}
		switch p.Drive {
		case components.DriveWander:
			sample.Wander++
		case components.DriveCohesion:
			sample.Cohesion++
		}
	}
	return sample
}
