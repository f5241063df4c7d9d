package game

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/chemotaxis/components"
	"github.com/pthm-cable/chemotaxis/config"
)

var errNoSeekers = errors.New("no seekers to simulate")

// spawnPopulation places the configured counts uniformly at random,
// emitters first.
func (g *Game) spawnPopulation() {
	cfg := g.cfg

	for i := 0; i < cfg.Population.Emitters; i++ {
		g.spawnParticle(components.KindEmitter, g.space.RandomPoint(g.rng), cfg.Emitter.Intensity, 0)
	}
	for i := 0; i < cfg.Population.Seekers; i++ {
		g.spawnParticle(components.KindSeeker, g.space.RandomPoint(g.rng), 0, cfg.Seeker.ResponseRate)
	}
}

// spawnFromLayout places particles at explicit positions, in file order.
// Out-of-range coordinates are wrapped into the domain.
func (g *Game) spawnFromLayout(layout []config.Placement) error {
	cfg := g.cfg

	kinds := make([]components.Kind, len(layout))
	seekers := 0
	for i, pl := range layout {
		kind, ok := components.ParseKind(pl.Kind)
		if !ok {
			return fmt.Errorf("layout row %d: unknown kind %q", i+1, pl.Kind)
		}
		if kind == components.KindSeeker {
			seekers++
		}
		kinds[i] = kind
	}
	if seekers == 0 {
		return errNoSeekers
	}

	for i, pl := range layout {
		kind := kinds[i]
		pos := g.space.Wrap(r2.Vec{X: pl.X, Y: pl.Y})

		switch kind {
		case components.KindEmitter:
			intensity := pl.Intensity
			if intensity == 0 {
				intensity = cfg.Emitter.Intensity
			}
			g.spawnParticle(kind, pos, intensity, 0)
		case components.KindSeeker:
			rate := pl.ResponseRate
			if rate == 0 {
				rate = cfg.Seeker.ResponseRate
			}
			g.spawnParticle(kind, pos, 0, rate)
		}
	}
	return nil
}

// spawnParticle creates one particle and appends it to the arena.
// Seekers start with their spawn point in the movement history.
func (g *Game) spawnParticle(kind components.Kind, at r2.Vec, intensity, responseRate float64) {
	var id string
	switch kind {
	case components.KindEmitter:
		id = fmt.Sprintf("e-%d", g.numEmitter)
		g.numEmitter++
	case components.KindSeeker:
		id = fmt.Sprintf("s-%d", g.numSeeker)
		g.numSeeker++
	}

	pos := components.Position(at)
	vel := components.Velocity{}
	particle := components.Particle{
		ID:           id,
		Kind:         kind,
		Intensity:    intensity,
		ResponseRate: responseRate,
	}
	sensor := components.Sensor{}
	hist := components.NewHistory(0)
	if kind == components.KindSeeker {
		hist = components.NewHistory(g.cfg.Motion.History)
		hist.Record(at)
	}

	entity := g.particleMapper.NewEntity(&pos, &vel, &particle, &sensor, &hist)
	g.entities = append(g.entities, entity)
}

