package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/chemotaxis/components"
)

// PositionSystem runs the third phase of a tick: seekers commit their move
// unless it would bring them back next to a recently visited point.
type PositionSystem struct {
	space       Space
	posMap      *ecs.Map[components.Position]
	velMap      *ecs.Map[components.Velocity]
	particleMap *ecs.Map[components.Particle]
	historyMap  *ecs.Map[components.History]
	threshold   float64
}

// NewPositionSystem creates a position system. threshold is the minimum
// distance a committed position must keep from the recent history.
func NewPositionSystem(w *ecs.World, space Space, threshold float64) *PositionSystem {
	return &PositionSystem{
		space:       space,
		posMap:      ecs.NewMap[components.Position](w),
		velMap:      ecs.NewMap[components.Velocity](w),
		particleMap: ecs.NewMap[components.Particle](w),
		historyMap:  ecs.NewMap[components.History](w),
		threshold:   threshold,
	}
}

// Apply moves e by its velocity and reports whether it moved.
// A rejected move leaves the position unchanged and zeroes the velocity.
// Apply writes only e's own components.
func (s *PositionSystem) Apply(e ecs.Entity) bool {
	p := s.particleMap.Get(e)
	if p.Kind != components.KindSeeker {
		return false
	}

	pos := s.posMap.Get(e)
	vel := s.velMap.Get(e)
	hist := s.historyMap.Get(e)

	candidate := s.space.Wrap(r2.Add(pos.Vec(), vel.Vec()))
	if hist.WouldRepeat(candidate, s.threshold, s.space) {
		*vel = components.Velocity{}
		p.Blocked = true
		return false
	}

	*pos = components.Position(candidate)
	hist.Record(candidate)
	p.Blocked = false
	return true
}
