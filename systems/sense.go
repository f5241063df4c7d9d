package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/chemotaxis/components"
)

// SenseSystem runs the first phase of a tick: every seeker records the
// emitters inside its influence radius and its perceived influence level.
// Emitters are static sources and have nothing to sense.
type SenseSystem struct {
	grid        *SpatialGrid
	posMap      *ecs.Map[components.Position]
	particleMap *ecs.Map[components.Particle]
	sensorMap   *ecs.Map[components.Sensor]

	radius    float64 // influence radius
	nearField float64 // distance floor for the influence level
}

// NewSenseSystem creates a sense system over the given world and grid.
func NewSenseSystem(w *ecs.World, grid *SpatialGrid, influenceRadius, particleRadius float64) *SenseSystem {
	return &SenseSystem{
		grid:        grid,
		posMap:      ecs.NewMap[components.Position](w),
		particleMap: ecs.NewMap[components.Particle](w),
		sensorMap:   ecs.NewMap[components.Sensor](w),
		radius:      influenceRadius,
		nearField:   particleRadius,
	}
}

// Sense updates e's Sensor and, for seekers, its perceived Intensity.
// scratch is a reusable neighbor buffer and is returned for reuse.
// It only reads positions, so it is safe to run concurrently for
// different entities.
func (s *SenseSystem) Sense(e ecs.Entity, scratch []Neighbor) []Neighbor {
	p := s.particleMap.Get(e)
	if p.Kind != components.KindSeeker {
		return scratch
	}

	pos := s.posMap.Get(e)
	sensor := s.sensorMap.Get(e)
	sensor.Sources = sensor.Sources[:0]

	var level float64
	scratch = s.grid.QueryRadiusInto(scratch[:0], pos.X, pos.Y, s.radius, e, s.posMap)
	for _, n := range scratch {
		other := s.particleMap.Get(n.E)
		if other.Kind != components.KindEmitter {
			continue
		}
		sensor.Sources = append(sensor.Sources, components.Source{
			Pos:       *s.posMap.Get(n.E),
			Intensity: other.Intensity,
		})
		d := math.Max(math.Sqrt(n.DistSq), s.nearField)
		if d > 0 {
			level += math.Abs(other.Intensity) / d
		} else {
			level += math.Abs(other.Intensity)
		}
	}
	p.Intensity = level
	return scratch
}
