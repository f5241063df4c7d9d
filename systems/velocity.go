package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/chemotaxis/components"
)

// VelocityParams configures the decide-velocity phase.
type VelocityParams struct {
	MaxVelocity   float64 // per-axis cap
	JoiningRadius float64
	Cohesion      float64 // 0 disables the pull toward exposed seekers
}

// VelocitySystem runs the second phase of a tick: every seeker turns what it
// sensed into a capped velocity. Emitters never move.
type VelocitySystem struct {
	space       Space
	grid        *SpatialGrid
	posMap      *ecs.Map[components.Position]
	velMap      *ecs.Map[components.Velocity]
	particleMap *ecs.Map[components.Particle]
	sensorMap   *ecs.Map[components.Sensor]
	params      VelocityParams
}

// NewVelocitySystem creates a velocity system.
func NewVelocitySystem(w *ecs.World, space Space, grid *SpatialGrid, params VelocityParams) *VelocitySystem {
	return &VelocitySystem{
		space:       space,
		grid:        grid,
		posMap:      ecs.NewMap[components.Position](w),
		velMap:      ecs.NewMap[components.Velocity](w),
		particleMap: ecs.NewMap[components.Particle](w),
		sensorMap:   ecs.NewMap[components.Sensor](w),
		params:      params,
	}
}

// Decide sets e's velocity for this tick. draw holds two uniforms reserved
// for e, used only when nothing pulls the seeker. Sensors of all particles
// must be complete before any Decide call; Decide writes only e's own
// Velocity and Drive.
func (s *VelocitySystem) Decide(e ecs.Entity, draw [2]float64, scratch []Neighbor) []Neighbor {
	p := s.particleMap.Get(e)
	vel := s.velMap.Get(e)

	switch p.Kind {
	case components.KindEmitter:
		*vel = components.Velocity{}
		p.Drive = components.DriveNone
		return scratch

	case components.KindSeeker:
		self := s.posMap.Get(e).Vec()
		sensor := s.sensorMap.Get(e)

		var v r2.Vec
		drive := components.DriveNone
		for _, src := range sensor.Sources {
			v = r2.Add(v, DisplacementToward(s.space, self, src.Pos.Vec(), p.ResponseRate*src.Intensity))
			drive = components.DriveEmitter
		}

		if s.params.Cohesion > 0 {
			var pulled bool
			v, pulled, scratch = s.cohesion(e, self, p.ResponseRate, v, scratch)
			if pulled && drive == components.DriveNone {
				drive = components.DriveCohesion
			}
		}

		if drive == components.DriveNone {
			v = RandomMovement(s.space, draw, s.params.MaxVelocity)
			drive = components.DriveWander
		}

		*vel = components.Velocity(CapToMaxVelocity(v, s.params.MaxVelocity))
		p.Drive = drive
	}
	return scratch
}

// cohesion adds the pull of every exposed seeker within the joining radius.
func (s *VelocitySystem) cohesion(e ecs.Entity, self r2.Vec, rate float64, v r2.Vec, scratch []Neighbor) (r2.Vec, bool, []Neighbor) {
	var pulled bool
	scratch = s.grid.QueryRadiusInto(scratch[:0], self.X, self.Y, s.params.JoiningRadius, e, s.posMap)
	for _, n := range scratch {
		if s.particleMap.Get(n.E).Kind != components.KindSeeker {
			continue
		}
		if !s.sensorMap.Get(n.E).Exposed() {
			continue
		}
		peer := s.posMap.Get(n.E).Vec()
		v = r2.Add(v, DisplacementToward(s.space, self, peer, rate*s.params.Cohesion))
		pulled = true
	}
	return v, pulled, scratch
}
