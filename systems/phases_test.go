package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/chemotaxis/components"
)

type phaseWorld struct {
	w        *ecs.World
	space    Space
	grid     *SpatialGrid
	entities []ecs.Entity
	posMap   *ecs.Map[components.Position]
	velMap   *ecs.Map[components.Velocity]
	partMap  *ecs.Map[components.Particle]
	histMap  *ecs.Map[components.History]
}

type placed struct {
	kind      components.Kind
	at        r2.Vec
	intensity float64
}

func newPhaseWorld(t *testing.T, cellSize float64, particles ...placed) *phaseWorld {
	t.Helper()
	space := mustSpace(t, 7, 7)
	w := ecs.NewWorld()
	builder := ecs.NewMap5[
		components.Position,
		components.Velocity,
		components.Particle,
		components.Sensor,
		components.History,
	](w)

	pw := &phaseWorld{
		w:       w,
		space:   space,
		grid:    NewSpatialGrid(space.Width, space.Height, cellSize),
		posMap:  ecs.NewMap[components.Position](w),
		velMap:  ecs.NewMap[components.Velocity](w),
		partMap: ecs.NewMap[components.Particle](w),
		histMap: ecs.NewMap[components.History](w),
	}
	for _, p := range particles {
		pos := components.Position(p.at)
		vel := components.Velocity{}
		part := components.Particle{Kind: p.kind, Intensity: p.intensity, ResponseRate: 1}
		sensor := components.Sensor{}
		hist := components.NewHistory(3)
		if p.kind == components.KindSeeker {
			hist.Record(p.at)
		}
		e := builder.NewEntity(&pos, &vel, &part, &sensor, &hist)
		pw.entities = append(pw.entities, e)
		pw.grid.Insert(e, pos.X, pos.Y)
	}
	return pw
}

func TestSenseRecordsEmittersInRange(t *testing.T) {
	pw := newPhaseWorld(t, 0.5,
		placed{kind: components.KindEmitter, at: r2.Vec{X: 1, Y: 1}, intensity: 4},
		placed{kind: components.KindSeeker, at: r2.Vec{X: 1.2, Y: 1}},
		placed{kind: components.KindSeeker, at: r2.Vec{X: 3, Y: 1}},
		placed{kind: components.KindEmitter, at: r2.Vec{X: 6.9, Y: 1}, intensity: -2}, // 1.3 away across the edge
	)
	sense := NewSenseSystem(pw.w, pw.grid, 0.5, 0.06)

	var scratch []Neighbor
	for _, e := range pw.entities {
		scratch = sense.Sense(e, scratch)
	}

	sensorMap := ecs.NewMap[components.Sensor](pw.w)
	near := sensorMap.Get(pw.entities[1])
	require.Len(t, near.Sources, 1)
	assert.Equal(t, 4.0, near.Sources[0].Intensity)
	assert.InDelta(t, 20.0, pw.partMap.Get(pw.entities[1]).Intensity, 1e-9)

	far := sensorMap.Get(pw.entities[2])
	assert.False(t, far.Exposed())
	assert.Zero(t, pw.partMap.Get(pw.entities[2]).Intensity)

	// Emitters keep their own intensity
	assert.Equal(t, 4.0, pw.partMap.Get(pw.entities[0]).Intensity)
	assert.False(t, sensorMap.Get(pw.entities[0]).Exposed())
}

func TestSenseUsesNearFieldFloor(t *testing.T) {
	pw := newPhaseWorld(t, 0.5,
		placed{kind: components.KindEmitter, at: r2.Vec{X: 1, Y: 1}, intensity: 4},
		placed{kind: components.KindSeeker, at: r2.Vec{X: 1.01, Y: 1}},
	)
	sense := NewSenseSystem(pw.w, pw.grid, 0.5, 0.06)
	sense.Sense(pw.entities[1], nil)

	// 4 / max(0.01, 0.06)
	assert.InDelta(t, 4/0.06, pw.partMap.Get(pw.entities[1]).Intensity, 1e-9)
}

func TestDecideCohesionTowardExposedSeeker(t *testing.T) {
	pw := newPhaseWorld(t, 0.5,
		placed{kind: components.KindEmitter, at: r2.Vec{X: 1, Y: 1}, intensity: 4},
		placed{kind: components.KindSeeker, at: r2.Vec{X: 1.2, Y: 1}}, // exposed
		placed{kind: components.KindSeeker, at: r2.Vec{X: 3, Y: 1}},   // outside influence
	)
	sense := NewSenseSystem(pw.w, pw.grid, 0.5, 0.06)
	velocity := NewVelocitySystem(pw.w, pw.space, pw.grid, VelocityParams{
		MaxVelocity:   0.06,
		JoiningRadius: 3.5,
		Cohesion:      1,
	})

	var scratch []Neighbor
	for _, e := range pw.entities {
		scratch = sense.Sense(e, scratch)
	}
	for _, e := range pw.entities {
		scratch = velocity.Decide(e, [2]float64{0.9, 0.9}, scratch)
	}

	assert.Equal(t, components.DriveNone, pw.partMap.Get(pw.entities[0]).Drive)
	assert.Equal(t, components.Velocity{}, *pw.velMap.Get(pw.entities[0]))

	assert.Equal(t, components.DriveEmitter, pw.partMap.Get(pw.entities[1]).Drive)
	assert.InDelta(t, -0.06, pw.velMap.Get(pw.entities[1]).X, 1e-12)

	follower := pw.partMap.Get(pw.entities[2])
	assert.Equal(t, components.DriveCohesion, follower.Drive)
	vel := pw.velMap.Get(pw.entities[2])
	assert.InDelta(t, -0.06, vel.X, 1e-12)
	assert.InDelta(t, 0, vel.Y, 1e-12)
}

func TestDecideWithoutCohesionWanders(t *testing.T) {
	pw := newPhaseWorld(t, 0.5,
		placed{kind: components.KindSeeker, at: r2.Vec{X: 3, Y: 1}},
		placed{kind: components.KindSeeker, at: r2.Vec{X: 3.1, Y: 1}},
	)
	velocity := NewVelocitySystem(pw.w, pw.space, pw.grid, VelocityParams{MaxVelocity: 0.06, JoiningRadius: 3.5})

	velocity.Decide(pw.entities[0], [2]float64{1, 0.5}, nil)

	assert.Equal(t, components.DriveWander, pw.partMap.Get(pw.entities[0]).Drive)
	// u = (1, 0.5) maps to (3.5, 0) before the cap
	assert.Equal(t, components.Velocity{X: 0.06, Y: 0}, *pw.velMap.Get(pw.entities[0]))
}

func TestApplyCommitsAndRecords(t *testing.T) {
	pw := newPhaseWorld(t, 0.5,
		placed{kind: components.KindEmitter, at: r2.Vec{X: 1, Y: 1}, intensity: 4},
		placed{kind: components.KindSeeker, at: r2.Vec{X: 6.98, Y: 1}},
	)
	position := NewPositionSystem(pw.w, pw.space, 0.03)

	*pw.velMap.Get(pw.entities[0]) = components.Velocity{X: 0.05}
	assert.False(t, position.Apply(pw.entities[0]), "emitters never move")
	assert.Equal(t, components.Position{X: 1, Y: 1}, *pw.posMap.Get(pw.entities[0]))

	seeker := pw.entities[1]
	*pw.velMap.Get(seeker) = components.Velocity{X: 0.06}
	require.True(t, position.Apply(seeker))

	pos := pw.posMap.Get(seeker)
	assert.InDelta(t, 0.04, pos.X, 1e-9, "move wraps across the right edge")
	assert.False(t, pw.partMap.Get(seeker).Blocked)

	hist := pw.histMap.Get(seeker).Positions()
	require.Len(t, hist, 2)
	assert.Equal(t, pos.Vec(), hist[1])

	// Going straight back is rejected
	*pw.velMap.Get(seeker) = components.Velocity{X: -0.06}
	assert.False(t, position.Apply(seeker))
	assert.True(t, pw.partMap.Get(seeker).Blocked)
	assert.Equal(t, components.Velocity{}, *pw.velMap.Get(seeker))
	assert.InDelta(t, 0.04, pw.posMap.Get(seeker).X, 1e-9)
}

func TestSenseFindsEveryEmitterInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	space := mustSpace(t, 7, 7)

	var particles []placed
	for i := 0; i < 100; i++ {
		particles = append(particles, placed{kind: components.KindEmitter, at: space.RandomPoint(rng), intensity: 4})
	}
	for i := 0; i < 300; i++ {
		particles = append(particles, placed{kind: components.KindSeeker, at: space.RandomPoint(rng)})
	}
	pw := newPhaseWorld(t, 0.5, particles...)

	const radius = 2.1
	sense := NewSenseSystem(pw.w, pw.grid, radius, 0.06)
	sensorMap := ecs.NewMap[components.Sensor](pw.w)

	var scratch []Neighbor
	for i, e := range pw.entities {
		scratch = sense.Sense(e, scratch)
		if particles[i].kind != components.KindSeeker {
			continue
		}

		want := 0
		for _, other := range particles[:100] {
			if space.Distance(particles[i].at, other.at) <= radius {
				want++
			}
		}
		require.Len(t, sensorMap.Get(e).Sources, want, "seeker %d", i)
	}
}
