// Package game drives the simulation: it owns the particle arena and runs the
// sense, decide and apply phases of every tick in order.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/chemotaxis/components"
	"github.com/pthm-cable/chemotaxis/config"
	"github.com/pthm-cable/chemotaxis/systems"
	"github.com/pthm-cable/chemotaxis/telemetry"
)

// Options configures a new simulation.
type Options struct {
	Config    *config.Config     // nil = config.Cfg()
	Seed      int64              // RNG seed
	Layout    []config.Placement // explicit placements; empty = random population
	Workers   int                // overrides sim.workers when non-zero; < 0 = GOMAXPROCS
	LogStats  bool               // periodic stats and perf log lines
	OutputDir string             // positions trace and config copy; empty = off
	Logger    *slog.Logger       // nil = slog.Default()
}

// ParticleState is a read-only view of one particle.
type ParticleState struct {
	Index     int // stable position in the arena
	ID        string
	Kind      components.Kind
	Position  r2.Vec
	Velocity  r2.Vec
	Drive     components.Drive
	Intensity float64
	Blocked   bool
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	world  *ecs.World
	rng    *rand.Rand
	runID  string
	logger *slog.Logger

	// Entity mapper for spawning
	particleMapper *ecs.Map5[
		components.Position,
		components.Velocity,
		components.Particle,
		components.Sensor,
		components.History,
	]
	posFilter *ecs.Filter1[components.Position]

	// Individual component mappers for lookups
	posMap      *ecs.Map[components.Position]
	velMap      *ecs.Map[components.Velocity]
	particleMap *ecs.Map[components.Particle]
	sensorMap   *ecs.Map[components.Sensor]

	// Arena in spawn order; the index is the particle's stable id
	entities []ecs.Entity
	draws    [][2]float64

	// Geometry and phases
	space    systems.Space
	grid     *systems.SpatialGrid
	sense    *systems.SenseSystem
	velocity *systems.VelocitySystem
	position *systems.PositionSystem

	parallel *parallelState

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logStats  bool

	// State
	tick       int32
	numEmitter int
	numSeeker  int
	lastMoved  int
}

// New creates a simulation, spawns its population and records tick 0.
// Invalid configuration or layout is rejected before anything runs.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	space, err := systems.NewSpace(cfg.World.Width, cfg.World.Height)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()

	workers := cfg.Sim.Workers
	if opts.Workers != 0 {
		workers = opts.Workers
	}

	world := ecs.NewWorld()
	grid := systems.NewSpatialGrid(space.Width, space.Height, cfg.Derived.GridCellSize)

	g := &Game{
		cfg:    cfg,
		world:  world,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		runID:  runID,
		logger: logger.With("run", runID),
		particleMapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.Particle,
			components.Sensor,
			components.History,
		](world),
		posFilter:   ecs.NewFilter1[components.Position](world),
		posMap:      ecs.NewMap[components.Position](world),
		velMap:      ecs.NewMap[components.Velocity](world),
		particleMap: ecs.NewMap[components.Particle](world),
		sensorMap:   ecs.NewMap[components.Sensor](world),
		space:       space,
		grid:        grid,
		sense:       systems.NewSenseSystem(world, grid, cfg.Derived.InfluenceRadius, cfg.Particle.Radius),
		velocity: systems.NewVelocitySystem(world, space, grid, systems.VelocityParams{
			MaxVelocity:   cfg.Motion.MaxVelocity,
			JoiningRadius: cfg.Derived.JoiningRadius,
			Cohesion:      cfg.Seeker.Cohesion,
		}),
		position:  systems.NewPositionSystem(world, space, cfg.Derived.RepeatThreshold),
		parallel:  newParallelState(workers),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.LogInterval),
		logStats:  opts.LogStats,
	}

	if len(opts.Layout) > 0 {
		err = g.spawnFromLayout(opts.Layout)
	} else {
		g.spawnPopulation()
	}
	if err != nil {
		return nil, err
	}
	g.draws = make([][2]float64, len(g.entities))

	g.output, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.output.WriteConfig(cfg); err != nil {
		g.output.Close()
		return nil, err
	}

	g.logger.Info("simulation created",
		"seed", opts.Seed,
		"emitters", g.numEmitter,
		"seekers", g.numSeeker,
		"workers", g.parallel.numWorkers,
		"influence_radius", cfg.Derived.InfluenceRadius,
		"repeat_threshold", cfg.Derived.RepeatThreshold,
		"output_dir", g.output.Dir(),
	)

	if cfg.Telemetry.TraceInterval > 0 {
		g.writeTrace()
	}
	return g, nil
}

// Step advances the simulation by one tick. Every particle finishes a phase
// before any particle starts the next one.
func (g *Game) Step() {
	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseSpatialGrid)
	g.updateSpatialGrid()

	g.perf.StartPhase(telemetry.PhaseSense)
	g.runPhase(phaseSense)

	g.perf.StartPhase(telemetry.PhaseDecide)
	g.drawWander()
	g.runPhase(phaseDecide)

	g.perf.StartPhase(telemetry.PhaseApply)
	g.lastMoved = g.runPhase(phaseApply)

	g.tick++

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.recordTelemetry()

	g.perf.EndTick()
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// RunID returns the unique id of this run, attached to every log line.
func (g *Game) RunID() string {
	return g.runID
}

// Particles returns the state of every particle in arena order.
func (g *Game) Particles() []ParticleState {
	out := make([]ParticleState, len(g.entities))
	for i, e := range g.entities {
		p := g.particleMap.Get(e)
		out[i] = ParticleState{
			Index:     i,
			ID:        p.ID,
			Kind:      p.Kind,
			Position:  g.posMap.Get(e).Vec(),
			Velocity:  g.velMap.Get(e).Vec(),
			Drive:     p.Drive,
			Intensity: p.Intensity,
			Blocked:   p.Blocked,
		}
	}
	return out
}

// Close stops the worker pool and flushes output files.
func (g *Game) Close() error {
	g.stopParallelWorkers()
	if err := g.output.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}
