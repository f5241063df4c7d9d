// Package components defines ECS components for the simulation.
package components

// Kind is the closed set of particle variants.
type Kind uint8

const (
	KindEmitter Kind = iota // Stationary radiation source
	KindSeeker              // Mobile particle reacting to emitters
)

// Drive records which rule produced a seeker's velocity on the last tick.
type Drive uint8

const (
	DriveNone     Drive = iota // Not decided yet, or an emitter
	DriveEmitter               // Pulled by sensed emitters
	DriveCohesion              // Pulled only by exposed seekers within the joining radius
	DriveWander                // Nothing in range, random movement
)

// Particle bundles identity and per-kind parameters.
type Particle struct {
	ID           string  // Unique within its kind
	Kind         Kind
	Intensity    float64 // Emitter: emission intensity. Seeker: perceived influence, > 0 when exposed
	ResponseRate float64 // Seeker only: displacement per unit sensed force
	Drive        Drive   // Seeker only: rule behind the current velocity
	Blocked      bool    // Seeker only: last move rejected by the movement history
}

// Source is an emitter seen during the sense phase.
type Source struct {
	Pos       Position
	Intensity float64
}

// Sensor holds what a seeker perceived during the current tick's sense phase.
// Sources is reused across ticks to avoid allocations.
type Sensor struct {
	Sources []Source
}

// Exposed reports whether any emitter was in range this tick.
func (s *Sensor) Exposed() bool {
	return len(s.Sources) > 0
}
