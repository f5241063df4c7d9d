package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rand is the driver-supplied source of uniform reals in [0,1).
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Space is a toroidal 2D domain: the left edge touches the right edge and
// the top edge touches the bottom one.
type Space struct {
	Width, Height float64
}

// NewSpace creates a toroidal space of the given extent.
func NewSpace(width, height float64) (Space, error) {
	if !(width > 0) || !(height > 0) {
		return Space{}, fmt.Errorf("space extent must be positive, got %gx%g", width, height)
	}
	return Space{Width: width, Height: height}, nil
}

// Distance returns the shortest distance between two points under wraparound.
func (s Space) Distance(a, b r2.Vec) float64 {
	dx := math.Abs(a.X - b.X)
	dy := math.Abs(a.Y - b.Y)
	return math.Hypot(math.Min(dx, s.Width-dx), math.Min(dy, s.Height-dy))
}

// Displacement returns the shortest-path vector from one point to another.
func (s Space) Displacement(from, to r2.Vec) r2.Vec {
	dx, dy := ToroidalDelta(from.X, from.Y, to.X, to.Y, s.Width, s.Height)
	return r2.Vec{X: dx, Y: dy}
}

// Wrap maps p into [0,Width)x[0,Height).
func (s Space) Wrap(p r2.Vec) r2.Vec {
	return r2.Vec{X: mod(p.X, s.Width), Y: mod(p.Y, s.Height)}
}

// Contains reports whether p is in canonical range.
func (s Space) Contains(p r2.Vec) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// RandomPoint returns a uniformly distributed point of the domain.
func (s Space) RandomPoint(rng Rand) r2.Vec {
	return s.Wrap(r2.Vec{X: rng.Float64() * s.Width, Y: rng.Float64() * s.Height})
}
