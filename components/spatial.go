package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents a particle's authoritative world position.
// It is always kept inside [0,width)x[0,height).
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec { return r2.Vec(p) }

// Velocity represents a particle's displacement per tick.
type Velocity struct {
	X, Y float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() r2.Vec { return r2.Vec(v) }
