package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// minForceDistance is the separation below which two points count as
// coincident. 1/d would overflow well before d reaches zero.
const minForceDistance = 1e-9

// CapToMaxVelocity limits each component of v to maxComponent while keeping
// the direction: the larger-magnitude axis becomes exactly maxComponent and
// the other is scaled by the same factor.
func CapToMaxVelocity(v r2.Vec, maxComponent float64) r2.Vec {
	ax, ay := math.Abs(v.X), math.Abs(v.Y)
	if ax <= maxComponent && ay <= maxComponent {
		return v
	}

	sx, sy := 1.0, 1.0
	if v.X < 0 {
		sx = -1
	}
	if v.Y < 0 {
		sy = -1
	}

	if ay >= ax {
		return r2.Vec{X: sx * maxComponent * (ax / ay), Y: sy * maxComponent}
	}
	return r2.Vec{X: sx * maxComponent, Y: sy * maxComponent * (ay / ax)}
}

// DisplacementToward returns the pull exerted on self by other. Its magnitude
// is |multiplier|/d for toroidal distance d and it points along the shortest
// path toward other, or away from it for a negative multiplier. Coincident
// points yield a zero vector.
func DisplacementToward(space Space, self, other r2.Vec, multiplier float64) r2.Vec {
	d := space.Distance(self, other)
	if d < minForceDistance {
		return r2.Vec{}
	}
	force := multiplier / d
	delta := space.Displacement(self, other)
	return r2.Scale(force/d, delta)
}

// RandomMovement maps two uniform draws in [0,1) to a displacement spanning
// the whole domain extent on each axis, centered on zero, then caps it.
func RandomMovement(space Space, u [2]float64, maxComponent float64) r2.Vec {
	v := r2.Vec{
		X: u[0]*space.Width - space.Width*0.5,
		Y: u[1]*space.Height - space.Height*0.5,
	}
	return CapToMaxVelocity(v, maxComponent)
}
