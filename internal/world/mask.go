package world

import (
	"math"

	"github.com/Garsondee/Ship-Sense/internal/geom"
)

// Mask is a collision outline centered on the ship. Collide returns the
// fraction along the segment start..start+travel at which it first touches
// the outline, or 1 when it misses.
type Mask interface {
	Collide(start, travel geom.Point, facing geom.Angle) float64
}

// CircleMask is a round outline of the given radius.
type CircleMask struct {
	Radius float64
}

func (m CircleMask) Collide(start, travel geom.Point, _ geom.Angle) float64 {
	r2 := m.Radius * m.Radius
	if start.LengthSquared() <= r2 {
		return 0
	}
	a := travel.LengthSquared()
	if a == 0 {
		return 1
	}
	b := 2 * start.Dot(travel)
	c := start.LengthSquared() - r2
	disc := b*b - 4*a*c
	if disc < 0 {
		return 1
	}
	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 || t >= 1 {
		return 1
	}
	return t
}
