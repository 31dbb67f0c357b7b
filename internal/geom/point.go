// Package geom holds the 2D vector, angle, and intercept primitives shared by
// the world model and the ship controller.
package geom

import "math"

// Point is a 2D vector in world units. Y grows downward, matching screen space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(o Point) Point     { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point     { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Mul(s float64) Point   { return Point{p.X * s, p.Y * s} }
func (p Point) Neg() Point            { return Point{-p.X, -p.Y} }
func (p Point) Dot(o Point) float64   { return p.X*o.X + p.Y*o.Y }
func (p Point) Cross(o Point) float64 { return p.X*o.Y - p.Y*o.X }

// Length returns the Euclidean norm.
func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }

// LengthSquared avoids the square root for comparisons.
func (p Point) LengthSquared() float64 { return p.X*p.X + p.Y*p.Y }

// Distance returns |p - o|.
func (p Point) Distance(o Point) float64 { return p.Sub(o).Length() }

// DistanceSquared returns |p - o|².
func (p Point) DistanceSquared(o Point) float64 { return p.Sub(o).LengthSquared() }

// Unit returns p scaled to length 1. The zero vector maps to (0, -1), the
// direction of a zero angle, so callers never divide by zero.
func (p Point) Unit() Point {
	l := p.Length()
	if l == 0 {
		return Point{0, -1}
	}
	return Point{p.X / l, p.Y / l}
}

// IsZero reports whether both components are exactly zero.
func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// IsFinite reports whether neither component is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RendezvousTime returns the smallest non-negative t at which a projectile
// leaving the origin at speed vp meets a target at offset p moving with
// velocity v, i.e. the root of |p + v·t| = vp·t. It returns NaN when the
// target cannot be caught.
func RendezvousTime(p, v Point, vp float64) float64 {
	a := v.Dot(v) - vp*vp
	b := 2 * p.Dot(v)
	c := p.Dot(p)

	// Equal speeds degenerate into a linear equation.
	if math.Abs(a) < 1e-9 {
		if b >= 0 {
			if c == 0 {
				return 0
			}
			return math.NaN()
		}
		return -c / b
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return math.NaN()
	}
	disc = math.Sqrt(disc)
	r1 := (-b + disc) / (2 * a)
	r2 := (-b - disc) / (2 * a)
	switch {
	case r1 >= 0 && r2 >= 0:
		return math.Min(r1, r2)
	case r1 >= 0 || r2 >= 0:
		return math.Max(r1, r2)
	}
	return math.NaN()
}
