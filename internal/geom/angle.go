package geom

import "math"

// Angle is a fixed-point heading. The full circle spans the uint32 range, so
// sums and differences wrap without normalisation. Zero points toward -Y and
// angles grow clockwise.
type Angle uint32

const (
	lutBits  = 16
	lutSize  = 1 << lutBits
	lutShift = 32 - lutBits

	stepsPerDegree = float64(1<<32) / 360
)

// unitLUT maps the top lutBits of an Angle to its unit vector.
var unitLUT [lutSize]Point

func init() {
	for i := 0; i < lutSize; i++ {
		rad := 2 * math.Pi * float64(i) / lutSize
		unitLUT[i] = Point{math.Sin(rad), -math.Cos(rad)}
	}
}

// Degrees builds an Angle from degrees; any real value is accepted.
func Degrees(deg float64) Angle {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	return Angle(uint32(int64(math.Round(deg * stepsPerDegree))))
}

// AngleOf returns the heading of vector v. The zero vector has angle 0.
func AngleOf(v Point) Angle {
	if v.IsZero() {
		return 0
	}
	return Degrees(math.Atan2(v.X, -v.Y) * 180 / math.Pi)
}

// Degrees returns the angle in (-180, 180].
func (a Angle) Degrees() float64 {
	d := float64(int32(a)) / stepsPerDegree
	if d == -180 {
		return 180
	}
	return d
}

// Unit returns the unit vector for this heading from the lookup table.
func (a Angle) Unit() Point { return unitLUT[uint32(a)>>lutShift] }

// Rotate rotates p clockwise by a.
func (a Angle) Rotate(p Point) Point {
	u := a.Unit()
	return Point{-u.Y*p.X - u.X*p.Y, -u.Y*p.Y + u.X*p.X}
}

// Add returns a + b, wrapped.
func (a Angle) Add(b Angle) Angle { return a + b }

// AddDegrees offsets a by deg degrees.
func (a Angle) AddDegrees(deg float64) Angle { return a + Degrees(deg) }

// Delta returns the signed shortest rotation from a to b in degrees.
func (a Angle) Delta(b Angle) float64 { return (b - a).Degrees() }

// IsInRange reports whether a lies on the clockwise arc from lo to hi.
func (a Angle) IsInRange(lo, hi Angle) bool {
	return uint32(a-lo) <= uint32(hi-lo)
}
