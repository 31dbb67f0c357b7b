package world

import "github.com/Garsondee/Ship-Sense/internal/geom"

// DefaultFenceRadius is the invisible fence radius of a system with no
// explicit value.
const DefaultFenceRadius = 10000.

// System is a star system: a node on the hyperspace graph with stellar
// objects inside it.
type System struct {
	Name       string
	Position   geom.Point // map position, used for jump-drive range
	Government *Government
	Links      []*System
	Objects    []*StellarObject

	FenceRadius       float64
	DepartureDistance float64
}

// NewSystem returns a system with the default fence.
func NewSystem(name string, pos geom.Point) *System {
	return &System{Name: name, Position: pos, FenceRadius: DefaultFenceRadius}
}

// Link connects two systems by hyperlane.
func Link(a, b *System) {
	if !a.IsLinked(b) {
		a.Links = append(a.Links, b)
	}
	if !b.IsLinked(a) {
		b.Links = append(b.Links, a)
	}
}

// IsLinked reports a hyperlane from s to o.
func (s *System) IsLinked(o *System) bool {
	if s == nil {
		return false
	}
	for _, l := range s.Links {
		if l == o {
			return true
		}
	}
	return false
}

// InvisibleFenceRadius is the distance from the center beyond which
// constrained ships stop chasing.
func (s *System) InvisibleFenceRadius() float64 {
	if s == nil || s.FenceRadius <= 0 {
		return DefaultFenceRadius
	}
	return s.FenceRadius
}

// JumpDepartureDistance is the minimum distance from the center for jumping.
func (s *System) JumpDepartureDistance() float64 {
	if s == nil {
		return 0
	}
	return s.DepartureDistance
}

// Landables returns the objects ship may land on.
func (s *System) Landables(ship *Ship) []*StellarObject {
	var out []*StellarObject
	for _, o := range s.Objects {
		if o.CanLand(ship) {
			out = append(out, o)
		}
	}
	return out
}

// HasFuelFor reports a landable planet that sells fuel to ship.
func (s *System) HasFuelFor(ship *Ship) bool {
	if s == nil {
		return false
	}
	for _, o := range s.Objects {
		if o.CanLand(ship) && o.Planet.Fuel {
			return true
		}
	}
	return false
}

// StellarObject is a star, planet, station or wormhole at a fixed position.
type StellarObject struct {
	Name     string
	Position geom.Point
	Radius   float64
	Planet   *Planet // nil for stars and other scenery
}

// IsStar reports an object with no landing surface.
func (o *StellarObject) IsStar() bool { return o.Planet == nil }

// CanLand reports whether ship may land here.
func (o *StellarObject) CanLand(ship *Ship) bool {
	if o == nil || o.Planet == nil {
		return false
	}
	return o.Planet.CanLand(ship)
}

// Planet is the landable part of a stellar object.
type Planet struct {
	Name      string
	Spaceport bool
	Fuel      bool
	Inhabited bool
	Wormhole  *Wormhole

	refuses map[*Government]bool
}

// Refuse bars a government from landing.
func (p *Planet) Refuse(g *Government) {
	if p.refuses == nil {
		p.refuses = map[*Government]bool{}
	}
	p.refuses[g] = true
}

// CanLand reports whether the ship's government is welcome and, for a
// wormhole, whether the ship carries the keys.
func (p *Planet) CanLand(ship *Ship) bool {
	if ship == nil {
		return true
	}
	if p.refuses[ship.Government] {
		return false
	}
	if p.Wormhole != nil {
		for _, k := range p.Wormhole.Keys {
			if ship.Attributes.Get(k) <= 0 {
				return false
			}
		}
	}
	return true
}

// IsWormhole reports a planet that teleports ships.
func (p *Planet) IsWormhole() bool { return p.Wormhole != nil }

// Wormhole maps each origin system to the system a ship arrives in.
type Wormhole struct {
	Links map[*System]*System
	Keys  []string // attribute names required to pass
}

// Destination returns where a ship entering from sys arrives.
func (w *Wormhole) Destination(sys *System) *System {
	if w == nil {
		return nil
	}
	return w.Links[sys]
}
