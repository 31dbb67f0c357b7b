// Package orders is the per-ship book of fleet orders the player gives to
// escorts.
package orders

import (
	"strings"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// Type is one order bit.
type Type uint16

const (
	HoldPosition Type = 1 << iota
	HoldActive        // drifted off a held post, returning to it
	MoveTo
	KeepStation
	Gather
	Attack
	FinishOff
	HoldFire
	Mine
	Harvest

	typeEnd
)

const (
	// targetShip orders lose their meaning without their ship.
	targetShip = KeepStation | Gather | FinishOff
	// targetAsteroid orders lose their meaning without their asteroid.
	targetAsteroid = Mine
	// shipOrAsteroid orders aim at either.
	shipOrAsteroid = Attack
	// location orders carry a point and a system.
	location = MoveTo | HoldPosition | HoldActive
)

// holdRadius is how far a ship may stray from a held point.
const holdRadius = 20.

// stoppedSpeed is the speed treated as zero.
const stoppedSpeed = .001

// simultaneous lists, for each order, the bits that survive when it is
// added. Anything else is replaced.
var simultaneous = map[Type]Type{
	HoldPosition: HoldFire,
	HoldActive:   HoldFire,
	MoveTo:       HoldFire,
	KeepStation:  HoldFire,
	Gather:       HoldFire,
	Attack:       0,
	FinishOff:    0,
	HoldFire:     HoldPosition | HoldActive | MoveTo | KeepStation | Gather | Harvest,
	Mine:         0,
	Harvest:      HoldFire,
}

var typeNames = []string{
	"hold position", "hold active", "move to", "keep station", "gather",
	"attack", "finish off", "hold fire", "mine", "harvest",
}

func (t Type) String() string {
	var parts []string
	for i, n := range typeNames {
		if t&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Order is a single order to add to a Set.
type Order struct {
	Type           Type
	TargetShip     *world.Ship
	TargetAsteroid *world.Minable
	TargetPoint    geom.Point
	TargetSystem   *world.System
}

// Set is the order entry of one player-owned ship.
type Set struct {
	types          Type
	TargetShip     *world.Ship
	TargetAsteroid *world.Minable
	TargetPoint    geom.Point
	TargetSystem   *world.System
}

// Restored rebuilds a set from persisted fields. Unknown bits are dropped.
func Restored(t Type, ship *world.Ship, asteroid *world.Minable, point geom.Point, sys *world.System) Set {
	return Set{
		types:          t & (typeEnd - 1),
		TargetShip:     ship,
		TargetAsteroid: asteroid,
		TargetPoint:    point,
		TargetSystem:   sys,
	}
}

// Has reports whether any bit of t is set.
func (s Set) Has(t Type) bool { return s.types&t != 0 }

// Types returns the raw bits.
func (s Set) Types() Type { return s.types }

// IsEmpty reports an entry with no orders left.
func (s Set) IsEmpty() bool { return s.types == 0 }

// Matches reports whether the set already holds exactly this order with the
// same target.
func (s Set) Matches(o Order) bool {
	if !s.Has(o.Type) {
		return false
	}
	switch {
	case o.Type&(targetShip|shipOrAsteroid) != 0 && o.TargetShip != nil:
		return s.TargetShip == o.TargetShip
	case o.Type&(targetAsteroid|shipOrAsteroid) != 0:
		return s.TargetAsteroid == o.TargetAsteroid
	case o.Type&MoveTo != 0:
		return s.TargetPoint == o.TargetPoint && s.TargetSystem == o.TargetSystem
	}
	return true
}

// Add applies a single order with toggle semantics: if the identical order
// is already present it is removed and Add returns true; otherwise
// incompatible bits are replaced and the order is set.
func (s *Set) Add(o Order) bool {
	if s.Matches(o) {
		s.Remove(o.Type)
		return true
	}
	s.Apply(o)
	return false
}

// Apply sets the order unconditionally, replacing incompatible bits.
func (s *Set) Apply(o Order) {
	s.types &= simultaneous[o.Type]
	s.types |= o.Type
	if o.Type == HoldFire {
		return
	}
	s.TargetShip = o.TargetShip
	s.TargetAsteroid = o.TargetAsteroid
	s.TargetPoint = o.TargetPoint
	s.TargetSystem = o.TargetSystem
}

// Remove clears bits and any target that no remaining bit uses.
func (s *Set) Remove(t Type) {
	s.types &^= t
	if !s.Has(targetShip | shipOrAsteroid) {
		s.TargetShip = nil
	}
	if !s.Has(targetAsteroid | shipOrAsteroid) {
		s.TargetAsteroid = nil
	}
	if !s.Has(location) {
		s.TargetPoint = geom.Point{}
		s.TargetSystem = nil
	}
}

// Liveness answers whether weak references are still live this tick.
type Liveness interface {
	ShipAlive(*world.Ship) bool
	AsteroidAlive(*world.Minable) bool
}

// Validate drops targeted bits whose target is gone. A MINE order whose
// asteroid is gone turns into HARVEST when the ship has cargo space. It
// returns true if anything changed.
func (s *Set) Validate(ship *world.Ship, flagshipSystem *world.System, live Liveness) bool {
	before := *s

	if s.Has(targetShip) || (s.Has(shipOrAsteroid) && s.TargetShip != nil) {
		t := s.TargetShip
		valid := t != nil && live.ShipAlive(t) && !t.Destroyed && t.System != nil &&
			t.System == flagshipSystem && (t.IsTargetable() || t.IsYours)
		if !valid {
			s.Remove(targetShip | shipOrAsteroid)
		}
	}

	if s.Has(targetAsteroid) || (s.Has(shipOrAsteroid) && s.TargetShip == nil) {
		a := s.TargetAsteroid
		if a == nil || !a.IsLive() || !live.AsteroidAlive(a) {
			mining := s.Has(Mine)
			s.Remove(targetAsteroid | shipOrAsteroid)
			if mining && ship.Cargo != nil && ship.Cargo.Free() > 0 {
				s.types |= Harvest
			}
		}
	}
	return *s != before
}

// Update advances location orders: arriving and stopping converts MOVE_TO
// or HOLD_ACTIVE into HOLD_POSITION, drifting off converts HOLD_POSITION
// into HOLD_ACTIVE. It returns true if anything changed.
func (s *Set) Update(ship *world.Ship) bool {
	if !s.Has(location) {
		return false
	}
	if s.TargetSystem != nil && ship.System != s.TargetSystem {
		return false
	}
	d := ship.Position.Distance(s.TargetPoint)
	stopped := ship.Velocity.Length() < stoppedSpeed
	switch {
	case s.Has(MoveTo|HoldActive) && d < holdRadius && stopped:
		s.types &^= MoveTo | HoldActive
		s.types |= HoldPosition
		return true
	case s.Has(HoldPosition) && d > holdRadius:
		s.types &^= HoldPosition
		s.types |= HoldActive
		return true
	}
	return false
}
