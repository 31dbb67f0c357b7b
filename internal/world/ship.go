// Package world holds the game entities the ship controller reads and writes:
// ships, governments, systems, asteroids and flotsam. The world layer owns
// these objects; the controller only refers to them.
package world

import (
	"math"

	"github.com/Garsondee/Ship-Sense/internal/formation"
	"github.com/Garsondee/Ship-Sense/internal/geom"
)

// ShipID is the stable identity of a ship across ticks.
type ShipID uint64

// Attributes maps attribute names to values.
type Attributes map[string]float64

// Get returns the named attribute, or 0.
func (a Attributes) Get(name string) float64 { return a[name] }

// Hyperspace drive types, named by their fuel-use ranking.
const (
	DriveNone       = 0
	DriveHyperdrive = 100
	DriveScram      = 150
	DriveJump       = 200
)

const (
	defaultHyperFuel = 100.
	defaultJumpFuel  = 200.
	defaultJumpRange = 100.
	defaultJumpSpeed = .2
)

// Bay is a carrier slot for a fighter or drone.
type Bay struct {
	Category string
	Ship     *Ship
}

// Jettison records cargo dumped this tick; the world turns it into flotsam.
type Jettison struct {
	Commodity string
	Tons      int
}

// Ship is a world entity. The controller writes its commands and a few
// derived flags; everything else is owned by the world layer.
type Ship struct {
	ID          ShipID
	Name        string
	Model       string
	Category    string // "Fighter" and "Drone" ride in bays
	Government  *Government
	Personality Personality
	System      *System // nil while carried in a bay
	Formation   *formation.Pattern

	Position geom.Point
	Velocity geom.Point
	Facing   geom.Angle
	Radius   float64
	Zoom     float64 // 1 in space, below 1 while launching or landing

	// Resources as fractions of capacity.
	Shields float64
	Hull    float64
	Energy  float64
	Fuel    float64
	Heat    float64
	Cloak   float64

	Attributes Attributes
	Hardpoints []*Hardpoint
	Ammo       map[string]int // ammunition outfits by name
	Cargo      *CargoHold
	Bays       []Bay
	Mask       Mask

	Parent         *Ship
	Escorts        []*Ship
	TargetShip     *Ship
	TargetAsteroid *Minable
	TargetFlotsam  *Flotsam
	TargetStellar  *StellarObject
	TargetSystem   *System
	ShipToAssist   *Ship

	IsYours     bool
	IsParked    bool
	DeployOrder bool
	Landing     bool
	Hyperspace  int // ticks of transit remaining
	Disabled    bool
	Overheated  bool
	Ionized     bool
	Destroyed   bool
	Fleeing     bool
	LingerSteps int

	Jettisoned []Jettison

	commands   MovementCommand
	staged     MovementCommand
	fire       FireCommand
	stagedFire FireCommand
}

// NewShip returns a ship in space with full resources.
func NewShip(id ShipID, name string, gov *Government, sys *System) *Ship {
	return &Ship{
		ID:         id,
		Name:       name,
		Government: gov,
		System:     sys,
		Zoom:       1,
		Radius:     20,
		Shields:    1,
		Hull:       1,
		Energy:     1,
		Fuel:       1,
		Attributes: Attributes{},
		Ammo:       map[string]int{},
		Cargo:      NewCargoHold(0, 0),
	}
}

// --- Commands ---

// Commands returns the movement command committed on the previous tick.
func (s *Ship) Commands() MovementCommand { return s.commands }

// FireCommands returns the fire command committed on the previous tick.
func (s *Ship) FireCommands() FireCommand { return s.fire }

// SetCommands stages this tick's movement command.
func (s *Ship) SetCommands(m MovementCommand) { s.staged = m }

// SetFireCommands stages this tick's fire command.
func (s *Ship) SetFireCommands(f FireCommand) { s.stagedFire = f }

// StagedCommands returns the command written this tick, for the physics step.
func (s *Ship) StagedCommands() MovementCommand { return s.staged }

// StagedFireCommands returns the fire command written this tick.
func (s *Ship) StagedFireCommands() FireCommand { return s.stagedFire }

// Commit makes the staged commands visible to other ships. The fire
// buffers swap, so the one committed last tick is reused for staging.
func (s *Ship) Commit() {
	s.commands = s.staged
	s.fire, s.stagedFire = s.stagedFire, s.fire
	s.staged = MovementCommand{}
	s.stagedFire.Clear(0)
}

// --- Kinematics ---

// Mass includes carried cargo.
func (s *Ship) Mass() float64 {
	m := s.Attributes.Get("mass")
	if s.Cargo != nil {
		m += float64(s.Cargo.Used())
	}
	if m <= 0 {
		return 1
	}
	return m
}

// Acceleration is forward thrust over mass.
func (s *Ship) Acceleration() float64 { return s.Attributes.Get("thrust") / s.Mass() }

// ReverseAcceleration is reverse thrust over mass.
func (s *Ship) ReverseAcceleration() float64 {
	return s.Attributes.Get("reverse thrust") / s.Mass()
}

// AfterburnerAcceleration is the extra thrust of an afterburner.
func (s *Ship) AfterburnerAcceleration() float64 {
	return s.Attributes.Get("afterburner thrust") / s.Mass()
}

// TurnRate is in degrees per tick.
func (s *Ship) TurnRate() float64 { return s.Attributes.Get("turn") / s.Mass() }

// Drag is the per-tick velocity loss coefficient.
func (s *Ship) Drag() float64 { return s.Attributes.Get("drag") }

// MaxVelocity is the terminal speed under full thrust.
func (s *Ship) MaxVelocity() float64 {
	drag := s.Drag()
	if drag <= 0 {
		return math.Inf(1)
	}
	return s.Attributes.Get("thrust") / drag
}

// HardpointPosition returns the world position of a mount.
func (s *Ship) HardpointPosition(hp *Hardpoint) geom.Point {
	return s.Position.Add(s.Facing.Rotate(hp.Offset))
}

// CollisionMask returns the mask, defaulting to a circle of the ship radius.
func (s *Ship) CollisionMask() Mask {
	if s.Mask != nil {
		return s.Mask
	}
	return CircleMask{Radius: s.Radius}
}

// --- Condition ---

// Health blends shields and hull by their capacities.
func (s *Ship) Health() float64 {
	sc := s.Attributes.Get("shields")
	hc := s.Attributes.Get("hull")
	if sc+hc <= 0 {
		return s.Hull
	}
	return (s.Shields*sc + s.Hull*hc) / (sc + hc)
}

// IsTargetable reports a ship present in space that can be fought.
func (s *Ship) IsTargetable() bool {
	return s != nil && !s.Destroyed && s.System != nil && s.Zoom >= 1 &&
		s.Hyperspace == 0 && !s.Landing && s.Cloak < 1 && !s.IsParked
}

// IsHyperspacing reports a ship in transit.
func (s *Ship) IsHyperspacing() bool { return s.Hyperspace > 0 }

// IsArmed reports at least one offensive weapon.
func (s *Ship) IsArmed() bool {
	for _, hp := range s.Hardpoints {
		if hp.IsArmed() {
			return true
		}
	}
	return false
}

// Strength estimates combat value for roster sums.
func (s *Ship) Strength() int64 {
	if v := s.Attributes.Get("strength"); v > 0 {
		return int64(v)
	}
	return int64(s.Attributes.Get("cost"))
}

// CanBeCarried reports fighters and drones.
func (s *Ship) CanBeCarried() bool { return s.Category == "Fighter" || s.Category == "Drone" }

// --- Bays ---

// HasBays reports any carrier bay.
func (s *Ship) HasBays() bool { return len(s.Bays) > 0 }

// BaysFree counts empty bays accepting category.
func (s *Ship) BaysFree(category string) int {
	n := 0
	for _, b := range s.Bays {
		if b.Ship == nil && b.Category == category {
			n++
		}
	}
	return n
}

// CanCarry reports whether other fits in a free bay.
func (s *Ship) CanCarry(other *Ship) bool {
	return other != nil && other.CanBeCarried() && s.BaysFree(other.Category) > 0
}

// Carry docks other in a free bay; it leaves space.
func (s *Ship) Carry(other *Ship) bool {
	for i := range s.Bays {
		if s.Bays[i].Ship == nil && s.Bays[i].Category == other.Category {
			s.Bays[i].Ship = other
			other.Parent = s
			other.System = nil
			other.Velocity = geom.Point{}
			return true
		}
	}
	return false
}

// Launch empties every bay whose occupant has a deploy order.
func (s *Ship) Launch() []*Ship {
	var out []*Ship
	for i := range s.Bays {
		c := s.Bays[i].Ship
		if c == nil || !c.DeployOrder {
			continue
		}
		s.Bays[i].Ship = nil
		c.System = s.System
		c.Position = s.Position
		c.Velocity = s.Velocity
		c.Facing = s.Facing
		c.Zoom = 1
		out = append(out, c)
	}
	return out
}

// IsCarrying reports whether other sits in one of s's bays.
func (s *Ship) IsCarrying(other *Ship) bool {
	for _, b := range s.Bays {
		if b.Ship == other {
			return true
		}
	}
	return false
}

// AddEscort attaches e to s.
func (s *Ship) AddEscort(e *Ship) {
	e.Parent = s
	for _, x := range s.Escorts {
		if x == e {
			return
		}
	}
	s.Escorts = append(s.Escorts, e)
}

// RemoveEscort detaches e from s.
func (s *Ship) RemoveEscort(e *Ship) {
	for i, x := range s.Escorts {
		if x == e {
			s.Escorts = append(s.Escorts[:i], s.Escorts[i+1:]...)
			break
		}
	}
	if e.Parent == s {
		e.Parent = nil
	}
}

// --- Jump navigation ---

func (s *Ship) HasHyperdrive() bool { return s.Attributes.Get("hyperdrive") > 0 }
func (s *Ship) HasScramDrive() bool { return s.Attributes.Get("scram drive") > 0 }
func (s *Ship) HasJumpDrive() bool  { return s.Attributes.Get("jump drive") > 0 }

// FuelCapacity is the size of the fuel tank.
func (s *Ship) FuelCapacity() float64 { return s.Attributes.Get("fuel capacity") }

// FuelAmount is the fuel in the tank.
func (s *Ship) FuelAmount() float64 { return s.Fuel * s.FuelCapacity() }

// JumpRange is how far a jump drive reaches.
func (s *Ship) JumpRange() float64 {
	if v := s.Attributes.Get("jump range"); v > 0 {
		return v
	}
	return defaultJumpRange
}

// JumpSpeed is the speed at or below which a ship may jump.
func (s *Ship) JumpSpeed() float64 {
	if v := s.Attributes.Get("jump speed"); v > 0 {
		return v
	}
	return defaultJumpSpeed
}

// HyperdriveFuel is the fuel a hyperlane jump costs.
func (s *Ship) HyperdriveFuel() float64 {
	if v := s.Attributes.Get("hyperdrive fuel"); v > 0 {
		return v
	}
	return defaultHyperFuel
}

// JumpDriveFuel is the fuel a jump-drive jump costs.
func (s *Ship) JumpDriveFuel() float64 {
	if v := s.Attributes.Get("jump drive fuel"); v > 0 {
		return v
	}
	return defaultJumpFuel
}

// HyperspaceType returns the cheapest drive that reaches dest, or DriveNone.
func (s *Ship) HyperspaceType(dest *System) int {
	if s.System == nil || dest == nil || dest == s.System {
		return DriveNone
	}
	if s.HasHyperdrive() && s.System.IsLinked(dest) {
		if s.HasScramDrive() {
			return DriveScram
		}
		return DriveHyperdrive
	}
	if s.HasJumpDrive() && s.System.Position.Distance(dest.Position) <= s.JumpRange() {
		return DriveJump
	}
	return DriveNone
}

// JumpFuel is the fuel needed to reach dest. With a nil dest it is the
// cheapest per-hop cost of any installed drive; 0 means the ship cannot jump.
func (s *Ship) JumpFuel(dest *System) float64 {
	if dest == nil {
		switch {
		case s.HasHyperdrive():
			return s.HyperdriveFuel()
		case s.HasJumpDrive():
			return s.JumpDriveFuel()
		}
		return 0
	}
	switch s.HyperspaceType(dest) {
	case DriveHyperdrive, DriveScram:
		return s.HyperdriveFuel()
	case DriveJump:
		return s.JumpDriveFuel()
	}
	return 0
}

// JumpsRemaining is how many cheapest jumps the tank holds.
func (s *Ship) JumpsRemaining() int {
	cost := s.JumpFuel(nil)
	if cost <= 0 {
		return 0
	}
	return int(s.FuelAmount() / cost)
}

// IsReadyToJump reports whether the physics step would let this ship enter
// hyperspace toward TargetSystem now. With waitingIsReady a WAIT command
// does not count against readiness.
func (s *Ship) IsReadyToJump(waitingIsReady bool) bool {
	if s.Disabled || s.Hyperspace > 0 || s.TargetSystem == nil || s.System == nil {
		return false
	}
	if !waitingIsReady && s.commands.Has(Wait) {
		return false
	}
	kind := s.HyperspaceType(s.TargetSystem)
	cost := s.JumpFuel(s.TargetSystem)
	if kind == DriveNone || cost <= 0 || s.FuelAmount() < cost {
		return false
	}
	dep := s.System.JumpDepartureDistance()
	if s.Position.LengthSquared() <= dep*dep && dep > 0 {
		return false
	}
	dir := s.TargetSystem.Position.Sub(s.System.Position)
	if kind == DriveScram {
		if math.Abs(dir.Unit().Cross(s.Velocity)) > s.Attributes.Get("scram drive") {
			return false
		}
	} else if s.Velocity.Length() > s.JumpSpeed() {
		return false
	}
	if kind != DriveJump {
		off := math.Abs(s.Facing.Delta(geom.AngleOf(dir)))
		if off > math.Max(s.TurnRate(), 1) {
			return false
		}
	}
	return true
}

// --- Cargo ---

// Jettison dumps up to tons of a commodity and records it for the world.
func (s *Ship) Jettison(commodity string, tons int) int {
	if s.Cargo == nil {
		return 0
	}
	n := s.Cargo.Remove(commodity, tons)
	if n > 0 {
		s.Jettisoned = append(s.Jettisoned, Jettison{Commodity: commodity, Tons: n})
	}
	return n
}

// CanFireAmmo reports whether the ammunition for w is aboard.
func (s *Ship) CanFireAmmo(w *Weapon) bool {
	if w.Ammo == "" {
		return true
	}
	usage := max(w.AmmoUsage, 1)
	return s.Ammo[w.Ammo] >= usage
}
