package world

import (
	"math"
	"strings"
)

// Command is a bitmask of player keys and autopilot requests. The same bits
// drive NPC ships: the controller writes them and the physics step reads them.
type Command uint64

const (
	Forward Command = 1 << iota
	Left
	Right
	Back
	Afterburner
	Primary
	Secondary
	Select
	Land
	Board
	Hail
	Scan
	Jump
	FleetJump
	Target
	Nearest
	Deploy
	AutoSteer
	Cloak
	Fight
	Gather
	HoldFire
	HoldPosition
	Harvest
	Ammo
	Wait
	Stop
	Shift
	NearestAsteroid

	// commandEnd marks the end of the declared bits.
	commandEnd
)

// None is the empty command.
const None Command = 0

// AllCommands masks every declared bit.
const AllCommands = commandEnd - 1

// Movement is the set of keys that cancel an active autopilot.
const Movement = Forward | Back | Left | Right | AutoSteer | Stop | Afterburner | Land | Jump | Board

// Autopilot is the set of latched autopilot bits.
const Autopilot = Land | Jump | FleetJump | Board | Stop | AutoSteer

var commandNames = []string{
	"forward", "left", "right", "back", "afterburner", "primary", "secondary",
	"select", "land", "board", "hail", "scan", "jump", "fleet jump", "target",
	"nearest", "deploy", "autosteer", "cloak", "fight", "gather", "hold fire",
	"hold position", "harvest", "ammo", "wait", "stop", "shift", "nearest asteroid",
}

// Has reports whether any bit of o is set in c.
func (c Command) Has(o Command) bool { return c&o != 0 }

// HasAll reports whether every bit of o is set in c.
func (c Command) HasAll(o Command) bool { return c&o == o }

// Valid reports whether c only uses declared bits.
func (c Command) Valid() bool { return c&^AllCommands == 0 }

func (c Command) String() string {
	if c == None {
		return "none"
	}
	var parts []string
	for i, name := range commandNames {
		if c&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// MovementCommand is the per-tick output for steering: a command bitmask plus
// a turn scalar in [-1, 1].
type MovementCommand struct {
	Command
	turn float64
}

// Set ORs bits into the command.
func (m *MovementCommand) Set(c Command) { m.Command |= c }

// Clear removes bits from the command.
func (m *MovementCommand) Clear(c Command) { m.Command &^= c }

// SetTurn stores the turn scalar, clamped to [-1, 1]. NaN becomes 0.
func (m *MovementCommand) SetTurn(turn float64) {
	if math.IsNaN(turn) {
		turn = 0
	}
	m.turn = math.Max(-1, math.Min(1, turn))
}

// Turn returns the turn scalar.
func (m MovementCommand) Turn() float64 { return m.turn }

// Reset clears the bits and the turn.
func (m *MovementCommand) Reset() { *m = MovementCommand{} }

// FireCommand holds one fire bit and one aim delta per hardpoint.
type FireCommand struct {
	fire []bool
	aim  []float64
}

// Clear sizes the command for n hardpoints and zeroes it, reusing capacity.
func (f *FireCommand) Clear(n int) {
	if cap(f.fire) < n {
		f.fire = make([]bool, n)
		f.aim = make([]float64, n)
		return
	}
	f.fire = f.fire[:n]
	f.aim = f.aim[:n]
	for i := range f.fire {
		f.fire[i] = false
		f.aim[i] = 0
	}
}

// Len is the number of hardpoints covered.
func (f FireCommand) Len() int { return len(f.fire) }

// SetFire marks hardpoint i as firing.
func (f *FireCommand) SetFire(i int) {
	if i >= 0 && i < len(f.fire) {
		f.fire[i] = true
	}
}

// UnsetFire clears the fire bit for hardpoint i.
func (f *FireCommand) UnsetFire(i int) {
	if i >= 0 && i < len(f.fire) {
		f.fire[i] = false
	}
}

// HasFire reports whether hardpoint i fires.
func (f FireCommand) HasFire(i int) bool { return i >= 0 && i < len(f.fire) && f.fire[i] }

// IsFiring reports whether any hardpoint fires.
func (f FireCommand) IsFiring() bool {
	for _, b := range f.fire {
		if b {
			return true
		}
	}
	return false
}

// SetAim stores the turret aim delta for hardpoint i, clamped to [-1, 1].
func (f *FireCommand) SetAim(i int, delta float64) {
	if i < 0 || i >= len(f.aim) {
		return
	}
	if math.IsNaN(delta) {
		delta = 0
	}
	f.aim[i] = math.Max(-1, math.Min(1, delta))
}

// Aim returns the aim delta for hardpoint i.
func (f FireCommand) Aim(i int) float64 {
	if i < 0 || i >= len(f.aim) {
		return 0
	}
	return f.aim[i]
}

// Copy returns an independent copy.
func (f FireCommand) Copy() FireCommand {
	return FireCommand{
		fire: append([]bool(nil), f.fire...),
		aim:  append([]float64(nil), f.aim...),
	}
}
