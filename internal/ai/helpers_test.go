package ai

import (
	"fmt"
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/messages"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// rig is a minimal host: one system, a player, and a controller whose
// messages land in a log.
type rig struct {
	t      *testing.T
	c      *Controller
	log    *messages.Log
	home   *world.System
	north  *world.System
	player *Player
	mine   *world.Government
	pirate *world.Government
	ships  []*world.Ship
	rocks  []*world.Minable
	boxes  []*world.Flotsam
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()
	home := world.NewSystem("Home", geom.Pt(0, 0))
	north := world.NewSystem("North", geom.Pt(0, -100))
	south := world.NewSystem("South", geom.Pt(0, 100))
	world.Link(home, north)
	world.Link(home, south)

	mine := world.NewPlayerGovernment("Escort")
	pirate := world.NewGovernment("Pirate")
	mine.SetEnemy(pirate, true)

	log := messages.NewLog(64)
	opts = append([]Option{WithSeed(7), WithMessages(log)}, opts...)
	r := &rig{
		t: t, c: New(opts...), log: log,
		home: home, north: north,
		mine: mine, pirate: pirate,
	}
	flag := r.add(1, mine, geom.Pt(0, 0))
	flag.IsYours = true
	r.player = &Player{Flagship: flag, Ships: []*world.Ship{flag}}
	return r
}

// add puts a generic armed-less ship in the home system.
func (r *rig) add(id world.ShipID, gov *world.Government, pos geom.Point) *world.Ship {
	s := world.NewShip(id, fmt.Sprintf("ship-%d", id), gov, r.home)
	s.Position = pos
	s.Attributes = world.Attributes{
		"mass": 100, "thrust": 100, "turn": 500, "drag": 1,
		"hull": 1000, "fuel capacity": 400, "hyperdrive": 1, "cost": 1000,
	}
	r.ships = append(r.ships, s)
	return s
}

// escort adds a ship the player owns.
func (r *rig) escort(id world.ShipID, pos geom.Point) *world.Ship {
	s := r.add(id, r.mine, pos)
	s.IsYours = true
	r.player.Flagship.AddEscort(s)
	r.player.Ships = append(r.player.Ships, s)
	return s
}

func laser() *world.Weapon {
	return &world.Weapon{Name: "laser", Velocity: 20, Lifetime: 40, Reload: 10, ShieldDamage: 5, HullDamage: 5}
}

func arm(s *world.Ship, w *world.Weapon, turret bool) {
	hp := world.NewHardpoint(geom.Pt(0, -10), 0, turret, w)
	s.Hardpoints = append(s.Hardpoints, hp)
}

// step runs one controller tick with the given keys held, then commits
// every ship's commands the way a physics step would.
func (r *rig) step(held world.Command, events ...world.ShipEvent) {
	r.c.Step(Input{
		Player:   r.player,
		Held:     held,
		Ships:    r.ships,
		Minables: r.rocks,
		Flotsam:  r.boxes,
		Events:   events,
	})
}

func (r *rig) commit() {
	for _, s := range r.ships {
		s.Commit()
	}
}

func (r *rig) dump() {
	r.t.Helper()
	r.t.Log(r.log.Format())
}

func testRock(p geom.Point) *world.Minable {
	return &world.Minable{Name: "rock", Position: p, Radius: 20, Hull: 100, Payload: map[string]int{"iron": 5}}
}
