package sandbox

import (
	"math"
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func TestPhysics_ThrustSettlesBelowMaxVelocity(t *testing.T) {
	sc := New(append(twoSystems(), WithNPC(2, "Pirate", "Home", 0, 0))...)
	s := sc.Ship(2)
	var cmd world.MovementCommand
	cmd.Set(world.Forward)
	for range 500 {
		sc.move(s, cmd)
	}
	// Thrust then drag settles at max velocity scaled by one drag step.
	want := s.MaxVelocity() * (1 - s.Drag()/s.Mass())
	if got := s.Velocity.Length(); math.Abs(got-want) > 1e-6 {
		t.Fatalf("want terminal speed %f, got %f", want, got)
	}
	if s.Position.Y >= 0 {
		t.Fatalf("facing 0 thrusts toward -Y, ended at %v", s.Position)
	}
}

func TestPhysics_StopSnapsSlowShips(t *testing.T) {
	sc := New(append(twoSystems(), WithNPC(2, "Pirate", "Home", 0, 0), WithVelocity(2, .1, 0))...)
	s := sc.Ship(2)
	var cmd world.MovementCommand
	cmd.Set(world.Stop)
	sc.move(s, cmd)
	if !s.Velocity.IsZero() {
		t.Fatalf("a crawling ship told to stop should stop, still at %v", s.Velocity)
	}
}

func TestPhysics_BoardPlundersDisabledEnemy(t *testing.T) {
	sc := New(append(twoSystems(),
		WithFlagship(1, "Home", 30, 0),
		WithCargo(1, 30, map[string]int{"gold": 4, "food": 20}),
		WithDisabled(1),
		WithNPC(2, "Pirate", "Home", 0, 0, world.Plunders),
		WithCargo(2, 15, nil),
		WithTarget(2, 1),
	)...)
	victim, pirate := sc.Ship(1), sc.Ship(2)

	sc.tryBoard(pirate)
	if got := pirate.Cargo.Used(); got != 15 {
		t.Fatalf("the pirate fills its 15-ton hold, has %d", got)
	}
	if victim.Cargo.Used() != 9 {
		t.Fatalf("the victim keeps what did not fit, has %d", victim.Cargo.Used())
	}
	if len(sc.events) != 1 || !sc.events[0].Type.Has(world.EventBoard) {
		t.Fatalf("boarding should be reported, got %+v", sc.events)
	}
	if !sc.SimLog.HasEntry("board", "plunder", victim.Name) {
		t.Fatal("missing plunder log entry")
	}
}

func TestPhysics_BoardRepairsDisabledFriend(t *testing.T) {
	sc := New(append(twoSystems(),
		WithFlagship(1, "Home", 0, 0),
		WithEscort(2, 40, 0),
		WithHealth(2, 0, .1),
		WithDisabled(2),
		WithTarget(1, 2),
	)...)
	flag, e := sc.Ship(1), sc.Ship(2)

	sc.tryBoard(flag)
	if e.Disabled || e.Hull < repairHull {
		t.Fatalf("an assisted friend should be repaired, hull=%f disabled=%v", e.Hull, e.Disabled)
	}
	if len(sc.events) != 1 || !sc.events[0].Type.Has(world.EventAssist) {
		t.Fatalf("assistance should be reported, got %+v", sc.events)
	}
}

func TestPhysics_BoardOutOfReach(t *testing.T) {
	sc := New(append(twoSystems(),
		WithFlagship(1, "Home", 500, 0),
		WithDisabled(1),
		WithNPC(2, "Pirate", "Home", 0, 0, world.Plunders),
		WithTarget(2, 1),
	)...)
	sc.tryBoard(sc.Ship(2))
	if len(sc.events) != 0 {
		t.Fatal("nothing happens out of boarding range")
	}
}

func TestPhysics_DamageDisablesThenDestroys(t *testing.T) {
	sc := New(append(twoSystems(),
		WithFlagship(1, "Home", 0, 0),
		WithNPC(2, "Pirate", "Home", 0, -100),
		WithHealth(2, 0, .2),
	)...)
	flag, pirate := sc.Ship(1), sc.Ship(2)
	w := &world.Weapon{HullDamage: 100}

	sc.damage(flag, pirate, w)
	if !pirate.Disabled || pirate.Destroyed {
		t.Fatalf("hull %f should disable without destroying", pirate.Hull)
	}
	sc.damage(flag, pirate, w)
	sc.damage(flag, pirate, w)
	if !pirate.Destroyed {
		t.Fatalf("hull %f should be destroyed", pirate.Hull)
	}
	var seen world.EventType
	for _, e := range sc.events {
		seen |= e.Type
	}
	if !seen.Has(world.EventDisable) || !seen.Has(world.EventDestroy) || !seen.Has(world.EventProvoke) {
		t.Fatalf("want provoke, disable and destroy reported, got %b", seen)
	}
}

func TestPhysics_ShieldsAbsorbFirst(t *testing.T) {
	sc := New(append(twoSystems(),
		WithFlagship(1, "Home", 0, 0),
		WithNPC(2, "Pirate", "Home", 0, -100),
	)...)
	pirate := sc.Ship(2)
	sc.damage(sc.Ship(1), pirate, &world.Weapon{ShieldDamage: 50, HullDamage: 50})
	if pirate.Hull != 1 || math.Abs(pirate.Shields-.9) > 1e-9 {
		t.Fatalf("want shields .9 and hull untouched, got %f/%f", pirate.Shields, pirate.Hull)
	}
}

func TestPhysics_HitscanFindsFirstInLine(t *testing.T) {
	sc := New(append(twoSystems(),
		WithFlagship(1, "Home", 0, 0),
		WithArmed(1, false),
		WithNPC(2, "Pirate", "Home", 0, -300),
		WithNPC(3, "Pirate", "Home", 0, -150),
	)...)
	flag, far, near := sc.Ship(1), sc.Ship(2), sc.Ship(3)
	sc.live()

	sc.resolveShot(flag, flag.Hardpoints[0])
	if near.Shields == 1 || far.Shields != 1 {
		t.Fatalf("the nearer ship takes the shot: near=%f far=%f", near.Shields, far.Shields)
	}
}

func TestPhysics_RockBreaksIntoBoxes(t *testing.T) {
	sc := New(append(twoSystems(), WithAsteroid(100, 100, 10, map[string]int{"iron": 2, "silicon": 1}))...)
	m := sc.Minables[0]
	sc.DestroyAsteroid(m)
	if !m.Destroyed || len(sc.Flotsam) != 3 {
		t.Fatalf("want 3 boxes from a destroyed rock, got %d", len(sc.Flotsam))
	}
	if sc.Flotsam[0].Commodity != "iron" || sc.Flotsam[2].Commodity != "silicon" {
		t.Fatal("boxes are spawned in commodity order")
	}
	sc.DestroyAsteroid(m)
	if len(sc.Flotsam) != 3 {
		t.Fatal("a dead rock drops nothing more")
	}
}

func TestPhysics_CollectSkipsOwnJettison(t *testing.T) {
	sc := New(append(twoSystems(),
		WithNPC(2, "Pirate", "Home", 0, 0),
		WithCargo(2, 20, map[string]int{"food": 5}),
	)...)
	s := sc.Ship(2)
	s.Jettison("food", 5)
	sc.dropJettisoned(s)
	if len(sc.Flotsam) != 1 || sc.Flotsam[0].Count != 5 {
		t.Fatalf("want one 5-ton box, got %+v", sc.Flotsam)
	}
	sc.collect(s)
	if s.Cargo.Get("food") != 0 {
		t.Fatal("a ship does not scoop up what it just dumped")
	}

	sc.Flotsam[0].Source = nil
	sc.collect(s)
	if s.Cargo.Get("food") != 5 || sc.Flotsam[0].IsLive() {
		t.Fatal("an unowned box in reach is collected")
	}
}

func TestPhysics_HyperspaceArrival(t *testing.T) {
	sc := New(append(twoSystems(), WithFlagship(1, "Home", 0, 0))...)
	s := sc.Ship(1)
	s.TargetSystem = sc.System("North")
	sc.enterHyperspace(s)
	if s.FuelAmount() != 300 {
		t.Fatalf("a hyperdrive jump costs 100 of 400, left %f", s.FuelAmount())
	}
	for range hyperspaceTicks {
		sc.stepHyperspace(s)
	}
	if s.System != sc.System("North") || s.TargetSystem != nil {
		t.Fatalf("should arrive in North, in %v", s.System)
	}
	// Home lies below North, so the ship arrives on the +Y side.
	if s.Position.Y < arrivalDistance-arrivalJitter {
		t.Fatalf("should arrive on the side facing Home, at %v", s.Position)
	}
	if d := s.Facing.Delta(geom.Degrees(0)); math.Abs(d) > 1 {
		t.Fatalf("should face inward (up), off by %f", d)
	}
}

func TestPhysics_NPCLandsAndLeaves(t *testing.T) {
	sc := New(append(twoSystems(),
		WithPlanet("Home", "Haven", 0, 0, true),
		WithNPC(2, "Pirate", "Home", 10, 0),
		WithFuel(2, 400, .1),
	)...)
	s := sc.Ship(2)
	s.TargetStellar = sc.System("Home").Objects[0]

	sc.tryLand(s)
	if !s.Landing {
		t.Fatal("a slow ship over a planet should start landing")
	}
	for s.System != nil && sc.Tick < 100 {
		sc.Tick++
		sc.stepLanding(s)
	}
	if s.System != nil {
		t.Fatal("an NPC that lands leaves the scene")
	}
	if s.Fuel != 1 {
		t.Fatalf("the planet sells fuel, tank at %f", s.Fuel)
	}
}

func TestPhysics_CarrierDocksAndLaunches(t *testing.T) {
	sc := New(append(twoSystems(),
		WithNPC(2, "Pirate", "Home", 0, 0),
		WithFighter(3, 2),
	)...)
	carrier, fighter := sc.Ship(2), sc.Ship(3)
	if !carrier.IsCarrying(fighter) {
		t.Fatal("setup: the fighter starts in the bay")
	}

	sc.deploy(carrier, true)
	if carrier.IsCarrying(fighter) || fighter.System != carrier.System {
		t.Fatal("deploy should launch the fighter")
	}

	sc.deploy(carrier, false)
	fighter.TargetShip = carrier
	sc.tryBoard(fighter)
	if !carrier.IsCarrying(fighter) || fighter.System != nil {
		t.Fatal("the fighter should dock again")
	}
}
