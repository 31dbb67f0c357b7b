package sandbox

import (
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/ai"
	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, sc *Scene) {
	t.Helper()
	entries := sc.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// dumpSummary prints the scenario summary block and the player's messages.
func dumpSummary(t *testing.T, sc *Scene) {
	t.Helper()
	t.Log(sc.SimLog.Summary(sc.Tick, sc.Ships))
	t.Log(sc.Messages.Format())
}

// shipTick returns the first tick a ship logged category/key, or -1.
func shipTick(sc *Scene, s *world.Ship, category, key string) int {
	for _, e := range sc.SimLog.FilterShip(s.Name) {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

// twoSystems is Home with North linked straight ahead of a ship facing up.
func twoSystems() []Option {
	return append([]Option{WithSeed(42)}, twoSystemBase()...)
}

// --- Scenario: Joint jump ---

func TestScenario_JointJump(t *testing.T) {
	t.Log("=== TestScenario_JointJump ===")
	sc := New(append(twoSystems(),
		WithFlagship(1, "Home", 0, 0),
		WithEscort(2, 300, 0),
		WithFuel(2, 200, 1),
	)...)
	flag, escort := sc.Ship(1), sc.Ship(2)

	sc.Step(world.Jump)
	cmd := flag.Commands()
	if !cmd.HasAll(world.Jump | world.Wait) {
		dumpLog(t, sc)
		t.Fatalf("press tick: flagship should hold JUMP+WAIT, got %s", cmd.Command)
	}
	if !sc.Messages.Contains("Engaging autopilot to jump to the North system.") {
		t.Fatalf("missing autopilot message\n%s", sc.Messages.Format())
	}

	done := sc.RunUntil(func(sc *Scene) bool {
		return flag.IsHyperspacing() && escort.IsHyperspacing()
	}, 600)
	if done < 0 {
		dumpLog(t, sc)
		dumpSummary(t, sc)
		t.Fatal("both ships should be in hyperspace within 600 ticks")
	}

	fe, ee := shipTick(sc, flag, "jump", "enter"), shipTick(sc, escort, "jump", "enter")
	if fe != ee {
		dumpLog(t, sc)
		t.Fatalf("flagship entered at T=%d, escort at T=%d: they should jump together", fe, ee)
	}
	if escort.TargetSystem != sc.System("North") {
		t.Fatalf("escort should follow to North, got %v", escort.TargetSystem)
	}

	sc.RunTicks(hyperspaceTicks + 1)
	if flag.System != sc.System("North") || escort.System != sc.System("North") {
		dumpLog(t, sc)
		t.Fatal("both ships should arrive in North")
	}
	if got := escort.FuelAmount(); got > 100+1e-9 {
		t.Fatalf("the escort should have paid 100 fuel, has %f left", got)
	}
}

// --- Scenario: Mine turns into harvest ---

func TestScenario_MineBecomesHarvest(t *testing.T) {
	t.Log("=== TestScenario_MineBecomesHarvest ===")
	sc := New(append(twoSystems(),
		WithAsteroid(400, 0, 50, map[string]int{"iron": 3}),
		WithFlagship(1, "Home", 0, 0),
		WithEscort(2, 100, 0),
		WithCargo(2, 10, nil),
	)...)
	miner := sc.Ship(2)
	rock := sc.Minables[0]

	sc.Step(0)
	sc.AI.IssueAsteroidTarget(sc.Player, rock)
	sc.Step(0)
	if set, _ := sc.AI.Orders(miner.ID); !set.Has(orders.Mine) {
		t.Fatalf("setup: want a mine order, got %s", set.Types())
	}

	sc.DestroyAsteroid(rock)
	if len(sc.Flotsam) != 3 {
		t.Fatalf("the rock should break into 3 boxes, got %d", len(sc.Flotsam))
	}
	at := sc.Tick
	sc.RunUntil(func(sc *Scene) bool { return sc.Tick >= at+2 }, 2)

	set, _ := sc.AI.Orders(miner.ID)
	if !set.Has(orders.Harvest) || set.Has(orders.Mine) {
		dumpLog(t, sc)
		t.Fatalf("by T+2 the order should be HARVEST without MINE, got %s", set.Types())
	}
	if miner.TargetAsteroid != nil {
		t.Fatal("the dead rock should no longer be targeted")
	}
	f := miner.TargetFlotsam
	if f == nil || !f.IsLive() {
		dumpLog(t, sc)
		t.Fatal("the miner should be heading for a box")
	}
	if d := f.Position.Distance(miner.Position); d > 800 {
		t.Fatalf("chosen box is %f away, beyond harvest range", d)
	}

	sc.RunUntil(func(sc *Scene) bool { return miner.Cargo.Get("iron") == 3 }, 1200)
	if got := miner.Cargo.Get("iron"); got != 3 {
		dumpLog(t, sc)
		t.Fatalf("the miner should collect all three boxes, has %d", got)
	}
}

// --- Scenario: Appeasing pirate ---

func TestScenario_AppeasingPirateDumpsCargo(t *testing.T) {
	t.Log("=== TestScenario_AppeasingPirateDumpsCargo ===")
	sc := New(append(twoSystems(),
		WithFlagship(1, "Home", 0, 0),
		WithArmed(1, false),
		WithNPC(2, "Pirate", "Home", 0, -500, world.Plunders, world.Appeasing, world.Daring, world.Staying),
		WithAttribute(2, "shields", 0),
		WithHealth(2, 0, .3),
		WithCargo(2, 60, map[string]int{"food": 25, "iron": 35}),
		WithTarget(1, 2),
	)...)
	pirate := sc.Ship(2)

	sc.Step(0)
	dumped := 0
	for _, e := range sc.SimLog.FilterShip(pirate.Name) {
		if e.Category == "cargo" && e.Key == "jettison" {
			dumped += int(e.NumVal)
		}
	}
	if dumped != 32 {
		dumpLog(t, sc)
		t.Fatalf("want 32 tons dumped, got %d", dumped)
	}
	boxes := 0
	for _, f := range sc.Flotsam {
		if f.Source != pirate {
			t.Fatal("dumped boxes should remember who dumped them")
		}
		boxes += f.Count
	}
	if boxes != 32 {
		t.Fatalf("want 32 tons floating, got %d", boxes)
	}
	if pirate.IsHyperspacing() || pirate.System != sc.System("Home") {
		t.Fatal("the pirate should stay to be robbed")
	}
	if got := sc.AI.AppeasementThreshold(pirate.ID); got < .8-1e-9 {
		t.Fatalf("threshold should rise to 0.8, got %f", got)
	}
}

// --- Scenario: Fence containment ---

func TestScenario_FenceContainment(t *testing.T) {
	t.Log("=== TestScenario_FenceContainment ===")
	sc := New(append(twoSystems(),
		WithFence("Home", 2000),
		WithFlagship(1, "Home", 2600, 0),
		WithNPC(2, "Pirate", "Home", 2400, 0, world.Daring),
		WithArmed(2, false),
	)...)
	raider := sc.Ship(2)
	sc.AI.Restore(ai.Snapshot{Ships: []ai.ShipState{{ID: raider.ID, FenceCount: 600}}}, sc.Ships)

	sc.Step(0)
	if raider.TargetShip != nil {
		dumpLog(t, sc)
		t.Fatalf("a saturated ship must not pick a target, got %s", raider.TargetShip.Name)
	}
	if turn := raider.Commands().Turn(); turn >= 0 {
		t.Fatalf("facing up at +X, the way home is a left turn, got %f", turn)
	}

	sc.RunTicks(60)
	if raider.Position.X >= 2400 {
		dumpLog(t, sc)
		t.Fatalf("the raider should be heading back inside, at %v", raider.Position)
	}
	if raider.TargetShip != nil && sc.AI.FenceCount(raider.ID) >= 600 {
		t.Fatal("while saturated the raider keeps ignoring the flagship")
	}
}

// --- Scenario: Squad move ---

func TestScenario_SquadMoveKeepsShape(t *testing.T) {
	t.Log("=== TestScenario_SquadMoveKeepsShape ===")
	corners := []geom.Point{geom.Pt(50, 50), geom.Pt(-50, 50), geom.Pt(50, -50), geom.Pt(-50, -50)}
	opts := append(twoSystems(), WithFlagship(1, "Home", 0, 0))
	for i, p := range corners {
		opts = append(opts, WithEscort(10+i, p.X, p.Y))
	}
	opts = append(opts, WithSelected(10, 11, 12, 13))
	sc := New(opts...)

	sc.Step(0)
	sc.AI.IssueMoveTarget(sc.Player, geom.Pt(1000, 0), nil)

	var center geom.Point
	for i := range corners {
		set, ok := sc.AI.Orders(sc.Ship(10 + i).ID)
		if !ok || !set.Has(orders.MoveTo) {
			t.Fatalf("escort %d has no move order", 10+i)
		}
		center = center.Add(set.TargetPoint)
	}
	center = center.Mul(.25)
	if center.Distance(geom.Pt(1000, 0)) > 1e-9 {
		t.Fatalf("center of gravity should land on the click, got %v", center)
	}

	holding := func(sc *Scene) bool {
		for i := range corners {
			set, _ := sc.AI.Orders(sc.Ship(10 + i).ID)
			if !set.Has(orders.HoldPosition) {
				return false
			}
		}
		return true
	}
	if sc.RunUntil(holding, 3000) < 0 {
		dumpLog(t, sc)
		t.Fatal("every escort should arrive and hold")
	}
	for i, c := range corners {
		s := sc.Ship(10 + i)
		want := geom.Pt(1000, 0).Add(c)
		if d := s.Position.Distance(want); d > 2*20 {
			t.Errorf("%s ended %f from its slot", s.Name, d)
		}
	}
}

// --- Scenario: Autopilot cancel ---

func TestScenario_AutopilotCancel(t *testing.T) {
	t.Log("=== TestScenario_AutopilotCancel ===")
	sc := New(append(twoSystems(),
		WithPlanet("Home", "Haven", 0, -2000, true),
		WithFlagship(1, "Home", 0, 0),
	)...)
	flag := sc.Ship(1)

	sc.Step(world.Land)
	if !sc.AI.AutopilotActive().Has(world.Land) {
		dumpLog(t, sc)
		t.Fatal("setup: landing autopilot should be engaged")
	}
	if !flag.Commands().Has(world.Land) {
		t.Fatal("setup: the flagship should be flying to land")
	}

	sc.Step(world.Forward)
	if !sc.Messages.Contains("Disengaging autopilot.") {
		t.Fatalf("missing disengage message\n%s", sc.Messages.Format())
	}
	sc.Step(world.Forward)
	cmd := flag.Commands()
	if !cmd.Has(world.Forward) || cmd.Has(world.Land) {
		t.Fatalf("want FORWARD without LAND, got %s", cmd.Command)
	}
	if sc.AI.AutopilotActive() != 0 {
		t.Fatalf("autopilot should be off, got %s", sc.AI.AutopilotActive())
	}
}
