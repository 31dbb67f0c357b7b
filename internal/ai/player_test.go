package ai

import (
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/route"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func earth() *world.StellarObject {
	return &world.StellarObject{
		Name: "Earth", Position: geom.Pt(0, -2000), Radius: 100,
		Planet: &world.Planet{Name: "Earth", Spaceport: true, Fuel: true, Inhabited: true},
	}
}

func TestAutopilot_ManualKeyCancelsLanding(t *testing.T) {
	r := newRig(t)
	r.home.Objects = append(r.home.Objects, earth())
	flag := r.player.Flagship

	r.step(world.Land)
	if !flag.StagedCommands().Has(world.Land) {
		t.Fatalf("LAND should be latched, got %s", flag.StagedCommands().Command)
	}
	if flag.TargetStellar == nil || flag.TargetStellar.Name != "Earth" {
		t.Fatal("the only planet should be chosen")
	}
	r.commit()

	r.step(world.Forward)
	cmd := flag.StagedCommands()
	if !cmd.Has(world.Forward) || cmd.Has(world.Land) {
		t.Fatalf("want FORWARD without LAND, got %s", cmd.Command)
	}
	if r.c.AutopilotActive() != 0 {
		t.Fatalf("autopilot should be off, got %s", r.c.AutopilotActive())
	}
	if !r.log.Contains("Disengaging autopilot.") {
		r.dump()
		t.Fatal("missing disengage message")
	}
}

func TestAutopilot_LatchSurvivesRelease(t *testing.T) {
	r := newRig(t)
	r.home.Objects = append(r.home.Objects, earth())
	flag := r.player.Flagship

	r.step(world.Land)
	r.commit()
	r.step(0)
	if !flag.StagedCommands().Has(world.Land) {
		t.Fatal("a latched landing keeps flying after the key is released")
	}
}

func TestJumpKey_NoHyperdrive(t *testing.T) {
	r := newRig(t)
	delete(r.player.Flagship.Attributes, "hyperdrive")
	r.step(world.Jump)
	if !r.log.Contains("You do not have a hyperdrive installed.") {
		r.dump()
		t.Fatal("missing hyperdrive message")
	}
	if r.c.AutopilotActive().Has(world.Jump) {
		t.Fatal("jump should unlatch without a drive")
	}
}

func TestJumpKey_PicksFacedLink(t *testing.T) {
	r := newRig(t)
	flag := r.player.Flagship // faces up, toward North
	r.step(world.Jump)
	if flag.TargetSystem != r.north {
		t.Fatalf("want North, got %v", flag.TargetSystem)
	}
	if !r.log.Contains("Engaging autopilot to jump to the North system.") {
		r.dump()
		t.Fatal("missing engage message")
	}
	if !flag.StagedCommands().Has(world.Jump) {
		t.Fatalf("want JUMP, got %s", flag.StagedCommands().Command)
	}
}

func TestJumpKey_FleetWaitsForEscorts(t *testing.T) {
	r := newRig(t)
	r.escort(2, geom.Pt(300, 0))
	flag := r.player.Flagship
	r.step(world.Jump)
	cmd := flag.StagedCommands()
	if !cmd.HasAll(world.Jump | world.FleetJump | world.Wait) {
		t.Fatalf("want JUMP+FLEET_JUMP+WAIT while the escort lines up, got %s", cmd.Command)
	}
}

func TestAmmoKey_Cycles(t *testing.T) {
	r := newRig(t)
	want := []string{
		"Your escorts will no longer expend ammunition.",
		"Your escorts will now expend ammunition.",
		"Your escorts will now use ammunition frugally.",
	}
	for _, text := range want {
		r.step(world.Ammo)
		r.step(0)
		if !r.log.Contains(text) {
			r.dump()
			t.Fatalf("missing %q", text)
		}
	}
	if !r.c.escortsUseAmmo || !r.c.escortsAreFrugal {
		t.Fatal("three presses should come back to frugal use")
	}
}

func TestDeployKey_Toggles(t *testing.T) {
	r := newRig(t)
	r.step(world.Deploy)
	if !r.c.Launching() || !r.player.Flagship.StagedCommands().Has(world.Deploy) {
		t.Fatal("first press should launch")
	}
	r.step(0)
	r.step(world.Deploy)
	if r.c.Launching() {
		t.Fatal("second press should recall")
	}
	if !r.log.Contains("Recalling fighters.") {
		r.dump()
		t.Fatal("missing recall message")
	}
}

func TestNearestKey_PrefersActiveEnemy(t *testing.T) {
	r := newRig(t)
	wreck := r.add(2, r.pirate, geom.Pt(100, 0))
	wreck.Disabled = true
	active := r.add(3, r.pirate, geom.Pt(900, 0))
	r.add(4, world.NewGovernment("Merchant"), geom.Pt(50, 0))

	r.step(world.Nearest)
	if r.player.Flagship.TargetShip != active {
		t.Fatalf("an active enemy outranks a closer wreck, got %v", r.player.Flagship.TargetShip)
	}
}

func TestBoardKey_CyclesDisabledShips(t *testing.T) {
	r := newRig(t)
	a := r.add(2, r.pirate, geom.Pt(100, 0))
	b := r.add(3, r.pirate, geom.Pt(400, 0))
	a.Disabled, b.Disabled = true, true
	flag := r.player.Flagship

	r.step(world.Board)
	if flag.TargetShip != a {
		t.Fatalf("first press should pick the closest wreck, got %v", flag.TargetShip)
	}
	r.commit()
	r.step(0)
	r.step(world.Board)
	if flag.TargetShip != b {
		t.Fatalf("second press should cycle, got %v", flag.TargetShip)
	}
}

// northPlanner plans a one-hop route, but only when North is on the map
// it was given.
type northPlanner struct{ north *world.System }

func (p northPlanner) Plan(ship *world.Ship, dest *world.System, k route.Knowledge) route.Plan {
	if k != nil && !k.Knows(p.north) {
		return route.Plan{}
	}
	return route.Plan{Hops: []*world.System{dest}}
}

func TestStep_MapDiscoveryFlushesRoutes(t *testing.T) {
	r := newRig(t)
	r.c = New(WithSeed(7), WithMessages(r.log), WithRoutePlanner(northPlanner{north: r.north}))
	flag := r.player.Flagship
	r.player.Known = map[*world.System]bool{r.home: true}

	r.step(0)
	if r.c.planRoute(flag, r.north).HasRoute() {
		t.Fatal("an unknown system cannot be planned to")
	}
	r.commit()
	r.step(0)
	if r.c.routes.Len() == 0 {
		t.Fatal("nothing was discovered, the plan should stay cached")
	}

	r.player.Known[r.north] = true
	r.commit()
	r.step(0)
	if !r.c.planRoute(flag, r.north).HasRoute() {
		t.Fatal("a discovered system should be plannable on the next tick")
	}
}
