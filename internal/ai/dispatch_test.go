package ai

import (
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func TestLowHealth_AppeasingPirateDumpsCargo(t *testing.T) {
	r := newRig(t)
	flag := r.player.Flagship
	arm(flag, laser(), false)

	pirate := r.add(2, r.pirate, geom.Pt(600, 0))
	pirate.Personality = world.NewPersonality(world.Plunders, world.Appeasing)
	pirate.Hull = .3
	pirate.Cargo = world.NewCargoHold(60, 0)
	pirate.Cargo.Add("food", 25)
	pirate.Cargo.Add("iron", 35)
	flag.TargetShip = pirate

	r.step(0)

	dumped := 0
	for _, j := range pirate.Jettisoned {
		dumped += j.Tons
	}
	if dumped != 32 {
		t.Fatalf("want ceil(11 + 0.5*0.7*60) = 32 tons dumped, got %d", dumped)
	}
	if pirate.Jettisoned[0].Commodity != "food" {
		t.Fatalf("commodities are dumped in name order, got %s first", pirate.Jettisoned[0].Commodity)
	}
	if got := r.c.AppeasementThreshold(pirate.ID); got < .8-1e-9 || got > .8+1e-9 {
		t.Fatalf("threshold should rise to 0.8, got %f", got)
	}
	if !r.log.Contains("Please, just take my cargo and leave me alone.") {
		r.dump()
		t.Fatal("missing appeasement hail")
	}

	// Without further damage nothing more is dumped.
	pirate.Jettisoned = nil
	r.commit()
	r.step(0)
	if len(pirate.Jettisoned) != 0 {
		t.Fatalf("no new loss, no new dump: got %v", pirate.Jettisoned)
	}
}

func TestDispatch_StrandedShipStops(t *testing.T) {
	r := newRig(t)
	s := r.add(2, world.NewGovernment("Merchant"), geom.Pt(500, 500))
	s.Fuel = 0
	s.Velocity = geom.Pt(3, 0)
	s.Personality = world.NewPersonality(world.Derelict)

	r.step(0)
	if !s.StagedCommands().Has(world.Stop) {
		t.Fatalf("a stranded ship should stop, got %s", s.StagedCommands().Command)
	}
}

func TestDispatch_DisabledNPCDeploys(t *testing.T) {
	r := newRig(t)
	s := r.add(2, r.pirate, geom.Pt(500, 500))
	s.Disabled = true
	s.Personality = world.NewPersonality(world.Derelict)

	r.step(0)
	if !s.StagedCommands().Has(world.Deploy) {
		t.Fatal("a disabled NPC launches whatever it carries")
	}
}

func TestDispatch_FleeingShipDropsTarget(t *testing.T) {
	r := newRig(t)
	s := r.add(2, r.pirate, geom.Pt(500, 0))
	s.Personality = world.NewPersonality(world.Fleeing)
	arm(s, laser(), false)

	r.step(0)
	if !s.Fleeing {
		t.Fatal("a fleeing ship should be marked as fleeing")
	}
	if s.TargetShip != nil {
		t.Fatalf("with a hyperlane out it should drop its target, got %s", s.TargetShip.Name)
	}
}

func TestDispatch_EscortFollowsFlagshipJump(t *testing.T) {
	r := newRig(t)
	e := r.escort(2, geom.Pt(300, 0))
	flag := r.player.Flagship

	r.step(world.Jump)
	r.commit()
	r.step(0)
	if !e.StagedCommands().Has(world.Jump) {
		t.Fatalf("an escort should jump with its parent, got %s", e.StagedCommands().Command)
	}
	if e.TargetSystem != flag.TargetSystem {
		t.Fatal("the escort should aim for the parent's system")
	}
}

func TestStep_ReapsDepartedShips(t *testing.T) {
	r := newRig(t)
	far := r.home.InvisibleFenceRadius() + 100
	s := r.add(2, r.pirate, geom.Pt(far, 0))

	r.step(0)
	if r.c.FenceCount(s.ID) == 0 {
		t.Fatal("a constrained ship beyond the fence should build up its count")
	}
	r.ships = r.ships[:1]
	r.step(0)
	if r.c.FenceCount(s.ID) != 0 {
		t.Fatal("state for a ship that left should be dropped")
	}
}
