package ai

import (
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func TestFindTarget_PicksNearestEnemy(t *testing.T) {
	r := newRig(t)
	hunter := r.add(2, r.pirate, geom.Pt(5000, 0))
	hunter.Personality = world.NewPersonality(world.Daring)
	arm(hunter, laser(), false)
	near := r.escort(3, geom.Pt(5500, 0))
	r.escort(4, geom.Pt(7000, 0))

	r.step(0)
	if hunter.TargetShip != near {
		t.Fatalf("want the nearest escort, got %v", hunter.TargetShip)
	}
}

func TestFindTarget_UnarmedFindsNothing(t *testing.T) {
	r := newRig(t)
	trader := r.add(2, r.pirate, geom.Pt(300, 0))
	r.step(0)
	if got := r.c.FindTarget(trader); got != nil {
		t.Fatalf("an unarmed ship without scanners should not target, got %s", got.Name)
	}
}

func TestFindTarget_SaturatedFence(t *testing.T) {
	r := newRig(t)
	far := r.home.InvisibleFenceRadius() + 500
	raider := r.add(2, r.pirate, geom.Pt(far, 0))
	raider.Personality = world.NewPersonality(world.Daring)
	arm(raider, laser(), false)
	r.escort(3, geom.Pt(far+200, 0))

	r.step(0)
	r.c.Restore(Snapshot{Tick: r.c.Tick(), Ships: []ShipState{{ID: raider.ID, FenceCount: 600}}}, r.ships)
	raider.TargetShip = nil
	r.step(0)

	if got := r.c.FenceCount(raider.ID); got != 600 {
		t.Fatalf("a ship held beyond the fence stays saturated, got %d", got)
	}
	if raider.TargetShip != nil {
		t.Fatalf("a saturated ship must not pick a target, got %s", raider.TargetShip.Name)
	}
}

func TestFindTarget_AttackOrderWins(t *testing.T) {
	r := newRig(t)
	e := r.escort(2, geom.Pt(100, 0))
	arm(e, laser(), false)
	near := r.add(3, r.pirate, geom.Pt(200, 0))
	far := r.add(4, r.pirate, geom.Pt(3000, 0))
	arm(near, laser(), false)

	r.step(0)
	r.c.IssueShipTarget(r.player, far)
	if got := r.c.FindTarget(e); got != far {
		t.Fatalf("an escort under attack orders targets the ordered ship, got %v", got)
	}
}
