package ai

import (
	"math"
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func TestIssueMoveTarget_SquadKeepsShape(t *testing.T) {
	r := newRig(t)
	corners := []geom.Point{geom.Pt(50, 50), geom.Pt(-50, 50), geom.Pt(50, -50), geom.Pt(-50, -50)}
	for i, p := range corners {
		e := r.escort(world.ShipID(10+i), p)
		r.player.Selected = append(r.player.Selected, e)
	}
	r.step(0)
	r.c.IssueMoveTarget(r.player, geom.Pt(1000, 0), nil)

	var center geom.Point
	for i, e := range r.player.Selected {
		set, ok := r.c.Orders(e.ID)
		if !ok || !set.Has(orders.MoveTo) {
			t.Fatalf("%s has no move order", e.Name)
		}
		want := geom.Pt(1000, 0).Add(corners[i])
		if set.TargetPoint.Distance(want) > 1e-9 {
			t.Errorf("%s: want %v, got %v", e.Name, want, set.TargetPoint)
		}
		if set.TargetSystem != r.home {
			t.Errorf("%s: move order should stay in the flagship's system", e.Name)
		}
		center = center.Add(set.TargetPoint)
	}
	center = center.Mul(.25)
	if math.Abs(center.X-1000) > 1e-9 || math.Abs(center.Y) > 1e-9 {
		t.Fatalf("center of gravity should land on the click, got %v", center)
	}
	if !r.log.Contains("The selected escorts are moving to the given location.") {
		r.dump()
		t.Fatal("missing move message")
	}
}

func TestIssueMoveTarget_ClampsStragglers(t *testing.T) {
	r := newRig(t)
	r.escort(2, geom.Pt(0, 0))
	far := r.escort(3, geom.Pt(2000, 0))
	r.step(0)
	r.c.IssueMoveTarget(r.player, geom.Pt(0, 0), nil)

	set, _ := r.c.Orders(far.ID)
	limit := math.Sqrt(squadSpread * 2)
	if got := set.TargetPoint.Length(); got > limit+1e-9 {
		t.Fatalf("offset %f exceeds the squad limit %f", got, limit)
	}
}

func TestIssueOrders_SecondPressTogglesOff(t *testing.T) {
	r := newRig(t)
	e := r.escort(2, geom.Pt(100, 0))
	r.step(world.HoldFire)
	if set, ok := r.c.Orders(e.ID); !ok || !set.Has(orders.HoldFire) {
		t.Fatal("first press should give the hold fire order")
	}
	if !r.log.Contains("ship-2 is holding fire.") {
		r.dump()
		t.Fatal("a single escort is addressed by name")
	}

	r.step(0)
	r.step(world.HoldFire)
	if _, ok := r.c.Orders(e.ID); ok {
		t.Fatal("second press should clear the order entry")
	}
	if !r.log.Contains("ship-2 is no longer holding fire.") {
		r.dump()
		t.Fatal("missing toggle-off message")
	}
}

func TestIssueOrders_HoldPositionUsesOwnPosition(t *testing.T) {
	r := newRig(t)
	a := r.escort(2, geom.Pt(100, 0))
	b := r.escort(3, geom.Pt(-300, 40))
	r.step(world.HoldPosition)

	for _, e := range []*world.Ship{a, b} {
		set, ok := r.c.Orders(e.ID)
		if !ok || !set.Has(orders.HoldPosition) {
			t.Fatalf("%s has no hold order", e.Name)
		}
		if set.TargetPoint != e.Position {
			t.Errorf("%s should hold where it is: want %v, got %v", e.Name, e.Position, set.TargetPoint)
		}
	}
	if !r.log.Contains("Your fleet is holding position.") {
		r.dump()
		t.Fatal("missing fleet message")
	}
}

func TestIssueShipTarget(t *testing.T) {
	r := newRig(t)
	e := r.escort(2, geom.Pt(100, 0))
	other := r.escort(3, geom.Pt(-100, 0))
	foe := r.add(4, r.pirate, geom.Pt(800, 0))
	r.step(0)

	r.c.IssueShipTarget(r.player, foe)
	set, _ := r.c.Orders(e.ID)
	if !set.Has(orders.Attack) || set.TargetShip != foe {
		t.Fatalf("clicking an enemy should order an attack, got %s", set.Types())
	}
	if r.player.Flagship.TargetShip != foe {
		t.Fatal("the flagship should target the clicked enemy")
	}
	if !r.log.Contains(`Your fleet is focusing fire on "ship-4".`) {
		r.dump()
		t.Fatal("missing attack message")
	}

	r.c.IssueShipTarget(r.player, other)
	set, _ = r.c.Orders(e.ID)
	if !set.Has(orders.KeepStation) || set.TargetShip != other {
		t.Fatalf("clicking an own ship should order keep station, got %s", set.Types())
	}
	if set, _ := r.c.Orders(other.ID); set.Has(orders.KeepStation) {
		t.Fatal("a ship is never ordered to keep station with itself")
	}

	foe.Disabled = true
	r.c.IssueShipTarget(r.player, foe)
	set, _ = r.c.Orders(e.ID)
	if !set.Has(orders.FinishOff) {
		t.Fatalf("clicking a disabled enemy should order finish off, got %s", set.Types())
	}
}

func TestIssueAsteroidTarget(t *testing.T) {
	r := newRig(t)
	e := r.escort(2, geom.Pt(100, 0))
	rock := testRock(geom.Pt(600, 0))
	r.rocks = append(r.rocks, rock)
	r.step(0)

	r.c.IssueAsteroidTarget(r.player, rock)
	set, _ := r.c.Orders(e.ID)
	if !set.Has(orders.Mine) || set.TargetAsteroid != rock {
		t.Fatalf("want a mine order on the rock, got %s", set.Types())
	}
	if r.player.Flagship.TargetAsteroid != rock {
		t.Fatal("the flagship should target the clicked asteroid")
	}
}
