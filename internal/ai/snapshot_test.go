package ai

import (
	"reflect"
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func TestSnapshot_RestoreIntoFreshController(t *testing.T) {
	r := newRig(t)
	e := r.escort(2, geom.Pt(100, 0))
	raider := r.add(3, r.pirate, geom.Pt(r.home.InvisibleFenceRadius()+50, 0))
	r.step(0, world.NewShipEvent(raider, e, world.EventProvoke|world.EventBoard))
	r.c.IssueMoveTarget(r.player, geom.Pt(400, 400), nil)

	snap := r.c.Snapshot()
	if len(snap.Ships) == 0 || len(snap.Ledger) == 0 {
		t.Fatalf("expected ship state and ledger rows, got %+v", snap)
	}

	fresh := New(WithSeed(7))
	fresh.Restore(snap, r.ships)
	again := fresh.Snapshot()
	if !reflect.DeepEqual(snap, again) {
		t.Fatalf("restore should reproduce the snapshot\nwant %+v\ngot  %+v", snap, again)
	}

	set, ok := fresh.Orders(e.ID)
	if !ok || !set.Has(orders.MoveTo) || set.TargetSystem != r.home {
		t.Fatalf("move order should survive with its system, got %s", set.Types())
	}
	if fresh.FenceCount(raider.ID) == 0 {
		t.Fatal("fence count should survive")
	}
	if !fresh.hasBoarded(raider, e) {
		t.Fatal("boarding history should survive")
	}
}

func TestSnapshot_DropsUnknownGovernment(t *testing.T) {
	c := New()
	c.Restore(Snapshot{Ledger: []LedgerRow{
		{Kind: LedgerGovernment, Government: "Nobody", Target: 9, Events: world.EventProvoke},
	}}, nil)
	if got := c.Snapshot(); len(got.Ledger) != 0 {
		t.Fatalf("rows naming an unknown government should be dropped, got %+v", got.Ledger)
	}
}

func TestConditions(t *testing.T) {
	r := newRig(t)
	r.escort(2, geom.Pt(100, 0))
	r.add(3, r.pirate, geom.Pt(800, 0))
	r.step(0)

	got := map[string]int64{}
	for _, cond := range r.c.Conditions() {
		got[cond.Name] = cond.Value
	}
	want := map[string]int64{
		"government strength:Escort": 2000,
		"government strength:Pirate": 1000,
		"enemy strength":             1000,
		"enemy strength:Pirate":      2000,
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s: want %d, got %d", name, v, got[name])
		}
	}
}
