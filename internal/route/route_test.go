package route

import (
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPlanner struct {
	calls     int
	knowledge []Knowledge
}

func (p *countingPlanner) Plan(ship *world.Ship, dest *world.System, k Knowledge) Plan {
	p.calls++
	p.knowledge = append(p.knowledge, k)
	return Plan{Hops: []*world.System{dest}, FuelCosts: []float64{100}, RequiredFuel: 100}
}

type knowsNothing struct{}

func (knowsNothing) Knows(*world.System) bool { return false }

func fixture() (*world.Ship, *world.System) {
	home := world.NewSystem("Home", geom.Point{})
	dest := world.NewSystem("Dest", geom.Pt(50, 0))
	world.Link(home, dest)
	s := world.NewShip(1, "runner", world.NewGovernment("Merchant"), home)
	s.Attributes["hyperdrive"] = 1
	return s, dest
}

func TestCache_HitsOnSameKey(t *testing.T) {
	p := &countingPlanner{}
	c := NewCache(p)
	ship, dest := fixture()

	first := c.Get(ship, dest, nil)
	second := c.Get(ship, dest, nil)

	require.True(t, first.HasRoute())
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.calls)
	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestCache_JumpRangeIsPartOfKey(t *testing.T) {
	p := &countingPlanner{}
	c := NewCache(p)
	ship, dest := fixture()

	c.Get(ship, dest, nil)
	ship.Attributes["jump range"] = 500
	c.Get(ship, dest, nil)
	assert.Equal(t, 2, p.calls)
}

func TestCache_WormholeKeysFlushOnlyOnChange(t *testing.T) {
	p := &countingPlanner{}
	c := NewCache(p)
	ship, dest := fixture()

	assert.True(t, c.SetWormholeKeys([]string{"b", "a"}))
	c.Get(ship, dest, nil)
	assert.False(t, c.SetWormholeKeys([]string{"a", "b"}), "same set in another order")
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.SetWormholeKeys([]string{"a"}))
	assert.Equal(t, 0, c.Len())
}

func TestCache_NPCsPlanWithFullKnowledge(t *testing.T) {
	p := &countingPlanner{}
	c := NewCache(p)
	ship, dest := fixture()

	c.Get(ship, dest, knowsNothing{})
	require.Len(t, p.knowledge, 1)
	assert.Nil(t, p.knowledge[0])

	ship.IsYours = true
	ship.Government = world.NewPlayerGovernment("Escort")
	c.Get(ship, dest, knowsNothing{})
	require.Len(t, p.knowledge, 2)
	assert.NotNil(t, p.knowledge[1])
}

func TestCache_NilInputsGiveEmptyPlan(t *testing.T) {
	c := NewCache(&countingPlanner{})
	ship, _ := fixture()
	assert.False(t, c.Get(ship, nil, nil).HasRoute())
	assert.False(t, NewCache(nil).Get(ship, ship.System, nil).HasRoute())
}

// viaPlanner routes through via, but only when the planner may use it.
type viaPlanner struct{ via *world.System }

func (p viaPlanner) Plan(ship *world.Ship, dest *world.System, k Knowledge) Plan {
	if k != nil && !k.Knows(p.via) {
		return Plan{}
	}
	return Plan{Hops: []*world.System{p.via, dest}}
}

type knownSet map[*world.System]bool

func (k knownSet) Knows(s *world.System) bool { return k[s] }

func TestCache_PlayerPlansKeptApartFromNPCPlans(t *testing.T) {
	ship, dest := fixture()
	via := world.NewSystem("Via", geom.Pt(25, 0))
	c := NewCache(viaPlanner{via: via})
	known := knownSet{ship.System: true}

	npc := c.Get(ship, dest, known)
	require.Len(t, npc.Hops, 2, "NPCs see the whole map")

	ship.IsYours = true
	assert.False(t, c.Get(ship, dest, known).HasRoute(),
		"a player ship must not reuse a plan made with the whole map")
}

func TestCache_KnownSystemsFlushOnDiscovery(t *testing.T) {
	ship, dest := fixture()
	ship.IsYours = true
	via := world.NewSystem("Via", geom.Pt(25, 0))
	c := NewCache(viaPlanner{via: via})
	known := knownSet{ship.System: true}

	assert.True(t, c.SetKnownSystems(len(known)))
	assert.False(t, c.Get(ship, dest, known).HasRoute())
	assert.False(t, c.SetKnownSystems(len(known)), "no discovery, no flush")
	assert.Equal(t, 1, c.Len())

	known[via] = true
	assert.True(t, c.SetKnownSystems(len(known)))
	assert.Len(t, c.Get(ship, dest, known).Hops, 2, "the new system opens the route")
}
