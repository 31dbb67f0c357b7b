package sandbox

import (
	"github.com/Garsondee/Ship-Sense/internal/route"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// GraphPlanner finds the route with the fewest hops over hyperlanes,
// jump-drive reach and wormholes the ship may enter. Systems the player
// does not know are only entered as the destination.
type GraphPlanner struct {
	systems []*world.System
}

// NewGraphPlanner plans over the given systems.
func NewGraphPlanner(systems []*world.System) *GraphPlanner {
	return &GraphPlanner{systems: systems}
}

type hop struct {
	from *world.System
	cost float64
}

// Plan implements route.Planner.
func (g *GraphPlanner) Plan(ship *world.Ship, dest *world.System, k route.Knowledge) route.Plan {
	origin := ship.System
	if origin == nil || dest == nil || origin == dest {
		return route.Plan{}
	}
	prev := map[*world.System]hop{origin: {}}
	queue := []*world.System{origin}
	for len(queue) > 0 && !reached(prev, dest) {
		sys := queue[0]
		queue = queue[1:]
		g.neighbours(ship, sys, func(next *world.System, cost float64) {
			if _, seen := prev[next]; seen {
				return
			}
			if k != nil && next != dest && !k.Knows(next) {
				return
			}
			prev[next] = hop{from: sys, cost: cost}
			queue = append(queue, next)
		})
	}
	if !reached(prev, dest) {
		return route.Plan{}
	}

	var plan route.Plan
	for sys := dest; sys != origin; sys = prev[sys].from {
		plan.Hops = append(plan.Hops, sys)
		plan.FuelCosts = append(plan.FuelCosts, prev[sys].cost)
		plan.RequiredFuel += prev[sys].cost
	}
	for i, j := 0, len(plan.Hops)-1; i < j; i, j = i+1, j-1 {
		plan.Hops[i], plan.Hops[j] = plan.Hops[j], plan.Hops[i]
		plan.FuelCosts[i], plan.FuelCosts[j] = plan.FuelCosts[j], plan.FuelCosts[i]
	}
	return plan
}

func reached(prev map[*world.System]hop, dest *world.System) bool {
	_, ok := prev[dest]
	return ok
}

// neighbours calls fn for every system one step from sys. Wormholes come
// first since they cost no fuel.
func (g *GraphPlanner) neighbours(ship *world.Ship, sys *world.System, fn func(*world.System, float64)) {
	for _, o := range sys.Objects {
		if o.Planet == nil || !o.Planet.IsWormhole() || !o.CanLand(ship) {
			continue
		}
		if next := o.Planet.Wormhole.Destination(sys); next != nil {
			fn(next, 0)
		}
	}
	if ship.HasHyperdrive() {
		for _, next := range sys.Links {
			fn(next, ship.HyperdriveFuel())
		}
	}
	if ship.HasJumpDrive() {
		for _, next := range g.systems {
			if next != sys && sys.Position.Distance(next.Position) <= ship.JumpRange() {
				fn(next, ship.JumpDriveFuel())
			}
		}
	}
}
