package ai

import (
	"github.com/Garsondee/Ship-Sense/internal/formation"
	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/route"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

const (
	helpOdds = 30 // one-in-n chance per tick that a stricken ship calls for help

	timidRange      = 500. // timid escorts stay this close to their parent
	fenceLookahead  = 120. // ticks a target is extrapolated against the fence
	lingerCap       = 18000
	landClearRange  = 100.
	hoverRadius     = 20.
	orderArrive     = 10.
	orderArriveSlow = .1

	systemWeightBase   = 11.
	systemWeightFacing = 10.
	planetWeightBase   = 1
	planetWeightJumps  = 40
)

// --- Help ---

// askForHelp picks a nearby ship to come to victim's aid. Faster ships are
// more likely to be picked.
func (c *Controller) askForHelp(victim *world.Ship) {
	if _, ok := c.helperList[victim.ID]; ok {
		return
	}
	stranded := !victim.Disabled
	total := 0.
	for _, h := range c.ships {
		if c.canHelp(h, victim, stranded) {
			total += cruiseSpeed(h)
		}
	}
	if total <= 0 {
		return
	}
	pick := c.rng.Float64() * total
	var helper *world.Ship
	for _, h := range c.ships {
		if !c.canHelp(h, victim, stranded) {
			continue
		}
		helper = h
		if pick -= cruiseSpeed(h); pick < 0 {
			break
		}
	}
	helper.ShipToAssist = victim
	c.helperList[victim.ID] = helper.ID
	c.log.Debug().Uint64("ship", uint64(victim.ID)).Uint64("helper", uint64(helper.ID)).
		Int("tick", c.tick).Bool("stranded", stranded).Msg("help requested")
}

// canHelp reports whether h is free, friendly and able to reach victim.
func (c *Controller) canHelp(h, victim *world.Ship, stranded bool) bool {
	if h == victim || !c.ShipAlive(h) || h.System != victim.System || h.Zoom < 1 {
		return false
	}
	if h.Disabled || h.IsHyperspacing() || h.IsParked || h == c.player.flagship() {
		return false
	}
	if (h.ShipToAssist != nil && h.ShipToAssist != victim) || h.TargetAsteroid != nil || h.TargetFlotsam != nil {
		return false
	}
	if h.Government == nil || h.Government.IsEnemy(victim.Government) {
		return false
	}
	if victim.IsYours && !h.IsYours && h.Government.Language != "" {
		if pg := c.player.Government(); pg == nil || pg.Language != h.Government.Language {
			return false
		}
	}
	if stranded && h.FuelAmount() < h.JumpFuel(nil)+victim.JumpFuel(nil) {
		return false
	}
	return true
}

// --- Escort decisions ---

// reactToParent chooses between flying with the parent and flying alone.
func (c *Controller) reactToParent(ship *world.Ship, cmd *world.MovementCommand) {
	par := ship.Parent
	p := ship.Personality
	switch {
	case par == nil || !c.ShipAlive(par) || (par.Disabled && !ship.IsYours):
		c.moveIndependent(ship, cmd)
	case par.System != ship.System:
		if p.IsStaying() || ship.JumpFuel(nil) <= 0 {
			c.moveIndependent(ship, cmd)
			return
		}
		c.moveEscort(ship, cmd)
	case p.IsStaying() || par.Government.IsEnemy(ship.Government):
		c.moveIndependent(ship, cmd)
	case par.Disabled:
		MoveTo(ship, cmd, par.Position, par.Velocity, assistRadius, assistSlow, 0)
		cmd.Set(world.Board)
	case par.Commands().Has(world.Jump) && par.TargetSystem != nil && ship.JumpsRemaining() > 0:
		c.jumpWithParent(ship, cmd, par)
	case p.IsTimid() && ship.Position.Distance(par.Position) > timidRange:
		c.moveEscort(ship, cmd)
	case c.engaged(ship) || (p.IsHunting() && ship.TargetShip != nil):
		c.moveIndependent(ship, cmd)
	default:
		c.moveEscort(ship, cmd)
	}
}

// engaged reports a target within attack range.
func (c *Controller) engaged(ship *world.Ship) bool {
	t := ship.TargetShip
	if t == nil || !c.ShipAlive(t) || t.System != ship.System {
		return false
	}
	r := c.tuning.AttackRange
	return t.Position.DistanceSquared(ship.Position) < r*r
}

// friendlyOverride reports an attack order against a ship that is not
// hostile.
func (c *Controller) friendlyOverride(ship, target *world.Ship) bool {
	if !ship.IsYours {
		return false
	}
	set, ok := c.orders[ship.ID]
	return ok && set.Has(orders.Attack|orders.FinishOff) && set.TargetShip == target
}

// moveIndependent flies a ship on its own account: fight, scan, or travel.
func (c *Controller) moveIndependent(ship *world.Ship, cmd *world.MovementCommand) {
	t := ship.TargetShip
	if t != nil && (!c.ShipAlive(t) || t.System != ship.System) {
		t = nil
	}
	if isConstrained(ship) && c.returnInsideFence(ship, cmd, t) {
		return
	}

	p := ship.Personality
	if t != nil {
		if t.Government.IsEnemy(ship.Government) || c.friendlyOverride(ship, t) {
			if t.Disabled && p.Plunders() && !c.hasBoarded(ship, t) && ship.Cargo != nil && ship.Cargo.Free() > 0 {
				MoveTo(ship, cmd, t.Position, t.Velocity, assistRadius, assistSlow, 0)
				cmd.Set(world.Board)
				return
			}
			Attack(ship, cmd, t)
			return
		}
		if !ship.IsYours && c.needsScan(ship, t) && c.canScan(ship) {
			CircleAround(ship, cmd, t.Position)
			cmd.Set(world.Scan)
			return
		}
		ship.TargetShip = nil
	}

	// Ships out on their own because of a target do not make travel plans.
	if par := ship.Parent; par != nil && c.ShipAlive(par) && !p.IsStaying() {
		if ship.JumpFuel(nil) > 0 && ship.JumpsRemaining() == 0 {
			Refuel(ship, cmd)
		}
		return
	}
	if ship.FuelCapacity() > 0 && ship.JumpFuel(nil) > 0 && ship.JumpsRemaining() == 0 && ship.Fuel < 1 &&
		Refuel(ship, cmd) {
		return
	}

	if o := ship.TargetStellar; o != nil && !hasObject(ship.System, o) {
		ship.TargetStellar = nil
	}
	if ship.TargetSystem == nil && ship.TargetStellar == nil {
		if p.IsLingering() && ship.LingerSteps < lingerCap {
			ship.LingerSteps++
			Stop(ship, cmd, 0, geom.Point{})
			return
		}
		c.pickDestination(ship)
	}

	if sys := ship.TargetSystem; sys != nil {
		if ship.HyperspaceType(sys) == world.DriveNone {
			c.travelTo(ship, cmd, sys)
			return
		}
		PrepareForHyperspace(ship, cmd)
		if c.fightersOut(ship) {
			return
		}
		cmd.Set(world.Jump)
		if len(ship.Escorts) > 0 && !c.fleetReady(ship) {
			cmd.Set(world.Wait)
		}
		return
	}
	if o := ship.TargetStellar; o != nil {
		MoveToPlanet(ship, cmd)
		switch {
		case !p.IsStaying() && o.CanLand(ship):
			cmd.Set(world.Land)
		case ship.Position.Distance(o.Position) < landClearRange:
			ship.TargetStellar = nil
		}
		return
	}
	Stop(ship, cmd, 0, geom.Point{})
}

// returnInsideFence turns a constrained ship back toward the system center
// when its chase would take it past the fence.
func (c *Controller) returnInsideFence(ship *world.Ship, cmd *world.MovementCommand, t *world.Ship) bool {
	r := ship.System.InvisibleFenceRadius()
	var back bool
	if t != nil {
		ahead := t.Position.Add(t.Velocity.Mul(fenceLookahead))
		back = ahead.LengthSquared() > r*r || !c.canPursue(ship, t)
	} else {
		back = c.fenceCount[ship.ID] >= c.tuning.FenceMax
	}
	if !back {
		return false
	}
	MoveTo(ship, cmd, geom.Point{}, geom.Point{}, assistRadius, assistSlow, 0)
	if ship.Velocity.Dot(ship.Position) > 0 {
		cmd.Set(world.Forward)
	}
	return true
}

// hasObject reports whether o belongs to sys.
func hasObject(sys *world.System, o *world.StellarObject) bool {
	if sys == nil {
		return false
	}
	for _, x := range sys.Objects {
		if x == o {
			return true
		}
	}
	return false
}

// pickDestination chooses where a ship with nothing to do goes next: a
// neighbouring system, favouring the one ahead, or a spaceport, favoured
// more the fewer jumps the tank holds. Staying ships hover over an object
// in their own system.
func (c *Controller) pickDestination(ship *world.Ship) {
	sys := ship.System
	if ship.Personality.IsStaying() {
		if n := len(sys.Objects); n > 0 {
			ship.TargetStellar = sys.Objects[c.rng.Intn(n)]
		}
		return
	}

	jumps := ship.JumpsRemaining()
	facing := ship.Facing.Unit()
	var systems []*world.System
	var weights []int
	total := 0
	if jumps > 0 {
		for _, l := range sys.Links {
			if ship.HyperspaceType(l) == world.DriveNone {
				continue
			}
			dir := l.Position.Sub(sys.Position).Unit()
			w := max(1, int(systemWeightBase+systemWeightFacing*facing.Dot(dir)))
			systems = append(systems, l)
			weights = append(weights, w)
			total += w
		}
	}
	planetWeight := planetWeightBase + planetWeightJumps/max(jumps, 1)
	var planets []*world.StellarObject
	for _, o := range sys.Objects {
		if o.Planet != nil && o.Planet.Spaceport && !o.Planet.IsWormhole() && o.CanLand(ship) {
			planets = append(planets, o)
			total += planetWeight
		}
	}
	if total == 0 {
		return
	}
	roll := c.rng.Intn(total)
	for i, l := range systems {
		if roll < weights[i] {
			ship.TargetSystem = l
			return
		}
		roll -= weights[i]
	}
	ship.TargetStellar = planets[min(roll/planetWeight, len(planets)-1)]
}

// moveEscort keeps ship with its parent: into the same system, onto the
// same planet, through the same jump, or on station alongside.
func (c *Controller) moveEscort(ship *world.Ship, cmd *world.MovementCommand) {
	par := ship.Parent
	if ship.JumpFuel(nil) > 0 && ship.JumpsRemaining() == 0 && ship.System.HasFuelFor(ship) {
		Refuel(ship, cmd)
		return
	}
	if par.System != ship.System {
		c.travelTo(ship, cmd, par.System)
		return
	}
	if par.Landing || (par.TargetStellar != nil && par.Commands().Has(world.Land)) {
		if par.TargetStellar != nil {
			ship.TargetStellar = par.TargetStellar
			MoveToPlanet(ship, cmd)
		}
		if par.Landing {
			cmd.Set(world.Land)
		}
		return
	}
	if par.Commands().Has(world.Board) && par.TargetShip == ship {
		Stop(ship, cmd, .2, geom.Point{})
		return
	}
	if par.Commands().Has(world.Jump) && par.TargetSystem != nil {
		c.jumpWithParent(ship, cmd, par)
		return
	}
	if ship.Formation != nil {
		lead := formation.Lead{Position: par.Position, Velocity: par.Velocity, Facing: par.Facing}
		slot := c.positioner(par, ship.Formation).Position(uint64(ship.ID), lead)
		keepStationAt(ship, cmd, slot, par.Velocity, par.Facing)
		return
	}
	KeepStation(ship, cmd, par)
}

// jumpWithParent follows the parent's jump, holding on WAIT until every
// escort that can jump is lined up.
func (c *Controller) jumpWithParent(ship *world.Ship, cmd *world.MovementCommand, par *world.Ship) {
	dest := par.TargetSystem
	if ship.HyperspaceType(dest) == world.DriveNone {
		if next := c.planRoute(ship, dest).FirstStep(); next != nil {
			dest = next
		}
	}
	ship.TargetSystem = dest
	if ship.FuelAmount() < ship.JumpFuel(dest) {
		Refuel(ship, cmd)
		return
	}
	PrepareForHyperspace(ship, cmd)
	cmd.Set(world.Jump)
	if !par.IsHyperspacing() && !c.fleetReady(par) {
		cmd.Set(world.Wait)
	}
}

// fleetReady decides once per tick whether lead and its escorts go. The
// lead and every escort read the same answer, so they all drop WAIT on
// the same tick whatever order they are dispatched in.
func (c *Controller) fleetReady(lead *world.Ship) bool {
	if ready, ok := c.jumpReady[lead.ID]; ok {
		return ready
	}
	ready := lead.IsReadyToJump(true) && c.escortsReady(lead)
	c.jumpReady[lead.ID] = ready
	return ready
}

// escortsReady reports whether every escort of lead that can jump is ready
// to. Fighters ride in bays and are skipped. An escort already entering
// hyperspace toward the lead's target counts as ready.
func (c *Controller) escortsReady(lead *world.Ship) bool {
	ships := lead.Escorts
	if c.player != nil && lead == c.player.flagship() {
		ships = c.player.Ships
	}
	for _, e := range ships {
		if e == lead || !c.ShipAlive(e) || e.System != lead.System || e.CanBeCarried() ||
			e.Disabled || e.IsParked || e.JumpFuel(nil) <= 0 {
			continue
		}
		if e.IsHyperspacing() {
			if e.TargetSystem != lead.TargetSystem {
				return false
			}
			continue
		}
		if !e.IsReadyToJump(true) {
			return false
		}
	}
	return true
}

// travelTo takes one step of the route toward dest: refuel, enter a
// wormhole, or jump.
func (c *Controller) travelTo(ship *world.Ship, cmd *world.MovementCommand, dest *world.System) {
	if dest == nil || dest == ship.System {
		return
	}
	if ship.JumpFuel(nil) > 0 && ship.JumpsRemaining() == 0 && Refuel(ship, cmd) {
		return
	}
	next := c.planRoute(ship, dest).FirstStep()
	if next == nil {
		if ship.HyperspaceType(dest) == world.DriveNone {
			Stop(ship, cmd, 0, geom.Point{})
			return
		}
		next = dest
	}
	for _, o := range ship.System.Objects {
		if o.Planet != nil && o.Planet.IsWormhole() && o.Planet.Wormhole.Destination(ship.System) == next &&
			o.CanLand(ship) {
			ship.TargetStellar = o
			MoveToPlanet(ship, cmd)
			cmd.Set(world.Land)
			return
		}
	}
	cost := ship.JumpFuel(next)
	if ship.FuelAmount() < 2*cost && !next.HasFuelFor(ship) && ship.System.HasFuelFor(ship) && Refuel(ship, cmd) {
		return
	}
	ship.TargetSystem = next
	PrepareForHyperspace(ship, cmd)
	cmd.Set(world.Jump)
}

// planRoute looks up the route cache, planning with the player's map
// knowledge for the player's ships.
func (c *Controller) planRoute(ship *world.Ship, dest *world.System) route.Plan {
	h0, m0 := c.routes.Stats()
	var k route.Knowledge
	if ship.IsYours && c.player != nil {
		k = c.player
	}
	plan := c.routes.Get(ship, dest, k)
	if h1, m1 := c.routes.Stats(); h1+m1 != h0+m0 {
		c.metrics.RouteLookup(h1 > h0)
	}
	return plan
}

// --- Orders ---

// followOrders flies a player escort under a standing order. It returns
// false when the ship has no order that decides its movement.
func (c *Controller) followOrders(ship *world.Ship, cmd *world.MovementCommand, fire *world.FireCommand) bool {
	set, ok := c.orders[ship.ID]
	if !ok {
		return false
	}
	switch {
	case set.Has(orders.MoveTo | orders.HoldActive | orders.HoldPosition):
		if set.TargetSystem != nil && ship.System != set.TargetSystem {
			c.travelTo(ship, cmd, set.TargetSystem)
			return true
		}
		if ship.Position.Distance(set.TargetPoint) > hoverRadius {
			MoveTo(ship, cmd, set.TargetPoint, geom.Point{}, orderArrive, orderArriveSlow, 0)
			return true
		}
		if !Stop(ship, cmd, 0, geom.Point{}) {
			return true
		}
		if t := ship.TargetShip; t != nil && c.ShipAlive(t) && t.System == ship.System &&
			t.Government.IsEnemy(ship.Government) {
			cmd.SetTurn(TurnToward(ship, TargetAim(ship, t.Position, t.Velocity)))
		}
		return true
	case set.Has(orders.KeepStation|orders.Gather) && set.TargetShip != nil:
		t := set.TargetShip
		if t.System != ship.System {
			c.travelTo(ship, cmd, t.System)
			return true
		}
		if set.Has(orders.KeepStation) {
			KeepStation(ship, cmd, t)
		} else {
			CircleAround(ship, cmd, t.Position)
		}
		return true
	case set.Has(orders.Attack|orders.FinishOff) && set.TargetShip != nil:
		ship.TargetShip = set.TargetShip
		c.moveIndependent(ship, cmd)
		return true
	case set.Has(orders.Attack|orders.Mine) && set.TargetAsteroid != nil:
		a := set.TargetAsteroid
		ship.TargetAsteroid = a
		MoveToAttack(ship, cmd, a.Position, a.Velocity)
		c.AutoFireAt(ship, fire, a)
		return true
	case set.Has(orders.Harvest):
		return c.doHarvesting(ship, cmd, true)
	}
	return false
}
