package ai

import (
	"math"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

const (
	swarmThreshold = 7   // hosts with this many swarmers are full
	swarmJitter    = 4   // random spread added to host counts
	swarmRetarget  = 600 // one-in-n chance per tick of picking a new host

	secretiveFlee = 1000.

	surveillancePlanetRadius = 130. // larger bodies are not worth a flyby
	surveillanceLeave        = 100  // one-in-n chance per tick of leaving a scanned planet

	harvestRange   = 800.
	harvestHorizon = 600.
	harvestFacing  = .9
	harvestNear    = 100.
	harvestSearch  = 10 // NPCs look for flotsam one tick in n

	miningSearch   = 600.
	miningCone     = .7071 // cos 45°
	miningLost     = 1600.
	miningBudget   = 3600
	miningBelt     = 1500.
	miningWalk     = 1. // degrees of drift per tick in the sweep heading
	miningTurnAway = 200.
	minerCargoFree = 5

	serviceFuel = .25
)

// --- Swarming ---

// swarmable reports a ship a swarmer may latch on to.
func (c *Controller) swarmable(ship, host *world.Ship) bool {
	return host != ship && c.ShipAlive(host) && host.System == ship.System && host.Zoom >= 1 &&
		!host.Personality.IsSwarming() && host.IsTargetable() && !host.Government.IsEnemy(ship.Government)
}

// doSwarm keeps a swarming ship buzzing around a host, spreading swarmers
// across the hosts in the system.
func (c *Controller) doSwarm(ship *world.Ship, cmd *world.MovementCommand) {
	if par := ship.Parent; par != nil {
		par.RemoveEscort(ship)
		ship.Parent = nil
	}
	host := ship.TargetShip
	if host == nil || !c.swarmable(ship, host) || c.rng.Intn(swarmRetarget) == 0 {
		c.unswarm(ship.ID)
		host = nil
		best := swarmThreshold
		for _, o := range c.ships {
			if !c.swarmable(ship, o) {
				continue
			}
			if n := c.swarmCount[o.ID] + c.rng.Intn(swarmJitter); n < best {
				best = n
				host = o
			}
		}
		ship.TargetShip = host
		if host != nil {
			c.swarmCount[host.ID]++
			c.swarmTarget[ship.ID] = host.ID
		}
	}
	if host != nil {
		Swarm(ship, cmd, host)
		return
	}
	Refuel(ship, cmd)
}

// unswarm releases id's claim on its host.
func (c *Controller) unswarm(id world.ShipID) {
	host, ok := c.swarmTarget[id]
	if !ok {
		return
	}
	delete(c.swarmTarget, id)
	if n := c.swarmCount[host]; n > 1 {
		c.swarmCount[host] = n - 1
	} else {
		delete(c.swarmCount, host)
	}
}

// --- Secretive ---

// doSecretive runs from any ship scanning this one from close enough to
// finish. It returns true while fleeing.
func (c *Controller) doSecretive(ship *world.Ship, cmd *world.MovementCommand) bool {
	for _, o := range c.ships {
		if o == ship || o.System != ship.System || o.TargetShip != ship || !o.Commands().Has(world.Scan) {
			continue
		}
		power := math.Max(o.Attributes.Get("cargo scan power"), o.Attributes.Get("outfit scan power"))
		if power <= 0 {
			continue
		}
		r := 2 * 100 * math.Sqrt(power)
		if o.Position.DistanceSquared(ship.Position) > r*r {
			continue
		}
		away := ship.Position.Sub(o.Position).Unit()
		if isConstrained(ship) {
			fence := ship.System.InvisibleFenceRadius()
			if ship.Position.Length() > .8*fence {
				away = away.Sub(ship.Position.Unit()).Unit()
			}
		}
		MoveTo(ship, cmd, ship.Position.Add(away.Mul(secretiveFlee)), geom.Point{}, 10, 1, 0)
		return true
	}
	return false
}

// --- Surveillance ---

// doSurveillance patrols a surveillance ship: it chases enemies, scans
// ships and planets, and hops to neighbouring systems.
func (c *Controller) doSurveillance(ship *world.Ship, cmd *world.MovementCommand) {
	if t := ship.TargetShip; t != nil && c.ShipAlive(t) && t.System == ship.System &&
		t.Government.IsEnemy(ship.Government) {
		c.moveIndependent(ship, cmd)
		return
	}
	if sys := ship.TargetSystem; sys != nil {
		PrepareForHyperspace(ship, cmd)
		cmd.Set(world.Jump | world.Deploy)
		return
	}
	if o := ship.TargetStellar; o != nil {
		MoveToPlanet(ship, cmd)
		scan := ship.Attributes.Get("atmosphere scan")
		reach := 100*math.Sqrt(scan) + o.Radius
		switch {
		case scan > 0 && ship.Position.Distance(o.Position) < reach:
			if c.rng.Intn(surveillanceLeave) == 0 {
				ship.TargetStellar = nil
			}
		case scan <= 0 && o.CanLand(ship):
			cmd.Set(world.Land)
		}
		return
	}

	scans, ticks := scanBudget(ship)
	if t := ship.TargetShip; t != nil && c.ShipAlive(t) && t.System == ship.System {
		if c.needsScan(ship, t) && c.scanCount[ship.ID] < scans && c.scanTime[ship.ID] < ticks {
			CircleAround(ship, cmd, t.Position)
			cmd.Set(world.Scan)
			return
		}
		ship.TargetShip = nil
	}

	if t := c.FindTarget(ship); t != nil && t.Government.IsEnemy(ship.Government) {
		ship.TargetShip = t
		c.moveIndependent(ship, cmd)
		return
	}

	var targets []*world.Ship
	if c.scanCount[ship.ID] < scans && c.scanTime[ship.ID] < ticks && c.canScan(ship) {
		for _, o := range c.ships {
			if o != ship && o.System == ship.System && o.Government != ship.Government &&
				o.IsTargetable() && c.needsScan(ship, o) {
				targets = append(targets, o)
			}
		}
	}
	var planets []*world.StellarObject
	if ship.Attributes.Get("atmosphere scan") > 0 {
		for _, o := range ship.System.Objects {
			if !o.IsStar() && o.Radius < surveillancePlanetRadius {
				planets = append(planets, o)
			}
		}
	}
	var systems []*world.System
	if ship.JumpsRemaining() > 0 {
		for _, l := range ship.System.Links {
			if ship.HyperspaceType(l) != world.DriveNone {
				systems = append(systems, l)
			}
		}
	}

	total := len(targets) + len(planets) + len(systems)
	if total == 0 {
		CircleAround(ship, cmd, geom.Point{})
		return
	}
	i := c.rng.Intn(total)
	switch {
	case i < len(targets):
		ship.TargetShip = targets[i]
	case i < len(targets)+len(planets):
		ship.TargetStellar = planets[i-len(targets)]
	default:
		ship.TargetSystem = systems[i-len(targets)-len(planets)]
	}
}

// --- Harvesting and mining ---

// doHarvesting collects loose cargo. Escorts under orders search every
// tick and in every direction; NPCs only glance now and then at what lies
// ahead. It returns false when there is nothing to collect.
func (c *Controller) doHarvesting(ship *world.Ship, cmd *world.MovementCommand, escort bool) bool {
	if ship.Cargo == nil || ship.Cargo.Free() <= 0 {
		ship.TargetFlotsam = nil
		return false
	}
	f := ship.TargetFlotsam
	if f != nil && (!f.IsLive() || f.Position.DistanceSquared(ship.Position) > harvestRange*harvestRange) {
		f = nil
		ship.TargetFlotsam = nil
	}
	if f == nil {
		if !escort && c.rng.Intn(harvestSearch) != 0 {
			return false
		}
		f = c.findFlotsam(ship, escort)
		if f == nil {
			return false
		}
		ship.TargetFlotsam = f
	}
	PickUp(ship, cmd, f.Position, f.Velocity)
	return true
}

// findFlotsam returns the soonest reachable box near ship.
func (c *Controller) findFlotsam(ship *world.Ship, anyDirection bool) *world.Flotsam {
	facing := ship.Facing.Unit()
	speed := cruiseSpeed(ship)
	var best *world.Flotsam
	soonest := harvestHorizon
	for _, f := range c.flotsam {
		if !f.IsLive() || f.Source == ship {
			continue
		}
		d := f.Position.Sub(ship.Position)
		if d.LengthSquared() > harvestRange*harvestRange {
			continue
		}
		if !anyDirection && d.Length() > harvestNear && d.Unit().Dot(facing) < harvestFacing {
			continue
		}
		t := geom.RendezvousTime(d, f.Velocity.Sub(ship.Velocity), speed)
		if math.IsNaN(t) || t >= soonest {
			continue
		}
		soonest = t
		best = f
	}
	return best
}

// doMining sweeps an asteroid belt on a slowly wandering heading and shoots
// the first reachable rock it sees.
func (c *Controller) doMining(ship *world.Ship, cmd *world.MovementCommand, fire *world.FireCommand) {
	angle, ok := c.miningAngle[ship.ID]
	if !ok {
		angle = geom.Degrees(c.rng.Float64() * 360)
	}
	angle = angle.AddDegrees((2*c.rng.Float64() - 1) * miningWalk)

	m := ship.TargetAsteroid
	if m != nil && (!c.AsteroidAlive(m) || m.Position.DistanceSquared(ship.Position) > miningLost*miningLost) {
		m = nil
		ship.TargetAsteroid = nil
	}
	if m == nil {
		m = c.findMinable(ship, angle)
		ship.TargetAsteroid = m
	}
	if m != nil {
		c.miningAngle[ship.ID] = angle
		MoveToAttack(ship, cmd, m.Position, m.Velocity)
		c.AutoFireAt(ship, fire, m)
		return
	}

	heading := angle.Unit().Mul(miningBelt)
	if heading.Distance(ship.Position) < miningTurnAway {
		angle = angle.AddDegrees(90)
	}
	c.miningAngle[ship.ID] = angle
	MoveTo(ship, cmd, heading, geom.Point{}, miningTurnAway, 1, .5*cruiseSpeed(ship))
}

// findMinable returns the nearest live rock inside the cone ahead of the
// sweep heading that ship can keep pace with.
func (c *Controller) findMinable(ship *world.Ship, heading geom.Angle) *world.Minable {
	dir := heading.Unit()
	speed := cruiseSpeed(ship)
	var best *world.Minable
	closest := miningSearch * miningSearch
	for _, m := range c.minables {
		if !c.AsteroidAlive(m) || m.Velocity.Length() > speed {
			continue
		}
		d := m.Position.Sub(ship.Position)
		dsq := d.LengthSquared()
		if dsq >= closest || d.Unit().Dot(dir) < miningCone {
			continue
		}
		closest = dsq
		best = m
	}
	return best
}

// --- Carried ships ---

// reparentCarried finds a fighter a carrier, or at least company. Player
// fighters prefer the flagship. A player fighter with nowhere to go parks;
// reparentCarried then returns true.
func (c *Controller) reparentCarried(ship *world.Ship, cmd *world.MovementCommand) bool {
	par := ship.Parent
	usable := par != nil && c.ShipAlive(par) && par.System == ship.System &&
		!par.Government.IsEnemy(ship.Government)
	if usable && par.CanCarry(ship) {
		if f := c.player.flagship(); ship.IsYours && f != nil && f != par && c.carrierFor(f, ship) {
			par.RemoveEscort(ship)
			f.AddEscort(ship)
		}
		return false
	}

	if carrier := c.findCarrier(ship); carrier != nil {
		if par != nil {
			par.RemoveEscort(ship)
		}
		carrier.AddEscort(ship)
		return false
	}
	if usable {
		return false
	}
	if par != nil {
		par.RemoveEscort(ship)
		ship.Parent = nil
	}
	if !ship.IsYours {
		for _, o := range c.ships {
			if o != ship && c.ShipAlive(o) && o.System == ship.System && o.Government == ship.Government &&
				!o.CanBeCarried() && !o.Disabled {
				o.AddEscort(ship)
				return false
			}
		}
		return false
	}
	Stop(ship, cmd, 0, geom.Point{})
	return true
}

// carrierFor reports whether carrier can take ship in right now.
func (c *Controller) carrierFor(carrier, ship *world.Ship) bool {
	return carrier != ship && c.ShipAlive(carrier) && carrier.System == ship.System &&
		!carrier.Disabled && carrier.CanCarry(ship)
}

// findCarrier returns a carrier with room for ship: the flagship for the
// player's fighters, otherwise any ship of the same government.
func (c *Controller) findCarrier(ship *world.Ship) *world.Ship {
	if f := c.player.flagship(); ship.IsYours && f != nil && c.carrierFor(f, ship) {
		return f
	}
	for _, o := range c.ships {
		if o.Government == ship.Government && o.IsYours == ship.IsYours && c.carrierFor(o, ship) {
			return o
		}
	}
	return nil
}

// parentDeploying reports a carrier that wants its fighters out.
func (c *Controller) parentDeploying(par *world.Ship) bool {
	if par.IsYours && c.isLaunching {
		return true
	}
	return par.Commands().Has(world.Deploy)
}

// needsService reports a fighter that should go home to refuel, rearm or
// repair, or to unload a full hold.
func (c *Controller) needsService(ship *world.Ship) bool {
	if ship.FuelCapacity() > 0 && ship.Fuel < serviceFuel {
		return true
	}
	if outOfAmmo(ship) {
		return true
	}
	if ship.Health() < cowardHealth && (!ship.IsYours || c.prefs.DamagedFightersRetreat) {
		return true
	}
	return ship.IsYours && c.prefs.FightersTransferCargo && ship.Cargo != nil &&
		ship.Cargo.Size() > 0 && ship.Cargo.Free() == 0
}

// dockToParent flies a fighter back aboard its carrier when it needs
// service or the carrier is not deploying.
func (c *Controller) dockToParent(ship *world.Ship, cmd *world.MovementCommand) bool {
	par := ship.Parent
	if par == nil || !c.carrierFor(par, ship) {
		return false
	}
	if !c.needsService(ship) && c.parentDeploying(par) {
		return false
	}
	ship.TargetShip = par
	MoveTo(ship, cmd, par.Position, par.Velocity, assistRadius, assistSlow, 0)
	cmd.Set(world.Board)
	return true
}

// mustRecall reports a carrier with nothing to fight whose fighters are
// still out. It waits for them to dock.
func (c *Controller) mustRecall(ship *world.Ship) bool {
	if !ship.HasBays() || ship.TargetShip != nil {
		return false
	}
	if ship.IsYours && c.isLaunching {
		return false
	}
	return c.fightersOut(ship)
}

// fightersOut reports a live escort of ship flying in its system that one
// of its bays could take.
func (c *Controller) fightersOut(ship *world.Ship) bool {
	for _, e := range ship.Escorts {
		if c.ShipAlive(e) && e.System == ship.System && !e.Disabled && ship.CanCarry(e) {
			return true
		}
	}
	return false
}
