package ai

import (
	"fmt"
	"math"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/messages"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// --- Behavior thresholds ---

const (
	defaultAppeasement = .5  // health lost before an appeasing ship first dumps cargo
	appeasementStep    = .1  // extra loss required before the next dump
	appeasementBase    = 11. // tons dumped on top of the health-scaled share

	retreatHealth = .25 // below this non-daring ships flee
	cowardHealth  = .5  // cowards flee earlier

	cloakRange      = 2000.
	cloakHysteresis = 1.4
	cloakRetreat    = 2000.

	assistRadius = 40.
	assistSlow   = .8

	burnRange = 1000.

	carrierDeployHealth = .75 // NPC carriers recall fighters below this

	scatterDistanceSq = 400.
	scatterTolerance  = .05
	scatterFacing     = .95
)

// stepShip decides this tick's commands for one ship the player does not
// fly and stages them on it.
func (c *Controller) stepShip(ship *world.Ship) {
	if ship.Destroyed || ship.System == nil {
		return
	}
	var cmd world.MovementCommand
	fire := ship.StagedFireCommands()
	fire.Clear(len(ship.Hardpoints))
	c.dispatch(ship, &cmd, &fire)
	ship.SetCommands(cmd)
	ship.SetFireCommands(fire)
}

// dispatch runs the behavior rules in order. The first rule that returns
// decides the ship's movement for this tick.
func (c *Controller) dispatch(ship *world.Ship, cmd *world.MovementCommand, fire *world.FireCommand) {
	p := ship.Personality
	c.dropStaleTargets(ship)

	if ship.Disabled || isStranded(ship) {
		if !p.IsDerelict() && c.rng.Intn(helpOdds) == 0 {
			c.askForHelp(ship)
		}
		if !ship.Disabled {
			Stop(ship, cmd, 0, geom.Point{})
			return
		}
		if !ship.IsYours || c.isLaunching {
			cmd.Set(world.Deploy)
		}
		if p.IsAppeasing() {
			loss := 1 - ship.Health()
			c.appeasement[ship.ID] = math.Max(loss+appeasementStep, c.AppeasementThreshold(ship.ID))
		}
		return
	}
	if ship.Overheated {
		return
	}

	if ship.IsYours {
		if c.isLaunching && ship.System == c.player.System() {
			cmd.Set(world.Deploy)
		}
		if f := c.player.flagship(); f != nil && f.Commands().Has(world.Cloak) {
			cmd.Set(world.Cloak)
		}
	} else if c.doCloak(ship, cmd) {
		return
	}

	c.reparentLost(ship)

	present := ship.Zoom >= 1 && !ship.IsHyperspacing()
	if present && !p.IsSwarming() {
		if c.shouldRetarget(ship) {
			ship.TargetShip = c.FindTarget(ship)
		}
		if t := ship.TargetShip; t != nil && !t.Government.IsEnemy(ship.Government) && c.needsScan(ship, t) {
			c.scanTime[ship.ID]++
		}
	}

	c.AimTurrets(ship, fire, p.IsOpportunistic())
	c.AutoFire(ship, fire, true, false)

	if !present {
		return
	}

	ship.Fleeing = c.shouldFlee(ship)
	if ship.Fleeing && hasEscape(ship) {
		ship.TargetShip = nil
	}

	c.lowHealth(ship)

	if c.assist(ship, cmd) {
		return
	}
	if p.IsSwarming() {
		c.doSwarm(ship, cmd)
		return
	}
	if p.IsSecretive() && c.doSecretive(ship, cmd) {
		return
	}
	if p.IsSurveillance() {
		c.doSurveillance(ship, cmd)
		return
	}

	inPlayerSystem := ship.System == c.player.System()
	if inPlayerSystem && p.Harvests() && ship.TargetShip == nil && c.doHarvesting(ship, cmd, false) {
		return
	}
	if inPlayerSystem && p.IsMining() && ship.TargetShip == nil && ship.Cargo != nil &&
		ship.Cargo.Free() >= minerCargoFree && c.miningTime[ship.ID] < miningBudget {
		c.miningTime[ship.ID]++
		c.doMining(ship, cmd, fire)
		return
	}

	if ship.CanBeCarried() {
		if c.reparentCarried(ship, cmd) || c.dockToParent(ship, cmd) {
			return
		}
	}

	switch {
	case c.mustRecall(ship):
		Stop(ship, cmd, 0, geom.Point{})
	case ship.IsYours && c.followOrders(ship, cmd, fire):
	default:
		c.reactToParent(ship, cmd)
	}

	c.carrierDeploy(ship, cmd)
	c.afterburn(ship, cmd)
	c.doScatter(ship, cmd)
}

// dropStaleTargets clears references to bodies gone from this tick's live
// lists.
func (c *Controller) dropStaleTargets(ship *world.Ship) {
	if t := ship.TargetShip; t != nil && !c.ShipAlive(t) {
		ship.TargetShip = nil
	}
	if a := ship.TargetAsteroid; a != nil && !c.AsteroidAlive(a) {
		ship.TargetAsteroid = nil
	}
	if f := ship.TargetFlotsam; f != nil && !f.IsLive() {
		ship.TargetFlotsam = nil
	}
	if v := ship.ShipToAssist; v != nil && !c.ShipAlive(v) {
		ship.ShipToAssist = nil
	}
}

// isStranded reports a ship that cannot jump out and cannot buy fuel here.
func isStranded(ship *world.Ship) bool {
	return ship.System != nil && !ship.IsHyperspacing() && ship.FuelCapacity() > 0 &&
		ship.JumpFuel(nil) > 0 && ship.JumpsRemaining() == 0 && !ship.System.HasFuelFor(ship)
}

// doCloak decides whether a non-player ship cloaks. It returns true when
// the ship is retreating under cloak and should do nothing else.
func (c *Controller) doCloak(ship *world.Ship, cmd *world.MovementCommand) bool {
	if ship.Attributes.Get("cloak") <= 0 || ship.Personality.IsDecloaked() {
		return false
	}
	if par := ship.Parent; par != nil && c.ShipAlive(par) && par.System == ship.System &&
		par.Commands().Has(world.Cloak) && !par.Government.IsEnemy(ship.Government) {
		cmd.Set(world.Cloak)
		KeepStation(ship, cmd, par)
		return true
	}

	foe, dist := c.nearestEnemy(ship)
	hysteresis := 1.
	if ship.Commands().Has(world.Cloak) || ship.Cloak > 0 {
		hysteresis = cloakHysteresis
	}
	threatened := foe != nil && dist < cloakRange*hysteresis

	cost := ship.Attributes.Get("cloaking fuel")
	affordable := cost <= 0 || ship.FuelAmount()-cost >= ship.JumpFuel(nil)
	if !affordable {
		if threatened && ship.Cloak > 0 {
			c.retreatFrom(ship, cmd, foe)
			return true
		}
		return false
	}
	if threatened {
		cmd.Set(world.Cloak)
		if ship.Health() < retreatHealth*hysteresis {
			c.retreatFrom(ship, cmd, foe)
			return true
		}
		return false
	}
	if cost <= 0 && ship.TargetShip == nil && foe == nil {
		cmd.Set(world.Cloak)
	}
	return false
}

// nearestEnemy returns the closest armed, undisabled hostile in ship's
// system.
func (c *Controller) nearestEnemy(ship *world.Ship) (*world.Ship, float64) {
	var best *world.Ship
	dist := math.Inf(1)
	for _, foe := range c.enemiesOf(ship) {
		if foe.Disabled {
			continue
		}
		if d := foe.Position.Distance(ship.Position); d < dist {
			best, dist = foe, d
		}
	}
	return best, dist
}

// retreatFrom flies directly away from foe, staying inside the fence when
// ship is constrained.
func (c *Controller) retreatFrom(ship *world.Ship, cmd *world.MovementCommand, foe *world.Ship) {
	away := ship.Position.Sub(foe.Position).Unit()
	safety := ship.Position.Add(away.Mul(cloakRetreat))
	if isConstrained(ship) {
		r := ship.System.InvisibleFenceRadius()
		if safety.LengthSquared() > r*r {
			safety = safety.Unit().Mul(r)
		}
	}
	MoveTo(ship, cmd, safety, geom.Point{}, 10, 1, 0)
}

// reparentLost hands a ship whose parent is gone to the nearest surviving
// ancestor.
func (c *Controller) reparentLost(ship *world.Ship) {
	par := ship.Parent
	if par == nil || c.ShipAlive(par) {
		return
	}
	gp := par.Parent
	for depth := 0; gp != nil && !c.ShipAlive(gp) && depth < 8; depth++ {
		gp = gp.Parent
	}
	par.RemoveEscort(ship)
	ship.Parent = nil
	if gp != nil && gp != ship && c.ShipAlive(gp) {
		gp.AddEscort(ship)
		c.log.Debug().Uint64("ship", uint64(ship.ID)).Uint64("parent", uint64(gp.ID)).
			Int("tick", c.tick).Msg("reparented to grandparent")
	}
}

// shouldFlee reports an NPC that wants out of the fight.
func (c *Controller) shouldFlee(ship *world.Ship) bool {
	if ship.IsYours {
		return false
	}
	p := ship.Personality
	if p.IsFleeing() {
		return true
	}
	if !p.IsDaring() {
		limit := retreatHealth
		if p.IsCoward() {
			limit = cowardHealth
		}
		if ship.Health() < limit {
			return true
		}
	}
	if outOfAmmo(ship) {
		return true
	}
	return p.IsGetaway() && ship.Cargo != nil && ship.Cargo.Size() > 0 && ship.Cargo.Free() == 0
}

// outOfAmmo reports an armed ship none of whose weapons can fire.
func outOfAmmo(ship *world.Ship) bool {
	armed := false
	for _, hp := range ship.Hardpoints {
		if !hp.IsArmed() {
			continue
		}
		armed = true
		if ship.CanFireAmmo(hp.Weapon) {
			return false
		}
	}
	return armed
}

// hasEscape reports somewhere a fleeing ship can go: a reachable link or a
// spaceport it may land on.
func hasEscape(ship *world.Ship) bool {
	if ship.JumpsRemaining() > 0 {
		for _, l := range ship.System.Links {
			if ship.HyperspaceType(l) != world.DriveNone {
				return true
			}
		}
	}
	for _, o := range ship.System.Objects {
		if o.Planet != nil && o.Planet.Spaceport && o.CanLand(ship) {
			return true
		}
	}
	return false
}

// lowHealth applies the near-death rules: cowards abandon their fleet and
// appeasing ships buy off whoever is shooting them.
func (c *Controller) lowHealth(ship *world.Ship) {
	h := ship.Health()
	if h >= 1 {
		return
	}
	p := ship.Personality
	if p.IsCoward() && h < retreatHealth && ship.Parent != nil && !ship.IsYours {
		ship.Parent.RemoveEscort(ship)
		ship.Parent = nil
	}
	if !p.IsAppeasing() || ship.Cargo == nil || ship.Cargo.Used() == 0 {
		return
	}
	loss := 1 - h
	threshold := c.AppeasementThreshold(ship.ID)
	if loss <= threshold || !c.targetedByEnemy(ship) {
		return
	}
	toDump := int(math.Ceil(appeasementBase + loss*.5*float64(ship.Cargo.Size()) - 1e-6))
	dumped := 0
	for _, name := range ship.Cargo.Commodities() {
		n := ship.Jettison(name, toDump-dumped)
		dumped += n
		if dumped >= toDump {
			break
		}
	}
	c.appeasement[ship.ID] = math.Max(loss+appeasementStep, threshold)
	gov := ""
	if ship.Government != nil {
		gov = ship.Government.Name
	}
	c.post(messages.CategoryHail, messages.High, ship.Name,
		fmt.Sprintf("%s ship \"%s\": Please, just take my cargo and leave me alone.", gov, ship.Name))
	c.log.Debug().Uint64("ship", uint64(ship.ID)).Int("tick", c.tick).Int("tons", dumped).Msg("cargo jettisoned")
}

// targetedByEnemy reports a hostile in ship's system that has it targeted.
func (c *Controller) targetedByEnemy(ship *world.Ship) bool {
	for _, o := range c.ships {
		if o != ship && o.TargetShip == ship && o.System == ship.System && !o.Disabled &&
			o.Government.IsEnemy(ship.Government) {
			return true
		}
	}
	return false
}

// assist flies ship to the ship it was asked to help and boards it. The
// request lapses when the victim leaves, turns hostile, or recovers.
func (c *Controller) assist(ship *world.Ship, cmd *world.MovementCommand) bool {
	v := ship.ShipToAssist
	if v == nil {
		return false
	}
	if !c.ShipAlive(v) || v.System != ship.System || v.Landing || v.IsHyperspacing() ||
		v.Government.IsEnemy(ship.Government) || (!v.Disabled && !isStranded(v)) {
		ship.ShipToAssist = nil
		if c.helperList[v.ID] == ship.ID {
			delete(c.helperList, v.ID)
		}
		return false
	}
	ship.TargetShip = v
	MoveTo(ship, cmd, v.Position, v.Velocity, assistRadius, assistSlow, 0)
	cmd.Set(world.Board)
	return true
}

// carrierDeploy launches or holds an NPC carrier's fighters: they go out
// against a hostile target while the carrier is healthy.
func (c *Controller) carrierDeploy(ship *world.Ship, cmd *world.MovementCommand) {
	if ship.IsYours || !ship.HasBays() {
		return
	}
	t := ship.TargetShip
	hostile := t != nil && t.Government.IsEnemy(ship.Government) && t.System == ship.System
	if hostile && (ship.Health() > carrierDeployHealth || c.prefs.DamagedFightersRetreat) {
		cmd.Set(world.Deploy)
		return
	}
	cmd.Clear(world.Deploy)
}

// afterburn lights the afterburner when closing on a live hostile target
// and the fuel it burns still leaves a jump in the tank.
func (c *Controller) afterburn(ship *world.Ship, cmd *world.MovementCommand) {
	t := ship.TargetShip
	if !cmd.Has(world.Forward) || t == nil || t.Disabled || !t.IsTargetable() || t.System != ship.System {
		return
	}
	if !t.Government.IsEnemy(ship.Government) || !canBurn(ship) {
		return
	}
	if t.Position.Distance(ship.Position) < burnRange {
		cmd.Set(world.Afterburner)
	}
}

// doScatter turns ship aside when another ship with the same handling sits
// on top of it, so identical hulls do not fly as one.
func (c *Controller) doScatter(ship *world.Ship, cmd *world.MovementCommand) {
	if !cmd.Has(world.Forward | world.Back) {
		return
	}
	turn := ship.TurnRate()
	accel := ship.Acceleration()
	if turn <= 0 || accel <= 0 {
		return
	}
	facing := ship.Facing.Unit()
	for _, o := range c.ships {
		if o == ship || o.System != ship.System || o.Zoom < 1 || o.Destroyed {
			continue
		}
		off := o.Position.Sub(ship.Position)
		if off.LengthSquared() > scatterDistanceSq {
			continue
		}
		if math.Abs(o.TurnRate()/turn-1) > scatterTolerance || math.Abs(o.Acceleration()/accel-1) > scatterTolerance {
			continue
		}
		if o.Facing.Unit().Dot(facing) < scatterFacing {
			continue
		}
		if off.Cross(facing) > 0 {
			cmd.SetTurn(1)
		} else {
			cmd.SetTurn(-1)
		}
		return
	}
}
