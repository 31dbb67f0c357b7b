package ai

import (
	"math"

	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// Scan budgets: how many scans a ship makes, and for how long it keeps
// looking, before it loses interest.
const (
	surveillanceScans = 12
	surveillanceTime  = 9000
	patrolScans       = 6
	patrolTime        = 18000
)

// timidDisabledRange is how far a timid ship follows a disabled target.
const timidDisabledRange = 1000.

// weaponRanges returns the shortest and longest range of ship's armed
// mounts, and false when it has none.
func weaponRanges(ship *world.Ship) (lo, hi float64, ok bool) {
	lo = math.Inf(1)
	for _, hp := range ship.Hardpoints {
		if !hp.IsArmed() {
			continue
		}
		r := hp.Weapon.Range()
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
		ok = true
	}
	return lo, hi, ok
}

// hasScanPower reports a ship carrying either kind of scanner.
func hasScanPower(ship *world.Ship) (cargo, outfit bool) {
	return ship.Attributes.Get("cargo scan power") > 0, ship.Attributes.Get("outfit scan power") > 0
}

// playerSide reports a ship the player owns or that escorts the player.
func playerSide(s *world.Ship) bool {
	return s.IsYours || s.Government.IsPlayer() || s.Personality.IsEscort()
}

// validTarget reports whether ship may keep its current target.
func (c *Controller) validTarget(ship, target *world.Ship) bool {
	if target == nil || !c.ShipAlive(target) || !target.IsTargetable() || target.System != ship.System {
		return false
	}
	p := ship.Personality
	if target.Disabled && p.Disables() {
		return false
	}
	if target.Fleeing && p.IsMerciful() {
		return false
	}
	return c.canPursue(ship, target)
}

// shouldRetarget spreads target searches over the retarget period by ship
// id, and forces one when the current target has gone bad.
func (c *Controller) shouldRetarget(ship *world.Ship) bool {
	period := max(c.tuning.RetargetPeriod, 1)
	if (c.tick+int(uint64(ship.ID)%uint64(period)))%period == 0 {
		return true
	}
	return !c.validTarget(ship, ship.TargetShip)
}

// FindTarget picks the best ship for ship to fight, or a ship to scan when
// it has nothing to fight. It returns nil when ship should leave everyone
// alone.
func (c *Controller) FindTarget(ship *world.Ship) *world.Ship {
	if ship.Government == nil {
		return nil
	}
	if ship.IsYours {
		if set, ok := c.orders[ship.ID]; ok {
			if set.Has(orders.Attack|orders.FinishOff) && set.TargetShip != nil {
				return set.TargetShip
			}
			if set.Has(orders.HoldFire) {
				return nil
			}
		}
	}
	if isConstrained(ship) && c.fenceCount[ship.ID] >= c.tuning.FenceMax {
		return nil
	}
	p := ship.Personality
	if p.IsPacifist() {
		return c.findNonHostileTarget(ship)
	}
	lo, hi, armed := weaponRanges(ship)
	if !armed {
		return c.findNonHostileTarget(ship)
	}

	t := &c.tuning
	old := ship.TargetShip
	if old != nil && (!c.ShipAlive(old) || !old.IsTargetable()) {
		old = nil
	}
	if old != nil && p.IsTimid() && old.Disabled && ship.Position.Distance(old.Position) > timidDisabledRange {
		old = nil
	}
	var parentTarget *world.Ship
	if par := ship.Parent; par != nil && c.ShipAlive(par) && !par.Government.IsEnemy(ship.Government) {
		if pt := par.TargetShip; pt != nil && c.ShipAlive(pt) && pt.IsTargetable() {
			parentTarget = pt
		}
	}

	closest := t.SearchRange
	switch {
	case p.IsHunting():
		closest = math.Inf(1)
	case lo > t.LongRangeThreshold:
		closest = t.LongRangeFactor * hi
	}

	var maxStrength float64
	if !p.IsDaring() && !ship.IsYours {
		if s, ok := c.shipStrength[ship.ID]; ok {
			maxStrength = t.StrengthFactor * float64(s)
		}
	}

	ahead := ship.Position.Add(ship.Velocity.Mul(t.ExtrapolationFrames))
	var target *world.Ship
	hasNemesis := false
	for _, foe := range c.enemiesOf(ship) {
		if foe == ship || !c.canPursue(ship, foe) {
			continue
		}
		isNemesis := p.IsNemesis() && playerSide(foe)
		if hasNemesis && !isNemesis {
			continue
		}
		if p.IsTimid() && foe.TargetShip != ship {
			continue
		}
		if p.IsMerciful() && foe.Fleeing {
			continue
		}
		boarded := c.hasBoarded(ship, foe)
		if foe.Disabled {
			plunder := p.Plunders() && !boarded
			keep := !p.Disables() && (p.IsNemesis() || foe == old)
			if !plunder && !keep {
				continue
			}
		}

		score := foe.Position.Add(foe.Velocity.Mul(t.ExtrapolationFrames)).Distance(ahead)
		if foe == old || foe == parentTarget {
			score -= t.StickyBonus
		}
		if maxStrength > 0 && score > t.LongRangeThreshold && !foe.Disabled {
			if s, ok := c.shipStrength[foe.ID]; ok && float64(s) > maxStrength {
				continue
			}
		}
		if foe.Disabled {
			if p.Plunders() {
				score += t.PlunderTiebreak
			} else {
				score += t.DisabledPenalty
			}
		}
		if !foe.IsArmed() {
			if p.Plunders() {
				score += t.UnarmedPenalty
			} else {
				score += 2 * t.UnarmedPenalty
			}
		}
		if c.ledger.notorious(foe.ID, ship.Government, world.EventBoard) {
			score -= t.GrudgeBonus
		}
		score += t.HealthWeight * (foe.Shields + foe.Hull)
		if foe.Heat > t.HeatThreshold {
			score += t.HeatWeight * (foe.Heat - t.HeatThreshold)
		}

		if (isNemesis && !hasNemesis) || score < closest {
			closest = score
			target = foe
			hasNemesis = isNemesis
		}
	}

	if target == nil && p.IsVindictive() {
		if prev := ship.TargetShip; prev != nil && c.ShipAlive(prev) && prev.Cloak < 1 &&
			prev.System == ship.System && c.canPursue(ship, prev) {
			target = prev
		}
	}
	if target == nil {
		return c.findNonHostileTarget(ship)
	}
	if target != ship.TargetShip {
		c.metrics.TargetChosen()
		c.log.Debug().Uint64("ship", uint64(ship.ID)).Uint64("target", uint64(target.ID)).
			Int("tick", c.tick).Float64("score", closest).Msg("target chosen")
	}
	return target
}

// scanBudget returns the scan count and search time limits for ship.
func scanBudget(ship *world.Ship) (scans, ticks int) {
	if ship.Personality.IsSurveillance() {
		return surveillanceScans, surveillanceTime
	}
	return patrolScans, patrolTime
}

// canScan reports ship's government may scan in its current system.
func (c *Controller) canScan(ship *world.Ship) bool {
	if ship.System == c.player.System() {
		return c.lists.scan[ship.Government]
	}
	return ship.Government.CanEnforce(ship.System)
}

// needsScan reports whether ship's government still wants to scan other.
func (c *Controller) needsScan(ship, other *world.Ship) bool {
	cargo, outfit := hasScanPower(ship)
	return (cargo && !c.ledger.govHas(ship.Government, other.ID, world.EventScanCargo)) ||
		(outfit && !c.ledger.govHas(ship.Government, other.ID, world.EventScanOutfits))
}

// findNonHostileTarget picks the nearest unscanned ship for a scanner that
// still has budget left.
func (c *Controller) findNonHostileTarget(ship *world.Ship) *world.Ship {
	if ship.IsYours {
		return nil
	}
	cargo, outfit := hasScanPower(ship)
	if !cargo && !outfit {
		return nil
	}
	if !c.canScan(ship) {
		return nil
	}
	scans, ticks := scanBudget(ship)
	if c.scanCount[ship.ID] >= scans || c.scanTime[ship.ID] >= ticks {
		return nil
	}
	var target *world.Ship
	closest := c.tuning.SearchRange
	for _, o := range c.ships {
		if o == ship || o.System != ship.System || o.Government == ship.Government || !o.IsTargetable() {
			continue
		}
		if !c.needsScan(ship, o) {
			continue
		}
		if d := o.Position.Distance(ship.Position); d < closest {
			closest = d
			target = o
		}
	}
	return target
}
