package ai

import (
	"math"

	"github.com/Garsondee/Ship-Sense/internal/config"
	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

const (
	turretRangeFactor = 1.5 // enemies this far beyond turret range still draw aim
	fireRangeFactor   = 1.5 // slack on weapon range for relative motion
	idleWalk          = .5  // amplitude of an opportunistic turret's idle sway
	idleReturn        = .05 // pull back toward the idle angle, per degree off
	beamOutOfRange    = 60. // rendezvous ticks charged to a beam that cannot reach
	jumpSpoilSpeed    = 10. // targets jumping faster than this are not worth a shot
	frugalHealth      = 1.5 // shields+hull above which frugal ships hold their ammo
	confusionScale    = 10. // world units of aim scatter per point of confusion
)

// aimTarget is one body a turret might track.
type aimTarget struct {
	pos, vel geom.Point
}

// collectAimTargets gathers what ship's turrets may track this tick: its
// target, nearby enemies unless fire is focused, and its asteroid.
func (c *Controller) collectAimTargets(ship *world.Ship, focused bool) []aimTarget {
	c.aimTargets = c.aimTargets[:0]
	maxRange := 0.
	for _, hp := range ship.Hardpoints {
		if hp.CanAim() {
			maxRange = math.Max(maxRange, hp.Weapon.Range())
		}
	}
	if maxRange == 0 {
		return c.aimTargets
	}
	target := ship.TargetShip
	hasTarget := target != nil && c.ShipAlive(target) && target.IsTargetable() && target.System == ship.System
	if hasTarget {
		c.aimTargets = append(c.aimTargets, aimTarget{pos: target.Position, vel: target.Velocity})
	}
	if !focused || !hasTarget {
		limit := turretRangeFactor * maxRange
		for _, foe := range c.enemiesOf(ship) {
			if foe == target || foe.Position.DistanceSquared(ship.Position) > limit*limit {
				continue
			}
			c.aimTargets = append(c.aimTargets, aimTarget{pos: foe.Position, vel: foe.Velocity})
		}
	}
	if a := ship.TargetAsteroid; a != nil && c.AsteroidAlive(a) {
		c.aimTargets = append(c.aimTargets, aimTarget{pos: a.Position, vel: a.Velocity})
	}
	return c.aimTargets
}

// AimTurrets writes an aim delta for every turret on ship. With nothing to
// track, opportunistic turrets sway around their idle angle and the rest
// snap back to it.
func (c *Controller) AimTurrets(ship *world.Ship, fire *world.FireCommand, opportunistic bool) {
	focused := ship.IsYours && c.prefs.TurretsFocusFire
	c.aimTurretsAt(ship, fire, opportunistic, c.collectAimTargets(ship, focused))
}

// aimTurretsAtPoint aims every turret at a fixed world point.
func (c *Controller) aimTurretsAtPoint(ship *world.Ship, fire *world.FireCommand, p geom.Point) {
	c.aimTargets = append(c.aimTargets[:0], aimTarget{pos: p})
	c.aimTurretsAt(ship, fire, false, c.aimTargets)
}

func (c *Controller) aimTurretsAt(ship *world.Ship, fire *world.FireCommand, opportunistic bool, targets []aimTarget) {
	for i, hp := range ship.Hardpoints {
		if !hp.CanAim() {
			continue
		}
		w := hp.Weapon
		rate := w.TurretTurn
		if len(targets) == 0 {
			off := hp.BaseAngle.Delta(hp.Angle)
			if opportunistic {
				walk := (2*c.rng.Float64()-1)*idleWalk - idleReturn*off/rate
				fire.SetAim(i, walk)
			} else {
				fire.SetAim(i, -off/rate)
			}
			continue
		}

		start := ship.HardpointPosition(hp)
		lifetime := float64(w.Lifetime)
		best := math.Inf(1)
		bestDelta := 0.
		for _, t := range targets {
			p := t.pos.Sub(start)
			v := t.vel.Sub(ship.Velocity)
			if hp.IsHoming() {
				v = t.vel
			}
			var rt float64
			if w.IsInstantaneous() {
				if p.Length() > w.Range() {
					rt = beamOutOfRange
				}
			} else {
				rt = geom.RendezvousTime(p, v, w.WeightedVelocity())
				if math.IsNaN(rt) {
					continue
				}
			}
			aim := p.Add(v.Mul(rt))
			rel := geom.AngleOf(aim) - ship.Facing
			penalty := 0.
			if !hp.InArc(rel) {
				penalty = 2 * lifetime
				rel = hp.ClampToArc(rel)
			}
			delta := hp.Angle.Delta(rel)
			score := math.Abs(delta)/rate + (180/rate)*rt + penalty
			if score < best {
				best = score
				bestDelta = delta
			}
		}
		fire.SetAim(i, bestDelta/rate)
	}
}

// fireFilter carries the per-ship conditions AutoFire checks per weapon.
type fireFilter struct {
	secondary  bool
	frugal     bool
	preparing  bool
	staying    bool
	flagship   bool
	mode       config.FireMode
	finishOff  bool
	restricted bool // an attack order limits fire to its target
}

// beFrugal reports a ship that should not spend ammunition now.
func (c *Controller) beFrugal(ship *world.Ship) bool {
	frugal := ship.IsYours && !c.escortsUseAmmo
	if ship.Personality.IsFrugal() || (ship.IsYours && c.escortsAreFrugal && c.escortsUseAmmo) {
		frugal = ship.Hull+ship.Shields > frugalHealth && !c.lists.outgunned(ship.Government)
	}
	return frugal
}

// AutoFire sets the fire bit on every ready weapon of ship that would hit a
// hostile target this tick. secondary allows weapons that use ammunition.
func (c *Controller) AutoFire(ship *world.Ship, fire *world.FireCommand, secondary, isFlagship bool) {
	p := ship.Personality
	if p.IsPacifist() || ship.Government == nil {
		return
	}
	f := fireFilter{
		secondary: secondary,
		frugal:    c.beFrugal(ship),
		preparing: ship.Commands().Has(world.Jump),
		staying:   p.IsStaying(),
		flagship:  isFlagship,
		mode:      config.FireAll,
	}
	if isFlagship {
		f.mode = c.prefs.Fire()
		if f.mode == config.FireOff {
			return
		}
	}

	target := ship.TargetShip
	friendlyOverride := false
	if ship.IsYours && !isFlagship {
		if set, ok := c.orders[ship.ID]; ok {
			if set.Has(orders.HoldFire) {
				return
			}
			if set.Has(orders.Attack|orders.FinishOff) && set.TargetShip != nil {
				f.restricted = true
				f.finishOff = set.Has(orders.FinishOff)
				friendlyOverride = set.TargetShip == target
			}
		}
	}
	if target != nil && (!c.ShipAlive(target) || target.System != ship.System ||
		!(target.Government.IsEnemy(ship.Government) || friendlyOverride)) {
		target = nil
	}
	if f.restricted && target == nil {
		return
	}

	maxRange := 0.
	for _, hp := range ship.Hardpoints {
		if hp.IsReady() && !hp.IsHoming() && (secondary || hp.Weapon.Ammo == "") {
			maxRange = math.Max(maxRange, hp.Weapon.Range())
		}
	}
	maxRange *= fireRangeFactor

	enemies := c.fireTargets(ship, target, maxRange, f.restricted)

	for i, hp := range ship.Hardpoints {
		if !c.canFire(ship, hp, f) {
			continue
		}
		w := hp.Weapon
		start := ship.HardpointPosition(hp)
		if p.Confusion > 0 {
			start = start.Add(geom.Pt(c.rng.Float64()-.5, c.rng.Float64()-.5).Mul(p.Confusion * confusionScale))
		}
		vp := w.WeightedVelocity()
		lifetime := float64(w.Lifetime)

		if hp.IsHoming() {
			if target == nil || c.spare(ship, target, f) {
				continue
			}
			rel := target.Position.Sub(start).Add(target.Velocity.Sub(ship.Velocity))
			if c.selfBlast(ship, w, rel) {
				continue
			}
			if rt := geom.RendezvousTime(rel, target.Velocity, vp); !math.IsNaN(rt) && rt <= lifetime {
				fire.SetFire(i)
			}
			continue
		}

		for _, t := range enemies {
			if c.spare(ship, t, f) {
				continue
			}
			if hp.IsTurret && t.IsHyperspacing() && t.Velocity.Length() > jumpSpoilSpeed {
				continue
			}
			dv := t.Velocity.Sub(ship.Velocity)
			rel := t.Position.Sub(start).Add(dv)
			if c.selfBlast(ship, w, rel) {
				continue
			}
			travel := (ship.Facing + hp.Angle).Unit().Mul(vp).Sub(dv).Mul(lifetime)
			if t.CollisionMask().Collide(rel.Neg(), travel, t.Facing) < 1 {
				fire.SetFire(i)
				break
			}
		}
	}
}

// fireTargets lists the ships AutoFire may shoot at, the current target
// first.
func (c *Controller) fireTargets(ship, target *world.Ship, maxRange float64, restricted bool) []*world.Ship {
	out := c.fireScratch[:0]
	if target != nil {
		out = append(out, target)
	}
	if restricted {
		c.fireScratch = out
		return out
	}
	for _, foe := range c.enemiesOf(ship) {
		if foe == target || (foe.IsHyperspacing() && foe.Velocity.Length() > jumpSpoilSpeed) {
			continue
		}
		if foe.Position.DistanceSquared(ship.Position) < maxRange*maxRange {
			out = append(out, foe)
		}
	}
	c.fireScratch = out
	return out
}

// canFire applies the per-weapon filters that do not depend on the target.
func (c *Controller) canFire(ship *world.Ship, hp *world.Hardpoint, f fireFilter) bool {
	if !hp.IsReady() || hp.IsSpecial() {
		return false
	}
	w := hp.Weapon
	if f.flagship {
		if f.mode == config.FireGunsOnly && hp.IsTurret {
			return false
		}
		if f.mode == config.FireTurretsOnly && !hp.IsTurret {
			return false
		}
	}
	if w.Ammo != "" {
		if !f.secondary || f.frugal || !ship.CanFireAmmo(w) {
			return false
		}
	}
	if f.preparing && w.FiringForce > 0 {
		return false
	}
	if w.FiringFuel > 0 {
		reserve := ship.JumpFuel(nil)
		if f.staying {
			reserve = 0
		}
		if ship.FuelAmount()-w.FiringFuel < reserve {
			return false
		}
	}
	return true
}

// spare reports a disabled target this ship would rather board than shoot.
func (c *Controller) spare(ship, target *world.Ship, f fireFilter) bool {
	if !target.Disabled || f.finishOff {
		return false
	}
	p := ship.Personality
	return p.Disables() || (p.Plunders() && !c.hasBoarded(ship, target))
}

// selfBlast reports a shot whose blast would reach the firing ship.
func (c *Controller) selfBlast(ship *world.Ship, w *world.Weapon, rel geom.Point) bool {
	if w.BlastRadius <= 0 || w.SafeForFirer {
		return false
	}
	r := w.BlastRadius + ship.Radius
	return rel.LengthSquared() < r*r
}

// AutoFireAt fires ship's primary guns that would hit a minable body.
func (c *Controller) AutoFireAt(ship *world.Ship, fire *world.FireCommand, m *world.Minable) {
	mask := world.CircleMask{Radius: m.Radius}
	for i, hp := range ship.Hardpoints {
		if !hp.IsReady() || hp.IsSpecial() || hp.IsHoming() || hp.Weapon.Ammo != "" {
			continue
		}
		w := hp.Weapon
		start := ship.HardpointPosition(hp)
		dv := m.Velocity.Sub(ship.Velocity)
		rel := m.Position.Sub(start).Add(dv)
		travel := (ship.Facing + hp.Angle).Unit().Mul(w.WeightedVelocity()).Sub(dv).Mul(float64(w.Lifetime))
		if mask.Collide(rel.Neg(), travel, 0) < 1 {
			fire.SetFire(i)
		}
	}
}
