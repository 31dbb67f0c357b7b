package ai

import (
	"math"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// --- Steering constants ---

const (
	alignedPrecision = .9999 // dot² over |v|² treated as already facing
	facingCosine     = .95   // close enough to thrust along a heading
	maxSpeedFraction = .99   // stop thrusting just short of terminal speed

	stoppedSpeed = .001 // anything slower counts as stopped

	circleThrustDistance = 200.
	circleBurnDistance   = 750.

	swarmHorizon = 600. // ticks of target extrapolation while swarming

	// KeepStation tuning.
	stationMaxTime        = 600.
	stationLeadTime       = 500.
	stationPositionBand   = 200.
	stationVelocityBand   = 1.5
	stationTimeBand       = 120.
	stationThrustBand     = .5
	stationTurnDamping    = .025
	attackTurnDiameterMin = 200.
)

// TurnToward returns the turn scalar that rotates ship toward v. It is 0
// when ship already faces v, proportional when the remaining angle fits in
// one tick, and ±1 otherwise. A ship that cannot turn gets 0.
func TurnToward(ship *world.Ship, v geom.Point) float64 {
	rate := ship.TurnRate()
	if rate <= 0 || v.IsZero() || !v.IsFinite() {
		return 0
	}
	f := ship.Facing.Unit()
	cross := v.Cross(f)
	dot := v.Dot(f)
	if dot > 0 {
		if dot*dot >= alignedPrecision*v.LengthSquared() {
			return 0
		}
		a := math.Asin(geom.Clamp(cross/v.Length(), -1, 1)) * 180 / math.Pi
		if math.Abs(a) < rate {
			return -a / rate
		}
	}
	if cross < 0 {
		return 1
	}
	return -1
}

// TurnBackward turns ship to face against its velocity.
func TurnBackward(ship *world.Ship) float64 {
	return TurnToward(ship, ship.Velocity.Neg())
}

// degreesBetween is the unsigned angle between two vectors, in degrees.
func degreesBetween(a, b geom.Point) float64 {
	return math.Acos(geom.Clamp(a.Unit().Dot(b.Unit()), -1, 1)) * 180 / math.Pi
}

// StoppingPoint predicts where ship comes to rest relative to a frame
// moving at targetVel. reverse reports that reverse thrust stops it sooner
// than turning around.
func StoppingPoint(ship *world.Ship, targetVel geom.Point) (p geom.Point, reverse bool) {
	v := ship.Velocity.Sub(targetVel)
	speed := v.Length()
	if speed == 0 {
		return ship.Position, false
	}
	rate := math.Max(ship.TurnRate(), 1e-9)
	turn := degreesBetween(ship.Facing.Unit(), v.Neg())
	dist := speed*turn/rate + .5*speed*speed/math.Max(ship.Acceleration(), 1e-9)

	if ra := ship.ReverseAcceleration(); ra > 0 {
		rdist := speed*(180-turn)/rate + .5*speed*speed/ra
		if rdist < dist {
			dist = rdist
			reverse = true
		}
	}
	return ship.Position.Add(v.Unit().Mul(dist)), reverse
}

// cruiseSpeed is the speed a ship settles at while travelling. Ships with
// no drag have no terminal speed, so a minute of thrust stands in.
func cruiseSpeed(ship *world.Ship) float64 {
	v := ship.MaxVelocity()
	if math.IsInf(v, 1) || v <= 0 {
		return math.Max(ship.Acceleration()*60, 1)
	}
	return v
}

// MoveTo steers ship to target, which moves at targetVel. It returns true
// once the ship is within radius and its speed relative to the target is
// below slow. With cruise > 0 the ship aims for that speed along the path.
func MoveTo(ship *world.Ship, cmd *world.MovementCommand, target, targetVel geom.Point, radius, slow, cruise float64) bool {
	rel := ship.Velocity.Sub(targetVel)
	toTarget := target.Sub(ship.Position)
	dist := toTarget.Length()
	if dist < radius && rel.Length() < slow {
		return true
	}
	isClose := dist < .2*radius

	stop, reverse := StoppingPoint(ship, targetVel)
	d := target.Sub(stop)
	tv := d
	if cruise > 0 {
		tv = d.Unit().Mul(cruise).Sub(rel)
	}
	if tv.LengthSquared() < 1e-12 {
		tv = d
	}
	facing := ship.Facing.Unit()

	// Reverse thrust only helps when the push needed opposes the drift.
	if reverse && tv.Dot(rel) < 0 {
		back := tv.Neg()
		if !isClose {
			cmd.SetTurn(TurnToward(ship, back))
		}
		if back.Unit().Dot(facing) > facingCosine {
			cmd.Set(world.Back)
		}
		return false
	}

	isFacing := tv.Unit().Dot(facing) > facingCosine
	if !isClose || !isFacing {
		cmd.SetTurn(TurnToward(ship, tv))
	}
	limit := maxSpeedFraction * ship.MaxVelocity()
	if cruise > 0 {
		limit = cruise
	}
	if isFacing && rel.Length() < limit {
		cmd.Set(world.Forward)
	}
	return false
}

// Stop brings ship below maxSpeed, or to a full stop when maxSpeed is 0.
// A non-zero direction is faced once stopped. It returns true when done.
func Stop(ship *world.Ship, cmd *world.MovementCommand, maxSpeed float64, direction geom.Point) bool {
	v := ship.Velocity
	speed := v.Length()
	threshold := maxSpeed
	if threshold == 0 {
		threshold = stoppedSpeed
	}
	if speed <= threshold {
		if direction.IsZero() {
			return true
		}
		t := TurnToward(ship, direction)
		cmd.SetTurn(t)
		return t == 0
	}
	if maxSpeed == 0 {
		cmd.Set(world.Stop)
	}

	facing := ship.Facing.Unit()
	accel := math.Max(ship.Acceleration(), 1e-9)
	stopTime := speed / accel
	limit := .8 + .2/(1+stopTime*stopTime*stopTime*.001)

	if ra := ship.ReverseAcceleration(); ra > 0 {
		rate := math.Max(ship.TurnRate(), 1e-9)
		turn := degreesBetween(facing, v.Neg())
		forward := turn/rate + stopTime
		back := (180-turn)/rate + speed/ra
		if !direction.IsZero() {
			// Reverse thrust leaves the nose pointing along the old
			// velocity, which costs a turn to the final heading.
			forward += degreesBetween(v.Neg(), direction) / rate
			back += degreesBetween(v, direction) / rate
		}
		if back < forward {
			cmd.SetTurn(TurnToward(ship, v))
			if v.Unit().Dot(facing) > limit {
				cmd.Set(world.Back)
			}
			return false
		}
	}

	cmd.SetTurn(TurnBackward(ship))
	if v.Unit().Dot(facing) < -limit {
		cmd.Set(world.Forward)
	}
	return false
}

// PrepareForHyperspace lines ship up for a jump to its TargetSystem: out
// past the departure distance, then slowed and pointed as its drive needs.
// It returns true when nothing is left to adjust.
func PrepareForHyperspace(ship *world.Ship, cmd *world.MovementCommand) bool {
	kind := ship.HyperspaceType(ship.TargetSystem)
	if kind == world.DriveNone {
		return false
	}
	dir := ship.TargetSystem.Position.Sub(ship.System.Position)

	if dep := ship.System.JumpDepartureDistance(); dep > 0 && ship.Position.LengthSquared() <= dep*dep {
		out := ship.Position
		if out.IsZero() {
			out = dir
		}
		cmd.SetTurn(TurnToward(ship, out))
		if out.Unit().Dot(ship.Facing.Unit()) > .8 {
			cmd.Set(world.Forward)
		}
		return false
	}

	switch kind {
	case world.DriveScram:
		unit := dir.Unit()
		normal := geom.Pt(-unit.Y, unit.X)
		deviation := ship.Velocity.Dot(normal)
		limit := ship.Attributes.Get("scram drive")
		aim := unit
		if math.Abs(deviation) > limit {
			facing := ship.Facing.Unit()
			if (facing.Dot(normal) < 0) == (deviation < 0) {
				// Thrusting from here would add to the drift.
				aim = normal.Mul(-deviation)
			} else {
				cmd.Set(world.Forward)
				rate := math.Max(ship.TurnRate(), 1e-9) * math.Pi / 180
				correction := math.Abs(1-facing.Dot(unit)) * ship.Acceleration() / rate
				if math.Abs(deviation)-correction > limit {
					aim = normal.Mul(-deviation)
				}
			}
			cmd.SetTurn(TurnToward(ship, aim))
			return false
		}
		t := TurnToward(ship, aim)
		cmd.SetTurn(t)
		return t == 0
	case world.DriveJump:
		return Stop(ship, cmd, ship.JumpSpeed(), geom.Point{})
	}
	if !Stop(ship, cmd, ship.JumpSpeed(), geom.Point{}) {
		return false
	}
	t := TurnToward(ship, dir)
	cmd.SetTurn(t)
	return t == 0
}

// canBurn reports an afterburner whose fuel use leaves a jump in the tank.
func canBurn(ship *world.Ship) bool {
	if ship.Attributes.Get("afterburner thrust") <= 0 {
		return false
	}
	fuel := ship.FuelAmount() - ship.Attributes.Get("afterburner fuel")
	if fuel < ship.JumpFuel(nil) {
		return false
	}
	return ship.Energy*ship.Attributes.Get("energy capacity") >= ship.Attributes.Get("afterburner energy")
}

// CircleAround keeps ship orbiting close to target.
func CircleAround(ship *world.Ship, cmd *world.MovementCommand, target geom.Point) {
	d := target.Sub(ship.Position)
	cmd.SetTurn(TurnToward(ship, d))
	dist := d.Length()
	if ship.Facing.Unit().Dot(d) >= 0 && dist > circleThrustDistance {
		cmd.Set(world.Forward)
		if dist > circleBurnDistance && canBurn(ship) {
			cmd.Set(world.Afterburner)
		}
	}
}

// Swarm flies at where target will be when ship catches it.
func Swarm(ship *world.Ship, cmd *world.MovementCommand, target *world.Ship) {
	d := target.Position.Sub(ship.Position)
	t := geom.RendezvousTime(d, target.Velocity, cruiseSpeed(ship))
	if math.IsNaN(t) || t > swarmHorizon {
		t = swarmHorizon
	}
	aim := target.Position.Add(target.Velocity.Mul(t))
	MoveTo(ship, cmd, aim, target.Velocity, 50, 2, .5*cruiseSpeed(ship))
}

// KeepStation holds ship alongside target. It blends matching position,
// velocity and facing, weighted by how long each would take.
func KeepStation(ship *world.Ship, cmd *world.MovementCommand, target *world.Ship) {
	keepStationAt(ship, cmd, target.Position, target.Velocity, target.Facing)
}

func keepStationAt(ship *world.Ship, cmd *world.MovementCommand, pos, vel geom.Point, facing geom.Angle) {
	maxV := cruiseSpeed(ship)
	accel := math.Max(ship.Acceleration(), 1e-9)
	rate := math.Max(ship.TurnRate(), 1e-9)
	unit := ship.Facing.Unit()

	velocityDelta := vel.Sub(ship.Velocity)
	positionDelta := pos.Add(velocityDelta.Mul(stationLeadTime)).Sub(ship.Position)
	positionSize := positionDelta.Length()
	positionWeight := positionSize / (positionSize + stationPositionBand)

	velocityDelta = velocityDelta.Sub(unit.Mul(stationVelocityBand))
	velocitySize := velocityDelta.Length()
	velocityWeight := velocitySize / (velocitySize + stationVelocityBand)

	positionTime := geom.RendezvousTime(positionDelta, vel, maxV)
	if math.IsNaN(positionTime) || positionTime > stationMaxTime {
		positionTime = stationMaxTime
	}
	rendezvous := positionDelta.Add(vel.Mul(positionTime))
	positionTime += math.Abs(ship.Facing.Delta(geom.AngleOf(rendezvous))) / rate
	positionTime += rendezvous.Unit().Mul(maxV).Sub(ship.Velocity).Length() / accel
	positionTime *= positionWeight * positionWeight

	velocityTime := velocityDelta.Length() / accel
	velocityTime += math.Abs(ship.Facing.Delta(geom.AngleOf(velocityDelta))) / rate
	velocityTime *= velocityWeight * velocityWeight

	total := positionTime + velocityTime + stationTimeBand
	positionWeight = positionTime / total
	velocityWeight = velocityTime / total
	facingWeight := stationTimeBand / total

	goal := rendezvous.Unit().Mul(positionWeight).
		Add(velocityDelta.Unit().Mul(velocityWeight)).
		Add(facing.Unit().Mul(facingWeight))
	delta := ship.Facing.Delta(geom.AngleOf(goal))
	turn := math.Copysign(1, delta)
	if math.Abs(delta) < rate {
		turn = delta / rate
	}
	// Damp growth of the turn so station keeping does not jitter.
	if prev := ship.Commands().Turn(); prev != 0 && math.Signbit(prev) == math.Signbit(turn) &&
		math.Abs(turn) > math.Abs(prev)+stationTurnDamping {
		turn = math.Copysign(math.Abs(prev)+stationTurnDamping, turn)
	}
	cmd.SetTurn(turn)

	if ra := ship.ReverseAcceleration(); ra > 0 {
		a := unit.Neg()
		push := positionWeight*positionDelta.Dot(a)/stationPositionBand +
			velocityWeight*velocityDelta.Dot(a)/stationVelocityBand
		if push > stationThrustBand {
			cmd.Set(world.Back)
			return
		}
	}
	drag := ship.Velocity.Mul(ship.Drag() / ship.Mass())
	a := unit.Mul(accel).Sub(drag).Unit()
	push := positionWeight*positionDelta.Dot(a)/stationPositionBand +
		velocityWeight*velocityDelta.Dot(a)/stationVelocityBand
	if push > stationThrustBand {
		cmd.Set(world.Forward)
	}
}

// TargetAim is the heading that puts the most forward-gun damage on a body
// at pos moving at vel. Without fixed guns it is the direction to pos.
func TargetAim(ship *world.Ship, pos, vel geom.Point) geom.Point {
	var result geom.Point
	for _, hp := range ship.Hardpoints {
		w := hp.Weapon
		if w == nil || w.IsSpecial() || hp.IsHoming() || hp.IsTurret {
			continue
		}
		start := ship.HardpointPosition(hp)
		p := pos.Sub(start)
		v := vel.Sub(ship.Velocity)
		steps := geom.RendezvousTime(p, v, w.WeightedVelocity())
		if math.IsNaN(steps) {
			continue
		}
		steps = math.Min(steps, float64(w.Lifetime))
		p = p.Add(v.Mul(steps))
		result = result.Add(p.Unit().Mul(math.Abs(w.ShieldDamage + w.HullDamage)))
	}
	if result.IsZero() {
		return pos.Sub(ship.Position)
	}
	return result
}

// MoveToAttack points ship's guns at a body and closes in.
func MoveToAttack(ship *world.Ship, cmd *world.MovementCommand, pos, vel geom.Point) {
	d := pos.Sub(ship.Position)
	cmd.SetTurn(TurnToward(ship, TargetAim(ship, pos, vel)))
	if ship.Personality.IsRamming() {
		cmd.Set(world.Forward)
		return
	}
	// Smallest circle the ship can fly at its current speed.
	steps := 360 / math.Max(ship.TurnRate(), 1e-9)
	diameter := math.Max(attackTurnDiameterMin, steps*ship.Velocity.Length()/math.Pi)
	facing := ship.Facing.Unit()
	if (facing.Dot(d) >= 0 && d.Length() > diameter) ||
		(ship.Velocity.Dot(d) < 0 && facing.Dot(d.Unit()) >= .9) {
		cmd.Set(world.Forward)
	}
}

// Attack fights target. Ships with only long-range weapons keep their
// distance; out of ammunition they close in regardless.
func Attack(ship *world.Ship, cmd *world.MovementCommand, target *world.Ship) {
	shortest := 4000.
	armed, hasAmmo := false, false
	for _, hp := range ship.Hardpoints {
		if !hp.IsArmed() {
			continue
		}
		armed = true
		if ship.CanFireAmmo(hp.Weapon) {
			hasAmmo = true
		}
		mult := .5
		if hp.IsHoming() || hp.IsTurret {
			mult = 1
		}
		shortest = math.Min(shortest, mult*hp.Weapon.Range())
	}
	if armed && !hasAmmo {
		shortest = 0
	}
	if !ship.IsYours {
		cmd.Set(world.Deploy)
	}
	d := target.Position.Sub(ship.Position)
	if shortest > 1000 && d.Length() < .5*shortest {
		cmd.SetTurn(TurnToward(ship, d.Neg()))
		if ship.Facing.Unit().Dot(d) <= 0 {
			cmd.Set(world.Forward)
		}
		return
	}
	MoveToAttack(ship, cmd, target.Position, target.Velocity)
}

// PickUp flies ship through a moving body such as a cargo box.
func PickUp(ship *world.Ship, cmd *world.MovementCommand, pos, vel geom.Point) {
	p := pos.Sub(ship.Position)
	v := vel.Sub(ship.Velocity)
	vmax := cruiseSpeed(ship)
	t := geom.RendezvousTime(p, v, vmax)
	if math.IsNaN(t) {
		t = p.Length() / vmax
	}
	t += degreesBetween(p, ship.Facing.Unit()) / math.Max(ship.TurnRate(), 1e-9)
	p = p.Add(v.Mul(t))
	cmd.SetTurn(TurnToward(ship, p))
	if p.Unit().Dot(ship.Facing.Unit()) > .7 {
		cmd.Set(world.Forward)
	}
}

// MoveToPlanet flies to the ship's TargetStellar and slows over it.
func MoveToPlanet(ship *world.Ship, cmd *world.MovementCommand) bool {
	o := ship.TargetStellar
	if o == nil {
		return false
	}
	return MoveTo(ship, cmd, o.Position, geom.Point{}, math.Max(o.Radius, 1), 1, 0)
}

// Refuel heads for the parent's landing target if it sells fuel, otherwise
// the nearest landable spaceport that is not a wormhole, and lands.
func Refuel(ship *world.Ship, cmd *world.MovementCommand) bool {
	if p := ship.Parent; p != nil && p.TargetStellar != nil && p.System == ship.System {
		if o := p.TargetStellar; o.Planet != nil && o.Planet.Fuel && o.CanLand(ship) {
			ship.TargetStellar = o
		}
	}
	if ship.TargetStellar == nil && ship.System != nil {
		best := math.Inf(1)
		for _, o := range ship.System.Objects {
			if o.Planet == nil || !o.Planet.Spaceport || o.Planet.IsWormhole() || !o.CanLand(ship) {
				continue
			}
			if d := ship.Position.Distance(o.Position); d < best {
				best = d
				ship.TargetStellar = o
			}
		}
	}
	if ship.TargetStellar == nil {
		return false
	}
	MoveToPlanet(ship, cmd)
	cmd.Set(world.Land)
	return true
}
