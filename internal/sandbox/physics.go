package sandbox

import (
	"fmt"
	"math"
	"slices"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

const (
	hyperspaceTicks  = 100  // ticks spent in transit
	arrivalDistance  = 1000 // arrival distance from the new system's center
	arrivalJitter    = 200
	landingRate      = .02 // zoom lost per tick while landing
	landSpeed        = 1.
	boardRange       = 40. // on top of both radii
	boardSpeed       = 1.
	pickupRange      = 15. // on top of the ship radius
	disableHull      = .15
	jettisonLifetime = 3600
	rockBoxLifetime  = 3600
	flotsamDrag      = .99
	cloakRate        = .05
	repairHull       = .5
)

// physics commits the staged commands of every ship the controller saw
// and carries them out.
func (sc *Scene) physics() {
	ships := sc.liveShips
	for _, s := range ships {
		s.Commit()
	}
	for _, s := range ships {
		sc.stepShip(s)
	}
	sc.drift()
}

func (sc *Scene) stepShip(s *world.Ship) {
	if s.Destroyed || s.System == nil {
		return
	}
	// Cargo dumped this tick lands in space whatever the ship does next.
	sc.dropJettisoned(s)
	if s.IsHyperspacing() {
		sc.stepHyperspace(s)
		return
	}
	if s.Landing {
		sc.stepLanding(s)
		return
	}
	if s.Disabled {
		s.Velocity = s.Velocity.Mul(1 - s.Drag()/s.Mass())
		s.Position = s.Position.Add(s.Velocity)
		return
	}

	cmd := s.Commands()
	// Readiness is judged on the state the controller saw, so ships told to
	// go on the same tick leave on the same tick.
	jump := cmd.Has(world.Jump) && s.IsReadyToJump(false)
	sc.move(s, cmd)
	if jump {
		sc.enterHyperspace(s)
		return
	}
	if cmd.Has(world.Land) {
		sc.tryLand(s)
	}
	if cmd.Has(world.Board) {
		sc.tryBoard(s)
		if s.System == nil {
			return
		}
	}
	if s.HasBays() {
		sc.deploy(s, cmd.Has(world.Deploy))
	}
	sc.cloak(s, cmd.Has(world.Cloak))
	if cmd.Has(world.Scan) {
		sc.scan(s)
	}
	sc.fire(s)
	sc.collect(s)
}

// move turns, thrusts, applies drag, and integrates position.
func (sc *Scene) move(s *world.Ship, cmd world.MovementCommand) {
	s.Facing = s.Facing.AddDegrees(cmd.Turn() * s.TurnRate())

	var accel float64
	switch {
	case cmd.Has(world.Forward):
		accel = s.Acceleration()
	case cmd.Has(world.Back):
		accel = -s.ReverseAcceleration()
	}
	if cmd.Has(world.Afterburner) {
		accel += s.AfterburnerAcceleration()
	}
	if accel != 0 {
		s.Velocity = s.Velocity.Add(s.Facing.Unit().Mul(accel))
	}
	if cmd.Has(world.Stop) && s.Velocity.Length() < s.Acceleration() {
		s.Velocity = geom.Point{}
	}
	s.Velocity = s.Velocity.Mul(1 - s.Drag()/s.Mass())
	s.Position = s.Position.Add(s.Velocity)
}

// --- Hyperspace ---

func (sc *Scene) enterHyperspace(s *world.Ship) {
	cost := s.JumpFuel(s.TargetSystem)
	if c := s.FuelCapacity(); c > 0 {
		s.Fuel = math.Max(0, s.Fuel-cost/c)
	}
	s.Hyperspace = hyperspaceTicks
	sc.SimLog.AddShip(sc.Tick, s, "jump", "enter",
		fmt.Sprintf("%s → %s", s.System.Name, s.TargetSystem.Name), cost)
	sc.log.Debug().Str("ship", s.Name).Str("from", s.System.Name).
		Str("to", s.TargetSystem.Name).Int("tick", sc.Tick).Msg("entering hyperspace")
}

func (sc *Scene) stepHyperspace(s *world.Ship) {
	s.Hyperspace--
	if s.Hyperspace > 0 {
		return
	}
	from, to := s.System, s.TargetSystem
	if to == nil {
		return
	}
	// Arrive on the side facing the origin, headed inward.
	in := from.Position.Sub(to.Position).Unit()
	if in.IsZero() {
		in = geom.Pt(0, -1)
	}
	jitter := geom.Pt(sc.rng.Float64()-.5, sc.rng.Float64()-.5).Mul(arrivalJitter)
	s.System = to
	s.Position = in.Mul(arrivalDistance).Add(jitter)
	s.Velocity = geom.Point{}
	s.Facing = geom.AngleOf(in.Neg())
	s.TargetSystem = nil
	if o := s.TargetStellar; o != nil && !slices.Contains(to.Objects, o) {
		s.TargetStellar = nil
	}

	if p := sc.Player; s == p.Flagship {
		if len(p.TravelPlan) > 0 && p.TravelPlan[0] == to {
			p.TravelPlan = p.TravelPlan[1:]
		}
		if p.Known != nil {
			p.Known[to] = true
		}
	}
	sc.SimLog.AddShip(sc.Tick, s, "jump", "arrive", fmt.Sprintf("%s → %s", from.Name, to.Name), 0)
}

// --- Landing ---

func (sc *Scene) tryLand(s *world.Ship) {
	o := s.TargetStellar
	if o == nil || !o.CanLand(s) || !slices.Contains(s.System.Objects, o) {
		return
	}
	if s.Position.Distance(o.Position) > o.Radius || s.Velocity.Length() > landSpeed {
		return
	}
	s.Landing = true
	sc.SimLog.AddShip(sc.Tick, s, "land", "begin", o.Name, 0)
}

func (sc *Scene) stepLanding(s *world.Ship) {
	s.Zoom -= landingRate
	if s.Zoom > 0 {
		return
	}
	o := s.TargetStellar
	s.Landing = false
	s.Zoom = 1
	s.Velocity = geom.Point{}
	s.TargetStellar = nil
	if o == nil || o.Planet == nil {
		return
	}

	if w := o.Planet.Wormhole; w != nil {
		if to := w.Destination(s.System); to != nil {
			from := s.System
			s.System = to
			s.Position = geom.Point{}
			for _, x := range to.Objects {
				if x.Planet != nil && x.Planet.Wormhole == w {
					s.Position = x.Position
				}
			}
			sc.SimLog.AddShip(sc.Tick, s, "land", "wormhole", fmt.Sprintf("%s → %s", from.Name, to.Name), 0)
		}
		return
	}

	if o.Planet.Fuel {
		s.Fuel = 1
	}
	if s.IsYours {
		// The player's ships take off again at once.
		s.Position = o.Position
		sc.SimLog.AddShip(sc.Tick, s, "land", "takeoff", o.Name, s.Fuel)
		return
	}
	s.System = nil
	sc.SimLog.AddShip(sc.Tick, s, "land", "landed", o.Name, s.Fuel)
}

// --- Boarding ---

func (sc *Scene) tryBoard(s *world.Ship) {
	t := s.TargetShip
	if t == nil || t.Destroyed || t.System != s.System || t.IsHyperspacing() {
		return
	}
	reach := boardRange + s.Radius + t.Radius
	if s.Position.DistanceSquared(t.Position) > reach*reach || s.Velocity.Sub(t.Velocity).Length() > boardSpeed {
		return
	}

	switch {
	case s.Parent == t && t.CanCarry(s):
		t.Carry(s)
		s.DeployOrder = false
		s.TargetShip = nil
		s.Hull, s.Shields, s.Energy = 1, 1, 1
		sc.SimLog.AddShip(sc.Tick, s, "carrier", "dock", t.Name, 0)
	case t.Disabled && !t.Government.IsEnemy(s.Government):
		t.Disabled = false
		t.Hull = math.Max(t.Hull, repairHull)
		if t.FuelAmount() < t.JumpFuel(nil) && s.FuelAmount() >= 2*t.JumpFuel(nil) {
			give := t.JumpFuel(nil)
			s.Fuel -= give / s.FuelCapacity()
			t.Fuel += give / math.Max(t.FuelCapacity(), 1)
		}
		sc.Post(world.NewShipEvent(s, t, world.EventAssist))
		sc.SimLog.AddShip(sc.Tick, s, "board", "assist", t.Name, t.Hull)
	case t.Disabled:
		taken := 0
		if s.Cargo != nil && t.Cargo != nil {
			for _, c := range t.Cargo.Commodities() {
				n := s.Cargo.Add(c, t.Cargo.Get(c))
				t.Cargo.Remove(c, n)
				taken += n
			}
		}
		sc.Post(world.NewShipEvent(s, t, world.EventBoard))
		sc.SimLog.AddShip(sc.Tick, s, "board", "plunder", t.Name, float64(taken))
	}
}

// deploy launches fighters while the carrier holds Deploy.
func (sc *Scene) deploy(s *world.Ship, on bool) {
	for i := range s.Bays {
		if c := s.Bays[i].Ship; c != nil {
			c.DeployOrder = on
		}
	}
	for _, e := range s.Escorts {
		if e.CanBeCarried() && e.System != nil {
			e.DeployOrder = on
		}
	}
	if !on {
		return
	}
	for _, c := range s.Launch() {
		sc.SimLog.AddShip(sc.Tick, c, "carrier", "launch", s.Name, 0)
	}
}

func (sc *Scene) cloak(s *world.Ship, on bool) {
	if on && s.Attributes.Get("cloak") > 0 {
		s.Cloak = math.Min(1, s.Cloak+cloakRate)
		return
	}
	s.Cloak = math.Max(0, s.Cloak-cloakRate)
}

// scan completes a scan of the target once it is within reach.
func (sc *Scene) scan(s *world.Ship) {
	t := s.TargetShip
	if t == nil || t.System != s.System {
		return
	}
	key := [2]world.ShipID{s.ID, t.ID}
	if sc.scanned[key] {
		return
	}
	cargo, outfits := s.Attributes.Get("cargo scan power"), s.Attributes.Get("outfit scan power")
	r := 100 * math.Sqrt(math.Max(cargo, outfits))
	if r <= 0 || s.Position.DistanceSquared(t.Position) > r*r {
		return
	}
	var ev world.EventType
	if cargo > 0 {
		ev |= world.EventScanCargo
	}
	if outfits > 0 {
		ev |= world.EventScanOutfits
	}
	sc.scanned[key] = true
	sc.Post(world.NewShipEvent(s, t, ev))
	sc.SimLog.AddShip(sc.Tick, s, "target", "scan", t.Name, 0)
}

// --- Weapons ---

// fire slews turrets, then resolves every shot as an instant ray that hits
// the first ship or asteroid in its path.
func (sc *Scene) fire(s *world.Ship) {
	fc := s.FireCommands()
	for i, hp := range s.Hardpoints {
		if hp.Reload > 0 {
			hp.Reload--
		}
		if hp.CanAim() {
			hp.Angle = hp.ClampToArc(hp.Angle.AddDegrees(fc.Aim(i) * hp.Weapon.TurretTurn))
		}
		w := hp.Weapon
		hp.WasFiring = false
		if !fc.HasFire(i) || !hp.IsReady() || w == nil || !s.CanFireAmmo(w) {
			continue
		}
		hp.Reload = w.Reload
		hp.WasFiring = true
		if w.Ammo != "" {
			s.Ammo[w.Ammo] -= max(w.AmmoUsage, 1)
		}
		if c := s.Attributes.Get("energy capacity"); c > 0 {
			s.Energy = math.Max(0, s.Energy-w.FiringEnergy/c)
		}
		sc.resolveShot(s, hp)
	}
}

func (sc *Scene) resolveShot(s *world.Ship, hp *world.Hardpoint) {
	w := hp.Weapon
	start := s.HardpointPosition(hp)
	travel := s.Facing.Add(hp.Angle).Unit().Mul(w.Range())

	best := 1.
	var hitShip *world.Ship
	var hitRock *world.Minable
	for _, o := range sc.liveShips {
		if o == s || o.System != s.System || !o.IsTargetable() || (!o.Government.IsEnemy(s.Government) && o != s.TargetShip) {
			continue
		}
		if f := o.CollisionMask().Collide(start.Sub(o.Position), travel, o.Facing); f < best {
			best, hitShip = f, o
		}
	}
	if s.System == sc.home() {
		for _, m := range sc.Minables {
			if !m.IsLive() {
				continue
			}
			if f := (world.CircleMask{Radius: m.Radius}).Collide(start.Sub(m.Position), travel, 0); f < best {
				best, hitShip, hitRock = f, nil, m
			}
		}
	}

	switch {
	case hitShip != nil:
		sc.damage(s, hitShip, w)
	case hitRock != nil:
		hitRock.Hull -= w.HullDamage
		if hitRock.Hull <= 0 {
			sc.DestroyAsteroid(hitRock)
		}
	}
}

func (sc *Scene) damage(from, t *world.Ship, w *world.Weapon) {
	ev := world.EventProvoke
	hullDamage := w.HullDamage
	if c := t.Attributes.Get("shields"); c > 0 && t.Shields > 0 {
		t.Shields -= w.ShieldDamage / c
		hullDamage = 0
		if t.Shields < 0 {
			t.Shields = 0
		}
	}
	if c := t.Attributes.Get("hull"); c > 0 && hullDamage > 0 {
		t.Hull -= hullDamage / c
	}
	sc.SimLog.AddShip(sc.Tick, from, "fire", "hit", t.Name, t.Health())

	switch {
	case t.Hull <= 0:
		t.Destroyed = true
		ev |= world.EventDestroy
		sc.SimLog.AddShip(sc.Tick, t, "fire", "destroyed", from.Name, 0)
		sc.log.Info().Str("ship", t.Name).Str("by", from.Name).Int("tick", sc.Tick).Msg("ship destroyed")
	case t.Hull < disableHull && !t.Disabled:
		t.Disabled = true
		ev |= world.EventDisable
		sc.SimLog.AddShip(sc.Tick, t, "fire", "disabled", from.Name, t.Hull)
	}
	sc.Post(world.NewShipEvent(from, t, ev))
}

// DestroyAsteroid breaks a rock into one box per ton of its payload.
func (sc *Scene) DestroyAsteroid(m *world.Minable) {
	if !m.IsLive() {
		return
	}
	m.Destroyed = true
	names := make([]string, 0, len(m.Payload))
	for c := range m.Payload {
		names = append(names, c)
	}
	slices.Sort(names)
	boxes := 0
	for _, c := range names {
		for range m.Payload[c] {
			spread := geom.Pt(sc.rng.Float64()-.5, sc.rng.Float64()-.5)
			sc.Flotsam = append(sc.Flotsam, &world.Flotsam{
				Position:  m.Position.Add(spread.Mul(m.Radius)),
				Velocity:  m.Velocity.Add(spread),
				Commodity: c,
				Count:     1,
				Lifetime:  rockBoxLifetime,
			})
			boxes++
		}
	}
	sc.SimLog.Add(sc.Tick, "--", "--", "asteroid", "destroyed", m.Name, float64(boxes))
}

// --- Cargo ---

// collect scoops up every box in reach that was not dumped by this ship.
func (sc *Scene) collect(s *world.Ship) {
	if s.Cargo == nil || s.Cargo.Free() <= 0 || s.System != sc.home() {
		return
	}
	r := s.Radius + pickupRange
	for _, f := range sc.Flotsam {
		if !f.IsLive() || f.Source == s || f.Position.DistanceSquared(s.Position) > r*r {
			continue
		}
		n := s.Cargo.Add(f.Commodity, f.Count)
		if n == 0 {
			return
		}
		f.Count -= n
		if f.Count == 0 {
			f.Collected = true
		}
		sc.SimLog.AddShip(sc.Tick, s, "cargo", "pickup", f.Commodity, float64(n))
	}
}

// dropJettisoned turns cargo dumped this tick into boxes.
func (sc *Scene) dropJettisoned(s *world.Ship) {
	for _, j := range s.Jettisoned {
		spread := geom.Pt(sc.rng.Float64()-.5, sc.rng.Float64()-.5)
		sc.Flotsam = append(sc.Flotsam, &world.Flotsam{
			Position:  s.Position,
			Velocity:  s.Velocity.Add(spread),
			Commodity: j.Commodity,
			Count:     j.Tons,
			Source:    s,
			Lifetime:  jettisonLifetime,
		})
		sc.SimLog.AddShip(sc.Tick, s, "cargo", "jettison", j.Commodity, float64(j.Tons))
	}
	s.Jettisoned = s.Jettisoned[:0]
}

// drift moves boxes and rocks and ages the boxes.
func (sc *Scene) drift() {
	for _, f := range sc.Flotsam {
		if !f.IsLive() {
			continue
		}
		f.Position = f.Position.Add(f.Velocity)
		f.Velocity = f.Velocity.Mul(flotsamDrag)
		f.Lifetime--
	}
	for _, m := range sc.Minables {
		if m.IsLive() {
			m.Position = m.Position.Add(m.Velocity)
		}
	}
}

// home is the system the scene's asteroids and flotsam float in.
func (sc *Scene) home() *world.System {
	if len(sc.Systems) == 0 {
		return nil
	}
	return sc.Systems[0]
}
