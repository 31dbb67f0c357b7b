package ai

import (
	"fmt"
	"math"
	"sort"

	"github.com/Garsondee/Ship-Sense/internal/config"
	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/messages"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

const (
	manualKeys       = world.Forward | world.Back | world.Left | world.Right | world.Afterburner
	nonSpaceportCost = 10000. // distance penalty for planets without a spaceport
	boardRadius      = 40.
	boardSlow        = .8
)

// updateKeys records the keys held this tick, cancels the autopilot on
// manual input and latches newly pressed autopilot and fleet keys.
func (c *Controller) updateKeys(p *Player, held world.Command) {
	c.keyDown = held &^ c.keyHeld
	c.keyHeld = held
	flag := p.flagship()
	if flag == nil {
		c.keyStuck = 0
		return
	}

	down := c.keyDown
	cancel := held&manualKeys != 0 || down&world.Autopilot&^c.keyStuck != 0
	if cancel && c.keyStuck&world.Autopilot != 0 {
		c.post(messages.CategoryAutopilot, messages.Normal, "", "Disengaging autopilot.")
		c.log.Debug().Uint64("ship", uint64(flag.ID)).Int("tick", c.tick).
			Stringer("keys", c.keyStuck).Msg("autopilot cancelled")
		c.keyStuck = 0
	}
	c.keyStuck |= down & world.Autopilot
	if down.Has(world.Jump) && c.hasFleet(p) {
		c.keyStuck |= world.FleetJump
	}

	c.fleetKeys(p, flag, down)
}

// hasFleet reports an escort of the player in the flagship's system that
// would take part in a fleet jump.
func (c *Controller) hasFleet(p *Player) bool {
	flag := p.flagship()
	for _, s := range p.Ships {
		if s != flag && c.ShipAlive(s) && s.System == flag.System && !s.CanBeCarried() && !s.IsParked {
			return true
		}
	}
	return false
}

// fleetKeys turns the fleet command keys into orders.
func (c *Controller) fleetKeys(p *Player, flag *world.Ship, down world.Command) {
	if down.Has(world.Deploy) {
		c.isLaunching = !c.isLaunching
		if c.isLaunching {
			c.post(messages.CategoryFleet, messages.Normal, "", "Deploying fighters.")
		} else {
			c.post(messages.CategoryFleet, messages.Normal, "", "Recalling fighters.")
		}
	}
	if down.Has(world.Fight) {
		if t := flag.TargetShip; t != nil && c.ShipAlive(t) {
			typ := orders.Attack
			if t.Disabled {
				typ = orders.FinishOff
			}
			c.issueOrders(p, orders.Order{Type: typ, TargetShip: t}, describe(typ, t))
		}
	}
	if down.Has(world.HoldFire) {
		c.issueOrders(p, orders.Order{Type: orders.HoldFire}, describe(orders.HoldFire, nil))
	}
	if down.Has(world.HoldPosition) {
		c.issueOrders(p, orders.Order{Type: orders.HoldPosition}, describe(orders.HoldPosition, nil))
	}
	if down.Has(world.Gather) {
		c.issueOrders(p, orders.Order{Type: orders.Gather, TargetShip: flag}, describe(orders.Gather, flag))
	}
	if down.Has(world.Harvest) {
		c.issueOrders(p, orders.Order{Type: orders.Harvest}, describe(orders.Harvest, nil))
	}
	if down.Has(world.Ammo) {
		var text string
		switch {
		case !c.escortsUseAmmo:
			c.escortsUseAmmo, c.escortsAreFrugal = true, false
			text = "Your escorts will now expend ammunition."
		case !c.escortsAreFrugal:
			c.escortsAreFrugal = true
			text = "Your escorts will now use ammunition frugally."
		default:
			c.escortsUseAmmo, c.escortsAreFrugal = false, false
			text = "Your escorts will no longer expend ammunition."
		}
		c.post(messages.CategoryFleet, messages.Normal, "", text)
	}
}

// movePlayer turns the player's keys into commands for the flagship.
func (c *Controller) movePlayer(ship *world.Ship, in Input) {
	var cmd world.MovementCommand
	fire := ship.StagedFireCommands()
	fire.Clear(len(ship.Hardpoints))
	defer func() {
		ship.SetCommands(cmd)
		ship.SetFireCommands(fire)
	}()
	if ship.Destroyed || ship.System == nil {
		return
	}
	p := in.Player
	down, held := c.keyDown, c.keyHeld

	if p.HasTravelPlan() && !ship.IsHyperspacing() {
		ship.TargetSystem = p.TravelPlan[0]
		if d := p.TravelDestination; d != nil && hasObject(ship.System, d) {
			ship.TargetStellar = d
		}
	}

	switch {
	case down.Has(world.Nearest):
		c.targetNearest(ship, held.Has(world.Shift))
	case down.Has(world.Target):
		c.cycleTarget(ship, p, held.Has(world.Shift))
	case down.Has(world.Board):
		c.cycleBoarding(ship)
	case down.Has(world.NearestAsteroid):
		c.targetAsteroid(ship)
	case down.Has(world.Land):
		c.chooseLanding(ship, p)
	case down.Has(world.Jump):
		c.chooseJump(ship)
	case down.Has(world.Scan):
		cmd.Set(world.Scan)
	}

	if held.Has(world.Back) {
		if ship.ReverseAcceleration() > 0 {
			cmd.Set(world.Back)
		} else {
			cmd.SetTurn(TurnBackward(ship))
		}
	}
	if !held.Has(world.Back) || ship.ReverseAcceleration() > 0 {
		turn := 0.
		if held.Has(world.Right) {
			turn++
		}
		if held.Has(world.Left) {
			turn--
		}
		if turn != 0 {
			cmd.SetTurn(turn)
		}
	}
	if held.Has(world.Forward) {
		cmd.Set(world.Forward)
	}
	if held.Has(world.Afterburner) {
		cmd.Set(world.Afterburner)
	}
	if held.Has(world.Cloak) {
		cmd.Set(world.Cloak)
	}
	if held.Has(world.Primary) {
		for i, hp := range ship.Hardpoints {
			if hp.IsReady() && hp.Weapon.Ammo == "" {
				fire.SetFire(i)
			}
		}
	}
	if held.Has(world.Secondary) {
		for i, hp := range ship.Hardpoints {
			if hp.IsReady() && hp.Weapon.Ammo != "" && ship.CanFireAmmo(hp.Weapon) {
				fire.SetFire(i)
			}
		}
	}

	c.runAutopilot(ship, &cmd)

	if c.prefs.AimTurretsWithMouse {
		c.aimTurretsAtPoint(ship, &fire, in.Mouse)
	} else {
		c.AimTurrets(ship, &fire, false)
	}
	if c.keyStuck&world.Autopilot == 0 {
		c.AutoFire(ship, &fire, false, true)
	}

	aim := c.prefs.Aim()
	wantsAim := aim == config.AimAlways || (aim == config.AimWhenFiring && held.Has(world.Primary))
	if wantsAim && cmd.Turn() == 0 && held&(world.Left|world.Right|world.Back) == 0 && !c.keyStuck.Has(world.Board) {
		if t := ship.TargetShip; t != nil && c.ShipAlive(t) && t.System == ship.System {
			cmd.SetTurn(TurnToward(ship, TargetAim(ship, t.Position, t.Velocity)))
		}
	}

	if c.isLaunching {
		cmd.Set(world.Deploy)
	}
}

// runAutopilot flies whichever autopilot bit is latched. Finished or
// impossible maneuvers unlatch themselves.
func (c *Controller) runAutopilot(ship *world.Ship, cmd *world.MovementCommand) {
	stuck := c.keyStuck
	switch {
	case stuck.Has(world.Land):
		o := ship.TargetStellar
		switch {
		case o == nil || ship.Landing || ship.Zoom < 1:
			c.keyStuck &^= world.Land
		case ship.IsHyperspacing():
			c.post(messages.CategoryAutopilot, messages.High, "", "You cannot land while in hyperspace.")
			c.keyStuck &^= world.Land
		default:
			MoveToPlanet(ship, cmd)
			cmd.Set(world.Land)
		}
	case stuck.Has(world.Jump):
		switch {
		case ship.IsHyperspacing():
			cmd.Set(world.Jump)
			if !stuck.Has(world.FleetJump) {
				return
			}
			// Keep the fleet bit visible so escorts already lined up follow.
			cmd.Set(world.FleetJump)
		case ship.TargetSystem == nil || ship.TargetSystem == ship.System:
			c.keyStuck &^= world.Jump | world.FleetJump
		case ship.Landing || ship.Zoom < 1:
			c.post(messages.CategoryAutopilot, messages.High, "", "You cannot jump while landing.")
			c.keyStuck &^= world.Jump | world.FleetJump
		case ship.JumpsRemaining() == 0 || ship.FuelAmount() < ship.JumpFuel(ship.TargetSystem):
			c.post(messages.CategoryAutopilot, messages.High, "", "You do not have enough fuel to make a hyperspace jump.")
			c.keyStuck &^= world.Jump | world.FleetJump
		default:
			PrepareForHyperspace(ship, cmd)
			cmd.Set(world.Jump)
			if stuck.Has(world.FleetJump) {
				cmd.Set(world.FleetJump)
				if !c.fleetReady(ship) {
					cmd.Set(world.Wait)
				}
			}
		}
	case stuck.Has(world.Board):
		t := ship.TargetShip
		if t == nil || !c.ShipAlive(t) || t.System != ship.System || !t.Disabled || c.hasBoarded(ship, t) {
			c.keyStuck &^= world.Board
			return
		}
		MoveTo(ship, cmd, t.Position, t.Velocity, boardRadius, boardSlow, 0)
		cmd.Set(world.Board)
	case stuck.Has(world.Stop):
		if Stop(ship, cmd, 0, geom.Point{}) {
			c.keyStuck &^= world.Stop
		}
	case stuck.Has(world.AutoSteer):
		if t := ship.TargetShip; t != nil && c.ShipAlive(t) && t.System == ship.System {
			cmd.SetTurn(TurnToward(ship, TargetAim(ship, t.Position, t.Velocity)))
		}
	}
}

// targetNearest selects the nearest active enemy, then the nearest
// disabled one. With includeFriends any other ship counts, ranked below
// both.
func (c *Controller) targetNearest(ship *world.Ship, includeFriends bool) {
	closest := math.Inf(1)
	bestState := -1
	var best *world.Ship
	for _, o := range c.ships {
		if o == ship || o.System != ship.System || !o.IsTargetable() {
			continue
		}
		state := 0
		if o.Government.IsEnemy(ship.Government) {
			state = 1
			if !o.Disabled {
				state = 2
			}
		} else if !includeFriends {
			continue
		}
		d := o.Position.Distance(ship.Position)
		if state > bestState || (state == bestState && d < closest) {
			best, closest, bestState = o, d, state
		}
	}
	if best != nil {
		ship.TargetShip = best
	}
}

// cycleTarget steps to the next targetable ship after the current target,
// among the player's own ships with mine set and among everyone else
// otherwise. Past the end the target clears.
func (c *Controller) cycleTarget(ship *world.Ship, p *Player, mine bool) {
	gov := p.Government()
	current := ship.TargetShip
	selectNext := current == nil
	for _, o := range c.ships {
		if o == current {
			selectNext = true
			continue
		}
		if o != ship && selectNext && o.System == ship.System && o.IsTargetable() && (o.Government == gov) == mine {
			ship.TargetShip = o
			return
		}
	}
	ship.TargetShip = nil
}

// boardValue is what a disabled ship is worth to the player.
func boardValue(s *world.Ship) float64 {
	v := s.Attributes.Get("cost")
	if s.Cargo != nil {
		v += float64(s.Cargo.Used())
	}
	return v
}

// cycleBoarding targets the next boardable ship in the order the boarding
// preference ranks them.
func (c *Controller) cycleBoarding(ship *world.Ship) {
	var cands []*world.Ship
	for _, o := range c.ships {
		if o != ship && o.System == ship.System && o.IsTargetable() && o.Disabled && o.Hull > 0 &&
			!o.IsYours && !c.hasBoarded(ship, o) {
			cands = append(cands, o)
		}
	}
	if len(cands) == 0 {
		return
	}
	mode := c.prefs.Boarding()
	rank := func(o *world.Ship) float64 {
		d := math.Max(o.Position.Distance(ship.Position), 1)
		switch mode {
		case config.BoardValue:
			return -boardValue(o)
		case config.BoardMixed:
			return -boardValue(o) / d
		}
		return d
	}
	sort.SliceStable(cands, func(i, j int) bool { return rank(cands[i]) < rank(cands[j]) })
	next := cands[0]
	for i, o := range cands {
		if o == ship.TargetShip {
			next = cands[(i+1)%len(cands)]
			break
		}
	}
	ship.TargetShip = next
}

// targetAsteroid selects the nearest live asteroid, or the richest one per
// unit of distance when the player ranks asteroids by value.
func (c *Controller) targetAsteroid(ship *world.Ship) {
	byValue := c.prefs.Asteroids() == config.AsteroidValue
	best := math.Inf(1)
	var pick *world.Minable
	for _, m := range c.minables {
		if !c.AsteroidAlive(m) {
			continue
		}
		d := math.Max(m.Position.Distance(ship.Position), 1)
		score := d
		if byValue {
			payload := 0
			for _, n := range m.Payload {
				payload += n
			}
			score = -float64(payload) / d
		}
		if score < best {
			best = score
			pick = m
		}
	}
	if pick != nil {
		ship.TargetAsteroid = pick
	}
}

// chooseLanding picks or cycles the landing target and tells the player
// anything that stands in the way.
func (c *Controller) chooseLanding(ship *world.Ship, p *Player) {
	if ship.IsHyperspacing() {
		c.post(messages.CategoryAutopilot, messages.High, "", "You cannot land while in hyperspace.")
		c.keyStuck &^= world.Land
		return
	}
	sys := ship.System
	target := ship.TargetStellar
	if target != nil && !hasObject(sys, target) {
		target = nil
	}
	var text string
	switch {
	case target != nil && ship.Position.Distance(target.Position) < target.Radius:
		// Already over the chosen planet: a second press does not toggle.
	case target != nil:
		found := false
		var next *world.StellarObject
		for _, o := range sys.Objects {
			if o.Planet == nil {
				continue
			}
			if found {
				next = o
				break
			}
			found = o == target
		}
		if next == nil {
			for _, o := range sys.Objects {
				if o.Planet != nil {
					next = o
					break
				}
			}
		}
		ship.TargetStellar = next
		if next != nil && !next.CanLand(ship) {
			text = "The authorities on this planet refuse to clear you to land here."
		}
	default:
		closest := math.Inf(1)
		count := 0
		for _, o := range sys.Objects {
			if o.Planet == nil {
				continue
			}
			count++
			d := ship.Position.Distance(o.Position)
			switch {
			case o == p.TravelDestination:
				d = 0
			case !o.Planet.Spaceport && !o.Planet.IsWormhole():
				d += nonSpaceportCost
			}
			if d < closest {
				closest = d
				ship.TargetStellar = o
			}
		}
		switch t := ship.TargetStellar; {
		case t == nil:
			text = "There are no planets in this system that you can land on."
			c.keyStuck &^= world.Land
		case !t.CanLand(ship):
			text = "The authorities on this planet refuse to clear you to land here."
		case count > 1:
			text = fmt.Sprintf("You can land on more than one planet in this system. Landing on %s.", t.Name)
		}
	}
	if text != "" {
		c.post(messages.CategoryAutopilot, messages.High, "", text)
	}
}

// chooseJump picks the linked system the flagship faces most when no
// course is plotted and announces the jump.
func (c *Controller) chooseJump(ship *world.Ship) {
	if !ship.HasHyperdrive() && !ship.HasJumpDrive() {
		c.post(messages.CategoryAutopilot, messages.High, "", "You do not have a hyperdrive installed.")
		c.keyStuck &^= world.Jump | world.FleetJump
		return
	}
	if ship.Landing || ship.Zoom < 1 {
		c.post(messages.CategoryAutopilot, messages.High, "", "You cannot jump while landing.")
		c.keyStuck &^= world.Jump | world.FleetJump
		return
	}
	if ship.TargetSystem == nil {
		best := -2.
		facing := ship.Facing.Unit()
		for _, l := range ship.System.Links {
			dir := l.Position.Sub(ship.System.Position).Unit()
			if match := facing.Dot(dir); match > best {
				best = match
				ship.TargetSystem = l
			}
		}
	}
	if ship.TargetSystem == nil {
		c.keyStuck &^= world.Jump | world.FleetJump
		return
	}
	c.post(messages.CategoryAutopilot, messages.Normal, "",
		fmt.Sprintf("Engaging autopilot to jump to the %s system.", ship.TargetSystem.Name))
	c.log.Debug().Uint64("ship", uint64(ship.ID)).Int("tick", c.tick).
		Str("system", ship.TargetSystem.Name).Msg("autopilot engaged")
}
