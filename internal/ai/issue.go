package ai

import (
	"fmt"
	"math"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/messages"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// squadSpread scales the largest offset a move order keeps from the squad's
// center of gravity: sqrt(squadSpread * squad size).
const squadSpread = 10000.

// describe is the tail of the order message, after the subject.
func describe(t orders.Type, target *world.Ship) string {
	name := ""
	if target != nil {
		name = target.Name
	}
	switch t {
	case orders.HoldFire:
		return "holding fire."
	case orders.HoldPosition:
		return "holding position."
	case orders.Gather:
		return "gathering around your flagship."
	case orders.MoveTo:
		return "moving to the given location."
	case orders.Attack:
		return fmt.Sprintf("focusing fire on %q.", name)
	case orders.FinishOff:
		return fmt.Sprintf("finishing off %q.", name)
	case orders.KeepStation:
		return fmt.Sprintf("keeping station with %q.", name)
	case orders.Mine:
		return "mining the targeted asteroid."
	case orders.Harvest:
		return "preparing to harvest."
	}
	return t.String() + "."
}

// orderable lists the ships an order from p goes to: the selected escorts,
// or every owned ship but the flagship.
func (c *Controller) orderable(p *Player, o orders.Order) (ships []*world.Ship, who string) {
	flag := p.flagship()
	keep := func(s *world.Ship) bool {
		return s != nil && s != flag && c.ShipAlive(s) && !s.Destroyed && !s.IsParked &&
			s.System != nil && s != o.TargetShip
	}
	pool, selected := p.Selected, true
	if len(pool) == 0 {
		pool, selected = p.Ships, false
	}
	for _, s := range pool {
		if keep(s) {
			ships = append(ships, s)
		}
	}
	switch {
	case selected && len(ships) > 1:
		who = "The selected escorts are "
	case selected:
		who = "The selected escort is "
	case len(ships) > 1:
		who = "Your fleet is "
	case len(ships) == 1:
		who = ships[0].Name + " is "
	}
	return ships, who
}

// issueOrders gives o to the player's escorts. Issuing an order every
// recipient already holds takes it back instead. Move orders never toggle:
// the squad moves as a mass, each ship keeping its offset from the
// squad's center of gravity.
func (c *Controller) issueOrders(p *Player, o orders.Order, description string) {
	flag := p.flagship()
	if flag == nil {
		return
	}
	if t := o.TargetShip; t != nil && t != flag {
		if !c.ShipAlive(t) || t.System != flag.System || !(t.IsTargetable() || t.IsYours) {
			return
		}
	}
	ships, who := c.orderable(p, o)
	if len(ships) == 0 {
		return
	}

	isMove := o.Type == orders.MoveTo
	var center geom.Point
	if isMove {
		n := 0
		for _, s := range ships {
			if s.System == flag.System && !s.Disabled {
				center = center.Add(s.Position)
				n++
			}
		}
		if n > 0 {
			center = center.Mul(1 / float64(n))
		}
	}
	maxOffset := math.Sqrt(squadSpread * float64(len(ships)))

	// Each ship gets its own copy: hold and move orders carry its point.
	perShip := make([]orders.Order, len(ships))
	allMatch := !isMove
	for i, s := range ships {
		so := o
		switch {
		case isMove:
			off := s.Position.Sub(center)
			if l := off.Length(); l > maxOffset {
				off = off.Mul(maxOffset / l)
			}
			so.TargetPoint = o.TargetPoint.Add(off)
		case o.Type == orders.HoldPosition:
			so.TargetPoint = s.Position
			so.TargetSystem = s.System
		}
		perShip[i] = so
		set, ok := c.orders[s.ID]
		// A held post counts as held wherever the ship now sits.
		matches := ok && (set.Matches(so) || (o.Type == orders.HoldPosition && set.Has(orders.HoldPosition|orders.HoldActive)))
		allMatch = allMatch && matches
	}

	if allMatch {
		for _, s := range ships {
			set := c.orders[s.ID]
			set.Remove(o.Type)
			if o.Type == orders.HoldPosition {
				set.Remove(orders.HoldActive)
			}
			if set.IsEmpty() {
				delete(c.orders, s.ID)
			}
		}
		c.post(messages.CategoryFleet, messages.Normal, "", who+"no longer "+description)
	} else {
		for i, s := range ships {
			set, ok := c.orders[s.ID]
			if !ok {
				set = &orders.Set{}
				c.orders[s.ID] = set
			}
			set.Apply(perShip[i])
		}
		c.post(messages.CategoryFleet, messages.Normal, "", who+description)
	}
	c.log.Debug().Int("tick", c.tick).Stringer("order", o.Type).Int("ships", len(ships)).
		Bool("cleared", allMatch).Msg("orders issued")
}

// IssueShipTarget orders the fleet at a clicked ship: keep station with one
// of the player's own, finish off a disabled one, attack anything else.
func (c *Controller) IssueShipTarget(p *Player, target *world.Ship) {
	flag := p.flagship()
	if flag == nil || target == nil {
		return
	}
	var typ orders.Type
	switch {
	case target.IsYours:
		typ = orders.KeepStation
	case target.Disabled:
		typ = orders.FinishOff
	default:
		typ = orders.Attack
		flag.TargetShip = target
	}
	c.issueOrders(p, orders.Order{Type: typ, TargetShip: target}, describe(typ, target))
}

// IssueAsteroidTarget orders the fleet to mine a clicked asteroid.
func (c *Controller) IssueAsteroidTarget(p *Player, target *world.Minable) {
	flag := p.flagship()
	if flag == nil || target == nil || !target.IsLive() {
		return
	}
	flag.TargetAsteroid = target
	c.issueOrders(p, orders.Order{Type: orders.Mine, TargetAsteroid: target}, describe(orders.Mine, nil))
}

// IssueMoveTarget orders the fleet to a point in sys. A nil sys means the
// flagship's system.
func (c *Controller) IssueMoveTarget(p *Player, target geom.Point, sys *world.System) {
	if sys == nil {
		sys = p.System()
	}
	c.issueOrders(p, orders.Order{Type: orders.MoveTo, TargetPoint: target, TargetSystem: sys}, describe(orders.MoveTo, nil))
}
