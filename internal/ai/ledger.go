package ai

import (
	"fmt"

	"github.com/Garsondee/Ship-Sense/internal/messages"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// ledger remembers what ships and governments have done to each other. It
// holds ship ids, never pointers, so a departed ship costs one failed
// lookup before its rows are pruned.
type ledger struct {
	actions           map[world.ShipID]map[world.ShipID]world.EventType
	governmentActions map[*world.Government]map[world.ShipID]world.EventType
	notoriety         map[world.ShipID]map[*world.Government]world.EventType
	playerActions     map[world.ShipID]world.EventType
}

func newLedger() ledger {
	return ledger{
		actions:           map[world.ShipID]map[world.ShipID]world.EventType{},
		governmentActions: map[*world.Government]map[world.ShipID]world.EventType{},
		notoriety:         map[world.ShipID]map[*world.Government]world.EventType{},
		playerActions:     map[world.ShipID]world.EventType{},
	}
}

// has reports whether actor has ever done any of t to target.
func (l *ledger) has(actor, target world.ShipID, t world.EventType) bool {
	return l.actions[actor][target].Has(t)
}

// govHas reports whether any ship of gov has done any of t to target.
func (l *ledger) govHas(gov *world.Government, target world.ShipID, t world.EventType) bool {
	return l.governmentActions[gov][target].Has(t)
}

// notorious reports whether actor has done any of t to a ship of gov.
func (l *ledger) notorious(actor world.ShipID, gov *world.Government, t world.EventType) bool {
	return l.notoriety[actor][gov].Has(t)
}

// add folds one event in and returns the bits that were new for the player
// row, PROVOKE included on every repeat.
func (l *ledger) add(e world.ShipEvent) world.EventType {
	if e.Actor != nil && e.Target != nil {
		row := l.actions[e.Actor.ID]
		if row == nil {
			row = map[world.ShipID]world.EventType{}
			l.actions[e.Actor.ID] = row
		}
		row[e.Target.ID] |= e.Type
	}
	if e.ActorGov != nil && e.Target != nil {
		row := l.governmentActions[e.ActorGov]
		if row == nil {
			row = map[world.ShipID]world.EventType{}
			l.governmentActions[e.ActorGov] = row
		}
		row[e.Target.ID] |= e.Type
	}
	if e.Actor != nil && e.TargetGov != nil {
		row := l.notoriety[e.Actor.ID]
		if row == nil {
			row = map[*world.Government]world.EventType{}
			l.notoriety[e.Actor.ID] = row
		}
		row[e.TargetGov] |= e.Type
	}
	if !e.ActorGov.IsPlayer() || e.Target == nil {
		return 0
	}
	old := l.playerActions[e.Target.ID]
	l.playerActions[e.Target.ID] = old | e.Type
	fresh := e.Type &^ old
	if e.Type.Has(world.EventProvoke) {
		fresh |= world.EventProvoke
	}
	return fresh
}

// transfer moves everything the captured ship did, and everything done to
// it, under the captor's government.
func (l *ledger) transfer(captured world.ShipID, from, to *world.Government) {
	if from == nil || to == nil || from == to {
		return
	}
	if row, ok := l.governmentActions[from]; ok {
		if bits, ok := row[captured]; ok {
			dst := l.governmentActions[to]
			if dst == nil {
				dst = map[world.ShipID]world.EventType{}
				l.governmentActions[to] = dst
			}
			dst[captured] |= bits
			delete(row, captured)
		}
	}
	if row, ok := l.notoriety[captured]; ok {
		if bits, ok := row[from]; ok {
			row[to] |= bits
			delete(row, from)
		}
	}
}

// reap drops every row that names a ship not in live.
func (l *ledger) reap(live map[world.ShipID]*world.Ship) {
	for actor, row := range l.actions {
		if live[actor] == nil {
			delete(l.actions, actor)
			continue
		}
		for target := range row {
			if live[target] == nil {
				delete(row, target)
			}
		}
	}
	for _, row := range l.governmentActions {
		for target := range row {
			if live[target] == nil {
				delete(row, target)
			}
		}
	}
	for actor := range l.notoriety {
		if live[actor] == nil {
			delete(l.notoriety, actor)
		}
	}
	for target := range l.playerActions {
		if live[target] == nil {
			delete(l.playerActions, target)
		}
	}
}

// updateEvents folds this tick's events into the ledger and the per-ship
// bookkeeping that depends on them.
func (c *Controller) updateEvents(events []world.ShipEvent) {
	for _, e := range events {
		fresh := c.ledger.add(e)
		if fresh != 0 && e.TargetGov != nil {
			e.TargetGov.Offend(fresh)
		}

		if e.Type.Has(world.EventScanCargo|world.EventScanOutfits) && e.Actor != nil {
			c.scanCount[e.Actor.ID]++
			if e.Target != nil && e.Target.IsYours && e.Actor.Government != nil &&
				!e.Actor.Government.IsPlayer() {
				c.post(messages.CategoryTarget, messages.High, e.Actor.Name,
					fmt.Sprintf("You are being scanned by the %s ship \"%s.\"", e.Actor.Government.Name, e.Actor.Name))
			}
		}

		if e.Type.Has(world.EventBoard) && e.Actor != nil && e.Target != nil {
			c.boardingPartner[e.Actor.ID] = e.Target.ID
		}

		if e.Type.Has(world.EventCapture) && e.Target != nil && e.Actor != nil {
			c.capture(e)
		}
	}
}

// capture hands the captured ship and the ships in its bays to the
// captor's government, resetting their per-ship bookkeeping.
func (c *Controller) capture(e world.ShipEvent) {
	captured := e.Target
	c.ledger.transfer(captured.ID, e.TargetGov, e.Actor.Government)
	c.forget(captured.ID)
	for _, b := range captured.Bays {
		if b.Ship == nil {
			continue
		}
		c.ledger.transfer(b.Ship.ID, e.TargetGov, e.Actor.Government)
		c.forget(b.Ship.ID)
	}
	c.log.Debug().Uint64("ship", uint64(captured.ID)).Uint64("captor", uint64(e.Actor.ID)).
		Int("tick", c.tick).Msg("ship captured")
}

// forget clears the per-ship scalars of id.
func (c *Controller) forget(id world.ShipID) {
	c.unswarm(id)
	delete(c.fenceCount, id)
	delete(c.scanCount, id)
	delete(c.scanTime, id)
	delete(c.miningTime, id)
	delete(c.miningAngle, id)
	delete(c.appeasement, id)
	delete(c.boardingPartner, id)
	delete(c.shipStrength, id)
	delete(c.helperList, id)
}

// hasBoarded reports whether actor has boarded target.
func (c *Controller) hasBoarded(actor, target *world.Ship) bool {
	return c.ledger.has(actor.ID, target.ID, world.EventBoard)
}
