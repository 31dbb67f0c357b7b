package ai

import (
	"cmp"
	"slices"
	"sort"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// LedgerKind names which ledger table a row came from.
type LedgerKind string

const (
	LedgerShip       LedgerKind = "ship"       // actor ship to target ship
	LedgerGovernment LedgerKind = "government" // government to target ship
	LedgerNotoriety  LedgerKind = "notoriety"  // actor ship to government
	LedgerPlayer     LedgerKind = "player"     // player to target ship
)

// LedgerRow is one flattened ledger entry.
type LedgerRow struct {
	Kind       LedgerKind
	Actor      world.ShipID
	Target     world.ShipID
	Government string
	Events     world.EventType
}

// ShipState is the per-ship bookkeeping the controller keeps outside the
// ship, plus its order entry.
type ShipState struct {
	ID              world.ShipID
	FenceCount      int
	SwarmCount      int
	SwarmTarget     world.ShipID
	ScanCount       int
	ScanTime        int
	MiningTime      int
	MiningAngle     geom.Angle
	Appeasement     float64
	BoardingPartner world.ShipID
	Helper          world.ShipID
	Strength        int64

	HasOrders   bool
	OrderTypes  orders.Type
	OrderShip   world.ShipID
	OrderPoint  geom.Point
	OrderSystem string
}

// Snapshot is every piece of controller state that outlives a tick, keyed
// by ship id and government or system name so it can be stored.
type Snapshot struct {
	Tick             int
	Launching        bool
	EscortsUseAmmo   bool
	EscortsAreFrugal bool
	Autopilot        world.Command
	Ships            []ShipState // ascending id
	Ledger           []LedgerRow
}

// Snapshot copies the controller's state out. Asteroid order targets are
// not kept: asteroids have no stable identity.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Tick:             c.tick,
		Launching:        c.isLaunching,
		EscortsUseAmmo:   c.escortsUseAmmo,
		EscortsAreFrugal: c.escortsAreFrugal,
		Autopilot:        c.keyStuck,
	}

	ids := map[world.ShipID]bool{}
	for _, m := range []map[world.ShipID]int{c.fenceCount, c.swarmCount, c.scanCount, c.scanTime, c.miningTime} {
		for id := range m {
			ids[id] = true
		}
	}
	for id := range c.swarmTarget {
		ids[id] = true
	}
	for id := range c.miningAngle {
		ids[id] = true
	}
	for id := range c.appeasement {
		ids[id] = true
	}
	for id := range c.boardingPartner {
		ids[id] = true
	}
	for id := range c.helperList {
		ids[id] = true
	}
	for id := range c.shipStrength {
		ids[id] = true
	}
	for id := range c.orders {
		ids[id] = true
	}

	for id := range ids {
		st := ShipState{
			ID:              id,
			FenceCount:      c.fenceCount[id],
			SwarmCount:      c.swarmCount[id],
			SwarmTarget:     c.swarmTarget[id],
			ScanCount:       c.scanCount[id],
			ScanTime:        c.scanTime[id],
			MiningTime:      c.miningTime[id],
			MiningAngle:     c.miningAngle[id],
			Appeasement:     c.appeasement[id],
			BoardingPartner: c.boardingPartner[id],
			Helper:          c.helperList[id],
			Strength:        c.shipStrength[id],
		}
		if set, ok := c.orders[id]; ok {
			st.HasOrders = true
			st.OrderTypes = set.Types()
			st.OrderPoint = set.TargetPoint
			if set.TargetShip != nil {
				st.OrderShip = set.TargetShip.ID
			}
			if set.TargetSystem != nil {
				st.OrderSystem = set.TargetSystem.Name
			}
		}
		if st == (ShipState{ID: id}) {
			continue
		}
		s.Ships = append(s.Ships, st)
	}
	slices.SortFunc(s.Ships, func(a, b ShipState) int { return cmp.Compare(a.ID, b.ID) })

	for actor, row := range c.ledger.actions {
		for target, ev := range row {
			s.Ledger = append(s.Ledger, LedgerRow{Kind: LedgerShip, Actor: actor, Target: target, Events: ev})
		}
	}
	for g, row := range c.ledger.governmentActions {
		for target, ev := range row {
			s.Ledger = append(s.Ledger, LedgerRow{Kind: LedgerGovernment, Government: g.Name, Target: target, Events: ev})
		}
	}
	for actor, row := range c.ledger.notoriety {
		for g, ev := range row {
			s.Ledger = append(s.Ledger, LedgerRow{Kind: LedgerNotoriety, Actor: actor, Government: g.Name, Events: ev})
		}
	}
	for target, ev := range c.ledger.playerActions {
		s.Ledger = append(s.Ledger, LedgerRow{Kind: LedgerPlayer, Target: target, Events: ev})
	}
	sort.Slice(s.Ledger, func(i, j int) bool {
		a, b := s.Ledger[i], s.Ledger[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Actor != b.Actor {
			return a.Actor < b.Actor
		}
		if a.Government != b.Government {
			return a.Government < b.Government
		}
		return a.Target < b.Target
	})
	return s
}

// Restore replaces the controller's state with s. Governments and systems
// are resolved by name through ships; rows naming anything that cannot be
// resolved are dropped.
func (c *Controller) Restore(s Snapshot, ships []*world.Ship) {
	c.Clean()
	clear(c.orders)
	byID := make(map[world.ShipID]*world.Ship, len(ships))
	govs := map[string]*world.Government{}
	systems := map[string]*world.System{}
	for _, sh := range ships {
		byID[sh.ID] = sh
		if sh.Government != nil {
			govs[sh.Government.Name] = sh.Government
		}
		if sys := sh.System; sys != nil {
			systems[sys.Name] = sys
			for _, l := range sys.Links {
				if _, ok := systems[l.Name]; !ok {
					systems[l.Name] = l
				}
			}
		}
	}

	c.tick = s.Tick
	c.isLaunching = s.Launching
	c.escortsUseAmmo = s.EscortsUseAmmo
	c.escortsAreFrugal = s.EscortsAreFrugal
	c.keyStuck = s.Autopilot

	for _, st := range s.Ships {
		id := st.ID
		setInt(c.fenceCount, id, st.FenceCount)
		setInt(c.swarmCount, id, st.SwarmCount)
		setInt(c.scanCount, id, st.ScanCount)
		setInt(c.scanTime, id, st.ScanTime)
		setInt(c.miningTime, id, st.MiningTime)
		if st.SwarmTarget != 0 {
			c.swarmTarget[id] = st.SwarmTarget
		}
		if st.MiningAngle != 0 {
			c.miningAngle[id] = st.MiningAngle
		}
		if st.Appeasement != 0 {
			c.appeasement[id] = st.Appeasement
		}
		if st.BoardingPartner != 0 {
			c.boardingPartner[id] = st.BoardingPartner
		}
		if st.Helper != 0 {
			c.helperList[id] = st.Helper
		}
		if st.Strength != 0 {
			c.shipStrength[id] = st.Strength
		}
		if st.HasOrders {
			set := orders.Restored(st.OrderTypes, byID[st.OrderShip], nil, st.OrderPoint, systems[st.OrderSystem])
			c.orders[id] = &set
		}
	}

	for _, r := range s.Ledger {
		switch r.Kind {
		case LedgerShip:
			row := c.ledger.actions[r.Actor]
			if row == nil {
				row = map[world.ShipID]world.EventType{}
				c.ledger.actions[r.Actor] = row
			}
			row[r.Target] |= r.Events
		case LedgerGovernment:
			g := govs[r.Government]
			if g == nil {
				continue
			}
			row := c.ledger.governmentActions[g]
			if row == nil {
				row = map[world.ShipID]world.EventType{}
				c.ledger.governmentActions[g] = row
			}
			row[r.Target] |= r.Events
		case LedgerNotoriety:
			g := govs[r.Government]
			if g == nil {
				continue
			}
			row := c.ledger.notoriety[r.Actor]
			if row == nil {
				row = map[*world.Government]world.EventType{}
				c.ledger.notoriety[r.Actor] = row
			}
			row[g] |= r.Events
		case LedgerPlayer:
			c.ledger.playerActions[r.Target] |= r.Events
		}
	}
	c.log.Debug().Int("tick", c.tick).Int("ships", len(s.Ships)).Int("ledger", len(s.Ledger)).
		Msg("controller restored")
}

func setInt(m map[world.ShipID]int, id world.ShipID, v int) {
	if v != 0 {
		m[id] = v
	}
}

// Condition is one derived value the host may sample.
type Condition struct {
	Name  string
	Value int64
}

// Conditions reports the strength sums of the player's system in a stable
// order: each government's own strength, then the player's ally and enemy
// strength, then every government's.
func (c *Controller) Conditions() []Condition {
	t := &c.lists
	out := make([]Condition, 0, 3*len(t.govs)+2)
	for _, g := range t.govs {
		out = append(out, Condition{Name: "government strength:" + g.Name, Value: t.strength[g]})
	}
	if pg := c.player.Government(); pg != nil {
		out = append(out,
			Condition{Name: "ally strength", Value: t.allyStrength[pg]},
			Condition{Name: "enemy strength", Value: t.enemyStrength[pg]})
	}
	for _, g := range t.govs {
		out = append(out,
			Condition{Name: "ally strength:" + g.Name, Value: t.allyStrength[g]},
			Condition{Name: "enemy strength:" + g.Name, Value: t.enemyStrength[g]})
	}
	return out
}
