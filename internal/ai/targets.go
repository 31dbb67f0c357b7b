package ai

import (
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// shipStrengthRange is how close an ally must be to count toward a ship's
// own strength estimate.
const shipStrengthRange = 2000.

// targetLists is the per-tick roster cache for the player's system. Every
// slice is truncated and refilled each tick so steady-state ticks allocate
// nothing.
type targetLists struct {
	govs          []*world.Government // first-seen order, for stable iteration
	rosters       map[*world.Government][]*world.Ship
	strength      map[*world.Government]int64
	allyStrength  map[*world.Government]int64
	enemyStrength map[*world.Government]int64
	scan          map[*world.Government]bool
	allies        map[*world.Government][]*world.Ship
	enemies       map[*world.Government][]*world.Ship

	seen, counted map[*world.Government]bool
}

func newTargetLists() targetLists {
	return targetLists{
		rosters:       map[*world.Government][]*world.Ship{},
		strength:      map[*world.Government]int64{},
		allyStrength:  map[*world.Government]int64{},
		enemyStrength: map[*world.Government]int64{},
		scan:          map[*world.Government]bool{},
		allies:        map[*world.Government][]*world.Ship{},
		enemies:       map[*world.Government][]*world.Ship{},
		seen:          map[*world.Government]bool{},
		counted:       map[*world.Government]bool{},
	}
}

// fighting reports a ship whose weapons count toward its government.
func fighting(s *world.Ship) bool {
	return !s.Disabled && !s.Overheated && !s.Ionized
}

// build refills the rosters from the live ships in sys.
func (t *targetLists) build(ships []*world.Ship, sys *world.System) {
	for _, g := range t.govs {
		t.rosters[g] = t.rosters[g][:0]
		t.allies[g] = t.allies[g][:0]
		t.enemies[g] = t.enemies[g][:0]
	}
	t.govs = t.govs[:0]
	clear(t.strength)
	clear(t.allyStrength)
	clear(t.enemyStrength)
	clear(t.scan)

	clear(t.seen)
	for _, s := range ships {
		if s.Government == nil || s.Destroyed || s.System == nil || s.System != sys {
			continue
		}
		g := s.Government
		if !t.seen[g] {
			t.seen[g] = true
			t.govs = append(t.govs, g)
		}
		t.rosters[g] = append(t.rosters[g], s)
		if fighting(s) {
			t.strength[g] += s.Strength()
		}
	}

	// An enemy's enemy counts as an ally, each government once.
	for _, g := range t.govs {
		t.scan[g] = g.CanEnforce(sys)
		clear(t.counted)
		for _, e := range t.govs {
			if !e.IsEnemy(g) {
				continue
			}
			t.enemyStrength[g] += t.strength[e]
			for _, a := range t.govs {
				if a.IsEnemy(e) && !t.counted[a] {
					t.allyStrength[g] += t.strength[a]
					t.counted[a] = true
				}
			}
		}
	}

	for _, g := range t.govs {
		for _, o := range t.govs {
			for _, s := range t.rosters[o] {
				if !s.IsTargetable() {
					continue
				}
				if g.IsEnemy(o) {
					t.enemies[g] = append(t.enemies[g], s)
				} else {
					t.allies[g] = append(t.allies[g], s)
				}
			}
		}
	}
}

// Enemies returns the targetable ships hostile to g. Ships outside the
// player's system are never listed.
func (t *targetLists) Enemies(g *world.Government) []*world.Ship { return t.enemies[g] }

// Allies returns the targetable ships not hostile to g, g's own included.
func (t *targetLists) Allies(g *world.Government) []*world.Ship { return t.allies[g] }

// outgunned reports a government whose side is weaker than its enemies.
func (t *targetLists) outgunned(g *world.Government) bool {
	a, aok := t.allyStrength[g]
	e, eok := t.enemyStrength[g]
	return aok && eok && a < e
}

// updateStrengths refreshes each ship's strength estimate on average once
// per second. A missing estimate is computed immediately.
func (c *Controller) updateStrengths() {
	sys := c.player.System()
	for _, s := range c.ships {
		if s.Government == nil || s.System == nil || s.System != sys || s.Disabled {
			continue
		}
		_, known := c.shipStrength[s.ID]
		if known && c.rng.Intn(60) != 0 {
			continue
		}
		var sum int64
		for _, o := range c.ships {
			if o.Government == nil || o.System != sys || o.Disabled {
				continue
			}
			if o.Government.IsEnemy(s.Government) {
				continue
			}
			if o.Position.Distance(s.Position) < shipStrengthRange {
				sum += o.Strength()
			}
		}
		c.shipStrength[s.ID] = sum
	}
}

// enemiesOf lists hostile targets of s. Outside the player's system the
// cache is empty, so fall back to a scan of the live ships.
func (c *Controller) enemiesOf(s *world.Ship) []*world.Ship {
	if s.System == c.player.System() {
		return c.lists.Enemies(s.Government)
	}
	c.candidates = c.candidates[:0]
	for _, o := range c.ships {
		if o != s && o.System == s.System && o.IsTargetable() && o.Government.IsEnemy(s.Government) {
			c.candidates = append(c.candidates, o)
		}
	}
	return c.candidates
}
