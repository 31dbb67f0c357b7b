// Package route memoises hyperspace route plans. Pathfinding itself lives
// behind the Planner interface.
package route

import (
	"slices"
	"strings"

	"github.com/Garsondee/Ship-Sense/internal/world"
)

// Knowledge restricts planning to systems the player has seen. A nil
// Knowledge means the whole map is known.
type Knowledge interface {
	Knows(*world.System) bool
}

// Plan is a route from a ship's system to a destination.
type Plan struct {
	Hops         []*world.System // excludes the origin
	FuelCosts    []float64       // fuel spent on each hop
	RequiredFuel float64
}

// HasRoute reports a non-empty plan.
func (p Plan) HasRoute() bool { return len(p.Hops) > 0 }

// FirstStep returns the next system to jump to, or nil.
func (p Plan) FirstStep() *world.System {
	if len(p.Hops) == 0 {
		return nil
	}
	return p.Hops[0]
}

// Planner finds a route for ship to dest.
type Planner interface {
	Plan(ship *world.Ship, dest *world.System, knowledge Knowledge) Plan
}

// Drive bits for the cache key.
const (
	DriveHyperdrive = 1 << iota
	DriveJumpDrive
)

// DriveMask summarises the drives a ship has installed.
func DriveMask(s *world.Ship) int {
	m := 0
	if s.HasHyperdrive() {
		m |= DriveHyperdrive
	}
	if s.HasJumpDrive() {
		m |= DriveJumpDrive
	}
	return m
}

// Key identifies a cached plan. Wormholes is the sorted, joined list of
// wormhole keys the player holds. PlayerMap marks plans made with the
// player's knowledge rather than the whole map.
type Key struct {
	From      *world.System
	To        *world.System
	Gov       *world.Government
	JumpRange float64
	Drive     int
	Wormholes string
	PlayerMap bool
}

// Cache memoises plans per Key. It is not safe for concurrent use.
type Cache struct {
	planner   Planner
	entries   map[Key]Plan
	wormholes string
	known     int
	hits      int
	misses    int
}

// NewCache wraps a planner. A nil planner yields empty plans.
func NewCache(p Planner) *Cache {
	return &Cache{planner: p, entries: map[Key]Plan{}, known: -1}
}

// SetWormholeKeys records the player's wormhole keys, flushing the cache if
// they changed. It returns true on a flush.
func (c *Cache) SetWormholeKeys(keys []string) bool {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	joined := strings.Join(sorted, "\x00")
	if joined == c.wormholes {
		return false
	}
	c.wormholes = joined
	c.Invalidate()
	return true
}

// SetKnownSystems records how many systems the player knows, -1 for the
// whole map, flushing the cache if the number changed. The player's map
// only grows, so a count is enough to notice discoveries.
func (c *Cache) SetKnownSystems(n int) bool {
	if n == c.known {
		return false
	}
	c.known = n
	c.Invalidate()
	return true
}

// Invalidate drops every cached plan.
func (c *Cache) Invalidate() { clear(c.entries) }

// KeyFor builds the cache key for ship travelling to dest with the given
// map knowledge.
func (c *Cache) KeyFor(ship *world.Ship, dest *world.System, knowledge Knowledge) Key {
	return Key{
		From:      ship.System,
		To:        dest,
		Gov:       ship.Government,
		JumpRange: ship.JumpRange(),
		Drive:     DriveMask(ship),
		Wormholes: c.wormholes,
		PlayerMap: knowledge != nil,
	}
}

// Get returns the plan for ship to reach dest, consulting the planner on a
// miss. Player-owned ships plan with the player's knowledge.
func (c *Cache) Get(ship *world.Ship, dest *world.System, knowledge Knowledge) Plan {
	if ship == nil || ship.System == nil || dest == nil || c.planner == nil {
		return Plan{}
	}
	if !ship.IsYours {
		knowledge = nil
	}
	key := c.KeyFor(ship, dest, knowledge)
	if p, ok := c.entries[key]; ok {
		c.hits++
		return p
	}
	c.misses++
	p := c.planner.Plan(ship, dest, knowledge)
	c.entries[key] = p
	return p
}

// Stats returns lookup counters since creation.
func (c *Cache) Stats() (hits, misses int) { return c.hits, c.misses }

// Len is the number of cached plans.
func (c *Cache) Len() int { return len(c.entries) }
