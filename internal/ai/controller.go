// Package ai is the per-tick ship controller. Every tick it reads the live
// ships, asteroids and flotsam, decides what each ship should do, and stages
// a movement command and a fire command on it. The player's flagship is
// driven from the keys the player holds; everything else flies itself.
package ai

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Ship-Sense/internal/config"
	"github.com/Garsondee/Ship-Sense/internal/formation"
	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/messages"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/route"
	"github.com/Garsondee/Ship-Sense/internal/telemetry"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// Input is everything the controller sees for one tick.
type Input struct {
	Player   *Player
	Held     world.Command // keys held this tick
	Mouse    geom.Point    // world position under the cursor
	Ships    []*world.Ship // live ships in a stable order
	Minables []*world.Minable
	Flotsam  []*world.Flotsam
	Events   []world.ShipEvent // posted since the last tick
}

// Player is the player's side of the world.
type Player struct {
	Flagship          *world.Ship
	Ships             []*world.Ship // every ship the player owns, flagship included
	Selected          []*world.Ship // escorts picked for the next order
	TravelPlan        []*world.System
	TravelDestination *world.StellarObject
	Known             map[*world.System]bool // nil means the whole map is known
	WormholeKeys      []string
}

// Knows reports whether the player has visited or seen sys.
func (p *Player) Knows(sys *world.System) bool {
	if p == nil || p.Known == nil {
		return true
	}
	return p.Known[sys]
}

// knownCount is the number of systems the player knows, or -1 when the
// whole map is known.
func (p *Player) knownCount() int {
	if p.Known == nil {
		return -1
	}
	n := 0
	for _, ok := range p.Known {
		if ok {
			n++
		}
	}
	return n
}

// System is the flagship's current system, or nil.
func (p *Player) System() *world.System {
	if p == nil || p.Flagship == nil {
		return nil
	}
	return p.Flagship.System
}

// HasTravelPlan reports a plotted course.
func (p *Player) HasTravelPlan() bool { return p != nil && len(p.TravelPlan) > 0 }

// Government is the flagship's government.
func (p *Player) Government() *world.Government {
	if p == nil || p.Flagship == nil {
		return nil
	}
	return p.Flagship.Government
}

// Option configures a Controller.
type Option func(*Controller)

// WithSeed seeds the shared random source.
func WithSeed(seed int64) Option {
	return func(c *Controller) {
		c.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay randomness, not security
	}
}

// WithRand shares an existing random source with the host.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// WithLogger sets the decision trace logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMessages sets where player-facing text goes.
func WithMessages(s messages.Sink) Option {
	return func(c *Controller) { c.msgs = s }
}

// WithRoutePlanner sets the hyperspace pathfinder behind the route cache.
func WithRoutePlanner(p route.Planner) Option {
	return func(c *Controller) { c.routes = route.NewCache(p) }
}

// WithTuning replaces the targeting constants.
func WithTuning(t config.Targeting) Option {
	return func(c *Controller) { c.tuning = t }
}

// WithPreferences sets the player preferences.
func WithPreferences(p config.Preferences) Option {
	return func(c *Controller) { c.prefs = p }
}

// WithMetrics records controller metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

type formationKey struct {
	lead    world.ShipID
	pattern *formation.Pattern
}

// Controller owns every piece of state the ship AI keeps between ticks. It
// is single-threaded and not re-entrant.
type Controller struct {
	rng     *rand.Rand
	log     zerolog.Logger
	msgs    messages.Sink
	routes  *route.Cache
	tuning  config.Targeting
	prefs   config.Preferences
	metrics *telemetry.Metrics

	tick   int
	player *Player

	// This tick's live sets.
	ships         []*world.Ship
	live          map[world.ShipID]*world.Ship
	liveAsteroids map[*world.Minable]bool
	minables      []*world.Minable
	flotsam       []*world.Flotsam
	jumpReady     map[world.ShipID]bool // lead to this tick's fleet jump decision

	lists  targetLists
	ledger ledger

	// Per-ship scalars, keyed by ship id and reaped when the ship leaves.
	fenceCount      map[world.ShipID]int
	swarmCount      map[world.ShipID]int          // swarmers assigned to a host
	swarmTarget     map[world.ShipID]world.ShipID // swarmer to host
	scanCount       map[world.ShipID]int
	scanTime        map[world.ShipID]int
	miningTime      map[world.ShipID]int
	miningAngle     map[world.ShipID]geom.Angle
	appeasement     map[world.ShipID]float64
	boardingPartner map[world.ShipID]world.ShipID // boarder to boarded
	shipStrength    map[world.ShipID]int64
	helperList      map[world.ShipID]world.ShipID // victim to helper

	orders     map[world.ShipID]*orders.Set
	formations map[formationKey]*formation.Positioner

	// Player key state.
	keyHeld          world.Command
	keyDown          world.Command // pressed this tick
	keyStuck         world.Command // latched autopilot bits
	isLaunching      bool
	escortsUseAmmo   bool
	escortsAreFrugal bool

	// Reused per-ship scratch.
	aimTargets  []aimTarget
	candidates  []*world.Ship
	fireScratch []*world.Ship
}

// New builds a controller. Without options it is seeded with 1, logs
// nothing, drops messages, and has no route planner.
func New(opts ...Option) *Controller {
	c := &Controller{
		rng:    rand.New(rand.NewSource(1)), // #nosec G404 -- gameplay randomness, not security
		log:    zerolog.Nop(),
		msgs:   messages.Nop{},
		routes: route.NewCache(nil),
		tuning: config.DefaultTargeting(),
		prefs:  config.DefaultPreferences(),

		live:          map[world.ShipID]*world.Ship{},
		liveAsteroids: map[*world.Minable]bool{},
		jumpReady:     map[world.ShipID]bool{},
		lists:         newTargetLists(),
		ledger:        newLedger(),

		fenceCount:      map[world.ShipID]int{},
		swarmCount:      map[world.ShipID]int{},
		swarmTarget:     map[world.ShipID]world.ShipID{},
		scanCount:       map[world.ShipID]int{},
		scanTime:        map[world.ShipID]int{},
		miningTime:      map[world.ShipID]int{},
		miningAngle:     map[world.ShipID]geom.Angle{},
		appeasement:     map[world.ShipID]float64{},
		boardingPartner: map[world.ShipID]world.ShipID{},
		shipStrength:    map[world.ShipID]int64{},
		helperList:      map[world.ShipID]world.ShipID{},

		orders:     map[world.ShipID]*orders.Set{},
		formations: map[formationKey]*formation.Positioner{},
	}
	for _, o := range opts {
		o(c)
	}
	c.escortsUseAmmo = c.prefs.EscortsExpendAmmo
	c.escortsAreFrugal = c.prefs.EscortsFrugal
	return c
}

// Tick returns the number of steps taken.
func (c *Controller) Tick() int { return c.tick }

// Step runs one tick: rebuild the per-tick caches, fold in events, then
// dispatch every ship in input order.
func (c *Controller) Step(in Input) {
	start := time.Now()
	c.tick++
	c.player = in.Player

	c.beginTick(in)
	c.updateKeys(in.Player, in.Held)
	c.updateEvents(in.Events)
	c.lists.build(in.Ships, in.Player.System())
	c.updateStrengths()
	c.updateFences()
	c.updateOrders()
	c.stepFormations()

	flagship := in.Player.flagship()
	dispatched := 0
	for _, s := range in.Ships {
		if s == flagship {
			c.movePlayer(s, in)
			continue
		}
		c.stepShip(s)
		dispatched++
	}

	c.metrics.ShipsDispatched(dispatched)
	c.metrics.RecordTick(time.Since(start))
}

func (p *Player) flagship() *world.Ship {
	if p == nil {
		return nil
	}
	return p.Flagship
}

// beginTick records the live sets and reaps state for ships that left.
func (c *Controller) beginTick(in Input) {
	c.ships = in.Ships
	c.minables = in.Minables
	c.flotsam = in.Flotsam

	clear(c.live)
	for _, s := range in.Ships {
		if s != nil && !s.Destroyed {
			c.live[s.ID] = s
		}
	}
	clear(c.liveAsteroids)
	clear(c.jumpReady)
	for _, m := range in.Minables {
		if m.IsLive() {
			c.liveAsteroids[m] = true
		}
	}
	if in.Player != nil && c.routes.SetWormholeKeys(in.Player.WormholeKeys) {
		c.log.Debug().Int("tick", c.tick).Msg("route cache flushed on wormhole key change")
	}
	if in.Player != nil && c.routes.SetKnownSystems(in.Player.knownCount()) {
		c.log.Debug().Int("tick", c.tick).Msg("route cache flushed on map discovery")
	}
	c.reap()
}

func (c *Controller) reap() {
	for id, host := range c.swarmTarget {
		if c.live[id] == nil || c.live[host] == nil {
			c.unswarm(id)
		}
	}
	for id := range c.swarmCount {
		if c.live[id] == nil {
			delete(c.swarmCount, id)
		}
	}
	for _, m := range []map[world.ShipID]int{c.fenceCount, c.scanCount, c.scanTime, c.miningTime} {
		for id := range m {
			if c.live[id] == nil {
				delete(m, id)
			}
		}
	}
	for id := range c.miningAngle {
		if c.live[id] == nil {
			delete(c.miningAngle, id)
		}
	}
	for id := range c.appeasement {
		if c.live[id] == nil {
			delete(c.appeasement, id)
		}
	}
	for id := range c.shipStrength {
		if c.live[id] == nil {
			delete(c.shipStrength, id)
		}
	}
	for id, other := range c.boardingPartner {
		if c.live[id] == nil || c.live[other] == nil {
			delete(c.boardingPartner, id)
		}
	}
	for victim, helper := range c.helperList {
		h := c.live[helper]
		if c.live[victim] == nil || h == nil || h.ShipToAssist == nil || h.ShipToAssist.ID != victim {
			delete(c.helperList, victim)
		}
	}
	c.ledger.reap(c.live)
}

// ShipAlive reports whether s is in this tick's live list.
func (c *Controller) ShipAlive(s *world.Ship) bool {
	return s != nil && c.live[s.ID] == s
}

// AsteroidAlive reports whether m is in this tick's live list.
func (c *Controller) AsteroidAlive(m *world.Minable) bool {
	return m != nil && c.liveAsteroids[m]
}

// Orders returns a copy of the order entry for a ship.
func (c *Controller) Orders(id world.ShipID) (orders.Set, bool) {
	s, ok := c.orders[id]
	if !ok {
		return orders.Set{}, false
	}
	return *s, true
}

// FenceCount returns how long a ship has lingered beyond its system fence.
func (c *Controller) FenceCount(id world.ShipID) int { return c.fenceCount[id] }

// AppeasementThreshold returns the health loss at which a ship next dumps
// cargo.
func (c *Controller) AppeasementThreshold(id world.ShipID) float64 {
	if v, ok := c.appeasement[id]; ok {
		return v
	}
	return defaultAppeasement
}

// AutopilotActive reports latched autopilot bits on the flagship.
func (c *Controller) AutopilotActive() world.Command { return c.keyStuck & world.Autopilot }

// Launching reports whether the player's carriers are deploying fighters.
func (c *Controller) Launching() bool { return c.isLaunching }

// Clean drops everything tied to the current system: ledger, per-ship
// scalars, target lists and formations. Orders and key state survive.
func (c *Controller) Clean() {
	c.ledger = newLedger()
	c.lists = newTargetLists()
	clear(c.fenceCount)
	clear(c.swarmCount)
	clear(c.swarmTarget)
	clear(c.scanCount)
	clear(c.scanTime)
	clear(c.miningTime)
	clear(c.miningAngle)
	clear(c.appeasement)
	clear(c.boardingPartner)
	clear(c.shipStrength)
	clear(c.helperList)
	clear(c.formations)
}

// post sends a message to the player.
func (c *Controller) post(cat messages.Category, imp messages.Importance, from, text string) {
	c.msgs.Post(messages.Message{Tick: c.tick, Category: cat, Importance: imp, From: from, Text: text})
	c.metrics.MessagePosted(string(cat))
}

// isConstrained reports an NPC that respects the invisible fence.
func isConstrained(s *world.Ship) bool {
	return !s.IsYours && !s.Personality.IsUnconstrained()
}

// canPursue reports whether pursuer may chase target across the fence.
func (c *Controller) canPursue(pursuer, target *world.Ship) bool {
	if !isConstrained(pursuer) || !isConstrained(target) {
		return true
	}
	return c.fenceCount[target.ID] < c.tuning.FenceMax
}

// updateFences decays every fence counter, then grows the counters of
// constrained ships beyond their system's fence.
func (c *Controller) updateFences() {
	for id, n := range c.fenceCount {
		n -= c.tuning.FenceDecay
		if n <= 0 {
			delete(c.fenceCount, id)
			continue
		}
		c.fenceCount[id] = n
	}
	for _, s := range c.ships {
		if s.Destroyed || s.System == nil || !isConstrained(s) {
			continue
		}
		r := s.System.InvisibleFenceRadius()
		if s.Position.LengthSquared() > r*r {
			c.fenceCount[s.ID] = min(c.tuning.FenceMax, c.fenceCount[s.ID]+c.tuning.FenceGrowth)
		}
	}
}

// updateOrders validates every order entry and advances location orders.
func (c *Controller) updateOrders() {
	var flagSys *world.System
	if c.player != nil {
		flagSys = c.player.System()
	}
	for id, set := range c.orders {
		ship := c.live[id]
		if ship == nil {
			delete(c.orders, id)
			continue
		}
		before := set.Types()
		set.Validate(ship, flagSys, c)
		set.Update(ship)
		if set.Types() != before {
			c.log.Debug().Uint64("ship", uint64(id)).Int("tick", c.tick).
				Stringer("from", before).Stringer("to", set.Types()).Msg("order converted")
		}
		if set.IsEmpty() {
			delete(c.orders, id)
		}
	}
}

// stepFormations advances every positioner whose lead is still alive.
func (c *Controller) stepFormations() {
	for key, fp := range c.formations {
		lead := c.live[key.lead]
		if lead == nil {
			delete(c.formations, key)
			continue
		}
		fp.Step(formation.Lead{Position: lead.Position, Velocity: lead.Velocity, Facing: lead.Facing})
	}
}

// positioner returns the formation around lead for pattern, creating it.
func (c *Controller) positioner(lead *world.Ship, p *formation.Pattern) *formation.Positioner {
	key := formationKey{lead: lead.ID, pattern: p}
	fp, ok := c.formations[key]
	if !ok {
		fp = formation.NewPositioner(p, lead.Facing)
		c.formations[key] = fp
	}
	return fp
}
