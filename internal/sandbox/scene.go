// Package sandbox is a headless host for the ship controller: a small
// physics step that carries out the commands the controller stages, a
// hop-counting route planner, and a seeded scene harness for tests and
// reports.
package sandbox

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Ship-Sense/internal/ai"
	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/messages"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// messageCapacity is how many player messages the scene keeps.
const messageCapacity = 256

// Scene is a headless world: systems, ships, asteroids and flotsam, the
// player, and the controller that flies them.
type Scene struct {
	Systems  []*world.System
	Ships    []*world.Ship // every ship, including docked and landed ones
	Minables []*world.Minable
	Flotsam  []*world.Flotsam
	Player   *ai.Player
	AI       *ai.Controller
	Messages *messages.Log
	SimLog   *SimLog
	Tick     int
	Mouse    geom.Point

	rng     *rand.Rand
	log     zerolog.Logger
	govs    []*world.Government
	aiOpts  []ai.Option
	events  []world.ShipEvent
	scanned map[[2]world.ShipID]bool

	// Reused per-tick buffers.
	liveShips []*world.Ship
	liveRocks []*world.Minable
	liveBoxes []*world.Flotsam
}

// sceneOptionKind controls the pass in which an option is applied.
type sceneOptionKind int

const (
	sceneOptInfra sceneOptionKind = iota // seed, systems, governments, planets, asteroids
	sceneOptShip                         // add ships, after systems exist
	sceneOptFit                          // outfit ships, after they exist
	sceneOptFleet                        // escorts, bays, selection, targets
)

// Option is a builder function applied to a Scene during construction.
type Option struct {
	kind sceneOptionKind
	fn   func(*Scene)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithVerbose enables per-tick position logging.
func WithVerbose(v bool) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.SimLog = NewSimLog(v)
	}}
}

// WithLogger hands the controller and the physics step a logger.
func WithLogger(l zerolog.Logger) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.log = l
	}}
}

// WithControllerOptions passes extra options to the controller, after the
// scene's own.
func WithControllerOptions(opts ...ai.Option) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.aiOpts = append(sc.aiOpts, opts...)
	}}
}

// WithSystem adds a star system at a map position.
func WithSystem(name string, x, y float64) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.Systems = append(sc.Systems, world.NewSystem(name, geom.Pt(x, y)))
	}}
}

// WithLink joins two systems by hyperlane.
func WithLink(a, b string) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		world.Link(sc.mustSystem(a), sc.mustSystem(b))
	}}
}

// WithFence sets a system's invisible fence radius.
func WithFence(sys string, radius float64) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.mustSystem(sys).FenceRadius = radius
	}}
}

// WithGovernment adds an NPC government.
func WithGovernment(name string) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.govs = append(sc.govs, world.NewGovernment(name))
	}}
}

// WithPlayerGovernment adds the player's government.
func WithPlayerGovernment(name string) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.govs = append(sc.govs, world.NewPlayerGovernment(name))
	}}
}

// WithHostility makes two governments enemies.
func WithHostility(a, b string) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.mustGovernment(a).SetEnemy(sc.mustGovernment(b), true)
	}}
}

// WithPlanet adds a landable planet with a spaceport.
func WithPlanet(sys, name string, x, y float64, fuel bool) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		s := sc.mustSystem(sys)
		s.Objects = append(s.Objects, &world.StellarObject{
			Name: name, Position: geom.Pt(x, y), Radius: 100,
			Planet: &world.Planet{Name: name, Spaceport: true, Fuel: fuel, Inhabited: true},
		})
	}}
}

// WithAsteroid adds a minable rock to the scene.
func WithAsteroid(x, y, hull float64, payload map[string]int) Option {
	return Option{sceneOptInfra, func(sc *Scene) {
		sc.Minables = append(sc.Minables, &world.Minable{
			Name: fmt.Sprintf("rock-%d", len(sc.Minables)+1), Position: geom.Pt(x, y),
			Radius: 30, Hull: hull, Payload: payload,
		})
	}}
}

// WithFlagship adds the player's flagship. The first player government
// owns it; one named "Escort" is created if there is none.
func WithFlagship(id int, sys string, x, y float64) Option {
	return Option{sceneOptShip, func(sc *Scene) {
		s := sc.addShip(id, "flagship", sc.playerGovernment(), sys, x, y)
		s.IsYours = true
		sc.Player.Flagship = s
		sc.Player.Ships = append([]*world.Ship{s}, sc.Player.Ships...)
	}}
}

// WithEscort adds a player-owned escort in the flagship's system. It is
// attached to the flagship in the fleet pass.
func WithEscort(id int, x, y float64) Option {
	return Option{sceneOptShip, func(sc *Scene) {
		s := sc.addShip(id, fmt.Sprintf("escort-%d", id), sc.playerGovernment(), "", x, y)
		s.IsYours = true
		sc.Player.Ships = append(sc.Player.Ships, s)
	}}
}

// WithNPC adds a computer-controlled ship.
func WithNPC(id int, gov, sys string, x, y float64, traits ...world.Trait) Option {
	return Option{sceneOptShip, func(sc *Scene) {
		name := fmt.Sprintf("%s-%d", strings.ToLower(gov), id)
		s := sc.addShip(id, name, sc.mustGovernment(gov), sys, x, y)
		s.Personality = world.NewPersonality(traits...)
	}}
}

// WithFighter adds a fighter docked in the bay of carrier.
func WithFighter(id, carrier int) Option {
	return Option{sceneOptFleet, func(sc *Scene) {
		c := sc.mustShip(carrier)
		s := sc.addShip(id, fmt.Sprintf("fighter-%d", id), c.Government, "", 0, 0)
		s.Category = "Fighter"
		s.Attributes = fighterHull()
		s.IsYours = c.IsYours
		s.Personality = c.Personality
		c.Bays = append(c.Bays, world.Bay{Category: "Fighter"})
		c.Carry(s)
		c.Escorts = append(c.Escorts, s)
		if s.IsYours {
			sc.Player.Ships = append(sc.Player.Ships, s)
		}
	}}
}

// WithArmed mounts a gun, or a turret, on a ship.
func WithArmed(id int, turret bool) Option {
	return Option{sceneOptFit, func(sc *Scene) {
		s := sc.mustShip(id)
		w := &world.Weapon{
			Name: "pulse laser", Velocity: 25, Lifetime: 24, Reload: 10,
			ShieldDamage: 20, HullDamage: 12, FiringEnergy: 0, TurretTurn: 4,
		}
		if turret {
			w.Name = "pulse turret"
		}
		offset := geom.Pt(0, -s.Radius)
		s.Hardpoints = append(s.Hardpoints, world.NewHardpoint(offset, 0, turret, w))
	}}
}

// WithCargo gives a ship a hold and loads it.
func WithCargo(id, size int, load map[string]int) Option {
	return Option{sceneOptFit, func(sc *Scene) {
		s := sc.mustShip(id)
		s.Cargo = world.NewCargoHold(size, 0)
		for c, tons := range load {
			s.Cargo.Add(c, tons)
		}
	}}
}

// WithFuel sets the tank size and how full it is.
func WithFuel(id int, capacity, level float64) Option {
	return Option{sceneOptFit, func(sc *Scene) {
		s := sc.mustShip(id)
		s.Attributes["fuel capacity"] = capacity
		s.Fuel = level
	}}
}

// WithHealth sets shield and hull levels as fractions.
func WithHealth(id int, shields, hull float64) Option {
	return Option{sceneOptFit, func(sc *Scene) {
		s := sc.mustShip(id)
		s.Shields, s.Hull = shields, hull
	}}
}

// WithAttribute overrides one ship attribute.
func WithAttribute(id int, name string, v float64) Option {
	return Option{sceneOptFit, func(sc *Scene) {
		sc.mustShip(id).Attributes[name] = v
	}}
}

// WithDisabled disables a ship.
func WithDisabled(id int) Option {
	return Option{sceneOptFit, func(sc *Scene) {
		sc.mustShip(id).Disabled = true
	}}
}

// WithVelocity sets a ship moving.
func WithVelocity(id int, vx, vy float64) Option {
	return Option{sceneOptFit, func(sc *Scene) {
		sc.mustShip(id).Velocity = geom.Pt(vx, vy)
	}}
}

// WithTarget points a ship at another.
func WithTarget(id, target int) Option {
	return Option{sceneOptFleet, func(sc *Scene) {
		sc.mustShip(id).TargetShip = sc.mustShip(target)
	}}
}

// WithSelected selects escorts for the next order.
func WithSelected(ids ...int) Option {
	return Option{sceneOptFleet, func(sc *Scene) {
		for _, id := range ids {
			sc.Player.Selected = append(sc.Player.Selected, sc.mustShip(id))
		}
	}}
}

// WithParent makes one NPC escort another.
func WithParent(id, parent int) Option {
	return Option{sceneOptFleet, func(sc *Scene) {
		sc.mustShip(parent).AddEscort(sc.mustShip(id))
	}}
}

// New constructs a Scene from the given options in ordered passes:
//  1. Infrastructure (seed, systems, governments, planets, asteroids)
//  2. Ships
//  3. Outfits, cargo, fuel, damage
//  4. Fleets: escorts join the flagship, fighters dock, targets are set
//
// The controller is built last, seeded from the scene's RNG.
func New(opts ...Option) *Scene {
	sc := &Scene{
		Player:   &ai.Player{},
		Messages: messages.NewLog(messageCapacity),
		SimLog:   NewSimLog(false),
		rng:      rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
		log:      zerolog.Nop(),
		scanned:  map[[2]world.ShipID]bool{},
	}
	for _, kind := range []sceneOptionKind{sceneOptInfra, sceneOptShip, sceneOptFit} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(sc)
			}
		}
	}
	if f := sc.Player.Flagship; f != nil {
		for _, s := range sc.Player.Ships {
			if s != f && s.Parent == nil {
				f.AddEscort(s)
			}
		}
	}
	for _, o := range opts {
		if o.kind == sceneOptFleet {
			o.fn(sc)
		}
	}

	sink := messages.Multi{sc.Messages, messages.Func(func(m messages.Message) {
		from := m.From
		if from == "" {
			from = "--"
		}
		sc.SimLog.Add(m.Tick, from, "--", "message", string(m.Category), m.Text, float64(m.Importance))
	})}
	base := []ai.Option{
		ai.WithRand(rand.New(rand.NewSource(sc.rng.Int63()))), // #nosec G404 -- test harness
		ai.WithLogger(sc.log),
		ai.WithMessages(sink),
		ai.WithRoutePlanner(NewGraphPlanner(sc.Systems)),
	}
	sc.AI = ai.New(append(base, sc.aiOpts...)...)
	return sc
}

// standardHull is the stock attribute set of a sandbox ship.
func standardHull() world.Attributes {
	return world.Attributes{
		"mass": 100, "drag": 5, "thrust": 30, "turn": 300,
		"shields": 500, "hull": 1000, "energy capacity": 1000,
		"fuel capacity": 400, "hyperdrive": 1, "cost": 100000,
		"cargo scan power": 16,
	}
}

func fighterHull() world.Attributes {
	return world.Attributes{
		"mass": 20, "drag": 1, "thrust": 10, "turn": 200,
		"shields": 100, "hull": 200, "energy capacity": 200, "cost": 20000,
	}
}

// addShip creates a ship in sys; an empty sys means the flagship's system.
func (sc *Scene) addShip(id int, name string, gov *world.Government, sys string, x, y float64) *world.Ship {
	var system *world.System
	switch {
	case sys != "":
		system = sc.mustSystem(sys)
	case sc.Player.Flagship != nil:
		system = sc.Player.Flagship.System
	case len(sc.Systems) > 0:
		system = sc.Systems[0]
	}
	s := world.NewShip(world.ShipID(id), name, gov, system)
	s.Attributes = standardHull()
	s.Position = geom.Pt(x, y)
	sc.Ships = append(sc.Ships, s)
	return s
}

func (sc *Scene) playerGovernment() *world.Government {
	for _, g := range sc.govs {
		if g.IsPlayer() {
			return g
		}
	}
	g := world.NewPlayerGovernment("Escort")
	sc.govs = append(sc.govs, g)
	return g
}

func (sc *Scene) mustSystem(name string) *world.System {
	if s := sc.System(name); s != nil {
		return s
	}
	panic(fmt.Sprintf("sandbox: unknown system %q", name))
}

func (sc *Scene) mustGovernment(name string) *world.Government {
	if g := sc.Government(name); g != nil {
		return g
	}
	panic(fmt.Sprintf("sandbox: unknown government %q", name))
}

func (sc *Scene) mustShip(id int) *world.Ship {
	if s := sc.Ship(id); s != nil {
		return s
	}
	panic(fmt.Sprintf("sandbox: unknown ship %d", id))
}

// System looks a system up by name.
func (sc *Scene) System(name string) *world.System {
	for _, s := range sc.Systems {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Government looks a government up by name.
func (sc *Scene) Government(name string) *world.Government {
	for _, g := range sc.govs {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Ship looks a ship up by id.
func (sc *Scene) Ship(id int) *world.Ship {
	for _, s := range sc.Ships {
		if s.ID == world.ShipID(id) {
			return s
		}
	}
	return nil
}

// Post queues an event for the next tick.
func (sc *Scene) Post(e world.ShipEvent) {
	sc.events = append(sc.events, e)
}

// live refills the per-tick lists handed to the controller: ships in space
// or in transit, rocks and boxes that still exist.
func (sc *Scene) live() ([]*world.Ship, []*world.Minable, []*world.Flotsam) {
	sc.liveShips = sc.liveShips[:0]
	for _, s := range sc.Ships {
		if !s.Destroyed && s.System != nil {
			sc.liveShips = append(sc.liveShips, s)
		}
	}
	sc.liveRocks = sc.liveRocks[:0]
	for _, m := range sc.Minables {
		if m.IsLive() {
			sc.liveRocks = append(sc.liveRocks, m)
		}
	}
	sc.liveBoxes = sc.liveBoxes[:0]
	for _, f := range sc.Flotsam {
		if f.IsLive() {
			sc.liveBoxes = append(sc.liveBoxes, f)
		}
	}
	return sc.liveShips, sc.liveRocks, sc.liveBoxes
}

// shipState is what change logging compares between ticks.
type shipState struct {
	cmd    world.Command
	target *world.Ship
	orders orders.Type
}

func (sc *Scene) observe() map[world.ShipID]shipState {
	out := make(map[world.ShipID]shipState, len(sc.Ships))
	for _, s := range sc.Ships {
		st := shipState{cmd: s.Commands().Command, target: s.TargetShip}
		if set, ok := sc.AI.Orders(s.ID); ok {
			st.orders = set.Types()
		}
		out[s.ID] = st
	}
	return out
}

// Step runs one tick with the given keys held: the controller decides,
// then the physics step carries the commands out.
func (sc *Scene) Step(held world.Command) {
	sc.Tick++
	prev := sc.observe()

	ships, rocks, boxes := sc.live()
	events := sc.events
	sc.events = nil
	sc.AI.Step(ai.Input{
		Player:   sc.Player,
		Held:     held,
		Mouse:    sc.Mouse,
		Ships:    ships,
		Minables: rocks,
		Flotsam:  boxes,
		Events:   events,
	})

	sc.physics()
	sc.logChanges(prev)
}

// RunTicks advances the scene n ticks with no keys held.
func (sc *Scene) RunTicks(n int) {
	for range n {
		sc.Step(0)
	}
}

// RunUntil advances the scene up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (sc *Scene) RunUntil(predicate func(*Scene) bool, maxTicks int) int {
	for range maxTicks {
		sc.Step(0)
		if predicate(sc) {
			return sc.Tick
		}
	}
	return -1
}

// logChanges records what changed this tick.
func (sc *Scene) logChanges(prev map[world.ShipID]shipState) {
	tick := sc.Tick
	for _, s := range sc.Ships {
		was := prev[s.ID]
		if cmd := s.Commands().Command; cmd != was.cmd {
			sc.SimLog.AddShip(tick, s, "command", "change", fmt.Sprintf("%s → %s", was.cmd, cmd), 0)
		}
		if s.TargetShip != was.target {
			name := "none"
			if s.TargetShip != nil {
				name = s.TargetShip.Name
			}
			sc.SimLog.AddShip(tick, s, "target", "change", name, 0)
		}
		var now orders.Type
		if set, ok := sc.AI.Orders(s.ID); ok {
			now = set.Types()
		}
		if now != was.orders {
			sc.SimLog.AddShip(tick, s, "orders", "change", fmt.Sprintf("%s → %s", was.orders, now), 0)
		}
		if s.System != nil && !s.Destroyed {
			sc.SimLog.AddVerbose(tick, s, "move", "position",
				fmt.Sprintf("(%.1f,%.1f) v=%.2f", s.Position.X, s.Position.Y, s.Velocity.Length()), s.Velocity.Length())
		}
	}
}
