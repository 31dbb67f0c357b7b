package sandbox

import (
	"math/rand"
	"sort"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// Scenario is a named setup plus the keys the player holds on each tick.
type Scenario struct {
	Name        string
	Description string
	Ticks       int // suggested run length

	build func(rng *rand.Rand) []Option
	input func(sc *Scene) world.Command
}

// Build assembles the scene for seed. Extra options are applied after the
// scenario's own.
func (s Scenario) Build(seed int64, extra ...Option) *Scene {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- layout jitter
	opts := append([]Option{WithSeed(seed)}, s.build(rng)...)
	return New(append(opts, extra...)...)
}

// Input returns the keys held this tick. It may also issue orders.
func (s Scenario) Input(sc *Scene) world.Command {
	if s.input == nil {
		return 0
	}
	return s.input(sc)
}

// Run builds the scene and steps it for ticks, calling each after every
// step when it is non-nil.
func (s Scenario) Run(seed int64, ticks int, each func(*Scene), extra ...Option) *Scene {
	sc := s.Build(seed, extra...)
	for range ticks {
		sc.Step(s.Input(sc))
		if each != nil {
			each(sc)
		}
	}
	return sc
}

var scenarios = map[string]Scenario{}

func register(s Scenario) { scenarios[s.Name] = s }

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, bool) {
	s, ok := scenarios[name]
	return s, ok
}

// ScenarioNames lists every scenario in name order.
func ScenarioNames() []string {
	out := make([]string, 0, len(scenarios))
	for name := range scenarios {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// jitter offsets v by up to ±spread.
func jitter(rng *rand.Rand, v, spread float64) float64 {
	return v + (rng.Float64()*2-1)*spread
}

// pressOnce holds key on the first tick only.
func pressOnce(key world.Command) func(*Scene) world.Command {
	return func(sc *Scene) world.Command {
		if sc.Tick == 0 {
			return key
		}
		return 0
	}
}

func init() {
	register(Scenario{
		Name:        "joint-jump",
		Description: "flagship and two escorts jump to North together",
		Ticks:       900,
		build: func(rng *rand.Rand) []Option {
			return append(twoSystemBase(),
				WithFlagship(1, "Home", 0, 0),
				WithEscort(2, jitter(rng, 300, 50), jitter(rng, 0, 50)),
				WithEscort(3, jitter(rng, -300, 50), jitter(rng, 100, 50)),
				WithFuel(3, 200, .6),
			)
		},
		input: pressOnce(world.Jump),
	})

	register(Scenario{
		Name:        "mining",
		Description: "two escorts mine a small belt and harvest the boxes",
		Ticks:       3600,
		build: func(rng *rand.Rand) []Option {
			opts := append(twoSystemBase(),
				WithFlagship(1, "Home", 0, 0),
				WithEscort(2, 100, 0),
				WithEscort(3, -100, 0),
				WithArmed(2, false),
				WithArmed(3, false),
				WithCargo(2, 20, nil),
				WithCargo(3, 20, nil),
			)
			for range 4 {
				opts = append(opts, WithAsteroid(jitter(rng, 0, 800), jitter(rng, -600, 300), 40,
					map[string]int{"iron": 1 + rng.Intn(3), "silicon": rng.Intn(2)}))
			}
			return opts
		},
		input: func(sc *Scene) world.Command {
			if sc.Tick == 1 {
				for _, m := range sc.Minables {
					if m.IsLive() {
						sc.AI.IssueAsteroidTarget(sc.Player, m)
						break
					}
				}
			}
			return 0
		},
	})

	register(Scenario{
		Name:        "pirate-raid",
		Description: "armed escorts defend the flagship from plundering pirates",
		Ticks:       2400,
		build: func(rng *rand.Rand) []Option {
			opts := append(twoSystemBase(),
				WithFlagship(1, "Home", 0, 0),
				WithArmed(1, true),
				WithEscort(2, 150, 50),
				WithEscort(3, -150, 50),
				WithArmed(2, false),
				WithArmed(3, true),
				WithCargo(1, 40, map[string]int{"food": 20}),
			)
			for i := range 3 {
				id := 20 + i
				opts = append(opts,
					WithNPC(id, "Pirate", "Home", jitter(rng, -600+600*float64(i), 200), jitter(rng, -1500, 200),
						world.Plunders, world.Appeasing),
					WithArmed(id, i == 1),
					WithCargo(id, 30, map[string]int{"iron": 10}),
				)
			}
			return opts
		},
	})

	register(Scenario{
		Name:        "fence",
		Description: "a daring raider near the edge of a small system",
		Ticks:       1200,
		build: func(rng *rand.Rand) []Option {
			return append(twoSystemBase(),
				WithFence("Home", 2000),
				WithFlagship(1, "Home", 2600, 0),
				WithNPC(2, "Pirate", "Home", jitter(rng, 1800, 100), jitter(rng, 0, 100), world.Daring),
				WithArmed(2, false),
			)
		},
	})

	register(Scenario{
		Name:        "squad-move",
		Description: "four escorts move to a point and hold their shape",
		Ticks:       1800,
		build: func(rng *rand.Rand) []Option {
			opts := append(twoSystemBase(), WithFlagship(1, "Home", 0, 0))
			for i, p := range []geom.Point{geom.Pt(50, 50), geom.Pt(-50, 50), geom.Pt(50, -50), geom.Pt(-50, -50)} {
				opts = append(opts, WithEscort(10+i, jitter(rng, p.X, 5), jitter(rng, p.Y, 5)))
			}
			return append(opts, WithSelected(10, 11, 12, 13))
		},
		input: func(sc *Scene) world.Command {
			if sc.Tick == 1 {
				sc.AI.IssueMoveTarget(sc.Player, geom.Pt(1000, 0), nil)
			}
			return 0
		},
	})

	register(Scenario{
		Name:        "skirmish",
		Description: "a bit of everything: fence, planet, belt, carrier, pirates",
		Ticks:       3600,
		build: func(rng *rand.Rand) []Option {
			opts := append(twoSystemBase(),
				WithFence("Home", 4000),
				WithPlanet("Home", "Haven", 0, -2500, true),
				WithFlagship(1, "Home", 0, 0),
				WithArmed(1, true),
				WithEscort(2, 150, 50),
				WithArmed(2, false),
				WithEscort(3, -150, 50),
				WithCargo(3, 20, nil),
				WithArmed(3, false),
				WithFighter(4, 2),
				WithNPC(20, "Pirate", "Home", jitter(rng, 1500, 300), jitter(rng, -1500, 300), world.Plunders),
				WithArmed(20, false),
				WithNPC(21, "Pirate", "Home", jitter(rng, -1500, 300), jitter(rng, -1500, 300), world.Appeasing),
				WithArmed(21, true),
				WithCargo(21, 30, map[string]int{"food": 12, "iron": 8}),
			)
			for range 3 {
				opts = append(opts, WithAsteroid(jitter(rng, 1200, 300), jitter(rng, 800, 300), 40,
					map[string]int{"iron": 2}))
			}
			return opts
		},
	})
}

// twoSystemBase is Home with North linked straight above it, a player
// government and a hostile pirate government.
func twoSystemBase() []Option {
	return []Option{
		WithSystem("Home", 0, 0),
		WithSystem("North", 0, -1000),
		WithLink("Home", "North"),
		WithPlayerGovernment("Escort"),
		WithGovernment("Pirate"),
		WithHostility("Escort", "Pirate"),
	}
}
