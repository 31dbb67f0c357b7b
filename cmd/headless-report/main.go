package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Ship-Sense/internal/ai"
	"github.com/Garsondee/Ship-Sense/internal/config"
	"github.com/Garsondee/Ship-Sense/internal/logging"
	"github.com/Garsondee/Ship-Sense/internal/sandbox"
	"github.com/Garsondee/Ship-Sense/internal/store"
	"github.com/Garsondee/Ship-Sense/internal/telemetry"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

type runStats struct {
	runIndex int
	seed     int64
	scenario string
	ticks    int

	firstTargetTick   int
	firstJumpTick     int
	firstArriveTick   int
	firstHitTick      int
	firstDisableTick  int
	firstDestroyTick  int
	firstBoardTick    int
	firstJettisonTick int

	commandChanges int
	targetChanges  int
	orderChanges   int
	hits           int
	disabled       int
	destroyed      int
	boardings      int
	jettisonTons   int
	pickupTons     int
	rocksBroken    int
	messages       int
	affected       map[string]struct{}

	playerTotal  int
	playerAlive  int
	hostileTotal int
	hostileAlive int

	conditions []ai.Condition
}

// sinks are the optional places a run is persisted to.
type sinks struct {
	store       *store.Store
	influx      *telemetry.InfluxSink
	sampleEvery int
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var cfgPath string
	var persist bool
	var sampleEvery int
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 0, "ticks per run (0 uses the scenario's length)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "pirate-raid", "scenario name, or all")
	flag.StringVar(&cfgPath, "config", "", "config file (yaml, json or toml)")
	flag.BoolVar(&persist, "store", false, "record runs, conditions and the final snapshot in the configured database")
	flag.IntVar(&sampleEvery, "sample-every", 60, "ticks between condition samples")
	flag.BoolVar(&verbose, "v", false, "print each run's SimLog")
	flag.Parse()

	if runs <= 0 {
		fail("-runs must be > 0")
	}
	if ticks < 0 {
		fail("-ticks must be >= 0")
	}
	if sampleEvery <= 0 {
		fail("-sample-every must be > 0")
	}
	names := []string{scenario}
	if scenario == "all" {
		names = sandbox.ScenarioNames()
	}
	for _, n := range names {
		if _, ok := sandbox.Lookup(n); !ok {
			fail("unsupported scenario %q (supported: %s, all)", n, strings.Join(sandbox.ScenarioNames(), ", "))
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fail("%v", err)
	}
	log := logging.New(cfg.Log, os.Stderr)
	if cfg.Log.Dir != "" {
		f, err := logging.OpenFile(cfg.Log.Dir, "headless-"+scenario, time.Now())
		if err != nil {
			log.Warn().Err(err).Msg("file logging disabled")
		} else {
			defer f.Close()
			log = logging.NewMulti(cfg.Log, os.Stderr, f)
		}
	}

	out := sinks{sampleEvery: sampleEvery}
	if persist {
		if out.store, err = store.Open(cfg.Store, log); err != nil {
			log.Error().Err(err).Msg("store unavailable, continuing without it")
		} else {
			defer out.store.Close()
		}
	}
	if cfg.Influx.Enabled {
		if out.influx, err = telemetry.NewInfluxSink(cfg.Influx, log); err != nil {
			log.Error().Err(err).Msg("influx unavailable, continuing without it")
		} else {
			defer out.influx.Close()
		}
	}
	metrics, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		log.Error().Err(err).Msg("telemetry disabled")
	}
	ctlOpts := []ai.Option{
		ai.WithTuning(cfg.Targeting),
		ai.WithPreferences(cfg.Preferences),
		ai.WithMetrics(metrics),
	}

	ctx := context.Background()
	for _, name := range names {
		s, _ := sandbox.Lookup(name)
		n := ticks
		if n == 0 {
			n = s.Ticks
		}

		fmt.Printf("=== Headless Fleet Report ===\n")
		fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n", s.Name, runs, n, seedBase, seedStep)
		fmt.Printf("about: %s\n\n", s.Description)

		all := make([]runStats, 0, runs)
		for i := 0; i < runs; i++ {
			seed := seedBase + int64(i)*seedStep
			stats, sc := runScenario(ctx, s, i+1, seed, n, out, log, ctlOpts)
			all = append(all, stats)
			printRun(stats)
			if verbose {
				fmt.Println(sc.SimLog.Format())
			}
		}
		printAggregate(all)
		fmt.Println()
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(2)
}

func runScenario(ctx context.Context, s sandbox.Scenario, runIndex int, seed int64, ticks int,
	out sinks, log zerolog.Logger, ctlOpts []ai.Option) (runStats, *sandbox.Scene) {
	var runID uint
	if out.store != nil {
		id, err := out.store.StartRun(ctx, s.Name, seed)
		if err != nil {
			log.Error().Err(err).Msg("start run")
		}
		runID = id
	}

	sc := s.Run(seed, ticks, func(sc *sandbox.Scene) {
		if sc.Tick%out.sampleEvery != 0 {
			return
		}
		record(ctx, out, runID, sc.Tick, sc.AI.Conditions(), log)
	}, sandbox.WithLogger(log), sandbox.WithControllerOptions(ctlOpts...))

	rs := summarize(sc.SimLog.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.scenario = s.Name
	rs.ticks = sc.Tick
	rs.messages = sc.Messages.Total()
	rs.conditions = sc.AI.Conditions()
	countShips(&rs, sc)

	if out.store != nil && runID != 0 {
		if _, err := out.store.SaveSnapshot(ctx, runID, sc.AI.Snapshot()); err != nil {
			log.Error().Err(err).Msg("save snapshot")
		}
		verdict, reason := outcome(rs)
		if err := out.store.FinishRun(ctx, runID, sc.Tick, verdict+": "+reason); err != nil {
			log.Error().Err(err).Msg("finish run")
		}
	}
	return rs, sc
}

func record(ctx context.Context, out sinks, runID uint, tick int, conds []ai.Condition, log zerolog.Logger) {
	if out.store != nil && runID != 0 {
		if err := out.store.RecordConditions(ctx, runID, tick, conds); err != nil {
			log.Warn().Err(err).Msg("record conditions")
		}
	}
	if out.influx != nil {
		now := time.Now()
		for _, c := range conds {
			out.influx.WriteCondition(int64(tick), c.Name, c.Value, now)
		}
	}
}

// summarize counts the SimLog events a report cares about.
func summarize(entries []sandbox.SimLogEntry) runStats {
	rs := runStats{affected: map[string]struct{}{}}
	for _, e := range entries {
		switch e.Category {
		case "command":
			rs.commandChanges++
		case "target":
			if e.Key == "change" {
				rs.targetChanges++
			}
		case "orders":
			rs.orderChanges++
		case "fire":
			switch e.Key {
			case "hit":
				rs.hits++
			case "disabled":
				rs.disabled++
				rs.affected[e.Ship] = struct{}{}
			case "destroyed":
				rs.destroyed++
				rs.affected[e.Ship] = struct{}{}
			}
		case "board":
			rs.boardings++
		case "cargo":
			switch e.Key {
			case "jettison":
				rs.jettisonTons += int(e.NumVal)
			case "pickup":
				rs.pickupTons += int(e.NumVal)
			}
		case "asteroid":
			if e.Key == "destroyed" {
				rs.rocksBroken++
			}
		}
	}
	rs.firstTargetTick = firstTick(entries, "target", "change", "")
	rs.firstJumpTick = firstTick(entries, "jump", "enter", "")
	rs.firstArriveTick = firstTick(entries, "jump", "arrive", "")
	rs.firstHitTick = firstTick(entries, "fire", "hit", "")
	rs.firstDisableTick = firstTick(entries, "fire", "disabled", "")
	rs.firstDestroyTick = firstTick(entries, "fire", "destroyed", "")
	rs.firstBoardTick = firstTick(entries, "board", "", "")
	rs.firstJettisonTick = firstTick(entries, "cargo", "jettison", "")
	return rs
}

func countShips(rs *runStats, sc *sandbox.Scene) {
	var player *world.Government
	if f := sc.Player.Flagship; f != nil {
		player = f.Government
	}
	for _, s := range sc.Ships {
		switch {
		case s.IsYours:
			rs.playerTotal++
			if !s.Destroyed {
				rs.playerAlive++
			}
		case player != nil && s.Government.IsEnemy(player):
			rs.hostileTotal++
			if !s.Destroyed && !s.Disabled {
				rs.hostileAlive++
			}
		}
	}
}

// outcome labels a run from the player's side.
func outcome(rs runStats) (string, string) {
	switch {
	case rs.playerTotal > 0 && rs.playerAlive*2 < rs.playerTotal:
		return "loss", fmt.Sprintf("lost_%d_of_%d_ships", rs.playerTotal-rs.playerAlive, rs.playerTotal)
	case rs.hostileTotal == 0:
		return "no_contact", "no_hostiles_present"
	case rs.hostileAlive == 0:
		return "cleared", fmt.Sprintf("all_%d_hostiles_out", rs.hostileTotal)
	case rs.hits == 0:
		return "standoff", "no_shots_landed"
	}
	return "contested", fmt.Sprintf("%d_of_%d_hostiles_remain", rs.hostileAlive, rs.hostileTotal)
}

func firstTick(entries []sandbox.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || (key != "" && e.Key != key) {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	verdict, reason := outcome(rs)
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s reason=%s ticks=%d\n", verdict, reason, rs.ticks)
	fmt.Printf("phase_markers: target=%d jump=%d arrive=%d first_hit=%d first_disable=%d first_destroy=%d first_board=%d first_jettison=%d\n",
		rs.firstTargetTick, rs.firstJumpTick, rs.firstArriveTick, rs.firstHitTick, rs.firstDisableTick,
		rs.firstDestroyTick, rs.firstBoardTick, rs.firstJettisonTick)
	fmt.Printf("event_totals: command_change=%d target_change=%d order_change=%d messages=%d\n",
		rs.commandChanges, rs.targetChanges, rs.orderChanges, rs.messages)
	fmt.Printf("combat: hits=%d disabled=%d destroyed=%d boardings=%d\n",
		rs.hits, rs.disabled, rs.destroyed, rs.boardings)
	fmt.Printf("cargo: jettisoned=%d picked_up=%d rocks_broken=%d\n",
		rs.jettisonTons, rs.pickupTons, rs.rocksBroken)
	fmt.Printf("ships: player=%d/%d hostile_active=%d/%d\n",
		rs.playerAlive, rs.playerTotal, rs.hostileAlive, rs.hostileTotal)
	fmt.Printf("affected_ships: %s\n", joinSet(rs.affected))
	for _, c := range rs.conditions {
		fmt.Printf("  %-32s %d\n", c.Name, c.Value)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalHits := 0
	totalDisabled := 0
	totalDestroyed := 0
	totalBoard := 0
	totalJettison := 0
	totalPickup := 0
	totalTarget := 0
	totalOrders := 0
	totalMessages := 0

	jumpTicks := make([]int, 0, len(all))
	hitTicks := make([]int, 0, len(all))
	destroyTicks := make([]int, 0, len(all))
	verdicts := map[string]int{}
	affectedGlobal := map[string]struct{}{}

	for _, rs := range all {
		totalHits += rs.hits
		totalDisabled += rs.disabled
		totalDestroyed += rs.destroyed
		totalBoard += rs.boardings
		totalJettison += rs.jettisonTons
		totalPickup += rs.pickupTons
		totalTarget += rs.targetChanges
		totalOrders += rs.orderChanges
		totalMessages += rs.messages
		if rs.firstJumpTick >= 0 {
			jumpTicks = append(jumpTicks, rs.firstJumpTick)
		}
		if rs.firstHitTick >= 0 {
			hitTicks = append(hitTicks, rs.firstHitTick)
		}
		if rs.firstDestroyTick >= 0 {
			destroyTicks = append(destroyTicks, rs.firstDestroyTick)
		}
		v, _ := outcome(rs)
		verdicts[v]++
		for label := range rs.affected {
			affectedGlobal[label] = struct{}{}
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d outcomes=%s\n", n, formatCounts(verdicts))
	fmt.Printf("avg_events_per_run: target_change=%.1f order_change=%.1f messages=%.1f\n",
		avg(totalTarget, n), avg(totalOrders, n), avg(totalMessages, n))
	fmt.Printf("avg_combat_per_run: hits=%.1f disabled=%.1f destroyed=%.1f boardings=%.1f\n",
		avg(totalHits, n), avg(totalDisabled, n), avg(totalDestroyed, n), avg(totalBoard, n))
	fmt.Printf("avg_cargo_per_run: jettisoned=%.1f picked_up=%.1f\n", avg(totalJettison, n), avg(totalPickup, n))
	fmt.Printf("phase_marker_avg_ticks: first_jump=%s first_hit=%s first_destroy=%s\n",
		avgTickString(jumpTicks), avgTickString(hitTicks), avgTickString(destroyTicks))
	fmt.Printf("unique_affected_ships=%d [%s]\n", len(affectedGlobal), joinSet(affectedGlobal))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func formatCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s(%d)", k, m[k])
	}
	return strings.Join(parts, ",")
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
