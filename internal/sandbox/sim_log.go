package sandbox

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/Ship-Sense/internal/world"
)

// SimLogEntry is one recorded event during a headless run.
type SimLogEntry struct {
	Tick     int
	Ship     string  // ship name, or "--" for scene-wide events
	Gov      string  // government name, or "--"
	Category string  // command, target, orders, move, jump, land, board, fire, cargo, carrier, message, asteroid
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String renders the entry as one fixed-width line.
//
//	[T=042] escort-2     jump      enter            Home → North
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-12s %-9s %-16s %s",
		e.Tick, e.Ship, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a headless run. Unlike the
// message log it is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position and
// speed entries are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add appends an entry.
func (sl *SimLog) Add(tick int, ship, gov, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Ship:     ship,
		Gov:      gov,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddShip records an entry for s.
func (sl *SimLog) AddShip(tick int, s *world.Ship, category, key, value string, numVal float64) {
	sl.Add(tick, s.Name, govName(s.Government), category, key, value, numVal)
}

// AddVerbose is AddShip for per-tick movement detail kept only in verbose runs.
func (sl *SimLog) AddVerbose(tick int, s *world.Ship, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.AddShip(tick, s, category, key, value, numVal)
}

// Entries returns the log in recording order.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// FilterShip returns the entries recorded against one ship.
func (sl *SimLog) FilterShip(name string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Ship == name {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports an entry in category with the given key whose value
// contains substr. Empty arguments match anything.
func (sl *SimLog) HasEntry(category, key, substr string) bool {
	for _, e := range sl.entries {
		if (category == "" || e.Category == category) && (key == "" || e.Key == key) &&
			strings.Contains(e.Value, substr) {
			return true
		}
	}
	return false
}

// Format renders the whole log, one entry per line.
func (sl *SimLog) Format() string { return formatEntries(sl.entries) }

// Tail renders the last n entries.
func (sl *SimLog) Tail(n int) string {
	return formatEntries(sl.entries[max(len(sl.entries)-n, 0):])
}

func formatEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the scene.
func (sl *SimLog) Summary(tick int, ships []*world.Ship) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	type govCount struct{ space, hyper, disabled, destroyed, gone int }
	counts := map[string]*govCount{}
	for _, s := range ships {
		g := govName(s.Government)
		gc, ok := counts[g]
		if !ok {
			gc = &govCount{}
			counts[g] = gc
		}
		switch {
		case s.Destroyed:
			gc.destroyed++
		case s.System == nil:
			gc.gone++
		case s.IsHyperspacing():
			gc.hyper++
		case s.Disabled:
			gc.disabled++
		default:
			gc.space++
		}
	}
	names := make([]string, 0, len(counts))
	for g := range counts {
		names = append(names, g)
	}
	sort.Strings(names)
	for _, g := range names {
		c := counts[g]
		fmt.Fprintf(&sb, "%s: in_space=%d hyperspace=%d disabled=%d destroyed=%d docked_or_landed=%d\n",
			g, c.space, c.hyper, c.disabled, c.destroyed, c.gone)
	}

	events := map[string]int{}
	for _, e := range sl.entries {
		events[e.Category]++
	}
	for _, cat := range []string{"jump", "land", "board", "fire", "cargo", "orders", "message"} {
		if n := events[cat]; n > 0 {
			fmt.Fprintf(&sb, "%s events: %d\n", cat, n)
		}
	}
	return sb.String()
}

func govName(g *world.Government) string {
	if g == nil {
		return "--"
	}
	return g.Name
}
