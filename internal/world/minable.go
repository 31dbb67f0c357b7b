package world

import "github.com/Garsondee/Ship-Sense/internal/geom"

// Minable is a drifting asteroid that drops flotsam when destroyed.
type Minable struct {
	Name      string
	Position  geom.Point
	Velocity  geom.Point
	Radius    float64
	Hull      float64
	Payload   map[string]int
	Destroyed bool
}

// IsLive reports an asteroid that still exists.
func (m *Minable) IsLive() bool { return m != nil && !m.Destroyed }

// Flotsam is a floating cargo box.
type Flotsam struct {
	Position  geom.Point
	Velocity  geom.Point
	Commodity string
	Count     int
	Source    *Ship // jettisoning ship; it ignores its own boxes
	Lifetime  int   // ticks left before the box despawns
	Collected bool
}

// IsLive reports a box that can still be picked up.
func (f *Flotsam) IsLive() bool { return f != nil && !f.Collected && f.Count > 0 && f.Lifetime > 0 }
