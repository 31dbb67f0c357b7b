package formation

import (
	"math"

	"github.com/Garsondee/Ship-Sense/internal/geom"
)

const (
	maxTurnPerTick = .25 // degrees the frame may rotate per tick
	flipThreshold  = 135.
	regenerateRate = 20 // ticks between slot reassignments
	movingSpeed    = .001
)

// Lead is the state of the body a formation forms around.
type Lead struct {
	Position geom.Point
	Velocity geom.Point
	Facing   geom.Angle
}

type slot struct {
	offset   geom.Point // unrotated pattern position
	assigned bool
	tickTock bool
}

// Positioner assigns followers to pattern slots and rotates the whole
// frame with the lead. Followers are keyed by a caller-chosen id.
type Positioner struct {
	pattern   *Pattern
	direction geom.Angle
	flipX     bool
	flipY     bool

	slots    map[uint64]*slot
	order    []uint64
	tickTock bool
	timer    int
	dirty    bool
}

// NewPositioner starts a frame facing the given direction.
func NewPositioner(p *Pattern, facing geom.Angle) *Positioner {
	return &Positioner{pattern: p, direction: facing, slots: map[uint64]*slot{}}
}

// Pattern returns the pattern being laid out.
func (fp *Positioner) Pattern() *Pattern { return fp.pattern }

// Direction returns the current frame heading.
func (fp *Positioner) Direction() geom.Angle { return fp.direction }

// Followers returns how many followers hold a slot.
func (fp *Positioner) Followers() int { return len(fp.slots) }

// Step rotates the frame toward the lead's course and periodically
// reassigns slots.
func (fp *Positioner) Step(lead Lead) {
	if fp.pattern.Rotatable {
		desired := lead.Facing
		if lead.Velocity.Length() > movingSpeed {
			desired = geom.AngleOf(lead.Velocity)
		}
		delta := fp.direction.Delta(desired)
		flippable := fp.pattern.FlippableX || fp.pattern.FlippableY
		if math.Abs(delta) >= flipThreshold && flippable {
			fp.direction = fp.direction.AddDegrees(180)
			if fp.pattern.FlippableX {
				fp.flipX = !fp.flipX
			}
			if fp.pattern.FlippableY {
				fp.flipY = !fp.flipY
			}
		} else {
			fp.direction = fp.direction.AddDegrees(geom.Clamp(delta, -maxTurnPerTick, maxTurnPerTick))
		}
	}

	if fp.timer > 0 && !fp.dirty {
		fp.timer--
		return
	}
	fp.timer = regenerateRate - 1
	fp.dirty = false
	fp.regenerate()
}

// regenerate drops followers that did not report since the last round and
// hands out pattern slots to the rest in join order.
func (fp *Positioner) regenerate() {
	kept := fp.order[:0]
	for _, id := range fp.order {
		if fp.slots[id].tickTock != fp.tickTock {
			delete(fp.slots, id)
			continue
		}
		kept = append(kept, id)
	}
	fp.order = kept

	i := 0
	if len(fp.order) > 0 {
		for pos := range fp.pattern.Positions() {
			s := fp.slots[fp.order[i]]
			s.offset = pos
			s.assigned = true
			i++
			if i == len(fp.order) {
				break
			}
		}
	}
	// A finite pattern may run out of slots; the rest stack on the lead.
	for ; i < len(fp.order); i++ {
		s := fp.slots[fp.order[i]]
		s.offset = geom.Point{}
		s.assigned = false
	}
	fp.tickTock = !fp.tickTock
}

// Position reports follower id as present this round and returns its slot
// in world coordinates. A newcomer gets the lead position until the next
// Step assigns it a slot.
func (fp *Positioner) Position(id uint64, lead Lead) geom.Point {
	s, ok := fp.slots[id]
	if !ok {
		s = &slot{}
		fp.slots[id] = s
		fp.order = append(fp.order, id)
		fp.dirty = true
	}
	// A follower seen this round matches the tick-tock the next regenerate
	// will compare against.
	s.tickTock = fp.tickTock
	if !s.assigned {
		return lead.Position
	}
	return lead.Position.Add(fp.Offset(id))
}

// Offset returns the rotated slot offset of a follower, or zero.
func (fp *Positioner) Offset(id uint64) geom.Point {
	s, ok := fp.slots[id]
	if !ok || !s.assigned {
		return geom.Point{}
	}
	p := s.offset
	if fp.flipX {
		p.X = -p.X
	}
	if fp.flipY {
		p.Y = -p.Y
	}
	return fp.direction.Rotate(p)
}
