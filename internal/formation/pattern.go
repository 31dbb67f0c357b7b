// Package formation lays out follower slots around a lead body and keeps the
// layout turning smoothly with the lead.
package formation

import (
	"iter"

	"github.com/Garsondee/Ship-Sense/internal/geom"
)

// Line is one row of slots. Coordinates are in pattern units relative to the
// lead: +X is to the right, -Y is ahead. Lines with repeat data grow by one
// step per ring.
type Line struct {
	Start       geom.Point
	End         geom.Point
	Slots       int
	RepeatStart geom.Point // added to Start per ring
	RepeatEnd   geom.Point // added to End per ring
	RepeatSlots int        // extra slots per ring

	Arc    bool       // slots lie on an arc around Anchor starting at Start
	Anchor geom.Point // arc center
	Sweep  float64    // arc sweep in degrees, clockwise

	Centered    bool // a lone slot sits mid-line instead of at Start
	SkipFirst   bool
	SkipLast    bool
	Alternating bool // fill from both ends toward the middle
}

func (l Line) repeats() bool {
	return l.RepeatSlots > 0 || !l.RepeatStart.IsZero() || !l.RepeatEnd.IsZero()
}

// Pattern is an ordered, unbounded sequence of slot positions.
type Pattern struct {
	Name       string
	Lines      []Line
	Spacing    float64 // world units per pattern unit
	Rotatable  bool
	FlippableX bool
	FlippableY bool
}

// Positions yields slot positions in world units, ring by ring. The sequence
// ends only when no line repeats.
func (p *Pattern) Positions() iter.Seq[geom.Point] {
	return func(yield func(geom.Point) bool) {
		scale := p.Spacing
		if scale <= 0 {
			scale = 1
		}
		for ring := 0; ; ring++ {
			grew := false
			for _, l := range p.Lines {
				if ring > 0 && !l.repeats() {
					continue
				}
				grew = true
				for _, pt := range l.ring(ring) {
					if !yield(pt.Mul(scale)) {
						return
					}
				}
			}
			if !grew {
				return
			}
		}
	}
}

// ring returns the slots of this line on the given ring in fill order.
func (l Line) ring(ring int) []geom.Point {
	n := l.Slots + ring*l.RepeatSlots
	if n <= 0 {
		return nil
	}
	r := float64(ring)
	start := l.Start.Add(l.RepeatStart.Mul(r))
	end := l.End.Add(l.RepeatEnd.Mul(r))

	at := func(t float64) geom.Point {
		if l.Arc {
			return l.Anchor.Add(geom.Degrees(l.Sweep * t).Rotate(start.Sub(l.Anchor)))
		}
		return start.Add(end.Sub(start).Mul(t))
	}

	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if (l.SkipFirst && i == 0) || (l.SkipLast && i == n-1) {
			continue
		}
		idx = append(idx, i)
	}
	if l.Alternating {
		alt := make([]int, 0, len(idx))
		for lo, hi := 0, len(idx)-1; lo <= hi; lo, hi = lo+1, hi-1 {
			alt = append(alt, idx[lo])
			if hi != lo {
				alt = append(alt, idx[hi])
			}
		}
		idx = alt
	}

	out := make([]geom.Point, 0, len(idx))
	for _, i := range idx {
		t := 0.
		switch {
		case n > 1:
			t = float64(i) / float64(n-1)
		case l.Centered:
			t = .5
		}
		out = append(out, at(t))
	}
	return out
}

// Type identifies one of the stock patterns.
type Type int

const (
	TypeLine    Type = iota // side by side, abreast of the lead
	TypeWedge               // V-shape trailing behind the lead
	TypeColumn              // single file behind the lead
	TypeEchelon             // diagonal line to the right rear
	TypeRing                // circle around the lead
)

func (t Type) String() string {
	switch t {
	case TypeLine:
		return "line"
	case TypeWedge:
		return "wedge"
	case TypeColumn:
		return "column"
	case TypeEchelon:
		return "echelon"
	case TypeRing:
		return "ring"
	}
	return "unknown"
}

// ParseType maps a pattern name to its Type.
func ParseType(name string) (Type, bool) {
	for t := TypeLine; t <= TypeRing; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// slotSpacing is the default gap between adjacent slots in world units.
const slotSpacing = 80.

// Builtin returns a stock pattern.
func Builtin(t Type) *Pattern {
	p := &Pattern{Name: t.String(), Spacing: slotSpacing, Rotatable: true}
	switch t {
	case TypeLine:
		// Pairs abreast: -1,+1 then -2,+2 ...
		p.Lines = []Line{
			{Start: geom.Pt(-1, 0), End: geom.Pt(1, 0), Slots: 2, RepeatStart: geom.Pt(-1, 0), RepeatEnd: geom.Pt(1, 0)},
		}
		p.FlippableY = true
	case TypeWedge:
		p.Lines = []Line{
			{Start: geom.Pt(-1, 1), End: geom.Pt(1, 1), Slots: 2, RepeatStart: geom.Pt(-1, 1), RepeatEnd: geom.Pt(1, 1)},
		}
	case TypeColumn:
		p.Lines = []Line{
			{Start: geom.Pt(0, 1), Slots: 1, RepeatStart: geom.Pt(0, 1)},
		}
	case TypeEchelon:
		p.Lines = []Line{
			{Start: geom.Pt(.7, .7), Slots: 1, RepeatStart: geom.Pt(.7, .7)},
		}
	case TypeRing:
		// Six slots on the first ring, six more on each larger ring.
		p.Lines = []Line{
			{Arc: true, Start: geom.Pt(0, -1), Sweep: 300, Slots: 6, RepeatStart: geom.Pt(0, -1), RepeatSlots: 6},
		}
		p.Rotatable = false
	}
	return p
}
