package viewer

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func pressing(keys ...ebiten.Key) func(ebiten.Key) bool {
	down := map[ebiten.Key]bool{}
	for _, k := range keys {
		down[k] = true
	}
	return func(k ebiten.Key) bool { return down[k] }
}

func TestHeldCommand_FoldsKeys(t *testing.T) {
	got := heldCommand(pressing(ebiten.KeyArrowUp, ebiten.KeyArrowLeft, ebiten.KeyJ))
	want := world.Forward | world.Left | world.Jump
	if got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
	if heldCommand(pressing()) != 0 {
		t.Fatal("no keys, no command")
	}
}

func TestHeldCommand_EitherShift(t *testing.T) {
	if !heldCommand(pressing(ebiten.KeyShiftRight)).Has(world.Shift) {
		t.Fatal("right shift counts as shift")
	}
}

func TestBindings_NoKeyTwice(t *testing.T) {
	seen := map[ebiten.Key]world.Command{}
	for _, b := range bindings {
		if !b.cmd.Valid() || b.cmd == 0 {
			t.Fatalf("binding with bad command %d", b.cmd)
		}
		for _, k := range b.keys {
			if prev, ok := seen[k]; ok {
				t.Fatalf("key %v bound to both %s and %s", k, prev, b.cmd)
			}
			seen[k] = b.cmd
		}
	}
}

func TestEdges_OnlyOnTransition(t *testing.T) {
	e := newEdges()
	if !e.pressed(ebiten.KeyP, true) {
		t.Fatal("first press is an edge")
	}
	if e.pressed(ebiten.KeyP, true) {
		t.Fatal("holding is not an edge")
	}
	e.pressed(ebiten.KeyP, false)
	if !e.pressed(ebiten.KeyP, true) {
		t.Fatal("press after release is an edge")
	}
}

func TestCamera_RoundTrip(t *testing.T) {
	c := camera{center: geom.Pt(500, -200), zoom: 0.5, w: 800, h: 600}
	x, y := c.toScreen(geom.Pt(500, -200))
	if x != 400 || y != 300 {
		t.Fatalf("the center maps to the middle of the playfield, got %f,%f", x, y)
	}
	p := c.toWorld(600, 100)
	if math.Abs(p.X-900) > 1e-9 || math.Abs(p.Y+600) > 1e-9 {
		t.Fatalf("want 900,-600, got %v", p)
	}
}

func TestCamera_ZoomClamped(t *testing.T) {
	c := camera{zoom: 1}
	for range 100 {
		c.zoomBy(2)
	}
	if c.zoom != maxZoom {
		t.Fatalf("zoom should stop at %f, got %f", float64(maxZoom), c.zoom)
	}
	for range 200 {
		c.zoomBy(0.5)
	}
	if c.zoom != minZoom {
		t.Fatalf("zoom should stop at %f, got %f", minZoom, c.zoom)
	}
}
