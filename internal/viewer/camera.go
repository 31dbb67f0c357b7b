package viewer

import (
	"github.com/Garsondee/Ship-Sense/internal/geom"
)

const (
	minZoom = 0.05
	maxZoom = 4
)

// camera maps world coordinates to the playfield.
type camera struct {
	center geom.Point
	zoom   float64
	w, h   float64 // playfield size in pixels
}

func (c camera) toScreen(p geom.Point) (float32, float32) {
	x := (p.X-c.center.X)*c.zoom + c.w/2
	y := (p.Y-c.center.Y)*c.zoom + c.h/2
	return float32(x), float32(y)
}

func (c camera) toWorld(x, y int) geom.Point {
	return geom.Pt(
		(float64(x)-c.w/2)/c.zoom+c.center.X,
		(float64(y)-c.h/2)/c.zoom+c.center.Y,
	)
}

func (c camera) scale(r float64) float32 { return float32(r * c.zoom) }

func (c *camera) zoomBy(f float64) {
	c.zoom = geom.Clamp(c.zoom*f, minZoom, maxZoom)
}
