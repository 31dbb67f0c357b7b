package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/messages"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

var (
	colBackground = color.RGBA{R: 6, G: 8, B: 14, A: 255}
	colFence      = color.RGBA{R: 90, G: 40, B: 40, A: 160}
	colPlanet     = color.RGBA{R: 60, G: 110, B: 170, A: 255}
	colWormhole   = color.RGBA{R: 170, G: 80, B: 200, A: 255}
	colRock       = color.RGBA{R: 120, G: 110, B: 95, A: 255}
	colBox        = color.RGBA{R: 220, G: 190, B: 80, A: 255}
	colPlayer     = color.RGBA{R: 90, G: 210, B: 120, A: 255}
	colSelected   = color.RGBA{R: 200, G: 255, B: 200, A: 255}
	colEnemy      = color.RGBA{R: 230, G: 80, B: 70, A: 255}
	colNeutral    = color.RGBA{R: 170, G: 170, B: 190, A: 255}
	colDisabled   = color.RGBA{R: 110, G: 110, B: 110, A: 255}
	colTargetLine = color.RGBA{R: 230, G: 80, B: 70, A: 90}
	colSlot       = color.RGBA{R: 90, G: 210, B: 120, A: 140}
	colShields    = color.RGBA{R: 80, G: 150, B: 255, A: 255}
	colHull       = color.RGBA{R: 240, G: 200, B: 80, A: 255}
	colPanel      = color.RGBA{R: 10, G: 12, B: 20, A: 248}
	colPanelEdge  = color.RGBA{R: 50, G: 60, B: 90, A: 255}
	colText       = color.RGBA{R: 200, G: 205, B: 215, A: 255}
	colTextDim    = color.RGBA{R: 120, G: 125, B: 140, A: 255}
	colTextHigh   = color.RGBA{R: 255, G: 210, B: 120, A: 255}
)

func (v *Viewer) print(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, v.face, op)
}

func (v *Viewer) drawSystem(screen *ebiten.Image) {
	sys := v.home()
	if sys == nil {
		return
	}
	cx, cy := v.cam.toScreen(geom.Point{})
	vector.StrokeCircle(screen, cx, cy, v.cam.scale(sys.InvisibleFenceRadius()), 1, colFence, true)

	for _, o := range sys.Objects {
		x, y := v.cam.toScreen(o.Position)
		clr := colPlanet
		if o.Planet != nil && o.Planet.IsWormhole() {
			clr = colWormhole
		}
		vector.FillCircle(screen, x, y, v.cam.scale(o.Radius), clr, true)
		v.print(screen, o.Name, float64(x)+4, float64(y)+float64(v.cam.scale(o.Radius))+2, colTextDim)
	}
	for _, m := range v.scene.Minables {
		if !m.IsLive() {
			continue
		}
		x, y := v.cam.toScreen(m.Position)
		vector.StrokeCircle(screen, x, y, v.cam.scale(m.Radius), 1.5, colRock, true)
	}
	for _, f := range v.scene.Flotsam {
		if !f.IsLive() {
			continue
		}
		x, y := v.cam.toScreen(f.Position)
		vector.FillRect(screen, x-2, y-2, 4, 4, colBox, false)
	}

	selected := map[*world.Ship]bool{}
	for _, s := range v.scene.Player.Selected {
		selected[s] = true
	}
	for _, s := range v.scene.Ships {
		if s.Destroyed || s.System != sys {
			continue
		}
		v.drawOrders(screen, s)
		v.drawShip(screen, s, selected[s])
	}
}

// drawShip renders a hull outline pointing along the facing, plus shield
// and hull bars under it.
func (v *Viewer) drawShip(screen *ebiten.Image, s *world.Ship, selected bool) {
	clr := colNeutral
	switch {
	case s.Disabled:
		clr = colDisabled
	case selected:
		clr = colSelected
	case s.IsYours:
		clr = colPlayer
	case v.scene.Player.Flagship != nil && s.Government.IsEnemy(v.scene.Player.Flagship.Government):
		clr = colEnemy
	}

	r := math.Max(s.Radius, 6/v.cam.zoom)
	nose := s.Position.Add(s.Facing.Unit().Mul(r))
	left := s.Position.Add(s.Facing.AddDegrees(140).Unit().Mul(r))
	right := s.Position.Add(s.Facing.AddDegrees(-140).Unit().Mul(r))
	nx, ny := v.cam.toScreen(nose)
	lx, ly := v.cam.toScreen(left)
	rx, ry := v.cam.toScreen(right)
	width := float32(1.5)
	if s == v.scene.Player.Flagship {
		width = 2.5
	}
	vector.StrokeLine(screen, nx, ny, lx, ly, width, clr, true)
	vector.StrokeLine(screen, lx, ly, rx, ry, width, clr, true)
	vector.StrokeLine(screen, rx, ry, nx, ny, width, clr, true)

	if s.Cloak > 0 {
		x, y := v.cam.toScreen(s.Position)
		vector.StrokeCircle(screen, x, y, v.cam.scale(r)+3, 1, colTextDim, true)
	}

	x, y := v.cam.toScreen(s.Position)
	bar := float32(24)
	by := y + v.cam.scale(r) + 4
	vector.FillRect(screen, x-bar/2, by, bar*float32(s.Shields), 2, colShields, false)
	vector.FillRect(screen, x-bar/2, by+3, bar*float32(s.Hull), 2, colHull, false)

	if s.TargetShip != nil && !s.TargetShip.Destroyed && s.TargetShip.System == s.System {
		tx, ty := v.cam.toScreen(s.TargetShip.Position)
		vector.StrokeLine(screen, x, y, tx, ty, 1, colTargetLine, true)
	}
}

// drawOrders marks the point a player ship was told to go to or hold.
func (v *Viewer) drawOrders(screen *ebiten.Image, s *world.Ship) {
	if !s.IsYours {
		return
	}
	set, ok := v.scene.AI.Orders(s.ID)
	if !ok || !set.Has(orders.MoveTo|orders.HoldPosition) {
		return
	}
	x, y := v.cam.toScreen(set.TargetPoint)
	const d = 5
	vector.StrokeLine(screen, x, y-d, x+d, y, 1, colSlot, true)
	vector.StrokeLine(screen, x+d, y, x, y+d, 1, colSlot, true)
	vector.StrokeLine(screen, x, y+d, x-d, y, 1, colSlot, true)
	vector.StrokeLine(screen, x-d, y, x, y-d, 1, colSlot, true)
}

// drawPanel lists the most recent player messages, newest at the bottom.
func (v *Viewer) drawPanel(screen *ebiten.Image) {
	px := float32(v.width - panelWidth)
	h := float32(v.height)
	vector.FillRect(screen, px, 0, panelWidth, h, colPanel, false)
	vector.StrokeLine(screen, px, 0, px, h, 1, colPanelEdge, false)
	v.print(screen, "MESSAGES", float64(px)+8, 4, colTextDim)
	vector.StrokeLine(screen, px, 20, px+panelWidth, 20, 1, colPanelEdge, false)

	msgs := v.scene.Messages.Recent()
	maxVisible := (v.height - 28) / lineHeight
	if len(msgs) > maxVisible {
		msgs = msgs[len(msgs)-maxVisible:]
	}
	y := 24.0
	for _, m := range msgs {
		clr := colText
		switch m.Importance {
		case messages.Info:
			clr = colTextDim
		case messages.High, messages.Highest:
			clr = colTextHigh
		}
		line := m.Text
		if m.From != "" {
			line = m.From + ": " + line
		}
		v.print(screen, fmt.Sprintf("%5d %s", m.Tick, clip(line, 52)), float64(px)+8, y, clr)
		y += lineHeight
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	lines := make([]string, 0, hudLines)
	speed := "PAUSED"
	if s := speeds[v.speedIdx]; s > 0 {
		speed = fmt.Sprintf("%gx", s)
	}
	lines = append(lines, fmt.Sprintf("%s  T=%d  %s  zoom %.2f", v.scenario.Name, v.scene.Tick, speed, v.cam.zoom))
	if f := v.scene.Player.Flagship; f != nil {
		where := "in transit"
		if f.System != nil {
			where = f.System.Name
		}
		lines = append(lines,
			fmt.Sprintf("%s  %s", f.Name, where),
			fmt.Sprintf("shields %3.0f%%  hull %3.0f%%  fuel %4.0f", f.Shields*100, f.Hull*100, f.FuelAmount()),
		)
	}
	if ap := v.scene.AI.AutopilotActive(); ap != 0 {
		lines = append(lines, "autopilot: "+ap.String())
	} else {
		lines = append(lines, "autopilot: off")
	}
	lines = append(lines,
		fmt.Sprintf("selected %d  launching %v", len(v.scene.Player.Selected), v.scene.AI.Launching()),
		"arrows fly  J jump  L land  B board  T/R target",
		"click select  right-click order  F/U/I/O/Y fleet",
		"P pause  ,/. speed  -/= zoom  V follow  C copy",
	)
	if v.status != "" {
		lines = append(lines, "> "+v.status)
	}

	boxW := float32(0)
	for _, l := range lines {
		if w := float32(len(l) * 7); w > boxW {
			boxW = w
		}
	}
	boxW += 12
	boxH := float32(len(lines)*lineHeight + 8)
	vector.FillRect(screen, 4, 4, boxW, boxH, colPanel, false)
	vector.StrokeRect(screen, 4, 4, boxW, boxH, 1, colPanelEdge, false)
	for i, l := range lines {
		v.print(screen, l, 10, 8+float64(i*lineHeight), colText)
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
