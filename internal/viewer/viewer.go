// Package viewer draws a sandbox scene with ebiten and feeds the keyboard
// and mouse to the controller as the player's input.
package viewer

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/sandbox"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

const (
	panelWidth = 420 // message panel on the right
	hudLines   = 9
	lineHeight = 14
	pickRadius = 40 // screen pixels
	copyTail   = 60 // SimLog lines put on the clipboard
)

var speeds = []float64{0, 0.25, 0.5, 1, 2, 4, 8}

// Viewer is an ebiten.Game over a sandbox scene.
type Viewer struct {
	scene    *sandbox.Scene
	scenario sandbox.Scenario
	log      zerolog.Logger

	width, height int
	cam           camera
	follow        bool
	showHUD       bool
	speedIdx      int
	tickAccum     float64
	keys          *edges
	prevLeft      bool
	prevRight     bool
	face          *text.GoXFace
	status        string // last viewer action, shown in the HUD
}

// New wraps a scene built from scenario. The scenario's scripted input is
// merged with the keyboard on every tick.
func New(sc *sandbox.Scene, scenario sandbox.Scenario, width, height int, log zerolog.Logger) *Viewer {
	v := &Viewer{
		scene:    sc,
		scenario: scenario,
		log:      log,
		width:    width,
		height:   height,
		follow:   true,
		showHUD:  true,
		speedIdx: 3,
		keys:     newEdges(),
		face:     text.NewGoXFace(basicfont.Face7x13),
	}
	v.cam = camera{zoom: 0.4, w: float64(width - panelWidth), h: float64(height)}
	return v
}

// Layout implements ebiten.Game.
func (v *Viewer) Layout(_, _ int) (int, int) { return v.width, v.height }

// Update implements ebiten.Game.
func (v *Viewer) Update() error {
	v.handleControls()

	mx, my := ebiten.CursorPosition()
	v.scene.Mouse = v.cam.toWorld(mx, my)
	v.handleMouse(mx, my)

	speed := speeds[v.speedIdx]
	if speed <= 0 {
		return nil
	}
	v.tickAccum += speed
	for v.tickAccum >= 1 {
		v.tickAccum--
		held := heldCommand(ebiten.IsKeyPressed) | v.scenario.Input(v.scene)
		v.scene.Step(held)
	}
	if f := v.scene.Player.Flagship; v.follow && f != nil && f.System != nil {
		v.cam.center = f.Position
	}
	return nil
}

// handleControls processes viewer keys, edge-triggered.
func (v *Viewer) handleControls() {
	if v.keys.pressed(ebiten.KeyP, ebiten.IsKeyPressed(ebiten.KeyP)) {
		if v.speedIdx == 0 {
			v.speedIdx = 3
		} else {
			v.speedIdx = 0
		}
	}
	if v.keys.pressed(ebiten.KeyComma, ebiten.IsKeyPressed(ebiten.KeyComma)) && v.speedIdx > 1 {
		v.speedIdx--
	}
	if v.keys.pressed(ebiten.KeyPeriod, ebiten.IsKeyPressed(ebiten.KeyPeriod)) && v.speedIdx < len(speeds)-1 {
		v.speedIdx++
	}
	if v.keys.pressed(ebiten.KeyEqual, ebiten.IsKeyPressed(ebiten.KeyEqual)) {
		v.cam.zoomBy(1.25)
	}
	if v.keys.pressed(ebiten.KeyMinus, ebiten.IsKeyPressed(ebiten.KeyMinus)) {
		v.cam.zoomBy(0.8)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		if wy > 0 {
			v.cam.zoomBy(1.1)
		} else {
			v.cam.zoomBy(0.9)
		}
	}
	if v.keys.pressed(ebiten.KeyF1, ebiten.IsKeyPressed(ebiten.KeyF1)) {
		v.showHUD = !v.showHUD
	}
	if v.keys.pressed(ebiten.KeyV, ebiten.IsKeyPressed(ebiten.KeyV)) {
		v.follow = !v.follow
	}
	if v.keys.pressed(ebiten.KeyC, ebiten.IsKeyPressed(ebiten.KeyC)) {
		v.copyLog()
	}
}

// handleMouse selects escorts with the left button and gives orders with
// the right, both edge-triggered.
func (v *Viewer) handleMouse(mx, my int) {
	if mx >= int(v.cam.w) {
		return
	}
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	defer func() { v.prevLeft, v.prevRight = left, right }()

	at := v.scene.Mouse
	reach := pickRadius / v.cam.zoom
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	if left && !v.prevLeft {
		v.selectAt(at, reach, shift)
	}
	if right && !v.prevRight {
		v.orderAt(at, reach)
	}
}

func (v *Viewer) selectAt(at geom.Point, reach float64, add bool) {
	p := v.scene.Player
	s := v.nearestShip(at, reach, func(s *world.Ship) bool { return s.IsYours && s != p.Flagship })
	if !add {
		p.Selected = p.Selected[:0]
	}
	if s != nil {
		p.Selected = append(p.Selected, s)
		v.status = fmt.Sprintf("selected %s (%d)", s.Name, len(p.Selected))
		return
	}
	v.status = "selection cleared"
}

func (v *Viewer) orderAt(at geom.Point, reach float64) {
	p := v.scene.Player
	if s := v.nearestShip(at, reach, func(s *world.Ship) bool { return !s.IsYours }); s != nil {
		v.scene.AI.IssueShipTarget(p, s)
		v.status = "target " + s.Name
		return
	}
	for _, m := range v.scene.Minables {
		if m.IsLive() && m.Position.Distance(at) <= m.Radius+reach {
			v.scene.AI.IssueAsteroidTarget(p, m)
			v.status = "mine " + m.Name
			return
		}
	}
	v.scene.AI.IssueMoveTarget(p, at, nil)
	v.status = fmt.Sprintf("move to %.0f,%.0f", at.X, at.Y)
}

func (v *Viewer) nearestShip(at geom.Point, reach float64, ok func(*world.Ship) bool) *world.Ship {
	var best *world.Ship
	bestD := reach
	home := v.home()
	for _, s := range v.scene.Ships {
		if s.Destroyed || s.System != home || !ok(s) {
			continue
		}
		if d := s.Position.Distance(at); d <= bestD {
			best, bestD = s, d
		}
	}
	return best
}

// home is the system on screen: the flagship's, or the first one.
func (v *Viewer) home() *world.System {
	if f := v.scene.Player.Flagship; f != nil && f.System != nil {
		return f.System
	}
	if len(v.scene.Systems) > 0 {
		return v.scene.Systems[0]
	}
	return nil
}

// copyLog puts the message log and the SimLog tail on the clipboard.
func (v *Viewer) copyLog() {
	var b strings.Builder
	b.WriteString(v.scene.Messages.Format())
	b.WriteString("\n")
	b.WriteString(v.scene.SimLog.Tail(copyTail))
	if err := clipboard.WriteAll(b.String()); err != nil {
		v.log.Warn().Err(err).Msg("clipboard write failed")
		v.status = "clipboard unavailable"
		return
	}
	v.status = "log copied"
}

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	v.drawSystem(screen)
	v.drawPanel(screen)
	if v.showHUD {
		v.drawHUD(screen)
	}
}
