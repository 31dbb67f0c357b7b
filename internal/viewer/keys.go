package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Ship-Sense/internal/world"
)

// binding maps one or more keys to a command bit.
type binding struct {
	cmd  world.Command
	keys []ebiten.Key
}

// bindings follows the stock key layout of the game.
var bindings = []binding{
	{world.Forward, []ebiten.Key{ebiten.KeyArrowUp}},
	{world.Left, []ebiten.Key{ebiten.KeyArrowLeft}},
	{world.Right, []ebiten.Key{ebiten.KeyArrowRight}},
	{world.Back, []ebiten.Key{ebiten.KeyArrowDown}},
	{world.Afterburner, []ebiten.Key{ebiten.KeyTab}},
	{world.Primary, []ebiten.Key{ebiten.KeySpace}},
	{world.Secondary, []ebiten.Key{ebiten.KeyQ}},
	{world.Select, []ebiten.Key{ebiten.KeyW}},
	{world.Land, []ebiten.Key{ebiten.KeyL}},
	{world.Board, []ebiten.Key{ebiten.KeyB}},
	{world.Hail, []ebiten.Key{ebiten.KeyH}},
	{world.Scan, []ebiten.Key{ebiten.KeyS}},
	{world.Jump, []ebiten.Key{ebiten.KeyJ}},
	{world.Target, []ebiten.Key{ebiten.KeyT}},
	{world.Nearest, []ebiten.Key{ebiten.KeyR}},
	{world.NearestAsteroid, []ebiten.Key{ebiten.KeyG}},
	{world.Deploy, []ebiten.Key{ebiten.KeyE}},
	{world.Cloak, []ebiten.Key{ebiten.KeyK}},
	{world.Fight, []ebiten.Key{ebiten.KeyF}},
	{world.Gather, []ebiten.Key{ebiten.KeyU}},
	{world.HoldPosition, []ebiten.Key{ebiten.KeyI}},
	{world.HoldFire, []ebiten.Key{ebiten.KeyO}},
	{world.Harvest, []ebiten.Key{ebiten.KeyY}},
	{world.Ammo, []ebiten.Key{ebiten.KeyM}},
	{world.AutoSteer, []ebiten.Key{ebiten.KeyA}},
	{world.Stop, []ebiten.Key{ebiten.KeyX}},
	{world.Shift, []ebiten.Key{ebiten.KeyShiftLeft, ebiten.KeyShiftRight}},
}

// heldCommand folds the pressed keys into a command. pressed is
// ebiten.IsKeyPressed outside tests.
func heldCommand(pressed func(ebiten.Key) bool) world.Command {
	var held world.Command
	for _, b := range bindings {
		for _, k := range b.keys {
			if pressed(k) {
				held |= b.cmd
				break
			}
		}
	}
	return held
}

// edges tracks key-down transitions for viewer controls.
type edges struct {
	prev map[ebiten.Key]bool
}

func newEdges() *edges { return &edges{prev: map[ebiten.Key]bool{}} }

// pressed reports whether k went down since the last call for k.
func (e *edges) pressed(k ebiten.Key, down bool) bool {
	was := e.prev[k]
	e.prev[k] = down
	return down && !was
}
