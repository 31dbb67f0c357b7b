package ai

import (
	"math"
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func mover() *world.Ship {
	s := world.NewShip(1, "mover", nil, world.NewSystem("Home", geom.Pt(0, 0)))
	s.Attributes = world.Attributes{"mass": 100, "thrust": 100, "turn": 500, "drag": 1}
	return s
}

func TestTurnToward(t *testing.T) {
	s := mover() // facing up, 5 degrees per tick
	if got := TurnToward(s, geom.Pt(1, 0)); got != 1 {
		t.Errorf("target to the right: want 1, got %f", got)
	}
	if got := TurnToward(s, geom.Pt(-1, 0)); got != -1 {
		t.Errorf("target to the left: want -1, got %f", got)
	}
	if got := TurnToward(s, geom.Pt(0, -1)); got != 0 {
		t.Errorf("target ahead: want 0, got %f", got)
	}
	if got := TurnToward(s, geom.Degrees(2).Unit()); math.Abs(got-.4) > .01 {
		t.Errorf("2 degrees at 5 per tick: want 0.4, got %f", got)
	}
}

func TestTurnToward_CannotTurn(t *testing.T) {
	s := mover()
	s.Attributes["turn"] = 0
	if got := TurnToward(s, geom.Pt(1, 0)); got != 0 {
		t.Fatalf("ship without turn rate should not turn, got %f", got)
	}
}

func TestStop(t *testing.T) {
	s := mover()
	var cmd world.MovementCommand
	if !Stop(s, &cmd, 0, geom.Point{}) {
		t.Fatal("a ship at rest is already stopped")
	}
	if cmd.Command != world.None {
		t.Fatalf("no command expected, got %s", cmd.Command)
	}

	s.Velocity = geom.Pt(5, 0)
	if Stop(s, &cmd, 0, geom.Point{}) {
		t.Fatal("a moving ship is not stopped")
	}
	if !cmd.Has(world.Stop) {
		t.Fatal("a full stop should request the STOP bit")
	}
	if cmd.Turn() >= 0 {
		t.Fatalf("moving right while facing up, turning back means turning left: got %f", cmd.Turn())
	}
}

func TestMoveTo(t *testing.T) {
	s := mover()
	var cmd world.MovementCommand
	if !MoveTo(s, &cmd, geom.Pt(5, 0), geom.Point{}, 10, 1, 0) {
		t.Fatal("inside the radius at rest should count as arrived")
	}

	cmd = world.MovementCommand{}
	if MoveTo(s, &cmd, geom.Pt(0, -1000), geom.Point{}, 10, 1, 0) {
		t.Fatal("far away should not count as arrived")
	}
	if !cmd.Has(world.Forward) {
		t.Fatal("facing the target at rest should thrust")
	}
	if cmd.Turn() != 0 {
		t.Fatalf("already facing the target, got turn %f", cmd.Turn())
	}
}

func TestTargetAim_WithoutGunsPointsAtTarget(t *testing.T) {
	s := mover()
	got := TargetAim(s, geom.Pt(30, 40), geom.Pt(1, 1))
	if got != geom.Pt(30, 40) {
		t.Fatalf("want the bare offset, got %v", got)
	}
}

func TestPrepareForHyperspace_LeavesDepartureZone(t *testing.T) {
	s := mover()
	s.Attributes["hyperdrive"] = 1
	north := world.NewSystem("North", geom.Pt(0, -100))
	world.Link(s.System, north)
	s.System.DepartureDistance = 500
	s.TargetSystem = north
	s.Position = geom.Pt(0, -10)

	var cmd world.MovementCommand
	if PrepareForHyperspace(s, &cmd) {
		t.Fatal("inside the departure distance the ship is not ready")
	}
	if !cmd.Has(world.Forward) {
		t.Fatal("facing outward it should thrust out of the zone")
	}
}
