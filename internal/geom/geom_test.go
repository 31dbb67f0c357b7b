package geom

import (
	"math"
	"testing"
)

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestAngle_UnitCardinals(t *testing.T) {
	cases := []struct {
		deg  float64
		want Point
	}{
		{0, Pt(0, -1)},
		{90, Pt(1, 0)},
		{180, Pt(0, 1)},
		{-90, Pt(-1, 0)},
		{270, Pt(-1, 0)},
	}
	for _, c := range cases {
		u := Degrees(c.deg).Unit()
		if !approx(u.X, c.want.X, 1e-4) || !approx(u.Y, c.want.Y, 1e-4) {
			t.Errorf("Degrees(%.0f).Unit() = %+v, want %+v", c.deg, u, c.want)
		}
	}
}

func TestAngle_DegreesRoundTrip(t *testing.T) {
	for _, d := range []float64{-179, -45, 0, 12.5, 90, 179.9} {
		got := Degrees(d).Degrees()
		if !approx(got, d, 1e-6) {
			t.Errorf("round trip %.3f -> %.6f", d, got)
		}
	}
	if got := Degrees(180).Degrees(); got != 180 {
		t.Errorf("180 should normalise to 180, got %f", got)
	}
}

func TestAngle_WrapsOnAdd(t *testing.T) {
	a := Degrees(170).AddDegrees(20)
	if !approx(a.Degrees(), -170, 1e-6) {
		t.Fatalf("170+20 should wrap to -170, got %f", a.Degrees())
	}
	if d := Degrees(170).Delta(Degrees(-170)); !approx(d, 20, 1e-6) {
		t.Fatalf("shortest delta 170 -> -170 should be +20, got %f", d)
	}
}

func TestAngleOf_MatchesUnit(t *testing.T) {
	for _, d := range []float64{-135, -30, 0, 45, 100} {
		a := AngleOf(Degrees(d).Unit().Mul(50))
		if !approx(a.Degrees(), d, 0.01) {
			t.Errorf("AngleOf(unit(%.0f)) = %.4f", d, a.Degrees())
		}
	}
}

func TestAngle_RotateClockwise(t *testing.T) {
	r := Degrees(90).Rotate(Pt(1, 0))
	if !approx(r.X, 0, 1e-4) || !approx(r.Y, 1, 1e-4) {
		t.Fatalf("rotating +X by 90 should give +Y (screen down), got %+v", r)
	}
	r = Degrees(0).Rotate(Pt(3, 4))
	if r != Pt(3, 4) {
		t.Fatalf("zero rotation should be identity, got %+v", r)
	}
}

func TestAngle_IsInRange(t *testing.T) {
	if !Degrees(10).IsInRange(Degrees(-20), Degrees(20)) {
		t.Fatal("10 should be inside [-20, 20]")
	}
	if Degrees(30).IsInRange(Degrees(-20), Degrees(20)) {
		t.Fatal("30 should be outside [-20, 20]")
	}
	if !Degrees(180).IsInRange(Degrees(170), Degrees(-170)) {
		t.Fatal("arc across the seam should contain 180")
	}
}

func TestRendezvousTime_StationaryTarget(t *testing.T) {
	got := RendezvousTime(Pt(100, 0), Point{}, 10)
	if !approx(got, 10, 1e-9) {
		t.Fatalf("stationary target at 100 with speed 10: want 10, got %f", got)
	}
}

func TestRendezvousTime_Uncatchable(t *testing.T) {
	got := RendezvousTime(Pt(100, 0), Pt(20, 0), 10)
	if !math.IsNaN(got) {
		t.Fatalf("fleeing faster than the projectile should be NaN, got %f", got)
	}
}

func TestRendezvousTime_Approaching(t *testing.T) {
	// Target closes at 10/tick, projectile 10/tick: meet at t = 5.
	got := RendezvousTime(Pt(100, 0), Pt(-10, 0), 10)
	if !approx(got, 5, 1e-9) {
		t.Fatalf("head-on closing: want 5, got %f", got)
	}
}

func TestRendezvousTime_EqualSpeedLinear(t *testing.T) {
	got := RendezvousTime(Pt(0, 100), Pt(10, 0), 10)
	if !math.IsNaN(got) {
		t.Fatalf("crossing target at equal speed never meets, got %f", got)
	}
}

func TestPoint_UnitOfZero(t *testing.T) {
	if u := (Point{}).Unit(); u != Pt(0, -1) {
		t.Fatalf("zero vector unit should default to angle zero, got %+v", u)
	}
}
