package ai

import (
	"math"
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// gunner puts a pirate 500 units above the flagship, nose on it.
func gunner(r *rig) *world.Ship {
	s := r.add(2, r.pirate, geom.Pt(0, -500))
	s.Facing = geom.AngleOf(r.player.Flagship.Position.Sub(s.Position))
	return s
}

// fireAt runs a tick so the live lists exist, then asks AutoFire what s
// would shoot at the flagship.
func (r *rig) fireAt(s *world.Ship) world.FireCommand {
	r.t.Helper()
	facing := s.Facing
	r.step(0)
	s.Facing = facing
	s.TargetShip = r.player.Flagship
	var fire world.FireCommand
	fire.Clear(len(s.Hardpoints))
	r.c.AutoFire(s, &fire, true, false)
	return fire
}

func TestAutoFire_WeaponFilters(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *world.Ship)
		want  bool
	}{
		{
			name:  "ready gun fires",
			setup: func(s *world.Ship) { arm(s, laser(), false) },
			want:  true,
		},
		{
			name: "reloading gun holds",
			setup: func(s *world.Ship) {
				arm(s, laser(), false)
				s.Hardpoints[0].Reload = 5
			},
		},
		{
			name: "launcher without ammo holds",
			setup: func(s *world.Ship) {
				w := laser()
				w.Ammo, w.AmmoUsage = "torpedo", 1
				arm(s, w, false)
			},
		},
		{
			name: "launcher with ammo fires",
			setup: func(s *world.Ship) {
				w := laser()
				w.Ammo, w.AmmoUsage = "torpedo", 1
				arm(s, w, false)
				s.Ammo["torpedo"] = 3
			},
			want: true,
		},
		{
			name: "frugal ship at full health keeps its ammo",
			setup: func(s *world.Ship) {
				w := laser()
				w.Ammo, w.AmmoUsage = "torpedo", 1
				arm(s, w, false)
				s.Ammo["torpedo"] = 3
				s.Personality = world.NewPersonality(world.Frugal)
			},
		},
		{
			name: "fuel-burning gun keeps a jump in reserve",
			setup: func(s *world.Ship) {
				w := laser()
				w.FiringFuel = 50
				arm(s, w, false)
				s.Fuel = (s.JumpFuel(nil) + 20) / s.FuelCapacity()
			},
		},
		{
			name: "staying ship spends its reserve",
			setup: func(s *world.Ship) {
				w := laser()
				w.FiringFuel = 50
				arm(s, w, false)
				s.Fuel = (s.JumpFuel(nil) + 20) / s.FuelCapacity()
				s.Personality = world.NewPersonality(world.Staying)
			},
			want: true,
		},
		{
			name: "recoil gun holds while lining up a jump",
			setup: func(s *world.Ship) {
				w := laser()
				w.FiringForce = 5
				arm(s, w, false)
				var m world.MovementCommand
				m.Set(world.Jump)
				s.SetCommands(m)
				s.Commit()
			},
		},
		{
			name: "pacifist never fires",
			setup: func(s *world.Ship) {
				arm(s, laser(), false)
				s.Personality = world.NewPersonality(world.Pacifist)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			s := gunner(r)
			tt.setup(s)
			fire := r.fireAt(s)
			if got := fire.HasFire(0); got != tt.want {
				t.Fatalf("want fire=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestAutoFire_UnarmedShipHasEmptyMask(t *testing.T) {
	r := newRig(t)
	bare := gunner(r)
	pd := r.add(3, r.pirate, geom.Pt(0, -400))
	pd.Facing = bare.Facing
	arm(pd, &world.Weapon{Name: "point defense", Velocity: 20, Lifetime: 40, Reload: 10, AntiMissile: 5}, false)

	r.step(0)
	for _, s := range []*world.Ship{bare, pd} {
		fire := s.StagedFireCommands()
		if fire.IsFiring() {
			t.Fatalf("%s has no offensive weapon and must not fire", s.Name)
		}
		if fire.Len() != len(s.Hardpoints) {
			t.Fatalf("%s: the mask covers every hardpoint, want %d got %d", s.Name, len(s.Hardpoints), fire.Len())
		}
	}
}

func TestAutoFire_FireBufferReused(t *testing.T) {
	r := newRig(t)
	s := gunner(r)
	arm(s, laser(), false)

	r.step(0)
	r.commit()
	r.step(0)
	r.commit()
	first := s.FireCommands()
	r.step(0)
	r.commit()
	r.step(0)
	again := s.FireCommands()
	if first.Len() != 1 || again.Len() != 1 {
		t.Fatalf("want one hardpoint in the mask, got %d and %d", first.Len(), again.Len())
	}
	if allocs := testing.AllocsPerRun(20, func() {
		fire := s.StagedFireCommands()
		fire.Clear(len(s.Hardpoints))
		s.SetFireCommands(fire)
	}); allocs != 0 {
		t.Fatalf("clearing a staged fire command should not allocate, got %f", allocs)
	}
}

func TestAimTurrets_TracksTarget(t *testing.T) {
	r := newRig(t)
	s := r.add(2, r.pirate, geom.Pt(0, -500))
	w := laser()
	w.TurretTurn = 4
	s.Hardpoints = append(s.Hardpoints, world.NewHardpoint(geom.Point{}, 0, true, w))
	r.step(0)
	s.TargetShip = r.player.Flagship
	hp := s.Hardpoints[0]

	// Flagship is dead astern of a ship facing -Y.
	want := geom.AngleOf(r.player.Flagship.Position.Sub(s.Position)) - s.Facing
	for range 60 {
		var fire world.FireCommand
		fire.Clear(1)
		r.c.AimTurrets(s, &fire, false)
		if a := fire.Aim(0); a < -1 || a > 1 {
			t.Fatalf("aim out of range: %f", a)
		}
		hp.Angle = hp.Angle.AddDegrees(fire.Aim(0) * w.TurretTurn)
	}
	if off := math.Abs(hp.Angle.Delta(want)); off > 1 {
		t.Fatalf("turret should settle on the target, still %f degrees off", off)
	}
}

func TestAimTurrets_IdleReturnsHome(t *testing.T) {
	r := newRig(t)
	s := r.add(2, world.NewGovernment("Merchant"), geom.Pt(0, -500))
	w := laser()
	w.TurretTurn = 4
	s.Hardpoints = append(s.Hardpoints, world.NewHardpoint(geom.Point{}, 0, true, w))
	hp := s.Hardpoints[0]
	hp.Angle = geom.Degrees(30)
	r.step(0)

	for range 20 {
		var fire world.FireCommand
		fire.Clear(1)
		r.c.AimTurrets(s, &fire, false)
		hp.Angle = hp.Angle.AddDegrees(fire.Aim(0) * w.TurretTurn)
	}
	if off := math.Abs(hp.BaseAngle.Delta(hp.Angle)); off > .5 {
		t.Fatalf("an idle turret should swing back to its rest angle, still %f off", off)
	}
}
