package world

import "github.com/Garsondee/Ship-Sense/internal/geom"

// Weapon is the read-only specification of an installed gun, turret, or
// launcher.
type Weapon struct {
	Name string

	Velocity       float64 // projectile speed, world units per tick
	RandomVelocity float64 // uniform extra speed in [0, RandomVelocity)
	Lifetime       int     // projectile lifetime in ticks
	RangeOverride  float64 // explicit range; 0 derives it from speed and lifetime

	Reload      float64
	BurstCount  int
	BurstReload float64

	Ammo      string // outfit consumed per shot, empty if none
	AmmoUsage int

	FiringEnergy  float64
	FiringHeat    float64
	FiringFuel    float64
	FiringHull    float64
	FiringShields float64
	FiringForce   float64

	Homing        int // 0 = dumb-fire
	BlastRadius   float64
	TriggerRadius float64
	SafeForFirer  bool

	AntiMissile int
	TractorBeam int

	Inaccuracy       float64
	OpticalTracking  float64
	InfraredTracking float64
	RadarTracking    float64
	Piercing         float64

	ShieldDamage float64
	HullDamage   float64

	TurretTurn float64 // degrees per tick a turret mount can slew
}

// WeightedVelocity is the expected projectile speed.
func (w *Weapon) WeightedVelocity() float64 { return w.Velocity + .5*w.RandomVelocity }

// Range is the distance a projectile covers before expiring.
func (w *Weapon) Range() float64 {
	if w.RangeOverride > 0 {
		return w.RangeOverride
	}
	return w.WeightedVelocity() * float64(w.Lifetime)
}

// IsInstantaneous reports beam weapons whose effect lands on the firing tick.
func (w *Weapon) IsInstantaneous() bool { return w.Lifetime <= 1 }

// IsSpecial reports point-defense and tractor weapons, which never count as
// offensive armament.
func (w *Weapon) IsSpecial() bool { return w.AntiMissile > 0 || w.TractorBeam > 0 }

// IsHoming reports guided projectiles.
func (w *Weapon) IsHoming() bool { return w.Homing > 0 }

// Hardpoint is a mount on a ship that may carry a weapon.
type Hardpoint struct {
	Offset     geom.Point // unrotated offset from the ship center
	BaseAngle  geom.Angle // idle direction relative to the ship facing
	MinArc     float64    // degrees relative to BaseAngle
	MaxArc     float64
	Omni       bool         // full 360° traverse
	Blindspots [][2]float64 // degree ranges relative to BaseAngle
	IsTurret   bool
	Weapon     *Weapon

	Reload      float64
	BurstReload float64
	BurstCount  int
	Angle       geom.Angle // current aim relative to the ship facing
	WasFiring   bool
}

// NewHardpoint mounts w at offset with an idle angle.
func NewHardpoint(offset geom.Point, base geom.Angle, turret bool, w *Weapon) *Hardpoint {
	hp := &Hardpoint{Offset: offset, BaseAngle: base, Angle: base, IsTurret: turret, Omni: turret}
	hp.Install(w)
	return hp
}

// Install puts a weapon in the mount with a fresh burst.
func (h *Hardpoint) Install(w *Weapon) {
	h.Weapon = w
	h.Reload = 0
	h.BurstReload = 0
	h.BurstCount = 1
	if w != nil && w.BurstCount > 1 {
		h.BurstCount = w.BurstCount
	}
}

// IsArmed reports an installed non-special weapon.
func (h *Hardpoint) IsArmed() bool { return h.Weapon != nil && !h.Weapon.IsSpecial() }

// IsReady reports a weapon that has finished reloading.
func (h *Hardpoint) IsReady() bool {
	return h.Weapon != nil && h.Reload <= 0 && h.BurstCount > 0
}

// CanAim reports a turret that can slew.
func (h *Hardpoint) CanAim() bool {
	return h.IsTurret && h.Weapon != nil && h.Weapon.TurretTurn > 0
}

// IsHoming reports a guided weapon.
func (h *Hardpoint) IsHoming() bool { return h.Weapon != nil && h.Weapon.IsHoming() }

// IsSpecial reports a point-defense or tractor weapon.
func (h *Hardpoint) IsSpecial() bool { return h.Weapon != nil && h.Weapon.IsSpecial() }

// InArc reports whether a direction relative to the ship facing lies inside
// the mount's traverse and outside its blindspots.
func (h *Hardpoint) InArc(rel geom.Angle) bool {
	off := h.BaseAngle.Delta(rel)
	for _, b := range h.Blindspots {
		if off >= b[0] && off <= b[1] {
			return false
		}
	}
	if h.Omni {
		return true
	}
	return off >= h.MinArc && off <= h.MaxArc
}

// ClampToArc snaps a relative direction to the nearest traverse edge.
func (h *Hardpoint) ClampToArc(rel geom.Angle) geom.Angle {
	if h.Omni {
		return rel
	}
	off := h.BaseAngle.Delta(rel)
	switch {
	case off < h.MinArc:
		return h.BaseAngle.AddDegrees(h.MinArc)
	case off > h.MaxArc:
		return h.BaseAngle.AddDegrees(h.MaxArc)
	}
	return rel
}
