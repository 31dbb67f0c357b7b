package config

import "fmt"

// FireMode selects which weapons fire automatically on the flagship.
type FireMode int

const (
	FireAll FireMode = iota
	FireGunsOnly
	FireTurretsOnly
	FireOff
)

// ParseFireMode maps the preference string to a FireMode.
func ParseFireMode(s string) (FireMode, error) {
	switch s {
	case "all", "":
		return FireAll, nil
	case "guns only":
		return FireGunsOnly, nil
	case "turrets only":
		return FireTurretsOnly, nil
	case "off":
		return FireOff, nil
	}
	return FireAll, fmt.Errorf("unknown automatic firing mode %q", s)
}

// AutoAim selects when the flagship turns toward its target on its own.
type AutoAim int

const (
	AimOff AutoAim = iota
	AimAlways
	AimWhenFiring
)

// ParseAutoAim maps the preference string to an AutoAim.
func ParseAutoAim(s string) (AutoAim, error) {
	switch s {
	case "off", "":
		return AimOff, nil
	case "always":
		return AimAlways, nil
	case "when firing":
		return AimWhenFiring, nil
	}
	return AimOff, fmt.Errorf("unknown auto aim mode %q", s)
}

// BoardingPriority orders boarding candidates.
type BoardingPriority int

const (
	BoardProximity BoardingPriority = iota
	BoardValue
	BoardMixed
)

// ParseBoardingPriority maps the preference string to a BoardingPriority.
func ParseBoardingPriority(s string) (BoardingPriority, error) {
	switch s {
	case "proximity", "":
		return BoardProximity, nil
	case "value":
		return BoardValue, nil
	case "mixed":
		return BoardMixed, nil
	}
	return BoardProximity, fmt.Errorf("unknown boarding priority %q", s)
}

// AsteroidPriority orders asteroid candidates for NEAREST_ASTEROID.
type AsteroidPriority int

const (
	AsteroidProximity AsteroidPriority = iota
	AsteroidValue
)

// ParseAsteroidPriority maps the preference string to an AsteroidPriority.
func ParseAsteroidPriority(s string) (AsteroidPriority, error) {
	switch s {
	case "proximity", "":
		return AsteroidProximity, nil
	case "value":
		return AsteroidValue, nil
	}
	return AsteroidProximity, fmt.Errorf("unknown asteroid priority %q", s)
}

// Fire returns the parsed firing mode, falling back to FireAll.
func (p Preferences) Fire() FireMode {
	m, _ := ParseFireMode(p.AutomaticFiring)
	return m
}

// Aim returns the parsed auto-aim mode, falling back to AimOff.
func (p Preferences) Aim() AutoAim {
	m, _ := ParseAutoAim(p.AutoAim)
	return m
}

// Boarding returns the parsed boarding priority.
func (p Preferences) Boarding() BoardingPriority {
	m, _ := ParseBoardingPriority(p.BoardingPriority)
	return m
}

// Asteroids returns the parsed asteroid priority.
func (p Preferences) Asteroids() AsteroidPriority {
	m, _ := ParseAsteroidPriority(p.TargetAsteroidBy)
	return m
}
