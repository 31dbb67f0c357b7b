package world

import (
	"fmt"
	"sort"
	"strings"
)

// Personality is an immutable set of behavior flags plus the pilot's aiming
// confusion.
type Personality struct {
	flags     uint64
	Confusion float64 // aim jitter multiplier, 0 for a perfect pilot
}

// Trait is one personality flag.
type Trait uint64

const (
	Coward Trait = 1 << iota
	Daring
	Timid
	Hunting
	Vindictive
	Merciful
	Plunders
	Disables
	Appeasing
	Fleeing
	Staying
	Lingering
	Swarming
	Surveillance
	Secretive
	Mining
	Harvests
	Ramming
	Pacifist
	Opportunistic
	Unconstrained
	Nemesis
	Escort
	Uninterested
	Marked
	Mute
	Decloaked
	Derelict
	Entering
	Getaway
	Frugal
)

var traitNames = map[string]Trait{
	"coward": Coward, "daring": Daring, "timid": Timid, "hunting": Hunting,
	"vindictive": Vindictive, "merciful": Merciful, "plunders": Plunders,
	"disables": Disables, "appeasing": Appeasing, "fleeing": Fleeing,
	"staying": Staying, "lingering": Lingering, "swarming": Swarming,
	"surveillance": Surveillance, "secretive": Secretive, "mining": Mining,
	"harvests": Harvests, "ramming": Ramming, "pacifist": Pacifist,
	"opportunistic": Opportunistic, "unconstrained": Unconstrained,
	"nemesis": Nemesis, "escort": Escort, "uninterested": Uninterested,
	"marked": Marked, "mute": Mute, "decloaked": Decloaked, "derelict": Derelict,
	"entering": Entering, "getaway": Getaway, "frugal": Frugal,
}

// NewPersonality builds a personality from traits.
func NewPersonality(traits ...Trait) Personality {
	var p Personality
	for _, t := range traits {
		p.flags |= uint64(t)
	}
	return p
}

// ParsePersonality builds a personality from trait names.
func ParsePersonality(names ...string) (Personality, error) {
	var p Personality
	for _, n := range names {
		t, ok := traitNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return Personality{}, fmt.Errorf("unknown personality trait %q", n)
		}
		p.flags |= uint64(t)
	}
	return p, nil
}

// Has reports whether the trait is set.
func (p Personality) Has(t Trait) bool { return p.flags&uint64(t) != 0 }

// With returns a copy with the traits added.
func (p Personality) With(traits ...Trait) Personality {
	for _, t := range traits {
		p.flags |= uint64(t)
	}
	return p
}

func (p Personality) IsCoward() bool        { return p.Has(Coward) }
func (p Personality) IsDaring() bool        { return p.Has(Daring) }
func (p Personality) IsTimid() bool         { return p.Has(Timid) }
func (p Personality) IsHunting() bool       { return p.Has(Hunting) }
func (p Personality) IsVindictive() bool    { return p.Has(Vindictive) }
func (p Personality) IsMerciful() bool      { return p.Has(Merciful) }
func (p Personality) Plunders() bool        { return p.Has(Plunders) }
func (p Personality) Disables() bool        { return p.Has(Disables) }
func (p Personality) IsAppeasing() bool     { return p.Has(Appeasing) }
func (p Personality) IsFleeing() bool       { return p.Has(Fleeing) }
func (p Personality) IsStaying() bool       { return p.Has(Staying) }
func (p Personality) IsLingering() bool     { return p.Has(Lingering) }
func (p Personality) IsSwarming() bool      { return p.Has(Swarming) }
func (p Personality) IsSurveillance() bool  { return p.Has(Surveillance) }
func (p Personality) IsSecretive() bool     { return p.Has(Secretive) }
func (p Personality) IsMining() bool        { return p.Has(Mining) }
func (p Personality) Harvests() bool        { return p.Has(Harvests) }
func (p Personality) IsRamming() bool       { return p.Has(Ramming) }
func (p Personality) IsPacifist() bool      { return p.Has(Pacifist) }
func (p Personality) IsOpportunistic() bool { return p.Has(Opportunistic) }
func (p Personality) IsUnconstrained() bool { return p.Has(Unconstrained) }
func (p Personality) IsNemesis() bool       { return p.Has(Nemesis) }
func (p Personality) IsEscort() bool        { return p.Has(Escort) }
func (p Personality) IsUninterested() bool  { return p.Has(Uninterested) }
func (p Personality) IsMarked() bool        { return p.Has(Marked) }
func (p Personality) IsMute() bool          { return p.Has(Mute) }
func (p Personality) IsDecloaked() bool     { return p.Has(Decloaked) }
func (p Personality) IsDerelict() bool      { return p.Has(Derelict) }
func (p Personality) IsEntering() bool      { return p.Has(Entering) }
func (p Personality) IsGetaway() bool       { return p.Has(Getaway) }
func (p Personality) IsFrugal() bool        { return p.Has(Frugal) }

func (p Personality) String() string {
	var names []string
	for name, t := range traitNames {
		if p.Has(t) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "(none)"
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}
