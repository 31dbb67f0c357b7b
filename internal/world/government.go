package world

// Government is a faction. Hostility is symmetric: SetEnemy updates both sides.
type Government struct {
	Name     string
	Language string // empty means everyone understands it

	player      bool
	hostile     map[*Government]bool
	enforces    map[*System]bool
	enforcesAll bool

	provocations int
	offenses     EventType
}

// NewGovernment creates a non-player government.
func NewGovernment(name string) *Government {
	return &Government{Name: name, hostile: map[*Government]bool{}, enforces: map[*System]bool{}}
}

// NewPlayerGovernment creates the government the player's ships fly under.
func NewPlayerGovernment(name string) *Government {
	g := NewGovernment(name)
	g.player = true
	return g
}

// IsPlayer reports the player's government.
func (g *Government) IsPlayer() bool { return g != nil && g.player }

// IsEnemy reports mutual hostility. A nil government is nobody's enemy.
func (g *Government) IsEnemy(o *Government) bool {
	if g == nil || o == nil || g == o {
		return false
	}
	return g.hostile[o] || o.hostile[g]
}

// SetEnemy sets hostility between g and o in both directions.
func (g *Government) SetEnemy(o *Government, hostile bool) {
	if g == nil || o == nil || g == o {
		return
	}
	if hostile {
		g.hostile[o] = true
		o.hostile[g] = true
		return
	}
	delete(g.hostile, o)
	delete(o.hostile, g)
}

// SetEnforces grants scan enforcement in the given systems.
func (g *Government) SetEnforces(systems ...*System) {
	for _, s := range systems {
		g.enforces[s] = true
	}
}

// SetEnforcesEverywhere grants scan enforcement in every system.
func (g *Government) SetEnforcesEverywhere(v bool) { g.enforcesAll = v }

// CanEnforce reports whether ships of g may scan in sys.
func (g *Government) CanEnforce(sys *System) bool {
	if g == nil || sys == nil {
		return false
	}
	return g.enforcesAll || g.enforces[sys] || sys.Government == g
}

// Offend records an action taken against this government. PROVOKE counts
// every time it is signalled.
func (g *Government) Offend(t EventType) {
	if g == nil {
		return
	}
	g.offenses |= t
	if t&EventProvoke != 0 {
		g.provocations++
	}
}

// Provocations returns how many times PROVOKE has been signalled.
func (g *Government) Provocations() int { return g.provocations }

// Offenses returns the union of event bits signalled against g.
func (g *Government) Offenses() EventType { return g.offenses }
