package world

import "sort"

// CargoHold tracks tonnage carried by a ship. Used never exceeds Size and
// passengers never exceed Bunks.
type CargoHold struct {
	size  int
	bunks int

	commodities  map[string]int
	outfits      map[string]int
	missionCargo map[string]int
	passengers   int
}

// NewCargoHold returns an empty hold.
func NewCargoHold(size, bunks int) *CargoHold {
	if size < 0 {
		size = 0
	}
	if bunks < 0 {
		bunks = 0
	}
	return &CargoHold{
		size:         size,
		bunks:        bunks,
		commodities:  map[string]int{},
		outfits:      map[string]int{},
		missionCargo: map[string]int{},
	}
}

func (c *CargoHold) Size() int  { return c.size }
func (c *CargoHold) Bunks() int { return c.bunks }

// Used is the total tonnage of commodities, outfits and mission cargo.
func (c *CargoHold) Used() int {
	return c.CommoditiesSize() + c.OutfitsSize() + c.MissionCargoSize()
}

// Free is the remaining tonnage.
func (c *CargoHold) Free() int { return c.size - c.Used() }

func (c *CargoHold) CommoditiesSize() int  { return sum(c.commodities) }
func (c *CargoHold) OutfitsSize() int      { return sum(c.outfits) }
func (c *CargoHold) MissionCargoSize() int { return sum(c.missionCargo) }
func (c *CargoHold) Passengers() int       { return c.passengers }

// IsEmpty reports a hold with no cargo and no passengers.
func (c *CargoHold) IsEmpty() bool { return c.Used() == 0 && c.passengers == 0 }

// Commodities returns the names of held commodities in sorted order.
func (c *CargoHold) Commodities() []string {
	names := make([]string, 0, len(c.commodities))
	for k, v := range c.commodities {
		if v > 0 {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Get returns the tonnage of a commodity.
func (c *CargoHold) Get(commodity string) int { return c.commodities[commodity] }

// Add stores up to tons of a commodity and returns how much fit.
func (c *CargoHold) Add(commodity string, tons int) int {
	if tons <= 0 {
		return 0
	}
	tons = min(tons, c.Free())
	if tons <= 0 {
		return 0
	}
	c.commodities[commodity] += tons
	return tons
}

// AddOutfit stores outfit tonnage and returns how much fit.
func (c *CargoHold) AddOutfit(outfit string, tons int) int {
	tons = min(tons, c.Free())
	if tons <= 0 {
		return 0
	}
	c.outfits[outfit] += tons
	return tons
}

// AddMissionCargo stores mission cargo. A zero-ton entry is kept so the
// manifest stays visible.
func (c *CargoHold) AddMissionCargo(mission string, tons int) bool {
	if tons < 0 || tons > c.Free() {
		return false
	}
	c.missionCargo[mission] += tons
	return true
}

// HasMissionCargo reports a manifest entry, even at zero tons.
func (c *CargoHold) HasMissionCargo(mission string) bool {
	_, ok := c.missionCargo[mission]
	return ok
}

// AddPassengers boards n passengers if bunks allow.
func (c *CargoHold) AddPassengers(n int) bool {
	if n < 0 || c.passengers+n > c.bunks {
		return false
	}
	c.passengers += n
	return true
}

// Remove takes up to tons of a commodity out and returns how much was removed.
func (c *CargoHold) Remove(commodity string, tons int) int {
	have := c.commodities[commodity]
	tons = min(tons, have)
	if tons <= 0 {
		return 0
	}
	if have == tons {
		delete(c.commodities, commodity)
	} else {
		c.commodities[commodity] = have - tons
	}
	return tons
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
