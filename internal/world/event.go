package world

// EventType is a bitmask of things one ship did to another.
type EventType uint32

const (
	EventAssist EventType = 1 << iota
	EventDisable
	EventBoard
	EventProvoke
	EventCapture
	EventDestroy
	EventScanCargo
	EventScanOutfits
	EventEncounter
)

// Has reports whether any bit of o is set.
func (e EventType) Has(o EventType) bool { return e&o != 0 }

// ShipEvent is posted by the world layer between ticks. Actor or Target may
// be nil for government-level events.
type ShipEvent struct {
	Actor     *Ship
	ActorGov  *Government
	Target    *Ship
	TargetGov *Government
	Type      EventType
}

// NewShipEvent fills the governments from the ships.
func NewShipEvent(actor, target *Ship, t EventType) ShipEvent {
	e := ShipEvent{Actor: actor, Target: target, Type: t}
	if actor != nil {
		e.ActorGov = actor.Government
	}
	if target != nil {
		e.TargetGov = target.Government
	}
	return e
}
