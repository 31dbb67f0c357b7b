package ai

import (
	"math"
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

func TestSwarm_SpreadsAcrossHosts(t *testing.T) {
	r := newRig(t)
	merchant := world.NewGovernment("Merchant")
	hostA := r.add(2, merchant, geom.Pt(1000, 0))
	hostB := r.add(3, merchant, geom.Pt(-1000, 0))
	var swarm []*world.Ship
	for i := range 4 {
		s := r.add(world.ShipID(10+i), merchant, geom.Pt(0, float64(200+50*i)))
		s.Personality = world.NewPersonality(world.Swarming)
		swarm = append(swarm, s)
	}

	r.step(0)
	counts := map[world.ShipID]int{}
	for _, s := range swarm {
		h := s.TargetShip
		if h != hostA && h != hostB && h != r.player.Flagship {
			t.Fatalf("%s should latch on to a host, got %v", s.Name, h)
		}
		counts[h.ID]++
	}
	for id, n := range counts {
		if r.c.swarmCount[id] != n {
			t.Fatalf("host %d: bookkeeping says %d swarmers, %d are there", id, r.c.swarmCount[id], n)
		}
	}

	r.ships = slicesWithout(r.ships, hostA)
	r.commit()
	r.step(0)
	if r.c.swarmCount[hostA.ID] != 0 {
		t.Fatal("a host that left keeps no swarm count")
	}
	for _, s := range swarm {
		if s.TargetShip == hostA {
			t.Fatalf("%s still swarms a host that left", s.Name)
		}
	}
}

func slicesWithout(ships []*world.Ship, gone *world.Ship) []*world.Ship {
	out := ships[:0:0]
	for _, s := range ships {
		if s != gone {
			out = append(out, s)
		}
	}
	return out
}

func TestSecretive_RunsFromCloseScan(t *testing.T) {
	r := newRig(t)
	merchant := world.NewGovernment("Merchant")
	shy := r.add(2, merchant, geom.Pt(300, 0))
	shy.Personality = world.NewPersonality(world.Secretive)
	scanner := r.add(3, world.NewGovernment("Navy"), geom.Pt(200, 0))
	scanner.Attributes["cargo scan power"] = 4

	r.step(0)
	scanner.TargetShip = shy
	var cmd world.MovementCommand
	if r.c.doSecretive(shy, &cmd) {
		t.Fatal("nobody is scanning yet")
	}

	var m world.MovementCommand
	m.Set(world.Scan)
	scanner.SetCommands(m)
	scanner.Commit()
	cmd = world.MovementCommand{}
	if !r.c.doSecretive(shy, &cmd) {
		t.Fatal("a secretive ship should run from a scan in progress")
	}
	if cmd.Turn() <= 0 {
		t.Fatalf("facing -Y with the scanner to its left, it should turn right, got %f", cmd.Turn())
	}

	scanner.Position = geom.Pt(300, 2000)
	cmd = world.MovementCommand{}
	if r.c.doSecretive(shy, &cmd) {
		t.Fatal("a scanner out of reach is ignored")
	}
}

func TestSurveillance_PicksALinkAndJumps(t *testing.T) {
	r := newRig(t)
	spy := r.add(2, world.NewGovernment("Merchant"), geom.Pt(500, 0))
	spy.Personality = world.NewPersonality(world.Surveillance)

	r.step(0)
	if spy.TargetSystem == nil || !r.home.IsLinked(spy.TargetSystem) {
		t.Fatalf("with nothing to scan a surveillance ship heads for a neighbour, got %v", spy.TargetSystem)
	}
	r.commit()
	r.step(0)
	if got := spy.StagedCommands(); !got.HasAll(world.Jump | world.Deploy) {
		t.Fatalf("it should then jump with its fighters out, got %s", got.Command)
	}
}

func TestDoCloak(t *testing.T) {
	r := newRig(t)
	ghost := r.add(2, r.pirate, geom.Pt(0, -500))
	ghost.Attributes["cloak"] = 1
	ghost.Attributes["cloaking fuel"] = 10
	r.step(0)

	var cmd world.MovementCommand
	if r.c.doCloak(ghost, &cmd) {
		t.Fatal("a healthy ship with fuel cloaks and keeps fighting")
	}
	if !cmd.Has(world.Cloak) {
		t.Fatal("a threatened ship with fuel to spare should cloak")
	}

	// Too little fuel to stay cloaked: run while the cloak still holds.
	ghost.Fuel = (ghost.JumpFuel(nil) + 5) / ghost.FuelCapacity()
	ghost.Cloak = .5
	cmd = world.MovementCommand{}
	if !r.c.doCloak(ghost, &cmd) {
		t.Fatal("a fading cloak with an enemy near means retreat")
	}
	if cmd.Has(world.Cloak) {
		t.Fatal("it cannot afford to keep the cloak up")
	}
	if !cmd.Has(world.Forward) || math.Abs(cmd.Turn()) > .01 {
		t.Fatalf("facing away from the enemy it should just thrust, got %s turn %f", cmd.Command, cmd.Turn())
	}
}

func TestAskForHelp_PicksOneFriend(t *testing.T) {
	r := newRig(t)
	merchant := world.NewGovernment("Merchant")
	victim := r.add(2, merchant, geom.Pt(1000, 0))
	victim.Disabled = true
	friend := r.add(3, merchant, geom.Pt(1200, 0))

	r.step(0)
	r.c.askForHelp(victim)
	if friend.ShipToAssist != victim {
		t.Fatalf("the only friendly ship should be sent, got %v", friend.ShipToAssist)
	}
	if r.c.helperList[victim.ID] != friend.ID {
		t.Fatal("the helper should be recorded against the victim")
	}

	friend.ShipToAssist = nil
	r.c.askForHelp(victim)
	if friend.ShipToAssist != nil {
		t.Fatal("a victim with a helper on record does not ask again")
	}
}

func TestDoScatter(t *testing.T) {
	r := newRig(t)
	merchant := world.NewGovernment("Merchant")
	a := r.add(2, merchant, geom.Pt(1000, 1000))
	twin := r.add(3, merchant, geom.Pt(1010, 1000))
	r.step(0)

	var cmd world.MovementCommand
	cmd.Set(world.Forward)
	r.c.doScatter(a, &cmd)
	if math.Abs(cmd.Turn()) != 1 {
		t.Fatalf("a twin on top of it should turn it hard aside, got %f", cmd.Turn())
	}

	twin.Attributes["thrust"] = 200
	cmd = world.MovementCommand{}
	cmd.Set(world.Forward)
	r.c.doScatter(a, &cmd)
	if cmd.Turn() != 0 {
		t.Fatalf("a ship that handles differently is left alone, got %f", cmd.Turn())
	}

	twin.Attributes["thrust"] = 100
	cmd = world.MovementCommand{}
	r.c.doScatter(a, &cmd)
	if cmd.Turn() != 0 {
		t.Fatal("a ship that is not thrusting does not scatter")
	}
}

func TestKeepStation_TurnDamping(t *testing.T) {
	target := mover()
	target.Position = geom.Pt(2000, 0)

	tests := []struct {
		name string
		prev float64
		want func(float64) bool
	}{
		{"from rest", 0, func(turn float64) bool { return turn == 1 }},
		{"growing turn is damped", .1, func(turn float64) bool { return math.Abs(turn-(.1+stationTurnDamping)) < 1e-9 }},
		{"reversal is not damped", -.1, func(turn float64) bool { return turn == 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mover()
			var m world.MovementCommand
			m.SetTurn(tt.prev)
			s.SetCommands(m)
			s.Commit()

			var cmd world.MovementCommand
			KeepStation(s, &cmd, target)
			if !tt.want(cmd.Turn()) {
				t.Fatalf("previous turn %f: unexpected turn %f", tt.prev, cmd.Turn())
			}
		})
	}
}

func TestStep_ProvokeSignalledEveryTime(t *testing.T) {
	r := newRig(t)
	flag := r.player.Flagship
	victim := r.add(2, r.pirate, geom.Pt(800, 0))

	r.step(0, world.NewShipEvent(flag, victim, world.EventProvoke))
	r.commit()
	r.step(0, world.NewShipEvent(flag, victim, world.EventProvoke|world.EventDisable))
	if got := r.pirate.Provocations(); got != 2 {
		t.Fatalf("each provocation reaches the government, want 2 got %d", got)
	}
	if !r.pirate.Offenses().Has(world.EventDisable) {
		t.Fatal("the disable should be recorded as an offense")
	}
}
