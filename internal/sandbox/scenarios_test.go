package sandbox

import (
	"testing"
)

func TestScenarios_AllRun(t *testing.T) {
	for _, name := range ScenarioNames() {
		t.Run(name, func(t *testing.T) {
			s, ok := Lookup(name)
			if !ok {
				t.Fatalf("%s listed but not found", name)
			}
			sc := s.Run(7, 300, nil)
			if sc.Tick != 300 {
				t.Fatalf("want 300 ticks, ran %d", sc.Tick)
			}
			if sc.Player.Flagship == nil {
				t.Fatal("every scenario has a flagship")
			}
		})
	}
}

func TestScenarios_SameSeedSamePositions(t *testing.T) {
	s, _ := Lookup("pirate-raid")
	a, b := s.Run(11, 400, nil), s.Run(11, 400, nil)
	for i, ship := range a.Ships {
		if ship.Position != b.Ships[i].Position {
			t.Fatalf("%s diverged: %v vs %v", ship.Name, ship.Position, b.Ships[i].Position)
		}
	}
}

func TestScenarios_JointJumpArrives(t *testing.T) {
	s, _ := Lookup("joint-jump")
	sc := s.Run(3, s.Ticks, nil)
	north := sc.System("North")
	for _, ship := range sc.Player.Ships {
		if ship.System != north {
			dumpLog(t, sc)
			t.Fatalf("%s should have reached North", ship.Name)
		}
	}
}

func TestScenarios_EachHookSeesEveryTick(t *testing.T) {
	s, _ := Lookup("fence")
	var seen []int
	s.Run(1, 5, func(sc *Scene) { seen = append(seen, sc.Tick) })
	if len(seen) != 5 || seen[0] != 1 || seen[4] != 5 {
		t.Fatalf("want ticks 1..5, got %v", seen)
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, ok := Lookup("no-such-scenario"); ok {
		t.Fatal("unknown names are not found")
	}
}
