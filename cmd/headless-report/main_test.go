package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/Ship-Sense/internal/sandbox"
)

func TestSummarize_CountsEvents(t *testing.T) {
	entries := []sandbox.SimLogEntry{
		{Tick: 3, Ship: "escort-2", Category: "target", Key: "change", Value: "pirate-20"},
		{Tick: 9, Ship: "escort-2", Category: "fire", Key: "hit", Value: "pirate-20"},
		{Tick: 12, Ship: "pirate-20", Category: "fire", Key: "disabled", Value: "escort-2"},
		{Tick: 14, Ship: "pirate-21", Category: "cargo", Key: "jettison", Value: "food", NumVal: 12},
		{Tick: 15, Ship: "escort-3", Category: "cargo", Key: "pickup", Value: "food", NumVal: 5},
		{Tick: 20, Ship: "escort-2", Category: "board", Key: "plunder", Value: "pirate-20"},
		{Tick: 30, Ship: "--", Category: "asteroid", Key: "destroyed", NumVal: 2},
	}
	rs := summarize(entries)
	if rs.firstTargetTick != 3 || rs.firstHitTick != 9 || rs.firstDisableTick != 12 {
		t.Fatalf("phase markers wrong: target=%d hit=%d disable=%d", rs.firstTargetTick, rs.firstHitTick, rs.firstDisableTick)
	}
	if rs.firstBoardTick != 20 || rs.firstJumpTick != -1 {
		t.Fatalf("expected board=20 jump=-1, got board=%d jump=%d", rs.firstBoardTick, rs.firstJumpTick)
	}
	if rs.jettisonTons != 12 || rs.pickupTons != 5 || rs.rocksBroken != 1 {
		t.Fatalf("cargo totals wrong: jettison=%d pickup=%d rocks=%d", rs.jettisonTons, rs.pickupTons, rs.rocksBroken)
	}
	if _, ok := rs.affected["pirate-20"]; !ok || len(rs.affected) != 1 {
		t.Fatalf("expected only pirate-20 affected, got %s", joinSet(rs.affected))
	}
}

func TestOutcome_Loss(t *testing.T) {
	verdict, reason := outcome(runStats{playerTotal: 4, playerAlive: 1, hostileTotal: 3, hostileAlive: 3})
	if verdict != "loss" || !strings.Contains(reason, "lost_3_of_4") {
		t.Fatalf("expected loss, got %s (%s)", verdict, reason)
	}
}

func TestOutcome_Cleared(t *testing.T) {
	verdict, _ := outcome(runStats{playerTotal: 3, playerAlive: 3, hostileTotal: 2, hits: 9})
	if verdict != "cleared" {
		t.Fatalf("expected cleared, got %s", verdict)
	}
}

func TestOutcome_StandoffWithoutHits(t *testing.T) {
	verdict, reason := outcome(runStats{playerTotal: 2, playerAlive: 2, hostileTotal: 1, hostileAlive: 1})
	if verdict != "standoff" {
		t.Fatalf("expected standoff, got %s (%s)", verdict, reason)
	}
}

func TestOutcome_NoContact(t *testing.T) {
	verdict, _ := outcome(runStats{playerTotal: 3, playerAlive: 3})
	if verdict != "no_contact" {
		t.Fatalf("expected no_contact, got %s", verdict)
	}
}

func TestFormatCounts_Sorted(t *testing.T) {
	got := formatCounts(map[string]int{"standoff": 1, "cleared": 3})
	if got != "cleared(3),standoff(1)" {
		t.Fatalf("unexpected format: %s", got)
	}
}
