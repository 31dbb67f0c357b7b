package sandbox

import (
	"strings"
	"testing"
)

func TestSimLog_HasEntryAndTail(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "escort-2", "Escort", "jump", "enter", "Home → North", 0)
	sl.Add(2, "pirate-3", "Pirate", "board", "plunder", "escort-2", 4)
	sl.Add(3, "--", "--", "message", "high", "You are being scanned", 0)

	if !sl.HasEntry("board", "plunder", "escort-2") {
		t.Fatal("the plunder entry should match")
	}
	if !sl.HasEntry("jump", "", "") {
		t.Fatal("empty key and value match anything")
	}
	if sl.HasEntry("jump", "enter", "South") {
		t.Fatal("the value must contain the substring")
	}
	if n := len(sl.FilterShip("escort-2")); n != 1 {
		t.Fatalf("escort-2 has one entry of its own, got %d", n)
	}

	tail := sl.Tail(2)
	if strings.Contains(tail, "Home → North") || strings.Count(tail, "\n") != 2 {
		t.Fatalf("tail should hold the last two entries only:\n%s", tail)
	}
	if got := sl.Tail(10); got != sl.Format() {
		t.Fatal("a tail longer than the log is the whole log")
	}
}
