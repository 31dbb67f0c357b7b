package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_RingKeepsNewest(t *testing.T) {
	l := NewLog(3)
	for i := 1; i <= 5; i++ {
		l.Post(Message{Tick: i, Text: "m"})
	}
	got := l.Recent()
	require.Len(t, got, 3)
	assert.Equal(t, 3, got[0].Tick)
	assert.Equal(t, 5, got[2].Tick)
	assert.Equal(t, 5, l.Total())
}

func TestLog_Contains(t *testing.T) {
	l := NewLog(8)
	l.Post(Message{Category: CategoryAutopilot, Text: "Disengaging autopilot."})
	assert.True(t, l.Contains("Disengaging"))
	assert.False(t, l.Contains("Engaging autopilot to jump"))
}

func TestMulti_FansOut(t *testing.T) {
	a, b := NewLog(2), NewLog(2)
	var seen []string
	Multi{a, nil, b, Func(func(m Message) { seen = append(seen, m.Text) })}.Post(Message{Text: "hi"})
	assert.Equal(t, 1, a.Total())
	assert.Equal(t, 1, b.Total())
	assert.Equal(t, []string{"hi"}, seen)
}

func TestMessage_StringIncludesSpeaker(t *testing.T) {
	m := Message{Tick: 12, Category: CategoryHail, From: "Raider", Text: "Please, just take my cargo and leave me alone."}
	assert.Contains(t, m.String(), "Raider: Please")
}
