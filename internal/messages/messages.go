// Package messages carries player-facing text out of the controller. The
// controller only posts; hosts decide how to show or store what it says.
package messages

import (
	"fmt"
	"strings"
)

// Importance ranks a message for display.
type Importance int

const (
	Info Importance = iota
	Normal
	High
	Highest
)

func (i Importance) String() string {
	switch i {
	case Info:
		return "info"
	case Normal:
		return "normal"
	case High:
		return "high"
	case Highest:
		return "highest"
	}
	return "unknown"
}

// Category tags what part of the controller spoke.
type Category string

const (
	CategoryAutopilot Category = "autopilot"
	CategoryFleet     Category = "fleet"
	CategoryHail      Category = "hail"
	CategoryTarget    Category = "target"
)

// Message is one line of player-facing text.
type Message struct {
	Tick       int
	Category   Category
	Importance Importance
	From       string // speaking ship, empty for system text
	Text       string
}

func (m Message) String() string {
	if m.From != "" {
		return fmt.Sprintf("[T=%05d] %-9s %s: %s", m.Tick, m.Category, m.From, m.Text)
	}
	return fmt.Sprintf("[T=%05d] %-9s %s", m.Tick, m.Category, m.Text)
}

// Sink receives messages.
type Sink interface {
	Post(Message)
}

// Nop drops everything.
type Nop struct{}

func (Nop) Post(Message) {}

// Multi posts to every sink in order.
type Multi []Sink

func (m Multi) Post(msg Message) {
	for _, s := range m {
		if s != nil {
			s.Post(msg)
		}
	}
}

// Func adapts a function to a Sink.
type Func func(Message)

func (f Func) Post(m Message) { f(m) }

// Log is a fixed-capacity ring buffer of the most recent messages.
type Log struct {
	entries []Message
	head    int
	count   int
	total   int
}

// NewLog creates a log holding up to capacity messages.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log{entries: make([]Message, capacity)}
}

// Post appends a message, overwriting the oldest when full.
func (l *Log) Post(m Message) {
	n := len(l.entries)
	l.entries[l.head] = m
	l.head = (l.head + 1) % n
	if l.count < n {
		l.count++
	}
	l.total++
}

// Recent returns retained messages, oldest first.
func (l *Log) Recent() []Message {
	n := len(l.entries)
	out := make([]Message, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.entries[(l.head-l.count+i+n)%n]
	}
	return out
}

// Total counts every message ever posted, including evicted ones.
func (l *Log) Total() int { return l.total }

// Contains reports whether a retained message contains substr.
func (l *Log) Contains(substr string) bool {
	for _, m := range l.Recent() {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

// Format renders retained messages one per line.
func (l *Log) Format() string {
	var sb strings.Builder
	for _, m := range l.Recent() {
		sb.WriteString(m.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
