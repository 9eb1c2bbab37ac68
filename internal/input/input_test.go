package input

import (
	"bufio"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		bytes string
		check func(in Input) bool
	}{
		{"left", "a", func(in Input) bool { return in.Left && !in.Right }},
		{"right arrow", "\x1b[C", func(in Input) bool { return in.Right && !in.Pause }},
		{"jump space", " ", func(in Input) bool { return in.Jump && !in.Up }},
		{"jump w", "w", func(in Input) bool { return in.Jump && in.Up }},
		{"up arrow", "\x1b[A", func(in Input) bool { return in.Jump && in.Up }},
		{"down arrow", "\x1b[B", func(in Input) bool { return in.Down && !in.Pause }},
		{"lone escape pauses", "\x1b", func(in Input) bool { return in.Pause }},
		{"p pauses", "p", func(in Input) bool { return in.Pause }},
		{"card choice", "3", func(in Input) bool { return in.Number == 3 }},
		{"zero is no card", "0", func(in Input) bool { return in.Number == -1 }},
		{"fire toggle", "f", func(in Input) bool { return in.Fire }},
		{"shop keys", "beu", func(in Input) bool { return in.Buy && in.Equip && in.Unequip }},
		{"enter", "\r", func(in Input) bool { return in.Enter }},
		{"quit", "q", func(in Input) bool { return in.Quit }},
		{"ctrl c", "\x03", func(in Input) bool { return in.Quit }},
		{"nothing", "", func(in Input) bool { return !in.Any() && in.Number == -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStream()
			in := s.parse([]byte(tt.bytes), time.Now())
			if !tt.check(in) {
				t.Fatalf("unexpected input %+v for %q", in, tt.bytes)
			}
		})
	}
}

func TestHoldWindow(t *testing.T) {
	s := newStream()
	start := time.Now()

	s.parse([]byte("d"), start)
	if in := s.parse(nil, start.Add(holdWindow/2)); !in.Right {
		t.Fatal("key should stay held within the window")
	}
	if in := s.parse(nil, start.Add(holdWindow)); in.Right {
		t.Fatal("key should be released after the window")
	}

	// Edge-triggered keys never repeat without a new byte.
	s.parse([]byte(" "), start)
	if in := s.parse(nil, start.Add(time.Millisecond)); in.Jump {
		t.Fatal("jump must be edge-triggered")
	}
}

func TestOppositeKeys(t *testing.T) {
	s := newStream()
	now := time.Now()
	s.parse([]byte("a"), now)
	in := s.parse([]byte("d"), now.Add(time.Millisecond))
	if in.Left || !in.Right {
		t.Fatalf("latest direction should win, got %+v", in)
	}

	ResetKeyInput(s)
	if in := s.parse(nil, now.Add(2*time.Millisecond)); in.Left || in.Right {
		t.Fatal("reset should release held keys")
	}
}

func TestClosedStreamQuits(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("")))
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if ReadInput(s).Quit {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("closed stream should report quit")
}
