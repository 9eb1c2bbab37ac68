// Package input turns a raw terminal byte stream into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// holdWindow is how long a movement key counts as held after its last byte.
// Terminals only report a held key through auto-repeat.
const holdWindow = 120 * time.Millisecond

// Input is the key state of one frame. Left and Right are held keys; every
// other flag is set only on the frame its key arrived.
type Input struct {
	Quit      bool
	Left      bool
	Right     bool
	Up        bool // w, up arrow
	Down      bool // s, down arrow
	Jump      bool // w, up arrow, space
	Fire      bool // f: toggles auto-fire
	Pause     bool // p, lone esc
	Enter     bool
	Buy       bool // b
	Equip     bool // e
	Unequip   bool // u
	Mute      bool // m
	Backspace bool
	Number    int // 1-9, or -1
	Pressed   []byte
}

// Any reports whether any byte arrived this frame.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

// keyState tracks the last time each held key was seen.
type keyState struct {
	left  time.Time
	right time.Time
}

// Stream delivers input bytes via a channel and tracks held keys.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

func newStream() *Stream {
	return &Stream{ch: make(chan byte, 128)}
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The channel is closed when r fails.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ResetKeyInput forgets held keys, so a key held across a screen change does
// not leak into the next screen.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}

// ReadInput drains all available bytes from the stream without blocking.
// A closed stream reports Quit.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := s.parse(buf, time.Now())
	if s.closed {
		in.Quit = true
	}
	return in
}

// parse applies buf to the key state at now.
func (s *Stream) parse(buf []byte, now time.Time) Input {
	in := Input{Number: -1, Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				in.Up = true
				in.Jump = true
			case 'B':
				in.Down = true
			case 'C':
				s.state.right = now
			case 'D':
				s.state.left = now
			}
			i += 2
			continue
		}
		applyByte(&in, &s.state, b, now)
	}

	in.Left = now.Sub(s.state.left) < holdWindow
	in.Right = now.Sub(s.state.right) < holdWindow
	// Opposite keys: the most recent wins.
	if in.Left && in.Right {
		if s.state.left.After(s.state.right) {
			in.Right = false
		} else {
			in.Left = false
		}
	}
	return in
}

func applyByte(in *Input, state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', 3: // Ctrl+C arrives as a byte in raw mode
		in.Quit = true
	case 'a', 'A':
		state.left = now
	case 'd', 'D':
		state.right = now
	case 'w', 'W':
		in.Up = true
		in.Jump = true
	case 's', 'S':
		in.Down = true
	case ' ':
		in.Jump = true
	case 'f', 'F':
		in.Fire = true
	case 'p', 'P', '\x1b':
		in.Pause = true
	case '\n', '\r':
		in.Enter = true
	case 'b', 'B':
		in.Buy = true
	case 'e', 'E':
		in.Equip = true
	case 'u', 'U':
		in.Unequip = true
	case 'm', 'M':
		in.Mute = true
	case '\b', '\x7f':
		in.Backspace = true
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		in.Number = int(b - '0')
	}
}
