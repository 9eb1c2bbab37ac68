// Package audio defines the sink game cues are played through.
//
// The speaker-backed implementation lives in audio/synth so that headless
// frontends do not link an audio driver.
package audio

// Sink receives cue names. Unknown cues are ignored.
type Sink interface {
	Play(cue string)
}

// Nop is a Sink that plays nothing.
type Nop struct{}

func (Nop) Play(string) {}
