// Package synth plays game cues through the system speaker.
package synth

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/tomz197/soulstaff/internal/audio"
	"github.com/tomz197/soulstaff/internal/audio/cue"
)

const sampleRate = beep.SampleRate(44100)

var _ audio.Sink = (*Synth)(nil)

// Synth plays cues through the system speaker.
type Synth struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	enabled     bool
	initialized bool
}

// New creates a synth with a linear volume in [0, 1].
func New(volume float64, enabled bool) *Synth {
	return &Synth{
		mixer:   &beep.Mixer{},
		volume:  volume,
		enabled: enabled,
	}
}

// Init opens the speaker and starts the mixer.
func (s *Synth) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to init speaker: %w", err)
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// SetVolume changes the gain of cues played from now on.
func (s *Synth) SetVolume(volume float64) {
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
}

// SetEnabled mutes or unmutes the synth.
func (s *Synth) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

// Play implements audio.Sink.
func (s *Synth) Play(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || !s.enabled || s.volume <= 0 {
		return
	}
	st := cue.Streamer(name, sampleRate)
	if st == nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(cue.Gain(st, s.volume))
	speaker.Unlock()
}

// Close stops every playing cue.
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}
