// Package cue builds the synthesized streamers played for game events.
package cue

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/tomz197/soulstaff/internal/event"
)

// cues maps a cue name to the notes it plays, in sequence. Notes sharing a
// step are mixed.
var cues = map[string][][]note{
	event.CueEnemyDeath: {
		{{from: 320, to: 90, wave: WaveSquare, length: 90 * time.Millisecond, gain: 0.25}},
	},
	event.CueCritical: {
		{{from: 1200, to: 1500, wave: WaveSaw, length: 60 * time.Millisecond, gain: 0.2}},
	},
	event.CueSoulOrb: {
		{{from: 987.77, to: 987.77, wave: WaveSine, length: 50 * time.Millisecond, gain: 0.35}},
		{{from: 1318.51, to: 1318.51, wave: WaveSine, length: 80 * time.Millisecond, gain: 0.35}},
	},
	event.CueLevelUp: {
		{{from: 523.25, to: 523.25, wave: WaveSquare, length: 80 * time.Millisecond, gain: 0.2}},
		{{from: 659.25, to: 659.25, wave: WaveSquare, length: 80 * time.Millisecond, gain: 0.2}},
		{
			{from: 783.99, to: 783.99, wave: WaveSquare, length: 160 * time.Millisecond, gain: 0.2},
			{from: 1567.98, to: 1567.98, wave: WaveSine, length: 160 * time.Millisecond, gain: 0.1},
		},
	},
	event.CueUpgradeSelected: {
		{{from: 440, to: 880, wave: WaveSine, length: 120 * time.Millisecond, gain: 0.3}},
	},
	event.CueJump: {
		{{from: 220, to: 440, wave: WaveSine, length: 70 * time.Millisecond, gain: 0.2}},
	},
	event.CuePlayerHurt: {
		{
			{from: 140, to: 80, wave: WaveSaw, length: 150 * time.Millisecond, gain: 0.3},
			{wave: WaveNoise, length: 100 * time.Millisecond, gain: 0.15},
		},
	},
	event.CueRevive: {
		{{from: 220, to: 880, wave: WaveSine, length: 400 * time.Millisecond, gain: 0.3}},
	},
	event.CueGameOver: {
		{{from: 392, to: 392, wave: WaveSquare, length: 200 * time.Millisecond, gain: 0.2}},
		{{from: 311.13, to: 311.13, wave: WaveSquare, length: 200 * time.Millisecond, gain: 0.2}},
		{{from: 261.63, to: 130.81, wave: WaveSquare, length: 500 * time.Millisecond, gain: 0.2}},
	},
	event.CuePurchase: {
		{{from: 1046.5, to: 1046.5, wave: WaveSquare, length: 60 * time.Millisecond, gain: 0.2}},
		{{from: 1567.98, to: 1567.98, wave: WaveSquare, length: 120 * time.Millisecond, gain: 0.2}},
	},
}

// Streamer builds a fresh streamer for the named cue at rate, or nil for unknown cues.
func Streamer(name string, rate beep.SampleRate) beep.Streamer {
	steps, ok := cues[name]
	if !ok {
		return nil
	}
	seq := make([]beep.Streamer, 0, len(steps))
	for _, step := range steps {
		if len(step) == 1 {
			seq = append(seq, step[0].streamer(rate))
			continue
		}
		// A mixed step lasts as long as its longest note.
		longest := time.Duration(0)
		parts := make([]beep.Streamer, len(step))
		for i, n := range step {
			parts[i] = n.streamer(rate)
			longest = max(longest, n.length)
		}
		seq = append(seq, beep.Take(rate.N(longest), beep.Mix(parts...)))
	}
	return beep.Seq(seq...)
}
