package loop

import (
	"time"

	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/input"
	"github.com/tomz197/soulstaff/internal/progression"
)

// ClientState holds per-connection state that is not part of the session:
// key state, menu cursor, timers.
type ClientState struct {
	Input    input.Input
	Snapshot game.Snapshot // Last published session snapshot
	Running  bool
	AutoFire bool // Toggled with f; the terminal has no mouse button

	shop      []progression.ShopEntry
	shopIndex int

	delta         time.Duration // Frame delta time
	lastInput     time.Time
	isInactive    bool
	wasInactive   bool
	prevGameState game.State
	shuttingDown  bool
	shutdownTimer time.Duration
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running:       true,
		AutoFire:      true,
		lastInput:     time.Now(),
		prevGameState: -1,
	}
}

// selected returns the shop entry under the cursor.
func (s *ClientState) selected() (progression.ShopEntry, bool) {
	if s.shopIndex < 0 || s.shopIndex >= len(s.shop) {
		return progression.ShopEntry{}, false
	}
	return s.shop[s.shopIndex], true
}
