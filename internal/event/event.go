// Package event defines the domain events exchanged inside a game session and
// a synchronous dispatch table that delivers them.
//
// Events are a closed tagged union: every concrete type implements Event and
// reports its Kind. Emit runs every handler registered for the kind before it
// returns, in registration order, so a kill and all its consequences resolve
// in the same frame.
package event

import "time"

// Kind tags an event type.
type Kind int

const (
	KindEnemyKilled Kind = iota
	KindLevelUp
	KindPlayerDamaged
	KindPlayerDied
	KindCue
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindEnemyKilled:
		return "enemyKilled"
	case KindLevelUp:
		return "levelUp"
	case KindPlayerDamaged:
		return "playerDamaged"
	case KindPlayerDied:
		return "playerDied"
	case KindCue:
		return "cue"
	}
	return "unknown"
}

// Event is implemented by every domain event.
type Event interface {
	Kind() Kind
}

// EnemyKilled is emitted once when an enemy's health reaches zero.
type EnemyKilled struct {
	X, Y      float64
	EnemyKind string
	Exp       int
	Orbs      int
	Crit      bool
	At        time.Duration
}

// LevelUp is emitted once per level gained.
type LevelUp struct {
	Level int
}

// PlayerDamaged is emitted after damage was applied to the player.
type PlayerDamaged struct {
	Amount int
	Health float64
	X, Y   float64
}

// PlayerDied is emitted once when the player runs out of health.
type PlayerDied struct {
	At time.Duration
}

// Cue names a fire-and-forget audio trigger.
type Cue struct {
	Name string
}

// Audio cue names.
const (
	CueEnemyDeath      = "enemyDeath"
	CueCritical        = "critical"
	CueSoulOrb         = "soulOrb"
	CueLevelUp         = "levelUp"
	CueUpgradeSelected = "upgradeSelected"
	CueJump            = "jump"
	CuePlayerHurt      = "playerHurt"
	CueRevive          = "revive"
	CueGameOver        = "gameOver"
	CuePurchase        = "purchase"
)

func (EnemyKilled) Kind() Kind   { return KindEnemyKilled }
func (LevelUp) Kind() Kind       { return KindLevelUp }
func (PlayerDamaged) Kind() Kind { return KindPlayerDamaged }
func (PlayerDied) Kind() Kind    { return KindPlayerDied }
func (Cue) Kind() Kind           { return KindCue }
