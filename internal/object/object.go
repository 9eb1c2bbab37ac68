// Package object holds the simulated actors of a session: the player, enemies
// and their spawner, projectiles, soul orbs and particles.
//
// Objects never draw themselves. Renderers read their exported state through
// the session snapshot.
package object

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/soulstaff/internal/event"
	"github.com/tomz197/soulstaff/internal/physics"
)

// Team identifies who fired a projectile.
type Team int

const (
	TeamPlayer Team = iota
	TeamEnemy
)

// Input is the normalized control state sampled once per update.
type Input struct {
	MoveLeft      bool
	MoveRight     bool
	JumpRequested bool         // Edge-triggered: true only on the frame the jump key went down
	Aim           physics.Vec2 // World position the player shoots at
	Firing        bool
	PauseToggled  bool // Consumed by the session, ignored by actors
}

// Body is the capability set shared by every simulated actor.
// Invariant: 0 <= Health <= MaxHealth.
type Body struct {
	X, Y      float64 // Center position
	VX, VY    float64 // Velocity in units per second
	Radius    float64
	Health    float64
	MaxHealth float64
}

// Position returns the body center.
func (b *Body) Position() physics.Vec2 {
	return physics.Vec2{X: b.X, Y: b.Y}
}

// HitRadius returns the collision radius.
func (b *Body) HitRadius() float64 {
	return b.Radius
}

// Heal restores health without exceeding MaxHealth.
func (b *Body) Heal(amount float64) {
	if amount <= 0 {
		return
	}
	b.Health = min(b.MaxHealth, b.Health+amount)
}

// hurt removes health without dropping below zero.
func (b *Body) hurt(amount float64) {
	b.Health = max(0, b.Health-amount)
}

// Target is anything a projectile can hit.
type Target interface {
	Position() physics.Vec2
	HitRadius() float64
	Hittable() bool
}

// PlayerContext provides everything the player needs during update.
type PlayerContext struct {
	Delta     time.Duration
	Now       time.Duration // Session clock
	Input     Input
	Bounds    physics.Rect
	Platforms []physics.Rect
	Enemies   []*Enemy
	Rand      physics.Rand
}

// EnemyContext provides everything an enemy needs during update.
type EnemyContext struct {
	Delta  time.Duration
	Now    time.Duration
	Target physics.Vec2 // Player position
	Bounds physics.Rect // Playable area, ending at the ground
	Height float64      // Full stage height, 0 means Bounds.Bottom()
	Rand   physics.Rand
	Fire   func(p *Projectile) // Hands a fired projectile to its owner set
}

// SpawnerContext provides everything the spawner needs during update.
type SpawnerContext struct {
	Delta   time.Duration
	Elapsed time.Duration // Session clock, drives difficulty
	Target  physics.Vec2
	Bounds  physics.Rect
	Height  float64 // Full stage height, see EnemyContext
	Rand    physics.Rand
	Logger  *log.Logger
}

// emitter returns e or a sink that drops events.
func emitter(e event.Emitter) event.Emitter {
	if e == nil {
		return event.Discard{}
	}
	return e
}

// landing finds the surface a falling circle settles on this step.
// Platforms are one-way: only a bottom edge crossing a platform top from above
// counts. The stage floor always catches.
func landing(platforms []physics.Rect, bounds physics.Rect, x, halfWidth, prevBottom, newBottom float64) (top float64, ok bool) {
	top = bounds.Bottom()
	if newBottom >= top {
		ok = true
	}
	for _, p := range platforms {
		if x+halfWidth < p.Left() || x-halfWidth > p.Right() {
			continue
		}
		if prevBottom <= p.Top()+0.01 && newBottom >= p.Top() && p.Top() < top {
			top = p.Top()
			ok = true
		}
	}
	return top, ok
}
