package object

import (
	"math"
	"time"

	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/event"
	"github.com/tomz197/soulstaff/internal/physics"
)

// EnemyState is the phase of an enemy's lifecycle.
type EnemyState int

const (
	EnemyDescending EnemyState = iota // Dropping in from above the stage
	EnemyFollowing                    // Chasing the player, attacking in range
	EnemyDying                        // Frozen, playing its death window
	EnemyRemoved                      // Ready to be dropped by the spawner
)

func (s EnemyState) String() string {
	switch s {
	case EnemyDescending:
		return "descending"
	case EnemyFollowing:
		return "following"
	case EnemyDying:
		return "dying"
	case EnemyRemoved:
		return "removed"
	}
	return "unknown"
}

// Enemy is a hostile actor owned by the Spawner.
// Its stats are scaled once at creation and fixed afterwards.
type Enemy struct {
	Body
	ID     int
	Kind   EnemyKind
	Damage float64
	Speed  float64
	Exp    int
	State  EnemyState

	diedAt     time.Duration
	lastAttack time.Duration
	jitter     float64
	nextJitter time.Duration
	slowUntil  time.Duration
	slowFactor float64
}

// NewEnemy creates an enemy of kind at (x, y) scaled by a difficulty multiplier.
// Speed uses a softened factor so late tiers stay dodgeable.
func NewEnemy(id int, kind EnemyKind, x, y, multiplier float64, now time.Duration) *Enemy {
	hp := kind.Health * multiplier
	return &Enemy{
		Body: Body{
			X:         x,
			Y:         y,
			Radius:    kind.Radius,
			Health:    hp,
			MaxHealth: hp,
		},
		ID:         id,
		Kind:       kind,
		Damage:     kind.Damage * multiplier,
		Speed:      kind.Speed * (1 + (multiplier-1)*config.EnemySpeedSoftening),
		Exp:        int(math.Floor(float64(kind.Exp) * multiplier)),
		State:      EnemyDescending,
		lastAttack: now,
		slowFactor: 1,
	}
}

// Alive reports whether the enemy can still act and be hit.
func (e *Enemy) Alive() bool {
	return e.State == EnemyDescending || e.State == EnemyFollowing
}

// Hittable implements Target.
func (e *Enemy) Hittable() bool {
	return e.Alive()
}

// DyingProgress returns how far the death window has run, in [0, 1].
func (e *Enemy) DyingProgress(now time.Duration) float64 {
	if e.State != EnemyDying {
		return 0
	}
	return physics.Clamp(float64(now-e.diedAt)/float64(config.EnemyDyingTime), 0, 1)
}

// Slowed reports whether a slow is active at now.
func (e *Enemy) Slowed(now time.Duration) bool {
	return now < e.slowUntil
}

// Slow reduces movement speed by fraction until now+duration.
// A stronger slow replaces a weaker one.
func (e *Enemy) Slow(fraction float64, now, duration time.Duration) {
	if fraction <= 0 || !e.Alive() {
		return
	}
	factor := 1 - physics.Clamp(fraction, 0, 0.9)
	if !e.Slowed(now) || factor < e.slowFactor {
		e.slowFactor = factor
	}
	e.slowUntil = now + duration
}

// TakeDamage applies damage and returns true if it killed the enemy.
// Dying or removed enemies ignore damage.
func (e *Enemy) TakeDamage(amount float64, now time.Duration) bool {
	if !e.Alive() || amount <= 0 {
		return false
	}
	e.hurt(amount)
	if e.Health > 0 {
		return false
	}
	e.State = EnemyDying
	e.diedAt = now
	e.VX, e.VY = 0, 0
	return true
}

// KilledEvent describes this enemy's death for the session's dispatch table.
func (e *Enemy) KilledEvent(now time.Duration, crit bool) event.EnemyKilled {
	return event.EnemyKilled{
		X:         e.X,
		Y:         e.Y,
		EnemyKind: e.Kind.Name,
		Exp:       e.Exp,
		Orbs:      e.Kind.Orbs,
		Crit:      crit,
		At:        now,
	}
}

// Update runs one step of the enemy state machine.
func (e *Enemy) Update(ctx EnemyContext) {
	dt := ctx.Delta.Seconds()
	height := ctx.Height
	if height <= 0 {
		height = ctx.Bounds.Bottom()
	}
	followLine := height * config.EnemyFollowLine

	switch e.State {
	case EnemyDescending:
		e.VX = 0
		e.VY = e.Speed * config.EnemyDescendFactor
		e.Y += e.VY * dt
		if e.Y >= followLine {
			e.Y = followLine
			e.VY = 0
			e.State = EnemyFollowing
		}

	case EnemyFollowing:
		e.follow(ctx, dt, followLine)
		e.attack(ctx)

	case EnemyDying:
		if ctx.Now-e.diedAt >= config.EnemyDyingTime {
			e.State = EnemyRemoved
		}
	}
}

// follow applies the damped pursuit law: the enemy runs faster the further it
// is, capped at twice its speed, with a periodic horizontal jitter.
func (e *Enemy) follow(ctx EnemyContext, dt, followLine float64) {
	if ctx.Now >= e.nextJitter {
		span := e.Speed * config.EnemyJitterRatio
		if ctx.Rand != nil {
			e.jitter = physics.RandomRange(ctx.Rand, -span, span)
		}
		e.nextJitter = ctx.Now + config.EnemyJitterPeriod
	}

	toTarget := ctx.Target.Sub(e.Position())
	dist := toTarget.Len()
	dir := toTarget.Normalize()
	pace := e.Speed * math.Min(config.EnemyPursuitMax, dist/config.EnemyPursuitScale)

	slow := 1.0
	if e.Slowed(ctx.Now) {
		slow = e.slowFactor
	}

	e.VX = (dir.X*pace + e.jitter) * slow
	e.VY = dir.Y * pace * slow
	e.X += e.VX * dt
	e.Y += e.VY * dt

	e.X = physics.Clamp(e.X, ctx.Bounds.Left()+e.Radius, ctx.Bounds.Right()-e.Radius)
	e.Y = physics.Clamp(e.Y, followLine, max(followLine, ctx.Bounds.Bottom()-e.Radius))
}

// attack fires one aimed projectile when the target is in range and the
// cadence allows it. Runs independently of movement.
func (e *Enemy) attack(ctx EnemyContext) {
	if ctx.Fire == nil {
		return
	}
	if physics.Distance(e.X, e.Y, ctx.Target.X, ctx.Target.Y) > e.Kind.AttackRange {
		return
	}
	if ctx.Now-e.lastAttack < e.Kind.AttackInterval() {
		return
	}
	e.lastAttack = ctx.Now

	dir := ctx.Target.Sub(e.Position())
	if dir == (physics.Vec2{}) {
		dir = physics.Vec2{Y: 1}
	}
	ctx.Fire(NewProjectile(TeamEnemy, e.X, e.Y, dir, e.Kind.ProjectileSpeed,
		config.EnemyProjectileR, e.Damage, ctx.Now, config.EnemyProjectileTTL))
}
