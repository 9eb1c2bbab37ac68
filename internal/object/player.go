package object

import (
	"math"
	"time"

	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/event"
	"github.com/tomz197/soulstaff/internal/physics"
	"github.com/tomz197/soulstaff/internal/stat"
)

// BaseStats returns the modifier bag every run starts from.
func BaseStats() *stat.Bag {
	return stat.NewBag(map[stat.Key]float64{
		stat.MaxHealth:          100,
		stat.Damage:             10,
		stat.Speed:              220,
		stat.AttackSpeed:        2,
		stat.CritChance:         0.05,
		stat.CritMultiplier:     2,
		stat.Defense:            0,
		stat.MaxJumps:           1,
		stat.JumpForce:          560,
		stat.ProjectileSpeed:    600,
		stat.ProjectileSize:     4,
		stat.ProjectileLifetime: 1500,
		stat.PickupRange:        90,
		stat.ExpGain:            1,
		stat.SoulOrbGain:        1,
	})
}

// MitigatedDamage applies the diminishing-returns defense curve.
// The result is never below 1.
func MitigatedDamage(amount, defense float64) int {
	defense = max(0, defense)
	return max(1, int(math.Floor(amount*100/(defense+100))))
}

// Player is the wizard controlled by the input source.
type Player struct {
	Body
	Stats          *stat.Bag
	Facing         float64 // +1 right, -1 left
	OnGround       bool
	JumpsAvailable int
	Level          int
	Exp            int
	ExpToNext      int
	GrowthRate     float64
	Projectiles    *ProjectileSet

	// Run statistics
	DamageTaken      int
	Jumps            int
	ProjectilesFired int

	events            event.Emitter
	lastShot          time.Duration
	hasShot           bool
	invulnerableUntil time.Duration
	barrierCharged    bool
	barrierReadyAt    time.Duration
	lastNova          time.Duration
	orbitAngle        float64
	orbitalHits       map[*Enemy]time.Duration
	revivesUsed       int
	dead              bool
}

// NewPlayer creates a player standing at (x, y) with the given stats.
// Events are delivered to events; nil drops them.
func NewPlayer(x, y float64, stats *stat.Bag, events event.Emitter) *Player {
	if stats == nil {
		stats = BaseStats()
	}
	maxHP := stats.Get(stat.MaxHealth)
	return &Player{
		Body: Body{
			X:         x,
			Y:         y,
			Radius:    config.PlayerRadius,
			Health:    maxHP,
			MaxHealth: maxHP,
		},
		Stats:          stats,
		Facing:         1,
		JumpsAvailable: stats.Int(stat.MaxJumps),
		Level:          1,
		ExpToNext:      config.InitialExpToNext,
		GrowthRate:     config.ExpGrowthRate,
		Projectiles:    NewProjectileSet(),
		events:         emitter(events),
		orbitalHits:    make(map[*Enemy]time.Duration),
	}
}

// Hittable implements Target.
func (p *Player) Hittable() bool {
	return !p.dead
}

// Dead reports whether the player ran out of health and revives.
func (p *Player) Dead() bool {
	return p.dead
}

// Invulnerable reports whether damage is ignored at now.
func (p *Player) Invulnerable(now time.Duration) bool {
	return now < p.invulnerableUntil
}

// InvulnerableRemaining returns how long invulnerability lasts after now.
func (p *Player) InvulnerableRemaining(now time.Duration) time.Duration {
	return max(0, p.invulnerableUntil-now)
}

// BarrierCharged reports whether the next hit will be absorbed.
func (p *Player) BarrierCharged() bool {
	return p.barrierCharged
}

// RevivesLeft returns how many revives the current stats still grant.
func (p *Player) RevivesLeft() int {
	return max(0, p.Stats.Int(stat.Revives)-p.revivesUsed)
}

// ApplyStats installs a recomposed modifier bag. A higher max health heals by
// the difference; health and jumps are clamped to the new maxima.
func (p *Player) ApplyStats(stats *stat.Bag) {
	newMax := stats.Get(stat.MaxHealth)
	if gain := newMax - p.MaxHealth; gain > 0 {
		p.MaxHealth = newMax
		p.Heal(gain)
	}
	p.MaxHealth = newMax
	p.Health = min(p.Health, p.MaxHealth)
	p.JumpsAvailable = min(p.JumpsAvailable, stats.Int(stat.MaxJumps))
	if stats.Get(stat.BarrierInterval) <= 0 {
		p.barrierCharged = false
	}
	p.Stats = stats
}

// Update runs one controller step: movement, jumping, landing, abilities,
// shooting and the owned projectiles.
func (p *Player) Update(ctx PlayerContext) {
	if p.dead {
		return
	}
	dt := ctx.Delta.Seconds()

	p.move(ctx, dt)
	p.abilities(ctx, dt)

	if ctx.Input.Firing {
		p.shoot(ctx)
	}

	p.Projectiles.Update(ctx.Delta, ctx.Now, ctx.Bounds)
	Collide(p.Projectiles, ctx.Enemies, func(pr *Projectile, e *Enemy) {
		p.hitEnemy(ctx.Now, e, pr.Damage, pr.Crit)
	})
}

// move integrates horizontal input and semi-implicit Euler vertical motion.
func (p *Player) move(ctx PlayerContext, dt float64) {
	speed := p.Stats.Get(stat.Speed)
	p.VX = 0
	if ctx.Input.MoveLeft {
		p.VX -= speed
	}
	if ctx.Input.MoveRight {
		p.VX += speed
	}
	if p.VX != 0 {
		p.Facing = math.Copysign(1, p.VX)
	}
	p.X = physics.Clamp(p.X+p.VX*dt, ctx.Bounds.Left()+p.Radius, ctx.Bounds.Right()-p.Radius)

	jumped := false
	if ctx.Input.JumpRequested && p.JumpsAvailable > 0 {
		p.VY = -p.Stats.Get(stat.JumpForce)
		p.JumpsAvailable--
		p.OnGround = false
		p.Jumps++
		jumped = true
		p.events.Emit(event.Cue{Name: event.CueJump})
	}

	wasOnGround := p.OnGround
	prevBottom := p.Y + p.Radius
	p.VY += config.Gravity * dt
	p.Y += p.VY * dt

	p.OnGround = false
	if p.VY >= 0 {
		if top, ok := landing(ctx.Platforms, ctx.Bounds, p.X, p.Radius*0.5, prevBottom, p.Y+p.Radius); ok {
			p.Y = top - p.Radius
			p.VY = 0
			p.OnGround = true
			p.JumpsAvailable = p.Stats.Int(stat.MaxJumps)
		}
	}

	// Walking off a ledge spends the ground jump.
	if wasOnGround && !p.OnGround && !jumped {
		p.JumpsAvailable = min(p.JumpsAvailable, p.Stats.Int(stat.MaxJumps)-1)
	}
}

// abilities runs regeneration, the barrier recharge, novas and orbitals.
func (p *Player) abilities(ctx PlayerContext, dt float64) {
	if regen := p.Stats.Get(stat.Regeneration); regen > 0 {
		p.Heal(regen * dt)
	}

	if interval := p.Stats.Get(stat.BarrierInterval); interval > 0 && !p.barrierCharged && ctx.Now >= p.barrierReadyAt {
		p.barrierCharged = true
	}

	if interval := p.Stats.Get(stat.NovaInterval); interval > 0 {
		every := time.Duration(interval * float64(time.Second))
		if ctx.Now-p.lastNova >= every {
			p.lastNova = ctx.Now
			p.fireRing(ctx.Now, config.NovaProjectiles)
		}
	}

	if n := p.Stats.Int(stat.Orbitals); n > 0 {
		p.orbitAngle = math.Mod(p.orbitAngle+config.OrbitalSpeed*dt, 2*math.Pi)
		p.orbitalStrikes(ctx)
	}
}

// OrbitalPositions returns the current positions of the orbiting wisps.
func (p *Player) OrbitalPositions() []physics.Vec2 {
	n := p.Stats.Int(stat.Orbitals)
	if n <= 0 {
		return nil
	}
	out := make([]physics.Vec2, n)
	step := 2 * math.Pi / float64(n)
	for i := range out {
		off := physics.FromAngle(p.orbitAngle + step*float64(i)).Scale(config.OrbitalRadius)
		out[i] = p.Position().Add(off)
	}
	return out
}

func (p *Player) orbitalStrikes(ctx PlayerContext) {
	damage := p.Stats.Get(stat.Damage) * 0.5
	for e, at := range p.orbitalHits {
		if !e.Alive() || ctx.Now-at >= config.OrbitalHitCooldown {
			delete(p.orbitalHits, e)
		}
	}
	for _, pos := range p.OrbitalPositions() {
		for _, e := range ctx.Enemies {
			if !e.Alive() {
				continue
			}
			if _, cooling := p.orbitalHits[e]; cooling {
				continue
			}
			if physics.CirclesOverlap(pos.X, pos.Y, config.OrbitalSize, e.X, e.Y, e.Radius) {
				p.orbitalHits[e] = ctx.Now
				p.hitEnemy(ctx.Now, e, damage, false)
			}
		}
	}
}

// shoot fires one volley when the cadence allows it.
func (p *Player) shoot(ctx PlayerContext) {
	attackSpeed := p.Stats.Get(stat.AttackSpeed)
	if attackSpeed <= 0 {
		return
	}
	cadence := time.Duration(float64(time.Second) / attackSpeed)
	if p.hasShot && ctx.Now-p.lastShot < cadence {
		return
	}
	p.lastShot = ctx.Now
	p.hasShot = true

	aim := ctx.Input.Aim.Sub(p.Position())
	if aim.Len() < 1e-6 {
		aim = physics.Vec2{X: p.Facing}
	}

	damage := p.Stats.Get(stat.Damage)
	crit := false
	if ctx.Rand != nil && ctx.Rand.Float64() < p.Stats.Get(stat.CritChance) {
		damage *= p.Stats.Get(stat.CritMultiplier)
		crit = true
		p.events.Emit(event.Cue{Name: event.CueCritical})
	}

	extra := p.Stats.Int(stat.Multishot)
	spread := config.MultishotSpreadDeg * math.Pi / 180
	for i := 0; i <= extra; i++ {
		// Fan alternates sides: 0, +1, -1, +2, -2, ...
		offset := float64((i+1)/2) * spread
		if i%2 == 0 {
			offset = -offset
		}
		pr := p.newProjectile(aim.Rotate(offset), damage, ctx.Now)
		pr.Crit = crit
		p.Projectiles.Add(pr)
	}
	p.ProjectilesFired += extra + 1
}

func (p *Player) fireRing(now time.Duration, count int) {
	damage := p.Stats.Get(stat.Damage)
	for i := range count {
		dir := physics.FromAngle(2 * math.Pi * float64(i) / float64(count))
		p.Projectiles.Add(p.newProjectile(dir, damage, now))
	}
	p.ProjectilesFired += count
}

func (p *Player) newProjectile(dir physics.Vec2, damage float64, now time.Duration) *Projectile {
	lifetime := time.Duration(p.Stats.Get(stat.ProjectileLifetime) * float64(time.Millisecond))
	pr := NewProjectile(TeamPlayer, p.X, p.Y, dir,
		p.Stats.Get(stat.ProjectileSpeed), p.Stats.Get(stat.ProjectileSize), damage, now, lifetime)
	pr.Pierce = p.Stats.Int(stat.Piercing)
	return pr
}

// hitEnemy applies one hit from the player and reports a kill.
func (p *Player) hitEnemy(now time.Duration, e *Enemy, damage float64, crit bool) {
	if e.TakeDamage(damage, now) {
		p.events.Emit(e.KilledEvent(now, crit))
	}
	if ls := p.Stats.Get(stat.LifeSteal); ls > 0 {
		p.Heal(damage * ls)
	}
	if slow := p.Stats.Get(stat.SlowOnHit); slow > 0 {
		e.Slow(slow, now, config.SlowDuration)
	}
}

// TakeDamage applies raw damage through the defense curve and returns the
// amount dealt. It is a no-op while invulnerable; a charged barrier absorbs
// the hit instead.
func (p *Player) TakeDamage(amount float64, now time.Duration) int {
	if p.dead || amount <= 0 || p.Invulnerable(now) {
		return 0
	}

	if p.barrierCharged {
		p.barrierCharged = false
		interval := time.Duration(p.Stats.Get(stat.BarrierInterval) * float64(time.Second))
		p.barrierReadyAt = now + interval
		p.invulnerableUntil = now + config.BarrierInvulnTime
		return 0
	}

	final := MitigatedDamage(amount, p.Stats.Get(stat.Defense))
	p.hurt(float64(final))
	p.invulnerableUntil = now + config.InvulnerableTime
	p.DamageTaken += final
	p.events.Emit(event.PlayerDamaged{Amount: final, Health: p.Health, X: p.X, Y: p.Y})

	if p.Health > 0 {
		return final
	}
	if p.RevivesLeft() > 0 {
		p.revivesUsed++
		p.Health = math.Floor(p.MaxHealth * config.ReviveHealthRatio)
		p.events.Emit(event.Cue{Name: event.CueRevive})
		return final
	}
	p.dead = true
	p.events.Emit(event.PlayerDied{At: now})
	return final
}

// GainExp adds experience and levels up as many times as it covers.
// Every level gained emits its own LevelUp event.
func (p *Player) GainExp(amount int) {
	if amount <= 0 {
		return
	}
	p.Exp += amount
	for p.ExpToNext > 0 && p.Exp >= p.ExpToNext {
		p.Level++
		p.Exp -= p.ExpToNext
		p.ExpToNext = int(math.Floor(float64(p.ExpToNext) * p.GrowthRate))
		p.Heal(math.Floor(p.MaxHealth * config.LevelUpHealRatio))
		p.events.Emit(event.LevelUp{Level: p.Level})
	}
}
