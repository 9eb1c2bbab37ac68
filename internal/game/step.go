package game

import (
	"math"
	"time"

	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/event"
	"github.com/tomz197/soulstaff/internal/object"
	"github.com/tomz197/soulstaff/internal/physics"
	"github.com/tomz197/soulstaff/internal/stat"
)

// Update advances the session by dt, clamped to config.MaxFrameDelta.
// The simulation only runs while playing with no card offer open.
func (s *Session) Update(dt time.Duration, in Input) {
	dt = min(max(dt, 0), config.MaxFrameDelta)
	s.clock += dt
	s.notes.expire(s.clock)

	if in.PauseToggled {
		s.TogglePause()
	}
	if s.state != StatePlaying || s.OfferOpen() {
		return
	}
	s.step(dt, in)
}

// step runs one frame of the simulation.
func (s *Session) step(dt time.Duration, in Input) {
	s.elapsed += dt
	now := s.elapsed
	bounds := s.layout.Bounds()
	platforms := s.layout.Platforms()

	s.player.Update(object.PlayerContext{
		Delta:     dt,
		Now:       now,
		Input:     in,
		Bounds:    bounds,
		Platforms: platforms,
		Enemies:   s.spawner.Enemies(),
		Rand:      s.rng,
	})

	s.spawner.Update(object.SpawnerContext{
		Delta:   dt,
		Elapsed: now,
		Target:  s.player.Position(),
		Bounds:  bounds,
		Height:  s.height,
		Rand:    s.rng,
		Logger:  s.logger,
	})

	s.resolveContacts(now, s.spawner.Enemies())
	if s.state != StatePlaying {
		return
	}

	s.updateOrbs(dt, now, platforms, bounds)
	s.particles.Update(dt)
}

// resolveContacts applies melee attrition and enemy projectiles to the player.
func (s *Session) resolveContacts(now time.Duration, enemies []*object.Enemy) {
	p := s.player
	thorns := p.Stats.Get(stat.Thorns)

	for _, e := range enemies {
		if p.Dead() {
			return
		}
		if !e.Alive() || !physics.CirclesOverlap(p.X, p.Y, p.Radius, e.X, e.Y, e.Radius) {
			continue
		}
		p.TakeDamage(e.Damage, now)
		if p.Dead() {
			return
		}

		dmg := e.MaxHealth * config.EnemyContactRatio
		if thorns > 0 {
			dmg += thorns * e.Damage
		}
		if e.TakeDamage(dmg, now) {
			s.bus.Emit(e.KilledEvent(now, false))
		}
	}

	object.Collide(s.spawner.Projectiles(), []*object.Player{p}, func(pr *object.Projectile, _ *object.Player) {
		p.TakeDamage(pr.Damage, now)
	})
}

// updateOrbs moves soul orbs, collects the ones touching the player and
// drops expired ones.
func (s *Session) updateOrbs(dt, now time.Duration, platforms []physics.Rect, bounds physics.Rect) {
	p := s.player
	pickup := p.Stats.Get(stat.PickupRange)

	kept := s.orbs[:0]
	for _, o := range s.orbs {
		o.Update(dt, p.Position(), pickup, platforms, bounds)
		if o.Touches(p.X, p.Y, p.Radius) {
			s.collectOrb(o)
			continue
		}
		if o.Expired(now) {
			continue
		}
		kept = append(kept, o)
	}
	clear(s.orbs[len(kept):])
	s.orbs = kept
}

func (s *Session) collectOrb(o *object.SoulOrb) {
	s.runOrbs += o.Value
	s.particles.Burst(s.rng, object.ParticleSoul, o.X, o.Y, 4, 60, 0.4)
	s.bus.Emit(event.Cue{Name: event.CueSoulOrb})
}

// onEnemyKilled and onLevelUp ignore events arriving after the run ended,
// so the recorded run stays final.
func (s *Session) onEnemyKilled(e event.EnemyKilled) {
	if s.state != StatePlaying || s.player == nil {
		return
	}
	s.kills++
	s.spawner.RecordKill()
	s.player.GainExp(int(math.Floor(float64(e.Exp) * s.player.Stats.Get(stat.ExpGain))))

	if value := int(math.Round(s.player.Stats.Get(stat.SoulOrbGain))); value > 0 {
		for range e.Orbs {
			s.orbs = append(s.orbs, object.NewSoulOrb(s.rng, e.X, e.Y, value, e.At))
		}
	}

	s.particles.Burst(s.rng, object.ParticleDebris, e.X, e.Y, 10, 140, 0.8)
	if e.Crit {
		s.particles.Burst(s.rng, object.ParticleSpark, e.X, e.Y, 6, 220, 0.6)
	}
	s.bus.Emit(event.Cue{Name: event.CueEnemyDeath})
}

func (s *Session) onLevelUp(e event.LevelUp) {
	if s.state != StatePlaying {
		return
	}
	s.pending++
	if !s.OfferOpen() {
		s.openOffer()
	}
	s.bus.Emit(event.Cue{Name: event.CueLevelUp})
	s.logger.Debug("level up", "level", e.Level, "pending", s.pending)
}

func (s *Session) onPlayerDamaged(e event.PlayerDamaged) {
	s.particles.Burst(s.rng, object.ParticleBlood, e.X, e.Y, 6, 100, 0.5)
	s.bus.Emit(event.Cue{Name: event.CuePlayerHurt})
}

func (s *Session) onPlayerDied(e event.PlayerDied) {
	if s.state == StateGameOver || s.player == nil {
		return
	}
	s.state = StateGameOver
	s.offer = nil
	s.pending = 0
	s.bus.Emit(event.Cue{Name: event.CueGameOver})
	s.finishRun(e.At)
}
