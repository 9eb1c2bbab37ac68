package game

import (
	"slices"
	"time"

	"github.com/tomz197/soulstaff/internal/object"
	"github.com/tomz197/soulstaff/internal/physics"
	"github.com/tomz197/soulstaff/internal/progression"
	"github.com/tomz197/soulstaff/internal/storage"
)

// PlayerView is the drawable state of the player.
type PlayerView struct {
	X, Y, Radius      float64
	Health, MaxHealth float64
	Facing            float64
	Invulnerable      bool
	Barrier           bool
	Revives           int
	Orbitals          []physics.Vec2
}

// EnemyView is the drawable state of an enemy.
type EnemyView struct {
	X, Y, Radius      float64
	Health, MaxHealth float64
	Kind              string
	Dying             bool
	DyingProgress     float64 // 0 when death starts, 1 when removed
	Slowed            bool
}

// ProjectileView is the drawable state of a projectile.
type ProjectileView struct {
	X, Y, Radius float64
	Owner        object.Team
	Crit         bool
}

// OrbView is the drawable state of a soul orb.
type OrbView struct {
	X, Y  float64
	Value int
}

// ParticleView is the drawable state of a particle.
type ParticleView struct {
	X, Y float64
	Kind object.ParticleKind
	Fade float64
}

// Snapshot is a read-only copy of everything a frontend draws.
// It shares no memory with the session.
type Snapshot struct {
	State  State
	Name   string
	Bounds physics.Rect // The whole stage
	Ground physics.Rect
	// Platforms excludes the ground.
	Platforms []physics.Rect

	Player      *PlayerView // Nil outside a run
	Enemies     []EnemyView
	Projectiles []ProjectileView
	Orbs        []OrbView
	Particles   []ParticleView

	Offer   []progression.Card
	Pending int

	Score     int
	Level     int
	Exp       int
	ExpToNext int
	Kills     int
	Time      time.Duration
	Tier      int
	SoulOrbs  int // Collected this run

	BankedOrbs    int // Profile balance
	Loadout       progression.Loadout
	Settings      progression.Settings
	Notifications []string

	LastRun    *storage.RunSummary
	Ranking    []storage.RunSummary
	NewUnlocks []string
}

// Snapshot copies the drawable state of the session.
func (s *Session) Snapshot() Snapshot {
	profile := s.armory.Profile()
	snap := Snapshot{
		State:         s.state,
		Name:          s.name,
		Bounds:        physics.Rect{W: s.width, H: s.height},
		Ground:        s.layout.Ground,
		Platforms:     s.layout.Platforms(),
		Offer:         slices.Clone(s.offer),
		Pending:       s.pending,
		Score:         s.Score(),
		Kills:         s.kills,
		Time:          s.elapsed,
		Tier:          object.Tier(s.elapsed),
		SoulOrbs:      s.runOrbs,
		BankedOrbs:    profile.SoulOrbs,
		Loadout:       profile.Equipped,
		Settings:      profile.Settings,
		Notifications: s.notes.texts(),
		Ranking:       slices.Clone(s.top),
		NewUnlocks:    slices.Clone(s.newUnlocks),
	}
	if s.lastRun != nil {
		run := *s.lastRun
		snap.LastRun = &run
	}

	if s.player == nil {
		return snap
	}
	now := s.elapsed
	p := s.player
	snap.Level = p.Level
	snap.Exp = p.Exp
	snap.ExpToNext = p.ExpToNext
	snap.Player = &PlayerView{
		X:            p.X,
		Y:            p.Y,
		Radius:       p.Radius,
		Health:       p.Health,
		MaxHealth:    p.MaxHealth,
		Facing:       p.Facing,
		Invulnerable: p.Invulnerable(now),
		Barrier:      p.BarrierCharged(),
		Revives:      p.RevivesLeft(),
		Orbitals:     p.OrbitalPositions(),
	}

	enemies := s.spawner.Enemies()
	snap.Enemies = make([]EnemyView, 0, len(enemies))
	for _, e := range enemies {
		snap.Enemies = append(snap.Enemies, EnemyView{
			X:             e.X,
			Y:             e.Y,
			Radius:        e.Radius,
			Health:        e.Health,
			MaxHealth:     e.MaxHealth,
			Kind:          e.Kind.Name,
			Dying:         !e.Alive(),
			DyingProgress: e.DyingProgress(now),
			Slowed:        e.Slowed(now),
		})
	}

	own, hostile := p.Projectiles.All(), s.spawner.Projectiles().All()
	snap.Projectiles = make([]ProjectileView, 0, len(own)+len(hostile))
	for _, set := range [][]*object.Projectile{own, hostile} {
		for _, pr := range set {
			if pr.IsDestroyed() {
				continue
			}
			snap.Projectiles = append(snap.Projectiles, ProjectileView{
				X:      pr.X,
				Y:      pr.Y,
				Radius: pr.Radius,
				Owner:  pr.Owner,
				Crit:   pr.Crit,
			})
		}
	}

	snap.Orbs = make([]OrbView, len(s.orbs))
	for i, o := range s.orbs {
		snap.Orbs[i] = OrbView{X: o.X, Y: o.Y, Value: o.Value}
	}

	particles := s.particles.All()
	snap.Particles = make([]ParticleView, len(particles))
	for i, pt := range particles {
		snap.Particles[i] = ParticleView{X: pt.X, Y: pt.Y, Kind: pt.Kind, Fade: pt.Fade()}
	}
	return snap
}

// AutoAim returns the point a keyboard-only frontend shoots at: the nearest
// live enemy, or straight ahead when there is none.
func (snap Snapshot) AutoAim() physics.Vec2 {
	p := snap.Player
	if p == nil {
		return physics.Vec2{}
	}
	best, found := physics.Vec2{}, false
	bestDist := 0.0
	for _, e := range snap.Enemies {
		if e.Dying {
			continue
		}
		d := physics.DistanceSquared(p.X, p.Y, e.X, e.Y)
		if !found || d < bestDist {
			best, bestDist, found = physics.Vec2{X: e.X, Y: e.Y}, d, true
		}
	}
	if found {
		return best
	}
	return physics.Vec2{X: p.X + p.Facing*100, Y: p.Y}
}
