package object

import (
	"math"
	"testing"
	"time"

	"github.com/tomz197/soulstaff/internal/physics"
)

type dummy struct {
	pos    physics.Vec2
	radius float64
	dead   bool
	hits   int
}

func (d *dummy) Position() physics.Vec2 { return d.pos }
func (d *dummy) HitRadius() float64     { return d.radius }
func (d *dummy) Hittable() bool         { return !d.dead }

func settled(t *testing.T, projectiles ...*Projectile) *ProjectileSet {
	t.Helper()
	s := NewProjectileSet()
	for _, p := range projectiles {
		s.Add(p)
	}
	s.Update(0, 0, stage)
	return s
}

func TestCollidePierce(t *testing.T) {
	tests := []struct {
		name     string
		pierce   int
		wantHits int
	}{
		{"single hit", 0, 1},
		{"pierce one", 1, 2},
		{"pierce all", 5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProjectile(TeamPlayer, 100, 100, physics.Vec2{X: 1}, 100, 4, 10, 0, time.Second)
			p.Pierce = tt.pierce
			s := settled(t, p)

			targets := []*dummy{
				{pos: physics.Vec2{X: 95, Y: 100}, radius: 10},
				{pos: physics.Vec2{X: 100, Y: 100}, radius: 10},
				{pos: physics.Vec2{X: 105, Y: 100}, radius: 10},
			}
			got := Collide(s, targets, func(_ *Projectile, d *dummy) { d.hits++ })
			if got != tt.wantHits {
				t.Fatalf("hits = %d, want %d", got, tt.wantHits)
			}
			for _, d := range targets {
				if d.hits > 1 {
					t.Fatal("a target was hit twice by one projectile")
				}
			}
			if destroyed := tt.pierce < 3; p.IsDestroyed() != destroyed {
				t.Fatalf("destroyed = %v, want %v", p.IsDestroyed(), destroyed)
			}
		})
	}
}

func TestCollideNeverRepeatsTarget(t *testing.T) {
	p := NewProjectile(TeamPlayer, 100, 100, physics.Vec2{X: 1}, 100, 4, 10, 0, time.Second)
	p.Pierce = 5
	s := settled(t, p)
	target := []*dummy{{pos: physics.Vec2{X: 100, Y: 100}, radius: 10}}

	Collide(s, target, func(*Projectile, *dummy) {})
	if n := Collide(s, target, func(*Projectile, *dummy) {}); n != 0 {
		t.Fatalf("second pass hit %d times", n)
	}
}

func TestCollideSkipsUnhittable(t *testing.T) {
	s := settled(t, NewProjectile(TeamEnemy, 100, 100, physics.Vec2{X: 1}, 100, 4, 10, 0, time.Second))
	target := []*dummy{{pos: physics.Vec2{X: 100, Y: 100}, radius: 10, dead: true}}
	if n := Collide(s, target, func(*Projectile, *dummy) {}); n != 0 {
		t.Fatalf("hit an unhittable target %d times", n)
	}
}

func TestProjectileSetUpdate(t *testing.T) {
	t.Run("moves", func(t *testing.T) {
		p := NewProjectile(TeamPlayer, 100, 100, physics.Vec2{X: 3, Y: 4}, 50, 4, 1, 0, time.Second)
		s := settled(t, p)
		s.Update(100*time.Millisecond, 100*time.Millisecond, stage)
		if math.Abs(p.X-103) > 1e-9 || math.Abs(p.Y-104) > 1e-9 {
			t.Fatalf("position = (%v, %v), want (103, 104)", p.X, p.Y)
		}
	})

	t.Run("expires", func(t *testing.T) {
		s := settled(t, NewProjectile(TeamPlayer, 100, 100, physics.Vec2{X: 1}, 10, 4, 1, 0, 100*time.Millisecond))
		s.Update(frame, 99*time.Millisecond, stage)
		if s.Len() != 1 {
			t.Fatal("dropped before its lifetime")
		}
		s.Update(frame, 100*time.Millisecond, stage)
		if s.Len() != 0 {
			t.Fatal("kept after its lifetime")
		}
	})

	t.Run("leaves the stage", func(t *testing.T) {
		s := settled(t, NewProjectile(TeamPlayer, 950, 100, physics.Vec2{X: 1}, 600, 4, 1, 0, 10*time.Second))
		s.Update(100*time.Millisecond, 100*time.Millisecond, stage)
		if s.Len() != 0 {
			t.Fatal("kept a projectile outside the stage")
		}
	})

	t.Run("destroyed", func(t *testing.T) {
		p := NewProjectile(TeamPlayer, 100, 100, physics.Vec2{X: 1}, 10, 4, 1, 0, time.Second)
		s := settled(t, p)
		p.MarkDestroyed()
		s.Update(frame, frame, stage)
		if s.Len() != 0 {
			t.Fatal("kept a destroyed projectile")
		}
	})
}

func TestParseEnemyKinds(t *testing.T) {
	kinds := DefaultEnemyKinds()
	if len(kinds) != 4 {
		t.Fatalf("built-in kinds = %d, want 4", len(kinds))
	}
	if kinds[KindSniper].AttackRange <= kinds[KindBasic].AttackRange {
		t.Fatal("snipers should outrange basic enemies")
	}

	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "kinds: [oops"},
		{"missing kinds", "kinds:\n  - {name: basic, health: 1, speed: 1, radius: 1, attackIntervalMs: 1}\n"},
		{"negative health", "kinds:\n  - {name: basic, health: -1, speed: 1, radius: 1, attackIntervalMs: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEnemyKinds([]byte(tt.doc)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSoulOrb(t *testing.T) {
	t.Run("rests on the floor", func(t *testing.T) {
		o := NewSoulOrb(constRand(0.5), 200, 400, 1, 0)
		for range 300 {
			o.Update(frame, physics.Vec2{X: 900, Y: 100}, 50, nil, stage)
		}
		if o.Y != stage.Bottom()-5 {
			t.Fatalf("orb y = %v, want resting on the floor", o.Y)
		}
	})

	t.Run("homes in on the player", func(t *testing.T) {
		o := NewSoulOrb(constRand(0.5), 200, 400, 1, 0)
		target := physics.Vec2{X: 260, Y: 400}
		before := physics.Distance(o.X, o.Y, target.X, target.Y)
		o.Update(frame, target, 90, nil, stage)
		if after := physics.Distance(o.X, o.Y, target.X, target.Y); after >= before {
			t.Fatalf("distance %v -> %v, want closer", before, after)
		}
		if !o.Touches(target.X, target.Y, 60) {
			t.Fatal("orb should touch a large circle around the target")
		}
	})

	t.Run("expires", func(t *testing.T) {
		o := NewSoulOrb(constRand(0.5), 0, 0, 1, time.Second)
		if o.Expired(15*time.Second) || !o.Expired(16*time.Second) {
			t.Fatal("orb lifetime should be 15 seconds")
		}
	})
}

func TestParticles(t *testing.T) {
	var ps Particles
	ps.Burst(constRand(0.5), ParticleSpark, 10, 10, 5, 100, 0.2)
	if len(ps.All()) != 5 {
		t.Fatalf("particles = %d, want 5", len(ps.All()))
	}
	for range 20 {
		ps.Update(frame)
	}
	if len(ps.All()) != 0 {
		t.Fatalf("particles = %d after their lifetime", len(ps.All()))
	}
}
