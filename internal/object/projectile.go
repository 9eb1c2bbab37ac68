package object

import (
	"time"

	"github.com/tomz197/soulstaff/internal/physics"
)

// boundsMargin is how far outside the stage a projectile may travel before removal.
const boundsMargin = 40.0

// Projectile is a short-lived ballistic entity fired by the player or an enemy.
type Projectile struct {
	X, Y      float64 // Position
	VX, VY    float64 // Velocity
	Radius    float64
	Damage    float64
	Crit      bool
	Owner     Team
	CreatedAt time.Duration // Session clock at creation
	Lifetime  time.Duration
	Pierce    int // Additional targets it may pass through
	hits      []Target
	destroyed bool
}

// NewProjectile creates a projectile at (x, y) heading along dir at speed.
func NewProjectile(owner Team, x, y float64, dir physics.Vec2, speed, radius, damage float64, now, lifetime time.Duration) *Projectile {
	dir = dir.Normalize()
	return &Projectile{
		X:         x,
		Y:         y,
		VX:        dir.X * speed,
		VY:        dir.Y * speed,
		Radius:    radius,
		Damage:    damage,
		Owner:     owner,
		CreatedAt: now,
		Lifetime:  lifetime,
	}
}

// MarkDestroyed marks the projectile for removal.
func (p *Projectile) MarkDestroyed() {
	p.destroyed = true
}

// IsDestroyed returns true if the projectile is marked for destruction.
func (p *Projectile) IsDestroyed() bool {
	return p.destroyed
}

func (p *Projectile) alreadyHit(t Target) bool {
	for _, h := range p.hits {
		if h == t {
			return true
		}
	}
	return false
}

// ProjectileSet is the ballistic entity set shared by the player and the
// spawner. It advances, expires and resolves hits for every projectile it holds.
type ProjectileSet struct {
	items  []*Projectile
	bounds physics.Rect
	grid   *physics.SpatialGrid
}

// NewProjectileSet creates an empty set.
func NewProjectileSet() *ProjectileSet {
	return &ProjectileSet{}
}

// Add inserts a projectile.
func (s *ProjectileSet) Add(p *Projectile) {
	s.items = append(s.items, p)
}

// Len returns the number of live projectiles.
func (s *ProjectileSet) Len() int {
	return len(s.items)
}

// All returns the live projectiles. The slice must not be modified.
func (s *ProjectileSet) All() []*Projectile {
	return s.items
}

// Clear drops every projectile.
func (s *ProjectileSet) Clear() {
	s.items = s.items[:0]
}

// Update advances every projectile and drops those that expired, left the
// stage or were destroyed by a hit.
func (s *ProjectileSet) Update(dt, now time.Duration, bounds physics.Rect) {
	s.bounds = bounds
	area := bounds.Expand(boundsMargin)
	secs := dt.Seconds()

	kept := s.items[:0]
	for _, p := range s.items {
		if p.destroyed || now-p.CreatedAt >= p.Lifetime {
			continue
		}
		p.X += p.VX * secs
		p.Y += p.VY * secs
		if !area.Contains(p.X, p.Y) {
			continue
		}
		kept = append(kept, p)
	}
	clear(s.items[len(kept):])
	s.items = kept
}

// Collide tests every live projectile against targets and calls onHit for each
// qualifying hit. A projectile is destroyed by its first hit unless it still
// has pierce left, and it never hits the same target twice. Returns the
// number of hits.
func Collide[T Target](s *ProjectileSet, targets []T, onHit func(p *Projectile, t T)) int {
	if len(s.items) == 0 || len(targets) == 0 {
		return 0
	}

	maxR := 0.0
	for _, t := range targets {
		maxR = max(maxR, t.HitRadius())
	}
	for _, p := range s.items {
		maxR = max(maxR, p.Radius)
	}
	cell := max(32.0, 2*maxR)
	w, h := s.bounds.Right(), s.bounds.Bottom()
	if w <= 0 || h <= 0 {
		w, h = cell, cell
	}
	if s.grid == nil {
		s.grid = physics.NewSpatialGrid(w, h, cell)
	} else {
		s.grid.Reset(w, h, cell)
	}
	for i, t := range targets {
		pos := t.Position()
		s.grid.Insert(pos.X, pos.Y, i)
	}

	hits := 0
	for _, p := range s.items {
		if p.destroyed {
			continue
		}
		s.grid.QueryAround(p.X, p.Y, func(i int) bool {
			t := targets[i]
			if !t.Hittable() || p.alreadyHit(t) {
				return false
			}
			pos := t.Position()
			if !physics.CirclesOverlap(p.X, p.Y, p.Radius, pos.X, pos.Y, t.HitRadius()) {
				return false
			}
			hits++
			onHit(p, t)
			if p.Pierce > 0 {
				p.Pierce--
				p.hits = append(p.hits, t)
				return false
			}
			p.destroyed = true
			return true
		})
	}
	return hits
}
