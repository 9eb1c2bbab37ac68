package object

import (
	"math"
	"sync"
	"time"

	"github.com/tomz197/soulstaff/internal/physics"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// ParticleKind selects how a renderer shows a particle.
type ParticleKind int

const (
	ParticleDebris ParticleKind = iota // Enemy death burst
	ParticleSpark                      // Projectile impact, crits
	ParticleBlood                      // Player hurt
	ParticleSoul                       // Orb pickup
)

// Particle is a short-lived visual effect.
type Particle struct {
	X, Y        float64 // Position
	VX, VY      float64 // Velocity
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade calculation)
	Drag        float64 // Velocity decay (1.0 = no drag)
	Kind        ParticleKind
}

// Fade returns the remaining lifetime fraction in [0, 1].
func (p *Particle) Fade() float64 {
	if p.MaxLifetime <= 0 {
		return 0
	}
	return p.Lifetime / p.MaxLifetime
}

// Particles owns the live particles of a session.
type Particles struct {
	items []*Particle
}

// Burst spawns count particles in a circular pattern around (x, y).
func (ps *Particles) Burst(rng physics.Rand, kind ParticleKind, x, y float64, count int, speed, lifetime float64) {
	for range count {
		angle := rng.Float64() * 2 * math.Pi
		// Speed varies 50% to 150%, lifetime 50% to 100%
		spd := speed * (0.5 + rng.Float64())
		life := lifetime * (0.5 + rng.Float64()*0.5)

		p := particlePool.Get().(*Particle)
		*p = Particle{
			X:           x,
			Y:           y,
			VX:          math.Cos(angle) * spd,
			VY:          math.Sin(angle) * spd,
			Lifetime:    life,
			MaxLifetime: life,
			Drag:        0.92,
			Kind:        kind,
		}
		ps.items = append(ps.items, p)
	}
}

// Update moves particles and returns expired ones to the pool.
func (ps *Particles) Update(dt time.Duration) {
	secs := dt.Seconds()
	dragFrames := secs * 60 // Drag is tuned per 60fps frame

	kept := ps.items[:0]
	for _, p := range ps.items {
		p.Lifetime -= secs
		if p.Lifetime <= 0 {
			particlePool.Put(p)
			continue
		}
		f := math.Pow(p.Drag, dragFrames)
		p.VX *= f
		p.VY *= f
		p.X += p.VX * secs
		p.Y += p.VY * secs
		kept = append(kept, p)
	}
	clear(ps.items[len(kept):])
	ps.items = kept
}

// All returns the live particles. The slice must not be modified.
func (ps *Particles) All() []*Particle {
	return ps.items
}

// Clear releases every particle.
func (ps *Particles) Clear() {
	for _, p := range ps.items {
		particlePool.Put(p)
	}
	clear(ps.items)
	ps.items = ps.items[:0]
}
