package object

import (
	"math"
	"time"

	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/physics"
)

// SoulOrb is a meta-currency pickup dropped by dead enemies.
// It falls onto the terrain, drifts toward the player once in pickup range,
// and is collected on contact.
type SoulOrb struct {
	X, Y      float64
	VX, VY    float64
	Value     int
	SpawnedAt time.Duration
	resting   bool
}

// NewSoulOrb drops an orb at (x, y) with a small upward scatter.
func NewSoulOrb(rng physics.Rand, x, y float64, value int, now time.Duration) *SoulOrb {
	angle := -math.Pi/2 + physics.RandomRange(rng, -0.8, 0.8)
	speed := physics.RandomRange(rng, 0.5, 1) * config.OrbScatter * 2
	return &SoulOrb{
		X:         x,
		Y:         y,
		VX:        math.Cos(angle) * speed,
		VY:        math.Sin(angle) * speed,
		Value:     value,
		SpawnedAt: now,
	}
}

// Expired reports whether the orb outlived its lifetime.
func (o *SoulOrb) Expired(now time.Duration) bool {
	return now-o.SpawnedAt >= config.OrbLifetime
}

// Update moves the orb. Within pickupRange of target it homes in; otherwise
// it falls under gravity and rests on the first surface below it.
func (o *SoulOrb) Update(dt time.Duration, target physics.Vec2, pickupRange float64, platforms []physics.Rect, bounds physics.Rect) {
	secs := dt.Seconds()

	if physics.PointInCircle(o.X, o.Y, target.X, target.Y, pickupRange) {
		dir := target.Sub(physics.Vec2{X: o.X, Y: o.Y}).Normalize()
		o.VX = dir.X * config.OrbMagnetSpeed
		o.VY = dir.Y * config.OrbMagnetSpeed
		o.X += o.VX * secs
		o.Y += o.VY * secs
		o.resting = false
		return
	}
	if o.resting {
		return
	}

	o.VX *= math.Pow(0.9, secs*60)
	o.VY += config.Gravity * 0.5 * secs
	prevBottom := o.Y + config.OrbRadius
	o.X = physics.Clamp(o.X+o.VX*secs, bounds.Left()+config.OrbRadius, bounds.Right()-config.OrbRadius)
	o.Y += o.VY * secs
	if o.VY < 0 {
		return
	}
	if top, ok := landing(platforms, bounds, o.X, config.OrbRadius, prevBottom, o.Y+config.OrbRadius); ok {
		o.Y = top - config.OrbRadius
		o.VX, o.VY = 0, 0
		o.resting = true
	}
}

// Touches reports whether the orb overlaps a circle.
func (o *SoulOrb) Touches(x, y, radius float64) bool {
	return physics.CirclesOverlap(o.X, o.Y, config.OrbRadius, x, y, radius)
}
