package object

import (
	"time"

	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/physics"
)

// Tier returns the difficulty tier for an elapsed session time.
// It is a non-decreasing step function with one step per TierDuration.
func Tier(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / config.TierDuration)
}

// DifficultyMultiplier returns the stat multiplier applied to enemies spawned at tier.
func DifficultyMultiplier(tier int) float64 {
	return 1 + config.TierMultiplierStep*float64(tier)
}

// SpawnInterval returns the time between spawns at tier, floored.
func SpawnInterval(tier int) time.Duration {
	return max(config.SpawnIntervalFloor, config.SpawnIntervalBase-config.SpawnIntervalStep*time.Duration(tier))
}

// MaxConcurrent returns the live enemy cap at tier.
func MaxConcurrent(tier int) int {
	return min(config.MaxEnemiesCap, config.MaxEnemiesBase+tier)
}

// PickKind maps a uniform draw r in [0, 1) to an enemy kind using the
// threshold table of the tier bucket.
func PickKind(tier int, r float64) string {
	switch {
	case tier <= 0:
		return KindBasic
	case tier == 1:
		if r < 0.7 {
			return KindBasic
		}
		return KindFast
	case tier == 2:
		switch {
		case r < 0.5:
			return KindBasic
		case r < 0.8:
			return KindFast
		}
		return KindHeavy
	}
	switch {
	case r < 0.3:
		return KindBasic
	case r < 0.5:
		return KindFast
	case r < 0.7:
		return KindHeavy
	}
	return KindSniper
}

// Spawner schedules enemy waves from elapsed time and owns the live enemy set
// together with every projectile those enemies fired.
type Spawner struct {
	kinds       EnemyKinds
	enemies     []*Enemy
	projectiles *ProjectileSet
	lastSpawn   time.Duration
	spawned     int
	killed      int
	nextID      int
}

// NewSpawner creates a spawner drawing from kinds.
func NewSpawner(kinds EnemyKinds) *Spawner {
	return &Spawner{
		kinds:       kinds,
		projectiles: NewProjectileSet(),
	}
}

// Enemies returns the enemy set, dying ones included. The slice must not be modified.
func (s *Spawner) Enemies() []*Enemy {
	return s.enemies
}

// Projectiles returns the aggregated enemy projectiles.
func (s *Spawner) Projectiles() *ProjectileSet {
	return s.projectiles
}

// LiveCount returns the number of enemies that are not dying.
func (s *Spawner) LiveCount() int {
	n := 0
	for _, e := range s.enemies {
		if e.Alive() {
			n++
		}
	}
	return n
}

// Counters returns the cumulative spawn and kill counts.
func (s *Spawner) Counters() (spawned, killed int) {
	return s.spawned, s.killed
}

// RecordKill increments the kill counter.
func (s *Spawner) RecordKill() {
	s.killed++
}

// Update spawns on schedule, runs every enemy and advances enemy projectiles.
func (s *Spawner) Update(ctx SpawnerContext) {
	tier := Tier(ctx.Elapsed)
	if ctx.Elapsed-s.lastSpawn >= SpawnInterval(tier) && s.LiveCount() < MaxConcurrent(tier) {
		s.spawn(ctx, tier)
	}

	ectx := EnemyContext{
		Delta:  ctx.Delta,
		Now:    ctx.Elapsed,
		Target: ctx.Target,
		Bounds: ctx.Bounds,
		Height: ctx.Height,
		Rand:   ctx.Rand,
		Fire:   s.projectiles.Add,
	}
	kept := s.enemies[:0]
	for _, e := range s.enemies {
		e.Update(ectx)
		if e.State != EnemyRemoved {
			kept = append(kept, e)
		}
	}
	clear(s.enemies[len(kept):])
	s.enemies = kept

	s.projectiles.Update(ctx.Delta, ctx.Elapsed, ctx.Bounds)
}

// spawn creates one enemy along the top edge, above the stage.
func (s *Spawner) spawn(ctx SpawnerContext, tier int) {
	s.lastSpawn = ctx.Elapsed

	r := 0.0
	if ctx.Rand != nil {
		r = ctx.Rand.Float64()
	}
	name := PickKind(tier, r)
	kind, ok := s.kinds[name]
	if !ok {
		if ctx.Logger != nil {
			ctx.Logger.Warn("unknown enemy kind, skipping spawn", "kind", name, "tier", tier)
		}
		return
	}

	x := ctx.Bounds.Left() + ctx.Bounds.W/2
	if ctx.Rand != nil {
		x = physics.RandomRange(ctx.Rand, ctx.Bounds.Left()+kind.Radius, ctx.Bounds.Right()-kind.Radius)
	}

	s.nextID++
	s.enemies = append(s.enemies, NewEnemy(s.nextID, kind, x, config.EnemySpawnY, DifficultyMultiplier(tier), ctx.Elapsed))
	s.spawned++
}

// Reset drops every enemy and projectile and restarts the schedule.
func (s *Spawner) Reset() {
	clear(s.enemies)
	s.enemies = s.enemies[:0]
	s.projectiles.Clear()
	s.lastSpawn = 0
	s.spawned = 0
	s.killed = 0
}
