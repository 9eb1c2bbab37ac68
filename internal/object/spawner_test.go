package object

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/soulstaff/internal/physics"
)

func TestPickKindTierZero(t *testing.T) {
	for i := range 1000 {
		r := float64(i) / 1000
		if got := PickKind(0, r); got != KindBasic {
			t.Fatalf("PickKind(0, %v) = %q, want basic", r, got)
		}
	}
}

func TestPickKindTables(t *testing.T) {
	tests := []struct {
		tier int
		r    float64
		want string
	}{
		{1, 0.69, KindBasic},
		{1, 0.7, KindFast},
		{2, 0.49, KindBasic},
		{2, 0.79, KindFast},
		{2, 0.8, KindHeavy},
		{3, 0.29, KindBasic},
		{3, 0.49, KindFast},
		{3, 0.69, KindHeavy},
		{3, 0.7, KindSniper},
		{9, 0.99, KindSniper},
	}
	for _, tt := range tests {
		if got := PickKind(tt.tier, tt.r); got != tt.want {
			t.Errorf("PickKind(%d, %v) = %q, want %q", tt.tier, tt.r, got, tt.want)
		}
	}
}

func TestDifficultyCurves(t *testing.T) {
	prevTier := 0
	prevInterval := SpawnInterval(0)
	prevCap := MaxConcurrent(0)
	for s := 0; s <= 600; s++ {
		elapsed := time.Duration(s) * time.Second
		tier := Tier(elapsed)
		if tier < prevTier {
			t.Fatalf("tier decreased at %v", elapsed)
		}
		interval := SpawnInterval(tier)
		if interval > prevInterval || interval < 800*time.Millisecond {
			t.Fatalf("interval %v at tier %d", interval, tier)
		}
		limit := MaxConcurrent(tier)
		if limit < prevCap || limit > 15 {
			t.Fatalf("cap %d at tier %d", limit, tier)
		}
		prevTier, prevInterval, prevCap = tier, interval, limit
	}

	if Tier(29*time.Second) != 0 || Tier(30*time.Second) != 1 || Tier(95*time.Second) != 3 {
		t.Fatal("tiers step every 30 seconds")
	}
	if SpawnInterval(0) != 2*time.Second || SpawnInterval(100) != 800*time.Millisecond {
		t.Fatal("spawn interval endpoints")
	}
	if MaxConcurrent(0) != 8 || MaxConcurrent(7) != 15 || MaxConcurrent(50) != 15 {
		t.Fatal("concurrency cap endpoints")
	}
	if DifficultyMultiplier(0) != 1 || DifficultyMultiplier(5) != 2 {
		t.Fatal("difficulty multiplier")
	}
}

func TestSpawnerSchedule(t *testing.T) {
	s := NewSpawner(DefaultEnemyKinds())
	ctx := SpawnerContext{Delta: frame, Bounds: stage, Target: physics.Vec2{X: 480, Y: 500}, Rand: constRand(0.9)}

	ctx.Elapsed = time.Second
	s.Update(ctx)
	if spawned, _ := s.Counters(); spawned != 0 {
		t.Fatal("spawned before the first interval")
	}

	ctx.Elapsed = 2 * time.Second
	s.Update(ctx)
	if spawned, _ := s.Counters(); spawned != 1 {
		t.Fatalf("spawned = %d, want 1", spawned)
	}

	e := s.Enemies()[0]
	if e.Kind.Name != KindBasic {
		t.Fatalf("tier 0 spawned %q", e.Kind.Name)
	}
	if e.X < e.Radius || e.X > stage.W-e.Radius {
		t.Fatalf("spawn x = %v outside the stage", e.X)
	}
	if e.Y >= 0 {
		t.Fatalf("spawn y = %v, want above the stage", e.Y)
	}
}

func TestSpawnerRespectsCap(t *testing.T) {
	s := NewSpawner(DefaultEnemyKinds())
	ctx := SpawnerContext{Delta: frame, Bounds: stage, Target: physics.Vec2{X: 480, Y: 500}, Rand: constRand(0.3)}

	for sec := 2; sec < 30; sec += 2 {
		ctx.Elapsed = time.Duration(sec) * time.Second
		s.Update(ctx)
		if s.LiveCount() > MaxConcurrent(0) {
			t.Fatalf("live enemies %d exceed the cap", s.LiveCount())
		}
	}
	if s.LiveCount() != MaxConcurrent(0) {
		t.Fatalf("live enemies = %d, want %d", s.LiveCount(), MaxConcurrent(0))
	}

	s.Enemies()[0].TakeDamage(1000, ctx.Elapsed)
	s.RecordKill()
	if _, killed := s.Counters(); killed != 1 {
		t.Fatalf("killed = %d, want 1", killed)
	}
	if s.LiveCount() != MaxConcurrent(0)-1 {
		t.Fatal("dying enemies must not count toward the cap")
	}

	s.Reset()
	if len(s.Enemies()) != 0 || s.Projectiles().Len() != 0 {
		t.Fatal("reset should drop every enemy and projectile")
	}
}

func TestSpawnerDropsRemovedEnemies(t *testing.T) {
	s := NewSpawner(DefaultEnemyKinds())
	ctx := SpawnerContext{Delta: frame, Bounds: stage, Elapsed: 2 * time.Second}
	s.Update(ctx)
	if len(s.Enemies()) != 1 {
		t.Fatalf("enemies = %d, want 1", len(s.Enemies()))
	}

	s.Enemies()[0].TakeDamage(1000, ctx.Elapsed)
	ctx.Elapsed += 600 * time.Millisecond
	s.Update(ctx)
	ctx.Elapsed += frame
	s.Update(ctx)
	if len(s.Enemies()) != 0 {
		t.Fatalf("enemies = %d after the death window", len(s.Enemies()))
	}
}

func TestSpawnerSkipsUnknownKind(t *testing.T) {
	kinds := DefaultEnemyKinds()
	delete(kinds, KindBasic)

	var buf bytes.Buffer
	s := NewSpawner(kinds)
	s.Update(SpawnerContext{Delta: frame, Bounds: stage, Elapsed: 2 * time.Second, Logger: log.New(&buf)})

	if len(s.Enemies()) != 0 {
		t.Fatalf("enemies = %d, want none", len(s.Enemies()))
	}
	if !strings.Contains(buf.String(), "unknown enemy kind") || !strings.Contains(buf.String(), KindBasic) {
		t.Fatalf("missing kind not logged: %q", buf.String())
	}
}
