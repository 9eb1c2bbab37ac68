package object

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Enemy kind names referenced by the spawn tables.
const (
	KindBasic  = "basic"
	KindFast   = "fast"
	KindHeavy  = "heavy"
	KindSniper = "sniper"
)

//go:embed enemies.yaml
var defaultKindsYAML []byte

// EnemyKind is the tier-0 stat block of an enemy archetype.
type EnemyKind struct {
	Name             string  `yaml:"name"`
	Health           float64 `yaml:"health"`
	Damage           float64 `yaml:"damage"`
	Speed            float64 `yaml:"speed"`
	Exp              int     `yaml:"exp"`
	Radius           float64 `yaml:"radius"`
	AttackRange      float64 `yaml:"attackRange"`
	AttackIntervalMs int     `yaml:"attackIntervalMs"`
	ProjectileSpeed  float64 `yaml:"projectileSpeed"`
	Orbs             int     `yaml:"orbs"`
}

// AttackInterval returns the shot cadence.
func (k EnemyKind) AttackInterval() time.Duration {
	return time.Duration(k.AttackIntervalMs) * time.Millisecond
}

// EnemyKinds maps a kind name to its stat block.
type EnemyKinds map[string]EnemyKind

type enemyKindsFile struct {
	Kinds []EnemyKind `yaml:"kinds"`
}

// ParseEnemyKinds decodes and validates an enemy kinds document.
func ParseEnemyKinds(data []byte) (EnemyKinds, error) {
	var file enemyKindsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse enemy kinds: %w", err)
	}

	kinds := make(EnemyKinds, len(file.Kinds))
	for i, k := range file.Kinds {
		if err := validateEnemyKind(k); err != nil {
			return nil, fmt.Errorf("enemy kind %d (%q): %w", i, k.Name, err)
		}
		kinds[k.Name] = k
	}

	for _, required := range []string{KindBasic, KindFast, KindHeavy, KindSniper} {
		if _, ok := kinds[required]; !ok {
			return nil, fmt.Errorf("enemy kind %q is missing", required)
		}
	}
	return kinds, nil
}

// DefaultEnemyKinds returns the built-in enemy archetypes.
func DefaultEnemyKinds() EnemyKinds {
	kinds, err := ParseEnemyKinds(defaultKindsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in enemy kinds are invalid: %v", err))
	}
	return kinds
}

func validateEnemyKind(k EnemyKind) error {
	switch {
	case k.Name == "":
		return errors.New("name is required")
	case k.Health <= 0:
		return errors.New("health must be positive")
	case k.Speed <= 0:
		return errors.New("speed must be positive")
	case k.Radius <= 0:
		return errors.New("radius must be positive")
	case k.Damage < 0 || k.Exp < 0 || k.Orbs < 0:
		return errors.New("damage, exp and orbs must not be negative")
	case k.AttackIntervalMs <= 0:
		return errors.New("attackIntervalMs must be positive")
	}
	return nil
}
