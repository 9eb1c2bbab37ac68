// Package stat implements the typed modifier bag shared by every actor.
//
// A Bag is a sparse map from a closed set of keys to numeric values. Boolean
// modifiers are stored as 0 or 1. Missing keys read as zero, so an actor only
// carries the modifiers that were ever granted to it.
package stat

import (
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// Key identifies a modifier.
type Key int

const (
	Damage Key = iota
	Speed
	AttackSpeed
	CritChance
	CritMultiplier
	Defense
	MaxHealth
	MaxJumps
	JumpForce
	ProjectileSpeed
	ProjectileSize
	ProjectileLifetime // milliseconds
	Piercing
	Multishot
	ExtraCardOptions
	Regeneration    // hp per second
	LifeSteal       // fraction of dealt damage
	ExpGain         // experience multiplier
	SoulOrbGain     // soul orb value multiplier
	PickupRange     // orb magnet radius
	BarrierInterval // seconds between barrier charges, 0 = none
	Revives
	Orbitals
	SlowOnHit    // fraction of enemy speed removed for a second
	NovaInterval // seconds between novas, 0 = none
	Thorns       // fraction of contact damage reflected
	keyCount
)

var keyNames = [keyCount]string{
	Damage:             "damage",
	Speed:              "speed",
	AttackSpeed:        "attackSpeed",
	CritChance:         "critChance",
	CritMultiplier:     "critMultiplier",
	Defense:            "defense",
	MaxHealth:          "maxHealth",
	MaxJumps:           "maxJumps",
	JumpForce:          "jumpForce",
	ProjectileSpeed:    "projectileSpeed",
	ProjectileSize:     "projectileSize",
	ProjectileLifetime: "projectileLifetime",
	Piercing:           "piercing",
	Multishot:          "multishot",
	ExtraCardOptions:   "extraCardOptions",
	Regeneration:       "regeneration",
	LifeSteal:          "lifeSteal",
	ExpGain:            "expGain",
	SoulOrbGain:        "soulOrbGain",
	PickupRange:        "pickupRange",
	BarrierInterval:    "barrierInterval",
	Revives:            "revives",
	Orbitals:           "orbitals",
	SlowOnHit:          "slowOnHit",
	NovaInterval:       "novaInterval",
	Thorns:             "thorns",
}

// String returns the key's content name.
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// ParseKey resolves a content name to a key.
func ParseKey(name string) (Key, error) {
	for k, n := range keyNames {
		if n == name {
			return Key(k), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// UnmarshalYAML decodes a key from its name.
func (k *Key) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseKey(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML encodes a key as its name.
func (k Key) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Bag is a sparse set of modifier values.
type Bag struct {
	values map[Key]float64
}

// NewBag creates a bag holding the given values.
func NewBag(values map[Key]float64) *Bag {
	b := &Bag{values: make(map[Key]float64, len(values))}
	for k, v := range values {
		b.values[k] = v
	}
	return b
}

// Get returns the value of k, or 0 when it was never set.
func (b *Bag) Get(k Key) float64 {
	if b == nil {
		return 0
	}
	return b.values[k]
}

// Int returns the value of k truncated to an int.
func (b *Bag) Int(k Key) int {
	return int(b.Get(k))
}

// Has reports whether k was ever set.
func (b *Bag) Has(k Key) bool {
	if b == nil {
		return false
	}
	_, ok := b.values[k]
	return ok
}

// Set assigns v to k.
func (b *Bag) Set(k Key, v float64) {
	if b.values == nil {
		b.values = make(map[Key]float64)
	}
	b.values[k] = v
}

// Add adds v to k.
func (b *Bag) Add(k Key, v float64) {
	b.Set(k, b.Get(k)+v)
}

// Mul multiplies k by f. Multiplying an unset key leaves it at zero.
func (b *Bag) Mul(k Key, f float64) {
	b.Set(k, b.Get(k)*f)
}

// Clone returns an independent copy of the bag.
func (b *Bag) Clone() *Bag {
	if b == nil {
		return NewBag(nil)
	}
	return NewBag(b.values)
}

// Keys returns the set keys in ascending order.
func (b *Bag) Keys() []Key {
	keys := make([]Key, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Op is the way a modifier combines with the current value.
type Op int

const (
	OpAdd Op = iota
	OpMul
	OpSet
)

var opNames = map[Op]string{OpAdd: "add", OpMul: "mul", OpSet: "set"}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// UnmarshalYAML decodes an op from its name.
func (o *Op) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	for op, n := range opNames {
		if n == name {
			*o = op
			return nil
		}
	}
	return fmt.Errorf("unknown modifier op %q", name)
}

// Modifier is one mutation of a bag.
type Modifier struct {
	Key   Key     `yaml:"stat"`
	Op    Op      `yaml:"op"`
	Value float64 `yaml:"value"`
}

// Apply applies the modifier n times: add contributes Value*n, mul multiplies
// by Value^n and set assigns Value. Non-positive n is a no-op.
func (m Modifier) Apply(b *Bag, n int) {
	if n <= 0 {
		return
	}
	switch m.Op {
	case OpAdd:
		b.Add(m.Key, m.Value*float64(n))
	case OpMul:
		b.Mul(m.Key, math.Pow(m.Value, float64(n)))
	case OpSet:
		b.Set(m.Key, m.Value)
	}
}

// ApplyAll applies every modifier n times, in order.
func ApplyAll(b *Bag, mods []Modifier, n int) {
	for _, m := range mods {
		m.Apply(b, n)
	}
}
