package stat

import "math"

// Limit bounds the value of one key.
type Limit struct {
	Min, Max float64
}

// Limits holds the legal range of each key that needs one.
// Keys not listed here are unbounded.
var Limits = map[Key]Limit{
	Damage:             {Min: 1, Max: math.Inf(1)},
	Speed:              {Min: 40, Max: 900},
	AttackSpeed:        {Min: 0.2, Max: 20},
	CritChance:         {Min: 0, Max: 1},
	CritMultiplier:     {Min: 1, Max: math.Inf(1)},
	Defense:            {Min: 0, Max: math.Inf(1)},
	MaxHealth:          {Min: 1, Max: math.Inf(1)},
	MaxJumps:           {Min: 1, Max: 5},
	JumpForce:          {Min: 200, Max: 1200},
	ProjectileSpeed:    {Min: 100, Max: 2000},
	ProjectileSize:     {Min: 1, Max: 30},
	ProjectileLifetime: {Min: 200, Max: 6000},
	Piercing:           {Min: 0, Max: 10},
	Multishot:          {Min: 0, Max: 8},
	ExtraCardOptions:   {Min: 0, Max: 3},
	Regeneration:       {Min: 0, Max: math.Inf(1)},
	LifeSteal:          {Min: 0, Max: 0.5},
	ExpGain:            {Min: 0.1, Max: math.Inf(1)},
	SoulOrbGain:        {Min: 0, Max: math.Inf(1)},
	PickupRange:        {Min: 0, Max: 600},
	BarrierInterval:    {Min: 0, Max: math.Inf(1)},
	Revives:            {Min: 0, Max: 3},
	Orbitals:           {Min: 0, Max: 6},
	SlowOnHit:          {Min: 0, Max: 0.9},
	NovaInterval:       {Min: 0, Max: math.Inf(1)},
	Thorns:             {Min: 0, Max: 5},
}

// Clamp forces every set key into its legal range.
// Interval keys keep 0 (ability absent) but never drop below one second otherwise.
func Clamp(b *Bag) {
	for k, v := range b.values {
		if lim, ok := Limits[k]; ok {
			v = math.Max(lim.Min, math.Min(lim.Max, v))
		}
		if (k == BarrierInterval || k == NovaInterval) && v > 0 && v < 1 {
			v = 1
		}
		b.values[k] = v
	}
}
