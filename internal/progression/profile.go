package progression

import "slices"

// Statistics are counters accumulated over a run and, merged, over a lifetime.
// Unlock rules refer to them by their YAML names.
type Statistics struct {
	DamageTaken       int `yaml:"damageTaken"`
	Jumps             int `yaml:"jumps"`
	Kills             int `yaml:"kills"`
	ProjectilesFired  int `yaml:"projectilesFired"`
	LevelReached      int `yaml:"levelReached"`
	Runs              int `yaml:"runs"`
	SoulOrbsCollected int `yaml:"soulOrbsCollected"`
	SurvivalSeconds   int `yaml:"survivalSeconds"`
}

// Get returns the statistic called name.
func (s Statistics) Get(name string) (float64, bool) {
	switch name {
	case "damageTaken":
		return float64(s.DamageTaken), true
	case "jumps":
		return float64(s.Jumps), true
	case "kills":
		return float64(s.Kills), true
	case "projectilesFired":
		return float64(s.ProjectilesFired), true
	case "levelReached":
		return float64(s.LevelReached), true
	case "runs":
		return float64(s.Runs), true
	case "soulOrbsCollected":
		return float64(s.SoulOrbsCollected), true
	case "survivalSeconds":
		return float64(s.SurvivalSeconds), true
	}
	return 0, false
}

// Merge adds a finished run to lifetime totals. LevelReached keeps the best.
func (s *Statistics) Merge(run Statistics) {
	s.DamageTaken += run.DamageTaken
	s.Jumps += run.Jumps
	s.Kills += run.Kills
	s.ProjectilesFired += run.ProjectilesFired
	s.LevelReached = max(s.LevelReached, run.LevelReached)
	s.Runs += run.Runs
	s.SoulOrbsCollected += run.SoulOrbsCollected
	s.SurvivalSeconds += run.SurvivalSeconds
}

// Settings are user preferences stored with the profile.
type Settings struct {
	SoundEnabled bool    `yaml:"soundEnabled"`
	SoundVolume  float64 `yaml:"soundVolume"` // 0.0 ~ 1.0
}

// Loadout is the equipped hat and staff. Empty means nothing is worn.
type Loadout struct {
	Hat   string `yaml:"hat"`
	Staff string `yaml:"staff"`
}

// Profile is everything that outlives a run.
type Profile struct {
	Stats    Statistics `yaml:"stats"`
	SoulOrbs int        `yaml:"soulOrbs"`
	Owned    []string   `yaml:"owned"`
	Equipped Loadout    `yaml:"equipped"`
	Unlocked []string   `yaml:"unlocked"`
	Settings Settings   `yaml:"settings"`
}

// DefaultSettings returns the settings of a fresh profile.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled: true,
		SoundVolume:  0.8,
	}
}

// NewProfile returns an empty profile with default settings.
func NewProfile() *Profile {
	return &Profile{
		Owned:    []string{},
		Unlocked: []string{},
		Settings: DefaultSettings(),
	}
}

// Owns reports whether the item was bought.
func (p *Profile) Owns(id string) bool {
	return slices.Contains(p.Owned, id)
}

// HasUnlocked reports whether the item was unlocked by a statistic.
func (p *Profile) HasUnlocked(id string) bool {
	return slices.Contains(p.Unlocked, id)
}
