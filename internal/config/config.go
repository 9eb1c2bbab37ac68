package config

import "time"

// Stage - the logical play area. Renderers scale it to their surface.
const (
	StageWidth  = 960
	StageHeight = 540
)

// Frame timing
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS
	MaxFrameDelta   = time.Second / 30 // Upper bound for one simulation step
)

// Player
const (
	PlayerRadius       = 12.0
	Gravity            = 1500.0 // Units per second squared
	InvulnerableTime   = 800 * time.Millisecond
	BarrierInvulnTime  = 300 * time.Millisecond
	PlayerBlinkFreq    = 10.0 // Hz
	InitialExpToNext   = 100
	ExpGrowthRate      = 1.2
	LevelUpHealRatio   = 0.10
	ReviveHealthRatio  = 0.5
	MultishotSpreadDeg = 8.0
	NovaProjectiles    = 8
	OrbitalRadius      = 40.0
	OrbitalSize        = 6.0
	OrbitalSpeed       = 3.0 // Radians per second
	OrbitalHitCooldown = 400 * time.Millisecond
	SlowDuration       = time.Second
)

// Enemies
const (
	EnemyFollowLine    = 0.7 // Fraction of stage height enemies descend to and never rise above
	EnemyDescendFactor = 0.8
	EnemyPursuitScale  = 100.0 // Distance at which pursuit runs at base speed
	EnemyPursuitMax    = 2.0
	EnemyJitterRatio   = 0.3
	EnemyJitterPeriod  = 500 * time.Millisecond
	EnemyDyingTime     = 500 * time.Millisecond
	EnemyContactRatio  = 0.5 // Fraction of max health an enemy loses per frame of contact
	EnemyProjectileR   = 4.0
	EnemyProjectileTTL = 3 * time.Second
	EnemySpawnY        = -30.0
)

// Difficulty
const (
	TierDuration        = 30 * time.Second
	TierMultiplierStep  = 0.2
	SpawnIntervalBase   = 2000 * time.Millisecond
	SpawnIntervalStep   = 150 * time.Millisecond
	SpawnIntervalFloor  = 800 * time.Millisecond
	MaxEnemiesBase      = 8
	MaxEnemiesCap       = 15
	EnemySpeedSoftening = 0.5
)

// Soul orbs
const (
	OrbRadius      = 5.0
	OrbLifetime    = 15 * time.Second
	OrbMagnetSpeed = 380.0
	OrbScatter     = 90.0
)

// Scoring
const (
	ScorePerLevel  = 100
	ScorePerKill   = 10
	ScorePerSecond = 5
)

// Progression
const (
	BaseCardOptions   = 3
	RarityCommonMax   = 0.70
	RarityUncommonMax = 0.95
	RankingSize       = 10
)

// Terrain
const (
	GroundHeight       = 20.0
	StepWidth          = 90.0
	StepRise           = 55.0
	PlatformThickness  = 10.0
	CenterWidth        = 160.0
	CenterRiseSteps    = 4
	TerrainCutoffRatio = 0.25 // No platform top above this fraction of the stage height
	CenterGap          = 20.0
)

// Terminal client
const (
	MaxTermWidth             = 200
	MaxTermHeight            = 60
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
	NotificationTime         = 3 * time.Second
	MaxUsernameLength        = 16
	ShutdownNotice           = 3 * time.Second // Shown before the server closes a session
)
