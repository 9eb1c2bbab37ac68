// Package game runs one player's session: the menu and armory, the run
// itself and the game-over screen.
//
// A Session owns every simulated object of a run and advances them in a fixed
// order once per frame. Components report what happened through an event bus
// whose handlers are registered here, so every consequence of a kill or a
// level-up resolves in the frame it happened. Frontends feed Input into Update
// and draw the value returned by Snapshot.
package game

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/soulstaff/internal/audio"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/event"
	"github.com/tomz197/soulstaff/internal/object"
	"github.com/tomz197/soulstaff/internal/physics"
	"github.com/tomz197/soulstaff/internal/progression"
	"github.com/tomz197/soulstaff/internal/stat"
	"github.com/tomz197/soulstaff/internal/storage"
	"github.com/tomz197/soulstaff/internal/terrain"
)

var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrInvalidChoice     = errors.New("invalid card choice")
	ErrWrongState        = errors.New("not available right now")
)

// State is the phase of a session.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StatePaused
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "gameOver"
	}
	return "unknown"
}

// Input is the normalized control state of one frame.
type Input = object.Input

// Deps are the collaborators of a session. Catalog, Profiles and Ranking are
// required; the rest have defaults.
type Deps struct {
	Catalog  *progression.Catalog
	Enemies  object.EnemyKinds // Defaults to the built-in kinds
	Profiles storage.ProfileStore
	Ranking  storage.RankingStore
	Audio    audio.Sink   // Defaults to audio.Nop
	Rand     physics.Rand // Defaults to a time-seeded source
	Logger   *log.Logger  // Defaults to a discarding logger
}

// soundControl is implemented by sinks whose output can be tuned.
type soundControl interface {
	SetEnabled(bool)
	SetVolume(float64)
}

// Session is one player's game. It is not safe for concurrent use.
type Session struct {
	catalog  *progression.Catalog
	kinds    object.EnemyKinds
	profiles storage.ProfileStore
	ranking  storage.RankingStore
	audio    audio.Sink
	rng      physics.Rand
	logger   *log.Logger
	bus      *event.Bus

	state  State
	name   string
	armory *progression.Armory
	layout terrain.Layout
	width  float64
	height float64
	clock  time.Duration // Wall time fed to Update, paused or not
	notes  notifications

	// Current run
	player    *object.Player
	spawner   *object.Spawner
	engine    *progression.Engine
	orbs      []*object.SoulOrb
	particles object.Particles
	elapsed   time.Duration
	kills     int
	runOrbs   int
	pending   int
	offer     []progression.Card

	// Last finished run
	lastRun    *storage.RunSummary
	top        []storage.RunSummary
	newUnlocks []string
}

// New creates a session in the menu state and loads the profile.
func New(deps Deps) (*Session, error) {
	switch {
	case deps.Catalog == nil:
		return nil, fmt.Errorf("%w: catalog", ErrMissingDependency)
	case deps.Profiles == nil:
		return nil, fmt.Errorf("%w: profile store", ErrMissingDependency)
	case deps.Ranking == nil:
		return nil, fmt.Errorf("%w: ranking store", ErrMissingDependency)
	}

	s := &Session{
		catalog:  deps.Catalog,
		kinds:    deps.Enemies,
		profiles: deps.Profiles,
		ranking:  deps.Ranking,
		audio:    deps.Audio,
		rng:      deps.Rand,
		logger:   deps.Logger,
		bus:      event.NewBus(),
		state:    StateMenu,
	}
	if s.kinds == nil {
		s.kinds = object.DefaultEnemyKinds()
	}
	if s.audio == nil {
		s.audio = audio.Nop{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	for _, id := range s.catalog.Duplicates {
		s.logger.Warn("duplicate card id, last definition wins", "id", id)
	}

	profile, err := s.profiles.Load()
	if err != nil {
		if errors.Is(err, storage.ErrMalformedSave) {
			s.logger.Warn("save is malformed, starting fresh", "err", err)
		} else {
			s.logger.Error("failed to load profile", "err", err)
		}
	}
	if profile == nil {
		profile = progression.NewProfile()
	}
	s.armory = progression.NewArmory(s.catalog, profile)
	s.applySettings()

	s.subscribe()
	s.Resize(config.StageWidth, config.StageHeight)

	if top, err := s.ranking.Top(); err != nil {
		s.logger.Error("failed to load ranking", "err", err)
	} else {
		s.top = top
	}
	return s, nil
}

// subscribe registers the dispatch table.
func (s *Session) subscribe() {
	event.Subscribe(s.bus, s.onEnemyKilled)
	event.Subscribe(s.bus, s.onLevelUp)
	event.Subscribe(s.bus, s.onPlayerDamaged)
	event.Subscribe(s.bus, s.onPlayerDied)
	event.Subscribe(s.bus, func(c event.Cue) {
		s.audio.Play(c.Name)
	})
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Start begins a run from the menu or the game-over screen.
func (s *Session) Start(name string) error {
	if s.state != StateMenu && s.state != StateGameOver {
		return ErrWrongState
	}
	s.name = name
	s.newRun()
	return nil
}

// Restart abandons the current run, if any, and begins a fresh one.
func (s *Session) Restart() {
	s.newRun()
}

// TogglePause switches between playing and paused. Other states ignore it.
func (s *Session) TogglePause() {
	switch s.state {
	case StatePlaying:
		s.state = StatePaused
	case StatePaused:
		s.state = StatePlaying
	}
}

// ReturnToMenu drops the current run and shows the menu.
func (s *Session) ReturnToMenu() {
	s.clearRun()
	s.state = StateMenu
}

func (s *Session) newRun() {
	s.clearRun()

	s.engine = progression.NewEngine(s.catalog, s.rng)
	bounds := s.layout.Bounds()
	s.player = object.NewPlayer(bounds.W/2, bounds.Bottom()-config.PlayerRadius, s.compose(), s.bus)
	s.spawner = object.NewSpawner(s.kinds)
	s.state = StatePlaying

	s.logger.Debug("run started", "name", s.name, "loadout", s.armory.Loadout())
}

func (s *Session) clearRun() {
	s.player = nil
	s.spawner = nil
	s.engine = nil
	clear(s.orbs)
	s.orbs = s.orbs[:0]
	s.particles.Clear()
	s.elapsed = 0
	s.kills = 0
	s.runOrbs = 0
	s.pending = 0
	s.offer = nil
	s.lastRun = nil
	s.newUnlocks = nil
}

// compose builds the clamped stats of the current run.
func (s *Session) compose() *stat.Bag {
	var picks []progression.Acquisition
	if s.engine != nil {
		picks = s.engine.Acquisitions()
	}
	bag := progression.Compose(object.BaseStats(), picks, s.armory.Loadout(), s.catalog)
	stat.Clamp(bag)
	return bag
}

// Resize regenerates the terrain for a new stage size and keeps the player
// inside it.
func (s *Session) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	s.layout = terrain.Generate(width, height)

	if s.player == nil {
		return
	}
	bounds := s.layout.Bounds()
	p := s.player
	p.X = physics.Clamp(p.X, bounds.Left()+p.Radius, bounds.Right()-p.Radius)
	p.Y = min(p.Y, bounds.Bottom()-p.Radius)
}

// ComputeScore is the run score formula.
func ComputeScore(level, kills int, survival time.Duration, soulOrbs int) int {
	seconds := int(survival / time.Second)
	return level*config.ScorePerLevel + kills*config.ScorePerKill + seconds*config.ScorePerSecond + soulOrbs
}

// Score returns the score of the current or last run.
func (s *Session) Score() int {
	if s.player == nil {
		if s.lastRun != nil {
			return s.lastRun.Score
		}
		return 0
	}
	return ComputeScore(s.player.Level, s.kills, s.elapsed, s.runOrbs)
}

// Profile returns the loaded profile. Callers must not modify it.
func (s *Session) Profile() *progression.Profile {
	return s.armory.Profile()
}

// SaveProfile persists the profile. Failures are logged.
func (s *Session) SaveProfile() {
	if err := s.profiles.Save(s.armory.Profile()); err != nil {
		s.logger.Error("failed to save profile", "err", err)
	}
}

// SetSound updates the sound settings, applies them to the audio sink and
// saves the profile.
func (s *Session) SetSound(enabled bool, volume float64) {
	p := s.armory.Profile()
	p.Settings.SoundEnabled = enabled
	p.Settings.SoundVolume = physics.Clamp(volume, 0, 1)
	s.applySettings()
	s.SaveProfile()
}

func (s *Session) applySettings() {
	ctl, ok := s.audio.(soundControl)
	if !ok {
		return
	}
	settings := s.armory.Profile().Settings
	ctl.SetEnabled(settings.SoundEnabled)
	ctl.SetVolume(settings.SoundVolume)
}
