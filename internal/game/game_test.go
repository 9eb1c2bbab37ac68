package game

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/event"
	"github.com/tomz197/soulstaff/internal/object"
	"github.com/tomz197/soulstaff/internal/physics"
	"github.com/tomz197/soulstaff/internal/progression"
	"github.com/tomz197/soulstaff/internal/stat"
	"github.com/tomz197/soulstaff/internal/storage"
)

const frame = 16 * time.Millisecond

// fixedRand never crits, always draws common cards and picks the first one.
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }
func (r fixedRand) Intn(int) int     { return 0 }

type cueRecorder struct {
	cues    []string
	enabled bool
	volume  float64
}

func (c *cueRecorder) Play(cue string)       { c.cues = append(c.cues, cue) }
func (c *cueRecorder) SetEnabled(on bool)    { c.enabled = on }
func (c *cueRecorder) SetVolume(vol float64) { c.volume = vol }

type fixture struct {
	s        *Session
	profiles *storage.MemoryProfiles
	ranking  *storage.MemoryRanking
	audio    *cueRecorder
}

func newFixture(t *testing.T, profile *progression.Profile) fixture {
	t.Helper()
	catalog, err := progression.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	f := fixture{
		profiles: storage.NewMemoryProfiles(),
		ranking:  storage.NewMemoryRanking(),
		audio:    &cueRecorder{},
	}
	if profile != nil {
		if err := f.profiles.Save(profile); err != nil {
			t.Fatal(err)
		}
	}
	f.s, err = New(Deps{
		Catalog:  catalog,
		Profiles: f.profiles,
		Ranking:  f.ranking,
		Audio:    f.audio,
		Rand:     fixedRand(0.5),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func (f fixture) start(t *testing.T) *Session {
	t.Helper()
	if err := f.s.Start("tester"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return f.s
}

func TestNewMissingDependency(t *testing.T) {
	catalog, err := progression.DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	full := Deps{Catalog: catalog, Profiles: storage.NewMemoryProfiles(), Ranking: storage.NewMemoryRanking()}

	tests := []struct {
		name string
		edit func(d *Deps)
	}{
		{"catalog", func(d *Deps) { d.Catalog = nil }},
		{"profiles", func(d *Deps) { d.Profiles = nil }},
		{"ranking", func(d *Deps) { d.Ranking = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := full
			tt.edit(&d)
			if _, err := New(d); !errors.Is(err, ErrMissingDependency) {
				t.Fatalf("err = %v, want ErrMissingDependency", err)
			}
		})
	}

	if _, err := New(full); err != nil {
		t.Fatalf("optional deps should default: %v", err)
	}
}

type malformedStore struct{ saved int }

func (m *malformedStore) Load() (*progression.Profile, error) {
	return progression.NewProfile(), fmt.Errorf("profile: %w", storage.ErrMalformedSave)
}

func (m *malformedStore) Save(*progression.Profile) error {
	m.saved++
	return nil
}

func TestNewWithMalformedSave(t *testing.T) {
	catalog, err := progression.DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(Deps{Catalog: catalog, Profiles: &malformedStore{}, Ranking: storage.NewMemoryRanking()})
	if err != nil {
		t.Fatalf("a malformed save must not fail startup: %v", err)
	}
	if s.State() != StateMenu || s.Profile().SoulOrbs != 0 {
		t.Fatalf("want a fresh profile in the menu, got %v %+v", s.State(), s.Profile())
	}
}

func TestStateTransitions(t *testing.T) {
	f := newFixture(t, nil)
	s := f.s

	if s.Snapshot().Player != nil {
		t.Fatal("menu should have no player")
	}
	s.TogglePause()
	if s.State() != StateMenu {
		t.Fatal("pause must be ignored in the menu")
	}

	f.start(t)
	if s.State() != StatePlaying || s.Snapshot().Player == nil {
		t.Fatal("Start should begin a run")
	}
	if err := s.Start("again"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("Start while playing: err = %v", err)
	}

	s.TogglePause()
	if s.State() != StatePaused {
		t.Fatalf("state = %v, want paused", s.State())
	}
	s.TogglePause()
	if s.State() != StatePlaying {
		t.Fatalf("state = %v, want playing", s.State())
	}

	s.Update(frame, Input{})
	s.Restart()
	if s.State() != StatePlaying || s.elapsed != 0 {
		t.Fatal("Restart should begin a fresh run")
	}

	s.ReturnToMenu()
	if s.State() != StateMenu || s.Snapshot().Player != nil {
		t.Fatal("ReturnToMenu should drop the run")
	}
}

func TestUpdateClampsDelta(t *testing.T) {
	tests := []struct {
		name string
		dt   time.Duration
		want time.Duration
	}{
		{"long frame", time.Second, config.MaxFrameDelta},
		{"normal frame", frame, frame},
		{"negative", -frame, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFixture(t, nil).start(t)
			s.Update(tt.dt, Input{})
			if s.elapsed != tt.want {
				t.Fatalf("elapsed = %v, want %v", s.elapsed, tt.want)
			}
		})
	}
}

func TestPauseFreezesUpdate(t *testing.T) {
	s := newFixture(t, nil).start(t)

	s.Update(frame, Input{})
	before := s.elapsed
	x, y := s.player.X, s.player.Y

	s.Update(frame, Input{PauseToggled: true})
	if s.State() != StatePaused {
		t.Fatal("pause key should pause")
	}
	for range 10 {
		s.Update(frame, Input{MoveRight: true})
	}
	if s.elapsed != before || s.player.X != x || s.player.Y != y {
		t.Fatal("paused session advanced")
	}

	s.Update(frame, Input{PauseToggled: true})
	if s.State() != StatePlaying || s.elapsed != before+frame {
		t.Fatalf("unpause should resume: state %v, elapsed %v", s.State(), s.elapsed)
	}
}

func TestMeleeAttrition(t *testing.T) {
	s := newFixture(t, nil).start(t)
	p := s.player
	basic := object.DefaultEnemyKinds()[object.KindBasic]
	e := object.NewEnemy(1, basic, p.X, p.Y, 1, 0)

	s.resolveContacts(s.elapsed, []*object.Enemy{e})
	if p.Health != 90 {
		t.Fatalf("player health = %v, want 90", p.Health)
	}
	if e.Health != 15 || !e.Alive() {
		t.Fatalf("enemy health = %v alive=%v, want 15 and alive", e.Health, e.Alive())
	}

	// The player is invulnerable now, the enemy keeps losing health.
	s.resolveContacts(s.elapsed, []*object.Enemy{e})
	if p.Health != 90 {
		t.Fatalf("invulnerable player took damage: %v", p.Health)
	}
	if e.Alive() {
		t.Fatal("enemy should die on the second frame of contact")
	}
	if s.kills != 1 || p.Exp != basic.Exp || len(s.orbs) != basic.Orbs {
		t.Fatalf("kill not routed: kills %d exp %d orbs %d", s.kills, p.Exp, len(s.orbs))
	}
}

func TestThornsReflectDamage(t *testing.T) {
	s := newFixture(t, nil).start(t)
	p := s.player
	p.Stats.Set(stat.Thorns, 2)
	e := object.NewEnemy(1, object.DefaultEnemyKinds()[object.KindBasic], p.X, p.Y, 1, 0)

	// 15 contact damage plus 2·10 reflected exceeds 30 hp.
	s.resolveContacts(s.elapsed, []*object.Enemy{e})
	if e.Alive() {
		t.Fatalf("thorns should kill on first contact, health %v", e.Health)
	}
}

func TestDeathFreezesRun(t *testing.T) {
	f := newFixture(t, nil)
	s := f.start(t)
	p := s.player
	p.Health = 5
	p.Exp = p.ExpToNext - 1
	p.Stats.Set(stat.Thorns, 10)
	e := object.NewEnemy(1, object.DefaultEnemyKinds()[object.KindBasic], p.X, p.Y, 1, 0)

	s.resolveContacts(s.elapsed, []*object.Enemy{e})
	if s.State() != StateGameOver {
		t.Fatalf("state = %v, want gameOver", s.State())
	}
	if !e.Alive() {
		t.Fatal("the contact that killed the player should not hit back")
	}

	// Late kills and level-ups do not touch the finished run.
	s.bus.Emit(event.EnemyKilled{X: p.X, Y: p.Y, EnemyKind: object.KindBasic, Exp: 100, Orbs: 2})
	s.bus.Emit(event.LevelUp{Level: 2})

	if s.kills != 0 || len(s.orbs) != 0 || s.OfferOpen() || s.pending != 0 {
		t.Fatalf("run changed after death: kills %d orbs %d offer %v pending %d", s.kills, len(s.orbs), s.OfferOpen(), s.pending)
	}
	top, err := f.ranking.Top()
	if err != nil || len(top) != 1 {
		t.Fatalf("ranking = %+v, err %v", top, err)
	}
	snap := s.Snapshot()
	if snap.Score != top[0].Score || len(snap.Offer) != 0 {
		t.Fatalf("snapshot score %d offer %d, ranking score %d", snap.Score, len(snap.Offer), top[0].Score)
	}
}

func TestEnemyProjectileHitsPlayer(t *testing.T) {
	s := newFixture(t, nil).start(t)
	s.Update(frame, Input{})
	p := s.player

	pr := object.NewProjectile(object.TeamEnemy, p.X, p.Y, physics.Vec2{X: 1}, 0, 4, 15, s.elapsed, time.Second)
	s.spawner.Projectiles().Add(pr)
	s.resolveContacts(s.elapsed, nil)

	if p.Health != 85 {
		t.Fatalf("player health = %v, want 85", p.Health)
	}
	if !pr.IsDestroyed() {
		t.Fatal("projectile should be spent")
	}
}

func TestLevelUpsQueueOffers(t *testing.T) {
	f := newFixture(t, nil)
	s := f.start(t)

	s.player.GainExp(230) // 100 + 120 + 10
	if s.player.Level != 3 || s.pending != 2 || !s.OfferOpen() {
		t.Fatalf("level %d pending %d open %v", s.player.Level, s.pending, s.OfferOpen())
	}

	elapsed := s.elapsed
	s.Update(frame, Input{})
	if s.elapsed != elapsed {
		t.Fatal("simulation must wait for a card choice")
	}

	if err := s.ChooseCard(0); err != nil {
		t.Fatalf("ChooseCard: %v", err)
	}
	if s.pending != 1 || !s.OfferOpen() {
		t.Fatalf("second offer should open: pending %d open %v", s.pending, s.OfferOpen())
	}
	if err := s.ChooseCard(0); err != nil {
		t.Fatalf("ChooseCard: %v", err)
	}
	if s.pending != 0 || s.OfferOpen() {
		t.Fatalf("offers should be settled: pending %d open %v", s.pending, s.OfferOpen())
	}

	// Both picks are Power (+3 damage).
	if got := s.player.Stats.Get(stat.Damage); got != 16 {
		t.Fatalf("damage = %v, want 16", got)
	}
	if n := countCue(f.audio.cues, event.CueUpgradeSelected); n != 2 {
		t.Fatalf("upgradeSelected cues = %d, want 2", n)
	}

	s.Update(frame, Input{})
	if s.elapsed != elapsed+frame {
		t.Fatal("simulation should resume after the last choice")
	}
}

func TestChooseCardInvalid(t *testing.T) {
	s := newFixture(t, nil).start(t)

	if err := s.ChooseCard(0); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("no offer: err = %v", err)
	}

	s.player.GainExp(100)
	for _, i := range []int{-1, 3, 9} {
		if err := s.ChooseCard(i); !errors.Is(err, ErrInvalidChoice) {
			t.Fatalf("ChooseCard(%d): err = %v", i, err)
		}
	}
	if s.pending != 1 || !s.OfferOpen() || len(s.engine.Acquisitions()) != 0 {
		t.Fatal("invalid choice must not change the run")
	}
	if len(s.Notifications()) == 0 {
		t.Fatal("invalid choice should be shown to the player")
	}

	if err := s.SkipCard(); err != nil {
		t.Fatalf("SkipCard: %v", err)
	}
	if s.pending != 0 || s.OfferOpen() {
		t.Fatal("skip should settle the level")
	}
}

func TestScore(t *testing.T) {
	if got := ComputeScore(3, 12, 65*time.Second, 40); got != 785 {
		t.Fatalf("ComputeScore = %d, want 785", got)
	}

	s := newFixture(t, nil).start(t)
	s.player.Level = 3
	s.kills = 12
	s.elapsed = 65*time.Second + 900*time.Millisecond
	s.runOrbs = 40
	if got := s.Score(); got != 785 {
		t.Fatalf("Score = %d, want 785", got)
	}
}

func TestDispatchOrder(t *testing.T) {
	f := newFixture(t, nil)
	s := f.start(t)

	s.bus.Emit(event.EnemyKilled{X: 100, Y: 100, EnemyKind: object.KindBasic, Exp: 100, Orbs: 2})

	want := []string{event.CueLevelUp, event.CueEnemyDeath}
	if !slices.Equal(f.audio.cues, want) {
		t.Fatalf("cues = %v, want %v", f.audio.cues, want)
	}
	if s.kills != 1 || len(s.orbs) != 2 || s.pending != 1 {
		t.Fatalf("kills %d orbs %d pending %d", s.kills, len(s.orbs), s.pending)
	}
	if _, killed := s.spawner.Counters(); killed != 1 {
		t.Fatalf("spawner kills = %d, want 1", killed)
	}
}

func TestOrbs(t *testing.T) {
	f := newFixture(t, nil)
	s := f.start(t)
	p := s.player
	bounds, platforms := s.layout.Bounds(), s.layout.Platforms()

	s.orbs = append(s.orbs,
		&object.SoulOrb{X: p.X, Y: p.Y, Value: 3},
		&object.SoulOrb{X: 20, Y: 20, Value: 5},
	)
	s.updateOrbs(frame, s.elapsed, platforms, bounds)
	if s.runOrbs != 3 || len(s.orbs) != 1 {
		t.Fatalf("runOrbs %d, %d orbs left", s.runOrbs, len(s.orbs))
	}
	if countCue(f.audio.cues, event.CueSoulOrb) != 1 {
		t.Fatal("pickup should play a cue")
	}

	s.updateOrbs(frame, config.OrbLifetime, platforms, bounds)
	if len(s.orbs) != 0 || s.runOrbs != 3 {
		t.Fatal("expired orb should vanish uncollected")
	}
}

func TestGameOver(t *testing.T) {
	profile := progression.NewProfile()
	profile.SoulOrbs = 5
	f := newFixture(t, profile)
	s := f.start(t)

	s.kills = 3
	s.runOrbs = 7
	s.player.TakeDamage(1e6, s.elapsed)

	if s.State() != StateGameOver {
		t.Fatalf("state = %v, want gameOver", s.State())
	}
	if countCue(f.audio.cues, event.CueGameOver) != 1 {
		t.Fatal("game over cue missing")
	}

	top, err := f.ranking.Top()
	if err != nil || len(top) != 1 || top[0].Name != "tester" || top[0].Kills != 3 {
		t.Fatalf("ranking = %+v, err %v", top, err)
	}

	saved, err := f.profiles.Load()
	if err != nil {
		t.Fatal(err)
	}
	if saved.SoulOrbs != 12 || saved.Stats.Runs != 1 || saved.Stats.Kills != 3 || saved.Stats.SoulOrbsCollected != 7 {
		t.Fatalf("profile not updated: %+v", saved)
	}

	snap := s.Snapshot()
	if snap.LastRun == nil || snap.LastRun.Score != s.Score() || len(snap.Ranking) != 1 {
		t.Fatalf("snapshot should carry the run: %+v", snap.LastRun)
	}

	// A second death event is ignored.
	s.bus.Emit(event.PlayerDied{})
	if top, _ := f.ranking.Top(); len(top) != 1 {
		t.Fatal("run recorded twice")
	}

	if err := s.Start("tester"); err != nil {
		t.Fatalf("Start from game over: %v", err)
	}
}

func TestRankingNotice(t *testing.T) {
	tests := []struct {
		name      string
		bestScore int // 0 means an empty ranking
		want      string
		wantPlace int
	}{
		{"first run", 0, "New high score!", 0},
		{"beats the best", 1, "New high score!", 0},
		{"below the best", 1_000_000, "Ranked #2", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if tt.bestScore > 0 {
				if _, err := f.ranking.Submit(storage.RunSummary{Name: "best", Score: tt.bestScore}); err != nil {
					t.Fatal(err)
				}
			}
			s := f.start(t)
			s.player.TakeDamage(1e6, s.elapsed)

			if !slices.Contains(s.Notifications(), tt.want) {
				t.Fatalf("notifications = %v, want %q", s.Notifications(), tt.want)
			}
			snap := s.Snapshot()
			if snap.LastRun == nil || snap.LastRun.Seq != snap.Ranking[tt.wantPlace].Seq {
				t.Fatalf("last run %+v is not ranking entry %d", snap.LastRun, tt.wantPlace)
			}
		})
	}
}

func TestArmory(t *testing.T) {
	profile := progression.NewProfile()
	profile.SoulOrbs = 30
	f := newFixture(t, profile)
	s := f.s

	if _, err := s.OpenArmory(); err != nil {
		t.Fatalf("OpenArmory: %v", err)
	}

	tests := []struct {
		id   string
		want error
	}{
		{"nope", progression.ErrUnknownItem},
		{"wizardHat", progression.ErrLocked},
	}
	for _, tt := range tests {
		if err := s.Buy(tt.id); !errors.Is(err, tt.want) {
			t.Fatalf("Buy(%s): err = %v, want %v", tt.id, err, tt.want)
		}
	}
	if s.Profile().SoulOrbs != 30 || len(s.Notifications()) == 0 {
		t.Fatal("rejected purchase must only notify")
	}

	if err := s.Buy("apprenticeHat"); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if err := s.Buy("oakStaff"); !errors.Is(err, progression.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if err := s.Equip("oakStaff"); !errors.Is(err, progression.ErrNotOwned) {
		t.Fatalf("err = %v, want ErrNotOwned", err)
	}
	if err := s.Equip("apprenticeHat"); err != nil {
		t.Fatalf("Equip: %v", err)
	}

	saved, err := f.profiles.Load()
	if err != nil {
		t.Fatal(err)
	}
	if saved.SoulOrbs != 5 || !saved.Owns("apprenticeHat") || saved.Equipped.Hat != "apprenticeHat" {
		t.Fatalf("purchase not saved: %+v", saved)
	}
	if countCue(f.audio.cues, event.CuePurchase) != 1 {
		t.Fatal("purchase cue missing")
	}

	f.start(t)
	if got := s.player.MaxHealth; got != 110 {
		t.Fatalf("equipped hat should add health, max = %v", got)
	}
	if err := s.Buy("oakStaff"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("shop during a run: err = %v", err)
	}

	s.ReturnToMenu()
	if err := s.Unequip(progression.SlotHat); err != nil {
		t.Fatal(err)
	}
	if s.Loadout().Hat != "" {
		t.Fatal("hat still equipped")
	}
}

func TestResizeKeepsPlayerInside(t *testing.T) {
	s := newFixture(t, nil).start(t)
	s.player.X = 900

	s.Resize(600, 400)
	bounds := s.layout.Bounds()
	if s.player.X > bounds.Right()-s.player.Radius || s.player.Y > bounds.Bottom()-s.player.Radius {
		t.Fatalf("player at (%v, %v) outside %+v", s.player.X, s.player.Y, bounds)
	}
	if snap := s.Snapshot(); snap.Bounds.W != 600 || snap.Bounds.H != 400 {
		t.Fatalf("snapshot bounds = %+v", snap.Bounds)
	}
}

func TestNotificationsExpire(t *testing.T) {
	s := newFixture(t, nil).s
	for i := range maxNotifications + 2 {
		s.notify(fmt.Sprint(i))
	}
	got := s.Notifications()
	if len(got) != maxNotifications || got[0] != "2" {
		t.Fatalf("notifications = %v", got)
	}

	for s.clock <= config.NotificationTime {
		s.Update(config.MaxFrameDelta, Input{})
	}
	if len(s.Notifications()) != 0 {
		t.Fatal("notifications should expire")
	}
}

func TestSetSound(t *testing.T) {
	f := newFixture(t, nil)
	if !f.audio.enabled || f.audio.volume != progression.DefaultSettings().SoundVolume {
		t.Fatal("profile settings should reach the sink")
	}

	f.s.SetSound(false, 2)
	if f.audio.enabled || f.audio.volume != 1 {
		t.Fatalf("sink = %+v", f.audio)
	}
	saved, err := f.profiles.Load()
	if err != nil {
		t.Fatal(err)
	}
	if saved.Settings.SoundEnabled || saved.Settings.SoundVolume != 1 {
		t.Fatalf("settings not saved: %+v", saved.Settings)
	}
}

func TestAutoAim(t *testing.T) {
	snap := Snapshot{Player: &PlayerView{X: 100, Y: 100, Facing: -1}}
	if got := snap.AutoAim(); got != (physics.Vec2{X: 0, Y: 100}) {
		t.Fatalf("no enemies: aim = %v", got)
	}

	snap.Enemies = []EnemyView{
		{X: 300, Y: 100},
		{X: 110, Y: 110, Dying: true},
		{X: 150, Y: 90},
	}
	if got := snap.AutoAim(); got != (physics.Vec2{X: 150, Y: 90}) {
		t.Fatalf("aim = %v, want the nearest live enemy", got)
	}
}

func countCue(cues []string, name string) int {
	n := 0
	for _, c := range cues {
		if c == name {
			n++
		}
	}
	return n
}
