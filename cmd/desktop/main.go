package main

import (
	"math/rand"
	"os"
	"os/user"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tomz197/soulstaff/internal/audio/synth"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/desktop"
	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/progression"
	"github.com/tomz197/soulstaff/internal/storage"
)

const defaultDataDir = "soulstaff"

func main() {
	logger := config.NewLogger(os.Stderr, "desktop")

	catalog, err := progression.DefaultCatalog()
	if err != nil {
		logger.Fatal("invalid content catalog", "err", err)
	}

	manager, err := storage.OpenManager(config.GetEnv("SOULSTAFF_DATA", defaultDataDir))
	if err != nil {
		logger.Error("save data unavailable, progress will not persist", "err", err)
		manager = nil
	}

	deps := game.Deps{
		Catalog:  catalog,
		Profiles: storage.OpenProfiles(manager, storage.DefaultProfileKey),
		Ranking:  storage.OpenRanking(manager),
		Logger:   logger,
	}
	if seed := config.GetEnvInt("SOULSTAFF_SEED", 0); seed != 0 {
		deps.Rand = rand.New(rand.NewSource(int64(seed)))
	}
	if !config.GetEnvBool("SOULSTAFF_MUTE", false) {
		sink := synth.New(progression.DefaultSettings().SoundVolume, true)
		if err := sink.Init(); err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			deps.Audio = sink
		}
	}

	session, err := game.New(deps)
	if err != nil {
		logger.Fatal("failed to create session", "err", err)
	}

	ebiten.SetWindowSize(config.StageWidth, config.StageHeight)
	ebiten.SetWindowTitle("Soulstaff")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.TargetFPS)

	if err := ebiten.RunGame(desktop.New(session, playerName(), logger)); err != nil {
		logger.Fatal("game error", "err", err)
	}
}

func playerName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "wizard"
}
