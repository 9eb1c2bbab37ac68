package main

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/tomz197/soulstaff/internal/audio/synth"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/loop"
	"github.com/tomz197/soulstaff/internal/progression"
	"github.com/tomz197/soulstaff/internal/storage"
	"golang.org/x/term"
)

const defaultDataDir = "soulstaff"

func main() {
	// The terminal is the game screen, so logs go to a file.
	logPath := config.GetEnv("SOULSTAFF_LOG", filepath.Join(os.TempDir(), "soulstaff.log"))
	var logOut io.Writer = io.Discard
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		defer f.Close()
		logOut = f
	}
	logger := config.NewLogger(logOut, "game")

	session, err := newSession(logger)
	if err != nil {
		log.Fatal("failed to start game", "err", err)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatal("failed to enable raw mode", "err", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	// Ctrl+C arrives as a key in raw mode; SIGTERM still ends the game cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	client := loop.NewClient(session, bufio.NewReader(os.Stdin), os.Stdout, loop.ClientOptions{
		Username: playerName(),
		Logger:   logger,
	})
	logger.Info("game started", "log", logPath)
	if err := client.Run(ctx); err != nil {
		logger.Error("game error", "err", err)
		_ = term.Restore(fd, oldState)
		os.Exit(1)
	}
}

// newSession wires the content catalog, gdata storage and audio into a session.
// Storage falls back to memory when the data directory cannot be opened.
func newSession(logger *log.Logger) (*game.Session, error) {
	catalog, err := progression.DefaultCatalog()
	if err != nil {
		return nil, err
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
	return game.New(deps)
}

// playerName is the name shown in the ranking.
func playerName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return config.GetEnv("USER", "wizard")
}
