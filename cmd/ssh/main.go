package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/quasilyte/gdata/v2"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/draw"
	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/loop"
	"github.com/tomz197/soulstaff/internal/progression"
	"github.com/tomz197/soulstaff/internal/storage"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultDataDir     = "soulstaff"
)

var errProfileInUse = errors.New("profile already in use")

// gameServer holds what every SSH session shares: content, storage and the
// shutdown signal. Each connection plays its own session.
type gameServer struct {
	catalog *progression.Catalog
	manager *gdata.Manager // Nil when storage is unavailable
	ranking storage.RankingStore
	locks   *storage.ProfileLocks
	logger  *log.Logger

	mu       sync.Mutex // Orders session registration against shutdown
	ctx      context.Context
	cancel   context.CancelFunc
	sessions sync.WaitGroup
}

func newGameServer(catalog *progression.Catalog, manager *gdata.Manager, logger *log.Logger) *gameServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &gameServer{
		catalog: catalog,
		manager: manager,
		ranking: storage.OpenRanking(manager), // One store so submissions share a lock
		locks:   storage.NewProfileLocks(),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func main() {
	logger := config.NewLogger(os.Stderr, "ssh")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	dataDir := config.GetEnv("SOULSTAFF_DATA", defaultDataDir)
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "data", dataDir)

	catalog, err := progression.DefaultCatalog()
	if err != nil {
		logger.Fatal("invalid content catalog", "err", err)
	}
	manager, err := storage.OpenManager(dataDir)
	if err != nil {
		logger.Error("save data unavailable, progress will not persist", "err", err)
		manager = nil
	}

	gs := newGameServer(catalog, manager, logger)
	defer gs.cancel()

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gs.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Sessions show a notice, save their profile and disconnect.
	gs.stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	waited := make(chan struct{})
	go func() {
		gs.sessions.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-shutdownCtx.Done():
		logger.Warn("sessions did not finish in time")
	}

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("shutdown error", "err", err)
	}
}

// middleware runs a game session for each SSH connection.
func (gs *gameServer) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}
		if !gs.register() {
			fmt.Fprintln(sess, "The server is shutting down. Please reconnect in a moment.")
			return
		}
		defer gs.sessions.Done()

		logger := gs.logger.With("user", sess.User())
		profiles, release, err := gs.claimProfile(sess.User())
		if err != nil {
			logger.Warn("rejected session", "err", err)
			fmt.Fprintln(sess, "You are already playing from another connection.")
			return
		}
		defer release()
		logger.Info("new game session", "terminal", pty.Term, "size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		session, err := game.New(game.Deps{
			Catalog:  gs.catalog,
			Profiles: profiles,
			Ranking:  gs.ranking,
			Logger:   logger,
		})
		if err != nil {
			logger.Error("failed to create session", "err", err)
			fmt.Fprintln(sess, "Error: could not start the game.")
			return
		}

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		client := loop.NewClient(session, bufio.NewReader(sess), sess, loop.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Inactivity:   true,
			Logger:       logger,
		})
		if err := client.Run(gs.ctx); err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended")
		next(sess)
	}
}

// register counts a new session unless the server is shutting down.
func (gs *gameServer) register() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.ctx.Err() != nil {
		return false
	}
	gs.sessions.Add(1)
	return true
}

// stop signals every session to wind down. No session registers afterwards.
func (gs *gameServer) stop() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.cancel()
}

// claimProfile opens the profile store of user. A user plays one session at
// a time; the returned func frees the profile when the session ends.
func (gs *gameServer) claimProfile(user string) (storage.ProfileStore, func(), error) {
	key := storage.ProfileKey(user)
	release, ok := gs.locks.Acquire(key)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", errProfileInUse, key)
	}
	return storage.OpenProfiles(gs.manager, key), release, nil
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
