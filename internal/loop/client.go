// Package loop runs a game session in a terminal: the Input → Update → Draw
// frame loop, the screens and the HUD.
package loop

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/draw"
	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/input"
)

// Client handles rendering and input for a single terminal.
type Client struct {
	session      *game.Session
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	styles       *draw.Styles
	writer       io.Writer
	inputStream  *input.Stream
	username     string
	termSizeFunc draw.TermSizeFunc
	inactivity   bool
	logger       *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Inactivity   bool // Warn and disconnect idle users
	Logger       *log.Logger
}

// NewClient creates a client that plays session on the terminal behind r and w.
func NewClient(session *game.Session, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	username := opts.Username
	if len(username) > config.MaxUsernameLength {
		username = username[:config.MaxUsernameLength]
	}

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := draw.FitTerminal(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.StageWidth, config.StageHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		session:      session,
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		styles:       draw.NewStyles(w),
		writer:       w,
		inputStream:  input.StartStream(r),
		username:     username,
		termSizeFunc: termSizeFunc,
		inactivity:   opts.Inactivity,
		logger:       logger,
	}
}

// Run starts the client loop. It blocks until the user quits, goes idle for
// too long or ctx is cancelled and the shutdown notice has been shown.
func (c *Client) Run(ctx context.Context) error {
	draw.EnterScreen(c.writer)
	defer draw.LeaveScreen(c.writer)

	c.refreshShop()
	c.state.Snapshot = c.session.Snapshot()
	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		if ctx.Err() != nil && !c.state.shuttingDown {
			c.beginShutdown()
		}

		c.processInput()
		c.updateScreen()
		c.update()

		if err := c.drawFrame(); err != nil {
			c.session.SaveProfile()
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.TargetFrameTime {
			time.Sleep(config.TargetFrameTime - elapsed)
		}
	}

	c.session.SaveProfile()
	return nil
}

// processInput reads the keys of this frame and tracks inactivity.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	idle := time.Since(c.state.lastInput).Seconds()
	switch {
	case c.state.Input.Any():
		c.state.lastInput = time.Now()
		c.state.isInactive = false
	case c.inactivity && idle > config.InactivityDisconnectUser:
		c.logger.Info("disconnecting idle user", "user", c.username)
		c.state.Running = false
	case c.inactivity && idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}

	if c.state.Input.Quit {
		c.state.Running = false
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := draw.FitTerminal(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		c.chunkWriter.ClearScreen()
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// beginShutdown pauses a running game and starts the disconnect countdown.
func (c *Client) beginShutdown() {
	c.state.shuttingDown = true
	c.state.shutdownTimer = config.ShutdownNotice
	if c.session.State() == game.StatePlaying {
		c.session.TogglePause()
	}
	c.session.SaveProfile()
}

// refreshShop reloads the armory listing, applying pending unlocks.
func (c *Client) refreshShop() {
	entries, err := c.session.OpenArmory()
	if err != nil {
		return
	}
	c.state.shop = entries
	c.state.shopIndex = min(c.state.shopIndex, max(0, len(entries)-1))
}
