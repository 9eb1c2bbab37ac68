// Package desktop runs a game session in an ebiten window with mouse aiming.
package desktop

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/physics"
	"github.com/tomz197/soulstaff/internal/progression"
)

var cardKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// Game adapts a session to ebiten.Game. The layout is fixed to the stage,
// so cursor positions are stage coordinates.
type Game struct {
	session   *game.Session
	snapshot  game.Snapshot
	name      string
	shop      []progression.ShopEntry
	shopIndex int
	logger    *log.Logger
}

// New creates a window frontend for session. name is used for the ranking.
func New(session *game.Session, name string, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	g := &Game{session: session, name: name, logger: logger}
	g.refreshShop()
	g.snapshot = session.Snapshot()
	return g
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.StageWidth, config.StageHeight
}

// Update implements ebiten.Game. It runs once per tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.session.SaveProfile()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		settings := g.session.Profile().Settings
		g.session.SetSound(!settings.SoundEnabled, settings.SoundVolume)
	}

	var frame game.Input
	switch g.session.State() {
	case game.StateMenu:
		g.updateMenu()
	case game.StatePlaying:
		frame = g.updatePlaying()
	case game.StatePaused:
		frame.PauseToggled = pausePressed()
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.toMenu()
		}
	case game.StateGameOver:
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
			g.session.Restart()
		case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
			g.toMenu()
		}
	}

	g.session.Update(time.Second/time.Duration(ebiten.TPS()), frame)
	g.snapshot = g.session.Snapshot()
	return nil
}

func (g *Game) updateMenu() {
	if n := len(g.shop); n > 0 {
		switch {
		case justPressed(ebiten.KeyW, ebiten.KeyArrowUp):
			g.shopIndex = (g.shopIndex + n - 1) % n
		case justPressed(ebiten.KeyS, ebiten.KeyArrowDown):
			g.shopIndex = (g.shopIndex + 1) % n
		}

		entry := g.shop[g.shopIndex]
		acted := true
		var err error
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyB):
			err = g.session.Buy(entry.Item.ID)
		case inpututil.IsKeyJustPressed(ebiten.KeyE) && entry.Status == progression.ItemEquipped:
			err = g.session.Unequip(entry.Item.Slot)
		case inpututil.IsKeyJustPressed(ebiten.KeyE):
			err = g.session.Equip(entry.Item.ID)
		case inpututil.IsKeyJustPressed(ebiten.KeyU):
			err = g.session.Unequip(entry.Item.Slot)
		default:
			acted = false
		}
		if err != nil {
			g.logger.Debug("shop action rejected", "item", entry.Item.ID, "err", err)
		}
		if acted {
			g.shop = g.session.Shop()
		}
	}

	if justPressed(ebiten.KeyEnter, ebiten.KeySpace) {
		if err := g.session.Start(g.name); err != nil {
			g.logger.Warn("could not start run", "err", err)
		}
	}
}

// updatePlaying reads movement from the keyboard and aim from the mouse.
func (g *Game) updatePlaying() game.Input {
	if g.session.OfferOpen() {
		for i, k := range cardKeys {
			if inpututil.IsKeyJustPressed(k) {
				_ = g.session.ChooseCard(i)
				break
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			_ = g.session.SkipCard()
		}
		return game.Input{PauseToggled: pausePressed()}
	}

	mx, my := ebiten.CursorPosition()
	return game.Input{
		MoveLeft:      ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		MoveRight:     ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		JumpRequested: justPressed(ebiten.KeyW, ebiten.KeySpace, ebiten.KeyArrowUp),
		Aim:           physics.Vec2{X: float64(mx), Y: float64(my)},
		Firing:        ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		PauseToggled:  pausePressed(),
	}
}

func (g *Game) toMenu() {
	g.session.ReturnToMenu()
	g.refreshShop()
}

func (g *Game) refreshShop() {
	entries, err := g.session.OpenArmory()
	if err != nil {
		return
	}
	g.shop = entries
	g.shopIndex = min(g.shopIndex, max(0, len(entries)-1))
}

func pausePressed() bool {
	return justPressed(ebiten.KeyP, ebiten.KeyEscape)
}

func justPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}
