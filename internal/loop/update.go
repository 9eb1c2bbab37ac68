package loop

import (
	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/input"
	"github.com/tomz197/soulstaff/internal/progression"
)

// update applies this frame's keys to the session and steps it.
func (c *Client) update() {
	in := c.state.Input

	if c.state.shuttingDown {
		c.state.shutdownTimer -= c.state.delta
		if c.state.shutdownTimer <= 0 {
			c.state.Running = false
		}
		c.session.Update(c.state.delta, game.Input{})
		c.state.Snapshot = c.session.Snapshot()
		return
	}

	if in.Mute {
		settings := c.session.Profile().Settings
		c.session.SetSound(!settings.SoundEnabled, settings.SoundVolume)
	}

	var frame game.Input
	switch c.session.State() {
	case game.StateMenu:
		c.updateMenu(in)
	case game.StatePlaying:
		frame = c.updatePlaying(in)
	case game.StatePaused:
		frame.PauseToggled = in.Pause
		if in.Enter {
			c.toMenu()
		}
	case game.StateGameOver:
		switch {
		case in.Enter:
			c.restart()
		case in.Backspace:
			c.toMenu()
		}
	}

	c.session.Update(c.state.delta, frame)
	c.state.Snapshot = c.session.Snapshot()
}

// updateMenu moves the armory cursor, runs shop actions and starts a run.
func (c *Client) updateMenu(in input.Input) {
	if n := len(c.state.shop); n > 0 {
		switch {
		case in.Up:
			c.state.shopIndex = (c.state.shopIndex + n - 1) % n
		case in.Down:
			c.state.shopIndex = (c.state.shopIndex + 1) % n
		}
	}

	if entry, ok := c.state.selected(); ok {
		var err error
		switch {
		case in.Buy:
			err = c.session.Buy(entry.Item.ID)
		case in.Equip && entry.Status == progression.ItemEquipped:
			err = c.session.Unequip(entry.Item.Slot)
		case in.Equip:
			err = c.session.Equip(entry.Item.ID)
		case in.Unequip:
			err = c.session.Unequip(entry.Item.Slot)
		}
		if err != nil {
			c.logger.Debug("shop action rejected", "user", c.username, "item", entry.Item.ID, "err", err)
		}
		if in.Buy || in.Equip || in.Unequip {
			c.state.shop = c.session.Shop()
		}
	}

	if in.Enter || (in.Jump && !in.Up) {
		c.start()
	}
}

// updatePlaying maps keys to the frame input. While a card offer is open the
// number keys pick a card and backspace skips it.
func (c *Client) updatePlaying(in input.Input) game.Input {
	if in.Fire {
		c.state.AutoFire = !c.state.AutoFire
	}

	if c.session.OfferOpen() {
		switch {
		case in.Number > 0:
			_ = c.session.ChooseCard(in.Number - 1)
		case in.Backspace:
			_ = c.session.SkipCard()
		}
		return game.Input{PauseToggled: in.Pause}
	}

	return game.Input{
		MoveLeft:      in.Left,
		MoveRight:     in.Right,
		JumpRequested: in.Jump,
		Aim:           c.state.Snapshot.AutoAim(),
		Firing:        c.state.AutoFire,
		PauseToggled:  in.Pause,
	}
}

func (c *Client) start() {
	input.ResetKeyInput(c.inputStream)
	if err := c.session.Start(c.username); err != nil {
		c.logger.Warn("could not start run", "user", c.username, "err", err)
	}
}

func (c *Client) restart() {
	input.ResetKeyInput(c.inputStream)
	c.session.Restart()
}

func (c *Client) toMenu() {
	input.ResetKeyInput(c.inputStream)
	c.session.ReturnToMenu()
	c.refreshShop()
}
