package loop

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/draw"
	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/object"
	"github.com/tomz197/soulstaff/internal/progression"
)

// shopRows is how many armory entries the menu lists at once.
const shopRows = 7

// enemyColors maps enemy kinds to canvas colors. Unknown kinds draw red.
var enemyColors = map[string]draw.Color{
	"basic":  draw.ColorRed,
	"fast":   draw.ColorOrange,
	"heavy":  draw.ColorMagenta,
	"sniper": draw.ColorYellow,
}

var particleColors = [...]draw.Color{
	object.ParticleDebris: draw.ColorGray,
	object.ParticleSpark:  draw.ColorYellow,
	object.ParticleBlood:  draw.ColorRed,
	object.ParticleSoul:   draw.ColorMagenta,
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	snap := &c.state.Snapshot

	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := snap.State != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.ClearScreen()
		c.canvas.ForceRedraw()
		c.state.prevGameState = snap.State
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()
	c.drawWorld(snap)
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI(snap)
	return c.chunkWriter.Flush()
}

// drawWorld draws terrain and every entity of the snapshot onto the canvas.
func (c *Client) drawWorld(snap *game.Snapshot) {
	cv := c.canvas

	cv.SetColor(draw.ColorBrown)
	cv.FillRect(snap.Ground.X, snap.Ground.Y, snap.Ground.W, snap.Ground.H)
	cv.SetColor(draw.ColorGreen)
	cv.FillRect(snap.Ground.X, snap.Ground.Y, snap.Ground.W, 4)
	cv.SetColor(draw.ColorGray)
	for _, p := range snap.Platforms {
		cv.FillRect(p.X, p.Y, p.W, p.H)
	}

	cv.SetColor(draw.ColorMagenta)
	for _, o := range snap.Orbs {
		cv.FillCircle(o.X, o.Y, config.OrbRadius)
	}

	for _, e := range snap.Enemies {
		if e.Dying {
			// Shrinking ring
			cv.SetColor(draw.ColorGray)
			cv.DrawCircle(e.X, e.Y, e.Radius*(1-e.DyingProgress))
			continue
		}
		color, ok := enemyColors[e.Kind]
		if !ok {
			color = draw.ColorRed
		}
		if e.Slowed {
			color = draw.ColorBlue
		}
		cv.SetColor(color)
		cv.FillCircle(e.X, e.Y, e.Radius)
	}

	for _, pr := range snap.Projectiles {
		switch {
		case pr.Owner == object.TeamEnemy:
			cv.SetColor(draw.ColorRed)
		case pr.Crit:
			cv.SetColor(draw.ColorYellow)
		default:
			cv.SetColor(draw.ColorWhite)
		}
		cv.FillCircle(pr.X, pr.Y, pr.Radius)
	}

	if p := snap.Player; p != nil && playerVisible(p, snap.Time) {
		cv.SetColor(draw.ColorCyan)
		cv.FillCircle(p.X, p.Y, p.Radius)
		c.drawHat(p)
		cv.SetColor(draw.ColorOrange)
		cv.DrawLine(draw.Point{X: p.X, Y: p.Y}, draw.Point{X: p.X + p.Facing*p.Radius*1.8, Y: p.Y - p.Radius})
		if p.Barrier {
			cv.SetColor(draw.ColorBlue)
			cv.DrawCircle(p.X, p.Y, p.Radius+6)
		}
		cv.SetColor(draw.ColorMagenta)
		for _, o := range p.Orbitals {
			cv.FillCircle(o.X, o.Y, config.OrbitalSize)
		}
	}

	for _, pt := range snap.Particles {
		if int(pt.Kind) < len(particleColors) {
			cv.SetColor(particleColors[pt.Kind])
		}
		cv.SetFloat(pt.X, pt.Y)
	}
}

// drawHat draws the wizard hat as a filled triangle leaning to the facing side.
func (c *Client) drawHat(p *game.PlayerView) {
	hat := c.canvas.BorrowPoints(3)
	hat[0] = draw.Point{X: p.X - p.Radius*1.1, Y: p.Y - p.Radius*0.6}
	hat[1] = draw.Point{X: p.X + p.Radius*1.1, Y: p.Y - p.Radius*0.6}
	hat[2] = draw.Point{X: p.X - p.Facing*p.Radius*0.6, Y: p.Y - p.Radius*2.4}
	c.canvas.SetColor(draw.ColorBlue)
	c.canvas.DrawPolygon(hat, true)
}

// playerVisible blinks the player while invulnerable.
func playerVisible(p *game.PlayerView, t time.Duration) bool {
	if !p.Invulnerable {
		return true
	}
	return int(t.Seconds()*config.PlayerBlinkFreq*2)%2 == 0
}

// drawUI draws the text layer over the canvas.
func (c *Client) drawUI(snap *game.Snapshot) {
	if c.state.shuttingDown {
		c.drawShutdownScreen()
		return
	}
	if c.state.isInactive {
		c.drawInactivityScreen()
		return
	}

	switch snap.State {
	case game.StateMenu:
		c.drawMenuScreen(snap)
	case game.StatePlaying:
		c.drawHUD(snap)
		c.drawPlayerName(snap)
		if len(snap.Offer) > 0 {
			c.drawOfferScreen(snap)
		}
	case game.StatePaused:
		c.drawHUD(snap)
		c.drawPauseScreen()
	case game.StateGameOver:
		c.drawGameOverScreen(snap)
	}
	c.drawNotifications(snap)
}

// drawMenuScreen draws the title panel with the armory.
func (c *Client) drawMenuScreen(snap *game.Snapshot) {
	st := c.styles
	lines := []string{
		st.Dim.Render("~ survive the waves, spend your souls ~"),
		"",
		st.Accent.Render(fmt.Sprintf("Soul orbs: %d", snap.BankedOrbs)),
	}
	if len(snap.Ranking) > 0 {
		best := snap.Ranking[0]
		lines = append(lines, st.Dim.Render(fmt.Sprintf("Best: %d by %s", best.Score, best.Name)))
	}
	lines = append(lines, "", st.Title.Render("Armory"))
	lines = append(lines, c.shopLines()...)
	if entry, ok := c.state.selected(); ok {
		lines = append(lines, "", st.Dim.Render(entry.Item.Description))
	}

	lines = append(lines, "",
		st.Dim.Render("w/s select   b buy   e equip   u unequip   m sound"),
	)
	// Blinking start prompt
	prompt := ""
	if time.Now().UnixMilli()/600%2 == 0 {
		prompt = st.Selected.Render(">>  Press ENTER to Start  <<")
	}
	lines = append(lines, "", prompt)

	c.canvas.OverlayCentered(c.chunkWriter, st.Box("S O U L S T A F F", lines...))
}

// shopLines lists the armory window around the cursor.
func (c *Client) shopLines() []string {
	st := c.styles
	shop := c.state.shop
	if len(shop) == 0 {
		return []string{st.Dim.Render("nothing for sale")}
	}

	first := max(0, min(c.state.shopIndex-shopRows/2, len(shop)-shopRows))
	last := min(len(shop), first+shopRows)
	lines := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		e := shop[i]
		cursor := "  "
		if i == c.state.shopIndex {
			cursor = "> "
		}
		row := fmt.Sprintf("%s%-18s %-5s %-8s", cursor, e.Item.Name, e.Item.Slot, statusLabel(e))

		var style lipgloss.Style
		switch {
		case i == c.state.shopIndex:
			style = st.Selected
		case e.Status == progression.ItemLocked:
			style = st.Dim
		case e.Status == progression.ItemEquipped:
			style = st.Good
		default:
			style = st.Text
		}
		lines = append(lines, style.Render(row))
	}
	return lines
}

func statusLabel(e progression.ShopEntry) string {
	switch e.Status {
	case progression.ItemLocked:
		return "locked"
	case progression.ItemOwned:
		return "owned"
	case progression.ItemEquipped:
		return "worn"
	default:
		return fmt.Sprintf("%d orbs", e.Item.Cost)
	}
}

// drawHUD draws the stat line on top and the key hints at the bottom.
// Fields are fixed-width so shrinking values don't leave residual characters.
func (c *Client) drawHUD(snap *game.Snapshot) {
	p := snap.Player
	if p == nil {
		return
	}
	st := c.styles

	hpRatio, expRatio := 0.0, 0.0
	if p.MaxHealth > 0 {
		hpRatio = p.Health / p.MaxHealth
	}
	if snap.ExpToNext > 0 {
		expRatio = float64(snap.Exp) / float64(snap.ExpToNext)
	}

	top := fmt.Sprintf("%s %s %-9s  %s %s  %s",
		st.Warn.Render("HP"),
		st.Bar(10, hpRatio, lipgloss.Color("196")),
		fmt.Sprintf("%.0f/%.0f", p.Health, p.MaxHealth),
		st.Title.Render(fmt.Sprintf("Lv %-3d", snap.Level)),
		st.Bar(10, expRatio, lipgloss.Color("51")),
		st.Text.Render(fmt.Sprintf("Score %-7d %s  Kills %-4d Orbs %-4d Tier %-2d",
			snap.Score, clock(snap.Time), snap.Kills, snap.SoulOrbs, snap.Tier)),
	)
	c.canvas.Overlay(c.chunkWriter, 2, 1, top)

	fire := "off"
	if c.state.AutoFire {
		fire = "on "
	}
	extras := ""
	if p.Revives > 0 {
		extras += fmt.Sprintf("  revives %d", p.Revives)
	}
	if p.Barrier {
		extras += "  barrier"
	}
	bottom := st.Dim.Render(fmt.Sprintf("a/d move  w jump  f auto-fire: %s  p pause  m sound  q quit%s", fire, extras))
	c.canvas.Overlay(c.chunkWriter, 2, c.canvas.TerminalHeight(), bottom)
}

// drawPlayerName draws the player's name above the wizard. The cells are
// marked dirty so the canvas cleans them up once the player moves.
func (c *Client) drawPlayerName(snap *game.Snapshot) {
	p := snap.Player
	if p == nil || snap.Name == "" {
		return
	}
	col, row := c.canvas.LogicalToTerminal(p.X, p.Y-p.Radius*3)
	col -= len(snap.Name) / 2
	if row < 2 || col < 1 || col+len(snap.Name) > c.canvas.TerminalWidth() {
		return
	}
	c.canvas.Overlay(c.chunkWriter, col, row, c.styles.Dim.Render(snap.Name))
}

// drawOfferScreen draws the level-up card choice.
func (c *Client) drawOfferScreen(snap *game.Snapshot) {
	st := c.styles
	var lines []string
	if snap.Pending > 1 {
		lines = append(lines, st.Dim.Render(fmt.Sprintf("%d more level-ups waiting", snap.Pending-1)), "")
	}
	for i, card := range snap.Offer {
		lines = append(lines,
			st.Selected.Render(fmt.Sprintf("[%d] %s", i+1, card.Name))+" "+st.Dim.Render("("+string(card.Rarity)+")"),
			st.Text.Render(card.Description),
			"",
		)
	}
	lines = append(lines, st.Dim.Render(fmt.Sprintf("1-%d choose   backspace skip", len(snap.Offer))))
	c.canvas.OverlayCentered(c.chunkWriter, st.Box("LEVEL UP!", lines...))
}

func (c *Client) drawPauseScreen() {
	st := c.styles
	c.canvas.OverlayCentered(c.chunkWriter, st.Box("PAUSED",
		st.Text.Render("p / esc   resume"),
		st.Text.Render("enter     abandon run"),
		st.Text.Render("q         quit"),
	))
}

// drawGameOverScreen draws the run summary and the ranking.
func (c *Client) drawGameOverScreen(snap *game.Snapshot) {
	st := c.styles
	var lines []string
	var seq int64 = -1
	if run := snap.LastRun; run != nil {
		seq = run.Seq
		lines = append(lines,
			st.Selected.Render(fmt.Sprintf("Score %d", run.Score)),
			st.Text.Render(fmt.Sprintf("Level %d   Time %s   Kills %d   Souls +%d",
				run.Level, clock(run.SurvivalTime), run.Kills, run.SoulOrbs)),
		)
	}
	if len(snap.NewUnlocks) > 0 {
		lines = append(lines, "", st.Good.Render("Unlocked: "+strings.Join(snap.NewUnlocks, ", ")))
	}

	if len(snap.Ranking) > 0 {
		lines = append(lines, "", st.Title.Render("Top runs"))
		for i, r := range snap.Ranking {
			row := fmt.Sprintf("%2d. %-16s %7d  lv %-3d %s", i+1, r.Name, r.Score, r.Level, clock(r.SurvivalTime))
			if r.Seq == seq {
				lines = append(lines, st.Selected.Render(row))
			} else {
				lines = append(lines, st.Text.Render(row))
			}
		}
	}

	prompt := ""
	if time.Now().UnixMilli()/600%2 == 0 {
		prompt = st.Selected.Render(">>  ENTER play again   BACKSPACE menu  <<")
	}
	lines = append(lines, "", prompt)
	c.canvas.OverlayCentered(c.chunkWriter, st.Box("GAME OVER", lines...))
}

// drawNotifications stacks recent messages in the top right corner.
func (c *Client) drawNotifications(snap *game.Snapshot) {
	for i, text := range snap.Notifications {
		msg := c.styles.Accent.Render(text)
		w, _ := draw.BlockSize(msg)
		c.canvas.Overlay(c.chunkWriter, c.canvas.TerminalWidth()-w, 3+i, msg)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen() {
	st := c.styles
	left := int(config.InactivityDisconnectUser - time.Since(c.state.lastInput).Seconds())
	c.canvas.OverlayCentered(c.chunkWriter, st.Box("INACTIVITY WARNING",
		st.Text.Render(fmt.Sprintf("You will be disconnected in %d seconds.", max(0, left))),
		"",
		st.Dim.Render("Press any key to continue"),
	))
}

// drawShutdownScreen draws the server shutdown notice.
func (c *Client) drawShutdownScreen() {
	st := c.styles
	remaining := int(c.state.shutdownTimer.Seconds()) + 1
	c.canvas.OverlayCentered(c.chunkWriter, st.Box("SERVER SHUTTING DOWN",
		st.Text.Render("Your progress has been saved."),
		st.Text.Render(fmt.Sprintf("Disconnecting in %d seconds...", remaining)),
		"",
		st.Dim.Render("Press Q to disconnect now"),
	))
}

// clock formats a duration as mm:ss.
func clock(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
