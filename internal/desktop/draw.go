package desktop

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/game"
	"github.com/tomz197/soulstaff/internal/object"
	"github.com/tomz197/soulstaff/internal/progression"
	"golang.org/x/image/font/basicfont"
)

const lineHeight = 16

var (
	colorSky      = color.RGBA{18, 16, 30, 255}
	colorGround   = color.RGBA{92, 64, 40, 255}
	colorPlatform = color.RGBA{110, 110, 130, 255}
	colorPlayer   = color.RGBA{80, 220, 255, 255}
	colorStaff    = color.RGBA{255, 160, 60, 255}
	colorBarrier  = color.RGBA{80, 140, 255, 255}
	colorOrbital  = color.RGBA{220, 100, 255, 255}
	colorOrb      = color.RGBA{200, 90, 255, 255}
	colorShot     = color.RGBA{255, 255, 255, 255}
	colorCrit     = color.RGBA{255, 230, 60, 255}
	colorHostile  = color.RGBA{255, 70, 70, 255}
	colorSlowed   = color.RGBA{90, 150, 255, 255}
	colorDying    = color.RGBA{150, 150, 150, 255}
	colorHealth   = color.RGBA{220, 40, 40, 255}
	colorExp      = color.RGBA{60, 220, 240, 255}
	colorBarBack  = color.RGBA{40, 40, 50, 255}
	colorPanel    = color.RGBA{10, 8, 20, 220}
	colorBorder   = color.RGBA{150, 110, 255, 255}
	colorText     = color.RGBA{235, 235, 235, 255}
	colorDim      = color.RGBA{140, 140, 150, 255}
	colorAccent   = color.RGBA{255, 150, 230, 255}
	colorSelected = color.RGBA{255, 230, 60, 255}
)

var enemyColors = map[string]color.RGBA{
	"basic":  {230, 60, 60, 255},
	"fast":   {255, 150, 40, 255},
	"heavy":  {190, 70, 200, 255},
	"sniper": {240, 220, 60, 255},
}

var particleColors = [...]color.RGBA{
	object.ParticleDebris: {170, 170, 170, 255},
	object.ParticleSpark:  {255, 230, 80, 255},
	object.ParticleBlood:  {220, 30, 30, 255},
	object.ParticleSoul:   {210, 110, 255, 255},
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	snap := &g.snapshot
	screen.Fill(colorSky)
	drawWorld(screen, snap)

	switch snap.State {
	case game.StateMenu:
		g.drawMenu(screen, snap)
	case game.StatePlaying:
		drawHUD(screen, snap)
		if len(snap.Offer) > 0 {
			drawOffer(screen, snap)
		}
	case game.StatePaused:
		drawHUD(screen, snap)
		drawPanel(screen, "PAUSED", []line{
			{"P / Esc   resume", colorText},
			{"Enter     abandon run", colorText},
			{"Q         quit", colorText},
		})
	case game.StateGameOver:
		drawGameOver(screen, snap)
	}

	for i, msg := range snap.Notifications {
		w := len(msg) * 7
		drawText(screen, msg, config.StageWidth-w-12, 48+i*lineHeight, colorAccent)
	}
}

func drawWorld(screen *ebiten.Image, snap *game.Snapshot) {
	fillRect(screen, snap.Ground.X, snap.Ground.Y, snap.Ground.W, snap.Ground.H, colorGround)
	for _, p := range snap.Platforms {
		fillRect(screen, p.X, p.Y, p.W, p.H, colorPlatform)
	}

	for _, o := range snap.Orbs {
		fillCircle(screen, o.X, o.Y, config.OrbRadius, colorOrb)
	}

	for _, e := range snap.Enemies {
		if e.Dying {
			c := withAlpha(colorDying, 1-e.DyingProgress)
			vector.StrokeCircle(screen, float32(e.X), float32(e.Y), float32(e.Radius*(1-e.DyingProgress)+1), 2, c, true)
			continue
		}
		c, ok := enemyColors[e.Kind]
		if !ok {
			c = colorHostile
		}
		if e.Slowed {
			c = colorSlowed
		}
		fillCircle(screen, e.X, e.Y, e.Radius, c)
		if e.Health < e.MaxHealth && e.MaxHealth > 0 {
			w := e.Radius * 2
			fillRect(screen, e.X-e.Radius, e.Y-e.Radius-6, w, 3, colorBarBack)
			fillRect(screen, e.X-e.Radius, e.Y-e.Radius-6, w*e.Health/e.MaxHealth, 3, colorHealth)
		}
	}

	for _, pr := range snap.Projectiles {
		c := colorShot
		switch {
		case pr.Owner == object.TeamEnemy:
			c = colorHostile
		case pr.Crit:
			c = colorCrit
		}
		fillCircle(screen, pr.X, pr.Y, pr.Radius, c)
	}

	if p := snap.Player; p != nil && playerVisible(p, snap) {
		fillCircle(screen, p.X, p.Y, p.Radius, colorPlayer)
		vector.StrokeLine(screen, float32(p.X), float32(p.Y),
			float32(p.X+p.Facing*p.Radius*1.8), float32(p.Y-p.Radius), 3, colorStaff, true)
		if p.Barrier {
			vector.StrokeCircle(screen, float32(p.X), float32(p.Y), float32(p.Radius+6), 2, colorBarrier, true)
		}
		for _, o := range p.Orbitals {
			fillCircle(screen, o.X, o.Y, config.OrbitalSize, colorOrbital)
		}
	}

	for _, pt := range snap.Particles {
		c := particleColors[object.ParticleDebris]
		if int(pt.Kind) < len(particleColors) {
			c = particleColors[pt.Kind]
		}
		fillRect(screen, pt.X-1.5, pt.Y-1.5, 3, 3, withAlpha(c, pt.Fade))
	}
}

// playerVisible blinks the player while invulnerable.
func playerVisible(p *game.PlayerView, snap *game.Snapshot) bool {
	if !p.Invulnerable {
		return true
	}
	return int(snap.Time.Seconds()*config.PlayerBlinkFreq*2)%2 == 0
}

func drawHUD(screen *ebiten.Image, snap *game.Snapshot) {
	p := snap.Player
	if p == nil {
		return
	}
	fillRect(screen, 12, 12, 200, 12, colorBarBack)
	if p.MaxHealth > 0 {
		fillRect(screen, 12, 12, 200*p.Health/p.MaxHealth, 12, colorHealth)
	}
	drawText(screen, fmt.Sprintf("%.0f / %.0f", p.Health, p.MaxHealth), 220, 22, colorText)

	fillRect(screen, 12, 30, 200, 6, colorBarBack)
	if snap.ExpToNext > 0 {
		fillRect(screen, 12, 30, 200*float64(snap.Exp)/float64(snap.ExpToNext), 6, colorExp)
	}
	drawText(screen, fmt.Sprintf("Lv %d", snap.Level), 220, 38, colorExp)

	stats := fmt.Sprintf("Score %d   %s   Kills %d   Souls %d   Tier %d",
		snap.Score, clock(snap), snap.Kills, snap.SoulOrbs, snap.Tier)
	drawText(screen, stats, config.StageWidth-len(stats)*7-12, 22, colorText)

	extras := "A/D move  W jump  mouse aim  hold LMB fire  P pause  M sound  Q quit"
	if p.Revives > 0 {
		extras += fmt.Sprintf("   revives %d", p.Revives)
	}
	drawText(screen, extras, 12, config.StageHeight-6, colorDim)
}

func drawOffer(screen *ebiten.Image, snap *game.Snapshot) {
	var lines []line
	if snap.Pending > 1 {
		lines = append(lines, line{fmt.Sprintf("%d more level-ups waiting", snap.Pending-1), colorDim}, line{})
	}
	for i, card := range snap.Offer {
		lines = append(lines,
			line{fmt.Sprintf("[%d] %s (%s)", i+1, card.Name, card.Rarity), colorSelected},
			line{card.Description, colorText},
			line{},
		)
	}
	lines = append(lines, line{fmt.Sprintf("1-%d choose   Backspace skip", len(snap.Offer)), colorDim})
	drawPanel(screen, "LEVEL UP!", lines)
}

func (g *Game) drawMenu(screen *ebiten.Image, snap *game.Snapshot) {
	lines := []line{
		{"~ survive the waves, spend your souls ~", colorDim},
		{},
		{fmt.Sprintf("Soul orbs: %d", snap.BankedOrbs), colorAccent},
	}
	if len(snap.Ranking) > 0 {
		best := snap.Ranking[0]
		lines = append(lines, line{fmt.Sprintf("Best: %d by %s", best.Score, best.Name), colorDim})
	}
	lines = append(lines, line{}, line{"Armory", colorExp})
	for i, e := range g.shop {
		cursor := "  "
		c := colorText
		switch {
		case i == g.shopIndex:
			cursor, c = "> ", colorSelected
		case e.Status == progression.ItemLocked:
			c = colorDim
		case e.Status == progression.ItemEquipped:
			c = colorExp
		}
		lines = append(lines, line{fmt.Sprintf("%s%-18s %-5s %s", cursor, e.Item.Name, e.Item.Slot, statusLabel(e)), c})
	}
	if g.shopIndex < len(g.shop) {
		lines = append(lines, line{}, line{g.shop[g.shopIndex].Item.Description, colorDim})
	}
	lines = append(lines,
		line{},
		line{"W/S select   B buy   E equip   U unequip   M sound", colorDim},
		line{"Press ENTER to start", colorSelected},
	)
	drawPanel(screen, "S O U L S T A F F", lines)
}

func drawGameOver(screen *ebiten.Image, snap *game.Snapshot) {
	var lines []line
	var seq int64 = -1
	if run := snap.LastRun; run != nil {
		seq = run.Seq
		lines = append(lines,
			line{fmt.Sprintf("Score %d", run.Score), colorSelected},
			line{fmt.Sprintf("Level %d   Time %s   Kills %d   Souls +%d",
				run.Level, formatClock(run.SurvivalTime.Seconds()), run.Kills, run.SoulOrbs), colorText},
		)
	}
	if len(snap.NewUnlocks) > 0 {
		lines = append(lines, line{}, line{"Unlocked: " + strings.Join(snap.NewUnlocks, ", "), colorExp})
	}
	if len(snap.Ranking) > 0 {
		lines = append(lines, line{}, line{"Top runs", colorExp})
		for i, r := range snap.Ranking {
			c := colorText
			if r.Seq == seq {
				c = colorSelected
			}
			lines = append(lines, line{fmt.Sprintf("%2d. %-16s %7d  lv %-3d %s",
				i+1, r.Name, r.Score, r.Level, formatClock(r.SurvivalTime.Seconds())), c})
		}
	}
	lines = append(lines, line{}, line{"ENTER play again   BACKSPACE menu", colorSelected})
	drawPanel(screen, "GAME OVER", lines)
}

type line struct {
	text  string
	color color.Color
}

// drawPanel draws a bordered box centered on the stage.
func drawPanel(screen *ebiten.Image, title string, lines []line) {
	width := len(title)
	for _, l := range lines {
		width = max(width, len(l.text))
	}
	w := float64(width*7 + 48)
	h := float64((len(lines)+2)*lineHeight + 32)
	x := (config.StageWidth - w) / 2
	y := (config.StageHeight - h) / 2

	fillRect(screen, x, y, w, h, colorPanel)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 2, colorBorder, true)

	drawText(screen, title, int(x+(w-float64(len(title)*7))/2), int(y)+28, colorExp)
	for i, l := range lines {
		if l.text == "" {
			continue
		}
		lx := x + (w-float64(len(l.text)*7))/2
		drawText(screen, l.text, int(lx), int(y)+28+(i+2)*lineHeight, l.color)
	}
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

func clock(snap *game.Snapshot) string {
	return formatClock(snap.Time.Seconds())
}

func formatClock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// drawText draws s with its baseline at y using the 7x13 bitmap font.
func drawText(img *ebiten.Image, s string, x, y int, c color.Color) {
	text.Draw(img, s, basicfont.Face7x13, x, y, c)
}

// withAlpha returns c with opacity a in [0, 1].
func withAlpha(c color.RGBA, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(255 * min(1, max(0, a)))}
}

func fillRect(img *ebiten.Image, x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	vector.DrawFilledRect(img, float32(x), float32(y), float32(w), float32(h), c, false)
}

func fillCircle(img *ebiten.Image, x, y, r float64, c color.Color) {
	vector.DrawFilledCircle(img, float32(x), float32(y), float32(r), c, true)
}
