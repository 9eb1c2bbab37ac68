package draw

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are the lipgloss styles used for text drawn over the canvas.
// They are bound to one output so every SSH session renders with its own
// color profile.
type Styles struct {
	renderer *lipgloss.Renderer

	Panel    lipgloss.Style
	Title    lipgloss.Style
	Text     lipgloss.Style
	Dim      lipgloss.Style
	Accent   lipgloss.Style
	Warn     lipgloss.Style
	Good     lipgloss.Style
	Selected lipgloss.Style
}

// NewStyles creates styles rendering to w with 256 colors.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)

	return &Styles{
		renderer: r,
		Panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 2),
		Title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
		Text:     r.NewStyle().Foreground(lipgloss.Color("255")),
		Dim:      r.NewStyle().Foreground(lipgloss.Color("244")),
		Accent:   r.NewStyle().Foreground(lipgloss.Color("213")),
		Warn:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Good:     r.NewStyle().Foreground(lipgloss.Color("46")),
		Selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("226")),
	}
}

// Box renders a bordered panel with a title line above the body lines.
func (s *Styles) Box(title string, lines ...string) string {
	parts := make([]string, 0, len(lines)+2)
	if title != "" {
		parts = append(parts, s.Title.Render(title), "")
	}
	parts = append(parts, lines...)
	return s.Panel.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

// Bar renders a horizontal meter of width cells filled to ratio.
func (s *Styles) Bar(width int, ratio float64, fill lipgloss.Color) string {
	ratio = min(1, max(0, ratio))
	full := int(ratio * float64(width))
	return s.renderer.NewStyle().Foreground(fill).Render(strings.Repeat("█", full)) +
		s.Dim.Render(strings.Repeat("░", width-full))
}

// BlockSize returns the display width and height of a rendered block.
func BlockSize(block string) (width, height int) {
	return lipgloss.Width(block), lipgloss.Height(block)
}

// Overlay writes a rendered block at the 1-based canvas position (col, row)
// and marks the covered cells dirty, so the canvas erases the block once it
// is no longer drawn. Rows outside the canvas are skipped.
func (c *Canvas) Overlay(cw *ChunkWriter, col, row int, block string) {
	col = max(1, col)
	for i, line := range strings.Split(block, "\n") {
		r := row + i
		if r < 1 || r > c.termHeight {
			continue
		}
		cw.WriteAt(col, r, line+ColorReset)
		c.MarkTextDirty(col, r, lipgloss.Width(line))
	}
}

// OverlayCentered writes a block centered on the canvas.
func (c *Canvas) OverlayCentered(cw *ChunkWriter, block string) {
	w, h := BlockSize(block)
	c.Overlay(cw, (c.termWidth-w)/2+1, (c.termHeight-h)/2+1, block)
}
