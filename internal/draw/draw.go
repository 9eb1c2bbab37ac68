// Package draw renders to ANSI terminals: a scaled half-block canvas, a
// chunked writer for network output and bordered text panels.
package draw

import "strconv"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a canvas pixel color. The zero value is an empty pixel.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGray
	ColorRed
	ColorOrange
	ColorYellow
	ColorGreen
	ColorCyan
	ColorBlue
	ColorMagenta
	ColorBrown
	colorCount
)

// ansi256 maps a Color to its xterm-256 palette index.
var ansi256 = [colorCount]int{
	ColorWhite:   255,
	ColorGray:    244,
	ColorRed:     196,
	ColorOrange:  208,
	ColorYellow:  226,
	ColorGreen:   46,
	ColorCyan:    51,
	ColorBlue:    33,
	ColorMagenta: 201,
	ColorBrown:   94,
}

// ColorReset restores the default terminal colors.
const ColorReset = "\033[0m"

// fg returns the escape sequence selecting c as foreground color.
func fg(c Color) string {
	return "\033[38;5;" + strconv.Itoa(ansi256[c]) + "m"
}

// bg returns the escape sequence selecting c as background color.
func bg(c Color) string {
	return "\033[48;5;" + strconv.Itoa(ansi256[c]) + "m"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
