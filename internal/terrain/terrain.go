// Package terrain lays out the static platforms of the stage.
package terrain

import (
	"github.com/tomz197/soulstaff/internal/config"
	"github.com/tomz197/soulstaff/internal/physics"
)

// Layout is a generated set of platforms for one stage size.
type Layout struct {
	Width, Height float64
	Ground        physics.Rect
	Steps         []physics.Rect // Left staircase first, then its mirror
	Center        physics.Rect
}

// Generate builds the layout for a width x height stage: a ground strip,
// mirrored staircases rising from both walls, and a center platform. No
// platform top rises above the cutoff line.
func Generate(width, height float64) Layout {
	groundTop := height - config.GroundHeight
	cutoff := height * config.TerrainCutoffRatio
	gapEdge := width/2 - config.CenterWidth/2 - config.CenterGap

	l := Layout{
		Width:  width,
		Height: height,
		Ground: physics.Rect{X: 0, Y: groundTop, W: width, H: config.GroundHeight},
	}

	var left []physics.Rect
	for i := 1; ; i++ {
		top := groundTop - float64(i)*config.StepRise
		x := float64(i-1) * config.StepWidth
		if top < cutoff || x+config.StepWidth > gapEdge {
			break
		}
		left = append(left, physics.Rect{X: x, Y: top, W: config.StepWidth, H: config.PlatformThickness})
	}
	l.Steps = append(l.Steps, left...)
	for _, s := range left {
		l.Steps = append(l.Steps, physics.Rect{X: width - s.X - s.W, Y: s.Y, W: s.W, H: s.H})
	}

	centerTop := max(cutoff, groundTop-config.CenterRiseSteps*config.StepRise)
	l.Center = physics.Rect{
		X: width/2 - config.CenterWidth/2,
		Y: centerTop,
		W: config.CenterWidth,
		H: config.PlatformThickness,
	}
	return l
}

// Platforms returns every surface actors can stand on, the ground excluded.
// The ground is the stage floor, which actors reach through the bounds.
func (l Layout) Platforms() []physics.Rect {
	out := make([]physics.Rect, 0, len(l.Steps)+1)
	out = append(out, l.Steps...)
	return append(out, l.Center)
}

// Bounds returns the playable area above the ground.
func (l Layout) Bounds() physics.Rect {
	return physics.Rect{W: l.Width, H: l.Ground.Y}
}

// Rects returns every rectangle to draw, the ground included.
func (l Layout) Rects() []physics.Rect {
	return append([]physics.Rect{l.Ground}, l.Platforms()...)
}
