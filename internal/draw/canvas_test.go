package draw

import (
	"bytes"
	"strings"
	"testing"
)

// newTestCanvas maps 100x100 logical units onto 10x5 cells (10x10 pixels).
func newTestCanvas() *Canvas {
	return NewScaledCanvas(10, 5, 100, 100)
}

func TestFillRect(t *testing.T) {
	c := newTestCanvas()
	c.SetColor(ColorGreen)
	c.FillRect(0, 0, 50, 50)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			want := ColorNone
			if x < 5 && y < 5 {
				want = ColorGreen
			}
			if got := c.pixels[y*10+x]; got != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestFillCircleNeverEmpty(t *testing.T) {
	c := newTestCanvas()
	c.SetColor(ColorYellow)
	c.FillCircle(55, 55, 0.1)
	if c.pixels[5*10+5] != ColorYellow {
		t.Fatal("a sub-pixel circle should still set its center pixel")
	}
}

func TestRenderOnlyChangedCells(t *testing.T) {
	c := newTestCanvas()
	var buf bytes.Buffer

	c.Render(&buf)
	if buf.Len() == 0 {
		t.Fatal("first render should draw every cell")
	}

	buf.Reset()
	c.Render(&buf)
	if buf.Len() != 0 {
		t.Fatalf("unchanged frame should write nothing, wrote %q", buf.String())
	}

	c.MarkTextDirty(1, 1, 3)
	buf.Reset()
	c.Render(&buf)
	if got, want := buf.String(), "\033[1;1H   "; got != want {
		t.Fatalf("dirty cells: got %q, want %q", got, want)
	}
}

func TestRenderHalfBlockColors(t *testing.T) {
	c := newTestCanvas()
	var buf bytes.Buffer
	c.Render(&buf)

	c.SetColor(ColorRed)
	c.FillRect(0, 0, 10, 10) // Top pixel of the first cell only
	buf.Reset()
	c.Render(&buf)

	out := buf.String()
	if !strings.Contains(out, fg(ColorRed)+string(BlockUpperHalf)) {
		t.Fatalf("expected a red upper half block, got %q", out)
	}
	if !strings.HasSuffix(out, ColorReset) {
		t.Fatal("render should reset colors at the end")
	}
}

func TestOverlayIsErasedNextFrame(t *testing.T) {
	c := newTestCanvas()
	var screen bytes.Buffer
	cw := NewChunkWriter(&screen, 0, 0)
	c.Render(cw)
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}

	c.Overlay(cw, 3, 2, "ab\ncd")
	screen.Reset()
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(screen.String(), "\033[2;3Hab") {
		t.Fatalf("overlay not written at its position: %q", screen.String())
	}

	var buf bytes.Buffer
	c.Render(&buf)
	if got, want := buf.String(), "\033[2;3H  \033[3;3H  "; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFitTerminal(t *testing.T) {
	tests := []struct {
		name                   string
		termW, termH           int
		wantW, wantH, col, row int
	}{
		{"fits", 80, 24, 80, 24, 0, 0},
		{"too wide", 240, 50, 200, 50, 20, 0},
		{"too tall", 100, 80, 100, 60, 0, 10},
		{"both", 301, 71, 200, 60, 50, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, col, row := FitTerminal(tt.termW, tt.termH, 200, 60)
			if w != tt.wantW || h != tt.wantH || col != tt.col || row != tt.row {
				t.Fatalf("got %dx%d +%d+%d, want %dx%d +%d+%d", w, h, col, row, tt.wantW, tt.wantH, tt.col, tt.row)
			}
		})
	}
}
