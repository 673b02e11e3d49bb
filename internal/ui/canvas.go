package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// layer orders what may overwrite what on the canvas. A cell only accepts a
// glyph from the same or a higher layer.
type layer int

const (
	layerEmpty layer = iota
	layerWell
	layerStar
	layerBelt
	layerOrbit
	layerArc
	layerTail
	layerBody
	layerLabel
)

// ink is the style of one cell. It is comparable so runs of equal ink can
// be rendered in one lipgloss call.
type ink struct {
	fg   string
	bold bool
}

type cell struct {
	ch rune
	ink
	z layer
}

// canvas is a fixed-size grid of styled terminal cells.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: max(w, 0), h: max(h, 0)}
	c.cells = make([]cell, c.w*c.h)
	for i := range c.cells {
		c.cells[i].ch = ' '
	}
	return c
}

func (c *canvas) in(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

func (c *canvas) at(x, y int) cell {
	if !c.in(x, y) {
		return cell{ch: ' '}
	}
	return c.cells[y*c.w+x]
}

// set writes a glyph if (x, y) is on the canvas and z is at least the
// cell's current layer.
func (c *canvas) set(x, y int, ch rune, z layer, k ink) bool {
	if !c.in(x, y) {
		return false
	}
	p := &c.cells[y*c.w+x]
	if z < p.z {
		return false
	}
	*p = cell{ch: ch, ink: k, z: z}
	return true
}

// label writes s starting at (x, y) on the label layer, clipped to the
// canvas. Cells holding a body are skipped.
func (c *canvas) label(x, y int, s string, k ink) {
	for i, r := range []rune(s) {
		if c.at(x+i, y).z < layerBody {
			c.set(x+i, y, r, layerLabel, k)
		}
	}
}

// line draws a Bresenham segment between two cells.
func (c *canvas) line(x0, y0, x1, y1 int, ch rune, z layer, k ink) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	// Segments entirely off one side, or reaching far off canvas at high
	// zoom, are skipped.
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
		(x0 >= c.w && x1 >= c.w) || (y0 >= c.h && y1 >= c.h) {
		return
	}
	if lim := 4 * (c.w + c.h); dx > lim || -dy > lim {
		return
	}
	e := dx + dy
	for steps := 0; steps <= dx-dy; steps++ {
		c.set(x0, y0, ch, z, k)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// String renders the canvas, one lipgloss call per run of equal ink.
func (c *canvas) String() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		row := c.cells[y*c.w : (y+1)*c.w]
		cur := ink{}
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur.fg == "" && !cur.bold {
				b.WriteString(run.String())
			} else {
				st := lipgloss.NewStyle().Bold(cur.bold)
				if cur.fg != "" {
					st = st.Foreground(lipgloss.Color(cur.fg))
				}
				b.WriteString(st.Render(run.String()))
			}
			run.Reset()
		}
		for _, p := range row {
			k := p.ink
			if p.ch == ' ' {
				k = ink{}
			}
			if k != cur {
				flush()
				cur = k
			}
			run.WriteRune(p.ch)
		}
		flush()
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// plain returns the glyphs without styling.
func (c *canvas) plain() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		for _, p := range c.cells[y*c.w : (y+1)*c.w] {
			b.WriteRune(p.ch)
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// round converts a screen coordinate, mapping non-finite values far off
// canvas.
func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1<<20 {
		return -1 << 20
	}
	return int(math.Round(v))
}
