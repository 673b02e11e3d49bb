package system

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Rubber-sheet gravity well shape. The numbers are visual, not physical.
const (
	SunWellDepth    = 4.0
	SunWellRadius   = 8.0
	PlanetWellBase  = 0.6
	defaultStrength = 0.3
)

// wellStrength is each planet's relative dip in the sheet.
var wellStrength = map[string]float64{
	"Mercury": 0.15,
	"Venus":   0.3,
	"Earth":   0.35,
	"Mars":    0.2,
	"Jupiter": 2.5,
	"Saturn":  1.8,
	"Uranus":  0.8,
	"Neptune": 0.8,
}

// WellStrength returns the visual well strength of a planet.
func WellStrength(name string) float64 {
	if s, ok := wellStrength[name]; ok {
		return s
	}
	return defaultStrength
}

// WellSource is a mass denting the sheet at scene position (X, Y).
type WellSource struct {
	X, Y     float64
	Strength float64
}

// WellSources returns the planets of a snapshot as well sources.
func WellSources(snap Snapshot) []WellSource {
	var out []WellSource
	for _, b := range snap.Bodies {
		if b.Kind != BodyPlanet {
			continue
		}
		out = append(out, WellSource{X: b.Scene.X, Y: b.Scene.Y, Strength: WellStrength(b.Name)})
	}
	return out
}

// WellDepth returns the sheet displacement at scene point (x, y). It is
// always <= 0 and is deepest, -SunWellDepth plus planet terms, at the Sun.
func WellDepth(x, y float64, sources []WellSource) float64 {
	d := -SunWellDepth / (1 + math.Hypot(x, y)/SunWellRadius)
	for _, s := range sources {
		d -= PlanetWellBase * s.Strength / (1 + 3*math.Hypot(x-s.X, y-s.Y))
	}
	return d
}

// WellGrid samples WellDepth on a cols x rows grid spanning [-extent, extent]
// on both axes. Row 0 is the top (+Y).
func WellGrid(cols, rows int, extent float64, sources []WellSource) [][]float64 {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	grid := make([][]float64, rows)
	for r := range grid {
		grid[r] = make([]float64, cols)
		y := extent - 2*extent*(float64(r)+0.5)/float64(rows)
		for c := range grid[r] {
			x := -extent + 2*extent*(float64(c)+0.5)/float64(cols)
			grid[r][c] = WellDepth(x, y, sources)
		}
	}
	return grid
}

// SceneExtent returns the half-width needed to show every planet orbit.
func SceneExtent(mode astro.ScaleMode) float64 {
	return astro.SceneDistance(30.5, mode)
}
