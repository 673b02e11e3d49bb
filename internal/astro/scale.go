package astro

import (
	"math"
	"strings"
)

// ScaleMode defines how physical distances are mapped to scene space.
type ScaleMode int

const (
	// ScaleExaggerated compresses distances with a concave power law so the
	// inner planets stay apart while Neptune still fits on screen.
	ScaleExaggerated ScaleMode = iota

	// ScaleRealistic maps 1 AU to 1 scene unit.
	ScaleRealistic
)

// Exaggerated power-law parameters: 2 + AU^0.55 * 4.
const (
	exaggeratedOffset   = 2.0
	exaggeratedExponent = 0.55
	exaggeratedFactor   = 4.0
)

// EarthRadiusKm is the reference radius for exaggerated body sizes.
const EarthRadiusKm = 6371.0

// String returns the scale mode name.
func (m ScaleMode) String() string {
	switch m {
	case ScaleExaggerated:
		return "exaggerated"
	case ScaleRealistic:
		return "realistic"
	default:
		return "unknown"
	}
}

// Toggle returns the other scale mode.
func (m ScaleMode) Toggle() ScaleMode {
	if m == ScaleRealistic {
		return ScaleExaggerated
	}
	return ScaleRealistic
}

// ParseScaleMode parses a scale mode name. Unknown names fall back to
// exaggerated, the default display.
func ParseScaleMode(s string) ScaleMode {
	switch strings.ToLower(s) {
	case "realistic", "real", "r":
		return ScaleRealistic
	default:
		return ScaleExaggerated
	}
}

// SceneDistance converts a distance in AU to scene units.
// Both modes are strictly increasing for au >= 0; negative input is
// treated as zero in exaggerated mode.
func SceneDistance(au float64, mode ScaleMode) float64 {
	if mode == ScaleRealistic {
		return au
	}
	if au < 0 {
		au = 0
	}
	return exaggeratedOffset + math.Pow(au, exaggeratedExponent)*exaggeratedFactor
}

// SceneDistanceMkm converts a distance in million km to scene units.
func SceneDistanceMkm(mkm float64, mode ScaleMode) float64 {
	return SceneDistance(MkmToAU(mkm), mode)
}

// ScalePosition remaps the radial distance of a heliocentric position (AU)
// into scene units, keeping its direction.
func ScalePosition(v Vec3, mode ScaleMode) Vec3 {
	r := v.Norm()
	if r < 1e-12 {
		if mode == ScaleRealistic {
			return Vec3{}
		}
		// Exaggerated mode has a non-zero floor; keep the direction undefined.
		return Vec3{X: SceneDistance(0, mode)}
	}
	return v.Scale(SceneDistance(r, mode) / r)
}

// ExaggeratedRadius returns a visible body radius that grows
// logarithmically with the physical radius.
func ExaggeratedRadius(radiusKm float64) float64 {
	ratio := radiusKm / EarthRadiusKm
	if ratio < 0 {
		ratio = 0
	}
	return 0.06 + math.Log1p(ratio)*0.08
}

// RealisticRadius returns the physical radius in AU, magnified 100x so
// bodies are not sub-pixel.
func RealisticRadius(radiusKm float64) float64 {
	return KmToAU(radiusKm) * 100
}

// BodyRadius returns the display radius of a body for the given mode.
func BodyRadius(radiusKm float64, mode ScaleMode) float64 {
	if mode == ScaleRealistic {
		return RealisticRadius(radiusKm)
	}
	return ExaggeratedRadius(radiusKm)
}
