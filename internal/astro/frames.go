// Package astro provides vector math, unit conversions and the scene scale
// mapping shared by the orbit core and the renderers.
package astro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// MkmPerAU is the number of million kilometers in one AU as used by the
// body catalogue (mean distances are quoted in million km).
const MkmPerAU = 149.6

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) r3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func fromR3(v r3.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return r3.Norm(v.r3())
}

// Normalized returns a unit vector in the same direction.
// The zero vector normalizes to itself.
func (v Vec3) Normalized() Vec3 {
	if v.Norm() == 0 {
		return Vec3{}
	}
	return fromR3(r3.Unit(v.r3()))
}

// Dot returns the scalar product of two vectors.
func (v Vec3) Dot(u Vec3) float64 {
	return r3.Dot(v.r3(), u.r3())
}

// Cross returns the vector product v × u.
func (v Vec3) Cross(u Vec3) Vec3 {
	return fromR3(r3.Cross(v.r3(), u.r3()))
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return fromR3(r3.Scale(s, v.r3()))
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return fromR3(r3.Add(v.r3(), u.r3()))
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return fromR3(r3.Sub(v.r3(), u.r3()))
}

// Distance returns the Euclidean distance between two points.
func (v Vec3) Distance(u Vec3) float64 {
	return v.Sub(u).Norm()
}

// IsFinite reports whether all components are finite numbers.
func (v Vec3) IsFinite() bool {
	for _, c := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ProjectedPoint represents a 2D projected position with metadata.
type ProjectedPoint struct {
	X float64 // Screen X coordinate in scene units
	Y float64 // Screen Y coordinate in scene units
	R float64 // Original radial distance
	Z float64 // Original out-of-plane offset
}

// ProjectTopDown projects a scene vector onto the reference plane, looking
// down the +Z axis. X points right and Y points up.
func ProjectTopDown(v Vec3, zoom float64) ProjectedPoint {
	return ProjectedPoint{
		X: v.X * zoom,
		Y: v.Y * zoom,
		R: v.Norm(),
		Z: v.Z,
	}
}

// KmToAU converts kilometers to Astronomical Units.
func KmToAU(km float64) float64 {
	return km / AU
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * AU
}

// MkmToAU converts million kilometers to AU using the catalogue convention.
func MkmToAU(mkm float64) float64 {
	return mkm / MkmPerAU
}

// EclipticLatitude returns the latitude above the reference plane in degrees.
func EclipticLatitude(v Vec3) float64 {
	r := v.Norm()
	if r == 0 {
		return 0
	}
	return RadToDeg(math.Asin(v.Z / r))
}

// EclipticLongitude returns the in-plane longitude in degrees (0-360).
func EclipticLongitude(v Vec3) float64 {
	return NormalizeDeg(RadToDeg(math.Atan2(v.Y, v.X)))
}

// LightTimeFromAU returns the one-way light time for a distance in AU.
func LightTimeFromAU(au float64) float64 {
	// Light travels 1 AU in ~499.005 seconds
	return au * 499.005
}

// FormatLightTime formats light time in seconds to a human-readable string.
func FormatLightTime(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	case seconds < 3600:
		s := int(seconds)
		return fmt.Sprintf("%dm%ds", s/60, s%60)
	default:
		s := int(seconds)
		return fmt.Sprintf("%dh%dm", s/3600, (s%3600)/60)
	}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeRad wraps an angle into [0, 2π).
func NormalizeRad(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	// math.Mod of a tiny negative value can round back up to 2π.
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// NormalizeDeg wraps an angle into [0, 360).
func NormalizeDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}
