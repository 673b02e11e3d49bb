package system

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Tail describes a comet's ion tail at one instant.
type Tail struct {
	Length  float64    // scene units
	Opacity float64    // 0..0.8
	Dir     astro.Vec3 // unit vector pointing away from the Sun
}

// Tail limits.
const (
	maxTailLength   = 0.8
	maxTailOpacity  = 0.8
	minTailDistance = 0.1 // AU; closer distances are treated as this
)

// CometTail sizes the tail for a comet at heliocentric position pos (AU).
// Length falls with the square of distance and opacity linearly, both capped.
func CometTail(pos astro.Vec3, mode astro.ScaleMode) Tail {
	d := math.Max(pos.Norm(), minTailDistance)
	return Tail{
		Length:  math.Min(maxTailLength, 0.15/(d*d)) * astro.SceneDistance(1, mode),
		Opacity: math.Min(maxTailOpacity, 0.3/d),
		Dir:     pos.Normalized(),
	}
}
