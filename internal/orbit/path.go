package orbit

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// DefaultSegments is the outline resolution used when none is given.
const DefaultSegments = 128

// Path samples the closed orbit outline. It returns segments+1 points with
// true anomaly uniform over [0, 2π], so the last point repeats the first.
func Path(a, e, incDeg float64, segments int) []astro.Vec3 {
	if segments <= 0 {
		segments = DefaultSegments
	}
	e = ClampEccentricity(e)
	sinI, cosI := math.Sincos(astro.DegToRad(incDeg))

	pts := make([]astro.Vec3, segments+1)
	for i := range pts {
		v := 2 * math.Pi * float64(i) / float64(segments)
		r := Radius(a, e, v)
		sinV, cosV := math.Sincos(v)
		pts[i] = astro.Vec3{
			X: r * cosV,
			Y: r * sinV * cosI,
			Z: r * sinV * sinI,
		}
	}
	return pts
}

// Path samples the outline of these elements.
func (el Elements) Path(segments int) []astro.Vec3 {
	return Path(el.SemiMajorAxis, el.Eccentricity, el.InclinationDeg, segments)
}
