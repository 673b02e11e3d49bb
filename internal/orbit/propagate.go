package orbit

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Elements are the Keplerian elements used by the orrery. The ascending node
// lies on the +X axis and the argument of perihelion is zero, so the orbit is
// tilted about X by the inclination.
type Elements struct {
	SemiMajorAxis  float64 // caller units (AU for the catalogue)
	Eccentricity   float64
	InclinationDeg float64
	MeanAnomalyDeg float64 // at elapsed day 0 (J2000)
	PeriodDays     float64 // <= 0 pins the body at (a, 0, 0)
}

// State is a body's position plus the anomaly data that produced it.
type State struct {
	Pos         astro.Vec3
	MeanAnomaly float64 // radians, [0, 2π)
	Eccentric   float64 // radians
	TrueAnomaly float64 // radians
	Distance    float64 // heliocentric radius, units of a
}

// Position returns the position at elapsedDays since J2000.
func Position(a, e, incDeg, m0Deg, periodDays, elapsedDays float64) astro.Vec3 {
	return Elements{
		SemiMajorAxis:  a,
		Eccentricity:   e,
		InclinationDeg: incDeg,
		MeanAnomalyDeg: m0Deg,
		PeriodDays:     periodDays,
	}.PositionAt(elapsedDays)
}

// PositionAt returns the position at elapsedDays since J2000.
func (el Elements) PositionAt(elapsedDays float64) astro.Vec3 {
	return el.StateAt(elapsedDays).Pos
}

// MeanAnomalyAt returns the mean anomaly (radians, [0, 2π)) at elapsedDays.
// The epoch term and the motion term are wrapped separately so very large
// times do not lose the epoch offset to rounding.
func (el Elements) MeanAnomalyAt(elapsedDays float64) float64 {
	m0 := astro.NormalizeRad(astro.DegToRad(el.MeanAnomalyDeg))
	if el.PeriodDays <= 0 {
		return m0
	}
	orbits := elapsedDays / el.PeriodDays
	frac := orbits - math.Floor(orbits)
	return astro.NormalizeRad(m0 + 2*math.Pi*frac)
}

// StateAt evaluates the full orbital state at elapsedDays since J2000.
func (el Elements) StateAt(elapsedDays float64) State {
	a := el.SemiMajorAxis
	if el.PeriodDays <= 0 || math.IsNaN(el.PeriodDays) {
		return State{Pos: astro.Vec3{X: a}, Distance: math.Abs(a)}
	}
	if math.IsNaN(elapsedDays) || math.IsInf(elapsedDays, 0) {
		elapsedDays = 0
	}

	e := ClampEccentricity(el.Eccentricity)
	M := el.MeanAnomalyAt(elapsedDays)
	E := SolveKepler(M, e)
	v := TrueAnomaly(E, e)
	r := Radius(a, e, v)

	inc := astro.DegToRad(el.InclinationDeg)
	sinV, cosV := math.Sincos(v)
	sinI, cosI := math.Sincos(inc)

	return State{
		Pos: astro.Vec3{
			X: r * cosV,
			Y: r * sinV * cosI,
			Z: r * sinV * sinI,
		},
		MeanAnomaly: M,
		Eccentric:   E,
		TrueAnomaly: v,
		Distance:    r,
	}
}

// Perihelion returns the closest approach distance a(1-e).
func (el Elements) Perihelion() float64 {
	return el.SemiMajorAxis * (1 - ClampEccentricity(el.Eccentricity))
}

// Aphelion returns the farthest distance a(1+e).
func (el Elements) Aphelion() float64 {
	return el.SemiMajorAxis * (1 + ClampEccentricity(el.Eccentricity))
}
