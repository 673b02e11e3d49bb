// Package orbit evaluates closed-form Keplerian orbits: solving Kepler's
// equation, converting anomalies, propagating positions, sampling orbit
// outlines and scoring line-of-sight alignments.
//
// Every function is pure. Callers pass time explicitly and may call from any
// number of goroutines.
package orbit

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Solver limits.
const (
	MaxKeplerIterations = 50
	KeplerTolerance     = 1e-8

	// MaxEccentricity is the largest eccentricity accepted before trig.
	MaxEccentricity = 0.9999

	// derivativeFloor stops Newton-Raphson before dividing by ~0.
	derivativeFloor = 1e-12
)

// ClampEccentricity limits e to [0, MaxEccentricity]. NaN becomes 0.
func ClampEccentricity(e float64) float64 {
	switch {
	case math.IsNaN(e), e < 0:
		return 0
	case e > MaxEccentricity:
		return MaxEccentricity
	default:
		return e
	}
}

// SolveKepler returns the eccentric anomaly E (radians) satisfying
// M = E - e*sin(E).
func SolveKepler(M, e float64) float64 {
	E, _ := SolveKeplerIter(M, e)
	return E
}

// SolveKeplerIter is SolveKepler that also reports how many Newton steps
// were taken.
func SolveKeplerIter(M, e float64) (float64, int) {
	e = ClampEccentricity(e)
	if math.IsNaN(M) || math.IsInf(M, 0) {
		M = 0
	}
	M = astro.NormalizeRad(M)

	// Third-order starter.
	E := M + e*math.Sin(M)*(1+e*math.Cos(M))

	// E - e*sin(E) - M is monotonic and changes sign on [0, 2π], so the root
	// stays bracketed. Steps that leave the bracket bisect instead; near
	// perihelion at e -> 1 the derivative is tiny and raw Newton overshoots.
	lo, hi := 0.0, 2*math.Pi
	E = math.Max(lo, math.Min(hi, E))

	for i := 1; i <= MaxKeplerIterations; i++ {
		f := E - e*math.Sin(E) - M
		if f < 0 {
			lo = E
		} else {
			hi = E
		}

		d := 1 - e*math.Cos(E)
		if math.Abs(d) < derivativeFloor {
			return E, i - 1
		}
		next := E - f/d
		if next < lo || next > hi {
			next = (lo + hi) / 2
		}
		dE := E - next
		E = next
		if math.Abs(dE) < KeplerTolerance {
			return E, i
		}
	}
	return E, MaxKeplerIterations
}
