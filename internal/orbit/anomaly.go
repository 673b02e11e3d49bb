package orbit

import "math"

// TrueAnomaly converts eccentric anomaly E to true anomaly (radians).
// The half-angle atan2 form stays accurate near perihelion and aphelion.
func TrueAnomaly(E, e float64) float64 {
	e = ClampEccentricity(e)
	return 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(E/2),
		math.Sqrt(1-e)*math.Cos(E/2),
	)
}

// Radius returns the orbital radius at true anomaly v, in the units of a.
// A vanishing denominator falls back to a.
func Radius(a, e, v float64) float64 {
	e = ClampEccentricity(e)
	denom := 1 + e*math.Cos(v)
	if denom < derivativeFloor {
		return a
	}
	return a * (1 - e*e) / denom
}
