package catalog

import (
	"math"
	"math/rand/v2"

	"github.com/litescript/ls-orrery/internal/orbit"
)

// Main belt bounds and shape.
const (
	BeltInnerAU = 2.2
	BeltOuterAU = 3.2

	DefaultBeltSize = 3000

	beltMaxEccentricity = 0.08
	beltMaxInclination  = 8.0 // degrees
	earthYearDays       = 365.256
)

// Belt generates n asteroid orbits between BeltInnerAU and BeltOuterAU.
// The same seed always produces the same belt. Periods follow Kepler's
// third law, P = a^1.5 years.
func Belt(n int, seed uint64) []orbit.Elements {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	belt := make([]orbit.Elements, n)
	for i := range belt {
		a := BeltInnerAU + rng.Float64()*(BeltOuterAU-BeltInnerAU)
		belt[i] = orbit.Elements{
			SemiMajorAxis:  a,
			Eccentricity:   rng.Float64() * beltMaxEccentricity,
			InclinationDeg: rng.Float64() * beltMaxInclination,
			MeanAnomalyDeg: rng.Float64() * 360,
			PeriodDays:     earthYearDays * math.Pow(a, 1.5),
		}
	}
	return belt
}
