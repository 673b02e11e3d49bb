package transfer

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// SynodicPeriod returns the time in days between repeats of the same
// relative geometry of two orbits with periods p1 and p2 (days). Equal
// periods never repeat and return +Inf.
func SynodicPeriod(p1, p2 float64) float64 {
	if p1 <= 0 || p2 <= 0 {
		return math.Inf(1)
	}
	rel := math.Abs(1/p1 - 1/p2)
	if rel == 0 {
		return math.Inf(1)
	}
	return 1 / rel
}

// Lead returns how far the destination longitude is ahead of the origin,
// in degrees within [0, 360).
func Lead(originLonDeg, destLonDeg float64) float64 {
	return astro.NormalizeDeg(destLonDeg - originLonDeg)
}

// RequiredLead returns the angle in degrees, within (-180, 180], by which
// the destination must lead the origin at departure so that it reaches the
// apoapsis or periapsis point of the transfer as the craft does. It uses the
// destination's own period, so it differs from PhaseAngleDeg for inbound
// transfers. A non-positive period falls back to PhaseAngleDeg.
func RequiredLead(r Result, destPeriodDays float64) float64 {
	if !(destPeriodDays > 0) || math.IsInf(destPeriodDays, 0) {
		return r.PhaseAngleDeg
	}
	lead := astro.NormalizeDeg(180 - r.TransferDays/destPeriodDays*360)
	if lead > 180 {
		lead -= 360
	}
	return lead
}

// WaitDays returns the days until the destination's lead over the origin
// next equals phaseDeg, given the current lead and both orbital periods.
// It reports false when the two bodies never change relative position.
func WaitDays(currentLeadDeg, phaseDeg, originPeriod, destPeriod float64) (float64, bool) {
	if originPeriod <= 0 || destPeriod <= 0 {
		return 0, false
	}
	// Rate at which the lead grows, deg/day. Negative for an outer
	// destination, which falls behind.
	rel := 360/destPeriod - 360/originPeriod
	if rel == 0 || math.IsNaN(rel) {
		return 0, false
	}
	diff := phaseDeg - currentLeadDeg
	if rel < 0 {
		diff = -diff
	}
	return astro.NormalizeDeg(diff) / math.Abs(rel), true
}
