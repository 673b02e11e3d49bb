// Package transfer computes two-impulse Hohmann transfers between circular
// heliocentric orbits and samples the transfer arc for display.
package transfer

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// MuSun is the Sun's gravitational parameter in km^3/s^2.
const MuSun = 1.32712440018e11

const (
	kmPerMkm   = 1e6
	secondsDay = 86400.0
)

// Result describes a Hohmann transfer. R1AU and R2AU keep the caller's
// order (origin first); InnerAU and OuterAU are the sorted radii the
// ellipse is built from.
//
// All *AU fields, TransferSMA included, use the catalogue convention of
// 1 AU = astro.MkmPerAU (149.6) million km, not the IAU astro.AU in km.
// Multiply by astro.MkmPerAU to recover the million-km inputs exactly.
type Result struct {
	R1AU     float64 `json:"r1_au"`
	R2AU     float64 `json:"r2_au"`
	InnerAU  float64 `json:"inner_au"`
	OuterAU  float64 `json:"outer_au"`
	Outbound bool    `json:"outbound"` // origin is the inner orbit

	TransferSMA          float64 `json:"transfer_sma_au"`
	TransferEccentricity float64 `json:"transfer_eccentricity"`

	DepartureDeltaV float64 `json:"departure_dv_kms"` // at the origin radius
	ArrivalDeltaV   float64 `json:"arrival_dv_kms"`   // at the destination radius
	TotalDeltaV     float64 `json:"total_dv_kms"`

	TransferDays  float64 `json:"transfer_days"`
	PhaseAngleDeg float64 `json:"phase_angle_deg"`
}

// Valid reports whether the result describes a real transfer.
func (r Result) Valid() bool {
	return r.InnerAU > 0 && r.OuterAU > 0
}

// Compute returns the Hohmann transfer from an orbit of radius r1 to one of
// radius r2, both in million km. Non-positive or non-finite radii yield a
// zero Result.
func Compute(r1Mkm, r2Mkm float64) Result {
	if !validRadius(r1Mkm) || !validRadius(r2Mkm) {
		return Result{}
	}

	r1 := r1Mkm * kmPerMkm
	r2 := r2Mkm * kmPerMkm
	inner, outer := math.Min(r1, r2), math.Max(r1, r2)
	a := (inner + outer) / 2

	vInner := math.Sqrt(MuSun / inner)
	vOuter := math.Sqrt(MuSun / outer)
	// Vis-viva on the transfer ellipse at periapsis and apoapsis.
	vPeri := math.Sqrt(MuSun * (2/inner - 1/a))
	vApo := math.Sqrt(MuSun * (2/outer - 1/a))

	dvInner := math.Abs(vPeri - vInner)
	dvOuter := math.Abs(vOuter - vApo)

	tof := math.Pi * math.Sqrt(a*a*a/MuSun)
	outerPeriod := 2 * math.Pi * math.Sqrt(outer*outer*outer/MuSun)

	res := Result{
		R1AU:                 astro.MkmToAU(r1Mkm),
		R2AU:                 astro.MkmToAU(r2Mkm),
		InnerAU:              astro.MkmToAU(inner / kmPerMkm),
		OuterAU:              astro.MkmToAU(outer / kmPerMkm),
		Outbound:             r1 <= r2,
		TransferSMA:          astro.MkmToAU(a / kmPerMkm),
		TransferEccentricity: (outer - inner) / (outer + inner),
		TotalDeltaV:          dvInner + dvOuter,
		TransferDays:         tof / secondsDay,
		PhaseAngleDeg:        180 - (tof/outerPeriod)*360,
	}
	if res.Outbound {
		res.DepartureDeltaV, res.ArrivalDeltaV = dvInner, dvOuter
	} else {
		res.DepartureDeltaV, res.ArrivalDeltaV = dvOuter, dvInner
	}
	return res
}

func validRadius(r float64) bool {
	return r > 0 && !math.IsInf(r, 0)
}

// Path samples the half ellipse from periapsis (v = 0) to apoapsis (v = π)
// in the X/Z display plane. It returns segments+1 points and always starts
// at the inner radius. Radii are in any single unit.
func Path(r1, r2 float64, segments int) []astro.Vec3 {
	if segments <= 0 {
		segments = 64
	}
	inner, outer := math.Min(r1, r2), math.Max(r1, r2)
	pts := make([]astro.Vec3, segments+1)
	if !(inner > 0) {
		return pts
	}

	a := (inner + outer) / 2
	e := (outer - inner) / (outer + inner)
	for i := range pts {
		v := math.Pi * float64(i) / float64(segments)
		r := a * (1 - e*e) / (1 + e*math.Cos(v))
		pts[i] = astro.Vec3{X: r * math.Cos(v), Z: r * math.Sin(v)}
	}
	return pts
}

// ScenePath returns Path mapped into scene units. Each point's scene radius
// is interpolated linearly between the mapped inner and outer orbit radii by
// its position between them, so the endpoints land exactly on the displayed
// orbits.
func ScenePath(r1AU, r2AU float64, segments int, mode astro.ScaleMode) []astro.Vec3 {
	pts := Path(r1AU, r2AU, segments)
	inner, outer := math.Min(r1AU, r2AU), math.Max(r1AU, r2AU)
	if !(inner > 0) {
		return pts
	}

	sInner := astro.SceneDistance(inner, mode)
	sOuter := astro.SceneDistance(outer, mode)
	span := outer - inner
	for i, p := range pts {
		r := p.Norm()
		if r < 1e-12 {
			continue
		}
		t := 0.0
		if span > 1e-12 {
			t = math.Max(0, math.Min(1, (r-inner)/span))
		}
		pts[i] = p.Scale((sInner + (sOuter-sInner)*t) / r)
	}
	return pts
}
