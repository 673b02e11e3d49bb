package orbit

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// DefaultAlignmentThreshold is the angular window (radians) inside which two
// bodies count as aligned with the Sun.
const DefaultAlignmentThreshold = 0.05

// colinearSin is the sine of the separation below which two directions are
// treated as identical. acos loses precision near 1, so colinear vectors
// would otherwise score a hair under 1.
const colinearSin = 1e-12

// AlignmentScore rates how closely the inner body sits on the line from the
// Sun to the outer body. It returns 1 for an exact line-up, falls linearly to
// 0 at threshold radians, and is 0 when inner is not actually nearer the Sun.
func AlignmentScore(inner, outer astro.Vec3, threshold float64) float64 {
	if !(threshold > 0) {
		return 0
	}
	innerDist := inner.Norm()
	outerDist := outer.Norm()
	if innerDist < 1e-12 || outerDist < 1e-12 || innerDist >= outerDist {
		return 0
	}

	dot := inner.Normalized().Dot(outer.Normalized())
	if dot > 0 && inner.Cross(outer).Norm() <= colinearSin*innerDist*outerDist {
		return 1
	}
	angle := math.Acos(math.Max(-1, math.Min(1, dot)))
	if angle >= threshold {
		return 0
	}
	return 1 - angle/threshold
}
