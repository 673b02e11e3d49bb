package orbit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/litescript/ls-orrery/internal/astro"
)

var eccentricities = []float64{0, 0.007, 0.0167, 0.2056, 0.5, 0.8483, 0.9, 0.9671, 0.995, 0.9999}

func TestSolveKeplerResidual(t *testing.T) {
	for _, e := range eccentricities {
		for M := -20.0; M <= 20.0; M += 0.173 {
			E := SolveKepler(M, e)
			if math.IsNaN(E) || math.IsInf(E, 0) {
				t.Fatalf("SolveKepler(%v, %v) = %v, want finite", M, e, E)
			}
			got := E - e*math.Sin(E)
			want := astro.NormalizeRad(M)
			if !scalar.EqualWithinAbs(got, want, 1e-5) {
				t.Errorf("SolveKepler(%v, %v): E - e sin E = %v, want %v", M, e, got, want)
			}
		}
	}
}

func TestSolveKeplerNearPerihelion(t *testing.T) {
	// Tiny mean anomalies at the highest eccentricities are the hard case.
	for _, e := range []float64{0.995, 0.9999} {
		for _, M := range []float64{1e-9, 1e-6, 1e-3, 2*math.Pi - 1e-6} {
			E, iters := SolveKeplerIter(M, e)
			if got := E - e*math.Sin(E); !scalar.EqualWithinAbs(got, M, 1e-5) {
				t.Errorf("SolveKeplerIter(%v, %v) residual: got %v, want %v (%d iters)", M, e, got, M, iters)
			}
			if iters > MaxKeplerIterations {
				t.Errorf("SolveKeplerIter(%v, %v) took %d iterations", M, e, iters)
			}
		}
	}
}

func TestSolveKeplerFixedPoints(t *testing.T) {
	for _, e := range eccentricities {
		if got := SolveKepler(0, e); !scalar.EqualWithinAbs(got, 0, 1e-9) {
			t.Errorf("SolveKepler(0, %v) = %v, want 0", e, got)
		}
		if got := SolveKepler(math.Pi, e); !scalar.EqualWithinAbs(got, math.Pi, 1e-9) {
			t.Errorf("SolveKepler(π, %v) = %v, want π", e, got)
		}
	}
}

func TestSolveKeplerCircular(t *testing.T) {
	for _, M := range []float64{0.1, 1, 3, 5, 6.2} {
		E, iters := SolveKeplerIter(M, 0)
		if !scalar.EqualWithinAbs(E, M, 1e-12) {
			t.Errorf("SolveKepler(%v, 0) = %v, want %v", M, E, M)
		}
		if iters > 2 {
			t.Errorf("SolveKeplerIter(%v, 0) took %d iterations, want <= 2", M, iters)
		}
	}
}

func TestSolveKeplerBadInput(t *testing.T) {
	tests := []struct {
		name string
		M, e float64
	}{
		{"negative e", 1, -0.5},
		{"e = 1", 0.01, 1},
		{"e > 1", 2, 3.5},
		{"NaN e", 1, math.NaN()},
		{"NaN M", math.NaN(), 0.5},
		{"Inf M", math.Inf(1), 0.5},
		{"huge M", 1e12, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			E := SolveKepler(tt.M, tt.e)
			if math.IsNaN(E) || math.IsInf(E, 0) {
				t.Errorf("SolveKepler(%v, %v) = %v, want finite", tt.M, tt.e, E)
			}
		})
	}
}

func TestClampEccentricity(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{0.9999, 0.9999},
		{1, MaxEccentricity},
		{42, MaxEccentricity},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampEccentricity(tt.in); got != tt.want {
			t.Errorf("ClampEccentricity(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
