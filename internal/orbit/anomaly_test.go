package orbit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestRadiusCircular(t *testing.T) {
	for v := -7.0; v < 7.0; v += 0.31 {
		if got := Radius(2.5, 0, v); !scalar.EqualWithinAbs(got, 2.5, 1e-12) {
			t.Errorf("Radius(2.5, 0, %v) = %v, want 2.5", v, got)
		}
	}
}

func TestRadiusApsides(t *testing.T) {
	tests := []struct {
		name string
		a, e float64
	}{
		{"Earth", 1, 0.0167},
		{"Mercury", 0.387, 0.2056},
		{"Encke", 2.215, 0.8483},
		{"Halley", 17.834, 0.9671},
		{"Hale-Bopp", 186, 0.995},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peri := Radius(tt.a, tt.e, 0)
			if want := tt.a * (1 - tt.e); !scalar.EqualWithinAbs(peri, want, 1e-9*tt.a) {
				t.Errorf("Radius(v=0) = %v, want %v", peri, want)
			}
			apo := Radius(tt.a, tt.e, math.Pi)
			if want := tt.a * (1 + tt.e); !scalar.EqualWithinAbs(apo, want, 1e-9*tt.a) {
				t.Errorf("Radius(v=π) = %v, want %v", apo, want)
			}
		})
	}
}

func TestRadiusDegenerate(t *testing.T) {
	// e clamps to 0.9999 so the denominator stays positive; still finite.
	r := Radius(1, 5, math.Pi)
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		t.Errorf("Radius(1, 5, π) = %v, want positive finite", r)
	}
}

func TestTrueAnomaly(t *testing.T) {
	tests := []struct {
		name string
		E, e float64
		want float64
	}{
		{"circular identity", 1.2, 0, 1.2},
		{"perihelion", 0, 0.7, 0},
		{"aphelion", math.Pi, 0.7, math.Pi},
		{"ahead of E", math.Pi / 2, 0.5, 2 * math.Atan(math.Sqrt(3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrueAnomaly(tt.E, tt.e)
			if !scalar.EqualWithinAbs(got, tt.want, 1e-9) {
				t.Errorf("TrueAnomaly(%v, %v) = %v, want %v", tt.E, tt.e, got, tt.want)
			}
		})
	}
}

func TestTrueAnomalyMatchesRadius(t *testing.T) {
	// r = a(1 - e cos E) must agree with the conic equation at the true anomaly.
	a := 3.0
	for _, e := range eccentricities {
		for E := 0.0; E < 2*math.Pi; E += 0.4 {
			v := TrueAnomaly(E, e)
			ce := ClampEccentricity(e)
			want := a * (1 - ce*math.Cos(E))
			if got := Radius(a, e, v); !scalar.EqualWithinAbs(got, want, 1e-6*a) {
				t.Errorf("e=%v E=%v: Radius = %v, want %v", e, E, got, want)
			}
		}
	}
}
