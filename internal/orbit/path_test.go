package orbit

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestPathLengthAndClosure(t *testing.T) {
	tests := []struct {
		name     string
		segments int
		wantLen  int
	}{
		{"default", 0, DefaultSegments + 1},
		{"negative", -4, DefaultSegments + 1},
		{"small", 3, 4},
		{"dense", 512, 513},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := Path(1.524, 0.0934, 1.85, tt.segments)
			if len(pts) != tt.wantLen {
				t.Fatalf("len(Path) = %d, want %d", len(pts), tt.wantLen)
			}
			if d := pts[0].Distance(pts[len(pts)-1]); d > 1e-9 {
				t.Errorf("Path not closed: first %v last %v", pts[0], pts[len(pts)-1])
			}
		})
	}
}

func TestPathCircular(t *testing.T) {
	for _, p := range Path(5.2, 0, 1.3, 64) {
		if !scalar.EqualWithinAbs(p.Norm(), 5.2, 1e-9) {
			t.Errorf("circular path point %v at distance %v, want 5.2", p, p.Norm())
		}
	}
}

func TestPathFiniteHighEccentricity(t *testing.T) {
	for _, e := range []float64{0.9, 0.995, 0.9999, 1.5} {
		for i, p := range Path(186, e, 89.43, 256) {
			if !p.IsFinite() {
				t.Fatalf("e=%v: point %d not finite: %v", e, i, p)
			}
		}
	}
}

func TestPathApsides(t *testing.T) {
	el := Elements{SemiMajorAxis: 2.215, Eccentricity: 0.8483, InclinationDeg: 11.78}
	pts := el.Path(4)
	if !scalar.EqualWithinAbs(pts[0].Norm(), el.Perihelion(), 1e-9) {
		t.Errorf("first point at %v, want perihelion %v", pts[0].Norm(), el.Perihelion())
	}
	if !scalar.EqualWithinAbs(pts[2].Norm(), el.Aphelion(), 1e-9) {
		t.Errorf("middle point at %v, want aphelion %v", pts[2].Norm(), el.Aphelion())
	}
}

func TestPathMatchesPropagator(t *testing.T) {
	// Every propagated position lies on the sampled ellipse's plane and conic.
	el := Elements{0.387, 0.2056, 7.005, 174.796, 87.969}
	for days := 0.0; days < el.PeriodDays; days += 7 {
		s := el.StateAt(days)
		want := Radius(el.SemiMajorAxis, el.Eccentricity, s.TrueAnomaly)
		if !scalar.EqualWithinAbs(s.Pos.Norm(), want, 1e-9) {
			t.Errorf("t=%v: |pos| = %v, conic radius %v", days, s.Pos.Norm(), want)
		}
	}
}
