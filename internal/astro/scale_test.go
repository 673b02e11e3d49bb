package astro

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestSceneDistanceRealistic(t *testing.T) {
	if got := SceneDistanceMkm(149.6, ScaleRealistic); !scalar.EqualWithinAbs(got, 1, 1e-9) {
		t.Errorf("SceneDistanceMkm(Earth, realistic) = %v, want 1", got)
	}
	if got := SceneDistance(0, ScaleRealistic); got != 0 {
		t.Errorf("SceneDistance(0, realistic) = %v, want 0", got)
	}
	d1 := SceneDistanceMkm(149.6, ScaleRealistic)
	d2 := SceneDistanceMkm(299.2, ScaleRealistic)
	if !scalar.EqualWithinAbs(d2/d1, 2, 1e-9) {
		t.Errorf("realistic mode not linear: ratio = %v", d2/d1)
	}
}

func TestSceneDistanceExaggerated(t *testing.T) {
	d := SceneDistance(1, ScaleExaggerated)
	if d != 6 {
		t.Errorf("SceneDistance(1 AU, exaggerated) = %v, want 6", d)
	}
	if got := SceneDistance(0, ScaleExaggerated); got != 2 {
		t.Errorf("SceneDistance(0, exaggerated) = %v, want 2", got)
	}
	if got := SceneDistance(-3, ScaleExaggerated); got != 2 {
		t.Errorf("SceneDistance(-3, exaggerated) = %v, want floor 2", got)
	}

	fromMkm := SceneDistanceMkm(149.6, ScaleExaggerated)
	if !scalar.EqualWithinAbs(fromMkm, d, 1e-9) {
		t.Errorf("SceneDistanceMkm(149.6) = %v, want %v", fromMkm, d)
	}

	mercury := SceneDistanceMkm(57.9, ScaleExaggerated)
	neptune := SceneDistanceMkm(4495.1, ScaleExaggerated)
	if mercury >= neptune {
		t.Errorf("Mercury %v should map closer than Neptune %v", mercury, neptune)
	}
	if neptune > 40 {
		t.Errorf("Neptune maps to %v scene units, expected compressed (< 40)", neptune)
	}
}

func TestSceneDistanceMonotonic(t *testing.T) {
	for _, mode := range []ScaleMode{ScaleRealistic, ScaleExaggerated} {
		t.Run(mode.String(), func(t *testing.T) {
			prev := SceneDistance(0, mode)
			for au := 0.001; au < 200; au *= 1.05 {
				cur := SceneDistance(au, mode)
				if cur <= prev {
					t.Fatalf("SceneDistance not strictly increasing at %v AU: %v <= %v", au, cur, prev)
				}
				prev = cur
			}
		})
	}
}

func TestScalePosition(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	got := ScalePosition(v, ScaleExaggerated)

	want := SceneDistance(5, ScaleExaggerated)
	if !scalar.EqualWithinAbs(got.Norm(), want, 1e-9) {
		t.Errorf("ScalePosition radius = %v, want %v", got.Norm(), want)
	}
	if !scalar.EqualWithinAbs(EclipticLongitude(got), EclipticLongitude(v), 1e-9) {
		t.Errorf("ScalePosition changed direction: %v -> %v", v, got)
	}

	if got := ScalePosition(v, ScaleRealistic); got != v {
		t.Errorf("ScalePosition(realistic) = %v, want identity %v", got, v)
	}
	if got := ScalePosition(Vec3{}, ScaleRealistic); got != (Vec3{}) {
		t.Errorf("ScalePosition(origin, realistic) = %v, want origin", got)
	}
	if got := ScalePosition(Vec3{}, ScaleExaggerated); !got.IsFinite() {
		t.Errorf("ScalePosition(origin, exaggerated) not finite: %v", got)
	}
}

func TestBodyRadius(t *testing.T) {
	if r := ExaggeratedRadius(1); r <= 0.06 {
		t.Errorf("ExaggeratedRadius(1 km) = %v, want > 0.06", r)
	}
	earth := ExaggeratedRadius(6371)
	jupiter := ExaggeratedRadius(69911)
	if jupiter <= earth {
		t.Errorf("Jupiter radius %v should exceed Earth %v", jupiter, earth)
	}
	if earth < 0.1 || earth > 0.3 {
		t.Errorf("Earth exaggerated radius = %v, want within [0.1, 0.3]", earth)
	}

	real := RealisticRadius(6371)
	if !scalar.EqualWithinAbs(real, 6371/AU*100, 1e-15) {
		t.Errorf("RealisticRadius(6371) = %v", real)
	}
	if real >= 0.01 {
		t.Errorf("RealisticRadius(Earth) = %v, want tiny", real)
	}
	if r2 := RealisticRadius(12742); !scalar.EqualWithinAbs(r2/real, 2, 1e-12) {
		t.Errorf("RealisticRadius not linear: ratio %v", r2/real)
	}

	for _, km := range []float64{1e-6, 1, 2439.7, 69911, 695700} {
		for _, mode := range []ScaleMode{ScaleRealistic, ScaleExaggerated} {
			if r := BodyRadius(km, mode); !(r > 0) || math.IsInf(r, 0) {
				t.Errorf("BodyRadius(%v, %v) = %v, want positive finite", km, mode, r)
			}
		}
	}
}

func TestParseScaleMode(t *testing.T) {
	tests := []struct {
		input string
		want  ScaleMode
	}{
		{"realistic", ScaleRealistic},
		{"REAL", ScaleRealistic},
		{"r", ScaleRealistic},
		{"exaggerated", ScaleExaggerated},
		{"", ScaleExaggerated},
		{"bogus", ScaleExaggerated},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseScaleMode(tt.input); got != tt.want {
				t.Errorf("ParseScaleMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestScaleModeStringAndToggle(t *testing.T) {
	if ScaleRealistic.String() != "realistic" || ScaleExaggerated.String() != "exaggerated" {
		t.Error("unexpected ScaleMode names")
	}
	if ScaleMode(9).String() != "unknown" {
		t.Error("out-of-range ScaleMode should be unknown")
	}
	if ScaleRealistic.Toggle() != ScaleExaggerated || ScaleExaggerated.Toggle() != ScaleRealistic {
		t.Error("Toggle should swap modes")
	}
}
