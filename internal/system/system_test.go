package system

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/transfer"
)

func TestBodyKindString(t *testing.T) {
	tests := []struct {
		kind BodyKind
		want string
	}{
		{BodySun, "sun"},
		{BodyPlanet, "planet"},
		{BodyComet, "comet"},
		{BodyKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("BodyKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	sys := New(Options{BeltSize: 300, BeltSeed: 3, Workers: 4})
	snap := sys.Evaluate(1234.5, astro.ScaleExaggerated)

	wantBodies := 1 + len(catalog.Planets) + len(catalog.Comets)
	if len(snap.Bodies) != wantBodies {
		t.Fatalf("len(Bodies) = %d, want %d", len(snap.Bodies), wantBodies)
	}
	if snap.Bodies[0].Kind != BodySun || snap.Bodies[0].Pos != (astro.Vec3{}) {
		t.Errorf("first body should be the Sun at origin, got %+v", snap.Bodies[0])
	}
	if len(snap.Planets()) != 8 || len(snap.Comets()) != 3 {
		t.Errorf("Planets/Comets = %d/%d, want 8/3", len(snap.Planets()), len(snap.Comets()))
	}
	if len(snap.Belt) != 300 {
		t.Errorf("len(Belt) = %d, want 300", len(snap.Belt))
	}

	earth := snap.GetBody("EARTH")
	if earth == nil {
		t.Fatal("GetBody(EARTH) = nil")
	}
	want := catalog.Planets[2].Elements().PositionAt(1234.5)
	if earth.Pos.Distance(want) > 1e-12 {
		t.Errorf("Earth Pos = %v, want %v", earth.Pos, want)
	}
	if !scalar.EqualWithinAbs(earth.Scene.Norm(), astro.SceneDistance(earth.DistanceAU(), astro.ScaleExaggerated), 1e-9) {
		t.Errorf("Earth scene radius = %v, want mapped %v", earth.Scene.Norm(), earth.DistanceAU())
	}
	if snap.GetBody("Encke") == nil || snap.GetBody("Vulcan") != nil {
		t.Error("GetBody lookup by name failed")
	}

	for _, b := range snap.Bodies {
		if !b.Pos.IsFinite() || !b.Scene.IsFinite() {
			t.Errorf("%s has non-finite position %v / %v", b.Name, b.Pos, b.Scene)
		}
	}
}

func TestEvaluateBeltMatchesSerial(t *testing.T) {
	opts := Options{BeltSize: 1000, BeltSeed: 11}
	belt := catalog.Belt(opts.BeltSize, opts.BeltSeed)

	for _, workers := range []int{1, 3, 16} {
		opts.Workers = workers
		snap := New(opts).Evaluate(-777, astro.ScaleRealistic)
		for i, el := range belt {
			want := el.PositionAt(-777)
			if snap.Belt[i].Distance(want) > 1e-12 {
				t.Fatalf("workers=%d: asteroid %d = %v, want %v", workers, i, snap.Belt[i], want)
			}
		}
	}
}

func TestEvaluateNoBelt(t *testing.T) {
	sys := New(Options{})
	if sys.BeltSize() != 0 {
		t.Errorf("BeltSize() = %d, want 0", sys.BeltSize())
	}
	if snap := sys.Evaluate(0, astro.ScaleRealistic); snap.Belt != nil {
		t.Errorf("Belt = %d points, want nil", len(snap.Belt))
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	sys := New(Options{BeltSize: 200, Workers: 2})
	done := make(chan Snapshot, 8)
	for i := 0; i < 8; i++ {
		go func() {
			sys.PlanetPaths(astro.ScaleExaggerated, 64)
			done <- sys.Evaluate(100, astro.ScaleExaggerated)
		}()
	}
	first := <-done
	for i := 1; i < 8; i++ {
		snap := <-done
		for j := range snap.Bodies {
			if snap.Bodies[j].Pos != first.Bodies[j].Pos {
				t.Fatalf("concurrent evaluations disagree on %s", snap.Bodies[j].Name)
			}
		}
	}
}

func TestPlanetPaths(t *testing.T) {
	sys := New(Options{})
	paths := sys.PlanetPaths(astro.ScaleRealistic, 32)
	if len(paths) != len(catalog.Planets) {
		t.Fatalf("len(PlanetPaths) = %d, want %d", len(paths), len(catalog.Planets))
	}
	for i, p := range paths {
		if len(p) != 33 {
			t.Errorf("path %d has %d points, want 33", i, len(p))
		}
	}

	again := sys.PlanetPaths(astro.ScaleRealistic, 32)
	if &again[0][0] != &paths[0][0] {
		t.Error("PlanetPaths should return the cached outline")
	}

	exag := sys.PlanetPaths(astro.ScaleExaggerated, 32)
	neptune := exag[7][0].Norm()
	if neptune > 40 || neptune < 20 {
		t.Errorf("exaggerated Neptune outline at %v scene units", neptune)
	}

	if comets := sys.CometPaths(astro.ScaleExaggerated, 0); len(comets) != 3 || len(comets[0]) != 129 {
		t.Errorf("CometPaths default segments wrong: %d comets", len(comets))
	}
}

func TestCometTail(t *testing.T) {
	tests := []struct {
		name        string
		pos         astro.Vec3
		wantLength  float64
		wantOpacity float64
	}{
		{"1 AU", astro.Vec3{X: 1}, 0.15, 0.3},
		{"near Sun capped", astro.Vec3{Y: 0.2}, 0.8, 0.8},
		{"at Sun floor", astro.Vec3{}, 0.8, 0.8},
		{"far", astro.Vec3{X: 10}, 0.0015, 0.03},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tail := CometTail(tt.pos, astro.ScaleRealistic)
			if !scalar.EqualWithinAbs(tail.Length, tt.wantLength, 1e-9) {
				t.Errorf("Length = %v, want %v", tail.Length, tt.wantLength)
			}
			if !scalar.EqualWithinAbs(tail.Opacity, tt.wantOpacity, 1e-9) {
				t.Errorf("Opacity = %v, want %v", tail.Opacity, tt.wantOpacity)
			}
		})
	}

	tail := CometTail(astro.Vec3{X: 3, Y: 4}, astro.ScaleExaggerated)
	if tail.Dir.Distance(astro.Vec3{X: 0.6, Y: 0.8}) > 1e-12 {
		t.Errorf("tail direction = %v, want away from Sun", tail.Dir)
	}
	// Exaggerated tails scale with the 1 AU scene distance.
	if want := 0.15 / 25 * astro.SceneDistance(1, astro.ScaleExaggerated); !scalar.EqualWithinAbs(tail.Length, want, 1e-9) {
		t.Errorf("exaggerated Length = %v, want %v", tail.Length, want)
	}
}

func TestWellDepth(t *testing.T) {
	if got := WellDepth(0, 0, nil); got != -SunWellDepth {
		t.Errorf("WellDepth at Sun = %v, want %v", got, -SunWellDepth)
	}
	if far := WellDepth(100, 100, nil); far <= -0.5 || far >= 0 {
		t.Errorf("WellDepth far away = %v, want in (-0.5, 0)", far)
	}
	if WellDepth(0, 0, nil) >= WellDepth(30, 30, nil) {
		t.Error("Sun should be the deepest point")
	}

	planet := []WellSource{{X: 10, Strength: 2}}
	if WellDepth(10, 0, planet) >= WellDepth(12, 0, planet) {
		t.Error("planet should dent the sheet locally")
	}

	jupiter := WellDepth(15, 0, []WellSource{{X: 15, Strength: WellStrength("Jupiter")}})
	mercury := WellDepth(15, 0, []WellSource{{X: 15, Strength: WellStrength("Mercury")}})
	if jupiter >= mercury {
		t.Errorf("Jupiter well %v should be deeper than Mercury %v", jupiter, mercury)
	}
	if WellStrength("Pluto") != defaultStrength {
		t.Error("unknown planet should get the default strength")
	}
}

func TestWellGrid(t *testing.T) {
	sys := New(Options{})
	snap := sys.Evaluate(0, astro.ScaleExaggerated)
	sources := WellSources(snap)
	if len(sources) != 8 {
		t.Fatalf("len(WellSources) = %d, want 8", len(sources))
	}

	grid := WellGrid(21, 11, SceneExtent(astro.ScaleExaggerated), sources)
	if len(grid) != 11 || len(grid[0]) != 21 {
		t.Fatalf("grid is %dx%d, want 11x21", len(grid), len(grid[0]))
	}
	center := grid[5][10]
	corner := grid[0][0]
	if center >= corner {
		t.Errorf("center %v should be deeper than corner %v", center, corner)
	}
	for _, row := range grid {
		for _, d := range row {
			if d > 0 || math.IsNaN(d) {
				t.Fatalf("well depth %v should be <= 0", d)
			}
		}
	}
	if WellGrid(0, 5, 10, nil) != nil {
		t.Error("empty grid should be nil")
	}
}

func TestExportSnapshot(t *testing.T) {
	sys := New(Options{BeltSize: 10})
	snap := sys.Evaluate(0, astro.ScaleRealistic)

	export := ExportSnapshot(snap, false)
	if export.Belt != nil {
		t.Error("belt exported without withBelt")
	}
	if export.Date != "2000-01-01 12:00" {
		t.Errorf("Date = %q, want 2000-01-01 12:00", export.Date)
	}

	var buf bytes.Buffer
	if err := ExportSnapshot(snap, true).WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded SnapshotExport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Bodies) != 12 || len(decoded.Belt) != 10 {
		t.Errorf("decoded %d bodies, %d belt; want 12, 10", len(decoded.Bodies), len(decoded.Belt))
	}
	if decoded.Scale != "realistic" {
		t.Errorf("Scale = %q", decoded.Scale)
	}
	for _, b := range decoded.Bodies {
		if b.Kind == "comet" && b.TailOpacity <= 0 {
			t.Errorf("%s missing tail opacity", b.Name)
		}
	}
}

func TestWriteSummaryTable(t *testing.T) {
	sys := New(Options{BeltSize: 5})
	var buf bytes.Buffer
	WriteSummaryTable(&buf, sys.Evaluate(366, astro.ScaleExaggerated))
	out := buf.String()

	for _, want := range []string{"2001-01-01", "Mercury", "Neptune", "Encke", "Total: 11 bodies, 5 asteroids"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\nSun ") {
		t.Error("summary should not list the Sun as a row")
	}
}

func TestWriteTransfer(t *testing.T) {
	var buf bytes.Buffer
	earth, _ := catalog.Planet("Earth")
	mars, _ := catalog.Planet("Mars")
	WriteTransfer(&buf, earth, mars, transfer.Compute(earth.DistanceMkm, mars.DistanceMkm))
	out := buf.String()
	for _, want := range []string{"Earth → Mars", "Total Δv", "Required lead", "Launch when Mars leads by"} {
		if !strings.Contains(out, want) {
			t.Errorf("transfer report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTransferInbound(t *testing.T) {
	var buf bytes.Buffer
	jupiter, _ := catalog.Planet("Jupiter")
	earth, _ := catalog.Planet("Earth")
	res := transfer.Compute(jupiter.DistanceMkm, earth.DistanceMkm)
	WriteTransfer(&buf, jupiter, earth, res)

	want := PhaseExplanation("Earth", transfer.RequiredLead(res, earth.PeriodDays))
	if !strings.Contains(buf.String(), want) {
		t.Errorf("transfer report missing %q:\n%s", want, buf.String())
	}
	if strings.Contains(buf.String(), fmt.Sprintf("leads by %.1f°", res.PhaseAngleDeg)) {
		t.Errorf("inbound report uses the outer-body phase angle:\n%s", buf.String())
	}
}

func TestPhaseExplanation(t *testing.T) {
	if got := PhaseExplanation("Venus", -54); !strings.Contains(got, "trails by 54.0") {
		t.Errorf("PhaseExplanation(-54) = %q", got)
	}
	if got := PhaseExplanation("X", 0); !strings.Contains(got, "conjunction") {
		t.Errorf("PhaseExplanation(0) = %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{0, "0d"},
		{45.4, "45d"},
		{365.256, "1y 0d"},
		{3*365.256 + 120, "3y 120d"},
		{-400, "-1y 35d"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.days); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
