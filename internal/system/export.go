package system

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/transfer"
)

// SnapshotExport is the JSON-serializable form of a Snapshot.
type SnapshotExport struct {
	ElapsedDays float64      `json:"elapsed_days"`
	Date        string       `json:"date"`
	Scale       string       `json:"scale"`
	Bodies      []BodyExport `json:"bodies"`
	Belt        [][3]float64 `json:"belt,omitempty"`
}

// BodyExport is a JSON-friendly body.
type BodyExport struct {
	Name           string     `json:"name"`
	Code           string     `json:"code"`
	Kind           string     `json:"kind"`
	PosAU          [3]float64 `json:"pos_au"`
	Scene          [3]float64 `json:"scene"`
	DistanceAU     float64    `json:"distance_au"`
	EclipticLonDeg float64    `json:"ecliptic_lon_deg"`
	EclipticLatDeg float64    `json:"ecliptic_lat_deg"`
	LightTimeSec   float64    `json:"light_time_sec"`
	TailLength     float64    `json:"tail_length,omitempty"`
	TailOpacity    float64    `json:"tail_opacity,omitempty"`
}

func vecArray(v astro.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// ExportSnapshot converts a Snapshot to its exportable form. The belt is
// included only when withBelt is set.
func ExportSnapshot(snap Snapshot, withBelt bool) *SnapshotExport {
	export := &SnapshotExport{
		ElapsedDays: snap.ElapsedDays,
		Date:        catalog.TimeFromDays(snap.ElapsedDays).Format("2006-01-02 15:04"),
		Scale:       snap.Scale.String(),
		Bodies:      make([]BodyExport, 0, len(snap.Bodies)),
	}

	for _, b := range snap.Bodies {
		be := BodyExport{
			Name:           b.Name,
			Code:           b.Code,
			Kind:           b.Kind.String(),
			PosAU:          vecArray(b.Pos),
			Scene:          vecArray(b.Scene),
			DistanceAU:     b.DistanceAU(),
			EclipticLonDeg: b.EclipticLonDeg(),
			EclipticLatDeg: b.EclipticLatDeg(),
			LightTimeSec:   b.LightTimeSec(),
		}
		if b.Kind == BodyComet {
			be.TailLength = b.Tail.Length
			be.TailOpacity = b.Tail.Opacity
		}
		export.Bodies = append(export.Bodies, be)
	}

	if withBelt {
		export.Belt = make([][3]float64, len(snap.Belt))
		for i, p := range snap.Belt {
			export.Belt[i] = vecArray(p)
		}
	}
	return export
}

// WriteJSON writes the snapshot as indented JSON.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteSummaryTable writes a text table of body positions.
func WriteSummaryTable(w io.Writer, snap Snapshot) {
	fmt.Fprintf(w, "Orrery @ %s (%s since J2000, %s scale)\n",
		catalog.TimeFromDays(snap.ElapsedDays).Format("2006-01-02 15:04 UTC"),
		FormatElapsed(snap.ElapsedDays), snap.Scale)
	fmt.Fprintln(w, strings.Repeat("─", 78))

	fmt.Fprintf(w, "%-16s %-7s %9s %9s %9s %8s %8s %9s\n",
		"Body", "Kind", "X (AU)", "Y (AU)", "Z (AU)", "r (AU)", "Lon", "Light")
	fmt.Fprintln(w, strings.Repeat("─", 78))

	var n int
	for _, b := range snap.Bodies {
		if b.Kind == BodySun {
			continue
		}
		n++
		fmt.Fprintf(w, "%-16s %-7s %9.3f %9.3f %9.3f %8.3f %7.1f° %9s\n",
			truncateStr(b.Name, 16),
			b.Kind,
			b.Pos.X, b.Pos.Y, b.Pos.Z,
			b.DistanceAU(),
			b.EclipticLonDeg(),
			astro.FormatLightTime(b.LightTimeSec()),
		)
	}

	fmt.Fprintf(w, "\nTotal: %d bodies, %d asteroids\n", n, len(snap.Belt))
}

// WriteTransfer writes a human-readable Hohmann transfer report.
func WriteTransfer(w io.Writer, origin, destination catalog.PlanetData, r transfer.Result) {
	lead := transfer.RequiredLead(r, destination.PeriodDays)
	fmt.Fprintf(w, "Hohmann transfer: %s → %s\n", origin.Name, destination.Name)
	fmt.Fprintln(w, strings.Repeat("─", 48))
	fmt.Fprintf(w, "  Departure orbit     %8.3f AU\n", r.R1AU)
	fmt.Fprintf(w, "  Arrival orbit       %8.3f AU\n", r.R2AU)
	fmt.Fprintf(w, "  Transfer SMA        %8.3f AU\n", r.TransferSMA)
	fmt.Fprintf(w, "  Eccentricity        %8.4f\n", r.TransferEccentricity)
	fmt.Fprintf(w, "  Departure Δv        %8.2f km/s\n", r.DepartureDeltaV)
	fmt.Fprintf(w, "  Arrival Δv          %8.2f km/s\n", r.ArrivalDeltaV)
	fmt.Fprintf(w, "  Total Δv            %8.2f km/s\n", r.TotalDeltaV)
	fmt.Fprintf(w, "  Transfer time       %8.0f days (%s)\n", r.TransferDays, FormatElapsed(r.TransferDays))
	fmt.Fprintf(w, "  Phase angle         %8.1f°\n", r.PhaseAngleDeg)
	fmt.Fprintf(w, "  Required lead       %8.1f°\n", lead)
	fmt.Fprintf(w, "\n%s\n", PhaseExplanation(destination.Name, lead))
}

// PhaseExplanation describes where the destination must be at departure,
// given its required lead over the origin (transfer.RequiredLead).
func PhaseExplanation(destination string, leadDeg float64) string {
	switch {
	case leadDeg > 0:
		return fmt.Sprintf("Launch when %s leads by %.1f°.", destination, leadDeg)
	case leadDeg < 0:
		return fmt.Sprintf("Launch when %s trails by %.1f°.", destination, -leadDeg)
	default:
		return fmt.Sprintf("Launch when %s is in conjunction.", destination)
	}
}

// YearDays is the sidereal year used for elapsed-time display.
const YearDays = 365.256

// FormatElapsed formats a day count as years and days, e.g. "3y 120d".
// Negative counts get a leading minus.
func FormatElapsed(days float64) string {
	sign := ""
	if days < 0 {
		sign = "-"
		days = -days
	}
	years := int(days / YearDays)
	rem := days - float64(years)*YearDays
	if years == 0 {
		return fmt.Sprintf("%s%.0fd", sign, rem)
	}
	return fmt.Sprintf("%s%dy %.0fd", sign, years, rem)
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
