// Package eclipse detects planet alignments as the simulation clock runs.
//
// A scan scores every planet pair (inner before outer, catalogue order) with
// orbit.AlignmentScore. Scans are expensive relative to a frame, so the
// Detector runs them at most once per CadenceDays of simulated time and, in
// wall-clock terms, no faster than its rate limiter allows.
package eclipse

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/system"
)

const (
	// ScanThreshold is the angular tolerance, in radians, used when scoring.
	ScanThreshold = 0.08
	// AcceptScore is the score an alignment must exceed to be recorded.
	AcceptScore = 0.3
	// CadenceDays is the simulated time between scans.
	CadenceDays = 10.0
	// DefaultScansPerSecond caps how often a Detector scans in wall time.
	DefaultScansPerSecond = 20
)

// Event is one recorded alignment.
type Event struct {
	Time      float64 `json:"time_days"` // elapsed days since J2000
	BodyA     string  `json:"inner"`
	BodyB     string  `json:"outer"`
	Alignment float64 `json:"alignment"` // (AcceptScore, 1]
}

// Pair returns "Inner–Outer".
func (e Event) Pair() string {
	return e.BodyA + "–" + e.BodyB
}

// Date returns the calendar instant of the event.
func (e Event) Date() time.Time {
	return catalog.TimeFromDays(e.Time)
}

// Scan scores every planet pair at one instant and returns the accepted
// alignments. planets must be in catalogue order (inner first).
func Scan(elapsedDays float64, planets []system.EclipticBody) []Event {
	var out []Event
	for i := 0; i < len(planets); i++ {
		for j := i + 1; j < len(planets); j++ {
			score := orbit.AlignmentScore(planets[i].Pos, planets[j].Pos, ScanThreshold)
			if score > AcceptScore {
				out = append(out, Event{
					Time:      elapsedDays,
					BodyA:     planets[i].Name,
					BodyB:     planets[j].Name,
					Alignment: score,
				})
			}
		}
	}
	return out
}

// Detector throttles scans as the clock moves. It is driven from a single
// goroutine (the UI update loop or a stream session) and is not safe for
// concurrent use.
type Detector struct {
	cadence float64
	limiter *rate.Limiter
	log     *logging.Logger

	checked   bool
	lastCheck float64
}

// NewDetector creates a detector that scans every cadenceDays of simulated
// time and at most scansPerSec times per wall second. A non-positive cadence
// uses CadenceDays; a non-positive scansPerSec disables the wall limit.
func NewDetector(cadenceDays float64, scansPerSec float64, log *logging.Logger) *Detector {
	if cadenceDays <= 0 || math.IsNaN(cadenceDays) {
		cadenceDays = CadenceDays
	}
	if log == nil {
		log = logging.Discard()
	}
	d := &Detector{cadence: cadenceDays, log: log}
	if scansPerSec > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(scansPerSec), 1)
	}
	return d
}

// Due reports whether a scan at elapsedDays is allowed by the simulated
// cadence. The wall limiter is not consulted.
func (d *Detector) Due(elapsedDays float64) bool {
	return !d.checked || math.Abs(elapsedDays-d.lastCheck) >= d.cadence
}

// Check scans the snapshot's planets if a scan is due and returns the
// accepted alignments. Skipped scans return nil. Jumping the clock backwards
// more than one cadence also triggers a scan.
func (d *Detector) Check(snap system.Snapshot) []Event {
	return d.CheckPlanets(snap.ElapsedDays, snap.Planets())
}

// CheckPlanets is Check for callers that already hold the planet list.
func (d *Detector) CheckPlanets(elapsedDays float64, planets []system.EclipticBody) []Event {
	if !d.Due(elapsedDays) {
		return nil
	}
	if d.limiter != nil && !d.limiter.Allow() {
		return nil
	}
	d.checked = true
	d.lastCheck = elapsedDays

	metrics.EclipseScan()
	events := Scan(elapsedDays, planets)
	for _, ev := range events {
		metrics.EclipseEvent(ev.BodyA, ev.BodyB)
		d.log.Debug("alignment %s at day %.1f score %.2f", ev.Pair(), ev.Time, ev.Alignment)
	}
	return events
}

// Reset forgets the last scan time so the next Check scans immediately.
func (d *Detector) Reset() {
	d.checked = false
	d.lastCheck = 0
}

// Sweep scans [start, start+span] at the detector cadence without a wall
// limit. A negative span sweeps backwards. It stops early with ctx's error.
func Sweep(ctx context.Context, sys *system.System, start, span float64) ([]Event, error) {
	if math.IsNaN(start) || math.IsNaN(span) || math.IsInf(span, 0) {
		return nil, fmt.Errorf("sweep: invalid range start=%v span=%v", start, span)
	}

	steps := int(math.Abs(span) / CadenceDays)
	step := CadenceDays
	if span < 0 {
		step = -CadenceDays
	}

	var out []Event
	for i := 0; i <= steps; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return out, err
			}
		}
		t := start + float64(i)*step
		metrics.EclipseScan()
		out = append(out, Scan(t, sys.PlanetsAt(t, astro.ScaleRealistic))...)
	}
	return out, nil
}

// WriteTable writes events as a text table, oldest first.
func WriteTable(w io.Writer, events []Event) {
	fmt.Fprintf(w, "%-12s %-10s %-18s %-9s\n", "Date", "Elapsed", "Pair", "Alignment")
	fmt.Fprintln(w, strings.Repeat("─", 58))

	for _, ev := range events {
		fmt.Fprintf(w, "%-12s %-10s %-18s %4.0f%% %s\n",
			ev.Date().Format("2006-01-02"),
			system.FormatElapsed(ev.Time),
			ev.Pair(),
			ev.Alignment*100,
			Bar(ev.Alignment, 8),
		)
	}

	fmt.Fprintf(w, "\nTotal: %d alignments\n", len(events))
}

// Bar renders a score in [0,1] as a fixed-width block bar.
func Bar(score float64, width int) string {
	if width <= 0 {
		return ""
	}
	score = math.Max(0, math.Min(1, score))
	filled := int(math.Round(score * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
