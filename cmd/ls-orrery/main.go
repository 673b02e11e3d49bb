// Command ls-orrery is a terminal orrery: a Keplerian model of the Sun,
// planets, comets and asteroid belt with a mission planner and alignment log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/eclipse"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/stream"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/transfer"
	"github.com/litescript/ls-orrery/internal/ui"
	"github.com/litescript/ls-orrery/internal/version"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	transferPair  string
	eclipseSpan   float64
	snapshotPath  string
	withBelt      bool
	watchInterval time.Duration
	beepMode      bool
	serveAddr     string
)

func main() {
	speed := flag.Float64("speed", 1, "Clock rate in simulated days per second")
	scale := flag.String("scale", "exaggerated", "Scale mode (exaggerated, realistic)")
	days := flag.Float64("days", 0, "Start time in days since J2000")
	date := flag.String("date", "", "Start date YYYY-MM-DD (overrides -days)")
	paused := flag.Bool("paused", false, "Start with the clock paused")
	beltSize := flag.Int("belt-size", system.DefaultOptions().BeltSize, "Number of asteroid belt particles")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to file (TUI mode discards logs otherwise)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on addr in TUI mode (e.g., :9090)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(&summaryMode, "summary", false, "Print body table instead of TUI")
	flag.StringVar(&transferPair, "transfer", "", "Print Hohmann transfer ORIGIN:DESTINATION (e.g., Earth:Mars)")
	flag.Float64Var(&eclipseSpan, "eclipses", 0, "Sweep alignments over this many days from the start")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.BoolVar(&withBelt, "belt", false, "Include belt particles in the JSON snapshot")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat output at interval, advancing the clock (e.g., 2s)")
	flag.BoolVar(&beepMode, "beep", false, "Beep on new alignments in watch mode (TTY only)")
	flag.StringVar(&serveAddr, "serve", "", "Serve websocket frames and HTTP API on addr (e.g., :8080)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ls-orrery %s\n", version.Version)
		return
	}

	logger := logging.New(logging.ParseLevel(*logLevel))
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	start, err := startDays(*days, *date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stateCfg := state.DefaultConfig()
	stateCfg.StartDays = start
	stateCfg.Speed = *speed
	stateCfg.Paused = *paused
	stateCfg.Scale = astro.ParseScaleMode(*scale)
	stateMgr := state.NewManager(stateCfg)

	opts := system.DefaultOptions()
	opts.BeltSize = max(*beltSize, 0)
	sys := system.New(opts)

	if serveAddr != "" {
		cfg := stream.DefaultConfig()
		cfg.Addr = serveAddr
		if err := stream.New(sys, stateMgr, cfg, logger.With("stream")).Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	headless := summaryMode || transferPair != "" || eclipseSpan != 0 || snapshotPath != ""
	if headless {
		if err := runHeadless(ctx, os.Stdout, sys, stateMgr, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The TUI owns the terminal; stray log lines would corrupt the screen.
	if *logFile == "" {
		logger.SetOutput(io.Discard)
	}
	if *metricsAddr != "" {
		go serveMetrics(ctx, *metricsAddr, logger.With("metrics"))
	}

	model := ui.New(stateMgr, sys, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// startDays resolves the start time. A non-empty date wins over days.
func startDays(days float64, date string) (float64, error) {
	if date == "" {
		return days, nil
	}
	d, err := catalog.ParseDate(date)
	if err != nil {
		return 0, fmt.Errorf("invalid -date: %w", err)
	}
	return d, nil
}

// parseTransfer parses ORIGIN:DESTINATION into two distinct catalogue planets.
func parseTransfer(s string) (origin, destination catalog.PlanetData, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return origin, destination, fmt.Errorf("invalid -transfer %q, want ORIGIN:DESTINATION", s)
	}
	if origin, err = catalog.Planet(strings.TrimSpace(a)); err != nil {
		return origin, destination, err
	}
	if destination, err = catalog.Planet(strings.TrimSpace(b)); err != nil {
		return origin, destination, err
	}
	if origin.Name == destination.Name {
		return origin, destination, fmt.Errorf("invalid -transfer %q: origin and destination are the same", s)
	}
	return origin, destination, nil
}

func serveMetrics(ctx context.Context, addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server: %v", err)
	}
}

// runHeadless handles all headless modes without starting the TUI.
func runHeadless(ctx context.Context, w io.Writer, sys *system.System, stateMgr *state.Manager, logger *logging.Logger) error {
	var pair [2]catalog.PlanetData
	if transferPair != "" {
		o, d, err := parseTransfer(transferPair)
		if err != nil {
			if errors.Is(err, catalog.ErrUnknownBody) {
				return fmt.Errorf("%w (known planets: %s)", err, strings.Join(catalog.PlanetNames(), ", "))
			}
			return err
		}
		pair = [2]catalog.PlanetData{o, d}
	}

	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	detector := eclipse.NewDetector(eclipse.CadenceDays, eclipse.DefaultScansPerSecond, logger.With("eclipse"))

	outputOnce := func() error {
		days := stateMgr.ElapsedDays()
		snap := sys.Evaluate(days, stateMgr.Scale())

		if snapshotPath != "" {
			export := system.ExportSnapshot(snap, withBelt)
			if snapshotPath == "-" {
				if err := export.WriteJSON(w); err != nil {
					return fmt.Errorf("write JSON to stdout: %w", err)
				}
			} else {
				f, err := os.Create(snapshotPath)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer f.Close()
				if err := export.WriteJSON(f); err != nil {
					return fmt.Errorf("write JSON to file: %w", err)
				}
			}
		}

		if summaryMode {
			system.WriteSummaryTable(w, snap)
		}

		if transferPair != "" {
			if summaryMode {
				fmt.Fprintln(w)
			}
			o, d := pair[0], pair[1]
			system.WriteTransfer(w, o, d, transfer.Compute(o.DistanceMkm, d.DistanceMkm))
		}

		if eclipseSpan != 0 {
			events, err := eclipse.Sweep(ctx, sys, days, eclipseSpan)
			if err != nil {
				return fmt.Errorf("eclipse sweep: %w", err)
			}
			if summaryMode || transferPair != "" {
				fmt.Fprintln(w)
			}
			eclipse.WriteTable(w, events)
		}

		if watchInterval > 0 {
			found := detector.CheckPlanets(days, sys.PlanetsAt(days, astro.ScaleRealistic))
			for _, ev := range found {
				stateMgr.AddEclipse(ev)
				fmt.Fprintf(w, "★ alignment %s (%.0f%%)\n", ev.Pair(), ev.Alignment*100)
			}
			if beepMode && isTTY && len(found) > 0 {
				fmt.Fprint(w, "\a")
			}
		}
		return nil
	}

	// Single run
	if watchInterval == 0 {
		return outputOnce()
	}

	// Watch mode: advance the clock by wall time and repeat
	if err := outputOnce(); err != nil {
		logger.Error("%v", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			stateMgr.Advance(now.Sub(last))
			last = now
			fmt.Fprintln(w)
			if err := outputOnce(); err != nil {
				logger.Error("%v", err)
			}
		}
	}
}
