// Package stream serves the orrery over HTTP: a websocket frame stream with
// a small control channel, JSON endpoints for snapshots, transfers and
// events, and Prometheus metrics.
//
// Routes:
//
//	GET /ws              websocket frames (see Frame) and commands (see Command)
//	GET /api/snapshot    ?days=&scale=&belt=1
//	GET /api/transfer    ?from=Earth&to=Mars
//	GET /api/events      time machine presets
//	GET /api/eclipses    recorded alignments, oldest first
//	GET /healthz
//	GET /metrics
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/eclipse"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/transfer"
)

// Config holds server configuration.
type Config struct {
	Addr         string
	FPS          float64       // frames per second per websocket client
	TickInterval time.Duration // clock advance cadence
	APIRate      float64       // /api requests per second per client IP
	APIBurst     int
	WithBelt     bool // include the asteroid belt in websocket frames
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		FPS:          10,
		TickInterval: 100 * time.Millisecond,
		APIRate:      5,
		APIBurst:     20,
	}
}

// Server streams the shared simulation clock to websocket clients.
type Server struct {
	sys      *system.System
	mgr      *state.Manager
	cfg      Config
	log      *logging.Logger
	detector *eclipse.Detector
	limiters *ipRateLimiter
	upgrader websocket.Upgrader

	detMu sync.Mutex
}

// New creates a server over a system and a shared state manager.
func New(sys *system.System, mgr *state.Manager, cfg Config, log *logging.Logger) *Server {
	def := DefaultConfig()
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.APIRate <= 0 {
		cfg.APIRate = def.APIRate
	}
	if cfg.APIBurst <= 0 {
		cfg.APIBurst = def.APIBurst
	}
	if log == nil {
		log = logging.Discard()
	}

	return &Server{
		sys:      sys,
		mgr:      mgr,
		cfg:      cfg,
		log:      log,
		detector: eclipse.NewDetector(eclipse.CadenceDays, eclipse.DefaultScansPerSecond, log.With("eclipse")),
		limiters: newIPRateLimiter(rate.Limit(cfg.APIRate), cfg.APIBurst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the full HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/transfer", s.handleTransfer)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/eclipses", s.handleEclipses)
	mux.HandleFunc("GET /api/gravity", s.handleGravity)

	// metrics -> logging -> rate limit -> mux
	var handler http.Handler = mux
	handler = s.rateLimitMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = metrics.Middleware(handler)
	return handler
}

// Run advances the clock and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.runClock(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
}

func (s *Server) runClock(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Step(now.Sub(last))
			last = now
		}
	}
}

// Step advances the shared clock by wall time and runs the eclipse detector.
// It returns the alignments recorded by this step.
func (s *Server) Step(wall time.Duration) []eclipse.Event {
	elapsed := s.mgr.Advance(wall)
	if !s.mgr.Visible(state.ToggleEclipses) {
		return nil
	}

	s.detMu.Lock()
	events := s.detector.CheckPlanets(elapsed, s.sys.PlanetsAt(elapsed, astro.ScaleRealistic))
	s.detMu.Unlock()

	for _, ev := range events {
		s.mgr.AddEclipse(ev)
		s.log.Info("alignment %s (%.0f%%) on %s", ev.Pair(), ev.Alignment*100, ev.Date().Format("2006-01-02"))
	}
	return events
}

// resetDetector makes the next Step scan immediately, used after clock jumps.
func (s *Server) resetDetector() {
	s.detMu.Lock()
	s.detector.Reset()
	s.detMu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := s.mgr.ElapsedDays()
	if v := q.Get("days"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || !isFinite(d) {
			writeError(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		days = d
	}
	if v := q.Get("date"); v != "" {
		d, err := catalog.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date parameter, want YYYY-MM-DD")
			return
		}
		days = d
	}

	mode := s.mgr.Scale()
	if v := q.Get("scale"); v != "" {
		mode = astro.ParseScaleMode(v)
	}

	withBelt := q.Get("belt") == "1" || q.Get("belt") == "true"
	snap := s.sys.Evaluate(days, mode)
	writeJSON(w, http.StatusOK, system.ExportSnapshot(snap, withBelt))
}

// TransferResponse is the /api/transfer payload. RequiredLeadDeg is the
// destination's lead over the origin at departure; it tracks
// Result.PhaseAngleDeg only for outbound transfers.
type TransferResponse struct {
	Origin          string          `json:"origin"`
	Destination     string          `json:"destination"`
	Result          transfer.Result `json:"result"`
	RequiredLeadDeg float64         `json:"required_lead_deg"`
	Explanation     string          `json:"explanation"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to parameters are required")
		return
	}

	origin, err := catalog.Planet(from)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	dest, err := catalog.Planet(to)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if origin.Name == dest.Name {
		writeError(w, http.StatusBadRequest, "origin and destination must differ")
		return
	}

	res := transfer.Compute(origin.DistanceMkm, dest.DistanceMkm)
	lead := transfer.RequiredLead(res, dest.PeriodDays)
	writeJSON(w, http.StatusOK, TransferResponse{
		Origin:          origin.Name,
		Destination:     dest.Name,
		Result:          res,
		RequiredLeadDeg: lead,
		Explanation:     system.PhaseExplanation(dest.Name, lead),
	})
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrUnknownBody) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// EventResponse is one entry of /api/events.
type EventResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	ElapsedDays float64 `json:"elapsed_days"`
	Category    string  `json:"category"`
	FocusPlanet string  `json:"focus_planet,omitempty"`
	Description string  `json:"description"`
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	out := make([]EventResponse, 0, len(catalog.Events))
	for _, ev := range catalog.Events {
		out = append(out, EventResponse{
			ID:          ev.ID,
			Name:        ev.Name,
			Date:        ev.Date(),
			ElapsedDays: ev.ElapsedDays(),
			Category:    string(ev.Category),
			FocusPlanet: ev.FocusPlanet,
			Description: ev.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEclipses(w http.ResponseWriter, _ *http.Request) {
	events := s.mgr.Eclipses()
	if events == nil {
		events = []eclipse.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GravityResponse is the /api/gravity payload: well depth sampled over the
// scene, row 0 at +Y.
type GravityResponse struct {
	ElapsedDays float64     `json:"elapsed_days"`
	Scale       string      `json:"scale"`
	Extent      float64     `json:"extent"`
	Depth       [][]float64 `json:"depth"`
}

const maxGravityCells = 128

func (s *Server) handleGravity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	n := 32
	if v := q.Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2 || parsed > maxGravityCells {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid n parameter, want 2..%d", maxGravityCells))
			return
		}
		n = parsed
	}

	mode := s.mgr.Scale()
	if v := q.Get("scale"); v != "" {
		mode = astro.ParseScaleMode(v)
	}

	days := s.mgr.ElapsedDays()
	snap := s.sys.Evaluate(days, mode)
	extent := system.SceneExtent(mode)
	writeJSON(w, http.StatusOK, GravityResponse{
		ElapsedDays: days,
		Scale:       mode.String(),
		Extent:      extent,
		Depth:       system.WellGrid(n, n, extent, system.WellSources(snap)),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sr, r)
		s.log.Debug("%s %s %d %dms", r.Method, r.URL.Path, sr.statusCode, time.Since(start).Milliseconds())
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			if !s.limiters.get(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Idle client limiters are dropped after limiterIdle, and the table never
// holds more than maxLimiters entries.
const (
	limiterIdle = 3 * time.Minute
	maxLimiters = 10000
)

// ipRateLimiter hands out one token bucket per client IP.
type ipRateLimiter struct {
	mu        sync.Mutex
	ips       map[string]*clientLimiter
	r         rate.Limit
	b         int
	idle      time.Duration
	maxIPs    int
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(r rate.Limit, b int) *ipRateLimiter {
	return &ipRateLimiter{
		ips:    make(map[string]*clientLimiter),
		r:      r,
		b:      b,
		idle:   limiterIdle,
		maxIPs: maxLimiters,
		now:    time.Now,
	}
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if c, ok := l.ips[ip]; ok {
		c.lastSeen = now
		return c.limiter
	}

	if now.Sub(l.lastSweep) >= l.idle || len(l.ips) >= l.maxIPs {
		l.sweep(now)
	}
	if len(l.ips) >= l.maxIPs {
		l.evictOldest()
	}
	c := &clientLimiter{limiter: rate.NewLimiter(l.r, l.b), lastSeen: now}
	l.ips[ip] = c
	return c.limiter
}

// sweep drops limiters not used for the idle period. Caller holds mu.
func (l *ipRateLimiter) sweep(now time.Time) {
	for ip, c := range l.ips {
		if now.Sub(c.lastSeen) >= l.idle {
			delete(l.ips, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipRateLimiter) evictOldest() {
	var oldest string
	var seen time.Time
	for ip, c := range l.ips {
		if oldest == "" || c.lastSeen.Before(seen) {
			oldest, seen = ip, c.lastSeen
		}
	}
	delete(l.ips, oldest)
}

func (l *ipRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
