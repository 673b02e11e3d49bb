package stream

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/system"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *state.Manager, *httptest.Server) {
	t.Helper()
	sys := system.New(system.Options{BeltSize: 64, BeltSeed: 1})
	mgr := state.NewManager(state.DefaultConfig())
	s := New(sys, mgr, cfg, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, mgr, ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	_, _, ts := newTestServer(t, Config{})

	var body map[string]bool
	if code := getJSON(t, ts.URL+"/healthz", &body); code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
	if !body["ok"] {
		t.Errorf("body = %v, want ok", body)
	}
}

func TestTransferEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t, Config{})

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantError string
	}{
		{"earth to mars", "?from=Earth&to=Mars", http.StatusOK, ""},
		{"case insensitive", "?from=earth&to=JUPITER", http.StatusOK, ""},
		{"missing to", "?from=Earth", http.StatusBadRequest, "required"},
		{"same planet", "?from=Mars&to=mars", http.StatusBadRequest, "differ"},
		{"unknown origin", "?from=Pluto&to=Mars", http.StatusNotFound, "Pluto"},
		{"unknown destination", "?from=Earth&to=Vulcan", http.StatusNotFound, "Vulcan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/transfer" + tt.query)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if tt.wantError != "" {
				var body map[string]string
				_ = json.NewDecoder(resp.Body).Decode(&body)
				if !strings.Contains(body["error"], tt.wantError) {
					t.Errorf("error = %q, want it to contain %q", body["error"], tt.wantError)
				}
				return
			}

			var tr TransferResponse
			if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !tr.Result.Valid() || tr.Result.TotalDeltaV <= 0 {
				t.Errorf("result = %+v, want a valid transfer", tr.Result)
			}
			if !strings.HasPrefix(tr.Explanation, "Launch when "+tr.Destination) {
				t.Errorf("explanation = %q", tr.Explanation)
			}
		})
	}
}

func TestTransferEndpoint_EarthMars(t *testing.T) {
	_, _, ts := newTestServer(t, Config{})

	var tr TransferResponse
	getJSON(t, ts.URL+"/api/transfer?from=Earth&to=Mars", &tr)

	if tr.Origin != "Earth" || tr.Destination != "Mars" {
		t.Errorf("route = %s→%s, want Earth→Mars", tr.Origin, tr.Destination)
	}
	if math.Abs(tr.Result.TotalDeltaV-5.6) > 0.2 {
		t.Errorf("TotalDeltaV = %.2f, want ~5.6", tr.Result.TotalDeltaV)
	}
	if math.Abs(tr.Result.TransferDays-259) > 5 {
		t.Errorf("TransferDays = %.0f, want ~259", tr.Result.TransferDays)
	}
	// Outbound, the destination is the outer body, so the two agree up to
	// the catalogue period versus the one implied by the mean distance.
	if math.Abs(tr.RequiredLeadDeg-tr.Result.PhaseAngleDeg) > 0.5 {
		t.Errorf("RequiredLeadDeg = %v, want ~PhaseAngleDeg %v for an outbound transfer", tr.RequiredLeadDeg, tr.Result.PhaseAngleDeg)
	}
}

func TestTransferEndpoint_Inbound(t *testing.T) {
	_, _, ts := newTestServer(t, Config{})

	var tr TransferResponse
	getJSON(t, ts.URL+"/api/transfer?from=Jupiter&to=Earth", &tr)

	if tr.RequiredLeadDeg >= 0 {
		t.Errorf("RequiredLeadDeg = %v, want Earth trailing", tr.RequiredLeadDeg)
	}
	if !strings.HasPrefix(tr.Explanation, "Launch when Earth trails by") {
		t.Errorf("explanation = %q", tr.Explanation)
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	_, mgr, ts := newTestServer(t, Config{})
	mgr.SetElapsedDays(1234)

	var snap system.SnapshotExport
	if code := getJSON(t, ts.URL+"/api/snapshot", &snap); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if snap.ElapsedDays != 1234 {
		t.Errorf("ElapsedDays = %v, want clock value 1234", snap.ElapsedDays)
	}
	wantBodies := 1 + len(catalog.Planets) + len(catalog.Comets)
	if len(snap.Bodies) != wantBodies {
		t.Errorf("len(Bodies) = %d, want %d", len(snap.Bodies), wantBodies)
	}
	if snap.Belt != nil {
		t.Error("belt included without belt=1")
	}
	if snap.Scale != astro.ScaleExaggerated.String() {
		t.Errorf("Scale = %q, want manager default", snap.Scale)
	}

	snap = system.SnapshotExport{}
	getJSON(t, ts.URL+"/api/snapshot?date=1986-02-09&scale=realistic&belt=1", &snap)
	if snap.ElapsedDays != -5074 {
		t.Errorf("ElapsedDays = %v, want -5074", snap.ElapsedDays)
	}
	if len(snap.Belt) != 64 {
		t.Errorf("len(Belt) = %d, want 64", len(snap.Belt))
	}
	if snap.Scale != astro.ScaleRealistic.String() {
		t.Errorf("Scale = %q, want realistic", snap.Scale)
	}
}

func TestSnapshotEndpoint_BadInput(t *testing.T) {
	_, _, ts := newTestServer(t, Config{})

	for _, q := range []string{"?days=abc", "?days=NaN", "?days=Inf", "?date=1986-13-45"} {
		if code := getJSON(t, ts.URL+"/api/snapshot"+q, nil); code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, code)
		}
	}
}

func TestEventsEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t, Config{})

	var events []EventResponse
	getJSON(t, ts.URL+"/api/events", &events)
	if len(events) != len(catalog.Events) {
		t.Fatalf("len(events) = %d, want %d", len(events), len(catalog.Events))
	}
	if events[0].ID != "halley-1986" || events[0].ElapsedDays != -5074 {
		t.Errorf("events[0] = %+v", events[0])
	}
}

func TestEclipsesEndpoint(t *testing.T) {
	s, _, ts := newTestServer(t, Config{})

	var events []map[string]any
	getJSON(t, ts.URL+"/api/eclipses", &events)
	if events == nil || len(events) != 0 {
		t.Errorf("events = %v, want empty list", events)
	}

	// Sweep the shared clock forward; recorded alignments show up.
	var recorded int
	for i := 0; i < 400; i++ {
		recorded += len(s.Step(time.Second * 10))
	}
	getJSON(t, ts.URL+"/api/eclipses", &events)
	if want := min(recorded, 20); len(events) != want {
		t.Errorf("len(events) = %d, want %d", len(events), want)
	}
}

func TestGravityEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t, Config{})

	var body GravityResponse
	if code := getJSON(t, ts.URL+"/api/gravity?n=9&scale=exaggerated", &body); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(body.Depth) != 9 || len(body.Depth[0]) != 9 {
		t.Fatalf("grid = %dx%d, want 9x9", len(body.Depth), len(body.Depth[0]))
	}
	if body.Extent != system.SceneExtent(astro.ScaleExaggerated) {
		t.Errorf("extent = %v, want %v", body.Extent, system.SceneExtent(astro.ScaleExaggerated))
	}
	center := body.Depth[4][4]
	for r, row := range body.Depth {
		for c, d := range row {
			if d > 0 {
				t.Errorf("depth[%d][%d] = %v, want <= 0", r, c, d)
			}
			if d < center {
				t.Errorf("depth[%d][%d] = %v deeper than center %v", r, c, d, center)
			}
		}
	}

	for _, q := range []string{"?n=1", "?n=abc", "?n=1000"} {
		if code := getJSON(t, ts.URL+"/api/gravity"+q, nil); code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, code)
		}
	}
}

func TestStep(t *testing.T) {
	s, mgr, _ := newTestServer(t, Config{})
	mgr.SetSpeed(10)

	s.Step(time.Second)
	if got := mgr.ElapsedDays(); got != 10 {
		t.Errorf("ElapsedDays = %v, want 10", got)
	}

	mgr.SetPaused(true)
	s.Step(time.Second)
	if got := mgr.ElapsedDays(); got != 10 {
		t.Errorf("paused ElapsedDays = %v, want 10", got)
	}

	mgr.SetVisible(state.ToggleEclipses, false)
	mgr.SetPaused(false)
	if got := s.Step(time.Second); got != nil {
		t.Errorf("Step with eclipses hidden = %v, want nil", got)
	}
}

func TestApply(t *testing.T) {
	s, mgr, _ := newTestServer(t, Config{})

	tests := []struct {
		cmd     Command
		wantErr bool
		check   func() bool
	}{
		{Command{Cmd: "pause"}, false, func() bool { return mgr.Paused() }},
		{Command{Cmd: "resume"}, false, func() bool { return !mgr.Paused() }},
		{Command{Cmd: "toggle_pause"}, false, func() bool { return mgr.Paused() }},
		{Command{Cmd: "speed", Value: 480}, false, func() bool { return mgr.Speed() == 500 }},
		{Command{Cmd: "faster"}, false, func() bool { return mgr.Speed() == 1000 }},
		{Command{Cmd: "slower"}, false, func() bool { return mgr.Speed() == 500 }},
		{Command{Cmd: "scale", Scale: "realistic"}, false, func() bool { return mgr.Scale() == astro.ScaleRealistic }},
		{Command{Cmd: "seek", Value: -100}, false, func() bool { return mgr.ElapsedDays() == -100 }},
		{Command{Cmd: "seek", Value: math.NaN()}, true, func() bool { return mgr.ElapsedDays() == -100 }},
		{Command{Cmd: "jump", Event: "venus-transit-2004"}, false, func() bool { return mgr.ActiveEvent() == "venus-transit-2004" }},
		{Command{Cmd: "jump", Event: "nope"}, true, func() bool { return mgr.ActiveEvent() == "venus-transit-2004" }},
		{Command{Cmd: "present"}, false, func() bool { return mgr.ElapsedDays() == 0 && !mgr.Paused() }},
		{Command{Cmd: "warp"}, true, func() bool { return true }},
	}

	for _, tt := range tests {
		err := s.Apply(tt.cmd)
		if (err != nil) != tt.wantErr {
			t.Errorf("Apply(%+v) error = %v, wantErr %v", tt.cmd, err, tt.wantErr)
		}
		if !tt.check() {
			t.Errorf("Apply(%+v) did not take effect", tt.cmd)
		}
	}
}

func TestRateLimit(t *testing.T) {
	_, _, ts := newTestServer(t, Config{APIRate: 0.001, APIBurst: 2})

	for i := 0; i < 2; i++ {
		if code := getJSON(t, ts.URL+"/api/events", nil); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := getJSON(t, ts.URL+"/api/events", nil); code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", code)
	}
	// Non-API routes are not limited.
	if code := getJSON(t, ts.URL+"/healthz", nil); code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", code)
	}
}

func TestIPRateLimiterPrunes(t *testing.T) {
	clock := time.Unix(0, 0)
	l := newIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return clock }

	for i := 0; i < 50; i++ {
		l.get(fmt.Sprintf("10.0.0.%d", i))
	}
	if got := l.size(); got != 50 {
		t.Fatalf("size = %d, want 50", got)
	}

	// One client stays active; the rest go idle and are dropped on the next
	// new client after the idle period.
	clock = clock.Add(limiterIdle / 2)
	keep := l.get("10.0.0.7")
	clock = clock.Add(limiterIdle/2 + time.Second)
	l.get("192.168.1.1")
	if got := l.size(); got != 2 {
		t.Errorf("size after idle sweep = %d, want 2", got)
	}
	if l.get("10.0.0.7") != keep {
		t.Error("active client lost its limiter")
	}
}

func TestIPRateLimiterCap(t *testing.T) {
	clock := time.Unix(0, 0)
	l := newIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return clock }
	l.maxIPs = 8

	for i := 0; i < 100; i++ {
		clock = clock.Add(time.Millisecond)
		l.get(fmt.Sprintf("10.0.%d.1", i))
		if got := l.size(); got > l.maxIPs {
			t.Fatalf("size = %d after %d clients, want <= %d", got, i+1, l.maxIPs)
		}
	}
	// The newest client is always kept.
	l.mu.Lock()
	_, ok := l.ips["10.0.99.1"]
	l.mu.Unlock()
	if !ok {
		t.Error("newest client was evicted")
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebsocketFrames(t *testing.T) {
	_, mgr, ts := newTestServer(t, Config{FPS: 50})
	mgr.SetElapsedDays(365.256)

	conn := dialWS(t, ts)

	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if f.Type != "frame" || f.Seq != 1 {
		t.Errorf("first frame type=%q seq=%d, want frame/1", f.Type, f.Seq)
	}
	if f.Snapshot == nil || f.Snapshot.ElapsedDays != 365.256 {
		t.Fatalf("snapshot = %+v, want elapsed 365.256", f.Snapshot)
	}
	if f.Snapshot.Belt != nil {
		t.Error("belt sent without WithBelt")
	}

	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if f.Seq != 2 {
		t.Errorf("second frame seq = %d, want 2", f.Seq)
	}
}

func TestWebsocketCommands(t *testing.T) {
	_, mgr, ts := newTestServer(t, Config{FPS: 50})
	conn := dialWS(t, ts)

	if err := conn.WriteJSON(Command{Cmd: "pause"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if err := conn.WriteJSON(Command{Cmd: "bogus"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var sawPaused, sawError bool
	for i := 0; i < 50 && !(sawPaused && sawError); i++ {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		switch f.Type {
		case "frame":
			sawPaused = sawPaused || f.Paused
		case "error":
			sawError = strings.Contains(f.Error, "bogus")
		}
	}

	if !sawPaused || !mgr.Paused() {
		t.Error("pause command not reflected in frames")
	}
	if !sawError {
		t.Error("no error frame for unknown command")
	}
}
