package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/eclipse"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/system"
)

const (
	writeWait      = 5 * time.Second
	recentEclipses = 5
)

// Frame is one websocket message from the server.
type Frame struct {
	Type     string                 `json:"type"` // "frame" or "error"
	Seq      uint64                 `json:"seq,omitempty"`
	Paused   bool                   `json:"paused"`
	Speed    float64                `json:"speed"`
	Snapshot *system.SnapshotExport `json:"snapshot,omitempty"`
	Eclipses []eclipse.Event        `json:"eclipses,omitempty"` // newest last
	Error    string                 `json:"error,omitempty"`
}

// Command is a client request on the websocket. Commands act on the shared
// clock, so every connected client sees their effect.
//
//	{"cmd":"pause"} {"cmd":"resume"} {"cmd":"toggle_pause"}
//	{"cmd":"speed","value":500} {"cmd":"faster"} {"cmd":"slower"}
//	{"cmd":"scale","scale":"realistic"}
//	{"cmd":"seek","value":-5074}
//	{"cmd":"jump","event":"halley-1986"} {"cmd":"present"}
type Command struct {
	Cmd   string  `json:"cmd"`
	Value float64 `json:"value,omitempty"`
	Scale string  `json:"scale,omitempty"`
	Event string  `json:"event,omitempty"`
}

// Apply executes a command against the server's shared state.
func (s *Server) Apply(c Command) error {
	switch c.Cmd {
	case "pause":
		s.mgr.SetPaused(true)
	case "resume":
		s.mgr.SetPaused(false)
	case "toggle_pause":
		s.mgr.TogglePause()
	case "speed":
		s.mgr.SetSpeed(c.Value)
	case "faster":
		s.mgr.SpeedUp()
	case "slower":
		s.mgr.SpeedDown()
	case "scale":
		s.mgr.SetScale(astro.ParseScaleMode(c.Scale))
	case "seek":
		if !isFinite(c.Value) {
			return fmt.Errorf("seek: invalid value %v", c.Value)
		}
		s.mgr.SetElapsedDays(c.Value)
		s.resetDetector()
	case "jump":
		ev, ok := catalog.EventByID(c.Event)
		if !ok {
			return fmt.Errorf("jump: unknown event %q", c.Event)
		}
		s.mgr.JumpTo(ev)
		s.resetDetector()
	case "present":
		s.mgr.ReturnToPresent()
		s.resetDetector()
	default:
		return fmt.Errorf("unknown command %q", c.Cmd)
	}
	s.log.Debug("command %s applied", c.Cmd)
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.log.Warn("websocket upgrade from %s: %v", clientIP(r), err)
		return
	}
	defer conn.Close()

	metrics.StreamConnected()
	defer metrics.StreamDisconnected()

	ip := clientIP(r)
	start := time.Now()
	s.log.Info("stream connected from %s", ip)
	defer func() {
		s.log.Info("stream from %s closed after %s", ip, time.Since(start).Round(time.Second))
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errs := make(chan string, 8)
	go s.readCommands(ctx, cancel, conn, errs)

	if err := s.writeFrames(ctx, conn, errs); err != nil {
		s.log.Debug("stream to %s: %v", ip, err)
	}
}

// readCommands owns the connection's read side. It cancels the session when
// the client goes away.
func (s *Server) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, errs chan<- string) {
	defer cancel()
	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		if err := s.Apply(cmd); err != nil {
			select {
			case errs <- err.Error():
			case <-ctx.Done():
				return
			default:
				// Writer is behind; drop the report.
			}
		}
	}
}

// writeFrames owns the connection's write side, paced by a rate limiter.
func (s *Server) writeFrames(ctx context.Context, conn *websocket.Conn, errs <-chan string) error {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.FPS), 1)

	var seq uint64
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}

		for drained := false; !drained; {
			select {
			case msg := <-errs:
				if err := s.send(conn, Frame{Type: "error", Error: msg}); err != nil {
					return err
				}
			default:
				drained = true
			}
		}

		seq++
		if err := s.send(conn, s.frame(seq)); err != nil {
			return err
		}
		metrics.StreamFrame()
	}
}

func (s *Server) send(conn *websocket.Conn, f Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteJSON(f); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// frame builds the current frame from the shared state.
func (s *Server) frame(seq uint64) Frame {
	st := s.mgr.Snapshot()
	snap := s.sys.Evaluate(st.ElapsedDays, st.Scale)

	f := Frame{
		Type:     "frame",
		Seq:      seq,
		Paused:   st.Paused,
		Speed:    st.Speed,
		Snapshot: system.ExportSnapshot(snap, s.cfg.WithBelt),
	}
	if n := len(st.Eclipses); n > 0 {
		f.Eclipses = st.Eclipses[max(0, n-recentEclipses):]
	}
	return f
}
