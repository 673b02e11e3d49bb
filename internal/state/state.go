// Package state provides thread-safe state management for the application:
// the simulation clock, display toggles, focus, mission and eclipse history.
package state

import (
	"math"
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/eclipse"
)

// SpeedOptions are the selectable clock rates in simulated days per second.
var SpeedOptions = []float64{1, 10, 50, 100, 500, 1000, 5000, 10000}

// Toggle identifies a display layer that can be switched on and off.
type Toggle int

const (
	ToggleOrbits Toggle = iota
	ToggleLabels
	ToggleBelt
	ToggleEclipses
	ToggleComets
	ToggleGravityGrid
	numToggles
)

func (t Toggle) String() string {
	switch t {
	case ToggleOrbits:
		return "orbits"
	case ToggleLabels:
		return "labels"
	case ToggleBelt:
		return "asteroid belt"
	case ToggleEclipses:
		return "eclipses"
	case ToggleComets:
		return "comets"
	case ToggleGravityGrid:
		return "gravity grid"
	default:
		return "unknown"
	}
}

// Mission is a planned transfer between two catalogue planets.
type Mission struct {
	Origin      string
	Destination string
}

// Valid reports whether both ends are set and differ.
func (m Mission) Valid() bool {
	return m.Origin != "" && m.Destination != "" && m.Origin != m.Destination
}

// Config holds configuration for the state manager.
type Config struct {
	StartDays   float64 // elapsed days since J2000 at startup
	Speed       float64 // snapped to SpeedOptions
	Paused      bool
	Scale       astro.ScaleMode
	MaxEclipses int

	ShowOrbits      bool
	ShowLabels      bool
	ShowBelt        bool
	ShowEclipses    bool
	ShowComets      bool
	ShowGravityGrid bool
}

// DefaultConfig returns the startup configuration.
func DefaultConfig() Config {
	return Config{
		Speed:        1,
		Scale:        astro.ScaleExaggerated,
		MaxEclipses:  20,
		ShowOrbits:   true,
		ShowLabels:   true,
		ShowBelt:     true,
		ShowEclipses: true,
		ShowComets:   true,
	}
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Clock
	elapsedDays float64
	paused      bool
	speedIdx    int

	// Display
	scale   astro.ScaleMode
	visible [numToggles]bool

	// Camera and selection
	focus    string
	selected string

	mission     Mission
	activeEvent string

	// Eclipse log (ring buffer)
	eclipses     []eclipse.Event
	maxEclipses  int
	eclipseWrite int
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEclipses := cfg.MaxEclipses
	if maxEclipses <= 0 {
		maxEclipses = 20
	}
	m := &Manager{
		paused:      cfg.Paused,
		speedIdx:    speedIndex(cfg.Speed),
		scale:       cfg.Scale,
		maxEclipses: maxEclipses,
		eclipses:    make([]eclipse.Event, 0, maxEclipses),
	}
	if isFinite(cfg.StartDays) {
		m.elapsedDays = cfg.StartDays
	}
	m.visible[ToggleOrbits] = cfg.ShowOrbits
	m.visible[ToggleLabels] = cfg.ShowLabels
	m.visible[ToggleBelt] = cfg.ShowBelt
	m.visible[ToggleEclipses] = cfg.ShowEclipses
	m.visible[ToggleComets] = cfg.ShowComets
	m.visible[ToggleGravityGrid] = cfg.ShowGravityGrid
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// speedIndex returns the SpeedOptions index closest to v.
func speedIndex(v float64) int {
	best := 0
	for i, opt := range SpeedOptions {
		if math.Abs(opt-v) < math.Abs(SpeedOptions[best]-v) {
			best = i
		}
	}
	return best
}

// SnapSpeed returns the entry of SpeedOptions nearest to v.
func SnapSpeed(v float64) float64 {
	return SpeedOptions[speedIndex(v)]
}

// Advance moves the clock by wall time at the current speed and returns the
// new elapsed days. A paused clock does not move.
func (m *Manager) Advance(wall time.Duration) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.paused && wall > 0 {
		m.elapsedDays += SpeedOptions[m.speedIdx] * wall.Seconds()
	}
	return m.elapsedDays
}

// ElapsedDays returns simulated days since J2000.
func (m *Manager) ElapsedDays() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.elapsedDays
}

// SetElapsedDays moves the clock. Non-finite values are ignored.
func (m *Manager) SetElapsedDays(days float64) {
	if !isFinite(days) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elapsedDays = days
}

// Paused reports whether the clock is stopped.
func (m *Manager) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// SetPaused stops or starts the clock.
func (m *Manager) SetPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = paused
}

// TogglePause flips the clock and returns the new paused state.
func (m *Manager) TogglePause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = !m.paused
	return m.paused
}

// Speed returns the clock rate in simulated days per wall second.
func (m *Manager) Speed() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return SpeedOptions[m.speedIdx]
}

// SetSpeed snaps v to SpeedOptions.
func (m *Manager) SetSpeed(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speedIdx = speedIndex(v)
}

// SpeedUp moves to the next faster option and returns the new speed.
func (m *Manager) SpeedUp() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.speedIdx < len(SpeedOptions)-1 {
		m.speedIdx++
	}
	return SpeedOptions[m.speedIdx]
}

// SpeedDown moves to the next slower option and returns the new speed.
func (m *Manager) SpeedDown() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.speedIdx > 0 {
		m.speedIdx--
	}
	return SpeedOptions[m.speedIdx]
}

// Scale returns the current scale mode.
func (m *Manager) Scale() astro.ScaleMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scale
}

// SetScale sets the scale mode.
func (m *Manager) SetScale(mode astro.ScaleMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scale = mode
}

// ToggleScale switches between realistic and exaggerated and returns the new
// mode.
func (m *Manager) ToggleScale() astro.ScaleMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scale = m.scale.Toggle()
	return m.scale
}

// Visible reports whether a display layer is on.
func (m *Manager) Visible(t Toggle) bool {
	if t < 0 || t >= numToggles {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible[t]
}

// SetVisible switches a display layer.
func (m *Manager) SetVisible(t Toggle, on bool) {
	if t < 0 || t >= numToggles {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible[t] = on
}

// Toggle flips a display layer and returns its new state.
func (m *Manager) Toggle(t Toggle) bool {
	if t < 0 || t >= numToggles {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible[t] = !m.visible[t]
	return m.visible[t]
}

// Focus returns the body the camera follows, or "" for the Sun-centred view.
func (m *Manager) Focus() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.focus
}

// SetFocus points the camera at a body; "" returns to the Sun.
func (m *Manager) SetFocus(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focus = name
}

// Selected returns the body whose details are shown, or "".
func (m *Manager) Selected() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

// Select sets the body whose details are shown.
func (m *Manager) Select(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = name
}

// Mission returns the planned transfer.
func (m *Manager) Mission() Mission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mission
}

// SetMission sets the planned transfer.
func (m *Manager) SetMission(origin, destination string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mission = Mission{Origin: origin, Destination: destination}
}

// ClearMission removes the planned transfer.
func (m *Manager) ClearMission() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mission = Mission{}
}

// JumpTo moves the clock to a catalogue event, pauses it and focuses the
// event's planet when it has one.
func (m *Manager) JumpTo(ev catalog.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.elapsedDays = ev.ElapsedDays()
	m.paused = true
	m.activeEvent = ev.ID
	if ev.FocusPlanet != "" {
		m.focus = ev.FocusPlanet
		m.selected = ev.FocusPlanet
	}
}

// ReturnToPresent resets the clock to J2000, clears the active event and
// resumes.
func (m *Manager) ReturnToPresent() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.elapsedDays = 0
	m.activeEvent = ""
	m.paused = false
}

// ActiveEvent returns the ID of the event last jumped to, or "".
func (m *Manager) ActiveEvent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeEvent
}

// AddEclipse records an alignment, dropping the oldest when full.
func (m *Manager) AddEclipse(ev eclipse.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.eclipses) < m.maxEclipses {
		m.eclipses = append(m.eclipses, ev)
	} else {
		m.eclipses[m.eclipseWrite] = ev
		m.eclipseWrite = (m.eclipseWrite + 1) % m.maxEclipses
	}
}

// Eclipses returns the recorded alignments, oldest first.
func (m *Manager) Eclipses() []eclipse.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eclipsesOrdered()
}

// RecentEclipses returns the last n alignments, oldest first.
func (m *Manager) RecentEclipses(n int) []eclipse.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.eclipsesOrdered()
	if n < 0 {
		n = 0
	}
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// ClearEclipses empties the alignment log.
func (m *Manager) ClearEclipses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eclipses = m.eclipses[:0]
	m.eclipseWrite = 0
}

func (m *Manager) eclipsesOrdered() []eclipse.Event {
	if len(m.eclipses) == 0 {
		return nil
	}

	if len(m.eclipses) < m.maxEclipses {
		result := make([]eclipse.Event, len(m.eclipses))
		copy(result, m.eclipses)
		return result
	}

	// Full: oldest entry sits at the write cursor.
	result := make([]eclipse.Event, m.maxEclipses)
	for i := 0; i < m.maxEclipses; i++ {
		result[i] = m.eclipses[(m.eclipseWrite+i)%m.maxEclipses]
	}
	return result
}

// Snapshot is a consistent copy of the state for one frame.
type Snapshot struct {
	ElapsedDays float64
	Paused      bool
	Speed       float64
	Scale       astro.ScaleMode
	Visible     [numToggles]bool
	Focus       string
	Selected    string
	Mission     Mission
	ActiveEvent string
	Eclipses    []eclipse.Event
}

// Show reports whether a display layer is on in the snapshot.
func (s Snapshot) Show(t Toggle) bool {
	if t < 0 || t >= numToggles {
		return false
	}
	return s.Visible[t]
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		ElapsedDays: m.elapsedDays,
		Paused:      m.paused,
		Speed:       SpeedOptions[m.speedIdx],
		Scale:       m.scale,
		Visible:     m.visible,
		Focus:       m.focus,
		Selected:    m.selected,
		Mission:     m.mission,
		ActiveEvent: m.activeEvent,
		Eclipses:    m.eclipsesOrdered(),
	}
}
