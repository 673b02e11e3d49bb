// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/eclipse"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewOrrery ViewMode = iota
	ViewMission
	ViewEclipses
	ViewTimeMachine
	numViews
)

// tickInterval is the frame period. Wall time between ticks is capped at
// maxTickGap so a stalled terminal does not jump the clock.
const (
	tickInterval = 100 * time.Millisecond
	maxTickGap   = time.Second
	headerLines  = 9
	footerLines  = 2
)

// Msg types for Bubble Tea
type (
	// TickMsg advances the clock and renders a frame.
	TickMsg time.Time

	// FocusMsg centers the orrery on a body. An empty name is the Sun.
	FocusMsg struct {
		Name string
	}

	// SetMissionMsg plots a transfer.
	SetMissionMsg struct {
		Mission state.Mission
	}

	// ClearMissionMsg removes the plotted transfer.
	ClearMissionMsg struct{}

	// JumpToEventMsg sets the clock to a time machine event.
	JumpToEventMsg struct {
		ID string
	}

	// ReturnToPresentMsg resets the clock to J2000 and resumes it.
	ReturnToPresentMsg struct{}

	// SeekMsg sets the clock to an elapsed day count and pauses it.
	SeekMsg struct {
		Days float64
	}

	// ClearEclipsesMsg empties the alignment log.
	ClearEclipsesMsg struct{}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state    *state.Manager
	sys      *system.System
	detector *eclipse.Detector
	log      *logging.Logger

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	showHelp  bool
	statusMsg string
	lastTick  time.Time

	// Current frame
	st   state.Snapshot
	snap system.Snapshot

	// Sub-models
	orrery      OrreryModel
	mission     MissionModel
	eclipses    EclipseLogModel
	timeMachine TimeMachineModel
}

// New creates a new root UI model. log may be nil.
func New(stateMgr *state.Manager, sys *system.System, log *logging.Logger) Model {
	if log == nil {
		log = logging.Discard()
	}
	m := Model{
		state:       stateMgr,
		sys:         sys,
		detector:    eclipse.NewDetector(eclipse.CadenceDays, eclipse.DefaultScansPerSecond, log.With("eclipse")),
		log:         log,
		viewMode:    ViewOrrery,
		orrery:      NewOrreryModel(sys),
		mission:     NewMissionModel(),
		eclipses:    NewEclipseLogModel(),
		timeMachine: NewTimeMachineModel(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		} else {
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentHeight := max(msg.Height-headerLines-footerLines, 5)
		m.orrery = m.orrery.SetSize(msg.Width, contentHeight)
		m.mission = m.mission.SetSize(msg.Width, contentHeight)
		m.eclipses = m.eclipses.SetSize(msg.Width, contentHeight)
		m.timeMachine = m.timeMachine.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		now := time.Time(msg)
		var dt time.Duration
		if !m.lastTick.IsZero() {
			dt = min(now.Sub(m.lastTick), maxTickGap)
		}
		m.lastTick = now
		m.state.Advance(dt)
		m.refresh()

	case FocusMsg:
		m.state.SetFocus(msg.Name)
		m.state.Select(msg.Name)
		m.refresh()

	case SetMissionMsg:
		m.state.SetMission(msg.Mission.Origin, msg.Mission.Destination)
		m.statusMsg = fmt.Sprintf("Mission plotted: %s → %s", msg.Mission.Origin, msg.Mission.Destination)
		m.log.Info("mission %s -> %s", msg.Mission.Origin, msg.Mission.Destination)
		m.viewMode = ViewOrrery
		m.refresh()

	case ClearMissionMsg:
		m.state.ClearMission()
		m.statusMsg = "Mission cleared"
		m.refresh()

	case JumpToEventMsg:
		ev, ok := catalog.EventByID(msg.ID)
		if !ok {
			m.statusMsg = fmt.Sprintf("Unknown event %q", msg.ID)
			break
		}
		m.state.JumpTo(ev)
		m.detector.Reset()
		m.statusMsg = fmt.Sprintf("Jumped to %s (%s)", ev.Name, ev.Date())
		m.log.Info("time machine: %s", ev.ID)
		m.viewMode = ViewOrrery
		m.refresh()

	case ReturnToPresentMsg:
		m.state.ReturnToPresent()
		m.detector.Reset()
		m.statusMsg = "Returned to J2000"
		m.refresh()

	case SeekMsg:
		m.state.SetElapsedDays(msg.Days)
		m.state.SetPaused(true)
		m.detector.Reset()
		m.statusMsg = "Clock set to " + catalog.TimeFromDays(msg.Days).Format("2006-01-02")
		m.viewMode = ViewOrrery
		m.refresh()

	case ClearEclipsesMsg:
		m.state.ClearEclipses()
		m.statusMsg = "Alignment log cleared"
		m.refresh()

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// handleGlobalKey applies keys that work in every view. It reports false
// for keys the active view should handle.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return tea.Quit, true

	case "tab":
		m.viewMode = (m.viewMode + 1) % numViews
	case "shift+tab":
		m.viewMode = (m.viewMode + numViews - 1) % numViews
	case "p":
		m.viewMode = ViewMission
	case "e":
		m.viewMode = ViewEclipses
	case "m":
		m.viewMode = ViewTimeMachine
	case "h", "?":
		m.showHelp = !m.showHelp
	case "esc":
		switch {
		case m.showHelp:
			m.showHelp = false
		case m.viewMode != ViewOrrery:
			m.viewMode = ViewOrrery
		default:
			m.state.SetFocus("")
			m.state.Select("")
		}

	case " ":
		if m.state.TogglePause() {
			m.statusMsg = "Paused"
		} else {
			m.statusMsg = "Running"
		}
	case "+", "=":
		m.statusMsg = fmt.Sprintf("Speed %g d/s", m.state.SpeedUp())
	case "-", "_":
		m.statusMsg = fmt.Sprintf("Speed %g d/s", m.state.SpeedDown())
	case "s":
		m.statusMsg = "Scale: " + m.state.ToggleScale().String()

	case "o", "l", "b", "c", "g", "E":
		t := toggleKeys[key]
		on := m.state.Toggle(t)
		if t == state.ToggleEclipses {
			m.detector.Reset()
		}
		m.statusMsg = fmt.Sprintf("%s %s", t, onOff(on))

	case "0":
		m.state.SetFocus("")
		m.state.Select("")
	case "1", "2", "3", "4", "5", "6", "7", "8":
		p := catalog.Planets[int(key[0]-'1')]
		m.state.SetFocus(p.Name)
		m.state.Select(p.Name)

	default:
		return nil, false
	}
	m.refresh()
	return nil, true
}

var toggleKeys = map[string]state.Toggle{
	"o": state.ToggleOrbits,
	"l": state.ToggleLabels,
	"b": state.ToggleBelt,
	"c": state.ToggleComets,
	"g": state.ToggleGravityGrid,
	"E": state.ToggleEclipses,
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// refresh evaluates the current frame, runs the alignment detector and
// pushes the result to every sub-model.
func (m *Model) refresh() {
	m.st = m.state.Snapshot()
	m.snap = m.sys.Evaluate(m.st.ElapsedDays, m.st.Scale)

	if m.st.Show(state.ToggleEclipses) {
		found := m.detector.Check(m.snap)
		for _, ev := range found {
			m.state.AddEclipse(ev)
			m.log.Debug("alignment %s %.2f at day %.0f", ev.Pair(), ev.Alignment, ev.Time)
		}
		if n := len(found); n > 0 {
			last := found[n-1]
			m.statusMsg = fmt.Sprintf("Alignment: %s (%.0f%%)", last.Pair(), last.Alignment*100)
			m.st = m.state.Snapshot()
		}
	}

	m.orrery = m.orrery.UpdateData(m.st, m.snap)
	m.mission = m.mission.UpdateData(m.st, m.snap)
	m.eclipses = m.eclipses.UpdateData(m.st)
	m.timeMachine = m.timeMachine.UpdateData(m.st)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewOrrery:
		m.orrery, cmd = m.orrery.Update(msg)
	case ViewMission:
		m.mission, cmd = m.mission.Update(msg)
	case ViewEclipses:
		m.eclipses, cmd = m.eclipses.Update(msg)
	case ViewTimeMachine:
		m.timeMachine, cmd = m.timeMachine.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch {
	case m.showHelp:
		content = renderHelp()
	case m.viewMode == ViewMission:
		content = m.mission.View()
	case m.viewMode == ViewEclipses:
		content = m.eclipses.View()
	case m.viewMode == ViewTimeMachine:
		content = m.timeMachine.View()
	default:
		content = m.orrery.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ╔═╗╦═╗╦═╗╔═╗╦═╗╦ ╦`,
		`  ║ ║╠╦╝╠╦╝║╣ ╠╦╝╚╦╝`,
		`  ╚═╝╩╚═╩╚═╚═╝╩╚═ ╩ `,
	}

	var b strings.Builder
	b.WriteString("\n")
	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Keplerian Solar System · Terminal Orrery"))
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("  (c) 2025 litescript.net | v%s | [h]elp", version.Version)))
	b.WriteString("\n\n")
	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// deep blue at the left edge through violet to solar gold, darker toward
// the bottom row.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(max(width, 1))
	yRatio := float64(row) / float64(max(height, 1))

	type rgb struct{ r, g, b float64 }
	stops := []rgb{
		{59, 130, 246}, // blue
		{139, 92, 246}, // violet
		{236, 72, 153}, // pink
		{251, 191, 36}, // gold
	}
	seg := xRatio * float64(len(stops)-1)
	i := min(int(seg), len(stops)-2)
	t := seg - float64(i)
	a, c := stops[i], stops[i+1]

	fade := 1.0 - yRatio*0.4
	clamp := func(v float64) int {
		return max(0, min(255, int(v*fade)))
	}
	return fmt.Sprintf("#%02X%02X%02X",
		clamp(a.r+t*(c.r-a.r)),
		clamp(a.g+t*(c.g-a.g)),
		clamp(a.b+t*(c.b-a.b)),
	)
}

func (m Model) renderTabs() string {
	tabs := []string{"Orrery", "[p] Mission", "[e] Alignments", "[m] Time Machine"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	clock := "▶"
	if m.st.Paused {
		clock = "⏸"
	}
	status := accentStyle.Render(clock) + dimStyle.Render(fmt.Sprintf(" %s · %g d/s",
		catalog.TimeFromDays(m.st.ElapsedDays).Format("2006-01-02"), m.st.Speed))

	var help string
	switch m.viewMode {
	case ViewMission:
		help = dimStyle.Render("←/→: column | ↑↓: planet | enter: plot | x: clear")
	case ViewEclipses:
		help = dimStyle.Render("↑↓: navigate | enter: seek | x: clear log")
	case ViewTimeMachine:
		help = dimStyle.Render("↑↓: navigate | enter: jump | r: present")
	default:
		help = dimStyle.Render("space: pause | +/-: speed | [/]: zoom | arrows: pan | n/N: focus | s: scale | h: help")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func renderHelp() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Width(14)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Clock", [][2]string{
			{"space", "pause / resume"},
			{"+ / -", "faster / slower"},
			{"m", "time machine"},
		}},
		{"View", [][2]string{
			{"tab", "next view"},
			{"s", "realistic / exaggerated scale"},
			{"[ / ]", "zoom out / in"},
			{"arrows", "pan"},
			{"r", "reset zoom and pan"},
			{"t", "starfield"},
		}},
		{"Layers", [][2]string{
			{"o", "orbits"},
			{"l", "labels"},
			{"b", "asteroid belt"},
			{"c", "comets"},
			{"g", "gravity grid"},
			{"E", "alignment detection"},
		}},
		{"Bodies", [][2]string{
			{"1-8", "focus a planet"},
			{"0", "focus the Sun"},
			{"n / N", "cycle focus"},
			{"esc", "clear focus / back"},
		}},
		{"Tools", [][2]string{
			{"p", "mission planner"},
			{"e", "alignment log"},
			{"h / ?", "this help"},
			{"q", "quit"},
		}},
	}

	var cols []string
	for _, s := range sections {
		var b strings.Builder
		b.WriteString(headerStyle.Render(s.title))
		b.WriteString("\n")
		for _, kv := range s.keys {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
		cols = append(cols, lipgloss.NewStyle().MarginRight(4).Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// ViewMode returns the active view.
func (m Model) ViewMode() ViewMode {
	return m.viewMode
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
