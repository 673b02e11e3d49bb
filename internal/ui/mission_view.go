package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/transfer"
)

// MissionModel picks an origin and destination planet and shows the Hohmann
// transfer between them.
type MissionModel struct {
	width  int
	height int
	st     state.Snapshot
	snap   system.Snapshot

	column int // 0 origin, 1 destination
	origin int // index into catalog.Planets
	dest   int
}

// NewMissionModel creates a mission planner preset to Earth → Mars.
func NewMissionModel() MissionModel {
	return MissionModel{
		origin: max(catalog.PlanetIndex("Earth"), 0),
		dest:   max(catalog.PlanetIndex("Mars"), 0),
	}
}

// SetSize updates the viewport size.
func (m MissionModel) SetSize(width, height int) MissionModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with a new frame. An active mission moves the cursors
// onto its planets.
func (m MissionModel) UpdateData(st state.Snapshot, snap system.Snapshot) MissionModel {
	if st.Mission != m.st.Mission && st.Mission.Valid() {
		if i := catalog.PlanetIndex(st.Mission.Origin); i >= 0 {
			m.origin = i
		}
		if i := catalog.PlanetIndex(st.Mission.Destination); i >= 0 {
			m.dest = i
		}
	}
	m.st = st
	m.snap = snap
	return m
}

// Update handles messages.
func (m MissionModel) Update(msg tea.Msg) (MissionModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	n := len(catalog.Planets)
	switch key.String() {
	case "left":
		m.column = 0
	case "right":
		m.column = 1
	case "up", "k":
		m.moveCursor(-1, n)
	case "down", "j":
		m.moveCursor(1, n)
	case "enter":
		if m.origin == m.dest {
			return m, nil
		}
		mission := state.Mission{
			Origin:      catalog.Planets[m.origin].Name,
			Destination: catalog.Planets[m.dest].Name,
		}
		return m, func() tea.Msg { return SetMissionMsg{Mission: mission} }
	case "x":
		return m, func() tea.Msg { return ClearMissionMsg{} }
	}
	return m, nil
}

func (m *MissionModel) moveCursor(dir, n int) {
	if m.column == 0 {
		m.origin = (m.origin + dir + n) % n
	} else {
		m.dest = (m.dest + dir + n) % n
	}
}

// Selection returns the planets under the cursors.
func (m MissionModel) Selection() (origin, destination catalog.PlanetData) {
	return catalog.Planets[m.origin], catalog.Planets[m.dest]
}

// View renders the mission planner.
func (m MissionModel) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("Mission Planner"))
	if m.st.Mission.Valid() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("   active: %s → %s", m.st.Mission.Origin, m.st.Mission.Destination)))
	}
	b.WriteString("\n\n")

	lists := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderColumn("Origin", m.origin, m.column == 0),
		"   ",
		m.renderColumn("Destination", m.dest, m.column == 1),
		"   ",
		m.renderTransfer(),
	)
	b.WriteString(lists)
	return b.String()
}

func (m MissionModel) renderColumn(title string, cursor int, active bool) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	if active {
		titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	}
	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	unselectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for i, p := range catalog.Planets {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")
		name := fmt.Sprintf("%-8s", p.Name)
		if i == cursor {
			b.WriteString(dot + selectedStyle.Render(name))
		} else {
			b.WriteString(dot + unselectedStyle.Render(name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m MissionModel) renderTransfer() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	arcStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(arcColor))

	origin, dest := m.Selection()
	if origin.Name == dest.Name {
		return dimStyle.Render("Pick two different planets.")
	}
	res := transfer.Compute(origin.DistanceMkm, dest.DistanceMkm)
	need := transfer.RequiredLead(res, dest.PeriodDays)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s → %s", origin.Name, dest.Name)))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("Departure Δv", fmt.Sprintf("%.2f km/s", res.DepartureDeltaV))
	row("Arrival Δv", fmt.Sprintf("%.2f km/s", res.ArrivalDeltaV))
	row("Total Δv", fmt.Sprintf("%.2f km/s", res.TotalDeltaV))
	row("Transfer time", fmt.Sprintf("%.0f d (%s)", res.TransferDays, system.FormatElapsed(res.TransferDays)))
	row("Transfer SMA", fmt.Sprintf("%.3f AU", res.TransferSMA))
	row("Eccentricity", fmt.Sprintf("%.4f", res.TransferEccentricity))
	row("Phase angle", fmt.Sprintf("%.1f°", res.PhaseAngleDeg))
	row("Required lead", fmt.Sprintf("%.1f°", need))
	b.WriteString(arcStyle.Render(system.PhaseExplanation(dest.Name, need)))
	b.WriteString("\n\n")

	o, d := m.snap.GetBody(origin.Name), m.snap.GetBody(dest.Name)
	if o != nil && d != nil {
		lead := transfer.Lead(o.EclipticLonDeg(), d.EclipticLonDeg())
		row("Current lead", fmt.Sprintf("%.1f°", signedDeg(lead)))
		syn := transfer.SynodicPeriod(origin.PeriodDays, dest.PeriodDays)
		row("Synodic period", fmt.Sprintf("%.0f d", syn))
		if wait, ok := transfer.WaitDays(lead, need, origin.PeriodDays, dest.PeriodDays); ok {
			date := catalog.TimeFromDays(m.st.ElapsedDays + wait).Format("2006-01-02")
			row("Next window", fmt.Sprintf("%s (in %s)", date, system.FormatElapsed(wait)))
			b.WriteString(windowBar(wait, syn, 30))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: plot on orrery · x: clear mission"))
	return b.String()
}

// signedDeg maps [0, 360) onto (-180, 180].
func signedDeg(a float64) float64 {
	if a > 180 {
		return a - 360
	}
	return a
}

// windowBar shows how much of the synodic cycle remains before the window.
func windowBar(wait, synodic float64, width int) string {
	if width <= 0 || math.IsInf(synodic, 0) || synodic <= 0 {
		return ""
	}
	elapsed := 1 - math.Max(0, math.Min(1, wait/synodic))
	filled := int(math.Round(elapsed * float64(width)))
	fill := lipgloss.NewStyle().Foreground(lipgloss.Color(arcColor))
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	return fill.Render(strings.Repeat("█", filled)) + empty.Render(strings.Repeat("░", width-filled))
}
