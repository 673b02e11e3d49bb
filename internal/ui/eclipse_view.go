package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/eclipse"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/system"
)

// EclipseLogModel lists recorded alignments, newest first.
type EclipseLogModel struct {
	width  int
	height int
	st     state.Snapshot
	events []eclipse.Event // newest first
	cursor int
	offset int
}

// NewEclipseLogModel creates an empty eclipse log view.
func NewEclipseLogModel() EclipseLogModel {
	return EclipseLogModel{}
}

// SetSize updates the viewport size.
func (m EclipseLogModel) SetSize(width, height int) EclipseLogModel {
	m.width = width
	m.height = height
	m.clampScroll()
	return m
}

// UpdateData refreshes the log from a state snapshot.
func (m EclipseLogModel) UpdateData(st state.Snapshot) EclipseLogModel {
	m.st = st
	n := len(st.Eclipses)
	m.events = make([]eclipse.Event, n)
	for i, ev := range st.Eclipses {
		m.events[n-1-i] = ev
	}
	m.clampScroll()
	return m
}

// Update handles messages.
func (m EclipseLogModel) Update(msg tea.Msg) (EclipseLogModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = len(m.events) - 1
	case "enter":
		if ev, ok := m.Selected(); ok {
			days := ev.Time
			return m, func() tea.Msg { return SeekMsg{Days: days} }
		}
	case "x":
		return m, func() tea.Msg { return ClearEclipsesMsg{} }
	}
	m.clampScroll()
	return m, nil
}

// Selected returns the event under the cursor.
func (m EclipseLogModel) Selected() (eclipse.Event, bool) {
	if m.cursor < 0 || m.cursor >= len(m.events) {
		return eclipse.Event{}, false
	}
	return m.events[m.cursor], true
}

func (m EclipseLogModel) visibleRows() int {
	return max(m.height-6, 3)
}

func (m *EclipseLogModel) clampScroll() {
	m.cursor = max(0, min(m.cursor, len(m.events)-1))
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(0, min(m.offset, len(m.events)-rows))
}

// View renders the eclipse log.
func (m EclipseLogModel) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	colStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("Alignment Log"))
	status := "detection on"
	if !m.st.Show(state.ToggleEclipses) {
		status = "detection off (E)"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("   %d recorded · %s", len(m.events), status)))
	b.WriteString("\n\n")

	if len(m.events) == 0 {
		b.WriteString(dimStyle.Render("  No alignments yet. Let the clock run, or speed it up with +."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(colStyle.Render(fmt.Sprintf("  %-12s %-10s %-18s %-9s", "Date", "Elapsed", "Pair", "Alignment")))
	b.WriteString("\n")

	end := min(m.offset+m.visibleRows(), len(m.events))
	for i := m.offset; i < end; i++ {
		ev := m.events[i]
		line := fmt.Sprintf("%-12s %-10s %-18s %4.0f%% ",
			ev.Date().Format("2006-01-02"),
			system.FormatElapsed(ev.Time),
			ev.Pair(),
			ev.Alignment*100,
		)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("▶ " + line))
		} else {
			b.WriteString(rowStyle.Render("  " + line))
		}
		b.WriteString(barStyle.Render(eclipse.Bar(ev.Alignment, 10)))
		b.WriteString("\n")
	}

	if end < len(m.events) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(m.events)-end)))
		b.WriteString("\n")
	}
	return b.String()
}
