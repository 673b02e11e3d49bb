package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/system"
)

// TimeMachineModel lists the dated events the clock can jump to.
type TimeMachineModel struct {
	width  int
	height int
	st     state.Snapshot
	cursor int
}

// NewTimeMachineModel creates the time machine view.
func NewTimeMachineModel() TimeMachineModel {
	return TimeMachineModel{}
}

// SetSize updates the viewport size.
func (m TimeMachineModel) SetSize(width, height int) TimeMachineModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with a new state snapshot.
func (m TimeMachineModel) UpdateData(st state.Snapshot) TimeMachineModel {
	m.st = st
	return m
}

// Update handles messages.
func (m TimeMachineModel) Update(msg tea.Msg) (TimeMachineModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(catalog.Events)
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor >= 0 && m.cursor < n {
			id := catalog.Events[m.cursor].ID
			return m, func() tea.Msg { return JumpToEventMsg{ID: id} }
		}
	case "r":
		return m, func() tea.Msg { return ReturnToPresentMsg{} }
	}
	return m, nil
}

// Selected returns the event under the cursor.
func (m TimeMachineModel) Selected() catalog.Event {
	return catalog.Events[m.cursor]
}

// View renders the event list and the detail of the selected event.
func (m TimeMachineModel) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)

	var list strings.Builder
	list.WriteString(headerStyle.Render("Time Machine"))
	list.WriteString("\n\n")
	for i, ev := range catalog.Events {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(ev.Category.Color())).Render("●")
		marker := " "
		if ev.ID == m.st.ActiveEvent {
			marker = "⏱"
		}
		line := fmt.Sprintf("%-30s %12s", ev.Name, ev.Date())
		if i == m.cursor {
			list.WriteString(marker + dot + " " + cursorStyle.Render(line))
		} else {
			list.WriteString(marker + dot + " " + rowStyle.Render(line))
		}
		list.WriteString("\n")
	}
	list.WriteString("\n")
	list.WriteString(dimStyle.Render("enter: jump · r: return to present"))

	return lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "    ", m.renderDetail())
}

func (m TimeMachineModel) renderDetail() string {
	ev := m.Selected()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ev.Category.Color()))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249")).Width(max(m.width-60, 30))

	var b strings.Builder
	b.WriteString(titleStyle.Render(ev.Name))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("Date", ev.Date())
	row("Category", string(ev.Category))
	if ev.FocusPlanet != "" {
		row("Focus", ev.FocusPlanet)
	}
	delta := ev.ElapsedDays() - m.st.ElapsedDays
	when := "now"
	switch {
	case delta > 0.5:
		when = "in " + system.FormatElapsed(delta)
	case delta < -0.5:
		when = system.FormatElapsed(-delta) + " ago"
	}
	row("From clock", when)
	b.WriteString("\n")
	b.WriteString(textStyle.Render(ev.Description))
	return b.String()
}
