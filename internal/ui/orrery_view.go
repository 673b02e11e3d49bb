package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/transfer"
)

// Discrete zoom levels for clean stepping
var zoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0, 20.0}

const (
	defaultZoom   = 3 // index of 1.0
	hudLines      = 3
	orbitSegments = 128
	arcSegments   = 96
	arcColor      = "#00FF88"
)

// OrreryModel renders a top-down view of the orrery.
type OrreryModel struct {
	width  int
	height int
	sys    *system.System
	st     state.Snapshot
	snap   system.Snapshot

	zoomLevel int
	panX      float64 // scene units, added to the focus point
	panY      float64
	showStars bool
}

// NewOrreryModel creates an orrery view over sys.
func NewOrreryModel(sys *system.System) OrreryModel {
	return OrreryModel{
		sys:       sys,
		zoomLevel: defaultZoom,
		showStars: true,
	}
}

// SetSize updates the viewport size.
func (m OrreryModel) SetSize(width, height int) OrreryModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new frame.
func (m OrreryModel) UpdateData(st state.Snapshot, snap system.Snapshot) OrreryModel {
	m.st = st
	m.snap = snap
	return m
}

func (m OrreryModel) zoom() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

// Update handles input messages.
func (m OrreryModel) Update(msg tea.Msg) (OrreryModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	step := 0.1 * system.SceneExtent(m.st.Scale) / m.zoom()
	switch key.String() {
	case "]":
		if m.zoomLevel < len(zoomLevels)-1 {
			m.zoomLevel++
		}
	case "[":
		if m.zoomLevel > 0 {
			m.zoomLevel--
		}
	case "up":
		m.panY += step
	case "down":
		m.panY -= step
	case "left":
		m.panX -= step
	case "right":
		m.panX += step
	case "r":
		m.panX, m.panY = 0, 0
		m.zoomLevel = defaultZoom
	case "t":
		m.showStars = !m.showStars
	case "n":
		return m, focusCmd(m.cycleFocus(1))
	case "N":
		return m, focusCmd(m.cycleFocus(-1))
	}
	return m, nil
}

// cycleFocus returns the body after (dir > 0) or before the current focus.
// The Sun is the empty name.
func (m OrreryModel) cycleFocus(dir int) string {
	names := []string{""}
	for _, b := range m.snap.Bodies {
		if b.Kind == system.BodySun {
			continue
		}
		if b.Kind == system.BodyComet && !m.st.Show(state.ToggleComets) {
			continue
		}
		names = append(names, b.Name)
	}

	idx := 0
	for i, n := range names {
		if n == m.st.Focus {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(names)) % len(names)
	return names[idx]
}

func focusCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return FocusMsg{Name: name}
	}
}

// viewport maps scene coordinates to canvas cells. Terminal cells are about
// twice as tall as they are wide, so x is stretched by two.
type viewport struct {
	cx, cy float64 // canvas center
	ox, oy float64 // scene point at the center
	k      float64 // rows per scene unit
}

func (m OrreryModel) viewport(w, h int) viewport {
	extent := system.SceneExtent(m.st.Scale)
	k := math.Min(float64(w)/4, float64(h)/2) * 0.95 / extent * m.zoom()

	var ox, oy float64
	if b := m.snap.GetBody(m.st.Focus); b != nil && m.st.Focus != "" {
		ox, oy = b.Scene.X, b.Scene.Y
	}
	return viewport{
		cx: float64(w) / 2,
		cy: float64(h) / 2,
		ox: ox + m.panX,
		oy: oy + m.panY,
		k:  k,
	}
}

func (v viewport) project(p astro.Vec3) (int, int) {
	pp := astro.ProjectTopDown(p.Sub(astro.Vec3{X: v.ox, Y: v.oy}), v.k)
	return round(v.cx + 2*pp.X), round(v.cy - pp.Y)
}

// unproject returns the scene point under the center of cell (x, y).
func (v viewport) unproject(x, y int) (float64, float64) {
	return v.ox + (float64(x)+0.5-v.cx)/(2*v.k), v.oy - (float64(y)+0.5-v.cy)/v.k
}

// View renders the orrery view.
func (m OrreryModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for orrery view"
	}
	c := m.buildCanvas()
	return lipgloss.JoinVertical(lipgloss.Left, c.String(), m.renderHUD())
}

func (m OrreryModel) buildCanvas() *canvas {
	w, h := m.width, max(m.height-hudLines, 5)
	c := newCanvas(w, h)
	vp := m.viewport(w, h)

	if m.st.Show(state.ToggleGravityGrid) {
		m.drawWell(c, vp)
	}
	if m.showStars {
		drawStarfield(c)
	}
	if m.st.Show(state.ToggleBelt) {
		beltInk := ink{fg: "138"}
		for _, p := range m.snap.Belt {
			x, y := vp.project(p)
			c.set(x, y, '.', layerBelt, beltInk)
		}
	}
	if m.st.Show(state.ToggleOrbits) && m.sys != nil {
		orbitInk := ink{fg: "238"}
		for i, path := range m.sys.PlanetPaths(m.st.Scale, orbitSegments) {
			k := orbitInk
			if i < len(catalog.Planets) && catalog.Planets[i].Name == m.st.Selected {
				k = ink{fg: "244"}
			}
			drawPath(c, vp, path, '·', layerOrbit, k)
		}
		if m.st.Show(state.ToggleComets) {
			for _, path := range m.sys.CometPaths(m.st.Scale, orbitSegments) {
				drawPath(c, vp, path, '·', layerOrbit, ink{fg: "24"})
			}
		}
	}
	if arc := transferArc(m.snap, m.st.Mission); arc != nil {
		drawPath(c, vp, arc, '∙', layerArc, ink{fg: arcColor})
	}

	type placed struct {
		x, y int
		body system.EclipticBody
	}
	var bodies []placed
	for _, b := range m.snap.Bodies {
		if b.Kind == system.BodyComet && !m.st.Show(state.ToggleComets) {
			continue
		}
		x, y := vp.project(b.Scene)
		if b.Kind == system.BodyComet && b.Tail.Length > 0 {
			tx, ty := vp.project(b.Scene.Add(b.Tail.Dir.Scale(b.Tail.Length)))
			c.line(x, y, tx, ty, '~', layerTail, ink{fg: tailColor(b.Tail.Opacity)})
		}
		g, k := m.bodyGlyph(b)
		if c.set(x, y, g, layerBody, k) {
			bodies = append(bodies, placed{x, y, b})
		}
	}

	if m.st.Show(state.ToggleLabels) {
		for _, p := range bodies {
			label := p.body.Name
			k := ink{fg: "249"}
			if p.body.Name == m.st.Selected {
				label = "◄ " + label
				k = ink{fg: "229", bold: true}
			}
			c.label(p.x+2, p.y, label, k)
		}
	}
	return c
}

func (m OrreryModel) bodyGlyph(b system.EclipticBody) (rune, ink) {
	selected := b.Name == m.st.Selected || (m.st.Focus != "" && b.Name == m.st.Focus)
	switch b.Kind {
	case system.BodySun:
		return '☉', ink{fg: "220", bold: true}
	case system.BodyComet:
		if selected {
			return '✦', ink{fg: "229", bold: true}
		}
		return '*', ink{fg: "117"}
	default:
		color := "39"
		if p, err := catalog.Planet(b.Name); err == nil {
			color = p.Color
		}
		if selected {
			return '◉', ink{fg: color, bold: true}
		}
		return '●', ink{fg: color}
	}
}

// drawWell shades every cell by the depth of the gravity sheet beneath it.
func (m OrreryModel) drawWell(c *canvas, vp viewport) {
	shades := []struct {
		ch rune
		fg string
	}{
		{'·', "235"},
		{'·', "17"},
		{':', "18"},
		{':', "19"},
		{'░', "20"},
		{'▒', "21"},
	}
	sources := system.WellSources(m.snap)
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			sx, sy := vp.unproject(x, y)
			t := -system.WellDepth(sx, sy, sources) / system.SunWellDepth
			i := int(t * float64(len(shades)))
			if i <= 0 {
				continue
			}
			s := shades[min(i, len(shades))-1]
			c.set(x, y, s.ch, layerWell, ink{fg: s.fg})
		}
	}
}

// drawStarfield scatters a fixed background of dim stars by cell hash.
func drawStarfield(c *canvas) {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			h := uint32(x)*73856093 ^ uint32(y)*19349663
			h ^= h >> 13
			h *= 0x5bd1e995
			switch h % 211 {
			case 0:
				c.set(x, y, '∗', layerStar, ink{fg: "238"})
			case 1, 2:
				c.set(x, y, '˙', layerStar, ink{fg: "236"})
			}
		}
	}
}

func drawPath(c *canvas, vp viewport, path []astro.Vec3, ch rune, z layer, k ink) {
	if len(path) == 0 {
		return
	}
	px, py := vp.project(path[0])
	for _, p := range path[1:] {
		x, y := vp.project(p)
		c.line(px, py, x, y, ch, z, k)
		px, py = x, y
	}
}

func tailColor(opacity float64) string {
	switch {
	case opacity > 0.6:
		return "159"
	case opacity > 0.3:
		return "110"
	default:
		return "60"
	}
}

// transferArc returns the mission's Hohmann arc in scene units, rotated so
// it departs from the origin planet's current position and runs prograde.
// It returns nil without a valid mission.
func transferArc(snap system.Snapshot, mission state.Mission) []astro.Vec3 {
	if !mission.Valid() {
		return nil
	}
	origin, err := catalog.Planet(mission.Origin)
	if err != nil {
		return nil
	}
	dest, err := catalog.Planet(mission.Destination)
	if err != nil {
		return nil
	}
	res := transfer.Compute(origin.DistanceMkm, dest.DistanceMkm)
	if !res.Valid() {
		return nil
	}

	var lon float64
	if b := snap.GetBody(origin.Name); b != nil {
		lon = math.Atan2(b.Pos.Y, b.Pos.X)
	}

	pts := transfer.ScenePath(res.R1AU, res.R2AU, arcSegments, snap.Scale)
	// The sampled half ellipse lies in the X/Z plane and starts at
	// periapsis. An inbound transfer starts at apoapsis, so it uses the
	// mirrored half turned to the origin.
	flip, rot := 1.0, lon
	if !res.Outbound {
		flip, rot = -1, lon+math.Pi
	}
	sin, cos := math.Sincos(rot)
	out := make([]astro.Vec3, len(pts))
	for i, p := range pts {
		x, y := p.X, flip*p.Z
		out[i] = astro.Vec3{X: x*cos - y*sin, Y: x*sin + y*cos}
	}
	return out
}

func (m OrreryModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	onStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD"))

	// Line 1: clock
	date := catalog.TimeFromDays(m.st.ElapsedDays).Format("2006-01-02")
	b.WriteString(headerStyle.Render("◷ " + date))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("T: "))
	b.WriteString(valueStyle.Render(system.FormatElapsed(m.st.ElapsedDays)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Speed: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%g d/s", m.st.Speed)))
	if m.st.Paused {
		b.WriteString("  " + headerStyle.Render("PAUSED"))
	}
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Scale: "))
	b.WriteString(valueStyle.Render(m.st.Scale.String()))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Zoom: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2gx", m.zoom())))
	if ev, ok := catalog.EventByID(m.st.ActiveEvent); ok {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ev.Category.Color())).Render("⏱ " + ev.Name))
	}
	b.WriteString("\n")

	// Line 2: layers
	layers := []struct {
		key string
		t   state.Toggle
	}{
		{"o", state.ToggleOrbits},
		{"l", state.ToggleLabels},
		{"b", state.ToggleBelt},
		{"c", state.ToggleComets},
		{"E", state.ToggleEclipses},
		{"g", state.ToggleGravityGrid},
	}
	var parts []string
	for _, l := range layers {
		mark := dimStyle.Render("○ " + l.t.String())
		if m.st.Show(l.t) {
			mark = onStyle.Render("● " + l.t.String())
		}
		parts = append(parts, dimStyle.Render("["+l.key+"]")+mark)
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n")

	// Line 3: selected body
	b.WriteString(m.renderSelection(headerStyle, labelStyle, valueStyle, dimStyle))

	return b.String()
}

func (m OrreryModel) renderSelection(headerStyle, labelStyle, valueStyle, dimStyle lipgloss.Style) string {
	body := m.snap.GetBody(m.st.Selected)
	if body == nil || m.st.Selected == "" {
		return headerStyle.Render("☉ Sun") + "  " + dimStyle.Render("1-8: select planet · n/N: cycle focus")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("◆ " + body.Name))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("r: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.3f AU", body.DistanceAU())))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Lon: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f°", body.EclipticLonDeg())))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Lat: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%+.2f°", body.EclipticLatDeg())))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Light: "))
	b.WriteString(valueStyle.Render(astro.FormatLightTime(body.LightTimeSec())))

	if p, err := catalog.Planet(body.Name); err == nil {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s · %.0f d · %d moons", p.Type, p.PeriodDays, p.Moons)))
	}
	return b.String()
}
