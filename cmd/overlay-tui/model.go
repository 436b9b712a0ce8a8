package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yegors/flight-overlay/internal/overlay"
	"github.com/yegors/flight-overlay/internal/telemetry"
)

type readoutsMsg overlay.Readouts

type viewMsg overlay.MapView

type snapshotMsg telemetry.Snapshot

type statusTickMsg time.Time

func statusTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// programPort turns overlay commands into program messages. It is called on the scheduler
// executor, send hands the frame to the UI goroutine.
type programPort struct {
	send func(tea.Msg)
}

func (p programPort) SetReadouts(r overlay.Readouts)   { p.send(readoutsMsg(r)) }
func (p programPort) SetView(v overlay.MapView)        { p.send(viewMsg(v)) }
func (p programPort) SetSnapshot(s telemetry.Snapshot) { p.send(snapshotMsg(s)) }

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Background(lipgloss.Color("235")).Padding(0, 1)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1).Width(24)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var zoomNames = [...]string{
	overlay.ZoomRegional: "regional",
	overlay.ZoomGlobal:   "global",
	overlay.ZoomMaxOut:   "max out",
}

type model struct {
	source string
	status func() telemetry.Status

	readouts     overlay.Readouts
	haveReadouts bool
	view         overlay.MapView
	haveView     bool
	snapshot     telemetry.Snapshot
	health       telemetry.Status
	width        int
}

func newModel(source string, status func() telemetry.Status) model {
	return model{source: source, status: status}
}

func (m model) Init() tea.Cmd {
	return statusTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case readoutsMsg:
		m.readouts = overlay.Readouts(msg)
		m.haveReadouts = true
	case viewMsg:
		m.view = overlay.MapView(msg)
		m.haveView = true
	case snapshotMsg:
		m.snapshot = telemetry.Snapshot(msg)
	case statusTickMsg:
		if m.status != nil {
			m.health = m.status()
		}
		return m, statusTick()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	title := "Flight Overlay"
	if m.snapshot.DestinationName != "" {
		title += " → " + m.snapshot.DestinationName
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if !m.haveReadouts {
		b.WriteString(labelStyle.Render("Waiting for telemetry from " + m.source))
		b.WriteString("\n")
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			readoutBox(m.readouts.TimeInfo),
			readoutBox(m.readouts.FlightData),
		))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			readoutBox(m.readouts.TimeTo),
			readoutBox(m.readouts.Distance),
		))
		b.WriteString("\n")
	}

	if m.haveView {
		b.WriteString(m.renderMap())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q: quit"))
	return b.String()
}

func readoutBox(r overlay.Readout) string {
	return boxStyle.Render(labelStyle.Render(r.Label) + "\n" + valueStyle.Render(r.Value))
}

func (m model) renderMap() string {
	v := m.view
	zoom := fmt.Sprintf("zoom %d", v.Zoom)
	if phase := zoomPhase(v.Zoom, m.snapshot.Altitude); phase >= 0 {
		zoom += " (" + zoomNames[phase] + ")"
	}
	return fmt.Sprintf("%s %.4f, %.4f  %s  heading %03.0f°  track %d points",
		labelStyle.Render("Map"), v.Center.Lat, v.Center.Lon, zoom, v.Rotation, v.TrackLength)
}

// zoomPhase recovers the rotation phase from a zoom level, or -1 when it cannot be told
func zoomPhase(zoom int, altitude float64) int {
	for phase := overlay.ZoomRegional; phase <= overlay.ZoomMaxOut; phase++ {
		if overlay.ZoomLevel(altitude, phase) == zoom {
			return phase
		}
	}
	return -1
}

func (m model) renderStatus() string {
	h := m.health
	switch {
	case h.LastSuccess.IsZero() && h.ConsecutiveFailures == 0:
		return labelStyle.Render("Telemetry: waiting")
	case h.Healthy:
		return okStyle.Render(fmt.Sprintf("Telemetry: ok (%d polls, last %s)",
			h.TotalPolls, h.LastSuccess.Format("15:04:05")))
	default:
		return badStyle.Render(fmt.Sprintf("Telemetry: %d consecutive failures", h.ConsecutiveFailures))
	}
}
