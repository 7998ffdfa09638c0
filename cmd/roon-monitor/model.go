// ABOUTME: Bubble Tea model for the roon-monitor demo
// ABOUTME: Defines TUI state and update logic over a live Connection
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teancom/RoonKit/model"
	"github.com/teancom/RoonKit/roon"
	"github.com/teancom/RoonKit/services/transport"
)

// Model is the roon-monitor TUI's state.
type Model struct {
	svc *transport.Service

	connState roon.ConnectionState
	zoneOrder []string
	zones     map[string]model.Zone
	selected  int

	lastErr   string
	showDebug bool

	width  int
	height int
}

// NewModel builds the initial, disconnected TUI state.
func NewModel(svc *transport.Service) Model {
	return Model{svc: svc, zones: make(map[string]model.Zone)}
}

// connStateMsg carries a Connection state transition into the TUI.
type connStateMsg roon.ConnectionState

// zoneEventMsg carries one parsed zones_changed event into the TUI.
type zoneEventMsg model.ZoneEvent

// errMsg reports a command's failure so it can be shown, not swallowed.
type errMsg struct{ err error }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case connStateMsg:
		m.connState = roon.ConnectionState(msg)
	case zoneEventMsg:
		m.applyZoneEvent(model.ZoneEvent(msg))
	case errMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
	}
	return m, nil
}

func (m *Model) applyZoneEvent(ev model.ZoneEvent) {
	switch ev.Kind {
	case model.Added, model.Changed:
		for _, z := range ev.Zones {
			if _, known := m.zones[z.ZoneID]; !known {
				m.zoneOrder = append(m.zoneOrder, z.ZoneID)
			}
			m.zones[z.ZoneID] = z
		}
	case model.Removed:
		for _, id := range ev.ZoneIDs {
			delete(m.zones, id)
			m.zoneOrder = removeString(m.zoneOrder, id)
		}
	case model.SeekChanged:
		for _, seek := range ev.Seeks {
			z, ok := m.zones[seek.ZoneID]
			if !ok || z.NowPlaying == nil {
				continue
			}
			z.NowPlaying.SeekPosition = seek.SeekPosition
			z.QueueTimeRemaining = seek.QueueTimeRemaining
			m.zones[seek.ZoneID] = z
		}
	}
	if m.selected >= len(m.zoneOrder) {
		m.selected = len(m.zoneOrder) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func removeString(items []string, target string) []string {
	out := items[:0]
	for _, s := range items {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func (m Model) selectedZone() (model.Zone, bool) {
	if m.selected < 0 || m.selected >= len(m.zoneOrder) {
		return model.Zone{}, false
	}
	z, ok := m.zones[m.zoneOrder[m.selected]]
	return z, ok
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected+1 < len(m.zoneOrder) {
			m.selected++
		}
	case "d":
		m.showDebug = !m.showDebug
	case " ", "p":
		if z, ok := m.selectedZone(); ok {
			return m, runCmd(func() error { return m.svc.PlayPause(z.ZoneID) })
		}
	case "n":
		if z, ok := m.selectedZone(); ok {
			return m, runCmd(func() error { return m.svc.Next(z.ZoneID) })
		}
	case "b":
		if z, ok := m.selectedZone(); ok {
			return m, runCmd(func() error { return m.svc.Previous(z.ZoneID) })
		}
	case "+", "=":
		if z, ok := m.selectedZone(); ok && len(z.Outputs) > 0 {
			id := z.Outputs[0].OutputID
			return m, runCmd(func() error { return m.svc.AdjustVolume(id, 2) })
		}
	case "-", "_":
		if z, ok := m.selectedZone(); ok && len(z.Outputs) > 0 {
			id := z.Outputs[0].OutputID
			return m, runCmd(func() error { return m.svc.AdjustVolume(id, -2) })
		}
	case "m":
		if z, ok := m.selectedZone(); ok && len(z.Outputs) > 0 {
			id := z.Outputs[0].OutputID
			return m, runCmd(func() error { return m.svc.Mute(id) })
		}
	}
	return m, nil
}

func runCmd(f func() error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: f()}
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading...\n"
	}

	s := m.renderHeader()
	s += m.renderZoneList()
	s += m.renderNowPlaying()
	if m.showDebug && m.lastErr != "" {
		s += fmt.Sprintf("│ error: %-45s │\n", truncate(m.lastErr, 45))
	}
	s += m.renderHelp()
	return s
}

func (m Model) renderHeader() string {
	status := m.connState.Kind.String()
	if m.connState.Kind == roon.Connected {
		status = fmt.Sprintf("Connected to %s", m.connState.CoreName)
	}
	return fmt.Sprintf("┌─ RoonKit Monitor ─────────────────────────────────┐\n│ %-51s │\n├─────────────────────────────────────────────────────┤\n", status)
}

func (m Model) renderZoneList() string {
	if len(m.zoneOrder) == 0 {
		return "│ (no zones yet)                                     │\n"
	}
	s := ""
	for i, id := range m.zoneOrder {
		z := m.zones[id]
		marker := "  "
		if i == m.selected {
			marker = "> "
		}
		s += fmt.Sprintf("│ %s%-30s %-16s │\n", marker, truncate(z.DisplayName, 30), z.State)
	}
	return s
}

func (m Model) renderNowPlaying() string {
	z, ok := m.selectedZone()
	if !ok || z.NowPlaying == nil {
		return "├─────────────────────────────────────────────────────┤\n│ (nothing playing)                                   │\n"
	}
	np := z.NowPlaying
	volume := "n/a"
	if len(z.Outputs) > 0 && z.Outputs[0].Volume != nil {
		volume = fmt.Sprintf("%.0f", z.Outputs[0].Volume.Value)
	}
	return fmt.Sprintf("├─────────────────────────────────────────────────────┤\n│ %-53s │\n│ %-53s │\n│ pos %d/%d  vol %-5s                               │\n",
		truncate(np.OneLine.Line1, 53), truncate(np.TwoLine.Line1, 53), np.SeekPosition, np.Length, volume)
}

func (m Model) renderHelp() string {
	return "│ j/k:select  space:play/pause  n/b:next/prev  +/-:vol │\n│ m:mute  d:debug  q:quit                              │\n└─────────────────────────────────────────────────────┘\n"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
