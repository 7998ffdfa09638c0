// ABOUTME: TUI program wiring for roon-monitor
// ABOUTME: Wraps bubbletea program startup and event pumping
package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/teancom/RoonKit/roon"
	"github.com/teancom/RoonKit/services/transport"
)

// Run starts the TUI and feeds it Connection state and zone events
// until the program exits.
func Run(conn *roon.Connection, svc *transport.Service) error {
	p := tea.NewProgram(NewModel(svc), tea.WithAltScreen())

	go pumpConnState(p, conn)
	go pumpZoneEvents(p, svc)

	_, err := p.Run()
	return err
}

func pumpConnState(p *tea.Program, conn *roon.Connection) {
	for s := range conn.StateStream() {
		p.Send(connStateMsg(s))
	}
}

func pumpZoneEvents(p *tea.Program, svc *transport.Service) {
	events, _, err := svc.SubscribeZones()
	if err != nil {
		p.Send(errMsg{err: err})
		return
	}
	for ev := range events {
		p.Send(zoneEventMsg(ev))
	}
}
