package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Bridge forwards the session manager's navigation and alerts to a running program.
//
// It implements session.Navigator and session.Alerter. Calls made before [Bridge.Attach] are dropped;
// the model derives its first view from the ready gate instead.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewBridge() *Bridge { return &Bridge{} }

// Attach starts delivering to send, usually [tea.Program.Send].
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) Navigate(route string) { b.deliver(routeMsg(route)) }

func (b *Bridge) Alert(message string) { b.deliver(alertMsg(message)) }

func (b *Bridge) deliver(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()

	if send != nil {
		send(msg)
	}
}
