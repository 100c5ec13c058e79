package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	left    key.Binding
	right   key.Binding
	next    key.Binding
	signIn  key.Binding
	signUp  key.Binding
	signOut key.Binding
	reload  key.Binding
	quit    key.Binding
	abort   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous title")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next title")),
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous row")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next row")),
		next:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		signIn:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in")),
		signUp:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "sign up")),
		signOut: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),
		reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		abort:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.next, k.signIn, k.signUp, k.signOut},
		{k.reload, k.quit},
	}
}
