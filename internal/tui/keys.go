package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	First      key.Binding
	Last       key.Binding
	NextSender key.Binding
	PrevSender key.Binding
	Copy       key.Binding
	Quit       key.Binding
	HalfUp     key.Binding
	HalfDown   key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("up/C-k", "previous message"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("dn/C-j", "next message"),
	),
	First: key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("home", "first message"),
	),
	Last: key.NewBinding(
		key.WithKeys("end"),
		key.WithHelp("end", "last message"),
	),
	NextSender: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next sender"),
	),
	PrevSender: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "previous sender"),
	),
	Copy: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "copy message"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
	HalfUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u", "scroll transcript up"),
	),
	HalfDown: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "scroll transcript down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "transcript page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "transcript page down"),
	),
}
