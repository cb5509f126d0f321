package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the interactive widget view.
type KeyMap struct {
	// Widget families
	Today    key.Binding
	Priority key.Binding
	All      key.Binding

	// Deep link to the new-task screen
	NewTask key.Binding

	// Manual refresh
	Refresh key.Binding

	// Help toggle
	Help key.Binding

	Quit key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Today: key.NewBinding(
			key.WithKeys("t", "1"),
			key.WithHelp("t", "today"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p", "2"),
			key.WithHelp("p", "high priority"),
		),
		All: key.NewBinding(
			key.WithKeys("a", "3"),
			key.WithHelp("a", "both"),
		),
		NewTask: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task link"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Today, k.Priority, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns every binding, grouped by column.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Today, k.Priority, k.All},
		{k.NewTask, k.Refresh},
		{k.Help, k.Quit},
	}
}
