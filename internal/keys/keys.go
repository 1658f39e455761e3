package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the board.
type KeyMap struct {
	// Navigation
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	// Lane moves
	MoveBack    key.Binding
	MoveForward key.Binding

	// Drag and drop
	Pick   key.Binding
	Drop   key.Binding
	Cancel key.Binding

	// Task actions
	New            key.Binding
	Delete         key.Binding
	ClearCompleted key.Binding
	Detail         key.Binding

	// Board
	Refresh key.Binding
	Sort    key.Binding
	Command key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev lane"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next lane"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		MoveBack: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "move back"),
		),
		MoveForward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "move forward"),
		),
		Pick: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m/space", "pick up card"),
		),
		Drop: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "drop card"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		ClearCompleted: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear done"),
		),
		Detail: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "details"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Sort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle sort"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Left, k.Right, k.MoveBack, k.MoveForward,
		k.New, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.MoveBack, k.MoveForward, k.Pick, k.Drop, k.Cancel},
		{k.New, k.Delete, k.ClearCompleted, k.Detail},
		{k.Refresh, k.Sort, k.Command, k.Help, k.Quit},
	}
}
