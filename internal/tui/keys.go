package tui

import "github.com/charmbracelet/bubbles/key"

type entryKeyMap struct {
	Submit key.Binding
	Quit   key.Binding
}

func newEntryKeyMap() entryKeyMap {
	return entryKeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open board")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k entryKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Submit, k.Quit} }

func (k entryKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// boardKeyMap has two modes: typing into the new-task input, and
// navigating the columns. Only the bindings for the active mode are shown.
type boardKeyMap struct {
	typing bool

	NewTask key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Move    key.Binding
	Delete  key.Binding
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Logout  key.Binding
	Quit    key.Binding
}

func newBoardKeyMap() boardKeyMap {
	return boardKeyMap{
		NewTask: key.NewBinding(key.WithKeys("a", "n", "tab"), key.WithHelp("a", "new task")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add task")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "tab"), key.WithHelp("esc", "done typing")),
		Move:    key.NewBinding(key.WithKeys("m", "enter"), key.WithHelp("m", "move →")),
		Delete:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Logout:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "logout")),
		Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	if k.typing {
		return []key.Binding{k.Submit, k.Cancel, k.Logout}
	}
	return []key.Binding{k.NewTask, k.Move, k.Delete, k.Left, k.Up, k.Logout, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
