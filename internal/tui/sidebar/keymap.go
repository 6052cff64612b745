package sidebar

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/mattsolo1/grove-core/tui/keymap"
)

// KeyMap defines the keybindings for the notes sidebar.
type KeyMap struct {
	keymap.Base
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	Collapse    key.Binding
	Toggle      key.Binding
	AddNote     key.Binding
	AddFolder   key.Binding
	Rename      key.Binding
	Delete      key.Binding
	Refresh     key.Binding
	Preview     key.Binding
	Settings    key.Binding
	FocusEditor key.Binding
	FocusTree   key.Binding
	Save        key.Binding
	CloseTab    key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	ForceQuit   key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	baseHelp := k.Base.FullHelp()
	return append(baseHelp, []key.Binding{
		k.Up,
		k.Down,
		k.Open,
		k.Collapse,
		k.Toggle,
		k.Refresh,
		k.Preview,
	}, []key.Binding{
		k.AddNote,
		k.AddFolder,
		k.Rename,
		k.Delete,
		k.Settings,
	}, []key.Binding{
		k.FocusEditor,
		k.FocusTree,
		k.Save,
		k.CloseTab,
		k.NextTab,
		k.PrevTab,
		k.ForceQuit,
	})
}

var keys = KeyMap{
	Base: keymap.NewBase(),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "l", "right"),
		key.WithHelp("enter/l", "open note / expand folder"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h", "collapse / go to parent"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle folder"),
	),
	AddNote: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add note"),
	),
	AddFolder: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "add folder"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete (no undo)"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "refresh"),
	),
	Preview: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "toggle preview"),
	),
	Settings: key.NewBinding(
		key.WithKeys(","),
		key.WithHelp(",", "open settings"),
	),
	FocusEditor: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "focus editor"),
	),
	FocusTree: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back to tree"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	CloseTab: key.NewBinding(
		key.WithKeys("ctrl+w"),
		key.WithHelp("ctrl+w", "close tab"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "previous tab"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit without saving"),
	),
}
