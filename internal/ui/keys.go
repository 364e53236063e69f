package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Back       key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Open  key.Binding

	// Lists
	New    key.Binding
	Delete key.Binding
	Rename key.Binding

	// Editor
	Toggle  key.Binding
	Save    key.Binding
	Reload  key.Binding
	Discard key.Binding

	// Prompts
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cycle theme"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "right"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),

		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Rename: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rename"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle cell"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Discard: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "discard edits"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// screenKeys narrows the bindings shown in help to those the screen handles.
type screenKeys struct {
	keyMap
	screen screen
}

// ShortHelp returns key bindings for the short help view.
func (k screenKeys) ShortHelp() []key.Binding {
	switch k.screen {
	case screenEditor:
		return []key.Binding{k.Toggle, k.Save, k.Reload, k.Discard, k.Back, k.Help}
	case screenFloors:
		return []key.Binding{k.Open, k.New, k.Delete, k.Rename, k.Back, k.Help}
	default:
		return []key.Binding{k.Open, k.New, k.Delete, k.Help, k.Quit}
	}
}

// FullHelp returns key bindings for the full help view.
func (k screenKeys) FullHelp() [][]key.Binding {
	nav := []key.Binding{k.Up, k.Down}
	if k.screen == screenEditor {
		nav = append(nav, k.Left, k.Right)
		return [][]key.Binding{
			nav,
			{k.Toggle, k.Save, k.Reload, k.Discard},
			{k.Back, k.CycleTheme, k.Help, k.Quit},
		}
	}
	return [][]key.Binding{
		nav,
		{k.Open, k.New, k.Delete, k.Rename},
		{k.Back, k.CycleTheme, k.Help, k.Quit},
	}
}
