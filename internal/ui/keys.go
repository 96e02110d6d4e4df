package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	Escape     key.Binding
	Logs       key.Binding

	// Session
	Trigger      key.Binding
	Reload       key.Binding
	Select       key.Binding
	Download     key.Binding
	ToggleFields key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e/ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Switch pane"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / back"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle logs"),
		),

		Trigger: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Start/stop search"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Load solutions"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Show solution"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Download export"),
		),
		ToggleFields: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Toggle field tables"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "Down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Bottom"),
		),
	}
}

// helpSections groups bindings for the help overlay.
func (k keyMap) helpSections() []helpSection {
	return []helpSection{
		{title: "Session", bindings: []key.Binding{k.Trigger, k.Reload, k.Select, k.Download}},
		{title: "Navigation", bindings: []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Tab, k.Escape}},
		{title: "General", bindings: []key.Binding{k.Logs, k.ToggleFields, k.CycleTheme, k.Help, k.Quit}},
	}
}
