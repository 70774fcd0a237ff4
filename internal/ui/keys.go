package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	ForceQuit  key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Studio list
	Open    key.Binding
	New     key.Binding
	Filter  key.Binding
	Refresh     key.Binding
	Logout      key.Binding
	ActivityLog key.Binding

	// Studio detail
	Edit   key.Binding
	Delete key.Binding

	// Forms
	NextField  key.Binding
	PrevField  key.Binding
	Submit     key.Binding
	SwitchForm key.Binding
	Confirm    key.Binding
	Deny       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open studio"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New studio"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f", "/"),
			key.WithHelp("f", "Filters"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log out"),
		),
		ActivityLog: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Activity log"),
		),

		Edit: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Edit studio"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete studio"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter", "ctrl+s"),
			key.WithHelp("enter", "Submit"),
		),
		SwitchForm: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "Login/Sign up"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "Confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.ForceQuit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Escape},
		{k.Open, k.New, k.Filter, k.Refresh, k.Logout, k.ActivityLog},
		{k.Edit, k.Delete},
		{k.NextField, k.PrevField, k.Submit, k.SwitchForm},
		{k.CycleTheme, k.Help, k.Quit},
	}
}

// viewHelp returns the bindings shown in the footer for a view.
func (k keyMap) viewHelp(v View) []key.Binding {
	switch v {
	case ViewLogin, ViewSignup:
		return []key.Binding{k.NextField, k.Submit, k.SwitchForm, k.ForceQuit}
	case ViewCreate, ViewEdit:
		return []key.Binding{k.NextField, k.Submit, k.Escape}
	case ViewDetail:
		return []key.Binding{k.Edit, k.Delete, k.Escape, k.Help}
	case ViewLog:
		return []key.Binding{k.Refresh, k.Bottom, k.Escape, k.Help}
	default:
		return []key.Binding{k.Open, k.New, k.Filter, k.Refresh, k.ActivityLog, k.Logout, k.Help, k.Quit}
	}
}
