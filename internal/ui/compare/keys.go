// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compare

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/confdiff/internal/ui/components"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the compare view.
type KeyMap struct {
	Next      key.Binding
	Previous  key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Recompare key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("n", "tab"),
			key.WithHelp("n", "next change"),
		),
		Previous: key.NewBinding(
			key.WithKeys("p", "N", "shift+tab"),
			key.WithHelp("p", "previous change"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d", " "),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "go to bottom"),
		),
		Recompare: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload and compare"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.Recompare, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped by purpose.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Recompare, k.Help, k.Quit},
	}
}

// helpOverlay builds the markdown key reference.
func (k KeyMap) helpOverlay(dark bool) *components.HelpOverlay {
	return &components.HelpOverlay{
		Title: "confdiff keys",
		Intro: "Removed lines are shown on the left, added lines on the right. " +
			"Rows stay aligned: an empty cell marks a line that exists on one side only.",
		Sections: []components.HelpSection{
			{Title: "Changes", Bindings: []key.Binding{k.Next, k.Previous}},
			{Title: "Scrolling", Bindings: []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom}},
			{Title: "Actions", Bindings: []key.Binding{k.Recompare, k.Help, k.Quit}},
		},
		Dark: dark,
	}
}
