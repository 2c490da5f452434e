// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package dashview

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the dashboard TUI.
type KeyMap struct {
	// Navigation within the focused panel's list.
	Up   key.Binding
	Down key.Binding

	// Focus switching.
	NextPanel     key.Binding
	PreviousPanel key.Binding

	// Selection (client or feature, depending on focus).
	Select key.Binding

	// Impact panel feature counts.
	MoreFeatures  key.Binding
	FewerFeatures key.Binding

	// Feature picker controls.
	ToggleRank  key.Binding // Order by impact on the selected client.
	CycleFilter key.Binding // current -> previous -> all.

	// Client filter.
	FilterActivate key.Binding
	FilterClear    key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextPanel: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next panel"),
	),
	PreviousPanel: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "previous panel"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select"),
	),
	MoreFeatures: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "more features"),
	),
	FewerFeatures: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "fewer features"),
	),
	ToggleRank: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rank by impact"),
	),
	CycleFilter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "cycle filter"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter clients"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
