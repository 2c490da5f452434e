// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package dashview

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the dashboard. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Panel chrome.
	HeaderForeground   lipgloss.Color
	BorderColor        lipgloss.Color
	FocusedBorderColor lipgloss.Color
	HelpText           lipgloss.Color

	// Gauge verdict colors.
	Granted  lipgloss.Color
	Declined lipgloss.Color

	// Gauge bar.
	GaugeFill  lipgloss.Color
	GaugeEmpty lipgloss.Color

	// Errors and match highlighting.
	ErrorText                lipgloss.Color
	MatchHighlightBackground lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground:   lipgloss.Color("255"),
	BorderColor:        lipgloss.Color("240"),
	FocusedBorderColor: lipgloss.Color("75"),
	HelpText:           lipgloss.Color("241"),

	Granted:  lipgloss.Color("114"), // green
	Declined: lipgloss.Color("196"), // red

	GaugeFill:  lipgloss.Color("220"), // amber
	GaugeEmpty: lipgloss.Color("238"),

	ErrorText:                lipgloss.Color("196"),
	MatchHighlightBackground: lipgloss.Color("58"), // dark amber
}
