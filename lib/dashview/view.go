// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package dashview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/credlens/credlens/lib/catalog"
	"github.com/credlens/credlens/lib/scoring"
)

const (
	clientPaneWidth = 26
	listWindow      = 12 // visible rows per list
	gaugeBarWidth   = 30
)

// View renders the full dashboard frame.
func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 100
	}
	rightWidth := width - clientPaneWidth - 4
	if rightWidth < 40 {
		rightWidth = 40
	}

	left := m.renderClients()

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderGauge(rightWidth),
		m.renderArtifactPanel("Global impact", panelGlobal, m.global,
			fmt.Sprintf("top %d features", m.globalCount), rightWidth),
		m.renderArtifactPanel("Client impact", panelLocal, m.local, m.localImpactCaption(), rightWidth),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderPicker("Feature A", panelPickerA, m.pickerA, rightWidth/2),
			m.renderPicker("Feature B", panelPickerB, m.pickerB, rightWidth-rightWidth/2),
		),
		m.renderDependence(rightWidth),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderHelp())
}

func (m Model) localImpactCaption() string {
	if m.selectedClient == 0 {
		return "select a client"
	}
	return fmt.Sprintf("client %d, top %d features", m.selectedClient, m.localCount)
}

func (m Model) renderClients() string {
	theme := m.theme
	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).
		Render(fmt.Sprintf("Clients (%d)", m.session.Registry.Len()))

	var lines []string
	lines = append(lines, header)
	if m.filtering || m.filterInput != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.NormalText).Render("/"+m.filterInput))
	}

	start := windowStart(m.cursor, len(m.filtered), listWindow)
	end := start + listWindow
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for index := start; index < end; index++ {
		row := m.filtered[index]
		label := strconv.FormatInt(row.id, 10)
		if row.id == m.selectedClient {
			label += " *"
		}
		if index == m.cursor {
			lines = append(lines, m.renderRow(label, true, clientPaneWidth-4))
			continue
		}
		lines = append(lines, m.highlightMatch(label, row.positions))
	}
	if len(m.filtered) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render("no matches"))
	}

	return m.panelStyle(m.focus == panelClients, clientPaneWidth).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderGauge(width int) string {
	theme := m.theme
	title := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Render("Default risk")

	var body string
	switch {
	case m.selectedClient == 0:
		body = lipgloss.NewStyle().Foreground(theme.FaintText).Render("select a client to score")
	case m.scoreLoading:
		body = lipgloss.NewStyle().Foreground(theme.FaintText).Render("scoring…")
	case m.scoreErr != nil:
		body = lipgloss.NewStyle().Foreground(theme.ErrorText).Render(errorText(m.scoreErr))
	case m.haveScore:
		filled := int(m.score * gaugeBarWidth)
		if filled > gaugeBarWidth {
			filled = gaugeBarWidth
		}
		bar := lipgloss.NewStyle().Foreground(theme.GaugeFill).Render(strings.Repeat("█", filled)) +
			lipgloss.NewStyle().Foreground(theme.GaugeEmpty).Render(strings.Repeat("░", gaugeBarWidth-filled))

		verdict := lipgloss.NewStyle().Foreground(theme.Granted).Bold(true).Render("credit granted")
		if m.score >= m.declineThreshold {
			verdict = lipgloss.NewStyle().Foreground(theme.Declined).Bold(true).Render("credit declined")
		}
		delta := m.score - m.declineThreshold
		body = fmt.Sprintf("%s  %.3f (%+.3f vs threshold)\n%s", bar, m.score, delta, verdict)
	}

	return m.panelStyle(false, width).Render(title + "\n" + body)
}

func (m Model) renderArtifactPanel(title string, focus panelID, state artifactState, caption string, width int) string {
	theme := m.theme
	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Render(title)
	captionLine := lipgloss.NewStyle().Foreground(theme.FaintText).Render(caption)

	return m.panelStyle(m.focus == focus, width).
		Render(header + "  " + captionLine + "\n" + m.artifactLine(state))
}

// artifactLine renders one panel's fetch status. The terminal cannot
// display the PNG itself, so a completed fetch surfaces as an openable
// file handle plus its cache provenance.
func (m Model) artifactLine(state artifactState) string {
	theme := m.theme
	switch {
	case state.loading:
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("fetching…")
	case state.err != nil:
		return lipgloss.NewStyle().Foreground(theme.ErrorText).Render(errorText(state.err))
	case state.handle.Path != "":
		origin := "fetched"
		if state.handle.FromCache {
			origin = "cache hit"
		}
		return fmt.Sprintf("%s  %s",
			lipgloss.NewStyle().Foreground(theme.NormalText).Render(state.handle.Path),
			lipgloss.NewStyle().Foreground(theme.FaintText).
				Render(fmt.Sprintf("(%s, %s)", humanSize(state.handle.Size), origin)))
	default:
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("—")
	}
}

func (m Model) renderPicker(title string, focus panelID, picker featurePicker, width int) string {
	theme := m.theme

	caption := string(picker.filter)
	if picker.rankByImpact {
		caption += ", by impact"
	}
	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Render(title) +
		"  " + lipgloss.NewStyle().Foreground(theme.FaintText).Render(caption)

	var lines []string
	lines = append(lines, header)
	switch {
	case picker.loading:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render("loading…"))
	case picker.err != nil:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ErrorText).Render(errorText(picker.err)))
	default:
		start := windowStart(picker.cursor, len(picker.features), listWindow)
		end := start + listWindow
		if end > len(picker.features) {
			end = len(picker.features)
		}
		for index := start; index < end; index++ {
			name := picker.features[index]
			label := name
			if name == picker.selected {
				label += " *"
			}
			lines = append(lines, m.renderRow(label, m.focus == focus && index == picker.cursor, width-4))
		}
	}

	return m.panelStyle(m.focus == focus, width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDependence(width int) string {
	theme := m.theme
	header := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Render("Dependence")

	a, b := m.pickerA.selected, m.pickerB.selected
	var lines []string
	lines = append(lines, header)

	if m.selectedClient != 0 && a != "" {
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.FaintText).Render(a+":")+" "+m.artifactLine(m.feature))
	}

	switch {
	case a != "" && b != "" && a == b:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).
			Render("bivariate: select two distinct features"))
	case a != "" && b != "":
		caption := a + " × " + b
		if m.session.Catalog.BivariateLayout(a, b) == catalog.LayoutLarge {
			caption += " (wide layout)"
		}
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.FaintText).Render(caption+":")+" "+m.artifactLine(m.bivariate))
	default:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).
			Render("bivariate: pick feature A and feature B"))
	}

	return m.panelStyle(false, width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	bindings := []string{
		helpEntry(m.keys.NextPanel),
		helpEntry(m.keys.Select),
		helpEntry(m.keys.FilterActivate),
		helpEntry(m.keys.MoreFeatures),
		helpEntry(m.keys.FewerFeatures),
		helpEntry(m.keys.ToggleRank),
		helpEntry(m.keys.CycleFilter),
		helpEntry(m.keys.Quit),
	}
	return lipgloss.NewStyle().Foreground(m.theme.HelpText).
		Render(strings.Join(bindings, "  "))
}

func helpEntry(binding key.Binding) string {
	help := binding.Help()
	return help.Key + " " + help.Desc
}

// highlightMatch renders a list row with the fuzzy-matched rune
// positions on the highlight background.
func (m Model) highlightMatch(label string, positions []int) string {
	if len(positions) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(label)
	}
	matched := make(map[int]bool, len(positions))
	for _, position := range positions {
		matched[position] = true
	}
	plain := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	highlight := lipgloss.NewStyle().
		Foreground(m.theme.NormalText).
		Background(m.theme.MatchHighlightBackground)

	var builder strings.Builder
	for index, r := range []rune(label) {
		if matched[index] {
			builder.WriteString(highlight.Render(string(r)))
		} else {
			builder.WriteString(plain.Render(string(r)))
		}
	}
	return builder.String()
}

// renderRow renders one list row, padded to rowWidth, with the
// selection background when selected.
func (m Model) renderRow(label string, selected bool, rowWidth int) string {
	if pad := rowWidth - ansi.StringWidth(label); pad > 0 {
		label += strings.Repeat(" ", pad)
	}
	if selected {
		return lipgloss.NewStyle().
			Background(m.theme.SelectedBackground).
			Foreground(m.theme.SelectedForeground).
			Render(label)
	}
	return lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(label)
}

func (m Model) panelStyle(focused bool, width int) lipgloss.Style {
	border := m.theme.BorderColor
	if focused {
		border = m.theme.FocusedBorderColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Padding(0, 1)
}

// windowStart returns the first visible index so the cursor stays
// inside a window of the given size.
func windowStart(cursor, length, window int) int {
	if length <= window {
		return 0
	}
	start := cursor - window/2
	if start < 0 {
		start = 0
	}
	if start > length-window {
		start = length - window
	}
	return start
}

// errorText maps a fetch error to a short operator-facing message.
func errorText(err error) string {
	switch {
	case scoring.IsTimeout(err):
		return "scoring service timed out"
	case scoring.IsUnreachable(err):
		return "scoring service unreachable"
	case scoring.IsServerError(err):
		return "scoring service error"
	default:
		return err.Error()
	}
}

// humanSize formats a byte count for panel captions.
func humanSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
