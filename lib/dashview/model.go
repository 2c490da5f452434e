// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package dashview

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/junegunn/fzf/src/util"

	"github.com/credlens/credlens/lib/artifactcache"
	"github.com/credlens/credlens/lib/scoring"
	"github.com/credlens/credlens/lib/session"
)

// ArtifactSource resolves chart requests and live scores.
// *artifactcache.Fetcher satisfies it.
type ArtifactSource interface {
	Get(ctx context.Context, request artifactcache.Request) (artifactcache.Handle, error)
	Score(ctx context.Context, clientID int64) (float64, error)
}

// FeatureLister serves the per-client feature selection lists.
// *scoring.Client satisfies it.
type FeatureLister interface {
	FeatureSelection(ctx context.Context, clientID int64, rankByImpact bool, filter scoring.Filter) ([]string, error)
}

// panelID identifies a focusable dashboard panel.
type panelID int

const (
	panelClients panelID = iota
	panelGlobal
	panelLocal
	panelPickerA
	panelPickerB
	panelCount
)

// artifactState tracks one panel's chart handle.
type artifactState struct {
	loading bool
	handle  artifactcache.Handle
	err     error
}

// clientMatch is one row of the filtered client list.
type clientMatch struct {
	id        int64
	score     int
	positions []int
}

// featurePicker is the state of one feature selection menu.
type featurePicker struct {
	features     []string
	cursor       int
	selected     string
	rankByImpact bool
	filter       scoring.Filter
	loading      bool
	err          error
}

// moveCursor shifts the picker cursor by delta, clamped to the list.
func (p *featurePicker) moveCursor(delta int) {
	if len(p.features) == 0 {
		p.cursor = 0
		return
	}
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.features) {
		p.cursor = len(p.features) - 1
	}
}

// Config configures a dashboard Model.
type Config struct {
	// Session is the bootstrapped reference data. Required.
	Session *session.Session

	// Artifacts resolves chart requests and scores. Required.
	Artifacts ArtifactSource

	// Features serves feature selection lists. Required.
	Features FeatureLister

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// GlobalFeatures and LocalFeatures are the initial feature counts
	// for the impact panels. Defaults: 20 and 16.
	GlobalFeatures int
	LocalFeatures  int

	// MinFeatures and MaxFeatures bound the feature-count controls.
	// Defaults: 5 and 30.
	MinFeatures int
	MaxFeatures int

	// DeclineThreshold is the score at and above which an application
	// is shown as declined. Defaults to 0.5.
	DeclineThreshold float64
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	session   *session.Session
	artifacts ArtifactSource
	features  FeatureLister
	logger    *slog.Logger

	keys  KeyMap
	theme Theme

	minFeatures      int
	maxFeatures      int
	declineThreshold float64

	width  int
	height int

	focus panelID

	// Client selector.
	filterInput    string
	filtering      bool
	filtered       []clientMatch
	cursor         int
	selectedClient int64 // 0 = no selection
	slab           *util.Slab

	// Score gauge.
	scoreLoading bool
	haveScore    bool
	score        float64
	scoreErr     error

	// Impact panels.
	globalCount int
	localCount  int
	global      artifactState
	local       artifactState
	feature     artifactState
	bivariate   artifactState

	// fetchSeq invalidates in-flight artifact and feature-list fetches
	// when a panel's parameters change before the response lands. The
	// picker slots guard feature lists; the rest guard artifacts.
	fetchSeq [panelCount + 2]int

	pickerA featurePicker
	pickerB featurePicker
}

// Sequence slots for the two panels that are not focusable but still
// fetch artifacts.
const (
	seqFeature   = int(panelCount)
	seqBivariate = int(panelCount) + 1
)

// New creates a dashboard model over a bootstrapped session.
func New(config Config) (Model, error) {
	if config.Session == nil {
		return Model{}, fmt.Errorf("dashview: session is required")
	}
	if config.Artifacts == nil {
		return Model{}, fmt.Errorf("dashview: artifact source is required")
	}
	if config.Features == nil {
		return Model{}, fmt.Errorf("dashview: feature lister is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	minFeatures := config.MinFeatures
	if minFeatures == 0 {
		minFeatures = 5
	}
	maxFeatures := config.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = 30
	}
	globalCount := config.GlobalFeatures
	if globalCount == 0 {
		globalCount = 20
	}
	localCount := config.LocalFeatures
	if localCount == 0 {
		localCount = 16
	}
	threshold := config.DeclineThreshold
	if threshold == 0 {
		threshold = 0.5
	}

	catalogFeatures := config.Session.Catalog.Features()
	model := Model{
		session:          config.Session,
		artifacts:        config.Artifacts,
		features:         config.Features,
		logger:           logger,
		keys:             DefaultKeyMap,
		theme:            DefaultTheme,
		minFeatures:      minFeatures,
		maxFeatures:      maxFeatures,
		declineThreshold: threshold,
		globalCount:      globalCount,
		localCount:       localCount,
		slab:             NewSlab(),
		pickerA:          featurePicker{features: catalogFeatures, filter: scoring.FilterAll},
		pickerB:          featurePicker{features: catalogFeatures, filter: scoring.FilterAll},
	}
	model.applyFilter()
	return model, nil
}

// Init fetches the global impact chart; everything else waits for a
// client selection.
func (m Model) Init() tea.Cmd {
	return m.fetchArtifact(int(panelGlobal), m.fetchSeq[panelGlobal], artifactcache.GlobalImpact{MaxFeatures: m.globalCount})
}

// --- Messages ---

type scoreLoadedMsg struct {
	clientID int64
	score    float64
	err      error
}

type artifactLoadedMsg struct {
	slot   int
	seq    int
	handle artifactcache.Handle
	err    error
}

type featureListLoadedMsg struct {
	slot     panelID // panelPickerA or panelPickerB
	seq      int
	features []string
	err      error
}

// --- Commands ---

func (m Model) fetchScore(clientID int64) tea.Cmd {
	artifacts := m.artifacts
	return func() tea.Msg {
		score, err := artifacts.Score(context.Background(), clientID)
		return scoreLoadedMsg{clientID: clientID, score: score, err: err}
	}
}

func (m Model) fetchArtifact(slot int, seq int, request artifactcache.Request) tea.Cmd {
	artifacts := m.artifacts
	return func() tea.Msg {
		handle, err := artifacts.Get(context.Background(), request)
		return artifactLoadedMsg{slot: slot, seq: seq, handle: handle, err: err}
	}
}

func (m Model) fetchFeatureList(slot panelID, seq int, clientID int64, rankByImpact bool, filter scoring.Filter) tea.Cmd {
	features := m.features
	return func() tea.Msg {
		list, err := features.FeatureSelection(context.Background(), clientID, rankByImpact, filter)
		return featureListLoadedMsg{slot: slot, seq: seq, features: list, err: err}
	}
}

// --- Update ---

// Update handles messages and returns the next model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case scoreLoadedMsg:
		if msg.clientID != m.selectedClient {
			return m, nil // Stale: a different client was selected since.
		}
		m.scoreLoading = false
		if msg.err != nil {
			m.scoreErr = msg.err
			m.haveScore = false
			return m, nil
		}
		m.scoreErr = nil
		m.haveScore = true
		m.score = msg.score
		return m, nil

	case artifactLoadedMsg:
		return m.applyArtifact(msg), nil

	case featureListLoadedMsg:
		return m.applyFeatureList(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) applyArtifact(msg artifactLoadedMsg) Model {
	state := m.artifactSlot(msg.slot)
	if state == nil || msg.seq != m.fetchSeq[msg.slot] {
		return m // Stale: the panel's parameters changed mid-fetch.
	}
	state.loading = false
	state.handle = msg.handle
	state.err = msg.err
	if msg.err != nil {
		m.logger.Error("artifact fetch failed", "error", msg.err)
	}
	return m
}

// artifactSlot maps a sequence slot to its panel state. Pointers are
// into the (copied) model, so mutations stick to the returned copy.
func (m *Model) artifactSlot(slot int) *artifactState {
	switch slot {
	case int(panelGlobal):
		return &m.global
	case int(panelLocal):
		return &m.local
	case seqFeature:
		return &m.feature
	case seqBivariate:
		return &m.bivariate
	}
	return nil
}

func (m Model) applyFeatureList(msg featureListLoadedMsg) Model {
	picker := m.picker(msg.slot)
	if picker == nil || msg.seq != m.fetchSeq[msg.slot] {
		return m // Stale: the picker's parameters changed mid-fetch.
	}
	picker.loading = false
	picker.err = msg.err
	if msg.err == nil {
		picker.features = msg.features
		picker.cursor = 0
	}
	return m
}

func (m *Model) picker(slot panelID) *featurePicker {
	switch slot {
	case panelPickerA:
		return &m.pickerA
	case panelPickerB:
		return &m.pickerB
	}
	return nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Filter mode captures printable input for the client list.
	if m.filtering && m.focus == panelClients {
		switch msg.Type {
		case tea.KeyRunes:
			m.filterInput += string(msg.Runes)
			m.applyFilter()
			return m, nil
		case tea.KeyBackspace:
			if m.filterInput != "" {
				runes := []rune(m.filterInput)
				m.filterInput = string(runes[:len(runes)-1])
				m.applyFilter()
			}
			return m, nil
		case tea.KeyEscape:
			m.filtering = false
			m.filterInput = ""
			m.applyFilter()
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextPanel):
		m.focus = (m.focus + 1) % panelCount
		return m, nil

	case key.Matches(msg, m.keys.PreviousPanel):
		m.focus = (m.focus + panelCount - 1) % panelCount
		return m, nil

	case key.Matches(msg, m.keys.FilterActivate):
		if m.focus == panelClients {
			m.filtering = true
		}
		return m, nil

	case key.Matches(msg, m.keys.FilterClear):
		m.filtering = false
		m.filterInput = ""
		m.applyFilter()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1), nil

	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1), nil

	case key.Matches(msg, m.keys.Select):
		return m.handleSelect()

	case key.Matches(msg, m.keys.MoreFeatures):
		return m.adjustFeatureCount(1)

	case key.Matches(msg, m.keys.FewerFeatures):
		return m.adjustFeatureCount(-1)

	case key.Matches(msg, m.keys.ToggleRank):
		return m.togglePickerRank()

	case key.Matches(msg, m.keys.CycleFilter):
		return m.cyclePickerFilter()
	}
	return m, nil
}

func (m Model) moveCursor(delta int) Model {
	switch m.focus {
	case panelClients:
		if len(m.filtered) == 0 {
			m.cursor = 0
			return m
		}
		m.cursor += delta
		if m.cursor < 0 {
			m.cursor = 0
		}
		if m.cursor >= len(m.filtered) {
			m.cursor = len(m.filtered) - 1
		}
	case panelPickerA:
		m.pickerA.moveCursor(delta)
	case panelPickerB:
		m.pickerB.moveCursor(delta)
	}
	return m
}

func (m Model) handleSelect() (tea.Model, tea.Cmd) {
	switch m.focus {
	case panelClients:
		if m.cursor < 0 || m.cursor >= len(m.filtered) {
			return m, nil
		}
		return m.selectClient(m.filtered[m.cursor].id)

	case panelPickerA, panelPickerB:
		picker := m.picker(m.focus)
		if len(picker.features) == 0 {
			return m, nil
		}
		picker.selected = picker.features[picker.cursor]
		return m.refreshFeaturePanels()
	}
	return m, nil
}

// selectClient switches the dashboard to a client: live score fetch,
// local impact refetch, fresh feature lists, and cleared dependence
// panels (their feature selections belong to the previous client's
// ranking).
func (m Model) selectClient(id int64) (tea.Model, tea.Cmd) {
	if err := m.session.CheckClient(id); err != nil {
		m.scoreErr = err
		return m, nil
	}
	m.selectedClient = id
	m.scoreLoading = true
	m.haveScore = false
	m.scoreErr = nil

	m.pickerA.selected = ""
	m.pickerB.selected = ""
	m.pickerA.loading = true
	m.pickerB.loading = true
	m.feature = artifactState{}
	m.bivariate = artifactState{}
	m.fetchSeq[seqFeature]++
	m.fetchSeq[seqBivariate]++
	m.fetchSeq[panelPickerA]++
	m.fetchSeq[panelPickerB]++

	m.local = artifactState{loading: true}
	m.fetchSeq[panelLocal]++

	return m, tea.Batch(
		m.fetchScore(id),
		m.fetchArtifact(int(panelLocal), m.fetchSeq[panelLocal], artifactcache.LocalImpact{ClientID: id, MaxFeatures: m.localCount}),
		m.fetchFeatureList(panelPickerA, m.fetchSeq[panelPickerA], id, m.pickerA.rankByImpact, m.pickerA.filter),
		m.fetchFeatureList(panelPickerB, m.fetchSeq[panelPickerB], id, m.pickerB.rankByImpact, m.pickerB.filter),
	)
}

// refreshFeaturePanels refetches the single-feature panel (driven by
// picker A) and the bivariate panel (both pickers, distinct features
// only).
func (m Model) refreshFeaturePanels() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.selectedClient != 0 && m.pickerA.selected != "" {
		m.feature = artifactState{loading: true}
		m.fetchSeq[seqFeature]++
		cmds = append(cmds, m.fetchArtifact(seqFeature, m.fetchSeq[seqFeature], artifactcache.SingleFeature{
			ClientID: m.selectedClient,
			Feature:  m.pickerA.selected,
		}))
	}

	a, b := m.pickerA.selected, m.pickerB.selected
	if a != "" && b != "" && a != b {
		m.bivariate = artifactState{loading: true}
		m.fetchSeq[seqBivariate]++
		cmds = append(cmds, m.fetchArtifact(seqBivariate, m.fetchSeq[seqBivariate], artifactcache.BivariatePair{
			FeatureA: a,
			FeatureB: b,
		}))
	} else {
		// Identical or incomplete pair: no fetch, the panel shows a
		// hint instead.
		m.bivariate = artifactState{}
		m.fetchSeq[seqBivariate]++
	}

	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m Model) adjustFeatureCount(delta int) (tea.Model, tea.Cmd) {
	switch m.focus {
	case panelGlobal:
		next := clamp(m.globalCount+delta, m.minFeatures, m.maxFeatures)
		if next == m.globalCount {
			return m, nil
		}
		m.globalCount = next
		m.global = artifactState{loading: true}
		m.fetchSeq[panelGlobal]++
		return m, m.fetchArtifact(int(panelGlobal), m.fetchSeq[panelGlobal], artifactcache.GlobalImpact{MaxFeatures: next})

	case panelLocal:
		if m.selectedClient == 0 {
			return m, nil
		}
		next := clamp(m.localCount+delta, m.minFeatures, m.maxFeatures)
		if next == m.localCount {
			return m, nil
		}
		m.localCount = next
		m.local = artifactState{loading: true}
		m.fetchSeq[panelLocal]++
		return m, m.fetchArtifact(int(panelLocal), m.fetchSeq[panelLocal], artifactcache.LocalImpact{ClientID: m.selectedClient, MaxFeatures: next})
	}
	return m, nil
}

// togglePickerRank flips impact ranking for the focused picker. The
// ranking is relative to the selected client, so it is inert until a
// client is chosen.
func (m Model) togglePickerRank() (tea.Model, tea.Cmd) {
	picker := m.picker(m.focus)
	if picker == nil || m.selectedClient == 0 {
		return m, nil
	}
	picker.rankByImpact = !picker.rankByImpact
	picker.loading = true
	m.fetchSeq[m.focus]++
	return m, m.fetchFeatureList(m.focus, m.fetchSeq[m.focus], m.selectedClient, picker.rankByImpact, picker.filter)
}

func (m Model) cyclePickerFilter() (tea.Model, tea.Cmd) {
	picker := m.picker(m.focus)
	if picker == nil || m.selectedClient == 0 {
		return m, nil
	}
	picker.filter = nextFilter(picker.filter)
	picker.loading = true
	m.fetchSeq[m.focus]++
	return m, m.fetchFeatureList(m.focus, m.fetchSeq[m.focus], m.selectedClient, picker.rankByImpact, picker.filter)
}

func nextFilter(filter scoring.Filter) scoring.Filter {
	switch filter {
	case scoring.FilterAll:
		return scoring.FilterCurrent
	case scoring.FilterCurrent:
		return scoring.FilterPrevious
	default:
		return scoring.FilterAll
	}
}

// applyFilter recomputes the filtered client list from the current
// filter input. An empty input lists every client in registry order;
// otherwise rows are fuzzy-scored and sorted by descending score.
func (m *Model) applyFilter() {
	ids := m.session.Registry.IDs()
	pattern := []rune(m.filterInput)

	m.filtered = m.filtered[:0]
	if len(pattern) == 0 {
		for _, id := range ids {
			m.filtered = append(m.filtered, clientMatch{id: id})
		}
	} else {
		for _, id := range ids {
			result := FuzzyMatch(strconv.FormatInt(id, 10), pattern, m.slab)
			if result.Score > 0 {
				m.filtered = append(m.filtered, clientMatch{id: id, score: result.Score, positions: result.Positions})
			}
		}
		sort.SliceStable(m.filtered, func(i, j int) bool {
			return m.filtered[i].score > m.filtered[j].score
		})
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
