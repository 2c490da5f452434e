// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package dashview

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/credlens/credlens/lib/artifactcache"
	"github.com/credlens/credlens/lib/catalog"
	"github.com/credlens/credlens/lib/scoring"
	"github.com/credlens/credlens/lib/session"
)

// fakeArtifacts records every request and serves synthetic handles.
type fakeArtifacts struct {
	mu       sync.Mutex
	requests []artifactcache.Request
	score    float64
}

func (f *fakeArtifacts) Get(ctx context.Context, request artifactcache.Request) (artifactcache.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	return artifactcache.Handle{Key: "blob.png", Path: "/scratch/blob.png", Size: 2048}, nil
}

func (f *fakeArtifacts) Score(ctx context.Context, clientID int64) (float64, error) {
	return f.score, nil
}

func (f *fakeArtifacts) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeLister struct {
	features []string
	ranked   []string // returned for rankByImpact requests when set
}

func (f *fakeLister) FeatureSelection(ctx context.Context, clientID int64, rankByImpact bool, filter scoring.Filter) ([]string, error) {
	if rankByImpact && f.ranked != nil {
		return f.ranked, nil
	}
	return f.features, nil
}

func newTestModel(t *testing.T) (Model, *fakeArtifacts) {
	t.Helper()
	cat, err := catalog.New(
		[]string{"AMT_CREDIT", "AGE", "EDUCATION", "GENDER"},
		[]string{"EDUCATION", "GENDER"},
		[]string{"AMT_CREDIT", "AGE"},
	)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	registry, err := catalog.NewRegistry([]int64{100001, 100005, 200003})
	if err != nil {
		t.Fatalf("catalog.NewRegistry: %v", err)
	}

	artifacts := &fakeArtifacts{score: 0.37}
	model, err := New(Config{
		Session:   &session.Session{Catalog: cat, Registry: registry},
		Artifacts: artifacts,
		Features:  &fakeLister{features: cat.Features()},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return model, artifacts
}

// applyCmd runs a command tree synchronously and feeds every produced
// message back into Update, the way the bubbletea runtime would.
func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			m = applyCmd(t, m, sub)
		}
		return m
	}
	updated, next := m.Update(msg)
	return applyCmd(t, updated.(Model), next)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	return applyCmd(t, updated.(Model), cmd)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInit_FetchesGlobalImpact(t *testing.T) {
	m, artifacts := newTestModel(t)

	m = applyCmd(t, m, m.Init())

	if m.global.loading {
		t.Error("global panel still loading after fetch completed")
	}
	if m.global.handle.Path == "" {
		t.Error("global panel has no handle after Init")
	}
	if artifacts.requestCount() != 1 {
		t.Fatalf("Init made %d requests, want 1", artifacts.requestCount())
	}
	request, ok := artifacts.requests[0].(artifactcache.GlobalImpact)
	if !ok {
		t.Fatalf("Init requested %T, want GlobalImpact", artifacts.requests[0])
	}
	if request.MaxFeatures != 20 {
		t.Errorf("Init requested %d features, want default 20", request.MaxFeatures)
	}
}

func TestSelectClient_FetchesScoreAndLocalImpact(t *testing.T) {
	m, artifacts := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.selectedClient != 100001 {
		t.Fatalf("selected client = %d, want 100001", m.selectedClient)
	}
	if !m.haveScore || m.score != 0.37 {
		t.Errorf("score = %v (have=%v), want 0.37", m.score, m.haveScore)
	}
	if m.local.handle.Path == "" {
		t.Error("local impact panel has no handle after client selection")
	}

	var sawLocal bool
	for _, request := range artifacts.requests {
		if local, ok := request.(artifactcache.LocalImpact); ok {
			sawLocal = true
			if local.ClientID != 100001 || local.MaxFeatures != 16 {
				t.Errorf("local impact request = %+v, want client 100001 top 16", local)
			}
		}
	}
	if !sawLocal {
		t.Error("client selection did not request the local impact chart")
	}
}

func TestClientFilter_NarrowsList(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, keyRunes("/"))
	if !m.filtering {
		t.Fatal("/ did not activate the client filter")
	}

	m = press(t, m, keyRunes("2"))
	if len(m.filtered) != 1 || m.filtered[0].id != 200003 {
		t.Fatalf("filter '2' matched %v, want only 200003", m.filtered)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.filtering || m.filterInput != "" {
		t.Error("escape did not clear the filter")
	}
	if len(m.filtered) != 3 {
		t.Errorf("cleared filter lists %d clients, want 3", len(m.filtered))
	}
}

func TestAdjustFeatureCount_ClampsToBounds(t *testing.T) {
	m, artifacts := newTestModel(t)
	m.focus = panelGlobal

	m = press(t, m, keyRunes("+"))
	if m.globalCount != 21 {
		t.Errorf("global count = %d after +, want 21", m.globalCount)
	}
	if artifacts.requestCount() != 1 {
		t.Errorf("adjustment made %d requests, want 1", artifacts.requestCount())
	}

	m.globalCount = 30
	m = press(t, m, keyRunes("+"))
	if m.globalCount != 30 {
		t.Errorf("global count = %d at upper bound, want to stay 30", m.globalCount)
	}
	if artifacts.requestCount() != 1 {
		t.Error("at-bound adjustment still issued a request")
	}

	m.globalCount = 5
	m = press(t, m, keyRunes("-"))
	if m.globalCount != 5 {
		t.Errorf("global count = %d at lower bound, want to stay 5", m.globalCount)
	}
}

func TestLocalAdjust_RequiresClient(t *testing.T) {
	m, artifacts := newTestModel(t)
	m.focus = panelLocal

	m = press(t, m, keyRunes("+"))
	if m.localCount != 16 {
		t.Errorf("local count changed to %d without a client", m.localCount)
	}
	if artifacts.requestCount() != 0 {
		t.Error("local adjustment fetched without a selected client")
	}
}

func TestStaleArtifactResponseDropped(t *testing.T) {
	m, _ := newTestModel(t)

	// A response from a superseded fetch carries an old sequence
	// number and must not overwrite the panel.
	m.fetchSeq[panelGlobal] = 3
	m.global = artifactState{loading: true}

	updated, _ := m.Update(artifactLoadedMsg{
		slot:   int(panelGlobal),
		seq:    2,
		handle: artifactcache.Handle{Path: "/stale.png"},
	})
	m = updated.(Model)

	if !m.global.loading {
		t.Error("stale response cleared the loading state")
	}
	if m.global.handle.Path != "" {
		t.Error("stale response installed its handle")
	}
}

func TestStaleFeatureListResponseDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m.features = &fakeLister{
		features: []string{"AMT_CREDIT", "AGE", "EDUCATION", "GENDER"},
		ranked:   []string{"GENDER", "EDUCATION", "AGE", "AMT_CREDIT"},
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // select client
	m.focus = panelPickerA

	// First toggle requests the ranked list; hold its response in
	// flight instead of delivering it.
	updated, staleCmd := m.Update(keyRunes("r"))
	m = updated.(Model)

	// Second toggle supersedes it and completes with catalog order.
	m = press(t, m, keyRunes("r"))
	if m.pickerA.loading {
		t.Fatal("picker still loading after the newer fetch completed")
	}
	if m.pickerA.features[0] != "AMT_CREDIT" {
		t.Fatalf("picker shows %q first, want catalog order", m.pickerA.features[0])
	}

	// The superseded ranked response lands last and must be ignored.
	updated, _ = m.Update(staleCmd())
	m = updated.(Model)
	if m.pickerA.features[0] != "AMT_CREDIT" {
		t.Errorf("stale feature list overwrote the picker, shows %q first", m.pickerA.features[0])
	}
}

func TestFeatureSelection_DrivesDependencePanels(t *testing.T) {
	m, artifacts := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // select client 100001
	before := artifacts.requestCount()

	m.focus = panelPickerA
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // select AMT_CREDIT
	if m.pickerA.selected != "AMT_CREDIT" {
		t.Fatalf("picker A selected %q, want AMT_CREDIT", m.pickerA.selected)
	}

	var sawFeature bool
	for _, request := range artifacts.requests[before:] {
		if single, ok := request.(artifactcache.SingleFeature); ok {
			sawFeature = true
			if single.Feature != "AMT_CREDIT" || single.ClientID != 100001 {
				t.Errorf("single feature request = %+v", single)
			}
		}
	}
	if !sawFeature {
		t.Error("feature selection did not request the dependence chart")
	}

	// Second picker on a different feature triggers the bivariate
	// fetch.
	m.focus = panelPickerB
	m = press(t, m, keyRunes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // select AGE
	var sawBivariate bool
	for _, request := range artifacts.requests {
		if pair, ok := request.(artifactcache.BivariatePair); ok {
			sawBivariate = true
			if pair.FeatureA != "AMT_CREDIT" || pair.FeatureB != "AGE" {
				t.Errorf("bivariate request = %+v", pair)
			}
		}
	}
	if !sawBivariate {
		t.Error("distinct pair did not request the bivariate chart")
	}
}

func TestIdenticalPair_ShowsHintWithoutFetching(t *testing.T) {
	m, artifacts := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // select client
	before := artifacts.requestCount()

	m.focus = panelPickerA
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	afterFirst := artifacts.requestCount()

	m.focus = panelPickerB
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // same feature as A

	for _, request := range artifacts.requests[before:] {
		if _, ok := request.(artifactcache.BivariatePair); ok {
			t.Error("identical pair issued a bivariate fetch")
		}
	}
	// Picker B's selection re-requests the single-feature chart only.
	if artifacts.requestCount() != afterFirst+1 {
		t.Errorf("identical pair made %d extra requests, want 1 (feature refetch)", artifacts.requestCount()-afterFirst)
	}

	if !strings.Contains(m.View(), "distinct") {
		t.Error("view does not hint that the pair must be distinct")
	}
}

func TestGaugeVerdict(t *testing.T) {
	m, artifacts := newTestModel(t)

	artifacts.score = 0.62
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if view := m.View(); !strings.Contains(view, "credit declined") {
		t.Error("score 0.62 did not render as declined")
	}

	artifacts.score = 0.21
	m.focus = panelClients
	m = press(t, m, keyRunes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if view := m.View(); !strings.Contains(view, "credit granted") {
		t.Error("score 0.21 did not render as granted")
	}
}

func TestFocusCycle(t *testing.T) {
	m, _ := newTestModel(t)

	for i := 0; i < int(panelCount); i++ {
		if m.focus != panelID(i) {
			t.Fatalf("after %d tabs focus = %v, want %v", i, m.focus, panelID(i))
		}
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	if m.focus != panelClients {
		t.Errorf("focus did not wrap to the client panel, got %v", m.focus)
	}
}
