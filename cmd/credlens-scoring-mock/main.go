// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

// credlens-scoring-mock is a drop-in scoring service for local
// development and integration tests. It serves the full dashboard
// endpoint surface — client registry, feature catalog, per-client
// scores, feature selections, and rendered chart artifacts — from
// deterministic synthetic data, so the dashboard can be exercised
// end-to-end without a model server.
//
// All responses are a pure function of the client id, the feature
// name, and the request parameters: restarting the mock never changes
// an answer, which is what the dashboard's at-most-once artifact
// fetching is tested against.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/credlens/credlens/lib/process"
	"github.com/credlens/credlens/lib/serve"
	"github.com/credlens/credlens/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var listenAddress string
	var clientCount int
	var bivariateDelay time.Duration

	flagSet := pflag.NewFlagSet("credlens-scoring-mock", pflag.ContinueOnError)
	flagSet.StringVar(&listenAddress, "listen", "127.0.0.1:8500", "TCP listen address")
	flagSet.IntVar(&clientCount, "clients", 100, "number of synthetic clients")
	flagSet.DurationVar(&bivariateDelay, "bivar-delay", 0, "artificial latency for bivariate rendering (timeout testing)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("credlens-scoring-mock")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			flagSet.SetOutput(os.Stderr)
			flagSet.PrintDefaults()
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.SetOutput(os.Stderr)
		flagSet.PrintDefaults()
		return nil
	}
	if clientCount <= 0 {
		return fmt.Errorf("--clients must be positive, got %d", clientCount)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mock := newScoringMock(clientCount, bivariateDelay, logger)

	server := serve.NewHTTPServer(serve.HTTPServerConfig{
		Address: listenAddress,
		Handler: mock.handler(),
		Logger:  logger,
	})

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()

	<-server.Ready()
	logger.Info("scoring mock running",
		"address", server.Addr().String(),
		"clients", clientCount,
		"features", len(mock.features),
	)

	return <-serveDone
}

// Synthetic feature catalog, in the naming style of the credit bureau
// exports the real service is trained on. PREV_-prefixed features
// describe prior loans; the rest describe the current application.
var (
	mockFeatures = []string{
		"AMT_CREDIT",
		"AMT_ANNUITY",
		"AMT_GOODS_PRICE",
		"DAYS_BIRTH",
		"DAYS_EMPLOYED",
		"EXT_SOURCE_1",
		"EXT_SOURCE_2",
		"EXT_SOURCE_3",
		"CODE_GENDER",
		"NAME_EDUCATION_TYPE",
		"NAME_FAMILY_STATUS",
		"FLAG_OWN_CAR",
		"PREV_AMT_CREDIT",
		"PREV_AMT_ANNUITY",
		"PREV_DAYS_DECISION",
		"PREV_NAME_CONTRACT_STATUS",
	}
	mockCategorical = []string{
		"CODE_GENDER",
		"NAME_EDUCATION_TYPE",
		"NAME_FAMILY_STATUS",
		"FLAG_OWN_CAR",
		"PREV_NAME_CONTRACT_STATUS",
	}
	mockNumeric = []string{
		"AMT_CREDIT",
		"AMT_ANNUITY",
		"AMT_GOODS_PRICE",
		"DAYS_BIRTH",
		"DAYS_EMPLOYED",
		"EXT_SOURCE_1",
		"EXT_SOURCE_2",
		"EXT_SOURCE_3",
		"PREV_AMT_CREDIT",
		"PREV_AMT_ANNUITY",
		"PREV_DAYS_DECISION",
	}
)

// scoringMock serves the scoring service API from synthetic data.
type scoringMock struct {
	clients        []int64
	clientSet      map[int64]bool
	features       []string
	featureSet     map[string]bool
	bivariateDelay time.Duration
	logger         *slog.Logger
}

func newScoringMock(clientCount int, bivariateDelay time.Duration, logger *slog.Logger) *scoringMock {
	mock := &scoringMock{
		clientSet:      make(map[int64]bool),
		features:       mockFeatures,
		featureSet:     make(map[string]bool),
		bivariateDelay: bivariateDelay,
		logger:         logger,
	}
	for i := 0; i < clientCount; i++ {
		id := int64(100001 + i)
		mock.clients = append(mock.clients, id)
		mock.clientSet[id] = true
	}
	for _, feature := range mockFeatures {
		mock.featureSet[feature] = true
	}
	return mock
}

func (m *scoringMock) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /clients_list", m.handleClientsList)
	mux.HandleFunc("GET /feature_lists", m.handleFeatureLists)
	mux.HandleFunc("GET /global_impact", m.handleGlobalImpact)
	mux.HandleFunc("GET /graph_bivar", m.handleBivariate)
	mux.HandleFunc("GET /{id}", m.handleScore)
	mux.HandleFunc("GET /{id}/feature_selection", m.handleFeatureSelection)
	mux.HandleFunc("GET /{id}/local_impact", m.handleLocalImpact)
	mux.HandleFunc("GET /{id}/feature", m.handleFeature)
	return mux
}

func (m *scoringMock) handleClientsList(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, map[string]any{"id_list": m.clients})
}

func (m *scoringMock) handleFeatureLists(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, map[string]any{
		"all": m.features,
		"cat": mockCategorical,
		"num": mockNumeric,
	})
}

func (m *scoringMock) handleScore(writer http.ResponseWriter, request *http.Request) {
	clientID, ok := m.clientFromPath(writer, request)
	if !ok {
		return
	}
	writeJSON(writer, map[string]any{"score": m.score(clientID)})
}

func (m *scoringMock) handleFeatureSelection(writer http.ResponseWriter, request *http.Request) {
	clientID, ok := m.clientFromPath(writer, request)
	if !ok {
		return
	}

	filter := request.URL.Query().Get("filter")
	if filter == "" {
		filter = "all"
	}
	var selection []string
	switch filter {
	case "all":
		selection = append(selection, m.features...)
	case "current":
		for _, feature := range m.features {
			if !strings.HasPrefix(feature, "PREV_") {
				selection = append(selection, feature)
			}
		}
	case "previous":
		for _, feature := range m.features {
			if strings.HasPrefix(feature, "PREV_") {
				selection = append(selection, feature)
			}
		}
	default:
		http.Error(writer, fmt.Sprintf("unknown filter %q", filter), http.StatusBadRequest)
		return
	}

	// is_wf orders the list by impact magnitude on this client's
	// score; otherwise catalog order is kept.
	if request.URL.Query().Get("is_wf") == "true" {
		sort.SliceStable(selection, func(i, j int) bool {
			return abs(m.impact(selection[i], clientID)) > abs(m.impact(selection[j], clientID))
		})
	}

	writeJSON(writer, map[string]any{"feature_selection": selection})
}

func (m *scoringMock) handleGlobalImpact(writer http.ResponseWriter, request *http.Request) {
	maxFeatures, ok := maxFeaturesParam(writer, request, len(m.features))
	if !ok {
		return
	}
	// Global impact: magnitude per feature over the whole population,
	// approximated by the impact on a fixed pseudo-client.
	m.writeChart(writer, m.topImpacts(0, maxFeatures))
}

func (m *scoringMock) handleLocalImpact(writer http.ResponseWriter, request *http.Request) {
	clientID, ok := m.clientFromPath(writer, request)
	if !ok {
		return
	}
	maxFeatures, ok := maxFeaturesParam(writer, request, len(m.features))
	if !ok {
		return
	}
	m.writeChart(writer, m.topImpacts(clientID, maxFeatures))
}

func (m *scoringMock) handleFeature(writer http.ResponseWriter, request *http.Request) {
	clientID, ok := m.clientFromPath(writer, request)
	if !ok {
		return
	}
	feature := request.URL.Query().Get("feature")
	if !m.featureSet[feature] {
		http.Error(writer, fmt.Sprintf("unknown feature %q", feature), http.StatusBadRequest)
		return
	}

	// Dependence curve: the feature's contribution across 24 buckets
	// of its value range, seeded by client and feature.
	values := make([]float64, 24)
	for bucket := range values {
		values[bucket] = hashUnit(fmt.Sprintf("dep|%s|%d|%d", feature, clientID, bucket))*2 - 1
	}
	m.writeChart(writer, values)
}

func (m *scoringMock) handleBivariate(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	featureA := query.Get("feature_1")
	featureB := query.Get("feature_2")
	if !m.featureSet[featureA] || !m.featureSet[featureB] {
		http.Error(writer, "both feature_1 and feature_2 must name catalog features", http.StatusBadRequest)
		return
	}
	if featureA == featureB {
		http.Error(writer, "bivariate analysis needs two distinct features", http.StatusBadRequest)
		return
	}

	if m.bivariateDelay > 0 {
		select {
		case <-time.After(m.bivariateDelay):
		case <-request.Context().Done():
			return
		}
	}

	// The rendering is symmetric in the pair, matching the real
	// service: both orders produce the same bytes.
	first, second := featureA, featureB
	if second < first {
		first, second = second, first
	}
	values := make([]float64, 32)
	for bucket := range values {
		values[bucket] = hashUnit(fmt.Sprintf("bivar|%s|%s|%d", first, second, bucket))*2 - 1
	}
	m.writeChart(writer, values)
}

// --- Synthetic data ---

// score returns the deterministic default-risk score for a client.
func (m *scoringMock) score(clientID int64) float64 {
	return hashUnit(fmt.Sprintf("score|%d", clientID))
}

// impact returns the signed contribution of a feature to a client's
// score. Client id 0 stands for the population aggregate.
func (m *scoringMock) impact(feature string, clientID int64) float64 {
	return hashUnit(fmt.Sprintf("impact|%s|%d", feature, clientID))*2 - 1
}

// topImpacts returns the maxFeatures largest-magnitude impacts for a
// client, in decreasing magnitude order.
func (m *scoringMock) topImpacts(clientID int64, maxFeatures int) []float64 {
	impacts := make([]float64, len(m.features))
	for index, feature := range m.features {
		impacts[index] = m.impact(feature, clientID)
	}
	sort.SliceStable(impacts, func(i, j int) bool {
		return abs(impacts[i]) > abs(impacts[j])
	})
	if maxFeatures < len(impacts) {
		impacts = impacts[:maxFeatures]
	}
	return impacts
}

// hashUnit maps a seed string to a deterministic value in [0, 1).
func hashUnit(seed string) float64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(seed))
	return float64(hasher.Sum64()%1_000_000) / 1_000_000
}

// --- Request plumbing ---

func (m *scoringMock) clientFromPath(writer http.ResponseWriter, request *http.Request) (int64, bool) {
	raw := request.PathValue("id")
	clientID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(writer, fmt.Sprintf("invalid client id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	if !m.clientSet[clientID] {
		http.Error(writer, fmt.Sprintf("unknown client id %d", clientID), http.StatusNotFound)
		return 0, false
	}
	return clientID, true
}

func maxFeaturesParam(writer http.ResponseWriter, request *http.Request, limit int) (int, bool) {
	raw := request.URL.Query().Get("max_feat")
	if raw == "" {
		return limit, true
	}
	maxFeatures, err := strconv.Atoi(raw)
	if err != nil || maxFeatures < 1 {
		http.Error(writer, fmt.Sprintf("invalid max_feat %q", raw), http.StatusBadRequest)
		return 0, false
	}
	if maxFeatures > limit {
		maxFeatures = limit
	}
	return maxFeatures, true
}

func (m *scoringMock) writeChart(writer http.ResponseWriter, values []float64) {
	chart, err := renderBarChart(values)
	if err != nil {
		m.logger.Error("chart render failed", "error", err)
		http.Error(writer, "chart render failed", http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "image/png")
	writer.Header().Set("Content-Length", strconv.Itoa(len(chart)))
	writer.Write(chart)
}

func writeJSON(writer http.ResponseWriter, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(payload)
}
