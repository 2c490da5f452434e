// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashview implements the interactive credit-scoring dashboard
// as a bubbletea terminal UI.
//
// The layout is a client selector with fuzzy filtering on the left and
// four analysis panels on the right: the score gauge, global feature
// impact, per-client feature impact, and single-feature / bivariate
// dependence. Panel parameters (feature counts, ranking, filters) are
// adjusted with key bindings; every remote fetch runs as a tea.Cmd so
// the UI never blocks on the scoring service.
//
// Chart artifacts are resolved through the artifact cache and surface
// in the panels as ready-to-open file handles; scores are live calls
// and are never cached.
package dashview
