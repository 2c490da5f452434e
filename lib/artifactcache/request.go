// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import "fmt"

// Request identifies one cacheable visualization artifact. The
// implementations form a closed set: GlobalImpact, LocalImpact,
// SingleFeature, and BivariatePair.
type Request interface {
	isRequest()

	// String describes the request for logs and error messages.
	String() string
}

// GlobalImpact requests the population-wide feature-importance chart,
// limited to the MaxFeatures highest-impact features.
type GlobalImpact struct {
	MaxFeatures int
}

func (GlobalImpact) isRequest() {}

func (r GlobalImpact) String() string {
	return fmt.Sprintf("global impact (top %d)", r.MaxFeatures)
}

// LocalImpact requests the per-client feature-impact chart.
type LocalImpact struct {
	ClientID    int64
	MaxFeatures int
}

func (LocalImpact) isRequest() {}

func (r LocalImpact) String() string {
	return fmt.Sprintf("local impact for client %d (top %d)", r.ClientID, r.MaxFeatures)
}

// SingleFeature requests the dependence chart of one feature for a
// client. The feature is named; key derivation resolves it to its
// stable catalog index.
type SingleFeature struct {
	ClientID int64
	Feature  string
}

func (SingleFeature) isRequest() {}

func (r SingleFeature) String() string {
	return fmt.Sprintf("feature %s for client %d", r.Feature, r.ClientID)
}

// BivariatePair requests the bivariate analysis of two distinct
// features. The analysis is symmetric: a pair and its reverse denote
// the same artifact.
type BivariatePair struct {
	FeatureA string
	FeatureB string
}

func (BivariatePair) isRequest() {}

func (r BivariatePair) String() string {
	return fmt.Sprintf("bivariate %s / %s", r.FeatureA, r.FeatureB)
}
