// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import (
	"fmt"

	"github.com/credlens/credlens/lib/catalog"
)

// Limits bounds the feature-count parameter of impact requests. The
// reference dashboard's sliders run from 5 to 30.
type Limits struct {
	MinFeatures int
	MaxFeatures int
}

// DefaultLimits returns the reference bounds (5–30).
func DefaultLimits() Limits {
	return Limits{MinFeatures: 5, MaxFeatures: 30}
}

// Deriver maps requests to cache keys. Key derivation is pure: it
// validates the request against the catalog and limits, then formats
// the key string. No I/O.
//
// Key formats preserve the legacy scratch-directory naming:
//
//	gfgi_<n>.png                global impact
//	gfli_<client>_<n>.png       local impact
//	feature_<client>_<idx>.png  single feature (idx = catalog position)
//	bivar<idxA>_<idxB>.png      bivariate, as-given order
//
// Feature positions, not names, go into keys, so the key space is
// stable even if display names change case or locale.
type Deriver struct {
	catalog *catalog.Catalog
	limits  Limits
}

// NewDeriver creates a Deriver over the session catalog. Zero-valued
// limits are replaced with DefaultLimits.
func NewDeriver(cat *catalog.Catalog, limits Limits) (*Deriver, error) {
	if cat == nil {
		return nil, fmt.Errorf("artifactcache: catalog is required")
	}
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	if limits.MinFeatures <= 0 || limits.MaxFeatures < limits.MinFeatures {
		return nil, fmt.Errorf("artifactcache: invalid feature count limits %d–%d", limits.MinFeatures, limits.MaxFeatures)
	}
	return &Deriver{catalog: cat, limits: limits}, nil
}

// Key returns the primary cache key for a request. Validation failures
// (UnknownFeatureError, InvalidParameterError) are reported here, before
// any fetch is attempted.
func (d *Deriver) Key(request Request) (string, error) {
	switch r := request.(type) {
	case GlobalImpact:
		if err := d.checkFeatureCount(r.MaxFeatures); err != nil {
			return "", err
		}
		return fmt.Sprintf("gfgi_%d.png", r.MaxFeatures), nil

	case LocalImpact:
		if err := d.checkFeatureCount(r.MaxFeatures); err != nil {
			return "", err
		}
		return fmt.Sprintf("gfli_%d_%d.png", r.ClientID, r.MaxFeatures), nil

	case SingleFeature:
		index, err := d.featureIndex(r.Feature)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("feature_%d_%d.png", r.ClientID, index), nil

	case BivariatePair:
		indexA, indexB, err := d.pairIndices(r)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("bivar%d_%d.png", indexA, indexB), nil

	default:
		return "", fmt.Errorf("artifactcache: unsupported request type %T", request)
	}
}

// AlternateKeys returns the other keys the same semantic artifact may
// be stored under. Only bivariate requests have one: the reverse-order
// key, which an earlier session may have written. Empty for all other
// variants.
func (d *Deriver) AlternateKeys(request Request) ([]string, error) {
	pair, ok := request.(BivariatePair)
	if !ok {
		return nil, nil
	}
	indexA, indexB, err := d.pairIndices(pair)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("bivar%d_%d.png", indexB, indexA)}, nil
}

// lockID returns the identity used for per-key fetch serialization.
// For bivariate pairs the indices are ordered so both orderings of the
// same pair contend on one lock; for everything else it is the primary
// key.
func (d *Deriver) lockID(request Request) (string, error) {
	pair, ok := request.(BivariatePair)
	if !ok {
		return d.Key(request)
	}
	indexA, indexB, err := d.pairIndices(pair)
	if err != nil {
		return "", err
	}
	if indexB < indexA {
		indexA, indexB = indexB, indexA
	}
	return fmt.Sprintf("bivar%d_%d.png", indexA, indexB), nil
}

func (d *Deriver) checkFeatureCount(count int) error {
	if count < d.limits.MinFeatures || count > d.limits.MaxFeatures {
		return &InvalidParameterError{
			Parameter: "max features",
			Reason:    fmt.Sprintf("%d is outside %d–%d", count, d.limits.MinFeatures, d.limits.MaxFeatures),
		}
	}
	return nil
}

func (d *Deriver) featureIndex(name string) (int, error) {
	index, known := d.catalog.Index(name)
	if !known {
		return 0, &UnknownFeatureError{Name: name}
	}
	return index, nil
}

func (d *Deriver) pairIndices(pair BivariatePair) (int, int, error) {
	if pair.FeatureA == pair.FeatureB {
		return 0, 0, &InvalidParameterError{
			Parameter: "bivariate pair",
			Reason:    fmt.Sprintf("features must be distinct, got %q twice", pair.FeatureA),
		}
	}
	indexA, err := d.featureIndex(pair.FeatureA)
	if err != nil {
		return 0, 0, err
	}
	indexB, err := d.featureIndex(pair.FeatureB)
	if err != nil {
		return 0, 0, err
	}
	return indexA, indexB, nil
}
