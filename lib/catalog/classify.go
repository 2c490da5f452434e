// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

// Kind is a feature's statistical type as declared by the scoring
// service's feature lists.
type Kind int

const (
	// KindUnknown is returned for names absent from both type sets
	// (including names absent from the catalog entirely).
	KindUnknown Kind = iota

	// KindCategorical marks discrete-valued features.
	KindCategorical

	// KindNumeric marks continuous-valued features.
	KindNumeric
)

// String returns the lowercase kind name for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// LayoutHint is the display-size hint for a bivariate analysis panel.
type LayoutHint int

const (
	// LayoutNormal is the default panel width.
	LayoutNormal LayoutHint = iota

	// LayoutLarge widens the panel. The scoring service renders
	// mixed-type analyses (ANOVA plots) wider than same-type ones.
	LayoutLarge
)

// String returns the lowercase hint name.
func (h LayoutHint) String() string {
	if h == LayoutLarge {
		return "large"
	}
	return "normal"
}

// Classify returns the declared kind of the named feature.
func (c *Catalog) Classify(name string) Kind {
	if _, ok := c.categorical[name]; ok {
		return KindCategorical
	}
	if _, ok := c.numeric[name]; ok {
		return KindNumeric
	}
	return KindUnknown
}

// BivariateLayout returns the display-size hint for a bivariate pair:
// LayoutLarge exactly when one feature is categorical and the other
// numeric, LayoutNormal otherwise (both same kind, or either unknown).
func (c *Catalog) BivariateLayout(featureA, featureB string) LayoutHint {
	kindA := c.Classify(featureA)
	kindB := c.Classify(featureB)
	mixed := (kindA == KindCategorical && kindB == KindNumeric) ||
		(kindA == KindNumeric && kindB == KindCategorical)
	if mixed {
		return LayoutLarge
	}
	return LayoutNormal
}
