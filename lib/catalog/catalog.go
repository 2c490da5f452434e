// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
)

// Catalog is the feature metadata table for a session. Construct with
// New, which validates the type partition; the zero value is not
// usable. All fields are private and the type has no mutating methods,
// so a *Catalog can be shared freely across goroutines.
type Catalog struct {
	all         []string
	index       map[string]int
	categorical map[string]struct{}
	numeric     map[string]struct{}
}

// New builds a Catalog from the ordered feature list and the
// categorical/numeric partition as returned by the scoring service.
//
// Validation enforces the catalog invariants: no duplicate names in
// the ordered list, the categorical and numeric sets are disjoint, and
// both are subsets of the ordered list. A feature in neither set is
// allowed — it classifies as KindUnknown.
func New(all, categorical, numeric []string) (*Catalog, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("catalog: feature list is empty")
	}

	index := make(map[string]int, len(all))
	for position, name := range all {
		if name == "" {
			return nil, fmt.Errorf("catalog: empty feature name at position %d", position)
		}
		if _, duplicate := index[name]; duplicate {
			return nil, fmt.Errorf("catalog: duplicate feature name %q", name)
		}
		index[name] = position
	}

	categoricalSet := make(map[string]struct{}, len(categorical))
	for _, name := range categorical {
		if _, known := index[name]; !known {
			return nil, fmt.Errorf("catalog: categorical feature %q is not in the feature list", name)
		}
		categoricalSet[name] = struct{}{}
	}

	numericSet := make(map[string]struct{}, len(numeric))
	for _, name := range numeric {
		if _, known := index[name]; !known {
			return nil, fmt.Errorf("catalog: numeric feature %q is not in the feature list", name)
		}
		if _, both := categoricalSet[name]; both {
			return nil, fmt.Errorf("catalog: feature %q is both categorical and numeric", name)
		}
		numericSet[name] = struct{}{}
	}

	return &Catalog{
		all:         append([]string(nil), all...),
		index:       index,
		categorical: categoricalSet,
		numeric:     numericSet,
	}, nil
}

// Features returns the ordered feature names. The returned slice is a
// copy; callers may not mutate catalog state through it.
func (c *Catalog) Features() []string {
	return append([]string(nil), c.all...)
}

// Len returns the number of features in the catalog.
func (c *Catalog) Len() int {
	return len(c.all)
}

// Index returns the position of the named feature in the canonical
// ordering, or false if the name is unknown.
func (c *Catalog) Index(name string) (int, bool) {
	position, known := c.index[name]
	return position, known
}

// Name returns the feature name at the given canonical position, or
// false if the position is out of range.
func (c *Catalog) Name(position int) (string, bool) {
	if position < 0 || position >= len(c.all) {
		return "", false
	}
	return c.all[position], true
}
