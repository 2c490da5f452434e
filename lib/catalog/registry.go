// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import "fmt"

// Registry is the ordered list of valid client identifiers, fetched
// once at startup. Like Catalog, it is immutable after construction.
type Registry struct {
	ids    []int64
	lookup map[int64]struct{}
}

// NewRegistry builds a Registry from the service's id list. Duplicate
// ids are rejected — they would make selection indices ambiguous.
func NewRegistry(ids []int64) (*Registry, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("catalog: client id list is empty")
	}

	lookup := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, duplicate := lookup[id]; duplicate {
			return nil, fmt.Errorf("catalog: duplicate client id %d", id)
		}
		lookup[id] = struct{}{}
	}

	return &Registry{
		ids:    append([]int64(nil), ids...),
		lookup: lookup,
	}, nil
}

// IDs returns the ordered client identifiers as a copy.
func (r *Registry) IDs() []int64 {
	return append([]int64(nil), r.ids...)
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Contains reports whether id is a valid client identifier.
func (r *Registry) Contains(id int64) bool {
	_, ok := r.lookup[id]
	return ok
}
