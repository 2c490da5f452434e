// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

// Package session bootstraps the reference data a dashboard run needs
// before it can serve a single panel: the feature catalog and the
// client registry. Both are fetched once at startup and treated as
// immutable for the rest of the run, so every later lookup and cache
// key derivation works against one consistent snapshot.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/credlens/credlens/lib/catalog"
)

// Directory is the slice of the scoring service session bootstrap
// needs. *scoring.Client satisfies it.
type Directory interface {
	ClientIDs(ctx context.Context) (*catalog.Registry, error)
	FeatureCatalog(ctx context.Context) (*catalog.Catalog, error)
}

// Session holds the immutable reference data for one dashboard run.
type Session struct {
	// Catalog is the feature metadata table.
	Catalog *catalog.Catalog

	// Registry is the set of valid client identifiers.
	Registry *catalog.Registry
}

// Bootstrap fetches the feature catalog and client registry from the
// scoring service. A failure of either fetch fails the whole
// bootstrap: a dashboard without reference data cannot render
// anything meaningful.
func Bootstrap(ctx context.Context, directory Directory, logger *slog.Logger) (*Session, error) {
	if directory == nil {
		return nil, fmt.Errorf("session: directory is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := directory.FeatureCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feature catalog: %w", err)
	}
	registry, err := directory.ClientIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching client registry: %w", err)
	}

	logger.Info("session bootstrapped",
		"features", cat.Len(),
		"clients", registry.Len())
	return &Session{Catalog: cat, Registry: registry}, nil
}

// CheckClient validates that id belongs to the registry.
func (s *Session) CheckClient(id int64) error {
	if !s.Registry.Contains(id) {
		return fmt.Errorf("session: unknown client id %d", id)
	}
	return nil
}
