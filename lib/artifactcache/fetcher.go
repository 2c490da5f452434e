// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// RemoteClient is the slice of the scoring service the fetcher needs:
// one stream per artifact kind plus the uncached gauge score.
// *scoring.Client satisfies it.
type RemoteClient interface {
	StreamGlobalImpact(ctx context.Context, maxFeatures int) (io.ReadCloser, error)
	StreamLocalImpact(ctx context.Context, clientID int64, maxFeatures int) (io.ReadCloser, error)
	StreamFeature(ctx context.Context, clientID int64, feature string) (io.ReadCloser, error)
	StreamBivariate(ctx context.Context, featureA, featureB string) (io.ReadCloser, error)
	Score(ctx context.Context, clientID int64) (float64, error)
}

// Fetcher resolves artifact requests cache-first. Get derives the
// request's key, probes the store under the primary key and any
// alternates, and only on a full miss fetches from the remote service
// and writes the blob under the primary key.
//
// Concurrent Gets for the same artifact are serialized on a per-key
// lock, so each artifact is fetched at most once even under racing
// panels; both orderings of a bivariate pair share one lock. Gets for
// different artifacts proceed in parallel.
type Fetcher struct {
	deriver *Deriver
	store   *Store
	remote  RemoteClient
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFetcher wires a deriver, store, and remote client into a Fetcher.
func NewFetcher(deriver *Deriver, store *Store, remote RemoteClient, logger *slog.Logger) (*Fetcher, error) {
	if deriver == nil {
		return nil, fmt.Errorf("artifactcache: deriver is required")
	}
	if store == nil {
		return nil, fmt.Errorf("artifactcache: store is required")
	}
	if remote == nil {
		return nil, fmt.Errorf("artifactcache: remote client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		deriver: deriver,
		store:   store,
		remote:  remote,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// Get returns a handle to the artifact for request, fetching it from
// the scoring service if no cached copy exists. Validation errors
// (UnknownFeatureError, InvalidParameterError) are returned before any
// disk or network I/O.
func (f *Fetcher) Get(ctx context.Context, request Request) (Handle, error) {
	primaryKey, err := f.deriver.Key(request)
	if err != nil {
		return Handle{}, err
	}
	alternateKeys, err := f.deriver.AlternateKeys(request)
	if err != nil {
		return Handle{}, err
	}
	lockID, err := f.deriver.lockID(request)
	if err != nil {
		return Handle{}, err
	}

	lock := f.keyLock(lockID)
	lock.Lock()
	defer lock.Unlock()

	// Probe primary first, then alternates. Whichever key holds the
	// blob is served as-is; the blob is never re-keyed.
	for _, key := range append([]string{primaryKey}, alternateKeys...) {
		if !f.store.Exists(key) {
			continue
		}
		handle, err := f.store.Read(key)
		if err != nil {
			return Handle{}, err
		}
		f.logger.Debug("artifact cache hit", "request", request.String(), "key", key)
		return handle, nil
	}

	f.logger.Info("artifact cache miss, fetching", "request", request.String(), "key", primaryKey)
	stream, err := f.openStream(ctx, request)
	if err != nil {
		return Handle{}, err
	}
	defer stream.Close()

	handle, err := f.store.Write(primaryKey, stream)
	if err != nil {
		return Handle{}, err
	}
	f.logger.Info("artifact cached", "key", handle.Key, "size", handle.Size)
	return handle, nil
}

// Score returns the gauge score for a client. Scores are scalars that
// track the live model, so they bypass the cache entirely.
func (f *Fetcher) Score(ctx context.Context, clientID int64) (float64, error) {
	return f.remote.Score(ctx, clientID)
}

// openStream dispatches the request to the matching remote endpoint.
func (f *Fetcher) openStream(ctx context.Context, request Request) (io.ReadCloser, error) {
	switch r := request.(type) {
	case GlobalImpact:
		return f.remote.StreamGlobalImpact(ctx, r.MaxFeatures)
	case LocalImpact:
		return f.remote.StreamLocalImpact(ctx, r.ClientID, r.MaxFeatures)
	case SingleFeature:
		return f.remote.StreamFeature(ctx, r.ClientID, r.Feature)
	case BivariatePair:
		return f.remote.StreamBivariate(ctx, r.FeatureA, r.FeatureB)
	default:
		return nil, fmt.Errorf("artifactcache: unsupported request type %T", request)
	}
}

// keyLock returns the mutex for a lock identity, creating it on first
// use. Locks are never removed; the key space is small and bounded by
// the catalog.
func (f *Fetcher) keyLock(lockID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.locks[lockID]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[lockID] = lock
	}
	return lock
}
