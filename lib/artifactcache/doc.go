// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifactcache is the artifact-caching retrieval layer
// between the dashboard and the scoring service.
//
// A visualization request (global impact, local impact, single
// feature, bivariate pair) maps deterministically to a cache key; the
// key names a blob in a scratch directory on local disk. Fetcher.Get
// probes the store before touching the network and fetches each
// distinct artifact at most once across the lifetime of the store,
// including across process restarts.
//
// Key strings preserve the scratch-directory naming of earlier
// deployments so an existing cache directory stays readable. Bivariate
// analysis is symmetric in meaning, so lookups for a pair probe both
// key orders before fetching; whichever key is found is served without
// re-keying.
//
// The gauge score is a scalar that may change as the model evolves; it
// is never cached and is exposed as Fetcher.Score rather than as a
// cacheable request.
package artifactcache
