// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

// Package scoring is the typed HTTP client for the remote scoring and
// explanation service.
//
// The service exposes two kinds of endpoints: scalar JSON endpoints
// (client id list, feature lists, feature selection, score) and binary
// stream endpoints returning pre-rendered visualization images (global
// impact, local impact, single feature, bivariate analysis).
//
// The client performs no caching and no retries. Callers that want
// artifact caching wrap the stream endpoints with
// lib/artifactcache.Fetcher; failures surface unmodified as the
// package's error types (APIError for non-2xx responses, timeout and
// unreachable transport failures classified by IsTimeout and
// IsUnreachable).
package scoring
