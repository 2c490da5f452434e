// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the immutable feature metadata for a dashboard
// session: the ordered feature list, the categorical/numeric type
// partition, and the registry of valid client identifiers.
//
// A Catalog is loaded once at startup from the scoring service and is
// read-only afterward. Feature positions in the ordered list are the
// stable identity used for cache keys — display names may change case
// or locale, indices do not.
package catalog
