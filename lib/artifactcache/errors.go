// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Read when no blob exists for the
// key. Fetcher callers never see it — a read miss inside Get falls
// through to a remote fetch — so reaching a caller indicates a
// programming error (reading without probing).
var ErrNotFound = errors.New("artifactcache: artifact not found")

// UnknownFeatureError is returned when a request names a feature that
// is not in the session's feature catalog. Raised before any network
// or disk I/O.
type UnknownFeatureError struct {
	// Name is the unrecognized feature name.
	Name string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("artifactcache: unknown feature %q", e.Name)
}

// InvalidParameterError is returned when a request's parameters fail
// validation (feature count outside the configured bounds, identical
// features in a bivariate pair). Raised before any network or disk
// I/O.
type InvalidParameterError struct {
	// Parameter is the offending parameter name.
	Parameter string

	// Reason describes the violation.
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("artifactcache: invalid %s: %s", e.Parameter, e.Reason)
}

// IntegrityError is returned when a cached blob's content no longer
// matches the hash recorded in its manifest. Distinct from a miss: the
// artifact was fully written once and has since been altered or
// damaged, so silently refetching would mask local corruption.
type IntegrityError struct {
	// Key is the cache key of the damaged artifact.
	Key string

	// Path is the blob's filesystem path.
	Path string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("artifactcache: cached artifact %s at %s fails integrity check", e.Key, e.Path)
}

// IsUnknownFeature reports whether err is an UnknownFeatureError.
func IsUnknownFeature(err error) bool {
	var unknownFeature *UnknownFeatureError
	return errors.As(err, &unknownFeature)
}

// IsInvalidParameter reports whether err is an InvalidParameterError.
func IsInvalidParameter(err error) bool {
	var invalidParameter *InvalidParameterError
	return errors.As(err, &invalidParameter)
}
