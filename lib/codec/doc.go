// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Credlens's standard CBOR encoding
// configuration.
//
// Credlens uses two serialization formats with a clear boundary:
//
//   - JSON for the scoring service's wire interface (scalar endpoints
//     such as /clients_list and /feature_lists).
//   - CBOR for local on-disk records: the artifact manifest sidecars
//     written next to cached blobs.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Same logical data always produces identical bytes, which keeps
// manifest files stable across rewrites of the same record.
package codec
