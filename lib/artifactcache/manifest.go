// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import (
	"fmt"
	"os"
	"time"

	"github.com/credlens/credlens/lib/codec"
)

// manifest is the CBOR sidecar written next to each blob. It records
// what a completed fetch produced, so later reads can distinguish a
// damaged blob from a missing one.
type manifest struct {
	Key       string    `cbor:"key"`
	Size      int64     `cbor:"size"`
	BLAKE3    []byte    `cbor:"blake3"`
	FetchedAt time.Time `cbor:"fetched_at"`
}

// manifestSuffix is appended to the blob key to form the sidecar
// filename.
const manifestSuffix = ".manifest"

// readManifest returns the manifest for key, or nil if the sidecar
// does not exist (a legacy blob).
func (s *Store) readManifest(key string) (*manifest, error) {
	data, err := os.ReadFile(s.blobPath(key) + manifestSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manifest for %s: %w", key, err)
	}

	var record manifest
	if err := codec.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding manifest for %s: %w", key, err)
	}
	return &record, nil
}

// writeManifest atomically writes the sidecar via temp file + rename.
func (s *Store) writeManifest(record manifest) error {
	data, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding manifest for %s: %w", record.Key, err)
	}

	tmpFile, err := os.CreateTemp(s.root, "manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest for %s: %w", record.Key, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing manifest for %s: %w", record.Key, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp manifest for %s: %w", record.Key, err)
	}

	if err := os.Rename(tmpPath, s.blobPath(record.Key)+manifestSuffix); err != nil {
		return fmt.Errorf("promoting manifest for %s: %w", record.Key, err)
	}
	success = true
	return nil
}
