// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// Handle locates a stored artifact. The Path is readable directly by
// the caller (the dashboard hands it to its renderer).
type Handle struct {
	// Key is the cache key the artifact is stored under.
	Key string

	// Path is the blob's filesystem path.
	Path string

	// Size is the blob's byte length.
	Size int64

	// FromCache is true when the handle was served from the store
	// without a remote fetch.
	FromCache bool
}

// Store is a flat directory of artifact blobs keyed by filename, with
// a CBOR manifest sidecar per blob recording size, BLAKE3 content
// hash, and fetch time.
//
// Writes are atomic: the stream lands in a temp file in the same
// directory and is promoted to the final name with a rename. An
// interrupted write leaves nothing at the key's path. Writes to the
// same key are idempotent last-writer-wins; the store never evicts.
//
// Blobs without a manifest are legacy entries from deployments that
// predate the sidecar; they are served without verification. A
// manifest whose hash does not match its blob is corruption and
// surfaces as an IntegrityError, not a miss.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates the scratch directory if absent and returns a Store
// rooted there.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("artifactcache: store root is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch directory %s: %w", root, err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Root returns the scratch directory path.
func (s *Store) Root() string {
	return s.root
}

// Exists reports whether a blob is stored under key.
func (s *Store) Exists(key string) bool {
	if err := validKey(key); err != nil {
		return false
	}
	info, err := os.Stat(s.blobPath(key))
	return err == nil && !info.IsDir()
}

// Read returns a handle to the blob stored under key. Returns
// ErrNotFound if the blob is absent. When a manifest sidecar exists,
// the blob's BLAKE3 hash is verified against it; a mismatch returns an
// IntegrityError.
func (s *Store) Read(key string) (Handle, error) {
	if err := validKey(key); err != nil {
		return Handle{}, err
	}

	path := s.blobPath(key)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Handle{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Handle{}, fmt.Errorf("reading artifact %s: %w", key, err)
	}

	record, err := s.readManifest(key)
	if err != nil {
		return Handle{}, err
	}
	if record != nil {
		if err := s.verify(key, path, record); err != nil {
			return Handle{}, err
		}
	}

	return Handle{Key: key, Path: path, Size: info.Size(), FromCache: true}, nil
}

// Write drains stream into the store under key and returns a handle to
// the promoted blob. The blob appears at its final path only after the
// stream is fully read; a read error discards the partial temp file
// and leaves any previous blob for the key untouched.
func (s *Store) Write(key string, stream io.Reader) (Handle, error) {
	if err := validKey(key); err != nil {
		return Handle{}, err
	}

	tmpFile, err := os.CreateTemp(s.root, "fetch-*.tmp")
	if err != nil {
		return Handle{}, fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	// Hash while copying so the manifest never needs a second read.
	hasher := blake3.New()
	size, err := io.Copy(io.MultiWriter(tmpFile, hasher), stream)
	if err != nil {
		tmpFile.Close()
		return Handle{}, fmt.Errorf("draining artifact stream for %s: %w", key, err)
	}
	if err := tmpFile.Close(); err != nil {
		return Handle{}, fmt.Errorf("closing temp file for %s: %w", key, err)
	}

	finalPath := s.blobPath(key)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return Handle{}, fmt.Errorf("promoting artifact %s: %w", key, err)
	}
	success = true

	record := manifest{
		Key:       key,
		Size:      size,
		BLAKE3:    hasher.Sum(nil),
		FetchedAt: time.Now().UTC(),
	}
	if err := s.writeManifest(record); err != nil {
		// The blob itself is complete and readable; a missing
		// manifest downgrades it to a legacy entry.
		s.logger.Error("manifest write failed", "key", key, "error", err)
	}

	return Handle{Key: key, Path: finalPath, Size: size}, nil
}

// verify recomputes the blob's hash and compares it to the manifest.
func (s *Store) verify(key, path string, record *manifest) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening artifact %s: %w", key, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return fmt.Errorf("hashing artifact %s: %w", key, err)
	}
	if !bytes.Equal(hasher.Sum(nil), record.BLAKE3) {
		return &IntegrityError{Key: key, Path: path}
	}
	return nil
}

func (s *Store) blobPath(key string) string {
	return filepath.Join(s.root, key)
}

// validKey rejects keys that would escape the scratch directory. Keys
// come from the Deriver's fixed formats, so a violation is a
// programming error.
func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("artifactcache: invalid key %q", key)
	}
	return nil
}
