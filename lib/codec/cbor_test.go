// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
	"time"
)

// sampleRecord mirrors the shape of an artifact manifest: strings,
// integers, a byte slice, and a timestamp.
type sampleRecord struct {
	Key       string    `cbor:"key"`
	Size      int64     `cbor:"size"`
	Hash      []byte    `cbor:"hash"`
	FetchedAt time.Time `cbor:"fetched_at"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Key:       "bivar3_11.png",
		Size:      48213,
		Hash:      []byte{0xde, 0xad, 0xbe, 0xef},
		FetchedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Key != original.Key || decoded.Size != original.Size {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if !bytes.Equal(decoded.Hash, original.Hash) {
		t.Errorf("hash mismatch: got %x, want %x", decoded.Hash, original.Hash)
	}
	if !decoded.FetchedAt.Equal(original.FetchedAt) {
		t.Errorf("timestamp mismatch: got %v, want %v", decoded.FetchedAt, original.FetchedAt)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	record := sampleRecord{
		Key:  "gfgi_20.png",
		Size: 1024,
		Hash: []byte{1, 2, 3},
	}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("deterministic encoding produced different bytes for the same record")
	}
}
