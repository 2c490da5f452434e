// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import "testing"

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(
		[]string{"AMT_CREDIT", "AGE", "EDUCATION", "GENDER", "EXT_SOURCE_1"},
		[]string{"EDUCATION", "GENDER"},
		[]string{"AMT_CREDIT", "AGE"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsDuplicateFeature(t *testing.T) {
	_, err := New([]string{"AGE", "AGE"}, nil, nil)
	if err == nil {
		t.Fatal("expected error for duplicate feature name")
	}
}

func TestNew_RejectsOverlappingPartition(t *testing.T) {
	_, err := New([]string{"AGE"}, []string{"AGE"}, []string{"AGE"})
	if err == nil {
		t.Fatal("expected error for feature in both type sets")
	}
}

func TestNew_RejectsTypeOutsideFeatureList(t *testing.T) {
	_, err := New([]string{"AGE"}, []string{"EDUCATION"}, nil)
	if err == nil {
		t.Fatal("expected error for categorical name missing from feature list")
	}
	_, err = New([]string{"AGE"}, nil, []string{"INCOME"})
	if err == nil {
		t.Fatal("expected error for numeric name missing from feature list")
	}
}

func TestIndex_CanonicalOrdering(t *testing.T) {
	c := newTestCatalog(t)

	position, ok := c.Index("EDUCATION")
	if !ok || position != 2 {
		t.Errorf("Index(EDUCATION) = %d, %v; want 2, true", position, ok)
	}
	if _, ok := c.Index("NOT_A_FEATURE"); ok {
		t.Error("Index should not resolve unknown names")
	}

	name, ok := c.Name(2)
	if !ok || name != "EDUCATION" {
		t.Errorf("Name(2) = %q, %v; want EDUCATION, true", name, ok)
	}
	if _, ok := c.Name(99); ok {
		t.Error("Name should reject out-of-range positions")
	}
}

func TestFeatures_ReturnsCopy(t *testing.T) {
	c := newTestCatalog(t)
	features := c.Features()
	features[0] = "MUTATED"
	if again := c.Features(); again[0] != "AMT_CREDIT" {
		t.Errorf("catalog mutated through Features() copy: %q", again[0])
	}
}

func TestClassify(t *testing.T) {
	c := newTestCatalog(t)

	cases := []struct {
		name string
		want Kind
	}{
		{"EDUCATION", KindCategorical},
		{"GENDER", KindCategorical},
		{"AGE", KindNumeric},
		{"AMT_CREDIT", KindNumeric},
		{"EXT_SOURCE_1", KindUnknown}, // in the list, in neither type set
		{"NOT_A_FEATURE", KindUnknown},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.name); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBivariateLayout(t *testing.T) {
	c := newTestCatalog(t)

	cases := []struct {
		a, b string
		want LayoutHint
	}{
		{"EDUCATION", "AGE", LayoutLarge},  // mixed
		{"AGE", "EDUCATION", LayoutLarge},  // mixed, symmetric
		{"EDUCATION", "GENDER", LayoutNormal},
		{"AGE", "AMT_CREDIT", LayoutNormal},
		{"AGE", "AGE", LayoutNormal},
		{"EXT_SOURCE_1", "AGE", LayoutNormal}, // unknown never widens
	}
	for _, tc := range cases {
		if got := c.BivariateLayout(tc.a, tc.b); got != tc.want {
			t.Errorf("BivariateLayout(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry([]int64{100001, 100005, 100038})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if !r.Contains(100005) {
		t.Error("Contains(100005) = false, want true")
	}
	if r.Contains(999999) {
		t.Error("Contains(999999) = true, want false")
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}

	ids := r.IDs()
	ids[0] = 0
	if again := r.IDs(); again[0] != 100001 {
		t.Errorf("registry mutated through IDs() copy: %d", again[0])
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry([]int64{7, 7}); err == nil {
		t.Fatal("expected error for duplicate client id")
	}
}
