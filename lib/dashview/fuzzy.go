// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package dashview

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is a scored fuzzy match. A zero Score means no match;
// Positions are the rune indices of matched characters in the text.
type FuzzyResult struct {
	Score     int
	Positions []int
}

func init() {
	algo.Init("default")
}

// NewSlab allocates the scratch memory fzf's matcher reuses across
// calls. One slab per matching loop; not safe for concurrent use.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch scores pattern against text using fzf's V2 algorithm.
// Matching is case-insensitive: both sides are lowercased before
// scoring, so typed patterns match the all-caps feature names the
// scoring service uses.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}

	loweredPattern := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(strings.ToLower(text)))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, loweredPattern, true, slab)
	if result.Score <= 0 {
		return FuzzyResult{}
	}

	match := FuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = *positions
	}
	return match
}
