// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - Command suggestion for typo correction.
package cli

import (
	"strings"
)

// SuggestCommand returns the console command closest to input, or "" when
// nothing is close enough. Uses Levenshtein distance with a threshold based
// on input length.
func SuggestCommand(input string) string {
	input = strings.ToLower(input)

	// very short inputs are likely intentional
	if len(input) < 2 {
		return ""
	}

	// <=3 chars: 1 edit, 4-8 chars: 2 edits ("puase" -> "pause"), longer: 3
	maxDistance := 1
	if len(input) >= 4 {
		maxDistance = 2
	}
	if len(input) > 8 {
		maxDistance = 3
	}

	bestMatch := ""
	bestDistance := -1

	for _, name := range commandNames() {
		distance := levenshteinDistance(input, name)
		if distance == 0 {
			return ""
		}
		if distance <= maxDistance && (bestDistance == -1 || distance < bestDistance) {
			bestDistance = distance
			bestMatch = name
		}
	}

	return bestMatch
}

// levenshteinDistance is the minimum number of single-character insertions,
// deletions or substitutions turning s1 into s2.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	cols := len(s2) + 1

	// two rows instead of the full matrix
	prev := make([]int, cols)
	curr := make([]int, cols)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j < cols; j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[cols-1]
}
