package match

// levenshteinSimilarity returns 1 minus the normalized edit distance,
// clamped to [0, 1]. Two empty strings are identical.
func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	dist := levenshtein(ra, rb)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}

	return 1 - float64(dist)/float64(longer)
}

// levenshtein computes the edit distance between two rune slices using
// the two-row dynamic programming form
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// diceSimilarity returns the Sorensen-Dice coefficient over token
// multisets
func diceSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	counts := make(map[string]int, len(a))
	for _, t := range a {
		counts[t]++
	}

	common := 0
	for _, t := range b {
		if counts[t] > 0 {
			counts[t]--
			common++
		}
	}

	return 2 * float64(common) / float64(len(a)+len(b))
}

// min3 returns the smallest of three ints
func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
