// Package cluster decides whether an incoming snapshot belongs to an
// existing event or starts a new one.
package cluster

import "strings"

// Similarity computes Dice-Sorensen bigram similarity between two titles:
// lowercase, strip non-alphanumerics, split on whitespace, and compare the
// multisets of 2-character intra-word bigrams. Symmetric; 1 for identical
// non-empty input; 0 when either title has no bigrams.
func Similarity(a, b string) float64 {
	bigramsA := titleBigrams(a)
	bigramsB := titleBigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}

	overlap := 0
	remaining := make(map[string]int, len(bigramsB))
	for _, bg := range bigramsB {
		remaining[bg]++
	}
	for _, bg := range bigramsA {
		if remaining[bg] > 0 {
			remaining[bg]--
			overlap++
		}
	}

	return 2 * float64(overlap) / float64(len(bigramsA)+len(bigramsB))
}

func titleBigrams(title string) []string {
	normalized := strings.ToLower(title)
	var b strings.Builder
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}

	var bigrams []string
	for _, word := range strings.Fields(b.String()) {
		runes := []rune(word)
		for i := 0; i+1 < len(runes); i++ {
			bigrams = append(bigrams, string(runes[i:i+2]))
		}
	}
	return bigrams
}
