package practicegen

import "strings"

// SimilarityThreshold is the word-overlap ratio above which a candidate counts as a copy.
const SimilarityThreshold = 0.7

// Similarity is the Jaccard index of the lowercased whitespace-separated words of a and b.
func Similarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	union := len(wa)
	shared := 0
	for w := range wb {
		if _, ok := wa[w]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func tooSimilar(text string, sources []Source) bool {
	for _, s := range sources {
		if Similarity(text, s.QuestionText) > SimilarityThreshold {
			return true
		}
	}
	return false
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
