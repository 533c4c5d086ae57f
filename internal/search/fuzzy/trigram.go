package fuzzy

// TrigramSimilarity returns the Jaccard similarity of the two strings'
// overlapping rune-trigram sets: |intersection| / |union|, in [0, 1].
// Identical strings score 1; strings shorter than three runes score 0.
// The scorer uses this as the final fallback against the whole normalised
// title, accepting hits above 0.3.
func TrigramSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ta := trigrams(a)
	tb := trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func trigrams(s string) map[string]struct{} {
	runes := []rune(s)
	if len(runes) < 3 {
		return nil
	}
	set := make(map[string]struct{}, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = struct{}{}
	}
	return set
}
