// Package morphology implements a deliberately conservative Russian stemmer.
// It strips a fixed, ordered set of adjective and noun endings from tokens of
// at least five runes, so that куриный/куриная/куриное/куриные all collapse
// to кури. Short tokens are never stemmed; over-stemming short words causes
// false matches. Stems broaden matching only and are never shown to users.
package morphology

import "strings"

const (
	minTokenLen = 5
	minStemLen  = 3
)

// Endings are tried in order; the first one present whose removal leaves a
// stem of at least three runes wins. Adjective endings come first — they
// dominate dish names.
var adjectiveEndings = []string{
	"ный", "ная", "ное", "ные", "нным", "нными", "нном", "нной", "нную",
}

var nounEndings = []string{
	"ов", "ами", "ах", "ей", "ям", "ях",
}

// Stem returns the stem of token, or token unchanged when it is shorter than
// five runes or no ending applies.
func Stem(token string) string {
	if runeLen(token) < minTokenLen {
		return token
	}
	if stem, ok := strip(token, adjectiveEndings); ok {
		return stem
	}
	if stem, ok := strip(token, nounEndings); ok {
		return stem
	}
	return token
}

// StemVariants returns the matching variants for a token: just {token} when
// stemming changes nothing, otherwise {token, stem}. The original form is
// always kept — stems only ever widen the candidate set.
func StemVariants(token string) []string {
	stem := Stem(token)
	if stem == token {
		return []string{token}
	}
	return []string{token, stem}
}

func strip(token string, endings []string) (string, bool) {
	for _, ending := range endings {
		if !strings.HasSuffix(token, ending) {
			continue
		}
		stem := token[:len(token)-len(ending)]
		if runeLen(stem) >= minStemLen {
			return stem, true
		}
	}
	return "", false
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
