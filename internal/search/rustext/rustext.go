// Package rustext normalises and tokenises Russian menu text for search
// indexing and query matching. Normalisation folds case, maps ё to е, maps
// Latin look-alike letters to their Cyrillic twins, and collapses separators,
// so that "Бизнес-ланч" and "бизнес ланч" (and "кофe" typed with a Latin e)
// index and match identically.
package rustext

import (
	"strings"
	"unicode"
)

// latinLookalikes maps Latin letters that render like Cyrillic ones. Applied
// only to Latin runes; Cyrillic input passes through untouched.
var latinLookalikes = map[rune]rune{
	'a': 'а',
	'e': 'е',
	'o': 'о',
	'p': 'р',
	'c': 'с',
	'x': 'х',
	'y': 'у',
	'k': 'к',
	'm': 'м',
	't': 'т',
	'b': 'в',
	'h': 'н',
}

// separators are replaced with spaces so compound names split into tokens.
var separators = map[rune]struct{}{
	'-': {}, '—': {}, '_': {}, '/': {}, '.': {}, ',': {}, ':': {}, ';': {},
	'(': {}, ')': {}, '[': {}, ']': {}, '{': {}, '}': {}, '\'': {}, '"': {},
}

// Normalize lowercases text, folds ё and Latin look-alikes, replaces
// separators with spaces, strips everything that is not a letter, digit or
// space, and collapses whitespace. Normalize is idempotent and returns ""
// for empty input.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r == 'ё':
			b.WriteRune('е')
		case r < 128:
			if mapped, ok := latinLookalikes[r]; ok {
				b.WriteRune(mapped)
				continue
			}
			if _, sep := separators[r]; sep {
				b.WriteRune(' ')
				continue
			}
			if unicode.IsSpace(r) {
				b.WriteRune(' ')
			} else if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		default:
			if _, sep := separators[r]; sep {
				b.WriteRune(' ')
				continue
			}
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
				if unicode.IsSpace(r) {
					b.WriteRune(' ')
				} else {
					b.WriteRune(r)
				}
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits already-normalised text into tokens, preserving order and
// duplicates. Tokens shorter than 2 runes are dropped unless they are
// all-digit (single-digit quantity and price fragments stay searchable).
func Tokenize(normalized string) []string {
	if normalized == "" {
		return nil
	}
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if runeLen(f) >= 2 || isDigits(f) {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// NormalizeAndTokenize is the one-step convenience used by the index builder.
func NormalizeAndTokenize(text string) []string {
	return Tokenize(Normalize(text))
}

// RuneLen returns the rune count of s. Length gates throughout the engine
// (query minimums, typo tolerance, stemming) are rune counts, never bytes —
// Cyrillic is two bytes per rune in UTF-8.
func RuneLen(s string) int {
	return runeLen(s)
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
