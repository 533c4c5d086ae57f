// Package ranker orders scored matches deterministically and decides when a
// result set is unambiguous enough to navigate to directly.
package ranker

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vkusplato/menu-search/internal/search/rustext"
	"github.com/vkusplato/menu-search/internal/search/scorer"
)

// Auto-navigation gates. All three must hold, on a sole surviving match,
// for the client to be sent straight to the item.
const (
	AutoNavigateMinScore    = 8.0
	AutoNavigateMinQueryLen = 4
)

// DefaultMaxResults caps the ranked list when the caller gives no limit.
const DefaultMaxResults = 10

// Rank sorts matches into their final order and truncates to maxResults
// (DefaultMaxResults when maxResults <= 0). The comparator is total: score
// descending, then match-type rank priority, shorter titles, fewer title
// tokens, locale-aware name, and finally ID, so equal inputs always produce
// byte-identical output.
func Rank(matches []scorer.Match, maxResults int) []scorer.Match {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	// The collator carries mutable buffers, so build one per call rather
	// than sharing across goroutines.
	col := collate.New(language.Russian, collate.IgnoreCase)

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if pa, pb := a.Type.RankPriority(), b.Type.RankPriority(); pa != pb {
			return pa < pb
		}
		if la, lb := rustext.RuneLen(a.Item.Name), rustext.RuneLen(b.Item.Name); la != lb {
			return la < lb
		}
		if ta, tb := len(a.Item.TitleTokens), len(b.Item.TitleTokens); ta != tb {
			return ta < tb
		}
		if c := col.CompareString(strings.ToLower(a.Item.Name), strings.ToLower(b.Item.Name)); c != 0 {
			return c < 0
		}
		return a.Item.ID < b.Item.ID
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

// ShouldAutoNavigate reports whether the ranked result set is confident
// enough to skip the result list. That requires exactly one match, a query
// of at least four runes, a score of at least eight, and a match type other
// than substring: a lone substring hit usually means the user typed a
// fragment, not the item they want.
func ShouldAutoNavigate(ranked []scorer.Match, rawQuery string) bool {
	if len(ranked) != 1 {
		return false
	}
	if rustext.RuneLen(strings.TrimSpace(rawQuery)) < AutoNavigateMinQueryLen {
		return false
	}
	m := ranked[0]
	return m.Score >= AutoNavigateMinScore && m.Type != scorer.MatchSubstring
}
