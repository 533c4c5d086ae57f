// Package scorer matches query tokens against indexed menu items and
// produces weighted match scores.
//
// Matching is a two-stage pipeline per query token. Stage one tries the
// token and its stem variants against title, category and description tokens
// in that priority order, accepting soft-synonym hits only while no full-
// weight exact or prefix hit exists. Stage two runs only when stage one found
// no such hit, and widens the candidate set with synonym expansions (soft
// included). Two last-resort fallbacks follow: a substring probe and — when
// the query is long enough — a trigram-similarity probe, both against the
// whole normalised title.
package scorer

import (
	"strings"

	"github.com/vkusplato/menu-search/internal/search/fuzzy"
	"github.com/vkusplato/menu-search/internal/search/index"
	"github.com/vkusplato/menu-search/internal/search/morphology"
	"github.com/vkusplato/menu-search/internal/search/rustext"
	"github.com/vkusplato/menu-search/internal/search/synonyms"
)

// Base scores per match classification.
const (
	ScoreExact       = 10.0
	ScorePrefix      = 6.0
	ScoreSubstring   = 3.0
	ScoreTypo        = 4.0
	ScoreTrigramBase = 4.0
)

// Field weights. Title hits dominate; description hits barely register.
const (
	WeightTitle       = 1.0
	WeightCategory    = 0.6
	WeightDescription = 0.3
)

const (
	// MinScore is the default inclusion threshold. A lone description-field
	// substring hit (3 × 0.3) stays well below it.
	MinScore = 6.0

	// softMultiplier discounts soft-expansion hits so that items matching
	// the literal query always outrank category-adjacent ones.
	softMultiplier = 0.3

	trigramThreshold = 0.3
)

// MatchType classifies how a token matched a target. Declaration order is
// classification priority: when an item matches through several types, the
// smallest value wins.
type MatchType int

const (
	MatchExact MatchType = iota
	MatchPrefix
	MatchSubstring
	MatchTypo
	MatchTrigram
)

func (t MatchType) String() string {
	switch t {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchSubstring:
		return "substring"
	case MatchTypo:
		return "typo"
	case MatchTrigram:
		return "trigram"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the type as its string name.
func (t MatchType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// RankPriority orders types for the ranker's tie-break: a typo hit on the
// right token beats a substring hit inside an unrelated one.
func (t MatchType) RankPriority() int {
	switch t {
	case MatchExact:
		return 0
	case MatchPrefix:
		return 1
	case MatchTypo:
		return 2
	case MatchSubstring:
		return 3
	default:
		return 4
	}
}

// Match is one scored candidate item.
type Match struct {
	Item          *index.Item
	Score         float64
	Type          MatchType
	MatchedTokens []string
}

// Scorer scores items against query tokens using a synonym dictionary.
type Scorer struct {
	dict *synonyms.Dictionary
}

// New creates a Scorer.
func New(dict *synonyms.Dictionary) *Scorer {
	return &Scorer{dict: dict}
}

// ScoreItem scores one item against all query tokens. Each token contributes
// its single best weighted score; tokens that match nothing contribute
// nothing, and an item need not match every token. The boolean is false when
// no token matched or the total stays under minScore.
func (s *Scorer) ScoreItem(item *index.Item, queryTokens []string, allowTypo, allowFuzzy bool, minScore float64) (Match, bool) {
	var total float64
	var bestType MatchType
	matchedTokens := make([]string, 0, len(queryTokens))

	for _, token := range queryTokens {
		score, typ, ok := s.scoreToken(item, token, allowTypo, allowFuzzy)
		if !ok {
			continue
		}
		total += score
		if len(matchedTokens) == 0 || typ < bestType {
			bestType = typ
		}
		matchedTokens = append(matchedTokens, token)
	}

	if len(matchedTokens) == 0 || total < minScore {
		return Match{}, false
	}
	return Match{
		Item:          item,
		Score:         total,
		Type:          bestType,
		MatchedTokens: matchedTokens,
	}, true
}

// tokenState accumulates the best match found for one query token.
type tokenState struct {
	matched       bool
	score         float64
	typ           MatchType
	exactOrPrefix bool // a full-weight exact or prefix hit exists
}

func (s *Scorer) scoreToken(item *index.Item, token string, allowTypo, allowFuzzy bool) (float64, MatchType, bool) {
	variants := morphology.StemVariants(token)

	var st tokenState
	// Stage one: the literal token and its stems.
	s.matchFields(item, variants, false, allowTypo, &st)

	// Stage two: synonym expansion, only when the literal token found no
	// full-weight exact/prefix hit. Soft-ness travels with the expansion
	// that produced the variant, so a soft expansion stays discounted even
	// when it prefix-matches a longer target.
	if !st.exactOrPrefix {
		for _, expanded := range s.dict.Expand(token) {
			if expanded == token {
				continue
			}
			isSoft := s.dict.IsSoft(token, expanded)
			s.matchFields(item, morphology.StemVariants(expanded), isSoft, allowTypo, &st)
		}
	}

	// Fallback: the token as a substring of the whole normalised title.
	if !st.matched {
		for _, v := range variants {
			if strings.Contains(item.NormalizedTitle, v) {
				st.matched = true
				st.score = ScoreSubstring * WeightTitle
				st.typ = MatchSubstring
				break
			}
		}
	}

	// Last resort: trigram similarity against the whole normalised title.
	if !st.matched && allowFuzzy {
		for _, v := range variants {
			if sim := fuzzy.TrigramSimilarity(v, item.NormalizedTitle); sim > trigramThreshold {
				st.matched = true
				st.score = sim * ScoreTrigramBase * WeightTitle
				st.typ = MatchTrigram
				break
			}
		}
	}

	return st.score, st.typ, st.matched
}

// matchFields tries every query variant against the item's fields in
// priority order, keeping the best weighted score in st. Once a full-weight
// exact/prefix hit exists, lower-priority fields are skipped.
func (s *Scorer) matchFields(item *index.Item, queryVariants []string, isSoft, allowTypo bool, st *tokenState) {
	fields := [...]struct {
		tokens []string
		weight float64
	}{
		{item.TitleTokens, WeightTitle},
		{item.CategoryTokens, WeightCategory},
		{item.DescriptionTokens, WeightDescription},
	}

	for _, qv := range queryVariants {
		for fi, field := range fields {
			if fi > 0 && st.matched && st.exactOrPrefix {
				break
			}
			for _, target := range field.tokens {
				for _, tv := range morphology.StemVariants(target) {
					score, typ, ok := matchOne(qv, tv, allowTypo)
					if !ok {
						continue
					}
					if isSoft {
						score *= softMultiplier
					}
					st.matched = true
					if weighted := score * field.weight; weighted > st.score {
						st.score = weighted
						st.typ = typ
					}
					if !isSoft && (typ == MatchExact || typ == MatchPrefix) {
						st.exactOrPrefix = true
					}
				}
			}
		}
	}
}

// matchOne classifies one query-variant/target pair and returns the base
// score.
func matchOne(queryVariant, target string, allowTypo bool) (float64, MatchType, bool) {
	switch {
	case target == queryVariant:
		return ScoreExact, MatchExact, true
	case strings.HasPrefix(target, queryVariant):
		return ScorePrefix, MatchPrefix, true
	case strings.Contains(target, queryVariant):
		return ScoreSubstring, MatchSubstring, true
	case allowTypo:
		maxDistance := typoTolerance(queryVariant)
		if maxDistance == 0 || !fuzzy.IsSimilar(queryVariant, target, maxDistance) {
			return 0, 0, false
		}
		return ScoreTypo, MatchTypo, true
	default:
		return 0, 0, false
	}
}

// typoTolerance maps the query token's rune length to the maximum edit
// distance allowed: none below four runes, one through eight, two beyond.
func typoTolerance(token string) int {
	switch n := rustext.RuneLen(token); {
	case n < 4:
		return 0
	case n <= 8:
		return 1
	default:
		return 2
	}
}
