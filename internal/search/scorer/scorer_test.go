package scorer

import (
	"testing"

	"github.com/vkusplato/menu-search/internal/catalog"
	"github.com/vkusplato/menu-search/internal/search/index"
	"github.com/vkusplato/menu-search/internal/search/synonyms"
)

func buildItem(t *testing.T, id int64, name, description, category string) *index.Item {
	t.Helper()
	items := index.Build([]catalog.Record{{
		ID:           id,
		Name:         name,
		Description:  description,
		CategoryName: category,
	}})
	return &items[0]
}

func newScorer() *Scorer {
	return New(synonyms.Default())
}

func TestExactTitleMatch(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Капучино", "", "Кофе")

	m, ok := s.ScoreItem(item, []string{"капучино"}, true, true, MinScore)
	if !ok {
		t.Fatal("exact title match not found")
	}
	if m.Score < ScoreExact {
		t.Errorf("score = %f, want >= %f", m.Score, ScoreExact)
	}
	if m.Type != MatchExact {
		t.Errorf("type = %v, want exact", m.Type)
	}
}

func TestPrefixBeatsSubstring(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Пицца Маргарита", "", "")

	prefix, ok := s.ScoreItem(item, []string{"пиц"}, false, false, 1)
	if !ok {
		t.Fatal("prefix match not found")
	}
	if prefix.Type != MatchPrefix {
		t.Errorf("type = %v, want prefix", prefix.Type)
	}

	sub, ok := s.ScoreItem(item, []string{"аргарит"}, false, false, 1)
	if !ok {
		t.Fatal("substring match not found")
	}
	if sub.Type != MatchSubstring {
		t.Errorf("type = %v, want substring", sub.Type)
	}
	if prefix.Score <= sub.Score {
		t.Errorf("prefix score %f must beat substring score %f", prefix.Score, sub.Score)
	}
}

func TestFieldWeights(t *testing.T) {
	s := newScorer()

	inTitle := buildItem(t, 1, "Борщ", "", "")
	inCategory := buildItem(t, 2, "Суп дня", "", "Борщ")
	inDescription := buildItem(t, 3, "Обед", "борщ со сметаной", "")

	title, _ := s.ScoreItem(inTitle, []string{"борщ"}, false, false, 1)
	category, _ := s.ScoreItem(inCategory, []string{"борщ"}, false, false, 1)
	description, _ := s.ScoreItem(inDescription, []string{"борщ"}, false, false, 1)

	if title.Score != ScoreExact*WeightTitle {
		t.Errorf("title score = %f, want %f", title.Score, ScoreExact*WeightTitle)
	}
	if category.Score != ScoreExact*WeightCategory {
		t.Errorf("category score = %f, want %f", category.Score, ScoreExact*WeightCategory)
	}
	if description.Score != ScoreExact*WeightDescription {
		t.Errorf("description score = %f, want %f", description.Score, ScoreExact*WeightDescription)
	}
}

func TestTypoMatch(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Бизнес-ланч", "", "")

	// "бизес" is one edit from "бизнес"; token length 5 allows distance 1.
	m, ok := s.ScoreItem(item, []string{"бизес"}, true, false, 1)
	if !ok {
		t.Fatal("typo match not found")
	}
	if m.Type != MatchTypo {
		t.Errorf("type = %v, want typo", m.Type)
	}
	if m.Score != ScoreTypo*WeightTitle {
		t.Errorf("score = %f, want %f", m.Score, ScoreTypo*WeightTitle)
	}
}

func TestTypoDisabledBelowFourRunes(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Суп", "", "")

	// "суб" is one edit from "суп", but three-rune tokens get no typo
	// tolerance at all.
	if _, ok := s.ScoreItem(item, []string{"суб"}, true, false, 1); ok {
		t.Error("three-rune token matched via typo")
	}
}

func TestTypoToleranceBoundary(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		{"суп", 0},
		{"ланч", 1},
		{"пиццерия", 1},    // 8 runes
		{"вегетарианс", 2}, // 11 runes
	}
	for _, tt := range tests {
		if got := typoTolerance(tt.token); got != tt.want {
			t.Errorf("typoTolerance(%q) = %d, want %d", tt.token, got, tt.want)
		}
	}
}

func TestStemVariantMatching(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Куриный суп", "", "")

	// "куриная" and "куриный" share a stem, so the query matches the title
	// token exactly at stem level.
	m, ok := s.ScoreItem(item, []string{"куриная"}, false, false, 1)
	if !ok {
		t.Fatal("stem variant match not found")
	}
	if m.Type != MatchExact {
		t.Errorf("type = %v, want exact (via shared stem)", m.Type)
	}
}

func TestTrueSynonymFullWeight(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Шаурма классическая", "", "")

	m, ok := s.ScoreItem(item, []string{"шаверма"}, false, false, 1)
	if !ok {
		t.Fatal("true synonym match not found")
	}
	if m.Score != ScoreExact*WeightTitle {
		t.Errorf("score = %f, want full weight %f", m.Score, ScoreExact*WeightTitle)
	}
}

func TestSoftExpansionReducedWeight(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Кофе американо", "", "")

	m, ok := s.ScoreItem(item, []string{"капучино"}, false, false, 1)
	if !ok {
		t.Fatal("soft expansion match not found")
	}
	if want := ScoreExact * softMultiplier * WeightTitle; m.Score != want {
		t.Errorf("score = %f, want discounted %f", m.Score, want)
	}
	if m.Score >= ScoreExact {
		t.Errorf("soft expansion score %f must stay below an exact hit", m.Score)
	}
}

func TestSoftExpansionDeferredWhenLiteralHits(t *testing.T) {
	s := newScorer()
	// The item title carries both the literal token and the soft target.
	item := buildItem(t, 1, "Капучино кофе", "", "")

	m, ok := s.ScoreItem(item, []string{"капучино"}, false, false, 1)
	if !ok {
		t.Fatal("match not found")
	}
	// The literal exact hit wins; the soft expansion never runs.
	if m.Score != ScoreExact*WeightTitle {
		t.Errorf("score = %f, want literal exact %f", m.Score, ScoreExact*WeightTitle)
	}
}

func TestSubstringMatch(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Бизнес-ланч", "", "")

	// A mid-word fragment that is not a prefix.
	m, ok := s.ScoreItem(item, []string{"изнес"}, false, false, 1)
	if !ok {
		t.Fatal("substring fallback not found")
	}
	if m.Type != MatchSubstring {
		t.Errorf("type = %v, want substring", m.Type)
	}
}

func TestTrigramFallback(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Пиццерия", "", "")

	// Too far for distance-1 typo matching, close enough for trigrams.
	m, ok := s.ScoreItem(item, []string{"пиццерияя"}, false, true, 1)
	if !ok {
		t.Fatal("trigram fallback not found")
	}
	if m.Type != MatchTrigram {
		t.Errorf("type = %v, want trigram", m.Type)
	}
}

func TestMinScoreThreshold(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Обед", "борщ со сметаной", "")

	// A lone description exact hit scores 10 × 0.3 = 3, under the default
	// threshold of 6.
	if _, ok := s.ScoreItem(item, []string{"борщ"}, false, false, MinScore); ok {
		t.Error("description-only hit passed the minimum score threshold")
	}
}

func TestMultiTokenAccumulation(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Бизнес-ланч", "", "")

	m, ok := s.ScoreItem(item, []string{"бизнес", "ланч"}, false, false, MinScore)
	if !ok {
		t.Fatal("two-token match not found")
	}
	if want := 2 * ScoreExact * WeightTitle; m.Score != want {
		t.Errorf("score = %f, want %f", m.Score, want)
	}
	if len(m.MatchedTokens) != 2 {
		t.Errorf("matched tokens = %v, want both", m.MatchedTokens)
	}
}

func TestUnmatchedTokenIgnored(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Бизнес-ланч", "", "")

	m, ok := s.ScoreItem(item, []string{"бизнес", "вертолет"}, false, false, MinScore)
	if !ok {
		t.Fatal("partial match not found")
	}
	if len(m.MatchedTokens) != 1 || m.MatchedTokens[0] != "бизнес" {
		t.Errorf("matched tokens = %v, want only бизнес", m.MatchedTokens)
	}
}

func TestNoTokensMatch(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Пицца", "", "")

	if _, ok := s.ScoreItem(item, []string{"вертолет"}, true, true, MinScore); ok {
		t.Error("unrelated query matched")
	}
}

func TestBestTypeClassification(t *testing.T) {
	s := newScorer()
	item := buildItem(t, 1, "Бизнес-ланч", "", "")

	// One exact token and one typo token: the item's type is the better one.
	m, ok := s.ScoreItem(item, []string{"ланч", "бизес"}, true, false, 1)
	if !ok {
		t.Fatal("match not found")
	}
	if m.Type != MatchExact {
		t.Errorf("type = %v, want exact (best per-token type)", m.Type)
	}
}

func TestMatchTypeStrings(t *testing.T) {
	tests := []struct {
		typ  MatchType
		want string
	}{
		{MatchExact, "exact"},
		{MatchPrefix, "prefix"},
		{MatchSubstring, "substring"},
		{MatchTypo, "typo"},
		{MatchTrigram, "trigram"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("MatchType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestRankPriorityOrdersTypoBeforeSubstring(t *testing.T) {
	if MatchTypo.RankPriority() >= MatchSubstring.RankPriority() {
		t.Error("typo must rank ahead of substring")
	}
	if MatchExact.RankPriority() != 0 {
		t.Error("exact must rank first")
	}
}
