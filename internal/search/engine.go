// Package search implements the menu search engine: query normalisation,
// token scoring across an item index, deterministic ranking, and the
// auto-navigation decision.
package search

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vkusplato/menu-search/pkg/logger"

	"github.com/vkusplato/menu-search/internal/search/index"
	"github.com/vkusplato/menu-search/internal/search/ranker"
	"github.com/vkusplato/menu-search/internal/search/rustext"
	"github.com/vkusplato/menu-search/internal/search/scorer"
	"github.com/vkusplato/menu-search/internal/search/synonyms"
)

// MinQueryLen is the floor on normalised query length in runes. Anything
// shorter yields an empty result without touching the index.
const MinQueryLen = 2

// Items above this count are scored in parallel shards.
const parallelThreshold = 512

// Toggle is a tri-state switch for per-query behaviour. The zero value
// defers to the engine's length-based default.
type Toggle int

const (
	ToggleAuto Toggle = iota
	ToggleOn
	ToggleOff
)

func (t Toggle) resolve(auto bool) bool {
	switch t {
	case ToggleOn:
		return true
	case ToggleOff:
		return false
	default:
		return auto
	}
}

// Options tunes a single Search call. The zero value applies engine defaults.
type Options struct {
	MaxResults int
	MinScore   float64
	AllowTypo  Toggle
	AllowFuzzy Toggle
}

// Result is the outcome of one search.
type Result struct {
	Matches         []scorer.Match
	AutoNavigate    bool
	NormalizedQuery string
	QueryTokens     []string
}

// Engine scores and ranks menu items against free-text queries. It holds no
// item state; the caller supplies the index on every call, so one Engine
// serves any number of concurrent searches.
type Engine struct {
	scorer *scorer.Scorer
	logger *slog.Logger
}

// NewEngine creates an Engine backed by the given synonym dictionary.
func NewEngine(dict *synonyms.Dictionary) *Engine {
	return &Engine{
		scorer: scorer.New(dict),
		logger: logger.WithComponent("search-engine"),
	}
}

// Search runs the full pipeline over items. Degenerate input never fails:
// a query that normalises to fewer than MinQueryLen runes, or to zero usable
// tokens, yields an empty Result. "No match" and "malformed query" are not
// distinguished at this layer.
//
// Typo and trigram matching default to on only when the normalised query has
// four or more runes, so two- and three-letter queries stay literal.
func (e *Engine) Search(ctx context.Context, items []index.Item, rawQuery string, opts Options) Result {
	normalized := rustext.Normalize(rawQuery)
	queryLen := rustext.RuneLen(normalized)
	if queryLen < MinQueryLen {
		return Result{}
	}

	tokens := rustext.Tokenize(normalized)
	res := Result{NormalizedQuery: normalized, QueryTokens: tokens}
	if len(tokens) == 0 {
		return res
	}

	fuzzyDefault := queryLen >= 4
	allowTypo := opts.AllowTypo.resolve(fuzzyDefault)
	allowFuzzy := opts.AllowFuzzy.resolve(fuzzyDefault)
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = scorer.MinScore
	}

	var matches []scorer.Match
	if len(items) > parallelThreshold {
		matches = e.scoreParallel(ctx, items, tokens, allowTypo, allowFuzzy, minScore)
	} else {
		matches = e.scoreSequential(items, tokens, allowTypo, allowFuzzy, minScore)
	}

	res.Matches = ranker.Rank(matches, opts.MaxResults)
	res.AutoNavigate = ranker.ShouldAutoNavigate(res.Matches, rawQuery)

	e.logger.DebugContext(ctx, "search complete",
		"query", normalized,
		"tokens", len(tokens),
		"candidates", len(matches),
		"results", len(res.Matches),
		"auto_navigate", res.AutoNavigate)
	return res
}

func (e *Engine) scoreSequential(items []index.Item, tokens []string, allowTypo, allowFuzzy bool, minScore float64) []scorer.Match {
	matches := make([]scorer.Match, 0, len(items)/4+1)
	for i := range items {
		if m, ok := e.scorer.ScoreItem(&items[i], tokens, allowTypo, allowFuzzy, minScore); ok {
			matches = append(matches, m)
		}
	}
	return matches
}

// scoreParallel shards the index across workers and concatenates the shard
// results in shard order, so the output matches scoreSequential exactly.
func (e *Engine) scoreParallel(ctx context.Context, items []index.Item, tokens []string, allowTypo, allowFuzzy bool, minScore float64) []scorer.Match {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(items) {
		workers = len(items)
	}
	shardSize := (len(items) + workers - 1) / workers
	shards := make([][]scorer.Match, workers)

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * shardSize
		hi := min(lo+shardSize, len(items))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			shards[w] = e.scoreSequential(items[lo:hi], tokens, allowTypo, allowFuzzy, minScore)
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()

	var matches []scorer.Match
	for _, shard := range shards {
		matches = append(matches, shard...)
	}
	return matches
}
