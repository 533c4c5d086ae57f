// Package handler exposes the menu search engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/vkusplato/menu-search/pkg/errors"
	"github.com/vkusplato/menu-search/pkg/logger"
	"github.com/vkusplato/menu-search/pkg/metrics"

	"github.com/vkusplato/menu-search/internal/analytics"
	"github.com/vkusplato/menu-search/internal/catalog"
	"github.com/vkusplato/menu-search/internal/search"
	"github.com/vkusplato/menu-search/internal/search/index"
	"github.com/vkusplato/menu-search/internal/search/rustext"
	"github.com/vkusplato/menu-search/internal/search/scorer"
	"github.com/vkusplato/menu-search/internal/searcher/cache"
)

// Queries shorter than this (in normalised runes) get a hint instead of a
// search.
const minQueryLenForResults = 3

// User-facing hints for queries too short to search.
const (
	hintTooShort    = "Введите хотя бы 2 символа"
	hintAlmostThere = "Введите минимум 3 символа для поиска"
)

// CatalogSource supplies the active menu items to index. *catalog.Store is
// the production implementation.
type CatalogSource interface {
	ActiveItems(ctx context.Context) ([]catalog.Record, error)
}

// Handler serves the search API.
type Handler struct {
	source     CatalogSource
	indexCache *index.Cache
	engine     *search.Engine
	results    *cache.ResultCache
	collector  *analytics.Collector
	metrics    *metrics.Metrics
	maxResults int
	minScore   float64
	logger     *slog.Logger
}

// Deps collects the handler's collaborators. Results, Collector and Metrics
// may be nil; the handler degrades gracefully without them.
type Deps struct {
	Source     CatalogSource
	IndexCache *index.Cache
	Engine     *search.Engine
	Results    *cache.ResultCache
	Collector  *analytics.Collector
	Metrics    *metrics.Metrics
	MaxResults int
	MinScore   float64
}

// New creates a Handler.
func New(deps Deps) *Handler {
	if deps.MaxResults <= 0 {
		deps.MaxResults = 10
	}
	return &Handler{
		source:     deps.Source,
		indexCache: deps.IndexCache,
		engine:     deps.Engine,
		results:    deps.Results,
		collector:  deps.Collector,
		metrics:    deps.Metrics,
		maxResults: deps.MaxResults,
		minScore:   deps.MinScore,
		logger:     logger.WithComponent("search-handler"),
	}
}

// Register attaches the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.handleSearch)
	mux.HandleFunc("GET /api/v1/cache/stats", h.handleCacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.handleCacheInvalidate)
}

type resultRow struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           float64          `json:"price"`
	DiscountPercent float64          `json:"discount_percent"`
	ImageURL        string           `json:"image_url"`
	CategoryName    string           `json:"category_name"`
	SubcategoryName string           `json:"subcategory_name"`
	Score           float64          `json:"score"`
	MatchType       scorer.MatchType `json:"match_type"`
}

type searchResponse struct {
	Results      []resultRow `json:"results"`
	Count        int         `json:"count"`
	Query        string      `json:"query"`
	AutoNavigate bool        `json:"auto_navigate"`
	Hint         string      `json:"hint,omitempty"`
	Debug        *debugInfo  `json:"debug,omitempty"`
}

type debugInfo struct {
	NormalizedQuery string       `json:"normalized_query"`
	QueryTokens     []string     `json:"query_tokens"`
	IndexFromCache  bool         `json:"index_from_cache"`
	Matches         []debugMatch `json:"matches"`
	CatalogMs       int64        `json:"catalog_ms"`
	SearchMs        int64        `json:"search_ms"`
}

type debugMatch struct {
	Name          string           `json:"name"`
	Score         float64          `json:"score"`
	MatchType     scorer.MatchType `json:"match_type"`
	MatchedTokens []string         `json:"matched_tokens"`
}

type errorResponse struct {
	Error   string      `json:"error"`
	Results []resultRow `json:"results"`
	Count   int         `json:"count"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started := time.Now()

	rawQuery := r.URL.Query().Get("q")
	limit := parseLimit(r.URL.Query().Get("limit"), h.maxResults)
	debug := r.URL.Query().Get("debug") == "true"

	normalized := rustext.Normalize(rawQuery)
	if rustext.RuneLen(normalized) < minQueryLenForResults {
		hint := hintAlmostThere
		if rustext.RuneLen(normalized) < 2 {
			hint = hintTooShort
		}
		h.countQuery("short_query")
		writeJSON(w, http.StatusOK, searchResponse{
			Results: []resultRow{},
			Query:   rawQuery,
			Hint:    hint,
		})
		return
	}

	// Debug requests bypass the result cache: their payload carries
	// per-request timings that must not be served stale.
	var (
		body     []byte
		cacheHit bool
		err      error
	)
	if debug || h.results == nil {
		body, err = h.executeSearch(ctx, rawQuery, normalized, limit, debug)
	} else {
		body, cacheHit, err = h.results.GetOrCompute(ctx, cache.Key(normalized, limit), func() ([]byte, error) {
			return h.executeSearch(ctx, rawQuery, normalized, limit, false)
		})
	}
	if err != nil {
		h.countQuery("error")
		status := apperrors.HTTPStatusCode(err)
		msg := "internal error"
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		logger.FromContext(ctx).Error("search failed", "query", rawQuery, "error", err)
		writeJSON(w, status, errorResponse{Error: msg, Results: []resultRow{}})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)

	h.observe(ctx, rawQuery, normalized, body, cacheHit, time.Since(started))
}

// executeSearch runs the full pipeline and returns the serialized response.
func (h *Handler) executeSearch(ctx context.Context, rawQuery, normalized string, limit int, debug bool) ([]byte, error) {
	catalogStart := time.Now()
	records, err := h.source.ActiveItems(ctx)
	if err != nil {
		if h.metrics != nil {
			h.metrics.CatalogFetchErrors.Inc()
		}
		return nil, apperrors.New(apperrors.ErrCatalogUnavailable, "catalog fetch failed")
	}
	catalogMs := time.Since(catalogStart).Milliseconds()

	buildStart := time.Now()
	items, fromCache := h.indexCache.Get(records, false)
	if h.metrics != nil {
		if fromCache {
			h.metrics.IndexCacheHitsTotal.Inc()
		} else {
			h.metrics.IndexCacheMissTotal.Inc()
			h.metrics.IndexBuildDuration.Observe(time.Since(buildStart).Seconds())
		}
		h.metrics.IndexedItems.Set(float64(len(items)))
	}

	searchStart := time.Now()
	res := h.engine.Search(ctx, items, rawQuery, search.Options{
		MaxResults: limit,
		MinScore:   h.minScore,
	})

	resp := searchResponse{
		Results:      make([]resultRow, 0, len(res.Matches)),
		Count:        len(res.Matches),
		Query:        rawQuery,
		AutoNavigate: res.AutoNavigate,
	}
	for _, m := range res.Matches {
		resp.Results = append(resp.Results, resultRow{
			ID:              m.Item.ID,
			Name:            m.Item.Name,
			Description:     m.Item.Description,
			Price:           m.Item.Price,
			DiscountPercent: m.Item.DiscountPercent,
			ImageURL:        m.Item.ImageURL,
			CategoryName:    m.Item.CategoryName,
			SubcategoryName: m.Item.SubcategoryName,
			Score:           m.Score,
			MatchType:       m.Type,
		})
	}

	if debug {
		di := &debugInfo{
			NormalizedQuery: res.NormalizedQuery,
			QueryTokens:     res.QueryTokens,
			IndexFromCache:  fromCache,
			CatalogMs:       catalogMs,
			SearchMs:        time.Since(searchStart).Milliseconds(),
		}
		for i, m := range res.Matches {
			if i == 3 {
				break
			}
			di.Matches = append(di.Matches, debugMatch{
				Name:          m.Item.Name,
				Score:         m.Score,
				MatchType:     m.Type,
				MatchedTokens: m.MatchedTokens,
			})
		}
		resp.Debug = di
	}

	return json.Marshal(resp)
}

// observe records metrics and publishes the analytics event. On a cache hit
// the result count and auto-navigate flag are recovered from the serialized
// body.
func (h *Handler) observe(ctx context.Context, rawQuery, normalized string, body []byte, cacheHit bool, elapsed time.Duration) {
	var summary struct {
		Count        int  `json:"count"`
		AutoNavigate bool `json:"auto_navigate"`
		Results      []struct {
			Score float64 `json:"score"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		return
	}

	if h.metrics != nil {
		outcome := "results"
		if summary.Count == 0 {
			outcome = "zero_results"
		}
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
		status := "miss"
		if cacheHit {
			status = "hit"
		}
		h.metrics.SearchLatency.WithLabelValues(status).Observe(elapsed.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(summary.Count))
		if summary.AutoNavigate {
			h.metrics.AutoNavigateTotal.Inc()
		}
	}

	var topScore float64
	if len(summary.Results) > 0 {
		topScore = summary.Results[0].Score
	}
	h.collector.Record(analytics.SearchEvent{
		RequestID:       logger.RequestID(ctx),
		Query:           rawQuery,
		NormalizedQuery: normalized,
		ResultCount:     summary.Count,
		TopScore:        topScore,
		AutoNavigate:    summary.AutoNavigate,
		CacheHit:        cacheHit,
		DurationMs:      elapsed.Milliseconds(),
		Timestamp:       time.Now().UTC(),
	})
}

func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	indexHits, indexMisses := h.indexCache.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"index_cache": map[string]int64{
			"hits":   indexHits,
			"misses": indexMisses,
		},
		"result_cache":      h.results.Stats(),
		"analytics_dropped": h.collector.Dropped(),
	})
}

func (h *Handler) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	h.indexCache.Invalidate()
	flushed, err := h.results.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("result cache flush failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache flush failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"invalidated":  true,
		"flushed_keys": flushed,
	})
}

func (h *Handler) countQuery(outcome string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func parseLimit(raw string, maxResults int) int {
	if raw == "" {
		return maxResults
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return maxResults
	}
	if n > maxResults {
		return maxResults
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
