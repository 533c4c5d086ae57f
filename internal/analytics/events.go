package analytics

import "time"

// SearchEvent records one completed search for downstream analysis. It is
// published to the search-events topic keyed by the normalised query, so
// events for the same query land on one partition.
type SearchEvent struct {
	RequestID       string    `json:"request_id"`
	Query           string    `json:"query"`
	NormalizedQuery string    `json:"normalized_query"`
	ResultCount     int       `json:"result_count"`
	TopScore        float64   `json:"top_score"`
	AutoNavigate    bool      `json:"auto_navigate"`
	CacheHit        bool      `json:"cache_hit"`
	DurationMs      int64     `json:"duration_ms"`
	Timestamp       time.Time `json:"timestamp"`
}
