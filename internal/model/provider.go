package model

import "time"

// ProviderConfig is the immutable per-provider registry entry. Loaded once at
// startup and shared read-only across all concurrent lookups; only the ranker
// may consume Weight.
type ProviderConfig struct {
	Name             string        `json:"name"`
	Enabled          bool          `json:"enabled"`
	Weight           float64       `json:"weight"` // authority weight, typically 0.0–1.2
	Timeout          time.Duration `json:"timeout"`
	MinScore         float64       `json:"min_score"` // final-score floor applied by the ranker
	Authoritative    bool          `json:"authoritative"`
	BreakerThreshold int           `json:"breaker_threshold"` // consecutive empty stages before tripping
	RateLimit        float64       `json:"rate_limit"`        // requests per second against the source
}
