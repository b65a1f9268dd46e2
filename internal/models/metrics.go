package models

import "time"

// SystemMetrics is a lightweight summary of the instrumentation counters.
type SystemMetrics struct {
	RequestsTotal              uint64    `json:"requests_total"`
	AverageRequestDurationMs   float64   `json:"average_request_duration_ms"`
	StoreCallCount             uint64    `json:"store_call_count"`
	AverageStoreCallDurationMs float64   `json:"average_store_call_duration_ms"`
	CacheHitRatio              float64   `json:"cache_hit_ratio"`
	CacheHits                  uint64    `json:"cache_hits"`
	CacheMisses                uint64    `json:"cache_misses"`
	SessionsUpdated            uint64    `json:"sessions_updated"`
	SessionsSkipped            uint64    `json:"sessions_skipped"`
	DateResolutionFailures     uint64    `json:"date_resolution_failures"`
	Goroutines                 int       `json:"goroutines"`
	GeneratedAt                time.Time `json:"generated_at"`
}
