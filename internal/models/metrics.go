package models

import "time"

// SystemMetrics is a point-in-time summary of the service's instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64          `json:"cache_hit_ratio"`
	CacheHits                uint64           `json:"cache_hits"`
	CacheMisses              uint64           `json:"cache_misses"`
	RequestsTotal            uint64           `json:"requests_total"`
	AverageRequestDurationMs float64          `json:"average_request_duration_ms"`
	ExtensionOutcomes        map[string]int64 `json:"extension_outcomes"`
	JobsProcessed            uint64           `json:"jobs_processed"`
	JobsFailed               uint64           `json:"jobs_failed"`
	Goroutines               int              `json:"goroutines"`
	GeneratedAt              time.Time        `json:"generated_at"`
}
