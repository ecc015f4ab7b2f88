package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot of runtime counters,
// exposed for operational dashboards alongside the Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	ValidationsTotal         uint64    `json:"validationsTotal"`
	ValidationsRejected      uint64    `json:"validationsRejected"`
	CommitsTotal             uint64    `json:"commitsTotal"`
	GenerationsTotal         uint64    `json:"generationsTotal"`
	UnresolvedSlotsTotal     uint64    `json:"unresolvedSlotsTotal"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
