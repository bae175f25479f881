/*
Package analytics is the read-only observability layer over a cache engine.

Every report is computed from an engine snapshot taken under one lock
acquisition; nothing in this package mutates cache state. The reports are
shaped for two consumers: the dashboard (visual status summary with tiered
indicators) and operators (health report, JSON export, status logging).
*/
package analytics

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/tmuxdash/sessioncache/engine"
	"github.com/tmuxdash/sessioncache/types"
)

// DefaultStatusLogInterval spaces out periodic status reports.
const DefaultStatusLogInterval = 5 * time.Minute

// Analytics produces health and status reports for one engine.
type Analytics struct {
	engine *engine.Engine
	log    log.Interface

	mu            sync.Mutex
	lastStatusLog time.Time
	logInterval   time.Duration
}

// New creates an analytics layer over the given engine.
func New(e *engine.Engine, logger log.Interface) *Analytics {
	if logger == nil {
		logger = log.Log
	}
	return &Analytics{
		engine:      e,
		log:         logger,
		logInterval: DefaultStatusLogInterval,
	}
}

// BasicStats is the counter section of a health report.
type BasicStats struct {
	TotalEntries int     `json:"total_entries"`
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hit_rate"`
	MemoryKB     float64 `json:"memory_kb"`
}

// AdvancedStats describes how entries are distributed across strategies,
// tags and dependency chains.
type AdvancedStats struct {
	StrategyDistribution map[types.Strategy]int `json:"strategy_distribution"`
	TagDistribution      map[string]int         `json:"tag_distribution"`
	TotalDependencies    int                    `json:"total_dependencies"`
	ExpiredEntries       int                    `json:"expired_entries"`
	ActiveTags           int                    `json:"active_tags"`
	DependencyChains     int                    `json:"dependency_chains"`
}

// HealthIndicators classify the raw numbers into coarse states the
// dashboard can color directly.
type HealthIndicators struct {
	CacheEfficiency  string `json:"cache_efficiency"`  // good | needs_improvement
	MemoryUsage      string `json:"memory_usage"`      // normal | high
	ExpirationHealth string `json:"expiration_health"` // good | cleanup_needed
}

// HealthReport is the full cache health view.
type HealthReport struct {
	BasicStats       BasicStats       `json:"basic_stats"`
	AdvancedStats    AdvancedStats    `json:"advanced_stats"`
	HealthIndicators HealthIndicators `json:"health_indicators"`
	Timestamp        time.Time        `json:"timestamp"`
}

// Health classification thresholds.
const (
	efficiencyHitRateThreshold = 70.0
	memoryHighBytes            = 1 << 20
	expiredEntryFraction       = 0.2
)

// HealthReport builds a comprehensive health view of the cache.
func (a *Analytics) HealthReport() HealthReport {
	snap := a.engine.TakeSnapshot()

	advanced := AdvancedStats{
		StrategyDistribution: make(map[types.Strategy]int),
		TagDistribution:      make(map[string]int),
		ActiveTags:           snap.ActiveTags,
		DependencyChains:     snap.DependencyChains,
	}
	for _, ent := range snap.Entries {
		advanced.StrategyDistribution[ent.Strategy]++
		for _, tag := range ent.Tags {
			advanced.TagDistribution[tag]++
		}
		advanced.TotalDependencies += ent.DependencyCount
		if ent.Expired {
			advanced.ExpiredEntries++
		}
	}

	indicators := HealthIndicators{
		CacheEfficiency:  "needs_improvement",
		MemoryUsage:      "normal",
		ExpirationHealth: "good",
	}
	if snap.Stats.HitRate >= efficiencyHitRateThreshold {
		indicators.CacheEfficiency = "good"
	}
	if snap.Stats.MemorySizeBytes >= memoryHighBytes {
		indicators.MemoryUsage = "high"
	}
	if float64(advanced.ExpiredEntries) >= float64(snap.Stats.TotalEntries)*expiredEntryFraction &&
		advanced.ExpiredEntries > 0 {
		indicators.ExpirationHealth = "cleanup_needed"
	}

	return HealthReport{
		BasicStats: BasicStats{
			TotalEntries: snap.Stats.TotalEntries,
			Hits:         snap.Stats.Hits,
			Misses:       snap.Stats.Misses,
			HitRate:      snap.Stats.HitRate,
			MemoryKB:     float64(snap.Stats.MemorySizeBytes) / 1024,
		},
		AdvancedStats:    advanced,
		HealthIndicators: indicators,
		Timestamp:        snap.TakenAt,
	}
}

// ExportStatsJSON renders the current statistics, configuration and key set
// as an indented JSON document.
func (a *Analytics) ExportStatsJSON() (string, error) {
	stats := a.engine.Stats()
	doc := struct {
		Hits            int64    `json:"hits"`
		Misses          int64    `json:"misses"`
		Evictions       int64    `json:"evictions"`
		TotalEntries    int      `json:"total_entries"`
		MemorySizeBytes int64    `json:"memory_size_bytes"`
		HitRatePercent  float64  `json:"hit_rate_percent"`
		DefaultTTL      string   `json:"default_ttl"`
		MaxEntries      int      `json:"max_entries"`
		CacheKeys       []string `json:"cache_keys"`
	}{
		Hits:            stats.Hits,
		Misses:          stats.Misses,
		Evictions:       stats.Evictions,
		TotalEntries:    stats.TotalEntries,
		MemorySizeBytes: stats.MemorySizeBytes,
		HitRatePercent:  stats.HitRate,
		DefaultTTL:      a.engine.DefaultTTLValue().String(),
		MaxEntries:      a.engine.MaxEntries(),
		CacheKeys:       a.engine.Keys(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
