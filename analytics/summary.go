package analytics

import (
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// PerformanceIndicator tiers the hit rate for the dashboard.
type PerformanceIndicator struct {
	Symbol  string  `json:"symbol"`
	Text    string  `json:"text"`
	HitRate float64 `json:"hit_rate"`
	Level   string  `json:"level"` // excellent | good | fair | poor
}

// CapacityIndicator tiers how full the cache is.
type CapacityIndicator struct {
	Symbol       string  `json:"symbol"`
	Text         string  `json:"text"`
	UsagePercent float64 `json:"usage_percent"`
	Entries      string  `json:"entries"` // "used/max"
}

// MemoryIndicator reports the estimated footprint.
type MemoryIndicator struct {
	SizeKB        float64 `json:"size_kb"`
	SizeMB        float64 `json:"size_mb"`
	SizeHuman     string  `json:"size_human"`
	AvgEntryBytes float64 `json:"avg_entry_bytes"`
}

// ActivityIndicator reports raw request traffic.
type ActivityIndicator struct {
	TotalRequests   int64   `json:"total_requests"`
	Hits            int64   `json:"hits"`
	Misses          int64   `json:"misses"`
	Evictions       int64   `json:"evictions"`
	EfficiencyRatio string  `json:"efficiency_ratio"` // "hits/requests"
	EvictionRate    float64 `json:"eviction_rate"`
}

// FreshnessIndicator compares the oldest entry against the configured TTL.
type FreshnessIndicator struct {
	Percent   float64       `json:"percent"`
	OldestAge time.Duration `json:"oldest_age"`
	TTL       time.Duration `json:"ttl"`
}

// VisualSummary is the dashboard-ready status block.
type VisualSummary struct {
	Performance         PerformanceIndicator `json:"performance"`
	Capacity            CapacityIndicator    `json:"capacity"`
	Memory              MemoryIndicator      `json:"memory"`
	Activity            ActivityIndicator    `json:"activity"`
	Freshness           FreshnessIndicator   `json:"freshness"`
	LastUpdate          time.Time            `json:"last_update"`
	LastUpdateFormatted string               `json:"last_update_formatted"`
}

/*
VisualSummary builds the tiered status block the dashboard renders directly.

Tier boundaries:

	performance  hit rate >=80 excellent, >=60 good, >=40 fair, else poor
	capacity     usage    <70% normal,   <90% high usage,  else near full
*/
func (a *Analytics) VisualSummary() VisualSummary {
	snap := a.engine.TakeSnapshot()
	stats := snap.Stats

	perf := PerformanceIndicator{HitRate: stats.HitRate}
	switch {
	case stats.HitRate >= 80:
		perf.Symbol, perf.Text, perf.Level = "🟢", "Excellent", "excellent"
	case stats.HitRate >= 60:
		perf.Symbol, perf.Text, perf.Level = "🟡", "Good", "good"
	case stats.HitRate >= 40:
		perf.Symbol, perf.Text, perf.Level = "🟠", "Fair", "fair"
	default:
		perf.Symbol, perf.Text, perf.Level = "🔴", "Poor", "poor"
	}

	var usage float64
	if snap.MaxEntries > 0 {
		usage = float64(stats.TotalEntries) / float64(snap.MaxEntries) * 100
	}
	capacity := CapacityIndicator{
		UsagePercent: usage,
		Entries:      fmt.Sprintf("%d/%d", stats.TotalEntries, snap.MaxEntries),
	}
	switch {
	case usage >= 90:
		capacity.Symbol, capacity.Text = "🔴", "Near Full"
	case usage >= 70:
		capacity.Symbol, capacity.Text = "🟡", "High Usage"
	default:
		capacity.Symbol, capacity.Text = "🟢", "Normal"
	}

	memory := MemoryIndicator{
		SizeKB:    float64(stats.MemorySizeBytes) / 1024,
		SizeMB:    float64(stats.MemorySizeBytes) / (1024 * 1024),
		SizeHuman: humanize.IBytes(uint64(stats.MemorySizeBytes)),
	}
	if stats.TotalEntries > 0 {
		memory.AvgEntryBytes = float64(stats.MemorySizeBytes) / float64(stats.TotalEntries)
	}

	requests := stats.Hits + stats.Misses
	activity := ActivityIndicator{
		TotalRequests:   requests,
		Hits:            stats.Hits,
		Misses:          stats.Misses,
		Evictions:       stats.Evictions,
		EfficiencyRatio: fmt.Sprintf("%d/%d", stats.Hits, requests),
	}
	if stats.TotalEntries > 0 {
		activity.EvictionRate = float64(stats.Evictions) / float64(stats.TotalEntries)
	} else {
		activity.EvictionRate = float64(stats.Evictions)
	}

	var oldest time.Duration
	for _, ent := range snap.Entries {
		if ent.Age > oldest {
			oldest = ent.Age
		}
	}
	freshness := FreshnessIndicator{
		OldestAge: oldest,
		TTL:       snap.DefaultTTL,
		Percent:   100,
	}
	if snap.DefaultTTL > 0 {
		pct := (snap.DefaultTTL - oldest).Seconds() / snap.DefaultTTL.Seconds() * 100
		if pct < 0 {
			pct = 0
		}
		freshness.Percent = pct
	}

	return VisualSummary{
		Performance:         perf,
		Capacity:            capacity,
		Memory:              memory,
		Activity:            activity,
		Freshness:           freshness,
		LastUpdate:          snap.TakenAt,
		LastUpdateFormatted: snap.TakenAt.Format("15:04:05"),
	}
}

// LogStatus writes a comprehensive status report to the logger, tagged with
// the operation that triggered it.
func (a *Analytics) LogStatus(operation string) {
	snap := a.engine.TakeSnapshot()
	stats := snap.Stats

	var oldest, newest, total time.Duration
	for i, ent := range snap.Entries {
		if i == 0 || ent.Age > oldest {
			oldest = ent.Age
		}
		if i == 0 || ent.Age < newest {
			newest = ent.Age
		}
		total += ent.Age
	}
	var avg time.Duration
	if len(snap.Entries) > 0 {
		avg = total / time.Duration(len(snap.Entries))
	}

	level := "POOR"
	switch {
	case stats.HitRate >= 80:
		level = "EXCELLENT"
	case stats.HitRate >= 60:
		level = "GOOD"
	case stats.HitRate >= 40:
		level = "FAIR"
	}

	a.log.WithFields(log.Fields{
		"operation":     operation,
		"performance":   level,
		"hit_rate":      fmt.Sprintf("%.1f%%", stats.HitRate),
		"hits":          stats.Hits,
		"misses":        stats.Misses,
		"evictions":     stats.Evictions,
		"entries":       fmt.Sprintf("%d/%d", stats.TotalEntries, snap.MaxEntries),
		"memory":        humanize.IBytes(uint64(stats.MemorySizeBytes)),
		"age_newest":    newest.String(),
		"age_oldest":    oldest.String(),
		"age_avg":       avg.String(),
		"default_ttl":   snap.DefaultTTL.String(),
		"since_cleanup": snap.SinceCleanup.String(),
	}).Info("cache status report")
}

// LogPeriodicStatus logs a status report at most once per interval, unless
// forced. Call it from hot paths freely; it is cheap when gated.
func (a *Analytics) LogPeriodicStatus(force bool) {
	a.mu.Lock()
	now := time.Now()
	if !force && now.Sub(a.lastStatusLog) < a.logInterval {
		a.mu.Unlock()
		return
	}
	a.lastStatusLog = now
	a.mu.Unlock()

	a.LogStatus("periodic_report")
}
