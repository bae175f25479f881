package main

import (
	"fmt"
	"time"

	sessioncache "github.com/tmuxdash/sessioncache"
	"github.com/tmuxdash/sessioncache/types"
)

// SessionInfo is what the dashboard tracks per multiplexer session.
type SessionInfo struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Windows int    `json:"windows"`
}

// sessionChanged is the change detector the dashboard uses: only a status
// or window-count change is worth re-broadcasting.
func sessionChanged(oldValue, newValue any) bool {
	prev, ok1 := oldValue.(SessionInfo)
	next, ok2 := newValue.(SessionInfo)
	if !ok1 || !ok2 {
		return true
	}
	return prev.Status != next.Status || prev.Windows != next.Windows
}

func main() {
	cache := sessioncache.New(5*time.Second, 100)

	// ============ SESSION ENUMERATION (cache-aside) ============

	enumerations := 0
	enumerate := func() (any, error) {
		enumerations++
		fmt.Println("ENUM   → enumerating multiplexer sessions")
		return []string{"work", "scratch", "deploy"}, nil
	}

	for i := 0; i < 3; i++ {
		sessions, _ := cache.GetOrCompute(types.KeySessionList, enumerate, 2*time.Second)
		fmt.Printf("POLL %d → sessions: %v\n", i+1, sessions)
	}
	fmt.Printf("enumerator ran %d time(s) for 3 polls\n\n", enumerations)

	// ============ PER-SESSION CONTENT-CHANGE GATING ============

	work := SessionInfo{Name: "work", Status: "active", Windows: 3}
	stored := cache.PutWithOptions("session_work", work,
		sessioncache.WithStrategy(types.ContentChange),
		sessioncache.WithTags(types.TagSessionData),
		sessioncache.WithChangeDetector(sessionChanged),
	)
	fmt.Println("first put stored:", stored)

	// Same status and window count: the write is suppressed.
	stored = cache.PutWithOptions("session_work", work,
		sessioncache.WithStrategy(types.ContentChange),
		sessioncache.WithChangeDetector(sessionChanged),
	)
	fmt.Println("unchanged put stored:", stored)

	work.Windows = 4
	stored = cache.PutWithOptions("session_work", work,
		sessioncache.WithStrategy(types.ContentChange),
		sessioncache.WithTags(types.TagSessionData),
		sessioncache.WithChangeDetector(sessionChanged),
	)
	fmt.Println("changed put stored:", stored)

	// ============ DEPENDENCIES & BULK INVALIDATION ============

	cache.PutWithOptions("session_work_health", 87,
		sessioncache.WithDependencies("session_work"),
	)
	cache.Invalidate("session_work")
	if _, ok := cache.Get("session_work_health"); !ok {
		fmt.Println("health score cascaded away with its session")
	}

	cache.PutWithOptions("session_scratch", SessionInfo{Name: "scratch", Status: "idle", Windows: 1},
		sessioncache.WithTags(types.TagSessionData),
	)
	removed := cache.InvalidateByTag(types.TagSessionData)
	fmt.Printf("invalidated %d session entries by tag\n\n", removed)

	// ============ OBSERVABILITY ============

	summary := cache.VisualSummary()
	fmt.Printf("performance: %s %s (%.1f%% hit rate)\n",
		summary.Performance.Symbol, summary.Performance.Text, summary.Performance.HitRate)
	fmt.Printf("capacity:    %s %s (%s entries)\n",
		summary.Capacity.Symbol, summary.Capacity.Text, summary.Capacity.Entries)
	fmt.Printf("memory:      %s (%.0f bytes/entry avg)\n",
		summary.Memory.SizeHuman, summary.Memory.AvgEntryBytes)

	report := cache.HealthReport()
	fmt.Println("efficiency: ", report.HealthIndicators.CacheEfficiency)

	if doc, err := cache.ExportStatsJSON(); err == nil {
		fmt.Println(doc)
	}
}
