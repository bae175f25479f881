package sessioncache_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessioncache "github.com/tmuxdash/sessioncache"
	"github.com/tmuxdash/sessioncache/api"
	"github.com/tmuxdash/sessioncache/eviction"
	"github.com/tmuxdash/sessioncache/types"
)

var _ api.Cache = (*sessioncache.SessionCache)(nil)

func newTestCache(ttl time.Duration, maxEntries int, opts ...sessioncache.Option) *sessioncache.SessionCache {
	logger := &log.Logger{Handler: discard.New(), Level: log.DebugLevel}
	opts = append([]sessioncache.Option{sessioncache.WithLogger(logger)}, opts...)
	return sessioncache.New(ttl, maxEntries, opts...)
}

// sessionInfo mirrors the payload the dashboard caches per session.
type sessionInfo struct {
	Name        string
	Status      string
	WindowCount int
}

func sessionChanged(oldValue, newValue any) bool {
	before, ok1 := oldValue.(sessionInfo)
	after, ok2 := newValue.(sessionInfo)
	if !ok1 || !ok2 {
		return true
	}
	return before.Status != after.Status || before.WindowCount != after.WindowCount
}

//
// ================= FACADE BASICS =================
//

func TestPutAndGet(t *testing.T) {
	cache := newTestCache(time.Hour, 10)

	cache.Put(types.KeySessionList, []string{"work", "scratch"})
	value, ok := cache.Get(types.KeySessionList)
	require.True(t, ok)
	assert.Equal(t, []string{"work", "scratch"}, value)

	_, ok = cache.Get("absent")
	assert.False(t, ok)
}

func TestPutWithTTLExpires(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	cache.PutWithTTL("short", "lived", 20*time.Millisecond)

	_, ok := cache.Get("short")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = cache.Get("short")
	assert.False(t, ok)
}

func TestTTLManagement(t *testing.T) {
	cache := newTestCache(30*time.Millisecond, 10)
	cache.Put("key1", "value1")

	require.True(t, cache.SetTTLForKey("key1", time.Hour))
	time.Sleep(60 * time.Millisecond)
	_, ok := cache.Get("key1")
	assert.True(t, ok, "per-key TTL override outlives the default")

	require.True(t, cache.ExtendTTL("key1", time.Minute))
	assert.False(t, cache.SetTTLForKey("absent", time.Hour))
}

func TestKeysAndEntryInfo(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	cache.PutWithOptions("session_work", sessionInfo{Name: "work"},
		sessioncache.WithTags(types.TagSessionData),
	)
	cache.Put("session_scratch", sessionInfo{Name: "scratch"})

	assert.Equal(t, []string{"session_scratch", "session_work"}, cache.Keys())

	info, ok := cache.GetEntryInfo("session_work")
	require.True(t, ok)
	assert.Equal(t, "session_work", info.Key)
	assert.Equal(t, []string{types.TagSessionData}, info.Tags)
	assert.False(t, info.Expired)
}

func TestEvictionPolicyOption(t *testing.T) {
	cache := newTestCache(time.Hour, 2, sessioncache.WithEvictionPolicy(eviction.FIFO))
	cache.Put("first", 1)
	cache.Put("second", 2)
	cache.Get("first") // FIFO ignores recency
	cache.Put("third", 3)

	_, ok := cache.Get("first")
	assert.False(t, ok, "oldest insertion is evicted regardless of access")
	_, ok = cache.Get("second")
	assert.True(t, ok)
}

//
// ================= DASHBOARD REFRESH FLOW =================
//

// TestDashboardRefreshFlow walks the intended usage end to end: the session
// list is computed once per TTL window, per-session entries are refreshed
// every poll but only structural changes propagate.
func TestDashboardRefreshFlow(t *testing.T) {
	cache := newTestCache(time.Hour, 100)

	enumerations := 0
	enumerate := func() (any, error) {
		enumerations++
		return []string{"work", "scratch"}, nil
	}

	// Repeated polls within the TTL hit the cache.
	for i := 0; i < 3; i++ {
		value, err := cache.GetOrCompute(types.KeySessionList, enumerate, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"work", "scratch"}, value)
	}
	assert.Equal(t, 1, enumerations)

	// Per-session entries are gated on a change detector: refreshing with
	// identical state is a no-op for downstream consumers.
	work := sessionInfo{Name: "work", Status: "active", WindowCount: 3}
	stored := cache.PutWithOptions("session_work", work,
		sessioncache.WithTags(types.TagSessionData),
		sessioncache.WithStrategy(types.ContentChange),
		sessioncache.WithChangeDetector(sessionChanged),
	)
	assert.True(t, stored)

	stored = cache.PutWithOptions("session_work", work,
		sessioncache.WithStrategy(types.ContentChange),
		sessioncache.WithChangeDetector(sessionChanged),
	)
	assert.False(t, stored, "unchanged session state is suppressed")

	work.WindowCount = 4
	stored = cache.PutWithOptions("session_work", work,
		sessioncache.WithTags(types.TagSessionData),
		sessioncache.WithStrategy(types.ContentChange),
		sessioncache.WithChangeDetector(sessionChanged),
	)
	assert.True(t, stored, "a window count change goes through")

	value, ok := cache.Get("session_work")
	require.True(t, ok)
	assert.Equal(t, 4, value.(sessionInfo).WindowCount)
}

func TestGetOrComputeFailureIsNotCached(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	wantErr := errors.New("tmux server not running")

	calls := 0
	_, err := cache.GetOrCompute(types.KeySessionList, func() (any, error) {
		calls++
		return nil, wantErr
	}, 0)
	require.ErrorIs(t, err, wantErr)

	_, err = cache.GetOrCompute(types.KeySessionList, func() (any, error) {
		calls++
		return nil, wantErr
	}, 0)
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, calls, "failures are recomputed, never cached")
	_, ok := cache.Get(types.KeySessionList)
	assert.False(t, ok)
}

//
// ================= INVALIDATION =================
//

func TestInvalidateCascadesToDependents(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	cache.Put(types.KeySessionInfo+"_work", sessionInfo{Name: "work"})
	cache.PutWithOptions(types.KeyHealthScore+"_work", 87,
		sessioncache.WithDependencies(types.KeySessionInfo+"_work"),
	)
	cache.PutWithOptions("summary_work", "ok",
		sessioncache.WithDependencies(types.KeyHealthScore+"_work"),
	)

	require.True(t, cache.Invalidate(types.KeySessionInfo+"_work"))

	for _, key := range []string{
		types.KeySessionInfo + "_work",
		types.KeyHealthScore + "_work",
		"summary_work",
	} {
		_, ok := cache.Get(key)
		assert.False(t, ok, "%s should be gone after the cascade", key)
	}
	assert.False(t, cache.Invalidate("absent"))
}

func TestInvalidatePatternBySession(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	cache.Put("session_info_work", 1)
	cache.Put("health_score_work", 2)
	cache.Put("session_info_scratch", 3)

	removed := cache.InvalidatePattern("_work")
	assert.Equal(t, 2, removed)
	_, ok := cache.Get("session_info_scratch")
	assert.True(t, ok)
}

func TestInvalidateByTag(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	cache.PutWithOptions("session_work", 1, sessioncache.WithTags(types.TagSessionData))
	cache.PutWithOptions("session_scratch", 2, sessioncache.WithTags(types.TagSessionData))
	cache.PutWithOptions("controller", 3, sessioncache.WithTags(types.TagControllerState))

	assert.Equal(t, 2, cache.InvalidateByTag(types.TagSessionData))
	assert.Equal(t, []string{"controller"}, cache.Keys())
	assert.Equal(t, 0, cache.InvalidateByTag("unknown_tag"))
}

func TestClearResetsEverything(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	for i := 0; i < 5; i++ {
		cache.Put(fmt.Sprintf("key%d", i), i)
	}
	cache.Get("key0")

	assert.Equal(t, 5, cache.Clear())
	assert.Empty(t, cache.Keys())
	stats := cache.Stats()
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestInvalidationCallbackFires(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	cache.Put("watched", "value")

	var fired []string
	cache.RegisterInvalidationCallback("watched", func(key string) {
		fired = append(fired, key)
	})

	cache.Invalidate("watched")
	assert.Equal(t, []string{"watched"}, fired)
}

//
// ================= OBSERVABILITY =================
//

func TestStatsAndReports(t *testing.T) {
	cache := newTestCache(time.Hour, 10)
	cache.Put("key1", "value1")
	cache.Get("key1")
	cache.Get("key1")
	cache.Get("missing")

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 66.67, stats.HitRate, 0.01)

	report := cache.HealthReport()
	assert.Equal(t, 1, report.BasicStats.TotalEntries)

	summary := cache.VisualSummary()
	assert.Equal(t, "good", summary.Performance.Level)

	doc, err := cache.ExportStatsJSON()
	require.NoError(t, err)
	assert.Contains(t, doc, `"cache_keys"`)

	cache.LogStatus("test") // must not panic on a live cache
}
