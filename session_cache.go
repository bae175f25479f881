/*
Package sessioncache is an in-process cache for a terminal-multiplexer
dashboard. It sits in front of expensive session-enumeration work and
suppresses redundant downstream updates.

One keyed store layers several complementary invalidation mechanisms:
TTL expiry (lazy, swept opportunistically), manual invalidation (by key,
substring pattern or tag), content-change gating via caller-supplied
detectors, transitive dependency cascades, and LRU eviction under capacity
pressure. A read-only analytics layer adds health and dashboard reporting.

Contents are process-local and do not survive restart. There is no
cross-process coherence and no single-flight de-duplication.
*/
package sessioncache

import (
	"time"

	"github.com/apex/log"

	"github.com/tmuxdash/sessioncache/analytics"
	"github.com/tmuxdash/sessioncache/engine"
	"github.com/tmuxdash/sessioncache/eviction"
	"github.com/tmuxdash/sessioncache/types"
)

/*
SessionCache is the orchestrator that connects the engine (storage,
invalidation, eviction) with the analytics layer (health and status
reporting). It is safe for concurrent use; construct one per service and
inject it where needed rather than sharing ambient global state.
*/
type SessionCache struct {
	engine    *engine.Engine
	analytics *analytics.Analytics
}

type config struct {
	logger     log.Interface
	engineOpts []engine.Option
}

// Option configures a SessionCache at construction time.
type Option func(*config)

// WithLogger injects the logger used by both the engine and analytics.
func WithLogger(l log.Interface) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
			c.engineOpts = append(c.engineOpts, engine.WithLogger(l))
		}
	}
}

// WithEvictionPolicy selects the capacity-eviction strategy (default LRU).
func WithEvictionPolicy(t eviction.PolicyType) Option {
	return func(c *config) {
		c.engineOpts = append(c.engineOpts, engine.WithEvictionPolicy(t))
	}
}

// WithCleanupInterval sets the minimum spacing between lazy expiry sweeps.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *config) {
		c.engineOpts = append(c.engineOpts, engine.WithCleanupInterval(d))
	}
}

// New creates a session cache with the given default TTL and capacity.
func New(defaultTTL time.Duration, maxEntries int, opts ...Option) *SessionCache {
	cfg := config{logger: log.Log}
	for _, opt := range opts {
		opt(&cfg)
	}

	eng := engine.New(defaultTTL, maxEntries, cfg.engineOpts...)
	return &SessionCache{
		engine:    eng,
		analytics: analytics.New(eng, cfg.logger),
	}
}

// Put options, re-exported so callers only import this package.
var (
	WithTTL            = engine.WithTTL
	WithStrategy       = engine.WithStrategy
	WithTags           = engine.WithTags
	WithDependencies   = engine.WithDependencies
	WithChangeDetector = engine.WithChangeDetector
)

// PutOption configures a single PutWithOptions call.
type PutOption = engine.PutOption

// Get returns the cached value for key, or false on a miss or expiry.
func (c *SessionCache) Get(key string) (any, bool) {
	return c.engine.Get(key)
}

// GetWithTTL is Get with a caller-supplied TTL override.
func (c *SessionCache) GetWithTTL(key string, ttl time.Duration) (any, bool) {
	return c.engine.GetWithTTL(key, ttl)
}

// Put stores a value under key with default time-based expiry.
func (c *SessionCache) Put(key string, value any) {
	c.engine.Put(key, value)
	c.analytics.LogPeriodicStatus(false)
}

// PutWithTTL stores a value with a per-entry TTL override.
func (c *SessionCache) PutWithTTL(key string, value any, ttl time.Duration) {
	c.engine.PutWithTTL(key, value, ttl)
	c.analytics.LogPeriodicStatus(false)
}

// PutWithOptions stores a value with strategy, tags, dependencies and an
// optional change detector. Returns false when a ContentChange detector
// suppressed the write.
func (c *SessionCache) PutWithOptions(key string, value any, opts ...PutOption) bool {
	return c.engine.PutWithOptions(key, value, opts...)
}

// GetOrCompute returns the cached value or computes, stores and returns it.
// The computation runs outside the cache lock; a failed computation is
// never cached and its error propagates unmodified.
func (c *SessionCache) GetOrCompute(key string, compute func() (any, error), ttl time.Duration) (any, error) {
	return c.engine.GetOrCompute(key, compute, ttl)
}

// Invalidate removes one entry and, transitively, its dependents.
func (c *SessionCache) Invalidate(key string) bool {
	return c.engine.Invalidate(key)
}

// InvalidatePattern removes every entry whose key contains the substring.
func (c *SessionCache) InvalidatePattern(pattern string) int {
	return c.engine.InvalidatePattern(pattern)
}

// InvalidateByTag removes every entry carrying the tag.
func (c *SessionCache) InvalidateByTag(tag string) int {
	return c.engine.InvalidateByTag(tag)
}

// Clear removes every entry and resets all indices.
func (c *SessionCache) Clear() int {
	count := c.engine.Clear()
	c.analytics.LogStatus("cache_cleared")
	return count
}

// Keys returns all currently cached keys, sorted.
func (c *SessionCache) Keys() []string {
	return c.engine.Keys()
}

// SetTTLForKey replaces the per-entry TTL override for an existing key.
func (c *SessionCache) SetTTLForKey(key string, ttl time.Duration) bool {
	return c.engine.SetTTLForKey(key, ttl)
}

// ExtendTTL pushes an entry's expiry out by the given duration.
func (c *SessionCache) ExtendTTL(key string, extra time.Duration) bool {
	return c.engine.ExtendTTL(key, extra)
}

// GetEntryInfo reports detailed metadata for a cached entry.
func (c *SessionCache) GetEntryInfo(key string) (engine.EntryInfo, bool) {
	return c.engine.GetEntryInfo(key)
}

// RegisterInvalidationCallback arranges for fn to run when key is removed.
func (c *SessionCache) RegisterInvalidationCallback(key string, fn func(string)) {
	c.engine.RegisterInvalidationCallback(key, fn)
}

// Stats returns a snapshot of the aggregate counters.
func (c *SessionCache) Stats() types.Stats {
	return c.engine.Stats()
}

// HealthReport builds the full cache health view.
func (c *SessionCache) HealthReport() analytics.HealthReport {
	return c.analytics.HealthReport()
}

// VisualSummary builds the dashboard-ready status block.
func (c *SessionCache) VisualSummary() analytics.VisualSummary {
	return c.analytics.VisualSummary()
}

// ExportStatsJSON renders statistics and configuration as JSON.
func (c *SessionCache) ExportStatsJSON() (string, error) {
	return c.analytics.ExportStatsJSON()
}

// LogStatus writes a comprehensive status report to the logger.
func (c *SessionCache) LogStatus(operation string) {
	c.analytics.LogStatus(operation)
}
