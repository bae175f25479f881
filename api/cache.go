package api

import (
	"time"

	"github.com/tmuxdash/sessioncache/analytics"
	"github.com/tmuxdash/sessioncache/engine"
	"github.com/tmuxdash/sessioncache/types"
)

/*
Cache is the public contract of the session cache.

It hides every internal detail (the locked store, the eviction policy, the
tag and dependency indices, the lazy sweep) behind one interface so
consumers — dashboard handlers, background monitors, the session
enumerator — can be handed a cache without knowing how it works.

*sessioncache.SessionCache satisfies this interface.
*/
type Cache interface {

	/*
		Get retrieves the value for a key.

		- Missing key: miss, returns false.
		- Present but expired: the entry is removed (counting as a miss
		  AND an eviction, cascading to dependents) and false returned.
		- Otherwise: access bookkeeping is updated and the value returned.
	*/
	Get(key string) (any, bool)

	// GetWithTTL is Get with a caller-supplied TTL standing in for the
	// default. An entry's own TTL override still wins over both.
	GetWithTTL(key string, ttl time.Duration) (any, bool)

	/*
		Put stores a value with default time-based expiry.

		A put whose value fingerprints identically to what is already
		cached refreshes the entry's timestamp and merges any newly
		supplied metadata, but triggers no eviction and no downstream
		invalidation for data that did not actually change.
	*/
	Put(key string, value any)

	// PutWithTTL stores a value with a per-entry TTL override.
	PutWithTTL(key string, value any, ttl time.Duration)

	/*
		PutWithOptions is the generalized write: invalidation strategy,
		per-entry TTL, tags for bulk invalidation, dependency
		declarations and an optional change detector.

		Returns false when a ContentChange detector decided the value is
		not a real change and the write was dropped.
	*/
	PutWithOptions(key string, value any, opts ...engine.PutOption) bool

	/*
		GetOrCompute returns the cached value, or invokes compute, caches
		its result and returns it. compute runs outside the cache lock;
		two concurrent misses may both compute and the second put wins.
		A failed computation is never cached and its error propagates
		unmodified.
	*/
	GetOrCompute(key string, compute func() (any, error), ttl time.Duration) (any, error)

	// Invalidate removes one entry plus, transitively, every entry that
	// declared it as a dependency. Unknown keys are a benign no-op.
	Invalidate(key string) bool

	// InvalidatePattern removes every entry whose key contains the
	// substring and returns how many matched.
	InvalidatePattern(pattern string) int

	// InvalidateByTag removes every entry carrying the tag and returns
	// how many were removed.
	InvalidateByTag(tag string) int

	// Clear removes every entry and resets all indices atomically.
	Clear() int

	// Keys returns all currently cached keys.
	Keys() []string

	// SetTTLForKey replaces the per-entry TTL override.
	SetTTLForKey(key string, ttl time.Duration) bool

	// ExtendTTL pushes an entry's expiry out by the given duration.
	ExtendTTL(key string, extra time.Duration) bool

	// GetEntryInfo reports age, time to expiry, tags, dependencies and
	// strategy for one entry.
	GetEntryInfo(key string) (engine.EntryInfo, bool)

	// RegisterInvalidationCallback runs fn whenever key is removed.
	RegisterInvalidationCallback(key string, fn func(string))

	// Stats returns the aggregate counters with derived hit rate.
	Stats() types.Stats

	// HealthReport builds the full health view.
	HealthReport() analytics.HealthReport

	// VisualSummary builds the dashboard-ready status block.
	VisualSummary() analytics.VisualSummary

	// ExportStatsJSON renders statistics and configuration as JSON.
	ExportStatsJSON() (string, error)
}
