package engine

import (
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/tmuxdash/sessioncache/eviction"
	"github.com/tmuxdash/sessioncache/types"
)

/*
Engine is the keyed store at the heart of the session cache.

It owns three structures that must always agree with each other:

- the entry map (key -> *types.Entry)
- the tag index (tag -> keys carrying that tag)
- the dependency index (key -> keys that declared it as a dependency)

Every compound operation (expiry check on read, evict-then-insert on write,
cascade invalidation) runs under one mutex so the three structures never
reference a dead key. Go mutexes are not re-entrant, so the public methods
lock once and delegate to private *Locked methods; cascade logic calls the
locked core directly while already inside the critical section.

The engine does no network or disk I/O. Everything is in-memory hashing and
map manipulation, so one coarse lock is enough.
*/
type Engine struct {
	mu sync.Mutex

	defaultTTL time.Duration
	maxEntries int

	entries  map[string]*types.Entry
	tagIndex map[string]map[string]struct{} // tag -> keys
	depIndex map[string]map[string]struct{} // key -> its dependents

	policy     eviction.Policy
	policyType eviction.PolicyType

	callbacks map[string][]func(key string)

	cleanupInterval time.Duration
	lastCleanup     time.Time

	stats types.Stats
	log   log.Interface
}

// Defaults applied when the constructor arguments or options are zero.
const (
	DefaultTTL             = 5 * time.Second
	DefaultMaxEntries      = 1000
	DefaultCleanupInterval = 60 * time.Second
)

type options struct {
	logger          log.Interface
	policy          eviction.PolicyType
	cleanupInterval time.Duration
}

// Option configures optional engine behavior at construction time.
type Option func(*options)

// WithLogger injects the logger the engine traces operations with.
func WithLogger(l log.Interface) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEvictionPolicy selects the capacity-eviction strategy.
// The default is LRU, which is also the only deterministic choice.
func WithEvictionPolicy(t eviction.PolicyType) Option {
	return func(o *options) {
		o.policy = t
	}
}

// WithCleanupInterval sets the minimum spacing between lazy expiry sweeps.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cleanupInterval = d
		}
	}
}

// New creates an engine with the given default TTL and capacity.
// Non-positive arguments fall back to the package defaults.
func New(defaultTTL time.Duration, maxEntries int, opts ...Option) *Engine {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	o := options{
		logger:          log.Log,
		policy:          eviction.LRU,
		cleanupInterval: DefaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		defaultTTL:      defaultTTL,
		maxEntries:      maxEntries,
		entries:         make(map[string]*types.Entry),
		tagIndex:        make(map[string]map[string]struct{}),
		depIndex:        make(map[string]map[string]struct{}),
		policy:          eviction.NewPolicy(o.policy),
		policyType:      o.policy,
		callbacks:       make(map[string][]func(string)),
		cleanupInterval: o.cleanupInterval,
		lastCleanup:     time.Now(),
		log:             o.logger,
	}

	e.log.WithFields(log.Fields{
		"default_ttl": defaultTTL.String(),
		"max_entries": maxEntries,
		"policy":      string(o.policy),
	}).Info("cache engine initialized")

	return e
}

// DefaultTTLValue returns the cache-wide default TTL.
func (e *Engine) DefaultTTLValue() time.Duration { return e.defaultTTL }

// MaxEntries returns the configured capacity.
func (e *Engine) MaxEntries() int { return e.maxEntries }

/*
Get returns the cached value for key under the default TTL.

A missing key is a miss. A present-but-expired key is removed (counting as a
miss AND an eviction, and cascading to its dependents) and reported as a
miss. Otherwise access bookkeeping is updated and the value returned.
*/
func (e *Engine) Get(key string) (any, bool) {
	return e.GetWithTTL(key, 0)
}

// GetWithTTL is Get with a caller-supplied TTL override. The override stands
// in for the default TTL; an entry's own CustomTTL still wins over both.
// A non-positive ttl means "use the default".
func (e *Engine) GetWithTTL(key string, ttl time.Duration) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	e.cleanupLocked(now)

	effective := e.defaultTTL
	if ttl > 0 {
		effective = ttl
	}

	ent, ok := e.entries[key]
	if !ok {
		e.stats.Misses++
		return nil, false
	}

	if ent.IsExpired(effective, now) {
		e.invalidateLocked(key)
		e.stats.Misses++
		e.log.WithField("key", key).Debug("cache expired")
		return nil, false
	}

	ent.MarkAccess(now)
	e.policy.OnGet(key)
	e.stats.Hits++
	return ent.Value, true
}

// Put stores a value under key with default time-based expiry.
func (e *Engine) Put(key string, value any) {
	e.PutWithOptions(key, value)
}

// PutWithTTL stores a value with a per-entry TTL override.
func (e *Engine) PutWithTTL(key string, value any, ttl time.Duration) {
	e.PutWithOptions(key, value, WithTTL(ttl))
}

/*
PutWithOptions is the generalized write: strategy, per-entry TTL, tags,
dependencies and an optional change detector.

It returns true when the write was applied (stored, replaced, or refreshed)
and false when a ContentChange detector decided the new value is not a real
change, in which case the existing entry is left completely untouched.
*/
func (e *Engine) PutWithOptions(key string, value any, opts ...PutOption) bool {
	po := putOptions{strategy: types.TimeBased}
	for _, opt := range opts {
		opt(&po)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.putLocked(key, value, po, time.Now())
}

type putOptions struct {
	ttl          time.Duration
	strategy     types.Strategy
	tags         []string
	dependencies []string
	detector     types.ChangeDetector
}

// PutOption configures a single PutWithOptions call.
type PutOption func(*putOptions)

// WithTTL sets a per-entry TTL override for this key.
func WithTTL(ttl time.Duration) PutOption {
	return func(o *putOptions) { o.ttl = ttl }
}

// WithStrategy selects the entry's invalidation strategy.
func WithStrategy(s types.Strategy) PutOption {
	return func(o *putOptions) { o.strategy = s }
}

// WithTags registers the key under the given tags for bulk invalidation.
func WithTags(tags ...string) PutOption {
	return func(o *putOptions) { o.tags = append(o.tags, tags...) }
}

// WithDependencies declares keys this entry depends on. Removing any of
// them also removes this entry.
func WithDependencies(keys ...string) PutOption {
	return func(o *putOptions) { o.dependencies = append(o.dependencies, keys...) }
}

// WithChangeDetector supplies the comparator a ContentChange entry is
// written through.
func WithChangeDetector(d types.ChangeDetector) PutOption {
	return func(o *putOptions) { o.detector = d }
}

/*
putLocked is the write core. Caller holds the lock.

Order of decisions:

 1. A ContentChange write with a detector that reports "unchanged" is a
    complete no-op.
 2. A write whose fingerprint matches the stored entry refreshes the
    entry's timestamp and merges the supplied metadata (tags, dependencies,
    TTL override, strategy), but the value is left alone. No eviction, and
    crucially no dependent cascade: a recomputed-but-identical value must
    not trigger downstream invalidation.
 3. Otherwise the write is structural. A brand-new key may first force a
    capacity eviction; an existing key is mutated in place (its creation
    time and access history survive) and, since its content changed, its
    dependents are cascaded away.
*/
func (e *Engine) putLocked(key string, value any, po putOptions, now time.Time) bool {
	old, exists := e.entries[key]

	if po.strategy == types.ContentChange && po.detector != nil && exists {
		if !po.detector(old.Value, value) {
			e.log.WithField("key", key).Debug("content unchanged, write suppressed")
			return false
		}
	}

	hash := types.Fingerprint(value)
	if exists && old.ContentHash == hash {
		// The value itself is untouched, but metadata supplied with the
		// write still takes effect: new tags and dependencies are merged
		// into the indices, and the TTL override and strategy are applied.
		old.RefreshedAt = now
		old.CustomTTL = po.ttl
		old.Strategy = po.strategy
		for _, tag := range po.tags {
			old.AddTag(tag)
		}
		for _, dep := range po.dependencies {
			old.AddDependency(dep)
		}
		e.registerLocked(old)
		e.log.WithField("key", key).Debug("cache refreshed (unchanged)")
		return true
	}

	if !exists {
		for len(e.entries) >= e.maxEntries {
			if !e.evictLocked() {
				break
			}
		}
	}

	ent := old
	if !exists {
		ent = &types.Entry{
			Key:        key,
			CreatedAt:  now,
			LastAccess: now,
		}
	} else {
		// Structural replace: detach the old tag/dependency registrations
		// before the new ones take effect.
		e.unregisterLocked(old)
	}

	ent.Value = value
	ent.RefreshedAt = now
	ent.ContentHash = hash
	ent.CustomTTL = po.ttl
	ent.Strategy = po.strategy
	ent.Tags = nil
	ent.Dependencies = nil
	for _, tag := range po.tags {
		ent.AddTag(tag)
	}
	for _, dep := range po.dependencies {
		ent.AddDependency(dep)
	}

	e.entries[key] = ent
	e.registerLocked(ent)
	e.policy.OnPut(key)
	e.stats.TotalEntries = len(e.entries)

	e.log.WithFields(log.Fields{
		"key":      key,
		"hash":     hash,
		"strategy": string(po.strategy),
	}).Debug("cache stored")

	// The key's content changed, so everything built on top of it is stale.
	if exists {
		e.cascadeDependentsLocked(key)
	}

	return true
}

// registerLocked records the entry's tags and dependencies in the indices.
func (e *Engine) registerLocked(ent *types.Entry) {
	for tag := range ent.Tags {
		bucket := e.tagIndex[tag]
		if bucket == nil {
			bucket = make(map[string]struct{})
			e.tagIndex[tag] = bucket
		}
		bucket[ent.Key] = struct{}{}
	}
	for dep := range ent.Dependencies {
		bucket := e.depIndex[dep]
		if bucket == nil {
			bucket = make(map[string]struct{})
			e.depIndex[dep] = bucket
		}
		bucket[ent.Key] = struct{}{}
	}
}

// unregisterLocked removes the entry from every tag and dependency bucket it
// belongs to, dropping buckets that become empty.
func (e *Engine) unregisterLocked(ent *types.Entry) {
	for tag := range ent.Tags {
		if bucket, ok := e.tagIndex[tag]; ok {
			delete(bucket, ent.Key)
			if len(bucket) == 0 {
				delete(e.tagIndex, tag)
			}
		}
	}
	for dep := range ent.Dependencies {
		if bucket, ok := e.depIndex[dep]; ok {
			delete(bucket, ent.Key)
			if len(bucket) == 0 {
				delete(e.depIndex, dep)
			}
		}
	}
}

// evictLocked removes the policy's victim to make room. The victim's
// dependents go with it.
func (e *Engine) evictLocked() bool {
	victim := e.policy.Evict()
	if victim == "" {
		return false
	}
	e.log.WithField("key", victim).Debug("evicted entry")
	// Cascade before the drop: dropLocked erases the victim's dependent
	// bucket from the index.
	e.cascadeDependentsLocked(victim)
	e.dropLocked(victim, false)
	return true
}
