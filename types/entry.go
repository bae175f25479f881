package types

import "time"

/*
Strategy decides WHEN a cache entry stops being valid.

The cache layers several invalidation mechanisms over one store, and every
entry declares which time-based behavior it wants:

- TimeBased:     the entry expires once its TTL elapses (the default)
- ContentChange: writes are gated by a ChangeDetector; expiry still follows TTL
- Manual:        the entry NEVER expires by time; only explicit invalidation,
                 a dependency cascade, or capacity eviction removes it
*/
type Strategy string

const (
	TimeBased     Strategy = "time_based"
	ContentChange Strategy = "content_change"
	Manual        Strategy = "manual"
)

/*
ChangeDetector reports whether a new value is materially different from the
one already cached.

It is supplied per write for ContentChange entries. When it returns false the
write is dropped entirely and the existing entry is left untouched, so
downstream consumers never see a refresh for data that did not change.
*/
type ChangeDetector func(oldValue, newValue any) bool

/*
Entry is a single cached value plus the metadata the engine needs to apply
TTL expiry, LRU eviction, tag invalidation and dependency cascades.

Entries are owned exclusively by the engine and are only ever mutated under
its lock.
*/
type Entry struct {
	// Key is the cache key this entry is stored under.
	Key string

	// Value is the cached payload. The cache never inspects its structure
	// except through fingerprinting and an optional ChangeDetector.
	Value any

	// CreatedAt is when the entry was first inserted.
	CreatedAt time.Time

	// RefreshedAt is when the entry was last written or refreshed.
	// Expiry is measured from here: a put that carries an identical
	// fingerprint refreshes this timestamp and nothing else.
	RefreshedAt time.Time

	// AccessCount counts successful reads of this entry.
	AccessCount int64

	// LastAccess is when the entry was last read. The LRU eviction order
	// follows it. Non-decreasing for the lifetime of the entry.
	LastAccess time.Time

	// ContentHash is a deterministic fingerprint of Value at the last
	// structural write. Used to detect writes that change nothing.
	ContentHash string

	// CustomTTL overrides the cache-wide default TTL for this entry.
	// Zero means no override.
	CustomTTL time.Duration

	// Tags this entry belongs to, for bulk invalidation by category.
	Tags map[string]struct{}

	// Dependencies are keys this entry depends on. When any of them is
	// removed, this entry is invalidated as well.
	Dependencies map[string]struct{}

	// Strategy selects the entry's invalidation behavior.
	Strategy Strategy
}

/*
IsExpired reports whether the entry has outlived its TTL at the given time.

The effective TTL is the entry's CustomTTL when set, otherwise the ttl the
caller passes in (the cache default, or a per-Get override). Manual entries
never expire by time.
*/
func (e *Entry) IsExpired(ttl time.Duration, now time.Time) bool {
	if e.Strategy == Manual {
		return false
	}
	effective := ttl
	if e.CustomTTL > 0 {
		effective = e.CustomTTL
	}
	return now.Sub(e.RefreshedAt) > effective
}

// MarkAccess records a successful read at the given time.
func (e *Entry) MarkAccess(now time.Time) {
	e.AccessCount++
	e.LastAccess = now
}

// HasTag reports whether the entry carries the given tag.
func (e *Entry) HasTag(tag string) bool {
	_, ok := e.Tags[tag]
	return ok
}

// AddTag attaches a tag to this entry.
func (e *Entry) AddTag(tag string) {
	if e.Tags == nil {
		e.Tags = make(map[string]struct{})
	}
	e.Tags[tag] = struct{}{}
}

// AddDependency declares that this entry depends on another key.
func (e *Entry) AddDependency(key string) {
	if e.Dependencies == nil {
		e.Dependencies = make(map[string]struct{})
	}
	e.Dependencies[key] = struct{}{}
}
