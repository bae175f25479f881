package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/tmuxdash/sessioncache/types"
)

// Stats returns a snapshot of the aggregate counters with the memory
// estimate and derived hit rate filled in.
func (e *Engine) Stats() types.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked()
}

func (e *Engine) statsLocked() types.Stats {
	var memory int64
	for key, ent := range e.entries {
		// Rough estimate: textual size of the value plus key plus fixed
		// per-entry overhead. Same heuristic for every entry keeps the
		// figure comparable over time.
		memory += int64(len(fmt.Sprint(ent.Value)) + len(key) + 100)
	}
	e.stats.MemorySizeBytes = memory
	e.stats.TotalEntries = len(e.entries)

	snap := e.stats
	snap.UpdateHitRate()
	return snap
}

// Keys returns all currently cached keys, sorted.
func (e *Engine) Keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]string, 0, len(e.entries))
	for key := range e.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the current number of cached entries.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// EntrySnapshot is the per-entry slice of a Snapshot: just enough metadata
// for the observability layer, without the values themselves.
type EntrySnapshot struct {
	Key             string
	Age             time.Duration
	Strategy        types.Strategy
	Tags            []string
	DependencyCount int
	Expired         bool
}

// Snapshot is a point-in-time, read-only view of the whole engine, taken
// under one lock acquisition. The analytics layer builds every report from
// it and never reaches into live engine state.
type Snapshot struct {
	Stats            types.Stats
	DefaultTTL       time.Duration
	MaxEntries       int
	Entries          []EntrySnapshot
	ActiveTags       int
	DependencyChains int
	SinceCleanup     time.Duration
	TakenAt          time.Time
}

// TakeSnapshot captures the engine's current state for reporting.
func (e *Engine) TakeSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	snap := Snapshot{
		Stats:            e.statsLocked(),
		DefaultTTL:       e.defaultTTL,
		MaxEntries:       e.maxEntries,
		Entries:          make([]EntrySnapshot, 0, len(e.entries)),
		ActiveTags:       len(e.tagIndex),
		DependencyChains: len(e.depIndex),
		SinceCleanup:     now.Sub(e.lastCleanup),
		TakenAt:          now,
	}
	for key, ent := range e.entries {
		snap.Entries = append(snap.Entries, EntrySnapshot{
			Key:             key,
			Age:             now.Sub(ent.RefreshedAt),
			Strategy:        ent.Strategy,
			Tags:            sortedKeys(ent.Tags),
			DependencyCount: len(ent.Dependencies),
			Expired:         ent.IsExpired(e.defaultTTL, now),
		})
	}
	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Key < snap.Entries[j].Key
	})
	return snap
}
