package engine

import (
	"strings"

	"github.com/apex/log"

	"github.com/tmuxdash/sessioncache/eviction"
	"github.com/tmuxdash/sessioncache/types"
)

// Invalidate removes a single entry. Its dependents are removed with it,
// transitively. Returns false when the key was not cached; invalidating an
// unknown key is a benign no-op.
func (e *Engine) Invalidate(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.invalidateLocked(key) > 0
}

// InvalidatePattern removes every entry whose key contains the given
// substring and returns how many matched.
func (e *Engine) InvalidatePattern(pattern string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var matching []string
	for key := range e.entries {
		if strings.Contains(key, pattern) {
			matching = append(matching, key)
		}
	}
	for _, key := range matching {
		e.invalidateLocked(key)
	}

	e.log.WithFields(log.Fields{
		"pattern": pattern,
		"count":   len(matching),
	}).Debug("cache pattern invalidated")
	return len(matching)
}

// InvalidateByTag removes every entry currently carrying the given tag and
// returns how many it removed. The tag's bucket is gone afterwards.
func (e *Engine) InvalidateByTag(tag string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	bucket, ok := e.tagIndex[tag]
	if !ok {
		return 0
	}

	keys := make([]string, 0, len(bucket))
	for key := range bucket {
		keys = append(keys, key)
	}

	count := 0
	for _, key := range keys {
		if e.invalidateLocked(key) > 0 {
			count++
		}
	}
	delete(e.tagIndex, tag)

	e.log.WithFields(log.Fields{
		"tag":   tag,
		"count": count,
	}).Info("tag invalidated")
	return count
}

// Clear removes every entry and resets all indices atomically. Returns the
// number of entries removed. Hit/miss history survives; the removed entries
// count as evictions.
func (e *Engine) Clear() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := len(e.entries)
	e.entries = make(map[string]*types.Entry)
	e.tagIndex = make(map[string]map[string]struct{})
	e.depIndex = make(map[string]map[string]struct{})
	e.policy = eviction.NewPolicy(e.policyType)
	e.stats.Evictions += int64(count)
	e.stats.TotalEntries = 0

	e.log.WithField("count", count).Info("cache cleared")
	return count
}

// RegisterInvalidationCallback arranges for fn to run whenever key is
// removed from the cache. Callbacks run under the engine lock and must not
// call back into the cache; a panicking callback is recovered and logged,
// never fatal.
func (e *Engine) RegisterInvalidationCallback(key string, fn func(key string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks[key] = append(e.callbacks[key], fn)
}

// invalidateLocked removes key and its transitive dependents. Returns the
// number of entries removed, 0 when the key was absent.
func (e *Engine) invalidateLocked(key string) int {
	if _, ok := e.entries[key]; !ok {
		return 0
	}
	return e.removeClosureLocked([]string{key})
}

// cascadeDependentsLocked removes everything that depends on key,
// transitively. The key itself stays (it was replaced, not removed).
func (e *Engine) cascadeDependentsLocked(key string) {
	bucket := e.depIndex[key]
	if len(bucket) == 0 {
		return
	}
	seeds := make([]string, 0, len(bucket))
	for dep := range bucket {
		seeds = append(seeds, dep)
	}
	e.removeClosureLocked(seeds)
}

/*
removeClosureLocked removes the given keys plus every key that transitively
depends on them.

The traversal is an explicit work queue with a visited set rather than
recursion: dependency declarations are caller-supplied and may contain
cycles, and the visited set is what guarantees the walk terminates. A key
reached twice is skipped and logged; a cyclic declaration is tolerated,
never fatal.
*/
func (e *Engine) removeClosureLocked(seeds []string) int {
	removed := 0
	visited := make(map[string]struct{}, len(seeds))
	queue := make([]string, 0, len(seeds))
	for _, key := range seeds {
		visited[key] = struct{}{}
		queue = append(queue, key)
	}

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]

		// Schedule the dependents before the entry disappears. A dependent
		// reached twice may be a cycle or just a diamond (two removed keys
		// sharing one dependent); either way it is already queued.
		for dep := range e.depIndex[key] {
			if _, seen := visited[dep]; seen {
				e.log.WithFields(log.Fields{
					"key":       key,
					"dependent": dep,
				}).Warn("dependent already scheduled for removal, skipping")
				continue
			}
			visited[dep] = struct{}{}
			queue = append(queue, dep)
		}

		if e.dropLocked(key, true) {
			removed++
		}
	}
	return removed
}

/*
dropLocked deletes a single entry and keeps every index honest: the entry
map, the tag index, the dependency index and the eviction policy forget the
key in this one operation. Registered invalidation callbacks fire last.

untrackPolicy is false only on the capacity-eviction path, where the policy
already forgot the key when it picked the victim.
*/
func (e *Engine) dropLocked(key string, untrackPolicy bool) bool {
	ent, ok := e.entries[key]
	if !ok {
		return false
	}

	delete(e.entries, key)
	e.unregisterLocked(ent)
	delete(e.depIndex, key)
	if untrackPolicy {
		e.policy.Remove(key)
	}

	e.stats.Evictions++
	e.stats.TotalEntries = len(e.entries)

	for _, fn := range e.callbacks[key] {
		e.runCallback(key, fn)
	}

	e.log.WithField("key", key).Debug("cache invalidated")
	return true
}

func (e *Engine) runCallback(key string, fn func(string)) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithFields(log.Fields{
				"key":   key,
				"panic": r,
			}).Error("invalidation callback panicked")
		}
	}()
	fn(key)
}
