package engine

import (
	"sort"
	"time"

	"github.com/apex/log"

	"github.com/tmuxdash/sessioncache/types"
)

// SetTTLForKey replaces the per-entry TTL override for an existing key.
// Returns false when the key is not cached.
func (e *Engine) SetTTLForKey(key string, ttl time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.entries[key]
	if !ok {
		return false
	}
	ent.CustomTTL = ttl
	e.log.WithFields(log.Fields{
		"key": key,
		"ttl": ttl.String(),
	}).Debug("entry TTL updated")
	return true
}

// ExtendTTL pushes an entry's expiry out by refreshing its timestamp into
// the future: the entry now expires its effective TTL after now+extra.
// Returns false when the key is not cached.
func (e *Engine) ExtendTTL(key string, extra time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.entries[key]
	if !ok {
		return false
	}
	ent.RefreshedAt = time.Now().Add(extra)
	e.log.WithFields(log.Fields{
		"key":   key,
		"extra": extra.String(),
	}).Debug("entry TTL extended")
	return true
}

// EntryInfo describes one cached entry for introspection and fine-grained
// TTL control. Tags and Dependencies are sorted copies.
type EntryInfo struct {
	Key          string          `json:"key"`
	Age          time.Duration   `json:"age"`
	TimeToExpire time.Duration   `json:"time_to_expire"`
	AccessCount  int64           `json:"access_count"`
	LastAccess   time.Time       `json:"last_access"`
	Tags         []string        `json:"tags"`
	Dependencies []string        `json:"dependencies"`
	Strategy     types.Strategy  `json:"strategy"`
	CustomTTL    time.Duration   `json:"custom_ttl"`
	ContentHash  string          `json:"content_hash"`
	Expired      bool            `json:"expired"`
}

// GetEntryInfo reports detailed metadata for a cached entry. The second
// return is false when the key is not cached.
func (e *Engine) GetEntryInfo(key string) (EntryInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.entries[key]
	if !ok {
		return EntryInfo{}, false
	}

	now := time.Now()
	age := now.Sub(ent.RefreshedAt)
	effective := e.defaultTTL
	if ent.CustomTTL > 0 {
		effective = ent.CustomTTL
	}
	remaining := effective - age
	if remaining < 0 {
		remaining = 0
	}

	return EntryInfo{
		Key:          key,
		Age:          age,
		TimeToExpire: remaining,
		AccessCount:  ent.AccessCount,
		LastAccess:   ent.LastAccess,
		Tags:         sortedKeys(ent.Tags),
		Dependencies: sortedKeys(ent.Dependencies),
		Strategy:     ent.Strategy,
		CustomTTL:    ent.CustomTTL,
		ContentHash:  ent.ContentHash,
		Expired:      ent.IsExpired(e.defaultTTL, now),
	}, true
}

/*
cleanupLocked is the lazy expiry sweep. It is triggered opportunistically
from the read path rather than by a background goroutine, and runs at most
once per cleanup interval so a hot cache is not scanned on every call.

Expired entries are removed through the normal invalidation path, so their
dependents cascade and the removals count as evictions (not misses).
*/
func (e *Engine) cleanupLocked(now time.Time) int {
	if now.Sub(e.lastCleanup) < e.cleanupInterval {
		return 0
	}
	e.lastCleanup = now

	var expired []string
	for key, ent := range e.entries {
		if ent.IsExpired(e.defaultTTL, now) {
			expired = append(expired, key)
		}
	}
	removed := 0
	for _, key := range expired {
		removed += e.invalidateLocked(key)
	}

	if removed > 0 {
		e.log.WithField("count", removed).Debug("cleaned up expired entries")
	}
	return removed
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
