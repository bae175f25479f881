package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryIsExpired(t *testing.T) {
	now := time.Now()
	ent := &Entry{RefreshedAt: now.Add(-10 * time.Second), Strategy: TimeBased}

	assert.True(t, ent.IsExpired(5*time.Second, now))
	assert.False(t, ent.IsExpired(20*time.Second, now))
}

func TestEntryCustomTTLWinsOverDefault(t *testing.T) {
	now := time.Now()
	ent := &Entry{
		RefreshedAt: now.Add(-10 * time.Second),
		Strategy:    TimeBased,
		CustomTTL:   time.Minute,
	}

	// The passed-in TTL would expire it, but the override keeps it alive.
	assert.False(t, ent.IsExpired(5*time.Second, now))

	ent.CustomTTL = time.Second
	assert.True(t, ent.IsExpired(time.Hour, now))
}

func TestManualEntriesNeverExpireByTime(t *testing.T) {
	now := time.Now()
	ent := &Entry{RefreshedAt: now.Add(-24 * time.Hour), Strategy: Manual}

	assert.False(t, ent.IsExpired(time.Second, now))
}

func TestMarkAccess(t *testing.T) {
	ent := &Entry{}
	first := time.Now()
	ent.MarkAccess(first)
	later := first.Add(time.Second)
	ent.MarkAccess(later)

	assert.Equal(t, int64(2), ent.AccessCount)
	assert.Equal(t, later, ent.LastAccess)
}

func TestTagAndDependencySets(t *testing.T) {
	ent := &Entry{}
	ent.AddTag(TagSessionData)
	ent.AddTag(TagSessionData) // idempotent
	ent.AddDependency("session_work")

	assert.True(t, ent.HasTag(TagSessionData))
	assert.False(t, ent.HasTag(TagWindowInfo))
	assert.Len(t, ent.Tags, 1)
	assert.Len(t, ent.Dependencies, 1)
}

func TestFingerprintDeterministic(t *testing.T) {
	a := map[string]int{"windows": 3, "panes": 2}
	b := map[string]int{"panes": 2, "windows": 3}

	// encoding/json sorts map keys, so equal maps hash equally.
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(map[string]int{"windows": 4, "panes": 2}))
}

func TestFingerprintUnserializableFallsBack(t *testing.T) {
	ch := make(chan int)

	// Channels cannot be serialized; the textual fallback must still
	// produce a stable digest rather than failing.
	assert.NotEmpty(t, Fingerprint(ch))
	assert.Equal(t, Fingerprint(ch), Fingerprint(ch))
}
