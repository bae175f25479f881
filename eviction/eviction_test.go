package eviction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	p := NewPolicy(LRU)
	p.OnPut("a")
	p.OnPut("b")
	p.OnPut("c")

	// Reading "a" saves it; "b" becomes the coldest.
	p.OnGet("a")

	assert.Equal(t, "b", p.Evict())
	assert.Equal(t, "c", p.Evict())
	assert.Equal(t, "a", p.Evict())
	assert.Equal(t, "", p.Evict())
}

func TestLRUUntouchedKeysEvictInInsertionOrder(t *testing.T) {
	p := NewPolicy(LRU)
	p.OnPut("first")
	p.OnPut("second")
	p.OnPut("third")

	assert.Equal(t, "first", p.Evict())
	assert.Equal(t, "second", p.Evict())
}

func TestLRURemoveForgetsKey(t *testing.T) {
	p := NewPolicy(LRU)
	p.OnPut("a")
	p.OnPut("b")
	p.Remove("a")

	assert.Equal(t, "b", p.Evict())
	assert.Equal(t, "", p.Evict())
}

func TestLRURepeatPutKeepsPosition(t *testing.T) {
	p := NewPolicy(LRU)
	p.OnPut("a")
	p.OnPut("b")
	p.OnPut("a") // no-op: "a" stays oldest

	assert.Equal(t, "a", p.Evict())
}

func TestFIFOIgnoresReads(t *testing.T) {
	p := NewPolicy(FIFO)
	p.OnPut("a")
	p.OnPut("b")
	p.OnGet("a")

	assert.Equal(t, "a", p.Evict())
	assert.Equal(t, "b", p.Evict())
	assert.Equal(t, "", p.Evict())
}

func TestLFUEvictsColdestKey(t *testing.T) {
	p := NewPolicy(LFU)
	p.OnPut("hot")
	p.OnPut("cold")
	p.OnGet("hot")
	p.OnGet("hot")

	assert.Equal(t, "cold", p.Evict())
	assert.Equal(t, "hot", p.Evict())
}

func TestLFUEvictAfterRemove(t *testing.T) {
	p := NewPolicy(LFU)
	p.OnPut("a")
	p.OnPut("b")
	p.OnGet("b") // b at freq 2, a at freq 1
	p.Remove("a")

	// minFreq bucket was vacated by Remove; Evict must still find b.
	assert.Equal(t, "b", p.Evict())
	assert.Equal(t, "", p.Evict())
}

func TestUnknownPolicyPanics(t *testing.T) {
	assert.Panics(t, func() { NewPolicy(PolicyType("CLOCK")) })
}
