package eviction

// This package decides WHICH key is removed when the cache hits capacity.
// The engine owns the entries; a Policy only tracks key order/frequency and
// answers "who goes next". All Policy methods are called with the engine's
// lock held, so implementations need no locking of their own.

/*
Policy is the contract every eviction strategy follows.

The engine notifies the policy about reads, writes and removals so it can
keep its bookkeeping current, and asks Evict for a victim when it needs
space. The engine then removes that key from its own store.
*/
type Policy interface {
	// OnGet records that a key was read. LRU reorders on this; FIFO ignores it.
	OnGet(key string)

	// OnPut records that a key was inserted. Re-putting a tracked key is a
	// no-op; its position is maintained through OnGet instead.
	OnPut(key string)

	// Remove forgets a key that was removed for any reason other than Evict
	// (explicit invalidation, TTL expiry, cascade).
	Remove(key string)

	// Evict picks the next victim and forgets it. Returns "" when nothing
	// is tracked.
	Evict() string
}

// PolicyType names the built-in eviction strategies.
type PolicyType string

const (
	// LRU evicts the key unread for the longest time. Keys that were never
	// read are evicted in insertion order, oldest first, which makes the
	// victim deterministic.
	LRU PolicyType = "LRU"

	// LFU evicts a key with the fewest reads. Ties are broken arbitrarily.
	LFU PolicyType = "LFU"

	// FIFO evicts the oldest inserted key regardless of reads.
	FIFO PolicyType = "FIFO"
)

// NewPolicy builds the eviction policy for the given type.
func NewPolicy(t PolicyType) Policy {
	switch t {
	case LRU:
		return newLRU()
	case LFU:
		return newLFU()
	case FIFO:
		return newFIFO()
	default:
		panic("eviction: unknown policy " + string(t))
	}
}
