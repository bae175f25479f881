// This file implements LRU eviction.

package eviction

import "container/list"

/*
lru tracks keys in a doubly-linked list ordered by recency.

The front of the list is the most recently used key, the back the least.
Reads move a key to the front; inserts start at the front; eviction always
takes the back. A key that is never read drifts to the back in insertion
order, so among never-read keys the oldest insert is evicted first.
*/
type lru struct {
	// order is the recency list; element values are keys.
	order *list.List

	// items maps keys to their list elements for O(1) reordering.
	items map[string]*list.Element
}

func newLRU() *lru {
	return &lru{
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// OnGet marks a key as most recently used.
func (l *lru) OnGet(k string) {
	if el, ok := l.items[k]; ok {
		l.order.MoveToFront(el)
	}
}

// OnPut starts tracking a new key as most recently used.
// Keys already tracked keep their position; OnGet handles reorders.
func (l *lru) OnPut(k string) {
	if _, ok := l.items[k]; ok {
		return
	}
	l.items[k] = l.order.PushFront(k)
}

// Evict removes and returns the least recently used key.
func (l *lru) Evict() string {
	back := l.order.Back()
	if back == nil {
		return ""
	}
	k := back.Value.(string)
	l.order.Remove(back)
	delete(l.items, k)
	return k
}

// Remove forgets a key that was removed outside of eviction.
func (l *lru) Remove(k string) {
	if el, ok := l.items[k]; ok {
		l.order.Remove(el)
		delete(l.items, k)
	}
}
