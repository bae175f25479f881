// This file implements FIFO eviction.

package eviction

import "container/list"

// fifo tracks keys in insertion order and ignores reads entirely.
// The back of the list is the oldest insert and the next victim.
type fifo struct {
	order *list.List
	items map[string]*list.Element
}

func newFIFO() *fifo {
	return &fifo{
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// OnGet is ignored: FIFO only cares about insertion order.
func (f *fifo) OnGet(string) {}

// OnPut records the first insertion of a key. Re-puts keep the original slot.
func (f *fifo) OnPut(k string) {
	if _, ok := f.items[k]; ok {
		return
	}
	f.items[k] = f.order.PushFront(k)
}

// Evict removes and returns the oldest inserted key.
func (f *fifo) Evict() string {
	back := f.order.Back()
	if back == nil {
		return ""
	}
	k := back.Value.(string)
	f.order.Remove(back)
	delete(f.items, k)
	return k
}

// Remove forgets a key that was removed outside of eviction.
func (f *fifo) Remove(k string) {
	if el, ok := f.items[k]; ok {
		f.order.Remove(el)
		delete(f.items, k)
	}
}
