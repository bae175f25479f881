// This file implements LFU eviction.

package eviction

// lfu tracks how often each key is read and evicts from the bucket with the
// lowest frequency. Keys inside one bucket are interchangeable: the victim
// among equally-cold keys is arbitrary.
type lfu struct {
	freqs   map[string]int              // key -> read count
	buckets map[int]map[string]struct{} // read count -> keys
	minFreq int
}

func newLFU() *lfu {
	return &lfu{
		freqs:   make(map[string]int),
		buckets: make(map[int]map[string]struct{}),
	}
}

// OnGet bumps a key into the next frequency bucket.
func (l *lfu) OnGet(k string) {
	freq, ok := l.freqs[k]
	if !ok {
		return
	}

	l.dropFromBucket(k, freq)
	l.freqs[k] = freq + 1
	l.addToBucket(k, freq+1)
}

// OnPut starts tracking a new key at frequency 1.
func (l *lfu) OnPut(k string) {
	if _, ok := l.freqs[k]; ok {
		return
	}
	l.freqs[k] = 1
	l.addToBucket(k, 1)
	l.minFreq = 1
}

// Evict removes and returns some key from the coldest bucket.
func (l *lfu) Evict() string {
	// Removals can leave minFreq pointing at a vacated bucket; resettle it
	// on the coldest bucket that still has keys.
	if len(l.buckets[l.minFreq]) == 0 {
		l.minFreq = 0
		for freq := range l.buckets {
			if l.minFreq == 0 || freq < l.minFreq {
				l.minFreq = freq
			}
		}
	}
	for k := range l.buckets[l.minFreq] {
		l.dropFromBucket(k, l.minFreq)
		delete(l.freqs, k)
		return k
	}
	return ""
}

// Remove forgets a key that was removed outside of eviction.
func (l *lfu) Remove(k string) {
	if freq, ok := l.freqs[k]; ok {
		l.dropFromBucket(k, freq)
		delete(l.freqs, k)
	}
}

func (l *lfu) addToBucket(k string, freq int) {
	if l.buckets[freq] == nil {
		l.buckets[freq] = make(map[string]struct{})
	}
	l.buckets[freq][k] = struct{}{}
}

func (l *lfu) dropFromBucket(k string, freq int) {
	delete(l.buckets[freq], k)
	if len(l.buckets[freq]) == 0 {
		delete(l.buckets, freq)
		if l.minFreq == freq {
			l.minFreq++
		}
	}
}
