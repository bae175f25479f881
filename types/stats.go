package types

// This file defines how the cache reports what it has been doing.

/*
Stats is a snapshot of the cache's aggregate counters.

Hits, Misses and Evictions only ever grow; TotalEntries and MemorySizeBytes
track the current contents. HitRate is derived, not counted: it is filled in
by UpdateHitRate whenever a snapshot is taken.
*/
type Stats struct {
	Hits            int64   `json:"hits"`
	Misses          int64   `json:"misses"`
	Evictions       int64   `json:"evictions"`
	TotalEntries    int     `json:"total_entries"`
	MemorySizeBytes int64   `json:"memory_size_bytes"`
	HitRate         float64 `json:"hit_rate"`
}

/*
UpdateHitRate recomputes the derived hit rate as a percentage:

	hits / (hits + misses) * 100

A cache that has served no requests reports 0, not NaN.
*/
func (s *Stats) UpdateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	} else {
		s.HitRate = 0
	}
}
