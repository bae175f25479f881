package engine

import (
	"time"

	"github.com/apex/log"
)

/*
GetOrCompute is the cache-aside helper: return the cached value, or invoke
compute, store its result and return it.

compute runs OUTSIDE the engine lock so a slow computation never blocks
other callers. The trade-off is documented and accepted: two goroutines that
miss the same key concurrently will both compute, and the second Put wins.
This cache is a best-effort accelerator, not a single-flight coordinator.

A failed computation is never cached — the error propagates to the caller
unmodified and the key stays absent, so the next GetOrCompute computes
again.
*/
func (e *Engine) GetOrCompute(key string, compute func() (any, error), ttl time.Duration) (any, error) {
	if value, ok := e.GetWithTTL(key, ttl); ok {
		return value, nil
	}

	start := time.Now()
	value, err := compute()
	if err != nil {
		e.log.WithField("key", key).WithError(err).Error("cache compute failed")
		return nil, err
	}

	if ttl > 0 {
		e.PutWithTTL(key, value, ttl)
	} else {
		e.Put(key, value)
	}

	e.log.WithFields(log.Fields{
		"key":      key,
		"duration": time.Since(start).String(),
	}).Debug("cache miss computed")
	return value, nil
}
