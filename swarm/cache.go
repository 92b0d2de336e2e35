package swarm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/rdszhao/cadkg/internal/util"
)

// Cache is a content-addressed store mapping (specialist, payload) to a
// previously produced output. Keys are SHA-256 digests over the specialist
// name and the canonical JSON form of the payload, so two payloads differing
// only in object field order address the same entry while sequence order is
// preserved. Entries live for the cache's lifetime; there is no eviction.
//
// Every lookup records a hit or a miss on the injected monitor atomically
// with respect to concurrent callers. GetOrCompute additionally collapses
// concurrent identical computations into a single in-flight call so racing
// callers never pay for duplicate model invocations.
type Cache struct {
	monitor *Monitor

	mu       sync.Mutex
	entries  map[string]string
	inflight map[string]*flight
}

type flight struct {
	done chan struct{}
	text string
	err  error
}

// NewCache creates an empty cache reporting to the given monitor.
func NewCache(monitor *Monitor) *Cache {
	return &Cache{
		monitor:  monitor,
		entries:  make(map[string]string),
		inflight: make(map[string]*flight),
	}
}

// Key computes the digest addressing a (specialist, payload) pair.
func (c *Cache) Key(specialist string, payload any) (string, error) {
	data, err := util.MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalize payload for %s: %w", specialist, err)
	}
	sum := sha256.Sum256(append([]byte(specialist+":"), data...))
	return specialist + ":" + hex.EncodeToString(sum[:]), nil
}

// Get is a pure lookup. It records exactly one hit or miss and never mutates
// the stored entries, so two sequential calls with no intervening Put agree.
func (c *Cache) Get(specialist string, payload any) (string, bool) {
	key, err := c.Key(specialist, payload)
	if err != nil {
		c.monitor.RecordCacheMiss()
		return "", false
	}
	c.mu.Lock()
	text, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		c.monitor.RecordCacheHit()
	} else {
		c.monitor.RecordCacheMiss()
	}
	return text, ok
}

// Put stores the output for a (specialist, payload) pair, overwriting any
// prior entry for the same key.
func (c *Cache) Put(specialist string, payload any, text string) {
	key, err := c.Key(specialist, payload)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = text
	c.mu.Unlock()
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrCompute returns the cached output for the pair, or runs compute to
// produce it. Concurrent callers with the same key share one computation:
// the first caller (recorded as a miss) runs compute while the rest wait on
// the in-flight result and are recorded as hits on success. Failed
// computations are not cached, so a later call retries.
//
// The second return value reports whether the result came from the cache (or
// a shared in-flight computation) rather than this caller's own compute.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	specialist string,
	payload any,
	compute func(ctx context.Context) (string, error),
) (string, bool, error) {
	key, err := c.Key(specialist, payload)
	if err != nil {
		return "", false, err
	}

	c.mu.Lock()
	if text, ok := c.entries[key]; ok {
		c.mu.Unlock()
		c.monitor.RecordCacheHit()
		return text, true, nil
	}
	if fl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			c.monitor.RecordCacheMiss()
			return "", false, ctx.Err()
		case <-fl.done:
		}
		if fl.err != nil {
			c.monitor.RecordCacheMiss()
			return "", false, fl.err
		}
		c.monitor.RecordCacheHit()
		return fl.text, true, nil
	}

	fl := &flight{done: make(chan struct{})}
	c.inflight[key] = fl
	c.mu.Unlock()
	c.monitor.RecordCacheMiss()

	fl.text, fl.err = compute(ctx)

	c.mu.Lock()
	if fl.err == nil {
		c.entries[key] = fl.text
	}
	delete(c.inflight, key)
	c.mu.Unlock()
	close(fl.done)

	return fl.text, false, fl.err
}
