package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// MaxShards is the shard count used for large capacities.
	// Must be a power of 2 for fast modulo via bitwise AND.
	MaxShards = 16

	// DefaultCapacity is the total capacity used when none is given.
	DefaultCapacity = 4096

	// minPerShard keeps small caches on few shards so eviction order
	// follows use across the whole cache.
	minPerShard = 64
)

// Hasher computes the shard-selection hash for a key.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher returns the key itself. Use it for keys that already are hashes.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Sharded is a thread-safe cache split across up to MaxShards shards.
// Each shard owns a map, a recency ring and a read/write lock.
//
// Eviction is second chance (CLOCK): hits only mark the entry used under
// the read lock, and the eviction scan moves used entries back to the
// front instead of dropping them.
type Sharded[K comparable, V any] struct {
	shards   []*shard[K, V]
	mask     uint64
	hasher   Hasher[K]
	perShard int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*node[K, V]
	recent  ring[K, V]
}

func newShard[K comparable, V any]() *shard[K, V] {
	s := &shard[K, V]{entries: make(map[K]*node[K, V])}
	s.recent.init()
	return s
}

// NewSharded creates a cache holding about capacity entries in total.
// If capacity <= 0, DefaultCapacity is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	n := 1
	for n < MaxShards && capacity/(n*2) >= minPerShard {
		n *= 2
	}

	c := &Sharded[K, V]{
		shards:   make([]*shard[K, V], n),
		mask:     uint64(n - 1), //nolint:gosec // n is a small power of two
		hasher:   hasher,
		perShard: (capacity + n - 1) / n,
	}
	for i := range c.shards {
		c.shards[i] = newShard[K, V]()
	}
	return c
}

func (c *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&c.mask]
}

// Get returns the value for key and marks it used.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.RUnlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	if !e.used.Load() {
		e.used.Store(true)
	}
	v := e.value
	s.mu.RUnlock()

	c.hits.Add(1)
	return v, true
}

// Peek returns the value for key without touching recency or statistics.
func (c *Sharded[K, V]) Peek(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key, evicting unused entries of the shard when
// it is full.
func (c *Sharded[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.insertLocked(s, key, value)
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs with the shard lock held; keep it short.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}

	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have inserted while the lock was released.
	if e, ok := s.entries[key]; ok {
		e.used.Store(true)
		return e.value
	}
	v := create()
	c.insertLocked(s, key, v)
	return v
}

func (c *Sharded[K, V]) insertLocked(s *shard[K, V], key K, value V) {
	if e, ok := s.entries[key]; ok {
		e.value = value
		s.recent.touch(e)
		return
	}
	for s.recent.len() >= c.perShard {
		old := s.recent.oldest()
		if old == nil {
			break
		}
		if old.used.Swap(false) {
			s.recent.touch(old)
			continue
		}
		s.recent.remove(old)
		delete(s.entries, old.key)
		c.evictions.Add(1)
	}
	e := &node[K, V]{key: key, value: value}
	s.recent.pushFront(e)
	s.entries[key] = e
}

// Delete removes key and reports whether it was present.
func (c *Sharded[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.recent.remove(e)
	delete(s.entries, key)
	return true
}

// Clear removes every entry. Statistics are kept.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*node[K, V])
		s.recent.init()
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Capacity returns the total number of entries the cache holds before evicting.
func (c *Sharded[K, V]) Capacity() int {
	return c.perShard * len(c.shards)
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	Capacity  int
	Shards    int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// HitRate is hits/(hits+misses), 0 when there were no lookups.
	HitRate float64
}

// Stats returns the current counters.
func (c *Sharded[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Len:       c.Len(),
		Capacity:  c.Capacity(),
		Shards:    len(c.shards),
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}

// ResetStats zeroes the hit, miss and eviction counters.
func (c *Sharded[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
