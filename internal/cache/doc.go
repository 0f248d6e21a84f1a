// Package cache provides the bounded caches shared by the layout engine.
//
// # Memo[K, V]
//
// A small mutex-guarded memo with a soft limit. When the limit is exceeded
// the least recently touched quarter is dropped. Used for per-word
// hyphenation results where contention is low.
//
//	m := cache.NewMemo[string, []int](1024)
//	points := m.GetOrCreate("hyphenation", compute)
//
// # Sharded[K, V]
//
// A sharded cache with second-chance (CLOCK) eviction for read-mostly
// shared state such as glyph metrics and whole layouts. Hits take only
// the shard read lock and set the entry's used bit. Insertion takes the
// write lock and gives used entries another pass before evicting. Small
// capacities use fewer shards so eviction order spans the whole cache.
//
//	c := cache.NewSharded[uint64, *Layout](256, cache.Uint64Hasher)
//	c.Set(key, layout)
//	layout, ok := c.Get(key)
//
// Both types are safe for concurrent use and must not be copied after
// creation.
package cache
