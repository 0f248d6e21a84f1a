package cache

import "sync"

// Memo is a mutex-guarded map with a soft entry limit.
// When the limit is exceeded the least recently touched quarter of the
// entries is dropped in one pass.
//
// Memo is safe for concurrent use.
type Memo[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*memoEntry[V]
	softLimit int
	tick      int64
}

type memoEntry[V any] struct {
	value V
	atime int64
}

// NewMemo creates a memo holding roughly softLimit entries.
// A softLimit of 0 means unlimited.
func NewMemo[K comparable, V any](softLimit int) *Memo[K, V] {
	return &Memo[K, V]{
		entries:   make(map[K]*memoEntry[V]),
		softLimit: softLimit,
	}
}

// Get returns the value stored for key.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	m.tick++
	e.atime = m.tick
	return e.value, true
}

// GetOrCreate returns the stored value or computes and stores it.
// create runs under the memo lock and must not call back into m.
func (m *Memo[K, V]) GetOrCreate(key K, create func() V) V {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick++
	if e, ok := m.entries[key]; ok {
		e.atime = m.tick
		return e.value
	}

	v := create()
	m.entries[key] = &memoEntry[V]{value: v, atime: m.tick}
	if m.softLimit > 0 && len(m.entries) > m.softLimit {
		m.shrink()
	}
	return v
}

// Len returns the number of stored entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// shrink drops the oldest entries until three quarters of the limit remain.
// Caller must hold m.mu.
func (m *Memo[K, V]) shrink() {
	target := max(m.softLimit*3/4, 1)
	drop := len(m.entries) - target
	if drop <= 0 {
		return
	}

	type aged struct {
		key   K
		atime int64
	}
	all := make([]aged, 0, len(m.entries))
	for k, e := range m.entries {
		all = append(all, aged{key: k, atime: e.atime})
	}
	// Partial selection: only the first drop positions need ordering.
	for i := 0; i < drop; i++ {
		oldest := i
		for j := i + 1; j < len(all); j++ {
			if all[j].atime < all[oldest].atime {
				oldest = j
			}
		}
		all[i], all[oldest] = all[oldest], all[i]
		delete(m.entries, all[i].key)
	}
}
