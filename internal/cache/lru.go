package cache

import "sync/atomic"

// node is an entry of a shard, linked into the shard's recency ring.
// used is set by readers holding only the read lock.
type node[K comparable, V any] struct {
	key        K
	value      V
	used       atomic.Bool
	prev, next *node[K, V]
}

// ring orders nodes around a sentinel: root.next is the newest or most
// recently spared node, root.prev the next eviction candidate. The zero value is not usable; call
// init first. Not safe for concurrent use.
type ring[K comparable, V any] struct {
	root node[K, V]
	n    int
}

func (r *ring[K, V]) init() {
	r.root.next = &r.root
	r.root.prev = &r.root
	r.n = 0
}

func (r *ring[K, V]) len() int { return r.n }

// pushFront links nd as most recently used.
func (r *ring[K, V]) pushFront(nd *node[K, V]) {
	nd.prev = &r.root
	nd.next = r.root.next
	r.root.next.prev = nd
	r.root.next = nd
	r.n++
}

// touch moves a linked node to the front.
func (r *ring[K, V]) touch(nd *node[K, V]) {
	if r.root.next == nd {
		return
	}
	r.remove(nd)
	r.pushFront(nd)
}

func (r *ring[K, V]) remove(nd *node[K, V]) {
	nd.prev.next = nd.next
	nd.next.prev = nd.prev
	nd.prev, nd.next = nil, nil
	r.n--
}

// oldest returns the least recently used node, or nil when empty.
func (r *ring[K, V]) oldest() *node[K, V] {
	if r.n == 0 {
		return nil
	}
	return r.root.prev
}
