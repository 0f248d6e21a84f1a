// Package cache memoizes whole layouts.
//
// A LayoutCache key is the canonical byte encoding of a request: every
// character, every resolved style field, every constraint field and the
// font manager generation. Entries are looked up by the FNV-1a hash of
// that encoding and then compared byte for byte, so two requests that
// share a hash never share a result.
package cache

import (
	"bytes"
	"sync/atomic"

	icache "github.com/gogpu/textflow/internal/cache"
	"github.com/gogpu/textflow/text"
)

// DefaultCapacity is the number of layouts kept when none is configured.
const DefaultCapacity = 256

// entry is one cached layout with the key it was stored under.
type entry struct {
	key    []byte
	layout *text.Layout
}

// Stats reports cache effectiveness.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64

	// Collisions counts lookups whose hash matched an entry stored for
	// different input.
	Collisions uint64

	// Bypassed counts requests that could not be encoded and were laid
	// out without the cache.
	Bypassed uint64
}

// LayoutCache memoizes text.LayoutText for one FontManager.
//
// LayoutCache is safe for concurrent use. A returned layout is shared
// between callers and must not be modified.
type LayoutCache struct {
	fm      *text.FontManager
	entries *icache.Sharded[uint64, *entry]

	hits       atomic.Uint64
	misses     atomic.Uint64
	collisions atomic.Uint64
	bypassed   atomic.Uint64
}

// NewLayoutCache creates a cache of up to capacity layouts made with fm.
func NewLayoutCache(fm *text.FontManager, capacity int) *LayoutCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LayoutCache{
		fm:      fm,
		entries: icache.NewSharded[uint64, *entry](capacity, icache.Uint64Hasher),
	}
}

// Layout returns the cached layout for the request or lays it out.
// Layouts made while a font was still loading are returned but not
// stored.
func (lc *LayoutCache) Layout(content []text.InlineContent, styles text.StyleResolver, c text.Constraints) (*text.Layout, error) {
	gen := lc.fm.Generation()
	key, ok := appendKey(nil, gen, content, styles, &c)
	if !ok {
		lc.bypassed.Add(1)
		text.Logger().Debug("text: layout cache bypassed")
		return text.LayoutText(lc.fm, content, styles, c)
	}

	h := hashKey(key)
	if e, found := lc.entries.Get(h); found {
		if bytes.Equal(e.key, key) {
			lc.hits.Add(1)
			text.Logger().Debug("text: layout cache hit", "hash", h)
			return e.layout, nil
		}
		lc.collisions.Add(1)
		text.Logger().Debug("text: layout cache collision", "hash", h)
	}
	lc.misses.Add(1)

	l, err := text.LayoutText(lc.fm, content, styles, c)
	if err != nil {
		return nil, err
	}
	// A font that changed during layout may have been half used.
	if l.Pending || lc.fm.Generation() != gen {
		return l, nil
	}
	lc.entries.Set(h, &entry{key: key, layout: l})
	return l, nil
}

// Stats returns the cache counters.
func (lc *LayoutCache) Stats() Stats {
	s := lc.entries.Stats()
	return Stats{
		Len:        s.Len,
		Capacity:   s.Capacity,
		Hits:       lc.hits.Load(),
		Misses:     lc.misses.Load(),
		Evictions:  s.Evictions,
		Collisions: lc.collisions.Load(),
		Bypassed:   lc.bypassed.Load(),
	}
}

// Clear drops every cached layout. Counters are kept.
func (lc *LayoutCache) Clear() {
	lc.entries.Clear()
}
