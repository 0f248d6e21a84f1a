package text

import (
	"math"

	"github.com/go-text/typesetting/font"

	"github.com/gogpu/textflow/internal/cache"
)

// DefaultGlyphCacheEntries is the glyph cache capacity used when none is
// configured.
const DefaultGlyphCacheEntries = 4096

// CacheStats reports cache occupancy and hit counts.
type CacheStats = cache.Stats

// GlyphKey identifies one glyph of one font at one size.
type GlyphKey struct {
	FontID uint64
	GID    GlyphID
	// SizeBits is the float32 bit pattern of the size in pixels.
	SizeBits uint32
}

// GlyphMetrics are per-glyph advances scaled to a size.
type GlyphMetrics struct {
	Advance  float64 // horizontal advance
	VAdvance float64 // vertical advance, positive downward
	// HasVertical is false when VAdvance is the line-height approximation.
	HasVertical bool
}

// GlyphCache is a shared bounded cache of glyph metrics. It is used for metrics the
// shaper does not return: vertical advances, the synthetic hyphen and
// missing-glyph boxes.
//
// GlyphCache is safe for concurrent use.
type GlyphCache struct {
	c *cache.Sharded[GlyphKey, GlyphMetrics]
}

// NewGlyphCache creates a glyph cache holding about entries glyphs.
func NewGlyphCache(entries int) *GlyphCache {
	if entries <= 0 {
		entries = DefaultGlyphCacheEntries
	}
	return &GlyphCache{c: cache.NewSharded[GlyphKey, GlyphMetrics](entries, hashGlyphKey)}
}

func hashGlyphKey(k GlyphKey) uint64 {
	h := k.FontID*0x9E3779B97F4A7C15 ^ uint64(k.GID)<<32 ^ uint64(k.SizeBits)
	h ^= h >> 29
	return h * 0xBF58476D1CE4E5B9
}

// Metrics returns the metrics of gid in src at size, computing them on a miss.
func (g *GlyphCache) Metrics(src *FontSource, gid GlyphID, size float64) GlyphMetrics {
	key := GlyphKey{FontID: src.ID(), GID: gid, SizeBits: math.Float32bits(float32(size))}
	return g.c.GetOrCreate(key, func() GlyphMetrics {
		face := src.acquireFace()
		defer src.releaseFace(face)

		scale := size / src.upem
		m := GlyphMetrics{Advance: engineAdvance(face.HorizontalAdvance(font.GID(gid)), size, src.upem)}
		if src.HasVerticalMetrics() {
			m.VAdvance = -float64(face.VerticalAdvance(font.GID(gid))) * scale
			m.HasVertical = true
		} else {
			fm := src.Metrics(size)
			m.VAdvance = fm.Ascent + fm.Descent
		}
		return m
	})
}

// Stats returns the cache counters.
func (g *GlyphCache) Stats() CacheStats {
	return g.c.Stats()
}

// Clear empties the cache.
func (g *GlyphCache) Clear() {
	g.c.Clear()
}
