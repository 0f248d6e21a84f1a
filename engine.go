package textflow

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/gogpu/textflow/text"
	"github.com/gogpu/textflow/text/cache"
)

// Engine bundles a font manager with a layout cache. One Engine is meant
// to be shared by every window or document of a process.
//
// Engine is safe for concurrent use.
type Engine struct {
	fonts *text.FontManager
	cache *cache.LayoutCache
}

// New creates an Engine with an empty font manager.
func New(opts ...EngineOption) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	fm := text.NewFontManager(o.manager...)
	return &Engine{
		fonts: fm,
		cache: cache.NewLayoutCache(fm, o.cacheCapacity),
	}
}

// Fonts returns the engine's font manager for registering and loading
// fonts.
func (e *Engine) Fonts() *text.FontManager {
	return e.fonts
}

// Layout lays out one paragraph sequence, reusing a cached result for an
// identical request. The returned layout may be shared and must not be
// modified.
func (e *Engine) Layout(content []text.InlineContent, styles text.StyleResolver, c text.Constraints) (*text.Layout, error) {
	return e.cache.Layout(content, styles, c)
}

// LayoutParagraphs lays out independent paragraphs concurrently under
// the same constraints. Results are in input order. Paragraphs not
// started before ctx is done are left nil and ctx's error is returned.
func (e *Engine) LayoutParagraphs(ctx context.Context, paragraphs [][]text.InlineContent, styles text.StyleResolver, c text.Constraints) ([]*text.Layout, error) {
	out := make([]*text.Layout, len(paragraphs))
	errs := make([]error, len(paragraphs))

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i, p := range paragraphs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return out, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return out, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			l, err := e.cache.Layout(p, styles, c)
			if err != nil {
				errs[i] = fmt.Errorf("textflow: paragraph %d: %w", i, err)
				return
			}
			out[i] = l
		}()
	}
	wg.Wait()
	return out, errors.Join(errs...)
}

// CacheStats reports the layout cache counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// GlyphCacheStats reports the shared glyph cache counters.
func (e *Engine) GlyphCacheStats() text.CacheStats {
	return e.fonts.GlyphCache().Stats()
}
