package textflow

import (
	"github.com/go-text/typesetting/language"

	"github.com/gogpu/textflow/text"
	"github.com/gogpu/textflow/text/cache"
)

// EngineOption configures an Engine during creation.
//
// Example:
//
//	e := textflow.New(
//	    textflow.WithCacheCapacity(1024),
//	    textflow.WithFallback(language.Arabic, "Noto Naskh Arabic"),
//	)
type EngineOption func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	cacheCapacity int
	manager       []text.ManagerOption
}

// defaultEngineOptions returns the default engine options.
func defaultEngineOptions() engineOptions {
	return engineOptions{cacheCapacity: cache.DefaultCapacity}
}

// WithCacheCapacity bounds the number of memoized layouts.
func WithCacheCapacity(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.cacheCapacity = n
		}
	}
}

// WithGlyphCacheEntries bounds the shared glyph metrics cache.
func WithGlyphCacheEntries(n int) EngineOption {
	return func(o *engineOptions) {
		o.manager = append(o.manager, text.WithGlyphCacheEntries(n))
	}
}

// WithFallback sets the font families tried for runs of script after
// the style's own family.
func WithFallback(script language.Script, families ...string) EngineOption {
	return func(o *engineOptions) {
		o.manager = append(o.manager, text.WithFallback(script, families...))
	}
}

// WithDefaultFallback sets the fallback families for scripts without a
// chain of their own.
func WithDefaultFallback(families ...string) EngineOption {
	return func(o *engineOptions) {
		o.manager = append(o.manager, text.WithDefaultFallback(families...))
	}
}

// WithSystemFonts enables installed fonts as the last fallback. cacheDir
// holds the font index; empty selects the user cache directory.
//
// Scanning happens once, in New.
func WithSystemFonts(cacheDir string) EngineOption {
	return func(o *engineOptions) {
		o.manager = append(o.manager, text.WithSystemFonts(cacheDir))
	}
}
