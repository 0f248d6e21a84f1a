package text

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-text/typesetting/language"
)

// LoadState is the lifecycle state of a font family.
type LoadState int

const (
	// LoadUnknown means the family was never registered or requested.
	LoadUnknown LoadState = iota
	// LoadLoading means an asynchronous load is in flight.
	LoadLoading
	// LoadReady means the family can be used.
	LoadReady
	// LoadFailed means the last load attempt failed.
	LoadFailed
)

// String returns the string representation of the state.
func (s LoadState) String() string {
	switch s {
	case LoadUnknown:
		return unknownStr
	case LoadLoading:
		return "Loading"
	case LoadReady:
		return "Ready"
	case LoadFailed:
		return "Failed"
	default:
		return unknownStr
	}
}

type familyEntry struct {
	source *FontSource
	state  LoadState
	err    error
	done   chan struct{} // closed when a load finishes
}

// FontManager owns the fonts, fallback chains, glyph cache and shaper
// shared by every layout call.
//
// FontManager is safe for concurrent use. Lookups during layout take only
// the read lock; registration and load completion take the write lock
// briefly. Loading from disk never happens inside layout: a family that is
// still loading is reported as pending and skipped.
type FontManager struct {
	mu              sync.RWMutex
	families        map[string]*familyEntry // keyed by folded family name
	order           []string                // registration order
	fallbacks       map[language.Script][]string
	defaultFallback []string

	system *systemFonts
	glyphs *GlyphCache
	shaper *Shaper

	generation atomic.Uint64
}

// NewFontManager creates an empty manager.
// A system-font scan failure requested with WithSystemFonts is logged and
// leaves the system fallback disabled.
func NewFontManager(opts ...ManagerOption) *FontManager {
	config := defaultManagerConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := &FontManager{
		families:        make(map[string]*familyEntry),
		fallbacks:       config.fallbacks,
		defaultFallback: config.defaultFallback,
		glyphs:          NewGlyphCache(config.glyphEntries),
		shaper:          NewShaper(),
	}
	if config.systemFonts {
		if err := m.UseSystemFonts(config.systemCacheDir); err != nil {
			Logger().Warn("text: system fonts unavailable", "err", err)
		}
	}
	return m
}

func foldFamily(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// Register makes src available under family. An empty family uses the
// font's own name. Registering an existing family replaces it.
// The first registered family is the default for styles without one.
func (m *FontManager) Register(family string, src *FontSource) {
	if family == "" {
		family = src.Name()
	}
	key := foldFamily(family)

	m.mu.Lock()
	e, ok := m.families[key]
	if !ok {
		e = &familyEntry{done: make(chan struct{})}
		m.families[key] = e
		m.order = append(m.order, key)
	}
	e.source, e.state, e.err = src, LoadReady, nil
	m.finishLocked(e)
	m.mu.Unlock()

	m.generation.Add(1)
}

// finishLocked closes e.done if it is still open.
func (m *FontManager) finishLocked(e *familyEntry) {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// LoadFile synchronously loads and registers a font file.
func (m *FontManager) LoadFile(family, path string, opts ...SourceOption) error {
	src, err := NewFontSourceFromFile(path, opts...)
	if err != nil {
		return err
	}
	m.Register(family, src)
	return nil
}

// LoadHandle tracks one asynchronous font load.
type LoadHandle struct {
	family string
	done   chan struct{}
	err    error
}

// Family returns the family being loaded.
func (h *LoadHandle) Family() string { return h.family }

// Done is closed when the load finishes.
func (h *LoadHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the load finishes or ctx is done and returns the
// load error.
func (h *LoadHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadAsync reads and parses a font file in the background. Until it
// finishes, State reports LoadLoading and layouts using the family are
// marked Pending and rendered with the fallback chain.
func (m *FontManager) LoadAsync(ctx context.Context, family, path string, opts ...SourceOption) *LoadHandle {
	return m.LoadAsyncFunc(ctx, family, func(context.Context) ([]byte, error) {
		// #nosec G304 -- Font file path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("text: failed to read font file: %w", err)
		}
		return data, nil
	}, opts...)
}

// LoadAsyncFunc is LoadAsync with a caller-supplied byte source, such as
// a network fetch.
func (m *FontManager) LoadAsyncFunc(ctx context.Context, family string, load func(context.Context) ([]byte, error), opts ...SourceOption) *LoadHandle {
	key := foldFamily(family)
	h := &LoadHandle{family: family, done: make(chan struct{})}

	m.mu.Lock()
	e, ok := m.families[key]
	if !ok {
		e = &familyEntry{}
		m.families[key] = e
		m.order = append(m.order, key)
	}
	if e.state != LoadReady {
		e.state, e.err = LoadLoading, nil
		e.done = make(chan struct{})
	}
	m.mu.Unlock()

	go func() {
		defer close(h.done)
		var src *FontSource
		data, err := load(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			src, err = NewFontSource(data, opts...)
		}
		h.err = err

		m.mu.Lock()
		if err != nil {
			if e.source == nil {
				e.state = LoadFailed
			} else {
				e.state = LoadReady
			}
			e.err = err
		} else {
			e.source, e.state, e.err = src, LoadReady, nil
		}
		m.finishLocked(e)
		m.mu.Unlock()
		m.generation.Add(1)

		if err != nil {
			Logger().Warn("text: font load failed", "family", family, "err", err)
			return
		}
		Logger().Info("text: font loaded", "family", family, "name", src.Name())
	}()
	return h
}

// State reports the load state of family.
func (m *FontManager) State(family string) LoadState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.families[foldFamily(family)]; ok {
		return e.state
	}
	return LoadUnknown
}

// Await blocks until family finishes loading or ctx is done. It returns
// ErrUnknownFamily for a family that was never registered or requested.
func (m *FontManager) Await(ctx context.Context, family string) (*FontSource, error) {
	m.mu.RLock()
	e, ok := m.families[foldFamily(family)]
	var done chan struct{}
	if ok {
		done = e.done
	}
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	switch e.state {
	case LoadReady:
		return e.source, nil
	case LoadFailed:
		return nil, e.err
	default:
		return nil, &FontNotLoadedError{Family: family}
	}
}

// Source returns the font registered as family when it is ready.
func (m *FontManager) Source(family string) (*FontSource, LoadState) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.families[foldFamily(family)]
	if !ok {
		return nil, LoadUnknown
	}
	return e.source, e.state
}

// Families returns the registered family names, sorted.
func (m *FontManager) Families() []string {
	m.mu.RLock()
	out := append([]string(nil), m.order...)
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}

// SetFallback replaces the fallback chain for script.
func (m *FontManager) SetFallback(script language.Script, families ...string) {
	m.mu.Lock()
	m.fallbacks[script] = append([]string(nil), families...)
	m.mu.Unlock()
	m.generation.Add(1)
}

// SetDefaultFallback replaces the chain used for scripts without their own.
func (m *FontManager) SetDefaultFallback(families ...string) {
	m.mu.Lock()
	m.defaultFallback = append([]string(nil), families...)
	m.mu.Unlock()
	m.generation.Add(1)
}

// UseSystemFonts enables installed fonts as the last fallback.
func (m *FontManager) UseSystemFonts(cacheDir string) error {
	sys, err := newSystemFonts(cacheDir)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.system = sys
	m.mu.Unlock()
	m.generation.Add(1)
	return nil
}

// Generation changes whenever the set of fonts or a fallback chain
// changes. Layout caches include it in their keys.
func (m *FontManager) Generation() uint64 {
	return m.generation.Load()
}

// GlyphCache returns the shared glyph metrics cache.
func (m *FontManager) GlyphCache() *GlyphCache {
	return m.glyphs
}

// fontChain is the ordered list of fonts tried for one run.
type fontChain struct {
	primary *FontSource // nil when the style's family is unusable
	fonts   []*FontSource
	family  string // requested family
	pending bool   // the requested family is still loading
	system  *systemFonts
}

// chain resolves the fonts for family and script under one read lock.
func (m *FontManager) chain(family string, script language.Script) fontChain {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := fontChain{family: family, system: m.system}
	seen := make(map[*FontSource]bool)
	add := func(key string) *FontSource {
		e, ok := m.families[key]
		if !ok || e.source == nil || e.state != LoadReady || seen[e.source] {
			return nil
		}
		seen[e.source] = true
		c.fonts = append(c.fonts, e.source)
		return e.source
	}

	key := foldFamily(family)
	if key == "" && len(m.order) > 0 {
		key = m.order[0]
	}
	if e, ok := m.families[key]; ok && e.state == LoadLoading {
		c.pending = true
	}
	c.primary = add(key)

	chain, ok := m.fallbacks[script]
	if !ok {
		chain = m.defaultFallback
	}
	for _, f := range chain {
		add(foldFamily(f))
	}
	// Every registered font is a candidate of last resort.
	for _, k := range m.order {
		add(k)
	}
	return c
}
