package text

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-text/typesetting/font"
)

// sourceIDs hands out FontSource identities for cache keys.
var sourceIDs atomic.Uint64

// FontSource is a parsed font file. It is heavyweight and meant to be
// shared by every layout that uses the font.
//
// FontSource is safe for concurrent use: the parsed font is read-only,
// coverage is memoized behind a read-mostly lock, and the
// non-thread-safe go-text faces are pooled.
// FontSource must not be copied after creation (enforced by copyCheck).
type FontSource struct {
	// addr is used for copy protection (Ebitengine pattern).
	// It must point to the FontSource itself.
	addr *FontSource

	id   uint64
	name string
	font *font.Font

	faces    sync.Pool
	coverage *CoverageMap

	// Unscaled metrics in font units; descender is positive.
	upem      float64
	ascender  float64
	descender float64
	lineGap   float64
	xHeight   float64
}

// NewFontSource parses font data (TTF or OTF).
// The data is read during the call and can be reused afterwards.
func NewFontSource(data []byte, opts ...SourceOption) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	config := defaultSourceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	return newFontSource(face, config), nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string, opts ...SourceOption) (*FontSource, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font file: %w", err)
	}
	return NewFontSource(data, opts...)
}

// newFontSource wraps an already parsed face. The face itself is the
// first pooled face.
func newFontSource(face *font.Face, config sourceConfig) *FontSource {
	f := face.Font
	s := &FontSource{
		id:       sourceIDs.Add(1),
		name:     config.name,
		font:     f,
		coverage: NewCoverageMap(),
		upem:     float64(f.Upem()),
	}
	s.addr = s
	s.faces.New = func() any { return font.NewFace(f) }
	if s.name == "" {
		s.name = f.Describe().Family
	}
	if s.name == "" {
		s.name = "Unknown Font"
	}
	if s.upem <= 0 {
		s.upem = 1000
	}
	if ext, ok := face.FontHExtents(); ok {
		s.ascender = float64(ext.Ascender)
		s.descender = -float64(ext.Descender)
		s.lineGap = float64(ext.LineGap)
	} else {
		s.ascender, s.descender = 0.8*s.upem, 0.2*s.upem
	}
	s.xHeight = float64(face.LineMetric(font.XHeight))
	if s.xHeight <= 0 {
		s.xHeight = 0.5 * s.upem
	}
	s.faces.Put(face)
	return s
}

// ID returns a process-unique identity for the source.
func (s *FontSource) ID() uint64 {
	s.copyCheck()
	return s.id
}

// Name returns the font family name, or the name given with WithName.
func (s *FontSource) Name() string {
	s.copyCheck()
	return s.name
}

// Covers reports whether the font maps r to a glyph.
func (s *FontSource) Covers(r rune) bool {
	s.copyCheck()
	return s.coverage.Lookup(r, func(r rune) bool {
		_, ok := s.font.NominalGlyph(r)
		return ok
	})
}

// CoveredPrefix returns how many leading runes the font covers.
// Default-ignorable format characters count as covered.
func (s *FontSource) CoveredPrefix(runes []rune) int {
	for i, r := range runes {
		if !isDefaultIgnorable(r) && !s.Covers(r) {
			return i
		}
	}
	return len(runes)
}

// Metrics returns the font's line metrics at size pixels.
func (s *FontSource) Metrics(size float64) Metrics {
	s.copyCheck()
	scale := size / s.upem
	return Metrics{
		Ascent:  s.ascender * scale,
		Descent: s.descender * scale,
		LineGap: s.lineGap * scale,
		XHeight: s.xHeight * scale,
	}
}

// HasVerticalMetrics reports whether the font carries a vmtx table.
func (s *FontSource) HasVerticalMetrics() bool {
	return s.font.HasVerticalMetrics()
}

// acquireFace takes a go-text face from the pool. Faces are not safe for
// concurrent use; return it with releaseFace.
func (s *FontSource) acquireFace() *font.Face {
	return s.faces.Get().(*font.Face)
}

func (s *FontSource) releaseFace(f *font.Face) {
	s.faces.Put(f)
}

// copyCheck panics if FontSource was copied by value.
// This is the Ebitengine pattern for preventing accidental copies.
func (s *FontSource) copyCheck() {
	if s.addr != s {
		panic("text: FontSource must not be copied by value")
	}
}
