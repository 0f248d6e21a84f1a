package text

import (
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"github.com/go-text/typesetting/language"
)

// scanLogger routes fontscan warnings to the package logger.
type scanLogger struct{}

func (scanLogger) Printf(format string, args ...any) {
	Logger().Debug("text: fontscan: " + fmt.Sprintf(format, args...))
}

// systemFonts is the last-resort fallback backed by the platform's
// installed fonts. fontscan.FontMap is not safe for concurrent use, so
// every query holds mu.
type systemFonts struct {
	mu      sync.Mutex
	fm      *fontscan.FontMap
	sources map[*font.Font]*FontSource
}

// newSystemFonts indexes the installed fonts. cacheDir holds the index;
// empty selects the user cache directory.
func newSystemFonts(cacheDir string) (*systemFonts, error) {
	fm := fontscan.NewFontMap(scanLogger{})
	if err := fm.UseSystemFonts(cacheDir); err != nil {
		return nil, fmt.Errorf("text: scan system fonts: %w", err)
	}
	fm.SetQuery(fontscan.Query{Families: []string{fontscan.SansSerif}})
	return &systemFonts{fm: fm, sources: make(map[*font.Font]*FontSource)}, nil
}

// resolve returns a system font covering r, or nil.
func (s *systemFonts) resolve(r rune, script language.Script) *FontSource {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fm.SetScript(script)
	face := s.fm.ResolveFace(r)
	if face == nil {
		return nil
	}
	if _, ok := face.NominalGlyph(r); !ok {
		return nil
	}
	if src, ok := s.sources[face.Font]; ok {
		return src
	}
	family, _ := s.fm.FontMetadata(face.Font)
	// The map keeps using its own face; the source pools fresh ones.
	src := newFontSource(font.NewFace(face.Font), sourceConfig{name: family})
	s.sources[face.Font] = src
	Logger().Debug("text: system fallback", "family", src.Name(), "rune", string(r))
	return src
}
