package text

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Shaper turns runs of text into glyph clusters with go-text's HarfBuzz
// port. Lines are always shaped horizontally; vertical metrics are added
// afterwards by the orientation stage.
//
// Shaper is safe for concurrent use. HarfbuzzShaper keeps an internal
// buffer and is not, so instances are pooled.
type Shaper struct {
	pool sync.Pool
}

// NewShaper creates a Shaper.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// shapeRun is one run to shape. Text is the whole item so that context
// around [Start, End) is visible to the shaping engine.
type shapeRun struct {
	Source     *FontSource
	Text       []rune
	Start, End int // rune range in Text
	RTL        bool
	Script     language.Script
	Language   string
	Size       float64
	Features   []string
}

// shapedCluster is a cluster in rune coordinates of the run's Text.
type shapedCluster struct {
	Start, End int
	Glyphs     []Glyph
	Advance    float64
}

// shape shapes run and returns its clusters in logical order.
// Glyphs inside a cluster keep the engine's visual order. A panic inside
// the engine is returned as an error.
func (s *Shaper) shape(run shapeRun) (clusters []shapedCluster, err error) {
	if run.Start >= run.End {
		return nil, nil
	}
	face := run.Source.acquireFace()
	defer run.Source.releaseFace(face)

	dir := di.DirectionLTR
	if run.RTL {
		dir = di.DirectionRTL
	}
	input := shaping.Input{
		Text:         run.Text,
		RunStart:     run.Start,
		RunEnd:       run.End,
		Direction:    dir,
		Face:         face,
		FontFeatures: parseFeatures(run.Features),
		Size:         engineSize(run.Size),
		Script:       run.Script,
	}
	if run.Language != "" {
		input.Language = language.NewLanguage(run.Language)
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	defer func() {
		if r := recover(); r != nil {
			clusters = nil
			err = fmt.Errorf("shaping engine: %v", r)
		}
		s.pool.Put(hb)
	}()
	out := hb.Shape(input)
	if len(out.Glyphs) == 0 {
		return nil, fmt.Errorf("shaping engine returned no glyphs for %d runes", run.End-run.Start)
	}
	return groupClusters(out.Glyphs, run.End, engineFactor(run.Size)), nil
}

// groupClusters splits engine output into clusters, ordered by text index.
// k scales engine positions to the requested size.
func groupClusters(glyphs []shaping.Glyph, end int, k float64) []shapedCluster {
	var clusters []shapedCluster
	for i := 0; i < len(glyphs); {
		idx := glyphs[i].TextIndex()
		c := shapedCluster{Start: idx}
		for ; i < len(glyphs) && glyphs[i].TextIndex() == idx; i++ {
			g := glyphs[i]
			adv := fixedToFloat(g.Advance) * k
			c.Glyphs = append(c.Glyphs, Glyph{
				ID:      GlyphID(g.GlyphID),
				Advance: adv,
				XOffset: fixedToFloat(g.XOffset) * k,
				YOffset: -fixedToFloat(g.YOffset) * k,
			})
			c.Advance += adv
		}
		clusters = append(clusters, c)
	}
	// RTL output runs from the highest index down.
	if len(clusters) > 1 && clusters[0].Start > clusters[len(clusters)-1].Start {
		for a, b := 0, len(clusters)-1; a < b; a, b = a+1, b-1 {
			clusters[a], clusters[b] = clusters[b], clusters[a]
		}
	}
	for i := range clusters {
		if i+1 < len(clusters) {
			clusters[i].End = clusters[i+1].Start
		} else {
			clusters[i].End = end
		}
	}
	return clusters
}

// notdefClusters substitutes one missing-glyph box per grapheme of
// [start, end). graphemeStart marks grapheme boundaries in rune indices.
func notdefClusters(start, end int, graphemeStart []bool, size float64) []shapedCluster {
	adv := 0.5 * size
	var clusters []shapedCluster
	for i := start; i < end; {
		j := i + 1
		for j < end && !graphemeStart[j] {
			j++
		}
		clusters = append(clusters, shapedCluster{
			Start:   i,
			End:     j,
			Glyphs:  []Glyph{{ID: 0, Advance: adv, Kind: GlyphNotDef}},
			Advance: adv,
		})
		i = j
	}
	return clusters
}

// parseFeatures converts "tag", "tag=value", "+tag" and "-tag" settings.
// Malformed settings are ignored.
func parseFeatures(settings []string) []shaping.FontFeature {
	if len(settings) == 0 {
		return nil
	}
	out := make([]shaping.FontFeature, 0, len(settings))
	for _, s := range settings {
		s = strings.TrimSpace(s)
		value := uint32(1)
		switch {
		case strings.HasPrefix(s, "-"):
			s, value = s[1:], 0
		case strings.HasPrefix(s, "+"):
			s = s[1:]
		}
		if name, v, ok := strings.Cut(s, "="); ok {
			n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
			if err != nil {
				continue
			}
			s, value = strings.TrimSpace(name), uint32(n)
		}
		if len(s) == 0 || len(s) > 4 {
			continue
		}
		tag := []byte("    ")
		copy(tag, s)
		out = append(out, shaping.FontFeature{Tag: ot.NewTag(tag[0], tag[1], tag[2], tag[3]), Value: value})
	}
	return out
}

// glyphFor returns the nominal glyph of the first rune src maps.
func glyphFor(src *FontSource, runes ...rune) (font.GID, bool) {
	for _, r := range runes {
		if gid, ok := src.font.NominalGlyph(r); ok {
			return gid, true
		}
	}
	return 0, false
}

// engineSize is the size go-text shapes at: it scales fonts by the
// ceiling of the requested size.
func engineSize(size float64) fixed.Int26_6 {
	return fixed.I(int(max(math.Ceil(size), 1)))
}

// engineFactor scales engine positions back to the requested size.
func engineFactor(size float64) float64 {
	return size / max(math.Ceil(size), 1)
}

// engineAdvance converts a font-unit advance the way the shaper does:
// rounded to 26.6 at the engine size in float32, then rescaled.
func engineAdvance(units float32, size, upem float64) float64 {
	scale := int32(engineSize(size).Ceil()) << 6
	pos := math.Round(float64(units * float32(scale) / float32(int32(upem))))
	return pos / 64 * engineFactor(size)
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
