package text

import (
	"math"
	"os"
	"strings"
	"testing"
)

func TestJoins(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
		want          bool
	}{
		{"dual to dual", "ب", "ت", true},
		{"dual to right", "ب", "ا", true},
		{"right joining alef", "ا", "ب", false},
		{"hamza", "ء", "ب", false},
		{"mark skipped", "ب\u064E", "ت", true},
		{"tatweel", "\u0640", "ب", true},
		{"space", "ب", " ", false},
		{"zwnj", "ب\u200C", "ت", false},
		{"latin", "a", "b", false},
		{"empty", "", "ب", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joins(tt.before, tt.after); got != tt.want {
				t.Errorf("joins(%q, %q) = %v, want %v", tt.before, tt.after, got, tt.want)
			}
		})
	}
}

// arabicManager adds Amiri to the test fonts as "Amiri".
func arabicManager(t *testing.T) (*FontManager, *FontSource) {
	t.Helper()

	data, err := os.ReadFile("testdata/Amiri-Regular.ttf")
	if err != nil {
		t.Fatalf("read Amiri: %v", err)
	}
	src, err := NewFontSource(data)
	if err != nil {
		t.Fatalf("parse Amiri: %v", err)
	}
	fm := testManager(t)
	fm.Register("Amiri", src)
	return fm, src
}

func TestLayoutText_Kashida(t *testing.T) {
	fm, amiri := arabicManager(t)
	gid, ok := glyphFor(amiri, tatweel)
	if !ok {
		t.Fatal("Amiri has no tatweel")
	}
	styles := StyleSheet{"": {Family: "Amiri", Size: 20, TabSize: 8}}
	content := runs(strings.Repeat("كتب سهل جميل ", 12))

	for _, mode := range []Justification{JustifyInterCharacter, JustifyDistribute} {
		t.Run(mode.String(), func(t *testing.T) {
			l, err := LayoutText(fm, content, styles, Constraints{Width: 160, Align: AlignJustify, Justify: mode})
			if err != nil {
				t.Fatalf("LayoutText failed: %v", err)
			}
			if len(l.Lines) < 2 {
				t.Fatalf("expected several lines, got %d", len(l.Lines))
			}
			kashidas := 0
			for i, line := range l.Lines[:len(l.Lines)-1] {
				for _, it := range line.Items {
					stretch, drawn := it.Width-it.Advance, 0.0
					for _, g := range it.Glyphs {
						if g.Kind != GlyphKashida {
							continue
						}
						kashidas++
						drawn += g.Advance
						if g.ID != GlyphID(gid) || g.Cluster != it.Start {
							t.Errorf("line %d: kashida glyph %+v, want tatweel of cluster %d", i, g, it.Start)
						}
					}
					if drawn > 0 && math.Abs(drawn-stretch) > 1e-6 {
						t.Errorf("line %d: kashida covers %f of %f", i, drawn, stretch)
					}
					// Joined letters never get blank space between them.
					if mode == JustifyInterCharacter && stretch > eps && drawn == 0 {
						t.Errorf("line %d: item %d-%d stretched by %f without kashida", i, it.Start, it.End, stretch)
					}
				}
			}
			if kashidas == 0 {
				t.Error("no kashida inserted")
			}
		})
	}
}

func TestLayoutText_KashidaNotInLatin(t *testing.T) {
	fm := testManager(t)
	l := mustLayout(t, fm, runs(lorem), Constraints{Width: 200, Align: AlignJustify, Justify: JustifyDistribute})
	for _, line := range l.Lines {
		for _, it := range line.Items {
			for _, g := range it.Glyphs {
				if g.Kind == GlyphKashida {
					t.Fatalf("kashida in Latin text at %d", it.Start)
				}
			}
		}
	}
}
