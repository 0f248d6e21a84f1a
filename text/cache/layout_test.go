package cache

import (
	"context"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/textflow/text"
)

func testManager(t *testing.T) *text.FontManager {
	t.Helper()

	fm := text.NewFontManager()
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("failed to create font source: %v", err)
	}
	fm.Register("Go", src)
	return fm
}

func testStyles() text.StyleSheet {
	return text.StyleSheet{
		"":    {Family: "Go", Size: 16},
		"big": {Family: "Go", Size: 24},
	}
}

func content(s string) []text.InlineContent {
	return []text.InlineContent{text.TextRun{Text: s}}
}

func mustLayout(t *testing.T, lc *LayoutCache, c []text.InlineContent, styles text.StyleResolver, cons text.Constraints) *text.Layout {
	t.Helper()

	l, err := lc.Layout(c, styles, cons)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	return l
}

func TestLayoutCache_Hit(t *testing.T) {
	lc := NewLayoutCache(testManager(t), 0)
	cons := text.Constraints{Width: 120}

	first := mustLayout(t, lc, content("Hello World"), testStyles(), cons)
	second := mustLayout(t, lc, content("Hello World"), testStyles(), cons)

	if first != second {
		t.Error("second identical request did not return the cached layout")
	}
	st := lc.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Len != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 entry", st)
	}
	if st.Capacity < DefaultCapacity {
		t.Errorf("Capacity = %d, want at least %d", st.Capacity, DefaultCapacity)
	}
}

// TestLayoutCache_Soundness changes one input field at a time; none of
// the variants may reuse the base layout.
func TestLayoutCache_Soundness(t *testing.T) {
	fm := testManager(t)
	lc := NewLayoutCache(fm, 0)
	baseCons := text.Constraints{
		Width:      200,
		Exclusions: []text.Shape{text.Rectangle{X: 0, Y: 0, W: 20, H: 20}},
	}
	base := mustLayout(t, lc, content("Hello World"), testStyles(), baseCons)

	bigger := testStyles()
	bigger[""] = text.Style{Family: "Go", Size: 17}
	spaced := testStyles()
	spaced[""] = text.Style{Family: "Go", Size: 16, LetterSpacing: 0.5}
	featured := testStyles()
	featured[""] = text.Style{Family: "Go", Size: 16, Features: []string{"-kern"}}

	variants := []struct {
		name   string
		c      []text.InlineContent
		styles text.StyleResolver
		cons   text.Constraints
	}{
		{"character", content("Hello Warld"), testStyles(), baseCons},
		{"style size", content("Hello World"), bigger, baseCons},
		{"letter spacing", content("Hello World"), spaced, baseCons},
		{"features", content("Hello World"), featured, baseCons},
		{"style handle", []text.InlineContent{text.TextRun{Text: "Hello World", Style: "big"}}, testStyles(), baseCons},
		{"run split", []text.InlineContent{text.TextRun{Text: "Hello "}, text.TextRun{Text: "World"}}, testStyles(), baseCons},
		{"width", content("Hello World"), testStyles(), text.Constraints{Width: 201, Exclusions: baseCons.Exclusions}},
		{"exclusion", content("Hello World"), testStyles(), text.Constraints{
			Width:      200,
			Exclusions: []text.Shape{text.Rectangle{X: 0, Y: 0, W: 21, H: 20}},
		}},
		{"alignment", content("Hello World"), testStyles(), text.Constraints{
			Width: 200, Exclusions: baseCons.Exclusions, Align: text.AlignCenter,
		}},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			l := mustLayout(t, lc, v.c, v.styles, v.cons)
			if l == base {
				t.Error("variant reused the base layout")
			}
		})
	}
	if st := lc.Stats(); st.Hits != 0 {
		t.Errorf("Hits = %d, want 0", st.Hits)
	}
}

func TestLayoutCache_Collision(t *testing.T) {
	fm := testManager(t)
	lc := NewLayoutCache(fm, 0)
	cons := text.Constraints{Width: 100}
	c := content("abc")

	// Plant a foreign entry under the request's hash.
	key, ok := appendKey(nil, fm.Generation(), c, testStyles(), &cons)
	if !ok {
		t.Fatal("request could not be encoded")
	}
	bogus := &text.Layout{}
	lc.entries.Set(hashKey(key), &entry{key: []byte("something else"), layout: bogus})

	l := mustLayout(t, lc, c, testStyles(), cons)
	if l == bogus {
		t.Fatal("colliding entry was returned")
	}
	if len(l.Lines) != 1 {
		t.Errorf("got %d lines, want 1", len(l.Lines))
	}
	if st := lc.Stats(); st.Collisions != 1 {
		t.Errorf("Collisions = %d, want 1", st.Collisions)
	}
	// The real layout replaced the foreign entry.
	if again := mustLayout(t, lc, c, testStyles(), cons); again != l {
		t.Error("second request missed after the collision was resolved")
	}
}

func TestLayoutCache_FontChangeInvalidates(t *testing.T) {
	fm := testManager(t)
	lc := NewLayoutCache(fm, 0)
	cons := text.Constraints{Width: 100}

	before := mustLayout(t, lc, content("abc"), testStyles(), cons)

	src, err := text.NewFontSource(gomono.TTF)
	if err != nil {
		t.Fatal(err)
	}
	fm.Register("Go", src)

	after := mustLayout(t, lc, content("abc"), testStyles(), cons)
	if after == before {
		t.Error("layout survived a font change")
	}
}

func TestLayoutCache_PendingNotStored(t *testing.T) {
	fm := testManager(t)
	release := make(chan struct{})
	h := fm.LoadAsyncFunc(context.Background(), "Slow", func(context.Context) ([]byte, error) {
		<-release
		return gomono.TTF, nil
	})
	defer func() {
		close(release)
		_ = h.Wait(context.Background())
	}()

	lc := NewLayoutCache(fm, 0)
	styles := text.StyleSheet{"": {Family: "Slow", Size: 16}}
	cons := text.Constraints{Width: 100}

	first := mustLayout(t, lc, content("abc"), styles, cons)
	if !first.Pending {
		t.Fatal("layout with a loading font is not pending")
	}
	second := mustLayout(t, lc, content("abc"), styles, cons)
	if first == second {
		t.Error("pending layout was cached")
	}
	if st := lc.Stats(); st.Len != 0 {
		t.Errorf("Len = %d, want 0", st.Len)
	}
}

func TestLayoutCache_Bypass(t *testing.T) {
	lc := NewLayoutCache(testManager(t), 0)
	cons := text.Constraints{
		Width:      200,
		Exclusions: []text.Shape{text.NewPolygon(0, 0, 20, 0, 20, 20).Inflate(2)},
	}

	a := mustLayout(t, lc, content("abc"), testStyles(), cons)
	b := mustLayout(t, lc, content("abc"), testStyles(), cons)
	if a == b {
		t.Error("unencodable request was cached")
	}
	if st := lc.Stats(); st.Bypassed != 2 {
		t.Errorf("Bypassed = %d, want 2", st.Bypassed)
	}
}

func TestLayoutCache_Eviction(t *testing.T) {
	lc := NewLayoutCache(testManager(t), 1)
	cons := text.Constraints{Width: 100}

	a := mustLayout(t, lc, content("a"), testStyles(), cons)
	mustLayout(t, lc, content("b"), testStyles(), cons)
	if again := mustLayout(t, lc, content("a"), testStyles(), cons); again == a {
		t.Error("evicted layout was returned")
	}
	if st := lc.Stats(); st.Evictions == 0 {
		t.Error("no evictions recorded")
	}

	lc.Clear()
	if st := lc.Stats(); st.Len != 0 {
		t.Errorf("Len after Clear() = %d", st.Len)
	}
}

func TestLayoutCache_InvalidConstraints(t *testing.T) {
	lc := NewLayoutCache(testManager(t), 0)
	if _, err := lc.Layout(content("a"), testStyles(), text.Constraints{}); err == nil {
		t.Error("zero width accepted")
	}
	if st := lc.Stats(); st.Len != 0 {
		t.Errorf("failed layout was stored: %+v", st)
	}
}

func TestAppendKey(t *testing.T) {
	styles := testStyles()
	cons := &text.Constraints{Width: 10}
	key := func(gen uint64, c []text.InlineContent, cons *text.Constraints) string {
		k, ok := appendKey(nil, gen, c, styles, cons)
		if !ok {
			t.Fatal("appendKey failed")
		}
		return string(k)
	}

	ab := key(1, []text.InlineContent{text.TextRun{Text: "ab"}, text.TextRun{Text: "c"}}, cons)
	bc := key(1, []text.InlineContent{text.TextRun{Text: "a"}, text.TextRun{Text: "bc"}}, cons)
	if ab == bc {
		t.Error("run boundaries do not change the key")
	}
	if key(1, content("x"), cons) != key(1, content("x"), &text.Constraints{Width: 10}) {
		t.Error("equal requests encode differently")
	}
	if key(1, content("x"), cons) == key(2, content("x"), cons) {
		t.Error("generation does not change the key")
	}

	path := text.NewPath().MoveTo(0, 0).LineTo(10, 0).QuadraticTo(10, 10, 0, 10).Close()
	withPath := &text.Constraints{Boundary: path}
	other := text.NewPath().MoveTo(0, 0).LineTo(10, 0).QuadraticTo(10, 11, 0, 10).Close()
	if key(1, content("x"), withPath) == key(1, content("x"), &text.Constraints{Boundary: other}) {
		t.Error("path control points do not change the key")
	}
}
