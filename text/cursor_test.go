package text

import (
	"math"
	"testing"
)

// helloLayout lays out "Hello World" on two lines: "Hello " and "World".
func helloLayout(t *testing.T) *Layout {
	t.Helper()

	l := mustLayout(t, testManager(t), runs("Hello World"), Constraints{Width: 60})
	if len(l.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(l.Lines))
	}
	return l
}

func TestCursorToRect(t *testing.T) {
	l := helloLayout(t)
	line := l.Lines[0]

	r, ok := l.CursorToRect(Cursor{Offset: 0})
	if !ok {
		t.Fatal("offset 0 has no caret")
	}
	if math.Abs(r.MinX-line.Items[0].X) > eps || math.Abs(r.Width()-1) > eps {
		t.Errorf("caret = %+v, want x=%f width 1", r, line.Items[0].X)
	}
	if math.Abs(r.MinY-line.Rect.MinY) > eps || math.Abs(r.Height()-line.Height()) > eps {
		t.Errorf("caret = %+v, want the line box %+v", r, line.Rect)
	}

	// Offset 1 sits after "H".
	r, _ = l.CursorToRect(Cursor{Offset: 1})
	if want := line.Items[1].X; math.Abs(r.MinX-want) > eps {
		t.Errorf("caret at 1: x=%f, want %f", r.MinX, want)
	}

	// The wrap offset belongs to either line depending on affinity.
	lead, _ := l.CursorToRect(Cursor{Offset: 6, Affinity: AffinityLeading})
	trail, _ := l.CursorToRect(Cursor{Offset: 6, Affinity: AffinityTrailing})
	if lead.MinY <= trail.MinY {
		t.Errorf("leading caret %+v should be on the line below trailing %+v", lead, trail)
	}

	for _, off := range []int{-1, 12} {
		if _, ok := l.CursorToRect(Cursor{Offset: off}); ok {
			t.Errorf("offset %d should have no caret", off)
		}
	}
}

func TestPositionToCursor(t *testing.T) {
	l := helloLayout(t)
	first, second := l.Lines[0], l.Lines[1]
	midY := func(line Line) float64 { return (line.Rect.MinY + line.Rect.MaxY) / 2 }

	tests := []struct {
		name string
		p    Point
		want Cursor
	}{
		{"left of first line", Point{-50, midY(first)}, Cursor{0, AffinityLeading}},
		{"right of first line", Point{500, midY(first)}, Cursor{6, AffinityTrailing}},
		{"above everything", Point{-50, -100}, Cursor{0, AffinityLeading}},
		{"start of second line", Point{-1, midY(second)}, Cursor{6, AffinityLeading}},
		{"below everything", Point{500, 1000}, Cursor{11, AffinityTrailing}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.PositionToCursor(tt.p); got != tt.want {
				t.Errorf("PositionToCursor(%v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}

	// Every caret of the first word maps back to itself.
	for off := 0; off <= 5; off++ {
		r, ok := l.CursorToRect(Cursor{Offset: off})
		if !ok {
			t.Fatalf("no caret at %d", off)
		}
		got := l.PositionToCursor(Point{r.MinX + 0.5, midY(first)})
		if got.Offset != off {
			t.Errorf("round trip of %d gave %d", off, got.Offset)
		}
	}
}

func TestMoveLeftRight(t *testing.T) {
	l := helloLayout(t)

	// The wrap offset is visited twice: at the end of the first line and
	// at the start of the second.
	want := []int{1, 2, 3, 4, 5, 6, 6, 7, 8, 9, 10, 11}
	c := Cursor{Offset: 0}
	for i, w := range want {
		c = l.MoveRight(c)
		if c.Offset != w {
			t.Fatalf("MoveRight step %d = %+v, want offset %d", i, c, w)
		}
	}
	if c2 := l.MoveRight(c); c2 != c {
		t.Errorf("MoveRight at the end moved to %+v", c2)
	}

	for i := 0; i < len(want); i++ {
		c = l.MoveLeft(c)
	}
	if c.Offset != 0 {
		t.Errorf("MoveLeft back to %d, want 0", c.Offset)
	}
}

func TestMoveRight_Graphemes(t *testing.T) {
	l := mustLayout(t, testManager(t), runs("e\u0301x"), Constraints{Width: 200})

	c := l.MoveRight(Cursor{Offset: 0})
	if c.Offset != 3 {
		t.Errorf("MoveRight over e+acute went to %d, want 3", c.Offset)
	}
}

func TestMoveLeftRight_RTL(t *testing.T) {
	l := mustLayout(t, testManager(t), runs("אבג"), Constraints{Width: 200})

	// Moving right in an RTL run walks backwards through the text.
	c := l.MoveRight(Cursor{Offset: 4})
	if c.Offset != 2 {
		t.Errorf("MoveRight from 4 went to %d, want 2", c.Offset)
	}
	c = l.MoveLeft(Cursor{Offset: 4})
	if c.Offset != 6 {
		t.Errorf("MoveLeft from 4 went to %d, want 6", c.Offset)
	}
}

func TestMoveUpDown(t *testing.T) {
	l := helloLayout(t)

	down := l.MoveDown(Cursor{Offset: 0})
	if down.Offset != 6 {
		t.Errorf("MoveDown from 0 = %+v, want offset 6", down)
	}
	up := l.MoveUp(down)
	if up.Offset != 0 {
		t.Errorf("MoveUp = %+v, want offset 0", up)
	}
	if got := l.MoveUp(Cursor{Offset: 2}); got.Offset != 0 {
		t.Errorf("MoveUp on the first line = %+v, want 0", got)
	}
	if got := l.MoveDown(Cursor{Offset: 8}); got.Offset != 11 {
		t.Errorf("MoveDown on the last line = %+v, want 11", got)
	}
}

func TestLineStartEnd(t *testing.T) {
	l := helloLayout(t)

	if got := l.LineStart(Cursor{Offset: 3}); got.Offset != 0 {
		t.Errorf("LineStart = %+v", got)
	}
	if got := l.LineEnd(Cursor{Offset: 3}); got != (Cursor{6, AffinityTrailing}) {
		t.Errorf("LineEnd = %+v", got)
	}
	if got := l.LineStart(Cursor{Offset: 8}); got.Offset != 6 {
		t.Errorf("LineStart on line 2 = %+v", got)
	}

	// LineEnd stops before a forced break.
	fb := mustLayout(t, testManager(t), []InlineContent{TextRun{Text: "ab"}, ForcedBreak{}, TextRun{Text: "cd"}}, Constraints{Width: 200})
	if got := fb.LineEnd(Cursor{Offset: 1}); got.Offset != 2 {
		t.Errorf("LineEnd before break = %+v, want 2", got)
	}
}

func TestSelectionRects(t *testing.T) {
	l := helloLayout(t)

	rects := l.SelectionRects(0, 11)
	if len(rects) != 2 {
		t.Fatalf("expected one rect per line, got %d", len(rects))
	}
	if rects[1].MinY < rects[0].MaxY-eps {
		t.Errorf("rects overlap: %+v %+v", rects[0], rects[1])
	}

	rects = l.SelectionRects(1, 3)
	if len(rects) != 1 {
		t.Fatalf("expected 1 rect, got %d", len(rects))
	}
	items := l.Lines[0].Items
	want := items[1].Width + items[2].Width
	if math.Abs(rects[0].Width()-want) > eps || math.Abs(rects[0].MinX-items[1].X) > eps {
		t.Errorf("selection = %+v, want x=%f width %f", rects[0], items[1].X, want)
	}

	if rects := l.SelectionRects(3, 3); len(rects) != 0 {
		t.Errorf("empty range selected %v", rects)
	}
}

func TestGlyphSources(t *testing.T) {
	fm := testManager(t)
	content := []InlineContent{
		TextRun{Text: "ab"},
		InlineObject{Width: 10, Height: 10},
		TextRun{Text: "c", Style: "mono"},
	}
	l := mustLayout(t, fm, content, Constraints{Width: 200})

	srcs := l.GlyphSources()
	if len(srcs) != 4 {
		t.Fatalf("expected 4 sources, got %d", len(srcs))
	}
	if srcs[2].Kind != KindObject || srcs[2].Offset != 2 || srcs[2].End != 5 {
		t.Errorf("object source = %+v", srcs[2])
	}
	if srcs[3].Style == nil || srcs[3].Style.Family != "Go Mono" {
		t.Errorf("last source style = %+v", srcs[3].Style)
	}
	for i := 1; i < len(srcs); i++ {
		if srcs[i].X <= srcs[i-1].X {
			t.Errorf("sources not in visual order at %d", i)
		}
	}
}
