package text

import (
	"math"
	"sort"

	"github.com/go-text/typesetting/segmenter"
)

// Affinity says which side of Offset a caret belongs to when the offset
// sits on a boundary between two lines or two bidi runs.
type Affinity uint8

const (
	// AffinityLeading attaches the caret to the character starting at Offset.
	AffinityLeading Affinity = iota
	// AffinityTrailing attaches the caret to the character ending at Offset.
	AffinityTrailing
)

// String returns the string representation of the affinity.
func (a Affinity) String() string {
	switch a {
	case AffinityLeading:
		return "Leading"
	case AffinityTrailing:
		return "Trailing"
	default:
		return unknownStr
	}
}

// Cursor is a caret position: a view byte offset and its affinity.
type Cursor struct {
	Offset   int
	Affinity Affinity
}

// caretWidth is the thickness of the rectangle returned by CursorToRect.
const caretWidth = 1

// GlyphSource ties a positioned glyph (or object, or tab) back to the
// content that produced it.
type GlyphSource struct {
	// Offset and End delimit the source view bytes.
	Offset, End int
	Style       *Style
	Line        int
	X, Y        float64
	Glyph       GlyphID
	Kind        ItemKind
}

// GlyphSources lists every glyph, object and tab in visual order, line
// by line. Forced breaks produce no entry.
func (l *Layout) GlyphSources() []GlyphSource {
	var out []GlyphSource
	for li := range l.Lines {
		for _, it := range l.Lines[li].Items {
			if it.Kind == KindBreak {
				continue
			}
			if len(it.Glyphs) == 0 {
				out = append(out, GlyphSource{
					Offset: it.Start, End: it.End, Style: it.Style, Line: li,
					X: it.X, Y: it.Y, Kind: it.Kind,
				})
				continue
			}
			for _, g := range it.Glyphs {
				out = append(out, GlyphSource{
					Offset: it.Start, End: it.End, Style: it.Style, Line: li,
					X: g.X, Y: g.Y, Glyph: g.ID, Kind: it.Kind,
				})
			}
		}
	}
	return out
}

// vertical reports whether the inline axis is y.
func (l *Layout) vertical() bool { return l.WritingMode.IsVertical() }

// inlineSpan returns an item's extent along the inline axis.
func (l *Layout) inlineSpan(it *PositionedItem) (float64, float64) {
	if l.vertical() {
		return it.Y, it.Y + it.Width
	}
	return it.X, it.X + it.Width
}

// blockSpan returns a line's extent along the block axis.
func (l *Layout) blockSpan(line *Line) (float64, float64) {
	if l.vertical() {
		return line.Rect.MinX, line.Rect.MaxX
	}
	return line.Rect.MinY, line.Rect.MaxY
}

// split returns a point's inline and block coordinates.
func (l *Layout) split(p Point) (float64, float64) {
	if l.vertical() {
		return p.Y, p.X
	}
	return p.X, p.Y
}

// lineOf returns the index of the line holding c, or -1.
func (l *Layout) lineOf(c Cursor) int {
	if len(l.Lines) == 0 || c.Offset < 0 || c.Offset > l.textLen() {
		return -1
	}
	for i := range l.Lines {
		line := &l.Lines[i]
		if c.Offset < line.End || (c.Offset == line.End && c.Affinity == AffinityTrailing) {
			if c.Offset >= line.Start {
				return i
			}
		}
	}
	// Offsets past the last placed content stay on the last line.
	return len(l.Lines) - 1
}

// caretPos returns the inline position of c on line.
func (l *Layout) caretPos(line *Line, c Cursor) float64 {
	type hit struct {
		pos   float64
		score int
	}
	best := hit{score: -1}
	for i := range line.Items {
		it := &line.Items[i]
		if it.Kind == KindHyphen || c.Offset < it.Start || c.Offset > it.End {
			continue
		}
		lo, hi := l.inlineSpan(it)
		if it.IsRTL() {
			lo, hi = hi, lo
		}
		var h hit
		switch {
		case c.Offset == it.Start && it.Start < it.End:
			h = hit{lo, 1}
			if c.Affinity == AffinityLeading {
				h.score = 2
			}
		case c.Offset == it.End:
			h = hit{hi, 1}
			if c.Affinity == AffinityTrailing {
				h.score = 2
			}
		default:
			// Inside a ligature: interpolate.
			f := float64(c.Offset-it.Start) / float64(it.End-it.Start)
			h = hit{lo + (hi-lo)*f, 3}
		}
		if h.score > best.score {
			best = h
		}
	}
	if best.score >= 0 {
		return best.pos
	}
	// Not on this line: its logical start or end edge.
	lo, hi := l.lineEdges(line)
	if c.Offset <= line.Start {
		if l.BaseDirection == DirectionRTL && !l.vertical() {
			return hi
		}
		return lo
	}
	if l.BaseDirection == DirectionRTL && !l.vertical() {
		return lo
	}
	return hi
}

// lineEdges returns the inline extent of a line's items.
func (l *Layout) lineEdges(line *Line) (float64, float64) {
	if len(line.Items) == 0 {
		if l.vertical() {
			return line.Rect.MinY, line.Rect.MaxY
		}
		return line.Rect.MinX, line.Rect.MaxX
	}
	lo, _ := l.inlineSpan(&line.Items[0])
	_, hi := l.inlineSpan(&line.Items[len(line.Items)-1])
	return lo, hi
}

// CursorToRect returns the caret rectangle for c: one pixel thick and as
// long as the line box. It reports false for offsets outside the layout.
func (l *Layout) CursorToRect(c Cursor) (Rect, bool) {
	li := l.lineOf(c)
	if li < 0 {
		return Rect{}, false
	}
	line := &l.Lines[li]
	pos := l.caretPos(line, c)
	b0, b1 := l.blockSpan(line)
	if l.vertical() {
		return Rect{MinX: b0, MinY: pos, MaxX: b1, MaxY: pos + caretWidth}, true
	}
	return Rect{MinX: pos, MinY: b0, MaxX: pos + caretWidth, MaxY: b1}, true
}

// nearestLine returns the line whose block extent is closest to b.
func (l *Layout) nearestLine(b float64) int {
	best, bestDist := -1, math.Inf(1)
	for i := range l.Lines {
		b0, b1 := l.blockSpan(&l.Lines[i])
		d := 0.0
		switch {
		case b < b0:
			d = b0 - b
		case b > b1:
			d = b - b1
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// PositionToCursor returns the caret nearest to p.
func (l *Layout) PositionToCursor(p Point) Cursor {
	if len(l.Lines) == 0 {
		return Cursor{}
	}
	u, b := l.split(p)
	line := &l.Lines[l.nearestLine(b)]
	return l.cursorAt(line, u)
}

// cursorAt returns the caret on line nearest to inline position u.
func (l *Layout) cursorAt(line *Line, u float64) Cursor {
	stops := l.stops(line)
	if len(stops) == 0 {
		return Cursor{Offset: line.Start}
	}
	i := sort.Search(len(stops), func(i int) bool { return stops[i].pos >= u })
	switch {
	case i == 0:
		return stops[0].c
	case i == len(stops):
		return stops[len(stops)-1].c
	}
	if u-stops[i-1].pos < stops[i].pos-u {
		return stops[i-1].c
	}
	return stops[i].c
}

// stop is a caret position on a line, in visual order.
type stop struct {
	pos float64
	c   Cursor
}

// stops lists every grapheme boundary on line as a caret stop, sorted by
// inline position. Each position appears once.
func (l *Layout) stops(line *Line) []stop {
	bounds := l.graphemeBounds(line)
	var out []stop
	for i := range line.Items {
		it := &line.Items[i]
		if it.Kind == KindHyphen {
			continue
		}
		if isTerminator(it) {
			// The caret sits before a line terminator, never after it.
			lo, hi := l.inlineSpan(it)
			pos := lo
			if it.IsRTL() {
				pos = hi
			}
			out = append(out, stop{pos, Cursor{it.Start, AffinityLeading}})
			continue
		}
		lo, hi := l.inlineSpan(it)
		if it.IsRTL() {
			lo, hi = hi, lo
		}
		n := it.End - it.Start
		for o := it.Start; o <= it.End; o++ {
			if !bounds[o] {
				continue
			}
			aff := AffinityLeading
			if o == it.End {
				aff = AffinityTrailing
			}
			f := 0.0
			if n > 0 {
				f = float64(o-it.Start) / float64(n)
			}
			out = append(out, stop{lo + (hi-lo)*f, Cursor{o, aff}})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].pos < out[j].pos })
	// Collapse coincident stops, preferring the one already seen.
	dedup := out[:0]
	for _, s := range out {
		if n := len(dedup); n > 0 && math.Abs(dedup[n-1].pos-s.pos) < 1e-3 {
			continue
		}
		dedup = append(dedup, s)
	}
	return dedup
}

// isTerminator reports forced breaks and zero-width line terminators.
func isTerminator(it *PositionedItem) bool {
	return it.Kind == KindBreak || (it.has(flagMandatoryAfter) && it.Advance == 0 && it.Kind == KindText)
}

// graphemeBounds returns the grapheme boundaries within line's range.
func (l *Layout) graphemeBounds(line *Line) map[int]bool {
	bounds := map[int]bool{line.Start: true, line.End: true}
	s := l.slice(line.Start, line.End)
	runes := []rune(s)
	offs := make([]int, 0, len(runes)+1)
	for off := range s {
		offs = append(offs, off)
	}
	offs = append(offs, len(s))
	var seg segmenter.Segmenter
	seg.Init(runes)
	it := seg.GraphemeIterator()
	for it.Next() {
		bounds[line.Start+offs[it.Grapheme().Offset]] = true
	}
	return bounds
}

// MoveRight moves c one grapheme to the right along its line, continuing
// onto the adjacent line at the edge.
func (l *Layout) MoveRight(c Cursor) Cursor { return l.moveVisual(c, +1) }

// MoveLeft moves c one grapheme to the left along its line.
func (l *Layout) MoveLeft(c Cursor) Cursor { return l.moveVisual(c, -1) }

func (l *Layout) moveVisual(c Cursor, dir int) Cursor {
	li := l.lineOf(c)
	if li < 0 {
		return c
	}
	line := &l.Lines[li]
	stops := l.stops(line)
	pos := l.caretPos(line, c)
	const eps = 1e-3
	if dir > 0 {
		for _, s := range stops {
			if s.pos > pos+eps {
				return s.c
			}
		}
	} else {
		for i := len(stops) - 1; i >= 0; i-- {
			if stops[i].pos < pos-eps {
				return stops[i].c
			}
		}
	}

	// At the edge: continue on the line that follows in that direction.
	next := li + dir
	if l.BaseDirection == DirectionRTL && !l.vertical() {
		next = li - dir
	}
	if next < 0 || next >= len(l.Lines) {
		return c
	}
	ns := l.stops(&l.Lines[next])
	if len(ns) == 0 {
		return c
	}
	if dir > 0 {
		return ns[0].c
	}
	return ns[len(ns)-1].c
}

// MoveUp moves c to the previous line, keeping its inline position.
// On the first line it moves to the start of the text.
func (l *Layout) MoveUp(c Cursor) Cursor { return l.moveLine(c, -1) }

// MoveDown moves c to the next line, keeping its inline position.
// On the last line it moves to the end of the text.
func (l *Layout) MoveDown(c Cursor) Cursor { return l.moveLine(c, +1) }

func (l *Layout) moveLine(c Cursor, dir int) Cursor {
	li := l.lineOf(c)
	if li < 0 {
		return c
	}
	target := li + dir
	switch {
	case target < 0:
		return Cursor{Offset: 0}
	case target >= len(l.Lines):
		return Cursor{Offset: l.textLen(), Affinity: AffinityTrailing}
	}
	pos := l.caretPos(&l.Lines[li], c)
	return l.cursorAt(&l.Lines[target], pos)
}

// LineStart returns the logical start of c's line.
func (l *Layout) LineStart(c Cursor) Cursor {
	li := l.lineOf(c)
	if li < 0 {
		return c
	}
	return Cursor{Offset: l.Lines[li].Start}
}

// LineEnd returns the logical end of c's line, before any terminator.
func (l *Layout) LineEnd(c Cursor) Cursor {
	li := l.lineOf(c)
	if li < 0 {
		return c
	}
	line := &l.Lines[li]
	for i := range line.Items {
		if it := &line.Items[i]; isTerminator(it) && it.End == line.End {
			return Cursor{Offset: it.Start}
		}
	}
	return Cursor{Offset: line.End, Affinity: AffinityTrailing}
}

// SelectionRects returns one rectangle per contiguous visual stretch of
// the byte range [start, end), line by line.
func (l *Layout) SelectionRects(start, end int) []Rect {
	if start > end {
		start, end = end, start
	}
	var out []Rect
	for li := range l.Lines {
		line := &l.Lines[li]
		if line.End <= start || line.Start >= end {
			continue
		}
		b0, b1 := l.blockSpan(line)
		var cur Span
		open := false
		flush := func() {
			if !open {
				return
			}
			if l.vertical() {
				out = append(out, Rect{MinX: b0, MinY: cur.X0, MaxX: b1, MaxY: cur.X1})
			} else {
				out = append(out, Rect{MinX: cur.X0, MinY: b0, MaxX: cur.X1, MaxY: b1})
			}
			open = false
		}
		for i := range line.Items {
			it := &line.Items[i]
			if it.Kind == KindHyphen || it.End <= start || it.Start >= end {
				flush()
				continue
			}
			lo, hi := l.inlineSpan(it)
			if n := it.End - it.Start; n > 0 && (it.Start < start || it.End > end) {
				// Partially selected ligature: select proportionally.
				f0 := float64(max(start, it.Start)-it.Start) / float64(n)
				f1 := float64(min(end, it.End)-it.Start) / float64(n)
				if it.IsRTL() {
					f0, f1 = 1-f1, 1-f0
				}
				lo, hi = lo+(hi-lo)*f0, lo+(hi-lo)*f1
			}
			if open && math.Abs(lo-cur.X1) < 1e-3 {
				cur.X1 = hi
				continue
			}
			flush()
			cur, open = Span{lo, hi}, true
		}
		flush()
	}
	return out
}
