package text

import (
	"math"
	"slices"
)

// positioner turns line boxes into positioned lines: it reorders items
// visually, aligns and justifies them inside their segment, and assigns
// absolute glyph positions.
type positioner struct {
	c      *Constraints
	flow   *flow
	base   Direction
	view   *LogicalItemView
	glyphs *GlyphCache
}

func (p *positioner) baseLevel() uint8 {
	if p.base == DirectionRTL {
		return 1
	}
	return 0
}

// startRight reports whether the line's start edge is its right (flow
// inline end) edge.
func (p *positioner) startRight() bool {
	return p.base == DirectionRTL && !p.flow.t.vertical
}

func (p *positioner) position(lb *lineBox) Line {
	items := lb.items
	n := len(items)

	// Trailing separators hang; L1 resets them to the paragraph level.
	content := n
	for content > 0 && (items[content-1].IsSpace() || items[content-1].Kind == KindBreak) {
		content--
	}
	for i := content; i < n; i++ {
		items[i].Level = p.baseLevel()
	}

	width := 0.0
	for i := 0; i < content; i++ {
		width += items[i].Advance
	}
	hang := 0.0
	for i := content; i < n; i++ {
		hang += items[i].Advance
	}

	a0, a1 := lb.seg.X0, lb.seg.X1
	if p.startRight() {
		a1 -= lb.indent
	} else {
		a0 += lb.indent
	}
	avail := a1 - a0

	levels := make([]uint8, n)
	for i := range items {
		levels[i] = items[i].Level
	}
	order := ReorderLine(levels)

	extra := make([]float64, n)
	var kashida []bool
	if p.justifies(lb) && avail > width {
		var gaps []int
		if gaps, kashida = p.gaps(items, order, content); len(gaps) > 0 {
			share := (avail - width) / float64(len(gaps))
			for _, g := range gaps {
				extra[g] += share
			}
			width = avail
		}
	}

	x0 := a0
	switch p.resolveAlign() {
	case AlignRight:
		x0 = a1 - width
	case AlignCenter:
		x0 = a0 + (avail-width)/2
	}

	// With a right start edge the hung separators sit left of the content.
	pen := x0
	if p.startRight() {
		pen -= hang
	}

	vertical := p.flow.t.vertical
	top := lb.top
	baseline := top + lb.ascent
	line := Line{
		Items:      make([]PositionedItem, 0, n),
		Ascent:     lb.ascent,
		Descent:    lb.descent,
		Start:      items[0].Start,
		End:        items[0].End,
		IsLast:     lb.isLast,
		Hyphenated: lb.hyphenated,
		Segment:    lb.seg,
	}
	for _, it := range items {
		line.Start = min(line.Start, it.Start)
		line.End = max(line.End, it.End)
	}

	for _, li := range order {
		it := items[li]
		w := it.Advance + extra[li]
		u := pen
		if li >= content {
			// Hung separators are clamped into the segment.
			lo, hi := clamp(u, lb.seg.X0, lb.seg.X1), clamp(u+w, lb.seg.X0, lb.seg.X1)
			u, w = lo, hi-lo
		}
		pi := PositionedItem{ShapedItem: it, Width: w}
		pi.Glyphs = slices.Clone(it.Glyphs)
		if kashida != nil && kashida[li] && extra[li] > 0 {
			pi.Glyphs = append(pi.Glyphs, p.kashidas(&it, extra[li])...)
		}
		if it.Kind == KindObject && !vertical {
			alignToLine(&pi, lb)
		}
		if vertical {
			p.placeVertical(&pi, u, baseline)
		} else {
			p.placeHorizontal(&pi, u, baseline)
		}
		line.Items = append(line.Items, pi)
		pen += it.Advance + extra[li]
	}

	box := Rect{MinX: x0, MinY: top, MaxX: x0 + width, MaxY: top + lb.height()}
	line.Rect = p.flow.t.physicalRect(box)
	if vertical {
		line.Baseline = p.flow.t.physical(Point{X: 0, Y: baseline}).X
	} else {
		line.Baseline = baseline
	}
	return line
}

// placeHorizontal sets positions for an item whose left edge is at u.
func (p *positioner) placeHorizontal(pi *PositionedItem, u, baseline float64) {
	pi.X, pi.Y = u, baseline
	pen := u
	for g := range pi.Glyphs {
		gl := &pi.Glyphs[g]
		gl.X, gl.Y = pen, baseline
		pen += gl.Advance
	}
}

// placeVertical sets positions for an item whose top edge is at flow
// inline position u. baseline is the central baseline in flow space.
func (p *positioner) placeVertical(pi *PositionedItem, u, baseline float64) {
	t := p.flow.t
	pt := t.physical(Point{X: u, Y: baseline})
	center := pt.X
	pi.X, pi.Y = center, pt.Y
	pen := pt.Y
	for g := range pi.Glyphs {
		gl := &pi.Glyphs[g]
		switch gl.Orientation {
		case OrientUpright:
			gl.X = center - gl.Advance/2
		default:
			// Rotated clockwise: the ascent points right.
			gl.X = center - (pi.Ascent-pi.Descent)/2
		}
		gl.Y = pen
		pen += gl.VAdvance
	}
}

// justifies reports whether the line is stretched to its segment.
func (p *positioner) justifies(lb *lineBox) bool {
	if p.c.Justify == JustifyNone {
		return false
	}
	switch p.c.Align {
	case AlignJustifyAll:
		return true
	case AlignJustify:
		return !lb.isLast
	}
	return false
}

// resolveAlign maps logical alignments to AlignLeft, AlignRight or
// AlignCenter for the paragraph direction.
func (p *positioner) resolveAlign() Alignment {
	start, end := AlignLeft, AlignRight
	if p.startRight() {
		start, end = AlignRight, AlignLeft
	}
	switch p.c.Align {
	case AlignLeft, AlignRight, AlignCenter:
		return p.c.Align
	case AlignEnd:
		return end
	default:
		// Start, and justified lines that could not or should not stretch.
		return start
	}
}

// gaps returns the indices of items that receive justification space
// on their visual end side. order is the line's visual order; only the
// first content items (in logical order) take part. kashida marks gaps
// between joined cursive clusters that are filled with tatweel glyphs.
func (p *positioner) gaps(items []ShapedItem, order []int, content int) (out []int, kashida []bool) {
	mode := p.c.Justify
	if mode == JustifyAuto {
		mode = JustifyInterWord
		for i := range content {
			if isCJK(items[i].Script) {
				mode = JustifyInterCharacter
				break
			}
		}
	}
	if mode == JustifyInterWord {
		for i := range content {
			if items[i].IsSpace() && items[i].Kind != KindTab {
				out = append(out, i)
			}
		}
		if len(out) > 0 {
			return out, nil
		}
		mode = JustifyInterCharacter
	}

	vis := make([]int, 0, content)
	for _, li := range order {
		if li < content {
			vis = append(vis, li)
		}
	}
	for k := 0; k+1 < len(vis); k++ {
		a, b := &items[vis[k]], &items[vis[k+1]]
		if a.Kind == KindHyphen || b.Kind == KindHyphen {
			continue
		}
		lo := min(vis[k], vis[k+1])
		neighbors := max(vis[k], vis[k+1]) == lo+1
		// The boundary between logical neighbours must end a grapheme.
		if neighbors && !items[lo].has(flagGraphemeEnd) {
			continue
		}
		if isCursive(a.Script) && a.Script == b.Script {
			if neighbors && p.canKashida(a) && joins(p.text(&items[lo]), p.text(&items[lo+1])) {
				if kashida == nil {
					kashida = make([]bool, len(items))
				}
				kashida[vis[k]] = true
				out = append(out, vis[k])
				continue
			}
			if mode == JustifyInterCharacter {
				continue
			}
		}
		out = append(out, vis[k])
	}
	return out, kashida
}

func (p *positioner) text(it *ShapedItem) string {
	if p.view == nil {
		return ""
	}
	return p.view.Slice(it.Start, it.End)
}

// canKashida reports whether it can be elongated with its font's tatweel.
func (p *positioner) canKashida(it *ShapedItem) bool {
	if p.flow.t.vertical || p.glyphs == nil || it.Kind != KindText || it.Source == nil {
		return false
	}
	_, ok := glyphFor(it.Source, tatweel)
	return ok
}

// kashidas fills w with tatweel glyphs. Advances are narrowed so the run
// ends exactly at w.
func (p *positioner) kashidas(it *ShapedItem, w float64) []Glyph {
	gid, _ := glyphFor(it.Source, tatweel)
	adv := p.glyphs.Metrics(it.Source, GlyphID(gid), it.Style.Size).Advance
	n := 1
	if adv > 0 {
		n = max(1, int(math.Ceil(w/adv-1e-9)))
	}
	out := make([]Glyph, n)
	for i := range out {
		out[i] = Glyph{ID: GlyphID(gid), Cluster: it.Start, Advance: w / float64(n), Kind: GlyphKashida}
	}
	return out
}

// alignToLine places top and bottom aligned objects against the line box.
func alignToLine(pi *PositionedItem, lb *lineBox) {
	h := pi.Object.Height
	switch pi.Object.Align {
	case ObjectTop:
		pi.Ascent, pi.Descent = lb.ascent, h-lb.ascent
	case ObjectBottom:
		pi.Ascent, pi.Descent = h-lb.descent, lb.descent
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
