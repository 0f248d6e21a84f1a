package text

import (
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/gogpu/textflow/text/hyphen"
)

// fitEpsilon absorbs float error when comparing widths.
const fitEpsilon = 1e-6

// lineBox is a line chosen by the breaker, before positioning.
type lineBox struct {
	items      []ShapedItem // logical order; may end with a synthetic hyphen
	seg        Span         // flow-space segment
	top        float64      // block position of the line box
	ascent     float64
	descent    float64
	indent     float64 // start-side indent applied to this line
	isLast     bool
	hyphenated bool
}

func (l *lineBox) height() float64 { return l.ascent + l.descent }

// breaker is the greedy first-fit line breaker.
type breaker struct {
	items    []ShapedItem
	analysis *Analysis
	c        *Constraints
	flow     *flow
	glyphs   *GlyphCache
	strut    Metrics

	lines    []lineBox
	overflow *OverflowError
}

// fill is the outcome of filling one line.
type fill struct {
	end        int         // first item not on the line
	hyphen     *ShapedItem // synthetic hyphen, if the line was hyphenated
	advances   []float64   // per item advance, tabs resolved
	width      float64     // content width without hanging spaces
	mandatory  bool        // line ended at a forced break
	exhausted  bool        // content ended on this line
	overflowed float64     // width beyond the segment
}

func (b *breaker) run() {
	pos := 0
	v := b.flow.top
	paraStart := true
	hOverflow := 0.0
	hStart, hEnd := 0, 0 // bytes of the line that overflows the most

	for pos < len(b.items) {
		if b.c.LineClamp > 0 && len(b.lines) >= b.c.LineClamp {
			b.unplaced(pos, hOverflow)
			return
		}
		indent := 0.0
		if paraStart {
			indent = b.c.TextIndent
		}

		h := b.guessHeight(pos)
		need := b.minUnit(pos) + indent
		var seg Span
		var f fill
		found := false
		for attempt := 0; attempt < 4; attempt++ {
			s, at, ok := b.findSegment(v, h, need)
			if !ok {
				break
			}
			seg, v, found = s, at, true
			f = b.fillLine(pos, seg.Width()-indent)
			asc, desc := b.lineMetrics(pos, f)
			nh := b.blockAdvance(asc, desc)
			if nh <= h+fitEpsilon {
				break
			}
			// The real line is taller; the band may be narrower.
			h = nh
		}
		if !found || f.end <= pos {
			b.unplaced(pos, hOverflow)
			return
		}

		asc, desc := b.lineMetrics(pos, f)
		lb := lineBox{
			items:      b.lineItems(pos, f),
			seg:        seg,
			top:        v,
			ascent:     asc,
			descent:    desc,
			indent:     indent,
			isLast:     f.mandatory || f.exhausted,
			hyphenated: f.hyphen != nil,
		}
		if lh := b.c.LineHeight; lh > 0 {
			half := (lh - lb.height()) / 2
			lb.ascent += half
			lb.descent += half
		}
		b.lines = append(b.lines, lb)
		if f.overflowed > hOverflow {
			hOverflow = f.overflowed
			hStart, hEnd = lineRange(lb.items)
		}

		v += lb.height()
		pos = f.end
		paraStart = f.mandatory
	}

	if hOverflow > fitEpsilon {
		b.overflow = &OverflowError{Start: hStart, End: hEnd, Width: hOverflow}
	}
}

// lineRange returns the view bytes covered by items.
func lineRange(items []ShapedItem) (start, end int) {
	start, end = items[0].Start, items[0].End
	for i := range items {
		start = min(start, items[i].Start)
		end = max(end, items[i].End)
	}
	return start, end
}

// guessHeight is the block extent assumed before the line's items are known.
func (b *breaker) guessHeight(pos int) float64 {
	if b.c.LineHeight > 0 {
		return b.c.LineHeight
	}
	if h := b.items[pos].height(); h > 0 {
		return h
	}
	return b.strut.Ascent + b.strut.Descent
}

func (b *breaker) blockAdvance(asc, desc float64) float64 {
	if b.c.LineHeight > 0 {
		return b.c.LineHeight
	}
	return asc + desc
}

// minUnit is the width of the first unbreakable grapheme at pos.
func (b *breaker) minUnit(pos int) float64 {
	w := 0.0
	for i := pos; i < len(b.items); i++ {
		w += b.items[i].Advance
		if b.items[i].has(flagGraphemeEnd) {
			break
		}
	}
	return w
}

// findSegment looks for a segment of at least need width starting at
// block position v, moving down a line at a time. Past the point where
// the geometry stops changing it settles for the widest segment.
func (b *breaker) findSegment(v, h, need float64) (Span, float64, bool) {
	fl := b.flow
	var fallback Span
	haveFallback := false
	fallbackV := v
	for {
		if v+h > fl.limit+fitEpsilon {
			if haveFallback {
				return fallback, fallbackV, true
			}
			return Span{}, v, false
		}
		segs := lineSegments(fl.boundary, fl.exclusions, v, v+h)
		if seg, ok := pickSegment(segs); ok {
			if seg.Width()+fitEpsilon >= need {
				return seg, v, true
			}
			if !haveFallback {
				fallback, fallbackV, haveFallback = seg, v, true
			}
		}
		if v >= fl.scanEnd {
			if haveFallback {
				return fallback, fallbackV, true
			}
			return Span{}, v, false
		}
		v += h
	}
}

// fillLine places items from pos into avail width, greedy first fit.
func (b *breaker) fillLine(pos int, avail float64) fill {
	f := fill{advances: make([]float64, 0, 16)}
	x := 0.0        // pen including trailing spaces
	lastBreak := -1 // item after which the line may end

	for i := pos; i < len(b.items); i++ {
		it := &b.items[i]
		adv := it.Advance
		if it.Kind == KindTab {
			adv = b.tabAdvance(x, it)
		}

		if it.IsSpace() {
			// Spaces hang: they never push content over the edge.
			f.advances = append(f.advances, adv)
			x += adv
			if it.CanBreakAfter() {
				lastBreak = i
			}
			if it.has(flagMandatoryAfter) {
				return b.finish(f, pos, i+1, true, avail)
			}
			continue
		}

		if adv > 0 && x+adv > avail+fitEpsilon && i > pos {
			if b.c.Hyphenate {
				if hf, ok := b.hyphenate(pos, i, lastBreak, f.advances, avail); ok {
					return hf
				}
			}
			if lastBreak >= pos {
				f.advances = f.advances[:lastBreak+1-pos]
				return b.finish(f, pos, lastBreak+1, false, avail)
			}
			return b.emergencyBreak(f, pos, i, avail)
		}

		f.advances = append(f.advances, adv)
		x += adv
		if it.has(flagMandatoryAfter) {
			return b.finish(f, pos, i+1, true, avail)
		}
		if it.CanBreakAfter() {
			lastBreak = i
		}
	}
	return b.finish(f, pos, len(b.items), false, avail)
}

// emergencyBreak ends a line with no break opportunity at the last
// grapheme boundary before i, or after the first grapheme when none.
func (b *breaker) emergencyBreak(f fill, pos, i int, avail float64) fill {
	k := i
	for k > pos && !b.items[k-1].has(flagGraphemeEnd) {
		k--
	}
	if k == pos {
		// Place one whole grapheme even though it does not fit.
		k = i
		for k < len(b.items) && !b.items[k-1].has(flagGraphemeEnd) {
			f.advances = append(f.advances, b.items[k].Advance)
			k++
		}
	}
	f.advances = f.advances[:k-pos]
	return b.finish(f, pos, k, false, avail)
}

// finish computes the line's width and overflow.
func (b *breaker) finish(f fill, pos, end int, mandatory bool, avail float64) fill {
	f.end, f.mandatory = end, mandatory
	if !mandatory && end < len(b.items) && b.items[end].Kind == KindBreak {
		// A forced break right after the content belongs to this line.
		f.advances = append(f.advances, 0)
		f.end, f.mandatory = end+1, true
	}
	f.exhausted = f.end >= len(b.items)
	f.width = contentWidth(b.items[pos:f.end], f.advances)
	if f.hyphen != nil {
		f.width += f.hyphen.Advance
	}
	f.overflowed = math.Max(0, f.width-avail)
	return f
}

// contentWidth sums advances, excluding trailing hanging spaces.
func contentWidth(items []ShapedItem, advances []float64) float64 {
	n := len(items)
	for n > 0 && (items[n-1].IsSpace() || items[n-1].Kind == KindBreak) {
		n--
	}
	w := 0.0
	for i := 0; i < n; i++ {
		w += advances[i]
	}
	return w
}

// tabAdvance moves to the next tab stop after x.
func (b *breaker) tabAdvance(x float64, it *ShapedItem) float64 {
	stop := it.tabStop
	if b.c.TabSize > 0 && it.Style != nil && it.Style.TabSize > 0 {
		stop = stop / it.Style.TabSize * b.c.TabSize
	}
	if stop <= 0 {
		return 0
	}
	next := (math.Floor(x/stop+fitEpsilon) + 1) * stop
	return next - x
}

// hyphenate tries to break the word overflowing at item i. The word runs
// between the surrounding break opportunities; only points after the
// line start are candidates.
func (b *breaker) hyphenate(pos, i, lastBreak int, advances []float64, avail float64) (fill, bool) {
	ws := max(pos, lastBreak+1)
	we := i
	for we < len(b.items)-1 && !b.items[we].CanBreakAfter() {
		we++
	}
	// The word may have started on the previous line.
	wordStart := ws
	for wordStart > 0 && !b.items[wordStart-1].CanBreakAfter() && b.items[wordStart-1].Kind == KindText {
		wordStart--
	}
	for k := wordStart; k <= we; k++ {
		if b.items[k].Kind != KindText {
			return fill{}, false
		}
	}

	start, end := b.items[wordStart].Start, b.items[we].End
	word := b.analysis.View.Slice(start, end)
	core, offset := letterCore(word)
	if utf8.RuneCountInString(core) < 4 {
		return fill{}, false
	}

	lang := b.c.Language
	if lang == "" {
		if it, _ := b.analysis.View.Locate(start); it < len(b.analysis.Items) {
			lang = b.analysis.Items[it].Language
		}
	}
	if lang == "" {
		lang = "en"
	}
	dict, ok := hyphen.Lookup(lang)
	if !ok {
		return fill{}, false
	}
	points := dict.Points(core)

	// Width before the word.
	x := 0.0
	for k := pos; k < ws; k++ {
		x += advances[k-pos]
	}
	for p := len(points) - 1; p >= 0; p-- {
		at := start + offset + points[p]
		// The point must end a cluster on a grapheme boundary.
		k, w := -1, x
		for j := ws; j <= we && j < i+1; j++ {
			w += b.items[j].Advance
			if b.items[j].End == at {
				k = j
				break
			}
			if b.items[j].End > at {
				break
			}
		}
		if k < 0 || !b.items[k].has(flagGraphemeEnd) {
			continue
		}
		h := b.hyphenItem(&b.items[k])
		if w+h.Advance > avail+fitEpsilon {
			continue
		}
		f := fill{advances: append([]float64(nil), advances[:ws-pos]...)}
		for j := ws; j <= k; j++ {
			f.advances = append(f.advances, b.items[j].Advance)
		}
		f.hyphen = &h
		return b.finish(f, pos, k+1, false, avail), true
	}
	return fill{}, false
}

// letterCore trims leading and trailing non-letters from word and returns
// the core and its byte offset within word.
func letterCore(word string) (string, int) {
	start := 0
	for start < len(word) {
		r, size := utf8.DecodeRuneInString(word[start:])
		if unicode.IsLetter(r) {
			break
		}
		start += size
	}
	end := len(word)
	for end > start {
		r, size := utf8.DecodeLastRuneInString(word[:end])
		if unicode.IsLetter(r) || unicode.IsMark(r) {
			break
		}
		end -= size
	}
	return word[start:end], start
}

// hyphenItem builds the synthetic hyphen placed after it.
func (b *breaker) hyphenItem(it *ShapedItem) ShapedItem {
	h := ShapedItem{
		Kind:    KindHyphen,
		Start:   it.End,
		End:     it.End,
		Level:   it.Level,
		Script:  it.Script,
		Style:   it.Style,
		Source:  it.Source,
		Ascent:  it.Ascent,
		Descent: it.Descent,
		flags:   flagGraphemeEnd,
		item:    it.item,
	}
	size := it.Style.Size
	g := Glyph{Cluster: it.End, Kind: GlyphHyphen, Advance: 0.3 * size}
	if it.Source != nil {
		if gid, ok := glyphFor(it.Source, 0x2010, '-'); ok {
			m := b.glyphs.Metrics(it.Source, GlyphID(gid), size)
			g.ID, g.Advance = GlyphID(gid), m.Advance
			if b.flow.t.vertical {
				g.VAdvance = g.Advance
				g.Orientation = OrientRotated
			}
		}
	}
	h.Glyphs = []Glyph{g}
	h.Advance = g.Advance
	return h
}

// lineMetrics returns the maximum ascent and descent on the line.
func (b *breaker) lineMetrics(pos int, f fill) (float64, float64) {
	asc, desc := 0.0, 0.0
	var tall []*ShapedItem
	for i := pos; i < f.end; i++ {
		it := &b.items[i]
		if it.Kind == KindBreak {
			continue
		}
		if it.Kind == KindObject && it.Object.Align.lineRelative() && !b.flow.t.vertical {
			tall = append(tall, it)
			continue
		}
		asc = math.Max(asc, it.Ascent)
		desc = math.Max(desc, it.Descent)
	}
	if asc+desc == 0 {
		asc, desc = b.strut.Ascent, b.strut.Descent
	}
	// Top and bottom aligned objects grow the line away from their edge.
	for _, it := range tall {
		if h := it.Object.Height; h > asc+desc {
			if it.Object.Align == ObjectTop {
				desc = h - asc
			} else {
				asc = h - desc
			}
		}
	}
	if b.flow.t.vertical {
		// Vertical lines center on their central baseline.
		half := math.Max(asc, desc)
		return half, half
	}
	return asc, desc
}

// lineItems copies the line's items, resolving tab advances.
func (b *breaker) lineItems(pos int, f fill) []ShapedItem {
	items := make([]ShapedItem, 0, f.end-pos+1)
	for i := pos; i < f.end; i++ {
		it := b.items[i]
		if i-pos < len(f.advances) {
			it.Advance = f.advances[i-pos]
		}
		items = append(items, it)
	}
	if f.hyphen != nil {
		items = append(items, *f.hyphen)
	}
	return items
}

// unplaced records that items from pos on did not fit. The remaining
// content is broken at the widest inline extent available to estimate
// how many lines and how much block extent it needs.
func (b *breaker) unplaced(pos int, hOverflow float64) {
	width := b.flow.bounds.Width()
	if math.IsInf(width, 0) || width <= 0 {
		width = b.c.Width
	}
	ov := &OverflowError{
		Start: b.items[pos].Start,
		End:   b.items[len(b.items)-1].End,
		Width: hOverflow,
	}
	for p := pos; p < len(b.items); {
		f := b.fillLine(p, width)
		if f.end <= p {
			break
		}
		asc, desc := b.lineMetrics(p, f)
		ov.Height += b.blockAdvance(asc, desc)
		ov.Width = math.Max(ov.Width, f.overflowed)
		ov.Lines++
		p = f.end
	}
	b.overflow = ov
}
