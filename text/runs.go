package text

import (
	"sort"
	"unicode/utf8"

	"github.com/go-text/typesetting/segmenter"
)

// junctionWindow is how many runes on each side of an item junction the
// segmenter sees when deciding whether the junction is a break.
const junctionWindow = 8

// shapeResult is the output of the shaping stage.
type shapeResult struct {
	items       []ShapedItem // logical order
	fonts       []string
	diagnostics []error
	pending     bool
}

// itemText is the decoded text of one logical item.
type itemText struct {
	runes         []rune
	offsets       []int  // byte offset of each rune, plus the item length
	graphemeStart []bool // len(runes)+1 entries
	breakBefore   []bool // UAX#14 opportunity before each rune
	mandatory     []bool // mandatory break before each rune
}

func decodeItem(s string) *itemText {
	n := utf8.RuneCountInString(s)
	t := &itemText{
		runes:         make([]rune, 0, n),
		offsets:       make([]int, 0, n+1),
		graphemeStart: make([]bool, n+1),
		breakBefore:   make([]bool, n+1),
		mandatory:     make([]bool, n+1),
	}
	for off, r := range s {
		t.runes = append(t.runes, r)
		t.offsets = append(t.offsets, off)
	}
	t.offsets = append(t.offsets, len(s))

	var seg segmenter.Segmenter
	seg.Init(t.runes)
	gi := seg.GraphemeIterator()
	for gi.Next() {
		t.graphemeStart[gi.Grapheme().Offset] = true
	}
	t.graphemeStart[n] = true
	li := seg.LineIterator()
	for li.Next() {
		l := li.Line()
		end := l.Offset + len(l.Text)
		if end < n {
			t.breakBefore[end] = true
			t.mandatory[end] = l.IsMandatoryBreak
		}
	}
	if n > 0 && isHardBreak(t.runes[n-1]) {
		t.mandatory[n] = true
	}
	return t
}

// runeIndex maps an item-local byte offset to its rune index.
func (t *itemText) runeIndex(off int) int {
	return sort.SearchInts(t.offsets, off)
}

// shapeContent shapes every visual item of a into clusters, in logical order.
func shapeContent(fm *FontManager, a *Analysis, visual []VisualItem, vertical bool) *shapeResult {
	res := &shapeResult{}
	fontsSeen := make(map[string]bool)
	pendingSeen := make(map[string]bool)
	useFont := func(src *FontSource) {
		if src != nil && !fontsSeen[src.Name()] {
			fontsSeen[src.Name()] = true
			res.fonts = append(res.fonts, src.Name())
		}
	}

	texts := make([]*itemText, len(a.Items))
	lastOf := make([]int, len(a.Items)) // last shaped item of each logical item, -1 if none
	for i := range lastOf {
		lastOf[i] = -1
	}

	for v := 0; v < len(visual); {
		idx := visual[v].Item
		it := &a.Items[idx]
		base := a.View.Start(idx)
		w := v
		for w < len(visual) && visual[w].Item == idx {
			w++
		}

		switch it.Kind {
		case KindText, KindCombined:
			t := decodeItem(it.Text)
			texts[idx] = t
			for _, vi := range visual[v:w] {
				res.shapeVisual(fm, a, idx, t, vi, useFont, pendingSeen)
			}

		case KindTab:
			ch := fm.chain(it.Style.Family, visual[v].Script)
			if ch.pending {
				res.notePending(it.Style.Family, pendingSeen)
			}
			m := fallbackMetrics(it.Style.Size)
			space := 0.25 * it.Style.Size
			if ch.primary != nil || len(ch.fonts) > 0 {
				src := ch.primary
				if src == nil {
					src = ch.fonts[0]
				}
				m = src.Metrics(it.Style.Size)
				if gid, ok := glyphFor(src, ' '); ok {
					space = fm.glyphs.Metrics(src, GlyphID(gid), it.Style.Size).Advance
				}
			}
			si := ShapedItem{
				Kind: KindTab, Start: base, End: base + it.Len(),
				Level: visual[v].Level, Script: visual[v].Script, Style: it.Style,
				Ascent: m.Ascent, Descent: m.Descent,
				flags: flagBreakAfter | flagGraphemeEnd | flagSpace,
				item:  idx,
			}
			si.tabStop = space * it.Style.TabSize
			applyLineHeight(&si, it.Style.LineHeight)
			res.items = append(res.items, si)
			res.breakBeforeLast()

		case KindObject:
			o := it.Object
			si := ShapedItem{
				Kind: KindObject, Start: base, End: base + it.Len(),
				Level: visual[v].Level, Object: o,
				flags: flagBreakAfter | flagGraphemeEnd,
				item:  idx,
			}
			if vertical {
				si.Advance = o.Height
				si.Ascent, si.Descent = o.Width/2, o.Width/2
			} else {
				si.Advance = o.Width
				si.Ascent, si.Descent = o.Height-o.Baseline, o.Baseline
			}
			res.items = append(res.items, si)
			res.breakBeforeLast()

		case KindBreak:
			res.items = append(res.items, ShapedItem{
				Kind: KindBreak, Start: base, End: base + it.Len(),
				Level: visual[v].Level,
				flags: flagMandatoryAfter | flagGraphemeEnd,
				item:  idx,
			})
		}
		if len(res.items) > 0 && res.items[len(res.items)-1].item == idx {
			lastOf[idx] = len(res.items) - 1
		}
		v = w
	}

	res.resolveJunctions(a, texts, lastOf)
	if !vertical {
		res.alignObjects()
	}
	return res
}

// alignObjects resolves text-relative object alignments against the
// nearest text of the same paragraph, preferring the text before.
func (res *shapeResult) alignObjects() {
	for i := range res.items {
		it := &res.items[i]
		if it.Kind != KindObject {
			continue
		}
		o := it.Object
		if o.Align == ObjectBaseline || o.Align.lineRelative() {
			continue
		}
		m := res.textMetrics(i)
		switch o.Align {
		case ObjectMiddle:
			mid := m.XHeight / 2
			it.Ascent, it.Descent = mid+o.Height/2, o.Height/2-mid
		case ObjectTextTop:
			it.Ascent, it.Descent = m.Ascent, o.Height-m.Ascent
		case ObjectTextBottom:
			it.Ascent, it.Descent = o.Height-m.Descent, m.Descent
		}
	}
}

// textMetrics returns the font metrics of the text nearest to item i.
func (res *shapeResult) textMetrics(i int) Metrics {
	metricsOf := func(it *ShapedItem) (Metrics, bool) {
		if it.Kind != KindText || it.Source == nil || it.Style == nil {
			return Metrics{}, false
		}
		return it.Source.Metrics(it.Style.Size), true
	}
	for j := i - 1; j >= 0 && res.items[j].Kind != KindBreak; j-- {
		if m, ok := metricsOf(&res.items[j]); ok {
			return m
		}
	}
	for j := i + 1; j < len(res.items) && res.items[j].Kind != KindBreak; j++ {
		if m, ok := metricsOf(&res.items[j]); ok {
			return m
		}
	}
	return fallbackMetrics(DefaultStyle().Size)
}

// breakBeforeLast allows a break before the item just appended.
func (res *shapeResult) breakBeforeLast() {
	if n := len(res.items); n > 1 {
		res.items[n-2].flags |= flagBreakAfter | flagGraphemeEnd
	}
}

func (res *shapeResult) notePending(family string, seen map[string]bool) {
	res.pending = true
	if !seen[family] {
		seen[family] = true
		res.diagnostics = append(res.diagnostics, &FontNotLoadedError{Family: family})
	}
}

// shapeVisual shapes one visual item of a text item.
func (res *shapeResult) shapeVisual(fm *FontManager, a *Analysis, idx int, t *itemText, vi VisualItem,
	useFont func(*FontSource), pendingSeen map[string]bool) {
	it := &a.Items[idx]
	st := it.Style
	base := a.View.Start(idx)
	rs, re := t.runeIndex(vi.Start), t.runeIndex(vi.End)

	ch := fm.chain(st.Family, vi.Script)
	if ch.pending {
		res.notePending(st.Family, pendingSeen)
	}

	var spans []fontSpan
	if len(ch.fonts) == 0 && ch.system == nil {
		spans = []fontSpan{{Start: rs, End: re, Missing: true}}
	} else {
		spans = partitionRun(ch, t.runes, rs, re, t.graphemeStart, vi.Script)
	}

	for _, sp := range spans {
		var clusters []shapedCluster
		m := fallbackMetrics(st.Size)
		if sp.Missing {
			err := &FontResolutionError{Start: base + t.offsets[sp.Start], End: base + t.offsets[sp.End], Family: st.Family}
			res.diagnostics = append(res.diagnostics, err)
			Logger().Warn("text: no font covers range", "start", err.Start, "end", err.End, "family", st.Family)
		}
		if sp.Source != nil {
			m = sp.Source.Metrics(st.Size)
			useFont(sp.Source)
			var err error
			clusters, err = fm.shaper.shape(shapeRun{
				Source: sp.Source, Text: t.runes, Start: sp.Start, End: sp.End,
				RTL: vi.IsRTL(), Script: vi.Script, Language: it.Language,
				Size: st.Size, Features: st.Features,
			})
			if err != nil {
				serr := &ShapingError{Start: base + t.offsets[sp.Start], End: base + t.offsets[sp.End], Err: err}
				res.diagnostics = append(res.diagnostics, serr)
				Logger().Warn("text: shaping failed", "start", serr.Start, "end", serr.End, "err", err)
				clusters = nil
			}
		}
		if clusters == nil {
			clusters = notdefClusters(sp.Start, sp.End, t.graphemeStart, st.Size)
		} else if sp.Missing {
			for i := range clusters {
				for j := range clusters[i].Glyphs {
					clusters[i].Glyphs[j].Kind = GlyphNotDef
				}
			}
		}

		for _, c := range clusters {
			si := ShapedItem{
				Kind:    it.Kind,
				Start:   base + t.offsets[c.Start],
				End:     base + t.offsets[c.End],
				Level:   vi.Level,
				Script:  vi.Script,
				Style:   st,
				Source:  sp.Source,
				Glyphs:  c.Glyphs,
				Advance: c.Advance,
				Ascent:  m.Ascent,
				Descent: m.Descent,
				item:    idx,
			}
			for g := range si.Glyphs {
				si.Glyphs[g].Cluster = si.Start
			}
			terminator := allHardBreaks(t.runes[c.Start:c.End])
			if terminator {
				// Line terminators take no space.
				si.Advance = 0
				for g := range si.Glyphs {
					si.Glyphs[g].Advance = 0
				}
			}
			if allWordSeparators(t.runes[c.Start:c.End]) {
				si.flags |= flagSpace
			}
			if t.graphemeStart[c.End] {
				si.flags |= flagGraphemeEnd
			}
			if c.End < len(t.runes) && t.breakBefore[c.End] && t.graphemeStart[c.End] {
				si.flags |= flagBreakAfter
			}
			if t.mandatory[c.End] {
				si.flags |= flagMandatoryAfter
			}
			if !terminator {
				applySpacing(&si)
			}
			applyLineHeight(&si, st.LineHeight)
			res.items = append(res.items, si)
		}
	}
}

// applySpacing adds letter spacing after each cluster and word spacing
// after separators. Cursive scripts are not letter-spaced.
func applySpacing(si *ShapedItem) {
	extra := 0.0
	if si.Style.LetterSpacing != 0 && !isCursive(si.Script) {
		extra += si.Style.LetterSpacing
	}
	if si.IsSpace() {
		extra += si.Style.WordSpacing
	}
	if extra == 0 || len(si.Glyphs) == 0 {
		return
	}
	si.Glyphs[len(si.Glyphs)-1].Advance += extra
	si.Advance += extra
}

// applyLineHeight distributes half-leading so ascent+descent equals lh.
func applyLineHeight(si *ShapedItem, lh float64) {
	if lh <= 0 {
		return
	}
	half := (lh - si.height()) / 2
	si.Ascent += half
	si.Descent += half
}

// resolveJunctions decides break and grapheme boundaries between
// adjacent text items by segmenting a small window around each junction.
func (res *shapeResult) resolveJunctions(a *Analysis, texts []*itemText, lastOf []int) {
	var seg segmenter.Segmenter
	window := make([]rune, 0, 2*junctionWindow)
	for i := 0; i+1 < len(a.Items); i++ {
		left, right := texts[i], texts[i+1]
		last := lastOf[i]
		if left == nil || right == nil || last < 0 {
			continue
		}
		si := &res.items[last]
		if si.has(flagMandatoryAfter) {
			continue
		}
		tail := left.runes[max(0, len(left.runes)-junctionWindow):]
		head := right.runes[:min(len(right.runes), junctionWindow)]
		window = append(append(window[:0], tail...), head...)
		seg.Init(window)

		at := len(tail)
		grapheme, lineBreak := false, false
		gi := seg.GraphemeIterator()
		for gi.Next() {
			if gi.Grapheme().Offset == at {
				grapheme = true
				break
			}
		}
		li := seg.LineIterator()
		for li.Next() {
			if l := li.Line(); l.Offset+len(l.Text) == at {
				lineBreak = true
				break
			}
		}
		si.flags &^= flagGraphemeEnd | flagBreakAfter
		if grapheme {
			si.flags |= flagGraphemeEnd
			if lineBreak {
				si.flags |= flagBreakAfter
			}
		}
	}
}

// allWordSeparators reports whether runes consists only of word separators.
func allWordSeparators(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if !isWordSeparator(r) {
			return false
		}
	}
	return true
}

func isWordSeparator(r rune) bool {
	switch r {
	case ' ', 0x00A0, 0x1361, 0x10100, 0x10101, 0x1039F, 0x1091F, 0x3000:
		return true
	}
	return false
}

func allHardBreaks(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if !isHardBreak(r) {
			return false
		}
	}
	return true
}

// isHardBreak reports characters that force a line end.
func isHardBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x0085, 0x2028, 0x2029:
		return true
	}
	return false
}
