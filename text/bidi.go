package text

import (
	"slices"
	"unicode/utf8"

	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/bidi"
)

// maxDepth is the deepest explicit embedding level (BD2).
const maxDepth = 125

// VisualItem is a maximal range of one logical item sharing a single
// embedding level and script. Start and End are item-local bytes.
type VisualItem struct {
	Item       int
	Level      uint8
	Script     language.Script
	Start, End int
}

// IsRTL reports whether the item runs right to left.
func (v VisualItem) IsRTL() bool { return v.Level&1 == 1 }

// bidiText is the per-rune working state for one view. Runes themselves
// are not kept; they are decoded from the view where needed.
type bidiText struct {
	offsets  []int // global byte offset of each rune
	item     []int // owning item of each rune
	classes  []bidi.Class
	levels   []uint8
	brackets map[int]bracket // by rune index
	invalid  []int           // rune indices of malformed UTF-8 bytes
}

// bracket identifies a paired bracket by its canonical opening rune.
type bracket struct {
	id   rune
	open bool
}

// ResolveBidi runs the Unicode Bidirectional Algorithm over the analyzed
// view and returns VisualItems in logical order. Each paragraph (split at
// paragraph separators) uses the analysis base direction. A paragraph
// holding malformed UTF-8 is left at its base level and a BidiError is
// added to a.Diagnostics.
func ResolveBidi(a *Analysis) []VisualItem {
	base := uint8(0)
	if a.Base == DirectionRTL {
		base = 1
	}
	t := newBidiText(a.View)

	start, bad := 0, 0
	n := len(t.classes)
	for start < n {
		end := start
		for end < n {
			end++
			if t.classes[end-1] == bidi.B {
				break
			}
		}
		for bad < len(t.invalid) && t.invalid[bad] < start {
			bad++
		}
		if bad < len(t.invalid) && t.invalid[bad] < end {
			for i := start; i < end; i++ {
				t.levels[i] = base
			}
			err := &BidiError{Paragraph: t.offsets[start], Offset: t.offsets[t.invalid[bad]]}
			a.Diagnostics = append(a.Diagnostics, err)
			Logger().Warn("text: bidi fallback to base level", "paragraph", err.Paragraph, "offset", err.Offset)
		} else {
			p := paragraph{
				classes:  t.classes[start:end],
				levels:   t.levels[start:end],
				base:     base,
				start:    start,
				brackets: t.brackets,
			}
			p.resolve()
		}
		start = end
	}

	return t.visualItems(a)
}

func newBidiText(v *LogicalItemView) *bidiText {
	n := 0
	for range v.Runes() {
		n++
	}
	t := &bidiText{
		offsets: make([]int, 0, n),
		item:    make([]int, 0, n),
		classes: make([]bidi.Class, 0, n),
		levels:  make([]uint8, n),
	}
	items := v.Items()
	for i := range items {
		s := items[i].Text
		for off := 0; off < len(s); {
			r, size := utf8.DecodeRuneInString(s[off:])
			if r == utf8.RuneError && size == 1 {
				t.invalid = append(t.invalid, len(t.classes))
			}
			p, _ := bidi.LookupRune(r)
			if p.IsBracket() {
				if t.brackets == nil {
					t.brackets = make(map[int]bracket)
				}
				t.brackets[len(t.classes)] = bracketOf(r, p)
			}
			t.offsets = append(t.offsets, v.Start(i)+off)
			t.item = append(t.item, i)
			t.classes = append(t.classes, p.Class())
			off += size
		}
	}
	return t
}

// bracketOf returns the pairing identity of bracket r.
func bracketOf(r rune, p bidi.Properties) bracket {
	open := p.IsOpeningBracket()
	id := r
	if !open {
		// ReverseString mirrors a lone bracket to its partner.
		if m, _ := utf8.DecodeRuneInString(bidi.ReverseString(string(r))); m != utf8.RuneError {
			id = m
		}
	}
	// Canonical equivalents pair with each other.
	switch id {
	case '\u2329':
		id = '\u3008'
	}
	return bracket{id: id, open: open}
}

// visualItems cuts every item at level and script changes.
func (t *bidiText) visualItems(a *Analysis) []VisualItem {
	out := make([]VisualItem, 0, len(a.Items))
	i := 0
	for idx := range a.Items {
		it := &a.Items[idx]
		begin := i
		for i < len(t.item) && t.item[i] == idx {
			i++
		}
		if begin == i {
			continue
		}
		var scripts []language.Script
		if it.Kind == KindText || it.Kind == KindCombined {
			scripts = scriptsOf(it.Text, it.Script)
		}
		scriptAt := func(k int) language.Script {
			if scripts == nil {
				return language.Common
			}
			return scripts[k-begin]
		}
		base := a.View.Start(idx)
		cur := VisualItem{Item: idx, Level: t.levels[begin], Script: scriptAt(begin), Start: 0}
		for k := begin + 1; k < i; k++ {
			lvl, sc := t.levels[k], scriptAt(k)
			if lvl == cur.Level && sc == cur.Script {
				continue
			}
			cur.End = t.offsets[k] - base
			out = append(out, cur)
			cur = VisualItem{Item: idx, Level: lvl, Script: sc, Start: cur.End}
		}
		cur.End = it.Len()
		out = append(out, cur)
	}
	return out
}

// paragraph resolves levels for one paragraph in place.
type paragraph struct {
	classes []bidi.Class // original classes
	types   []bidi.Class // working classes
	levels  []uint8
	base    uint8

	start    int             // rune index of the paragraph in the view
	brackets map[int]bracket // by view rune index

	matchingPDI   []int
	matchingIsoSt []int
}

type embedding struct {
	level    uint8
	override bidi.Class // bidi.ON when there is none
	isolate  bool
}

func (p *paragraph) resolve() {
	n := len(p.classes)
	p.types = make([]bidi.Class, n)
	copy(p.types, p.classes)
	p.matchIsolates()
	p.explicitLevels()

	for _, seq := range p.isolatingRunSequences() {
		seq.resolveWeak()
		seq.resolveBrackets()
		seq.resolveNeutral()
		seq.resolveImplicit()
	}

	// Removed characters take the level of the character before them.
	prev := p.base
	for i := 0; i < n; i++ {
		if removedByX9(p.classes[i]) {
			p.levels[i] = prev
		} else {
			prev = p.levels[i]
		}
	}
	p.resetWhitespace()
}

// matchIsolates pairs isolate initiators with PDIs (BD9).
func (p *paragraph) matchIsolates() {
	n := len(p.classes)
	p.matchingPDI = make([]int, n)
	p.matchingIsoSt = make([]int, n)
	for i := range p.matchingPDI {
		p.matchingPDI[i] = -1
		p.matchingIsoSt[i] = -1
	}
	var stack []int
	for i, c := range p.classes {
		switch {
		case isIsolateInitiator(c):
			stack = append(stack, i)
		case c == bidi.PDI && len(stack) > 0:
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.matchingPDI[open] = i
			p.matchingIsoSt[i] = open
		}
	}
}

// firstStrongLevel returns the level FSI content resolves to.
func (p *paragraph) firstStrongLevel(start, end int) uint8 {
	for i := start; i < end; i++ {
		switch c := p.classes[i]; {
		case c == bidi.L:
			return 0
		case c == bidi.R || c == bidi.AL:
			return 1
		case isIsolateInitiator(c):
			if m := p.matchingPDI[i]; m >= 0 {
				i = m
			} else {
				return 0
			}
		}
	}
	return 0
}

// explicitLevels applies rules X1 to X8.
func (p *paragraph) explicitLevels() {
	stack := make([]embedding, 1, maxDepth+2)
	stack[0] = embedding{level: p.base, override: bidi.ON}
	overflowIsolates, overflowEmbeddings, validIsolates := 0, 0, 0

	top := func() embedding { return stack[len(stack)-1] }
	nextLevel := func(rtl bool) uint8 {
		l := top().level
		if rtl {
			return (l + 1) | 1
		}
		return (l + 2) &^ 1
	}

	for i, c := range p.classes {
		switch c {
		case bidi.RLE, bidi.LRE, bidi.RLO, bidi.LRO:
			p.levels[i] = top().level
			next := nextLevel(c == bidi.RLE || c == bidi.RLO)
			if next <= maxDepth && overflowIsolates == 0 && overflowEmbeddings == 0 {
				ov := bidi.ON
				switch c {
				case bidi.RLO:
					ov = bidi.R
				case bidi.LRO:
					ov = bidi.L
				}
				stack = append(stack, embedding{level: next, override: ov})
			} else if overflowIsolates == 0 {
				overflowEmbeddings++
			}

		case bidi.RLI, bidi.LRI, bidi.FSI:
			cur := top()
			p.levels[i] = cur.level
			if cur.override != bidi.ON {
				p.types[i] = cur.override
			}
			rtl := c == bidi.RLI
			if c == bidi.FSI {
				end := p.matchingPDI[i]
				if end < 0 {
					end = len(p.classes)
				}
				rtl = p.firstStrongLevel(i+1, end) == 1
			}
			next := nextLevel(rtl)
			if next <= maxDepth && overflowIsolates == 0 && overflowEmbeddings == 0 {
				validIsolates++
				stack = append(stack, embedding{level: next, override: bidi.ON, isolate: true})
			} else {
				overflowIsolates++
			}

		case bidi.PDI:
			switch {
			case overflowIsolates > 0:
				overflowIsolates--
			case validIsolates == 0:
			default:
				overflowEmbeddings = 0
				for !top().isolate {
					stack = stack[:len(stack)-1]
				}
				stack = stack[:len(stack)-1]
				validIsolates--
			}
			cur := top()
			p.levels[i] = cur.level
			if cur.override != bidi.ON {
				p.types[i] = cur.override
			}

		case bidi.PDF:
			switch {
			case overflowIsolates > 0:
			case overflowEmbeddings > 0:
				overflowEmbeddings--
			case !top().isolate && len(stack) >= 2:
				stack = stack[:len(stack)-1]
			}
			p.levels[i] = top().level

		case bidi.B:
			p.levels[i] = p.base

		case bidi.BN:
			p.levels[i] = top().level

		default:
			cur := top()
			p.levels[i] = cur.level
			if cur.override != bidi.ON {
				p.types[i] = cur.override
			}
		}
	}
}

// runSequence is one isolating run sequence (BD13).
type runSequence struct {
	p        *paragraph
	indices  []int
	types    []bidi.Class
	level    uint8
	sos, eos bidi.Class
}

// isolatingRunSequences applies X9 and X10.
func (p *paragraph) isolatingRunSequences() []*runSequence {
	// Level runs over characters that survive X9.
	var runs [][]int
	var cur []int
	curLevel := uint8(0)
	for i, c := range p.classes {
		if removedByX9(c) {
			continue
		}
		if len(cur) > 0 && p.levels[i] != curLevel {
			runs = append(runs, cur)
			cur = nil
		}
		cur = append(cur, i)
		curLevel = p.levels[i]
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}

	runOf := make(map[int]int, len(runs))
	for r, run := range runs {
		runOf[run[0]] = r
	}
	consumed := make([]bool, len(runs))

	var seqs []*runSequence
	for r := range runs {
		if consumed[r] {
			continue
		}
		var indices []int
		for k := r; ; {
			consumed[k] = true
			indices = append(indices, runs[k]...)
			last := indices[len(indices)-1]
			if !isIsolateInitiator(p.classes[last]) {
				break
			}
			m := p.matchingPDI[last]
			next, ok := runOf[m]
			if m < 0 || !ok || consumed[next] {
				break
			}
			k = next
		}
		seqs = append(seqs, p.newRunSequence(indices))
	}
	return seqs
}

func (p *paragraph) newRunSequence(indices []int) *runSequence {
	s := &runSequence{p: p, indices: indices}
	s.types = make([]bidi.Class, len(indices))
	for k, i := range indices {
		s.types[k] = p.types[i]
	}
	s.level = p.levels[indices[0]]

	prevLevel := p.base
	for i := indices[0] - 1; i >= 0; i-- {
		if !removedByX9(p.classes[i]) {
			prevLevel = p.levels[i]
			break
		}
	}
	last := indices[len(indices)-1]
	nextLevel := p.base
	if !isIsolateInitiator(p.classes[last]) {
		for i := last + 1; i < len(p.classes); i++ {
			if !removedByX9(p.classes[i]) {
				nextLevel = p.levels[i]
				break
			}
		}
	}
	s.sos = directionOfLevel(max(prevLevel, s.level))
	s.eos = directionOfLevel(max(nextLevel, s.level))
	return s
}

// resolveWeak applies W1 to W7.
func (s *runSequence) resolveWeak() {
	t := s.types

	// W1
	prev := s.sos
	for k, c := range t {
		if c == bidi.NSM {
			t[k] = prev
			if isIsolateInitiator(prev) || prev == bidi.PDI {
				t[k] = bidi.ON
			}
		}
		prev = t[k]
	}

	// W2, W3
	strong := s.sos
	for k, c := range t {
		switch c {
		case bidi.L, bidi.R, bidi.AL:
			strong = c
		case bidi.EN:
			if strong == bidi.AL {
				t[k] = bidi.AN
			}
		}
	}
	for k, c := range t {
		if c == bidi.AL {
			t[k] = bidi.R
		}
	}

	// W4
	for k := 1; k+1 < len(t); k++ {
		switch {
		case t[k] == bidi.ES && t[k-1] == bidi.EN && t[k+1] == bidi.EN:
			t[k] = bidi.EN
		case t[k] == bidi.CS && t[k-1] == bidi.EN && t[k+1] == bidi.EN:
			t[k] = bidi.EN
		case t[k] == bidi.CS && t[k-1] == bidi.AN && t[k+1] == bidi.AN:
			t[k] = bidi.AN
		}
	}

	// W5
	for k := 0; k < len(t); k++ {
		if t[k] != bidi.ET {
			continue
		}
		end := k
		for end < len(t) && t[end] == bidi.ET {
			end++
		}
		if (k > 0 && t[k-1] == bidi.EN) || (end < len(t) && t[end] == bidi.EN) {
			for j := k; j < end; j++ {
				t[j] = bidi.EN
			}
		}
		k = end - 1
	}

	// W6
	for k, c := range t {
		switch c {
		case bidi.ES, bidi.ET, bidi.CS:
			t[k] = bidi.ON
		}
	}

	// W7
	strong = s.sos
	for k, c := range t {
		switch c {
		case bidi.L, bidi.R:
			strong = c
		case bidi.EN:
			if strong == bidi.L {
				t[k] = bidi.L
			}
		}
	}
}

// maxBracketDepth is the BD16 stack limit.
const maxBracketDepth = 63

// bracketPairs identifies bracket pairs in the sequence (BD16), sorted by
// the position of the opening bracket. Positions are sequence indices.
func (s *runSequence) bracketPairs() [][2]int {
	if len(s.p.brackets) == 0 {
		return nil
	}
	type opener struct {
		id  rune
		pos int
	}
	var stack []opener
	var pairs [][2]int
	for k, i := range s.indices {
		b, ok := s.p.brackets[s.p.start+i]
		if !ok || s.types[k] != bidi.ON {
			continue
		}
		if b.open {
			if len(stack) == maxBracketDepth {
				break
			}
			stack = append(stack, opener{b.id, k})
			continue
		}
		for d := len(stack) - 1; d >= 0; d-- {
			if stack[d].id == b.id {
				pairs = append(pairs, [2]int{stack[d].pos, k})
				stack = stack[:d]
				break
			}
		}
	}
	slices.SortFunc(pairs, func(a, b [2]int) int { return a[0] - b[0] })
	return pairs
}

// resolveBrackets applies N0: a bracket pair takes the embedding
// direction when it encloses a strong type of that direction, otherwise
// the opposite direction when both the enclosed text and the preceding
// context have it.
func (s *runSequence) resolveBrackets() {
	t := s.types
	embedding := directionOfLevel(s.level)
	for _, pair := range s.bracketPairs() {
		opening, closing := pair[0], pair[1]
		found := bidi.ON
		for k := opening + 1; k < closing; k++ {
			d := strongForBracket(t[k])
			if d == embedding {
				found = d
				break
			}
			if d != bidi.ON {
				found = d
			}
		}
		if found == bidi.ON {
			continue
		}
		dir := embedding
		if found != embedding {
			ctx := s.sos
			for k := opening - 1; k >= 0; k-- {
				if d := strongForBracket(t[k]); d != bidi.ON {
					ctx = d
					break
				}
			}
			if ctx == found {
				dir = found
			}
		}
		for _, k := range pair {
			t[k] = dir
			// Marks following a bracket take its direction.
			for j := k + 1; j < len(t) && s.p.classes[s.indices[j]] == bidi.NSM; j++ {
				t[j] = dir
			}
		}
	}
}

// strongForBracket maps a resolved type to L, R or ON for N0; numbers
// count as R.
func strongForBracket(c bidi.Class) bidi.Class {
	switch c {
	case bidi.L:
		return bidi.L
	case bidi.R, bidi.AL, bidi.EN, bidi.AN:
		return bidi.R
	}
	return bidi.ON
}

// resolveNeutral applies N1 and N2.
func (s *runSequence) resolveNeutral() {
	t := s.types
	embedding := directionOfLevel(s.level)
	for k := 0; k < len(t); k++ {
		if !isNeutral(t[k]) {
			continue
		}
		end := k
		for end < len(t) && isNeutral(t[end]) {
			end++
		}
		before := s.sos
		if k > 0 {
			before = strongForNeutral(t[k-1])
		}
		after := s.eos
		if end < len(t) {
			after = strongForNeutral(t[end])
		}
		dir := embedding
		if before == after {
			dir = before
		}
		for j := k; j < end; j++ {
			t[j] = dir
		}
		k = end - 1
	}
}

// resolveImplicit applies I1 and I2 and writes the levels back.
func (s *runSequence) resolveImplicit() {
	for k, i := range s.indices {
		lvl := s.p.levels[i]
		switch c := s.types[k]; {
		case lvl&1 == 0 && c == bidi.R:
			lvl++
		case lvl&1 == 0 && (c == bidi.AN || c == bidi.EN):
			lvl += 2
		case lvl&1 == 1 && (c == bidi.L || c == bidi.AN || c == bidi.EN):
			lvl++
		}
		s.p.levels[i] = lvl
	}
}

// resetWhitespace applies L1 for separators and the paragraph end.
// Whitespace at the end of each line is reset by the positioner.
func (p *paragraph) resetWhitespace() {
	trailing := true
	for i := len(p.classes) - 1; i >= 0; i-- {
		c := p.classes[i]
		switch {
		case c == bidi.S || c == bidi.B:
			p.levels[i] = p.base
			trailing = true
		case trailing && (c == bidi.WS || isIsolateInitiator(c) || c == bidi.PDI || removedByX9(c)):
			p.levels[i] = p.base
		default:
			trailing = false
		}
	}
}

// ReorderLine returns the visual order of a line's runs given their
// resolved levels (rule L2): from the highest level down to the lowest odd
// level, every maximal sequence at that level or higher is reversed.
// The result maps visual position to logical index.
func ReorderLine(levels []uint8) []int {
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	if len(levels) == 0 {
		return order
	}
	highest, lowestOdd := uint8(0), uint8(maxDepth+2)
	for _, l := range levels {
		highest = max(highest, l)
		if l&1 == 1 {
			lowestOdd = min(lowestOdd, l)
		}
	}
	for lvl := highest; lvl >= lowestOdd && lvl > 0; lvl-- {
		for i := 0; i < len(order); {
			if levels[order[i]] < lvl {
				i++
				continue
			}
			j := i
			for j < len(order) && levels[order[j]] >= lvl {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				order[a], order[b] = order[b], order[a]
			}
			i = j
		}
	}
	return order
}

func removedByX9(c bidi.Class) bool {
	switch c {
	case bidi.RLE, bidi.LRE, bidi.RLO, bidi.LRO, bidi.PDF, bidi.BN:
		return true
	}
	return false
}

func isIsolateInitiator(c bidi.Class) bool {
	return c == bidi.LRI || c == bidi.RLI || c == bidi.FSI
}

func isNeutral(c bidi.Class) bool {
	switch c {
	case bidi.B, bidi.S, bidi.WS, bidi.ON, bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
		return true
	}
	return false
}

// strongForNeutral maps numbers to R for the N1 context test.
func strongForNeutral(c bidi.Class) bidi.Class {
	switch c {
	case bidi.EN, bidi.AN, bidi.R:
		return bidi.R
	}
	return bidi.L
}

func directionOfLevel(l uint8) bidi.Class {
	if l&1 == 1 {
		return bidi.R
	}
	return bidi.L
}
