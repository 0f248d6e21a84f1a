package text

import (
	"golang.org/x/text/unicode/bidi"
)

// Analysis is the Content Analyzer's output.
type Analysis struct {
	Items []LogicalItem
	View  *LogicalItemView

	// Base is the paragraph direction: forced, or detected from the
	// first strong character. Always LTR or RTL.
	Base Direction

	// Diagnostics collects ContentError values for substituted items.
	Diagnostics []error
}

// Analyze builds the logical item arena and view for content.
// Items whose style does not resolve are replaced by zero-width objects.
// forced may be DirectionAuto, DirectionLTR or DirectionRTL.
func Analyze(content []InlineContent, styles StyleResolver, forced Direction) *Analysis {
	a := &Analysis{Items: make([]LogicalItem, 0, len(content))}

	// One *Style per handle; items with the same handle share it.
	cache := make(map[StyleHandle]*Style)
	failed := make(map[StyleHandle]bool)
	var last *Style
	lookup := func(idx int, h StyleHandle) (*Style, bool) {
		if st, ok := cache[h]; ok {
			return st, true
		}
		if !failed[h] {
			if st, ok := resolveStyle(styles, h); ok {
				p := &st
				cache[h] = p
				return p, true
			}
			failed[h] = true
		}
		a.Diagnostics = append(a.Diagnostics, &ContentError{Index: idx, Handle: h})
		Logger().Warn("text: unresolved style", "index", idx, "handle", string(h))
		return nil, false
	}

	for i, c := range content {
		switch c := c.(type) {
		case TextRun:
			if c.Text == "" {
				continue
			}
			st, ok := lookup(i, c.Style)
			if !ok {
				a.Items = append(a.Items, substitute(i))
				continue
			}
			last = st
			a.Items = append(a.Items, LogicalItem{
				Kind: KindText, Source: i, Text: c.Text, Style: st,
				Language: c.Language, Script: c.Script,
			})
		case CombinedText:
			if c.Text == "" {
				continue
			}
			st, ok := lookup(i, c.Style)
			if !ok {
				a.Items = append(a.Items, substitute(i))
				continue
			}
			last = st
			a.Items = append(a.Items, LogicalItem{Kind: KindCombined, Source: i, Text: c.Text, Style: st})
		case InlineObject:
			a.Items = append(a.Items, LogicalItem{Kind: KindObject, Source: i, Text: objectText, Object: c})
		case Tab:
			st := last
			if c.Style != "" || st == nil {
				s, ok := lookup(i, c.Style)
				if !ok {
					a.Items = append(a.Items, substitute(i))
					continue
				}
				st = s
			}
			a.Items = append(a.Items, LogicalItem{Kind: KindTab, Source: i, Text: tabText, Style: st})
		case ForcedBreak:
			a.Items = append(a.Items, LogicalItem{Kind: KindBreak, Source: i, Text: breakText})
		}
	}

	a.View = NewLogicalItemView(a.Items)
	switch forced {
	case DirectionLTR, DirectionRTL:
		a.Base = forced
	default:
		a.Base = DirectionLTR
		if d, ok := firstStrong(a.View); ok {
			a.Base = d
		}
	}
	return a
}

// substitute is the zero-width stand-in for an item that failed analysis.
func substitute(source int) LogicalItem {
	return LogicalItem{Kind: KindObject, Source: source, Text: objectText}
}

// firstStrong finds the direction of the first strong character outside
// isolates (rules P2 and P3 of the bidi algorithm).
func firstStrong(v *LogicalItemView) (Direction, bool) {
	depth := 0
	for _, r := range v.Runes() {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.LRI, bidi.RLI, bidi.FSI:
			depth++
		case bidi.PDI:
			if depth > 0 {
				depth--
			}
		case bidi.L:
			if depth == 0 {
				return DirectionLTR, true
			}
		case bidi.R, bidi.AL:
			if depth == 0 {
				return DirectionRTL, true
			}
		}
	}
	return DirectionLTR, false
}
