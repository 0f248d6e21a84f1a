package text

import "github.com/go-text/typesetting/language"

// StyleHandle names a style supplied by the caller's style system.
// The empty handle selects DefaultStyle unless the resolver defines it.
type StyleHandle string

// Style holds every style property the layout engine reads.
type Style struct {
	// Family is the primary font family. Fallback chains apply after it.
	Family string

	// Size is the font size in pixels.
	Size float64

	// LetterSpacing is added after every cluster, in pixels.
	LetterSpacing float64

	// WordSpacing is added to every word separator, in pixels.
	WordSpacing float64

	// LineHeight overrides the font's natural line height when positive.
	LineHeight float64

	// Features are OpenType feature settings such as "liga=0" or "smcp".
	Features []string

	// Color is carried through to glyph sources for the renderer.
	Color uint32

	// TabSize is the tab stop interval measured in spaces. Default 8.
	TabSize float64
}

// DefaultStyle returns the style used for the empty handle.
func DefaultStyle() Style {
	return Style{Size: 16, TabSize: 8}
}

// StyleResolver maps style handles to resolved styles.
type StyleResolver interface {
	ResolveStyle(h StyleHandle) (Style, bool)
}

// StyleSheet is a map-backed StyleResolver.
type StyleSheet map[StyleHandle]Style

// ResolveStyle implements StyleResolver.
func (s StyleSheet) ResolveStyle(h StyleHandle) (Style, bool) {
	st, ok := s[h]
	return st, ok
}

// resolveStyle applies the empty-handle default and normalizes sizes.
func resolveStyle(r StyleResolver, h StyleHandle) (Style, bool) {
	var st Style
	ok := false
	if r != nil {
		st, ok = r.ResolveStyle(h)
	}
	if !ok {
		if h != "" {
			return Style{}, false
		}
		st = DefaultStyle()
	}
	if st.Size <= 0 {
		st.Size = DefaultStyle().Size
	}
	if st.TabSize <= 0 {
		st.TabSize = DefaultStyle().TabSize
	}
	return st, true
}

// InlineContent is one element of the input sequence: TextRun,
// CombinedText, InlineObject, Tab or ForcedBreak.
type InlineContent interface {
	inline()
}

// TextRun is styled text.
type TextRun struct {
	Text  string
	Style StyleHandle

	// Language is an optional BCP 47 hint used for shaping and hyphenation.
	Language string

	// Script is an optional hint; zero means detect per character.
	Script language.Script
}

// CombinedText is a short run set as one upright unit in vertical
// writing modes (tate-chu-yoko). Horizontal modes treat it as text.
type CombinedText struct {
	Text  string
	Style StyleHandle
}

// InlineObject is a replaced element such as an image.
type InlineObject struct {
	Width, Height float64

	// Baseline is the distance from the object's bottom edge up to the
	// baseline it sits on. Only ObjectBaseline uses it.
	Baseline float64

	// Align places the object vertically in horizontal writing modes.
	// Vertical modes always center objects on the line.
	Align ObjectAlign
}

// ObjectAlign is the vertical alignment of an inline object.
type ObjectAlign uint8

const (
	// ObjectBaseline sits the object on the baseline at its Baseline.
	ObjectBaseline ObjectAlign = iota
	// ObjectMiddle centers the object half an x-height above the baseline.
	ObjectMiddle
	// ObjectTextTop aligns the object's top with the text ascent.
	ObjectTextTop
	// ObjectTextBottom aligns the object's bottom with the text descent.
	ObjectTextBottom
	// ObjectTop aligns the object's top with the line box top.
	ObjectTop
	// ObjectBottom aligns the object's bottom with the line box bottom.
	ObjectBottom
)

// String returns the CSS name of the alignment.
func (a ObjectAlign) String() string {
	switch a {
	case ObjectBaseline:
		return "baseline"
	case ObjectMiddle:
		return "middle"
	case ObjectTextTop:
		return "text-top"
	case ObjectTextBottom:
		return "text-bottom"
	case ObjectTop:
		return "top"
	case ObjectBottom:
		return "bottom"
	default:
		return unknownStr
	}
}

// lineRelative reports alignments resolved against the line box.
func (a ObjectAlign) lineRelative() bool { return a == ObjectTop || a == ObjectBottom }

// Tab advances to the next tab stop. Style selects the space width used
// for stops; the empty handle uses the preceding text's style.
type Tab struct {
	Style StyleHandle
}

// ForcedBreak ends the current line and paragraph.
type ForcedBreak struct{}

func (TextRun) inline()      {}
func (CombinedText) inline() {}
func (InlineObject) inline() {}
func (Tab) inline()          {}
func (ForcedBreak) inline()  {}

// ItemKind discriminates logical and shaped items.
type ItemKind uint8

const (
	// KindText is a text run or a glyph cluster.
	KindText ItemKind = iota
	// KindCombined is combined upright text.
	KindCombined
	// KindObject is an inline object.
	KindObject
	// KindTab is a tab.
	KindTab
	// KindBreak is a forced break.
	KindBreak
	// KindHyphen is a synthetic hyphen inserted by the line breaker.
	KindHyphen
)

// String returns the string representation of the kind.
func (k ItemKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindCombined:
		return "Combined"
	case KindObject:
		return "Object"
	case KindTab:
		return "Tab"
	case KindBreak:
		return "Break"
	case KindHyphen:
		return "Hyphen"
	default:
		return unknownStr
	}
}

// Placeholder text standing in for non-text items inside the view.
const (
	tabText    = "\t"
	objectText = "\uFFFC"
	breakText  = "\u2029"
)

// LogicalItem is one entry of the per-layout arena.
type LogicalItem struct {
	Kind ItemKind

	// Source is the index of the InlineContent this item came from.
	Source int

	// Text references the caller's string for text kinds and a short
	// placeholder for the others. It is never copied.
	Text string

	// Style is the resolved style; nil for objects and breaks.
	Style *Style

	Language string
	Script   language.Script

	// Object holds the intrinsic metrics of KindObject items.
	Object InlineObject
}

// Len returns the item's byte length in the view.
func (it *LogicalItem) Len() int { return len(it.Text) }
