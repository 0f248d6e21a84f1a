package text

import "github.com/go-text/typesetting/language"

// GlyphID is a glyph index within a font.
type GlyphID uint32

// GlyphKind tells a renderer what a glyph stands for.
type GlyphKind uint8

const (
	// GlyphCharacter is an ordinary shaped glyph.
	GlyphCharacter GlyphKind = iota
	// GlyphHyphen is a synthetic hyphen added at a hyphenation break.
	GlyphHyphen
	// GlyphNotDef is a missing-glyph placeholder.
	GlyphNotDef
	// GlyphKashida is a justification elongation.
	GlyphKashida
)

// String returns the string representation of the glyph kind.
func (k GlyphKind) String() string {
	switch k {
	case GlyphCharacter:
		return "Character"
	case GlyphHyphen:
		return "Hyphen"
	case GlyphNotDef:
		return "NotDef"
	case GlyphKashida:
		return "Kashida"
	default:
		return unknownStr
	}
}

// GlyphOrientation is how a glyph is set in vertical text.
type GlyphOrientation uint8

const (
	// OrientHorizontal is horizontal text.
	OrientHorizontal GlyphOrientation = iota
	// OrientUpright is a glyph standing upright in a vertical line.
	OrientUpright
	// OrientRotated is a glyph rotated 90° clockwise in a vertical line.
	OrientRotated
)

// String returns the string representation of the orientation.
func (o GlyphOrientation) String() string {
	switch o {
	case OrientHorizontal:
		return "Horizontal"
	case OrientUpright:
		return "Upright"
	case OrientRotated:
		return "Rotated"
	default:
		return unknownStr
	}
}

// Glyph is one positioned glyph.
type Glyph struct {
	ID GlyphID

	// Cluster is the view byte offset of the cluster this glyph belongs to.
	Cluster int

	// Advance is the horizontal advance; VAdvance the vertical one.
	Advance  float64
	VAdvance float64

	// XOffset and YOffset adjust the drawing position (y grows downward).
	XOffset, YOffset float64

	Kind        GlyphKind
	Orientation GlyphOrientation

	// X and Y are the absolute pen position, set by the positioner.
	X, Y float64
}

// ShapedItem is the unit the line breaker works on: one glyph cluster, an
// inline object, a tab, a forced break or a synthetic hyphen. Items are
// never split after shaping.
type ShapedItem struct {
	Kind ItemKind

	// Start and End delimit the item's view bytes. A synthetic hyphen has
	// Start == End.
	Start, End int

	Level  uint8
	Script language.Script
	Style  *Style
	Source *FontSource // nil for objects and breaks

	Glyphs []Glyph

	// Advance is the extent along the inline axis.
	Advance float64

	// Ascent and Descent are measured from the baseline, both positive.
	Ascent, Descent float64

	Object InlineObject

	flags   itemFlags
	item    int     // logical item index
	tabStop float64 // tab stop interval for KindTab
}

type itemFlags uint8

const (
	flagSpace          itemFlags = 1 << iota // word separator
	flagBreakAfter                           // soft wrap opportunity after the item
	flagMandatoryAfter                       // forced line end after the item
	flagGraphemeEnd                          // item ends on a grapheme boundary
)

// IsSpace reports whether the item is a word separator.
func (it *ShapedItem) IsSpace() bool { return it.flags&flagSpace != 0 }

// IsRTL reports whether the item's level is odd.
func (it *ShapedItem) IsRTL() bool { return it.Level&1 == 1 }

// CanBreakAfter reports whether a line may end after the item.
func (it *ShapedItem) CanBreakAfter() bool {
	return it.flags&(flagBreakAfter|flagMandatoryAfter) != 0
}

func (it *ShapedItem) has(f itemFlags) bool { return it.flags&f != 0 }

// height is ascent plus descent.
func (it *ShapedItem) height() float64 { return it.Ascent + it.Descent }
