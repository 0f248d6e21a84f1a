package text

import "math"

// unknownStr is the string returned for unknown enum values.
const unknownStr = "Unknown"

// Direction specifies text direction.
// The zero value, DirectionAuto, asks the analyzer to detect it.
type Direction int

const (
	// DirectionAuto selects LTR or RTL from the first strong character.
	DirectionAuto Direction = iota
	// DirectionLTR is left-to-right text (English, French, etc.)
	DirectionLTR
	// DirectionRTL is right-to-left text (Arabic, Hebrew)
	DirectionRTL
	// DirectionTTB is top-to-bottom text (traditional Chinese, Japanese)
	DirectionTTB
	// DirectionBTT is bottom-to-top text (rare)
	DirectionBTT
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionAuto:
		return "Auto"
	case DirectionLTR:
		return "LTR"
	case DirectionRTL:
		return "RTL"
	case DirectionTTB:
		return "TTB"
	case DirectionBTT:
		return "BTT"
	default:
		return unknownStr
	}
}

// IsHorizontal returns true if the direction is horizontal (LTR or RTL).
func (d Direction) IsHorizontal() bool {
	return d == DirectionLTR || d == DirectionRTL
}

// IsVertical returns true if the direction is vertical (TTB or BTT).
func (d Direction) IsVertical() bool {
	return d == DirectionTTB || d == DirectionBTT
}

// WritingMode selects the inline and block axes.
type WritingMode int

const (
	// HorizontalTB flows lines left/right, stacking them top to bottom.
	HorizontalTB WritingMode = iota
	// VerticalRL flows lines top to bottom, stacking them right to left.
	VerticalRL
	// VerticalLR flows lines top to bottom, stacking them left to right.
	VerticalLR
)

// String returns the CSS name of the writing mode.
func (m WritingMode) String() string {
	switch m {
	case HorizontalTB:
		return "horizontal-tb"
	case VerticalRL:
		return "vertical-rl"
	case VerticalLR:
		return "vertical-lr"
	default:
		return unknownStr
	}
}

// IsVertical reports whether lines run along the y axis.
func (m WritingMode) IsVertical() bool {
	return m == VerticalRL || m == VerticalLR
}

// TextOrientation controls glyph orientation in vertical writing modes.
type TextOrientation int

const (
	// OrientationMixed sets CJK scripts upright and rotates the rest.
	OrientationMixed TextOrientation = iota
	// OrientationUpright sets every glyph upright.
	OrientationUpright
	// OrientationSideways rotates every glyph 90° clockwise.
	OrientationSideways
)

// String returns the string representation of the orientation.
func (o TextOrientation) String() string {
	switch o {
	case OrientationMixed:
		return "Mixed"
	case OrientationUpright:
		return "Upright"
	case OrientationSideways:
		return "Sideways"
	default:
		return unknownStr
	}
}

// Alignment places a line's content inside its segment.
type Alignment int

const (
	// AlignStart aligns to the paragraph's start edge (left for LTR).
	AlignStart Alignment = iota
	// AlignEnd aligns to the paragraph's end edge.
	AlignEnd
	// AlignLeft aligns to the left edge.
	AlignLeft
	// AlignRight aligns to the right edge.
	AlignRight
	// AlignCenter centers the line.
	AlignCenter
	// AlignJustify stretches every line except a paragraph's last.
	AlignJustify
	// AlignJustifyAll stretches every line, including the last.
	AlignJustifyAll
)

// String returns the string representation of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "Start"
	case AlignEnd:
		return "End"
	case AlignLeft:
		return "Left"
	case AlignRight:
		return "Right"
	case AlignCenter:
		return "Center"
	case AlignJustify:
		return "Justify"
	case AlignJustifyAll:
		return "JustifyAll"
	default:
		return unknownStr
	}
}

// Justification selects where justified lines get their extra space.
type Justification int

const (
	// JustifyAuto uses inter-character spacing for CJK and inter-word
	// spacing otherwise.
	JustifyAuto Justification = iota
	// JustifyNone disables stretching even when alignment is Justify.
	JustifyNone
	// JustifyInterWord expands word separators, falling back to
	// inter-character gaps when a line has none.
	JustifyInterWord
	// JustifyInterCharacter expands gaps between clusters, except inside
	// cursive scripts.
	JustifyInterCharacter
	// JustifyDistribute expands every gap between clusters.
	JustifyDistribute
)

// String returns the string representation of the justification mode.
func (j Justification) String() string {
	switch j {
	case JustifyAuto:
		return "Auto"
	case JustifyNone:
		return "None"
	case JustifyInterWord:
		return "InterWord"
	case JustifyInterCharacter:
		return "InterCharacter"
	case JustifyDistribute:
		return "Distribute"
	default:
		return unknownStr
	}
}

// Point is a position in layout coordinates (y grows downward).
type Point struct {
	X, Y float64
}

// Rect represents an axis-aligned rectangle.
type Rect struct {
	// Min is the top-left corner
	MinX, MinY float64
	// Max is the bottom-right corner
	MaxX, MaxY float64
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}

// Empty reports whether the rectangle is empty.
func (r Rect) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Union returns the smallest rectangle containing r and o.
// An empty operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Intersects reports whether r and o share interior area.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}
