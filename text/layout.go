package text

import (
	"math"
	"slices"
)

// Constraints describe where and how content is laid out.
type Constraints struct {
	// Width and Height of the layout area. Zero Height means unbounded.
	// In vertical writing modes Height is the inline extent.
	Width, Height float64

	// Boundary replaces the Width × Height rectangle when set.
	Boundary Shape

	// Exclusions are regions text must avoid, grown by ExclusionMargin.
	Exclusions      []Shape
	ExclusionMargin float64

	WritingMode WritingMode
	Orientation TextOrientation

	// Direction forces the paragraph direction; DirectionAuto detects it.
	Direction Direction

	Align   Alignment
	Justify Justification

	// Hyphenate enables dictionary hyphenation. Language, when set,
	// overrides the runs' language hints for dictionary lookup.
	Hyphenate bool
	Language  string

	// LineHeight fixes the block advance of every line when positive.
	LineHeight float64

	// TextIndent shortens the first line of each paragraph at its start side.
	TextIndent float64

	// LineClamp limits the number of lines when positive; the rest overflows.
	LineClamp int

	// TabSize overrides the styles' tab size (in spaces) when positive.
	TabSize float64
}

// PositionedItem is a shaped item placed on a line.
//
// In horizontal modes X is the item's left edge and Y the baseline; an
// inline object's box spans Ascent above Y to Descent below it.
// In vertical modes X is the line's central baseline and Y the item's
// top edge. Glyph positions are absolute.
type PositionedItem struct {
	ShapedItem
	X, Y float64

	// Width is the item's extent along the inline axis, including any
	// justification space added after it.
	Width float64
}

// Line is one laid out line.
type Line struct {
	// Items are in visual order.
	Items []PositionedItem

	// Rect bounds the line's content and line box height.
	Rect Rect

	// Baseline is the baseline y (horizontal) or central baseline x (vertical).
	Baseline float64

	// Ascent and Descent are the maxima over the line's items.
	Ascent, Descent float64

	// Start and End delimit the view bytes on the line.
	Start, End int

	// IsLast marks the last line of a paragraph.
	IsLast bool

	// Hyphenated is set when the line ends with a synthetic hyphen.
	Hyphenated bool

	// Segment is the inline interval the line was fitted into.
	Segment Span
}

// Height returns the line box extent along the block axis.
func (l *Line) Height() float64 {
	return l.Ascent + l.Descent
}

// LineText returns the view text of line i in logical order. Inline
// objects appear as U+FFFC.
func (l *Layout) LineText(i int) string {
	if i < 0 || i >= len(l.Lines) {
		return ""
	}
	return l.slice(l.Lines[i].Start, l.Lines[i].End)
}

// slice returns the view text in [start, end) without copying when the
// range lies inside one item.
func (l *Layout) slice(start, end int) string {
	if l.view == nil {
		return ""
	}
	return l.view.Slice(start, end)
}

// textLen returns the byte length of the laid out view.
func (l *Layout) textLen() int {
	if l.view == nil {
		return 0
	}
	return l.view.Len()
}

// Layout is the result of laying out content.
type Layout struct {
	Lines  []Line
	Bounds Rect

	// Overflow describes content that did not fit; nil when all fit.
	Overflow *OverflowError

	// FontsUsed names every font that supplied glyphs.
	FontsUsed []string

	// Diagnostics holds the errors of locally degraded content.
	Diagnostics []error

	// Pending is set when a requested font was still loading. Such layouts
	// use fallback fonts and should be recomputed once loading finishes.
	Pending bool

	BaseDirection Direction
	WritingMode   WritingMode

	view *LogicalItemView // for line text and caret movement by grapheme
}

// LayoutText runs the full pipeline: analysis, bidi resolution, font
// fallback and shaping, orientation, line breaking and positioning.
//
// Only malformed constraints fail with ErrInvalidConstraints; every other
// problem degrades the affected content and is listed in Diagnostics.
func LayoutText(fm *FontManager, content []InlineContent, styles StyleResolver, c Constraints) (*Layout, error) {
	inline := c.Width
	if c.WritingMode.IsVertical() {
		inline = c.Height
	}
	if c.Boundary == nil && (inline <= 0 || math.IsNaN(inline)) {
		return nil, ErrInvalidConstraints
	}
	if fm == nil {
		fm = NewFontManager()
	}

	a := Analyze(content, styles, c.Direction)
	visual := ResolveBidi(a)
	sr := shapeContent(fm, a, visual, c.WritingMode.IsVertical())
	items := orient(fm.glyphs, a.View, sr.items, c.WritingMode, c.Orientation)

	fl := newFlow(&c)
	b := &breaker{
		items:    items,
		analysis: a,
		c:        &c,
		flow:     fl,
		glyphs:   fm.glyphs,
		strut:    strutFor(items),
	}
	b.run()

	out := &Layout{
		Overflow:      b.overflow,
		FontsUsed:     slices.Sorted(slices.Values(sr.fonts)),
		Pending:       sr.pending,
		BaseDirection: a.Base,
		WritingMode:   c.WritingMode,
		view:          a.View,
	}
	out.Diagnostics = append(append(out.Diagnostics, a.Diagnostics...), sr.diagnostics...)

	p := positioner{c: &c, flow: fl, base: a.Base, view: a.View, glyphs: fm.glyphs}
	out.Lines = make([]Line, 0, len(b.lines))
	for i := range b.lines {
		line := p.position(&b.lines[i])
		out.Bounds = out.Bounds.Union(line.Rect)
		out.Lines = append(out.Lines, line)
	}
	if out.Overflow != nil {
		Logger().Debug("text: layout overflow",
			"start", out.Overflow.Start, "end", out.Overflow.End, "lines", out.Overflow.Lines)
	}
	return out, nil
}

// flow is the prepared geometry in flow coordinates.
type flow struct {
	t          flowTransform
	boundary   Shape
	exclusions []Shape
	top        float64 // first line's block position
	limit      float64 // block end
	bounds     Rect    // boundary bounds in flow coordinates
	scanEnd    float64 // below this no exclusion or boundary edge changes
}

func newFlow(c *Constraints) *flow {
	t := flowTransform{
		vertical: c.WritingMode.IsVertical(),
		flip:     c.WritingMode == VerticalRL,
		width:    c.Width,
	}
	f := &flow{t: t}
	if c.Boundary != nil {
		f.boundary = c.Boundary.prepare(t)
	} else {
		// The default rectangle is built directly in flow coordinates.
		inline, block := c.Width, c.Height
		if t.vertical {
			inline, block = c.Height, c.Width
		}
		if block <= 0 {
			block = math.Inf(1)
		}
		f.boundary = Rectangle{W: inline, H: block}
	}
	for _, ex := range c.Exclusions {
		if c.ExclusionMargin != 0 {
			ex = ex.Inflate(c.ExclusionMargin)
		}
		f.exclusions = append(f.exclusions, ex.prepare(t))
	}
	f.bounds = f.boundary.Bounds()
	f.top = f.bounds.MinY
	if math.IsInf(f.top, -1) {
		f.top = 0
	}
	f.limit = f.bounds.MaxY
	f.scanEnd = f.limit
	if math.IsInf(f.scanEnd, 1) {
		f.scanEnd = f.top
		for _, ex := range f.exclusions {
			f.scanEnd = math.Max(f.scanEnd, ex.Bounds().MaxY)
		}
	}
	return f
}

// strutFor returns the metrics used by lines with no text: the first
// text item's, or a default 16px approximation.
func strutFor(items []ShapedItem) Metrics {
	for i := range items {
		if items[i].Kind == KindText && items[i].height() > 0 {
			return Metrics{Ascent: items[i].Ascent, Descent: items[i].Descent}
		}
	}
	return fallbackMetrics(DefaultStyle().Size)
}
