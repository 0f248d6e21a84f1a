package cache

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/gogpu/textflow/text"
)

// keyVersion is bumped whenever the encoding below changes.
const keyVersion = 1

// Tags for content items and shapes in the key encoding.
const (
	tagTextRun byte = iota + 1
	tagCombined
	tagObject
	tagTab
	tagBreak

	tagNoShape
	tagRectangle
	tagCircle
	tagEllipse
	tagPolygon
	tagPath

	tagMoveTo
	tagLineTo
	tagQuadTo
	tagCubicTo
	tagClose
)

// keyWriter builds the canonical byte encoding of one layout request.
// Every variable-length field is length-prefixed, so distinct requests
// never encode to the same bytes.
type keyWriter struct {
	buf []byte
}

func (w *keyWriter) putByte(b byte)     { w.buf = append(w.buf, b) }
func (w *keyWriter) putUint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *keyWriter) putInt(v int)       { w.putUint64(uint64(v)) } //nolint:gosec // bit pattern only
func (w *keyWriter) putFloat(v float64) { w.putUint64(math.Float64bits(v)) }

func (w *keyWriter) putBool(v bool) {
	if v {
		w.putByte(1)
	} else {
		w.putByte(0)
	}
}

func (w *keyWriter) putString(s string) {
	w.putInt(len(s))
	w.buf = append(w.buf, s...)
}

func (w *keyWriter) putPoint(p text.Point) {
	w.putFloat(p.X)
	w.putFloat(p.Y)
}

// style records what the resolver returns for h, including whether it
// resolves at all.
func (w *keyWriter) putStyle(styles text.StyleResolver, h text.StyleHandle) {
	w.putString(string(h))
	if styles == nil {
		w.putByte(0)
		return
	}
	st, ok := styles.ResolveStyle(h)
	w.putBool(ok)
	if !ok {
		return
	}
	w.putString(st.Family)
	w.putFloat(st.Size)
	w.putFloat(st.LetterSpacing)
	w.putFloat(st.WordSpacing)
	w.putFloat(st.LineHeight)
	w.putFloat(st.TabSize)
	w.putUint64(uint64(st.Color))
	w.putInt(len(st.Features))
	for _, f := range st.Features {
		w.putString(f)
	}
}

// shape encodes s. It reports false for shapes without a public
// description, such as the result of Inflate on a polygon.
func (w *keyWriter) putShape(s text.Shape) bool {
	switch s := s.(type) {
	case nil:
		w.putByte(tagNoShape)
	case text.Rectangle:
		w.putByte(tagRectangle)
		w.putFloat(s.X)
		w.putFloat(s.Y)
		w.putFloat(s.W)
		w.putFloat(s.H)
	case text.Circle:
		w.putByte(tagCircle)
		w.putFloat(s.CX)
		w.putFloat(s.CY)
		w.putFloat(s.R)
	case text.Ellipse:
		w.putByte(tagEllipse)
		w.putFloat(s.CX)
		w.putFloat(s.CY)
		w.putFloat(s.RX)
		w.putFloat(s.RY)
	case *text.Polygon:
		if s == nil {
			return false
		}
		w.putByte(tagPolygon)
		w.putInt(len(s.Points))
		for _, p := range s.Points {
			w.putPoint(p)
		}
	case *text.Path:
		if s == nil {
			return false
		}
		w.putByte(tagPath)
		w.putInt(len(s.Elements))
		for _, e := range s.Elements {
			switch e := e.(type) {
			case text.MoveTo:
				w.putByte(tagMoveTo)
				w.putPoint(e.Point)
			case text.LineTo:
				w.putByte(tagLineTo)
				w.putPoint(e.Point)
			case text.QuadTo:
				w.putByte(tagQuadTo)
				w.putPoint(e.Control)
				w.putPoint(e.Point)
			case text.CubicTo:
				w.putByte(tagCubicTo)
				w.putPoint(e.Control1)
				w.putPoint(e.Control2)
				w.putPoint(e.Point)
			case text.Close:
				w.putByte(tagClose)
			default:
				return false
			}
		}
	default:
		return false
	}
	return true
}

// appendKey appends the canonical encoding of a layout request to buf.
// generation is the font manager's generation, so font changes never
// reuse a layout. ok is false when the request cannot be encoded.
func appendKey(buf []byte, generation uint64, content []text.InlineContent, styles text.StyleResolver, c *text.Constraints) (key []byte, ok bool) {
	w := keyWriter{buf: buf}
	w.putByte(keyVersion)
	w.putUint64(generation)

	w.putInt(len(content))
	for _, item := range content {
		switch item := item.(type) {
		case text.TextRun:
			w.putByte(tagTextRun)
			w.putString(item.Text)
			w.putStyle(styles, item.Style)
			w.putString(item.Language)
			w.putUint64(uint64(item.Script))
		case text.CombinedText:
			w.putByte(tagCombined)
			w.putString(item.Text)
			w.putStyle(styles, item.Style)
		case text.InlineObject:
			w.putByte(tagObject)
			w.putFloat(item.Width)
			w.putFloat(item.Height)
			w.putFloat(item.Baseline)
		case text.Tab:
			w.putByte(tagTab)
			w.putStyle(styles, item.Style)
		case text.ForcedBreak:
			w.putByte(tagBreak)
		default:
			return nil, false
		}
	}
	// Items with no style of their own fall back to the empty handle.
	w.putStyle(styles, "")

	w.putFloat(c.Width)
	w.putFloat(c.Height)
	if !w.putShape(c.Boundary) {
		return nil, false
	}
	w.putInt(len(c.Exclusions))
	for _, ex := range c.Exclusions {
		if !w.putShape(ex) {
			return nil, false
		}
	}
	w.putFloat(c.ExclusionMargin)
	w.putInt(int(c.WritingMode))
	w.putInt(int(c.Orientation))
	w.putInt(int(c.Direction))
	w.putInt(int(c.Align))
	w.putInt(int(c.Justify))
	w.putBool(c.Hyphenate)
	w.putString(c.Language)
	w.putFloat(c.LineHeight)
	w.putFloat(c.TextIndent)
	w.putInt(c.LineClamp)
	w.putFloat(c.TabSize)
	return w.buf, true
}

// hashKey computes the FNV-1a hash of an encoded key.
func hashKey(key []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(key) // fnv.Write never returns an error
	return h.Sum64()
}
