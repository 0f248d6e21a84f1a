package text

import (
	"math"
	"slices"
	"sort"
)

// spanEpsilon is the width below which a span is treated as empty.
const spanEpsilon = 1e-9

// Span is a horizontal interval [X0, X1].
type Span struct {
	X0, X1 float64
}

// Width returns the span length.
func (s Span) Width() float64 { return s.X1 - s.X0 }

// Shape is a flow boundary or exclusion region.
// Implementations are Rectangle, Circle, Ellipse, *Polygon and *Path.
type Shape interface {
	// Bounds returns the bounding box.
	Bounds() Rect

	// Spans returns the x intervals inside the shape for every y in
	// [y0, y1], sorted and disjoint. Text placed in them stays inside the
	// shape over the whole band.
	Spans(y0, y1 float64) []Span

	// Cover returns the x intervals the shape touches anywhere in
	// [y0, y1], sorted and disjoint.
	Cover(y0, y1 float64) []Span

	// Inflate grows the shape by margin on every side.
	Inflate(margin float64) Shape

	// prepare maps the shape into flow coordinates.
	prepare(t flowTransform) Shape
}

// flowTransform maps physical coordinates to flow coordinates, where x is
// the inline axis and y the block axis. Horizontal modes are the identity.
type flowTransform struct {
	vertical bool
	flip     bool    // block axis runs right to left
	width    float64 // physical width the flip mirrors around
}

func (t flowTransform) point(p Point) Point {
	if !t.vertical {
		return p
	}
	if t.flip {
		return Point{X: p.Y, Y: t.width - p.X}
	}
	return Point{X: p.Y, Y: p.X}
}

// physical maps a flow point back to layout coordinates.
func (t flowTransform) physical(p Point) Point {
	if !t.vertical {
		return p
	}
	if t.flip {
		return Point{X: t.width - p.Y, Y: p.X}
	}
	return Point{X: p.Y, Y: p.X}
}

func (t flowTransform) rect(r Rect) Rect {
	a, b := t.point(Point{r.MinX, r.MinY}), t.point(Point{r.MaxX, r.MaxY})
	return Rect{MinX: math.Min(a.X, b.X), MinY: math.Min(a.Y, b.Y), MaxX: math.Max(a.X, b.X), MaxY: math.Max(a.Y, b.Y)}
}

// physicalRect maps a flow rectangle back to layout coordinates.
func (t flowTransform) physicalRect(r Rect) Rect {
	a, b := t.physical(Point{r.MinX, r.MinY}), t.physical(Point{r.MaxX, r.MaxY})
	return Rect{MinX: math.Min(a.X, b.X), MinY: math.Min(a.Y, b.Y), MaxX: math.Max(a.X, b.X), MaxY: math.Max(a.Y, b.Y)}
}

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	X, Y, W, H float64
}

// Bounds implements Shape.
func (r Rectangle) Bounds() Rect { return Rect{r.X, r.Y, r.X + r.W, r.Y + r.H} }

// Spans implements Shape.
func (r Rectangle) Spans(y0, y1 float64) []Span {
	if r.W <= 0 || y0 < r.Y || y1 > r.Y+r.H {
		return nil
	}
	return []Span{{r.X, r.X + r.W}}
}

// Cover implements Shape.
func (r Rectangle) Cover(y0, y1 float64) []Span {
	if r.W <= 0 || r.H <= 0 || y1 <= r.Y || y0 >= r.Y+r.H {
		return nil
	}
	return []Span{{r.X, r.X + r.W}}
}

// Inflate implements Shape.
func (r Rectangle) Inflate(m float64) Shape {
	return Rectangle{X: r.X - m, Y: r.Y - m, W: math.Max(0, r.W+2*m), H: math.Max(0, r.H+2*m)}
}

func (r Rectangle) prepare(t flowTransform) Shape {
	b := t.rect(r.Bounds())
	return Rectangle{X: b.MinX, Y: b.MinY, W: b.Width(), H: b.Height()}
}

// Circle is a circle centered at (CX, CY).
type Circle struct {
	CX, CY, R float64
}

// Bounds implements Shape.
func (c Circle) Bounds() Rect { return c.ellipse().Bounds() }

// Spans implements Shape.
func (c Circle) Spans(y0, y1 float64) []Span { return c.ellipse().Spans(y0, y1) }

// Cover implements Shape.
func (c Circle) Cover(y0, y1 float64) []Span { return c.ellipse().Cover(y0, y1) }

// Inflate implements Shape.
func (c Circle) Inflate(m float64) Shape { return Circle{c.CX, c.CY, math.Max(0, c.R+m)} }

func (c Circle) prepare(t flowTransform) Shape {
	p := t.point(Point{c.CX, c.CY})
	return Circle{p.X, p.Y, c.R}
}

func (c Circle) ellipse() Ellipse { return Ellipse{c.CX, c.CY, c.R, c.R} }

// Ellipse is an axis-aligned ellipse centered at (CX, CY).
type Ellipse struct {
	CX, CY, RX, RY float64
}

// Bounds implements Shape.
func (e Ellipse) Bounds() Rect {
	return Rect{e.CX - e.RX, e.CY - e.RY, e.CX + e.RX, e.CY + e.RY}
}

// halfWidth returns the half chord at vertical distance d from the center.
func (e Ellipse) halfWidth(d float64) float64 {
	if e.RY <= 0 || d >= e.RY {
		return 0
	}
	q := d / e.RY
	return e.RX * math.Sqrt(1-q*q)
}

// Spans implements Shape. The narrowest chord in the band is the one
// farthest from the center.
func (e Ellipse) Spans(y0, y1 float64) []Span {
	d := math.Max(math.Abs(y0-e.CY), math.Abs(y1-e.CY))
	h := e.halfWidth(d)
	if h <= spanEpsilon {
		return nil
	}
	return []Span{{e.CX - h, e.CX + h}}
}

// Cover implements Shape. The widest chord is the one nearest the center.
func (e Ellipse) Cover(y0, y1 float64) []Span {
	var d float64
	switch {
	case e.CY < y0:
		d = y0 - e.CY
	case e.CY > y1:
		d = e.CY - y1
	}
	h := e.halfWidth(d)
	if h <= spanEpsilon {
		return nil
	}
	return []Span{{e.CX - h, e.CX + h}}
}

// Inflate implements Shape.
func (e Ellipse) Inflate(m float64) Shape {
	return Ellipse{e.CX, e.CY, math.Max(0, e.RX+m), math.Max(0, e.RY+m)}
}

func (e Ellipse) prepare(t flowTransform) Shape {
	p := t.point(Point{e.CX, e.CY})
	if t.vertical {
		return Ellipse{p.X, p.Y, e.RY, e.RX}
	}
	return Ellipse{p.X, p.Y, e.RX, e.RY}
}

// Polygon is a closed polygon filled with the even-odd rule.
type Polygon struct {
	Points []Point
}

// NewPolygon creates a polygon from alternating x, y coordinates.
func NewPolygon(coords ...float64) *Polygon {
	p := &Polygon{Points: make([]Point, 0, len(coords)/2)}
	for i := 0; i+1 < len(coords); i += 2 {
		p.Points = append(p.Points, Point{coords[i], coords[i+1]})
	}
	return p
}

func (p *Polygon) asRings() rings { return rings{p.Points} }

// Bounds implements Shape.
func (p *Polygon) Bounds() Rect { return p.asRings().Bounds() }

// Spans implements Shape.
func (p *Polygon) Spans(y0, y1 float64) []Span { return p.asRings().Spans(y0, y1) }

// Cover implements Shape.
func (p *Polygon) Cover(y0, y1 float64) []Span { return p.asRings().Cover(y0, y1) }

// Inflate implements Shape. The result is conservative: it reports at
// least the area within margin of the polygon.
func (p *Polygon) Inflate(m float64) Shape { return inflated{p, m} }

func (p *Polygon) prepare(t flowTransform) Shape { return p.asRings().prepare(t) }

// Bounds implements Shape.
func (p *Path) Bounds() Rect { return rings(p.flatten()).Bounds() }

// Spans implements Shape.
func (p *Path) Spans(y0, y1 float64) []Span { return rings(p.flatten()).Spans(y0, y1) }

// Cover implements Shape.
func (p *Path) Cover(y0, y1 float64) []Span { return rings(p.flatten()).Cover(y0, y1) }

// Inflate implements Shape. The result is conservative, as for Polygon.
func (p *Path) Inflate(m float64) Shape { return inflated{p, m} }

func (p *Path) prepare(t flowTransform) Shape { return rings(p.flatten()).prepare(t) }

// rings is a set of closed polylines filled with the even-odd rule.
type rings [][]Point

func (rs rings) Bounds() Rect {
	b := Rect{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, r := range rs {
		for _, p := range r {
			b.MinX, b.MaxX = math.Min(b.MinX, p.X), math.Max(b.MaxX, p.X)
			b.MinY, b.MaxY = math.Min(b.MinY, p.Y), math.Max(b.MaxY, p.Y)
		}
	}
	if b.MinX > b.MaxX {
		return Rect{}
	}
	return b
}

func (rs rings) Inflate(m float64) Shape { return inflated{rs, m} }

func (rs rings) prepare(t flowTransform) Shape {
	out := make(rings, len(rs))
	for i, r := range rs {
		out[i] = make([]Point, len(r))
		for j, p := range r {
			out[i][j] = t.point(p)
		}
	}
	return out
}

// scanline returns the even-odd interior at y.
func (rs rings) scanline(y float64) []Span {
	var xs []float64
	for _, r := range rs {
		for i := range r {
			a, b := r[i], r[(i+1)%len(r)]
			if (a.Y <= y && y < b.Y) || (b.Y <= y && y < a.Y) {
				xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
			}
		}
	}
	sort.Float64s(xs)
	spans := make([]Span, 0, len(xs)/2)
	for i := 0; i+1 < len(xs); i += 2 {
		if xs[i+1]-xs[i] > spanEpsilon {
			spans = append(spans, Span{xs[i], xs[i+1]})
		}
	}
	return spans
}

// bands splits [y0, y1] at every vertex y so that edges are linear inside
// each sub-band.
func (rs rings) bands(y0, y1 float64) []float64 {
	ys := []float64{y0, y1}
	for _, r := range rs {
		for _, p := range r {
			if p.Y > y0 && p.Y < y1 {
				ys = append(ys, p.Y)
			}
		}
	}
	sort.Float64s(ys)
	return slices.Compact(ys)
}

// samples returns the scanlines just inside both ends of a sub-band.
func (rs rings) samples(a, b float64) (top, bottom []Span) {
	eps := (b - a) * 1e-6
	return rs.scanline(a + eps), rs.scanline(b - eps)
}

// Spans intersects the interiors at both ends of every sub-band; inside
// a sub-band span ends move linearly, so the ends bound them.
func (rs rings) Spans(y0, y1 float64) []Span {
	if y1 <= y0 {
		return rs.scanline(y0)
	}
	ys := rs.bands(y0, y1)
	var out []Span
	first := true
	for i := 0; i+1 < len(ys); i++ {
		top, bottom := rs.samples(ys[i], ys[i+1])
		s := intersectSpans(top, bottom)
		if first {
			out, first = s, false
		} else {
			out = intersectSpans(out, s)
		}
		if len(out) == 0 {
			return nil
		}
	}
	return out
}

// Cover unions the swept interiors of every sub-band.
func (rs rings) Cover(y0, y1 float64) []Span {
	if y1 <= y0 {
		return rs.scanline(y0)
	}
	ys := rs.bands(y0, y1)
	var all []Span
	for i := 0; i+1 < len(ys); i++ {
		top, bottom := rs.samples(ys[i], ys[i+1])
		if len(top) == len(bottom) {
			for k := range top {
				all = append(all, Span{math.Min(top[k].X0, bottom[k].X0), math.Max(top[k].X1, bottom[k].X1)})
			}
			continue
		}
		// The topology changed inside the band; take the hull.
		if hull, ok := hullOf(append(top, bottom...)); ok {
			all = append(all, hull)
		}
	}
	return unionSpans(all)
}

// inflated widens a shape by a margin without computing an exact offset
// curve. Interior queries shrink to what is certainly inside; cover
// queries grow to everything that may be touched.
type inflated struct {
	s Shape
	m float64
}

func (in inflated) Bounds() Rect {
	b := in.s.Bounds()
	return Rect{b.MinX - in.m, b.MinY - in.m, b.MaxX + in.m, b.MaxY + in.m}
}

func (in inflated) Spans(y0, y1 float64) []Span {
	return widen(in.s.Spans(y0, y1), in.m)
}

func (in inflated) Cover(y0, y1 float64) []Span {
	return widen(in.s.Cover(y0-in.m, y1+in.m), in.m)
}

func (in inflated) Inflate(m float64) Shape { return inflated{in.s, in.m + m} }

func (in inflated) prepare(t flowTransform) Shape { return inflated{in.s.prepare(t), in.m} }

func widen(spans []Span, m float64) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Width()+2*m > spanEpsilon {
			out = append(out, Span{s.X0 - m, s.X1 + m})
		}
	}
	return unionSpans(out)
}

func hullOf(spans []Span) (Span, bool) {
	if len(spans) == 0 {
		return Span{}, false
	}
	h := spans[0]
	for _, s := range spans[1:] {
		h.X0, h.X1 = math.Min(h.X0, s.X0), math.Max(h.X1, s.X1)
	}
	return h, true
}

// unionSpans sorts and merges overlapping spans.
func unionSpans(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].X0 < spans[j].X0 })
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.X0 <= last.X1 {
			last.X1 = math.Max(last.X1, s.X1)
			continue
		}
		out = append(out, s)
	}
	return out
}

// intersectSpans intersects two sorted, disjoint span lists.
func intersectSpans(a, b []Span) []Span {
	var out []Span
	for i, j := 0, 0; i < len(a) && j < len(b); {
		lo, hi := math.Max(a[i].X0, b[j].X0), math.Min(a[i].X1, b[j].X1)
		if hi-lo > spanEpsilon {
			out = append(out, Span{lo, hi})
		}
		if a[i].X1 < b[j].X1 {
			i++
		} else {
			j++
		}
	}
	return out
}

// subtractSpans removes the sorted, disjoint cut spans from a.
func subtractSpans(a, cut []Span) []Span {
	var out []Span
	for _, s := range a {
		lo := s.X0
		for _, c := range cut {
			if c.X1 <= lo || c.X0 >= s.X1 {
				continue
			}
			if c.X0-lo > spanEpsilon {
				out = append(out, Span{lo, c.X0})
			}
			lo = math.Max(lo, c.X1)
		}
		if s.X1-lo > spanEpsilon {
			out = append(out, Span{lo, s.X1})
		}
	}
	return out
}

// lineSegments returns the free intervals of the band [y0, y1]: the
// boundary's interior minus everything any exclusion touches.
func lineSegments(boundary Shape, exclusions []Shape, y0, y1 float64) []Span {
	free := boundary.Spans(y0, y1)
	if len(free) == 0 || len(exclusions) == 0 {
		return free
	}
	var cut []Span
	for _, ex := range exclusions {
		cut = append(cut, ex.Cover(y0, y1)...)
	}
	return subtractSpans(free, unionSpans(cut))
}

// pickSegment chooses the widest segment; equal widths go to the leftmost.
func pickSegment(segs []Span) (Span, bool) {
	if len(segs) == 0 {
		return Span{}, false
	}
	best := segs[0]
	for _, s := range segs[1:] {
		if s.Width() > best.Width()+spanEpsilon {
			best = s
		}
	}
	return best, true
}
