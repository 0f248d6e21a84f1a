package text

import "math"

// flatnessTolerance is the maximum distance between a curve and its
// flattened polyline, in pixels.
const flatnessTolerance = 0.1

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo starts a new subpath.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo adds a straight edge.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// QuadTo adds a quadratic Bezier edge.
type QuadTo struct {
	Control Point
	Point   Point
}

func (QuadTo) isPathElement() {}

// CubicTo adds a cubic Bezier edge.
type CubicTo struct {
	Control1 Point
	Control2 Point
	Point    Point
}

func (CubicTo) isPathElement() {}

// Close closes the current subpath.
type Close struct{}

func (Close) isPathElement() {}

// Path is a flow boundary or exclusion outlined by lines and curves.
// Subpaths are implicitly closed and filled with the even-odd rule.
type Path struct {
	Elements []PathElement
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{Elements: make([]PathElement, 0, 16)}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) *Path {
	p.Elements = append(p.Elements, MoveTo{Point: Point{x, y}})
	return p
}

// LineTo adds an edge to (x, y).
func (p *Path) LineTo(x, y float64) *Path {
	p.Elements = append(p.Elements, LineTo{Point: Point{x, y}})
	return p
}

// QuadraticTo adds a quadratic Bezier edge.
func (p *Path) QuadraticTo(cx, cy, x, y float64) *Path {
	p.Elements = append(p.Elements, QuadTo{Control: Point{cx, cy}, Point: Point{x, y}})
	return p
}

// CubicTo adds a cubic Bezier edge.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	p.Elements = append(p.Elements, CubicTo{
		Control1: Point{c1x, c1y},
		Control2: Point{c2x, c2y},
		Point:    Point{x, y},
	})
	return p
}

// Close closes the current subpath.
func (p *Path) Close() *Path {
	p.Elements = append(p.Elements, Close{})
	return p
}

// flatten converts the path to closed polylines.
func (p *Path) flatten() [][]Point {
	var rings [][]Point
	var ring []Point
	var current Point
	emit := func(pt Point) { ring = append(ring, pt) }
	flush := func() {
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
		ring = nil
	}
	for _, elem := range p.Elements {
		switch e := elem.(type) {
		case MoveTo:
			flush()
			emit(e.Point)
			current = e.Point
		case LineTo:
			if ring == nil {
				emit(current)
			}
			emit(e.Point)
			current = e.Point
		case QuadTo:
			if ring == nil {
				emit(current)
			}
			flattenQuad(current, e.Control, e.Point, flatnessTolerance*flatnessTolerance, emit)
			current = e.Point
		case CubicTo:
			if ring == nil {
				emit(current)
			}
			flattenCubic(current, e.Control1, e.Control2, e.Point, flatnessTolerance*flatnessTolerance, emit)
			current = e.Point
		case Close:
			if len(ring) > 0 {
				current = ring[0]
			}
			flush()
		}
	}
	flush()
	return rings
}

func mid(a, b Point) Point { return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }

func distSq(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// flattenQuad subdivides until the control point is within tolerance of
// the chord midpoint, then emits the end point.
func flattenQuad(p0, p1, p2 Point, toleranceSq float64, fn func(Point)) {
	if distSq(p1, mid(p0, p2)) <= toleranceSq {
		fn(p2)
		return
	}
	a, b := mid(p0, p1), mid(p1, p2)
	m := mid(a, b)
	flattenQuad(p0, a, m, toleranceSq, fn)
	flattenQuad(m, b, p2, toleranceSq, fn)
}

// flattenCubic subdivides until both control points are within tolerance
// of the chord, then emits the end point.
func flattenCubic(p0, p1, p2, p3 Point, toleranceSq float64, fn func(Point)) {
	ux := 3*p1.X - 2*p0.X - p3.X
	uy := 3*p1.Y - 2*p0.Y - p3.Y
	vx := 3*p2.X - p0.X - 2*p3.X
	vy := 3*p2.Y - p0.Y - 2*p3.Y
	if math.Max(ux*ux, vx*vx)+math.Max(uy*uy, vy*vy) <= toleranceSq*16 {
		fn(p3)
		return
	}
	p01, p12, p23 := mid(p0, p1), mid(p1, p2), mid(p2, p3)
	a, b := mid(p01, p12), mid(p12, p23)
	m := mid(a, b)
	flattenCubic(p0, p01, a, m, toleranceSq, fn)
	flattenCubic(m, b, p23, p3, toleranceSq, fn)
}
