package geom

import "math"

// Curve is the common surface both a Path and a re-parametrized
// ClosedPath expose to the rest of the system (path sorting and the
// final point-generation stage need to treat the two uniformly; see
// ClosedPath's doc comment).
type Curve interface {
	Point(t float64) Point
	Length() float64
	BBox() Rect
	IsClosed(tol float64) bool
	Rotated(theta float64, origin Point) Curve
	Reversed() Curve
}

// Path is an ordered, non-empty list of segments.
type Path struct {
	Segments []Segment
}

// NewPath builds a Path from the given segments.
func NewPath(segs ...Segment) *Path {
	return &Path{Segments: segs}
}

var _ Curve = (*Path)(nil)

// Length returns the sum of the lengths of p's segments.
func (p *Path) Length() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Length()
	}
	return total
}

// BBox returns the minimal rectangle enclosing every segment.
func (p *Path) BBox() Rect {
	if len(p.Segments) == 0 {
		return Rect{}
	}
	r := p.Segments[0].BBox()
	for _, s := range p.Segments[1:] {
		r = r.Union(s.BBox())
	}
	return r
}

// start returns the path's first point.
func (p *Path) start() Point {
	return p.Segments[0].Point(0)
}

// End returns the path's last point.
func (p *Path) End() Point {
	return p.Segments[len(p.Segments)-1].Point(1)
}

// Start returns the path's first point.
func (p *Path) Start() Point {
	return p.start()
}

// IsClosed reports whether the path's first and last endpoints coincide
// within tol.
func (p *Path) IsClosed(tol float64) bool {
	if len(p.Segments) == 0 {
		return false
	}
	return p.start().Equal(p.End(), tol)
}

// Point maps a global parameter T in [0,1] to a point on the path by
// arc-length proportion across segments: segment i covers
// [cum[i]/total, cum[i+1]/total]. A zero-length path (degenerate input)
// yields the single point at parameter 0 of its first segment, per the
// documented degeneracy behavior rather than dividing by zero.
func (p *Path) Point(T float64) Point {
	if len(p.Segments) == 0 {
		return Point{}
	}
	total := p.Length()
	if total <= 0 {
		return p.Segments[0].Point(0)
	}
	T = clamp01(T)
	target := T * total
	var cum float64
	for _, s := range p.Segments {
		segLen := s.Length()
		if target <= cum+segLen || s == p.Segments[len(p.Segments)-1] {
			var t float64
			if segLen > 0 {
				t = (target - cum) / segLen
			}
			return s.Point(clamp01(t))
		}
		cum += segLen
	}
	return p.End()
}

// T2T converts a local parameter t within segment segIdx to a global
// path parameter T.
func (p *Path) T2T(segIdx int, t float64) float64 {
	total := p.Length()
	if total <= 0 {
		return 0
	}
	var cum float64
	for i := 0; i < segIdx; i++ {
		cum += p.Segments[i].Length()
	}
	cum += p.Segments[segIdx].Length() * t
	return cum / total
}

// Rotated returns a new path with every control point rotated by theta
// about origin.
func (p *Path) Rotated(theta float64, origin Point) Curve {
	segs := make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		switch v := s.(type) {
		case *Line:
			segs[i] = &Line{A: v.A.Rotate(theta, origin), B: v.B.Rotate(theta, origin)}
		case *Cubic:
			segs[i] = &Cubic{
				A:  v.A.Rotate(theta, origin),
				C1: v.C1.Rotate(theta, origin),
				C2: v.C2.Rotate(theta, origin),
				B:  v.B.Rotate(theta, origin),
			}
		}
	}
	return &Path{Segments: segs}
}

// Reversed returns a new path traversing the same geometry back to
// front, with each segment's own direction flipped too.
func (p *Path) Reversed() Curve {
	n := len(p.Segments)
	segs := make([]Segment, n)
	for i, s := range p.Segments {
		switch v := s.(type) {
		case *Line:
			segs[n-1-i] = &Line{A: v.B, B: v.A}
		case *Cubic:
			segs[n-1-i] = &Cubic{A: v.B, C1: v.C2, C2: v.C1, B: v.A}
		}
	}
	return &Path{Segments: segs}
}

// PathIntersection records one intersection found by Path.Intersect:
// the parameter and segment index in both the receiver ("self") and the
// argument ("other") path.
type PathIntersection struct {
	Point       Point
	TSelf       float64
	SegSelf     int
	TInSegSelf  float64
	TOther      float64
	SegOther    int
	TInSegOther float64
}

// Intersect returns every intersection between p and other. other is
// expected to be composed of Line segments — in this system "other" is
// always a horizontal (or, in principle, rotated-to-horizontal) scan
// line, never another flattened artwork path, so cubic-vs-cubic general
// intersection is out of scope (the spec's "robust path-vs-line
// intersection" is exactly this operation, not general path-vs-path
// boolean intersection, which is an explicit Non-goal).
func (p *Path) Intersect(other *Path, tol float64) []PathIntersection {
	var out []PathIntersection
	for si := range p.Segments {
		out = append(out, p.IntersectSegment(si, other, tol)...)
	}
	return out
}

// IntersectSegment intersects only segment segIdx of p against other
// (again, other must be Line-only). This is what the quadtree uses once
// it has narrowed candidates down to one segment of one owning path, so
// it never has to re-test every segment of a busy path against a scan
// line.
func (p *Path) IntersectSegment(segIdx int, other *Path, tol float64) []PathIntersection {
	selfSeg := p.Segments[segIdx]
	var out []PathIntersection
	for oi, otherSeg := range other.Segments {
		line, ok := otherSeg.(*Line)
		if !ok {
			continue
		}
		lineVec := line.B.Sub(line.A)
		lineLen := math.Hypot(lineVec.X, lineVec.Y)
		if lineLen < tol {
			continue
		}
		angle := math.Atan2(lineVec.Y, lineVec.X)

		localSeg := toLocalFrame(selfSeg, line.A, angle)
		roots := localSeg.IntersectHorizontal(0, -tol, lineLen+tol, tol)
		for _, t := range roots {
			pt := selfSeg.Point(t)
			out = append(out, PathIntersection{
				Point:       pt,
				TSelf:       p.T2T(segIdx, t),
				SegSelf:     segIdx,
				TInSegSelf:  t,
				TOther:      other.T2T(oi, localT(pt, line.A, angle, lineLen)),
				SegOther:    oi,
				TInSegOther: localT(pt, line.A, angle, lineLen),
			})
		}
	}
	return out
}

// toLocalFrame translates by -origin and rotates by -angle, mapping the
// line through origin at the given angle onto the positive x-axis.
func toLocalFrame(s Segment, origin Point, angle float64) Segment {
	switch v := s.(type) {
	case *Line:
		return &Line{A: v.A.Rotate(-angle, origin).Sub(origin), B: v.B.Rotate(-angle, origin).Sub(origin)}
	case *Cubic:
		return &Cubic{
			A:  v.A.Rotate(-angle, origin).Sub(origin),
			C1: v.C1.Rotate(-angle, origin).Sub(origin),
			C2: v.C2.Rotate(-angle, origin).Sub(origin),
			B:  v.B.Rotate(-angle, origin).Sub(origin),
		}
	}
	return s
}

// localT returns the parameter along the other (Line) segment at which
// point pt lies, given its origin/angle/length in the local frame.
func localT(pt, origin Point, angle, lineLen float64) float64 {
	local := pt.Rotate(-angle, origin)
	if lineLen == 0 {
		return 0
	}
	return clamp01((local.X - origin.X) / lineLen)
}
