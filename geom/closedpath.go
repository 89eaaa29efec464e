package geom

// ClosedPath is a re-parametrized view onto a closed Path: it does not
// mutate the underlying path, it just shifts where parameter 0 falls.
// Point(u) = inner.Point((u + offset) mod 1). This is how the
// closest-on-closed path-sort strategy "rotates" a closed path's start
// point without copying its geometry — see pathsort.ClosestOnClosed.
type ClosedPath struct {
	Inner  Curve
	Offset float64 // in [0,1)
}

var _ Curve = ClosedPath{}

// NewClosedPath builds a view of inner starting at parameter offset.
func NewClosedPath(inner Curve, offset float64) ClosedPath {
	for offset < 0 {
		offset += 1
	}
	for offset >= 1 {
		offset -= 1
	}
	return ClosedPath{Inner: inner, Offset: offset}
}

func (c ClosedPath) Point(u float64) Point {
	v := u + c.Offset
	for v >= 1 {
		v -= 1
	}
	for v < 0 {
		v += 1
	}
	return c.Inner.Point(v)
}

func (c ClosedPath) Length() float64 { return c.Inner.Length() }

func (c ClosedPath) BBox() Rect { return c.Inner.BBox() }

func (c ClosedPath) IsClosed(tol float64) bool { return c.Inner.IsClosed(tol) }

func (c ClosedPath) Rotated(theta float64, origin Point) Curve {
	return ClosedPath{Inner: c.Inner.Rotated(theta, origin), Offset: c.Offset}
}

// Reversed flips traversal direction while keeping the same start point.
func (c ClosedPath) Reversed() Curve {
	return ClosedPath{Inner: c.Inner.Reversed(), Offset: 1 - c.Offset}
}
