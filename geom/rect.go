package geom

import "golang.org/x/exp/constraints"

// min returns the smaller of x and y. Kept generic the way caire's
// utils.Min did.
func min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// max returns the bigger of x and y.
func max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Rect is an axis-aligned bounding rectangle, Min being the bottom-left
// (smaller X/Y) corner and Max the top-right.
type Rect struct {
	Min, Max Point
}

// NewRect builds a Rect from two corner points in any order.
func NewRect(a, b Point) Rect {
	return Rect{
		Min: Point{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Max: Point{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

// Width returns the rectangle's horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the rectangle's vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Union returns the smallest Rect enclosing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{X: min(r.Min.X, o.Min.X), Y: min(r.Min.Y, o.Min.Y)},
		Max: Point{X: max(r.Max.X, o.Max.X), Y: max(r.Max.Y, o.Max.Y)},
	}
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	if r.Max.X < o.Min.X || o.Max.X < r.Min.X {
		return false
	}
	if r.Max.Y < o.Min.Y || o.Max.Y < r.Min.Y {
		return false
	}
	return true
}

// Contains reports whether p lies within r (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsRect reports whether r fully encloses o.
func (r Rect) ContainsRect(o Rect) bool {
	return r.Contains(o.Min) && r.Contains(o.Max)
}

// Quadrant returns the four quadrants of r, split at its center, in the
// NE, NW, SW, SE order the quadtree uses for its children.
func (r Rect) Quadrant() (ne, nw, sw, se Rect) {
	c := r.Center()
	ne = Rect{Min: c, Max: r.Max}
	nw = Rect{Min: Point{X: r.Min.X, Y: c.Y}, Max: Point{X: c.X, Y: r.Max.Y}}
	sw = Rect{Min: r.Min, Max: c}
	se = Rect{Min: Point{X: c.X, Y: r.Min.Y}, Max: Point{X: r.Max.X, Y: c.Y}}
	return
}
