package geom

import (
	"math"
	"sync"
)

// Segment is one piece of a Path: either a straight Line or a cubic
// Bezier curve. Implementations are pointer types so that Cubic can
// memoize its power-basis coefficients (see Cubic.coeffs) the first time
// they're needed — cubic root finding is the hot path inside the
// toolpath generator, per the performance note carried from the
// original Python implementation's per-segment caching.
type Segment interface {
	// Point returns the point at parameter t in [0,1].
	Point(t float64) Point
	// Length returns the arc length of the segment.
	Length() float64
	// BBox returns the segment's axis-aligned bounding box.
	BBox() Rect
	// IntersectHorizontal returns the t-parameters in [0,1] at which the
	// segment crosses the horizontal line y=lineY, restricted to those
	// whose x(t) falls within [xMin,xMax] (the collision line's extent).
	// tol is the slack allowed on t and on x (and, for a Cubic, the
	// degeneracy threshold of the cubic solver); roots are not polished.
	IntersectHorizontal(lineY, xMin, xMax, tol float64) []float64
}

// Line is a straight segment from A to B.
type Line struct {
	A, B Point
}

func (l *Line) Point(t float64) Point {
	return l.A.Lerp(l.B, t)
}

func (l *Line) Length() float64 {
	return l.A.Dist(l.B)
}

func (l *Line) BBox() Rect {
	return NewRect(l.A, l.B)
}

func (l *Line) IntersectHorizontal(lineY, xMin, xMax, tol float64) []float64 {
	dy := l.B.Y - l.A.Y
	if math.Abs(dy) < 1e-12 {
		// Horizontal (or degenerate) segment: either coincident with the
		// scan line (infinitely many roots, not representable as an
		// intersection point) or parallel and missing it entirely.
		return nil
	}
	t := (lineY - l.A.Y) / dy
	if t < -tol || t > 1+tol {
		return nil
	}
	t = clamp01(t)
	x := l.Point(t).X
	if x < xMin-tol || x > xMax+tol {
		return nil
	}
	return []float64{t}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Cubic is a cubic Bezier segment with control points A, C1, C2, B.
type Cubic struct {
	A, C1, C2, B Point

	coeffsOnce sync.Once
	cx, cy     cubicCoeffs // power-basis coefficients, cy[3]t^3+cy[2]t^2+cy[1]t+cy[0]
}

// cubicCoeffs holds the power-basis coefficients of one axis of a cubic
// Bezier, highest degree first omitted: index 0 is the constant term.
type cubicCoeffs [4]float64

func (c *Cubic) coeffs() (cx, cy cubicCoeffs) {
	c.coeffsOnce.Do(func() {
		c.cx = bernsteinToPower(c.A.X, c.C1.X, c.C2.X, c.B.X)
		c.cy = bernsteinToPower(c.A.Y, c.C1.Y, c.C2.Y, c.B.Y)
	})
	return c.cx, c.cy
}

// bernsteinToPower converts the four cubic Bezier control ordinates into
// power-basis coefficients [a0, a1, a2, a3] such that
// f(t) = a0 + a1 t + a2 t^2 + a3 t^3.
func bernsteinToPower(p0, p1, p2, p3 float64) cubicCoeffs {
	return cubicCoeffs{
		p0,
		3 * (p1 - p0),
		3 * (p0 - 2*p1 + p2),
		-p0 + 3*p1 - 3*p2 + p3,
	}
}

func (co cubicCoeffs) eval(t float64) float64 {
	return ((co[3]*t+co[2])*t+co[1])*t + co[0]
}

func (c *Cubic) Point(t float64) Point {
	cx, cy := c.coeffs()
	return Point{X: cx.eval(t), Y: cy.eval(t)}
}

// Length computes the arc length by adaptive subdivision until the
// relative change between successive refinements is below 1e-6, capped
// at 24 levels to bound pathological inputs.
func (c *Cubic) Length() float64 {
	prev := chordLength(c, 1)
	for level := 1; level <= 24; level++ {
		n := 1 << uint(level)
		cur := chordLength(c, n)
		if cur == 0 {
			return 0
		}
		if math.Abs(cur-prev)/cur < 1e-6 {
			return cur
		}
		prev = cur
	}
	return prev
}

func chordLength(c *Cubic, n int) float64 {
	var total float64
	prev := c.Point(0)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		p := c.Point(t)
		total += prev.Dist(p)
		prev = p
	}
	return total
}

func (c *Cubic) BBox() Rect {
	// The control polygon always encloses the curve; sampling at a
	// modest resolution keeps the bbox tight without needing the exact
	// extrema (only used for broad-phase quadtree filtering).
	r := NewRect(c.A, c.B)
	const samples = 16
	for i := 1; i < samples; i++ {
		r = r.Union(NewRect(c.Point(float64(i)/samples), c.Point(float64(i)/samples)))
	}
	return r
}

func (c *Cubic) IntersectHorizontal(lineY, xMin, xMax, tol float64) []float64 {
	_, cy := c.coeffs()
	// Solve cy[3] t^3 + cy[2] t^2 + cy[1] t + (cy[0]-lineY) = 0.
	roots := solveCubic(cy[3], cy[2], cy[1], cy[0]-lineY, tol)

	out := make([]float64, 0, len(roots))
	for _, t := range roots {
		if t < -tol || t > 1+tol {
			continue
		}
		t = clamp01(t)
		x := c.Point(t).X
		if x < xMin-tol || x > xMax+tol {
			continue
		}
		out = append(out, t)
	}
	return out
}
