// Package geom implements the planar geometry primitives the rest of
// polarsketch builds on: points, line/cubic segments, paths assembled
// from them, and the handful of path-level operations (length, point
// sampling, rotation, reversal, intersection) the toolpath generator and
// path sorter need.
package geom

import "math"

// Point is a planar coordinate. It doubles as a complex number (real =
// X, imaginary = Y) for rotation and distance calculations, the same
// trick the original Python implementation leans on via Python's
// built-in complex type.
type Point struct {
	X, Y float64
}

// Complex returns p as a complex128, real part X, imaginary part Y.
func (p Point) Complex() complex128 {
	return complex(p.X, p.Y)
}

// FromComplex builds a Point from a complex128's real/imaginary parts.
func FromComplex(c complex128) Point {
	return Point{X: real(c), Y: imag(c)}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Lerp linearly interpolates between p and q at parameter t (t=0 -> p,
// t=1 -> q).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Hypot(dx, dy)
}

// Equal reports whether p and q are within tol of each other on both
// axes.
func (p Point) Equal(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

// Rotate rotates p by theta radians about origin.
func (p Point) Rotate(theta float64, origin Point) Point {
	shifted := complex(p.X-origin.X, p.Y-origin.Y)
	rot := shifted * complex(math.Cos(theta), math.Sin(theta))
	return Point{X: real(rot) + origin.X, Y: imag(rot) + origin.Y}
}
