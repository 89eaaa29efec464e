package geom

import (
	"math"
	"testing"
)

func TestPointRotate(t *testing.T) {
	cases := []struct {
		name   string
		p      Point
		theta  float64
		origin Point
		want   Point
	}{
		{"quarter turn about origin", Point{X: 1, Y: 0}, math.Pi / 2, Point{}, Point{X: 0, Y: 1}},
		{"half turn about origin", Point{X: 1, Y: 0}, math.Pi, Point{}, Point{X: -1, Y: 0}},
		{"quarter turn about offset center", Point{X: 2, Y: 1}, math.Pi / 2, Point{X: 1, Y: 1}, Point{X: 1, Y: 2}},
		{"zero rotation is identity", Point{X: 3, Y: -4}, 0, Point{X: 1, Y: 1}, Point{X: 3, Y: -4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.p.Rotate(c.theta, c.origin)
			if !got.Equal(c.want, 1e-9) {
				t.Errorf("Rotate(%v, %v) = %v, want %v", c.theta, c.origin, got, c.want)
			}
		})
	}
}

func TestPointLerp(t *testing.T) {
	a, b := Point{X: 0, Y: 0}, Point{X: 10, Y: 20}
	if got := a.Lerp(b, 0); !got.Equal(a, 1e-9) {
		t.Errorf("Lerp(t=0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); !got.Equal(b, 1e-9) {
		t.Errorf("Lerp(t=1) = %v, want %v", got, b)
	}
	mid := a.Lerp(b, 0.5)
	if !mid.Equal(Point{X: 5, Y: 10}, 1e-9) {
		t.Errorf("Lerp(t=0.5) = %v, want (5,10)", mid)
	}
}

func TestPointDist(t *testing.T) {
	if got := (Point{0, 0}).Dist(Point{3, 4}); math.Abs(got-5) > 1e-9 {
		t.Errorf("Dist = %v, want 5", got)
	}
}

func TestPointComplexRoundTrip(t *testing.T) {
	p := Point{X: 1.5, Y: -2.5}
	if got := FromComplex(p.Complex()); !got.Equal(p, 1e-9) {
		t.Errorf("FromComplex(Complex()) = %v, want %v", got, p)
	}
}
