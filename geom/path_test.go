package geom

import (
	"math"
	"testing"
)

func square() *Path {
	return NewPath(
		&Line{A: Point{0, 0}, B: Point{10, 0}},
		&Line{A: Point{10, 0}, B: Point{10, 10}},
		&Line{A: Point{10, 10}, B: Point{0, 10}},
		&Line{A: Point{0, 10}, B: Point{0, 0}},
	)
}

func TestPathLengthAndBBox(t *testing.T) {
	p := square()
	if got := p.Length(); math.Abs(got-40) > 1e-9 {
		t.Errorf("Length = %v, want 40", got)
	}
	box := p.BBox()
	if box != (Rect{Min: Point{0, 0}, Max: Point{10, 10}}) {
		t.Errorf("BBox = %+v, want [0,0]-[10,10]", box)
	}
}

func TestPathIsClosed(t *testing.T) {
	if !square().IsClosed(1e-9) {
		t.Error("expected square path to be closed")
	}
	open := NewPath(&Line{A: Point{0, 0}, B: Point{10, 0}})
	if open.IsClosed(1e-9) {
		t.Error("expected open line to not be closed")
	}
}

func TestPathPointArcLengthProportion(t *testing.T) {
	p := square()
	// Each side is a quarter of the total 40-unit perimeter.
	if got := p.Point(0); !got.Equal(Point{0, 0}, 1e-9) {
		t.Errorf("Point(0) = %v, want (0,0)", got)
	}
	if got := p.Point(0.25); !got.Equal(Point{10, 0}, 1e-9) {
		t.Errorf("Point(0.25) = %v, want (10,0)", got)
	}
	if got := p.Point(0.5); !got.Equal(Point{10, 10}, 1e-9) {
		t.Errorf("Point(0.5) = %v, want (10,10)", got)
	}
	if got := p.Point(1); !got.Equal(Point{0, 0}, 1e-9) {
		t.Errorf("Point(1) = %v, want (0,0)", got)
	}
}

func TestPathPointZeroLengthFallback(t *testing.T) {
	degenerate := NewPath(&Line{A: Point{5, 5}, B: Point{5, 5}})
	if got := degenerate.Point(0.7); !got.Equal(Point{5, 5}, 1e-9) {
		t.Errorf("Point on zero-length path = %v, want (5,5)", got)
	}
}

func TestPathT2T(t *testing.T) {
	p := square()
	if got := p.T2T(0, 0.5); math.Abs(got-0.125) > 1e-9 {
		t.Errorf("T2T(seg0, 0.5) = %v, want 0.125", got)
	}
	if got := p.T2T(2, 1); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("T2T(seg2, 1) = %v, want 0.75", got)
	}
}

func TestPathRotated(t *testing.T) {
	p := NewPath(&Line{A: Point{1, 0}, B: Point{2, 0}})
	rotated := p.Rotated(math.Pi/2, Point{}).(*Path)
	line := rotated.Segments[0].(*Line)
	if !line.A.Equal(Point{0, 1}, 1e-9) || !line.B.Equal(Point{0, 2}, 1e-9) {
		t.Errorf("Rotated line = %+v, want A=(0,1) B=(0,2)", line)
	}
}

func TestPathReversed(t *testing.T) {
	p := NewPath(
		&Line{A: Point{0, 0}, B: Point{1, 0}},
		&Line{A: Point{1, 0}, B: Point{2, 0}},
	)
	rev := p.Reversed().(*Path)
	if len(rev.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(rev.Segments))
	}
	first := rev.Segments[0].(*Line)
	second := rev.Segments[1].(*Line)
	if !first.A.Equal(Point{2, 0}, 1e-9) || !first.B.Equal(Point{1, 0}, 1e-9) {
		t.Errorf("first reversed segment = %+v, want A=(2,0) B=(1,0)", first)
	}
	if !second.A.Equal(Point{1, 0}, 1e-9) || !second.B.Equal(Point{0, 0}, 1e-9) {
		t.Errorf("second reversed segment = %+v, want A=(1,0) B=(0,0)", second)
	}
}

func TestPathIntersectSegmentAgainstHorizontalLine(t *testing.T) {
	diag := NewPath(&Line{A: Point{0, 0}, B: Point{10, 10}})
	scanLine := NewPath(&Line{A: Point{-100, 5}, B: Point{100, 5}})

	hits := diag.IntersectSegment(0, scanLine, 1e-9)
	if len(hits) != 1 {
		t.Fatalf("expected 1 intersection, got %d: %+v", len(hits), hits)
	}
	if !hits[0].Point.Equal(Point{5, 5}, 1e-6) {
		t.Errorf("intersection point = %v, want (5,5)", hits[0].Point)
	}
	if math.Abs(hits[0].TInSegSelf-0.5) > 1e-6 {
		t.Errorf("TInSegSelf = %v, want 0.5", hits[0].TInSegSelf)
	}
}

func TestPathIntersectMultipleSegmentsAgainstScanLine(t *testing.T) {
	p := square()
	scanLine := NewPath(&Line{A: Point{-100, 5}, B: Point{100, 5}})
	hits := p.Intersect(scanLine, 1e-9)
	if len(hits) != 2 {
		t.Fatalf("expected 2 intersections crossing a square's mid-height scan line, got %d: %+v", len(hits), hits)
	}
}
