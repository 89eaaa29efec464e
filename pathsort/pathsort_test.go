package pathsort

import (
	"context"
	"testing"
	"time"

	"github.com/inkmachine/polarsketch/geom"
)

func lineAt(ax, ay, bx, by float64) *geom.Path {
	return geom.NewPath(&geom.Line{A: geom.Point{X: ax, Y: ay}, B: geom.Point{X: bx, Y: by}})
}

func drainCurves(ch <-chan geom.Curve) []geom.Curve {
	var out []geom.Curve
	for c := range ch {
		out = append(out, c)
	}
	return out
}

func TestSortPathsNonePreservesOrder(t *testing.T) {
	paths := []geom.Curve{lineAt(0, 0, 1, 0), lineAt(5, 5, 6, 5), lineAt(-5, -5, -4, -5)}
	ch := SortPaths(context.Background(), paths, geom.Rect{}, Config{Algorithm: None})
	got := drainCurves(ch)
	if len(got) != 3 {
		t.Fatalf("expected 3 paths, got %d", len(got))
	}
	for i := range paths {
		if got[i] != paths[i] {
			t.Errorf("order changed at index %d", i)
		}
	}
}

func TestSortPathsClosestStartGreedyOrder(t *testing.T) {
	// Three short segments at increasing distance from the origin; start
	// at (0,0) should walk them near-to-far.
	far := lineAt(20, 0, 21, 0)
	near := lineAt(1, 0, 2, 0)
	mid := lineAt(10, 0, 11, 0)
	paths := []geom.Curve{far, mid, near}

	ch := SortPaths(context.Background(), paths, geom.Rect{}, Config{Algorithm: ClosestStart, Start: geom.Point{X: 0, Y: 0}})
	got := drainCurves(ch)
	if len(got) != 3 {
		t.Fatalf("expected 3 paths, got %d", len(got))
	}
	if got[0] != geom.Curve(near) || got[1] != geom.Curve(mid) || got[2] != geom.Curve(far) {
		t.Errorf("expected near, mid, far order; got %v", got)
	}
}

func TestSortPathsClosestEndpointReversesWhenEndIsCloser(t *testing.T) {
	// A path running from far to near: its end point is closer to the
	// start than its start point, so closestEndpoint should reverse it.
	p := lineAt(20, 0, 1, 0)
	ch := SortPaths(context.Background(), []geom.Curve{p}, geom.Rect{}, Config{Algorithm: ClosestEndpoint, Start: geom.Point{X: 0, Y: 0}})
	got := drainCurves(ch)
	if len(got) != 1 {
		t.Fatalf("expected 1 path, got %d", len(got))
	}
	if start := got[0].Point(0); !start.Equal(geom.Point{X: 1, Y: 0}, 1e-9) {
		t.Errorf("expected reversed path to start near (1,0), got %v", start)
	}
}

func TestSortPathsContextCancellationStopsEarly(t *testing.T) {
	paths := []geom.Curve{lineAt(0, 0, 1, 0), lineAt(1, 0, 2, 0), lineAt(2, 0, 3, 0)}
	ctx, cancel := context.WithCancel(context.Background())
	ch := SortPaths(ctx, paths, geom.Rect{}, Config{Algorithm: ClosestStart})

	<-ch // take exactly one, then cancel before draining the rest
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// a second item might still have been in flight; drain
			// until closed, but the channel must close promptly.
			for range ch {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close promptly after context cancellation")
	}
}

func TestSortPathsClosestOnClosedRotatesStart(t *testing.T) {
	square := geom.NewPath(
		&geom.Line{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}},
		&geom.Line{A: geom.Point{X: 10, Y: 0}, B: geom.Point{X: 10, Y: 10}},
		&geom.Line{A: geom.Point{X: 10, Y: 10}, B: geom.Point{X: 0, Y: 10}},
		&geom.Line{A: geom.Point{X: 0, Y: 10}, B: geom.Point{X: 0, Y: 0}},
	)
	ch := SortPaths(context.Background(), []geom.Curve{square}, geom.Rect{}, Config{
		Algorithm: ClosestOnClosed,
		Start:     geom.Point{X: 10, Y: 10},
	})
	got := drainCurves(ch)
	if len(got) != 1 {
		t.Fatalf("expected 1 path, got %d", len(got))
	}
	// The closest point on the square's boundary to (10,10) is the
	// (10,10) corner itself, so the reopened path should start there.
	if start := got[0].Point(0); !start.Equal(geom.Point{X: 10, Y: 10}, 0.5) {
		t.Errorf("expected closed path reopened near (10,10), got %v", start)
	}
}

func TestRadarScanIsPathOuterNotAngleOuter(t *testing.T) {
	// A's bbox only contains the probe sampled at the sweep's last angle
	// (south, t=0.75); B's bbox only contains the probe sampled at an
	// earlier angle (north, t=0.25) at the very same radius. A path-outer
	// sweep (sweep all of A's angles before ever trying B) must still
	// pick A, since A matches somewhere on its own sweep; an angle-outer
	// sweep would instead find B first, because B matches at an earlier
	// angle within the same radius pass.
	a := lineAt(-1, -11, 1, -9) // bbox contains (0,-10), the south probe
	b := lineAt(-1, 9, 1, 11)   // bbox contains (0,10), the north probe
	canvas := geom.NewRect(geom.Point{X: -50, Y: -50}, geom.Point{X: 50, Y: 50})

	cfg := Config{Algorithm: RadarScan, Start: geom.Point{X: 0, Y: 0}, Step: 0.25, RadarStep: 10}
	chosen, rest := radarScan(cfg.Start, []geom.Curve{a, b}, canvas, cfg)

	if chosen != geom.Curve(a) {
		t.Errorf("expected path-outer sweep to pick A (matches later in its own sweep), got %v", chosen)
	}
	if len(rest) != 1 || rest[0] != geom.Curve(b) {
		t.Errorf("expected B to remain after A is chosen, got %v", rest)
	}
}

func TestSortPathsRadarScanTerminatesAndCoversAll(t *testing.T) {
	canvas := geom.NewRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 100, Y: 100})
	paths := []geom.Curve{
		lineAt(50, 50, 51, 50),
		lineAt(90, 90, 91, 90),
		lineAt(5, 5, 6, 5),
	}
	ch := SortPaths(context.Background(), paths, canvas, Config{Algorithm: RadarScan, Start: geom.Point{X: 50, Y: 50}})
	got := drainCurves(ch)
	if len(got) != 3 {
		t.Fatalf("expected all 3 paths to be emitted exactly once, got %d", len(got))
	}
}
