package polarsketch

import (
	"context"
	"testing"
	"time"

	"github.com/inkmachine/polarsketch/geom"
	"github.com/inkmachine/polarsketch/pathsort"
	"github.com/inkmachine/polarsketch/toolpath"
)

func drainCommands(t *testing.T, cmds <-chan Command, errc <-chan error) []Command {
	t.Helper()
	var out []Command
	timeout := time.After(2 * time.Second)
	for {
		select {
		case c, ok := <-cmds:
			if !ok {
				if err := <-errc; err != nil {
					t.Fatalf("generator error: %v", err)
				}
				return out
			}
			out = append(out, c)
		case <-timeout:
			t.Fatal("timed out draining command stream")
		}
	}
}

func TestGenerateEmitsPointsThenPathEndThenDrawingEnd(t *testing.T) {
	line := geom.NewPath(&geom.Line{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}})
	gen := &PathGenerator{
		Paths:       []*geom.Path{line},
		Canvas:      geom.NewRect(geom.Point{}, geom.Point{X: 10, Y: 10}),
		PointsPerMM: 1,
	}
	cmds, errc := gen.Generate(context.Background())
	got := drainCommands(t, cmds, errc)

	if len(got) < 2 {
		t.Fatalf("expected at least a point and markers, got %d commands", len(got))
	}
	if _, ok := got[len(got)-1].(DrawingEndMarker); !ok {
		t.Errorf("last command = %T, want DrawingEndMarker", got[len(got)-1])
	}
	if _, ok := got[len(got)-2].(PathEndMarker); !ok {
		t.Errorf("second-to-last command = %T, want PathEndMarker", got[len(got)-2])
	}
	for _, c := range got[:len(got)-2] {
		if _, ok := c.(PathPoint); !ok {
			t.Errorf("expected only PathPoints before the markers, got %T", c)
		}
	}
}

func TestGenerateEmitsCloseMarkerForClosedPaths(t *testing.T) {
	square := geom.NewPath(
		&geom.Line{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}},
		&geom.Line{A: geom.Point{X: 10, Y: 0}, B: geom.Point{X: 10, Y: 10}},
		&geom.Line{A: geom.Point{X: 10, Y: 10}, B: geom.Point{X: 0, Y: 10}},
		&geom.Line{A: geom.Point{X: 0, Y: 10}, B: geom.Point{X: 0, Y: 0}},
	)
	gen := &PathGenerator{
		Paths:       []*geom.Path{square},
		Canvas:      geom.NewRect(geom.Point{}, geom.Point{X: 10, Y: 10}),
		PointsPerMM: 1,
	}
	cmds, errc := gen.Generate(context.Background())
	got := drainCommands(t, cmds, errc)

	foundClose := false
	for i, c := range got {
		if _, ok := c.(CloseMarker); ok {
			foundClose = true
			if _, ok := got[i+1].(PathEndMarker); !ok {
				t.Errorf("CloseMarker must immediately precede PathEndMarker")
			}
		}
	}
	if !foundClose {
		t.Error("expected a CloseMarker for a closed square path")
	}
}

func TestGenerateZeroLengthPathEmitsSinglePoint(t *testing.T) {
	degenerate := geom.NewPath(&geom.Line{A: geom.Point{X: 5, Y: 5}, B: geom.Point{X: 5, Y: 5}})
	gen := &PathGenerator{
		Paths:       []*geom.Path{degenerate},
		Canvas:      geom.NewRect(geom.Point{}, geom.Point{X: 10, Y: 10}),
		PointsPerMM: 1,
	}
	cmds, errc := gen.Generate(context.Background())
	got := drainCommands(t, cmds, errc)

	pointCount := 0
	for _, c := range got {
		if _, ok := c.(PathPoint); ok {
			pointCount++
		}
	}
	if pointCount != 1 {
		t.Errorf("expected exactly 1 point for a zero-length path, got %d", pointCount)
	}
}

func TestGenerateContextCancellationStopsStreamAndReportsError(t *testing.T) {
	line := geom.NewPath(&geom.Line{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 1000, Y: 0}})
	gen := &PathGenerator{
		Paths:       []*geom.Path{line},
		Canvas:      geom.NewRect(geom.Point{}, geom.Point{X: 1000, Y: 1000}),
		PointsPerMM: 100, // many points, so cancellation has time to land mid-stream
	}
	ctx, cancel := context.WithCancel(context.Background())
	cmds, errc := gen.Generate(ctx)

	<-cmds
	cancel()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-cmds:
			if !ok {
				select {
				case err := <-errc:
					if err == nil {
						t.Error("expected a context-cancellation error on errc")
					}
				case <-timeout:
					t.Fatal("errc never produced a value after cmds closed")
				}
				return
			}
		case <-timeout:
			t.Fatal("stream did not close promptly after cancellation")
		}
	}
}

func TestGenerateAppliesToolpathAndSort(t *testing.T) {
	rect := geom.NewPath(
		&geom.Line{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 20, Y: 0}},
		&geom.Line{A: geom.Point{X: 20, Y: 0}, B: geom.Point{X: 20, Y: 20}},
		&geom.Line{A: geom.Point{X: 20, Y: 20}, B: geom.Point{X: 0, Y: 20}},
		&geom.Line{A: geom.Point{X: 0, Y: 20}, B: geom.Point{X: 0, Y: 0}},
	)
	canvas := geom.NewRect(geom.Point{}, geom.Point{X: 20, Y: 20})
	gen := &PathGenerator{
		Paths:       []*geom.Path{rect},
		Canvas:      canvas,
		PointsPerMM: 1,
		Toolpath:    toolpath.Config{Algorithm: toolpath.HorizontalLines, LineStep: 5},
		PathSort:    pathsort.Config{Algorithm: pathsort.ClosestStart},
	}
	cmds, errc := gen.Generate(context.Background())
	got := drainCommands(t, cmds, errc)

	pathEnds := 0
	for _, c := range got {
		if _, ok := c.(PathEndMarker); ok {
			pathEnds++
		}
	}
	if pathEnds == 0 {
		t.Fatal("expected at least one filled scan-line path to be emitted")
	}
}
