// Package polarsketch is the path-processing and streaming pipeline for
// a polar-coordinate plotter: it rotates, optionally fills, optionally
// sorts, scales, and flattens a set of planar paths into a lazy stream
// of motion commands, and drives that stream through a framed serial
// link to the firmware while broadcasting it to observers.
package polarsketch

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/inkmachine/polarsketch/geom"
	"github.com/inkmachine/polarsketch/pathsort"
	"github.com/inkmachine/polarsketch/toolpath"
)

// defaultPointsPerMM is K from the original renderer: how many sample
// points to emit per render-scaled unit of path length, absent an
// explicit override.
const defaultPointsPerMM = 15.0

const closedTolerance = 1e-6

// PathGenerator turns a set of paths into a point-stream ready for the
// firmware: see Generate.
type PathGenerator struct {
	Paths  []*geom.Path
	Canvas geom.Rect

	// Offset translates every emitted point, after scaling.
	Offset geom.Point
	// RenderScale multiplies every path's length and every emitted
	// point. Defaults to 1.
	RenderScale float64
	// RenderSize, if non-zero, additionally scales RenderScale so the
	// canvas maps onto a box of this size: factor =
	// max(RenderSize.X/Canvas.Width(), RenderSize.Y/Canvas.Height()).
	RenderSize geom.Point
	// Rotation is applied, together with -Toolpath.Angle, to every path
	// about the canvas center before sampling.
	Rotation float64
	// PointsPerMM overrides defaultPointsPerMM when non-zero.
	PointsPerMM float64

	Toolpath toolpath.Config
	PathSort pathsort.Config

	Log *zap.SugaredLogger
}

func (g *PathGenerator) log() *zap.SugaredLogger {
	if g.Log == nil {
		return zap.NewNop().Sugar()
	}
	return g.Log
}

func (g *PathGenerator) effectiveScale() float64 {
	scale := g.RenderScale
	if scale == 0 {
		scale = 1
	}
	if g.RenderSize.X != 0 || g.RenderSize.Y != 0 {
		w, h := g.Canvas.Width(), g.Canvas.Height()
		var factor float64
		if w > 0 {
			factor = g.RenderSize.X / w
		}
		if h > 0 {
			if f := g.RenderSize.Y / h; f > factor {
				factor = f
			}
		}
		scale *= factor
	}
	return scale
}

func (g *PathGenerator) pointsPerMM() float64 {
	if g.PointsPerMM > 0 {
		return g.PointsPerMM
	}
	return defaultPointsPerMM
}

// Generate runs the pipeline and returns the lazy command stream
// alongside an error channel: a cancellation of ctx closes out with
// ctx.Err() on the error channel rather than completing the stream.
// Both channels are closed once the goroutine returns.
func (g *PathGenerator) Generate(ctx context.Context) (<-chan Command, <-chan error) {
	out := make(chan Command)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		scale := g.effectiveScale()
		k := g.pointsPerMM()
		log := g.log()

		paths := g.Paths
		if g.Toolpath.Algorithm != toolpath.None {
			paths = toolpath.Generate(paths, g.Canvas, g.Toolpath, log)
		}

		curves := make([]geom.Curve, len(paths))
		for i, p := range paths {
			curves[i] = p
		}

		if g.PathSort.Algorithm != pathsort.None {
			sorted := pathsort.SortPaths(ctx, curves, g.Canvas, g.PathSort)
			curves = curves[:0]
			for c := range sorted {
				curves = append(curves, c)
			}
		}

		center := g.Canvas.Center()
		angle := g.Rotation - g.Toolpath.Angle

		for _, c := range curves {
			rotated := c.Rotated(angle, center)
			length := rotated.Length()
			n := int(math.Ceil(length * scale * k))

			if n == 0 {
				if !emit(ctx, out, errc, samplePoint(rotated, 0, scale, g.Offset)) {
					return
				}
			} else {
				for i := 0; i <= n; i++ {
					t := float64(i) / float64(n)
					if !emit(ctx, out, errc, samplePoint(rotated, t, scale, g.Offset)) {
						return
					}
				}
			}

			if rotated.IsClosed(closedTolerance) {
				if !emit(ctx, out, errc, CloseMarker{}) {
					return
				}
			}
			if !emit(ctx, out, errc, PathEndMarker{}) {
				return
			}
		}

		emit(ctx, out, errc, DrawingEndMarker{})
	}()

	return out, errc
}

func samplePoint(c geom.Curve, t, scale float64, offset geom.Point) PathPoint {
	return PathPoint{Point: c.Point(t).Scale(scale).Add(offset)}
}

// emit sends cmd on out, returning false (and recording ctx.Err() on
// errc) if ctx was canceled first.
func emit(ctx context.Context, out chan<- Command, errc chan<- error, cmd Command) bool {
	select {
	case <-ctx.Done():
		errc <- ctx.Err()
		return false
	case out <- cmd:
		return true
	}
}
