// Package pathsort orders a set of paths for plotting, picking at each
// step whichever remaining path is "nearest" under one of four
// strategies and advancing the cursor to that path's end point.
package pathsort

import (
	"context"

	"github.com/inkmachine/polarsketch/geom"
)

// Algorithm selects which nearest-path strategy SortPaths uses.
type Algorithm int

const (
	// None disables sorting: paths are yielded in their given order.
	None Algorithm = iota
	ClosestStart
	ClosestEndpoint
	ClosestOnClosed
	RadarScan
)

// Config configures a sort pass. Zero-value Step fields fall back to
// the defaults named in the spec.
type Config struct {
	Algorithm Algorithm
	Start     geom.Point

	// Step is the sampling interval (in the [0,1] parameter space) used
	// by ClosestOnClosed to probe a closed path's circumference, and by
	// RadarScan to probe the growing disc's circumference. Default 0.05.
	Step float64

	// RadarStep is the radar disc's radius increment. Default 2 (world
	// units).
	RadarStep float64
}

func (c Config) step() float64 {
	if c.Step > 0 {
		return c.Step
	}
	return 0.05
}

func (c Config) radarStep() float64 {
	if c.RadarStep > 0 {
		return c.RadarStep
	}
	return 2
}

// Strategy picks one path out of remaining, nearest last under some
// metric, and returns it (possibly re-parametrized, e.g. reversed or
// reopened at a new start) along with the remaining set with it
// removed.
type Strategy func(last geom.Point, remaining []geom.Curve, canvas geom.Rect, cfg Config) (chosen geom.Curve, rest []geom.Curve)

func strategyFor(algo Algorithm) Strategy {
	switch algo {
	case ClosestStart:
		return closestStart
	case ClosestEndpoint:
		return closestEndpoint
	case ClosestOnClosed:
		return closestOnClosed
	case RadarScan:
		return radarScan
	default:
		return nil
	}
}

// SortPaths lazily yields paths on the returned channel, one per
// selection step, closing it once every path has been emitted or ctx is
// canceled. last_point starts at cfg.Start and advances to the emitted
// path's Point(1) after each step, mirroring caire's walkDir goroutine
// producer pattern (a done-channel-gated background walk feeding a
// channel of results).
func SortPaths(ctx context.Context, paths []geom.Curve, canvas geom.Rect, cfg Config) <-chan geom.Curve {
	out := make(chan geom.Curve)

	strategy := strategyFor(cfg.Algorithm)
	if strategy == nil {
		go func() {
			defer close(out)
			for _, p := range paths {
				select {
				case <-ctx.Done():
					return
				case out <- p:
				}
			}
		}()
		return out
	}

	go func() {
		defer close(out)
		remaining := append([]geom.Curve(nil), paths...)
		last := cfg.Start
		for len(remaining) > 0 {
			chosen, rest := strategy(last, remaining, canvas, cfg)
			if chosen == nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case out <- chosen:
			}
			last = chosen.Point(1)
			remaining = rest
		}
	}()
	return out
}
